package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/franciscosanchezn/gin-restaurant-api/internal/access"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/config"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/database"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/models"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	// Parse command line flags
	rawRole := flag.String("role", "staff", "User role (customer, staff or engineer)")
	flag.Parse()

	role, err := access.ParseRole(*rawRole)
	if err != nil {
		log.Fatal(err)
	}

	conf, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}
	db, err := database.InitDatabase(database.DatabaseConfig{
		Driver:   conf.DBDriver,
		URL:      conf.DatabaseURL,
		Host:     conf.DBHost,
		Port:     conf.DBPort,
		User:     conf.DBUser,
		Password: conf.DBPassword,
		Name:     conf.DBName,
		SSLMode:  conf.DBSSLMode,
		Path:     conf.DBPath,
	})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database: ", err)
	}

	clientID := fmt.Sprintf("dev-%s-client", role)
	clientSecret := fmt.Sprintf("dev-%s-secret-123", role)

	// Check if client already exists
	var existing models.OAuthClient
	if err := db.Where("id = ?", clientID).First(&existing).Error; err == nil {
		fmt.Printf("Development client already exists for role '%s'!\n", role)
		printCredentials(clientID, clientSecret)
		return
	}

	user, password, err := userForRole(db, role)
	if err != nil {
		log.Fatal("Failed to get user for role: ", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(clientSecret), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash secret: ", err)
	}
	client := models.OAuthClient{
		ID:         clientID,
		Secret:     string(hash),
		Name:       fmt.Sprintf("Development %s client", role),
		Domain:     "http://localhost",
		UserID:     user.ID,
		Scopes:     "read,write",
		GrantTypes: "client_credentials",
	}
	if err := db.Create(&client).Error; err != nil {
		log.Fatal("Failed to create client: ", err)
	}

	fmt.Printf("Development OAuth client created for role '%s'!\n", role)
	fmt.Printf("User: %s (ID: %d)\n", user.Email, user.ID)
	if password != "" {
		fmt.Printf("User Password: %s\n", password)
	}
	printCredentials(clientID, clientSecret)
}

func printCredentials(clientID, clientSecret string) {
	fmt.Printf("Client ID: %s\n", clientID)
	fmt.Printf("Client Secret: %s\n", clientSecret)
	fmt.Println("\nUse these credentials for testing:")
	fmt.Printf("curl -X POST http://localhost:8080/api/v1/oauth/token \\\n")
	fmt.Printf("  -d 'grant_type=client_credentials' \\\n")
	fmt.Printf("  -d 'client_id=%s' \\\n", clientID)
	fmt.Printf("  -d 'client_secret=%s'\n", clientSecret)
}

// userForRole finds or creates the development user of role.
// The password is only returned when the user was just created.
func userForRole(db *gorm.DB, role access.Role) (*models.User, string, error) {
	var user models.User
	email := fmt.Sprintf("%s@restaurant.local", role)

	err := db.Where("email = ?", email).First(&user).Error
	if err == nil {
		fmt.Printf("Found existing user: %s (ID: %d, Role: %s)\n", user.Email, user.ID, user.Role)
		return &user, "", nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	password := fmt.Sprintf("%s-password-123", role)
	user = models.User{Email: email, Name: fmt.Sprintf("Development %s", role), Role: role}
	if err := user.SetPassword(password); err != nil {
		return nil, "", err
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, "", err
	}
	fmt.Printf("Created new user: %s (ID: %d, Role: %s)\n", user.Email, user.ID, user.Role)
	return &user, password, nil
}
