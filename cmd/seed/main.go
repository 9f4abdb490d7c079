package main

import (
	"flag"
	"math/rand"
	"time"

	"github.com/franciscosanchezn/gin-restaurant-api/internal/config"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/database"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/logging"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/models"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// seed fills the dish catalog from a YAML menu file or with generated sample dishes
func main() {
	file := flag.String("file", "", "YAML menu file to load")
	count := flag.Int("count", 20, "Number of generated dishes when no file is given")
	flag.Parse()

	_ = godotenv.Load()
	conf, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	logging.Setup(logging.Options{Environment: conf.Environment, Level: conf.LogLevel})

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
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	var dishes []models.Dish
	if *file != "" {
		dishes, err = database.LoadSeedFile(*file)
		if err != nil {
			log.WithError(err).Fatal("Failed to load menu")
		}
	} else {
		dishes = database.RandomDishes(*count, rand.New(rand.NewSource(time.Now().UnixNano())))
	}

	created, err := database.SeedDishes(db, dishes)
	if err != nil {
		log.WithError(err).Fatal("Failed to seed dishes")
	}
	log.WithField("dishes", created).Info("Database seeded successfully")
}
