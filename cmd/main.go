package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/franciscosanchezn/gin-restaurant-api/docs" // Import generated docs
	"github.com/franciscosanchezn/gin-restaurant-api/internal/auth"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/cache"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/cart"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/config"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/database"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/events"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/logging"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/server"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

// @title Restaurant API
// @version 1.0
// @description Menu, cart, ordering, review and reporting API for a restaurant
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Load configuration
	configuration := loadConfig()

	// Initialize logger
	closer := logging.Setup(logging.Options{
		Environment: configuration.Environment,
		Level:       configuration.LogLevel,
		File:        configuration.LogFile,
	})
	defer closer.Close()

	if configuration.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database connection
	db := setupDatabase(configuration)
	purgeExpiredTokens(db)

	redisClient := setupRedis(configuration)
	if redisClient != nil {
		defer redisClient.Close()
	}

	publisher, err := events.NewPublisher(events.Config{
		Driver:       configuration.EventsDriver,
		KafkaBrokers: configuration.KafkaBrokers,
		KafkaTopic:   configuration.KafkaTopic,
		AMQPURL:      configuration.AMQPURL,
		AMQPExchange: configuration.AMQPExchange,
	})
	checkPanicErr(err)
	defer closeQuietly(publisher, "event publisher")

	opts := server.Options{
		DB:            db,
		Cache:         cache.Nop{},
		Carts:         cart.NewMemoryStore(),
		Publisher:     publisher,
		JWTSecret:     configuration.JWTSecret,
		PublicBaseURL: configuration.PublicBaseURL,
		CORSOrigins:   configuration.CORSOrigins,
	}
	if redisClient != nil {
		opts.Cache = cache.NewRedisCache(redisClient, configuration.CacheTTL)
		opts.Carts = cart.NewRedisStore(redisClient, configuration.CartTTL)
	} else {
		log.Warn("REDIS_URL not set, caching disabled and carts kept in memory")
	}

	router := server.NewRouter(opts, server.NewServices(opts))
	run(router, configuration)
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	return conf
}

// setupDatabase connects, migrates and optionally seeds the database
func setupDatabase(conf *config.Config) *gorm.DB {
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
	checkPanicErr(err)
	checkPanicErr(database.Migrate(db))

	if conf.SeedOnStart {
		checkPanicErr(database.SeedIfEmpty(db, conf.SeedFile))
	}
	return db
}

// purgeExpiredTokens drops OAuth tokens that can no longer be used
func purgeExpiredTokens(db *gorm.DB) {
	removed, err := auth.NewGormTokenStore(db).PurgeExpired(context.Background(), time.Now())
	if err != nil {
		log.WithError(err).Warn("Failed to purge expired OAuth tokens")
		return
	}
	if removed > 0 {
		log.WithField("removed", removed).Info("Purged expired OAuth tokens")
	}
}

// setupRedis returns nil when no Redis URL is configured
func setupRedis(conf *config.Config) *redis.Client {
	if conf.RedisURL == "" {
		return nil
	}
	redisOpts, err := redis.ParseURL(conf.RedisURL)
	checkPanicErr(err)
	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("Redis is not reachable yet")
	}
	return client
}

func closeQuietly(c io.Closer, name string) {
	if err := c.Close(); err != nil {
		log.WithError(err).Warnf("Failed to close %s", name)
	}
}

// run serves until SIGINT or SIGTERM, then drains in-flight requests
func run(handler http.Handler, conf *config.Config) {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", conf.Host, conf.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	idle := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Info("Shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.WithError(err).Error("Error during shutdown")
		}
		close(idle)
	}()

	log.Infof("Starting server on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("Server error")
	}
	<-idle
}
