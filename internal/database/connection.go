package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-restaurant-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// retryDelays is the wait before each reconnect attempt
var retryDelays = []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}

// InitDatabase opens the database named by cfg and verifies it answers.
// Both PostgreSQL and SQLite are supported. A database that is still starting
// is retried with exponential backoff before giving up.
func InitDatabase(cfg DatabaseConfig) (*gorm.DB, error) {
	cfg.Driver = strings.ToLower(cfg.Driver)
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"db_driver": cfg.Driver,
		"db_host":   cfg.Host,
		"db_name":   cfg.Name,
		"db_path":   cfg.Path,
	}).Info("Initializing database connection")

	attempts := len(retryDelays) + 1
	for attempt := 1; ; attempt++ {
		db, err := connect(dialector)
		if err == nil {
			sqlDB, _ := db.DB()
			configureConnectionPool(sqlDB, cfg.Driver)
			log.WithFields(logrus.Fields{
				"db_driver": cfg.Driver,
				"attempt":   attempt,
			}).Info("Database initialized successfully")
			return db, nil
		}

		entry := log.WithError(err).WithFields(logrus.Fields{"attempt": attempt, "max_retries": attempts})
		if attempt == attempts {
			entry.Error("Database connection attempt failed")
			return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempts, err)
		}
		delay := retryDelays[attempt-1]
		entry.WithField("delay", delay.String()).Warn("Database connection attempt failed, retrying")
		time.Sleep(delay)
	}
}

func dialectorFor(cfg DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres", "postgresql":
		return postgres.Open(cfg.DSN()), nil
	case "sqlite", "":
		return sqlite.Open(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s (supported: postgres, sqlite)", cfg.Driver)
	}
}

// connect opens a pool and pings it once
func connect(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, gormConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}
}

// Migrate creates or updates the schema of every persisted model
func Migrate(db *gorm.DB) error {
	log.Info("Running database migrations")
	return db.AutoMigrate(
		&models.User{},
		&models.Dish{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
		&models.DishReview{},
		&models.OAuthClient{},
		&models.OAuthToken{},
	)
}

// configureConnectionPool sizes the pool for the driver.
// SQLite serializes writers, so it gets a single connection.
func configureConnectionPool(sqlDB *sql.DB, driver string) {
	maxOpen, maxIdle := 25, 5
	if driver == "sqlite" || driver == "" {
		maxOpen, maxIdle = 1, 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	log.WithFields(logrus.Fields{
		"max_open_conns":    maxOpen,
		"max_idle_conns":    maxIdle,
		"conn_max_lifetime": "5m",
	}).Debug("Connection pool configured")
}
