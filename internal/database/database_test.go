package database

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Migrate(db))
	return db
}

func TestDSN(t *testing.T) {
	testCases := []struct {
		name     string
		cfg      DatabaseConfig
		expected string
	}{
		{
			name:     "sqlite path enables foreign keys",
			cfg:      DatabaseConfig{Driver: "sqlite", Path: "restaurant.sqlite"},
			expected: "restaurant.sqlite?_foreign_keys=on",
		},
		{
			name:     "sqlite path with params",
			cfg:      DatabaseConfig{Driver: "sqlite", Path: "file:test.db?cache=shared"},
			expected: "file:test.db?cache=shared&_foreign_keys=on",
		},
		{
			name:     "postgres fields",
			cfg:      DatabaseConfig{Driver: "postgres", Host: "db", Port: "5432", User: "app", Password: "pw", Name: "restaurant", SSLMode: "disable"},
			expected: "host=db user=app password=pw dbname=restaurant port=5432 sslmode=disable",
		},
		{
			name:     "postgres url wins",
			cfg:      DatabaseConfig{Driver: "postgres", URL: "postgres://app:pw@db/restaurant", Host: "ignored"},
			expected: "postgres://app:pw@db/restaurant",
		},
		{
			name:     "unknown driver",
			cfg:      DatabaseConfig{Driver: "oracle"},
			expected: "",
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.cfg.DSN())
		})
	}
}

func TestDatabaseConfigStringMasksPassword(t *testing.T) {
	cfg := DatabaseConfig{Driver: "postgres", Password: "hunter2"}
	assert.NotContains(t, cfg.String(), "hunter2")
}

func TestInitDatabaseUnsupportedDriver(t *testing.T) {
	_, err := InitDatabase(DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestInitDatabaseGivesUpAfterRetries(t *testing.T) {
	saved := retryDelays
	retryDelays = []time.Duration{time.Millisecond, time.Millisecond}
	defer func() { retryDelays = saved }()

	path := filepath.Join(t.TempDir(), "missing", "dir", "restaurant.sqlite")
	_, err := InitDatabase(DatabaseConfig{Driver: "SQLite", Path: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestInitDatabaseSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "restaurant.sqlite")
	db, err := InitDatabase(DatabaseConfig{Driver: "sqlite", Path: path})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	var fk int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk)
}

func TestPing(t *testing.T) {
	db := setupTestDB(t)
	assert.NoError(t, Ping(context.Background(), db))
}

func TestPingFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)

	mock.ExpectExec("SELECT 1").WillReturnError(errors.New("connection refused"))

	err = Ping(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParseSeed(t *testing.T) {
	data := []byte(`
dishes:
  - name_zh: 麻婆豆腐
    name_en: Mapo Tofu
    description_en: Silken tofu in chili bean sauce
    price: "150.00"
  - name_zh: 炒飯
    name_en: Fried Rice
    price: "88.5"
    available: false
`)
	dishes, err := ParseSeed(data)
	require.NoError(t, err)
	require.Len(t, dishes, 2)
	assert.Equal(t, "Mapo Tofu", dishes[0].NameEn)
	assert.Equal(t, "150.00", dishes[0].Price.StringFixed(2))
	assert.True(t, dishes[0].IsAvailable)
	assert.False(t, dishes[1].IsAvailable)
}

func TestParseSeedRejectsInvalidEntries(t *testing.T) {
	testCases := map[string]string{
		"bad price":      "dishes:\n  - name_en: Soup\n    price: cheap\n",
		"negative price": "dishes:\n  - name_en: Soup\n    price: \"-1\"\n",
		"missing name":   "dishes:\n  - price: \"10\"\n",
		"not yaml":       "dishes: [",
	}
	for name, doc := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSeed([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestRandomDishes(t *testing.T) {
	dishes := RandomDishes(25, rand.New(rand.NewSource(42)))
	require.Len(t, dishes, 25)
	for _, d := range dishes {
		assert.True(t, d.Price.GreaterThanOrEqual(decimal.NewFromInt(80)), d.NameEn)
		assert.True(t, d.Price.LessThanOrEqual(decimal.NewFromInt(300)), d.NameEn)
		assert.True(t, d.IsAvailable)
	}
}

func TestSeedIfEmpty(t *testing.T) {
	db := setupTestDB(t)
	path := filepath.Join(t.TempDir(), "menu.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dishes:\n  - name_en: Mapo Tofu\n    name_zh: 麻婆豆腐\n    price: \"150\"\n"), 0o600))

	require.NoError(t, SeedIfEmpty(db, path))
	require.NoError(t, SeedIfEmpty(db, path), "second run is a no-op")

	var count int64
	require.NoError(t, db.Model(&models.Dish{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
