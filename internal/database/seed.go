package database

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/franciscosanchezn/gin-restaurant-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// SeedDish is one dish entry of a menu seed file
type SeedDish struct {
	NameZh        string `yaml:"name_zh"`
	NameEn        string `yaml:"name_en"`
	DescriptionZh string `yaml:"description_zh"`
	DescriptionEn string `yaml:"description_en"`
	Price         string `yaml:"price"`
	ImageURL      string `yaml:"image_url"`
	Available     *bool  `yaml:"available"`
}

// SeedFile is the document layout of a menu seed file
type SeedFile struct {
	Dishes []SeedDish `yaml:"dishes"`
}

// ParseSeed decodes a YAML menu into dish records
func ParseSeed(data []byte) ([]models.Dish, error) {
	var file SeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	dishes := make([]models.Dish, 0, len(file.Dishes))
	for i, entry := range file.Dishes {
		if entry.NameEn == "" && entry.NameZh == "" {
			return nil, fmt.Errorf("dish %d: a name is required", i+1)
		}
		price, err := decimal.NewFromString(entry.Price)
		if err != nil {
			return nil, fmt.Errorf("dish %d (%s): invalid price %q", i+1, entry.NameEn, entry.Price)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("dish %d (%s): price must not be negative", i+1, entry.NameEn)
		}
		available := true
		if entry.Available != nil {
			available = *entry.Available
		}
		dishes = append(dishes, models.Dish{
			NameZh:        entry.NameZh,
			NameEn:        entry.NameEn,
			DescriptionZh: entry.DescriptionZh,
			DescriptionEn: entry.DescriptionEn,
			Price:         price.Round(2),
			ImageURL:      entry.ImageURL,
			IsAvailable:   available,
		})
	}
	return dishes, nil
}

// LoadSeedFile reads and parses a YAML menu file
func LoadSeedFile(path string) ([]models.Dish, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(data)
}

var (
	sampleNamesZh = []string{"麻婆豆腐", "宮保雞丁", "紅燒肉", "炒飯", "酸辣湯", "小籠包", "牛肉麵", "蔥油餅"}
	sampleNamesEn = []string{"Mapo Tofu", "Kung Pao Chicken", "Braised Pork", "Fried Rice", "Hot And Sour Soup", "Soup Dumplings", "Beef Noodles", "Scallion Pancake"}
)

// RandomDishes generates count available sample dishes priced between 80 and 300
func RandomDishes(count int, rng *rand.Rand) []models.Dish {
	dishes := make([]models.Dish, 0, count)
	for i := 0; i < count; i++ {
		n := rng.Intn(len(sampleNamesEn))
		cents := 8000 + rng.Int63n(22001)
		dishes = append(dishes, models.Dish{
			NameZh:        sampleNamesZh[n],
			NameEn:        fmt.Sprintf("%s #%d", sampleNamesEn[n], i+1),
			DescriptionZh: "主廚推薦" + sampleNamesZh[n],
			DescriptionEn: "Chef's " + sampleNamesEn[n],
			Price:         decimal.New(cents, -2),
			ImageURL:      fmt.Sprintf("https://picsum.photos/seed/dish-%d/400/300", i+1),
			IsAvailable:   true,
		})
	}
	return dishes
}

// SeedDishes inserts dishes in batches and returns how many were created
func SeedDishes(db *gorm.DB, dishes []models.Dish) (int, error) {
	if len(dishes) == 0 {
		return 0, nil
	}
	if err := db.CreateInBatches(dishes, 50).Error; err != nil {
		return 0, fmt.Errorf("failed to seed dishes: %w", err)
	}
	return len(dishes), nil
}

// SeedIfEmpty fills an empty catalog from path, or with generated dishes when path is empty
func SeedIfEmpty(db *gorm.DB, path string) error {
	var count int64
	if err := db.Model(&models.Dish{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.WithField("dishes", count).Info("Database already seeded with initial data")
		return nil
	}

	log.Info("Database is empty, seeding initial data")
	var dishes []models.Dish
	if path != "" {
		loaded, err := LoadSeedFile(path)
		if err != nil {
			return err
		}
		dishes = loaded
	} else {
		dishes = RandomDishes(10, rand.New(rand.NewSource(1)))
	}

	created, err := SeedDishes(db, dishes)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"dishes": created,
		"source": path,
	}).Info("Database seeded successfully")
	return nil
}
