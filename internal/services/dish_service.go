package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/gin-restaurant-api/internal/cache"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/models"
	"gorm.io/gorm"
)

// DishService provides access to the dish catalog
type DishService interface {
	// ListDishes returns the available dishes matching filter
	ListDishes(ctx context.Context, filter models.DishFilter) ([]models.Dish, error)
	// GetDish returns a dish by id
	GetDish(ctx context.Context, id uint) (*models.Dish, error)
	// ListAllDishes returns every dish including unavailable ones
	ListAllDishes(ctx context.Context) ([]models.Dish, error)
	// CreateDish adds a dish to the catalog
	CreateDish(ctx context.Context, in models.DishInput) (*models.Dish, error)
	// UpdateDish replaces the editable fields of a dish
	UpdateDish(ctx context.Context, id uint, in models.DishInput) (*models.Dish, error)
	// DeleteDish removes a dish that no order references
	DeleteDish(ctx context.Context, id uint) error
	// DishReviews returns the reviews left on order lines of a dish, newest first
	DishReviews(ctx context.Context, id uint) ([]models.DishReview, error)
}

type dishService struct {
	db          *gorm.DB
	cache       cache.Cache
	invalidator *cache.Invalidator
}

// NewDishService creates a new instance of DishService
func NewDishService(db *gorm.DB, c cache.Cache) DishService {
	return &dishService{db: db, cache: c, invalidator: cache.NewInvalidator(c)}
}

func (s *dishService) ListDishes(ctx context.Context, filter models.DishFilter) ([]models.Dish, error) {
	return cache.Fetch(ctx, s.cache, cache.DishListKey(filter), func() ([]models.Dish, error) {
		query := s.db.WithContext(ctx).Where("is_available = ?", true)
		if term := strings.TrimSpace(filter.Query); term != "" {
			like := "%" + strings.ToLower(term) + "%"
			query = query.Where("(LOWER(name_zh) LIKE ? OR LOWER(name_en) LIKE ? OR LOWER(description_zh) LIKE ? OR LOWER(description_en) LIKE ?)",
				like, like, like, like)
		}
		if filter.MinPrice != nil {
			query = query.Where("price >= ?", *filter.MinPrice)
		}
		if filter.MaxPrice != nil {
			query = query.Where("price <= ?", *filter.MaxPrice)
		}

		dishes := []models.Dish{}
		if err := query.Order("id").Find(&dishes).Error; err != nil {
			return nil, err
		}
		return dishes, nil
	})
}

func (s *dishService) GetDish(ctx context.Context, id uint) (*models.Dish, error) {
	return cache.Fetch(ctx, s.cache, cache.DishDetailKey(id), func() (*models.Dish, error) {
		return s.find(s.db.WithContext(ctx), id)
	})
}

func (s *dishService) find(db *gorm.DB, id uint) (*models.Dish, error) {
	var dish models.Dish
	if err := db.First(&dish, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDishNotFound
		}
		return nil, err
	}
	return &dish, nil
}

func (s *dishService) ListAllDishes(ctx context.Context) ([]models.Dish, error) {
	dishes := []models.Dish{}
	if err := s.db.WithContext(ctx).Order("id").Find(&dishes).Error; err != nil {
		return nil, err
	}
	return dishes, nil
}

func validateDishInput(in models.DishInput) error {
	if strings.TrimSpace(in.NameEn) == "" || strings.TrimSpace(in.NameZh) == "" {
		return fmt.Errorf("%w: name_en and name_zh are both required", ErrInvalidDish)
	}
	if in.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidDish)
	}
	return nil
}

func (s *dishService) CreateDish(ctx context.Context, in models.DishInput) (*models.Dish, error) {
	if err := validateDishInput(in); err != nil {
		return nil, err
	}
	var dish models.Dish
	in.Apply(&dish)
	if err := s.db.WithContext(ctx).Create(&dish).Error; err != nil {
		return nil, err
	}
	s.invalidator.Invalidate(ctx, cache.DishCreated, cache.Scope{DishIDs: []uint{dish.ID}})
	return &dish, nil
}

func (s *dishService) UpdateDish(ctx context.Context, id uint, in models.DishInput) (*models.Dish, error) {
	if err := validateDishInput(in); err != nil {
		return nil, err
	}
	dish, err := s.find(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	in.Apply(dish)
	if err := s.db.WithContext(ctx).Save(dish).Error; err != nil {
		return nil, err
	}
	s.invalidator.Invalidate(ctx, cache.DishUpdated, cache.Scope{DishIDs: []uint{id}})
	return dish, nil
}

func (s *dishService) DeleteDish(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.find(tx, id); err != nil {
			return err
		}
		var refs int64
		if err := tx.Model(&models.OrderItem{}).Where("dish_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return ErrDishInUse
		}
		return tx.Delete(&models.Dish{}, id).Error
	})
	if err != nil {
		return err
	}
	s.invalidator.Invalidate(ctx, cache.DishDeleted, cache.Scope{DishIDs: []uint{id}})
	return nil
}

func (s *dishService) DishReviews(ctx context.Context, id uint) ([]models.DishReview, error) {
	return cache.Fetch(ctx, s.cache, cache.DishReviewsKey(id), func() ([]models.DishReview, error) {
		reviews := []models.DishReview{}
		err := s.db.WithContext(ctx).
			Joins("JOIN order_items ON order_items.id = dish_reviews.order_item_id").
			Where("order_items.dish_id = ?", id).
			Order("dish_reviews.created_at DESC, dish_reviews.id DESC").
			Find(&reviews).Error
		if err != nil {
			return nil, err
		}
		return reviews, nil
	})
}
