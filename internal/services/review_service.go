package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/gin-restaurant-api/internal/access"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/cache"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/events"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/models"
	"gorm.io/gorm"
)

// ReviewService upserts and lists order and dish reviews
type ReviewService interface {
	// SubmitReview creates or replaces the principal's review of an order
	SubmitReview(ctx context.Context, principal access.Principal, orderID uint, in models.ReviewInput) (*models.Review, error)
	// GetReview returns the principal's review of an order
	GetReview(ctx context.Context, principal access.Principal, orderID uint) (*models.Review, error)
	// SubmitDishReviews creates or replaces reviews of several lines of one order
	SubmitDishReviews(ctx context.Context, principal access.Principal, orderID uint, in []models.DishReviewInput) ([]models.DishReview, error)
	// DishReviewsForOrder returns the principal's reviews of the lines of an order
	DishReviewsForOrder(ctx context.Context, principal access.Principal, orderID uint) ([]models.DishReview, error)
	// ListDishReviews returns public dish reviews matching filter
	ListDishReviews(ctx context.Context, filter models.ReviewFilter) ([]models.DishReview, error)
}

type reviewService struct {
	db          *gorm.DB
	cache       cache.Cache
	invalidator *cache.Invalidator
	publisher   events.Publisher
}

// NewReviewService creates a new instance of ReviewService
func NewReviewService(db *gorm.DB, c cache.Cache, publisher events.Publisher) ReviewService {
	return &reviewService{db: db, cache: c, invalidator: cache.NewInvalidator(c), publisher: publisher}
}

// ValidateRating rejects ratings outside the allowed range
func ValidateRating(rating int) error {
	if rating < models.MinRating || rating > models.MaxRating {
		return fmt.Errorf("%w, got %d", ErrInvalidRating, rating)
	}
	return nil
}

// requireRating rejects a missing rating and returns the validated value
func requireRating(rating *int) (int, error) {
	if rating == nil {
		return 0, fmt.Errorf("%w: rating is required", ErrInvalidRating)
	}
	return *rating, ValidateRating(*rating)
}

// ownedOrder loads an order of the principal. Orders of other users are not found.
func (s *reviewService) ownedOrder(db *gorm.DB, principal access.Principal, orderID uint) (*models.Order, error) {
	var order models.Order
	err := db.Where("id = ? AND consumer_id = ?", orderID, principal.UserID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *reviewService) SubmitReview(ctx context.Context, principal access.Principal, orderID uint, in models.ReviewInput) (*models.Review, error) {
	rating, err := requireRating(in.Rating)
	if err != nil {
		return nil, err
	}

	var review models.Review
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.ownedOrder(tx, principal, orderID); err != nil {
			return err
		}
		err := tx.Where("user_id = ? AND order_id = ?", principal.UserID, orderID).First(&review).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			review = models.Review{UserID: principal.UserID, OrderID: orderID, Rating: rating, Comment: in.Comment}
			return tx.Create(&review).Error
		case err != nil:
			return err
		}
		review.Rating = rating
		review.Comment = in.Comment
		return tx.Model(&review).Updates(map[string]interface{}{
			"rating":  rating,
			"comment": in.Comment,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.invalidator.Invalidate(ctx, cache.ReviewSubmitted, cache.Scope{OrderID: orderID, UserID: principal.UserID})
	publish(ctx, s.publisher, events.Event{
		Type:    events.ReviewSubmitted,
		OrderID: orderID,
		UserID:  principal.UserID,
		Rating:  &rating,
	})
	return &review, nil
}

func (s *reviewService) GetReview(ctx context.Context, principal access.Principal, orderID uint) (*models.Review, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.ownedOrder(db, principal, orderID); err != nil {
		return nil, err
	}
	var review models.Review
	err := db.Where("user_id = ? AND order_id = ?", principal.UserID, orderID).First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (s *reviewService) SubmitDishReviews(ctx context.Context, principal access.Principal, orderID uint, in []models.DishReviewInput) ([]models.DishReview, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: at least one dish review is required", ErrInvalidReview)
	}
	seen := make(map[uint]bool, len(in))
	ratings := make([]int, len(in))
	for i, entry := range in {
		rating, err := requireRating(entry.Rating)
		if err != nil {
			return nil, err
		}
		ratings[i] = rating
		if seen[entry.OrderItemID] {
			return nil, fmt.Errorf("%w: order item %d is reviewed twice", ErrInvalidReview, entry.OrderItemID)
		}
		seen[entry.OrderItemID] = true
	}

	reviews := make([]models.DishReview, 0, len(in))
	var dishIDs []uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.ownedOrder(tx, principal, orderID); err != nil {
			return err
		}
		var items []models.OrderItem
		if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
			return err
		}
		byID := make(map[uint]models.OrderItem, len(items))
		for _, item := range items {
			byID[item.ID] = item
		}
		for _, entry := range in {
			if _, ok := byID[entry.OrderItemID]; !ok {
				return fmt.Errorf("%w: %d", ErrOrderItemNotFound, entry.OrderItemID)
			}
		}

		for i, entry := range in {
			var review models.DishReview
			err := tx.Where("user_id = ? AND order_item_id = ?", principal.UserID, entry.OrderItemID).First(&review).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				review = models.DishReview{UserID: principal.UserID, OrderItemID: entry.OrderItemID, Rating: ratings[i], Comment: entry.Comment}
				if err := tx.Create(&review).Error; err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				review.Rating = ratings[i]
				review.Comment = entry.Comment
				if err := tx.Model(&review).Updates(map[string]interface{}{
					"rating":  ratings[i],
					"comment": entry.Comment,
				}).Error; err != nil {
					return err
				}
			}
			reviews = append(reviews, review)
			dishIDs = append(dishIDs, byID[entry.OrderItemID].DishID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidator.Invalidate(ctx, cache.DishReviewSubmitted, cache.Scope{DishIDs: dishIDs, OrderID: orderID, UserID: principal.UserID})
	publish(ctx, s.publisher, events.Event{
		Type:    events.DishReviewSubmitted,
		OrderID: orderID,
		UserID:  principal.UserID,
		DishIDs: dishIDs,
	})
	return reviews, nil
}

func (s *reviewService) DishReviewsForOrder(ctx context.Context, principal access.Principal, orderID uint) ([]models.DishReview, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.ownedOrder(db, principal, orderID); err != nil {
		return nil, err
	}
	reviews := []models.DishReview{}
	err := db.Preload("OrderItem.Dish").
		Joins("JOIN order_items ON order_items.id = dish_reviews.order_item_id").
		Where("order_items.order_id = ? AND dish_reviews.user_id = ?", orderID, principal.UserID).
		Order("dish_reviews.order_item_id").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

var reviewOrderings = map[string]string{
	models.SortRatingDesc: "dish_reviews.rating DESC, dish_reviews.created_at DESC",
	models.SortRatingAsc:  "dish_reviews.rating ASC, dish_reviews.created_at DESC",
	models.SortTimeAsc:    "dish_reviews.created_at ASC, dish_reviews.id ASC",
	models.SortTimeDesc:   "dish_reviews.created_at DESC, dish_reviews.id DESC",
}

func (s *reviewService) ListDishReviews(ctx context.Context, filter models.ReviewFilter) ([]models.DishReview, error) {
	if _, ok := reviewOrderings[filter.Sort]; !ok {
		filter.Sort = models.SortTimeDesc
	}
	if filter.Rating != nil {
		if err := ValidateRating(*filter.Rating); err != nil {
			return nil, err
		}
	}

	return cache.Fetch(ctx, s.cache, cache.ReviewListKey(filter), func() ([]models.DishReview, error) {
		query := s.db.WithContext(ctx).Preload("OrderItem.Dish").
			Joins("JOIN order_items ON order_items.id = dish_reviews.order_item_id").
			Joins("JOIN dishes ON dishes.id = order_items.dish_id")
		if name := strings.TrimSpace(filter.Dish); name != "" {
			like := "%" + strings.ToLower(name) + "%"
			query = query.Where("(LOWER(dishes.name_en) LIKE ? OR LOWER(dishes.name_zh) LIKE ?)", like, like)
		}
		if filter.OrderID != 0 {
			query = query.Where("order_items.order_id = ?", filter.OrderID)
		}
		if filter.Rating != nil {
			query = query.Where("dish_reviews.rating = ?", *filter.Rating)
		}

		reviews := []models.DishReview{}
		if err := query.Order(reviewOrderings[filter.Sort]).Find(&reviews).Error; err != nil {
			return nil, err
		}
		return reviews, nil
	})
}
