package models

import "time"

const (
	MinRating = 0
	MaxRating = 5
)

// Review is a rating of a whole order, one per (user, order)
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_review_user_order" json:"user_id"`
	OrderID   uint      `gorm:"not null;uniqueIndex:idx_review_user_order;index" json:"order_id"`
	Order     *Order    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Rating    int       `gorm:"not null;check:rating >= 0 AND rating <= 5" json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DishReview is a rating of a single order line, one per (user, order item)
type DishReview struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;uniqueIndex:idx_dish_review_user_item" json:"user_id"`
	OrderItemID uint       `gorm:"not null;uniqueIndex:idx_dish_review_user_item;index" json:"order_item_id"`
	OrderItem   *OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"order_item,omitempty"`
	Rating      int        `gorm:"not null;check:rating >= 0 AND rating <= 5" json:"rating"`
	Comment     string     `json:"comment"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ReviewInput is a single rating and comment
type ReviewInput struct {
	Rating  *int   `json:"rating" form:"rating" binding:"required"`
	Comment string `json:"comment" form:"comment"`
}

// DishReviewInput rates one order line
type DishReviewInput struct {
	OrderItemID uint   `json:"order_item_id" binding:"required"`
	Rating      *int   `json:"rating" binding:"required"`
	Comment     string `json:"comment"`
}

// Review list sort orders
const (
	SortRatingDesc = "rating_desc"
	SortRatingAsc  = "rating_asc"
	SortTimeAsc    = "time_asc"
	SortTimeDesc   = "time_desc"
)

// ReviewFilter holds the public dish review list query parameters
type ReviewFilter struct {
	Dish    string
	OrderID uint
	Rating  *int
	Sort    string
}
