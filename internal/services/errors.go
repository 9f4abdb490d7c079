package services

import "errors"

var (
	ErrDishNotFound         = errors.New("dish not found")
	ErrDishInUse            = errors.New("dish is referenced by existing orders")
	ErrInvalidDish          = errors.New("invalid dish data")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInvalidPickupTime    = errors.New("invalid pickup time")
	ErrNotPermitted         = errors.New("operation not permitted for this role")
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderAlreadyFinished = errors.New("order is already finished")
	ErrInvalidOrderState    = errors.New("invalid order state")
	ErrOrderItemNotFound    = errors.New("order item not found")
	ErrInvalidRating        = errors.New("rating must be between 0 and 5")
	ErrInvalidReview        = errors.New("invalid review")
	ErrReviewNotFound       = errors.New("review not found")
	ErrInvalidReportPeriod  = errors.New("invalid report period")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrClientNotFound       = errors.New("client not found")
)
