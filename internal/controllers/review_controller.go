package controllers

import (
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/gin-restaurant-api/internal/models"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/services"
	"github.com/gin-gonic/gin"
)

// ReviewController handles order and dish reviews
type ReviewController interface {
	// ListReviews lists public dish reviews
	ListReviews(c *gin.Context)
	// GetReview returns the caller's review of an order
	GetReview(c *gin.Context)
	// SubmitReview creates or replaces the caller's review of an order
	SubmitReview(c *gin.Context)
	// GetDishReviews returns the caller's reviews of the lines of an order
	GetDishReviews(c *gin.Context)
	// SubmitDishReviews creates or replaces reviews of several order lines at once
	SubmitDishReviews(c *gin.Context)
}

type reviewController struct {
	service services.ReviewService
}

// NewReviewController creates a new instance of ReviewController
func NewReviewController(service services.ReviewService) ReviewController {
	return &reviewController{service: service}
}

// DishReviewsRequest is the multi line dish review payload
type DishReviewsRequest struct {
	Reviews []models.DishReviewInput `json:"reviews" binding:"required,dive"`
}

// ListReviews godoc
// @Summary List dish reviews
// @Description Get dish reviews with optional filters
// @Tags reviews
// @Produce json
// @Param dish query string false "Dish name contains"
// @Param order_id query int false "Order ID"
// @Param rating query int false "Exact rating, 0 to 5"
// @Param sort query string false "rating_desc, rating_asc, time_asc or time_desc (default)"
// @Success 200 {array} models.DishReview
// @Failure 400 {object} models.APIError
// @Router /api/v1/public/reviews [get]
func (r *reviewController) ListReviews(c *gin.Context) {
	filter := models.ReviewFilter{Dish: c.Query("dish"), Sort: c.Query("sort")}
	if raw := c.Query("order_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			invalidInput(c, "Invalid order_id", err)
			return
		}
		filter.OrderID = uint(id)
	}
	if raw := c.Query("rating"); raw != "" {
		rating, err := strconv.Atoi(raw)
		if err != nil {
			invalidInput(c, "Invalid rating", err)
			return
		}
		filter.Rating = &rating
	}

	reviews, err := r.service.ListDishReviews(c.Request.Context(), filter)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// GetReview godoc
// @Summary Get order review
// @Description Get the caller's review of one of their orders
// @Tags reviews
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.Review
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/orders/{id}/review [get]
func (r *reviewController) GetReview(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	review, err := r.service.GetReview(c.Request.Context(), p, orderID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// SubmitReview godoc
// @Summary Submit order review
// @Description Create or replace the caller's rating and comment of an order
// @Tags reviews
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param id path int true "Order ID"
// @Param review body models.ReviewInput true "Rating 0 to 5 and comment"
// @Success 200 {object} models.Review
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/orders/{id}/review [post]
func (r *reviewController) SubmitReview(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in models.ReviewInput
	if err := c.ShouldBind(&in); err != nil {
		invalidInput(c, "Invalid request body", err)
		return
	}
	review, err := r.service.SubmitReview(c.Request.Context(), p, orderID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// GetDishReviews godoc
// @Summary Get dish reviews of an order
// @Description Get the caller's reviews of the lines of one of their orders
// @Tags reviews
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {array} models.DishReview
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/orders/{id}/dish-reviews [get]
func (r *reviewController) GetDishReviews(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	reviews, err := r.service.DishReviewsForOrder(c.Request.Context(), p, orderID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// SubmitDishReviews godoc
// @Summary Submit dish reviews
// @Description Create or replace reviews of several lines of an order. Either every review is saved or none is.
// @Tags reviews
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param reviews body DishReviewsRequest true "One entry per order line"
// @Success 200 {array} models.DishReview
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/orders/{id}/dish-reviews [post]
func (r *reviewController) SubmitDishReviews(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req DishReviewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, "Invalid request body", err)
		return
	}
	reviews, err := r.service.SubmitDishReviews(c.Request.Context(), p, orderID, req.Reviews)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}
