package controllers

import (
	"net/http"
	"strings"

	"github.com/franciscosanchezn/gin-restaurant-api/internal/models"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// DishController handles HTTP requests related to the dish catalog
type DishController interface {
	// ListDishes retrieves available dishes with optional filtering
	ListDishes(c *gin.Context)
	// GetDish retrieves a dish with its reviews
	GetDish(c *gin.Context)
	// ListAllDishes retrieves every dish for staff
	ListAllDishes(c *gin.Context)
	// CreateDish creates a new dish
	CreateDish(c *gin.Context)
	// UpdateDish updates an existing dish
	UpdateDish(c *gin.Context)
	// DeleteDish deletes a dish by its ID
	DeleteDish(c *gin.Context)
}

type dishController struct {
	service services.DishService
}

// NewDishController creates a new instance of DishController
func NewDishController(service services.DishService) DishController {
	return &dishController{service: service}
}

// DishDetail is a dish together with the reviews left on it
type DishDetail struct {
	Dish    *models.Dish        `json:"dish"`
	Reviews []models.DishReview `json:"reviews"`
}

func parsePrice(raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	return &price, nil
}

// ListDishes godoc
// @Summary List dishes
// @Description Get the available dishes, optionally filtered by text and price range
// @Tags dishes
// @Produce json
// @Param q query string false "Case insensitive match on names and descriptions"
// @Param min_price query string false "Minimum price, inclusive"
// @Param max_price query string false "Maximum price, inclusive"
// @Success 200 {array} models.Dish
// @Failure 400 {object} models.APIError
// @Router /api/v1/public/dishes [get]
func (d *dishController) ListDishes(c *gin.Context) {
	minPrice, err := parsePrice(c.Query("min_price"))
	if err != nil {
		invalidInput(c, "Invalid min_price", err)
		return
	}
	maxPrice, err := parsePrice(c.Query("max_price"))
	if err != nil {
		invalidInput(c, "Invalid max_price", err)
		return
	}

	dishes, err := d.service.ListDishes(c.Request.Context(), models.DishFilter{
		Query:    c.Query("q"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dishes)
}

// GetDish godoc
// @Summary Get dish by ID
// @Description Get a single dish and the reviews left on it
// @Tags dishes
// @Produce json
// @Param id path int true "Dish ID"
// @Success 200 {object} DishDetail
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/v1/public/dishes/{id} [get]
func (d *dishController) GetDish(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	dish, err := d.service.GetDish(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	reviews, err := d.service.DishReviews(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, DishDetail{Dish: dish, Reviews: reviews})
}

// ListAllDishes godoc
// @Summary List all dishes
// @Description Get every dish including unavailable ones
// @Tags staff
// @Produce json
// @Success 200 {array} models.Dish
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/staff/dishes [get]
func (d *dishController) ListAllDishes(c *gin.Context) {
	dishes, err := d.service.ListAllDishes(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dishes)
}

// CreateDish godoc
// @Summary Create a new dish
// @Description Create a new dish with the input payload
// @Tags staff
// @Accept json
// @Produce json
// @Param dish body models.DishInput true "Dish object"
// @Success 201 {object} models.Dish
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/staff/dishes [post]
func (d *dishController) CreateDish(c *gin.Context) {
	var in models.DishInput
	if err := c.ShouldBindJSON(&in); err != nil {
		invalidInput(c, "Invalid request body", err)
		return
	}
	dish, err := d.service.CreateDish(c.Request.Context(), in)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dish)
}

// UpdateDish godoc
// @Summary Update a dish
// @Description Replace the editable fields of a dish
// @Tags staff
// @Accept json
// @Produce json
// @Param id path int true "Dish ID"
// @Param dish body models.DishInput true "Dish object"
// @Success 200 {object} models.Dish
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/staff/dishes/{id} [put]
func (d *dishController) UpdateDish(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in models.DishInput
	if err := c.ShouldBindJSON(&in); err != nil {
		invalidInput(c, "Invalid request body", err)
		return
	}
	dish, err := d.service.UpdateDish(c.Request.Context(), id, in)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dish)
}

// DeleteDish godoc
// @Summary Delete a dish
// @Description Delete a dish that no order references
// @Tags staff
// @Param id path int true "Dish ID"
// @Success 204
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/staff/dishes/{id} [delete]
func (d *dishController) DeleteDish(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := d.service.DeleteDish(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
