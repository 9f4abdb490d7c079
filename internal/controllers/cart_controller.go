package controllers

import (
	"context"
	"net/http"

	"github.com/franciscosanchezn/gin-restaurant-api/internal/cart"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/services"
	"github.com/gin-gonic/gin"
)

// CartController handles the session cart of the authenticated user
type CartController interface {
	// ViewCart shows the resolved cart
	ViewCart(c *gin.Context)
	// AddToCart adds one unit of a dish
	AddToCart(c *gin.Context)
	// RemoveFromCart removes one unit of a dish
	RemoveFromCart(c *gin.Context)
	// PickupTimes lists the pickup choices offered at checkout
	PickupTimes(c *gin.Context)
}

type cartController struct {
	carts  services.CartService
	orders services.OrderService
}

// NewCartController creates a new instance of CartController
func NewCartController(carts services.CartService, orders services.OrderService) CartController {
	return &cartController{carts: carts, orders: orders}
}

// ViewCart godoc
// @Summary View cart
// @Description Get the cart lines with subtotals and the total. Dishes removed from the menu are dropped.
// @Tags cart
// @Produce json
// @Success 200 {object} services.CartView
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/cart [get]
func (cc *cartController) ViewCart(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	view, err := cc.carts.View(c.Request.Context(), cart.SessionKey(p.UserID))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// AddToCart godoc
// @Summary Add dish to cart
// @Description Increment the quantity of a dish in the cart
// @Tags cart
// @Produce json
// @Param id path int true "Dish ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/cart/add/{id} [post]
func (cc *cartController) AddToCart(c *gin.Context) {
	cc.mutate(c, cc.carts.Add)
}

// RemoveFromCart godoc
// @Summary Remove dish from cart
// @Description Decrement the quantity of a dish in the cart, dropping it at zero
// @Tags cart
// @Produce json
// @Param id path int true "Dish ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/cart/remove/{id} [post]
func (cc *cartController) RemoveFromCart(c *gin.Context) {
	cc.mutate(c, cc.carts.Remove)
}

func (cc *cartController) mutate(c *gin.Context, op func(ctx context.Context, session string, dishID uint) (cart.Cart, error)) {
	p, ok := principal(c)
	if !ok {
		return
	}
	dishID, ok := pathID(c, "id")
	if !ok {
		return
	}
	updated, err := op(c.Request.Context(), cart.SessionKey(p.UserID), dishID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"dish_id":  dishID,
		"quantity": updated.Quantity(dishID),
		"cart":     updated,
	})
}

// PickupTimes godoc
// @Summary Pickup times
// @Description List "now" followed by the remaining quarter hour pickup slots of today
// @Tags cart
// @Produce json
// @Success 200 {array} string
// @Security BearerAuth
// @Router /api/v1/protected/cart/pickup-times [get]
func (cc *cartController) PickupTimes(c *gin.Context) {
	c.JSON(http.StatusOK, cc.orders.PickupTimes())
}
