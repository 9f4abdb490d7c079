package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/franciscosanchezn/gin-restaurant-api/internal/models"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/qrcode"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/services"
	"github.com/gin-gonic/gin"
)

// CartPath is where an empty checkout sends the caller back to
const CartPath = "/api/v1/protected/cart"

// OrderController handles checkout and order lookups
type OrderController interface {
	// Checkout turns the cart into an order
	Checkout(c *gin.Context)
	// ListOrders returns the caller's order history
	ListOrders(c *gin.Context)
	// GetOrder returns one order with its lines
	GetOrder(c *gin.Context)
	// OrderStatus returns the JSON status of an order
	OrderStatus(c *gin.Context)
	// OrderQRCode returns a PNG QR code linking to the order
	OrderQRCode(c *gin.Context)
	// StaffListOrders returns every order, optionally by state
	StaffListOrders(c *gin.Context)
	// CompleteOrder marks an order as finished
	CompleteOrder(c *gin.Context)
}

type orderController struct {
	service services.OrderService
	qr      qrcode.Generator
}

// NewOrderController creates a new instance of OrderController
func NewOrderController(service services.OrderService, qr qrcode.Generator) OrderController {
	return &orderController{service: service, qr: qr}
}

// CheckoutRequest is the optional checkout payload
type CheckoutRequest struct {
	PickupTime string `json:"pickup_time" form:"pickup_time" example:"18:30"`
}

// Checkout godoc
// @Summary Checkout
// @Description Create an order from the cart. An empty cart redirects back to the cart with a warning.
// @Tags orders
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param pickup_time formData string false "now or HH:MM later today"
// @Success 201 {object} models.Order
// @Success 303 {object} map[string]string "Empty cart"
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/checkout [post]
func (o *orderController) Checkout(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if err := c.ShouldBind(&req); err != nil && !errors.Is(err, io.EOF) {
		invalidInput(c, "Invalid request body", err)
		return
	}

	order, err := o.service.Checkout(c.Request.Context(), p, req.PickupTime)
	if errors.Is(err, services.ErrEmptyCart) {
		c.Header("Location", CartPath)
		c.JSON(http.StatusSeeOther, gin.H{
			"warning":  "Your cart is empty",
			"redirect": CartPath,
		})
		return
	}
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// ListOrders godoc
// @Summary Order history
// @Description Get the caller's orders, newest first
// @Tags orders
// @Produce json
// @Success 200 {array} models.Order
// @Security BearerAuth
// @Router /api/v1/protected/orders [get]
func (o *orderController) ListOrders(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	orders, err := o.service.History(c.Request.Context(), p)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrder godoc
// @Summary Get order
// @Description Get an order with its lines. Orders of other users are not found.
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.Order
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/orders/{id} [get]
func (o *orderController) GetOrder(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := o.service.GetOrder(c.Request.Context(), p, id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// OrderStatus godoc
// @Summary Order status
// @Description Get the state and total of an order
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.OrderStatus
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/orders/{id}/status [get]
func (o *orderController) OrderStatus(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	status, err := o.service.Status(c.Request.Context(), p, id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// OrderQRCode godoc
// @Summary Order QR code
// @Description Get a PNG QR code linking to the order, shown at pickup
// @Tags orders
// @Produce png
// @Param id path int true "Order ID"
// @Success 200 {file} binary
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/orders/{id}/qrcode [get]
func (o *orderController) OrderQRCode(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := o.service.Status(c.Request.Context(), p, id); err != nil {
		respondWithError(c, err)
		return
	}
	png, err := o.qr.Generate(id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// StaffListOrders godoc
// @Summary List all orders
// @Description Get every order for the kitchen, optionally filtered by state
// @Tags staff
// @Produce json
// @Param state query string false "unfinished or finished"
// @Success 200 {array} models.Order
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/staff/orders [get]
func (o *orderController) StaffListOrders(c *gin.Context) {
	orders, err := o.service.ListOrders(c.Request.Context(), c.Query("state"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// CompleteOrder godoc
// @Summary Complete order
// @Description Mark an unfinished order as finished
// @Tags staff
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.OrderStatus
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/staff/orders/{id}/complete [post]
func (o *orderController) CompleteOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := o.service.CompleteOrder(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewOrderStatus(*order))
}
