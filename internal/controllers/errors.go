package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/gin-restaurant-api/internal/access"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/middleware"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/models"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// errorTable maps service errors to HTTP responses, first match wins
var errorTable = []errorMapping{
	{services.ErrDishNotFound, http.StatusNotFound, models.ErrDishNotFound},
	{services.ErrInvalidDish, http.StatusBadRequest, models.ErrDishInvalidData},
	{services.ErrDishInUse, http.StatusConflict, models.ErrDishInUse},
	{services.ErrEmptyCart, http.StatusBadRequest, models.ErrEmptyCart},
	{services.ErrInvalidPickupTime, http.StatusBadRequest, models.ErrInvalidPickupTime},
	{services.ErrNotPermitted, http.StatusForbidden, models.ErrForbidden},
	{services.ErrOrderNotFound, http.StatusNotFound, models.ErrOrderNotFound},
	{services.ErrOrderAlreadyFinished, http.StatusConflict, models.ErrOrderAlreadyFinished},
	{services.ErrInvalidOrderState, http.StatusBadRequest, models.ErrBadRequest},
	{services.ErrOrderItemNotFound, http.StatusBadRequest, models.ErrOrderItemNotFound},
	{services.ErrInvalidRating, http.StatusBadRequest, models.ErrInvalidRating},
	{services.ErrInvalidReview, http.StatusBadRequest, models.ErrValidationFailed},
	{services.ErrReviewNotFound, http.StatusNotFound, models.ErrNotFound},
	{services.ErrInvalidReportPeriod, http.StatusBadRequest, models.ErrBadRequest},
	{services.ErrUserAlreadyExists, http.StatusConflict, models.ErrConflict},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, models.ErrUnauthorized},
	{services.ErrClientNotFound, http.StatusNotFound, models.ErrNotFound},
}

// respondWithError writes the APIError for err. Unknown errors are logged and hidden.
func respondWithError(c *gin.Context, err error) {
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			c.JSON(m.status, models.NewAPIError(m.code, err.Error()))
			return
		}
	}
	log.WithError(err).WithFields(log.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
	}).Error("Request failed")
	c.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Internal server error"))
}

// invalidInput writes a 400 for a payload or query that failed binding
func invalidInput(c *gin.Context, message string, err error) {
	c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, message, map[string]interface{}{
		"error": err.Error(),
	}))
}

// pathID parses a positive numeric path parameter
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid "+name+" format"))
		return 0, false
	}
	return uint(id), true
}

// principal returns the authenticated caller or writes a 401
func principal(c *gin.Context) (access.Principal, bool) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, "User not authenticated"))
	}
	return p, ok
}
