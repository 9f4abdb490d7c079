package middleware

import (
	"net/http"

	"github.com/franciscosanchezn/gin-restaurant-api/internal/access"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/models"
	"github.com/gin-gonic/gin"
)

// CurrentPrincipal returns the caller set by OAuth2Auth
func CurrentPrincipal(c *gin.Context) (access.Principal, bool) {
	userID, ok := c.Get(ContextUserID)
	if !ok {
		return access.Principal{}, false
	}
	id, ok := userID.(uint)
	if !ok {
		return access.Principal{}, false
	}
	role, ok := c.Get(ContextUserRole)
	if !ok {
		return access.Principal{}, false
	}
	r, ok := role.(access.Role)
	if !ok {
		return access.Principal{}, false
	}
	return access.Principal{UserID: id, Role: r}, true
}

// RequireCapability is a middleware that checks if the caller's role grants capability.
func RequireCapability(capability access.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := CurrentPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, "User not authenticated"))
			return
		}

		if !principal.Can(capability) {
			c.AbortWithStatusJSON(http.StatusForbidden, models.NewAPIError(models.ErrForbidden, "Insufficient permissions", map[string]interface{}{
				"required_capability": capability.String(),
				"user_role":           principal.Role,
				"user_id":             principal.UserID,
			}))
			return
		}

		c.Next()
	}
}
