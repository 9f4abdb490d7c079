package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/franciscosanchezn/gin-restaurant-api/internal/access"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/auth"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by OAuth2Auth
const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
	ContextClientID = "clientID"
	ContextScopes   = "scopes"
	ContextAuthType = "auth_type"
)

var hmacMethods = []string{
	jwt.SigningMethodHS256.Alg(),
	jwt.SigningMethodHS384.Alg(),
	jwt.SigningMethodHS512.Alg(),
}

// accessClaims are the claims shared by login tokens and client credentials tokens.
// uid is a numeric string when issued here but plain numbers are accepted too.
type accessClaims struct {
	UserID json.Number `json:"uid"`
	Role   string      `json:"role"`
	Scope  string      `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// OAuth2Auth middleware that handles OAuth2 JWT access tokens
// This middleware validates JWT tokens and extracts user information from claims
// following RFC 6749 (OAuth2) and RFC 7519 (JWT) specifications
func OAuth2Auth(jwtSecret []byte) gin.HandlerFunc {
	parser := jwt.NewParser(
		jwt.WithValidMethods(hmacMethods),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)

	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			return
		}

		claims := &accessClaims{}
		_, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
			return jwtSecret, nil
		})
		if err != nil {
			respondWithOAuth2Error(c, models.ErrInvalidToken, describeParseError(err))
			return
		}

		principal, err := claims.principal()
		if err != nil {
			respondWithOAuth2Error(c, models.ErrInvalidToken, err.Error())
			return
		}

		c.Set(ContextUserID, principal.UserID)
		c.Set(ContextUserRole, principal.Role)
		if claims.Scope != "" {
			c.Set(ContextScopes, claims.Scope)
		}

		// Login tokens and client tokens share one format, the audience tells them apart
		authType := "jwt"
		if len(claims.Audience) > 0 && claims.Audience[0] != "" {
			c.Set(ContextClientID, claims.Audience[0])
			if claims.Audience[0] != auth.WebAudience {
				authType = "oauth2"
			}
		}
		c.Set(ContextAuthType, authType)

		c.Next()
	}
}

// bearerToken extracts the RFC 6750 Bearer token or aborts with 401
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		respondWithOAuth2Error(c, "authorization_required",
			"Missing Authorization header. A valid Bearer token is required.")
		return "", false
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" {
		respondWithOAuth2Error(c, models.ErrInvalidRequest,
			"Authorization header must use Bearer scheme. Format: 'Bearer <token>'")
		return "", false
	}
	if token = strings.TrimSpace(token); token == "" {
		respondWithOAuth2Error(c, models.ErrInvalidToken, "Bearer token is empty")
		return "", false
	}
	return token, true
}

func describeParseError(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token has expired"
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return "token not yet valid"
	case errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return "token issued in the future"
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return "token missing required 'exp' claim"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return "token signature is invalid"
	default:
		return fmt.Sprintf("token parsing failed: %v", err)
	}
}

// principal validates uid and role. Both are required, there are no defaults.
func (ac *accessClaims) principal() (access.Principal, error) {
	if ac.UserID == "" {
		return access.Principal{}, fmt.Errorf("token missing required 'uid' claim. This token is not valid for this API")
	}
	id, err := strconv.ParseUint(ac.UserID.String(), 10, 32)
	if err != nil || id == 0 {
		return access.Principal{}, fmt.Errorf("invalid uid claim: must be a positive integer, got: %s", ac.UserID)
	}

	if ac.Role == "" {
		return access.Principal{}, fmt.Errorf("token missing required 'role' claim. Tokens must explicitly specify user roles")
	}
	role, err := access.ParseRole(ac.Role)
	if err != nil {
		return access.Principal{}, err
	}
	return access.Principal{UserID: uint(id), Role: role}, nil
}

// respondWithOAuth2Error responds with RFC 6750 compliant error format
func respondWithOAuth2Error(c *gin.Context, errorCode, description string) {
	c.Header("WWW-Authenticate", fmt.Sprintf(`Bearer error=%q`, errorCode))
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.OAuth2Error{
		Error:            errorCode,
		ErrorDescription: description,
	})
}
