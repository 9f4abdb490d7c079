package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/franciscosanchezn/gin-restaurant-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/go-oauth2/oauth2/v4"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// HandleToken handles the token endpoint for the client credentials grant
// @Summary Token Endpoint
// @Description Obtain an access token using the client credentials grant
// @Tags OAuth2
// @Accept application/x-www-form-urlencoded
// @Produce json
// @Param grant_type formData string true "Grant type: client_credentials"
// @Param client_id formData string true "Client ID"
// @Param client_secret formData string true "Client Secret"
// @Param scope formData string false "Requested scopes, a subset of the client's scopes"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.OAuth2Error
// @Failure 401 {object} models.OAuth2Error
// @Router /oauth/token [post]
func (o *OAuthService) HandleToken(c *gin.Context) {
	grantType := c.PostForm("grant_type")
	if grantType != string(oauth2.ClientCredentials) {
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrUnsupportedGrantType,
			"Only the client_credentials grant is supported"))
		return
	}
	o.handleClientCredentials(c)
}

func (o *OAuthService) handleClientCredentials(c *gin.Context) {
	clientID := c.PostForm("client_id")
	clientSecret := c.PostForm("client_secret")
	if clientID == "" || clientSecret == "" {
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrInvalidRequest, "client_id and client_secret are required"))
		return
	}

	var client models.OAuthClient
	if err := o.db.WithContext(c.Request.Context()).Where("id = ?", clientID).First(&client).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.WithError(err).Error("Failed to load OAuth client")
		}
		c.JSON(http.StatusUnauthorized, models.NewOAuth2Error(models.ErrInvalidClient, "Client authentication failed"))
		return
	}
	if !client.VerifyPassword(clientSecret) {
		c.JSON(http.StatusUnauthorized, models.NewOAuth2Error(models.ErrInvalidClient, "Client authentication failed"))
		return
	}

	scope, ok := grantedScope(client.Scopes, c.PostForm("scope"))
	if !ok {
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrInvalidScope, "Requested scope exceeds the client's scopes"))
		return
	}

	ti, err := o.server.Manager.GenerateAccessToken(c.Request.Context(), oauth2.ClientCredentials, &oauth2.TokenGenerateRequest{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scope:        scope,
		Request:      c.Request,
	})
	if err != nil {
		log.WithError(err).WithField("client_id", clientID).Error("Failed to generate access token")
		c.JSON(http.StatusInternalServerError, models.NewOAuth2Error("server_error", "token_generation_failed"))
		return
	}

	log.WithFields(log.Fields{
		"client_id": clientID,
		"user_id":   client.UserID,
	}).Info("Issued client access token")

	c.JSON(http.StatusOK, gin.H{
		"access_token": ti.GetAccess(),
		"token_type":   "Bearer",
		"expires_in":   int64(ti.GetAccessExpiresIn().Seconds()),
		"scope":        ti.GetScope(),
	})
}

func splitScopes(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' })
}

// grantedScope returns the requested scope when every item is held by the client.
// An empty request grants all of the client's scopes.
func grantedScope(clientScopes, requested string) (string, bool) {
	if strings.TrimSpace(requested) == "" {
		return clientScopes, true
	}
	held := map[string]bool{}
	for _, s := range splitScopes(clientScopes) {
		held[s] = true
	}
	wanted := splitScopes(requested)
	for _, s := range wanted {
		if !held[s] {
			return "", false
		}
	}
	return strings.Join(wanted, ","), true
}
