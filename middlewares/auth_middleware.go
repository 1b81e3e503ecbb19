package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/flavorfleet/admin-dashboard/services"
	"github.com/flavorfleet/admin-dashboard/utils"
)

// Context keys set by the auth middlewares.
const (
	ContextSessionID = "session_id"
	ContextUsername  = "username"
	ContextExpiresAt = "session_expires_at"
)

// AuthMiddleware accepts "Authorization: Bearer <token>" and requires the
// token's session to still be open.
func AuthMiddleware(sessions *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.AbortWithError(c, http.StatusUnauthorized, "Authorization header missing")
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			utils.AbortWithError(c, http.StatusUnauthorized, "Invalid authorization format")
			return
		}
		authenticate(c, sessions, strings.TrimPrefix(authHeader, "Bearer "))
	}
}

func authenticate(c *gin.Context, sessions *services.SessionService, token string) {
	claims, err := utils.ParseToken(token)
	if err != nil {
		utils.AbortWithError(c, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	state, err := sessions.Get(c.Request.Context(), claims.SessionID)
	if err != nil {
		if !errors.Is(err, services.ErrSessionNotFound) {
			utils.ErrorLogger.Errorf("Session lookup failed: %v", err)
		}
		utils.AbortWithError(c, http.StatusUnauthorized, "Session expired, please log in again")
		return
	}

	c.Set(ContextSessionID, state.ID)
	c.Set(ContextUsername, state.Username)
	c.Set(ContextExpiresAt, state.ExpiresAt)
	c.Next()
}
