package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flavorfleet/admin-dashboard/services"
	"github.com/flavorfleet/admin-dashboard/utils"
)

// WebSocketAuthMiddleware reads the token from the "token" query parameter
// since browsers cannot set headers on websocket upgrades.
func WebSocketAuthMiddleware(sessions *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			utils.AbortWithError(c, http.StatusUnauthorized, "token query parameter missing")
			return
		}
		authenticate(c, sessions, token)
	}
}
