package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/flavorfleet/admin-dashboard/utils"
)

type HealthController struct {
	DB *gorm.DB
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{DB: db}
}

func (hc *HealthController) Ping(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "pong", nil)
}

// Health pings the database.
func (hc *HealthController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	sqlDB, err := hc.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		utils.ErrorLogger.Errorf("Health check failed: %v", err)
		utils.RespondJSON(c, http.StatusServiceUnavailable, "database unavailable", gin.H{"database": "down"})
		return
	}
	utils.RespondJSON(c, http.StatusOK, "ok", gin.H{"database": "up"})
}
