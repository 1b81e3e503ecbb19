package controllers

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/flavorfleet/admin-dashboard/config"
	"github.com/flavorfleet/admin-dashboard/services"
	"github.com/flavorfleet/admin-dashboard/utils"
)

type AuthController struct {
	username     string
	passwordHash []byte
	tokenTTL     time.Duration
	sessions     *services.SessionService
}

// NewAuthController hashes a plain ADMIN_PASSWORD once so every login goes
// through bcrypt.
func NewAuthController(cfg config.AuthConfig, sessions *services.SessionService) (*AuthController, error) {
	hash := []byte(cfg.AdminPasswordHash)
	if len(hash) == 0 && cfg.AdminPassword != "" {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
	}
	return &AuthController{
		username:     cfg.AdminUsername,
		passwordHash: hash,
		tokenTTL:     cfg.TokenTTL,
		sessions:     sessions,
	}, nil
}

func (ac *AuthController) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("username and password are required"))
		return
	}

	userOK := ac.username != "" && subtle.ConstantTimeCompare([]byte(req.Username), []byte(ac.username)) == 1
	passOK := len(ac.passwordHash) > 0 && bcrypt.CompareHashAndPassword(ac.passwordHash, []byte(req.Password)) == nil
	if !userOK || !passOK {
		utils.LoginAttemptsTotal.WithLabelValues("rejected").Inc()
		utils.InfoLogger.WithField("ip", c.ClientIP()).Warn("Rejected admin login")
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid username or password"))
		return
	}

	state, err := ac.sessions.Start(c.Request.Context(), ac.username)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	token, err := utils.GenerateToken(state.ID, state.Username, ac.tokenTTL)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.LoginAttemptsTotal.WithLabelValues("accepted").Inc()
	utils.InfoLogger.WithField("user", state.Username).Info("Admin logged in")
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":      token,
		"expires_at": state.ExpiresAt,
		"session":    state,
	})
}

func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.sessions.End(c.Request.Context(), sessionID(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}
