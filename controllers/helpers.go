package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/flavorfleet/admin-dashboard/middlewares"
	"github.com/flavorfleet/admin-dashboard/services"
	"github.com/flavorfleet/admin-dashboard/utils"
)

func parseID(c *gin.Context, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", param)
	}
	return uint(id), nil
}

func parseOptionalUint(value, name string) (*uint, error) {
	if value == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", name)
	}
	v := uint(id)
	return &v, nil
}

// respondServiceError maps service errors onto HTTP status codes.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case services.IsValidation(err):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrCategoryInUse):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, services.ErrSessionNotFound):
		utils.RespondError(c, http.StatusUnauthorized, err)
	default:
		utils.ErrorLogger.WithField("path", c.FullPath()).Errorf("Request failed: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("internal server error"))
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(middlewares.ContextSessionID)
}
