package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flavorfleet/admin-dashboard/services"
	"github.com/flavorfleet/admin-dashboard/utils"
)

type SessionController struct {
	sessions *services.SessionService
}

func NewSessionController(sessions *services.SessionService) *SessionController {
	return &SessionController{sessions: sessions}
}

func (sc *SessionController) GetSession(c *gin.Context) {
	state, err := sc.sessions.Get(c.Request.Context(), sessionID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session state", state)
}

func (sc *SessionController) UpdateSession(c *gin.Context) {
	var patch services.ViewPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	state, err := sc.sessions.Patch(c.Request.Context(), sessionID(c), patch)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session updated", state)
}

func (sc *SessionController) StartEditing(c *gin.Context) {
	sc.setEditing(c, true)
}

func (sc *SessionController) StopEditing(c *gin.Context) {
	sc.setEditing(c, false)
}

func (sc *SessionController) setEditing(c *gin.Context, editing bool) {
	foodID, err := parseID(c, "food_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	state, err := sc.sessions.SetEditing(c.Request.Context(), sessionID(c), foodID, editing)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session updated", state)
}
