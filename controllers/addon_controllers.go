package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flavorfleet/admin-dashboard/services"
	"github.com/flavorfleet/admin-dashboard/utils"
)

type AddOnController struct {
	catalog *services.CatalogService
}

func NewAddOnController(catalog *services.CatalogService) *AddOnController {
	return &AddOnController{catalog: catalog}
}

func (ac *AddOnController) GetAddOns(c *gin.Context) {
	foodID, err := parseID(c, "food_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	addOns, err := ac.catalog.ListAddOns(c.Request.Context(), foodID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Add-ons", addOns)
}

func (ac *AddOnController) CreateAddOn(c *gin.Context) {
	foodID, err := parseID(c, "food_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var body services.AddOnInput
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	addOn, err := ac.catalog.CreateAddOn(c.Request.Context(), foodID, body)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Add-on created", addOn)
}

func (ac *AddOnController) UpdateAddOn(c *gin.Context) {
	id, err := parseID(c, "addon_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var patch services.AddOnPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	addOn, err := ac.catalog.UpdateAddOn(c.Request.Context(), id, patch)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Add-on updated", addOn)
}

func (ac *AddOnController) DeleteAddOn(c *gin.Context) {
	id, err := parseID(c, "addon_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := ac.catalog.DeleteAddOn(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Add-on deleted", nil)
}
