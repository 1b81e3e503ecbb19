package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flavorfleet/admin-dashboard/services"
	"github.com/flavorfleet/admin-dashboard/utils"
)

type CategoryController struct {
	catalog *services.CatalogService
}

func NewCategoryController(catalog *services.CatalogService) *CategoryController {
	return &CategoryController{catalog: catalog}
}

type categoryRequest struct {
	Name string `json:"name"`
}

// GetAllCategories lists categories with their food counts.
func (cc *CategoryController) GetAllCategories(c *gin.Context) {
	categories, err := cc.catalog.ListCategories(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All categories", categories)
}

func (cc *CategoryController) CreateCategory(c *gin.Context) {
	var body categoryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	category, err := cc.catalog.CreateCategory(c.Request.Context(), body.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Category created", category)
}

func (cc *CategoryController) UpdateCategory(c *gin.Context) {
	id, err := parseID(c, "cat_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var body categoryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	category, err := cc.catalog.RenameCategory(c.Request.Context(), id, body.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category updated", category)
}

func (cc *CategoryController) DeleteCategory(c *gin.Context) {
	id, err := parseID(c, "cat_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := cc.catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category deleted", nil)
}
