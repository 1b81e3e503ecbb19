package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/flavorfleet/admin-dashboard/services"
	"github.com/flavorfleet/admin-dashboard/utils"
)

type FoodController struct {
	catalog  *services.CatalogService
	sessions *services.SessionService
}

func NewFoodController(catalog *services.CatalogService, sessions *services.SessionService) *FoodController {
	return &FoodController{catalog: catalog, sessions: sessions}
}

func (fc *FoodController) GetFoodsByCategory(c *gin.Context) {
	categoryID, err := parseID(c, "cat_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	foods, err := fc.catalog.ListFoods(c.Request.Context(), categoryID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Food items", foods)
}

func (fc *FoodController) GetFoodByID(c *gin.Context) {
	id, err := parseID(c, "food_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	food, err := fc.catalog.GetFood(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Food detail", food)
}

// readImage loads the "image" form file. Oversized files are read one byte
// past the limit so the service can reject them.
func readImage(c *gin.Context) (*services.ImageUpload, error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.New("error processing form")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.New("error reading image")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, services.MaxImageSize+1))
	if err != nil {
		return nil, errors.New("error reading image")
	}
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return &services.ImageUpload{Filename: fh.Filename, ContentType: contentType, Data: data}, nil
}

// CreateFood takes multipart fields name, description, price, available,
// image and addons (a JSON array of {name, price}).
func (fc *FoodController) CreateFood(c *gin.Context) {
	categoryID, err := parseID(c, "cat_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(c.PostForm("price")), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid price"))
		return
	}

	in := services.FoodInput{
		CategoryID:  categoryID,
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Price:       price,
	}
	if raw := c.PostForm("available"); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid available flag"))
			return
		}
		in.Available = &available
	}
	if raw := c.PostForm("addons"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.AddOns); err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("addons must be a JSON array of {name, price}"))
			return
		}
	}

	image, err := readImage(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	food, err := fc.catalog.CreateFood(c.Request.Context(), in, image)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if err := fc.sessions.FoodCreated(c.Request.Context(), sessionID(c)); err != nil {
		utils.ErrorLogger.Warnf("Could not update session after food create: %v", err)
	}
	utils.RespondJSON(c, http.StatusCreated, "Food created", food)
}

func (fc *FoodController) UpdateFood(c *gin.Context) {
	id, err := parseID(c, "food_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var patch services.FoodPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	food, err := fc.catalog.UpdateFood(c.Request.Context(), id, patch)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if err := fc.sessions.FoodSaved(c.Request.Context(), sessionID(c), id); err != nil {
		utils.ErrorLogger.Warnf("Could not update session after food update: %v", err)
	}
	utils.RespondJSON(c, http.StatusOK, "Food updated", food)
}

func (fc *FoodController) DeleteFood(c *gin.Context) {
	id, err := parseID(c, "food_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := fc.catalog.DeleteFood(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	if err := fc.sessions.FoodSaved(c.Request.Context(), sessionID(c), id); err != nil {
		utils.ErrorLogger.Warnf("Could not update session after food delete: %v", err)
	}
	utils.RespondJSON(c, http.StatusOK, "Food deleted", nil)
}
