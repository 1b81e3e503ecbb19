package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"mime"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/flavorfleet/admin-dashboard/events"
	"github.com/flavorfleet/admin-dashboard/models"
	"github.com/flavorfleet/admin-dashboard/repository"
	"github.com/flavorfleet/admin-dashboard/storage"
	"github.com/flavorfleet/admin-dashboard/utils"
)

// MaxImageSize is the largest accepted food image in bytes.
const MaxImageSize = 5 * 1024 * 1024

var unsafePathChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// validFoodPrice reports whether p is a finite amount above zero.
func validFoodPrice(p float64) bool {
	return isFinite(p) && p > 0
}

// validAddOnPrice reports whether p is a finite amount of zero or more.
func validAddOnPrice(p float64) bool {
	return isFinite(p) && p >= 0
}

type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type AddOnInput struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type FoodInput struct {
	CategoryID  uint
	Name        string
	Description string
	Price       float64
	Available   *bool
	AddOns      []AddOnInput
}

type FoodPatch struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Available   *bool    `json:"available"`
	CategoryID  *uint    `json:"category_id"`
}

type AddOnPatch struct {
	Name  *string  `json:"name"`
	Price *float64 `json:"price"`
}

type CatalogService struct {
	repo   *repository.CatalogRepository
	images storage.ImageStore
	events events.Publisher
}

func NewCatalogService(repo *repository.CatalogRepository, images storage.ImageStore, publisher events.Publisher) *CatalogService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &CatalogService{repo: repo, images: images, events: publisher}
}

func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrInUse):
		return ErrCategoryInUse
	}
	return err
}

// publish never fails the caller; the write already happened.
func (s *CatalogService) publish(ctx context.Context, eventType string, id uint, data interface{}) {
	if err := s.events.Publish(ctx, events.New(eventType, id, data)); err != nil {
		utils.EventsPublishedTotal.WithLabelValues("all", "error").Inc()
		utils.ErrorLogger.WithFields(logrus.Fields{"event": eventType, "id": id}).Warnf("Failed to publish catalog event: %v", err)
		return
	}
	utils.EventsPublishedTotal.WithLabelValues("all", "ok").Inc()
}

func recordWrite(entity, action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	utils.CatalogWritesTotal.WithLabelValues(entity, action, outcome).Inc()
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.CategoryWithCount, error) {
	return s.repo.ListCategoriesWithCount(ctx)
}

func (s *CatalogService) validateCategoryName(ctx context.Context, name string, excludeID uint) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("name", "category name is required")
	}
	taken, err := s.repo.CategoryNameTaken(ctx, name, excludeID)
	if err != nil {
		return "", err
	}
	if taken {
		return "", invalid("name", "category %q already exists", name)
	}
	return name, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name, err := s.validateCategoryName(ctx, name, 0)
	if err != nil {
		return nil, err
	}
	category := &models.Category{Name: name}
	err = s.repo.CreateCategory(ctx, category)
	recordWrite("category", "create", err)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	utils.InfoLogger.WithField("category_id", category.ID).Infof("Category created: %s", category.Name)
	s.publish(ctx, events.CategoryCreated, category.ID, category)
	return category, nil
}

func (s *CatalogService) RenameCategory(ctx context.Context, id uint, name string) (*models.Category, error) {
	if _, err := s.repo.GetCategory(ctx, id); err != nil {
		return nil, mapRepoErr(err)
	}
	name, err := s.validateCategoryName(ctx, name, id)
	if err != nil {
		return nil, err
	}
	category, err := s.repo.UpdateCategoryName(ctx, id, name)
	recordWrite("category", "update", err)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	s.publish(ctx, events.CategoryUpdated, category.ID, category)
	return category, nil
}

// DeleteCategory refuses while any food item still references the category.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	err := s.repo.DeleteCategoryIfEmpty(ctx, id)
	recordWrite("category", "delete", err)
	if err != nil {
		return mapRepoErr(err)
	}
	utils.InfoLogger.WithField("category_id", id).Info("Category deleted")
	s.publish(ctx, events.CategoryDeleted, id, nil)
	return nil
}

func (s *CatalogService) ListFoods(ctx context.Context, categoryID uint) ([]models.Food, error) {
	if _, err := s.repo.GetCategory(ctx, categoryID); err != nil {
		return nil, mapRepoErr(err)
	}
	return s.repo.ListFoods(ctx, categoryID)
}

func (s *CatalogService) GetFood(ctx context.Context, id uint) (*models.Food, error) {
	food, err := s.repo.GetFood(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return food, nil
}

// SanitizePathSegment replaces every character outside [A-Za-z0-9_-] with '_'.
func SanitizePathSegment(s string) string {
	return unsafePathChars.ReplaceAllString(s, "_")
}

// imageExtension is the subtype of an image content type, e.g. image/png -> png.
func imageExtension(contentType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", invalid("image", "unrecognised content type %q", contentType)
	}
	major, sub, ok := strings.Cut(mediaType, "/")
	if !ok || major != "image" || sub == "" {
		return "", invalid("image", "file must be an image, got %q", contentType)
	}
	if i := strings.IndexByte(sub, '+'); i > 0 {
		sub = sub[:i]
	}
	return sub, nil
}

func validateAddOns(inputs []AddOnInput) ([]AddOnInput, error) {
	var out []AddOnInput
	for i, in := range inputs {
		in.Name = strings.TrimSpace(in.Name)
		if in.Name == "" {
			continue
		}
		if !validAddOnPrice(in.Price) {
			return nil, invalid(fmt.Sprintf("addons[%d].price", i), "add-on price must not be negative")
		}
		out = append(out, in)
	}
	return out, nil
}

func validateFoodInput(in *FoodInput, image *ImageUpload) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	switch {
	case in.Name == "":
		return invalid("name", "food name is required")
	case in.Description == "":
		return invalid("description", "description is required")
	case !validFoodPrice(in.Price):
		return invalid("price", "price must be greater than zero")
	case image == nil || len(image.Data) == 0:
		return invalid("image", "an image is required")
	case len(image.Data) > MaxImageSize:
		return invalid("image", "image exceeds %d bytes", MaxImageSize)
	}
	return nil
}

// CreateFood uploads the image, inserts the food row and then its add-ons.
// A failed insert leaves the uploaded image in the store.
func (s *CatalogService) CreateFood(ctx context.Context, in FoodInput, image *ImageUpload) (*models.Food, error) {
	if err := validateFoodInput(&in, image); err != nil {
		return nil, err
	}
	ext, err := imageExtension(image.ContentType)
	if err != nil {
		return nil, err
	}
	addOns, err := validateAddOns(in.AddOns)
	if err != nil {
		return nil, err
	}
	category, err := s.repo.GetCategory(ctx, in.CategoryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid("category_id", "category %d does not exist", in.CategoryID)
		}
		return nil, err
	}

	objectPath := fmt.Sprintf("%s/%s.%s", SanitizePathSegment(category.Name), uuid.NewString(), ext)
	url, err := s.images.Upload(ctx, objectPath, image.ContentType, image.Data)
	if err != nil {
		recordWrite("food", "create", err)
		return nil, fmt.Errorf("upload image: %w", err)
	}
	utils.ImageUploadBytes.Observe(float64(len(image.Data)))

	available := true
	if in.Available != nil {
		available = *in.Available
	}
	food := &models.Food{
		CategoryID:  category.ID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    url,
		Available:   available,
	}
	if err := s.repo.CreateFood(ctx, food); err != nil {
		recordWrite("food", "create", err)
		utils.ErrorLogger.WithField("object", objectPath).Errorf("Food insert failed after image upload: %v", err)
		return nil, fmt.Errorf("create food: %w", err)
	}

	rows := make([]models.AddOn, 0, len(addOns))
	for _, a := range addOns {
		rows = append(rows, models.AddOn{FoodID: food.ID, Name: a.Name, Price: a.Price})
	}
	if err := s.repo.CreateAddOns(ctx, rows); err != nil {
		recordWrite("food", "create", err)
		return nil, fmt.Errorf("create addons: %w", err)
	}
	food.AddOns = rows
	recordWrite("food", "create", nil)

	utils.InfoLogger.WithFields(logrus.Fields{"food_id": food.ID, "category_id": food.CategoryID}).Infof("Food created: %s", food.Name)
	s.publish(ctx, events.FoodCreated, food.ID, food)
	return food, nil
}

func (s *CatalogService) UpdateFood(ctx context.Context, id uint, p FoodPatch) (*models.Food, error) {
	if _, err := s.repo.GetFood(ctx, id); err != nil {
		return nil, mapRepoErr(err)
	}

	changes := make(map[string]interface{})
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, invalid("name", "food name must not be empty")
		}
		changes["name"] = name
	}
	if p.Description != nil {
		desc := strings.TrimSpace(*p.Description)
		if desc == "" {
			return nil, invalid("description", "description must not be empty")
		}
		changes["description"] = desc
	}
	if p.Price != nil {
		if !validFoodPrice(*p.Price) {
			return nil, invalid("price", "price must be greater than zero")
		}
		changes["price"] = *p.Price
	}
	if p.Available != nil {
		changes["available"] = *p.Available
	}
	if p.CategoryID != nil {
		if _, err := s.repo.GetCategory(ctx, *p.CategoryID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, invalid("category_id", "category %d does not exist", *p.CategoryID)
			}
			return nil, err
		}
		changes["category_id"] = *p.CategoryID
	}

	food, err := s.repo.UpdateFood(ctx, id, changes)
	recordWrite("food", "update", err)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	s.publish(ctx, events.FoodUpdated, food.ID, food)
	return food, nil
}

// DeleteFood removes the stored image first. A failed removal is logged and
// the row is deleted anyway; add-on rows are kept for historical reports.
func (s *CatalogService) DeleteFood(ctx context.Context, id uint) error {
	food, err := s.repo.GetFood(ctx, id)
	if err != nil {
		return mapRepoErr(err)
	}

	if objectPath, ok := s.images.PathFromURL(food.ImageURL); ok {
		if err := s.images.Remove(ctx, objectPath); err != nil {
			utils.ErrorLogger.WithFields(logrus.Fields{"food_id": id, "object": objectPath}).Warnf("Image removal failed: %v", err)
		}
	}

	err = s.repo.DeleteFood(ctx, id)
	recordWrite("food", "delete", err)
	if err != nil {
		return mapRepoErr(err)
	}
	utils.InfoLogger.WithField("food_id", id).Info("Food deleted")
	s.publish(ctx, events.FoodDeleted, id, nil)
	return nil
}

func (s *CatalogService) ListAddOns(ctx context.Context, foodID uint) ([]models.AddOn, error) {
	if _, err := s.repo.GetFood(ctx, foodID); err != nil {
		return nil, mapRepoErr(err)
	}
	return s.repo.ListAddOns(ctx, foodID)
}

func (s *CatalogService) CreateAddOn(ctx context.Context, foodID uint, in AddOnInput) (*models.AddOn, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "add-on name is required")
	}
	if !validAddOnPrice(in.Price) {
		return nil, invalid("price", "add-on price must not be negative")
	}
	if _, err := s.repo.GetFood(ctx, foodID); err != nil {
		return nil, mapRepoErr(err)
	}

	addOn := models.AddOn{FoodID: foodID, Name: name, Price: in.Price}
	rows := []models.AddOn{addOn}
	err := s.repo.CreateAddOns(ctx, rows)
	recordWrite("addon", "create", err)
	if err != nil {
		return nil, fmt.Errorf("create addon: %w", err)
	}
	addOn = rows[0]
	s.publish(ctx, events.AddOnCreated, addOn.ID, addOn)
	return &addOn, nil
}

func (s *CatalogService) UpdateAddOn(ctx context.Context, id uint, p AddOnPatch) (*models.AddOn, error) {
	addOn, err := s.repo.GetAddOn(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, invalid("name", "add-on name must not be empty")
		}
		addOn.Name = name
	}
	if p.Price != nil {
		if !validAddOnPrice(*p.Price) {
			return nil, invalid("price", "add-on price must not be negative")
		}
		addOn.Price = *p.Price
	}

	err = s.repo.SaveAddOn(ctx, addOn)
	recordWrite("addon", "update", err)
	if err != nil {
		return nil, fmt.Errorf("update addon: %w", err)
	}
	s.publish(ctx, events.AddOnUpdated, addOn.ID, addOn)
	return addOn, nil
}

func (s *CatalogService) DeleteAddOn(ctx context.Context, id uint) error {
	err := s.repo.DeleteAddOn(ctx, id)
	recordWrite("addon", "delete", err)
	if err != nil {
		return mapRepoErr(err)
	}
	s.publish(ctx, events.AddOnDeleted, id, nil)
	return nil
}
