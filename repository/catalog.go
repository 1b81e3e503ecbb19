// Package repository is the data access layer over the catalog and order
// tables. It holds no business rules beyond the queries themselves.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/flavorfleet/admin-dashboard/models"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrInUse is returned when a category still has food items at delete time.
	ErrInUse = errors.New("record still referenced")
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// ListCategoriesWithCount returns every category ordered by name along with
// the number of food items referencing it.
func (r *CatalogRepository) ListCategoriesWithCount(ctx context.Context) ([]models.CategoryWithCount, error) {
	var rows []models.CategoryWithCount
	err := r.db.WithContext(ctx).
		Table("categories").
		Select("categories.*, COUNT(foods.id) AS food_count").
		Joins("LEFT JOIN foods ON foods.category_id = categories.id").
		Group("categories.id").
		Order("categories.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	for i := range rows {
		rows[i].Deletable = rows[i].FoodCount == 0
	}
	return rows, nil
}

func (r *CatalogRepository) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// CategoryNameTaken compares names case-insensitively, ignoring excludeID.
func (r *CatalogRepository) CategoryNameTaken(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Category{}).Where("LOWER(name) = ?", strings.ToLower(name))
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return count > 0, nil
}

func (r *CatalogRepository) CreateCategory(ctx context.Context, c *models.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CatalogRepository) UpdateCategoryName(ctx context.Context, id uint, name string) (*models.Category, error) {
	c, err := r.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = name
	if err := r.db.WithContext(ctx).Save(c).Error; err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

// DeleteCategoryIfEmpty re-counts referencing food items inside the delete
// transaction and refuses with ErrInUse when any exist.
func (r *CatalogRepository) DeleteCategoryIfEmpty(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Category
		if err := tx.First(&c, id).Error; err != nil {
			return notFound(err)
		}
		var count int64
		if err := tx.Model(&models.Food{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("count foods: %w", err)
		}
		if count > 0 {
			return ErrInUse
		}
		if err := tx.Delete(&c).Error; err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	})
}

func (r *CatalogRepository) ListFoods(ctx context.Context, categoryID uint) ([]models.Food, error) {
	var foods []models.Food
	err := r.db.WithContext(ctx).
		Preload("AddOns", func(db *gorm.DB) *gorm.DB { return db.Order("addons.id ASC") }).
		Where("category_id = ?", categoryID).
		Order("name ASC").
		Find(&foods).Error
	if err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	return foods, nil
}

func (r *CatalogRepository) GetFood(ctx context.Context, id uint) (*models.Food, error) {
	var f models.Food
	err := r.db.WithContext(ctx).
		Preload("AddOns", func(db *gorm.DB) *gorm.DB { return db.Order("addons.id ASC") }).
		First(&f, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}

// CreateFood inserts the food row only; add-ons are written separately.
func (r *CatalogRepository) CreateFood(ctx context.Context, f *models.Food) error {
	return r.db.WithContext(ctx).Omit("AddOns").Create(f).Error
}

// UpdateFood applies a column map and returns the reloaded row.
func (r *CatalogRepository) UpdateFood(ctx context.Context, id uint, changes map[string]interface{}) (*models.Food, error) {
	if len(changes) > 0 {
		res := r.db.WithContext(ctx).Model(&models.Food{}).Where("id = ?", id).Updates(changes)
		if res.Error != nil {
			return nil, fmt.Errorf("update food: %w", res.Error)
		}
	}
	return r.GetFood(ctx, id)
}

func (r *CatalogRepository) DeleteFood(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Food{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete food: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CatalogRepository) ListAddOns(ctx context.Context, foodID uint) ([]models.AddOn, error) {
	var addOns []models.AddOn
	if err := r.db.WithContext(ctx).Where("food_id = ?", foodID).Order("id ASC").Find(&addOns).Error; err != nil {
		return nil, fmt.Errorf("list addons: %w", err)
	}
	return addOns, nil
}

func (r *CatalogRepository) GetAddOn(ctx context.Context, id uint) (*models.AddOn, error) {
	var a models.AddOn
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *CatalogRepository) CreateAddOns(ctx context.Context, addOns []models.AddOn) error {
	if len(addOns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&addOns).Error
}

func (r *CatalogRepository) SaveAddOn(ctx context.Context, a *models.AddOn) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *CatalogRepository) DeleteAddOn(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.AddOn{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete addon: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
