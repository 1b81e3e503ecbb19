package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/flavorfleet/admin-dashboard/events"
	"github.com/flavorfleet/admin-dashboard/models"
	"github.com/flavorfleet/admin-dashboard/repository"
)

type fakeImageStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploadErr error
	removeErr error
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{objects: make(map[string][]byte)}
}

func (f *fakeImageStore) Upload(_ context.Context, objectPath, _ string, data []byte) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[objectPath] = data
	return "http://test/uploads/" + objectPath, nil
}

func (f *fakeImageStore) Remove(_ context.Context, objectPath string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, objectPath)
	return nil
}

func (f *fakeImageStore) PathFromURL(u string) (string, bool) {
	return strings.CutPrefix(u, "http://test/uploads/")
}

type capturePublisher struct {
	types []string
}

func (c *capturePublisher) Publish(_ context.Context, evt events.Event) error {
	c.types = append(c.types, evt.Type)
	return nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{DisableForeignKeyConstraintWhenMigrating: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.Category{}, &models.Food{}, &models.AddOn{},
		&models.Order{}, &models.OrderItem{}, &models.OrderItemAddOn{},
	))
	return db
}

func newCatalog(t *testing.T) (*CatalogService, *fakeImageStore, *capturePublisher, *gorm.DB) {
	db := setupTestDB(t)
	store := newFakeImageStore()
	pub := &capturePublisher{}
	return NewCatalogService(repository.NewCatalogRepository(db), store, pub), store, pub, db
}

func pngUpload() *ImageUpload {
	return &ImageUpload{Filename: "burger.png", ContentType: "image/png", Data: []byte("\x89PNG fake")}
}

func TestCatalogService_CreateCategory(t *testing.T) {
	ctx := context.Background()
	svc, _, pub, _ := newCatalog(t)

	cat, err := svc.CreateCategory(ctx, "  Main Course ")
	require.NoError(t, err)
	assert.Equal(t, "Main Course", cat.Name)

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"duplicate ignoring case", "main course"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateCategory(ctx, tt.input)
			assert.True(t, IsValidation(err), "got %v", err)
		})
	}
	assert.Equal(t, []string{events.CategoryCreated}, pub.types)
}

func TestCatalogService_RenameCategory(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newCatalog(t)

	a, err := svc.CreateCategory(ctx, "Drinks")
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, "Desserts")
	require.NoError(t, err)

	renamed, err := svc.RenameCategory(ctx, a.ID, "DRINKS")
	require.NoError(t, err)
	assert.Equal(t, "DRINKS", renamed.Name)

	_, err = svc.RenameCategory(ctx, a.ID, "desserts")
	assert.True(t, IsValidation(err))

	_, err = svc.RenameCategory(ctx, 999, "Other")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogService_DeleteCategoryRefusedWhileInUse(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newCatalog(t)

	cat, err := svc.CreateCategory(ctx, "Mains")
	require.NoError(t, err)
	food, err := svc.CreateFood(ctx, FoodInput{CategoryID: cat.ID, Name: "Burger", Description: "Beef", Price: 9.5}, pngUpload())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteCategory(ctx, cat.ID), ErrCategoryInUse)

	require.NoError(t, svc.DeleteFood(ctx, food.ID))
	assert.NoError(t, svc.DeleteCategory(ctx, cat.ID))
	assert.ErrorIs(t, svc.DeleteCategory(ctx, cat.ID), ErrNotFound)
}

func TestCatalogService_CreateFood(t *testing.T) {
	ctx := context.Background()
	svc, store, pub, _ := newCatalog(t)

	cat, err := svc.CreateCategory(ctx, "Main Course!")
	require.NoError(t, err)

	food, err := svc.CreateFood(ctx, FoodInput{
		CategoryID:  cat.ID,
		Name:        "Burger",
		Description: "Beef patty",
		Price:       9.5,
		AddOns: []AddOnInput{
			{Name: "Cheese", Price: 1},
			{Name: "  ", Price: 5},
			{Name: "Sauce", Price: 0},
		},
	}, pngUpload())
	require.NoError(t, err)

	assert.True(t, food.Available)
	assert.Len(t, food.AddOns, 2)
	assert.Regexp(t, `^http://test/uploads/Main_Course_/[0-9a-f-]{36}\.png$`, food.ImageURL)
	assert.Len(t, store.objects, 1)
	assert.Contains(t, pub.types, events.FoodCreated)

	unavailable := false
	food, err = svc.CreateFood(ctx, FoodInput{CategoryID: cat.ID, Name: "Fries", Description: "Salted", Price: 3, Available: &unavailable}, pngUpload())
	require.NoError(t, err)
	assert.False(t, food.Available)
	got, err := svc.GetFood(ctx, food.ID)
	require.NoError(t, err)
	assert.False(t, got.Available)
}

func TestCatalogService_CreateFoodValidation(t *testing.T) {
	ctx := context.Background()
	svc, store, _, _ := newCatalog(t)
	cat, err := svc.CreateCategory(ctx, "Mains")
	require.NoError(t, err)

	valid := FoodInput{CategoryID: cat.ID, Name: "Burger", Description: "Beef", Price: 9.5}
	tests := []struct {
		name   string
		mutate func(*FoodInput, **ImageUpload)
	}{
		{"empty name", func(in *FoodInput, _ **ImageUpload) { in.Name = " " }},
		{"empty description", func(in *FoodInput, _ **ImageUpload) { in.Description = "" }},
		{"zero price", func(in *FoodInput, _ **ImageUpload) { in.Price = 0 }},
		{"negative price", func(in *FoodInput, _ **ImageUpload) { in.Price = -1 }},
		{"NaN price", func(in *FoodInput, _ **ImageUpload) { in.Price = math.NaN() }},
		{"infinite price", func(in *FoodInput, _ **ImageUpload) { in.Price = math.Inf(1) }},
		{"missing image", func(_ *FoodInput, img **ImageUpload) { *img = nil }},
		{"oversized image", func(_ *FoodInput, img **ImageUpload) {
			(*img).Data = make([]byte, MaxImageSize+1)
		}},
		{"not an image", func(_ *FoodInput, img **ImageUpload) { (*img).ContentType = "text/plain" }},
		{"negative addon price", func(in *FoodInput, _ **ImageUpload) {
			in.AddOns = []AddOnInput{{Name: "Cheese", Price: -1}}
		}},
		{"NaN addon price", func(in *FoodInput, _ **ImageUpload) {
			in.AddOns = []AddOnInput{{Name: "Cheese", Price: math.NaN()}}
		}},
		{"unknown category", func(in *FoodInput, _ **ImageUpload) { in.CategoryID = 999 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			img := pngUpload()
			tt.mutate(&in, &img)
			_, err := svc.CreateFood(ctx, in, img)
			assert.True(t, IsValidation(err), "got %v", err)
		})
	}
	assert.Empty(t, store.objects)
}

func TestCatalogService_RejectsNonFinitePrices(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newCatalog(t)
	cat, err := svc.CreateCategory(ctx, "Mains")
	require.NoError(t, err)
	food, err := svc.CreateFood(ctx, FoodInput{CategoryID: cat.ID, Name: "Burger", Description: "Beef", Price: 9.5}, pngUpload())
	require.NoError(t, err)

	for _, price := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		p := price
		_, err := svc.UpdateFood(ctx, food.ID, FoodPatch{Price: &p})
		assert.True(t, IsValidation(err), "update food %v: got %v", price, err)

		_, err = svc.CreateAddOn(ctx, food.ID, AddOnInput{Name: "Cheese", Price: price})
		assert.True(t, IsValidation(err), "create addon %v: got %v", price, err)
	}

	addOn, err := svc.CreateAddOn(ctx, food.ID, AddOnInput{Name: "Cheese", Price: 1})
	require.NoError(t, err)
	inf := math.Inf(1)
	_, err = svc.UpdateAddOn(ctx, addOn.ID, AddOnPatch{Price: &inf})
	assert.True(t, IsValidation(err), "got %v", err)

	stored, err := svc.GetFood(ctx, food.ID)
	require.NoError(t, err)
	assert.Equal(t, 9.5, stored.Price)
}

func TestCatalogService_CreateFoodImageAtLimit(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newCatalog(t)
	cat, err := svc.CreateCategory(ctx, "Mains")
	require.NoError(t, err)

	img := &ImageUpload{ContentType: "image/jpeg", Data: make([]byte, MaxImageSize)}
	food, err := svc.CreateFood(ctx, FoodInput{CategoryID: cat.ID, Name: "Big", Description: "Photo", Price: 1}, img)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(food.ImageURL, ".jpeg"))
}

func TestCatalogService_InsertFailureOrphansUpload(t *testing.T) {
	ctx := context.Background()
	svc, store, _, db := newCatalog(t)
	cat, err := svc.CreateCategory(ctx, "Mains")
	require.NoError(t, err)

	require.NoError(t, db.Migrator().DropTable(&models.Food{}))

	_, err = svc.CreateFood(ctx, FoodInput{CategoryID: cat.ID, Name: "Burger", Description: "Beef", Price: 9.5}, pngUpload())
	require.Error(t, err)
	assert.False(t, IsValidation(err))
	// the uploaded image is not cleaned up
	assert.Len(t, store.objects, 1)
}

func TestCatalogService_UploadFailure(t *testing.T) {
	ctx := context.Background()
	svc, store, _, db := newCatalog(t)
	cat, err := svc.CreateCategory(ctx, "Mains")
	require.NoError(t, err)

	store.uploadErr = errors.New("bucket unavailable")
	_, err = svc.CreateFood(ctx, FoodInput{CategoryID: cat.ID, Name: "Burger", Description: "Beef", Price: 9.5}, pngUpload())
	require.Error(t, err)

	var count int64
	db.Model(&models.Food{}).Count(&count)
	assert.Zero(t, count)
}

func TestCatalogService_DeleteFoodToleratesImageRemovalFailure(t *testing.T) {
	ctx := context.Background()
	svc, store, _, db := newCatalog(t)
	cat, err := svc.CreateCategory(ctx, "Mains")
	require.NoError(t, err)
	food, err := svc.CreateFood(ctx, FoodInput{
		CategoryID: cat.ID, Name: "Burger", Description: "Beef", Price: 9.5,
		AddOns: []AddOnInput{{Name: "Cheese", Price: 1}},
	}, pngUpload())
	require.NoError(t, err)

	store.removeErr = errors.New("permission denied")
	require.NoError(t, svc.DeleteFood(ctx, food.ID))

	_, err = svc.GetFood(ctx, food.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var addOns int64
	db.Model(&models.AddOn{}).Where("food_id = ?", food.ID).Count(&addOns)
	assert.Equal(t, int64(1), addOns)
}

func TestCatalogService_UpdateFood(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newCatalog(t)
	cat, err := svc.CreateCategory(ctx, "Mains")
	require.NoError(t, err)
	other, err := svc.CreateCategory(ctx, "Specials")
	require.NoError(t, err)
	food, err := svc.CreateFood(ctx, FoodInput{CategoryID: cat.ID, Name: "Burger", Description: "Beef", Price: 9.5}, pngUpload())
	require.NoError(t, err)

	name := "Cheeseburger"
	price := 11.0
	off := false
	updated, err := svc.UpdateFood(ctx, food.ID, FoodPatch{Name: &name, Price: &price, Available: &off, CategoryID: &other.ID})
	require.NoError(t, err)
	assert.Equal(t, "Cheeseburger", updated.Name)
	assert.Equal(t, "Beef", updated.Description)
	assert.InDelta(t, 11, updated.Price, 1e-9)
	assert.False(t, updated.Available)
	assert.Equal(t, other.ID, updated.CategoryID)

	empty := " "
	_, err = svc.UpdateFood(ctx, food.ID, FoodPatch{Name: &empty})
	assert.True(t, IsValidation(err))
	zero := 0.0
	_, err = svc.UpdateFood(ctx, food.ID, FoodPatch{Price: &zero})
	assert.True(t, IsValidation(err))
	missing := uint(999)
	_, err = svc.UpdateFood(ctx, food.ID, FoodPatch{CategoryID: &missing})
	assert.True(t, IsValidation(err))
	_, err = svc.UpdateFood(ctx, 999, FoodPatch{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogService_AddOns(t *testing.T) {
	ctx := context.Background()
	svc, _, pub, _ := newCatalog(t)
	cat, err := svc.CreateCategory(ctx, "Mains")
	require.NoError(t, err)
	food, err := svc.CreateFood(ctx, FoodInput{CategoryID: cat.ID, Name: "Burger", Description: "Beef", Price: 9.5}, pngUpload())
	require.NoError(t, err)

	addOn, err := svc.CreateAddOn(ctx, food.ID, AddOnInput{Name: "Bacon", Price: 2})
	require.NoError(t, err)
	assert.NotZero(t, addOn.ID)

	_, err = svc.CreateAddOn(ctx, food.ID, AddOnInput{Name: "", Price: 2})
	assert.True(t, IsValidation(err))
	_, err = svc.CreateAddOn(ctx, food.ID, AddOnInput{Name: "Egg", Price: -0.5})
	assert.True(t, IsValidation(err))
	_, err = svc.CreateAddOn(ctx, 999, AddOnInput{Name: "Egg", Price: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	price := 2.5
	updated, err := svc.UpdateAddOn(ctx, addOn.ID, AddOnPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "Bacon", updated.Name)
	assert.InDelta(t, 2.5, updated.Price, 1e-9)

	list, err := svc.ListAddOns(ctx, food.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteAddOn(ctx, addOn.ID))
	assert.ErrorIs(t, svc.DeleteAddOn(ctx, addOn.ID), ErrNotFound)
	assert.Contains(t, pub.types, events.AddOnDeleted)
}

func TestSanitizePathSegment(t *testing.T) {
	tests := map[string]string{
		"Main Course":   "Main_Course",
		"Café & Bar":    "Caf____Bar",
		"already_ok-1":  "already_ok-1",
		"../etc/passwd": "___etc_passwd",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizePathSegment(in), in)
	}
}
