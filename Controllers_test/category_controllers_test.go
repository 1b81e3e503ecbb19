package Controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flavorfleet/admin-dashboard/models"
)

func createCategory(t *testing.T, app *testApp, name string) models.Category {
	t.Helper()
	w := app.authed(t, http.MethodPost, "/admin/categories", map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var cat models.Category
	decodeData(t, w, &cat)
	return cat
}

func TestCategoryCRUD(t *testing.T) {
	app := newTestApp(t)

	pizza := createCategory(t, app, "  Pizza ")
	assert.Equal(t, "Pizza", pizza.Name)

	t.Run("Duplicate name ignores case", func(t *testing.T) {
		w := app.authed(t, http.MethodPost, "/admin/categories", map[string]string{"name": "pizza"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Blank name", func(t *testing.T) {
		w := app.authed(t, http.MethodPost, "/admin/categories", map[string]string{"name": "   "})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Rename", func(t *testing.T) {
		w := app.authed(t, http.MethodPatch, fmt.Sprintf("/admin/categories/%d", pizza.ID), map[string]string{"name": "Pizzas"})
		require.Equal(t, http.StatusOK, w.Code)
		var cat models.Category
		decodeData(t, w, &cat)
		assert.Equal(t, "Pizzas", cat.Name)
	})

	t.Run("Rename missing category", func(t *testing.T) {
		w := app.authed(t, http.MethodPatch, "/admin/categories/999", map[string]string{"name": "Ghost"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Invalid ID", func(t *testing.T) {
		w := app.authed(t, http.MethodDelete, "/admin/categories/abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCategoryDeleteRequiresNoFoods(t *testing.T) {
	app := newTestApp(t)
	drinks := createCategory(t, app, "Drinks")
	empty := createCategory(t, app, "Seasonal")
	require.NoError(t, app.db.Create(&models.Food{CategoryID: drinks.ID, Name: "Tea", Description: "Hot", Price: 20, Available: true}).Error)

	var list []models.CategoryWithCount
	decodeData(t, app.authed(t, http.MethodGet, "/admin/categories", nil), &list)
	require.Len(t, list, 2)
	counts := map[string]models.CategoryWithCount{}
	for _, c := range list {
		counts[c.Name] = c
	}
	assert.Equal(t, int64(1), counts["Drinks"].FoodCount)
	assert.False(t, counts["Drinks"].Deletable)
	assert.True(t, counts["Seasonal"].Deletable)

	w := app.authed(t, http.MethodDelete, fmt.Sprintf("/admin/categories/%d", drinks.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = app.authed(t, http.MethodDelete, fmt.Sprintf("/admin/categories/%d", empty.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.authed(t, http.MethodDelete, fmt.Sprintf("/admin/categories/%d", empty.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
