package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flavorfleet/admin-dashboard/analytics"
	"github.com/flavorfleet/admin-dashboard/models"
	"github.com/flavorfleet/admin-dashboard/repository"
)

func TestAnalyticsService_Reports(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	jan := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)

	require.NoError(t, db.Create(&models.Category{Name: "Mains"}).Error)
	require.NoError(t, db.Create(&models.Food{CategoryID: 1, Name: "Burger", Price: 10, Available: true}).Error)
	require.NoError(t, db.Create(&models.Order{UserID: "u1", Amount: 100, CreatedAt: jan}).Error)
	require.NoError(t, db.Create(&models.Order{UserID: "u2", Amount: 200, CreatedAt: jan.Add(10 * time.Hour)}).Error)
	require.NoError(t, db.Create(&models.OrderItem{OrderID: 1, FoodItemID: 1, Quantity: 2, CreatedAt: jan}).Error)

	svc := NewAnalyticsService(repository.NewOrderRepository(db), time.UTC)

	ov, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, ov.TotalOrders)
	assert.Equal(t, 2, ov.UniqueUsers)

	sum, err := svc.MonthlySummary(ctx, analytics.MonthlyOptions{})
	require.NoError(t, err)
	assert.InDelta(t, 300, sum.Revenue, 1e-9)
	assert.InDelta(t, 33.3, sum.DayNight[0].Percent, 0.05)

	wa, err := svc.WeekdayAnalysis(ctx, analytics.WeekdayOptions{Scope: analytics.ScopeMonthly})
	require.NoError(t, err)
	assert.Equal(t, 2, wa.TotalOrders)

	di, err := svc.DailyInsight(ctx, analytics.DailyOptions{})
	require.NoError(t, err)
	assert.Equal(t, []analytics.ItemQuantity{{Name: "Burger", Quantity: 2}}, di.Items)
}

func TestAnalyticsService_EmptyHistory(t *testing.T) {
	svc := NewAnalyticsService(repository.NewOrderRepository(setupTestDB(t)), time.UTC)
	sum, err := svc.MonthlySummary(context.Background(), analytics.MonthlyOptions{})
	require.NoError(t, err)
	assert.True(t, sum.Empty)
}
