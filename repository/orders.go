package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/flavorfleet/admin-dashboard/analytics"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// LoadDataset reads all six tables in full. Filtering happens afterwards in
// the analytics pipeline.
func (r *OrderRepository) LoadDataset(ctx context.Context) (*analytics.Dataset, error) {
	ds := &analytics.Dataset{}
	db := r.db.WithContext(ctx)

	loads := []struct {
		table string
		dest  interface{}
	}{
		{"orders", &ds.Orders},
		{"order_items", &ds.OrderItems},
		{"order_item_addons", &ds.OrderItemAddOns},
		{"foods", &ds.Foods},
		{"categories", &ds.Categories},
		{"addons", &ds.AddOns},
	}
	for _, l := range loads {
		if err := db.Order(orderColumn(l.table)).Find(l.dest).Error; err != nil {
			return nil, fmt.Errorf("load %s: %w", l.table, err)
		}
	}
	return ds, nil
}

func orderColumn(table string) string {
	if table == "order_item_addons" {
		return "order_item_id ASC, addon_id ASC"
	}
	return "id ASC"
}
