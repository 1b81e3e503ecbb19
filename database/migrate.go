package database

import (
	"fmt"

	"github.com/flavorfleet/admin-dashboard/models"
	"github.com/flavorfleet/admin-dashboard/utils"
	"gorm.io/gorm"
)

// Tables lists every model managed by the dashboard in migration order.
func Tables() []interface{} {
	return []interface{}{
		&models.Category{},
		&models.Food{},
		&models.AddOn{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemAddOn{},
	}
}

// Migrate creates or updates the schema and reports which tables exist.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Tables()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, model := range Tables() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return fmt.Errorf("parse model: %w", err)
		}
		if !db.Migrator().HasTable(model) {
			return fmt.Errorf("table %s missing after migration", stmt.Schema.Table)
		}
		utils.InfoLogger.Printf("Table verified: %s", stmt.Schema.Table)
	}
	return nil
}
