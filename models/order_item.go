package models

import "time"

type OrderItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"not null;index" json:"order_id"`
	FoodItemID uint      `gorm:"column:food_item_id;not null;index" json:"food_item_id"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

// OrderItemAddOn links an ordered item to an add-on. There is no price
// snapshot, reports that need a price read the current add-on row.
type OrderItemAddOn struct {
	OrderItemID uint `gorm:"primaryKey;autoIncrement:false" json:"order_item_id"`
	AddOnID     uint `gorm:"column:addon_id;primaryKey;autoIncrement:false" json:"addon_id"`
}

func (OrderItemAddOn) TableName() string {
	return "order_item_addons"
}
