package models

import "time"

// AddOn is an optional extra sold with one food item.
type AddOn struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FoodID    uint      `gorm:"not null;index" json:"food_id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Price     float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AddOn) TableName() string {
	return "addons"
}
