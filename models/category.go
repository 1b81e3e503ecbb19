package models

import "time"

// Category groups food items on the menu. Names are unique ignoring case;
// the catalog service enforces it since not every driver can.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CategoryWithCount is a category row plus the number of food items that
// still reference it.
type CategoryWithCount struct {
	Category
	FoodCount int64 `gorm:"column:food_count" json:"food_count"`
	Deletable bool  `gorm:"-" json:"deletable"`
}
