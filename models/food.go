package models

import "time"

type Food struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CategoryID  uint      `gorm:"not null;index" json:"category_id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Price       float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	ImageURL    string    `gorm:"column:image_url;type:varchar(512)" json:"image_url"`
	Available   bool      `gorm:"not null" json:"available"`
	AddOns      []AddOn   `gorm:"foreignKey:FoodID" json:"add_ons,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
