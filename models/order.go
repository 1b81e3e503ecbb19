package models

import "time"

// Order rows are written by the ordering app; this service only reads them.
type Order struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(64);index" json:"user_id"`
	Amount    float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
