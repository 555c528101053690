package models

import (
	"time"

	"github.com/google/uuid"
)

// Wholesaler is a seller tenant on the platform.
type Wholesaler struct {
	ID                       uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	BusinessName             string    `gorm:"column:business_name;not null"`
	Email                    string    `gorm:"column:email;not null"`
	Phone                    *string   `gorm:"column:phone"`
	DefaultLowStockThreshold int       `gorm:"column:default_low_stock_threshold;not null;default:10"`
	IsActive                 bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt                time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
