package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderCounter is the per-wholesaler sequence row backing order number
// allocation. LastNumber advances through an atomic UPDATE so concurrent
// order submissions serialize on the row instead of racing a MAX scan.
type OrderCounter struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	WholesalerID uuid.UUID `gorm:"column:wholesaler_id;type:uuid;not null;uniqueIndex:idx_order_counters_wholesaler_prefix,priority:1"`
	Prefix       string    `gorm:"column:prefix;not null;uniqueIndex:idx_order_counters_wholesaler_prefix,priority:2"`
	LastNumber   int64     `gorm:"column:last_number;not null;default:0"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
