package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/wholesail/wholesail-backend/pkg/enums"
)

// StockAlert flags a product whose stock breached its threshold.
// At most one unresolved alert exists per product at any time.
type StockAlert struct {
	ID           uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	ProductID    uuid.UUID            `gorm:"column:product_id;type:uuid;not null;index"`
	WholesalerID uuid.UUID            `gorm:"column:wholesaler_id;type:uuid;not null;index"`
	AlertType    enums.StockAlertType `gorm:"column:alert_type;not null"`
	CurrentStock int                  `gorm:"column:current_stock;not null"`
	Threshold    int                  `gorm:"column:threshold;not null"`
	IsRead       bool                 `gorm:"column:is_read;not null;default:false"`
	IsResolved   bool                 `gorm:"column:is_resolved;not null;default:false"`
	ResolvedAt   *time.Time           `gorm:"column:resolved_at"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
