package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/wholesail/wholesail-backend/pkg/enums"
)

// StockMovement is one row of the append-only stock audit ledger.
// Invariant: StockAfter = StockBefore + Quantity. Rows are never updated
// or deleted.
type StockMovement struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	ProductID    uuid.UUID          `gorm:"column:product_id;type:uuid;not null;index"`
	WholesalerID uuid.UUID          `gorm:"column:wholesaler_id;type:uuid;not null;index"`
	MovementType enums.MovementType `gorm:"column:movement_type;not null"`
	Quantity     int                `gorm:"column:quantity;not null"`
	StockBefore  int                `gorm:"column:stock_before;not null"`
	StockAfter   int                `gorm:"column:stock_after;not null"`
	Reason       *string            `gorm:"column:reason"`
	OrderID      *uuid.UUID         `gorm:"column:order_id;type:uuid"`
	CustomerName *string            `gorm:"column:customer_name"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
}
