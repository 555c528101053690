package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wholesail/wholesail-backend/pkg/enums"
)

// OrderItem is owned exclusively by its order; rows are created during order
// creation and never mutated afterwards.
type OrderItem struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	OrderID     uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID   uuid.UUID         `gorm:"column:product_id;type:uuid;not null"`
	Quantity    int               `gorm:"column:quantity;not null"`
	UnitPrice   decimal.Decimal   `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Total       decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	SellingType enums.SellingType `gorm:"column:selling_type;not null;default:'units'"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
}
