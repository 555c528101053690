package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wholesail/wholesail-backend/pkg/enums"
)

// Order is the header row created once per retailer submission.
// OrderNumber is immutable once assigned and unique within a wholesaler.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber     string            `gorm:"column:order_number;not null;uniqueIndex:idx_orders_wholesaler_number,priority:2"`
	WholesalerID    uuid.UUID         `gorm:"column:wholesaler_id;type:uuid;not null;uniqueIndex:idx_orders_wholesaler_number,priority:1"`
	RetailerID      uuid.UUID         `gorm:"column:retailer_id;type:uuid;not null;index"`
	Status          enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	Subtotal        decimal.Decimal   `gorm:"column:subtotal;type:numeric(12,2);not null"`
	PlatformFee     decimal.Decimal   `gorm:"column:platform_fee;type:numeric(12,2);not null;default:0"`
	Total           decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	DeliveryAddress *string           `gorm:"column:delivery_address"`
	Notes           *string           `gorm:"column:notes"`
	Items           []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
