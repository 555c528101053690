package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a wholesaler listing.
//
// BaseUnitStock is the single source of truth for inventory; Stock and
// PalletStock are legacy display mirrors recomputed after every mutation.
type Product struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	WholesalerID      uuid.UUID       `gorm:"column:wholesaler_id;type:uuid;not null;index"`
	SKU               *string         `gorm:"column:sku"`
	Name              string          `gorm:"column:name;not null"`
	UnitPrice         decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	PalletPrice       decimal.Decimal `gorm:"column:pallet_price;type:numeric(12,2);not null;default:0"`
	BaseUnitStock     int             `gorm:"column:base_unit_stock;not null;default:0"`
	QuantityInPack    int             `gorm:"column:quantity_in_pack;not null;default:1"`
	UnitsPerPallet    int             `gorm:"column:units_per_pallet;not null;default:1"`
	LowStockThreshold *int            `gorm:"column:low_stock_threshold"`
	Stock             int             `gorm:"column:stock;not null;default:0"`
	PalletStock       int             `gorm:"column:pallet_stock;not null;default:0"`
	IsActive          bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
