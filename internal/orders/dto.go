package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wholesail/wholesail-backend/pkg/enums"
)

// CreateOrderInput is the full order submission: header plus lines in the
// order the retailer entered them. Line order is preserved through
// persistence and stock mutation.
type CreateOrderInput struct {
	WholesalerID    uuid.UUID
	RetailerID      uuid.UUID
	DeliveryAddress *string
	Notes           *string
	Lines           []LineInput
	ActorUserID     uuid.UUID
}

// LineInput is one requested product line.
type LineInput struct {
	ProductID   uuid.UUID
	Quantity    int
	UnitPrice   decimal.Decimal
	SellingType enums.SellingType
}

// OrderCreatedEvent is the outbox body emitted after a successful order.
type OrderCreatedEvent struct {
	OrderID      uuid.UUID       `json:"orderId"`
	OrderNumber  string          `json:"orderNumber"`
	WholesalerID uuid.UUID       `json:"wholesalerId"`
	RetailerID   uuid.UUID       `json:"retailerId"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	PlatformFee  decimal.Decimal `json:"platformFee"`
	Total        decimal.Decimal `json:"total"`
	LineCount    int             `json:"lineCount"`
}
