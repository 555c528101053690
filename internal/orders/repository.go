package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wholesail/wholesail-backend/pkg/db"
	"github.com/wholesail/wholesail-backend/pkg/db/models"
	"github.com/wholesail/wholesail-backend/pkg/enums"
	pkgerrors "github.com/wholesail/wholesail-backend/pkg/errors"
	"github.com/wholesail/wholesail-backend/pkg/pagination"
)

// uniqueOrderNumberConstraint guards order numbers within a wholesaler.
const uniqueOrderNumberConstraint = "idx_orders_wholesaler_number"

// Repository persists orders and their line items.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// InsertOrder writes the order header. A duplicate order number surfaces as
// a concurrency conflict so the coordinator can retry allocation.
func (r *Repository) InsertOrder(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Omit("Items").Create(order).Error; err != nil {
		if db.IsUniqueViolation(err, uniqueOrderNumberConstraint) {
			return pkgerrors.Wrap(pkgerrors.CodeConcurrency, err, "order number already taken").
				WithDetails(map[string]any{"orderNumber": order.OrderNumber})
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert order")
	}
	return nil
}

// InsertItem writes one line item.
func (r *Repository) InsertItem(ctx context.Context, item *models.OrderItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert order item")
	}
	return nil
}

// FindByID loads an order with its items, scoped to the wholesaler.
func (r *Repository) FindByID(ctx context.Context, wholesalerID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&order, "id = ? AND wholesaler_id = ?", orderID, wholesalerID).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found").
				WithDetails(map[string]any{"orderId": orderID.String()})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return &order, nil
}

// FindRetailer loads the submitting user.
func (r *Repository) FindRetailer(ctx context.Context, retailerID uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", retailerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "retailer not found").
				WithDetails(map[string]any{"retailerId": retailerID.String()})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load retailer")
	}
	return &user, nil
}

// FindWholesaler loads the tenant row for prefix derivation.
func (r *Repository) FindWholesaler(ctx context.Context, wholesalerID uuid.UUID) (*models.Wholesaler, error) {
	var wholesaler models.Wholesaler
	err := r.db.WithContext(ctx).First(&wholesaler, "id = ?", wholesalerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "wholesaler not found").
				WithDetails(map[string]any{"wholesalerId": wholesalerID.String()})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wholesaler")
	}
	return &wholesaler, nil
}

// ListFilters narrows the order listing.
type ListFilters struct {
	Status     *enums.OrderStatus
	RetailerID *uuid.UUID
}

// OrderList is one page of orders, newest first.
type OrderList struct {
	Orders     []models.Order
	NextCursor string
}

// ListForWholesaler returns the wholesaler's orders with cursor pagination.
func (r *Repository) ListForWholesaler(ctx context.Context, wholesalerID uuid.UUID, params pagination.Params, filters ListFilters) (*OrderList, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	qb := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Preload("Items").
		Where("wholesaler_id = ?", wholesalerID)
	if filters.Status != nil {
		qb = qb.Where("status = ?", *filters.Status)
	}
	if filters.RetailerID != nil {
		qb = qb.Where("retailer_id = ?", *filters.RetailerID)
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Order
	err = qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
	}
	return &OrderList{Orders: rows, NextCursor: nextCursor}, nil
}
