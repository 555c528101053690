package alerts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wholesail/wholesail-backend/pkg/db/models"
	pkgerrors "github.com/wholesail/wholesail-backend/pkg/errors"
	"github.com/wholesail/wholesail-backend/pkg/pagination"
)

// Repository persists stock alerts.
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

// FindOpen returns the unresolved alert for the product, or nil when none is
// open.
func (r *Repository) FindOpen(ctx context.Context, productID uuid.UUID) (*models.StockAlert, error) {
	var alert models.StockAlert
	err := r.db.WithContext(ctx).
		First(&alert, "product_id = ? AND is_resolved = ?", productID, false).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load open stock alert")
	}
	return &alert, nil
}

// Create inserts a new alert row.
func (r *Repository) Create(ctx context.Context, alert *models.StockAlert) error {
	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(alert).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert stock alert")
	}
	return nil
}

// Resolve closes an open alert. Resolving an already resolved or missing
// alert reports not found.
func (r *Repository) Resolve(ctx context.Context, wholesalerID, alertID uuid.UUID) (*models.StockAlert, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.StockAlert{}).
		Where("id = ? AND wholesaler_id = ? AND is_resolved = ?", alertID, wholesalerID, false).
		Updates(map[string]any{
			"is_resolved": true,
			"resolved_at": now,
			"updated_at":  now,
		})
	if result.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "resolve stock alert")
	}
	if result.RowsAffected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "open stock alert not found").
			WithDetails(map[string]any{"alertId": alertID.String()})
	}

	var alert models.StockAlert
	if err := r.db.WithContext(ctx).First(&alert, "id = ?", alertID).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload stock alert")
	}
	return &alert, nil
}

// MarkRead flags an alert as seen without resolving it.
func (r *Repository) MarkRead(ctx context.Context, wholesalerID, alertID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.StockAlert{}).
		Where("id = ? AND wholesaler_id = ?", alertID, wholesalerID).
		Update("is_read", true)
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "mark stock alert read")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "stock alert not found").
			WithDetails(map[string]any{"alertId": alertID.String()})
	}
	return nil
}

// Filters narrows the alert listing.
type Filters struct {
	UnresolvedOnly bool
	ProductID      *uuid.UUID
}

// List is one page of alerts, newest first.
type List struct {
	Alerts     []models.StockAlert
	NextCursor string
}

// ListForWholesaler returns the wholesaler's alerts with cursor pagination.
func (r *Repository) ListForWholesaler(ctx context.Context, wholesalerID uuid.UUID, params pagination.Params, filters Filters) (*List, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	qb := r.db.WithContext(ctx).
		Model(&models.StockAlert{}).
		Where("wholesaler_id = ?", wholesalerID)
	if filters.UnresolvedOnly {
		qb = qb.Where("is_resolved = ?", false)
	}
	if filters.ProductID != nil {
		qb = qb.Where("product_id = ?", *filters.ProductID)
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.StockAlert
	err = qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock alerts")
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
	}
	return &List{Alerts: rows, NextCursor: nextCursor}, nil
}

// WholesalerDefaultThreshold loads the tenant-level low stock threshold used
// when a product does not set its own.
func (r *Repository) WholesalerDefaultThreshold(ctx context.Context, wholesalerID uuid.UUID) (int, error) {
	var wholesaler models.Wholesaler
	err := r.db.WithContext(ctx).
		Select("default_low_stock_threshold").
		First(&wholesaler, "id = ?", wholesalerID).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, "wholesaler not found").
				WithDetails(map[string]any{"wholesalerId": wholesalerID.String()})
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wholesaler threshold")
	}
	return wholesaler.DefaultLowStockThreshold, nil
}
