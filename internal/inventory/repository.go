package inventory

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

// Repository persists product stock and the movement ledger.
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

// FindProduct loads a product scoped to its wholesaler. A product belonging
// to another wholesaler is reported as not found, not forbidden, so callers
// cannot probe another tenant's catalog.
func (r *Repository) FindProduct(ctx context.Context, productID, wholesalerID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		First(&product, "id = ? AND wholesaler_id = ?", productID, wholesalerID).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"productId": productID.String()})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return &product, nil
}

// AdjustStock applies the delta to base_unit_stock with a single atomic
// update, then recomputes the legacy display mirrors from the new value. The
// row lock taken by the update holds until the transaction commits, so the
// re-read cannot observe another writer.
func (r *Repository) AdjustStock(ctx context.Context, productID uuid.UUID, delta int) (before, after int, err error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]any{
			"base_unit_stock": gorm.Expr("base_unit_stock + ?", delta),
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return 0, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "adjust base unit stock")
	}
	if result.RowsAffected == 0 {
		return 0, 0, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
			WithDetails(map[string]any{"productId": productID.String()})
	}

	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", productID).Error; err != nil {
		return 0, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload product after stock adjust")
	}

	view := View(Snapshot{
		BaseUnitStock:  product.BaseUnitStock,
		QuantityInPack: product.QuantityInPack,
		UnitsPerPallet: product.UnitsPerPallet,
	})
	err = r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]any{
			"stock":        view.AvailableUnits,
			"pallet_stock": view.AvailablePallets,
		}).
		Error
	if err != nil {
		return 0, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh stock mirrors")
	}

	after = product.BaseUnitStock
	return after - delta, after, nil
}

// InsertMovement appends one ledger row. Rows are never updated or deleted.
func (r *Repository) InsertMovement(ctx context.Context, movement *models.StockMovement) error {
	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(movement).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert stock movement")
	}
	return nil
}

// MovementFilters narrows the ledger listing.
type MovementFilters struct {
	ProductID *uuid.UUID
}

// MovementList is one page of ledger rows, newest first.
type MovementList struct {
	Movements  []models.StockMovement
	NextCursor string
}

// ListMovements returns the wholesaler's ledger with cursor pagination.
func (r *Repository) ListMovements(ctx context.Context, wholesalerID uuid.UUID, params pagination.Params, filters MovementFilters) (*MovementList, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	qb := r.db.WithContext(ctx).
		Model(&models.StockMovement{}).
		Where("wholesaler_id = ?", wholesalerID)
	if filters.ProductID != nil {
		qb = qb.Where("product_id = ?", *filters.ProductID)
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.StockMovement
	err = qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock movements")
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
	}
	return &MovementList{Movements: rows, NextCursor: nextCursor}, nil
}
