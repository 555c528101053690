package ordernumber

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wholesail/wholesail-backend/pkg/db/models"
)

// Repository persists the per-wholesaler order counters and scans existing
// order numbers when a counter has to be seeded.
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

// IncrementCounter advances the counter row atomically and reports whether a
// row existed. Concurrent submissions serialize on the row update instead of
// racing a MAX scan.
func (r *Repository) IncrementCounter(ctx context.Context, wholesalerID uuid.UUID, prefix string) (int64, bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.OrderCounter{}).
		Where("wholesaler_id = ? AND prefix = ?", wholesalerID, prefix).
		Updates(map[string]any{
			"last_number": gorm.Expr("last_number + 1"),
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return 0, false, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, false, nil
	}

	var counter models.OrderCounter
	err := r.db.WithContext(ctx).
		First(&counter, "wholesaler_id = ? AND prefix = ?", wholesalerID, prefix).
		Error
	if err != nil {
		return 0, false, err
	}
	return counter.LastNumber, true, nil
}

// CreateCounter inserts a counter row seeded at the given value. A unique
// violation means another transaction seeded it first.
func (r *Repository) CreateCounter(ctx context.Context, wholesalerID uuid.UUID, prefix string, lastNumber int64) error {
	counter := models.OrderCounter{
		ID:           uuid.New(),
		WholesalerID: wholesalerID,
		Prefix:       prefix,
		LastNumber:   lastNumber,
	}
	return r.db.WithContext(ctx).Create(&counter).Error
}

// ReseedCounter raises the counter to at least floor. Used after a
// uniqueness conflict to realign a counter that fell behind numbers assigned
// outside it.
func (r *Repository) ReseedCounter(ctx context.Context, wholesalerID uuid.UUID, prefix string, floor int64) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderCounter{}).
		Where("wholesaler_id = ? AND prefix = ? AND last_number < ?", wholesalerID, prefix, floor).
		Updates(map[string]any{
			"last_number": floor,
			"updated_at":  time.Now(),
		}).
		Error
}

// MaxAssignedNumber returns the highest numeric suffix among the
// wholesaler's existing orders for the prefix. Used only to seed a counter
// for wholesalers that predate the counter table.
func (r *Repository) MaxAssignedNumber(ctx context.Context, wholesalerID uuid.UUID, prefix string) (int64, error) {
	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("wholesaler_id = ? AND order_number LIKE ?", wholesalerID, prefix+"-%").
		Pluck("order_number", &numbers).
		Error
	if err != nil {
		return 0, err
	}

	var max int64
	for _, number := range numbers {
		suffix := strings.TrimPrefix(number, prefix+"-")
		value, err := strconv.ParseInt(suffix, 10, 64)
		if err != nil {
			continue
		}
		if value > max {
			max = value
		}
	}
	return max, nil
}
