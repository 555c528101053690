package customers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wholesail/wholesail-backend/pkg/db/models"
	pkgerrors "github.com/wholesail/wholesail-backend/pkg/errors"
)

// Repository answers "who are this wholesaler's customers" across the three
// coexisting relationship paths: the wholesaler_customers table, the legacy
// users.wholesaler_id column, and customer group membership. Callers never
// touch the individual paths; this is the single capability query.
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

const relationshipFilter = `(
  users.id IN (
    SELECT wc.user_id FROM wholesaler_customers wc
    WHERE wc.wholesaler_id = ? AND wc.status = ?
  )
  OR users.wholesaler_id = ?
  OR users.id IN (
    SELECT m.user_id FROM customer_group_members m
    JOIN customer_groups g ON g.id = m.group_id
    WHERE g.wholesaler_id = ?
  )
)`

// IsCustomer reports whether the user is connected to the wholesaler through
// any relationship path.
func (r *Repository) IsCustomer(ctx context.Context, wholesalerID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("users.id = ?", userID).
		Where(relationshipFilter, wholesalerID, models.RelationshipStatusActive, wholesalerID, wholesalerID).
		Count(&count).
		Error
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check customer relationship")
	}
	return count > 0, nil
}

// ListCustomersWithPhone returns every connected user that has a phone
// number on file, ordered by account age so downstream tie-breaks are
// deterministic.
func (r *Repository) ListCustomersWithPhone(ctx context.Context, wholesalerID uuid.UUID) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("users.phone IS NOT NULL AND users.phone <> ''").
		Where(relationshipFilter, wholesalerID, models.RelationshipStatusActive, wholesalerID, wholesalerID).
		Order("users.created_at ASC").
		Order("users.id ASC").
		Find(&users).
		Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers with phone")
	}
	return users, nil
}

// OrderCounts returns how many orders each given user has placed with the
// wholesaler.
func (r *Repository) OrderCounts(ctx context.Context, wholesalerID uuid.UUID, userIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(userIDs))
	if len(userIDs) == 0 {
		return counts, nil
	}

	type row struct {
		RetailerID uuid.UUID
		Total      int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("retailer_id, COUNT(*) AS total").
		Where("wholesaler_id = ? AND retailer_id IN ?", wholesalerID, userIDs).
		Group("retailer_id").
		Scan(&rows).
		Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count prior orders")
	}
	for _, r := range rows {
		counts[r.RetailerID] = r.Total
	}
	return counts, nil
}

// FindWholesaler loads the tenant row, used to derive its email domain for
// the resolver's exclusion rules.
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
