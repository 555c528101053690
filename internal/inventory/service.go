package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wholesail/wholesail-backend/pkg/db/models"
	"github.com/wholesail/wholesail-backend/pkg/enums"
	pkgerrors "github.com/wholesail/wholesail-backend/pkg/errors"
	"github.com/wholesail/wholesail-backend/pkg/logger"
	"github.com/wholesail/wholesail-backend/pkg/metrics"
	"github.com/wholesail/wholesail-backend/pkg/outbox"
	"github.com/wholesail/wholesail-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type alertChecker interface {
	Check(ctx context.Context, tx *gorm.DB, product *models.Product) (*models.StockAlert, error)
}

// Service exposes manual stock adjustments and the movement ledger.
type Service interface {
	RecordMovement(ctx context.Context, input RecordMovementInput) (*models.StockMovement, error)
	ListMovements(ctx context.Context, wholesalerID uuid.UUID, params pagination.Params, filters MovementFilters) (*MovementList, error)
}

type service struct {
	repo    *Repository
	tx      txRunner
	alerts  alertChecker
	outbox  outboxPublisher
	logg    *logger.Logger
	metrics *metrics.OrderMetrics
}

// RecordMovementInput describes one manual stock mutation. Quantity is the
// magnitude in base units; the movement type determines the sign.
type RecordMovementInput struct {
	WholesalerID uuid.UUID
	ProductID    uuid.UUID
	MovementType enums.MovementType
	Quantity     int
	Reason       *string
	ActorUserID  uuid.UUID
}

// stockAdjustedEvent is the outbox body for manual stock changes.
type stockAdjustedEvent struct {
	ProductID    uuid.UUID `json:"productId"`
	WholesalerID uuid.UUID `json:"wholesalerId"`
	MovementType string    `json:"movementType"`
	Quantity     int       `json:"quantity"`
	StockBefore  int       `json:"stockBefore"`
	StockAfter   int       `json:"stockAfter"`
}

// NewService builds the inventory service with the required dependencies.
func NewService(repo *Repository, tx txRunner, alerts alertChecker, events outboxPublisher, logg *logger.Logger, m *metrics.OrderMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if alerts == nil {
		return nil, fmt.Errorf("alert checker required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, alerts: alerts, outbox: events, logg: logg, metrics: m}, nil
}

// RecordMovement applies a manual stock change in one transaction: atomic
// stock adjust, ledger append, threshold check, outbox event. Purchase
// movements belong to order creation and are rejected here.
func (s *service) RecordMovement(ctx context.Context, input RecordMovementInput) (*models.StockMovement, error) {
	if !input.MovementType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown movement type").
			WithDetails(map[string]any{"movementType": string(input.MovementType)})
	}
	if input.MovementType == enums.MovementTypePurchase {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase movements are created by order submission").
			WithDetails(map[string]any{"movementType": string(input.MovementType)})
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
			WithDetails(map[string]any{"quantity": input.Quantity})
	}

	delta := input.Quantity
	if input.MovementType == enums.MovementTypeManualDecrease {
		delta = -delta
	}

	var movement *models.StockMovement
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		product, err := txRepo.FindProduct(ctx, input.ProductID, input.WholesalerID)
		if err != nil {
			return err
		}

		before, after, err := txRepo.AdjustStock(ctx, product.ID, delta)
		if err != nil {
			return err
		}

		movement = &models.StockMovement{
			ID:           uuid.New(),
			ProductID:    product.ID,
			WholesalerID: input.WholesalerID,
			MovementType: input.MovementType,
			Quantity:     delta,
			StockBefore:  before,
			StockAfter:   after,
			Reason:       input.Reason,
		}
		if err := txRepo.InsertMovement(ctx, movement); err != nil {
			return err
		}

		product.BaseUnitStock = after
		if _, err := s.alerts.Check(ctx, tx, product); err != nil {
			return err
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventStockAdjusted,
			AggregateType: enums.AggregateProduct,
			AggregateID:   product.ID,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID, WholesalerID: &input.WholesalerID},
			Data: stockAdjustedEvent{
				ProductID:    product.ID,
				WholesalerID: input.WholesalerID,
				MovementType: input.MovementType.String(),
				Quantity:     delta,
				StockBefore:  before,
				StockAfter:   after,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncStockMovement(input.MovementType.String())
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"product_id":    input.ProductID.String(),
			"movement_type": input.MovementType.String(),
			"quantity":      delta,
			"stock_after":   movement.StockAfter,
		})
		s.logg.Info(logCtx, "stock movement recorded")
	}
	return movement, nil
}

// ListMovements returns the wholesaler's ledger page.
func (s *service) ListMovements(ctx context.Context, wholesalerID uuid.UUID, params pagination.Params, filters MovementFilters) (*MovementList, error) {
	return s.repo.ListMovements(ctx, wholesalerID, params, filters)
}
