// Package alerts evaluates stock thresholds after every mutation and keeps
// at most one unresolved alert open per product. Restocking never resolves
// an alert; resolution is an explicit operation.
package alerts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wholesail/wholesail-backend/pkg/db/models"
	"github.com/wholesail/wholesail-backend/pkg/enums"
	"github.com/wholesail/wholesail-backend/pkg/logger"
	"github.com/wholesail/wholesail-backend/pkg/metrics"
	"github.com/wholesail/wholesail-backend/pkg/outbox"
	"github.com/wholesail/wholesail-backend/pkg/pagination"
)

// Engine runs the threshold check and owns alert lifecycle operations.
type Engine struct {
	repo    *Repository
	events  *outbox.Service
	logg    *logger.Logger
	metrics *metrics.OrderMetrics
}

func NewEngine(repo *Repository, events *outbox.Service, logg *logger.Logger, m *metrics.OrderMetrics) *Engine {
	return &Engine{repo: repo, events: events, logg: logg, metrics: m}
}

// alertPayload is the outbox event body for raised and resolved alerts.
type alertPayload struct {
	AlertID      string `json:"alertId"`
	ProductID    string `json:"productId"`
	WholesalerID string `json:"wholesalerId"`
	AlertType    string `json:"alertType"`
	CurrentStock int    `json:"currentStock"`
	Threshold    int    `json:"threshold"`
}

// Check compares the product's base-unit stock to its threshold and creates
// an alert on breach. A product with an open alert is skipped so a second
// breach never stacks a duplicate. Returns the created alert, or nil when no
// alert was needed. Must run inside the transaction that mutated the stock;
// pass that tx so the check sees the uncommitted value.
func (e *Engine) Check(ctx context.Context, tx *gorm.DB, product *models.Product) (*models.StockAlert, error) {
	repo := e.repo
	if tx != nil {
		repo = repo.WithTx(tx)
	}

	threshold := 0
	if product.LowStockThreshold != nil {
		threshold = *product.LowStockThreshold
	} else {
		fallback, err := repo.WholesalerDefaultThreshold(ctx, product.WholesalerID)
		if err != nil {
			return nil, err
		}
		threshold = fallback
	}

	var alertType enums.StockAlertType
	switch {
	case product.BaseUnitStock <= 0:
		alertType = enums.StockAlertTypeOutOfStock
	case product.BaseUnitStock <= threshold:
		alertType = enums.StockAlertTypeLowStock
	default:
		return nil, nil
	}

	open, err := repo.FindOpen(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, nil
	}

	alert := &models.StockAlert{
		ID:           uuid.New(),
		ProductID:    product.ID,
		WholesalerID: product.WholesalerID,
		AlertType:    alertType,
		CurrentStock: product.BaseUnitStock,
		Threshold:    threshold,
	}
	if err := repo.Create(ctx, alert); err != nil {
		return nil, err
	}

	if e.events != nil && tx != nil {
		err := e.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventStockAlertRaised,
			AggregateType: enums.AggregateStockAlert,
			AggregateID:   alert.ID,
			Data:          alertEventBody(alert),
			Version:       1,
		})
		if err != nil {
			return nil, err
		}
	}
	e.metrics.IncAlertRaised(alert.AlertType.String())

	if e.logg != nil {
		logCtx := e.logg.WithFields(ctx, map[string]any{
			"product_id":    product.ID.String(),
			"alert_type":    alert.AlertType.String(),
			"current_stock": alert.CurrentStock,
			"threshold":     alert.Threshold,
		})
		e.logg.Info(logCtx, "stock alert raised")
	}
	return alert, nil
}

// Resolve closes an open alert and records the resolution event.
func (e *Engine) Resolve(ctx context.Context, tx *gorm.DB, wholesalerID, alertID uuid.UUID) (*models.StockAlert, error) {
	repo := e.repo
	if tx != nil {
		repo = repo.WithTx(tx)
	}
	alert, err := repo.Resolve(ctx, wholesalerID, alertID)
	if err != nil {
		return nil, err
	}

	if e.events != nil && tx != nil {
		err := e.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventStockAlertResolved,
			AggregateType: enums.AggregateStockAlert,
			AggregateID:   alert.ID,
			Data:          alertEventBody(alert),
			Version:       1,
		})
		if err != nil {
			return nil, err
		}
	}
	return alert, nil
}

// MarkRead flags an alert as seen.
func (e *Engine) MarkRead(ctx context.Context, wholesalerID, alertID uuid.UUID) error {
	return e.repo.MarkRead(ctx, wholesalerID, alertID)
}

// List returns the wholesaler's alerts.
func (e *Engine) List(ctx context.Context, wholesalerID uuid.UUID, params pagination.Params, filters Filters) (*List, error) {
	return e.repo.ListForWholesaler(ctx, wholesalerID, params, filters)
}

func alertEventBody(alert *models.StockAlert) alertPayload {
	return alertPayload{
		AlertID:      alert.ID.String(),
		ProductID:    alert.ProductID.String(),
		WholesalerID: alert.WholesalerID.String(),
		AlertType:    alert.AlertType.String(),
		CurrentStock: alert.CurrentStock,
		Threshold:    alert.Threshold,
	}
}
