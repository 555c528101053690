package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wholesail/wholesail-backend/api/responses"
	"github.com/wholesail/wholesail-backend/api/validators"
	"github.com/wholesail/wholesail-backend/internal/alerts"
	"github.com/wholesail/wholesail-backend/internal/inventory"
	"github.com/wholesail/wholesail-backend/pkg/db/models"
	"github.com/wholesail/wholesail-backend/pkg/enums"
	pkgerrors "github.com/wholesail/wholesail-backend/pkg/errors"
	"github.com/wholesail/wholesail-backend/pkg/logger"
)

type recordMovementRequest struct {
	ProductID    uuid.UUID `json:"product_id" validate:"required"`
	MovementType string    `json:"movement_type" validate:"required,oneof=initial manual_increase manual_decrease"`
	Quantity     int       `json:"quantity" validate:"required,min=1"`
	Reason       *string   `json:"reason,omitempty"`
}

type movementResponse struct {
	MovementID   uuid.UUID  `json:"movement_id"`
	ProductID    uuid.UUID  `json:"product_id"`
	MovementType string     `json:"movement_type"`
	Quantity     int        `json:"quantity"`
	StockBefore  int        `json:"stock_before"`
	StockAfter   int        `json:"stock_after"`
	Reason       *string    `json:"reason,omitempty"`
	OrderID      *uuid.UUID `json:"order_id,omitempty"`
	CustomerName *string    `json:"customer_name,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type movementListResponse struct {
	Movements  []movementResponse `json:"movements"`
	NextCursor string             `json:"next_cursor,omitempty"`
}

type alertResponse struct {
	AlertID      uuid.UUID  `json:"alert_id"`
	ProductID    uuid.UUID  `json:"product_id"`
	AlertType    string     `json:"alert_type"`
	CurrentStock int        `json:"current_stock"`
	Threshold    int        `json:"threshold"`
	IsRead       bool       `json:"is_read"`
	IsResolved   bool       `json:"is_resolved"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type alertListResponse struct {
	Alerts     []alertResponse `json:"alerts"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

func newMovementResponse(movement *models.StockMovement) movementResponse {
	return movementResponse{
		MovementID:   movement.ID,
		ProductID:    movement.ProductID,
		MovementType: movement.MovementType.String(),
		Quantity:     movement.Quantity,
		StockBefore:  movement.StockBefore,
		StockAfter:   movement.StockAfter,
		Reason:       movement.Reason,
		OrderID:      movement.OrderID,
		CustomerName: movement.CustomerName,
		CreatedAt:    movement.CreatedAt,
	}
}

func newAlertResponse(alert *models.StockAlert) alertResponse {
	return alertResponse{
		AlertID:      alert.ID,
		ProductID:    alert.ProductID,
		AlertType:    alert.AlertType.String(),
		CurrentStock: alert.CurrentStock,
		Threshold:    alert.Threshold,
		IsRead:       alert.IsRead,
		IsResolved:   alert.IsResolved,
		ResolvedAt:   alert.ResolvedAt,
		CreatedAt:    alert.CreatedAt,
	}
}

// RecordStockMovement applies a manual stock adjustment and appends the
// ledger row.
func RecordStockMovement(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		wholesalerID, err := wholesalerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload recordMovementRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movementType, err := enums.ParseMovementType(payload.MovementType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid movement type"))
			return
		}

		movement, err := svc.RecordMovement(r.Context(), inventory.RecordMovementInput{
			WholesalerID: wholesalerID,
			ProductID:    payload.ProductID,
			MovementType: movementType,
			Quantity:     payload.Quantity,
			Reason:       payload.Reason,
			ActorUserID:  actorUserIDFromContext(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newMovementResponse(movement))
	}
}

// ListStockMovements returns the audit ledger page, newest first.
func ListStockMovements(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		wholesalerID, err := wholesalerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filters inventory.MovementFilters
		if raw := strings.TrimSpace(r.URL.Query().Get("product_id")); raw != "" {
			productID, parseErr := uuid.Parse(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid product id filter"))
				return
			}
			filters.ProductID = &productID
		}

		list, err := svc.ListMovements(r.Context(), wholesalerID, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := movementListResponse{
			Movements:  make([]movementResponse, 0, len(list.Movements)),
			NextCursor: list.NextCursor,
		}
		for i := range list.Movements {
			out.Movements = append(out.Movements, newMovementResponse(&list.Movements[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// ListStockAlerts returns the wholesaler's alert page, newest first.
// Unresolved alerts only unless include_resolved=true.
func ListStockAlerts(engine *alerts.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if engine == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "alerts engine unavailable"))
			return
		}

		wholesalerID, err := wholesalerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := alerts.Filters{
			UnresolvedOnly: !strings.EqualFold(r.URL.Query().Get("include_resolved"), "true"),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("product_id")); raw != "" {
			productID, parseErr := uuid.Parse(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid product id filter"))
				return
			}
			filters.ProductID = &productID
		}

		list, err := engine.List(r.Context(), wholesalerID, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := alertListResponse{
			Alerts:     make([]alertResponse, 0, len(list.Alerts)),
			NextCursor: list.NextCursor,
		}
		for i := range list.Alerts {
			out.Alerts = append(out.Alerts, newAlertResponse(&list.Alerts[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// ResolveStockAlert closes an open alert.
func ResolveStockAlert(engine *alerts.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if engine == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "alerts engine unavailable"))
			return
		}

		wholesalerID, err := wholesalerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		alertID, err := parseURLID(r, "alertID", "alert id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		alert, err := engine.Resolve(r.Context(), nil, wholesalerID, alertID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newAlertResponse(alert))
	}
}

// ReadStockAlert flags an alert as seen without resolving it.
func ReadStockAlert(engine *alerts.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if engine == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "alerts engine unavailable"))
			return
		}

		wholesalerID, err := wholesalerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		alertID, err := parseURLID(r, "alertID", "alert id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := engine.MarkRead(r.Context(), wholesalerID, alertID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "read"})
	}
}
