package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wholesail/wholesail-backend/api/middleware"
	"github.com/wholesail/wholesail-backend/api/responses"
	"github.com/wholesail/wholesail-backend/api/validators"
	"github.com/wholesail/wholesail-backend/internal/orders"
	"github.com/wholesail/wholesail-backend/pkg/db/models"
	"github.com/wholesail/wholesail-backend/pkg/enums"
	pkgerrors "github.com/wholesail/wholesail-backend/pkg/errors"
	"github.com/wholesail/wholesail-backend/pkg/logger"
	"github.com/wholesail/wholesail-backend/pkg/pagination"
)

type createOrderRequest struct {
	RetailerID      uuid.UUID         `json:"retailer_id" validate:"required"`
	DeliveryAddress *string           `json:"delivery_address,omitempty"`
	Notes           *string           `json:"notes,omitempty"`
	Lines           []createOrderLine `json:"lines" validate:"required,min=1,dive"`
}

type createOrderLine struct {
	ProductID   uuid.UUID       `json:"product_id" validate:"required"`
	Quantity    int             `json:"quantity" validate:"required,min=1"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"required"`
	SellingType string          `json:"selling_type" validate:"required,oneof=units pallets"`
}

type orderItemResponse struct {
	ItemID      uuid.UUID       `json:"item_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
	SellingType string          `json:"selling_type"`
}

type orderResponse struct {
	OrderID         uuid.UUID           `json:"order_id"`
	OrderNumber     string              `json:"order_number"`
	RetailerID      uuid.UUID           `json:"retailer_id"`
	Status          string              `json:"status"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	PlatformFee     decimal.Decimal     `json:"platform_fee"`
	Total           decimal.Decimal     `json:"total"`
	DeliveryAddress *string             `json:"delivery_address,omitempty"`
	Notes           *string             `json:"notes,omitempty"`
	Items           []orderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
}

type orderListResponse struct {
	Orders     []orderResponse `json:"orders"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

func newOrderResponse(order *models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ItemID:      item.ID,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
			SellingType: item.SellingType.String(),
		})
	}
	return orderResponse{
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		RetailerID:      order.RetailerID,
		Status:          order.Status.String(),
		Subtotal:        order.Subtotal,
		PlatformFee:     order.PlatformFee,
		Total:           order.Total,
		DeliveryAddress: order.DeliveryAddress,
		Notes:           order.Notes,
		Items:           items,
		CreatedAt:       order.CreatedAt,
	}
}

// CreateOrder accepts a retailer submission and runs it through the
// transactional order pipeline.
func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		wholesalerID, err := wholesalerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines := make([]orders.LineInput, 0, len(payload.Lines))
		for _, line := range payload.Lines {
			sellingType, parseErr := enums.ParseSellingType(line.SellingType)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid selling type"))
				return
			}
			lines = append(lines, orders.LineInput{
				ProductID:   line.ProductID,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
				SellingType: sellingType,
			})
		}

		order, err := svc.CreateOrder(r.Context(), orders.CreateOrderInput{
			WholesalerID:    wholesalerID,
			RetailerID:      payload.RetailerID,
			DeliveryAddress: payload.DeliveryAddress,
			Notes:           payload.Notes,
			Lines:           lines,
			ActorUserID:     actorUserIDFromContext(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}

// OrderDetail returns one order with its items, scoped to the active wholesaler.
func OrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		wholesalerID, err := wholesalerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseURLID(r, "orderID", "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), wholesalerID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// ListOrders returns the wholesaler's order page, newest first.
func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
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

		filters, err := buildOrderFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListOrders(r.Context(), wholesalerID, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := orderListResponse{
			Orders:     make([]orderResponse, 0, len(list.Orders)),
			NextCursor: list.NextCursor,
		}
		for i := range list.Orders {
			out.Orders = append(out.Orders, newOrderResponse(&list.Orders[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

func buildOrderFilters(r *http.Request) (orders.ListFilters, error) {
	var filters orders.ListFilters

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("retailer_id")); raw != "" {
		retailerID, err := uuid.Parse(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid retailer id filter")
		}
		filters.RetailerID = &retailerID
	}

	return filters, nil
}

func parsePageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

func parseURLID(r *http.Request, param, label string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, param))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, label+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+label)
	}
	return id, nil
}

func wholesalerIDFromContext(r *http.Request) (uuid.UUID, error) {
	raw := middleware.WholesalerIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "wholesaler context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "invalid wholesaler context")
	}
	return id, nil
}

func actorUserIDFromContext(r *http.Request) uuid.UUID {
	raw := middleware.ActorUserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}
