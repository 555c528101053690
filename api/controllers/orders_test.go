package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wholesail/wholesail-backend/api/middleware"
	"github.com/wholesail/wholesail-backend/internal/orders"
	"github.com/wholesail/wholesail-backend/pkg/db/models"
	"github.com/wholesail/wholesail-backend/pkg/enums"
	"github.com/wholesail/wholesail-backend/pkg/logger"
	"github.com/wholesail/wholesail-backend/pkg/pagination"
	"github.com/wholesail/wholesail-backend/pkg/types"
)

type stubOrdersService struct {
	created *orders.CreateOrderInput
	order   *models.Order
	err     error
}

func (s *stubOrdersService) CreateOrder(ctx context.Context, input orders.CreateOrderInput) (*models.Order, error) {
	s.created = &input
	if s.err != nil {
		return nil, s.err
	}
	return s.order, nil
}

func (s *stubOrdersService) GetOrder(ctx context.Context, wholesalerID, orderID uuid.UUID) (*models.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.order, nil
}

func (s *stubOrdersService) ListOrders(ctx context.Context, wholesalerID uuid.UUID, params pagination.Params, filters orders.ListFilters) (*orders.OrderList, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &orders.OrderList{Orders: []models.Order{*s.order}}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func sampleOrder(wholesalerID uuid.UUID) *models.Order {
	return &models.Order{
		ID:           uuid.New(),
		OrderNumber:  "SF-004",
		WholesalerID: wholesalerID,
		RetailerID:   uuid.New(),
		Status:       enums.OrderStatusPending,
		Subtotal:     decimal.RequireFromString("38.00"),
		PlatformFee:  decimal.RequireFromString("1.25"),
		Total:        decimal.RequireFromString("38.00"),
	}
}

func TestCreateOrder(t *testing.T) {
	logg := testLogger()
	wholesalerID := uuid.New()
	retailerID := uuid.New()
	productID := uuid.New()

	body := `{
		"retailer_id": "` + retailerID.String() + `",
		"lines": [
			{"product_id": "` + productID.String() + `", "quantity": 2, "unit_price": "4.50", "selling_type": "units"}
		]
	}`

	t.Run("missing wholesaler context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
		rec := httptest.NewRecorder()
		CreateOrder(&stubOrdersService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403 without wholesaler context, got %d", rec.Code)
		}
	})

	t.Run("invalid body", func(t *testing.T) {
		ctx := middleware.WithWholesalerID(context.Background(), wholesalerID.String())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{"lines": []}`))
		req = req.WithContext(ctx)
		rec := httptest.NewRecorder()
		CreateOrder(&stubOrdersService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for empty lines, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		ctx := middleware.WithWholesalerID(context.Background(), wholesalerID.String())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
		req = req.WithContext(ctx)

		stub := &stubOrdersService{order: sampleOrder(wholesalerID)}
		rec := httptest.NewRecorder()
		CreateOrder(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 on success, got %d body=%s", rec.Code, rec.Body.String())
		}
		if stub.created == nil {
			t.Fatalf("expected CreateOrder to be invoked")
		}
		if stub.created.WholesalerID != wholesalerID {
			t.Fatalf("wholesaler id not taken from context")
		}
		if len(stub.created.Lines) != 1 || stub.created.Lines[0].SellingType != enums.SellingTypeUnits {
			t.Fatalf("unexpected lines: %+v", stub.created.Lines)
		}

		var envelope types.SuccessEnvelope
		if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
			t.Fatalf("failed to decode envelope: %v", err)
		}
		payload, ok := envelope.Data.(map[string]any)
		if !ok {
			t.Fatalf("unexpected envelope data %T", envelope.Data)
		}
		if payload["order_number"] != "SF-004" {
			t.Fatalf("unexpected order number %v", payload["order_number"])
		}
	})

	t.Run("unknown selling type", func(t *testing.T) {
		ctx := middleware.WithWholesalerID(context.Background(), wholesalerID.String())
		bad := strings.Replace(body, `"units"`, `"crates"`, 1)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(bad))
		req = req.WithContext(ctx)
		rec := httptest.NewRecorder()
		CreateOrder(&stubOrdersService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for bad selling type, got %d", rec.Code)
		}
	})
}

func TestListOrdersRejectsBadLimit(t *testing.T) {
	logg := testLogger()
	ctx := middleware.WithWholesalerID(context.Background(), uuid.NewString())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?limit=9999", nil)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	ListOrders(&stubOrdersService{order: sampleOrder(uuid.New())}, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range limit, got %d", rec.Code)
	}
}

func TestListOrdersRejectsBadStatusFilter(t *testing.T) {
	logg := testLogger()
	ctx := middleware.WithWholesalerID(context.Background(), uuid.NewString())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?status=teleported", nil)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	ListOrders(&stubOrdersService{order: sampleOrder(uuid.New())}, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", rec.Code)
	}
}
