package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/wholesail/wholesail-backend/api/middleware"
	"github.com/wholesail/wholesail-backend/internal/customers"
	"github.com/wholesail/wholesail-backend/pkg/types"
)

type stubCustomersService struct {
	input      *customers.ResolveInput
	resolution *customers.Resolution
}

func (s *stubCustomersService) Resolve(ctx context.Context, input customers.ResolveInput) (*customers.Resolution, error) {
	s.input = &input
	return s.resolution, nil
}

func (s *stubCustomersService) IsCustomer(ctx context.Context, wholesalerID, userID uuid.UUID) (bool, error) {
	return true, nil
}

func TestResolveCustomer(t *testing.T) {
	logg := testLogger()
	wholesalerID := uuid.New()
	customerID := uuid.New()

	t.Run("rejects short suffix", func(t *testing.T) {
		ctx := middleware.WithWholesalerID(context.Background(), wholesalerID.String())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/customers/resolve", strings.NewReader(`{"phone_last4": "12"}`))
		req = req.WithContext(ctx)
		rec := httptest.NewRecorder()
		ResolveCustomer(&stubCustomersService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for short suffix, got %d", rec.Code)
		}
	})

	t.Run("matched", func(t *testing.T) {
		stub := &stubCustomersService{resolution: &customers.Resolution{
			Matched: true,
			Customer: &customers.CustomerIdentity{
				UserID:     customerID,
				FullName:   "Alice Nguyen",
				Email:      "alice@corner.shop",
				PhoneLast4: "1234",
				OrderCount: 3,
			},
			Strategy:   "order_history",
			Candidates: 2,
		}}

		ctx := middleware.WithWholesalerID(context.Background(), wholesalerID.String())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/customers/resolve", strings.NewReader(`{"phone_last4": "1234"}`))
		req = req.WithContext(ctx)
		rec := httptest.NewRecorder()
		ResolveCustomer(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
		}
		if stub.input == nil || stub.input.WholesalerID != wholesalerID || stub.input.LastFour != "1234" {
			t.Fatalf("unexpected resolve input: %+v", stub.input)
		}

		var envelope types.SuccessEnvelope
		if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
			t.Fatalf("failed to decode envelope: %v", err)
		}
		payload := envelope.Data.(map[string]any)
		if payload["matched"] != true || payload["strategy"] != "order_history" {
			t.Fatalf("unexpected payload %v", payload)
		}
		customer := payload["customer"].(map[string]any)
		if customer["full_name"] != "Alice Nguyen" {
			t.Fatalf("unexpected customer %v", customer)
		}
	})

	t.Run("no match omits customer", func(t *testing.T) {
		stub := &stubCustomersService{resolution: &customers.Resolution{Matched: false}}
		ctx := middleware.WithWholesalerID(context.Background(), wholesalerID.String())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/customers/resolve", strings.NewReader(`{"phone_last4": "0000"}`))
		req = req.WithContext(ctx)
		rec := httptest.NewRecorder()
		ResolveCustomer(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var envelope types.SuccessEnvelope
		if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
			t.Fatalf("failed to decode envelope: %v", err)
		}
		payload := envelope.Data.(map[string]any)
		if payload["matched"] != false {
			t.Fatalf("expected matched=false, got %v", payload)
		}
		if _, ok := payload["customer"]; ok {
			t.Fatalf("customer should be omitted when unmatched")
		}
	})
}
