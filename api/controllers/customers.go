package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/wholesail/wholesail-backend/api/responses"
	"github.com/wholesail/wholesail-backend/api/validators"
	"github.com/wholesail/wholesail-backend/internal/customers"
	pkgerrors "github.com/wholesail/wholesail-backend/pkg/errors"
	"github.com/wholesail/wholesail-backend/pkg/logger"
)

type resolveCustomerRequest struct {
	PhoneLast4 string `json:"phone_last4" validate:"required,len=4,numeric"`
	Phone      string `json:"phone,omitempty"`
}

type resolvedCustomerResponse struct {
	UserID     uuid.UUID `json:"user_id"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	PhoneLast4 string    `json:"phone_last4"`
	OrderCount int       `json:"order_count"`
}

type resolveCustomerResponse struct {
	Matched    bool                      `json:"matched"`
	Customer   *resolvedCustomerResponse `json:"customer,omitempty"`
	Strategy   string                    `json:"strategy,omitempty"`
	Candidates int                       `json:"candidates"`
}

// ResolveCustomer maps inbound phone evidence to a connected customer account.
func ResolveCustomer(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customers service unavailable"))
			return
		}

		wholesalerID, err := wholesalerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload resolveCustomerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resolution, err := svc.Resolve(r.Context(), customers.ResolveInput{
			WholesalerID: wholesalerID,
			LastFour:     payload.PhoneLast4,
			FullPhone:    payload.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := resolveCustomerResponse{
			Matched:    resolution.Matched,
			Strategy:   resolution.Strategy,
			Candidates: resolution.Candidates,
		}
		if resolution.Customer != nil {
			out.Customer = &resolvedCustomerResponse{
				UserID:     resolution.Customer.UserID,
				FullName:   resolution.Customer.FullName,
				Email:      resolution.Customer.Email,
				PhoneLast4: resolution.Customer.PhoneLast4,
				OrderCount: resolution.Customer.OrderCount,
			}
		}
		responses.WriteSuccess(w, out)
	}
}
