package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/wholesail/wholesail-backend/api/responses"
	pkgerrors "github.com/wholesail/wholesail-backend/pkg/errors"
	"github.com/wholesail/wholesail-backend/pkg/logger"
)

const (
	wholesalerIDHeader = "X-Wholesaler-Id"
	actorUserIDHeader  = "X-Actor-Id"
)

// TenantContext resolves the active wholesaler from the request headers.
// The upstream gateway authenticates the caller and stamps these headers;
// everything behind this middleware is scoped to one wholesaler.
func TenantContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawWholesalerID := strings.TrimSpace(r.Header.Get(wholesalerIDHeader))
			if rawWholesalerID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "wholesaler context missing"))
				return
			}
			if _, err := uuid.Parse(rawWholesalerID); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid wholesaler id"))
				return
			}

			ctx := WithWholesalerID(r.Context(), rawWholesalerID)
			if logg != nil {
				ctx = logg.WithWholesalerID(ctx, rawWholesalerID)
			}

			if rawActorID := strings.TrimSpace(r.Header.Get(actorUserIDHeader)); rawActorID != "" {
				if _, err := uuid.Parse(rawActorID); err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid actor id"))
					return
				}
				ctx = WithActorUserID(ctx, rawActorID)
				if logg != nil {
					ctx = logg.WithUserID(ctx, rawActorID)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
