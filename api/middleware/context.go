package middleware

import "context"

type contextKey string

const (
	ctxWholesalerID contextKey = "wholesaler_id"
	ctxActorUserID  contextKey = "actor_user_id"
)

func WholesalerIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxWholesalerID).(string); ok {
		return v
	}
	return ""
}

func ActorUserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxActorUserID).(string); ok {
		return v
	}
	return ""
}

// WithWholesalerID injects the active wholesaler identifier for downstream handlers.
func WithWholesalerID(ctx context.Context, wholesalerID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxWholesalerID, wholesalerID)
}

// WithActorUserID injects the acting user identifier for downstream handlers.
func WithActorUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActorUserID, userID)
}
