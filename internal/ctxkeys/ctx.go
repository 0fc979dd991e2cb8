package ctxkeys

import (
	"context"

	"github.com/stockpile-hq/stockpile/internal/model"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	PrincipalKey contextKey = "principal"
	RequestIDKey contextKey = "request_id"
)

// Principal returns the authenticated identity, if any.
func Principal(ctx context.Context) (model.Principal, bool) {
	principal, ok := ctx.Value(PrincipalKey).(model.Principal)
	return principal, ok
}

func WithPrincipal(ctx context.Context, principal model.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, principal)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}
