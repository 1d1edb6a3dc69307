// Package requestctx carries the booking caller's identity through a
// request so outbound provider calls can attribute it.
package requestctx

import (
	"context"
	"strings"
)

type callerKey struct{}

// WithUserID returns ctx carrying userID. Blank ids leave ctx unchanged.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ctx
	}
	return context.WithValue(ctx, callerKey{}, userID)
}

// UserIDFromContext returns the caller id, or "" when none was stored.
func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	userID, _ := ctx.Value(callerKey{}).(string)
	return userID
}
