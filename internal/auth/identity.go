package auth

import (
	"context"

	"github.com/ahmedsps3/personal-budget-app/internal/core"
)

type contextKey string

const userContextKey contextKey = "auth.user"

// WithUser attaches the resolved user to the request context.
func WithUser(ctx context.Context, user core.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (core.User, bool) {
	user, ok := ctx.Value(userContextKey).(core.User)
	return user, ok
}
