package web

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

type principalKey struct{}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, principalKey{}, user)
}

// UserFromContext extracts the authenticated user placed by the auth
// middleware. The second result is false on unauthenticated contexts.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(principalKey{}).(*models.User)
	return user, ok
}
