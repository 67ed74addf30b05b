// Package users provides the credential store contract and its
// PostgreSQL-backed implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// Repository is the contract the authentication core needs from user storage.
// Email uniqueness is enforced at this boundary: Create reports
// common.ErrDuplicateEmail when the email is already taken.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
