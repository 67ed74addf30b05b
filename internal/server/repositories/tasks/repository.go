// Package tasks provides owner-scoped task persistence. Every predicate in
// this package carries the owner id: a row that exists but belongs to another
// user is reported exactly like a row that does not exist.
package tasks

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	List(ctx context.Context, ownerID string, skip, limit int) ([]*models.Task, error)
	GetByID(ctx context.Context, id, ownerID string) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) (*models.Task, error)
	Delete(ctx context.Context, id, ownerID string) error
}
