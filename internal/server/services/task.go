package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
)

// TaskService implements owner-scoped task operations. The owner id always
// comes from the authenticated caller, never from request payloads, so one
// user's tasks are invisible to everyone else.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager) *TaskService {
	return &TaskService{db: db, repomanager: m}
}

// Create stores a new task owned by ownerID.
func (s *TaskService) Create(ctx context.Context, ownerID string, task *models.Task) (*models.Task, error) {
	task.OwnerID = ownerID
	repo := s.repomanager.Tasks(s.db)
	t, err := repo.Create(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("error creating task: %v", err)
	}
	return t, nil
}

// List returns a window of the owner's tasks.
func (s *TaskService) List(ctx context.Context, ownerID string, skip, limit int) ([]*models.Task, error) {
	repo := s.repomanager.Tasks(s.db)
	result, err := repo.List(ctx, ownerID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing tasks: %v", err)
	}
	return result, nil
}

// Get returns the task with the given id if ownerID owns it. A foreign or
// absent task yields common.ErrorNotFound either way.
func (s *TaskService) Get(ctx context.Context, id, ownerID string) (*models.Task, error) {
	repo := s.repomanager.Tasks(s.db)
	return repo.GetByID(ctx, id, ownerID)
}

// Update applies a partial update to the owner's task. The merge of patch
// fields over stored values happens here, inside one transaction, so a
// concurrent writer cannot interleave between the read and the write.
func (s *TaskService) Update(ctx context.Context, id, ownerID string, patch models.TaskPatch) (*models.Task, error) {
	var updated *models.Task
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Tasks(tx)
		task, err := repo.GetByID(ctx, id, ownerID)
		if err != nil {
			return err
		}
		task.ApplyPatch(patch)
		updated, err = repo.Update(ctx, task)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the owner's task.
func (s *TaskService) Delete(ctx context.Context, id, ownerID string) error {
	repo := s.repomanager.Tasks(s.db)
	return repo.Delete(ctx, id, ownerID)
}
