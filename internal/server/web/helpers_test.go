package web

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	tasksrepo "github.com/dmitrijs2005/taskkeeper/internal/server/repositories/tasks"
	usersrepo "github.com/dmitrijs2005/taskkeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// memUsersRepo is an in-memory users.Repository for handler tests.
type memUsersRepo struct {
	byID map[string]*models.User
	seq  int
}

func newMemUsersRepo() *memUsersRepo {
	return &memUsersRepo{byID: make(map[string]*models.User)}
}

func (m *memUsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	for _, u := range m.byID {
		if u.Email == user.Email {
			return nil, common.ErrDuplicateEmail
		}
	}
	m.seq++
	stored := *user
	stored.ID = fmt.Sprintf("u-%d", m.seq)
	stored.IsActive = true
	m.byID[stored.ID] = &stored
	return &stored, nil
}

func (m *memUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	copied := *u
	return &copied, nil
}

// memTasksRepo is an in-memory tasks.Repository with the same owner-scoping
// semantics as the PostgreSQL one.
type memTasksRepo struct {
	byID map[string]*models.Task
	now  time.Time
}

func newMemTasksRepo() *memTasksRepo {
	return &memTasksRepo{byID: make(map[string]*models.Task), now: time.Now()}
}

func (m *memTasksRepo) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	task.ID = uuid.NewString()
	m.now = m.now.Add(time.Millisecond)
	task.CreatedAt = m.now
	stored := *task
	m.byID[stored.ID] = &stored
	return task, nil
}

func (m *memTasksRepo) List(ctx context.Context, ownerID string, skip, limit int) ([]*models.Task, error) {
	var owned []*models.Task
	for _, t := range m.byID {
		if t.OwnerID == ownerID {
			copied := *t
			owned = append(owned, &copied)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].CreatedAt.Before(owned[j].CreatedAt) })
	if skip >= len(owned) {
		return nil, nil
	}
	owned = owned[skip:]
	if limit < len(owned) {
		owned = owned[:limit]
	}
	return owned, nil
}

func (m *memTasksRepo) GetByID(ctx context.Context, id, ownerID string) (*models.Task, error) {
	t, ok := m.byID[id]
	if !ok || t.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	copied := *t
	return &copied, nil
}

func (m *memTasksRepo) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	stored, ok := m.byID[task.ID]
	if !ok || stored.OwnerID != task.OwnerID {
		return nil, common.ErrorNotFound
	}
	task.CreatedAt = stored.CreatedAt
	copied := *task
	m.byID[copied.ID] = &copied
	return task, nil
}

func (m *memTasksRepo) Delete(ctx context.Context, id, ownerID string) error {
	t, ok := m.byID[id]
	if !ok || t.OwnerID != ownerID {
		return common.ErrorNotFound
	}
	delete(m.byID, id)
	return nil
}

type memRepoManager struct {
	users *memUsersRepo
	tasks *memTasksRepo
}

func (m *memRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memRepoManager) Users(db dbx.DBTX) usersrepo.Repository      { return m.users }
func (m *memRepoManager) Tasks(db dbx.DBTX) tasksrepo.Repository      { return m.tasks }

type noopLogger struct{}

func (noopLogger) Debug(context.Context, string, ...any) {}
func (noopLogger) Info(context.Context, string, ...any)  {}
func (noopLogger) Warn(context.Context, string, ...any)  {}
func (noopLogger) Error(context.Context, string, ...any) {}
func (noopLogger) With(...any) logging.Logger            { return noopLogger{} }

// newTestServer wires real services over in-memory repositories. The sqlmock
// handle only backs transactions started by TaskService.Update.
func newTestServer(t *testing.T) (http.Handler, sqlmock.Sqlmock, *memRepoManager) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	mock.MatchExpectationsInOrder(false)

	rm := &memRepoManager{users: newMemUsersRepo(), tasks: newMemTasksRepo()}
	cfg := &config.Config{SecretKey: testSecret, TokenValidityDuration: 30 * time.Minute}

	userSvc := services.NewUserService(db, rm, cfg)
	taskSvc := services.NewTaskService(db, rm)
	guard := NewGuard([]byte(testSecret), rm.users)

	srv := NewServer(":0", noopLogger{}, guard, userSvc, taskSvc)
	return srv.routes(), mock, rm
}
