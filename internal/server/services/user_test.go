package services

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	tasksrepo "github.com/dmitrijs2005/taskkeeper/internal/server/repositories/tasks"
	usersrepo "github.com/dmitrijs2005/taskkeeper/internal/server/repositories/users"
)

// --- helpers ---

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func newUserService(t *testing.T, db *sql.DB, rm repomanager.RepositoryManager) *UserService {
	t.Helper()
	cfg := &config.Config{
		SecretKey:             "k",
		TokenValidityDuration: 30 * time.Minute,
	}
	return NewUserService(db, rm, cfg)
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	getOut *models.User
	getErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}
func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}
func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

type fakeTasksRepo struct {
	createOut *models.Task
	createErr error

	listOut []*models.Task
	listErr error

	getOut *models.Task
	getErr error

	updateErr error
	deleteErr error

	gotOwnerID string
	gotSkip    int
	gotLimit   int
}

func (f *fakeTasksRepo) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return task, nil
}
func (f *fakeTasksRepo) List(ctx context.Context, ownerID string, skip, limit int) ([]*models.Task, error) {
	f.gotOwnerID, f.gotSkip, f.gotLimit = ownerID, skip, limit
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}
func (f *fakeTasksRepo) GetByID(ctx context.Context, id, ownerID string) (*models.Task, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}
func (f *fakeTasksRepo) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return task, nil
}
func (f *fakeTasksRepo) Delete(ctx context.Context, id, ownerID string) error {
	return f.deleteErr
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	t *fakeTasksRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository      { return m.u }
func (m *fakeRepoManager) Tasks(db dbx.DBTX) tasksrepo.Repository      { return m.t }

func TestRegister_Success(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{createOut: &models.User{ID: "42", Email: "alice@example.com", IsActive: true}}}
	s := newUserService(t, db, rm)

	u, err := s.Register(context.Background(), "alice@example.com", "wonderland")
	if err != nil || u.ID != "42" {
		t.Fatalf("Register ok: got (%v, %v)", u, err)
	}
}

func TestRegister_DuplicateEmailPassesThrough(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{createErr: common.ErrDuplicateEmail}}
	s := newUserService(t, db, rm)

	_, err := s.Register(context.Background(), "alice@example.com", "wonderland")
	if !errors.Is(err, common.ErrDuplicateEmail) {
		t.Fatalf("want ErrDuplicateEmail, got %v", err)
	}
}

func TestRegister_RepoErrWrapped(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{createErr: errBoom{}}}
	s := newUserService(t, db, rm)

	_, err := s.Register(context.Background(), "bob@example.com", "pw")
	if err == nil || !regexp.MustCompile(`error creating user: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestLogin_Flows(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	hash, err := auth.HashPassword([]byte("right"))
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	// not found → unauthorized, indistinguishable from wrong password
	rmNF := &fakeRepoManager{u: &fakeUsersRepo{getErr: common.ErrorNotFound}}
	sNF := newUserService(t, db, rmNF)
	if _, err := sNF.Login(context.Background(), "ghost@example.com", "x"); !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("notfound → unauthorized, got %v", err)
	}

	// internal error
	rmIE := &fakeRepoManager{u: &fakeUsersRepo{getErr: errBoom{}}}
	sIE := newUserService(t, db, rmIE)
	if _, err := sIE.Login(context.Background(), "u@example.com", "x"); !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("internal → ErrorInternal, got %v", err)
	}

	// wrong password → unauthorized
	rmWP := &fakeRepoManager{u: &fakeUsersRepo{getOut: &models.User{ID: "u1", Email: "u@example.com", PasswordHash: hash}}}
	sWP := newUserService(t, db, rmWP)
	if _, err := sWP.Login(context.Background(), "u@example.com", "wrong"); !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("wrong password → unauthorized, got %v", err)
	}

	rmOK := &fakeRepoManager{u: &fakeUsersRepo{getOut: &models.User{ID: "u1", Email: "u@example.com", PasswordHash: hash}}}
	sOK := newUserService(t, db, rmOK)
	token, err := sOK.Login(context.Background(), "u@example.com", "right")
	if err != nil || token == "" {
		t.Fatalf("Login success: token=%q err=%v", token, err)
	}

	subject, err := auth.GetSubjectFromToken(token, []byte("k"))
	if err != nil || subject != "u@example.com" {
		t.Fatalf("token subject: got (%q, %v)", subject, err)
	}
}
