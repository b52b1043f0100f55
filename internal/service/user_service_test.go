package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/backoffice-api/internal/models"
	"github.com/noah-isme/backoffice-api/internal/repository"
	appErrors "github.com/noah-isme/backoffice-api/pkg/errors"
)

type mockUserRepo struct {
	users     map[string]*models.User
	listErr   error
	updateErr error
	listedFor string
	auditLogs []*models.AuditLog
}

func (m *mockUserRepo) List(ctx context.Context, excludeID string, page int) ([]models.User, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	m.listedFor = excludeID
	var users []models.User
	for _, u := range m.users {
		if u.ID != excludeID {
			users = append(users, *u)
		}
	}
	return users, len(users), nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		copy := *user
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) EmailTaken(ctx context.Context, email, exceptID string) (bool, error) {
	for _, u := range m.users {
		if u.Email == email && u.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = "new-user"
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.users[user.ID]; !ok {
		return sql.ErrNoRows
	}
	copy := *user
	m.users[user.ID] = &copy
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

type mockRevoker struct {
	open       map[string][]string
	terminated []string
}

func (m *mockRevoker) ListOpenIDs(ctx context.Context, userID string) ([]string, error) {
	return m.open[userID], nil
}

func (m *mockRevoker) TerminateAll(ctx context.Context, userID string) error {
	m.terminated = append(m.terminated, userID)
	return nil
}

type recordingStore struct {
	SessionStore
	deleted []string
	err     error
}

func (s *recordingStore) Delete(ctx context.Context, ids ...string) error {
	s.deleted = append(s.deleted, ids...)
	return s.err
}

func newUserFixture() (*UserService, *mockUserRepo, *mockRevoker, *recordingStore) {
	repo := &mockUserRepo{users: map[string]*models.User{
		"admin-1": {ID: "admin-1", Email: "root@example.com", Role: models.RoleAdmin, Status: models.StatusActive},
		"u1":      {ID: "u1", Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace", Role: models.RoleUser, Status: models.StatusActive},
		"u2":      {ID: "u2", Email: "grace@example.com", FirstName: "Grace", LastName: "Hopper", Role: models.RoleUser, Status: models.StatusActive},
	}}
	revoker := &mockRevoker{open: map[string][]string{"u1": {"s1", "s2"}}}
	store := &recordingStore{}
	svc := NewUserService(UserServiceParams{Users: repo, Sessions: revoker, Store: store, Logger: zap.NewNop()})
	return svc, repo, revoker, store
}

func strPtr(s string) *string { return &s }

func TestUserServiceList(t *testing.T) {
	svc, repo, _, _ := newUserFixture()

	page, err := svc.List(context.Background(), testAdmin, 0)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", repo.listedFor)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, 2, page.TotalUsers)
	assert.Equal(t, 1, page.TotalPages)

	repo.listErr = errors.New("db down")
	_, err = svc.List(context.Background(), testAdmin, 0)
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestUserServiceGet(t *testing.T) {
	svc, _, _, _ := newUserFixture()

	user, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.FirstName)

	_, err = svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestUserServiceCreate(t *testing.T) {
	svc, repo, _, _ := newUserFixture()

	user, err := svc.Create(context.Background(), testAdmin, models.CreateUserRequest{
		FirstName: "Linus",
		LastName:  "Torvalds",
		Email:     "Linus@Example.com",
		Password:  "Kernel1991",
	}, models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, "linus@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, models.StatusActive, user.Status)
	assert.NotEqual(t, "Kernel1991", user.PasswordHash)
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionUserCreate, repo.auditLogs[0].Action)

	_, err = svc.Create(context.Background(), testAdmin, models.CreateUserRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "Engine1843",
	}, models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	_, err = svc.Create(context.Background(), testAdmin, models.CreateUserRequest{Email: "bad"}, models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestUserServiceUpdate(t *testing.T) {
	svc, repo, _, store := newUserFixture()

	user, err := svc.Update(context.Background(), testAdmin, "u1", models.UpdateUserRequest{FirstName: strPtr(" Augusta ")}, models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, "Augusta", user.FirstName)
	assert.Equal(t, "ada@example.com", repo.users["u1"].Email)
	assert.Empty(t, store.deleted)

	_, err = svc.Update(context.Background(), testAdmin, "u1", models.UpdateUserRequest{Email: strPtr("GRACE@example.com")}, models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	_, err = svc.Update(context.Background(), testAdmin, "missing", models.UpdateUserRequest{}, models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	repo.updateErr = repository.ErrDuplicate
	_, err = svc.Update(context.Background(), testAdmin, "u1", models.UpdateUserRequest{Email: strPtr("new@example.com")}, models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestUserServiceDeactivateRevokesSessions(t *testing.T) {
	svc, repo, revoker, store := newUserFixture()

	inactive := models.StatusInactive
	_, err := svc.Update(context.Background(), testAdmin, "u1", models.UpdateUserRequest{Status: &inactive}, models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInactive, repo.users["u1"].Status)
	assert.Equal(t, []string{"s1", "s2"}, store.deleted)
	assert.Equal(t, []string{"u1"}, revoker.terminated)
}

func TestUserServiceDelete(t *testing.T) {
	svc, repo, _, store := newUserFixture()

	require.NoError(t, svc.Delete(context.Background(), testAdmin, "u1", models.RequestMeta{}))
	assert.NotContains(t, repo.users, "u1")
	assert.Equal(t, []string{"s1", "s2"}, store.deleted)

	err := svc.Delete(context.Background(), testAdmin, "u1", models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	err = svc.Delete(context.Background(), testAdmin, "admin-1", models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestUserServiceDeleteToleratesStoreFailure(t *testing.T) {
	svc, repo, _, store := newUserFixture()
	store.err = appErrors.Unavailable(errors.New("timeout"), "session delete")

	require.NoError(t, svc.Delete(context.Background(), testAdmin, "u1", models.RequestMeta{}))
	assert.NotContains(t, repo.users, "u1")
}
