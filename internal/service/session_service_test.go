package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/backoffice-api/internal/models"
	"github.com/noah-isme/backoffice-api/internal/repository"
	appErrors "github.com/noah-isme/backoffice-api/pkg/errors"
)

type fakeSessionRepo struct {
	users    map[string]*models.User
	sessions map[string]*models.Session
	seq      int
	listed   string
}

func (r *fakeSessionRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (r *fakeSessionRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error { return nil }

func (r *fakeSessionRepo) Create(ctx context.Context, userID string) (*models.Session, error) {
	r.seq++
	s := &models.Session{ID: "sess-" + string(rune('0'+r.seq)), UserID: userID, CreatedAt: time.Now()}
	r.sessions[s.ID] = s
	return s, nil
}

func (r *fakeSessionRepo) FindOpen(ctx context.Context, userID string) (*models.Session, error) {
	for _, s := range r.sessions {
		if s.UserID == userID && !s.Terminated() {
			return s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeSessionRepo) FindWithOwner(ctx context.Context, sessionID string) (*models.SessionOwner, error) {
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	u := r.users[s.UserID]
	return &models.SessionOwner{Session: *s, Status: u.Status, Role: u.Role}, nil
}

func (r *fakeSessionRepo) Terminate(ctx context.Context, sessionID string) error {
	s, ok := r.sessions[sessionID]
	if !ok {
		return sql.ErrNoRows
	}
	now := time.Now()
	s.TerminatedAt = &now
	return nil
}

func (r *fakeSessionRepo) List(ctx context.Context, excludeUserID string, page int) ([]models.SessionListItem, int, error) {
	r.listed = excludeUserID
	items := make([]models.SessionListItem, 0, len(r.sessions))
	for _, s := range r.sessions {
		if s.UserID != excludeUserID {
			items = append(items, models.SessionListItem{ID: s.ID, CreatedAt: s.CreatedAt})
		}
	}
	return items, len(items), nil
}

type sessionFixture struct {
	svc   *SessionService
	auth  *AuthService
	repo  *fakeSessionRepo
	store *repository.SessionStore
}

var testAdmin = &models.Claims{TokenPayload: models.TokenPayload{UserID: "admin-1", Role: models.RoleAdmin}}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := repository.NewSessionStore(client, repository.SessionStoreConfig{TTL: 24 * time.Hour}, nil)
	tokens := newTestTokens(t)
	repo := &fakeSessionRepo{
		users: map[string]*models.User{
			"u1":      {ID: "u1", Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace", Role: models.RoleUser, Status: models.StatusActive},
			"u2":      {ID: "u2", Email: "off@example.com", Role: models.RoleUser, Status: models.StatusInactive},
			"admin-1": {ID: "admin-1", Email: "root@example.com", Role: models.RoleAdmin, Status: models.StatusActive},
		},
		sessions: map[string]*models.Session{},
	}

	svc := NewSessionService(SessionServiceParams{
		Sessions:  repo,
		Users:     repo,
		Store:     store,
		Tokens:    tokens,
		Logger:    zap.NewNop(),
		PublicURL: "https://backoffice.example/",
	})
	auth := NewAuthService(AuthServiceParams{Users: newFakeDirectory(), Store: store, Tokens: tokens})
	return &sessionFixture{svc: svc, auth: auth, repo: repo, store: store}
}

func TestCreateHandoffSeedsStore(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	resp, err := f.svc.CreateHandoff(ctx, testAdmin, models.CreateHandoffRequest{UserID: "u1"}, models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, "https://backoffice.example/joinsession/"+resp.SessionID, resp.JoinURL)

	record, err := f.store.Get(ctx, resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, resp.SessionID, record.RefreshJTI)
	assert.Equal(t, "Ada", record.FirstName)

	again, err := f.svc.CreateHandoff(ctx, testAdmin, models.CreateHandoffRequest{UserID: "u1"}, models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, resp.SessionID, again.SessionID, "open session is reused")
}

func TestCreateHandoffKeepsSessionLifetime(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	resp, err := f.svc.CreateHandoff(ctx, testAdmin, models.CreateHandoffRequest{UserID: "u1"}, models.RequestMeta{})
	require.NoError(t, err)

	record, err := f.store.Get(ctx, resp.SessionID)
	require.NoError(t, err)
	started := time.Now().Add(-72 * time.Hour).UTC()
	record.CreatedAt = started
	require.NoError(t, f.store.Create(ctx, record))

	_, err = f.svc.CreateHandoff(ctx, testAdmin, models.CreateHandoffRequest{UserID: "u1"}, models.RequestMeta{})
	require.NoError(t, err)

	reissued, err := f.store.Get(ctx, resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, started.UnixMilli(), reissued.CreatedAt.UnixMilli())
	assert.Equal(t, resp.SessionID, reissued.RefreshJTI)
}

func TestCreateHandoffRejectsIneligibleTargets(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	for _, id := range []string{"u2", "admin-1", "missing"} {
		_, err := f.svc.CreateHandoff(ctx, testAdmin, models.CreateHandoffRequest{UserID: id}, models.RequestMeta{})
		require.ErrorIs(t, err, appErrors.ErrForbidden, id)
		assert.Equal(t, "User is not active", appErrors.FromError(err).Message)
	}

	_, err := f.svc.CreateHandoff(ctx, testAdmin, models.CreateHandoffRequest{}, models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestRedeemIsMultiUseUntilRotation(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	resp, err := f.svc.CreateHandoff(ctx, testAdmin, models.CreateHandoffRequest{UserID: "u1"}, models.RequestMeta{})
	require.NoError(t, err)

	first, err := f.svc.Redeem(ctx, resp.SessionID, "", models.RequestMeta{})
	require.NoError(t, err)
	second, err := f.svc.Redeem(ctx, resp.SessionID, "", models.RequestMeta{})
	require.NoError(t, err)

	claims, err := f.svc.tokens.VerifyRefresh(first.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, resp.SessionID, claims.ID)
	assert.Equal(t, "u1", claims.UserID)

	// first browser rotates; the link and the second browser's token are spent
	rotated, err := f.auth.Refresh(ctx, first.RefreshToken, models.RequestMeta{})
	require.NoError(t, err)
	assert.NotEmpty(t, rotated.AccessToken)

	_, err = f.svc.Redeem(ctx, resp.SessionID, "", models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrSessionExpired)

	_, err = f.auth.Refresh(ctx, second.RefreshToken, models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrSessionReuse)
}

func TestRedeemKeepsExistingSession(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	resp, err := f.svc.CreateHandoff(ctx, testAdmin, models.CreateHandoffRequest{UserID: "u1"}, models.RequestMeta{})
	require.NoError(t, err)
	existing, err := f.svc.Redeem(ctx, resp.SessionID, "", models.RequestMeta{})
	require.NoError(t, err)

	result, err := f.svc.Redeem(ctx, "other", existing.RefreshToken, models.RequestMeta{})
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestRedeemRejectsTerminatedSession(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	resp, err := f.svc.CreateHandoff(ctx, testAdmin, models.CreateHandoffRequest{UserID: "u1"}, models.RequestMeta{})
	require.NoError(t, err)
	require.NoError(t, f.svc.Terminate(ctx, testAdmin, resp.SessionID, models.RequestMeta{}))

	_, err = f.store.Get(ctx, resp.SessionID)
	assert.ErrorIs(t, err, appErrors.ErrSessionNotFound)

	_, err = f.svc.Redeem(ctx, resp.SessionID, "", models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrSessionExpired)

	_, err = f.svc.Redeem(ctx, "unknown", "", models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrSessionExpired)
}

func TestTerminateMissingSession(t *testing.T) {
	f := newSessionFixture(t)

	err := f.svc.Terminate(context.Background(), testAdmin, "nope", models.RequestMeta{})
	require.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestListSessionsExcludesActor(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateHandoff(ctx, testAdmin, models.CreateHandoffRequest{UserID: "u1"}, models.RequestMeta{})
	require.NoError(t, err)

	page, err := f.svc.List(ctx, testAdmin, -1)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", f.repo.listed)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, 0, page.CurrentPage)
	assert.Equal(t, 0, page.NextPage)
	assert.Equal(t, 1, page.TotalPages)
}
