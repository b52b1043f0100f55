package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/backoffice-api/internal/models"
	"github.com/noah-isme/backoffice-api/internal/repository"
	appErrors "github.com/noah-isme/backoffice-api/pkg/errors"
)

// PasswordCost is the bcrypt cost used for stored password hashes.
const PasswordCost = 12

// SessionStore is the fast store holding live session records.
type SessionStore interface {
	Create(ctx context.Context, record *models.SessionRecord) error
	Get(ctx context.Context, sessionID string) (*models.SessionRecord, error)
	Rotate(ctx context.Context, sessionID, expectedJTI, newJTI string) error
	Delete(ctx context.Context, sessionIDs ...string) error
}

type authDirectory interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	EmailTaken(ctx context.Context, email, exceptID string) (bool, error)
	CreateWithSession(ctx context.Context, user *models.User) (*models.Session, error)
	CreateLoginSession(ctx context.Context, userID string) (*models.Session, error)
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type sessionTerminator interface {
	Terminate(ctx context.Context, sessionID string) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	DirectoryTimeout time.Duration
}

// AuthServiceParams groups constructor dependencies. Audit falls back to Users when nil.
type AuthServiceParams struct {
	Users     authDirectory
	Sessions  sessionTerminator
	Store     SessionStore
	Tokens    *TokenService
	Metrics   *MetricsService
	Validator *validator.Validate
	Logger    *zap.Logger
	Config    AuthConfig
	Audit     auditWriter
}

// AuthService provides sign-in, sign-up, refresh rotation and sign-out.
type AuthService struct {
	users     authDirectory
	sessions  sessionTerminator
	store     SessionStore
	tokens    *TokenService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	audit     auditWriter
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(p AuthServiceParams) *AuthService {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.Validator == nil {
		p.Validator = NewValidator()
	}
	if p.Config.DirectoryTimeout <= 0 {
		p.Config.DirectoryTimeout = 3 * time.Second
	}
	if p.Audit == nil {
		p.Audit = p.Users
	}
	return &AuthService{
		users:     p.Users,
		sessions:  p.Sessions,
		store:     p.Store,
		tokens:    p.Tokens,
		metrics:   p.Metrics,
		validator: p.Validator,
		logger:    p.Logger,
		config:    p.Config,
		audit:     p.Audit,
	}
}

// dummyHash is compared against when the account does not exist so unknown
// emails cost the same as wrong passwords.
var dummyHash = sync.OnceValue(func() []byte {
	hash, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), PasswordCost)
	return hash
})

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) directory(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.config.DirectoryTimeout)
}

// SignIn authenticates a user and opens a new session.
func (s *AuthService) SignIn(ctx context.Context, req models.SignInRequest) (*models.SessionTokens, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailure(err)
	}

	dctx, cancel := s.directory(ctx)
	defer cancel()

	user, err := s.users.FindByEmail(dctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(req.Password))
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.ErrInvalidCredentials
	}

	if !user.Active() {
		return nil, appErrors.ErrInactiveAccount
	}

	session, err := s.users.CreateLoginSession(dctx, user.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}
	user.LoginsCount++

	tokens, err := s.openSession(ctx, user, session.ID)
	if err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, s.logger, s.config.DirectoryTimeout, auditEntry{
		actorID:    user.ID,
		action:     models.AuditActionSignIn,
		resource:   "session",
		resourceID: session.ID,
		meta:       models.RequestMeta{IP: req.IP, UserAgent: req.UserAgent},
	})

	return tokens, nil
}

// SignUp registers a self-service account and signs it in.
func (s *AuthService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.SessionTokens, error) {
	req.Email = normalizeEmail(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailure(err)
	}

	dctx, cancel := s.directory(ctx)
	defer cancel()

	taken, err := s.users.EmailTaken(dctx, req.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "User already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), PasswordCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         models.RoleUser,
		Status:       models.StatusActive,
		LoginsCount:  1,
	}

	session, err := s.users.CreateWithSession(dctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "User already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}

	tokens, err := s.openSession(ctx, user, session.ID)
	if err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, s.logger, s.config.DirectoryTimeout, auditEntry{
		actorID:    user.ID,
		action:     models.AuditActionSignUp,
		resource:   "user",
		resourceID: user.ID,
		meta:       models.RequestMeta{IP: req.IP, UserAgent: req.UserAgent},
	})

	return tokens, nil
}

// openSession mints the token pair for a durable session and seeds its store record.
func (s *AuthService) openSession(ctx context.Context, user *models.User, sessionID string) (*models.SessionTokens, error) {
	record := models.NewSessionRecord(user, sessionID, uuid.NewString())
	payload := record.Payload()

	access, _, err := s.tokens.SignAccess(payload)
	if err != nil {
		return nil, err
	}
	refresh, _, err := s.tokens.SignRefresh(sessionID, record.RefreshJTI, payload)
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, record); err != nil {
		s.terminateDurable(ctx, sessionID)
		return nil, err
	}

	info := user.Info()
	return &models.SessionTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		SessionID:    sessionID,
		User:         &info,
	}, nil
}

// Refresh exchanges a refresh token for a new pair, rotating the session's jti.
// Every 401 is reported to clients as a plain expired session; reuse is only
// distinguishable internally.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, meta models.RequestMeta) (tokens *models.SessionTokens, err error) {
	outcome := RefreshOutcomeError
	defer func() { s.metrics.RecordRefresh(outcome) }()

	if refreshToken == "" {
		outcome = RefreshOutcomeMissing
		return nil, appErrors.ErrSessionExpired
	}

	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		outcome = RefreshOutcomeInvalid
		return nil, err
	}

	record, err := s.store.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, appErrors.ErrSessionNotFound) {
			outcome = RefreshOutcomeNotFound
			return nil, err
		}
		// reads fail closed
		return nil, appErrors.Wrap(err, appErrors.ErrSessionExpired.Code, appErrors.ErrSessionExpired.Status, appErrors.ErrSessionExpired.Message)
	}

	if record.RefreshJTI != claims.ID {
		outcome = RefreshOutcomeReuse
		s.revokeReused(ctx, claims, meta, "jti mismatch")
		return nil, appErrors.ErrSessionReuse
	}

	payload := record.Payload()
	access, _, err := s.tokens.SignAccess(payload)
	if err != nil {
		return nil, err
	}
	refresh, nextJTI, err := s.tokens.SignRefresh(record.SessionID, uuid.NewString(), payload)
	if err != nil {
		return nil, err
	}

	if err := s.store.Rotate(ctx, claims.SessionID, claims.ID, nextJTI); err != nil {
		switch {
		case errors.Is(err, appErrors.ErrRefreshJTIConflict):
			outcome = RefreshOutcomeReuse
			s.revokeReused(ctx, claims, meta, "rotation conflict")
			return nil, appErrors.ErrSessionReuse
		case errors.Is(err, appErrors.ErrSessionNotFound):
			outcome = RefreshOutcomeNotFound
			return nil, err
		case errors.Is(err, appErrors.ErrSessionLifetimeExceeded):
			outcome = RefreshOutcomeLifetime
			s.terminateDurable(ctx, claims.SessionID)
			s.logger.Info("session reached maximum lifetime", zap.String("session_id", claims.SessionID), zap.String("user_id", claims.UserID))
			return nil, err
		default:
			return nil, err
		}
	}

	outcome = RefreshOutcomeRotated
	return &models.SessionTokens{AccessToken: access, RefreshToken: refresh, SessionID: record.SessionID}, nil
}

// SignOut ends the session named by the refresh token. Missing or invalid tokens
// are ignored so repeated calls always succeed.
func (s *AuthService) SignOut(ctx context.Context, refreshToken string, meta models.RequestMeta) error {
	if refreshToken == "" {
		return nil
	}
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil
	}

	if err := s.store.Delete(ctx, claims.SessionID); err != nil {
		return err
	}
	s.terminateDurable(ctx, claims.SessionID)

	recordAudit(ctx, s.audit, s.logger, s.config.DirectoryTimeout, auditEntry{
		actorID:    claims.UserID,
		action:     models.AuditActionSignOut,
		resource:   "session",
		resourceID: claims.SessionID,
		meta:       meta,
	})
	return nil
}

func (s *AuthService) revokeReused(ctx context.Context, claims *models.Claims, meta models.RequestMeta, reason string) {
	ctx = context.WithoutCancel(ctx)
	if err := s.store.Delete(ctx, claims.SessionID); err != nil {
		s.logger.Warn("failed to delete reused session", zap.String("session_id", claims.SessionID), zap.Error(err))
	}
	s.terminateDurable(ctx, claims.SessionID)

	s.logger.Warn("refresh token reuse detected",
		zap.String("session_id", claims.SessionID),
		zap.String("user_id", claims.UserID),
		zap.String("reason", reason),
		zap.String("ip", meta.IP),
	)
	recordAudit(ctx, s.audit, s.logger, s.config.DirectoryTimeout, auditEntry{
		actorID:    claims.UserID,
		action:     models.AuditActionRefreshReuse,
		resource:   "session",
		resourceID: claims.SessionID,
		values:     map[string]interface{}{"reason": reason},
		meta:       meta,
	})
}

// terminateDurable marks the durable row ended; best-effort.
func (s *AuthService) terminateDurable(ctx context.Context, sessionID string) {
	if s.sessions == nil {
		return
	}
	dctx, cancel := s.directory(context.WithoutCancel(ctx))
	defer cancel()
	if err := s.sessions.Terminate(dctx, sessionID); err != nil && !errors.Is(err, sql.ErrNoRows) {
		s.logger.Warn("failed to terminate durable session", zap.String("session_id", sessionID), zap.Error(err))
	}
}
