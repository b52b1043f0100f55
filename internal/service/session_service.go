package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/backoffice-api/internal/models"
	appErrors "github.com/noah-isme/backoffice-api/pkg/errors"
)

type sessionRepository interface {
	Create(ctx context.Context, userID string) (*models.Session, error)
	FindOpen(ctx context.Context, userID string) (*models.Session, error)
	FindWithOwner(ctx context.Context, sessionID string) (*models.SessionOwner, error)
	Terminate(ctx context.Context, sessionID string) error
	List(ctx context.Context, excludeUserID string, page int) ([]models.SessionListItem, int, error)
}

type sessionUserLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// SessionServiceParams groups constructor dependencies.
type SessionServiceParams struct {
	Sessions         sessionRepository
	Users            sessionUserLookup
	Store            SessionStore
	Tokens           *TokenService
	Validator        *validator.Validate
	Logger           *zap.Logger
	PublicURL        string
	DirectoryTimeout time.Duration
	Audit            auditWriter
}

// SessionService implements admin session management and join-link hand-off.
type SessionService struct {
	sessions  sessionRepository
	users     sessionUserLookup
	store     SessionStore
	tokens    *TokenService
	validator *validator.Validate
	logger    *zap.Logger
	publicURL string
	timeout   time.Duration
	audit     auditWriter
}

// RedeemResult carries the refresh token minted for a redeemed join link.
type RedeemResult struct {
	SessionID    string
	RefreshToken string
}

// NewSessionService constructs a SessionService.
func NewSessionService(p SessionServiceParams) *SessionService {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.Validator == nil {
		p.Validator = NewValidator()
	}
	if p.DirectoryTimeout <= 0 {
		p.DirectoryTimeout = 3 * time.Second
	}
	if p.Audit == nil {
		p.Audit = p.Users
	}
	return &SessionService{
		sessions:  p.Sessions,
		users:     p.Users,
		store:     p.Store,
		tokens:    p.Tokens,
		validator: p.Validator,
		logger:    p.Logger,
		publicURL: strings.TrimRight(p.PublicURL, "/"),
		timeout:   p.DirectoryTimeout,
		audit:     p.Audit,
	}
}

var errHandoffTarget = appErrors.Clone(appErrors.ErrForbidden, "User is not active")

// JoinURL returns the hand-off link of sessionID.
func (s *SessionService) JoinURL(sessionID string) string {
	return s.publicURL + "/joinsession/" + sessionID
}

// CreateHandoff prepares a join link that lets a fresh browser adopt the
// target user's session. The link is a bearer secret until the session rotates.
func (s *SessionService) CreateHandoff(ctx context.Context, actor *models.Claims, req models.CreateHandoffRequest, meta models.RequestMeta) (*models.HandoffResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailure(err)
	}

	dctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.users.FindByID(dctx, req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errHandoffTarget
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}
	if !user.Active() || user.Role != models.RoleUser {
		return nil, errHandoffTarget
	}

	session, err := s.sessions.FindOpen(dctx, user.ID)
	if errors.Is(err, sql.ErrNoRows) {
		session, err = s.sessions.Create(dctx, user.ID)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}

	record := models.NewSessionRecord(user, session.ID, session.ID)
	if live, err := s.store.Get(ctx, session.ID); err == nil {
		// keep the absolute lifetime of a session that is already live
		record.CreatedAt = live.CreatedAt
	}
	if err := s.store.Create(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("session hand-off created",
		zap.String("session_id", session.ID),
		zap.String("user_id", user.ID),
		zap.String("actor_id", actor.UserID),
	)
	recordAudit(ctx, s.audit, s.logger, s.timeout, auditEntry{
		actorID:    actor.UserID,
		action:     models.AuditActionHandoffCreate,
		resource:   "session",
		resourceID: session.ID,
		values:     map[string]interface{}{"userId": user.ID},
		meta:       meta,
	})

	return &models.HandoffResponse{SessionID: session.ID, JoinURL: s.JoinURL(session.ID)}, nil
}

// Redeem adopts the hand-off session in the calling browser. A nil result with
// a nil error means the browser already holds a valid session and keeps it.
func (s *SessionService) Redeem(ctx context.Context, sessionID, existingRefresh string, meta models.RequestMeta) (*RedeemResult, error) {
	if existingRefresh != "" {
		if _, err := s.tokens.VerifyRefresh(existingRefresh); err == nil {
			return nil, nil
		}
	}
	if sessionID == "" {
		return nil, appErrors.ErrSessionExpired
	}

	dctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	owner, err := s.sessions.FindWithOwner(dctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrSessionExpired
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}
	if owner.Terminated() || owner.Status != models.StatusActive || owner.Role != models.RoleUser {
		return nil, appErrors.ErrSessionExpired
	}

	record, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if record.RefreshJTI != sessionID {
		// the session already rotated; its link is spent
		return nil, appErrors.ErrSessionExpired
	}

	token, _, err := s.tokens.SignRefresh(sessionID, sessionID, record.Payload())
	if err != nil {
		return nil, err
	}

	s.logger.Info("session hand-off redeemed", zap.String("session_id", sessionID), zap.String("user_id", record.UserID))
	recordAudit(ctx, s.audit, s.logger, s.timeout, auditEntry{
		actorID:    record.UserID,
		action:     models.AuditActionHandoffRedeem,
		resource:   "session",
		resourceID: sessionID,
		meta:       meta,
	})

	return &RedeemResult{SessionID: sessionID, RefreshToken: token}, nil
}

// Terminate ends a durable session and drops its store record.
func (s *SessionService) Terminate(ctx context.Context, actor *models.Claims, sessionID string, meta models.RequestMeta) error {
	dctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.sessions.Terminate(dctx, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return err
	}

	s.logger.Info("session terminated", zap.String("session_id", sessionID), zap.String("actor_id", actor.UserID))
	recordAudit(ctx, s.audit, s.logger, s.timeout, auditEntry{
		actorID:    actor.UserID,
		action:     models.AuditActionSessionEnd,
		resource:   "session",
		resourceID: sessionID,
		meta:       meta,
	})
	return nil
}

// List returns one page of durable sessions owned by anyone but the actor.
func (s *SessionService) List(ctx context.Context, actor *models.Claims, page int) (models.Page[models.SessionListItem], error) {
	if page < 0 {
		page = 0
	}
	dctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	items, total, err := s.sessions.List(dctx, actor.UserID, page)
	if err != nil {
		return models.Page[models.SessionListItem]{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}
	return models.NewPage(items, total, page), nil
}
