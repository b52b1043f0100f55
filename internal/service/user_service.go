package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/backoffice-api/internal/models"
	"github.com/noah-isme/backoffice-api/internal/repository"
	appErrors "github.com/noah-isme/backoffice-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, excludeID string, page int) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	EmailTaken(ctx context.Context, email, exceptID string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type userSessionRevoker interface {
	ListOpenIDs(ctx context.Context, userID string) ([]string, error)
	TerminateAll(ctx context.Context, userID string) error
}

// UserServiceParams groups constructor dependencies.
type UserServiceParams struct {
	Users            userRepository
	Sessions         userSessionRevoker
	Store            SessionStore
	Validator        *validator.Validate
	Logger           *zap.Logger
	DirectoryTimeout time.Duration
	Audit            auditWriter
}

// UserService handles admin user management.
type UserService struct {
	repo      userRepository
	sessions  userSessionRevoker
	store     SessionStore
	validator *validator.Validate
	logger    *zap.Logger
	timeout   time.Duration
	audit     auditWriter
}

// NewUserService creates an instance of UserService.
func NewUserService(p UserServiceParams) *UserService {
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
	return &UserService{
		repo:      p.Users,
		sessions:  p.Sessions,
		store:     p.Store,
		validator: p.Validator,
		logger:    p.Logger,
		timeout:   p.DirectoryTimeout,
		audit:     p.Audit,
	}
}

var (
	errUserExists   = appErrors.Clone(appErrors.ErrConflict, "User already exists")
	errEmailInUse   = appErrors.Clone(appErrors.ErrConflict, "User exists with this email")
	errUserNotFound = appErrors.Clone(appErrors.ErrNotFound, "user not found")
)

func internalError(err error) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
}

// List returns one page of users other than the actor.
func (s *UserService) List(ctx context.Context, actor *models.Claims, page int) (models.Page[models.User], error) {
	if page < 0 {
		page = 0
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	users, total, err := s.repo.List(ctx, actor.UserID, page)
	if err != nil {
		return models.Page[models.User]{}, internalError(err)
	}
	return models.NewPage(users, total, page), nil
}

// Get returns a single user.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errUserNotFound
		}
		return nil, internalError(err)
	}
	return user, nil
}

// Create adds an active account with the user role.
func (s *UserService) Create(ctx context.Context, actor *models.Claims, req models.CreateUserRequest, meta models.RequestMeta) (*models.User, error) {
	req.Email = normalizeEmail(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailure(err)
	}

	dctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	taken, err := s.repo.EmailTaken(dctx, req.Email, "")
	if err != nil {
		return nil, internalError(err)
	}
	if taken {
		return nil, errUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), PasswordCost)
	if err != nil {
		return nil, internalError(err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         models.RoleUser,
		Status:       models.StatusActive,
	}
	if err := s.repo.Create(dctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errUserExists
		}
		return nil, internalError(err)
	}

	recordAudit(ctx, s.audit, s.logger, s.timeout, auditEntry{
		actorID:    actor.UserID,
		action:     models.AuditActionUserCreate,
		resource:   "user",
		resourceID: user.ID,
		values:     map[string]interface{}{"email": user.Email},
		meta:       meta,
	})
	return user, nil
}

// Update applies a partial update. Deactivating an account revokes its sessions.
func (s *UserService) Update(ctx context.Context, actor *models.Claims, id string, req models.UpdateUserRequest, meta models.RequestMeta) (*models.User, error) {
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		req.Email = &email
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailure(err)
	}

	dctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.repo.FindByID(dctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errUserNotFound
		}
		return nil, internalError(err)
	}

	changed := map[string]interface{}{}
	if req.Email != nil && *req.Email != user.Email {
		taken, err := s.repo.EmailTaken(dctx, *req.Email, id)
		if err != nil {
			return nil, internalError(err)
		}
		if taken {
			return nil, errEmailInUse
		}
		user.Email = *req.Email
		changed["email"] = user.Email
	}
	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
		changed["firstName"] = user.FirstName
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
		changed["lastName"] = user.LastName
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), PasswordCost)
		if err != nil {
			return nil, internalError(err)
		}
		user.PasswordHash = string(hash)
		changed["password"] = "updated"
	}
	deactivated := false
	if req.Status != nil && *req.Status != user.Status {
		deactivated = *req.Status == models.StatusInactive
		user.Status = *req.Status
		changed["status"] = user.Status
	}

	if err := s.repo.Update(dctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, errEmailInUse
		case errors.Is(err, sql.ErrNoRows):
			return nil, errUserNotFound
		default:
			return nil, internalError(err)
		}
	}

	if deactivated {
		s.revokeSessions(ctx, user.ID, true)
	}

	recordAudit(ctx, s.audit, s.logger, s.timeout, auditEntry{
		actorID:    actor.UserID,
		action:     models.AuditActionUserUpdate,
		resource:   "user",
		resourceID: user.ID,
		values:     changed,
		meta:       meta,
	})
	return user, nil
}

// Delete removes an account together with its live sessions.
func (s *UserService) Delete(ctx context.Context, actor *models.Claims, id string, meta models.RequestMeta) error {
	if actor.UserID == id {
		return appErrors.Clone(appErrors.ErrForbidden, "cannot delete own account")
	}

	// the rows cascade away with the user, so collect the store keys first
	s.revokeSessions(ctx, id, false)

	dctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.repo.Delete(dctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errUserNotFound
		}
		return internalError(err)
	}

	recordAudit(ctx, s.audit, s.logger, s.timeout, auditEntry{
		actorID:    actor.UserID,
		action:     models.AuditActionUserDelete,
		resource:   "user",
		resourceID: id,
		meta:       meta,
	})
	return nil
}

// revokeSessions drops the store records of the user's open sessions; best-effort.
func (s *UserService) revokeSessions(ctx context.Context, userID string, terminate bool) {
	if s.sessions == nil || s.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	ids, err := s.sessions.ListOpenIDs(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to list user sessions", zap.String("user_id", userID), zap.Error(err))
		return
	}
	if terminate {
		if err := s.sessions.TerminateAll(ctx, userID); err != nil {
			s.logger.Warn("failed to terminate user sessions", zap.String("user_id", userID), zap.Error(err))
		}
	}
	if len(ids) == 0 {
		return
	}
	if err := s.store.Delete(ctx, ids...); err != nil {
		s.logger.Warn("failed to revoke user sessions", zap.String("user_id", userID), zap.Error(err))
		return
	}
	s.logger.Info("user sessions revoked", zap.String("user_id", userID), zap.Int("count", len(ids)))
}
