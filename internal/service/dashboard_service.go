package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/backoffice-api/internal/models"
)

// DashboardContentKey is the cache key of the published home page content.
const DashboardContentKey = "dashboard:content"

type contentRepository interface {
	GetActive(ctx context.Context) (*models.HomePage, error)
	Upsert(ctx context.Context, content string) (*models.HomePage, error)
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Content          contentRepository
	Audit            auditWriter
	Cache            *CacheService
	Validator        *validator.Validate
	Logger           *zap.Logger
	CacheTTL         time.Duration
	DirectoryTimeout time.Duration
}

// DashboardService serves and publishes the home page content.
type DashboardService struct {
	content   contentRepository
	audit     auditWriter
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
	timeout   time.Duration
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(p DashboardServiceParams) *DashboardService {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.Validator == nil {
		p.Validator = NewValidator()
	}
	if p.CacheTTL <= 0 {
		p.CacheTTL = 5 * time.Minute
	}
	if p.DirectoryTimeout <= 0 {
		p.DirectoryTimeout = 3 * time.Second
	}
	return &DashboardService{
		content:   p.Content,
		audit:     p.Audit,
		cache:     p.Cache,
		validator: p.Validator,
		logger:    p.Logger,
		cacheTTL:  p.CacheTTL,
		timeout:   p.DirectoryTimeout,
	}
}

// Content returns the published content, or the default blob when nothing is published.
// The bool reports whether the value came from cache.
func (s *DashboardService) Content(ctx context.Context) (*models.ContentResponse, bool, error) {
	var cached models.ContentResponse
	if s.cache.Get(ctx, DashboardContentKey, &cached) {
		return &cached, true, nil
	}

	dctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp := &models.ContentResponse{Content: models.DefaultHomeContent}
	page, err := s.content.GetActive(dctx)
	switch {
	case err == nil:
		resp.Content = page.Content
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, false, internalError(err)
	}

	s.cache.Set(ctx, DashboardContentKey, resp, s.cacheTTL)
	return resp, false, nil
}

// Publish replaces the content and drops the cached copy.
func (s *DashboardService) Publish(ctx context.Context, actor *models.Claims, req models.ContentRequest, meta models.RequestMeta) (*models.ContentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailure(err)
	}

	dctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	page, err := s.content.Upsert(dctx, req.Content)
	if err != nil {
		return nil, internalError(err)
	}
	s.cache.Invalidate(ctx, DashboardContentKey)

	recordAudit(ctx, s.audit, s.logger, s.timeout, auditEntry{
		actorID:    actor.UserID,
		action:     models.AuditActionContentPublish,
		resource:   "home_page",
		resourceID: page.ID,
		values:     map[string]interface{}{"length": len(page.Content)},
		meta:       meta,
	})
	return &models.ContentResponse{Content: page.Content}, nil
}
