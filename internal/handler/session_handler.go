package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/backoffice-api/internal/models"
	"github.com/noah-isme/backoffice-api/internal/service"
	"github.com/noah-isme/backoffice-api/pkg/response"
)

type sessionService interface {
	CreateHandoff(ctx context.Context, actor *models.Claims, req models.CreateHandoffRequest, meta models.RequestMeta) (*models.HandoffResponse, error)
	Redeem(ctx context.Context, sessionID, existingRefresh string, meta models.RequestMeta) (*service.RedeemResult, error)
	Terminate(ctx context.Context, actor *models.Claims, sessionID string, meta models.RequestMeta) error
	List(ctx context.Context, actor *models.Claims, page int) (models.Page[models.SessionListItem], error)
}

// SessionHandler exposes admin session management and the join-link endpoint.
type SessionHandler struct {
	service sessionService
	cookies CookieConfig
	logger  *zap.Logger
}

// NewSessionHandler constructs a SessionHandler.
func NewSessionHandler(svc sessionService, cookies CookieConfig, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{service: svc, cookies: cookies, logger: logger}
}

// List godoc
// @Summary List sessions
// @Description Durable sessions of all other users, six per page
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param page query int false "Zero-based page"
// @Success 200 {object} models.Page[models.SessionListItem]
// @Failure 400 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Router /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	page, err := pageParam(c)
	if err != nil {
		badPage(c)
		return
	}
	result, err := h.service.List(c.Request.Context(), claimsFromContext(c), page)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, result)
}

// CreateHandoff godoc
// @Summary Create join link
// @Description Issue a link that lets a fresh browser adopt the user's session
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateHandoffRequest true "Target user"
// @Success 200 {object} models.HandoffResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Router /sessions [post]
func (h *SessionHandler) CreateHandoff(c *gin.Context) {
	var req models.CreateHandoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	resp, err := h.service.CreateHandoff(c.Request.Context(), claimsFromContext(c), req, requestMeta(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, resp)
}

// Terminate godoc
// @Summary Terminate session
// @Description End a durable session and drop its live record
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} response.ErrorBody
// @Router /sessions/{sessionId}/terminate [post]
func (h *SessionHandler) Terminate(c *gin.Context) {
	if err := h.service.Terminate(c.Request.Context(), claimsFromContext(c), c.Param("sessionId"), requestMeta(c)); err != nil {
		fail(c, err)
		return
	}
	response.OK(c, gin.H{})
}

// Join redeems a join link. It always redirects home; failures are only logged.
func (h *SessionHandler) Join(c *gin.Context) {
	sessionID := c.Param("sessionId")
	result, err := h.service.Redeem(c.Request.Context(), sessionID, refreshCookie(c), requestMeta(c))
	switch {
	case err != nil:
		h.logger.Info("join link rejected", zap.String("session_id", sessionID), zap.Error(err))
	case result != nil:
		h.cookies.setSessionCookies(c, result.RefreshToken)
	}
	c.Header("Cache-Control", "no-store")
	c.Redirect(http.StatusFound, "/")
}
