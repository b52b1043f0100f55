package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/backoffice-api/internal/middleware"
	"github.com/noah-isme/backoffice-api/internal/models"
	"github.com/noah-isme/backoffice-api/pkg/response"
)

type dashboardService interface {
	Content(ctx context.Context) (*models.ContentResponse, bool, error)
	Publish(ctx context.Context, actor *models.Claims, req models.ContentRequest, meta models.RequestMeta) (*models.ContentResponse, error)
}

// DashboardHandler exposes the published home page content.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(svc dashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Get godoc
// @Summary Dashboard content
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ContentResponse
// @Failure 401 {object} response.ErrorBody
// @Router /dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	resp, hit, err := h.service.Content(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.OK(c, resp)
}

// Publish godoc
// @Summary Publish dashboard content
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.ContentRequest true "Content"
// @Success 200 {object} models.ContentResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Router /dashboard [put]
func (h *DashboardHandler) Publish(c *gin.Context) {
	var req models.ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	resp, err := h.service.Publish(c.Request.Context(), claimsFromContext(c), req, requestMeta(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, resp)
}
