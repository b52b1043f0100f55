package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/backoffice-api/internal/models"
	"github.com/noah-isme/backoffice-api/pkg/response"
)

type userService interface {
	List(ctx context.Context, actor *models.Claims, page int) (models.Page[models.User], error)
	Get(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, actor *models.Claims, req models.CreateUserRequest, meta models.RequestMeta) (*models.User, error)
	Update(ctx context.Context, actor *models.Claims, id string, req models.UpdateUserRequest, meta models.RequestMeta) (*models.User, error)
	Delete(ctx context.Context, actor *models.Claims, id string, meta models.RequestMeta) error
}

// UserHandler handles user CRUD endpoints.
type UserHandler struct {
	service userService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(svc userService) *UserHandler {
	return &UserHandler{service: svc}
}

// List godoc
// @Summary List users
// @Description Users other than the caller, six per page
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Zero-based page"
// @Success 200 {object} models.Page[models.User]
// @Failure 400 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
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

// Get godoc
// @Summary Get user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Success 200 {object} map[string]models.User
// @Failure 404 {object} response.ErrorBody
// @Router /users/{userId} [get]
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.service.Get(c.Request.Context(), c.Param("userId"))
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, gin.H{"user": user})
}

// Create godoc
// @Summary Create user
// @Description Add an active account with the user role
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateUserRequest true "User"
// @Success 201 {object} map[string]models.User
// @Failure 400 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	user, err := h.service.Create(c.Request.Context(), claimsFromContext(c), req, requestMeta(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, gin.H{"user": user})
}

// Update godoc
// @Summary Update user
// @Description Partial update; deactivation revokes the user's sessions
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Param payload body models.UpdateUserRequest true "Fields to change"
// @Success 200 {object} map[string]models.User
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Router /users/{userId} [patch]
func (h *UserHandler) Update(c *gin.Context) {
	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	user, err := h.service.Update(c.Request.Context(), claimsFromContext(c), c.Param("userId"), req, requestMeta(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, gin.H{"user": user})
}

// Delete godoc
// @Summary Delete user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} response.ErrorBody
// @Router /users/{userId} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), claimsFromContext(c), c.Param("userId"), requestMeta(c)); err != nil {
		fail(c, err)
		return
	}
	response.OK(c, gin.H{})
}
