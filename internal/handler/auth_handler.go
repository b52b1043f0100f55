package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/backoffice-api/internal/models"
	appErrors "github.com/noah-isme/backoffice-api/pkg/errors"
	"github.com/noah-isme/backoffice-api/pkg/response"
)

type authService interface {
	SignIn(ctx context.Context, req models.SignInRequest) (*models.SessionTokens, error)
	SignUp(ctx context.Context, req models.SignUpRequest) (*models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string, meta models.RequestMeta) (*models.SessionTokens, error)
	SignOut(ctx context.Context, refreshToken string, meta models.RequestMeta) error
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service authService
	cookies CookieConfig
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{service: svc, cookies: cookies}
}

// SignIn godoc
// @Summary Sign in
// @Description Authenticate by email and password; sets the refresh_token and session_active cookies
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.SignInRequest true "Credentials"
// @Success 200 {object} models.AuthResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Router /auth/signin [post]
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req models.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	tokens, err := h.service.SignIn(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}

	h.cookies.setSessionCookies(c, tokens.RefreshToken)
	response.OK(c, models.AuthResponse{AccessToken: tokens.AccessToken, User: tokens.User})
}

// SignUp godoc
// @Summary Sign up
// @Description Register an account and sign it in
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.SignUpRequest true "Registration"
// @Success 201 {object} models.AuthResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Router /auth/signup [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	tokens, err := h.service.SignUp(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}

	h.cookies.setSessionCookies(c, tokens.RefreshToken)
	response.Created(c, models.AuthResponse{AccessToken: tokens.AccessToken, User: tokens.User})
}

// Refresh godoc
// @Summary Refresh access token
// @Description Rotate the refresh_token cookie and issue a new access token
// @Tags Authentication
// @Produce json
// @Success 200 {object} models.AccessTokenResponse
// @Failure 401 {object} response.ErrorBody
// @Failure 500 {object} response.ErrorBody
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	tokens, err := h.service.Refresh(c.Request.Context(), refreshCookie(c), requestMeta(c))
	if err != nil {
		appErr := appErrors.FromError(err)
		if appErr.Status == http.StatusUnauthorized {
			_ = c.Error(err)
			h.cookies.clearSessionCookies(c)
			response.Error(c, appErrors.ErrSessionExpired)
			return
		}
		response.Error(c, err)
		return
	}

	h.cookies.setSessionCookies(c, tokens.RefreshToken)
	response.OK(c, models.AccessTokenResponse{AccessToken: tokens.AccessToken})
}

// SignOut godoc
// @Summary Sign out
// @Description End the session named by the refresh_token cookie and clear both cookies
// @Tags Authentication
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 500 {object} response.ErrorBody
// @Router /auth/signout [post]
func (h *AuthHandler) SignOut(c *gin.Context) {
	err := h.service.SignOut(c.Request.Context(), refreshCookie(c), requestMeta(c))
	h.cookies.clearSessionCookies(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{})
}

// Me godoc
// @Summary Current user
// @Description Return the claims of the bearer access token
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.MeResponse
// @Failure 401 {object} response.ErrorBody
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.OK(c, models.MeResponse{UserInfo: claims})
}
