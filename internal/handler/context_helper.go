package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/backoffice-api/internal/middleware"
	"github.com/noah-isme/backoffice-api/internal/models"
	"github.com/noah-isme/backoffice-api/internal/service"
	appErrors "github.com/noah-isme/backoffice-api/pkg/errors"
	"github.com/noah-isme/backoffice-api/pkg/response"
)

var errInvalidPage = errors.New("invalid page")

func claimsFromContext(c *gin.Context) *models.Claims {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return nil
	}
	return claims
}

func requestMeta(c *gin.Context) models.RequestMeta {
	return models.RequestMeta{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
}

// pageParam reads the zero-based page query parameter.
func pageParam(c *gin.Context) (int, error) {
	raw := c.DefaultQuery("page", "0")
	page, err := strconv.Atoi(raw)
	if err != nil || page < 0 {
		return 0, errInvalidPage
	}
	return page, nil
}

// fail writes err, expanding validation failures into per-field messages.
func fail(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr.Code == appErrors.ErrValidation.Code {
		if fields := service.FieldErrors(appErr.Err); len(fields) > 0 {
			_ = c.Error(err)
			response.ValidationError(c, fields)
			return
		}
	}
	response.Error(c, err)
}

func badJSON(c *gin.Context, err error) {
	response.Error(c, appErrors.Wrap(err, appErrors.ErrBadRequest.Code, appErrors.ErrBadRequest.Status, appErrors.ErrBadRequest.Message))
}

func badPage(c *gin.Context) {
	response.ValidationError(c, map[string]string{"page": "page must be a non-negative integer"})
}
