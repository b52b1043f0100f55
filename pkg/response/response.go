package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/backoffice-api/pkg/errors"
)

// ErrorBody is the wire shape of every failure. Causes wrapped inside the error are never serialised.
type ErrorBody struct {
	Error       string            `json:"error"`
	Code        string            `json:"code,omitempty"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

// JSON sends a success response with the payload as the body.
func JSON(c *gin.Context, status int, data interface{}) {
	noStore(c)
	if data == nil {
		data = gin.H{}
	}
	c.JSON(status, data)
}

// OK responds with HTTP 200.
func OK(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, data)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr.Err != nil {
		_ = c.Error(appErr.Err)
	}
	noStore(c)
	c.AbortWithStatusJSON(appErr.Status, ErrorBody{Error: appErr.Message, Code: appErr.Code})
}

// ValidationError responds with 400 and per-field messages.
func ValidationError(c *gin.Context, fields map[string]string) {
	noStore(c)
	c.AbortWithStatusJSON(appErrors.ErrValidation.Status, ErrorBody{
		Error:       appErrors.ErrValidation.Message,
		Code:        appErrors.ErrValidation.Code,
		FieldErrors: fields,
	})
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
