package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/backoffice-api/internal/models"
	appErrors "github.com/noah-isme/backoffice-api/pkg/errors"
	"github.com/noah-isme/backoffice-api/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentUser"

// AccessVerifier validates access tokens.
type AccessVerifier interface {
	VerifyAccess(token string) (*models.Claims, error)
}

// JWT protects routes by requiring a valid bearer access token. Every failure
// answers the same 401 so callers cannot tell why a token was refused.
func JWT(verifier AccessVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}

		claims, err := verifier.VerifyAccess(token)
		if err != nil {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// CurrentUser returns the claims set by JWT.
func CurrentUser(c *gin.Context) (*models.Claims, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*models.Claims)
	return claims, ok && claims != nil
}
