package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/backoffice-api/internal/middleware"
)

// RefreshCookie carries the refresh token.
const RefreshCookie = "refresh_token"

// CookieConfig controls the attributes of the session cookies.
type CookieConfig struct {
	AuthPath string
	Secure   bool
	MaxAge   time.Duration
}

func (cfg CookieConfig) maxAge() int {
	if cfg.MaxAge <= 0 {
		return int((24 * time.Hour).Seconds())
	}
	return int(cfg.MaxAge.Seconds())
}

// setSessionCookies writes the HttpOnly refresh cookie scoped to the auth routes
// and the readable session_active flag used by page routing.
func (cfg CookieConfig) setSessionCookies(c *gin.Context, refreshToken string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     RefreshCookie,
		Value:    refreshToken,
		Path:     cfg.AuthPath,
		MaxAge:   cfg.maxAge(),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.SessionActiveCookie,
		Value:    "true",
		Path:     "/",
		MaxAge:   cfg.maxAge(),
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (cfg CookieConfig) clearSessionCookies(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     RefreshCookie,
		Path:     cfg.AuthPath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.SessionActiveCookie,
		Path:     "/",
		MaxAge:   -1,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func refreshCookie(c *gin.Context) string {
	value, err := c.Cookie(RefreshCookie)
	if err != nil {
		return ""
	}
	return value
}
