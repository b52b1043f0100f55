package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// SessionActiveCookie is the readable flag cookie page routing keys on.
const SessionActiveCookie = "session_active"

// GuardConfig lists the path prefixes the edge guard treats specially.
// IgnoredPrefixes pass through untouched. AuthPages are reachable without a
// session and bounce signed-in visitors to HomePath.
type GuardConfig struct {
	IgnoredPrefixes []string
	AuthPages       []string
	SignInPath      string
	HomePath        string
}

// DefaultGuardConfig returns the guard setup for an API mounted at apiPrefix.
func DefaultGuardConfig(apiPrefix string) GuardConfig {
	return GuardConfig{
		IgnoredPrefixes: []string{apiPrefix, "/health", "/ready", "/metrics", "/docs", "/static", "/images", "/favicon.ico"},
		AuthPages:       []string{"/auth/signin", "/auth/signup", "/joinsession"},
		SignInPath:      "/auth/signin",
		HomePath:        "/",
	}
}

// Guard redirects page requests by the session_active flag alone. It never
// decodes a token; API routes enforce authentication themselves.
func Guard(cfg GuardConfig) gin.HandlerFunc {
	if cfg.SignInPath == "" {
		cfg.SignInPath = "/auth/signin"
	}
	if cfg.HomePath == "" {
		cfg.HomePath = "/"
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if hasAnyPrefix(path, cfg.IgnoredPrefixes) {
			c.Next()
			return
		}

		authPage := hasAnyPrefix(path, cfg.AuthPages)
		flag, _ := c.Cookie(SessionActiveCookie)
		signedIn := flag == "true"

		switch {
		case !signedIn && !authPage:
			target := cfg.SignInPath + "?" + url.Values{"callbackUrl": {path}}.Encode()
			c.Redirect(http.StatusFound, target)
			c.Abort()
		case signedIn && authPage:
			c.Redirect(http.StatusFound, cfg.HomePath)
			c.Abort()
		default:
			c.Next()
		}
	}
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
