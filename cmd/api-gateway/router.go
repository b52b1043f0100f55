package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/backoffice-api/api/swagger"
	"github.com/noah-isme/backoffice-api/internal/handler"
	"github.com/noah-isme/backoffice-api/internal/middleware"
	"github.com/noah-isme/backoffice-api/internal/models"
	"github.com/noah-isme/backoffice-api/internal/service"
	"github.com/noah-isme/backoffice-api/pkg/config"
	"github.com/noah-isme/backoffice-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/backoffice-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/backoffice-api/pkg/middleware/requestid"
)

type routes struct {
	auth          *handler.AuthHandler
	sessions      *handler.SessionHandler
	users         *handler.UserHandler
	dashboard     *handler.DashboardHandler
	metrics       *handler.MetricsHandler
	tokens        middleware.AccessVerifier
	metricsSource *service.MetricsService
}

func newRouter(cfg *config.Config, logr *zap.Logger, h routes) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(h.metricsSource))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Guard(middleware.DefaultGuardConfig(cfg.APIPrefix)))

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.GET("/joinsession/:sessionId", h.sessions.Join)

	api := r.Group(cfg.APIPrefix)
	authenticated := middleware.JWT(h.tokens)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	auth := api.Group("/auth")
	auth.POST("/signin", h.auth.SignIn)
	auth.POST("/signup", h.auth.SignUp)
	auth.POST("/refresh", h.auth.Refresh)
	auth.POST("/signout", h.auth.SignOut)
	auth.GET("/me", authenticated, h.auth.Me)

	users := api.Group("/users", authenticated, adminOnly)
	users.GET("", h.users.List)
	users.POST("", h.users.Create)
	users.GET("/:userId", h.users.Get)
	users.PATCH("/:userId", h.users.Update)
	users.DELETE("/:userId", h.users.Delete)

	sessions := api.Group("/sessions", authenticated, adminOnly)
	sessions.GET("", h.sessions.List)
	sessions.POST("", h.sessions.CreateHandoff)
	sessions.POST("/:sessionId/terminate", h.sessions.Terminate)

	api.GET("/dashboard", authenticated, h.dashboard.Get)
	api.PUT("/dashboard", authenticated, adminOnly, h.dashboard.Publish)

	r.NoRoute(pages(cfg.WebDir))
	return r
}

// pages serves the static frontend build for routes the guard let through.
func pages(webDir string) gin.HandlerFunc {
	if webDir == "" {
		return func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		}
	}
	files := http.FileServer(http.Dir(webDir))
	return func(c *gin.Context) {
		files.ServeHTTP(c.Writer, c.Request)
	}
}
