package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/backoffice-api/internal/handler"
	"github.com/noah-isme/backoffice-api/internal/repository"
	"github.com/noah-isme/backoffice-api/internal/service"
	"github.com/noah-isme/backoffice-api/pkg/cache"
	"github.com/noah-isme/backoffice-api/pkg/config"
	"github.com/noah-isme/backoffice-api/pkg/database"
	"github.com/noah-isme/backoffice-api/pkg/logger"
)

// @title Backoffice API
// @version 1.0.0
// @description Session and token lifecycle for the back-office application
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis, cfg.Session.StoreTimeout)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()

	metrics := service.NewMetricsService()
	validate := service.NewValidator()

	tokens, err := service.NewTokenService(service.TokenConfig{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		Issuer:        cfg.JWT.Issuer,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
	})
	if err != nil {
		return err
	}

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	contentRepo := repository.NewContentRepository(db)
	store := repository.NewSessionStore(redisClient, repository.SessionStoreConfig{
		TTL:         cfg.Session.TTL,
		MaxLifetime: cfg.Session.MaxLifetime,
		Timeout:     cfg.Session.StoreTimeout,
	}, metrics)
	audit := service.NewAuditQueue(userRepo, logr, cfg.Database.Timeout)
	audit.Start(context.Background())
	defer audit.Stop()

	cacheSvc := service.NewCacheService(repository.NewCacheRepository(redisClient, "backoffice:"), metrics, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled)

	authSvc := service.NewAuthService(service.AuthServiceParams{
		Users:     userRepo,
		Sessions:  sessionRepo,
		Store:     store,
		Tokens:    tokens,
		Metrics:   metrics,
		Validator: validate,
		Logger:    logr,
		Config:    service.AuthConfig{DirectoryTimeout: cfg.Database.Timeout},
		Audit:     audit,
	})
	sessionSvc := service.NewSessionService(service.SessionServiceParams{
		Sessions:         sessionRepo,
		Users:            userRepo,
		Store:            store,
		Tokens:           tokens,
		Validator:        validate,
		Logger:           logr,
		PublicURL:        cfg.PublicURL,
		DirectoryTimeout: cfg.Database.Timeout,
		Audit:            audit,
	})
	userSvc := service.NewUserService(service.UserServiceParams{
		Users:            userRepo,
		Sessions:         sessionRepo,
		Store:            store,
		Validator:        validate,
		Logger:           logr,
		DirectoryTimeout: cfg.Database.Timeout,
		Audit:            audit,
	})
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Content:          contentRepo,
		Audit:            audit,
		Cache:            cacheSvc,
		Validator:        validate,
		Logger:           logr,
		CacheTTL:         cfg.Dashboard.CacheTTL,
		DirectoryTimeout: cfg.Database.Timeout,
	})

	cookies := handler.CookieConfig{AuthPath: cfg.AuthPath(), Secure: cfg.Secure(), MaxAge: cfg.JWT.RefreshTTL}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	probes := handler.NewMetricsHandler(metrics, map[string]handler.Pinger{
		"postgres": userRepo,
		"redis":    store,
	})

	router := newRouter(cfg, logr, routes{
		auth:          handler.NewAuthHandler(authSvc, cookies),
		sessions:      handler.NewSessionHandler(sessionSvc, cookies, logr),
		users:         handler.NewUserHandler(userSvc),
		dashboard:     handler.NewDashboardHandler(dashboardSvc),
		metrics:       probes,
		tokens:        tokens,
		metricsSource: metrics,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	logr.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
