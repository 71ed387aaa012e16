package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/sync/errgroup"

	_ "github.com/pwannenmacher/criteria-settings/docs" // This is for Swagger
	"github.com/pwannenmacher/criteria-settings/internal/auth"
	"github.com/pwannenmacher/criteria-settings/internal/config"
	"github.com/pwannenmacher/criteria-settings/internal/database"
	"github.com/pwannenmacher/criteria-settings/internal/handlers"
	"github.com/pwannenmacher/criteria-settings/internal/logger"
	"github.com/pwannenmacher/criteria-settings/internal/metrics"
	"github.com/pwannenmacher/criteria-settings/internal/middleware"
	"github.com/pwannenmacher/criteria-settings/internal/scheduler"
	"github.com/pwannenmacher/criteria-settings/internal/service"
	"github.com/pwannenmacher/criteria-settings/migrations"
)

// @title Criteria Settings API
// @version 1.0
// @description Backend API for evaluation criteria versions, input types and user accounts

// @host localhost:8000
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Setup(logger.Config{Level: cfg.Log.Level})

	if err := run(cfg); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Info("Database connection established")

	if err := database.NewMigrationExecutor(db.DB, migrations.FS).RunMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database migrations completed")

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	m.RegisterDB(db.DB, cfg.Database.Name)

	// Services
	authSvc := auth.NewService(&cfg.JWT)
	auditService := service.NewAuditService(db.DB)
	authService := service.NewAuthService(db.DB, authSvc, auditService)

	// Middleware
	authMw := middleware.NewAuthMiddleware(authService, m)
	auditMw := middleware.NewAuditMiddleware(auditService)
	corsMw := middleware.NewCORSMiddleware(&cfg.CORS)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, m)

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, handlers.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		Teams:      handlers.NewTeamHandler(service.NewTeamService(db.DB)),
		Versions:   handlers.NewCriteriaVersionHandler(service.NewCriteriaVersionService(db.DB)),
		InputTypes: handlers.NewInputTypeHandler(service.NewInputTypeService(db.DB)),
		Criteria:   handlers.NewCriteriaHandler(service.NewCriteriaService(db.DB)),
		Health:     handlers.NewHealthHandler(db),
	}, authMw, auditMw)

	if cfg.Metrics.Enabled {
		mux.Handle("GET "+cfg.Metrics.Path, m.Handler())
	}
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// Metrics wraps the mux directly so it sees the matched route
	handler := middleware.Chain(
		middleware.Metrics(m)(mux),
		middleware.RequestID,
		middleware.Logging,
		middleware.SecurityHeaders,
		corsMw.Handler,
		rateLimiter.Limit,
	)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.TimeoutRead,
		WriteTimeout: cfg.Server.TimeoutWrite,
		IdleTimeout:  cfg.Server.TimeoutIdle,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Server starting", "addr", addr, "env", cfg.App.Env, "version", cfg.App.Version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return scheduler.NewScheduler(authService, &cfg.Scheduler, m).Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Server shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		slog.Info("Server stopped")
		return nil
	})

	return g.Wait()
}
