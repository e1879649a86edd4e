package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"grievance/internal/api"
	"grievance/internal/api/handlers"
	"grievance/internal/api/middleware"
	"grievance/internal/engine/analytics"
	"grievance/internal/engine/tenancy"
	"grievance/internal/engine/workflow"
	"grievance/internal/pkg/logger"
	"grievance/internal/platform/audit"
	"grievance/internal/platform/auth"
	"grievance/internal/platform/config"
	"grievance/internal/platform/database"
	"grievance/internal/platform/realtime"
	"grievance/internal/platform/repositories"
	"grievance/internal/workers"
)

const refreshDebounce = 2 * time.Second

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.Init(cfg.Logging)

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("jwt.secret must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if _, err := database.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	// Repositories publish every write to the hub
	hub := realtime.NewHub()
	orgRepo := repositories.NewOrganizationRepository(db, hub)
	userRepo := repositories.NewUserRepository(db, hub)
	complaintRepo := repositories.NewComplaintRepository(db, hub)
	auditRepo := repositories.NewAuditLogRepository(db, hub)

	// Services
	tokenSvc := auth.NewTokenService(cfg.JWT)
	auditLogger := audit.NewLogger(auditRepo)
	tenancySvc := tenancy.NewService(orgRepo, userRepo, auditLogger, cfg.Tenancy.AllowAdminSignup)
	workflowSvc := workflow.NewService(complaintRepo)
	analyticsSvc := analytics.NewService(complaintRepo, orgRepo, userRepo,
		analytics.NewSnapshotCache(cfg.Analytics.SnapshotTTL), cfg.Analytics.StuckAfter)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenSvc, userRepo)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit)
	go rateLimiter.Run(ctx)

	// Workers
	refresher := workers.NewSnapshotRefresher(hub, analyticsSvc.Refresh, refreshDebounce)
	go refresher.Run(ctx)

	// Router
	deps := &api.Dependencies{
		AnalyzeHandler:   handlers.NewAnalyzeHandler(),
		AuthHandler:      handlers.NewAuthHandler(tenancySvc),
		UserHandler:      handlers.NewUserHandler(tenancySvc),
		OrgHandler:       handlers.NewOrgHandler(tenancySvc),
		ComplaintHandler: handlers.NewComplaintHandler(workflowSvc, cfg.Domains.AppDomain),
		AuditHandler:     handlers.NewAuditHandler(auditLogger),
		AnalyticsHandler: handlers.NewAnalyticsHandler(analyticsSvc),
		StreamHandler:    handlers.NewStreamHandler(hub),
		HealthHandler:    handlers.NewHealthHandler(db),
		AuthMiddleware:   authMiddleware,
		RateLimiter:      rateLimiter,
	}
	router := api.NewRouter(deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.Handler(router, cfg.CORS),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown failed")
		}
	}()

	log.Info().Str("addr", srv.Addr).Msg("Server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
	log.Info().Msg("Server stopped")
}
