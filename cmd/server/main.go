package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"accentclash/internal/assessment"
	"accentclash/internal/config"
	"accentclash/internal/database"
	"accentclash/internal/handlers"
	"accentclash/internal/repository"
	"accentclash/internal/scoring"
	"accentclash/internal/security"
	"accentclash/internal/service"
)

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := database.Initialize(cfg)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("database connection established", zap.String("type", cfg.DatabaseType))

	if err := db.RunMigrations(cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// Repositories
	learnerRepo := repository.NewLearnerRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	itemRepo := repository.NewItemRepository(db)

	// Services
	tokenIssuer, err := security.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Fatal("failed to configure token issuer", zap.Error(err))
	}

	aggregator := scoring.NewAggregator(scoring.DefaultConfig())
	authService := service.NewAuthService(learnerRepo, tokenIssuer)
	catalogService := service.NewCatalogService(itemRepo)
	sessionService := service.NewSessionService(db, sessionRepo, attemptRepo, itemRepo, aggregator)
	progressService := service.NewProgressService(learnerRepo, sessionRepo, attemptRepo, aggregator)

	if err := catalogService.SeedDefaultCatalog(context.Background()); err != nil {
		logger.Warn("failed to seed practice catalog", zap.Error(err))
	}

	assessmentClient := assessment.NewClient(
		cfg.AssessmentBaseURL,
		cfg.AssessmentTokenURL,
		cfg.AssessmentClientID,
		cfg.AssessmentClientSecret,
	)
	if !assessmentClient.IsEnabled() {
		logger.Warn("assessment service not configured, audio scoring disabled")
	}

	// Weekly progress report emails
	emailService, err := service.NewEmailService(context.Background(), cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, logger)
	if err != nil {
		logger.Warn("failed to configure email service", zap.Error(err))
	}
	if cfg.ReportsEnabled && emailService != nil {
		scheduler := service.NewReportScheduler(learnerRepo, progressService, emailService, logger)
		scheduler.Start()
	}

	// Handlers
	rateLimiter := security.NewRateLimiter(10, time.Minute)
	middleware := handlers.NewMiddleware(authService, rateLimiter, logger)
	authHandler := handlers.NewAuthHandler(authService, logger)
	catalogHandler := handlers.NewCatalogHandler(catalogService, logger)
	sessionHandler := handlers.NewSessionHandler(sessionService, assessmentClient, logger)
	progressHandler := handlers.NewProgressHandler(progressService, logger)

	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST /api/auth/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/auth/login", middleware.RateLimit(authHandler.Login))

	// Profile
	mux.HandleFunc("PUT /api/learners/me/level", middleware.RequireAuth(authHandler.UpdateLevel))

	// Catalog
	mux.HandleFunc("GET /api/catalog/passages", middleware.RequireAuth(catalogHandler.ListPassages))
	mux.HandleFunc("GET /api/catalog/twisters", middleware.RequireAuth(catalogHandler.ListTwisters))

	// Sessions
	mux.HandleFunc("POST /api/sessions", middleware.RequireAuth(sessionHandler.CreateSession))
	mux.HandleFunc("GET /api/sessions", middleware.RequireAuth(sessionHandler.ListSessions))
	mux.HandleFunc("GET /api/sessions/{id}", middleware.RequireAuth(sessionHandler.GetSession))
	mux.HandleFunc("GET /api/sessions/{id}/attempts", middleware.RequireAuth(sessionHandler.GetSessionAttempts))
	mux.HandleFunc("POST /api/sessions/{id}/attempts", middleware.RequireAuth(sessionHandler.RecordAttempt))
	mux.HandleFunc("POST /api/sessions/{id}/items/{index}/assess", middleware.RequireAuth(sessionHandler.AssessAttempt))
	mux.HandleFunc("POST /api/sessions/{id}/complete", middleware.RequireAuth(sessionHandler.CompleteSession))
	mux.HandleFunc("POST /api/sessions/{id}/abandon", middleware.RequireAuth(sessionHandler.AbandonSession))
	mux.HandleFunc("DELETE /api/sessions/{id}", middleware.RequireAuth(sessionHandler.DeleteSession))

	// Progress
	mux.HandleFunc("GET /api/progress", middleware.RequireAuth(progressHandler.GetProgress))

	handler := middleware.RequestLogger(mux)

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if debug {
		zapCfg = zap.NewDevelopmentConfig()
	}
	return zapCfg.Build()
}
