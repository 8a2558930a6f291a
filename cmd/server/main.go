package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"redweb-backend/internal/auth"
	"redweb-backend/internal/config"
	"redweb-backend/internal/database"
	"redweb-backend/internal/handlers"
	"redweb-backend/internal/logging"
	"redweb-backend/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ FATAL ERROR: invalid configuration: %v", err)
	}

	logger, err := logging.New(logging.Options{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
		File:        cfg.LogFile,
	})
	if err != nil {
		log.Fatalf("❌ FATAL ERROR: logger setup failed: %v", err)
	}
	defer logger.Sync()

	logger.Info("🚀 REDWEB BACKEND SERVER STARTING",
		zap.String("environment", cfg.Environment),
		zap.String("storage", cfg.StorageDriver))
	if cfg.IsDevelopment() && cfg.JWTSecret == config.DevelopmentSecret {
		logger.Warn("⚠️  JWT_SECRET not set, using the development secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Record store
	store, err := database.Open(ctx, cfg, logger.Named("store"))
	if err != nil {
		logger.Fatal("❌ FATAL ERROR: record store unavailable", zap.Error(err))
	}
	defer store.Close()

	if err := store.Init(ctx); err != nil {
		logger.Fatal("❌ FATAL ERROR: record store init failed", zap.Error(err))
	}

	logger.Info("🌱 Seeding default admin...")
	if err := database.SeedUsers(ctx, store, database.Account{
		Email:     cfg.SeedAdminEmail,
		Password:  cfg.SeedAdminPassword,
		FirstName: "Admin",
		LastName:  "User",
	}); err != nil {
		logger.Fatal("❌ FATAL ERROR: user seeding failed", zap.Error(err))
	}

	tokens := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	svc := services.New(store, tokens, logger)

	// Donation counter reconciliation
	var scheduler *cron.Cron
	if cfg.ReconcileSchedule != "" {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.ReconcileSchedule, func() {
			if _, err := svc.Reconciler.Run(context.Background()); err != nil {
				logger.Error("❌ reconciliation failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Fatal("❌ FATAL ERROR: invalid RECONCILE_SCHEDULE", zap.String("schedule", cfg.ReconcileSchedule), zap.Error(err))
		}
		scheduler.Start()
		logger.Info("⏰ reconciliation scheduled", zap.String("schedule", cfg.ReconcileSchedule))
	}

	router := handlers.NewRouter(svc, tokens, handlers.RouterOptions{
		Logger:         logger,
		Debug:          cfg.IsDevelopment(),
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("✅ ALL INITIALIZATION COMPLETE")
		logger.Info("🔌 Ready to accept requests", zap.String("addr", "http://localhost:"+cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("❌ FATAL ERROR: server failed to start", zap.String("port", cfg.Port), zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("🛑 shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("❌ graceful shutdown failed", zap.Error(err))
	}
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	logger.Info("👋 server stopped")
}
