// Command reconcile recomputes every donor's totalDonations and
// lastDonationDate from the donation history once and exits.
package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"redweb-backend/internal/auth"
	"redweb-backend/internal/config"
	"redweb-backend/internal/database"
	"redweb-backend/internal/logging"
	"redweb-backend/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Development: cfg.IsDevelopment(), File: cfg.LogFile})
	if err != nil {
		log.Fatalf("Logger setup failed: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	store, err := database.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open record store", zap.Error(err))
	}
	defer store.Close()

	svc := services.New(store, auth.NewManager(cfg.JWTSecret, cfg.TokenTTL), logger)
	fixed, err := svc.Reconciler.Run(ctx)
	if err != nil {
		logger.Fatal("❌ Reconciliation failed", zap.Error(err))
	}
	logger.Info("✅ Reconciliation completed", zap.Int("repaired", fixed))
}
