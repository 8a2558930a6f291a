// Command createadmin creates a privileged account in the configured record
// store, or resets the password and role of an existing one.
package main

import (
	"context"
	"log"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"redweb-backend/internal/config"
	"redweb-backend/internal/database"
	"redweb-backend/internal/logging"
	"redweb-backend/internal/models"
)

func main() {
	var acct database.Account
	pflag.StringVar(&acct.Email, "email", "", "account email (required)")
	pflag.StringVar(&acct.Password, "password", "", "account password (required)")
	pflag.StringVar(&acct.Role, "role", models.RoleAdmin, "role: admin, organizer or user")
	pflag.StringVar(&acct.FirstName, "first-name", "", "first name")
	pflag.StringVar(&acct.LastName, "last-name", "", "last name")
	pflag.Parse()

	if acct.Email == "" || acct.Password == "" {
		pflag.Usage()
		log.Fatal("--email and --password are required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Development: true})
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

	if err := store.Init(ctx); err != nil {
		logger.Fatal("Failed to initialize record store", zap.Error(err))
	}

	created, err := database.UpsertAccount(ctx, store, acct)
	if err != nil {
		logger.Fatal("❌ Failed to create account", zap.String("email", acct.Email), zap.Error(err))
	}
	if created {
		logger.Info("✅ Created account", zap.String("email", acct.Email), zap.String("role", acct.Role))
	} else {
		logger.Info("⚠️  Account already existed, password and role reset", zap.String("email", acct.Email), zap.String("role", acct.Role))
	}
}
