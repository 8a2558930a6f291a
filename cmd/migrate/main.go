// Command migrate imports the JSON collection files from a data directory
// into the configured storage backend (usually postgres or redis).
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"redweb-backend/internal/config"
	"redweb-backend/internal/database"
	"redweb-backend/internal/logging"
)

func main() {
	from := pflag.String("from", "", "directory holding the *.json collection files (defaults to DATA_DIR)")
	overwrite := pflag.Bool("overwrite", false, "replace collections that already hold data in the target")
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Development: true})
	if err != nil {
		log.Fatalf("Logger setup failed: %v", err)
	}
	defer logger.Sync()

	dir := *from
	if dir == "" {
		dir = cfg.DataDir
	}
	if cfg.StorageDriver == config.DriverFile && dir == cfg.DataDir {
		logger.Fatal("Source and target are the same directory; set STORAGE_DRIVER to postgres or redis")
	}

	src, err := database.NewFileBackend(dir)
	if err != nil {
		logger.Fatal("Failed to open source directory", zap.String("dir", dir), zap.Error(err))
	}

	ctx := context.Background()
	store, err := database.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open target store", zap.Error(err))
	}
	defer store.Close()

	logger.Info("Executing migration", zap.String("from", dir), zap.String("to", cfg.StorageDriver))
	res, err := database.CopyCollections(ctx, src, store.Backend(), *overwrite, logger)
	if err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}
	if err := store.Init(ctx); err != nil {
		logger.Fatal("Failed to initialize remaining collections", zap.Error(err))
	}

	fmt.Println("\n============================================================")
	fmt.Println("MIGRATION SUMMARY")
	fmt.Println("============================================================")
	fmt.Printf("Collections copied:  %d %v\n", len(res.Copied), res.Copied)
	fmt.Printf("Collections skipped: %d %v\n", len(res.Skipped), res.Skipped)
	fmt.Println("============================================================")
}
