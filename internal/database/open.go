package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"redweb-backend/internal/config"
)

// Open builds the Backend selected by cfg.StorageDriver and wraps it in a Store.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Store, error) {
	var (
		backend Backend
		err     error
	)

	switch cfg.StorageDriver {
	case config.DriverFile:
		backend, err = NewFileBackend(cfg.DataDir)
	case config.DriverMemory:
		backend = NewMemoryBackend()
	case config.DriverPostgres:
		backend, err = NewPostgresBackend(cfg.DatabaseURL, logger)
	case config.DriverRedis:
		backend, err = NewRedisBackend(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisKeyPrefix,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("💾 record store ready", zap.String("driver", cfg.StorageDriver))
	return NewStore(backend, logger), nil
}
