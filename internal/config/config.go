// Package config loads runtime settings from the environment (and an
// optional .env file).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"

	// DevelopmentSecret signs tokens when JWT_SECRET is unset in development.
	DevelopmentSecret = "redweb-development-secret"
)

type Config struct {
	Port        string
	Environment string

	JWTSecret string
	TokenTTL  time.Duration

	StorageDriver  string
	DataDir        string
	DatabaseURL    string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string

	LogLevel string
	LogFile  string

	ReconcileSchedule string

	SeedAdminEmail    string
	SeedAdminPassword string

	CORSAllowedOrigins []string
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Load reads the .env file if present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8081")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("STORAGE_DRIVER", DriverFile)
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_KEY_PREFIX", "redweb:")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("RECONCILE_SCHEDULE", "@every 1h")
	v.SetDefault("SEED_ADMIN_EMAIL", "admin@redweb.com")
	v.SetDefault("SEED_ADMIN_PASSWORD", "password123")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	return v
}

// FromViper builds and validates a Config from v.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:              v.GetString("PORT"),
		Environment:       strings.ToLower(v.GetString("ENVIRONMENT")),
		JWTSecret:         v.GetString("JWT_SECRET"),
		StorageDriver:     strings.ToLower(v.GetString("STORAGE_DRIVER")),
		DataDir:           v.GetString("DATA_DIR"),
		DatabaseURL:       v.GetString("DATABASE_URL"),
		RedisAddr:         v.GetString("REDIS_ADDR"),
		RedisPassword:     v.GetString("REDIS_PASSWORD"),
		RedisDB:           v.GetInt("REDIS_DB"),
		RedisKeyPrefix:    v.GetString("REDIS_KEY_PREFIX"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFile:           v.GetString("LOG_FILE"),
		ReconcileSchedule: strings.TrimSpace(v.GetString("RECONCILE_SCHEDULE")),
		SeedAdminEmail:    v.GetString("SEED_ADMIN_EMAIL"),
		SeedAdminPassword: v.GetString("SEED_ADMIN_PASSWORD"),
	}

	ttl, err := time.ParseDuration(v.GetString("TOKEN_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	if ttl <= 0 {
		return nil, errors.New("TOKEN_TTL must be positive")
	}
	cfg.TokenTTL = ttl

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, errors.New("JWT_SECRET environment variable is required")
		}
		cfg.JWTSecret = DevelopmentSecret
	}

	switch cfg.StorageDriver {
	case DriverFile:
		if cfg.DataDir == "" {
			return nil, errors.New("DATA_DIR is required for the file storage driver")
		}
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL environment variable is required for the postgres storage driver")
		}
	case DriverRedis:
		if cfg.RedisAddr == "" {
			return nil, errors.New("REDIS_ADDR is required for the redis storage driver")
		}
	case DriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	return cfg, nil
}
