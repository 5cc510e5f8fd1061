// Package config loads the engine's runtime configuration from the
// environment, with an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults.
const (
	DefaultIdleTimeoutMinutes = 30
	DefaultCooldownMinutes    = 10
	DefaultDataDir            = "data"
)

// Config is loaded once at startup and immutable afterwards.
type Config struct {
	DBType             string        // "sqlite" or "postgres"
	DatabaseURL        string        // postgres DSN
	DataDir            string        // sqlite data directory
	IdleTimeout        time.Duration // session auto-close window
	AdjustmentCooldown time.Duration // per-kind feedback cooldown
	LogLevel           string        // zap level name
}

// Load reads configuration. A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBType:             envOr("DB_TYPE", "sqlite"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		DataDir:            envOr("DATA_DIR", DefaultDataDir),
		IdleTimeout:        time.Duration(DefaultIdleTimeoutMinutes) * time.Minute,
		AdjustmentCooldown: time.Duration(DefaultCooldownMinutes) * time.Minute,
		LogLevel:           envOr("LOG_LEVEL", "info"),
	}

	if v := os.Getenv("SESSION_IDLE_TIMEOUT_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes <= 0 {
			return nil, fmt.Errorf("invalid SESSION_IDLE_TIMEOUT_MINUTES %q", v)
		}
		cfg.IdleTimeout = time.Duration(minutes) * time.Minute
	}
	if v := os.Getenv("ADJUSTMENT_COOLDOWN_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes <= 0 {
			return nil, fmt.Errorf("invalid ADJUSTMENT_COOLDOWN_MINUTES %q", v)
		}
		cfg.AdjustmentCooldown = time.Duration(minutes) * time.Minute
	}
	if cfg.DBType == "postgres" && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when DB_TYPE=postgres")
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
