package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Storage backend names accepted by PROGRESS_STORAGE.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds the engine configuration, parsed from the environment.
//
// The 5 MiB default quota mirrors the constrained storage media the engine
// was designed around; set PROGRESS_QUOTA_BYTES=0 to lift the cap.
type Config struct {
	StorageBackend string `env:"PROGRESS_STORAGE" envDefault:"file"`
	DataDir        string `env:"PROGRESS_DATA_DIR" envDefault:".minigamehub"`
	PostgresDSN    string `env:"PROGRESS_POSTGRES_DSN"`
	QuotaBytes     int    `env:"PROGRESS_QUOTA_BYTES" envDefault:"5242880"`
	HistoryCap     int    `env:"PROGRESS_HISTORY_CAP" envDefault:"50"`
	UserID         string `env:"PROGRESS_USER_ID"`
}

// Load parses the configuration from the environment and validates it.
// Invalid configuration fails fast; the caller should exit.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks the business rules the rest of the engine relies on.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendFile, BackendSQLite:
		if c.DataDir == "" {
			return errors.New("data directory cannot be empty for file or sqlite storage")
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return errors.New("PROGRESS_POSTGRES_DSN is required for postgres storage")
		}
	case BackendMemory:
		// Nothing to validate; memory storage is always usable.
	default:
		return fmt.Errorf("unknown storage backend %q (must be file, sqlite, postgres, or memory)", c.StorageBackend)
	}

	if c.QuotaBytes < 0 {
		return errors.New("quota bytes cannot be negative")
	}
	if c.HistoryCap < 1 {
		return errors.New("history cap must be at least 1")
	}
	return nil
}
