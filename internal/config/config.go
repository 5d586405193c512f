// Package config loads runtime configuration from the environment and an
// optional .env file. CLI flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/utils"
)

// Config is the resolved runtime configuration.
type Config struct {
	Storage      string        `env:"HABITQUEST_STORAGE" envDefault:"sqlite"`
	Data         string        `env:"HABITQUEST_DATA" envDefault:"~/.config/habitquest/habitquest.db"`
	Connection   string        `env:"HABITQUEST_DB_CONNECTION"`
	Username     string        `env:"HABITQUEST_USERNAME" envDefault:"User"`
	Timezone     string        `env:"HABITQUEST_TIMEZONE" envDefault:"Local"`
	Debug        bool          `env:"HABITQUEST_DEBUG"`
	MetricsFile  string        `env:"HABITQUEST_METRICS_FILE"`
	TrayNotify   bool          `env:"HABITQUEST_TRAY_NOTIFY"`
	RedisTimeout time.Duration `env:"HABITQUEST_REDIS_TIMEOUT" envDefault:"2s"`
}

// Load reads envFiles (missing files are skipped) and then parses the environment.
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks the values that can be checked without touching storage.
func (c Config) Validate() error {
	switch c.Storage {
	case constants.StorageJSON, constants.StorageSQLite, constants.StoragePostgres, constants.StorageRedis:
	default:
		return fmt.Errorf("unknown storage backend %q (expected json, sqlite, postgres or redis)", c.Storage)
	}
	if strings.TrimSpace(c.Data) == "" {
		return errors.New("data location cannot be empty")
	}
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid timezone %q", c.Timezone)
	}
	if c.RedisTimeout <= 0 {
		return fmt.Errorf("redis timeout must be positive, got %s", c.RedisTimeout)
	}
	return nil
}

// IsFileBackend reports whether Data names a local file.
func (c Config) IsFileBackend() bool {
	return c.Storage == constants.StorageJSON || c.Storage == constants.StorageSQLite
}

// DataPath returns Data with a leading ~ expanded. Only meaningful for file backends.
func (c Config) DataPath() string {
	return ExpandHome(c.Data)
}

// DataDir is the directory holding logs and backups. Network backends use the
// default config directory.
func (c Config) DataDir() string {
	if c.IsFileBackend() {
		return filepath.Dir(c.DataPath())
	}
	return filepath.Dir(ExpandHome(constants.DefaultConfigPath))
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
