package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/habitquest/internal/config"
	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/keyring"
	"github.com/julianstephens/habitquest/internal/logger"
	"github.com/julianstephens/habitquest/internal/storage"
	"github.com/julianstephens/habitquest/internal/storage/postgres"
	"github.com/julianstephens/habitquest/internal/storage/redis"
	"github.com/julianstephens/habitquest/internal/storage/sqlite"
)

// getConnectionString is swapped out in tests.
var getConnectionString = keyring.GetConnectionString

// OpenStore returns the KV backend selected by cfg. The store is neither
// initialized nor loaded.
func OpenStore(cfg config.Config) (storage.KV, error) {
	switch cfg.Storage {
	case constants.StorageJSON:
		return storage.NewJSONStore(cfg.DataPath()), nil
	case constants.StorageSQLite:
		return sqlite.NewStore(cfg.DataPath()), nil
	case constants.StoragePostgres:
		connStr, err := ResolveConnection(cfg)
		if err != nil {
			return nil, err
		}
		return postgres.New(connStr), nil
	case constants.StorageRedis:
		connStr, err := ResolveConnection(cfg)
		if err != nil {
			return nil, err
		}
		if _, err := redis.ValidateConnString(connStr); err != nil {
			return nil, err
		}
		return redis.New(connStr, cfg.RedisTimeout), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
}

// ResolveConnection picks the connection string for a network backend, in
// order: HABITQUEST_DB_CONNECTION, the OS keyring, then --data. A Postgres
// string given through --data must not embed a password.
func ResolveConnection(cfg config.Config) (string, error) {
	if cfg.Connection != "" {
		logger.Debug("Using connection string from environment", "backend", cfg.Storage)
		return cfg.Connection, nil
	}

	connStr, err := getConnectionString(cfg.Storage)
	switch {
	case err == nil:
		logger.Debug("Using connection string from keyring", "backend", cfg.Storage)
		return connStr, nil
	case errors.Is(err, keyring.ErrNotFound):
	default:
		logger.Warn("Keyring lookup failed", "backend", cfg.Storage, "error", err)
	}

	if !looksLikeConnString(cfg.Data) {
		return "", fmt.Errorf("no %s connection string configured: use 'habitquest keyring set', HABITQUEST_DB_CONNECTION or --data", cfg.Storage)
	}
	if cfg.Storage == constants.StoragePostgres {
		if _, err := postgres.ValidateConnString(cfg.Data); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return "", fmt.Errorf("%w: store it with 'habitquest keyring set' or use .pgpass instead", err)
			}
			return "", err
		}
	}
	return cfg.Data, nil
}

func looksLikeConnString(s string) bool {
	return strings.Contains(s, "://") || strings.Contains(s, "host=")
}
