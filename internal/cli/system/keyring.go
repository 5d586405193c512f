package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/habitquest/internal/cli"
	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/keyring"
	"github.com/julianstephens/habitquest/internal/storage/postgres"
	"github.com/julianstephens/habitquest/internal/storage/redis"
)

// KeyringSetCmd stores a connection string in the OS keyring
type KeyringSetCmd struct {
	Backend          string `arg:"" enum:"postgres,redis" help:"Backend the connection string is for (postgres or redis)."`
	ConnectionString string `arg:"" help:"Connection string to store."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	switch cmd.Backend {
	case constants.StoragePostgres:
		if _, err := postgres.ValidateConnString(cmd.ConnectionString); err != nil {
			if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return fmt.Errorf("invalid connection string: %w", err)
			}
			ctx.Println("⚠️  Warning: Connection string contains embedded credentials.")
			ctx.Println("   It will be stored as-is in the encrypted OS keyring.")
		}
	case constants.StorageRedis:
		if _, err := redis.ValidateConnString(cmd.ConnectionString); err != nil {
			return err
		}
		if !redis.HasPassword(cmd.ConnectionString) {
			ctx.Println("ℹ Connection string has no password, the server must allow unauthenticated access.")
		}
	default:
		return fmt.Errorf("unsupported backend %q", cmd.Backend)
	}

	if err := keyring.SetConnectionString(cmd.Backend, cmd.ConnectionString); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}
	ctx.Println("✓ Connection string stored successfully in OS keyring")
	return nil
}

// KeyringGetCmd prints the stored connection string with the password masked
type KeyringGetCmd struct {
	Backend string `arg:"" enum:"postgres,redis" help:"Backend to look up."`
}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	connStr, err := keyring.GetConnectionString(cmd.Backend)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s connection string found in keyring, use 'habitquest keyring set' to store one", cmd.Backend)
		}
		return fmt.Errorf("failed to retrieve connection string from keyring: %w", err)
	}
	ctx.Println(maskPassword(connStr))
	return nil
}

// KeyringDeleteCmd removes a connection string from the OS keyring
type KeyringDeleteCmd struct {
	Backend string `arg:"" enum:"postgres,redis" help:"Backend to forget."`
}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteConnectionString(cmd.Backend); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s connection string found in keyring", cmd.Backend)
		}
		return fmt.Errorf("failed to delete connection string from keyring: %w", err)
	}
	ctx.Println("✓ Connection string deleted from OS keyring")
	return nil
}

// KeyringStatusCmd reports keyring availability and what is stored
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		ctx.Println("❌ OS keyring is not available on this system")
		return errors.New("keyring unavailable")
	}
	ctx.Println("✓ OS keyring is available")
	for _, backend := range []string{constants.StoragePostgres, constants.StorageRedis} {
		if _, err := keyring.GetConnectionString(backend); err == nil {
			ctx.Printf("✓ %s connection string is stored\n", backend)
		} else {
			ctx.Printf("ℹ No %s connection string stored\n", backend)
		}
	}
	return nil
}

// maskPassword hides the password in URL and key=value connection strings.
func maskPassword(connStr string) string {
	if idx := strings.Index(connStr, "://"); idx != -1 {
		rest := connStr[idx+3:]
		if at := strings.LastIndex(rest, "@"); at != -1 {
			userInfo := rest[:at]
			if colon := strings.Index(userInfo, ":"); colon != -1 {
				return connStr[:idx+3] + userInfo[:colon] + ":****" + rest[at:]
			}
		}
		return connStr
	}

	if strings.Contains(connStr, "password=") {
		parts := strings.Fields(connStr)
		for i, part := range parts {
			if strings.HasPrefix(part, "password=") {
				parts[i] = "password=****"
			}
		}
		return strings.Join(parts, " ")
	}
	return connStr
}
