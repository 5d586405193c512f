package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"HABITQUEST_STORAGE", "HABITQUEST_DATA", "HABITQUEST_USERNAME",
		"HABITQUEST_TIMEZONE", "HABITQUEST_DEBUG", "HABITQUEST_REDIS_TIMEOUT",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage != "sqlite" {
		t.Errorf("Storage = %q, want sqlite", cfg.Storage)
	}
	if cfg.Username != "User" {
		t.Errorf("Username = %q, want User", cfg.Username)
	}
	if cfg.RedisTimeout != 2*time.Second {
		t.Errorf("RedisTimeout = %s, want 2s", cfg.RedisTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults = %v", err)
	}
}

func TestLoadFromEnvFile(t *testing.T) {
	os.Unsetenv("HABITQUEST_STORAGE")
	os.Unsetenv("HABITQUEST_USERNAME")
	t.Cleanup(func() {
		os.Unsetenv("HABITQUEST_STORAGE")
		os.Unsetenv("HABITQUEST_USERNAME")
	})

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "HABITQUEST_STORAGE=json\nHABITQUEST_USERNAME=ada\n"
	if err := os.WriteFile(envFile, []byte(content), 0600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(envFile, filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage != "json" || cfg.Username != "ada" {
		t.Errorf("Load() = %+v, want storage json and username ada", cfg)
	}
}

func TestLoadProcessEnvWins(t *testing.T) {
	t.Setenv("HABITQUEST_USERNAME", "from-process")

	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("HABITQUEST_USERNAME=from-file\n"), 0600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Username != "from-process" {
		t.Errorf("Username = %q, want process env to win over .env", cfg.Username)
	}
}

func TestValidate(t *testing.T) {
	base := Config{Storage: "sqlite", Data: "/tmp/hq.db", Timezone: "Local", RedisTimeout: time.Second}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown storage", mutate: func(c *Config) { c.Storage = "mongo" }, wantErr: "unknown storage"},
		{name: "empty data", mutate: func(c *Config) { c.Data = "  " }, wantErr: "data location"},
		{name: "bad timezone", mutate: func(c *Config) { c.Timezone = "Nope/Nope" }, wantErr: "invalid timezone"},
		{name: "bad redis timeout", mutate: func(c *Config) { c.RedisTimeout = 0 }, wantErr: "redis timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandHome("~/x/y.db"); got != filepath.Join(home, "x/y.db") {
		t.Errorf("ExpandHome() = %q", got)
	}
	if got := ExpandHome("/abs/y.db"); got != "/abs/y.db" {
		t.Errorf("ExpandHome() changed an absolute path: %q", got)
	}
}

func TestDataDir(t *testing.T) {
	cfg := Config{Storage: "json", Data: "/var/lib/hq/state.json"}
	if got := cfg.DataDir(); got != "/var/lib/hq" {
		t.Errorf("DataDir() = %q, want /var/lib/hq", got)
	}
	cfg = Config{Storage: "redis", Data: "redis://localhost:6379/0"}
	if !strings.HasSuffix(cfg.DataDir(), filepath.Join(".config", "habitquest")) {
		t.Errorf("DataDir() for redis = %q, want the default config dir", cfg.DataDir())
	}
}
