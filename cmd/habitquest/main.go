package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitquest/internal/cli"
	"github.com/julianstephens/habitquest/internal/cli/backups"
	"github.com/julianstephens/habitquest/internal/cli/habits"
	"github.com/julianstephens/habitquest/internal/cli/notifications"
	"github.com/julianstephens/habitquest/internal/cli/profile"
	"github.com/julianstephens/habitquest/internal/cli/system"
	"github.com/julianstephens/habitquest/internal/config"
	"github.com/julianstephens/habitquest/internal/constants"
	apperrors "github.com/julianstephens/habitquest/internal/errors"
	"github.com/julianstephens/habitquest/internal/logger"
)

var CLI struct {
	Version     kong.VersionFlag
	Storage     string `help:"Storage backend: json, sqlite, postgres or redis (env HABITQUEST_STORAGE)."`
	Data        string `help:"Data file path, or a connection string for postgres and redis. PostgreSQL connection strings must NOT embed a password (env HABITQUEST_DATA)."`
	Username    string `help:"Name shown on the profile (env HABITQUEST_USERNAME)."`
	Timezone    string `help:"IANA timezone used to decide what 'today' is (env HABITQUEST_TIMEZONE)."`
	Debug       bool   `help:"Enable debug logging (env HABITQUEST_DEBUG)."`
	MetricsFile string `help:"Write Prometheus metrics to this textfile after each command (env HABITQUEST_METRICS_FILE)."`
	TrayNotify  bool   `help:"Forward level-ups and badges to the tray app (env HABITQUEST_TRAY_NOTIFY)."`

	Init    system.InitCmd         `cmd:"" help:"Initialize habitquest storage."`
	Doctor  system.DoctorCmd       `cmd:"" help:"Run health checks and diagnostics."`
	Tui     system.TuiCmd          `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Habit   habits.HabitCmd        `cmd:"" help:"Manage habits and completions."`
	Profile profile.ProfileCmd     `cmd:"" help:"Show level and experience."`
	Stats   profile.StatsCmd       `cmd:"" help:"Show progress for a day."`
	Badge   profile.BadgeCmd       `cmd:"" help:"Show and unlock badges."`
	Award   profile.AwardCmd       `cmd:"" hidden:"" help:"Award bonus experience."`
	Inbox   notifications.InboxCmd `cmd:"" help:"Read the notification inbox."`
	Backup  backups.BackupCmd      `cmd:"" help:"Manage SQLite backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string with the password masked."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove a connection string from the OS keyring."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check OS keyring availability."`
	} `cmd:"" help:"Manage database credentials in the OS keyring."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Gamified habit tracker"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.Load(".env")
	if err != nil {
		apperrors.Fatal(err)
	}
	applyFlags(&cfg)
	if err := cfg.Validate(); err != nil {
		apperrors.Fatal(err)
	}
	if err := logger.Init(logger.Config{Debug: cfg.Debug, DataDir: cfg.DataDir()}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}

	appCtx := &cli.Context{Config: cfg}
	command := ctx.Command()
	if !strings.HasPrefix(command, "keyring") {
		store, err := cli.OpenStore(cfg)
		if err != nil {
			apperrors.Fatal(err)
		}
		appCtx.Store = store

		// init creates the store and doctor reports load failures itself.
		if !strings.HasPrefix(command, "init") && !strings.HasPrefix(command, "doctor") {
			if err := store.Load(); err != nil {
				apperrors.Fatal(err)
			}
		}
	}

	err = ctx.Run(appCtx)
	appCtx.Finish()
	if appCtx.Store != nil {
		if closeErr := appCtx.Store.Close(); closeErr != nil {
			logger.Warn("Failed to close store", "error", closeErr)
		}
	}
	apperrors.Fatal(err)
}

// applyFlags lets explicit flags win over the environment.
func applyFlags(cfg *config.Config) {
	if CLI.Storage != "" {
		cfg.Storage = CLI.Storage
	}
	if CLI.Data != "" {
		cfg.Data = CLI.Data
	}
	if CLI.Username != "" {
		cfg.Username = CLI.Username
	}
	if CLI.Timezone != "" {
		cfg.Timezone = CLI.Timezone
	}
	if CLI.MetricsFile != "" {
		cfg.MetricsFile = CLI.MetricsFile
	}
	cfg.Debug = cfg.Debug || CLI.Debug
	cfg.TrayNotify = cfg.TrayNotify || CLI.TrayNotify
}
