package system

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/julianstephens/habitquest/internal/backup"
	"github.com/julianstephens/habitquest/internal/cli"
	"github.com/julianstephens/habitquest/internal/constants"
	apperrors "github.com/julianstephens/habitquest/internal/errors"
	"github.com/julianstephens/habitquest/internal/migration"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/storage"
	"github.com/julianstephens/habitquest/internal/streak"
	"github.com/julianstephens/habitquest/internal/utils"
	"github.com/julianstephens/habitquest/migrations"
)

type DoctorCmd struct{}

type check struct {
	name      string
	run       func(ctx *cli.Context) error
	needStore bool
	warnOnly  bool
}

var checks = []check{
	{name: "Store reachable", run: checkStoreReachable},
	{name: "Schema version", run: checkSchemaVersion, needStore: true},
	{name: "Backups present", run: checkBackupsPresent, warnOnly: true},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "Habit snapshot", run: checkHabitSnapshot, needStore: true},
	{name: "Profile snapshot", run: checkProfileSnapshot, needStore: true},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	reachable := true
	for _, c := range checks {
		if c.needStore && !reachable {
			ctx.Printf("⊘ %s: SKIPPED (store not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("%s %s: OK\n", cli.SuccessStyle.Render("✓"), c.name)
		case c.warnOnly:
			ctx.Printf("%s %s: WARNING\n", cli.WarnStyle.Render("⚠"), c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   %s\n", apperrors.Format(err))
			hasError = true
			if c.name == "Store reachable" {
				reachable = false
			}
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return errors.New("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

type dbStore interface {
	GetDB() *sql.DB
}

func checkStoreReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}
	if s, ok := ctx.Store.(dbStore); ok {
		db := s.GetDB()
		if db == nil {
			return errors.New("database connection is nil")
		}
		var result int
		if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}
	return nil
}

// checkSchemaVersion only inspects SQLite directly. Postgres validates its
// version during Load, and the other backends have no schema.
func checkSchemaVersion(ctx *cli.Context) error {
	s, ok := ctx.Store.(dbStore)
	if !ok {
		return nil
	}
	sub, err := fs.Sub(migrations.FS, constants.StorageSQLite)
	if err != nil {
		return err
	}
	runner := migration.NewRunner(s.GetDB(), sub, migration.SQLite)

	current, err := runner.GetCurrentVersion()
	if err != nil {
		return err
	}
	latest, err := runner.GetLatestVersion()
	if err != nil {
		return err
	}
	switch {
	case current == 0:
		return errors.New("schema version is 0, run 'habitquest init'")
	case current > latest:
		return fmt.Errorf("schema version %d is newer than supported version %d", current, latest)
	case current < latest:
		return fmt.Errorf("schema version %d is behind %d, pending migrations", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if ctx.Config.Storage != constants.StorageSQLite {
		return nil
	}
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found in %s", mgr.GetBackupDir())
	}
	if age := time.Since(backups[0].Timestamp); age > 7*24*time.Hour {
		return fmt.Errorf("latest backup is %d days old", int(age.Hours()/24))
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	if !utils.ValidateTimezone(ctx.Config.Timezone) {
		return fmt.Errorf("invalid timezone %q", ctx.Config.Timezone)
	}
	if now := time.Now(); now.Year() < 2020 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	return nil
}

func readRaw(ctx *cli.Context, key string, v any) (bool, error) {
	data, err := ctx.Store.Get(key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("%s snapshot is not valid JSON: %w", key, err)
	}
	return true, nil
}

func checkHabitSnapshot(ctx *cli.Context) error {
	var habits []models.Habit
	if _, err := readRaw(ctx, constants.HabitsKey, &habits); err != nil {
		return err
	}

	seen := make(map[string]bool, len(habits))
	var problems []error
	for _, h := range habits {
		if h.ID == "" {
			problems = append(problems, fmt.Errorf("habit %q has no id", h.Name))
			continue
		}
		if seen[h.ID] {
			problems = append(problems, fmt.Errorf("duplicate habit id %s", h.ID))
		}
		seen[h.ID] = true

		days := make(map[string]bool, len(h.CompletedDates))
		for _, d := range h.CompletedDates {
			if !utils.ValidateDay(d) {
				problems = append(problems, fmt.Errorf("habit %s has invalid date %q", h.ID, d))
			}
			if days[d] {
				problems = append(problems, fmt.Errorf("habit %s has duplicate date %s", h.ID, d))
			}
			days[d] = true
		}
		if want := streak.Calculate(h.CompletedDates); h.Streak != want {
			problems = append(problems, fmt.Errorf("habit %s streak is %d, expected %d", h.ID, h.Streak, want))
		}
	}
	return errors.Join(problems...)
}

func checkProfileSnapshot(ctx *cli.Context) error {
	var p models.UserProfile
	found, err := readRaw(ctx, constants.ProfileKey, &p)
	if err != nil || !found {
		return err
	}
	if p.Level < 1 {
		return fmt.Errorf("level is %d", p.Level)
	}
	if p.Experience < 0 || p.Experience >= p.Threshold() {
		return fmt.Errorf("experience %d is outside [0, %d)", p.Experience, p.Threshold())
	}
	return nil
}
