package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/julianstephens/habitquest/internal/backup"
	"github.com/julianstephens/habitquest/internal/config"
	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/engine"
	apperrors "github.com/julianstephens/habitquest/internal/errors"
	"github.com/julianstephens/habitquest/internal/inbox"
	"github.com/julianstephens/habitquest/internal/logger"
	"github.com/julianstephens/habitquest/internal/metrics"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/notifier"
	"github.com/julianstephens/habitquest/internal/storage"
	"github.com/julianstephens/habitquest/internal/utils"
)

// Context is handed to every command's Run method.
type Context struct {
	Config config.Config
	Store  storage.KV
	// Out receives command output. Defaults to stdout.
	Out io.Writer

	// Set by Start.
	Engine   *engine.Engine
	Inbox    *inbox.Inbox
	Registry *prometheus.Registry
}

// Start builds the engine over the loaded store and attaches the inbox,
// metrics and tray notifier to it.
func (c *Context) Start() {
	if c.Engine != nil {
		return
	}
	c.Engine = engine.New(storage.NewSnapshot(c.Store, c.Config.Username), engine.Options{})

	c.Inbox = inbox.New(c.Store)
	c.Inbox.Attach(c.Engine)

	c.Registry = prometheus.NewRegistry()
	collector := metrics.NewCollector(c.Registry)
	collector.SetToday(func() string {
		day, _ := c.Today()
		return day
	})
	collector.Attach(c.Engine)

	if c.Config.TrayNotify {
		notifier.New().Attach(c.Engine)
	}
}

// Printf writes command output.
func (c *Context) Printf(format string, args ...any) {
	out := c.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, format, args...)
}

// Println writes a line of command output.
func (c *Context) Println(args ...any) {
	out := c.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintln(out, args...)
}

// Finish flushes the metrics textfile when one is configured.
func (c *Context) Finish() {
	if c.Registry == nil || c.Config.MetricsFile == "" {
		return
	}
	path := config.ExpandHome(c.Config.MetricsFile)
	if err := metrics.WriteTextfile(path, c.Registry); err != nil {
		logger.Warn("Failed to write metrics textfile", "path", path, "error", err)
	}
}

// Today returns the current day in the configured timezone.
func (c *Context) Today() (string, error) {
	return utils.GetTodayInTimezone(c.Config.Timezone)
}

// ResolveDay returns day, or today when day is empty.
func (c *Context) ResolveDay(day string) (string, error) {
	if day == "" {
		return c.Today()
	}
	if !utils.ValidateDay(day) {
		return "", fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", day)
	}
	return day, nil
}

// ResolveHabit finds a habit by id or by case-insensitive name.
func (c *Context) ResolveHabit(ref string) (models.Habit, error) {
	if h, ok := c.Engine.Habit(ref); ok {
		return h, nil
	}

	var matches []models.Habit
	for _, h := range c.Engine.Habits() {
		if strings.EqualFold(h.Name, strings.TrimSpace(ref)) {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 0:
		return models.Habit{}, apperrors.NotFoundf("habit %q", ref)
	case 1:
		return matches[0], nil
	default:
		return models.Habit{}, fmt.Errorf("%d habits are named %q, use the id instead", len(matches), ref)
	}
}

// PerformAutomaticBackup backs up the SQLite store and only logs failures.
func (c *Context) PerformAutomaticBackup() {
	if c.Config.Storage != constants.StorageSQLite {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}
