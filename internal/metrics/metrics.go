// Package metrics exposes engine activity as Prometheus metrics. The CLI is
// short lived, so metrics are written to a node_exporter textfile instead of
// being scraped.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/engine"
)

// Collector records engine events and the current progress summary.
type Collector struct {
	completions    prometheus.Counter
	uncompletions  prometheus.Counter
	levelUps       prometheus.Counter
	badgeUnlocks   *prometheus.CounterVec
	habitsCreated  prometheus.Counter
	habitsRemoved  prometheus.Counter
	level          prometheus.Gauge
	experience     prometheus.Gauge
	habits         prometheus.Gauge
	completedToday prometheus.Gauge
	bestStreak     prometheus.Gauge
	badgesUnlocked prometheus.Gauge

	today func() string
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		completions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "habitquest_completions_total",
			Help: "Habit completions recorded",
		}),
		uncompletions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "habitquest_uncompletions_total",
			Help: "Habit completions withdrawn",
		}),
		levelUps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "habitquest_level_ups_total",
			Help: "Levels gained",
		}),
		badgeUnlocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "habitquest_badge_unlocks_total",
			Help: "Badges unlocked, by badge id",
		}, []string{"badge"}),
		habitsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "habitquest_habits_created_total",
			Help: "Habits created",
		}),
		habitsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "habitquest_habits_removed_total",
			Help: "Habits removed",
		}),
		level: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "habitquest_level",
			Help: "Current level",
		}),
		experience: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "habitquest_experience",
			Help: "Experience within the current level",
		}),
		habits: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "habitquest_habits",
			Help: "Tracked habits",
		}),
		completedToday: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "habitquest_habits_completed_today",
			Help: "Habits completed today",
		}),
		bestStreak: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "habitquest_best_streak_days",
			Help: "Longest current streak across habits",
		}),
		badgesUnlocked: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "habitquest_badges_unlocked",
			Help: "Badges unlocked",
		}),
		today: func() string { return time.Now().Format(constants.DateFormat) },
	}

	reg.MustRegister(
		c.completions,
		c.uncompletions,
		c.levelUps,
		c.badgeUnlocks,
		c.habitsCreated,
		c.habitsRemoved,
		c.level,
		c.experience,
		c.habits,
		c.completedToday,
		c.bestStreak,
		c.badgesUnlocked,
	)

	return c
}

// SetToday overrides how the collector determines the current day.
func (c *Collector) SetToday(today func() string) {
	c.today = today
}

// Attach subscribes the collector to e and seeds the gauges from its state.
func (c *Collector) Attach(e *engine.Engine) {
	c.ObserveStats(e.Stats(c.today()))
	e.Subscribe(func(ev engine.Event) {
		c.Record(ev)
		c.ObserveStats(e.Stats(c.today()))
	})
}

// Record counts a single engine event.
func (c *Collector) Record(ev engine.Event) {
	switch ev.Type {
	case engine.EventCompletionToggled:
		if ev.Completed {
			c.completions.Inc()
		} else {
			c.uncompletions.Inc()
		}
	case engine.EventLevelUp:
		c.levelUps.Inc()
	case engine.EventBadgeUnlocked:
		c.badgeUnlocks.WithLabelValues(ev.BadgeID).Inc()
	case engine.EventHabitCreated:
		c.habitsCreated.Inc()
	case engine.EventHabitRemoved:
		c.habitsRemoved.Inc()
	}
}

// ObserveStats sets the progress gauges.
func (c *Collector) ObserveStats(s engine.Stats) {
	c.level.Set(float64(s.Level))
	c.experience.Set(float64(s.Experience))
	c.habits.Set(float64(s.TotalHabits))
	c.completedToday.Set(float64(s.CompletedOnDay))
	c.bestStreak.Set(float64(s.BestStreak))
	c.badgesUnlocked.Set(float64(s.BadgesUnlocked))
}

// WriteTextfile writes everything in g to path in the text exposition
// format, creating the parent directory if needed.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
