// Package engine owns the in-memory habit collection and user profile and
// keeps them consistent with a persisted snapshot.
//
// An Engine is not safe for concurrent use. Callers serialize access, which
// the CLI and TUI do by construction.
package engine

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitquest/internal/logger"
	"github.com/julianstephens/habitquest/internal/models"
)

// Persister loads and saves the two snapshots. storage.Snapshot implements it.
type Persister interface {
	Load() ([]models.Habit, models.UserProfile)
	SaveHabits(habits []models.Habit) error
	SaveProfile(profile models.UserProfile) error
}

// Options customizes an Engine. Zero values select the defaults.
type Options struct {
	// Now returns the current time, used for createdAt and event timestamps.
	Now func() time.Time
	// NewID returns a fresh habit id.
	NewID func() string
}

type Engine struct {
	store Persister
	now   func() time.Time
	newID func() string

	habits  []models.Habit
	profile models.UserProfile

	subscribers []func(Event)
	pending     []Event

	habitsDirty  bool
	profileDirty bool
}

// New loads the snapshot from store and returns an engine over it.
func New(store Persister, opts Options) *Engine {
	e := &Engine{
		store: store,
		now:   opts.Now,
		newID: opts.NewID,
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.newID == nil {
		e.newID = func() string { return uuid.New().String() }
	}

	habits, profile := store.Load()
	e.habits = make([]models.Habit, 0, len(habits))
	for _, h := range habits {
		e.habits = append(e.habits, h.Clone())
	}
	e.profile = profile.Clone()
	e.profile.RollOver()

	logger.Debug("Engine loaded", "habits", len(e.habits), "level", e.profile.Level, "experience", e.profile.Experience)
	return e
}

// commit saves whichever snapshots the current operation touched and then
// dispatches the queued events. State is never rolled back on a failed save.
func (e *Engine) commit() error {
	var errs []error
	if e.habitsDirty {
		if err := e.store.SaveHabits(e.Habits()); err != nil {
			logger.Error("Failed to save habits", "error", err)
			errs = append(errs, err)
		}
	}
	if e.profileDirty {
		if err := e.store.SaveProfile(e.Profile()); err != nil {
			logger.Error("Failed to save profile", "error", err)
			errs = append(errs, err)
		}
	}
	e.habitsDirty = false
	e.profileDirty = false

	e.flush()
	return errors.Join(errs...)
}
