package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/julianstephens/habitquest/internal/constants"
	apperrors "github.com/julianstephens/habitquest/internal/errors"
	"github.com/julianstephens/habitquest/internal/logger"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/streak"
)

// Snapshot persists the habit collection and the user profile as two JSON
// values in a KV. It never fails a load: missing or unreadable snapshots
// fall back to defaults.
type Snapshot struct {
	kv       KV
	username string
}

// NewSnapshot returns a Snapshot over kv. username names the default profile.
func NewSnapshot(kv KV, username string) *Snapshot {
	return &Snapshot{kv: kv, username: username}
}

// Load returns the saved habits and profile, or defaults for whichever is
// absent or malformed. Loaded data is normalized so that derived fields hold.
func (s *Snapshot) Load() ([]models.Habit, models.UserProfile) {
	habits := []models.Habit{}
	if err := s.read(constants.HabitsKey, &habits); err != nil {
		logMissing(err)
		habits = []models.Habit{}
	}

	profile := models.DefaultProfile(s.username)
	var saved models.UserProfile
	if err := s.read(constants.ProfileKey, &saved); err != nil {
		logMissing(err)
	} else {
		profile = mergeProfile(saved, s.username)
	}

	return normalizeHabits(habits), profile
}

// SaveHabits writes the habit collection snapshot.
func (s *Snapshot) SaveHabits(habits []models.Habit) error {
	if habits == nil {
		habits = []models.Habit{}
	}
	return s.write(constants.HabitsKey, habits)
}

// SaveProfile writes the profile snapshot.
func (s *Snapshot) SaveProfile(profile models.UserProfile) error {
	return s.write(constants.ProfileKey, profile)
}

func (s *Snapshot) read(key string, v any) error {
	data, err := s.kv.Get(key)
	if err != nil {
		return &apperrors.PersistenceError{Op: "load", Key: key, Err: err}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &apperrors.PersistenceError{Op: "load", Key: key, Err: fmt.Errorf("malformed snapshot: %w", err)}
	}
	return nil
}

func (s *Snapshot) write(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &apperrors.PersistenceError{Op: "save", Key: key, Err: err}
	}
	if err := s.kv.Put(key, data); err != nil {
		return &apperrors.PersistenceError{Op: "save", Key: key, Err: err}
	}
	return nil
}

func logMissing(err error) {
	if errors.Is(err, ErrKeyNotFound) {
		logger.Debug("No snapshot saved yet, using defaults", "error", err)
		return
	}
	logger.Warn("Snapshot unreadable, using defaults", "error", err)
}

func normalizeHabits(habits []models.Habit) []models.Habit {
	out := make([]models.Habit, 0, len(habits))
	for _, h := range habits {
		if h.ID == "" {
			logger.Warn("Dropping habit without id from snapshot", "name", h.Name)
			continue
		}
		h.CompletedDates = streak.Normalize(h.CompletedDates)
		h.Streak = streak.Calculate(h.CompletedDates)
		if !h.Frequency.Valid() {
			h.Frequency = models.FrequencyDaily
		}
		out = append(out, h)
	}
	return out
}

// legacyBadgeIDs maps the numeric ids used by early snapshots to catalog ids.
var legacyBadgeIDs = map[string]string{
	"1": constants.BadgeFirstHabit,
	"2": constants.BadgeStreak3,
	"3": constants.BadgeStreak7,
}

// mergeProfile maps a saved profile onto the badge catalog. Unknown badge ids
// are dropped and catalog badges missing from the save stay locked.
func mergeProfile(saved models.UserProfile, username string) models.UserProfile {
	profile := models.DefaultProfile(username)
	if saved.Username != "" {
		profile.Username = saved.Username
	}
	switch {
	case saved.Level > constants.MaxLevel:
		logger.Warn("Ignoring out of range level in saved profile", "level", saved.Level)
	case saved.Level >= 1:
		profile.Level = saved.Level
	}
	if saved.Experience > 0 {
		profile.Experience = saved.Experience
	}

	unlocked := make(map[string]bool, len(saved.Badges))
	for _, b := range saved.Badges {
		id := b.ID
		if renamed, ok := legacyBadgeIDs[id]; ok {
			id = renamed
		}
		if b.Unlocked {
			unlocked[id] = true
		}
	}
	for i := range profile.Badges {
		profile.Badges[i].Unlocked = unlocked[profile.Badges[i].ID]
	}
	if gained := profile.RollOver(); gained > 0 {
		logger.Debug("Rolled over saved experience", "levels", gained, "level", profile.Level)
	}
	return profile
}
