// Package inbox keeps a persisted, newest-first list of human readable
// notifications derived from engine events.
package inbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/engine"
	apperrors "github.com/julianstephens/habitquest/internal/errors"
	"github.com/julianstephens/habitquest/internal/logger"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/storage"
)

type Inbox struct {
	kv    storage.KV
	limit int
	now   func() time.Time
}

func New(kv storage.KV) *Inbox {
	return &Inbox{
		kv:    kv,
		limit: constants.MaxInboxNotifications,
		now:   time.Now,
	}
}

// Attach subscribes the inbox to e. Failures to record a notification are
// logged and never reach the engine.
func (i *Inbox) Attach(e *engine.Engine) {
	e.Subscribe(func(ev engine.Event) {
		msg, ok := Message(ev)
		if !ok {
			return
		}
		if err := i.Add(msg); err != nil {
			logger.Warn("Failed to record notification", "event", ev.Type, "error", err)
		}
	})
}

// Message returns the inbox text for an event.
func Message(ev engine.Event) (string, bool) {
	switch ev.Type {
	case engine.EventLevelUp:
		return fmt.Sprintf("Level Up! You're now level %d", ev.Level), true
	case engine.EventBadgeUnlocked:
		return "Badge Unlocked: " + ev.BadgeName, true
	case engine.EventHabitCreated:
		return "Habit created successfully!", true
	case engine.EventHabitRemoved:
		return "Habit removed", true
	case engine.EventHabitUpdated:
		return "Habit updated successfully!", true
	case engine.EventCompletionToggled:
		if ev.Completed {
			return fmt.Sprintf("Great job! +%d XP", constants.CompletionXP), true
		}
		return "Habit marked as incomplete", true
	}
	return "", false
}

// Add prepends a new unread notification, dropping the oldest entries past
// the inbox limit.
func (i *Inbox) Add(message string) error {
	list, err := i.List()
	if err != nil {
		return err
	}
	n := models.Notification{
		ID:        uuid.New().String(),
		Message:   message,
		Timestamp: i.now(),
	}
	list = append([]models.Notification{n}, list...)
	if len(list) > i.limit {
		list = list[:i.limit]
	}
	return i.save(list)
}

// List returns all notifications, newest first. A missing or unreadable
// inbox is treated as empty.
func (i *Inbox) List() ([]models.Notification, error) {
	data, err := i.kv.Get(constants.NotificationsKey)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return []models.Notification{}, nil
		}
		return nil, &apperrors.PersistenceError{Op: "load", Key: constants.NotificationsKey, Err: err}
	}
	var list []models.Notification
	if err := json.Unmarshal(data, &list); err != nil {
		logger.Warn("Notification inbox unreadable, starting empty", "error", err)
		return []models.Notification{}, nil
	}
	if list == nil {
		list = []models.Notification{}
	}
	return list, nil
}

func (i *Inbox) UnreadCount() (int, error) {
	list, err := i.List()
	if err != nil {
		return 0, err
	}
	count := 0
	for _, n := range list {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

func (i *Inbox) MarkRead(id string) error {
	list, err := i.List()
	if err != nil {
		return err
	}
	for idx := range list {
		if list[idx].ID == id {
			if list[idx].Read {
				return nil
			}
			list[idx].Read = true
			return i.save(list)
		}
	}
	return apperrors.NotFoundf("notification %q", id)
}

func (i *Inbox) MarkAllRead() error {
	list, err := i.List()
	if err != nil {
		return err
	}
	for idx := range list {
		list[idx].Read = true
	}
	return i.save(list)
}

func (i *Inbox) Clear() error {
	if err := i.kv.Delete(constants.NotificationsKey); err != nil {
		return &apperrors.PersistenceError{Op: "save", Key: constants.NotificationsKey, Err: err}
	}
	return nil
}

func (i *Inbox) save(list []models.Notification) error {
	data, err := json.Marshal(list)
	if err != nil {
		return &apperrors.PersistenceError{Op: "save", Key: constants.NotificationsKey, Err: err}
	}
	if err := i.kv.Put(constants.NotificationsKey, data); err != nil {
		return &apperrors.PersistenceError{Op: "save", Key: constants.NotificationsKey, Err: err}
	}
	return nil
}
