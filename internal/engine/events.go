package engine

import (
	"time"

	"github.com/julianstephens/habitquest/internal/logger"
)

// EventType names an observable engine side effect.
type EventType string

const (
	EventLevelUp           EventType = "level_up"
	EventBadgeUnlocked     EventType = "badge_unlocked"
	EventHabitCreated      EventType = "habit_created"
	EventHabitRemoved      EventType = "habit_removed"
	EventHabitUpdated      EventType = "habit_updated"
	EventCompletionToggled EventType = "completion_toggled"
)

// Event is a fire-and-forget notification. Only the fields relevant to Type
// are set.
type Event struct {
	Type      EventType
	HabitID   string
	Level     int    // EventLevelUp: the new level
	BadgeID   string // EventBadgeUnlocked
	BadgeName string // EventBadgeUnlocked
	Completed bool   // EventCompletionToggled
	At        time.Time
}

// Subscribe registers fn to receive every event emitted after this call.
// Events are delivered synchronously, in emission order, once the state
// change and its save have settled.
func (e *Engine) Subscribe(fn func(Event)) {
	if fn == nil {
		return
	}
	e.subscribers = append(e.subscribers, fn)
}

func (e *Engine) emit(ev Event) {
	ev.At = e.now()
	e.pending = append(e.pending, ev)
}

func (e *Engine) flush() {
	events := e.pending
	e.pending = nil
	for _, ev := range events {
		for _, fn := range e.subscribers {
			deliver(fn, ev)
		}
	}
}

// deliver isolates the engine from a misbehaving subscriber.
func deliver(fn func(Event), ev Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Event subscriber panicked", "event", ev.Type, "panic", r)
		}
	}()
	fn(ev)
}
