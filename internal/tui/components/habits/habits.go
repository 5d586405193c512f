// Package habits is the list of habits shown on the Today tab.
package habits

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitquest/internal/models"
)

type AddHabitMsg struct{}

type ToggleHabitMsg struct {
	ID string
}

type RemoveHabitMsg struct {
	ID string
}

type Item struct {
	Habit     models.Habit
	Completed bool
}

func (i Item) Title() string {
	mark := "○"
	if i.Completed {
		mark = "✓"
	}
	if i.Habit.Icon != "" {
		return fmt.Sprintf("%s %s %s", mark, i.Habit.Icon, i.Habit.Name)
	}
	return mark + " " + i.Habit.Name
}

func (i Item) Description() string {
	status := "not completed today"
	if i.Completed {
		status = "completed today"
	}
	return fmt.Sprintf("%s · 🔥 %d · %s", i.Habit.Frequency, i.Habit.Streak, status)
}

func (i Item) FilterValue() string { return i.Habit.Name }

type KeyMap struct {
	Add    key.Binding
	Toggle key.Binding
	Remove key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "toggle done"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "remove"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(habits []models.Habit, day string, width, height int) Model {
	l := list.New(items(habits, day), list.NewDefaultDelegate(), width, height)
	l.Title = "Today"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Toggle, keys.Remove}
	}
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys

	return Model{list: l, keys: keys}
}

func items(habits []models.Habit, day string) []list.Item {
	out := make([]list.Item, len(habits))
	for i, h := range habits {
		out[i] = Item{Habit: h, Completed: h.HasCompleted(day)}
	}
	return out
}

// SetHabits replaces the list contents, keeping the cursor where it was.
func (m *Model) SetHabits(habits []models.Habit, day string) {
	idx := m.list.Index()
	m.list.SetItems(items(habits, day))
	if idx >= len(habits) {
		idx = len(habits) - 1
	}
	if idx >= 0 {
		m.list.Select(idx)
	}
}

func (m Model) Items() []Item {
	out := make([]Item, 0, len(m.list.Items()))
	for _, it := range m.list.Items() {
		if i, ok := it.(Item); ok {
			out = append(out, i)
		}
	}
	return out
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && !m.Filtering() {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddHabitMsg{} }
		case key.Matches(msg, m.keys.Toggle):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return ToggleHabitMsg{ID: i.Habit.ID} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Remove):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return RemoveHabitMsg{ID: i.Habit.ID} }
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && !m.Filtering() {
		return "\n  No habits yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
