package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateToday:
		content = m.habits.View()
	case StateBadges:
		content = m.viewBadges()
	case StateInbox:
		content = m.viewInbox()
	case StateAddHabit:
		content = m.form.View()
	case StateConfirmRemove:
		content = m.viewConfirmRemove()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		m.viewTabs(),
		docStyle.Render(content),
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewHeader() string {
	s := m.engine.Stats(m.today)
	title := headerStyle.Render(fmt.Sprintf("HabitQuest · %s", m.engine.Profile().Username))
	level := fmt.Sprintf("Level %d  %s  %d/%d XP", s.Level, m.progress.ViewAs(float64(s.ProgressPercent)/100), s.Experience, s.NextLevelAt)
	summary := mutedStyle.Render(fmt.Sprintf("%d/%d done today · best streak %d · badges %d/%d",
		s.CompletedOnDay, s.TotalHabits, s.BestStreak, s.BadgesUnlocked, s.BadgesTotal))
	return lipgloss.JoinVertical(lipgloss.Left, title, level, summary)
}

func (m Model) viewTabs() string {
	active := m.state
	if active > StateInbox {
		active = StateToday
	}
	var tabs []string
	for i, title := range tabTitles {
		if active == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewBadges() string {
	var b strings.Builder
	for _, badge := range m.engine.Profile().Badges {
		style := mutedStyle
		state := "locked"
		if badge.Unlocked {
			style = lipgloss.NewStyle().Foreground(lipgloss.Color(badge.Color)).Bold(true)
			state = "unlocked"
		}
		fmt.Fprintf(&b, "%s %s  %s\n   %s\n", badge.Icon, style.Render(badge.Name), mutedStyle.Render(state), badge.Description)
	}
	return b.String()
}

func (m Model) viewInbox() string {
	if m.inbox == nil {
		return "Inbox unavailable."
	}
	list, err := m.inbox.List()
	if err != nil {
		return dangerStyle.Render(fmt.Sprintf("Failed to load inbox: %v", err))
	}
	if len(list) == 0 {
		return "No notifications."
	}

	var b strings.Builder
	limit := len(list)
	if m.height > 0 && limit > m.height-headerHeight-4 {
		limit = max(m.height-headerHeight-4, 1)
	}
	for _, n := range list[:limit] {
		marker := "•"
		if n.Read {
			marker = " "
		}
		fmt.Fprintf(&b, "%s %s  %s\n", marker, mutedStyle.Render(n.Timestamp.Format("Jan 2 15:04")), n.Message)
	}
	return b.String()
}

func (m Model) viewConfirmRemove() string {
	return fmt.Sprintf("%s\n\nRemove habit %q and its history? (y/n)",
		dangerStyle.Render("Remove habit"), m.habitToRemove.Name)
}

func (m Model) viewStatus() string {
	if m.errMsg != "" {
		return dangerStyle.Render(m.errMsg)
	}
	if m.status != "" {
		return statusStyle.Render(m.status)
	}
	return ""
}
