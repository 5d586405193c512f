package cli

import "github.com/charmbracelet/lipgloss"

var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#9b87f5"))
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	WarnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f97316"))
	MutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
)

// Swatch renders a small block in a habit or badge color.
func Swatch(color string) string {
	if color == "" {
		return " "
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("■")
}

// ProgressBar renders a fixed width bar for percent in [0, 100].
func ProgressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return TitleStyle.Render(bar)
}
