package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitquest/internal/cli"
	"github.com/julianstephens/habitquest/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	today, err := ctx.Today()
	if err != nil {
		return err
	}
	clock := func() string {
		if day, err := ctx.Today(); err == nil {
			today = day
		}
		return today
	}

	ctx.PerformAutomaticBackup()
	ctx.Start()

	p := tea.NewProgram(tui.NewModel(ctx.Engine, ctx.Inbox, clock), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui exited with error: %w", err)
	}
	return nil
}
