// Package habits holds the habit subcommands.
package habits

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitquest/internal/cli"
	"github.com/julianstephens/habitquest/internal/engine"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/utils"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	List   HabitListCmd   `cmd:"" help:"List habits and whether they are done for a day."`
	Edit   HabitEditCmd   `cmd:"" help:"Edit a habit's details."`
	Remove HabitRemoveCmd `cmd:"" help:"Remove a habit and its history."`
	Toggle HabitToggleCmd `cmd:"" help:"Mark or unmark a habit as done for a day."`
	Check  HabitCheckCmd  `cmd:"" help:"Show whether a habit is done for a day."`
	Log    HabitLogCmd    `cmd:"" help:"Show recent completion history."`
}

type HabitAddCmd struct {
	Name        string `arg:"" help:"Habit name."`
	Description string `help:"Optional description."`
	Icon        string `help:"Optional icon, usually an emoji."`
	Frequency   string `help:"How often the habit is meant to happen." enum:"daily,weekly" default:"daily"`
	Color       string `help:"Display color, e.g. #9b87f5."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	ctx.Start()
	h, err := ctx.Engine.CreateHabit(engine.HabitInput{
		Name:        c.Name,
		Description: c.Description,
		Icon:        c.Icon,
		Frequency:   models.Frequency(c.Frequency),
		Color:       c.Color,
	})
	if err != nil {
		return err
	}
	ctx.Printf("Added habit: %s (%s)\n", h.Name, h.ID)
	return nil
}

type HabitListCmd struct {
	Date string `help:"Date in YYYY-MM-DD format (default: today)."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ResolveDay(c.Date)
	if err != nil {
		return err
	}
	ctx.Start()

	list := ctx.Engine.Habits()
	if len(list) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	done := 0
	for _, h := range list {
		mark := "○"
		if h.HasCompleted(day) {
			mark = cli.SuccessStyle.Render("✓")
			done++
		}
		name := h.Name
		if h.Icon != "" {
			name = h.Icon + " " + name
		}
		ctx.Printf("%s %s %s  %s\n", mark, cli.Swatch(h.Color), name,
			cli.MutedStyle.Render(fmt.Sprintf("%s · streak %d · %s", h.Frequency, h.Streak, h.ID)))
	}
	ctx.Printf("\n%d/%d done on %s\n", done, len(list), day)
	return nil
}

type HabitEditCmd struct {
	Habit       string `arg:"" help:"Habit id or name."`
	Name        string `help:"New name."`
	Description string `help:"New description."`
	Icon        string `help:"New icon."`
	Frequency   string `help:"New frequency (daily or weekly)."`
	Color       string `help:"New display color."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	ctx.Start()
	h, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}

	changed := false
	set := func(dst *string, v string) {
		if v != "" && *dst != v {
			*dst = v
			changed = true
		}
	}
	set(&h.Name, c.Name)
	set(&h.Description, c.Description)
	set(&h.Icon, c.Icon)
	set(&h.Color, c.Color)
	if c.Frequency != "" && h.Frequency != models.Frequency(c.Frequency) {
		h.Frequency = models.Frequency(c.Frequency)
		changed = true
	}
	if !changed {
		ctx.Println("Nothing to change.")
		return nil
	}

	if err := ctx.Engine.UpdateHabit(h); err != nil {
		return err
	}
	ctx.Printf("Updated habit: %s\n", h.Name)
	return nil
}

type HabitRemoveCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	Yes   bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *HabitRemoveCmd) Run(ctx *cli.Context) error {
	ctx.Start()
	h, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}

	if !c.Yes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Remove %q and all of its history?", h.Name)).
			Affirmative("Remove").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			ctx.Println("Cancelled.")
			return nil
		}
	}

	if err := ctx.Engine.RemoveHabit(h.ID); err != nil {
		return err
	}
	ctx.Printf("Removed habit: %s\n", h.Name)
	return nil
}

type HabitToggleCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	Date  string `help:"Date in YYYY-MM-DD format (default: today)."`
}

func (c *HabitToggleCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ResolveDay(c.Date)
	if err != nil {
		return err
	}
	ctx.Start()
	h, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}

	before := ctx.Engine.Profile()
	completed, err := ctx.Engine.ToggleCompletion(h.ID, day)
	if err != nil {
		return err
	}

	if !completed {
		ctx.Printf("Unmarked habit %q for %s\n", h.Name, day)
		return nil
	}
	updated, _ := ctx.Engine.Habit(h.ID)
	ctx.Printf("%s Marked habit %q for %s (streak %d)\n", cli.SuccessStyle.Render("✓"), h.Name, day, updated.Streak)

	after := ctx.Engine.Profile()
	if after.Level > before.Level {
		ctx.Printf("🎉 Level up! You're now level %d\n", after.Level)
	}
	for _, b := range after.Badges {
		if old, ok := before.Badge(b.ID); ok && b.Unlocked && !old.Unlocked {
			ctx.Printf("%s Badge unlocked: %s\n", b.Icon, b.Name)
		}
	}
	return nil
}

type HabitCheckCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	Date  string `help:"Date in YYYY-MM-DD format (default: today)."`
}

func (c *HabitCheckCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ResolveDay(c.Date)
	if err != nil {
		return err
	}
	ctx.Start()
	h, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}

	if ctx.Engine.IsCompleted(h.ID, day) {
		ctx.Printf("%s %s is done for %s\n", cli.SuccessStyle.Render("✓"), h.Name, day)
	} else {
		ctx.Printf("○ %s is not done for %s\n", h.Name, day)
	}
	return nil
}

type HabitLogCmd struct {
	Habit string `arg:"" optional:"" help:"Habit id or name (default: all habits)."`
	Days  int    `help:"Number of days to show." default:"14"`
}

func (c *HabitLogCmd) Run(ctx *cli.Context) error {
	if c.Days < 1 {
		return fmt.Errorf("days must be at least 1, got %d", c.Days)
	}
	today, err := ctx.Today()
	if err != nil {
		return err
	}
	ctx.Start()

	list := ctx.Engine.Habits()
	if c.Habit != "" {
		h, err := ctx.ResolveHabit(c.Habit)
		if err != nil {
			return err
		}
		list = []models.Habit{h}
	}
	if len(list) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	days := make([]string, 0, c.Days)
	for i := c.Days - 1; i >= 0; i-- {
		d, err := utils.AddDays(today, -i)
		if err != nil {
			return err
		}
		days = append(days, d)
	}

	width := 0
	for _, h := range list {
		width = max(width, len(h.Name))
	}
	ctx.Printf("%-*s  %s → %s\n", width, "", days[0], today)
	for _, h := range list {
		var row strings.Builder
		for _, d := range days {
			if h.HasCompleted(d) {
				row.WriteString("█")
			} else {
				row.WriteString("·")
			}
		}
		ctx.Printf("%-*s  %s  %d\n", width, h.Name, row.String(), h.Streak)
	}
	return nil
}
