// Package profile holds the level, badge and stats subcommands.
package profile

import (
	"fmt"

	"github.com/julianstephens/habitquest/internal/cli"
)

type ProfileCmd struct{}

func (c *ProfileCmd) Run(ctx *cli.Context) error {
	today, err := ctx.Today()
	if err != nil {
		return err
	}
	ctx.Start()
	p := ctx.Engine.Profile()
	s := ctx.Engine.Stats(today)

	ctx.Println(cli.TitleStyle.Render(p.Username))
	ctx.Printf("Level %d  %s  %d/%d XP (%d to next level)\n",
		p.Level, cli.ProgressBar(s.ProgressPercent, 20), p.Experience, p.Threshold(), s.XPToNextLevel)
	ctx.Printf("Badges %d/%d · %d/%d habits done today\n", p.UnlockedCount(), len(p.Badges), s.CompletedOnDay, s.TotalHabits)
	return nil
}

type StatsCmd struct {
	Date string `help:"Date in YYYY-MM-DD format (default: today)."`
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ResolveDay(c.Date)
	if err != nil {
		return err
	}
	ctx.Start()
	s := ctx.Engine.Stats(day)

	ctx.Println(cli.TitleStyle.Render("Stats for " + day))
	ctx.Printf("  Habits done      %d/%d\n", s.CompletedOnDay, s.TotalHabits)
	ctx.Printf("  Best streak      %d\n", s.BestStreak)
	ctx.Printf("  Badges unlocked  %d/%d\n", s.BadgesUnlocked, s.BadgesTotal)
	ctx.Printf("  Level            %d (%d%%)\n", s.Level, s.ProgressPercent)
	return nil
}

type BadgeCmd struct {
	List   BadgeListCmd   `cmd:"" default:"1" help:"List the badge catalog."`
	Unlock BadgeUnlockCmd `cmd:"" help:"Unlock a badge by id."`
}

type BadgeListCmd struct{}

func (c *BadgeListCmd) Run(ctx *cli.Context) error {
	ctx.Start()
	for _, b := range ctx.Engine.Profile().Badges {
		state := cli.MutedStyle.Render("locked")
		if b.Unlocked {
			state = cli.SuccessStyle.Render("unlocked")
		}
		ctx.Printf("%s %s %-14s %s  %s\n", cli.Swatch(b.Color), b.Icon, b.Name, state, cli.MutedStyle.Render(b.ID))
		ctx.Printf("     %s\n", b.Description)
	}
	return nil
}

type BadgeUnlockCmd struct {
	ID string `arg:"" help:"Badge id."`
}

func (c *BadgeUnlockCmd) Run(ctx *cli.Context) error {
	ctx.Start()
	if b, ok := ctx.Engine.Profile().Badge(c.ID); ok && b.Unlocked {
		ctx.Printf("Badge %s is already unlocked.\n", b.Name)
		return nil
	}
	if err := ctx.Engine.UnlockBadge(c.ID); err != nil {
		return err
	}
	b, _ := ctx.Engine.Profile().Badge(c.ID)
	ctx.Printf("%s Badge unlocked: %s\n", b.Icon, b.Name)
	return nil
}

type AwardCmd struct {
	Amount int `arg:"" help:"Experience points to award."`
}

func (c *AwardCmd) Run(ctx *cli.Context) error {
	if c.Amount <= 0 {
		return fmt.Errorf("amount must be positive, got %d", c.Amount)
	}
	ctx.Start()
	before := ctx.Engine.Profile().Level
	if err := ctx.Engine.AwardExperience(c.Amount); err != nil {
		return err
	}
	p := ctx.Engine.Profile()
	ctx.Printf("+%d XP → level %d, %d/%d XP\n", c.Amount, p.Level, p.Experience, p.Threshold())
	if p.Level > before {
		ctx.Printf("🎉 Level up! You're now level %d\n", p.Level)
	}
	return nil
}
