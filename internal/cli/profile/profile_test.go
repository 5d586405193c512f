package profile

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/julianstephens/habitquest/internal/cli"
	"github.com/julianstephens/habitquest/internal/config"
	"github.com/julianstephens/habitquest/internal/constants"
	apperrors "github.com/julianstephens/habitquest/internal/errors"
	"github.com/julianstephens/habitquest/internal/storage"
)

func newContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	return &cli.Context{
		Config: config.Config{Storage: constants.StorageJSON, Username: "tester", Timezone: "UTC"},
		Store:  storage.NewMemoryStore(),
		Out:    out,
	}, out
}

func TestAwardCmdLevelsUp(t *testing.T) {
	ctx, out := newContext(t)

	if err := (&AwardCmd{Amount: 350}).Run(ctx); err != nil {
		t.Fatalf("AwardCmd.Run() error = %v", err)
	}
	p := ctx.Engine.Profile()
	if p.Level != 3 || p.Experience != 50 {
		t.Errorf("profile = level %d xp %d, want level 3 xp 50", p.Level, p.Experience)
	}
	if !strings.Contains(out.String(), "Level up! You're now level 3") {
		t.Errorf("unexpected output: %s", out)
	}

	if err := (&AwardCmd{Amount: 0}).Run(ctx); err == nil {
		t.Error("expected error for non-positive amount")
	}
}

func TestBadgeUnlockCmd(t *testing.T) {
	ctx, out := newContext(t)

	if err := (&BadgeUnlockCmd{ID: constants.BadgeStreak7}).Run(ctx); err != nil {
		t.Fatalf("BadgeUnlockCmd.Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "Badge unlocked: 7-Day Streak") {
		t.Errorf("unexpected output: %s", out)
	}
	if xp := ctx.Engine.Profile().Experience; xp != constants.BadgeXP {
		t.Errorf("experience = %d, want %d", xp, constants.BadgeXP)
	}

	out.Reset()
	if err := (&BadgeUnlockCmd{ID: constants.BadgeStreak7}).Run(ctx); err != nil {
		t.Fatalf("second unlock error = %v", err)
	}
	if !strings.Contains(out.String(), "already unlocked") {
		t.Errorf("unexpected output: %s", out)
	}

	err := (&BadgeUnlockCmd{ID: "no-such-badge"}).Run(ctx)
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("unknown badge error = %v, want ErrNotFound", err)
	}
}

func TestBadgeListAndProfile(t *testing.T) {
	ctx, out := newContext(t)

	if err := (&BadgeListCmd{}).Run(ctx); err != nil {
		t.Fatalf("BadgeListCmd.Run() error = %v", err)
	}
	for _, name := range []string{"First Habit", "3-Day Streak", "7-Day Streak"} {
		if !strings.Contains(out.String(), name) {
			t.Errorf("badge list missing %q:\n%s", name, out)
		}
	}

	out.Reset()
	if err := (&ProfileCmd{}).Run(ctx); err != nil {
		t.Fatalf("ProfileCmd.Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "0/100 XP (100 to next level)") {
		t.Errorf("unexpected profile output:\n%s", out)
	}
}

func TestStatsCmd(t *testing.T) {
	ctx, out := newContext(t)

	if err := (&StatsCmd{Date: "2024-05-01"}).Run(ctx); err != nil {
		t.Fatalf("StatsCmd.Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "Habits done      0/0") {
		t.Errorf("unexpected stats output:\n%s", out)
	}
	if err := (&StatsCmd{Date: "May 1"}).Run(ctx); err == nil {
		t.Error("expected error for malformed date")
	}
}
