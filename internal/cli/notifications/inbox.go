// Package notifications holds the inbox subcommands.
package notifications

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitquest/internal/cli"
)

type InboxCmd struct {
	List  InboxListCmd  `cmd:"" default:"1" help:"Show notifications, newest first."`
	Read  InboxReadCmd  `cmd:"" help:"Mark one notification, or all of them, as read."`
	Clear InboxClearCmd `cmd:"" help:"Delete all notifications."`
}

type InboxListCmd struct {
	Unread bool `help:"Only show unread notifications."`
	Limit  int  `help:"Maximum number of notifications to show." default:"20"`
}

func (c *InboxListCmd) Run(ctx *cli.Context) error {
	ctx.Start()
	list, err := ctx.Inbox.List()
	if err != nil {
		return err
	}

	shown := 0
	for _, n := range list {
		if c.Unread && n.Read {
			continue
		}
		if c.Limit > 0 && shown >= c.Limit {
			break
		}
		marker := cli.TitleStyle.Render("•")
		if n.Read {
			marker = " "
		}
		ctx.Printf("%s %s  %s  %s\n", marker, n.Timestamp.Local().Format("2006-01-02 15:04"), n.Message, cli.MutedStyle.Render(n.ID))
		shown++
	}
	if shown == 0 {
		ctx.Println("No notifications.")
		return nil
	}

	unread, err := ctx.Inbox.UnreadCount()
	if err != nil {
		return err
	}
	ctx.Printf("\n%d unread of %d\n", unread, len(list))
	return nil
}

type InboxReadCmd struct {
	ID string `arg:"" optional:"" help:"Notification id (default: all)."`
}

func (c *InboxReadCmd) Run(ctx *cli.Context) error {
	ctx.Start()
	if c.ID == "" {
		if err := ctx.Inbox.MarkAllRead(); err != nil {
			return err
		}
		ctx.Println("✓ All notifications marked as read")
		return nil
	}
	if err := ctx.Inbox.MarkRead(c.ID); err != nil {
		return err
	}
	ctx.Println("✓ Notification marked as read")
	return nil
}

type InboxClearCmd struct {
	Yes bool `short:"y" help:"Skip the confirmation prompt."`
}

func (c *InboxClearCmd) Run(ctx *cli.Context) error {
	ctx.Start()
	if !c.Yes {
		confirmed := false
		err := huh.NewConfirm().
			Title("Delete all notifications?").
			Value(&confirmed).
			Run()
		if err != nil {
			return fmt.Errorf("confirmation failed: %w", err)
		}
		if !confirmed {
			ctx.Println("Cancelled.")
			return nil
		}
	}
	if err := ctx.Inbox.Clear(); err != nil {
		return err
	}
	ctx.Println("✓ Inbox cleared")
	return nil
}
