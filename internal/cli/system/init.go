package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/habitquest/internal/cli"
)

type InitCmd struct {
	Force bool `help:"Delete an existing local data file before initializing."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force && ctx.Config.IsFileBackend() {
		path := ctx.Store.GetConfigPath()
		if _, err := os.Stat(path); err == nil {
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing store: %w", err)
			}
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("failed to delete existing store: %w", err)
			}
			ctx.Printf("Deleted existing store at: %s\n", path)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing store: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized habitquest storage at: %s\n", ctx.Store.GetConfigPath())
	return nil
}
