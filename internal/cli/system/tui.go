package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/pocket/internal/cli"
	"github.com/julianstephens/pocket/internal/instance"
	"github.com/julianstephens/pocket/internal/logger"
	"github.com/julianstephens/pocket/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	lock, err := instance.Acquire(ctx.ConfigDir, "tui")
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("Failed to release instance lock", "error", err)
		}
	}()

	ctx.PerformAutomaticBackup()

	opts := tui.Options{
		Tracker:     ctx.Tracker,
		Coach:       ctx.Coach,
		Now:         ctx.Today,
		RatioDays:   ctx.Settings.RatioWindowDays,
		HeatmapDays: ctx.Settings.HeatmapWindowDays,
	}
	if err := tui.Run(ctx.Ctx(), ctx.Feed, ctx.Settings.UserID, opts, tea.WithAltScreen()); err != nil {
		return fmt.Errorf("tui exited with error: %w", err)
	}
	return nil
}
