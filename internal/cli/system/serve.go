package system

import (
	"github.com/julianstephens/pocket/internal/cli"
	"github.com/julianstephens/pocket/internal/constants"
	"github.com/julianstephens/pocket/internal/instance"
	"github.com/julianstephens/pocket/internal/logger"
	"github.com/julianstephens/pocket/internal/server"
)

type ServeCmd struct {
	Addr string `help:"Listen address." default:"${listen_addr}" env:"POCKET_LISTEN_ADDR"`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	lock, err := instance.Acquire(ctx.ConfigDir, "serve")
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("Failed to release instance lock", "error", err)
		}
	}()

	addr := c.Addr
	if addr == "" {
		addr = constants.DefaultListenAddr
	}
	srv := server.New(server.Config{
		Addr:        addr,
		RatioDays:   ctx.Settings.RatioWindowDays,
		HeatmapDays: ctx.Settings.HeatmapWindowDays,
		Now:         ctx.Today,
	}, ctx.Tracker, ctx.Feed, ctx.Coach)

	ctx.Printf("Serving pocket API on http://%s (Ctrl+C to stop)\n", addr)
	return srv.Start(ctx.Ctx())
}
