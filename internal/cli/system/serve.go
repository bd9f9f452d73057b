package system

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/finlit/internal/api"
	"github.com/julianstephens/finlit/internal/cli"
	"github.com/julianstephens/finlit/internal/logger"
)

// ServeCmd runs the local HTTP API, with the poller unless disabled.
type ServeCmd struct {
	Addr     string `help:"Listen address. Defaults to api.addr from config."`
	NoPoller bool   `help:"Serve the API without firing reminders."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	addr := c.Addr
	if addr == "" {
		addr = ctx.Config.API.Addr
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !c.NoPoller {
		shutdown, err := ctx.StartPoller(sigCtx, ctx.Config.Notify, nil, nil)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(); err != nil {
				logger.Warn("Failed to release notification sinks", "error", err)
			}
		}()
	}

	handler := api.NewRouter(api.NewHandler(ctx.Planning, ctx.Reminders, ctx.Store.Ping), ctx.Config.API.AllowedOrigins)
	return api.Serve(sigCtx, addr, handler)
}
