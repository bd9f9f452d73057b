package system

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/finlit/internal/cli"
)

// RunCmd runs the reminder poller in the foreground until interrupted.
type RunCmd struct {
	Once bool `help:"Run a single poll and exit."`
}

func (c *RunCmd) Run(ctx *cli.Context) error {
	if c.Once {
		return c.runOnce(ctx)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := ctx.StartPoller(sigCtx, ctx.Config.Notify, nil, nil)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Polling every %s. Press Ctrl+C to stop.\n", ctx.Config.Scheduler.Interval)

	<-sigCtx.Done()
	return shutdown()
}

func (c *RunCmd) runOnce(ctx *cli.Context) error {
	bg := context.Background()
	poller, closeSinks, err := ctx.NewPoller(bg, ctx.Config.Notify, nil)
	if err != nil {
		return err
	}
	defer closeSinks()

	report, err := poller.Tick(bg)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "%d due, %d sent, %d dispatch failure(s), %d mark failure(s)\n",
		report.Due, report.Sent, report.DispatchFailed, report.MarkFailed)
	return nil
}
