package cli

import (
	"context"
	"io"
	"os"

	"github.com/julianstephens/finlit/internal/config"
	"github.com/julianstephens/finlit/internal/ledger"
	"github.com/julianstephens/finlit/internal/notifier"
	"github.com/julianstephens/finlit/internal/planning"
	"github.com/julianstephens/finlit/internal/reminders"
	"github.com/julianstephens/finlit/internal/scheduler"
	"github.com/julianstephens/finlit/internal/storage"
	"github.com/julianstephens/finlit/internal/utils"
)

type Context struct {
	Config    config.Config
	Store     storage.Provider
	Planning  *planning.Service
	Reminders *reminders.Service
	Out       io.Writer
}

// NewContext wires the services on top of store. The store does not need
// to be loaded yet.
func NewContext(cfg config.Config, store storage.Provider) *Context {
	overflow, err := utils.ParseOverflowMode(cfg.Planning.DueDayOverflow)
	if err != nil {
		overflow = utils.OverflowFallback
	}
	rs := reminders.NewService(store, cfg.User.ID)
	ps := planning.NewService(store, rs, ledger.NewStoreLedger(store, cfg.Ledger.Currency), cfg.User.ID, planning.Options{
		Overflow:     overflow,
		ReminderHour: cfg.Planning.ReminderHour,
		MonthsAhead:  cfg.Planning.MonthsAhead,
	})
	return &Context{
		Config:    cfg,
		Store:     store,
		Planning:  ps,
		Reminders: rs,
		Out:       os.Stdout,
	}
}

// NewPoller builds the sinks named in notify and a poller over them.
// provided adds sinks owned by the caller. The returned function releases
// broker connections.
func (c *Context) NewPoller(ctx context.Context, notify config.NotifyConfig, provided map[string]notifier.Sink) (*scheduler.Poller, func() error, error) {
	router, closeSinks, err := notifier.Build(ctx, notify, c.Out, provided)
	if err != nil {
		return nil, nil, err
	}
	return scheduler.New(c.Reminders, router, c.Config.Scheduler.Interval), closeSinks, nil
}

// StartPoller starts a poller from NewPoller. The returned function stops
// it and releases the sinks.
func (c *Context) StartPoller(ctx context.Context, notify config.NotifyConfig, provided map[string]notifier.Sink, onTick func(scheduler.TickReport)) (func() error, error) {
	poller, closeSinks, err := c.NewPoller(ctx, notify, provided)
	if err != nil {
		return nil, err
	}
	poller.OnTick = onTick
	if err := poller.Start(ctx); err != nil {
		closeSinks()
		return nil, err
	}
	return func() error {
		<-poller.Stop().Done()
		return closeSinks()
	}, nil
}
