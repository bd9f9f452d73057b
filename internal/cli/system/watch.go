package system

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/finlit/internal/cli"
	"github.com/julianstephens/finlit/internal/config"
	"github.com/julianstephens/finlit/internal/notifier"
	"github.com/julianstephens/finlit/internal/scheduler"
	"github.com/julianstephens/finlit/internal/tui"
)

// WatchCmd opens the interactive reminder view with the poller running
// behind it.
type WatchCmd struct{}

func (c *WatchCmd) Run(ctx *cli.Context) error {
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := tea.NewProgram(tui.NewModel(ctx.Reminders, ctx.Planning), tea.WithAltScreen())
	sink := tui.NewProgramSink(p)

	shutdown, err := ctx.StartPoller(runCtx, watchNotifyConfig(ctx.Config.Notify),
		map[string]notifier.Sink{config.SinkTUI: sink},
		func(r scheduler.TickReport) { p.Send(tui.TickMsg(r)) },
	)
	if err != nil {
		return err
	}

	_, runErr := p.Run()
	sink.Close()
	cancel()
	if err := shutdown(); err != nil && runErr == nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("watch view failed: %w", runErr)
	}
	return nil
}

// watchNotifyConfig swaps the log sink for the view itself. Log lines on
// stdout would tear the alternate screen.
func watchNotifyConfig(cfg config.NotifyConfig) config.NotifyConfig {
	swap := func(names []string) []string {
		out := make([]string, 0, len(names)+1)
		seen := map[string]bool{}
		for _, n := range names {
			if n == config.SinkLog {
				n = config.SinkTUI
			}
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
		if !seen[config.SinkTUI] {
			out = append(out, config.SinkTUI)
		}
		return out
	}

	next := cfg
	next.Default = swap(cfg.Default)
	next.Channels = make(map[string][]string, len(cfg.Channels))
	for ch, names := range cfg.Channels {
		next.Channels[ch] = swap(names)
	}
	return next
}
