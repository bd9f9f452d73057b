// Package scheduler runs the due-reminder poller.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/julianstephens/finlit/internal/constants"
	"github.com/julianstephens/finlit/internal/logger"
	"github.com/julianstephens/finlit/internal/models"
	"github.com/julianstephens/finlit/internal/notifier"
)

// Reminders is the part of the reminder service the poller drives.
type Reminders interface {
	Due(ctx context.Context) ([]models.Reminder, error)
	MarkSent(ctx context.Context, id string) (models.Reminder, error)
}

// TickReport summarizes one pass over the due reminders.
type TickReport struct {
	At             time.Time `json:"at"`
	Due            int       `json:"due"`
	Sent           int       `json:"sent"`
	DispatchFailed int       `json:"dispatch_failed"`
	MarkFailed     int       `json:"mark_failed"`
}

// Poller fires due reminders on a fixed interval. A reminder whose dispatch
// fails stays armed and is retried on the next tick.
type Poller struct {
	Reminders Reminders
	Sink      notifier.Sink
	Interval  time.Duration
	Now       func() time.Time

	// OnTick, when set, receives every report including empty ones.
	OnTick func(TickReport)

	mu     sync.Mutex
	wg     sync.WaitGroup
	cron   *cron.Cron
	cancel context.CancelFunc
}

func New(reminders Reminders, sink notifier.Sink, interval time.Duration) *Poller {
	return &Poller{Reminders: reminders, Sink: sink, Interval: interval}
}

func (p *Poller) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now().UTC()
}

// Tick runs a single pass. An error is returned only when the due query
// itself fails; per-reminder failures are counted in the report.
func (p *Poller) Tick(ctx context.Context) (TickReport, error) {
	report := TickReport{At: p.now()}

	due, err := p.Reminders.Due(ctx)
	if err != nil {
		return report, err
	}
	report.Due = len(due)

	for _, r := range due {
		if ctx.Err() != nil {
			break
		}
		if err := p.Sink.Notify(ctx, r); err != nil {
			report.DispatchFailed++
			logger.Warn("Reminder dispatch failed", "reminder_id", r.ID, "error", err)
			continue
		}
		if _, err := p.Reminders.MarkSent(ctx, r.ID); err != nil {
			report.MarkFailed++
			logger.Error("Failed to mark reminder sent", "reminder_id", r.ID, "error", err)
			continue
		}
		report.Sent++
	}
	return report, nil
}

func (p *Poller) run(ctx context.Context) {
	report, err := p.Tick(ctx)
	if err != nil {
		logger.Error("Poller tick failed", "error", err)
		return
	}
	if report.Due > 0 {
		logger.Info("Poller tick", "due", report.Due, "sent", report.Sent,
			"dispatch_failed", report.DispatchFailed, "mark_failed", report.MarkFailed)
	}
	if p.OnTick != nil {
		p.OnTick(report)
	}
}

type printfLogger func(format string, args ...interface{})

func (f printfLogger) Printf(format string, args ...interface{}) { f(format, args...) }

// Start runs one tick immediately and then one per interval until ctx is
// done or Stop is called. Ticks never overlap.
func (p *Poller) Start(ctx context.Context) error {
	if p.Reminders == nil || p.Sink == nil {
		return errors.New("poller requires a reminder source and a sink")
	}
	interval := p.Interval
	if interval <= 0 {
		interval = constants.DefaultPollInterval
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cron != nil {
		return errors.New("poller already started")
	}

	base, cancel := context.WithCancel(ctx)
	cronLogger := cron.PrintfLogger(printfLogger(logger.Printf))
	job := cron.NewChain(
		cron.Recover(cronLogger),
		cron.SkipIfStillRunning(cronLogger),
	).Then(cron.FuncJob(func() { p.run(base) }))

	c := cron.New()
	c.Schedule(cron.Every(interval), job)
	c.Start()
	p.cron = c
	p.cancel = cancel

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		job.Run()
	}()
	go func() {
		<-base.Done()
		p.Stop()
	}()

	logger.Info("Reminder poller started", "interval", interval.String())
	return nil
}

// Stop cancels in-flight work and returns a context that is done once every
// running tick has returned.
func (p *Poller) Stop() context.Context {
	p.mu.Lock()
	defer p.mu.Unlock()

	done, release := context.WithCancel(context.Background())
	if p.cron == nil {
		release()
		return done
	}
	p.cancel()
	cronDone := p.cron.Stop()
	p.cron = nil
	go func() {
		<-cronDone.Done()
		p.wg.Wait()
		release()
	}()
	return done
}
