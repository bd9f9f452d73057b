package system

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/finlit/internal/config"
	"github.com/julianstephens/finlit/internal/models"
	"github.com/julianstephens/finlit/internal/recurrence"
)

func TestRunCmd_Once(t *testing.T) {
	ctx, out, _ := newTestContext(t)
	if err := ctx.Store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	now := time.Date(2026, 4, 10, 8, 0, 0, 0, time.UTC)
	ctx.Reminders.Now = func() time.Time { return now }
	r, err := ctx.Reminders.Create(context.Background(), models.ReminderInput{
		Title:      "Budget check",
		DueAt:      now.Add(time.Minute),
		Recurrence: recurrence.Weekly,
	})
	if err != nil {
		t.Fatalf("failed to create reminder: %v", err)
	}
	now = now.Add(time.Hour)

	if err := (&RunCmd{Once: true}).Run(ctx); err != nil {
		t.Fatalf("run --once failed: %v", err)
	}
	if !strings.Contains(out.String(), "1 due, 1 sent") {
		t.Errorf("unexpected output: %q", out.String())
	}
	if !strings.Contains(out.String(), "Budget check") {
		t.Errorf("log sink did not print the reminder: %q", out.String())
	}

	got, err := ctx.Reminders.Get(context.Background(), r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.ReminderScheduled || got.LastTriggeredAt == nil {
		t.Errorf("reminder not re-armed: %+v", got)
	}
}

func TestWatchNotifyConfig(t *testing.T) {
	cfg := config.NotifyConfig{
		Default: []string{config.SinkLog, config.SinkTray},
		Channels: map[string][]string{
			"email":  {config.SinkAMQP},
			"in_app": {config.SinkTUI, config.SinkLog},
		},
	}

	got := watchNotifyConfig(cfg)
	if want := []string{config.SinkTUI, config.SinkTray}; !reflect.DeepEqual(got.Default, want) {
		t.Errorf("Default = %v, want %v", got.Default, want)
	}
	if want := []string{config.SinkAMQP, config.SinkTUI}; !reflect.DeepEqual(got.Channels["email"], want) {
		t.Errorf("email = %v, want %v", got.Channels["email"], want)
	}
	if want := []string{config.SinkTUI}; !reflect.DeepEqual(got.Channels["in_app"], want) {
		t.Errorf("in_app = %v, want %v", got.Channels["in_app"], want)
	}
	if !reflect.DeepEqual(cfg.Default, []string{config.SinkLog, config.SinkTray}) {
		t.Error("input config was modified")
	}
}
