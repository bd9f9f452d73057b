package notifier

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/finlit/internal/models"
	"github.com/julianstephens/finlit/internal/utils"
)

// LogSink prints reminders as structured log lines. It is the default sink
// for foreground runs.
type LogSink struct {
	logger *log.Logger
}

func NewLogSink(w io.Writer) *LogSink {
	if w == nil {
		w = os.Stdout
	}
	return &LogSink{logger: log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "reminder",
	})}
}

func (s *LogSink) Notify(_ context.Context, r models.Reminder) error {
	kv := []interface{}{
		"reminder_id", r.ID,
		"channel", r.Channel,
		"due_at", utils.FormatTimestamp(r.DueAt),
	}
	if r.AmountCents != nil {
		kv = append(kv, "amount_cents", *r.AmountCents)
	}
	s.logger.Info(r.Title, kv...)
	return nil
}
