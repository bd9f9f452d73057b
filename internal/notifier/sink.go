// Package notifier delivers due reminders. Every delivery target is a Sink;
// a Router picks sinks per reminder channel.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/julianstephens/finlit/internal/constants"
	"github.com/julianstephens/finlit/internal/models"
	"github.com/julianstephens/finlit/internal/money"
	"github.com/julianstephens/finlit/internal/utils"
)

// Sink is a one-way notification target.
type Sink interface {
	Notify(ctx context.Context, r models.Reminder) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, r models.Reminder) error

func (f SinkFunc) Notify(ctx context.Context, r models.Reminder) error {
	return f(ctx, r)
}

// Event is the wire payload published for a due reminder.
type Event struct {
	Event    string          `json:"event"`
	Reminder models.Reminder `json:"reminder"`
}

func NewEvent(r models.Reminder) Event {
	return Event{Event: constants.NotificationEvent, Reminder: r}
}

func (e Event) Marshal() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode notification: %w", err)
	}
	return data, nil
}

// Message renders a one-line human summary, e.g.
// "Debt payment: Card (110.00) due 2026-04-15 09:00".
func Message(r models.Reminder) string {
	var b strings.Builder
	b.WriteString(r.Title)
	if r.AmountCents != nil {
		fmt.Fprintf(&b, " (%s)", money.FormatMinor(*r.AmountCents))
	}
	fmt.Fprintf(&b, " due %s %s", utils.FormatDate(r.DueAt), r.DueAt.UTC().Format(constants.TimeFormat))
	return b.String()
}
