package reminders

import (
	"context"
	"fmt"

	"github.com/julianstephens/finlit/internal/cli"
	"github.com/julianstephens/finlit/internal/models"
)

type ReminderSnoozeCmd struct {
	ID      string `arg:"" help:"Reminder ID."`
	Minutes int    `short:"m" help:"Minutes to snooze. Defaults to the reminder's own snooze length."`
}

func (c *ReminderSnoozeCmd) Run(ctx *cli.Context) error {
	r, err := ctx.Reminders.Snooze(context.Background(), c.ID, c.Minutes)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "✓ Snoozed %s until %s\n", r.Title, cli.FormatOptionalTime(r.NextFireAt))
	return nil
}

type ReminderDismissCmd struct {
	ID string `arg:"" help:"Reminder ID."`
}

func (c *ReminderDismissCmd) Run(ctx *cli.Context) error {
	r, err := ctx.Reminders.Dismiss(context.Background(), c.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "✓ Dismissed %s\n", r.Title)
	return nil
}

type ReminderDueCmd struct{}

func (c *ReminderDueCmd) Run(ctx *cli.Context) error {
	due, err := ctx.Reminders.Due(context.Background())
	if err != nil {
		return err
	}
	if len(due) == 0 {
		fmt.Fprintln(ctx.Out, "Nothing is due.")
		return nil
	}
	printReminders(ctx, due)
	return nil
}

// ReminderSentCmd is the manual counterpart of a poller delivery.
type ReminderSentCmd struct {
	ID string `arg:"" help:"Reminder ID."`
}

func (c *ReminderSentCmd) Run(ctx *cli.Context) error {
	r, err := ctx.Reminders.MarkSent(context.Background(), c.ID)
	if err != nil {
		return err
	}
	if r.NextFireAt != nil {
		fmt.Fprintf(ctx.Out, "✓ Marked %s as sent, next at %s\n", r.Title, cli.FormatTime(*r.NextFireAt))
		return nil
	}
	fmt.Fprintf(ctx.Out, "✓ Marked %s as sent\n", r.Title)
	return nil
}

type ReminderLogCmd struct {
	ID string `arg:"" help:"Reminder ID. Deleted reminders keep their log."`
}

func (c *ReminderLogCmd) Run(ctx *cli.Context) error {
	logs, err := ctx.Reminders.Logs(context.Background(), c.ID)
	if err != nil {
		return err
	}
	printLogs(ctx, logs)
	return nil
}

func printLogs(ctx *cli.Context, logs []models.ReminderLog) {
	if len(logs) == 0 {
		fmt.Fprintln(ctx.Out, "No history.")
		return
	}
	rows := make([][]string, len(logs))
	for i, l := range logs {
		rows[i] = []string{cli.FormatTime(l.CreatedAt), string(l.Action), cli.Optional(l.Metadata)}
	}
	fmt.Fprintln(ctx.Out, cli.RenderTable([]string{"When", "Action", "Details"}, rows, 0))
}
