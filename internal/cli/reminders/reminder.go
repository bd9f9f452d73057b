package reminders

import (
	"context"
	"fmt"
	"strconv"

	"github.com/julianstephens/finlit/internal/cli"
	"github.com/julianstephens/finlit/internal/models"
	"github.com/julianstephens/finlit/internal/money"
	"github.com/julianstephens/finlit/internal/recurrence"
)

type ReminderCmd struct {
	Add     ReminderAddCmd     `cmd:"" help:"Add a reminder."`
	List    ReminderListCmd    `cmd:"" help:"List reminders." default:"1"`
	Show    ReminderShowCmd    `cmd:"" help:"Show a reminder and its history."`
	Update  ReminderUpdateCmd  `cmd:"" help:"Update a reminder."`
	Delete  ReminderDeleteCmd  `cmd:"" help:"Delete a reminder."`
	Snooze  ReminderSnoozeCmd  `cmd:"" help:"Push a reminder back."`
	Dismiss ReminderDismissCmd `cmd:"" help:"Stop a reminder from firing."`
	Due     ReminderDueCmd     `cmd:"" help:"List reminders that are due now."`
	Sent    ReminderSentCmd    `cmd:"" help:"Record a reminder as delivered."`
	Log     ReminderLogCmd     `cmd:"" help:"Show a reminder's audit log."`
}

// amountCents parses a major-unit amount into minor units.
func amountCents(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	d, err := money.Parse(s)
	if err != nil {
		return nil, err
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("amount cannot be negative")
	}
	c := money.ToMinorUnits(d)
	return &c, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type ReminderAddCmd struct {
	Title       string `arg:"" help:"Reminder title."`
	At          string `short:"t" required:"" help:"When it is due: RFC 3339, 'YYYY-MM-DD HH:MM' or 'YYYY-MM-DD' (UTC)."`
	Repeat      string `short:"r" help:"Recurrence (daily, weekly, monthly). Omit for a one-off."`
	Amount      string `short:"a" help:"Amount to pay, e.g. 45.00."`
	Account     string `help:"Account the payment comes from."`
	Channel     string `short:"c" enum:"toast,in_app,email" default:"toast" help:"Delivery channel (${enum})."`
	Description string `short:"d" help:"Longer description."`
	Snooze      int    `help:"Default snooze length in minutes."`
}

func (c *ReminderAddCmd) Validate() error {
	if _, err := cli.ParseWhen(c.At); err != nil {
		return err
	}
	if _, err := recurrence.Parse(c.Repeat); err != nil {
		return err
	}
	if c.Snooze < 0 {
		return fmt.Errorf("snooze minutes cannot be negative")
	}
	return nil
}

func (c *ReminderAddCmd) Run(ctx *cli.Context) error {
	if err := c.Validate(); err != nil {
		return err
	}
	at, _ := cli.ParseWhen(c.At)
	rule, _ := recurrence.Parse(c.Repeat)
	amount, err := amountCents(c.Amount)
	if err != nil {
		return err
	}

	r, err := ctx.Reminders.Create(context.Background(), models.ReminderInput{
		Title:         c.Title,
		Description:   c.Description,
		AccountID:     optional(c.Account),
		AmountCents:   amount,
		DueAt:         at,
		Recurrence:    rule,
		Channel:       models.Channel(c.Channel),
		SnoozeMinutes: c.Snooze,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.Out, "✓ Reminder added: %s, next at %s", r.Title, cli.FormatOptionalTime(r.NextFireAt))
	if r.Recurrence.IsRecurring() {
		fmt.Fprintf(ctx.Out, " (%s)", r.Recurrence.Label())
	}
	fmt.Fprintf(ctx.Out, "\n  ID: %s\n", r.ID)
	return nil
}

type ReminderListCmd struct {
	Status string `short:"s" help:"Only show reminders in this status (scheduled, sent, snoozed, dismissed)."`
}

func (c *ReminderListCmd) Run(ctx *cli.Context) error {
	if c.Status != "" && !models.ReminderStatus(c.Status).Valid() {
		return fmt.Errorf("unknown status %q", c.Status)
	}
	list, err := ctx.Reminders.List(context.Background())
	if err != nil {
		return err
	}

	var shown []models.Reminder
	for _, r := range list {
		if c.Status == "" || string(r.Status) == c.Status {
			shown = append(shown, r)
		}
	}
	if len(shown) == 0 {
		fmt.Fprintln(ctx.Out, "No reminders found.")
		return nil
	}
	printReminders(ctx, shown)
	return nil
}

func printReminders(ctx *cli.Context, list []models.Reminder) {
	rows := make([][]string, len(list))
	for i, r := range list {
		rows[i] = []string{
			r.ID,
			cli.Truncate(r.Title, 32),
			cli.FormatCents(r.AmountCents),
			cli.FormatTime(r.DueAt),
			cli.FormatOptionalTime(r.NextFireAt),
			r.Recurrence.Label(),
			string(r.Status),
		}
	}
	fmt.Fprintln(ctx.Out, cli.RenderTable(
		[]string{"ID", "Title", "Amount", "Due", "Next fire", "Repeats", "Status"}, rows, 0))
}

type ReminderShowCmd struct {
	ID string `arg:"" help:"Reminder ID."`
}

func (c *ReminderShowCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	r, err := ctx.Reminders.Get(bg, c.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.Out, "%s [%s]\n", r.Title, r.Status)
	if r.Description != "" {
		fmt.Fprintf(ctx.Out, "  %s\n", r.Description)
	}
	fmt.Fprintf(ctx.Out, "  ID:             %s\n", r.ID)
	fmt.Fprintf(ctx.Out, "  Amount:         %s\n", cli.FormatCents(r.AmountCents))
	fmt.Fprintf(ctx.Out, "  Account:        %s\n", cli.Optional(r.AccountID))
	fmt.Fprintf(ctx.Out, "  Due:            %s\n", cli.FormatTime(r.DueAt))
	fmt.Fprintf(ctx.Out, "  Next fire:      %s\n", cli.FormatOptionalTime(r.NextFireAt))
	fmt.Fprintf(ctx.Out, "  Repeats:        %s\n", r.Recurrence.Label())
	fmt.Fprintf(ctx.Out, "  Channel:        %s\n", r.Channel)
	fmt.Fprintf(ctx.Out, "  Snooze minutes: %d\n", r.SnoozeMinutes)
	fmt.Fprintf(ctx.Out, "  Last sent:      %s\n", cli.FormatOptionalTime(r.LastTriggeredAt))
	if r.ScheduleID != nil {
		fmt.Fprintf(ctx.Out, "  Installment:    %s\n", *r.ScheduleID)
	}

	logs, err := ctx.Reminders.Logs(bg, r.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out)
	printLogs(ctx, logs)
	return nil
}

type ReminderUpdateCmd struct {
	ID          string `arg:"" help:"Reminder ID."`
	Title       string `help:"New title."`
	At          string `help:"New due time."`
	Repeat      string `help:"New recurrence (none, daily, weekly, monthly)."`
	Amount      string `help:"New amount."`
	Account     string `help:"New account."`
	Channel     string `help:"New channel (toast, in_app, email)."`
	Description string `help:"New description."`
	Snooze      int    `help:"New default snooze length in minutes."`
}

func (c *ReminderUpdateCmd) update() (models.ReminderUpdate, error) {
	var u models.ReminderUpdate
	if c.Title != "" {
		u.Title = &c.Title
	}
	if c.Description != "" {
		u.Description = &c.Description
	}
	if c.Account != "" {
		u.AccountID = &c.Account
	}
	if c.At != "" {
		at, err := cli.ParseWhen(c.At)
		if err != nil {
			return u, err
		}
		u.DueAt = &at
	}
	if c.Repeat != "" {
		rule, err := recurrence.Parse(c.Repeat)
		if err != nil {
			return u, err
		}
		u.Recurrence = &rule
	}
	if c.Channel != "" {
		ch := models.Channel(c.Channel)
		if !ch.Valid() {
			return u, fmt.Errorf("unknown channel %q", c.Channel)
		}
		u.Channel = &ch
	}
	if c.Snooze != 0 {
		u.SnoozeMinutes = &c.Snooze
	}
	amount, err := amountCents(c.Amount)
	if err != nil {
		return u, err
	}
	u.AmountCents = amount
	return u, nil
}

func (c *ReminderUpdateCmd) Run(ctx *cli.Context) error {
	u, err := c.update()
	if err != nil {
		return err
	}
	r, err := ctx.Reminders.Update(context.Background(), c.ID, u)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "✓ Reminder updated: %s, next at %s\n", r.Title, cli.FormatOptionalTime(r.NextFireAt))
	return nil
}

type ReminderDeleteCmd struct {
	ID  string `arg:"" help:"Reminder ID."`
	Yes bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *ReminderDeleteCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	r, err := ctx.Reminders.Get(bg, c.ID)
	if err != nil {
		return err
	}
	if !c.Yes {
		ok, err := cli.Confirm("Delete reminder "+strconv.Quote(r.Title)+"?", "Its audit log is kept.")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(ctx.Out, "Cancelled.")
			return nil
		}
	}
	if err := ctx.Reminders.Delete(bg, c.ID); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "✓ Reminder deleted: %s\n", r.Title)
	return nil
}
