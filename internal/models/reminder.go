package models

import (
	"strings"
	"time"

	"github.com/julianstephens/finlit/internal/constants"
	apperr "github.com/julianstephens/finlit/internal/errors"
	"github.com/julianstephens/finlit/internal/recurrence"
)

type ReminderStatus string

const (
	ReminderScheduled ReminderStatus = "scheduled"
	ReminderSent      ReminderStatus = "sent"
	ReminderSnoozed   ReminderStatus = "snoozed"
	ReminderDismissed ReminderStatus = "dismissed"
)

func (s ReminderStatus) Valid() bool {
	switch s {
	case ReminderScheduled, ReminderSent, ReminderSnoozed, ReminderDismissed:
		return true
	}
	return false
}

// Channel is where a reminder should surface.
type Channel string

const (
	ChannelToast Channel = "toast"
	ChannelInApp Channel = "in_app"
	ChannelEmail Channel = "email"
)

func (c Channel) Valid() bool {
	switch c {
	case ChannelToast, ChannelInApp, ChannelEmail:
		return true
	}
	return false
}

type Reminder struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	AccountID       *string         `json:"account_id,omitempty"`
	ScheduleID      *string         `json:"schedule_id,omitempty"`
	AmountCents     *int64          `json:"amount_cents,omitempty"`
	DueAt           time.Time       `json:"due_at"`
	Recurrence      recurrence.Rule `json:"recurrence_rule"`
	NextFireAt      *time.Time      `json:"next_fire_at"`
	Channel         Channel         `json:"channel"`
	SnoozeMinutes   int             `json:"snooze_minutes"`
	LastTriggeredAt *time.Time      `json:"last_triggered_at,omitempty"`
	Status          ReminderStatus  `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Armed reports whether the poller may still fire the reminder.
func (r *Reminder) Armed() bool {
	return (r.Status == ReminderScheduled || r.Status == ReminderSnoozed) && r.NextFireAt != nil
}

// SnoozeLength is the reminder's own snooze in minutes, or the default when
// it has none.
func (r *Reminder) SnoozeLength() int {
	if r.SnoozeMinutes > 0 {
		return r.SnoozeMinutes
	}
	return constants.DefaultSnoozeMinutes
}

func (r *Reminder) Validate() error {
	const op = "models.Reminder"
	if strings.TrimSpace(r.Title) == "" {
		return apperr.Validation(op, "reminder title cannot be empty")
	}
	if r.DueAt.IsZero() {
		return apperr.Validation(op, "reminder due time is required")
	}
	if !r.Channel.Valid() {
		return apperr.Validation(op, "unknown channel %q", r.Channel)
	}
	if !r.Status.Valid() {
		return apperr.Validation(op, "unknown status %q", r.Status)
	}
	if r.SnoozeMinutes < 0 {
		return apperr.Validation(op, "snooze minutes cannot be negative")
	}
	if r.AmountCents != nil && *r.AmountCents < 0 {
		return apperr.Validation(op, "amount cannot be negative")
	}
	return nil
}

type ReminderInput struct {
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	AccountID     *string         `json:"account_id,omitempty"`
	AmountCents   *int64          `json:"amount_cents,omitempty"`
	DueAt         time.Time       `json:"due_at"`
	Recurrence    recurrence.Rule `json:"recurrence_rule"`
	Channel       Channel         `json:"channel,omitempty"` // defaults to toast
	SnoozeMinutes int             `json:"snooze_minutes,omitempty"`
}

// ReminderUpdate merges onto an existing reminder; nil fields keep their
// current value.
type ReminderUpdate struct {
	Title         *string          `json:"title,omitempty"`
	Description   *string          `json:"description,omitempty"`
	AccountID     *string          `json:"account_id,omitempty"`
	AmountCents   *int64           `json:"amount_cents,omitempty"`
	DueAt         *time.Time       `json:"due_at,omitempty"`
	Recurrence    *recurrence.Rule `json:"recurrence_rule,omitempty"`
	Channel       *Channel         `json:"channel,omitempty"`
	SnoozeMinutes *int             `json:"snooze_minutes,omitempty"`
	Status        *ReminderStatus  `json:"status,omitempty"`
}

func (u ReminderUpdate) Apply(r *Reminder) {
	if u.Title != nil {
		r.Title = *u.Title
	}
	if u.Description != nil {
		r.Description = *u.Description
	}
	if u.AccountID != nil {
		r.AccountID = u.AccountID
	}
	if u.AmountCents != nil {
		r.AmountCents = u.AmountCents
	}
	if u.DueAt != nil {
		r.DueAt = *u.DueAt
	}
	if u.Recurrence != nil {
		r.Recurrence = *u.Recurrence
	}
	if u.Channel != nil {
		r.Channel = *u.Channel
	}
	if u.SnoozeMinutes != nil {
		r.SnoozeMinutes = *u.SnoozeMinutes
	}
	if u.Status != nil {
		r.Status = *u.Status
	}
}

type ReminderAction string

const (
	ActionCreated   ReminderAction = "created"
	ActionUpdated   ReminderAction = "updated"
	ActionSnoozed   ReminderAction = "snoozed"
	ActionDismissed ReminderAction = "dismissed"
	ActionSent      ReminderAction = "sent"
)

// ReminderLog is an append-only audit record. Rows outlive the reminder
// they describe.
type ReminderLog struct {
	ID         string         `json:"id"`
	ReminderID string         `json:"reminder_id"`
	Action     ReminderAction `json:"action"`
	Metadata   *string        `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
