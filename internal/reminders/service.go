package reminders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apperr "github.com/julianstephens/finlit/internal/errors"
	"github.com/julianstephens/finlit/internal/logger"
	"github.com/julianstephens/finlit/internal/models"
	"github.com/julianstephens/finlit/internal/recurrence"
	"github.com/julianstephens/finlit/internal/storage"
	"github.com/julianstephens/finlit/internal/utils"
)

// Service owns the reminder state machine:
//
//	scheduled -> sent -> scheduled   (recurring, re-armed by MarkSent)
//	scheduled -> sent                (one-off, terminal)
//	scheduled|snoozed -> snoozed     (Snooze)
//	any -> dismissed                 (Dismiss)
//
// Every transition appends a ReminderLog row.
type Service struct {
	store  storage.ReminderStore
	userID string

	// Now is the clock; tests replace it.
	Now func() time.Time
}

func NewService(store storage.ReminderStore, userID string) *Service {
	return &Service{store: store, userID: userID, Now: utils.Now}
}

func (s *Service) now() time.Time {
	return utils.Normalize(s.Now())
}

func (s *Service) appendLog(ctx context.Context, reminderID string, action models.ReminderAction, metadata *string) error {
	return s.store.AddReminderLog(ctx, models.ReminderLog{
		ID:         uuid.NewString(),
		ReminderID: reminderID,
		Action:     action,
		Metadata:   metadata,
		CreatedAt:  s.now(),
	})
}

func (s *Service) build(in models.ReminderInput, now time.Time) (models.Reminder, error) {
	const op = "reminders.Create"
	if strings.TrimSpace(in.Title) == "" {
		return models.Reminder{}, apperr.Validation(op, "reminder title cannot be empty")
	}
	if in.DueAt.IsZero() {
		return models.Reminder{}, apperr.Validation(op, "reminder due time is required")
	}
	channel := in.Channel
	if channel == "" {
		channel = models.ChannelToast
	}
	return models.Reminder{
		ID:            uuid.NewString(),
		UserID:        s.userID,
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		AccountID:     in.AccountID,
		AmountCents:   in.AmountCents,
		DueAt:         utils.Normalize(in.DueAt),
		Recurrence:    in.Recurrence,
		Channel:       channel,
		SnoozeMinutes: in.SnoozeMinutes,
		Status:        models.ReminderScheduled,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (s *Service) insert(ctx context.Context, r models.Reminder) (models.Reminder, error) {
	if err := s.store.AddReminder(ctx, r); err != nil {
		return models.Reminder{}, err
	}
	if err := s.appendLog(ctx, r.ID, models.ActionCreated, nil); err != nil {
		return models.Reminder{}, err
	}
	logger.Debug("Reminder created", "reminder_id", r.ID, "next_fire_at", r.NextFireAt)
	return r, nil
}

// Create adds a user reminder. A one-off reminder must be due in the
// future; a recurring one may start in the past and is armed at its next
// occurrence.
func (s *Service) Create(ctx context.Context, in models.ReminderInput) (models.Reminder, error) {
	now := s.now()
	r, err := s.build(in, now)
	if err != nil {
		return models.Reminder{}, err
	}
	if !r.Recurrence.IsRecurring() && !r.DueAt.After(now) {
		return models.Reminder{}, apperr.Validation("reminders.Create",
			"due time %s is not in the future", utils.FormatTimestamp(r.DueAt))
	}
	r.NextFireAt = recurrence.NextFireAt(r.DueAt, r.Recurrence, now)
	return s.insert(ctx, r)
}

// CreateForSchedule adds the companion reminder of a generated installment.
// It is armed at its due time even when that is already past, so an
// overdue installment fires on the next poll.
func (s *Service) CreateForSchedule(ctx context.Context, in models.ReminderInput, scheduleID string) (models.Reminder, error) {
	r, err := s.build(in, s.now())
	if err != nil {
		return models.Reminder{}, err
	}
	next := r.DueAt
	r.NextFireAt = &next
	r.ScheduleID = &scheduleID
	return s.insert(ctx, r)
}

func (s *Service) Get(ctx context.Context, id string) (models.Reminder, error) {
	return s.store.GetReminder(ctx, s.userID, id)
}

func (s *Service) List(ctx context.Context) ([]models.Reminder, error) {
	return s.store.ListReminders(ctx, s.userID)
}

// Update merges u onto the stored reminder and re-derives next_fire_at
// from the resulting due time and rule.
func (s *Service) Update(ctx context.Context, id string, u models.ReminderUpdate) (models.Reminder, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return models.Reminder{}, err
	}
	now := s.now()
	u.Apply(&r)
	r.DueAt = utils.Normalize(r.DueAt)
	r.NextFireAt = recurrence.NextFireAt(r.DueAt, r.Recurrence, now)
	r.UpdatedAt = now

	if err := s.store.UpdateReminder(ctx, r); err != nil {
		return models.Reminder{}, err
	}
	if err := s.appendLog(ctx, r.ID, models.ActionUpdated, nil); err != nil {
		return models.Reminder{}, err
	}
	return r, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteReminder(ctx, s.userID, id)
}

// Snooze pushes the reminder out by minutes from whichever is later, its
// pending fire time or now. The due time moves with it. Zero minutes uses
// the reminder's own snooze length.
func (s *Service) Snooze(ctx context.Context, id string, minutes int) (models.Reminder, error) {
	if minutes < 0 {
		return models.Reminder{}, apperr.Validation("reminders.Snooze", "snooze minutes must be positive, got %d", minutes)
	}
	r, err := s.Get(ctx, id)
	if err != nil {
		return models.Reminder{}, err
	}
	if minutes == 0 {
		minutes = r.SnoozeLength()
	}

	now := s.now()
	base := now
	if r.NextFireAt != nil && r.NextFireAt.After(now) {
		base = *r.NextFireAt
	}
	next := base.Add(time.Duration(minutes) * time.Minute)

	r.DueAt = next
	r.NextFireAt = &next
	r.Status = models.ReminderSnoozed
	r.SnoozeMinutes = minutes
	r.UpdatedAt = now

	if err := s.store.UpdateReminder(ctx, r); err != nil {
		return models.Reminder{}, err
	}
	meta := fmt.Sprintf("%d minutes", minutes)
	if err := s.appendLog(ctx, r.ID, models.ActionSnoozed, &meta); err != nil {
		return models.Reminder{}, err
	}
	return r, nil
}

func (s *Service) Dismiss(ctx context.Context, id string) (models.Reminder, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return models.Reminder{}, err
	}
	r.Status = models.ReminderDismissed
	r.NextFireAt = nil
	r.UpdatedAt = s.now()

	if err := s.store.UpdateReminder(ctx, r); err != nil {
		return models.Reminder{}, err
	}
	if err := s.appendLog(ctx, r.ID, models.ActionDismissed, nil); err != nil {
		return models.Reminder{}, err
	}
	return r, nil
}

// Due returns the armed reminders whose fire time has passed, earliest
// first.
func (s *Service) Due(ctx context.Context) ([]models.Reminder, error) {
	return s.store.GetDueReminders(ctx, s.userID, s.now())
}

// MarkSent records a delivery. The reminder is written as sent first; a
// recurring one is then re-armed at its next occurrence and flipped back to
// scheduled, so the sent state is always observable in storage and in the
// log.
func (s *Service) MarkSent(ctx context.Context, id string) (models.Reminder, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return models.Reminder{}, err
	}

	now := s.now()
	var next *time.Time
	if r.Recurrence.IsRecurring() {
		next = recurrence.NextFireAt(r.DueAt, r.Recurrence, now)
	}
	r.Status = models.ReminderSent
	r.LastTriggeredAt = &now
	r.NextFireAt = next
	r.UpdatedAt = now

	if err := s.store.UpdateReminder(ctx, r); err != nil {
		return models.Reminder{}, err
	}
	if err := s.appendLog(ctx, r.ID, models.ActionSent, nil); err != nil {
		return models.Reminder{}, err
	}

	if next != nil {
		r.Status = models.ReminderScheduled
		if err := s.store.UpdateReminder(ctx, r); err != nil {
			return models.Reminder{}, err
		}
	}
	return r, nil
}

func (s *Service) Logs(ctx context.Context, id string) ([]models.ReminderLog, error) {
	return s.store.ListReminderLogs(ctx, id)
}
