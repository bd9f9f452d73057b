package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperr "github.com/julianstephens/finlit/internal/errors"
	"github.com/julianstephens/finlit/internal/models"
)

const reminderColumns = `id, user_id, title, description, account_id, schedule_id, amount_cents,
	due_at, recurrence_rule, next_fire_at, channel, snooze_minutes, last_triggered_at,
	status, created_at, updated_at`

func (s *Store) AddReminder(ctx context.Context, r models.Reminder) error {
	if err := r.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reminders (`+reminderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID, r.UserID, r.Title, r.Description, r.AccountID, r.ScheduleID, r.AmountCents,
		formatTime(r.DueAt), r.Recurrence, formatNullableTime(r.NextFireAt), string(r.Channel),
		r.SnoozeMinutes, formatNullableTime(r.LastTriggeredAt), string(r.Status),
		formatTime(r.CreatedAt), formatTime(r.UpdatedAt),
	)
	if err != nil {
		return apperr.Database("sqlite.AddReminder", fmt.Errorf("failed to insert reminder: %w", err))
	}
	return nil
}

func (s *Store) GetReminder(ctx context.Context, userID, id string) (models.Reminder, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+reminderColumns+`
		FROM reminders
		WHERE id = ? AND user_id = ?
	`, id, userID)

	r, err := scanReminder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Reminder{}, apperr.NotFound("sqlite.GetReminder", "reminder", id)
	}
	if err != nil {
		return models.Reminder{}, apperr.Database("sqlite.GetReminder", err)
	}
	return r, nil
}

func (s *Store) ListReminders(ctx context.Context, userID string) ([]models.Reminder, error) {
	return s.queryReminders(ctx, "sqlite.ListReminders", `
		SELECT `+reminderColumns+`
		FROM reminders
		WHERE user_id = ?
		ORDER BY next_fire_at IS NULL, next_fire_at ASC, created_at DESC
	`, userID)
}

func (s *Store) GetDueReminders(ctx context.Context, userID string, now time.Time) ([]models.Reminder, error) {
	return s.queryReminders(ctx, "sqlite.GetDueReminders", `
		SELECT `+reminderColumns+`
		FROM reminders
		WHERE user_id = ?
		  AND status IN ('scheduled', 'snoozed')
		  AND next_fire_at IS NOT NULL
		  AND next_fire_at <= ?
		ORDER BY next_fire_at ASC
	`, userID, formatTime(now))
}

func (s *Store) UpdateReminder(ctx context.Context, r models.Reminder) error {
	if err := r.Validate(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE reminders
		SET title = ?, description = ?, account_id = ?, schedule_id = ?, amount_cents = ?,
			due_at = ?, recurrence_rule = ?, next_fire_at = ?, channel = ?, snooze_minutes = ?,
			last_triggered_at = ?, status = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`,
		r.Title, r.Description, r.AccountID, r.ScheduleID, r.AmountCents,
		formatTime(r.DueAt), r.Recurrence, formatNullableTime(r.NextFireAt), string(r.Channel), r.SnoozeMinutes,
		formatNullableTime(r.LastTriggeredAt), string(r.Status), formatTime(r.UpdatedAt),
		r.ID, r.UserID,
	)
	if err != nil {
		return apperr.Database("sqlite.UpdateReminder", fmt.Errorf("failed to update reminder: %w", err))
	}
	return requireAffected(res, "sqlite.UpdateReminder", "reminder", r.ID)
}

func (s *Store) DeleteReminder(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return apperr.Database("sqlite.DeleteReminder", fmt.Errorf("failed to delete reminder: %w", err))
	}
	return requireAffected(res, "sqlite.DeleteReminder", "reminder", id)
}

func (s *Store) AddReminderLog(ctx context.Context, l models.ReminderLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reminder_logs (id, reminder_id, action, metadata, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, l.ID, l.ReminderID, string(l.Action), l.Metadata, formatTime(l.CreatedAt))
	if err != nil {
		return apperr.Database("sqlite.AddReminderLog", fmt.Errorf("failed to insert reminder log: %w", err))
	}
	return nil
}

func (s *Store) ListReminderLogs(ctx context.Context, reminderID string) ([]models.ReminderLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, reminder_id, action, metadata, created_at
		FROM reminder_logs
		WHERE reminder_id = ?
		ORDER BY created_at ASC, rowid ASC
	`, reminderID)
	if err != nil {
		return nil, apperr.Database("sqlite.ListReminderLogs", err)
	}
	defer rows.Close()

	var logs []models.ReminderLog
	for rows.Next() {
		var l models.ReminderLog
		var action, createdAt string
		var metadata sql.NullString
		if err := rows.Scan(&l.ID, &l.ReminderID, &action, &metadata, &createdAt); err != nil {
			return nil, apperr.Database("sqlite.ListReminderLogs", err)
		}
		l.Action = models.ReminderAction(action)
		l.Metadata = nullableString(metadata)
		if l.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, apperr.Database("sqlite.ListReminderLogs", fmt.Errorf("failed to parse created_at: %w", err))
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Database("sqlite.ListReminderLogs", err)
	}
	return logs, nil
}

func (s *Store) queryReminders(ctx context.Context, op, query string, args ...interface{}) ([]models.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Database(op, fmt.Errorf("failed to query reminders: %w", err))
	}
	defer rows.Close()

	var reminders []models.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, apperr.Database(op, err)
		}
		reminders = append(reminders, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Database(op, err)
	}
	return reminders, nil
}

func scanReminder(row scanner) (models.Reminder, error) {
	var r models.Reminder
	var accountID, scheduleID, nextFireAt, lastTriggeredAt sql.NullString
	var amountCents sql.NullInt64
	var dueAt, channel, status, createdAt, updatedAt string

	err := row.Scan(
		&r.ID, &r.UserID, &r.Title, &r.Description, &accountID, &scheduleID, &amountCents,
		&dueAt, &r.Recurrence, &nextFireAt, &channel, &r.SnoozeMinutes, &lastTriggeredAt,
		&status, &createdAt, &updatedAt,
	)
	if err != nil {
		return models.Reminder{}, err
	}

	r.AccountID = nullableString(accountID)
	r.ScheduleID = nullableString(scheduleID)
	r.AmountCents = nullableInt64(amountCents)
	r.Channel = models.Channel(channel)
	r.Status = models.ReminderStatus(status)

	if r.DueAt, err = parseTime(dueAt); err != nil {
		return models.Reminder{}, fmt.Errorf("failed to parse due_at: %w", err)
	}
	if r.NextFireAt, err = parseNullableTime(nextFireAt); err != nil {
		return models.Reminder{}, fmt.Errorf("failed to parse next_fire_at: %w", err)
	}
	if r.LastTriggeredAt, err = parseNullableTime(lastTriggeredAt); err != nil {
		return models.Reminder{}, fmt.Errorf("failed to parse last_triggered_at: %w", err)
	}
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Reminder{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.Reminder{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return r, nil
}
