package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	apperr "github.com/julianstephens/finlit/internal/errors"
	"github.com/julianstephens/finlit/internal/models"
)

const reminderColumns = `id, user_id, title, description, account_id, schedule_id, amount_cents,
	due_at, recurrence_rule, next_fire_at, channel, snooze_minutes, last_triggered_at,
	status, created_at, updated_at`

func utcOrNil(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func (s *Store) AddReminder(ctx context.Context, r models.Reminder) error {
	if err := r.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reminders (`+reminderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`,
		r.ID, r.UserID, r.Title, r.Description, r.AccountID, r.ScheduleID, r.AmountCents,
		r.DueAt.UTC(), r.Recurrence, utcOrNil(r.NextFireAt), string(r.Channel),
		r.SnoozeMinutes, utcOrNil(r.LastTriggeredAt), string(r.Status),
		r.CreatedAt.UTC(), r.UpdatedAt.UTC(),
	)
	return apperr.Database("postgres.AddReminder", err)
}

func (s *Store) GetReminder(ctx context.Context, userID, id string) (models.Reminder, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+reminderColumns+` FROM reminders WHERE id = $1 AND user_id = $2
	`, id, userID)
	r, err := scanReminder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Reminder{}, apperr.NotFound("postgres.GetReminder", "reminder", id)
	}
	if err != nil {
		return models.Reminder{}, apperr.Database("postgres.GetReminder", err)
	}
	return r, nil
}

func (s *Store) ListReminders(ctx context.Context, userID string) ([]models.Reminder, error) {
	return s.queryReminders(ctx, "postgres.ListReminders", `
		SELECT `+reminderColumns+`
		FROM reminders
		WHERE user_id = $1
		ORDER BY next_fire_at ASC NULLS LAST, created_at DESC
	`, userID)
}

func (s *Store) GetDueReminders(ctx context.Context, userID string, now time.Time) ([]models.Reminder, error) {
	return s.queryReminders(ctx, "postgres.GetDueReminders", `
		SELECT `+reminderColumns+`
		FROM reminders
		WHERE user_id = $1
		  AND status IN ('scheduled', 'snoozed')
		  AND next_fire_at IS NOT NULL
		  AND next_fire_at <= $2
		ORDER BY next_fire_at ASC
	`, userID, now.UTC())
}

func (s *Store) UpdateReminder(ctx context.Context, r models.Reminder) error {
	if err := r.Validate(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE reminders
		SET title = $1, description = $2, account_id = $3, schedule_id = $4, amount_cents = $5,
			due_at = $6, recurrence_rule = $7, next_fire_at = $8, channel = $9, snooze_minutes = $10,
			last_triggered_at = $11, status = $12, updated_at = $13
		WHERE id = $14 AND user_id = $15
	`,
		r.Title, r.Description, r.AccountID, r.ScheduleID, r.AmountCents,
		r.DueAt.UTC(), r.Recurrence, utcOrNil(r.NextFireAt), string(r.Channel), r.SnoozeMinutes,
		utcOrNil(r.LastTriggeredAt), string(r.Status), r.UpdatedAt.UTC(),
		r.ID, r.UserID,
	)
	if err != nil {
		return apperr.Database("postgres.UpdateReminder", err)
	}
	return requireAffected(res, "postgres.UpdateReminder", "reminder", r.ID)
}

func (s *Store) DeleteReminder(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return apperr.Database("postgres.DeleteReminder", err)
	}
	return requireAffected(res, "postgres.DeleteReminder", "reminder", id)
}

func (s *Store) AddReminderLog(ctx context.Context, l models.ReminderLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reminder_logs (id, reminder_id, action, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, l.ID, l.ReminderID, string(l.Action), l.Metadata, l.CreatedAt.UTC())
	return apperr.Database("postgres.AddReminderLog", err)
}

func (s *Store) ListReminderLogs(ctx context.Context, reminderID string) ([]models.ReminderLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, reminder_id, action, metadata, created_at
		FROM reminder_logs
		WHERE reminder_id = $1
		ORDER BY created_at ASC, seq ASC
	`, reminderID)
	if err != nil {
		return nil, apperr.Database("postgres.ListReminderLogs", err)
	}
	defer rows.Close()

	var logs []models.ReminderLog
	for rows.Next() {
		var l models.ReminderLog
		var action string
		var metadata sql.NullString
		if err := rows.Scan(&l.ID, &l.ReminderID, &action, &metadata, &l.CreatedAt); err != nil {
			return nil, apperr.Database("postgres.ListReminderLogs", err)
		}
		l.Action = models.ReminderAction(action)
		l.Metadata = nullableString(metadata)
		l.CreatedAt = l.CreatedAt.UTC()
		logs = append(logs, l)
	}
	return logs, apperr.Database("postgres.ListReminderLogs", rows.Err())
}

func (s *Store) queryReminders(ctx context.Context, op, query string, args ...interface{}) ([]models.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Database(op, err)
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
	return reminders, apperr.Database(op, rows.Err())
}

func scanReminder(row scanner) (models.Reminder, error) {
	var r models.Reminder
	var accountID, scheduleID sql.NullString
	var amountCents sql.NullInt64
	var nextFireAt, lastTriggeredAt sql.NullTime
	var channel, status string

	err := row.Scan(
		&r.ID, &r.UserID, &r.Title, &r.Description, &accountID, &scheduleID, &amountCents,
		&r.DueAt, &r.Recurrence, &nextFireAt, &channel, &r.SnoozeMinutes, &lastTriggeredAt,
		&status, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return models.Reminder{}, err
	}
	r.AccountID = nullableString(accountID)
	r.ScheduleID = nullableString(scheduleID)
	if amountCents.Valid {
		v := amountCents.Int64
		r.AmountCents = &v
	}
	r.NextFireAt = utcPtr(nextFireAt)
	r.LastTriggeredAt = utcPtr(lastTriggeredAt)
	r.Channel = models.Channel(channel)
	r.Status = models.ReminderStatus(status)
	r.DueAt = r.DueAt.UTC()
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
	return r, nil
}
