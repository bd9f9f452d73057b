package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	apperr "github.com/julianstephens/finlit/internal/errors"
	"github.com/julianstephens/finlit/internal/models"
)

const scheduleColumns = `id, debt_account_id, due_date, planned_payment, planned_interest,
	planned_principal, is_paid, transaction_id, created_at`

func (s *Store) ScheduleExists(ctx context.Context, debtAccountID, dueDate string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM debt_payment_schedules WHERE debt_account_id = $1 AND due_date = $2)
	`, debtAccountID, dueDate).Scan(&exists)
	if err != nil {
		return false, apperr.Database("postgres.ScheduleExists", err)
	}
	return exists, nil
}

func (s *Store) InsertSchedule(ctx context.Context, e models.ScheduleEntry) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO debt_payment_schedules (`+scheduleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (debt_account_id, due_date) DO NOTHING
	`,
		e.ID, e.DebtAccountID, e.DueDate, e.PlannedPayment, e.PlannedInterest,
		e.PlannedPrincipal, e.IsPaid, e.TransactionID, e.CreatedAt.UTC(),
	)
	if err != nil {
		return false, apperr.Database("postgres.InsertSchedule", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperr.Database("postgres.InsertSchedule", err)
	}
	return n == 1, nil
}

func (s *Store) GetSchedule(ctx context.Context, id string) (models.ScheduleEntry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+scheduleColumns+` FROM debt_payment_schedules WHERE id = $1`, id)
	e, err := scanSchedule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ScheduleEntry{}, apperr.NotFound("postgres.GetSchedule", "schedule", id)
	}
	if err != nil {
		return models.ScheduleEntry{}, apperr.Database("postgres.GetSchedule", err)
	}
	return e, nil
}

func (s *Store) ListSchedules(ctx context.Context, debtAccountID string) ([]models.ScheduleEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+scheduleColumns+`
		FROM debt_payment_schedules
		WHERE debt_account_id = $1
		ORDER BY due_date ASC
	`, debtAccountID)
	if err != nil {
		return nil, apperr.Database("postgres.ListSchedules", err)
	}
	defer rows.Close()

	var entries []models.ScheduleEntry
	for rows.Next() {
		e, err := scanSchedule(rows)
		if err != nil {
			return nil, apperr.Database("postgres.ListSchedules", err)
		}
		entries = append(entries, e)
	}
	return entries, apperr.Database("postgres.ListSchedules", rows.Err())
}

func (s *Store) MarkSchedulePaid(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE debt_payment_schedules SET is_paid = TRUE WHERE id = $1 AND NOT is_paid`, id)
	if err != nil {
		return false, apperr.Database("postgres.MarkSchedulePaid", err)
	}
	return s.scheduleChanged(ctx, res, "postgres.MarkSchedulePaid", id)
}

func (s *Store) ClaimScheduleTransaction(ctx context.Context, id, transactionID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE debt_payment_schedules SET transaction_id = $1
		WHERE id = $2 AND transaction_id IS NULL
	`, transactionID, id)
	if err != nil {
		return false, apperr.Database("postgres.ClaimScheduleTransaction", err)
	}
	return s.scheduleChanged(ctx, res, "postgres.ClaimScheduleTransaction", id)
}

func (s *Store) ReleaseScheduleTransaction(ctx context.Context, id, transactionID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE debt_payment_schedules SET transaction_id = NULL
		WHERE id = $1 AND transaction_id = $2
	`, id, transactionID)
	if err != nil {
		return apperr.Database("postgres.ReleaseScheduleTransaction", err)
	}
	return nil
}

func (s *Store) scheduleChanged(ctx context.Context, res sql.Result, op, id string) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperr.Database(op, err)
	}
	if n > 0 {
		return true, nil
	}
	if _, err := s.GetSchedule(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func scanSchedule(row scanner) (models.ScheduleEntry, error) {
	var e models.ScheduleEntry
	var dueDate, createdAt time.Time
	var txID sql.NullString
	err := row.Scan(
		&e.ID, &e.DebtAccountID, &dueDate, &e.PlannedPayment, &e.PlannedInterest,
		&e.PlannedPrincipal, &e.IsPaid, &txID, &createdAt,
	)
	if err != nil {
		return models.ScheduleEntry{}, err
	}
	e.DueDate = dateString(dueDate)
	e.TransactionID = nullableString(txID)
	e.CreatedAt = createdAt.UTC()
	return e, nil
}
