package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperr "github.com/julianstephens/finlit/internal/errors"
	"github.com/julianstephens/finlit/internal/models"
)

const scheduleColumns = `id, debt_account_id, due_date, planned_payment, planned_interest,
	planned_principal, is_paid, transaction_id, created_at`

func (s *Store) ScheduleExists(ctx context.Context, debtAccountID, dueDate string) (bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM debt_payment_schedules WHERE debt_account_id = ? AND due_date = ?
	`, debtAccountID, dueDate).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, apperr.Database("sqlite.ScheduleExists", err)
	}
	return true, nil
}

func (s *Store) InsertSchedule(ctx context.Context, e models.ScheduleEntry) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO debt_payment_schedules (`+scheduleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (debt_account_id, due_date) DO NOTHING
	`,
		e.ID, e.DebtAccountID, e.DueDate, e.PlannedPayment, e.PlannedInterest,
		e.PlannedPrincipal, e.IsPaid, e.TransactionID, formatTime(e.CreatedAt),
	)
	if err != nil {
		return false, apperr.Database("sqlite.InsertSchedule", fmt.Errorf("failed to insert schedule: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperr.Database("sqlite.InsertSchedule", err)
	}
	return n == 1, nil
}

func (s *Store) GetSchedule(ctx context.Context, id string) (models.ScheduleEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+scheduleColumns+`
		FROM debt_payment_schedules
		WHERE id = ?
	`, id)

	e, err := scanSchedule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ScheduleEntry{}, apperr.NotFound("sqlite.GetSchedule", "schedule", id)
	}
	if err != nil {
		return models.ScheduleEntry{}, apperr.Database("sqlite.GetSchedule", err)
	}
	return e, nil
}

func (s *Store) ListSchedules(ctx context.Context, debtAccountID string) ([]models.ScheduleEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+scheduleColumns+`
		FROM debt_payment_schedules
		WHERE debt_account_id = ?
		ORDER BY due_date ASC
	`, debtAccountID)
	if err != nil {
		return nil, apperr.Database("sqlite.ListSchedules", fmt.Errorf("failed to query schedules: %w", err))
	}
	defer rows.Close()

	var entries []models.ScheduleEntry
	for rows.Next() {
		e, err := scanSchedule(rows)
		if err != nil {
			return nil, apperr.Database("sqlite.ListSchedules", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Database("sqlite.ListSchedules", err)
	}
	return entries, nil
}

func (s *Store) MarkSchedulePaid(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE debt_payment_schedules SET is_paid = 1 WHERE id = ? AND is_paid = 0`, id)
	if err != nil {
		return false, apperr.Database("sqlite.MarkSchedulePaid", err)
	}
	return s.scheduleChanged(ctx, res, "sqlite.MarkSchedulePaid", id)
}

func (s *Store) ClaimScheduleTransaction(ctx context.Context, id, transactionID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE debt_payment_schedules SET transaction_id = ?
		WHERE id = ? AND transaction_id IS NULL
	`, transactionID, id)
	if err != nil {
		return false, apperr.Database("sqlite.ClaimScheduleTransaction", err)
	}
	return s.scheduleChanged(ctx, res, "sqlite.ClaimScheduleTransaction", id)
}

func (s *Store) ReleaseScheduleTransaction(ctx context.Context, id, transactionID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE debt_payment_schedules SET transaction_id = NULL
		WHERE id = ? AND transaction_id = ?
	`, id, transactionID)
	if err != nil {
		return apperr.Database("sqlite.ReleaseScheduleTransaction", err)
	}
	return nil
}

// scheduleChanged reports whether a conditional update hit its row. No
// change on a row that does not exist is NotFound.
func (s *Store) scheduleChanged(ctx context.Context, res sql.Result, op, id string) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperr.Database(op, fmt.Errorf("failed to get rows affected: %w", err))
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
	var txID sql.NullString
	var createdAt string

	err := row.Scan(
		&e.ID, &e.DebtAccountID, &e.DueDate, &e.PlannedPayment, &e.PlannedInterest,
		&e.PlannedPrincipal, &e.IsPaid, &txID, &createdAt,
	)
	if err != nil {
		return models.ScheduleEntry{}, err
	}
	e.TransactionID = nullableString(txID)
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.ScheduleEntry{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return e, nil
}
