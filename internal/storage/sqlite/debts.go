package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	apperr "github.com/julianstephens/finlit/internal/errors"
	"github.com/julianstephens/finlit/internal/models"
)

const debtColumns = `id, user_id, name, kind, principal, interest_rate, min_payment,
	due_day, start_date, current_balance, created_at, updated_at`

func (s *Store) AddDebtAccount(ctx context.Context, d models.DebtAccount) error {
	if err := d.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO debt_accounts (`+debtColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		d.ID, d.UserID, d.Name, string(d.Kind), d.Principal, d.InterestRate, d.MinPayment,
		d.DueDay, d.StartDate, d.CurrentBalance, formatTime(d.CreatedAt), formatTime(d.UpdatedAt),
	)
	if err != nil {
		return apperr.Database("sqlite.AddDebtAccount", fmt.Errorf("failed to insert debt account: %w", err))
	}
	return nil
}

func (s *Store) GetDebtAccount(ctx context.Context, userID, id string) (models.DebtAccount, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+debtColumns+`
		FROM debt_accounts
		WHERE id = ? AND user_id = ?
	`, id, userID)

	d, err := scanDebt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DebtAccount{}, apperr.NotFound("sqlite.GetDebtAccount", "debt account", id)
	}
	if err != nil {
		return models.DebtAccount{}, apperr.Database("sqlite.GetDebtAccount", err)
	}
	return d, nil
}

func (s *Store) ListDebtAccounts(ctx context.Context, userID string) ([]models.DebtAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+debtColumns+`
		FROM debt_accounts
		WHERE user_id = ?
		ORDER BY created_at DESC, name ASC
	`, userID)
	if err != nil {
		return nil, apperr.Database("sqlite.ListDebtAccounts", fmt.Errorf("failed to query debt accounts: %w", err))
	}
	defer rows.Close()

	var debts []models.DebtAccount
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, apperr.Database("sqlite.ListDebtAccounts", err)
		}
		debts = append(debts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Database("sqlite.ListDebtAccounts", err)
	}
	return debts, nil
}

func (s *Store) UpdateDebtAccount(ctx context.Context, d models.DebtAccount) error {
	if err := d.Validate(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE debt_accounts
		SET name = ?, kind = ?, principal = ?, interest_rate = ?, min_payment = ?,
			due_day = ?, start_date = ?, current_balance = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`,
		d.Name, string(d.Kind), d.Principal, d.InterestRate, d.MinPayment,
		d.DueDay, d.StartDate, d.CurrentBalance, formatTime(d.UpdatedAt),
		d.ID, d.UserID,
	)
	if err != nil {
		return apperr.Database("sqlite.UpdateDebtAccount", fmt.Errorf("failed to update debt account: %w", err))
	}
	return requireAffected(res, "sqlite.UpdateDebtAccount", "debt account", d.ID)
}

// ReduceDebtBalance works in REAL and writes the result back as a
// two-decimal string, the form balances are stored in.
func (s *Store) ReduceDebtBalance(ctx context.Context, userID, id string, amount decimal.Decimal, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE debt_accounts
		SET current_balance = printf('%.2f', MAX(CAST(current_balance AS REAL) - CAST(? AS REAL), 0)),
			updated_at = ?
		WHERE id = ? AND user_id = ?
	`, amount.StringFixed(2), formatTime(at), id, userID)
	if err != nil {
		return apperr.Database("sqlite.ReduceDebtBalance", err)
	}
	return requireAffected(res, "sqlite.ReduceDebtBalance", "debt account", id)
}

func (s *Store) DeleteDebtAccount(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM debt_accounts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return apperr.Database("sqlite.DeleteDebtAccount", fmt.Errorf("failed to delete debt account: %w", err))
	}
	return requireAffected(res, "sqlite.DeleteDebtAccount", "debt account", id)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDebt(row scanner) (models.DebtAccount, error) {
	var d models.DebtAccount
	var kind, createdAt, updatedAt string

	err := row.Scan(
		&d.ID, &d.UserID, &d.Name, &kind, &d.Principal, &d.InterestRate, &d.MinPayment,
		&d.DueDay, &d.StartDate, &d.CurrentBalance, &createdAt, &updatedAt,
	)
	if err != nil {
		return models.DebtAccount{}, err
	}
	d.Kind = models.DebtKind(kind)

	if d.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.DebtAccount{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if d.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.DebtAccount{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return d, nil
}

func requireAffected(res sql.Result, op, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Database(op, fmt.Errorf("failed to get rows affected: %w", err))
	}
	if n == 0 {
		return apperr.NotFound(op, entity, id)
	}
	return nil
}
