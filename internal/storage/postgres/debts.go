package postgres

import (
	"context"
	"database/sql"
	"errors"
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		d.ID, d.UserID, d.Name, string(d.Kind), d.Principal, d.InterestRate, d.MinPayment,
		d.DueDay, d.StartDate, d.CurrentBalance, d.CreatedAt.UTC(), d.UpdatedAt.UTC(),
	)
	return apperr.Database("postgres.AddDebtAccount", err)
}

func (s *Store) GetDebtAccount(ctx context.Context, userID, id string) (models.DebtAccount, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+debtColumns+` FROM debt_accounts WHERE id = $1 AND user_id = $2
	`, id, userID)
	d, err := scanDebt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DebtAccount{}, apperr.NotFound("postgres.GetDebtAccount", "debt account", id)
	}
	if err != nil {
		return models.DebtAccount{}, apperr.Database("postgres.GetDebtAccount", err)
	}
	return d, nil
}

func (s *Store) ListDebtAccounts(ctx context.Context, userID string) ([]models.DebtAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+debtColumns+` FROM debt_accounts WHERE user_id = $1 ORDER BY created_at DESC, name ASC
	`, userID)
	if err != nil {
		return nil, apperr.Database("postgres.ListDebtAccounts", err)
	}
	defer rows.Close()

	var debts []models.DebtAccount
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, apperr.Database("postgres.ListDebtAccounts", err)
		}
		debts = append(debts, d)
	}
	return debts, apperr.Database("postgres.ListDebtAccounts", rows.Err())
}

func (s *Store) UpdateDebtAccount(ctx context.Context, d models.DebtAccount) error {
	if err := d.Validate(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE debt_accounts
		SET name = $1, kind = $2, principal = $3, interest_rate = $4, min_payment = $5,
			due_day = $6, start_date = $7, current_balance = $8, updated_at = $9
		WHERE id = $10 AND user_id = $11
	`,
		d.Name, string(d.Kind), d.Principal, d.InterestRate, d.MinPayment,
		d.DueDay, d.StartDate, d.CurrentBalance, d.UpdatedAt.UTC(), d.ID, d.UserID,
	)
	if err != nil {
		return apperr.Database("postgres.UpdateDebtAccount", err)
	}
	return requireAffected(res, "postgres.UpdateDebtAccount", "debt account", d.ID)
}

func (s *Store) ReduceDebtBalance(ctx context.Context, userID, id string, amount decimal.Decimal, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE debt_accounts
		SET current_balance = GREATEST(current_balance - $1, 0), updated_at = $2
		WHERE id = $3 AND user_id = $4
	`, amount, at.UTC(), id, userID)
	if err != nil {
		return apperr.Database("postgres.ReduceDebtBalance", err)
	}
	return requireAffected(res, "postgres.ReduceDebtBalance", "debt account", id)
}

func (s *Store) DeleteDebtAccount(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM debt_accounts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return apperr.Database("postgres.DeleteDebtAccount", err)
	}
	return requireAffected(res, "postgres.DeleteDebtAccount", "debt account", id)
}

func scanDebt(row scanner) (models.DebtAccount, error) {
	var d models.DebtAccount
	var kind string
	var startDate, createdAt, updatedAt time.Time
	err := row.Scan(
		&d.ID, &d.UserID, &d.Name, &kind, &d.Principal, &d.InterestRate, &d.MinPayment,
		&d.DueDay, &startDate, &d.CurrentBalance, &createdAt, &updatedAt,
	)
	if err != nil {
		return models.DebtAccount{}, err
	}
	d.Kind = models.DebtKind(kind)
	d.StartDate = dateString(startDate)
	d.CreatedAt = createdAt.UTC()
	d.UpdatedAt = updatedAt.UTC()
	return d, nil
}

func requireAffected(res sql.Result, op, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Database(op, err)
	}
	if n == 0 {
		return apperr.NotFound(op, entity, id)
	}
	return nil
}
