package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperr "github.com/julianstephens/finlit/internal/errors"
	"github.com/julianstephens/finlit/internal/models"
)

func (s *Store) AddTransaction(ctx context.Context, tx models.Transaction) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (
			id, user_id, account_id, category_id, type, amount_cents,
			currency, occurred_on, description, cleared, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		tx.ID, tx.UserID, tx.AccountID, tx.CategoryID, tx.Type, tx.AmountCents,
		tx.Currency, tx.OccurredOn, tx.Description, tx.Cleared, formatTime(tx.CreatedAt),
	)
	if err != nil {
		return apperr.Database("sqlite.AddTransaction", fmt.Errorf("failed to insert transaction: %w", err))
	}
	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id string) (models.Transaction, error) {
	var tx models.Transaction
	var categoryID sql.NullString
	var createdAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, account_id, category_id, type, amount_cents,
			currency, occurred_on, description, cleared, created_at
		FROM transactions
		WHERE id = ?
	`, id).Scan(
		&tx.ID, &tx.UserID, &tx.AccountID, &categoryID, &tx.Type, &tx.AmountCents,
		&tx.Currency, &tx.OccurredOn, &tx.Description, &tx.Cleared, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Transaction{}, apperr.NotFound("sqlite.GetTransaction", "transaction", id)
	}
	if err != nil {
		return models.Transaction{}, apperr.Database("sqlite.GetTransaction", err)
	}

	tx.CategoryID = nullableString(categoryID)
	if tx.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Transaction{}, apperr.Database("sqlite.GetTransaction", fmt.Errorf("failed to parse created_at: %w", err))
	}
	return tx, nil
}
