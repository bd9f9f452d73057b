package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	apperr "github.com/julianstephens/finlit/internal/errors"
	"github.com/julianstephens/finlit/internal/models"
)

func (s *Store) AddTransaction(ctx context.Context, tx models.Transaction) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (
			id, user_id, account_id, category_id, type, amount_cents,
			currency, occurred_on, description, cleared, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		tx.ID, tx.UserID, tx.AccountID, tx.CategoryID, tx.Type, tx.AmountCents,
		tx.Currency, tx.OccurredOn, tx.Description, tx.Cleared, tx.CreatedAt.UTC(),
	)
	return apperr.Database("postgres.AddTransaction", err)
}

func (s *Store) GetTransaction(ctx context.Context, id string) (models.Transaction, error) {
	var tx models.Transaction
	var categoryID sql.NullString
	var occurredOn time.Time

	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, account_id, category_id, type, amount_cents,
			currency, occurred_on, description, cleared, created_at
		FROM transactions
		WHERE id = $1
	`, id).Scan(
		&tx.ID, &tx.UserID, &tx.AccountID, &categoryID, &tx.Type, &tx.AmountCents,
		&tx.Currency, &occurredOn, &tx.Description, &tx.Cleared, &tx.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Transaction{}, apperr.NotFound("postgres.GetTransaction", "transaction", id)
	}
	if err != nil {
		return models.Transaction{}, apperr.Database("postgres.GetTransaction", err)
	}
	tx.CategoryID = nullableString(categoryID)
	tx.OccurredOn = dateString(occurredOn)
	tx.CreatedAt = tx.CreatedAt.UTC()
	return tx, nil
}
