package ledger

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/finlit/internal/constants"
	apperr "github.com/julianstephens/finlit/internal/errors"
	"github.com/julianstephens/finlit/internal/models"
	"github.com/julianstephens/finlit/internal/storage"
	"github.com/julianstephens/finlit/internal/utils"
)

// ExpenseInput is one cash movement out of an account.
type ExpenseInput struct {
	// ID is used as the transaction id when set.
	ID          string
	UserID      string
	AccountID   string
	CategoryID  *string
	AmountCents int64
	OccurredOn  string // YYYY-MM-DD
	Description string
}

// Ledger records cash movements and returns the new transaction id, which
// is in.ID when that is set.
type Ledger interface {
	RecordExpense(ctx context.Context, in ExpenseInput) (string, error)
}

// StoreLedger writes cleared expense transactions straight to storage.
type StoreLedger struct {
	store    storage.LedgerStore
	currency string
}

func NewStoreLedger(store storage.LedgerStore, currency string) *StoreLedger {
	if currency == "" {
		currency = constants.DefaultCurrency
	}
	return &StoreLedger{store: store, currency: strings.ToUpper(currency)}
}

func (l *StoreLedger) RecordExpense(ctx context.Context, in ExpenseInput) (string, error) {
	const op = "ledger.RecordExpense"
	if strings.TrimSpace(in.AccountID) == "" {
		return "", apperr.Validation(op, "account id is required")
	}
	if in.AmountCents <= 0 {
		return "", apperr.Validation(op, "amount must be positive, got %d", in.AmountCents)
	}
	if !utils.ValidateDateFormat(in.OccurredOn) {
		return "", apperr.Validation(op, "invalid date %q (expected YYYY-MM-DD)", in.OccurredOn)
	}

	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	tx := models.Transaction{
		ID:          id,
		UserID:      in.UserID,
		AccountID:   in.AccountID,
		CategoryID:  in.CategoryID,
		Type:        constants.TransactionTypeExpense,
		AmountCents: in.AmountCents,
		Currency:    l.currency,
		OccurredOn:  in.OccurredOn,
		Description: in.Description,
		Cleared:     true,
		CreatedAt:   utils.Now(),
	}
	if err := l.store.AddTransaction(ctx, tx); err != nil {
		return "", err
	}
	return tx.ID, nil
}
