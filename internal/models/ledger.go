package models

import "time"

// Transaction is the subset of a ledger row the payment bridge writes.
type Transaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	AccountID   string    `json:"account_id"`
	CategoryID  *string   `json:"category_id,omitempty"`
	Type        string    `json:"type"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	OccurredOn  string    `json:"occurred_on"` // YYYY-MM-DD
	Description string    `json:"description,omitempty"`
	Cleared     bool      `json:"cleared"`
	CreatedAt   time.Time `json:"created_at"`
}
