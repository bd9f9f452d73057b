package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScheduleEntry is one projected installment of a debt. The pair
// (DebtAccountID, DueDate) is unique.
type ScheduleEntry struct {
	ID               string          `json:"id"`
	DebtAccountID    string          `json:"debt_account_id"`
	DueDate          string          `json:"due_date"` // YYYY-MM-DD
	PlannedPayment   decimal.Decimal `json:"planned_payment"`
	PlannedInterest  decimal.Decimal `json:"planned_interest"`
	PlannedPrincipal decimal.Decimal `json:"planned_principal"`
	IsPaid           bool            `json:"is_paid"`
	TransactionID    *string         `json:"transaction_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}
