package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/julianstephens/finlit/internal/constants"
	apperr "github.com/julianstephens/finlit/internal/errors"
)

type DebtKind string

const (
	DebtKindLoan       DebtKind = "loan"
	DebtKindCreditCard DebtKind = "credit_card"
	DebtKindOverdraft  DebtKind = "overdraft"
	DebtKindOther      DebtKind = "other"
)

func (k DebtKind) Valid() bool {
	switch k {
	case DebtKindLoan, DebtKindCreditCard, DebtKindOverdraft, DebtKindOther:
		return true
	}
	return false
}

// DebtAccount is an owed balance and its repayment terms.
type DebtAccount struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	Name           string          `json:"name"`
	Kind           DebtKind        `json:"kind"`
	Principal      decimal.Decimal `json:"principal"`
	InterestRate   decimal.Decimal `json:"annual_interest_rate_percent"` // percent, 19.9 means 19.9%
	MinPayment     decimal.Decimal `json:"min_monthly_payment"`
	DueDay         int             `json:"due_day"`
	StartDate      string          `json:"start_date"` // YYYY-MM-DD
	CurrentBalance decimal.Decimal `json:"current_balance"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (d *DebtAccount) Validate() error {
	const op = "models.DebtAccount"
	if strings.TrimSpace(d.Name) == "" {
		return apperr.Validation(op, "debt name cannot be empty")
	}
	if !d.Kind.Valid() {
		return apperr.Validation(op, "unknown debt kind %q", d.Kind)
	}
	if d.DueDay < 1 || d.DueDay > 31 {
		return apperr.Validation(op, "due day must be between 1 and 31, got %d", d.DueDay)
	}
	if d.InterestRate.IsNegative() {
		return apperr.Validation(op, "interest rate cannot be negative")
	}
	if d.Principal.IsNegative() || d.MinPayment.IsNegative() || d.CurrentBalance.IsNegative() {
		return apperr.Validation(op, "amounts cannot be negative")
	}
	if _, err := time.Parse(constants.DateFormat, d.StartDate); err != nil {
		return apperr.Validation(op, "invalid start date %q (expected YYYY-MM-DD)", d.StartDate)
	}
	return nil
}

// DebtAccountInput carries the fields a caller supplies when creating a debt.
type DebtAccountInput struct {
	Name         string          `json:"name"`
	Kind         DebtKind        `json:"kind"`
	Principal    decimal.Decimal `json:"principal"`
	InterestRate decimal.Decimal `json:"annual_interest_rate_percent"`
	MinPayment   decimal.Decimal `json:"min_monthly_payment"`
	DueDay       int             `json:"due_day"`
	StartDate    string          `json:"start_date"`
}

// DebtAccountUpdate is a partial update; nil fields are left unchanged.
type DebtAccountUpdate struct {
	Name           *string          `json:"name,omitempty"`
	Kind           *DebtKind        `json:"kind,omitempty"`
	Principal      *decimal.Decimal `json:"principal,omitempty"`
	InterestRate   *decimal.Decimal `json:"annual_interest_rate_percent,omitempty"`
	MinPayment     *decimal.Decimal `json:"min_monthly_payment,omitempty"`
	DueDay         *int             `json:"due_day,omitempty"`
	StartDate      *string          `json:"start_date,omitempty"`
	CurrentBalance *decimal.Decimal `json:"current_balance,omitempty"`
}

// Apply copies the set fields of u onto d.
func (u DebtAccountUpdate) Apply(d *DebtAccount) {
	if u.Name != nil {
		d.Name = *u.Name
	}
	if u.Kind != nil {
		d.Kind = *u.Kind
	}
	if u.Principal != nil {
		d.Principal = *u.Principal
	}
	if u.InterestRate != nil {
		d.InterestRate = *u.InterestRate
	}
	if u.MinPayment != nil {
		d.MinPayment = *u.MinPayment
	}
	if u.DueDay != nil {
		d.DueDay = *u.DueDay
	}
	if u.StartDate != nil {
		d.StartDate = *u.StartDate
	}
	if u.CurrentBalance != nil {
		d.CurrentBalance = *u.CurrentBalance
	}
}
