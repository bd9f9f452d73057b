package planning

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/julianstephens/finlit/internal/constants"
	"github.com/julianstephens/finlit/internal/ledger"
	"github.com/julianstephens/finlit/internal/logger"
	"github.com/julianstephens/finlit/internal/models"
	"github.com/julianstephens/finlit/internal/money"
)

type ConfirmResult struct {
	Entry    models.ScheduleEntry `json:"entry"`
	Warnings []string             `json:"warnings"`
}

// Confirm marks an installment paid. With an account id it also records the
// expense in the ledger and links the transaction. The steps are separate
// writes: a ledger failure leaves the installment paid and is reported as a
// warning.
//
// Each step is a conditional statement, so overlapping confirmations of the
// same installment lower the balance once and record one expense. Only the
// call that flips the row to paid lowers the debt's balance by the planned
// principal. The transaction link is claimed before the expense is written;
// a call that finds it taken records nothing.
func (s *Service) Confirm(ctx context.Context, scheduleID string, accountID, categoryID *string) (ConfirmResult, error) {
	entry, err := s.store.GetSchedule(ctx, scheduleID)
	if err != nil {
		return ConfirmResult{}, err
	}
	debt, err := s.GetDebt(ctx, entry.DebtAccountID)
	if err != nil {
		return ConfirmResult{}, err
	}

	result := ConfirmResult{Warnings: []string{}}
	warn := func(msg string, err error) {
		logger.Warn(msg, "schedule_id", entry.ID, "error", err)
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v", msg, err))
	}

	flipped, err := s.store.MarkSchedulePaid(ctx, entry.ID)
	if err != nil {
		return ConfirmResult{}, err
	}
	if flipped {
		if err := s.store.ReduceDebtBalance(ctx, s.userID, debt.ID, entry.PlannedPrincipal, s.now()); err != nil {
			warn("current balance not updated", err)
		}
	} else {
		result.Warnings = append(result.Warnings, alreadyConfirmed)
	}

	if accountID != nil && *accountID != "" && s.ledger != nil {
		s.recordPayment(ctx, entry, debt, *accountID, categoryID, warn)
	}

	if fresh, err := s.store.GetSchedule(ctx, entry.ID); err == nil {
		entry = fresh
	} else {
		entry.IsPaid = true
	}
	result.Entry = entry
	return result, nil
}

const alreadyConfirmed = "installment was already confirmed"

func (s *Service) recordPayment(ctx context.Context, entry models.ScheduleEntry, debt models.DebtAccount, accountID string, categoryID *string, warn func(string, error)) {
	txID := uuid.NewString()
	claimed, err := s.store.ClaimScheduleTransaction(ctx, entry.ID, txID)
	if err != nil {
		warn("ledger transaction not recorded", err)
		return
	}
	if !claimed {
		// linked by an earlier or concurrent confirmation
		return
	}

	_, err = s.ledger.RecordExpense(ctx, ledger.ExpenseInput{
		ID:          txID,
		UserID:      s.userID,
		AccountID:   accountID,
		CategoryID:  categoryID,
		AmountCents: money.ToMinorUnits(entry.PlannedPayment),
		OccurredOn:  entry.DueDate,
		Description: constants.DebtReminderTitlePrefix + debt.Name,
	})
	if err != nil {
		warn("ledger transaction not recorded", err)
		if err := s.store.ReleaseScheduleTransaction(ctx, entry.ID, txID); err != nil {
			logger.Error("failed to release transaction link", "schedule_id", entry.ID, "transaction_id", txID, "error", err)
		}
	}
}

