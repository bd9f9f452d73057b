package planning

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/julianstephens/finlit/internal/constants"
	apperr "github.com/julianstephens/finlit/internal/errors"
	"github.com/julianstephens/finlit/internal/logger"
	"github.com/julianstephens/finlit/internal/models"
	"github.com/julianstephens/finlit/internal/money"
	"github.com/julianstephens/finlit/internal/utils"
)

// GenerateResult holds the newly inserted installments and any best-effort
// step that failed along the way.
type GenerateResult struct {
	Entries  []models.ScheduleEntry `json:"entries"`
	Warnings []string               `json:"warnings"`
}

// Generate projects months installments for a debt, starting with this
// month unless its due day has passed. Months that already have a row are
// skipped without moving the projected balance, so repeated calls never
// duplicate an installment. The projected balance is not written back.
//
// A failed insert aborts the run; months inserted before it stay. Zero
// months means Options.MonthsAhead; the CLI and API only pass zero when the
// caller left the count out.
func (s *Service) Generate(ctx context.Context, debtID string, months int) (GenerateResult, error) {
	const op = "planning.Generate"
	if months < 0 {
		return GenerateResult{}, apperr.Validation(op, "months ahead cannot be negative, got %d", months)
	}
	if months == 0 {
		months = s.opts.MonthsAhead
	}

	debt, err := s.GetDebt(ctx, debtID)
	if err != nil {
		return GenerateResult{}, err
	}

	result := GenerateResult{Entries: []models.ScheduleEntry{}, Warnings: []string{}}
	rate := money.MonthlyRate(debt.InterestRate)
	balance := debt.CurrentBalance
	now := s.now()
	cursor := utils.FirstDueMonth(utils.Today(now), debt.DueDay)

	for i := 0; i < months; i, cursor = i+1, utils.NextMonth(cursor) {
		dueDate := utils.FormatDate(utils.DueDateIn(cursor, debt.DueDay, s.opts.Overflow))

		exists, err := s.store.ScheduleExists(ctx, debt.ID, dueDate)
		if err != nil {
			return GenerateResult{}, err
		}
		if exists {
			logger.Debug("Schedule month already generated", "debt_id", debt.ID, "due_date", dueDate)
			continue
		}

		interest := money.NonNegative(money.RoundCents(balance.Mul(rate)))
		payment := debt.MinPayment
		principal := money.NonNegative(payment.Sub(interest))

		entry := models.ScheduleEntry{
			ID:               uuid.NewString(),
			DebtAccountID:    debt.ID,
			DueDate:          dueDate,
			PlannedPayment:   payment,
			PlannedInterest:  interest,
			PlannedPrincipal: principal,
			CreatedAt:        now,
		}
		inserted, err := s.store.InsertSchedule(ctx, entry)
		if err != nil {
			return GenerateResult{}, err
		}
		if !inserted {
			// Another writer claimed this month between the check and the insert.
			continue
		}
		balance = money.NonNegative(balance.Sub(principal))
		result.Entries = append(result.Entries, entry)

		if warning := s.addCompanion(ctx, debt, entry); warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
	}

	logger.Info("Generated debt schedule", "debt_id", debt.ID, "count", len(result.Entries), "warnings", len(result.Warnings))
	return result, nil
}

// addCompanion creates the installment's reminder and returns a warning
// instead of an error; the schedule row is authoritative.
func (s *Service) addCompanion(ctx context.Context, debt models.DebtAccount, entry models.ScheduleEntry) string {
	if s.companions == nil {
		return ""
	}
	dueAt, err := utils.CombineDateAndHour(entry.DueDate, s.opts.ReminderHour)
	if err != nil {
		return fmt.Sprintf("reminder for %s not created: %v", entry.DueDate, err)
	}
	amount := money.ToMinorUnits(entry.PlannedPayment)
	_, err = s.companions.CreateForSchedule(ctx, models.ReminderInput{
		Title:       constants.DebtReminderTitlePrefix + debt.Name,
		Description: "Pay by " + entry.DueDate,
		AmountCents: &amount,
		DueAt:       dueAt,
		Channel:     models.ChannelToast,
	}, entry.ID)
	if err != nil {
		logger.Warn("Companion reminder failed", "debt_id", debt.ID, "schedule_id", entry.ID, "error", err)
		return fmt.Sprintf("reminder for %s not created: %v", entry.DueDate, err)
	}
	return ""
}
