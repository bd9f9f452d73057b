// Package validation finds inconsistencies across debts, their installments
// and reminders that the individual write paths cannot see.
package validation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/finlit/internal/models"
	"github.com/julianstephens/finlit/internal/money"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictDuplicateInstallment ConflictType = "duplicate_installment"
	ConflictInstallmentSplit     ConflictType = "installment_split"
	ConflictBeforeStart          ConflictType = "installment_before_start"
	ConflictNeverPaidOff         ConflictType = "never_paid_off"
	ConflictStuckReminder        ConflictType = "stuck_reminder"
	ConflictPaidButArmed         ConflictType = "paid_installment_reminder_armed"
	ConflictOrphanedSchedule     ConflictType = "orphaned_schedule"
)

// Advisory conflicts describe a plan that works but probably is not what
// the user wants. The rest mean stored data disagrees with itself.
func (t ConflictType) Advisory() bool {
	return t == ConflictNeverPaidOff || t == ConflictPaidButArmed
}

// Conflict represents one detected inconsistency.
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string   // YYYY-MM-DD, when one applies
	IDs         []string // debt, installment or reminder ids involved
}

// Snapshot is the data a validation pass reads.
type Snapshot struct {
	Debts     []models.DebtAccount
	Schedules map[string][]models.ScheduleEntry // by debt account id
	Reminders []models.Reminder
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}
	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, c := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", c.Description)
	}
	return b.String()
}

// Count returns how many conflicts of type t were found.
func (vr *ValidationResult) Count(t ConflictType) int {
	n := 0
	for _, c := range vr.Conflicts {
		if c.Type == t {
			n++
		}
	}
	return n
}

// Validator checks a Snapshot for conflicts.
type Validator struct {
	// Now is compared against pending fire times.
	Now func() time.Time
}

func New() *Validator {
	return &Validator{Now: time.Now}
}

func (v *Validator) Validate(s Snapshot) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}
	result.Conflicts = append(result.Conflicts, v.ValidateDebts(s.Debts, s.Schedules).Conflicts...)
	result.Conflicts = append(result.Conflicts, v.ValidateReminders(s.Reminders, s.Schedules).Conflicts...)
	return result
}

// ValidateDebts checks each debt and its installments.
func (v *Validator) ValidateDebts(debts []models.DebtAccount, schedules map[string][]models.ScheduleEntry) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	known := make(map[string]bool, len(debts))
	for _, d := range debts {
		known[d.ID] = true

		interest := money.RoundCents(d.CurrentBalance.Mul(money.MonthlyRate(d.InterestRate)))
		if d.CurrentBalance.IsPositive() && d.MinPayment.LessThanOrEqual(interest) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type: ConflictNeverPaidOff,
				Description: fmt.Sprintf("Debt \"%s\": minimum payment %s does not cover monthly interest %s",
					d.Name, money.Format(d.MinPayment), money.Format(interest)),
				IDs: []string{d.ID},
			})
		}

		seen := map[string]string{}
		for _, e := range schedules[d.ID] {
			if first, dup := seen[e.DueDate]; dup {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictDuplicateInstallment,
					Description: fmt.Sprintf("Debt \"%s\" has more than one installment due %s", d.Name, e.DueDate),
					Date:        e.DueDate,
					IDs:         []string{first, e.ID},
				})
			} else {
				seen[e.DueDate] = e.ID
			}

			if e.DueDate < d.StartDate {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictBeforeStart,
					Description: fmt.Sprintf("Debt \"%s\" has an installment due %s, before its start date %s", d.Name, e.DueDate, d.StartDate),
					Date:        e.DueDate,
					IDs:         []string{e.ID},
				})
			}

			// The split only adds up while interest stays below the payment.
			if e.PlannedInterest.LessThan(e.PlannedPayment) &&
				!e.PlannedInterest.Add(e.PlannedPrincipal).Equal(e.PlannedPayment) {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type: ConflictInstallmentSplit,
					Description: fmt.Sprintf("Installment %s of \"%s\": interest %s + principal %s != payment %s",
						e.DueDate, d.Name, money.Format(e.PlannedInterest), money.Format(e.PlannedPrincipal), money.Format(e.PlannedPayment)),
					Date: e.DueDate,
					IDs:  []string{e.ID},
				})
			}
		}
	}

	var orphans []string
	for debtID := range schedules {
		if !known[debtID] && len(schedules[debtID]) > 0 {
			orphans = append(orphans, debtID)
		}
	}
	sort.Strings(orphans)
	for _, id := range orphans {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictOrphanedSchedule,
			Description: fmt.Sprintf("%d installment(s) belong to unknown debt %s", len(schedules[id]), id),
			IDs:         []string{id},
		})
	}

	return result
}

// ValidateReminders checks reminder state against itself and against the
// installments companion reminders point at.
func (v *Validator) ValidateReminders(reminders []models.Reminder, schedules map[string][]models.ScheduleEntry) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	paid := map[string]bool{}
	for _, entries := range schedules {
		for _, e := range entries {
			if e.IsPaid {
				paid[e.ID] = true
			}
		}
	}

	for _, r := range reminders {
		active := r.Status == models.ReminderScheduled || r.Status == models.ReminderSnoozed
		if active && r.Recurrence.IsRecurring() && r.NextFireAt == nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictStuckReminder,
				Description: fmt.Sprintf("Reminder \"%s\" repeats %s but has no next fire time", r.Title, r.Recurrence.Label()),
				IDs:         []string{r.ID},
			})
		}
		if r.ScheduleID != nil && paid[*r.ScheduleID] && r.Armed() && r.NextFireAt.After(v.Now()) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictPaidButArmed,
				Description: fmt.Sprintf("Reminder \"%s\" will still fire although its installment is paid", r.Title),
				IDs:         []string{r.ID, *r.ScheduleID},
			})
		}
	}

	return result
}
