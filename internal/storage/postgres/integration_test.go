package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/julianstephens/finlit/internal/errors"
	"github.com/julianstephens/finlit/internal/models"
	"github.com/julianstephens/finlit/internal/recurrence"
)

// Set POSTGRES_TEST_URL to run, e.g.
// POSTGRES_TEST_URL="postgres://finlit@localhost:5432/finlit_test?sslmode=disable"
func TestStore_Integration(t *testing.T) {
	connStr := os.Getenv("POSTGRES_TEST_URL")
	if connStr == "" {
		t.Skip("POSTGRES_TEST_URL not set, skipping PostgreSQL integration test")
	}

	ctx := context.Background()
	store := New(connStr)
	require.NoError(t, store.Init())
	defer store.Close()

	userID := "it-" + uuid.NewString()
	now := time.Now().UTC().Truncate(time.Second)

	debt := models.DebtAccount{
		ID:             uuid.NewString(),
		UserID:         userID,
		Name:           "Integration loan",
		Kind:           models.DebtKindLoan,
		Principal:      decimal.NewFromInt(1200),
		InterestRate:   decimal.NewFromInt(12),
		MinPayment:     decimal.NewFromInt(110),
		DueDay:         15,
		StartDate:      "2026-01-01",
		CurrentBalance: decimal.NewFromInt(1200),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, store.AddDebtAccount(ctx, debt))
	defer store.DeleteDebtAccount(ctx, userID, debt.ID)

	t.Run("Debts", func(t *testing.T) {
		got, err := store.GetDebtAccount(ctx, userID, debt.ID)
		require.NoError(t, err)
		assert.Equal(t, "2026-01-01", got.StartDate)
		assert.True(t, got.CurrentBalance.Equal(debt.CurrentBalance))
	})

	t.Run("Schedules", func(t *testing.T) {
		entry := models.ScheduleEntry{
			ID:               uuid.NewString(),
			DebtAccountID:    debt.ID,
			DueDate:          "2026-03-15",
			PlannedPayment:   decimal.NewFromInt(110),
			PlannedInterest:  decimal.NewFromInt(12),
			PlannedPrincipal: decimal.NewFromInt(98),
			CreatedAt:        now,
		}
		inserted, err := store.InsertSchedule(ctx, entry)
		require.NoError(t, err)
		assert.True(t, inserted)

		entry.ID = uuid.NewString()
		inserted, err = store.InsertSchedule(ctx, entry)
		require.NoError(t, err)
		assert.False(t, inserted)

		list, err := store.ListSchedules(ctx, debt.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "2026-03-15", list[0].DueDate)
	})

	t.Run("Reminders", func(t *testing.T) {
		next := now.Add(-time.Minute)
		r := models.Reminder{
			ID:         uuid.NewString(),
			UserID:     userID,
			Title:      "Integration reminder",
			DueAt:      next,
			Recurrence: recurrence.Monthly,
			NextFireAt: &next,
			Channel:    models.ChannelToast,
			Status:     models.ReminderScheduled,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		require.NoError(t, store.AddReminder(ctx, r))

		due, err := store.GetDueReminders(ctx, userID, now)
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, recurrence.Monthly, due[0].Recurrence)

		require.NoError(t, store.AddReminderLog(ctx, models.ReminderLog{
			ID: uuid.NewString(), ReminderID: r.ID, Action: models.ActionCreated, CreatedAt: now,
		}))
		require.NoError(t, store.DeleteReminder(ctx, userID, r.ID))
		_, err = store.GetReminder(ctx, userID, r.ID)
		assert.True(t, apperr.IsNotFound(err))

		logs, err := store.ListReminderLogs(ctx, r.ID)
		require.NoError(t, err)
		assert.Len(t, logs, 1)
	})
}
