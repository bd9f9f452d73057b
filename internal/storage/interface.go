package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/julianstephens/finlit/internal/models"
)

// DebtStore persists debt accounts. All queries are scoped to a user id.
type DebtStore interface {
	AddDebtAccount(ctx context.Context, debt models.DebtAccount) error
	GetDebtAccount(ctx context.Context, userID, id string) (models.DebtAccount, error)
	ListDebtAccounts(ctx context.Context, userID string) ([]models.DebtAccount, error)
	UpdateDebtAccount(ctx context.Context, debt models.DebtAccount) error
	// ReduceDebtBalance subtracts amount from the current balance in one
	// statement, flooring at zero.
	ReduceDebtBalance(ctx context.Context, userID, id string, amount decimal.Decimal, at time.Time) error
	// DeleteDebtAccount removes the debt and, by cascade, its schedule.
	DeleteDebtAccount(ctx context.Context, userID, id string) error
}

// ScheduleStore persists projected installments.
type ScheduleStore interface {
	ScheduleExists(ctx context.Context, debtAccountID, dueDate string) (bool, error)
	// InsertSchedule reports false without error when a row for the same
	// (debt account, due date) already exists.
	InsertSchedule(ctx context.Context, entry models.ScheduleEntry) (bool, error)
	GetSchedule(ctx context.Context, id string) (models.ScheduleEntry, error)
	// ListSchedules returns entries ordered by due date ascending.
	ListSchedules(ctx context.Context, debtAccountID string) ([]models.ScheduleEntry, error)
	// MarkSchedulePaid flips an unpaid row to paid and reports whether this
	// call did the flip.
	MarkSchedulePaid(ctx context.Context, id string) (bool, error)
	// ClaimScheduleTransaction links transactionID only when the row has no
	// transaction yet, and reports whether the link was made.
	ClaimScheduleTransaction(ctx context.Context, id, transactionID string) (bool, error)
	// ReleaseScheduleTransaction clears the link if it still points at
	// transactionID.
	ReleaseScheduleTransaction(ctx context.Context, id, transactionID string) error
}

// ReminderStore persists reminders and their audit log.
type ReminderStore interface {
	AddReminder(ctx context.Context, reminder models.Reminder) error
	GetReminder(ctx context.Context, userID, id string) (models.Reminder, error)
	// ListReminders orders by next fire time (unset last), then newest first.
	ListReminders(ctx context.Context, userID string) ([]models.Reminder, error)
	// UpdateReminder overwrites every mutable column.
	UpdateReminder(ctx context.Context, reminder models.Reminder) error
	DeleteReminder(ctx context.Context, userID, id string) error
	// GetDueReminders returns scheduled or snoozed reminders whose next fire
	// time is at or before now, earliest first.
	GetDueReminders(ctx context.Context, userID string, now time.Time) ([]models.Reminder, error)

	AddReminderLog(ctx context.Context, entry models.ReminderLog) error
	// ListReminderLogs returns entries oldest first.
	ListReminderLogs(ctx context.Context, reminderID string) ([]models.ReminderLog, error)
}

// LedgerStore is the single ledger write the payment bridge needs.
type LedgerStore interface {
	AddTransaction(ctx context.Context, tx models.Transaction) error
	GetTransaction(ctx context.Context, id string) (models.Transaction, error)
}

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	// Migrate applies pending migrations without requiring Load.
	Migrate(logFn func(string)) (int, error)
	SchemaVersion() (current, latest uint, dirty bool, err error)

	DebtStore
	ScheduleStore
	ReminderStore
	LedgerStore

	// Utils
	GetConfigPath() string
	GetDB() *sql.DB
	Ping(ctx context.Context) error
}
