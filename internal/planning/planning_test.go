package planning

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/julianstephens/finlit/internal/errors"
	"github.com/julianstephens/finlit/internal/ledger"
	"github.com/julianstephens/finlit/internal/models"
	"github.com/julianstephens/finlit/internal/reminders"
	"github.com/julianstephens/finlit/internal/storage/sqlite"
	"github.com/julianstephens/finlit/internal/utils"
)

const userID = "user-1"

var now = time.Date(2026, 4, 10, 8, 0, 0, 0, time.UTC)

type fixture struct {
	store     *sqlite.Store
	svc       *Service
	reminders *reminders.Service
}

func newFixture(t *testing.T, companions Companions, l ledger.Ledger, opts Options) fixture {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "finlit.db"))
	require.NoError(t, store.Init())
	t.Cleanup(func() { store.Close() })

	rs := reminders.NewService(store, userID)
	rs.Now = func() time.Time { return now }
	if companions == nil {
		companions = rs
	}
	if l == nil {
		l = ledger.NewStoreLedger(store, "GBP")
	}
	svc := NewService(store, companions, l, userID, opts)
	svc.Now = func() time.Time { return now }
	return fixture{store: store, svc: svc, reminders: rs}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func addDebt(t *testing.T, svc *Service, principal, rate, payment string, dueDay int) models.DebtAccount {
	t.Helper()
	d, err := svc.AddDebt(context.Background(), models.DebtAccountInput{
		Name:         "Card",
		Kind:         models.DebtKindCreditCard,
		Principal:    dec(principal),
		InterestRate: dec(rate),
		MinPayment:   dec(payment),
		DueDay:       dueDay,
	})
	require.NoError(t, err)
	return d
}

type failingCompanions struct{}

func (failingCompanions) CreateForSchedule(context.Context, models.ReminderInput, string) (models.Reminder, error) {
	return models.Reminder{}, errors.New("reminder store offline")
}

type failingLedger struct{}

func (failingLedger) RecordExpense(context.Context, ledger.ExpenseInput) (string, error) {
	return "", errors.New("ledger locked")
}

func TestAddDebt(t *testing.T) {
	f := newFixture(t, nil, nil, DefaultOptions())
	d := addDebt(t, f.svc, "1200", "12", "110", 15)
	assert.True(t, d.CurrentBalance.Equal(dec("1200")))
	assert.Equal(t, "2026-04-10", d.StartDate)

	_, err := f.svc.AddDebt(context.Background(), models.DebtAccountInput{
		Name: "Bad", Kind: models.DebtKindLoan, DueDay: 32,
	})
	assert.True(t, apperr.IsValidation(err))

	_, err = f.svc.AddDebt(context.Background(), models.DebtAccountInput{
		Name: "Bad rate", Kind: models.DebtKindLoan, DueDay: 1, InterestRate: dec("-1"),
	})
	assert.True(t, apperr.IsValidation(err))
}

func TestUpdateAndDeleteDebt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil, DefaultOptions())
	d := addDebt(t, f.svc, "500", "0", "50", 1)

	name := "Overdraft"
	day := 0
	_, err := f.svc.UpdateDebt(ctx, d.ID, models.DebtAccountUpdate{DueDay: &day})
	assert.True(t, apperr.IsValidation(err))

	d, err = f.svc.UpdateDebt(ctx, d.ID, models.DebtAccountUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Overdraft", d.Name)

	require.NoError(t, f.svc.DeleteDebt(ctx, d.ID))
	assert.True(t, apperr.IsNotFound(f.svc.DeleteDebt(ctx, d.ID)))
	_, err = f.svc.ListSchedule(ctx, d.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestGenerateAmortization(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil, DefaultOptions())
	d := addDebt(t, f.svc, "1200", "12", "110", 15)

	res, err := f.svc.Generate(ctx, d.ID, 3)
	require.NoError(t, err)
	require.Len(t, res.Entries, 3)
	assert.Empty(t, res.Warnings)

	first := res.Entries[0]
	assert.Equal(t, "2026-04-15", first.DueDate)
	assert.True(t, first.PlannedInterest.Equal(dec("12.00")), first.PlannedInterest.String())
	assert.True(t, first.PlannedPrincipal.Equal(dec("98.00")))
	assert.True(t, first.PlannedPayment.Equal(dec("110")))

	// Month two accrues on the projected 1102.00.
	second := res.Entries[1]
	assert.True(t, second.PlannedInterest.Equal(dec("11.02")), second.PlannedInterest.String())
	assert.True(t, second.PlannedPrincipal.Equal(dec("98.98")))

	stored, err := f.svc.GetDebt(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, stored.CurrentBalance.Equal(dec("1200")), "generation does not persist the projection")
}

func TestGenerateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil, DefaultOptions())
	d := addDebt(t, f.svc, "1200", "12", "110", 15)

	_, err := f.svc.Generate(ctx, d.ID, 3)
	require.NoError(t, err)
	again, err := f.svc.Generate(ctx, d.ID, 3)
	require.NoError(t, err)
	assert.Empty(t, again.Entries)

	list, err := f.svc.ListSchedule(ctx, d.ID)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	rs, err := f.reminders.List(ctx)
	require.NoError(t, err)
	assert.Len(t, rs, 3, "no duplicate companion reminders")
}

func TestGenerateSkipsExistingMonthWithoutMovingBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil, DefaultOptions())
	d := addDebt(t, f.svc, "1200", "12", "110", 15)

	_, err := f.store.InsertSchedule(ctx, models.ScheduleEntry{
		ID: "manual", DebtAccountID: d.ID, DueDate: "2026-05-15", CreatedAt: now,
	})
	require.NoError(t, err)

	res, err := f.svc.Generate(ctx, d.ID, 3)
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, "2026-04-15", res.Entries[0].DueDate)
	assert.Equal(t, "2026-06-15", res.Entries[1].DueDate)
	assert.True(t, res.Entries[1].PlannedInterest.Equal(dec("11.02")))
}

func TestGenerateStartsNextMonthAfterDueDay(t *testing.T) {
	f := newFixture(t, nil, nil, DefaultOptions())
	d := addDebt(t, f.svc, "100", "0", "10", 5)

	res, err := f.svc.Generate(context.Background(), d.ID, 2)
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, "2026-05-05", res.Entries[0].DueDate)
	assert.Equal(t, "2026-06-05", res.Entries[1].DueDate)
}

func TestGenerateDefaultsMonths(t *testing.T) {
	f := newFixture(t, nil, nil, DefaultOptions())
	d := addDebt(t, f.svc, "1200", "12", "110", 15)

	res, err := f.svc.Generate(context.Background(), d.ID, 0)
	require.NoError(t, err)
	assert.Len(t, res.Entries, 6)

	_, err = f.svc.Generate(context.Background(), d.ID, -1)
	assert.True(t, apperr.IsValidation(err))
}

func TestGenerateDueDayOverflow(t *testing.T) {
	tests := []struct {
		mode utils.OverflowMode
		want []string
	}{
		{utils.OverflowFallback, []string{"2026-04-01", "2026-05-31", "2026-06-01"}},
		{utils.OverflowClamp, []string{"2026-04-30", "2026-05-31", "2026-06-30"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			opts := DefaultOptions()
			opts.Overflow = tt.mode
			f := newFixture(t, nil, nil, opts)
			d := addDebt(t, f.svc, "300", "0", "100", 31)

			res, err := f.svc.Generate(context.Background(), d.ID, 3)
			require.NoError(t, err)
			var got []string
			for _, e := range res.Entries {
				got = append(got, e.DueDate)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateNeverNegative(t *testing.T) {
	tests := []struct {
		name                     string
		principal, rate, payment string
	}{
		{"interest exceeds payment", "1000", "30", "5"},
		{"payment exceeds balance", "50", "12", "110"},
		{"zero rate", "250", "0", "100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, nil, DefaultOptions())
			d := addDebt(t, f.svc, tt.principal, tt.rate, tt.payment, 15)

			res, err := f.svc.Generate(context.Background(), d.ID, 12)
			require.NoError(t, err)
			balance := d.CurrentBalance
			for _, e := range res.Entries {
				assert.False(t, e.PlannedInterest.IsNegative())
				assert.False(t, e.PlannedPrincipal.IsNegative())
				balance = balance.Sub(e.PlannedPrincipal)
				if balance.IsNegative() {
					balance = decimal.Zero
				}
				assert.False(t, balance.IsNegative())
				assert.LessOrEqual(t, e.PlannedInterest.Exponent(), int32(0))
				assert.GreaterOrEqual(t, e.PlannedInterest.Exponent(), int32(-2))
			}
		})
	}
}

func TestGenerateCompanionReminders(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil, DefaultOptions())
	d := addDebt(t, f.svc, "1200", "12", "110", 15)

	res, err := f.svc.Generate(ctx, d.ID, 2)
	require.NoError(t, err)

	rs, err := f.reminders.List(ctx)
	require.NoError(t, err)
	require.Len(t, rs, 2)

	r := rs[0]
	assert.Equal(t, "Debt payment: Card", r.Title)
	assert.Equal(t, "Pay by 2026-04-15", r.Description)
	assert.Equal(t, models.ChannelToast, r.Channel)
	require.NotNil(t, r.AmountCents)
	assert.Equal(t, int64(11000), *r.AmountCents)
	assert.True(t, r.DueAt.Equal(time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC)))
	require.NotNil(t, r.ScheduleID)
	assert.Equal(t, res.Entries[0].ID, *r.ScheduleID)
}

func TestGenerateToleratesCompanionFailure(t *testing.T) {
	f := newFixture(t, failingCompanions{}, nil, DefaultOptions())
	d := addDebt(t, f.svc, "1200", "12", "110", 15)

	res, err := f.svc.Generate(context.Background(), d.ID, 3)
	require.NoError(t, err)
	assert.Len(t, res.Entries, 3)
	require.Len(t, res.Warnings, 3)
	assert.Contains(t, res.Warnings[0], "reminder store offline")
}

func TestGenerateUnknownDebt(t *testing.T) {
	f := newFixture(t, nil, nil, DefaultOptions())
	_, err := f.svc.Generate(context.Background(), "missing", 3)
	assert.True(t, apperr.IsNotFound(err))
}

func TestEndToEndConfirm(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil, DefaultOptions())
	d := addDebt(t, f.svc, "1200", "12", "110", 15)

	_, err := f.svc.Generate(ctx, d.ID, 3)
	require.NoError(t, err)
	list, err := f.svc.ListSchedule(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.True(t, list[0].DueDate < list[1].DueDate && list[1].DueDate < list[2].DueDate)

	account := "current-account"
	res, err := f.svc.Confirm(ctx, list[0].ID, &account, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.True(t, res.Entry.IsPaid)
	require.NotNil(t, res.Entry.TransactionID)

	tx, err := f.store.GetTransaction(ctx, *res.Entry.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, int64(11000), tx.AmountCents)
	assert.Equal(t, "2026-04-15", tx.OccurredOn)
	assert.Equal(t, "GBP", tx.Currency)

	stored, err := f.svc.GetDebt(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, stored.CurrentBalance.Equal(dec("1102")))

	again, err := f.svc.Confirm(ctx, list[0].ID, &account, nil)
	require.NoError(t, err)
	assert.Equal(t, *res.Entry.TransactionID, *again.Entry.TransactionID)
	assert.Equal(t, []string{"installment was already confirmed"}, again.Warnings)

	stored, err = f.svc.GetDebt(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, stored.CurrentBalance.Equal(dec("1102")), "balance moves once")
}

func TestConfirmWithoutAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil, DefaultOptions())
	d := addDebt(t, f.svc, "1200", "12", "110", 15)
	res, err := f.svc.Generate(ctx, d.ID, 1)
	require.NoError(t, err)

	out, err := f.svc.Confirm(ctx, res.Entries[0].ID, nil, nil)
	require.NoError(t, err)
	assert.True(t, out.Entry.IsPaid)
	assert.Nil(t, out.Entry.TransactionID)
}

func TestConfirmToleratesLedgerFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, failingLedger{}, DefaultOptions())
	d := addDebt(t, f.svc, "1200", "12", "110", 15)
	res, err := f.svc.Generate(ctx, d.ID, 1)
	require.NoError(t, err)

	account := "current-account"
	out, err := f.svc.Confirm(ctx, res.Entries[0].ID, &account, nil)
	require.NoError(t, err)
	assert.True(t, out.Entry.IsPaid)
	assert.Nil(t, out.Entry.TransactionID)
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "ledger locked")

	stored, err := f.store.GetSchedule(ctx, res.Entries[0].ID)
	require.NoError(t, err)
	assert.True(t, stored.IsPaid, "payment status is not rolled back")
}

// interleavingStore runs between once after the first GetSchedule, as a
// second request would between the read and the writes of a confirmation.
type interleavingStore struct {
	Store
	between func()
}

func (s *interleavingStore) GetSchedule(ctx context.Context, id string) (models.ScheduleEntry, error) {
	e, err := s.Store.GetSchedule(ctx, id)
	if f := s.between; f != nil {
		s.between = nil
		f()
	}
	return e, err
}

func TestConfirmOverlappingCallsRecordOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil, DefaultOptions())
	d := addDebt(t, f.svc, "1200", "12", "110", 15)
	gen, err := f.svc.Generate(ctx, d.ID, 1)
	require.NoError(t, err)
	id := gen.Entries[0].ID
	account := "current-account"

	var inner ConfirmResult
	wrapped := &interleavingStore{Store: f.store}
	wrapped.between = func() {
		var err error
		inner, err = f.svc.Confirm(ctx, id, &account, nil)
		require.NoError(t, err)
	}
	outerSvc := NewService(wrapped, f.reminders, ledger.NewStoreLedger(f.store, "GBP"), userID, DefaultOptions())
	outerSvc.Now = func() time.Time { return now }

	outer, err := outerSvc.Confirm(ctx, id, &account, nil)
	require.NoError(t, err)

	assert.Empty(t, inner.Warnings)
	require.NotNil(t, inner.Entry.TransactionID)
	assert.Equal(t, []string{"installment was already confirmed"}, outer.Warnings)
	require.NotNil(t, outer.Entry.TransactionID)
	assert.Equal(t, *inner.Entry.TransactionID, *outer.Entry.TransactionID)

	var rows int
	require.NoError(t, f.store.GetDB().QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&rows))
	assert.Equal(t, 1, rows, "one expense per installment")

	stored, err := f.svc.GetDebt(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, stored.CurrentBalance.Equal(dec("1102")), "got %s", stored.CurrentBalance)
}

func TestConfirmRetriesLedgerAfterFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, failingLedger{}, DefaultOptions())
	d := addDebt(t, f.svc, "1200", "12", "110", 15)
	gen, err := f.svc.Generate(ctx, d.ID, 1)
	require.NoError(t, err)
	account := "current-account"

	_, err = f.svc.Confirm(ctx, gen.Entries[0].ID, &account, nil)
	require.NoError(t, err)

	retry := NewService(f.store, f.reminders, ledger.NewStoreLedger(f.store, "GBP"), userID, DefaultOptions())
	retry.Now = func() time.Time { return now }
	out, err := retry.Confirm(ctx, gen.Entries[0].ID, &account, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"installment was already confirmed"}, out.Warnings)
	require.NotNil(t, out.Entry.TransactionID, "released link can be claimed again")
	_, err = f.store.GetTransaction(ctx, *out.Entry.TransactionID)
	require.NoError(t, err)
}

func TestConfirmUnknownSchedule(t *testing.T) {
	f := newFixture(t, nil, nil, DefaultOptions())
	_, err := f.svc.Confirm(context.Background(), "missing", nil, nil)
	assert.True(t, apperr.IsNotFound(err))
}
