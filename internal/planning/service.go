package planning

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/finlit/internal/constants"
	"github.com/julianstephens/finlit/internal/ledger"
	"github.com/julianstephens/finlit/internal/models"
	"github.com/julianstephens/finlit/internal/storage"
	"github.com/julianstephens/finlit/internal/utils"
)

// Store is the storage the planner needs.
type Store interface {
	storage.DebtStore
	storage.ScheduleStore
}

// Companions creates the reminder that accompanies a generated installment.
type Companions interface {
	CreateForSchedule(ctx context.Context, in models.ReminderInput, scheduleID string) (models.Reminder, error)
}

type Options struct {
	// Overflow resolves due days a month does not have.
	Overflow utils.OverflowMode
	// ReminderHour is the UTC hour companion reminders fire on the due date.
	ReminderHour int
	// MonthsAhead is used when Generate is called with zero months.
	MonthsAhead int
}

func DefaultOptions() Options {
	return Options{
		Overflow:     utils.OverflowFallback,
		ReminderHour: constants.DefaultReminderHour,
		MonthsAhead:  constants.DefaultMonthsAhead,
	}
}

type Service struct {
	store      Store
	companions Companions
	ledger     ledger.Ledger
	userID     string
	opts       Options

	Now func() time.Time
}

func NewService(store Store, companions Companions, l ledger.Ledger, userID string, opts Options) *Service {
	if opts.MonthsAhead <= 0 {
		opts.MonthsAhead = constants.DefaultMonthsAhead
	}
	if opts.Overflow == "" {
		opts.Overflow = utils.OverflowFallback
	}
	return &Service{
		store:      store,
		companions: companions,
		ledger:     l,
		userID:     userID,
		opts:       opts,
		Now:        utils.Now,
	}
}

func (s *Service) now() time.Time {
	return utils.Normalize(s.Now())
}

// AddDebt creates a debt account. The current balance starts at the
// principal and only moves when payments are confirmed.
func (s *Service) AddDebt(ctx context.Context, in models.DebtAccountInput) (models.DebtAccount, error) {
	now := s.now()
	start := in.StartDate
	if start == "" {
		start = utils.FormatDate(now)
	}
	d := models.DebtAccount{
		ID:             uuid.NewString(),
		UserID:         s.userID,
		Name:           strings.TrimSpace(in.Name),
		Kind:           in.Kind,
		Principal:      in.Principal,
		InterestRate:   in.InterestRate,
		MinPayment:     in.MinPayment,
		DueDay:         in.DueDay,
		StartDate:      start,
		CurrentBalance: in.Principal,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if d.Kind == "" {
		d.Kind = models.DebtKindOther
	}
	if err := s.store.AddDebtAccount(ctx, d); err != nil {
		return models.DebtAccount{}, err
	}
	return d, nil
}

func (s *Service) GetDebt(ctx context.Context, id string) (models.DebtAccount, error) {
	return s.store.GetDebtAccount(ctx, s.userID, id)
}

func (s *Service) ListDebts(ctx context.Context) ([]models.DebtAccount, error) {
	return s.store.ListDebtAccounts(ctx, s.userID)
}

func (s *Service) UpdateDebt(ctx context.Context, id string, u models.DebtAccountUpdate) (models.DebtAccount, error) {
	d, err := s.GetDebt(ctx, id)
	if err != nil {
		return models.DebtAccount{}, err
	}
	u.Apply(&d)
	d.Name = strings.TrimSpace(d.Name)
	d.UpdatedAt = s.now()
	if err := s.store.UpdateDebtAccount(ctx, d); err != nil {
		return models.DebtAccount{}, err
	}
	return d, nil
}

// DeleteDebt removes the account and its schedule. Companion reminders
// stay, unlinked.
func (s *Service) DeleteDebt(ctx context.Context, id string) error {
	return s.store.DeleteDebtAccount(ctx, s.userID, id)
}

// ListSchedule returns a debt's installments in due date order.
func (s *Service) ListSchedule(ctx context.Context, debtID string) ([]models.ScheduleEntry, error) {
	if _, err := s.GetDebt(ctx, debtID); err != nil {
		return nil, err
	}
	return s.store.ListSchedules(ctx, debtID)
}
