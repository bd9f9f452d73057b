package debts

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/finlit/internal/cli"
	"github.com/julianstephens/finlit/internal/config"
	"github.com/julianstephens/finlit/internal/models"
	"github.com/julianstephens/finlit/internal/storage/sqlite"
)

var now = time.Date(2026, 4, 10, 8, 0, 0, 0, time.UTC)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	cfg := config.Defaults()
	cfg.Database.Path = filepath.Join(t.TempDir(), "finlit.db")

	store := sqlite.NewStore(cfg.Database.Path)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := cli.NewContext(cfg, store)
	ctx.Planning.Now = func() time.Time { return now }
	ctx.Reminders.Now = func() time.Time { return now }
	out := &bytes.Buffer{}
	ctx.Out = out
	return ctx, out
}

func answer(t *testing.T, yes bool) *int {
	t.Helper()
	asked := 0
	old := cli.Confirm
	cli.Confirm = func(string, string) (bool, error) {
		asked++
		return yes, nil
	}
	t.Cleanup(func() { cli.Confirm = old })
	return &asked
}

func months(n int) *int { return &n }

func addCard(t *testing.T, ctx *cli.Context) models.DebtAccount {
	t.Helper()
	cmd := &DebtAddCmd{Name: "Card", Kind: "credit_card", Principal: "1200", Rate: "12", MinPayment: "110", DueDay: 15}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("debt add failed: %v", err)
	}
	list, err := ctx.Planning.ListDebts(context.Background())
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one debt, got %d (%v)", len(list), err)
	}
	return list[0]
}

func TestDebtAddAndList(t *testing.T) {
	ctx, out := setupTestContext(t)
	d := addCard(t, ctx)

	if d.StartDate != "2026-04-10" {
		t.Errorf("StartDate = %q, want today", d.StartDate)
	}
	if !strings.Contains(out.String(), "Added debt: Card") {
		t.Errorf("unexpected output: %q", out.String())
	}

	out.Reset()
	if err := (&DebtListCmd{}).Run(ctx); err != nil {
		t.Fatalf("debt list failed: %v", err)
	}
	for _, want := range []string{"Card", "credit_card", "1200.00", "12%", "110.00"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("list output missing %q:\n%s", want, out.String())
		}
	}
}

func TestDebtAddRejectsBadInput(t *testing.T) {
	ctx, _ := setupTestContext(t)

	tests := []DebtAddCmd{
		{Name: "Bad", Kind: "other", Principal: "abc", Rate: "0", MinPayment: "10", DueDay: 1},
		{Name: "Bad", Kind: "other", Principal: "100", Rate: "0", MinPayment: "10", DueDay: 32},
		{Name: "Bad", Kind: "other", Principal: "100", Rate: "-1", MinPayment: "10", DueDay: 1},
	}
	for _, cmd := range tests {
		if err := cmd.Run(ctx); err == nil {
			t.Errorf("expected error for %+v", cmd)
		}
	}
}

func TestDebtListEmpty(t *testing.T) {
	ctx, out := setupTestContext(t)
	if err := (&DebtListCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No debts found.") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestDebtUpdate(t *testing.T) {
	ctx, _ := setupTestContext(t)
	d := addCard(t, ctx)

	cmd := &DebtUpdateCmd{ID: d.ID, Name: "Visa", MinPayment: "150", DueDay: 20}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("debt update failed: %v", err)
	}
	got, err := ctx.Planning.GetDebt(context.Background(), d.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Visa" || got.MinPayment.String() != "150" || got.DueDay != 20 {
		t.Errorf("update not applied: %+v", got)
	}
	if got.InterestRate.String() != "12" {
		t.Errorf("unset fields should be kept, rate = %s", got.InterestRate)
	}

	if err := (&DebtUpdateCmd{ID: d.ID, Rate: "x"}).Run(ctx); err == nil {
		t.Error("expected error for malformed rate")
	}
}

func TestScheduleGenerateMonths(t *testing.T) {
	ctx, out := setupTestContext(t)
	d := addCard(t, ctx)

	for _, n := range []int{0, -2} {
		if err := (&ScheduleGenerateCmd{ID: d.ID, Months: months(n)}).Run(ctx); err == nil {
			t.Errorf("--months %d should be rejected", n)
		}
	}

	out.Reset()
	if err := (&ScheduleGenerateCmd{ID: d.ID}).Run(ctx); err != nil {
		t.Fatalf("schedule generate failed: %v", err)
	}
	if !strings.Contains(out.String(), "Generated 6 installment(s)") {
		t.Errorf("omitted --months should use the configured default: %s", out.String())
	}
}

func TestScheduleGenerateShowAndPay(t *testing.T) {
	ctx, out := setupTestContext(t)
	d := addCard(t, ctx)
	out.Reset()

	if err := (&ScheduleGenerateCmd{ID: d.ID, Months: months(3)}).Run(ctx); err != nil {
		t.Fatalf("schedule generate failed: %v", err)
	}
	if !strings.Contains(out.String(), "Generated 3 installment(s)") {
		t.Errorf("unexpected output: %s", out.String())
	}
	for _, want := range []string{"2026-04-15", "2026-05-15", "2026-06-15", "12.00", "98.00"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("generate output missing %q", want)
		}
	}

	out.Reset()
	if err := (&ScheduleGenerateCmd{ID: d.ID, Months: months(3)}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "already up to date") {
		t.Errorf("second run should add nothing: %s", out.String())
	}

	entries, err := ctx.Planning.ListSchedule(context.Background(), d.ID)
	if err != nil || len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d (%v)", len(entries), err)
	}

	asked := answer(t, true)
	out.Reset()
	if err := (&DebtPayCmd{ScheduleID: entries[0].ID, Account: "acct-1"}).Run(ctx); err != nil {
		t.Fatalf("debt pay failed: %v", err)
	}
	if *asked != 1 {
		t.Errorf("expected one confirmation prompt, got %d", *asked)
	}
	if !strings.Contains(out.String(), "Confirmed payment of 110.00 due 2026-04-15") ||
		!strings.Contains(out.String(), "Ledger transaction:") {
		t.Errorf("unexpected output: %s", out.String())
	}

	out.Reset()
	if err := (&DebtShowCmd{ID: d.ID}).Run(ctx); err != nil {
		t.Fatalf("debt show failed: %v", err)
	}
	if !strings.Contains(out.String(), "Current balance: 1102.00") {
		t.Errorf("balance should drop by the paid principal:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "✓") {
		t.Errorf("paid installment not marked:\n%s", out.String())
	}

	out.Reset()
	if err := (&DebtPayCmd{ScheduleID: entries[0].ID, Yes: true}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "already confirmed") {
		t.Errorf("expected warning on second confirmation: %s", out.String())
	}
}

func TestDebtPayCancelled(t *testing.T) {
	ctx, out := setupTestContext(t)
	d := addCard(t, ctx)
	if err := (&ScheduleGenerateCmd{ID: d.ID, Months: months(1)}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	entries, _ := ctx.Planning.ListSchedule(context.Background(), d.ID)

	answer(t, false)
	out.Reset()
	if err := (&DebtPayCmd{ScheduleID: entries[0].ID}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Cancelled.") {
		t.Errorf("unexpected output: %q", out.String())
	}
	entries, _ = ctx.Planning.ListSchedule(context.Background(), d.ID)
	if entries[0].IsPaid {
		t.Error("cancelled payment must not be confirmed")
	}

	if err := (&DebtPayCmd{ScheduleID: entries[0].ID, Category: "debt", Yes: true}).Run(ctx); err == nil {
		t.Error("--category without --account should fail")
	}
}

func TestDebtDelete(t *testing.T) {
	ctx, _ := setupTestContext(t)
	d := addCard(t, ctx)

	answer(t, false)
	if err := (&DebtDeleteCmd{ID: d.ID}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := ctx.Planning.GetDebt(context.Background(), d.ID); err != nil {
		t.Errorf("debt should survive a declined prompt: %v", err)
	}

	if err := (&DebtDeleteCmd{ID: d.ID, Yes: true}).Run(ctx); err != nil {
		t.Fatalf("debt delete failed: %v", err)
	}
	if _, err := ctx.Planning.GetDebt(context.Background(), d.ID); err == nil {
		t.Error("debt should be deleted")
	}
	if err := (&DebtDeleteCmd{ID: d.ID, Yes: true}).Run(ctx); err == nil {
		t.Error("deleting an unknown debt should fail")
	}
}
