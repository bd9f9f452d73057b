package system

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/julianstephens/finlit/internal/models"
)

func TestInitCmd_Success(t *testing.T) {
	ctx, out, dbPath := newTestContext(t)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init command failed: %v", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file was not created at %s", dbPath)
	}
	if !strings.Contains(out.String(), "Initialized finlit storage") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestInitCmd_Idempotent(t *testing.T) {
	ctx, _, _ := newTestContext(t)
	cmd := &InitCmd{}

	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("second init failed (should be idempotent): %v", err)
	}
}

func TestInitCmd_ForceDeletesExisting(t *testing.T) {
	ctx, out, _ := newTestContext(t)
	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("initial init failed: %v", err)
	}

	_, err := ctx.Planning.AddDebt(context.Background(), models.DebtAccountInput{
		Name:       "Card",
		Principal:  decimal.NewFromInt(500),
		MinPayment: decimal.NewFromInt(50),
		DueDay:     1,
	})
	if err != nil {
		t.Fatalf("failed to add debt: %v", err)
	}

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("force init failed: %v", err)
	}
	if !strings.Contains(out.String(), "Deleted existing database") {
		t.Errorf("expected deletion message, got %q", out.String())
	}

	debts, err := ctx.Planning.ListDebts(context.Background())
	if err != nil {
		t.Fatalf("list debts failed: %v", err)
	}
	if len(debts) != 0 {
		t.Errorf("expected a fresh database, found %d debts", len(debts))
	}
}

func TestInitCmd_ForceRejectsPostgres(t *testing.T) {
	ctx, _, _ := newTestContext(t)
	ctx.Config.Database.URL = "postgres://finlit@localhost:5432/finlit"

	if err := (&InitCmd{Force: true}).Run(ctx); err == nil {
		t.Error("expected --force to be rejected for PostgreSQL")
	}
}

func TestMigrateCmd_UpToDate(t *testing.T) {
	ctx, out, _ := newTestContext(t)
	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	out.Reset()

	if err := (&MigrateCmd{}).Run(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !strings.Contains(out.String(), "up to date") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestMigrateCmd_FreshDatabase(t *testing.T) {
	ctx, out, _ := newTestContext(t)

	if err := (&MigrateCmd{}).Run(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !strings.Contains(out.String(), "Successfully applied") {
		t.Errorf("unexpected output: %q", out.String())
	}
	if err := ctx.Store.Load(); err != nil {
		t.Errorf("store should load after migrate: %v", err)
	}
}
