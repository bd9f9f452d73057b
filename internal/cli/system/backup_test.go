package system

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/julianstephens/finlit/internal/cli"
	"github.com/julianstephens/finlit/internal/models"
)

func TestBackupCreateListRestore(t *testing.T) {
	ctx, out, dbPath := newTestContext(t)
	if err := ctx.Store.Init(); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No backups found.") {
		t.Errorf("unexpected output: %q", out.String())
	}

	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup create failed: %v", err)
	}
	if !strings.Contains(out.String(), "Backup created: finlit-") {
		t.Errorf("unexpected output: %q", out.String())
	}
	entries, err := os.ReadDir(filepath.Join(filepath.Dir(dbPath), "backups"))
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one backup file, got %d (%v)", len(entries), err)
	}
	snapshot := entries[0].Name()

	out.Reset()
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), snapshot) {
		t.Errorf("list output missing %s:\n%s", snapshot, out.String())
	}

	if _, err := ctx.Planning.AddDebt(context.Background(), models.DebtAccountInput{
		Name:       "Card",
		Kind:       models.DebtKindCreditCard,
		Principal:  decimal.NewFromInt(500),
		MinPayment: decimal.NewFromInt(50),
		DueDay:     1,
	}); err != nil {
		t.Fatal(err)
	}

	old := cli.Confirm
	cli.Confirm = func(string, string) (bool, error) { return false, nil }
	t.Cleanup(func() { cli.Confirm = old })

	out.Reset()
	if err := (&BackupRestoreCmd{File: snapshot}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Restore cancelled.") {
		t.Errorf("unexpected output: %q", out.String())
	}

	out.Reset()
	if err := (&BackupRestoreCmd{File: snapshot, Yes: true}).Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if !strings.Contains(out.String(), "Restored database from "+snapshot) {
		t.Errorf("unexpected output: %q", out.String())
	}

	if err := ctx.Store.Load(); err != nil {
		t.Fatal(err)
	}
	debts, err := ctx.Planning.ListDebts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(debts) != 0 {
		t.Errorf("restored database should predate the debt, got %d debts", len(debts))
	}
}

func TestBackupRestoreUnknownFile(t *testing.T) {
	ctx, _, _ := newTestContext(t)
	if err := (&BackupRestoreCmd{File: "finlit-19990101-000000.db", Yes: true}).Run(ctx); err == nil {
		t.Error("expected error for an unknown backup")
	}
}
