package migration

import (
	"database/sql"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/finlit/migrations"
)

func sqliteOpener(t *testing.T) Opener {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	return func() (*sql.DB, error) {
		return sql.Open("sqlite", path)
	}
}

func embeddedSQLite(t *testing.T) fs.FS {
	t.Helper()
	sub, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		t.Fatalf("failed to access sqlite migrations: %v", err)
	}
	return sub
}

func TestApplyMigrationsFreshDatabase(t *testing.T) {
	open := sqliteOpener(t)
	runner := NewRunner(open, embeddedSQLite(t), DriverSQLite)

	var messages []string
	count, err := runner.ApplyMigrations(func(msg string) { messages = append(messages, msg) })
	if err != nil {
		t.Fatalf("ApplyMigrations() error = %v", err)
	}
	if count < 1 {
		t.Fatalf("expected at least one migration applied, got %d", count)
	}
	if len(messages) == 0 {
		t.Error("expected progress messages")
	}

	db, err := open()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	for _, table := range []string{"debt_accounts", "debt_payment_schedules", "reminders", "reminder_logs", "transactions"} {
		var n int
		if err := db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&n); err != nil {
			t.Fatal(err)
		}
		if n != 1 {
			t.Errorf("table %s missing after migration", table)
		}
	}

	if err := runner.ValidateVersion(); err != nil {
		t.Errorf("ValidateVersion() after migrating = %v", err)
	}
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	runner := NewRunner(sqliteOpener(t), embeddedSQLite(t), DriverSQLite)

	if _, err := runner.ApplyMigrations(nil); err != nil {
		t.Fatalf("first ApplyMigrations() error = %v", err)
	}
	count, err := runner.ApplyMigrations(nil)
	if err != nil {
		t.Fatalf("second ApplyMigrations() error = %v", err)
	}
	if count != 0 {
		t.Errorf("expected no migrations on second run, got %d", count)
	}
}

func TestValidateVersionBehind(t *testing.T) {
	runner := NewRunner(sqliteOpener(t), embeddedSQLite(t), DriverSQLite)
	if err := runner.ValidateVersion(); err == nil {
		t.Fatal("expected error for unmigrated database")
	}
}

func TestVersionsAndIncrementalApply(t *testing.T) {
	fsys := fstest.MapFS{
		"000001_a.up.sql":   {Data: []byte("CREATE TABLE a (id INTEGER);")},
		"000001_a.down.sql": {Data: []byte("DROP TABLE a;")},
		"000002_b.up.sql":   {Data: []byte("CREATE TABLE b (id INTEGER);")},
		"000002_b.down.sql": {Data: []byte("DROP TABLE b;")},
	}
	open := sqliteOpener(t)
	runner := NewRunner(open, fsys, DriverSQLite)

	versions, err := runner.Versions()
	if err != nil {
		t.Fatalf("Versions() error = %v", err)
	}
	if len(versions) != 2 || versions[0] != 1 || versions[1] != 2 {
		t.Fatalf("Versions() = %v", versions)
	}

	count, err := runner.ApplyMigrations(nil)
	if err != nil || count != 2 {
		t.Fatalf("ApplyMigrations() = %d, %v", count, err)
	}

	fsys["000003_c.up.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLE c (id INTEGER);")}
	fsys["000003_c.down.sql"] = &fstest.MapFile{Data: []byte("DROP TABLE c;")}
	if err := runner.ValidateVersion(); err == nil {
		t.Error("expected ValidateVersion() to report a pending migration")
	}
	count, err = runner.ApplyMigrations(nil)
	if err != nil || count != 1 {
		t.Fatalf("incremental ApplyMigrations() = %d, %v", count, err)
	}

	current, dirty, err := runner.GetCurrentVersion()
	if err != nil || dirty || current != 3 {
		t.Errorf("GetCurrentVersion() = %d, %v, %v", current, dirty, err)
	}
}

func TestPostgresMigrations(t *testing.T) {
	connStr := os.Getenv("POSTGRES_TEST_URL")
	if connStr == "" {
		t.Skip("POSTGRES_TEST_URL not set, skipping PostgreSQL integration test")
	}

	sub, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(func() (*sql.DB, error) { return sql.Open("postgres", connStr) }, sub, DriverPostgres)
	if _, err := runner.ApplyMigrations(nil); err != nil {
		t.Fatalf("ApplyMigrations() error = %v", err)
	}
	if err := runner.ValidateVersion(); err != nil {
		t.Errorf("ValidateVersion() = %v", err)
	}
}
