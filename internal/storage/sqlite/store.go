package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/finlit/internal/constants"
	"github.com/julianstephens/finlit/internal/logger"
	"github.com/julianstephens/finlit/internal/migration"
	"github.com/julianstephens/finlit/internal/utils"
	"github.com/julianstephens/finlit/migrations"
)

type Store struct {
	path string
	db   *sql.DB
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
	}
}

// dsn enables foreign keys (schedule cascade) and waits on locks held by
// the poller instead of failing with SQLITE_BUSY.
func (s *Store) dsn() string {
	return s.path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func (s *Store) openDB() (*sql.DB, error) {
	return sql.Open("sqlite", s.dsn())
}

func (s *Store) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := s.openDB()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if err := s.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
	}

	db, err := s.openDB()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if err := s.migrationRunner().ValidateVersion(); err != nil {
		return err
	}

	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *Store) migrationRunner() *migration.Runner {
	// The sub directory is embedded at build time, fs.Sub cannot fail for it.
	subFS, _ := fs.Sub(migrations.FS, "sqlite")
	return migration.NewRunner(s.openDB, subFS, migration.DriverSQLite)
}

func (s *Store) runMigrations() error {
	_, err := s.migrationRunner().ApplyMigrations(func(msg string) {
		logger.Info(msg)
	})
	return err
}

// Migrate applies pending migrations and returns how many ran.
func (s *Store) Migrate(logFn func(string)) (int, error) {
	return s.migrationRunner().ApplyMigrations(logFn)
}

// SchemaVersion reports the applied and the newest embedded migration.
func (s *Store) SchemaVersion() (current, latest uint, dirty bool, err error) {
	if _, statErr := os.Stat(s.path); os.IsNotExist(statErr) {
		return 0, 0, false, fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
	}
	runner := s.migrationRunner()
	if current, dirty, err = runner.GetCurrentVersion(); err != nil {
		return 0, 0, false, err
	}
	latest, err = runner.GetLatestVersion()
	return current, latest, dirty, err
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// GetDB returns the underlying database connection.
// Returns nil if the database has not been initialized or loaded.
func (s *Store) GetDB() *sql.DB {
	return s.db
}

func (s *Store) Ping(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not loaded")
	}
	return s.db.PingContext(ctx)
}

func formatTime(t time.Time) string {
	return utils.FormatTimestamp(t)
}

func formatNullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return utils.FormatTimestamp(*t)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(constants.TimestampFormat, s)
}

func parseNullableTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullableInt64(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
