package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/julianstephens/finlit/internal/logger"
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Opener returns a fresh connection pool. migrate closes the database it
// is handed, so the runner never borrows the store's own pool.
type Opener func() (*sql.DB, error)

// Runner manages database schema migrations
type Runner struct {
	open   Opener
	fs     fs.FS
	driver Driver
}

// NewRunner creates a runner over a directory of NNNNNN_name.{up,down}.sql files.
func NewRunner(open Opener, migrationFS fs.FS, driver Driver) *Runner {
	return &Runner{
		open:   open,
		fs:     migrationFS,
		driver: driver,
	}
}

func (r *Runner) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(r.fs, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	db, err := r.open()
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var instance database.Driver
	switch r.driver {
	case DriverSQLite:
		instance, err = sqlite.WithInstance(db, &sqlite.Config{})
	case DriverPostgres:
		instance, err = postgres.WithInstance(db, &postgres.Config{})
	default:
		err = fmt.Errorf("unsupported migration driver %q", r.driver)
	}
	if err != nil {
		db.Close()
		return nil, err
	}

	m, err := migrate.NewWithInstance("iofs", src, string(r.driver), instance)
	if err != nil {
		instance.Close()
		return nil, err
	}
	m.Log = migrateLogger{}
	return m, nil
}

// Versions lists the available migration versions in ascending order.
func (r *Runner) Versions() ([]uint, error) {
	src, err := iofs.New(r.fs, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}
	defer src.Close()

	var versions []uint
	v, err := src.First()
	for err == nil {
		versions = append(versions, v)
		v, err = src.Next(v)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return versions, nil
}

// GetLatestVersion returns the highest migration version available
func (r *Runner) GetLatestVersion() (uint, error) {
	versions, err := r.Versions()
	if err != nil {
		return 0, err
	}
	if len(versions) == 0 {
		return 0, nil
	}
	return versions[len(versions)-1], nil
}

// GetCurrentVersion returns the applied schema version, 0 for a fresh database.
func (r *Runner) GetCurrentVersion() (uint, bool, error) {
	m, err := r.newMigrate()
	if err != nil {
		return 0, false, err
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get current version: %w", err)
	}
	return version, dirty, nil
}

// ApplyMigrations applies all pending migrations up to the latest version
// and returns how many were applied.
func (r *Runner) ApplyMigrations(logFn func(string)) (int, error) {
	if logFn == nil {
		logFn = func(string) {}
	}

	versions, err := r.Versions()
	if err != nil {
		return 0, err
	}

	m, err := r.newMigrate()
	if err != nil {
		return 0, err
	}
	defer m.Close()

	before, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("failed to get current version: %w", err)
	}
	if dirty {
		return 0, fmt.Errorf("database schema is dirty at version %d, fix it manually before migrating", before)
	}

	start := time.Now()
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return 0, nil
		}
		return 0, fmt.Errorf("migration failed: %w", err)
	}

	applied := 0
	for _, v := range versions {
		if v > before {
			applied++
			logFn(fmt.Sprintf("  ✓ Migration %d applied", v))
		}
	}
	logFn(fmt.Sprintf("Applied %d migration(s) in %v", applied, time.Since(start).Round(time.Millisecond)))
	return applied, nil
}

// ValidateVersion checks if the database version is compatible with the application
func (r *Runner) ValidateVersion() error {
	current, dirty, err := r.GetCurrentVersion()
	if err != nil {
		return err
	}
	latest, err := r.GetLatestVersion()
	if err != nil {
		return err
	}

	switch {
	case dirty:
		return fmt.Errorf("database schema is dirty at version %d", current)
	case current > latest:
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d) - please upgrade the application", current, latest)
	case current < latest:
		return fmt.Errorf("database schema version (%d) is behind (%d) - run 'finlit migrate'", current, latest)
	}
	return nil
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	logger.Printf("migrate: "+format, v...)
}

func (migrateLogger) Verbose() bool { return false }
