package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/finlit/internal/cli"
	"github.com/julianstephens/finlit/internal/logger"
	"github.com/julianstephens/finlit/internal/storage/sqlite"
)

type MigrateCmd struct {
	NoBackup bool `help:"Skip the backup taken before migrating."`
}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	if !c.NoBackup {
		c.backupFirst(ctx)
	}

	count, err := ctx.Store.Migrate(func(msg string) {
		fmt.Fprintln(ctx.Out, msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		fmt.Fprintln(ctx.Out, "No migrations to apply. Database is up to date.")
	} else {
		fmt.Fprintf(ctx.Out, "\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}

// backupFirst snapshots an existing SQLite database. A failed snapshot
// does not block the migration.
func (c *MigrateCmd) backupFirst(ctx *cli.Context) {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return
	}
	if _, err := os.Stat(ctx.Store.GetConfigPath()); err != nil {
		return
	}
	mgr, err := backupManager(ctx)
	if err != nil {
		return
	}
	path, err := mgr.Create()
	if err != nil {
		logger.Warn("pre-migration backup failed", "error", err)
		fmt.Fprintf(ctx.Out, "⚠ Could not back up the database: %v\n", err)
		return
	}
	fmt.Fprintf(ctx.Out, "Backed up database to %s\n", filepath.Base(path))
}
