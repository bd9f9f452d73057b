package system

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/julianstephens/finlit/internal/cli"
	"github.com/julianstephens/finlit/internal/config"
	"github.com/julianstephens/finlit/internal/storage/sqlite"
)

// newTestContext returns a context over an uninitialized SQLite file.
func newTestContext(t *testing.T) (*cli.Context, *bytes.Buffer, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "finlit.db")

	cfg := config.Defaults()
	cfg.Database.Path = dbPath
	cfg.Notify.Tray.LockfileDir = t.TempDir()

	store := sqlite.NewStore(dbPath)
	ctx := cli.NewContext(cfg, store)
	out := &bytes.Buffer{}
	ctx.Out = out

	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return ctx, out, dbPath
}
