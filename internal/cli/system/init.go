package system

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/finlit/internal/cli"
	"github.com/julianstephens/finlit/internal/constants"
	"github.com/julianstephens/finlit/internal/storage"
)

type InitCmd struct {
	Force bool `help:"Delete an existing SQLite database before initializing."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Initialized %s storage at: %s\n", constants.AppName, ctx.Store.GetConfigPath())
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	dbPath := ctx.Store.GetConfigPath()
	if storage.IsPostgres(ctx.Config.Database.Target()) || dbPath == "postgresql" {
		return errors.New("--force only applies to SQLite databases")
	}

	if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to access existing database: %w", err)
	}

	// Close first so the file is not held open on Windows.
	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing database: %w", err)
	}
	if err := os.Remove(dbPath); err != nil {
		return fmt.Errorf("failed to delete existing database: %w", err)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(dbPath + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete %s: %w", dbPath+suffix, err)
		}
	}
	fmt.Fprintf(ctx.Out, "Deleted existing database at: %s\n", dbPath)
	return nil
}
