package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/julianstephens/finlit/internal/cli"
	"github.com/julianstephens/finlit/internal/config"
	"github.com/julianstephens/finlit/internal/constants"
	"github.com/julianstephens/finlit/internal/keyring"
	"github.com/julianstephens/finlit/internal/notifier"
	"github.com/julianstephens/finlit/internal/storage/sqlite"
	"github.com/julianstephens/finlit/internal/validation"
)

type DoctorCmd struct{}

type check struct {
	name string
	// needsDB checks are skipped when the database is unreachable.
	needsDB bool
	// gatesDB failures mark the database unreachable.
	gatesDB bool
	// warnOnly checks never fail the run.
	warnOnly bool
	run      func(ctx *cli.Context) error
}

var checks = []check{
	{name: "Configuration", run: checkConfig},
	{name: "Schema version", gatesDB: true, run: checkSchemaVersion},
	{name: "Database reachable", needsDB: true, gatesDB: true, run: checkDBReachable},
	{name: "Data integrity", needsDB: true, run: checkIntegrity},
	{name: "Repayment plans", needsDB: true, warnOnly: true, run: checkPlans},
	{name: "Backups present", needsDB: true, warnOnly: true, run: checkBackupsPresent},
	{name: "Notification sinks", warnOnly: true, run: checkSinks},
	{name: "OS keyring", warnOnly: true, run: checkKeyring},
	{name: "Clock/timezone", run: checkClockTimezone},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Fprintln(ctx.Out, "Running diagnostics...")
	fmt.Fprintln(ctx.Out)

	hasError := false
	dbReachable := true

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			fmt.Fprintf(ctx.Out, "⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Fprintf(ctx.Out, "✓ %s: OK\n", c.name)
		case c.warnOnly:
			fmt.Fprintf(ctx.Out, "⚠ %s: WARNING\n", c.name)
			fmt.Fprintf(ctx.Out, "   %v\n", err)
		default:
			fmt.Fprintf(ctx.Out, "❌ %s: FAIL\n", c.name)
			fmt.Fprintf(ctx.Out, "   Error: %v\n", err)
			hasError = true
			if c.gatesDB {
				dbReachable = false
			}
		}
	}

	fmt.Fprintln(ctx.Out)
	if hasError {
		fmt.Fprintln(ctx.Out, "Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Fprintln(ctx.Out, "All diagnostics passed!")
	return nil
}

func checkConfig(ctx *cli.Context) error {
	return ctx.Config.Validate()
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, dirty, err := ctx.Store.SchemaVersion()
	if err != nil {
		return err
	}
	switch {
	case dirty:
		return fmt.Errorf("schema is dirty at version %d", current)
	case current > latest:
		return fmt.Errorf("schema version %d is newer than supported version %d", current, latest)
	case current < latest:
		return fmt.Errorf("schema version %d is behind %d, run '%s migrate'", current, latest, constants.AppName)
	}
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return ctx.Store.Ping(pingCtx)
}

func describe(conflicts []validation.Conflict) error {
	if len(conflicts) == 0 {
		return nil
	}
	return fmt.Errorf("%d problem(s), run '%s validate' for details. First: %s",
		len(conflicts), constants.AppName, conflicts[0].Description)
}

func checkIntegrity(ctx *cli.Context) error {
	result, err := validate(ctx)
	if err != nil {
		return err
	}
	data, _ := splitConflicts(result)
	return describe(data)
}

func checkPlans(ctx *cli.Context) error {
	result, err := validate(ctx)
	if err != nil {
		return err
	}
	_, advisory := splitConflicts(result)
	return describe(advisory)
}

func checkBackupsPresent(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return nil
	}
	mgr, err := backupManager(ctx)
	if err != nil {
		return err
	}
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups in %s, run '%s backup'", mgr.Dir(), constants.AppName)
	}
	return nil
}

func referencedSinks(cfg config.NotifyConfig) map[string]bool {
	used := map[string]bool{}
	for _, s := range cfg.Default {
		used[s] = true
	}
	for _, names := range cfg.Channels {
		for _, s := range names {
			used[s] = true
		}
	}
	return used
}

func checkSinks(ctx *cli.Context) error {
	cfg := ctx.Config.Notify
	used := referencedSinks(cfg)
	var problems []error

	if used[config.SinkTray] {
		dir := cfg.Tray.LockfileDir
		if dir == "" {
			var err error
			if dir, err = notifier.TrayConfigDir(); err != nil {
				problems = append(problems, err)
			}
		}
		if dir != "" {
			if _, err := os.Stat(filepath.Join(dir, constants.NotifierLockfileName)); err != nil {
				problems = append(problems, fmt.Errorf("tray: %w", notifier.ErrTrayNotRunning))
			}
		}
	}
	if used[config.SinkRedis] && cfg.Redis.Addr == "" {
		problems = append(problems, errors.New("redis: notify.redis.addr is not set"))
	}
	if used[config.SinkAMQP] && cfg.AMQP.URL == "" && keyring.Lookup(keyring.SecretAMQPURL, "") == "" {
		problems = append(problems, errors.New("amqp: no URL in config or keyring"))
	}
	return errors.Join(problems...)
}

func checkKeyring(*cli.Context) error {
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	return nil
}

func checkClockTimezone(*cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
