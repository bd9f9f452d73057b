package main

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/finlit/internal/cli"
	"github.com/julianstephens/finlit/internal/cli/debts"
	"github.com/julianstephens/finlit/internal/cli/reminders"
	"github.com/julianstephens/finlit/internal/cli/system"
	"github.com/julianstephens/finlit/internal/config"
	"github.com/julianstephens/finlit/internal/constants"
	apperr "github.com/julianstephens/finlit/internal/errors"
	"github.com/julianstephens/finlit/internal/logger"
	"github.com/julianstephens/finlit/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `short:"c" type:"path" help:"Config file (TOML). Defaults to ~/.config/finlit/config.toml."`
	DB      string `name:"db" placeholder:"TARGET" help:"Storage target: a SQLite path, a PostgreSQL URL without a password, or 'keyring'. Overrides the config file."`
	Debug   bool   `help:"Log debug output to stderr."`

	Init     system.InitCmd        `cmd:"" help:"Initialize finlit storage."`
	Migrate  system.MigrateCmd     `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd      `cmd:"" help:"Run health checks and diagnostics."`
	Validate system.ValidateCmd    `cmd:"" help:"Check debts, installments and reminders for conflicts."`
	Keyring  system.KeyringCmd     `cmd:"" help:"Manage secrets in the OS keyring."`
	Backup   system.BackupCmd      `cmd:"" help:"Manage SQLite database backups."`
	Debt     debts.DebtCmd         `cmd:"" help:"Manage debt accounts and repayment schedules."`
	Reminder reminders.ReminderCmd `cmd:"" help:"Manage reminders."`
	Run      system.RunCmd         `cmd:"" help:"Run the reminder poller in the foreground."`
	Serve    system.ServeCmd       `cmd:"" help:"Serve the HTTP API."`
	Watch    system.WatchCmd       `cmd:"" help:"Open the interactive reminder view." default:"1"`
}

// Commands that manage storage or secrets themselves and must run against
// a store that is not loaded yet.
var unloaded = map[string]bool{
	"init":    true,
	"migrate": true,
	"doctor":  true,
	"keyring": true,
	"backup":  true,
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Recurring payments, debt schedules and due reminders"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	apperr.Fatal(run(ctx))
}

func run(ctx *kong.Context) error {
	command := strings.Fields(ctx.Command())[0]

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	if command != "doctor" {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}

	if err := logger.Init(logger.Config{
		Debug: cfg.Log.Debug || CLI.Debug,
		Level: cfg.Log.Level,
		Dir:   cfg.Log.Dir,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if CLI.DB != "" {
		if CLI.DB == storage.KeyringTarget || storage.IsPostgres(CLI.DB) {
			cfg.Database.URL = CLI.DB
		} else {
			cfg.Database.URL = ""
			cfg.Database.Path = CLI.DB
		}
	}
	store, err := storage.New(cfg.Database.Target())
	if err != nil {
		return err
	}
	defer store.Close()

	if !unloaded[command] {
		if err := store.Load(); err != nil {
			return err
		}
	}

	return ctx.Run(cli.NewContext(cfg, store))
}
