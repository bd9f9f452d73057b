package constants

import "time"

const (
	AppName             = "finlit"
	DefaultKeyringUser  = "database-connection"
	DefaultDatabasePath = "~/.config/finlit/finlit.db"
	DefaultUserID       = "seed-user"
	Version             = "v0.1.0"

	// EnvPrefix is the prefix for environment overrides (FINLIT_LOG_DEBUG, ...).
	EnvPrefix = "FINLIT"

	// Reminder poller
	DefaultPollInterval  = 60 * time.Second
	DefaultSnoozeMinutes = 10
	NotificationEvent    = "notification:prepared"

	// Schedule generation
	DefaultMonthsAhead      = 6
	DefaultReminderHour     = 9
	DebtReminderTitlePrefix = "Debt payment: "

	// Ledger
	DefaultCurrency        = "GBP"
	TransactionTypeExpense = "expense"

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "finlit-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.finlit"
	TrayExecutablePrefix   = "finlit-tray"

	DefaultAMQPExchange   = "finlit.events"
	DefaultAMQPRoutingKey = "notification.prepared"

	DefaultAPIAddr = "127.0.0.1:7717"
)
