package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/julianstephens/finlit/internal/constants"
	"github.com/julianstephens/finlit/internal/utils"
)

// Sink names accepted in notify.default and notify.channels.
const (
	SinkLog   = "log"
	SinkTray  = "tray"
	SinkRedis = "redis"
	SinkAMQP  = "amqp"
	SinkTUI   = "tui"
)

var knownSinks = map[string]bool{
	SinkLog:   true,
	SinkTray:  true,
	SinkRedis: true,
	SinkAMQP:  true,
	SinkTUI:   true,
}

type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	User      UserConfig      `mapstructure:"user"`
	Ledger    LedgerConfig    `mapstructure:"ledger"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Planning  PlanningConfig  `mapstructure:"planning"`
	Log       LogConfig       `mapstructure:"log"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	API       APIConfig       `mapstructure:"api"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
	// URL selects PostgreSQL when set. It must not carry a password.
	URL string `mapstructure:"url"`
}

// Target returns the storage target handed to storage.New.
func (d DatabaseConfig) Target() string {
	if d.URL != "" {
		return d.URL
	}
	return d.Path
}

type UserConfig struct {
	ID string `mapstructure:"id"`
}

type LedgerConfig struct {
	Currency string `mapstructure:"currency"`
}

type SchedulerConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type PlanningConfig struct {
	MonthsAhead    int    `mapstructure:"months_ahead"`
	DueDayOverflow string `mapstructure:"due_day_overflow"`
	ReminderHour   int    `mapstructure:"reminder_hour"`
}

type LogConfig struct {
	Debug bool   `mapstructure:"debug"`
	Level string `mapstructure:"level"`
	Dir   string `mapstructure:"dir"`
}

type NotifyConfig struct {
	Default  []string            `mapstructure:"default"`
	Channels map[string][]string `mapstructure:"channels"`
	Tray     TrayConfig          `mapstructure:"tray"`
	Redis    RedisConfig         `mapstructure:"redis"`
	AMQP     AMQPConfig          `mapstructure:"amqp"`
}

type TrayConfig struct {
	LockfileDir string `mapstructure:"lockfile_dir"`
}

type RedisConfig struct {
	Addr    string `mapstructure:"addr"`
	DB      int    `mapstructure:"db"`
	Channel string `mapstructure:"channel"`
}

type AMQPConfig struct {
	URL        string `mapstructure:"url"`
	Exchange   string `mapstructure:"exchange"`
	RoutingKey string `mapstructure:"routing_key"`
}

type APIConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Dir is the default configuration directory, ~/.config/finlit.
func Dir() string {
	dir, err := utils.ExpandPath(filepath.Join("~", ".config", constants.AppName))
	if err != nil {
		return filepath.Join(".", constants.AppName)
	}
	return dir
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", constants.DefaultDatabasePath)
	v.SetDefault("database.url", "")
	v.SetDefault("user.id", constants.DefaultUserID)
	v.SetDefault("ledger.currency", constants.DefaultCurrency)
	v.SetDefault("scheduler.interval", constants.DefaultPollInterval)
	v.SetDefault("planning.months_ahead", constants.DefaultMonthsAhead)
	v.SetDefault("planning.due_day_overflow", string(utils.OverflowFallback))
	v.SetDefault("planning.reminder_hour", constants.DefaultReminderHour)
	v.SetDefault("log.debug", false)
	v.SetDefault("log.level", "")
	v.SetDefault("log.dir", Dir())
	v.SetDefault("notify.default", []string{SinkLog})
	v.SetDefault("notify.tray.lockfile_dir", "")
	v.SetDefault("notify.redis.addr", "")
	v.SetDefault("notify.redis.db", 0)
	v.SetDefault("notify.redis.channel", constants.NotificationEvent)
	v.SetDefault("notify.amqp.url", "")
	v.SetDefault("notify.amqp.exchange", constants.DefaultAMQPExchange)
	v.SetDefault("notify.amqp.routing_key", constants.DefaultAMQPRoutingKey)
	v.SetDefault("api.addr", constants.DefaultAPIAddr)
	v.SetDefault("api.allowed_origins", []string{"http://localhost:*", "http://127.0.0.1:*"})
}

// Load reads defaults, then the TOML file, then FINLIT_* environment
// variables (a .env file in the working directory is loaded first). An
// explicit file that does not exist is an error; a missing default file is
// not.
func Load(file string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("toml")

	if file == "" {
		file = os.Getenv(constants.EnvPrefix + "_CONFIG")
	}
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(Dir())
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || file != "" {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	return decode(v)
}

// Defaults returns the built-in configuration, ignoring files and the
// environment.
func Defaults() Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	_ = v.Unmarshal(&c)
	if p, err := utils.ExpandPath(c.Database.Path); err == nil {
		c.Database.Path = p
	}
	return c
}

func decode(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	var err error
	if c.Database.Path, err = utils.ExpandPath(c.Database.Path); err != nil {
		return Config{}, err
	}
	if c.Log.Dir, err = utils.ExpandPath(c.Log.Dir); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be positive, got %s", c.Scheduler.Interval)
	}
	if c.Planning.MonthsAhead < 1 {
		return fmt.Errorf("planning.months_ahead must be at least 1, got %d", c.Planning.MonthsAhead)
	}
	if c.Planning.ReminderHour < 0 || c.Planning.ReminderHour > 23 {
		return fmt.Errorf("planning.reminder_hour must be between 0 and 23, got %d", c.Planning.ReminderHour)
	}
	if _, err := utils.ParseOverflowMode(c.Planning.DueDayOverflow); err != nil {
		return fmt.Errorf("planning.due_day_overflow: %w", err)
	}
	if strings.TrimSpace(c.User.ID) == "" {
		return errors.New("user.id cannot be empty")
	}
	if len(c.Ledger.Currency) != 3 {
		return fmt.Errorf("ledger.currency must be a 3-letter code, got %q", c.Ledger.Currency)
	}
	if len(c.Notify.Default) == 0 {
		return errors.New("notify.default must name at least one sink")
	}
	if err := checkSinks("notify.default", c.Notify.Default); err != nil {
		return err
	}
	for channel, sinks := range c.Notify.Channels {
		if err := checkSinks("notify.channels."+channel, sinks); err != nil {
			return err
		}
	}
	return nil
}

func checkSinks(key string, sinks []string) error {
	for _, s := range sinks {
		if !knownSinks[s] {
			return fmt.Errorf("%s: unknown sink %q", key, s)
		}
	}
	return nil
}
