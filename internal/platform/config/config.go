package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	// Embed the zone database so LEDGER_TIMEZONE loads on minimal images.
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/ulule/limiter/v3"
	"golang.org/x/text/language"
)

// Data backends.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// Event backends.
const (
	EventsNone  = "none"
	EventsAMQP  = "amqp"
	EventsKafka = "kafka"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string `mapstructure:"PGSQL_URL" validate:"required_if=DataBackend postgres"`
	DataBackend   string `mapstructure:"DATA_BACKEND" validate:"required,oneof=postgres sqlite memory"`
	SQLiteDBPath  string `mapstructure:"SQLITE_DB_PATH" validate:"required_if=DataBackend sqlite"`
	Port          string `mapstructure:"PORT" validate:"required,numeric"`
	IsProduction  bool   `mapstructure:"IS_PRODUCTION"`
	EnableDBCheck bool   `mapstructure:"ENABLE_DB_CHECK"`
	RunMigrations bool   `mapstructure:"RUN_MIGRATIONS"`

	// Telegram
	BotToken       string `mapstructure:"BOT_TOKEN" validate:"required"`
	WebhookBaseURL string `mapstructure:"WEBHOOK_BASE_URL" validate:"omitempty,url"`
	WebhookSecret  string `mapstructure:"WEBHOOK_SECRET" validate:"required_with=WebhookBaseURL"`

	// Ledger
	LedgerTimezone          string        `mapstructure:"LEDGER_TIMEZONE" validate:"required"`
	DayStartHour            int           `mapstructure:"DAY_START_HOUR" validate:"min=0,max=23"`
	RejectNonPositiveAmount bool          `mapstructure:"REJECT_NON_POSITIVE_AMOUNT"`
	PerUserLedger           bool          `mapstructure:"PER_USER_LEDGER"`
	ReplyDeleteAfter        time.Duration `mapstructure:"REPLY_DELETE_AFTER" validate:"min=0s"`

	// Display
	CurrencySymbol    string `mapstructure:"CURRENCY_SYMBOL"`
	CurrencyPrecision int    `mapstructure:"CURRENCY_PRECISION" validate:"min=0,max=8"`
	Locale            string `mapstructure:"LOCALE" validate:"required"`

	RateLimit string `mapstructure:"RATE_LIMIT" validate:"required"`

	// Events
	EventsBackend string   `mapstructure:"EVENTS_BACKEND" validate:"required,oneof=none amqp kafka"`
	AMQPURL       string   `mapstructure:"AMQP_URL" validate:"required_if=EventsBackend amqp"`
	AMQPExchange  string   `mapstructure:"AMQP_EXCHANGE" validate:"required_if=EventsBackend amqp"`
	KafkaBrokers  []string `mapstructure:"KAFKA_BROKERS" validate:"required_if=EventsBackend kafka,dive,hostname_port"`
	KafkaTopic    string   `mapstructure:"KAFKA_TOPIC" validate:"required_if=EventsBackend kafka"`
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("DATA_BACKEND", BackendPostgres)
	v.SetDefault("SQLITE_DB_PATH", "./data/finance.db")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", true)
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("BOT_TOKEN", "")
	v.SetDefault("WEBHOOK_BASE_URL", "")
	v.SetDefault("WEBHOOK_SECRET", "")
	v.SetDefault("LEDGER_TIMEZONE", "Asia/Jakarta")
	v.SetDefault("DAY_START_HOUR", 0)
	v.SetDefault("REJECT_NON_POSITIVE_AMOUNT", true)
	v.SetDefault("PER_USER_LEDGER", false)
	v.SetDefault("REPLY_DELETE_AFTER", "5s")
	v.SetDefault("CURRENCY_SYMBOL", "Rp")
	v.SetDefault("CURRENCY_PRECISION", 0)
	v.SetDefault("LOCALE", "id-ID")
	v.SetDefault("RATE_LIMIT", "120-M")
	v.SetDefault("EVENTS_BACKEND", EventsNone)
	v.SetDefault("AMQP_URL", "")
	v.SetDefault("AMQP_EXCHANGE", "finance")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "transaction_recorded")

	v.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:   v.GetString("PGSQL_URL"),
		DataBackend:   strings.ToLower(strings.TrimSpace(v.GetString("DATA_BACKEND"))),
		SQLiteDBPath:  v.GetString("SQLITE_DB_PATH"),
		Port:          v.GetString("PORT"),
		IsProduction:  v.GetBool("IS_PRODUCTION"),
		EnableDBCheck: v.GetBool("ENABLE_DB_CHECK"),
		RunMigrations: v.GetBool("RUN_MIGRATIONS"),

		BotToken:       v.GetString("BOT_TOKEN"),
		WebhookBaseURL: strings.TrimRight(v.GetString("WEBHOOK_BASE_URL"), "/"),
		WebhookSecret:  v.GetString("WEBHOOK_SECRET"),

		LedgerTimezone:          v.GetString("LEDGER_TIMEZONE"),
		DayStartHour:            v.GetInt("DAY_START_HOUR"),
		RejectNonPositiveAmount: v.GetBool("REJECT_NON_POSITIVE_AMOUNT"),
		PerUserLedger:           v.GetBool("PER_USER_LEDGER"),

		CurrencySymbol:    v.GetString("CURRENCY_SYMBOL"),
		CurrencyPrecision: v.GetInt("CURRENCY_PRECISION"),
		Locale:            v.GetString("LOCALE"),

		RateLimit: v.GetString("RATE_LIMIT"),

		EventsBackend: strings.ToLower(strings.TrimSpace(v.GetString("EVENTS_BACKEND"))),
		AMQPURL:       v.GetString("AMQP_URL"),
		AMQPExchange:  v.GetString("AMQP_EXCHANGE"),
		KafkaBrokers:  splitList(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:    v.GetString("KAFKA_TOPIC"),
	}

	deleteAfter := v.GetString("REPLY_DELETE_AFTER")
	d, err := time.ParseDuration(deleteAfter)
	if err != nil {
		return nil, fmt.Errorf("invalid REPLY_DELETE_AFTER %q: %w", deleteAfter, err)
	}
	cfg.ReplyDeleteAfter = d

	if cfg.WebhookBaseURL == "" {
		slog.Warn("WEBHOOK_BASE_URL not set, the bot will use long polling")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct rules plus the settings that need parsing.
func (c *Config) Validate() error {
	var errs []error
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, fmt.Errorf("config %s failed on '%s'", fe.StructField(), fe.Tag()))
			}
		} else {
			errs = append(errs, err)
		}
	}

	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if _, err := language.Parse(c.Locale); err != nil {
		errs = append(errs, fmt.Errorf("invalid LOCALE %q: %w", c.Locale, err))
	}
	if _, err := limiter.NewRateFromFormatted(c.RateLimit); err != nil {
		errs = append(errs, fmt.Errorf("invalid RATE_LIMIT %q: %w", c.RateLimit, err))
	}

	return errors.Join(errs...)
}

// Location loads the reference timezone for parsing and reporting.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.LedgerTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid LEDGER_TIMEZONE %q: %w", c.LedgerTimezone, err)
	}
	return loc, nil
}

// UsesWebhook reports whether updates arrive by webhook rather than long polling.
func (c *Config) UsesWebhook() bool {
	return c.WebhookBaseURL != ""
}

// WebhookURL is the URL registered with Telegram.
func (c *Config) WebhookURL() string {
	return c.WebhookBaseURL + "/webhook/" + c.WebhookSecret
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
