package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverMongoDB = "mongodb"
	DriverSQLite  = "sqlite"
	DriverMemory  = "memory"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Ledger   LedgerConfig
	Log      LogConfig
	Alerts   AlertsConfig
	WhatsApp WhatsAppConfig
	Sheets   SheetsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port            string        `env:"APP_PORT"                env-default:"8080"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// StoreConfig selects and configures the record store.
type StoreConfig struct {
	Driver     string `env:"STORE_DRIVER"    env-default:"sqlite"`
	MongoURI   string `env:"MONGODB_URI"`
	MongoDB    string `env:"MONGODB_DB_NAME" env-default:"jlg_logs"`
	SQLitePath string `env:"SQLITE_PATH"     env-default:"data/ledger.db"`
}

// LedgerConfig bounds conflict retries of atomic ledger operations.
type LedgerConfig struct {
	MaxRetries           int           `env:"LEDGER_MAX_RETRIES"            env-default:"5"`
	RetryInitialInterval time.Duration `env:"LEDGER_RETRY_INITIAL_INTERVAL" env-default:"25ms"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `env:"LOG_LEVEL" env-default:"info"`
}

// AlertsConfig holds the alert digest schedule.
type AlertsConfig struct {
	DigestCron string `env:"ALERT_DIGEST_CRON" env-default:"0 8 * * *"`
	Timezone   string `env:"TIMEZONE"          env-default:"Asia/Singapore"`
}

// WhatsAppConfig contains credentials and options for the Meta WhatsApp Cloud API.
// The digest notifier is enabled when Enabled is set.
type WhatsAppConfig struct {
	Enabled       bool   `env:"WHATSAPP_ENABLED"         env-default:"false"`
	AccessToken   string `env:"WHATSAPP_TOKEN"`
	PhoneNumberID string `env:"WHATSAPP_PHONE_NUMBER_ID"`
	BaseURL       string `env:"WHATSAPP_BASE_URL"        env-default:"https://graph.facebook.com"`
	APIVersion    string `env:"WHATSAPP_API_VERSION"     env-default:"v20.0"`
	Recipient     string `env:"WHATSAPP_ALERT_RECIPIENT"`
}

// SheetsConfig contains configuration required to export alerts to Google Sheets.
type SheetsConfig struct {
	Enabled         bool   `env:"GOOGLE_SHEETS_ENABLED"          env-default:"false"`
	CredentialsPath string `env:"GOOGLE_SHEETS_CREDENTIALS_PATH"`
	SpreadsheetID   string `env:"GOOGLE_SHEET_ID"`
	AlertsRange     string `env:"GOOGLE_SHEET_ALERTS_RANGE"      env-default:"Alerts!A:G"`
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	switch c.Store.Driver {
	case DriverMongoDB:
		if c.Store.MongoURI == "" {
			return errors.New("MONGODB_URI must be provided for the mongodb driver")
		}
		if c.Store.MongoDB == "" {
			return errors.New("MONGODB_DB_NAME must not be empty")
		}
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("SQLITE_PATH must not be empty")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER %q is not one of mongodb, sqlite, memory", c.Store.Driver)
	}

	if c.Ledger.MaxRetries < 0 {
		return errors.New("LEDGER_MAX_RETRIES must not be negative")
	}
	if c.Ledger.RetryInitialInterval < 0 {
		return errors.New("LEDGER_RETRY_INITIAL_INTERVAL must not be negative")
	}

	if c.Alerts.DigestCron == "" {
		return errors.New("ALERT_DIGEST_CRON must be provided")
	}
	if c.Alerts.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}
	if _, err := time.LoadLocation(c.Alerts.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q: %w", c.Alerts.Timezone, err)
	}

	if c.WhatsApp.Enabled {
		switch {
		case c.WhatsApp.AccessToken == "":
			return errors.New("WHATSAPP_TOKEN must be provided")
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided")
		case c.WhatsApp.Recipient == "":
			return errors.New("WHATSAPP_ALERT_RECIPIENT must be provided")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	if c.Sheets.Enabled {
		if c.Sheets.CredentialsPath == "" {
			return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided")
		}
		if c.Sheets.SpreadsheetID == "" {
			return errors.New("GOOGLE_SHEET_ID must be provided")
		}
		if c.Sheets.AlertsRange == "" {
			return errors.New("GOOGLE_SHEET_ALERTS_RANGE must not be empty")
		}
	}

	return nil
}
