package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, 5, cfg.Ledger.MaxRetries)
	assert.Equal(t, 25*time.Millisecond, cfg.Ledger.RetryInitialInterval)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "0 8 * * *", cfg.Alerts.DigestCron)
	assert.False(t, cfg.WhatsApp.Enabled)
	assert.False(t, cfg.Sheets.Enabled)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "STORE_DRIVER=SQLite\nSQLITE_PATH=/tmp/ledger-test.db\nLEDGER_MAX_RETRIES=9\nLEDGER_RETRY_INITIAL_INTERVAL=5ms\nAPP_PORT=9090\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	// godotenv never overrides variables already present, so start clean
	for _, key := range []string{"STORE_DRIVER", "SQLITE_PATH", "LEDGER_MAX_RETRIES", "LEDGER_RETRY_INITIAL_INTERVAL", "APP_PORT"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/ledger-test.db", cfg.Store.SQLitePath)
	assert.Equal(t, 9, cfg.Ledger.MaxRetries)
	assert.Equal(t, 5*time.Millisecond, cfg.Ledger.RetryInitialInterval)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Store:  StoreConfig{Driver: DriverMemory},
		Ledger: LedgerConfig{MaxRetries: 5, RetryInitialInterval: time.Millisecond},
		Alerts: AlertsConfig{DigestCron: "0 8 * * *", Timezone: "UTC"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"no port", func(c *Config) { c.Server.Port = "" }, "APP_PORT"},
		{"unknown driver", func(c *Config) { c.Store.Driver = "redis" }, "STORE_DRIVER"},
		{"mongodb without uri", func(c *Config) { c.Store.Driver = DriverMongoDB; c.Store.MongoDB = "db" }, "MONGODB_URI"},
		{"negative retries", func(c *Config) { c.Ledger.MaxRetries = -1 }, "LEDGER_MAX_RETRIES"},
		{"bad timezone", func(c *Config) { c.Alerts.Timezone = "Mars/Olympus" }, "TIMEZONE"},
		{"whatsapp without token", func(c *Config) { c.WhatsApp.Enabled = true }, "WHATSAPP_TOKEN"},
		{"whatsapp without recipient", func(c *Config) {
			c.WhatsApp = WhatsAppConfig{Enabled: true, AccessToken: "t", PhoneNumberID: "p", BaseURL: "u", APIVersion: "v"}
		}, "WHATSAPP_ALERT_RECIPIENT"},
		{"sheets without credentials", func(c *Config) { c.Sheets.Enabled = true }, "GOOGLE_SHEETS_CREDENTIALS_PATH"},
		{"disabled sinks need nothing", func(c *Config) { c.WhatsApp.AccessToken = ""; c.Sheets.SpreadsheetID = "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
