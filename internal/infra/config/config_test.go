package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"LOG_LEVEL", "ENVIRONMENT", "TIMEZONE", "SOURCE_URL", "SOURCE_FILE", "SOURCE_TIMEOUT",
	"NOTIFIER", "DISCORD_WEBHOOK_URL", "DISCORD_MIN_INTERVAL", "TELEGRAM_TOKEN", "TELEGRAM_CHAT_ID",
	"LEDGER_DRIVER", "LEDGER_PATH", "DATABASE_URL", "TOLERANCE_WINDOW_MINUTES", "CATCH_UP_ENABLED",
	"CATCH_UP_MAX_OVERDUE_DAYS", "POLL_CRON_SPEC", "POLL_COOLDOWN", "CYCLE_TIMEOUT",
}

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
	for k, v := range kv {
		t.Setenv(k, v)
	}
}

func TestFromEnvDefaults(t *testing.T) {
	setEnv(t, map[string]string{
		"SOURCE_URL":          "https://example.com/sheet.csv",
		"DISCORD_WEBHOOK_URL": "https://discord.example/webhook",
		"TIMEZONE":            "UTC",
	})

	cfg, err := fromEnv()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "discord", cfg.Notifier)
	assert.Equal(t, "file", cfg.LedgerDriver)
	assert.Equal(t, "data/sent_reminders.json", cfg.LedgerPath)
	assert.Equal(t, 20, cfg.ToleranceWindowMinutes)
	assert.True(t, cfg.CatchUpEnabled)
	assert.Equal(t, 0, cfg.CatchUpMaxOverdueDays)
	assert.Equal(t, "*/5 * * * *", cfg.PollCronSpec)
	assert.Equal(t, time.Duration(0), cfg.PollCooldown)
	assert.Equal(t, 20*time.Second, cfg.SourceTimeout)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestFromEnvTelegramAndPostgres(t *testing.T) {
	setEnv(t, map[string]string{
		"SOURCE_FILE":               "reminders.yaml",
		"NOTIFIER":                  "Telegram",
		"TELEGRAM_TOKEN":            "token",
		"TELEGRAM_CHAT_ID":          "-100123",
		"LEDGER_DRIVER":             "postgres",
		"DATABASE_URL":              "postgres://localhost/reminders",
		"CATCH_UP_ENABLED":          "false",
		"CATCH_UP_MAX_OVERDUE_DAYS": "7",
		"POLL_COOLDOWN":             "3h",
		"TIMEZONE":                  "UTC",
	})

	cfg, err := fromEnv()
	require.NoError(t, err)
	assert.Equal(t, "telegram", cfg.Notifier)
	assert.Equal(t, int64(-100123), cfg.TelegramChatID)
	assert.Equal(t, "postgres", cfg.LedgerDriver)
	assert.False(t, cfg.CatchUpEnabled)
	assert.Equal(t, 7, cfg.CatchUpMaxOverdueDays)
	assert.Equal(t, 3*time.Hour, cfg.PollCooldown)
}

func TestFromEnvErrors(t *testing.T) {
	base := map[string]string{
		"SOURCE_URL": "https://example.com/sheet.csv",
		"NOTIFIER":   "log",
		"TIMEZONE":   "UTC",
	}

	tests := []struct {
		name     string
		override map[string]string
	}{
		{"no source", map[string]string{"SOURCE_URL": ""}},
		{"discord without webhook", map[string]string{"NOTIFIER": "discord"}},
		{"telegram without chat", map[string]string{"NOTIFIER": "telegram", "TELEGRAM_TOKEN": "x"}},
		{"telegram bad chat", map[string]string{"NOTIFIER": "telegram", "TELEGRAM_TOKEN": "x", "TELEGRAM_CHAT_ID": "abc"}},
		{"unknown notifier", map[string]string{"NOTIFIER": "smoke"}},
		{"postgres without url", map[string]string{"LEDGER_DRIVER": "postgres"}},
		{"unknown driver", map[string]string{"LEDGER_DRIVER": "redis"}},
		{"bad timezone", map[string]string{"TIMEZONE": "Mars/Olympus"}},
		{"bad window", map[string]string{"TOLERANCE_WINDOW_MINUTES": "ten"}},
		{"negative window", map[string]string{"TOLERANCE_WINDOW_MINUTES": "-1"}},
		{"bad bool", map[string]string{"CATCH_UP_ENABLED": "maybe"}},
		{"bad duration", map[string]string{"POLL_COOLDOWN": "3 hours"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := map[string]string{}
			for k, v := range base {
				kv[k] = v
			}
			for k, v := range tt.override {
				kv[k] = v
			}
			setEnv(t, kv)

			_, err := fromEnv()
			assert.Error(t, err)
		})
	}
}
