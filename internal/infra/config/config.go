package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	LogLevel    string
	Environment string
	Timezone    string

	SourceURL     string // CSV export of the reminders sheet
	SourceFile    string // Local YAML or CSV file, used when SourceURL is empty
	SourceTimeout time.Duration

	Notifier           string // discord, telegram or log
	DiscordWebhookURL  string
	DiscordMinInterval time.Duration
	TelegramToken      string
	TelegramChatID     int64

	LedgerDriver string // file, postgres or sqlite
	LedgerPath   string
	DatabaseURL  string

	ToleranceWindowMinutes int
	CatchUpEnabled         bool
	CatchUpMaxOverdueDays  int

	PollCronSpec string
	PollCooldown time.Duration
	CycleTimeout time.Duration
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()
	return fromEnv()
}

func fromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}
	var err error

	cfg.LogLevel = strings.ToLower(getenv("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getenv("ENVIRONMENT", "development"))

	cfg.Timezone = getenv("TIMEZONE", "Local")
	if _, err = time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	cfg.SourceURL = os.Getenv("SOURCE_URL")
	cfg.SourceFile = os.Getenv("SOURCE_FILE")
	if cfg.SourceURL == "" && cfg.SourceFile == "" {
		return nil, fmt.Errorf("one of SOURCE_URL or SOURCE_FILE must be set")
	}
	if cfg.SourceTimeout, err = durationEnv("SOURCE_TIMEOUT", 20*time.Second); err != nil {
		return nil, err
	}

	cfg.Notifier = strings.ToLower(getenv("NOTIFIER", "discord"))
	switch cfg.Notifier {
	case "discord":
		cfg.DiscordWebhookURL = os.Getenv("DISCORD_WEBHOOK_URL")
		if cfg.DiscordWebhookURL == "" {
			return nil, fmt.Errorf("DISCORD_WEBHOOK_URL is not set")
		}
	case "telegram":
		cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
		if cfg.TelegramToken == "" {
			return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
		}
		chatIDStr := os.Getenv("TELEGRAM_CHAT_ID")
		if chatIDStr == "" {
			return nil, fmt.Errorf("TELEGRAM_CHAT_ID is not set")
		}
		cfg.TelegramChatID, err = strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
	case "log":
	default:
		return nil, fmt.Errorf("unknown NOTIFIER %q (want discord, telegram or log)", cfg.Notifier)
	}
	if cfg.DiscordMinInterval, err = durationEnv("DISCORD_MIN_INTERVAL", 2*time.Second); err != nil {
		return nil, err
	}

	cfg.LedgerDriver = strings.ToLower(getenv("LEDGER_DRIVER", "file"))
	switch cfg.LedgerDriver {
	case "file":
		cfg.LedgerPath = getenv("LEDGER_PATH", "data/sent_reminders.json")
	case "sqlite":
		cfg.LedgerPath = getenv("LEDGER_PATH", "data/reminders.db")
	case "postgres":
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is not set")
		}
	default:
		return nil, fmt.Errorf("unknown LEDGER_DRIVER %q (want file, sqlite or postgres)", cfg.LedgerDriver)
	}

	if cfg.ToleranceWindowMinutes, err = intEnv("TOLERANCE_WINDOW_MINUTES", 20); err != nil {
		return nil, err
	}
	if cfg.ToleranceWindowMinutes < 0 {
		return nil, fmt.Errorf("TOLERANCE_WINDOW_MINUTES must not be negative")
	}
	if cfg.CatchUpEnabled, err = boolEnv("CATCH_UP_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.CatchUpMaxOverdueDays, err = intEnv("CATCH_UP_MAX_OVERDUE_DAYS", 0); err != nil {
		return nil, err
	}

	cfg.PollCronSpec = getenv("POLL_CRON_SPEC", "*/5 * * * *") // Default: every 5 minutes
	if cfg.PollCooldown, err = durationEnv("POLL_COOLDOWN", 0); err != nil {
		return nil, err
	}
	if cfg.CycleTimeout, err = durationEnv("CYCLE_TIMEOUT", 2*time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Location resolves the configured evaluation time zone.
func (c *AppConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
