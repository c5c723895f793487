package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"reminder_notifier/internal/app"
	"reminder_notifier/internal/domain/ledger"
	"reminder_notifier/internal/domain/notify"
	"reminder_notifier/internal/domain/reminder"
	"reminder_notifier/internal/domain/source"
	"reminder_notifier/internal/infra/config"
	idb "reminder_notifier/internal/infra/database"
	"reminder_notifier/internal/infra/discord"
	"reminder_notifier/internal/infra/filestore"
	"reminder_notifier/internal/infra/logger"
	"reminder_notifier/internal/infra/scheduler"
	"reminder_notifier/internal/infra/sheet"
	"reminder_notifier/internal/infra/telegram"

	"github.com/sirupsen/logrus"
)

func main() {
	fmt.Println("Reminder Notifier starting...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"timezone":    cfg.Timezone,
		"notifier":    cfg.Notifier,
		"ledger":      cfg.LedgerDriver,
	}).Info("Configuration loaded.")

	loc, err := cfg.Location()
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not load time zone")
	}

	// Initialize Ledger Repository
	ledgerRepo, db, err := openLedger(cfg)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not open sent-reminder ledger")
	}
	if db != nil {
		defer db.Close()
	}
	mainLogger.Info("Ledger repository initialized.")

	// Initialize Row Source
	var src source.Source
	if cfg.SourceURL != "" {
		src = sheet.NewCSVSource(cfg.SourceURL, cfg.SourceTimeout)
	} else {
		src = sheet.NewFileSource(cfg.SourceFile)
	}

	// Initialize Notifier
	notifier, err := openNotifier(cfg)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not create notifier")
	}
	mainLogger.Info("Notifier initialized.")

	evaluator := reminder.NewEvaluator(reminder.Options{
		ToleranceWindowMinutes: cfg.ToleranceWindowMinutes,
		CatchUp:                cfg.CatchUpEnabled,
		MaxOverdueDays:         cfg.CatchUpMaxOverdueDays,
	})
	reminderService := app.NewReminderServiceImpl(src, evaluator, ledgerRepo, notifier, logger.Component("reminders"))

	// Initialize PollScheduler
	pollScheduler := scheduler.NewPollScheduler(
		reminderService,
		logger.Component("scheduler"),
		cfg.PollCronSpec,
		loc,
		cfg.PollCooldown,
		cfg.CycleTimeout,
	)
	if err := pollScheduler.Start(); err != nil {
		mainLogger.WithError(err).Fatal("Could not start scheduler")
	}
	go pollScheduler.Tick() // Evaluate once right away instead of waiting for the first cron tick

	mainLogger.Info("Application setup complete. Scheduler is running.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // Block until a signal is received

	mainLogger.Info("Shutting down application...")
	pollScheduler.Stop()
	mainLogger.Info("Application shut down gracefully.")
}

// openLedger returns the configured ledger repository and, for database
// drivers, the connection to close on shutdown.
func openLedger(cfg *config.AppConfig) (ledger.Repository, *sql.DB, error) {
	ctx := context.Background()
	switch cfg.LedgerDriver {
	case "postgres":
		db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		repo := idb.NewPostgresLedgerRepository(db)
		if err := repo.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, db, nil
	case "sqlite":
		db, err := idb.NewSQLiteConnection(cfg.LedgerPath)
		if err != nil {
			return nil, nil, err
		}
		repo := idb.NewSQLiteLedgerRepository(db)
		if err := repo.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, db, nil
	default:
		return filestore.NewJSONLedgerRepository(cfg.LedgerPath), nil, nil
	}
}

func openNotifier(cfg *config.AppConfig) (notify.Notifier, error) {
	switch cfg.Notifier {
	case "telegram":
		client, err := telegram.NewClient(cfg.TelegramToken, "", cfg.TelegramChatID)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "log":
		return app.NewLogNotifier(logger.Component("dry-run")), nil
	default:
		return discord.NewWebhookClient(cfg.DiscordWebhookURL, cfg.DiscordMinInterval), nil
	}
}
