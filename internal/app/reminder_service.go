// internal/app/reminder_service.go
package app

import (
	"context"
	"fmt"
	"time"

	"reminder_notifier/internal/domain/ledger"
	"reminder_notifier/internal/domain/notify"
	"reminder_notifier/internal/domain/reminder"
	"reminder_notifier/internal/domain/source"

	"github.com/sirupsen/logrus"
)

// saveTimeout bounds the ledger save, which runs even if the cycle's
// context was cancelled during delivery.
const saveTimeout = 10 * time.Second

// ReminderService runs evaluation cycles.
type ReminderService interface {
	// RunCycle fetches rows, notifies every occurrence due at now that has
	// not been sent before, and persists what was sent.
	RunCycle(ctx context.Context, now time.Time) (CycleResult, error)
}

// CycleResult summarizes one cycle.
type CycleResult struct {
	Rows       int // rows that parsed
	Skipped    int // rows rejected by ParseRow
	Due        int
	Suppressed int // due but already in the ledger
	Sent       int
	Failed     int
}

// ReminderServiceImpl implements the ReminderService interface.
type ReminderServiceImpl struct {
	source     source.Source
	evaluator  *reminder.Evaluator
	ledgerRepo ledger.Repository
	notifier   notify.Notifier
	logger     *logrus.Entry
}

func NewReminderServiceImpl(
	src source.Source,
	evaluator *reminder.Evaluator,
	ledgerRepo ledger.Repository,
	notifier notify.Notifier,
	logger *logrus.Entry,
) *ReminderServiceImpl {
	return &ReminderServiceImpl{
		source:     src,
		evaluator:  evaluator,
		ledgerRepo: ledgerRepo,
		notifier:   notifier,
		logger:     logger,
	}
}

func (s *ReminderServiceImpl) RunCycle(ctx context.Context, now time.Time) (CycleResult, error) {
	var res CycleResult
	logCtx := s.logger.WithField("now", now.Format(time.RFC3339))

	// 1. Fetch rows
	records, err := s.source.Fetch(ctx)
	if err != nil {
		logCtx.WithError(err).Error("Failed to fetch reminder rows")
		return res, fmt.Errorf("failed to fetch reminder rows: %w", err)
	}

	// 2. Normalize
	rows := make([]reminder.Row, 0, len(records))
	for _, rec := range records {
		row, err := reminder.ParseRow(rec)
		if err != nil {
			res.Skipped++
			logCtx.WithError(err).Debug("Skipping malformed reminder row")
			continue
		}
		rows = append(rows, row)
	}
	res.Rows = len(rows)

	// 3. Evaluate
	due := s.evaluator.Evaluate(rows, now)
	res.Due = len(due)
	if len(due) == 0 {
		logCtx.WithField("rows", res.Rows).Debug("No reminders due")
		return res, nil
	}

	// 4. Load ledger
	sent, err := s.ledgerRepo.Load(ctx)
	if err != nil {
		logCtx.WithError(err).Warn("Failed to load sent-reminder ledger, continuing with an empty one")
		sent = ledger.New()
	}

	// 5. Deliver new occurrences
	for _, d := range due {
		occ := d.Occurrence
		key := occ.Key()
		entry := logCtx.WithFields(logrus.Fields{
			"activity":        occ.Activity,
			"occurrence_date": occ.Date.Format(reminder.DateLayout),
			"key":             string(key),
			"catch_up":        occ.CatchUp,
		})

		if !sent.IsNew(key) {
			res.Suppressed++
			entry.Debug("Reminder already sent, skipping")
			continue
		}
		if err := ctx.Err(); err != nil {
			entry.WithError(err).Warn("Cycle cancelled before delivery")
			break
		}

		if err := s.notifier.Send(ctx, ComposeMessage(occ)); err != nil {
			res.Failed++
			entry.WithError(err).Error("Failed to deliver reminder, will retry next cycle")
			continue
		}
		sent.Record(key, now)
		res.Sent++
		entry.Info("Reminder delivered")
	}

	// 6. Persist
	if sent.Changed() {
		if sent.TrimIfOversized() {
			logCtx.WithField("kept", sent.Len()).Info("Trimmed sent-reminder ledger")
		}
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
		defer cancel()
		if err := s.ledgerRepo.Save(saveCtx, sent); err != nil {
			logCtx.WithError(err).Error("Failed to save sent-reminder ledger; reminders may repeat next cycle")
		}
	}

	if res.Failed > 0 {
		logCtx.WithFields(logrus.Fields{"sent": res.Sent, "failed": res.Failed}).Warn("Cycle finished with delivery failures")
	}
	return res, nil
}
