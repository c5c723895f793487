package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"reminder_notifier/internal/app" // For ReminderService interface

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// PollScheduler re-evaluates reminders on a fixed cron cadence. The cadence
// must not exceed the evaluator's tolerance window or on-time windows can be
// skipped entirely.
type PollScheduler struct {
	cronEngine *cron.Cron
	service    app.ReminderService
	logger     *logrus.Entry
	spec       string
	loc        *time.Location
	cooldown   time.Duration
	timeout    time.Duration
	now        func() time.Time

	running       sync.Mutex // held for the duration of a cycle
	mu            sync.Mutex
	cooldownUntil time.Time
}

func NewPollScheduler(
	service app.ReminderService,
	logger *logrus.Entry,
	spec string, // e.g., "*/5 * * * *" (every 5 minutes)
	loc *time.Location,
	cooldown time.Duration, // pause after a cycle that sent something; 0 disables
	timeout time.Duration, // per-cycle context timeout
) *PollScheduler {
	return &PollScheduler{
		cronEngine: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cron.PrintfLogger(logger)),
		),
		service:  service,
		logger:   logger,
		spec:     spec,
		loc:      loc,
		cooldown: cooldown,
		timeout:  timeout,
		now:      time.Now,
	}
}

// Start registers the poll job and starts the cron engine.
func (s *PollScheduler) Start() error {
	s.logger.Info("Starting reminder poll scheduler...")

	if _, err := s.cronEngine.AddFunc(s.spec, s.Tick); err != nil {
		return fmt.Errorf("could not add reminder poll job %q: %w", s.spec, err)
	}

	s.cronEngine.Start()
	s.logger.WithField("spec", s.spec).Info("Reminder poll scheduler started.")
	return nil
}

// Tick runs one evaluation cycle unless a cycle is already running or the
// cooldown is active. It is safe to call outside the cron loop, e.g. once at
// startup.
func (s *PollScheduler) Tick() {
	if !s.running.TryLock() {
		s.logger.Warn("Previous reminder cycle still running, skipping tick.")
		return
	}
	defer s.running.Unlock()

	now := s.now().In(s.loc)

	s.mu.Lock()
	until := s.cooldownUntil
	s.mu.Unlock()
	if now.Before(until) {
		s.logger.WithField("cooldown_until", until.Format(time.RFC3339)).Debug("In cooldown, skipping tick.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	res, err := s.service.RunCycle(ctx, now)
	if err != nil {
		s.logger.WithError(err).Error("Reminder cycle failed.")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"rows":       res.Rows,
		"skipped":    res.Skipped,
		"due":        res.Due,
		"suppressed": res.Suppressed,
		"sent":       res.Sent,
		"failed":     res.Failed,
	}).Debug("Reminder cycle finished.")

	if res.Sent > 0 && s.cooldown > 0 {
		s.mu.Lock()
		s.cooldownUntil = now.Add(s.cooldown)
		s.mu.Unlock()
		s.logger.WithField("cooldown_until", now.Add(s.cooldown).Format(time.RFC3339)).Info("Reminders sent, cooldown started.")
	}
}

func (s *PollScheduler) Stop() {
	s.logger.Info("Stopping reminder poll scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()               // Wait for graceful shutdown
	s.logger.Info("Reminder poll scheduler gracefully stopped.")
}
