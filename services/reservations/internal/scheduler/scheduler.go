// Package scheduler runs the reservation service's recurring jobs: the daily
// check-in reminder run and the idempotency key purge.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/diagnosis/guestroom-reservations/pkg/logger"
	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/domain"
)

// Jobs is the part of the reservation service the scheduler drives.
type Jobs interface {
	Today() time.Time
	SendCheckInReminders(ctx context.Context, day time.Time) (int, error)
	PurgeIdempotencyKeys(ctx context.Context) (int64, error)
}

const (
	DefaultReminderSchedule = "0 9 * * *"
	purgeSchedule           = "@hourly"
	jobTimeout              = 2 * time.Minute
)

type Scheduler struct {
	cron             *cron.Cron
	jobs             Jobs
	reminderSchedule string
}

// New builds a scheduler whose cron expressions are read in loc.
func New(jobs Jobs, reminderSchedule string, loc *time.Location) *Scheduler {
	if reminderSchedule == "" {
		reminderSchedule = DefaultReminderSchedule
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:             cron.New(cron.WithLocation(loc)),
		jobs:             jobs,
		reminderSchedule: reminderSchedule,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.reminderSchedule, s.RunReminders); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", s.reminderSchedule, err)
	}
	if _, err := s.cron.AddFunc(purgeSchedule, s.RunPurge); err != nil {
		return fmt.Errorf("invalid purge schedule: %w", err)
	}

	s.cron.Start()
	logger.Info("Scheduler started", "reminders", s.reminderSchedule, "purge", purgeSchedule)
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Scheduler stopped")
}

// RunReminders sends check-in reminders for today's arrivals.
func (s *Scheduler) RunReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	today := s.jobs.Today()
	sent, err := s.jobs.SendCheckInReminders(ctx, today)
	if err != nil {
		logger.Error("Check-in reminder run failed", "day", today.Format(domain.DateLayout), "error", err)
		return
	}
	logger.Info("Check-in reminder run finished", "day", today.Format(domain.DateLayout), "dispatched", sent)
}

func (s *Scheduler) RunPurge() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.jobs.PurgeIdempotencyKeys(ctx)
	if err != nil {
		logger.Error("Idempotency key purge failed", "error", err)
		return
	}
	if n > 0 {
		logger.Info("Expired idempotency keys purged", "count", n)
	}
}
