package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// PendingReminder re-notifies approvers about requests still waiting for a decision.
type PendingReminder interface {
	RemindPending(ctx context.Context, olderThan time.Duration) (int, error)
}

type CorrectionJobs struct {
	reminder      PendingReminder
	reminderAfter time.Duration
	interval      time.Duration
}

func NewCorrectionJobs(reminder PendingReminder, reminderAfter, interval time.Duration) *CorrectionJobs {
	return &CorrectionJobs{
		reminder:      reminder,
		reminderAfter: reminderAfter,
		interval:      interval,
	}
}

func (j *CorrectionJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("remind_pending_corrections", j.interval, j.RemindPendingCorrections)
}

func (j *CorrectionJobs) RemindPendingCorrections(ctx context.Context) error {
	sent, err := j.reminder.RemindPending(ctx, j.reminderAfter)
	if err != nil {
		return fmt.Errorf("remind pending corrections: %w", err)
	}
	if sent > 0 {
		slog.Info("Cron: pending correction reminders sent", "count", sent, "older_than", j.reminderAfter)
	}
	return nil
}
