package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-console/internal/domain/attempt"
)

// SessionSweeper drops per-user workflow sessions idle since before cutoff.
type SessionSweeper interface {
	SweepIdle(cutoff time.Time) int
}

type ConsoleJobs struct {
	attempts  attempt.Repository
	sessions  SessionSweeper
	retention time.Duration
	idleTTL   time.Duration
	now       func() time.Time
}

func NewConsoleJobs(attempts attempt.Repository, sessions SessionSweeper, retention, idleTTL time.Duration) *ConsoleJobs {
	return &ConsoleJobs{
		attempts:  attempts,
		sessions:  sessions,
		retention: retention,
		idleTTL:   idleTTL,
		now:       time.Now,
	}
}

func (j *ConsoleJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("purge_attempt_journal", 6*time.Hour, j.PurgeAttemptJournal)
	scheduler.AddJob("sweep_idle_sessions", 15*time.Minute, j.SweepIdleSessions)
}

// PurgeAttemptJournal deletes journal entries past the retention window.
func (j *ConsoleJobs) PurgeAttemptJournal(ctx context.Context) error {
	if j.attempts == nil || j.retention <= 0 {
		return nil
	}

	cutoff := j.now().Add(-j.retention)
	deleted, err := j.attempts.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		slog.Info("Purged attempt journal", "deleted", deleted, "cutoff", cutoff)
	}
	return nil
}

func (j *ConsoleJobs) SweepIdleSessions(ctx context.Context) error {
	if j.sessions == nil || j.idleTTL <= 0 {
		return nil
	}

	if n := j.sessions.SweepIdle(j.now().Add(-j.idleTTL)); n > 0 {
		slog.Info("Dropped idle console sessions", "count", n)
	}
	return nil
}
