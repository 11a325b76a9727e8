package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-console/internal/domain/attempt"
)

type fakeAttempts struct {
	cutoff  time.Time
	deleted int64
	err     error
}

func (f *fakeAttempts) Create(context.Context, *attempt.Attempt) error { return nil }
func (f *fakeAttempts) ListByUser(context.Context, string, int) ([]attempt.Attempt, error) {
	return nil, nil
}
func (f *fakeAttempts) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.deleted, f.err
}

type fakeSweeper struct {
	cutoff time.Time
}

func (f *fakeSweeper) SweepIdle(cutoff time.Time) int {
	f.cutoff = cutoff
	return 2
}

func TestConsoleJobs_PurgeAttemptJournal(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	repo := &fakeAttempts{deleted: 3}
	jobs := NewConsoleJobs(repo, nil, 48*time.Hour, 0)
	jobs.now = func() time.Time { return now }

	require.NoError(t, jobs.PurgeAttemptJournal(context.Background()))
	assert.Equal(t, now.Add(-48*time.Hour), repo.cutoff)

	repo.err = errors.New("db down")
	assert.Error(t, jobs.PurgeAttemptJournal(context.Background()))
}

func TestConsoleJobs_SweepIdleSessions(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	sweeper := &fakeSweeper{}
	jobs := NewConsoleJobs(nil, sweeper, 0, time.Hour)
	jobs.now = func() time.Time { return now }

	require.NoError(t, jobs.SweepIdleSessions(context.Background()))
	assert.Equal(t, now.Add(-time.Hour), sweeper.cutoff)

	// Disabled jobs do nothing
	require.NoError(t, jobs.PurgeAttemptJournal(context.Background()))
}

func TestScheduler_RunOnce(t *testing.T) {
	s := NewScheduler()
	var order []string
	s.AddJob("first", time.Minute, func(context.Context) error { order = append(order, "first"); return nil })
	s.AddJob("second", time.Minute, func(context.Context) error { order = append(order, "second"); return errors.New("boom") })
	s.AddJob("no-interval", 0, func(context.Context) error { order = append(order, "never"); return nil })

	s.RunOnce(context.Background())

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler()
	ran := make(chan struct{}, 1)
	s.AddJob("tick", time.Hour, func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	s.Start()
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}
	s.Stop()
}
