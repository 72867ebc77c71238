package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReminder struct {
	calls     atomic.Int32
	olderThan time.Duration
	err       error
}

func (f *fakeReminder) RemindPending(_ context.Context, olderThan time.Duration) (int, error) {
	f.calls.Add(1)
	f.olderThan = olderThan
	return 2, f.err
}

func TestCorrectionJobs_RunOnce(t *testing.T) {
	reminder := &fakeReminder{}
	scheduler := NewScheduler()
	NewCorrectionJobs(reminder, 24*time.Hour, time.Hour).RegisterJobs(scheduler)

	require.NoError(t, scheduler.RunOnce(context.Background()))

	assert.Equal(t, int32(1), reminder.calls.Load())
	assert.Equal(t, 24*time.Hour, reminder.olderThan)
}

func TestCorrectionJobs_WrapsError(t *testing.T) {
	reminder := &fakeReminder{err: errors.New("db down")}
	jobs := NewCorrectionJobs(reminder, time.Hour, time.Hour)

	err := jobs.RemindPendingCorrections(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, reminder.err)
}

func TestScheduler_StartStop(t *testing.T) {
	var runs atomic.Int32
	scheduler := NewScheduler()
	scheduler.AddJob("tick", 10*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	scheduler.Start()
	require.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	scheduler.Stop()

	stopped := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, runs.Load())
}

func TestScheduler_RunOnceRecoversPanics(t *testing.T) {
	scheduler := NewScheduler()
	scheduler.AddJob("boom", time.Hour, func(ctx context.Context) error { panic("nil map") })
	scheduler.AddJob("ignored", 0, func(ctx context.Context) error { return errors.New("never runs") })

	err := scheduler.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic in job boom")
	assert.NotContains(t, err.Error(), "never runs")
}
