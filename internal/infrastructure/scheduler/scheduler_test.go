package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingJob struct {
	name string
	runs atomic.Int64
	err  error
}

func (j *countingJob) Name() string        { return j.name }
func (j *countingJob) Description() string { return "counts executions" }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	return j.err
}

func TestRegister_RejectsNilAndDuplicates(t *testing.T) {
	s := New(DefaultConfig())

	assert.ErrorIs(t, s.Register(nil, NewIntervalSchedule(time.Minute)), ErrNilJob)
	assert.ErrorIs(t, s.Register(&countingJob{name: "a"}, nil), ErrNilSchedule)

	assert.NoError(t, s.Register(&countingJob{name: "a"}, NewIntervalSchedule(time.Minute)))
	assert.ErrorIs(t, s.Register(&countingJob{name: "a"}, NewIntervalSchedule(time.Minute)), ErrJobExists)
}

func TestStartStop_Lifecycle(t *testing.T) {
	s := New(DefaultConfig())

	assert.ErrorIs(t, s.Stop(), ErrNotRunning)

	assert.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	assert.ErrorIs(t, s.Start(context.Background()), ErrAlreadyRunning)

	assert.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
}

func TestRunNow_ExecutesAndRecordsResult(t *testing.T) {
	s := New(DefaultConfig())
	job := &countingJob{name: "refresh"}
	assert.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))

	result, err := s.RunNow(context.Background(), "refresh")
	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "refresh", result.JobName)
	assert.Equal(t, int64(1), job.runs.Load())

	last, ok := s.LastRun("refresh")
	assert.True(t, ok)
	assert.True(t, last.Success)
}

func TestRunNow_UnknownJob(t *testing.T) {
	s := New(DefaultConfig())
	_, err := s.RunNow(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestRunNow_JobErrorSurfaced(t *testing.T) {
	s := New(DefaultConfig())
	boom := errors.New("boom")
	assert.NoError(t, s.Register(&countingJob{name: "bad", err: boom}, NewIntervalSchedule(time.Hour)))

	result, err := s.RunNow(context.Background(), "bad")
	assert.ErrorIs(t, err, boom)
	assert.False(t, result.Success)

	last, _ := s.LastRun("bad")
	assert.False(t, last.Success)
}

func TestLoop_RunsDueJobs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TickInterval = 5 * time.Millisecond
	s := New(cfg)

	job := &countingJob{name: "fast"}
	assert.NoError(t, s.Register(job, NewIntervalSchedule(10*time.Millisecond)))

	assert.NoError(t, s.Start(context.Background()))

	assert.Eventually(t, func() bool {
		return job.runs.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	assert.NoError(t, s.Stop())
}

func TestIntervalSchedule(t *testing.T) {
	s := NewIntervalSchedule(30 * time.Minute)
	base := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, base.Add(30*time.Minute), s.Next(base))
	assert.Equal(t, "@every 30m0s", s.String())
}

func TestDailySchedule(t *testing.T) {
	s := NewDailySchedule(6, 30, nil)

	before := time.Date(2024, 1, 15, 5, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 15, 6, 30, 0, 0, time.UTC), s.Next(before))

	after := time.Date(2024, 1, 15, 7, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 16, 6, 30, 0, 0, time.UTC), s.Next(after))

	// Exactly at the scheduled minute rolls to the next day.
	at := time.Date(2024, 1, 15, 6, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 16, 6, 30, 0, 0, time.UTC), s.Next(at))

	assert.Equal(t, "@daily 06:30 UTC", s.String())
}
