package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RegisterTask(t *testing.T) {
	s, err := New(context.Background(), zerolog.Nop())
	require.NoError(t, err)
	s.Start()
	defer s.Stop()

	cfg := TaskConfig{ID: "ingest", Name: "Ingest", Cron: "0 3 * * *", Func: func(ctx context.Context) error { return nil }}
	require.NoError(t, s.RegisterTask(cfg))
	assert.Error(t, s.RegisterTask(cfg))

	bad := TaskConfig{ID: "bad", Name: "Bad", Cron: "not a cron", Func: cfg.Func}
	assert.Error(t, s.RegisterTask(bad))
}

func TestScheduler_RunOnStart(t *testing.T) {
	s, err := New(context.Background(), zerolog.Nop())
	require.NoError(t, err)

	var calls atomic.Int32
	require.NoError(t, s.RegisterTask(TaskConfig{
		ID:         "ingest",
		Name:       "Ingest",
		Cron:       "0 3 * * *",
		RunOnStart: true,
		Func: func(ctx context.Context) error {
			calls.Add(1)
			return errors.New("share offline")
		},
	}))

	s.Start()
	require.Eventually(t, func() bool {
		info, err := s.GetTask("ingest")
		return err == nil && info.Runs == 1 && !info.Running
	}, 2*time.Second, 10*time.Millisecond)

	info, err := s.GetTask("ingest")
	require.NoError(t, err)
	assert.Equal(t, "share offline", info.LastErr)
	assert.NotNil(t, info.LastRun)
	assert.NotNil(t, info.NextRun)
	assert.Equal(t, int32(1), calls.Load())

	require.NoError(t, s.Stop())
}

func TestScheduler_RunNowRejectsOverlap(t *testing.T) {
	s, err := New(context.Background(), zerolog.Nop())
	require.NoError(t, err)

	release := make(chan struct{})
	require.NoError(t, s.RegisterTask(TaskConfig{
		ID:   "ingest",
		Name: "Ingest",
		Cron: "0 3 * * *",
		Func: func(ctx context.Context) error {
			select {
			case <-release:
			case <-ctx.Done():
			}
			return nil
		},
	}))
	s.Start()

	require.NoError(t, s.RunNow("ingest"))
	assert.ErrorIs(t, s.RunNow("ingest"), ErrTaskRunning)
	assert.Error(t, s.RunNow("missing"))

	close(release)
	require.NoError(t, s.Stop())

	info, err := s.GetTask("ingest")
	require.NoError(t, err)
	assert.Equal(t, 1, info.Runs)
}

func TestScheduler_StopCancelsTasks(t *testing.T) {
	s, err := New(context.Background(), zerolog.Nop())
	require.NoError(t, err)

	started := make(chan struct{})
	require.NoError(t, s.RegisterTask(TaskConfig{
		ID:   "ingest",
		Name: "Ingest",
		Cron: "0 3 * * *",
		Func: func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		},
	}))
	s.Start()
	require.NoError(t, s.RunNow("ingest"))
	<-started

	require.NoError(t, s.Stop())
	info, err := s.GetTask("ingest")
	require.NoError(t, err)
	assert.Equal(t, context.Canceled.Error(), info.LastErr)
}
