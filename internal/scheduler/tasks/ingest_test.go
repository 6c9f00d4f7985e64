package tasks

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelindex/reelindex/internal/scheduler"
)

type countingRunner struct {
	runs atomic.Int32
}

func (r *countingRunner) RunOnce(ctx context.Context) error {
	r.runs.Add(1)
	return nil
}

func TestRegisterIngestTask_RunsOnStart(t *testing.T) {
	s, err := scheduler.New(context.Background(), zerolog.Nop())
	require.NoError(t, err)

	runner := &countingRunner{}
	require.NoError(t, RegisterIngestTask(s, "0 3 * * *", NewIngestTask(runner, zerolog.Nop())))

	s.Start()
	require.Eventually(t, func() bool {
		info, err := s.GetTask(IngestTaskID)
		return err == nil && info.Runs == 1 && !info.Running
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Stop())

	assert.Equal(t, int32(1), runner.runs.Load())
}

func TestRegisterIngestTask_InvalidCron(t *testing.T) {
	s, err := scheduler.New(context.Background(), zerolog.Nop())
	require.NoError(t, err)

	err = RegisterIngestTask(s, "every tuesday", NewIngestTask(&countingRunner{}, zerolog.Nop()))
	assert.Error(t, err)
}
