package tasks

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/reelindex/reelindex/internal/scheduler"
)

// IngestTaskID identifies the periodic ingestion task.
const IngestTaskID = "ingest"

// Runner performs one full ingestion pass.
type Runner interface {
	RunOnce(ctx context.Context) error
}

// IngestTask re-ingests the share on a schedule.
type IngestTask struct {
	runner Runner
	logger zerolog.Logger
}

// NewIngestTask creates a new ingestion task.
func NewIngestTask(runner Runner, logger zerolog.Logger) *IngestTask {
	return &IngestTask{
		runner: runner,
		logger: logger.With().Str("task", IngestTaskID).Logger(),
	}
}

// Run executes one ingestion pass.
func (t *IngestTask) Run(ctx context.Context) error {
	t.logger.Info().Msg("Starting scheduled ingestion")
	return t.runner.RunOnce(ctx)
}

// RegisterIngestTask registers the ingestion task on s. It also runs once at startup.
func RegisterIngestTask(s *scheduler.Scheduler, cron string, task *IngestTask) error {
	return s.RegisterTask(scheduler.TaskConfig{
		ID:          IngestTaskID,
		Name:        "Library ingestion",
		Description: "Walks the share and indexes new movies",
		Cron:        cron,
		Func:        task.Run,
		RunOnStart:  true,
	})
}
