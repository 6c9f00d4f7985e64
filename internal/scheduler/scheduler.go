package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// ErrTaskRunning is returned by RunNow while the task is still executing.
var ErrTaskRunning = errors.New("task is already running")

// TaskFunc is the function signature for scheduled tasks.
type TaskFunc func(ctx context.Context) error

// TaskConfig contains configuration for a scheduled task.
type TaskConfig struct {
	ID          string
	Name        string
	Description string
	Cron        string // Cron expression: "0 3 * * *" for 03:00 daily
	Func        TaskFunc
	RunOnStart  bool // Execute immediately on startup
}

// TaskInfo describes the state of a registered task.
type TaskInfo struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Cron    string     `json:"cron"`
	LastRun *time.Time `json:"lastRun,omitempty"`
	LastErr string     `json:"lastErr,omitempty"`
	NextRun *time.Time `json:"nextRun,omitempty"`
	Running bool       `json:"running"`
	Runs    int        `json:"runs"`
}

// taskEntry holds internal task state.
type taskEntry struct {
	config  TaskConfig
	job     gocron.Job
	lastRun *time.Time
	lastErr error
	running bool
	runs    int
}

// Scheduler runs registered tasks on cron schedules. A task never overlaps
// with itself: a tick that fires while it is running is skipped.
type Scheduler struct {
	gocron gocron.Scheduler
	logger zerolog.Logger
	tasks  map[string]*taskEntry
	mu     sync.Mutex
	wg     sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new scheduler. Tasks receive a context derived from ctx that
// is cancelled by Stop.
func New(ctx context.Context, logger zerolog.Logger) (*Scheduler, error) {
	gs, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	taskCtx, cancel := context.WithCancel(ctx)
	return &Scheduler{
		gocron: gs,
		logger: logger.With().Str("component", "scheduler").Logger(),
		tasks:  make(map[string]*taskEntry),
		ctx:    taskCtx,
		cancel: cancel,
	}, nil
}

// RegisterTask registers a new scheduled task.
func (s *Scheduler) RegisterTask(config TaskConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[config.ID]; exists {
		return fmt.Errorf("task with ID %q already registered", config.ID)
	}

	job, err := s.gocron.NewJob(
		gocron.CronJob(config.Cron, false),
		gocron.NewTask(func() { s.executeTask(config.ID) }),
		gocron.WithName(config.Name),
		gocron.WithTags(config.ID),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create job for task %q: %w", config.ID, err)
	}

	s.tasks[config.ID] = &taskEntry{
		config: config,
		job:    job,
	}

	s.logger.Info().
		Str("id", config.ID).
		Str("name", config.Name).
		Str("cron", config.Cron).
		Bool("runOnStart", config.RunOnStart).
		Msg("Registered task")

	return nil
}

// claim marks the task running. It returns nil when the task is unknown or
// already running.
func (s *Scheduler) claim(taskID string) *taskEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.tasks[taskID]
	if !exists || entry.running {
		return nil
	}
	entry.running = true
	s.wg.Add(1)
	return entry
}

// executeTask runs a task and updates its state.
func (s *Scheduler) executeTask(taskID string) {
	entry := s.claim(taskID)
	if entry == nil {
		s.logger.Debug().Str("id", taskID).Msg("Task already running, skipping")
		return
	}
	s.run(entry)
}

func (s *Scheduler) run(entry *taskEntry) {
	defer s.wg.Done()

	startTime := time.Now()
	s.logger.Info().
		Str("id", entry.config.ID).
		Str("name", entry.config.Name).
		Msg("Starting task")

	err := entry.config.Func(s.ctx)

	s.mu.Lock()
	entry.running = false
	entry.lastRun = &startTime
	entry.lastErr = err
	entry.runs++
	s.mu.Unlock()

	duration := time.Since(startTime)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("id", entry.config.ID).
			Dur("duration", duration).
			Msg("Task failed")
	} else {
		s.logger.Info().
			Str("id", entry.config.ID).
			Dur("duration", duration).
			Msg("Task completed")
	}
}

// Start starts the scheduler and runs any tasks configured with RunOnStart.
func (s *Scheduler) Start() {
	s.logger.Info().Msg("Starting scheduler")
	s.gocron.Start()

	s.mu.Lock()
	tasksToRun := make([]string, 0)
	for id, entry := range s.tasks {
		if entry.config.RunOnStart {
			tasksToRun = append(tasksToRun, id)
		}
	}
	s.mu.Unlock()

	for _, taskID := range tasksToRun {
		go s.executeTask(taskID)
	}
}

// Stop cancels running tasks, waits for them to return and shuts gocron down.
func (s *Scheduler) Stop() error {
	s.logger.Info().Msg("Stopping scheduler")
	s.cancel()
	err := s.gocron.Shutdown()
	s.wg.Wait()
	return err
}

// RunNow manually triggers a task to run immediately.
func (s *Scheduler) RunNow(taskID string) error {
	s.mu.Lock()
	_, exists := s.tasks[taskID]
	s.mu.Unlock()
	if !exists {
		return fmt.Errorf("task %q not found", taskID)
	}

	entry := s.claim(taskID)
	if entry == nil {
		return fmt.Errorf("%w: %q", ErrTaskRunning, taskID)
	}

	go s.run(entry)
	return nil
}

// GetTask returns information about a specific task.
func (s *Scheduler) GetTask(taskID string) (*TaskInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.tasks[taskID]
	if !exists {
		return nil, fmt.Errorf("task %q not found", taskID)
	}

	info := &TaskInfo{
		ID:      entry.config.ID,
		Name:    entry.config.Name,
		Cron:    entry.config.Cron,
		LastRun: entry.lastRun,
		Running: entry.running,
		Runs:    entry.runs,
	}
	if entry.lastErr != nil {
		info.LastErr = entry.lastErr.Error()
	}

	if nextRun, err := entry.job.NextRun(); err == nil {
		info.NextRun = &nextRun
	}

	return info, nil
}
