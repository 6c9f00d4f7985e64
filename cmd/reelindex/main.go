package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/reelindex/reelindex/internal/config"
	"github.com/reelindex/reelindex/internal/database"
	"github.com/reelindex/reelindex/internal/library/movies"
	"github.com/reelindex/reelindex/internal/library/scanner"
	"github.com/reelindex/reelindex/internal/logger"
	"github.com/reelindex/reelindex/internal/metadata"
	"github.com/reelindex/reelindex/internal/metadata/tmdb"
	"github.com/reelindex/reelindex/internal/pipeline"
	"github.com/reelindex/reelindex/internal/scheduler"
	"github.com/reelindex/reelindex/internal/scheduler/tasks"
	"github.com/reelindex/reelindex/internal/share"
	"github.com/reelindex/reelindex/internal/startup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "reelindex: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	defer log.Close()

	mainLog := log.WithComponent("main")
	mainLog.Info().
		Str("share", cfg.Share.Address).
		Str("database", cfg.Database.Path).
		Str("schedule", cfg.Ingest.Schedule).
		Msg("starting reelindex")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	mainLog.Info().Msg("running database migrations")
	if err := db.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	retryCfg := startup.DefaultRetryConfig()
	retryCfg.MaxAttempts = cfg.Share.ConnectAttempts

	var conn share.Connector
	err = startup.WithRetry(ctx, "share connection", retryCfg, func(ctx context.Context) error {
		c, err := share.Dial(ctx, share.Config{
			Address:  cfg.Share.Address,
			Username: cfg.Share.Username,
			Password: cfg.Share.Password,
			Domain:   cfg.Share.Domain,
		})
		if err != nil {
			return err
		}
		conn = c
		return nil
	}, &mainLog)
	if err != nil {
		return fmt.Errorf("failed to connect to share: %w", err)
	}
	defer conn.Close()

	client := tmdb.NewClient(cfg.TMDB, log.Logger)
	if !client.IsConfigured() {
		return tmdb.ErrAPIKeyMissing
	}

	artwork := metadata.NewArtworkDownloader(metadata.ArtworkConfig{
		Root:         cfg.Assets.Root,
		Workers:      cfg.Assets.Workers,
		PosterSize:   cfg.Assets.PosterSize,
		SnapshotSize: cfg.Assets.SnapshotSize,
		BackdropSize: cfg.Assets.BackdropSize,
		ProfileSize:  cfg.Assets.ProfileSize,
	}, client, afero.NewOsFs(), log.Logger)

	orchestrator := pipeline.New(
		pipeline.Config{Workers: cfg.Ingest.Workers, SkipKnown: cfg.Ingest.SkipKnown},
		scanner.NewWalker(conn, cfg.Ingest.WalkBuffer, log.Logger),
		metadata.NewEnricher(client, log.Logger),
		artwork,
		movies.NewService(db.Conn(), log.Logger),
		log.Logger,
	)

	if cfg.Ingest.Schedule == "" {
		_, err := orchestrator.Run(ctx)
		if errors.Is(err, context.Canceled) {
			mainLog.Info().Msg("ingestion interrupted")
			return nil
		}
		return err
	}

	sched, err := scheduler.New(ctx, log.Logger)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	if err := tasks.RegisterIngestTask(sched, cfg.Ingest.Schedule, tasks.NewIngestTask(orchestrator, log.Logger)); err != nil {
		return fmt.Errorf("failed to register ingest task: %w", err)
	}
	sched.Start()

	<-ctx.Done()
	mainLog.Info().Msg("received shutdown signal")

	done := make(chan error, 1)
	go func() { done <- sched.Stop() }()
	select {
	case err := <-done:
		if err != nil {
			mainLog.Error().Err(err).Msg("scheduler shutdown error")
		}
	case <-time.After(30 * time.Second):
		mainLog.Warn().Msg("timed out waiting for running ingestion to stop")
	}

	mainLog.Info().Msg("reelindex stopped")
	return nil
}
