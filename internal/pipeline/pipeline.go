// Package pipeline drives candidates from the share walker through
// enrichment, artwork download and persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/reelindex/reelindex/internal/library/scanner"
	"github.com/reelindex/reelindex/internal/metadata"
)

// DefaultWorkers bounds concurrent movies when no limit is configured.
const DefaultWorkers = 10

// Walker produces candidates.
type Walker interface {
	Walk(ctx context.Context) <-chan scanner.Result
}

// Enricher resolves a candidate against the metadata provider.
type Enricher interface {
	Enrich(ctx context.Context, c scanner.Candidate) (*metadata.EnrichedMovie, []metadata.CreditedPerson, metadata.Report)
}

// ArtworkDownloader stores the images of a movie and its people.
type ArtworkDownloader interface {
	DownloadAll(ctx context.Context, movie *metadata.EnrichedMovie, people []metadata.CreditedPerson) metadata.AssetReport
}

// Store persists enriched movies.
type Store interface {
	Persist(ctx context.Context, movie *metadata.EnrichedMovie, people []metadata.CreditedPerson) (int64, error)
	KnownPaths(ctx context.Context) (map[string]struct{}, error)
}

// Config holds orchestrator settings.
type Config struct {
	Workers   int
	SkipKnown bool
}

// Orchestrator runs each discovered candidate through the pipeline stages.
// Candidates are processed concurrently up to Config.Workers; a failing
// candidate never affects the others.
type Orchestrator struct {
	cfg      Config
	walker   Walker
	enricher Enricher
	artwork  ArtworkDownloader
	store    Store
	logger   zerolog.Logger
}

// New creates a new orchestrator.
func New(cfg Config, walker Walker, enricher Enricher, artwork ArtworkDownloader, store Store, logger zerolog.Logger) *Orchestrator {
	if cfg.Workers < 1 {
		cfg.Workers = DefaultWorkers
	}
	return &Orchestrator{
		cfg:      cfg,
		walker:   walker,
		enricher: enricher,
		artwork:  artwork,
		store:    store,
		logger:   logger.With().Str("component", "pipeline").Logger(),
	}
}

// Run walks the share and processes every candidate. It returns once all
// started units have finished. The error is non-nil only when ctx ended the
// run early or the walker was already busy with another run.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	summary := &Summary{RunID: uuid.NewString()}
	log := o.logger.With().Str("runId", summary.RunID).Logger()

	log.Info().Int("workers", o.cfg.Workers).Bool("skipKnown", o.cfg.SkipKnown).Msg("Starting ingestion run")

	known := o.knownPaths(ctx, log)

	var (
		g       errgroup.Group
		mu      sync.Mutex
		walkErr error
	)
	g.SetLimit(o.cfg.Workers)

	// summary is shared with running units; every mutation holds mu.
	for res := range o.walker.Walk(ctx) {
		if errors.Is(res.Err, scanner.ErrWalkInProgress) {
			walkErr = res.Err
			log.Error().Err(res.Err).Msg("Walker busy, nothing ingested")
			continue
		}
		if res.Err != nil {
			mu.Lock()
			summary.recordWalkError(res.Err)
			mu.Unlock()
			log.Warn().Err(res.Err).Msg("Skipping entry")
			continue
		}

		candidate := res.Candidate
		mu.Lock()
		summary.Discovered++
		mu.Unlock()

		if _, ok := known[candidate.Path]; ok {
			log.Debug().Str("path", candidate.Path).Msg("Already indexed, skipping")
			mu.Lock()
			summary.add(Outcome{Path: candidate.Path, State: StateSkipped})
			mu.Unlock()
			continue
		}

		// Go blocks while Workers units are in flight, which in turn lets the
		// walker fill its buffer and then wait.
		g.Go(func() error {
			outcome := o.process(ctx, candidate, log)
			mu.Lock()
			summary.add(outcome)
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	summary.sortOutcomes()
	summary.Duration = time.Since(start)

	log.Info().
		Int("discovered", summary.Discovered).
		Int("persisted", summary.Persisted).
		Int("failed", summary.Failed).
		Int("notFound", summary.NotFound).
		Int("skipped", summary.Skipped).
		Int("parseFailures", summary.ParseFailures).
		Int("listFailures", summary.ListFailures).
		Dur("duration", summary.Duration).
		Msg("Ingestion run complete")

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, walkErr
}

// RunOnce runs the pipeline and discards the summary.
func (o *Orchestrator) RunOnce(ctx context.Context) error {
	_, err := o.Run(ctx)
	return err
}

func (o *Orchestrator) knownPaths(ctx context.Context, log zerolog.Logger) map[string]struct{} {
	if !o.cfg.SkipKnown {
		return nil
	}
	known, err := o.store.KnownPaths(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load indexed paths, processing everything")
		return nil
	}
	return known
}

// process moves one candidate through enrichment, artwork and persistence.
func (o *Orchestrator) process(ctx context.Context, c scanner.Candidate, runLog zerolog.Logger) (out Outcome) {
	start := time.Now()
	log := runLog.With().Str("path", c.Path).Logger()
	out = Outcome{Path: c.Path, State: StateDiscovered}

	defer func() {
		if p := recover(); p != nil {
			out.State = StateFailed
			out.Err = fmt.Errorf("panic while processing %s: %v", c.Path, p)
			log.Error().Err(out.Err).Msg("Unit panicked")
		}
		out.Duration = time.Since(start)
	}()

	if err := ctx.Err(); err != nil {
		out.State = StateFailed
		out.Err = err
		return out
	}

	out.State = StateEnriching
	movie, people, report := o.enricher.Enrich(ctx, c)
	out.Report = report

	out.State = StateAssetsFetching
	out.Assets = o.artwork.DownloadAll(ctx, movie, people)

	id, err := o.store.Persist(ctx, movie, people)
	if err != nil {
		out.State = StateFailed
		out.Err = err
		log.Error().Err(err).Msg("Failed to persist movie")
		return out
	}

	out.State = StatePersisted
	out.MovieID = id
	log.Info().
		Int64("movieId", id).
		Int64("providerId", movie.ProviderID).
		Bool("identified", movie.Identified()).
		Int("genres", len(movie.Genres)).
		Int("people", len(people)).
		Int("imagesFailed", out.Assets.Failed).
		AnErr("enrichErr", report.Err()).
		Msg("Movie indexed")

	return out
}
