package metadata

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/reelindex/reelindex/internal/library/scanner"
	"github.com/reelindex/reelindex/internal/metadata/tmdb"
)

// ErrNotFound is returned when a search yields no results.
var ErrNotFound = errors.New("no matching movie found")

// ProviderError wraps a failed provider call.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Report records which enrichment steps failed for a candidate.
type Report struct {
	IdentityErr error
	GenresErr   error
	CreditsErr  error
	Cast        int
	Crew        int
}

// NotFound reports whether the search matched nothing.
func (r Report) NotFound() bool {
	return errors.Is(r.IdentityErr, ErrNotFound)
}

// Err joins every recorded step error.
func (r Report) Err() error {
	return errors.Join(r.IdentityErr, r.GenresErr, r.CreditsErr)
}

// Enricher resolves candidates against the metadata provider.
// Resolved identities are cached by title and year; misses and errors are
// never cached.
type Enricher struct {
	client TMDBClient
	cache  *Cache[Identity]
	logger zerolog.Logger
}

// NewEnricher creates an enricher backed by client.
func NewEnricher(client TMDBClient, logger zerolog.Logger) *Enricher {
	return NewEnricherWithCache(client, NewCache[Identity](DefaultCacheConfig()), logger)
}

// NewEnricherWithCache creates an enricher using the given identity cache.
// A nil cache disables caching.
func NewEnricherWithCache(client TMDBClient, cache *Cache[Identity], logger zerolog.Logger) *Enricher {
	return &Enricher{
		client: client,
		cache:  cache,
		logger: logger.With().Str("component", "enricher").Logger(),
	}
}

// SelectMostPopular returns the result with the highest popularity.
// Ties go to the earliest result in provider order.
func SelectMostPopular(results []tmdb.MovieResult) (tmdb.MovieResult, bool) {
	if len(results) == 0 {
		return tmdb.MovieResult{}, false
	}
	best := results[0]
	for _, r := range results[1:] {
		if r.Popularity > best.Popularity {
			best = r
		}
	}
	return best, true
}

// ResolveIdentity searches for the candidate and picks the most popular match.
func (e *Enricher) ResolveIdentity(ctx context.Context, c scanner.Candidate) (Identity, error) {
	key := searchKey(c)
	if e.cache != nil {
		if id, ok := e.cache.Get(key); ok {
			return id, nil
		}
	}

	results, err := e.client.SearchMovies(ctx, c.Title, searchYear(c.Year))
	if err != nil {
		return Identity{}, &ProviderError{Op: "search", Err: err}
	}

	best, ok := SelectMostPopular(results)
	if !ok {
		return Identity{}, fmt.Errorf("%w: %q (%s)", ErrNotFound, c.Title, c.Year)
	}

	id := Identity{
		ProviderID:    int64(best.ID),
		Title:         best.Title,
		OriginalTitle: best.OriginalTitle,
		ReleaseDate:   best.ReleaseDate,
		Summary:       best.Overview,
		VoteAverage:   best.VoteAverage,
		PosterRef:     deref(best.PosterPath),
		BackdropRef:   deref(best.BackdropPath),
	}
	if e.cache != nil {
		e.cache.Set(key, id)
	}
	return id, nil
}

func searchKey(c scanner.Candidate) string {
	return strings.ToLower(c.Title) + "|" + c.Year
}

// ResolveGenres fetches the genres of a resolved movie.
func (e *Enricher) ResolveGenres(ctx context.Context, providerID int64) ([]Genre, error) {
	raw, err := e.client.GetGenres(ctx, int(providerID))
	if err != nil {
		return nil, &ProviderError{Op: "genres", Err: err}
	}

	genres := make([]Genre, 0, len(raw))
	for _, g := range raw {
		genres = append(genres, Genre{ID: int64(g.ID), Name: g.Name})
	}
	return genres, nil
}

// ResolveCredits fetches and filters the credits of a resolved movie.
// Cast comes first, then principal crew.
func (e *Enricher) ResolveCredits(ctx context.Context, providerID int64) ([]CreditedPerson, error) {
	raw, err := e.client.GetCredits(ctx, int(providerID))
	if err != nil {
		return nil, &ProviderError{Op: "credits", Err: err}
	}

	people := FilterCast(raw.Cast)
	people = append(people, FilterCrew(raw.Crew)...)
	return people, nil
}

// Enrich runs every resolution step for a candidate. It never fails: each
// step that errors leaves its fields empty and is recorded in the report.
func (e *Enricher) Enrich(ctx context.Context, c scanner.Candidate) (*EnrichedMovie, []CreditedPerson, Report) {
	log := e.logger.With().Str("path", c.Path).Logger()
	movie := NewEnrichedMovie(c)
	var report Report

	identity, err := e.ResolveIdentity(ctx, c)
	if err != nil {
		report.IdentityErr = err
		if errors.Is(err, ErrNotFound) {
			log.Warn().Str("title", c.Title).Str("year", c.Year).Msg("No provider match, keeping filename data")
		} else {
			log.Error().Err(err).Msg("Identity lookup failed")
		}
		return movie, nil, report
	}
	movie.Apply(identity)

	genres, err := e.ResolveGenres(ctx, movie.ProviderID)
	if err != nil {
		report.GenresErr = err
		log.Error().Err(err).Int64("providerId", movie.ProviderID).Msg("Genre lookup failed")
	} else {
		movie.SetGenres(genres)
	}

	people, err := e.ResolveCredits(ctx, movie.ProviderID)
	if err != nil {
		report.CreditsErr = err
		log.Error().Err(err).Int64("providerId", movie.ProviderID).Msg("Credits lookup failed")
		people = nil
	}
	for _, p := range people {
		if p.Kind == CreditCast {
			report.Cast++
		} else {
			report.Crew++
		}
	}

	log.Debug().
		Int64("providerId", movie.ProviderID).
		Str("title", movie.DisplayTitle).
		Int("genres", len(movie.Genres)).
		Int("cast", report.Cast).
		Int("crew", report.Crew).
		Msg("Enriched movie")

	return movie, people, report
}

// searchYear returns the numeric year, or 0 to search without one.
func searchYear(year string) int {
	y, err := strconv.Atoi(year)
	if err != nil || y <= 0 {
		return 0
	}
	return y
}
