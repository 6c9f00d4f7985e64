// Package mock provides an in-memory TMDB client for tests and offline runs.
package mock

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/reelindex/reelindex/internal/metadata/tmdb"
)

// TMDBClient is a mock implementation of the TMDB client.
// Register data with the Add* methods; unregistered lookups return tmdb.ErrMovieNotFound.
type TMDBClient struct {
	mu      sync.RWMutex
	movies  []tmdb.MovieResult
	genres  map[int][]tmdb.Genre
	credits map[int]*tmdb.CreditsResponse
	images  map[string][]byte
	errs    map[string]error

	imageFetches atomic.Int64
	searches     atomic.Int64
}

// NewTMDBClient creates a new mock TMDB client.
func NewTMDBClient() *TMDBClient {
	return &TMDBClient{
		genres:  make(map[int][]tmdb.Genre),
		credits: make(map[int]*tmdb.CreditsResponse),
		images:  make(map[string][]byte),
		errs:    make(map[string]error),
	}
}

func (c *TMDBClient) Name() string {
	return "tmdb-mock"
}

func (c *TMDBClient) IsConfigured() bool {
	return true
}

// AddMovie registers a search hit. Hits are returned in registration order.
func (c *TMDBClient) AddMovie(movie tmdb.MovieResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.movies = append(c.movies, movie)
}

// SetGenres registers the genres of a movie.
func (c *TMDBClient) SetGenres(id int, genres ...tmdb.Genre) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.genres[id] = genres
}

// SetCredits registers the credits of a movie.
func (c *TMDBClient) SetCredits(id int, cast []tmdb.CastMember, crew []tmdb.CrewMember) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.credits[id] = &tmdb.CreditsResponse{ID: id, Cast: cast, Crew: crew}
}

// AddImage registers image bytes for a reference, served at any size.
func (c *TMDBClient) AddImage(path string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images[path] = data
}

// FailOn makes an operation ("search", "genres", "credits", "image") fail with err.
func (c *TMDBClient) FailOn(op string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs[op] = err
}

// ImageFetches returns how many images were requested.
func (c *TMDBClient) ImageFetches() int64 {
	return c.imageFetches.Load()
}

// Searches returns how many searches were made.
func (c *TMDBClient) Searches() int64 {
	return c.searches.Load()
}

func (c *TMDBClient) SearchMovies(ctx context.Context, query string, year int) ([]tmdb.MovieResult, error) {
	c.searches.Add(1)
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.errs["search"]; err != nil {
		return nil, err
	}

	query = strings.ToLower(query)
	var results []tmdb.MovieResult
	for _, movie := range c.movies {
		if !strings.Contains(strings.ToLower(movie.Title), query) {
			continue
		}
		if year > 0 && !strings.HasPrefix(movie.ReleaseDate, fmt.Sprintf("%d", year)) {
			continue
		}
		results = append(results, movie)
	}
	return results, nil
}

func (c *TMDBClient) GetGenres(ctx context.Context, id int) ([]tmdb.Genre, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.errs["genres"]; err != nil {
		return nil, err
	}
	genres, ok := c.genres[id]
	if !ok {
		return nil, tmdb.ErrMovieNotFound
	}
	return genres, nil
}

func (c *TMDBClient) GetCredits(ctx context.Context, id int) (*tmdb.CreditsResponse, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.errs["credits"]; err != nil {
		return nil, err
	}
	credits, ok := c.credits[id]
	if !ok {
		return nil, tmdb.ErrMovieNotFound
	}
	return credits, nil
}

func (c *TMDBClient) FetchImage(ctx context.Context, path string, size string) (io.ReadCloser, error) {
	c.imageFetches.Add(1)
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.errs["image"]; err != nil {
		return nil, err
	}
	data, ok := c.images[path]
	if !ok {
		return nil, fmt.Errorf("%w: 404 for %s", tmdb.ErrImageStatus, path)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
