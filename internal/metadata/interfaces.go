package metadata

import (
	"context"
	"io"

	"github.com/reelindex/reelindex/internal/metadata/tmdb"
)

// TMDBClient defines the TMDB operations used during enrichment.
type TMDBClient interface {
	Name() string
	IsConfigured() bool
	SearchMovies(ctx context.Context, query string, year int) ([]tmdb.MovieResult, error)
	GetGenres(ctx context.Context, id int) ([]tmdb.Genre, error)
	GetCredits(ctx context.Context, id int) (*tmdb.CreditsResponse, error)
}

// ImageSource opens provider images by reference and size.
type ImageSource interface {
	FetchImage(ctx context.Context, path string, size string) (io.ReadCloser, error)
}
