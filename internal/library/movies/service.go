package movies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/reelindex/reelindex/internal/database"
	"github.com/reelindex/reelindex/internal/metadata"
)

const (
	insertMovieSQL = `
INSERT INTO movie (provider_id, path, extra_tag, title, original_title, release_date, summary,
                   vote_average, poster_large, poster_snapshot, backdrop)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(path) DO NOTHING`

	selectMovieIDSQL = `SELECT id FROM movie WHERE path = ?`

	insertGenreSQL = `INSERT INTO genre (id, name) VALUES (?, ?) ON CONFLICT(id) DO NOTHING`

	insertMovieGenreSQL = `
INSERT INTO movie_genre (movie_id, genre_id) VALUES (?, ?)
ON CONFLICT(movie_id, genre_id) DO NOTHING`

	insertPersonSQL = `
INSERT INTO person (provider_id, movie_id, name, role_label, character, image_path)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(provider_id, movie_id, character, role_label) DO NOTHING`
)

// Service stores enriched movies. Writes are serialized; each movie is
// written in a single transaction.
type Service struct {
	db     *sql.DB
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewService creates a new movie service.
func NewService(db *sql.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("component", "movies").Logger(),
	}
}

// Persist writes the movie, its genres and its credits. A path that is
// already stored keeps its existing row; genres and credits are still
// linked to it without creating duplicates. Returns the movie id.
func (s *Service) Persist(ctx context.Context, movie *metadata.EnrichedMovie, people []metadata.CreditedPerson) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var movieID int64
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		id, err := insertMovie(ctx, tx, movie)
		if err != nil {
			return err
		}
		movieID = id

		for _, g := range movie.Genres {
			if _, err := tx.ExecContext(ctx, insertGenreSQL, g.ID, g.Name); err != nil {
				return fmt.Errorf("insert genre %d: %w", g.ID, err)
			}
			if _, err := tx.ExecContext(ctx, insertMovieGenreSQL, movieID, g.ID); err != nil {
				return fmt.Errorf("link genre %d: %w", g.ID, err)
			}
		}

		for _, p := range people {
			character := ""
			if p.Kind == metadata.CreditCast {
				character = p.Character
			}
			if _, err := tx.ExecContext(ctx, insertPersonSQL,
				p.ProviderID, movieID, p.Name, p.RoleLabel(), character, nullString(p.LocalImagePath),
			); err != nil {
				return fmt.Errorf("insert person %d: %w", p.ProviderID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, &PersistError{Path: movie.Path, Err: err}
	}

	s.logger.Debug().
		Str("path", movie.Path).
		Int64("movieId", movieID).
		Int("genres", len(movie.Genres)).
		Int("people", len(people)).
		Msg("Persisted movie")

	return movieID, nil
}

func insertMovie(ctx context.Context, tx *sql.Tx, movie *metadata.EnrichedMovie) (int64, error) {
	title := movie.DisplayTitle
	if title == "" {
		title = movie.Title
	}
	// Unidentified movies keep the filename year as their release date.
	releaseDate := movie.ReleaseDate
	if releaseDate == "" {
		releaseDate = movie.Year
	}

	_, err := tx.ExecContext(ctx, insertMovieSQL,
		nullInt64(movie.ProviderID),
		movie.Path,
		nullString(movie.ExtraTag),
		title,
		nullString(movie.OriginalTitle),
		nullString(releaseDate),
		nullString(movie.Summary),
		movie.VoteAverage,
		nullString(movie.Asset(metadata.AssetPosterLarge).LocalPath),
		nullString(movie.Asset(metadata.AssetPosterSnapshot).LocalPath),
		nullString(movie.Asset(metadata.AssetBackdrop).LocalPath),
	)
	if err != nil {
		return 0, fmt.Errorf("insert movie: %w", err)
	}

	var id int64
	if err := tx.QueryRowContext(ctx, selectMovieIDSQL, movie.Path).Scan(&id); err != nil {
		return 0, fmt.Errorf("read movie id: %w", err)
	}
	return id, nil
}

// GetByPath retrieves a movie by its file path.
func (s *Service) GetByPath(ctx context.Context, path string) (*Movie, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, provider_id, path, extra_tag, title, original_title, release_date, summary,
       vote_average, poster_large, poster_snapshot, backdrop
FROM movie WHERE path = ?`, path)

	var (
		m                                     Movie
		providerID                            sql.NullInt64
		extra, original, release, summary     sql.NullString
		posterLarge, posterSnapshot, backdrop sql.NullString
	)
	err := row.Scan(&m.ID, &providerID, &m.Path, &extra, &m.Title, &original, &release, &summary,
		&m.VoteAverage, &posterLarge, &posterSnapshot, &backdrop)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}

	m.ProviderID = providerID.Int64
	m.ExtraTag = extra.String
	m.OriginalTitle = original.String
	m.ReleaseDate = release.String
	m.Summary = summary.String
	m.PosterLarge = posterLarge.String
	m.PosterSnapshot = posterSnapshot.String
	m.Backdrop = backdrop.String
	return &m, nil
}

// KnownPaths returns the paths of every stored movie.
func (s *Service) KnownPaths(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path FROM movie`)
	if err != nil {
		return nil, fmt.Errorf("failed to list paths: %w", err)
	}
	defer rows.Close()

	paths := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan path: %w", err)
		}
		paths[p] = struct{}{}
	}
	return paths, rows.Err()
}

// GenresForMovie returns the genres linked to a movie ordered by id.
func (s *Service) GenresForMovie(ctx context.Context, movieID int64) ([]metadata.Genre, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT g.id, g.name FROM genre g
JOIN movie_genre mg ON mg.genre_id = g.id
WHERE mg.movie_id = ?
ORDER BY g.id`, movieID)
	if err != nil {
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	defer rows.Close()

	var genres []metadata.Genre
	for rows.Next() {
		var g metadata.Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("failed to scan genre: %w", err)
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

// PeopleForMovie returns the credits of a movie in insertion order.
func (s *Service) PeopleForMovie(ctx context.Context, movieID int64) ([]Person, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, provider_id, movie_id, name, role_label, character, image_path
FROM person WHERE movie_id = ? ORDER BY id`, movieID)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	defer rows.Close()

	var people []Person
	for rows.Next() {
		var (
			p     Person
			image sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.ProviderID, &p.MovieID, &p.Name, &p.RoleLabel, &p.Character, &image); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		p.ImagePath = image.String
		people = append(people, p)
	}
	return people, rows.Err()
}

// Count returns row totals for every table.
func (s *Service) Count(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.db.QueryRowContext(ctx, `
SELECT
    (SELECT COUNT(*) FROM movie),
    (SELECT COUNT(*) FROM genre),
    (SELECT COUNT(*) FROM movie_genre),
    (SELECT COUNT(*) FROM person)`).Scan(&c.Movies, &c.Genres, &c.MovieGenres, &c.People)
	if err != nil {
		return Counts{}, fmt.Errorf("failed to count rows: %w", err)
	}
	return c, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}
