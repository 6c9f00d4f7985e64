package movies

import (
	"errors"
	"fmt"
)

var ErrMovieNotFound = errors.New("movie not found")

// PersistError reports that a movie could not be stored. Nothing from the
// movie was written.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// Movie is a stored movie row.
type Movie struct {
	ID             int64   `json:"id"`
	ProviderID     int64   `json:"providerId,omitempty"`
	Path           string  `json:"path"`
	ExtraTag       string  `json:"extraTag,omitempty"`
	Title          string  `json:"title"`
	OriginalTitle  string  `json:"originalTitle,omitempty"`
	ReleaseDate    string  `json:"releaseDate,omitempty"`
	Summary        string  `json:"summary,omitempty"`
	VoteAverage    float64 `json:"voteAverage"`
	PosterLarge    string  `json:"posterLarge,omitempty"`
	PosterSnapshot string  `json:"posterSnapshot,omitempty"`
	Backdrop       string  `json:"backdrop,omitempty"`
}

// Person is a stored cast or crew credit.
type Person struct {
	ID         int64  `json:"id"`
	ProviderID int64  `json:"providerId"`
	MovieID    int64  `json:"movieId"`
	Name       string `json:"name"`
	RoleLabel  string `json:"roleLabel"`
	Character  string `json:"character,omitempty"`
	ImagePath  string `json:"imagePath,omitempty"`
}

// Counts holds row totals per table.
type Counts struct {
	Movies      int `json:"movies"`
	Genres      int `json:"genres"`
	MovieGenres int `json:"movieGenres"`
	People      int `json:"people"`
}
