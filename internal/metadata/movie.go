package metadata

import (
	"math"
	"strings"

	"github.com/reelindex/reelindex/internal/library/scanner"
)

// AssetKind names one of the images stored for a movie.
type AssetKind string

const (
	AssetPosterLarge    AssetKind = "poster_large"
	AssetPosterSnapshot AssetKind = "poster_snapshot"
	AssetBackdrop       AssetKind = "backdrop"
)

// MovieAssetKinds lists the movie images in download order.
var MovieAssetKinds = []AssetKind{AssetPosterLarge, AssetPosterSnapshot, AssetBackdrop}

// Asset is an image known by its provider reference and, once fetched, its local path.
type Asset struct {
	Ref       string `json:"ref,omitempty"`
	LocalPath string `json:"localPath,omitempty"`
}

// Genre is provider-defined reference data shared between movies.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Identity is the subset of a search hit applied to a movie.
type Identity struct {
	ProviderID    int64
	Title         string
	OriginalTitle string
	ReleaseDate   string
	Summary       string
	VoteAverage   float64
	PosterRef     string
	BackdropRef   string
}

// EnrichedMovie is a candidate plus everything learned about it from the provider.
// It is owned by a single pipeline unit until persisted.
type EnrichedMovie struct {
	scanner.Candidate

	ProviderID    int64   `json:"providerId,omitempty"`
	DisplayTitle  string  `json:"displayTitle,omitempty"`
	OriginalTitle string  `json:"originalTitle,omitempty"`
	VoteAverage   float64 `json:"voteAverage"`
	ReleaseDate   string  `json:"releaseDate,omitempty"`
	Summary       string  `json:"summary,omitempty"`
	Genres        []Genre `json:"genres,omitempty"`

	assets map[AssetKind]*Asset
}

// NewEnrichedMovie starts an enriched movie from its filename-derived fields.
func NewEnrichedMovie(c scanner.Candidate) *EnrichedMovie {
	return &EnrichedMovie{
		Candidate: c,
		assets:    make(map[AssetKind]*Asset, len(MovieAssetKinds)),
	}
}

// Identified reports whether a provider match was applied.
func (m *EnrichedMovie) Identified() bool {
	return m.ProviderID > 0
}

// Apply copies a resolved identity onto the movie. All normalization of
// provider values happens here.
func (m *EnrichedMovie) Apply(id Identity) {
	m.ProviderID = id.ProviderID
	m.DisplayTitle = strings.TrimSpace(id.Title)
	m.OriginalTitle = strings.TrimSpace(id.OriginalTitle)
	m.ReleaseDate = strings.TrimSpace(id.ReleaseDate)
	m.Summary = strings.TrimSpace(id.Summary)
	m.VoteAverage = clampVote(id.VoteAverage)

	m.setRef(AssetPosterLarge, id.PosterRef)
	m.setRef(AssetPosterSnapshot, id.PosterRef)
	m.setRef(AssetBackdrop, id.BackdropRef)
}

// SetGenres replaces the genre list, dropping duplicate ids.
func (m *EnrichedMovie) SetGenres(genres []Genre) {
	seen := make(map[int64]struct{}, len(genres))
	m.Genres = m.Genres[:0]
	for _, g := range genres {
		if _, ok := seen[g.ID]; ok {
			continue
		}
		seen[g.ID] = struct{}{}
		m.Genres = append(m.Genres, Genre{ID: g.ID, Name: strings.TrimSpace(g.Name)})
	}
}

// Asset returns the asset of the given kind, or a zero Asset if none is known.
func (m *EnrichedMovie) Asset(kind AssetKind) Asset {
	if a, ok := m.assets[kind]; ok {
		return *a
	}
	return Asset{}
}

// SetAsset records where the asset of the given kind was stored locally.
func (m *EnrichedMovie) SetAsset(kind AssetKind, localPath string) {
	if m.assets == nil {
		m.assets = make(map[AssetKind]*Asset, len(MovieAssetKinds))
	}
	a, ok := m.assets[kind]
	if !ok {
		a = &Asset{}
		m.assets[kind] = a
	}
	a.LocalPath = localPath
}

func (m *EnrichedMovie) setRef(kind AssetKind, ref string) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		delete(m.assets, kind)
		return
	}
	if m.assets == nil {
		m.assets = make(map[AssetKind]*Asset, len(MovieAssetKinds))
	}
	m.assets[kind] = &Asset{Ref: ref}
}

// FolderName is the "<title> (<year>)" label used for the movie's asset folder.
func (m *EnrichedMovie) FolderName() string {
	title := m.DisplayTitle
	if title == "" {
		title = m.Title
	}
	year := m.Year
	if year == "" && len(m.ReleaseDate) >= 4 {
		year = m.ReleaseDate[:4]
	}
	if year == "" {
		return title
	}
	return title + " (" + year + ")"
}

func clampVote(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

// CreditKind tells cast from crew.
type CreditKind int

const (
	CreditCast CreditKind = iota
	CreditCrew
)

func (k CreditKind) String() string {
	if k == CreditCast {
		return "cast"
	}
	return "crew"
}

// ActorRole is the role label stored for every cast member.
const ActorRole = "actor"

// CreditedPerson is one cast or crew credit of a movie.
type CreditedPerson struct {
	ProviderID     int64      `json:"providerId"`
	Name           string     `json:"name"`
	Kind           CreditKind `json:"kind"`
	Character      string     `json:"character,omitempty"`
	Department     string     `json:"department,omitempty"`
	Job            string     `json:"job,omitempty"`
	ImageRef       string     `json:"imageRef,omitempty"`
	LocalImagePath string     `json:"localImagePath,omitempty"`
}

// RoleLabel is "actor" for cast and the job title for crew.
func (p CreditedPerson) RoleLabel() string {
	if p.Kind == CreditCast {
		return ActorRole
	}
	return p.Job
}
