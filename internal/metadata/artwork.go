package metadata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"

	"github.com/reelindex/reelindex/internal/pathutil"
)

var (
	ErrInvalidRef     = errors.New("invalid artwork reference")
	ErrDownloadFailed = errors.New("artwork download failed")
)

// Artwork categories under the images directory.
const (
	categoryMovie  = "movie"
	categoryPerson = "person"
)

// ArtworkConfig holds configuration for artwork downloading.
type ArtworkConfig struct {
	// Root is the directory that holds the images/ tree.
	Root string

	// Workers bounds concurrent person image downloads per movie.
	Workers int

	PosterSize   string
	SnapshotSize string
	BackdropSize string
	ProfileSize  string
}

// DefaultArtworkConfig returns default artwork configuration.
func DefaultArtworkConfig() ArtworkConfig {
	return ArtworkConfig{
		Root:         "data",
		Workers:      20,
		PosterSize:   "w780",
		SnapshotSize: "w185",
		BackdropSize: "w1280",
		ProfileSize:  "w185",
	}
}

func (c ArtworkConfig) sizeFor(kind AssetKind) string {
	switch kind {
	case AssetPosterLarge:
		return c.PosterSize
	case AssetPosterSnapshot:
		return c.SnapshotSize
	default:
		return c.BackdropSize
	}
}

// AssetReport counts what happened to each image of a movie.
type AssetReport struct {
	Fetched int
	Cached  int
	Failed  int
	Bytes   int64
}

func (r *AssetReport) add(o fetchOutcome) {
	switch {
	case o.err != nil:
		r.Failed++
	case o.cached:
		r.Cached++
	case o.path != "":
		r.Fetched++
		r.Bytes += o.bytes
	}
}

type fetchOutcome struct {
	path   string
	cached bool
	bytes  int64
	err    error
}

// ArtworkDownloader stores movie and person images on disk. An image whose
// target file already exists is never downloaded again.
type ArtworkDownloader struct {
	config ArtworkConfig
	source ImageSource
	fs     afero.Fs
	logger zerolog.Logger
}

// NewArtworkDownloader creates a new ArtworkDownloader writing to fs.
func NewArtworkDownloader(cfg ArtworkConfig, source ImageSource, fs afero.Fs, logger zerolog.Logger) *ArtworkDownloader {
	if cfg.Workers < 1 {
		cfg.Workers = DefaultArtworkConfig().Workers
	}
	return &ArtworkDownloader{
		config: cfg,
		source: source,
		fs:     fs,
		logger: logger.With().Str("component", "artwork").Logger(),
	}
}

// MoviePath returns where an asset of the movie is stored.
func (d *ArtworkDownloader) MoviePath(movie *EnrichedMovie, kind AssetKind, ref string) string {
	folder := pathutil.SanitizeName(movie.FolderName(), "untitled")
	return filepath.Join(d.config.Root, "images", categoryMovie, folder, string(kind)+getExtension(ref))
}

// PersonPath returns where a person's portrait is stored.
func (d *ArtworkDownloader) PersonPath(person CreditedPerson) string {
	folder := pathutil.SanitizeName(person.Name, "unknown")
	file := fmt.Sprintf("%d%s", person.ProviderID, getExtension(person.ImageRef))
	return filepath.Join(d.config.Root, "images", categoryPerson, folder, file)
}

// DownloadAll fetches the movie's own images, then the cast portraits and the
// crew portraits, each on a bounded pool. It returns once every image has
// been stored or has failed. Failures leave the local path unset.
func (d *ArtworkDownloader) DownloadAll(ctx context.Context, movie *EnrichedMovie, people []CreditedPerson) AssetReport {
	var report AssetReport

	for _, kind := range MovieAssetKinds {
		asset := movie.Asset(kind)
		if asset.Ref == "" {
			continue
		}
		o := d.download(ctx, asset.Ref, d.config.sizeFor(kind), d.MoviePath(movie, kind, asset.Ref))
		report.add(o)
		if o.err != nil {
			d.logger.Warn().Err(o.err).Str("path", movie.Path).Str("asset", string(kind)).Msg("Failed to download movie artwork")
			continue
		}
		movie.SetAsset(kind, o.path)
	}

	for _, kind := range []CreditKind{CreditCast, CreditCrew} {
		d.downloadPeople(ctx, people, kind, &report)
	}

	d.logger.Debug().
		Str("path", movie.Path).
		Int("fetched", report.Fetched).
		Int("cached", report.Cached).
		Int("failed", report.Failed).
		Str("size", humanize.Bytes(uint64(report.Bytes))).
		Msg("Artwork complete")

	return report
}

func (d *ArtworkDownloader) downloadPeople(ctx context.Context, people []CreditedPerson, kind CreditKind, report *AssetReport) {
	outcomes := make([]fetchOutcome, len(people))

	p := pool.New().WithMaxGoroutines(d.config.Workers)
	for i := range people {
		person := people[i]
		if person.Kind != kind || person.ImageRef == "" {
			continue
		}
		p.Go(func() {
			outcomes[i] = d.download(ctx, person.ImageRef, d.config.ProfileSize, d.PersonPath(person))
		})
	}
	p.Wait()

	for i, o := range outcomes {
		if people[i].Kind != kind {
			continue
		}
		report.add(o)
		if o.err != nil {
			d.logger.Warn().Err(o.err).Int64("providerId", people[i].ProviderID).Str("name", people[i].Name).Msg("Failed to download portrait")
			continue
		}
		if o.path != "" {
			people[i].LocalImagePath = o.path
		}
	}
}

// download stores ref at destPath unless the file is already there.
// The body is written to a unique partial file and renamed into place so
// concurrent writers of the same image never see a torn file.
func (d *ArtworkDownloader) download(ctx context.Context, ref, size, destPath string) fetchOutcome {
	if ref == "" {
		return fetchOutcome{err: ErrInvalidRef}
	}
	destPath = pathutil.NormalizePath(destPath)

	if exists, err := afero.Exists(d.fs, destPath); err == nil && exists {
		return fetchOutcome{path: destPath, cached: true}
	}

	dir := path.Dir(destPath)
	if err := d.fs.MkdirAll(dir, 0755); err != nil {
		d.logger.Error().Err(err).Str("dir", dir).Msg("Failed to create artwork directory")
		return fetchOutcome{err: fmt.Errorf("failed to create directory: %w", err)}
	}

	body, err := d.source.FetchImage(ctx, ref, size)
	if err != nil {
		return fetchOutcome{err: fmt.Errorf("%w: %w", ErrDownloadFailed, err)}
	}
	defer body.Close()

	partial := destPath + ".part-" + uuid.NewString()
	file, err := d.fs.Create(partial)
	if err != nil {
		d.logger.Error().Err(err).Str("path", partial).Msg("Failed to create artwork file")
		return fetchOutcome{err: fmt.Errorf("failed to create file: %w", err)}
	}

	written, err := io.Copy(file, body)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		d.fs.Remove(partial) // Clean up partial file
		return fetchOutcome{err: fmt.Errorf("%w: write %s: %w", ErrDownloadFailed, destPath, err)}
	}

	if err := d.fs.Rename(partial, destPath); err != nil {
		d.fs.Remove(partial)
		if exists, _ := afero.Exists(d.fs, destPath); exists {
			return fetchOutcome{path: destPath, cached: true}
		}
		return fetchOutcome{err: fmt.Errorf("%w: rename %s: %w", ErrDownloadFailed, destPath, err)}
	}

	d.logger.Debug().
		Str("ref", ref).
		Str("path", destPath).
		Int64("bytes", written).
		Msg("Artwork downloaded successfully")

	return fetchOutcome{path: destPath, bytes: written}
}

// getExtension extracts the image extension from a reference, defaulting to .jpg.
func getExtension(ref string) string {
	if idx := strings.IndexAny(ref, "?#"); idx >= 0 {
		ref = ref[:idx]
	}

	ext := strings.ToLower(path.Ext(ref))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
		return ext
	default:
		return ".jpg"
	}
}
