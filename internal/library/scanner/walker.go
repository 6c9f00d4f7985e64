package scanner

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/reelindex/reelindex/internal/share"
)

// ErrWalkInProgress is yielded when Walk is called while a previous walk is still running.
var ErrWalkInProgress = errors.New("walk already in progress")

// DefaultBufferSize is the channel capacity used when none is configured.
const DefaultBufferSize = 64

// ListError is yielded when a directory could not be listed.
// The walk carries on with the remaining directories.
type ListError struct {
	Path string
	Err  error
}

func (e *ListError) Error() string {
	return fmt.Sprintf("list directory %s: %v", e.Path, e.Err)
}

func (e *ListError) Unwrap() error { return e.Err }

// Result is one item produced by a walk: either a candidate or the error
// that prevented one from being produced.
type Result struct {
	Candidate Candidate
	Err       error
}

// Walker discovers movie candidates on a share.
type Walker struct {
	conn       share.Connector
	bufferSize int
	logger     zerolog.Logger
	running    atomic.Bool
}

// NewWalker creates a walker over conn. A bufferSize below one uses DefaultBufferSize.
func NewWalker(conn share.Connector, bufferSize int, logger zerolog.Logger) *Walker {
	if bufferSize < 1 {
		bufferSize = DefaultBufferSize
	}
	return &Walker{
		conn:       conn,
		bufferSize: bufferSize,
		logger:     logger.With().Str("component", "walker").Logger(),
	}
}

// Walk traverses the share depth-first and streams results on the returned channel.
// The channel is closed when the traversal finishes or ctx is cancelled.
func (w *Walker) Walk(ctx context.Context) <-chan Result {
	out := make(chan Result, w.bufferSize)

	if !w.running.CompareAndSwap(false, true) {
		out <- Result{Err: ErrWalkInProgress}
		close(out)
		return out
	}

	go func() {
		// running is cleared before close so a consumer that sees the
		// channel end can start the next walk immediately.
		defer close(out)
		defer w.running.Store(false)
		w.walk(ctx, out)
	}()

	return out
}

func (w *Walker) walk(ctx context.Context, out chan<- Result) {
	pending := []string{""}
	var dirs, files int

	for len(pending) > 0 {
		if ctx.Err() != nil {
			w.logger.Warn().Err(ctx.Err()).Msg("walk cancelled")
			return
		}

		dir := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		dirs++

		entries, err := w.conn.ListEntries(ctx, dir)
		if err != nil {
			w.logger.Warn().Err(err).Str("path", displayPath(dir)).Msg("failed to list directory")
			if !send(ctx, out, Result{Err: &ListError{Path: displayPath(dir), Err: err}}) {
				return
			}
			continue
		}

		for _, entry := range entries {
			if entry.Name == "." || entry.Name == ".." {
				continue
			}
			child := path.Join(dir, entry.Name)

			if entry.IsDir {
				if IsExtraDirectory(entry.Name) {
					w.logger.Debug().Str("path", displayPath(child)).Msg("skipping extras directory")
					continue
				}
				pending = append(pending, child)
				continue
			}

			if !IsVideoFile(entry.Name) {
				continue
			}
			files++

			candidate, err := ParseMoviePath(displayPath(child))
			if err != nil {
				w.logger.Debug().Err(err).Str("path", displayPath(child)).Msg("unparseable file name")
			}
			if !send(ctx, out, Result{Candidate: candidate, Err: err}) {
				return
			}
		}
	}

	w.logger.Info().Int("directories", dirs).Int("videoFiles", files).Msg("walk complete")
}

func send(ctx context.Context, out chan<- Result, r Result) bool {
	select {
	case out <- r:
		return true
	case <-ctx.Done():
		return false
	}
}

func displayPath(rel string) string {
	return path.Join("/", rel)
}
