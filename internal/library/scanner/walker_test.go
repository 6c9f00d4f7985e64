package scanner

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelindex/reelindex/internal/share"
)

func newMemShare(t *testing.T, files ...string) share.Connector {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/share", 0o755))
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fs, "/share"+f, []byte("data"), 0o644))
	}
	conn, err := share.NewLocalFs(fs, "/share")
	require.NoError(t, err)
	return conn
}

func collect(ch <-chan Result) (candidates []Candidate, errs []error) {
	for r := range ch {
		if r.Err != nil {
			errs = append(errs, r.Err)
			continue
		}
		candidates = append(candidates, r.Candidate)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Path < candidates[j].Path })
	return candidates, errs
}

func TestWalker_SkipsExtrasAndNonVideo(t *testing.T) {
	conn := newMemShare(t,
		"/A (2001)/A (2001).mkv",
		"/A (2001)/featurette/bonus.mkv",
		"/B.txt",
	)

	w := NewWalker(conn, 4, zerolog.Nop())
	candidates, errs := collect(w.Walk(context.Background()))

	assert.Empty(t, errs)
	require.Len(t, candidates, 1)
	assert.Equal(t, "/a (2001)/a (2001).mkv", candidates[0].Path)
	assert.Equal(t, "a", candidates[0].Title)
	assert.Equal(t, "2001", candidates[0].Year)
}

func TestWalker_NestedAndMalformed(t *testing.T) {
	conn := newMemShare(t,
		"/Sci-Fi/Alien (1979)/Alien (1979).mkv",
		"/Sci-Fi/Alien (1979)/Featurettes/Deleted (1979).mkv",
		"/Sci-Fi/Dune (2021) [IMAX].MP4",
		"/Drama/Untitled.avi",
		"/Drama/FEAT/x (2000).mkv",
	)

	w := NewWalker(conn, 1, zerolog.Nop())
	candidates, errs := collect(w.Walk(context.Background()))

	require.Len(t, candidates, 2)
	assert.Equal(t, "/sci-fi/alien (1979)/alien (1979).mkv", candidates[0].Path)
	assert.Equal(t, "/sci-fi/dune (2021) [imax].mp4", candidates[1].Path)
	assert.Equal(t, "imax", candidates[1].ExtraTag)

	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], ErrMalformedName))
}

type flakyConnector struct {
	share.Connector
	failDir string
}

func (f *flakyConnector) ListEntries(ctx context.Context, dir string) ([]share.Entry, error) {
	if dir == f.failDir {
		return nil, errors.New("permission denied")
	}
	return f.Connector.ListEntries(ctx, dir)
}

func TestWalker_ListFailureContinues(t *testing.T) {
	conn := &flakyConnector{
		Connector: newMemShare(t,
			"/Locked/Heat (1995).mkv",
			"/Open/Ronin (1998).mkv",
		),
		failDir: "Locked",
	}

	w := NewWalker(conn, 0, zerolog.Nop())
	candidates, errs := collect(w.Walk(context.Background()))

	require.Len(t, candidates, 1)
	assert.Equal(t, "ronin", candidates[0].Title)

	require.Len(t, errs, 1)
	var listErr *ListError
	require.ErrorAs(t, errs[0], &listErr)
	assert.Equal(t, "/Locked", listErr.Path)
}

type blockingConnector struct {
	release chan struct{}
}

func (b *blockingConnector) ListEntries(ctx context.Context, dir string) ([]share.Entry, error) {
	<-b.release
	return nil, nil
}

func (b *blockingConnector) Close() error { return nil }

func TestWalker_NotReentrant(t *testing.T) {
	conn := &blockingConnector{release: make(chan struct{})}
	w := NewWalker(conn, 1, zerolog.Nop())

	first := w.Walk(context.Background())
	_, errs := collect(w.Walk(context.Background()))
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrWalkInProgress)

	close(conn.release)
	for range first {
	}
}

func TestWalker_Cancelled(t *testing.T) {
	conn := newMemShare(t, "/A (2001).mkv", "/B (2002).mkv", "/C (2003).mkv")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewWalker(conn, 1, zerolog.Nop())
	candidates, _ := collect(w.Walk(ctx))
	assert.Empty(t, candidates)
}
