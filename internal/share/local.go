package share

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/afero"
)

// Local serves a directory tree through an afero filesystem.
type Local struct {
	fs   afero.Fs
	root string
}

// NewLocal exposes a directory on the OS filesystem.
func NewLocal(root string) (*Local, error) {
	return NewLocalFs(afero.NewOsFs(), root)
}

// NewLocalFs exposes root on the given filesystem.
func NewLocalFs(fs afero.Fs, root string) (*Local, error) {
	info, err := fs.Stat(root)
	if err != nil {
		return nil, &ConnectionError{Address: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &ConnectionError{Address: root, Err: ErrNotDirectory}
	}
	return &Local{fs: fs, root: root}, nil
}

func (l *Local) ListEntries(ctx context.Context, dir string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full := filepath.Join(l.root, filepath.FromSlash(path.Clean("/"+dir)))
	infos, err := afero.ReadDir(l.fs, full)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", full, err)
	}
	return toEntries(infos), nil
}

func (l *Local) Close() error {
	return nil
}

func toEntries(infos []os.FileInfo) []Entry {
	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, Entry{Name: info.Name(), IsDir: info.IsDir()})
	}
	return entries
}
