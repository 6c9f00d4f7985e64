package share

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    Location
	}{
		{
			name:    "smb url with sub path",
			address: "smb://nas/media/Movies",
			want:    Location{Host: "nas", Port: 445, Share: "media", Root: "Movies"},
		},
		{
			name:    "smb url with port",
			address: "smb://nas:1445/media",
			want:    Location{Host: "nas", Port: 1445, Share: "media"},
		},
		{
			name:    "forward slash unc",
			address: "//10.0.0.2/media/films/hd/",
			want:    Location{Host: "10.0.0.2", Port: 445, Share: "media", Root: "films/hd"},
		},
		{
			name:    "backslash unc",
			address: `\\nas\media\Movies`,
			want:    Location{Host: "nas", Port: 445, Share: "media", Root: "Movies"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLocation(tt.address)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLocation_Invalid(t *testing.T) {
	for _, address := range []string{"", "/srv/movies", "smb://nas", "//nas/", "smb://nas:abc/media"} {
		t.Run(address, func(t *testing.T) {
			_, err := ParseLocation(address)
			assert.True(t, errors.Is(err, ErrInvalidAddress), "got %v", err)
		})
	}
}

func TestLocationUNC(t *testing.T) {
	loc := Location{Host: "nas", Port: 445, Share: "media"}
	assert.Equal(t, `\\nas\media`, loc.UNC())
	assert.Equal(t, "nas:445", loc.HostPort())
}

func TestSMBPath(t *testing.T) {
	assert.Equal(t, "", smbPath("", ""))
	assert.Equal(t, `Movies\Alien (1979)`, smbPath("Movies", "Alien (1979)"))
	assert.Equal(t, `a\b`, smbPath("", "/a/b/"))
}

func TestLocal_ListEntries(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/share/Alien (1979)", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/share/Alien (1979)/Alien (1979).mkv", []byte("x"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/share/readme.txt", []byte("x"), 0o644))

	local, err := NewLocalFs(fs, "/share")
	require.NoError(t, err)

	entries, err := local.ListEntries(context.Background(), "")
	require.NoError(t, err)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	assert.Equal(t, []Entry{
		{Name: "Alien (1979)", IsDir: true},
		{Name: "readme.txt", IsDir: false},
	}, entries)

	entries, err = local.ListEntries(context.Background(), "Alien (1979)")
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Name: "Alien (1979).mkv"}}, entries)
}

func TestNewLocalFs_MissingRoot(t *testing.T) {
	_, err := NewLocalFs(afero.NewMemMapFs(), "/nope")
	var connErr *ConnectionError
	assert.ErrorAs(t, err, &connErr)
}

func TestDial_LocalAddress(t *testing.T) {
	dir := t.TempDir()
	conn, err := Dial(context.Background(), Config{Address: dir})
	require.NoError(t, err)
	defer conn.Close()

	entries, err := conn.ListEntries(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDialSMB_Unreachable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DialSMB(ctx, Config{Address: "smb://127.0.0.1:1/media"})
	var connErr *ConnectionError
	assert.ErrorAs(t, err, &connErr)
}
