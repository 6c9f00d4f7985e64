package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "./data/reelindex.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "https://api.themoviedb.org/3", cfg.TMDB.BaseURL)
	assert.Equal(t, "en-US", cfg.TMDB.Language)
	assert.Equal(t, 20, cfg.Assets.Workers)
	assert.Equal(t, "w780", cfg.Assets.PosterSize)
	assert.Equal(t, "w185", cfg.Assets.SnapshotSize)
	assert.Equal(t, "w1280", cfg.Assets.BackdropSize)
	assert.Equal(t, 10, cfg.Ingest.Workers)
	assert.Equal(t, 64, cfg.Ingest.WalkBuffer)
	assert.Empty(t, cfg.Ingest.Schedule)
	assert.False(t, cfg.Ingest.SkipKnown)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
share:
  address: smb://nas/media/Movies
  username: kodi
ingest:
  workers: 4
tmdb:
  api_key: from-file
`), 0o644))

	t.Setenv("REELINDEX_TMDB_API_KEY", "from-env")
	t.Setenv("REELINDEX_SHARE_PASSWORD", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "smb://nas/media/Movies", cfg.Share.Address)
	assert.Equal(t, "kodi", cfg.Share.Username)
	assert.Equal(t, "secret", cfg.Share.Password)
	assert.Equal(t, "from-env", cfg.TMDB.APIKey)
	assert.Equal(t, 4, cfg.Ingest.Workers)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("REELINDEX_INGEST_SCHEDULE=0 3 * * *\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("REELINDEX_INGEST_SCHEDULE") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "0 3 * * *", cfg.Ingest.Schedule)
}

func TestLoad_BadFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("share: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "share.address")
	assert.Contains(t, err.Error(), "tmdb.api_key")
	assert.Contains(t, err.Error(), "ingest.workers")

	cfg = &Config{
		Share:    ShareConfig{Address: "/srv/movies"},
		Database: DatabaseConfig{Path: "x.db"},
		TMDB:     TMDBConfig{AccessToken: "tok", Timeout: 5},
		Assets:   AssetsConfig{Workers: 1},
		Ingest:   IngestConfig{Workers: 1},
	}
	assert.NoError(t, cfg.Validate())
}
