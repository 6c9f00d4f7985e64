package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMigratedDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "nested", "library.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())
	return db
}

func TestMigrate_CreatesSchema(t *testing.T) {
	db := newMigratedDB(t)

	for _, table := range []string{"movie", "genre", "movie_genre", "person"} {
		var name string
		err := db.Conn().QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}

	version, err := db.MigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	// running again is a no-op
	assert.NoError(t, db.Migrate())
}

func TestWithTx_CommitAndRollback(t *testing.T) {
	db := newMigratedDB(t)
	ctx := context.Background()

	err := WithTx(ctx, db.Conn(), func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO genre (id, name) VALUES (27, 'Horror')`)
		return err
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = WithTx(ctx, db.Conn(), func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO genre (id, name) VALUES (28, 'Action')`); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, db.Conn().QueryRow(`SELECT COUNT(*) FROM genre`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	db := newMigratedDB(t)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = WithTx(ctx, db.Conn(), func(tx *sql.Tx) error {
			_, _ = tx.ExecContext(ctx, `INSERT INTO genre (id, name) VALUES (1, 'x')`)
			panic("unexpected")
		})
	})

	var count int
	require.NoError(t, db.Conn().QueryRow(`SELECT COUNT(*) FROM genre`).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestMovieReleaseDate_ReadsBackVerbatim(t *testing.T) {
	db := newMigratedDB(t)

	for i, date := range []string{"1979-05-25", "1979"} {
		_, err := db.Conn().Exec(`INSERT INTO movie (path, title, release_date) VALUES (?, 'alien', ?)`, date+".mkv", date)
		require.NoError(t, err, "insert %d", i)

		var got string
		require.NoError(t, db.Conn().QueryRow(`SELECT release_date FROM movie WHERE path = ?`, date+".mkv").Scan(&got))
		assert.Equal(t, date, got)
	}
}
