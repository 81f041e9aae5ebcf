package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/timetable/internal/shared/infrastructure/database"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	t.Run("file", func(t *testing.T) {
		opened, err := Open(ctx, Options{Driver: database.DriverFile, FilePath: filepath.Join(dir, "t.json")}, nil)
		require.NoError(t, err)
		defer opened.Close()

		assert.IsType(t, &FileStore{}, opened.Store)
		assert.Equal(t, database.DriverFile, opened.Driver)
	})

	t.Run("file requires path", func(t *testing.T) {
		_, err := Open(ctx, Options{Driver: database.DriverFile}, nil)
		assert.Error(t, err)
	})

	t.Run("memory", func(t *testing.T) {
		opened, err := Open(ctx, Options{Driver: database.DriverMemory}, nil)
		require.NoError(t, err)
		assert.IsType(t, &MemoryStore{}, opened.Store)
		assert.NoError(t, opened.Close())
	})

	t.Run("sqlite", func(t *testing.T) {
		opened, err := Open(ctx, Options{Driver: database.DriverSQLite, SQLitePath: filepath.Join(dir, "t.db")}, nil)
		require.NoError(t, err)
		defer opened.Close()

		assert.IsType(t, &SQLiteStore{}, opened.Store)
		runStoreContract(t, opened.Store)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := Open(ctx, Options{Driver: "mysql"}, nil)
		assert.Error(t, err)
	})

	t.Run("bad redis url", func(t *testing.T) {
		_, err := Open(ctx, Options{Driver: database.DriverRedis, RedisURL: "not a url"}, nil)
		assert.Error(t, err)
	})
}
