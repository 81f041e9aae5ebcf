package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/timetable/internal/shared/infrastructure/database"
)

func TestOpen_File(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "test.db")

	db, err := Open(ctx, database.Config{SQLitePath: path})
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.PingContext(ctx))
	assert.FileExists(t, path)
}

func TestOpen_InMemory(t *testing.T) {
	ctx := context.Background()

	db, err := Open(ctx, database.Config{SQLitePath: MemoryPath})
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx, `CREATE TABLE slots (date TEXT, title TEXT)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO slots VALUES (?, ?)`, "01/01/2030", "Standup")
	require.NoError(t, err)

	var title string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT title FROM slots WHERE date = ?`, "01/01/2030").Scan(&title))
	assert.Equal(t, "Standup", title)

	var mode string
	require.NoError(t, db.QueryRowContext(ctx, `PRAGMA busy_timeout`).Scan(&mode))
	assert.Equal(t, "5000", mode)
}

func TestDSN(t *testing.T) {
	assert.Equal(t,
		"/tmp/t.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)",
		DSN("/tmp/t.db"))
	assert.True(t, strings.HasPrefix(DSN("file:t.db?cache=shared"), "file:t.db?cache=shared&_pragma="))
}

func TestOpen_SQLiteScheme(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scheme.db")
	db, err := Open(context.Background(), database.Config{SQLitePath: "sqlite://" + path})
	require.NoError(t, err)
	defer db.Close()
	assert.FileExists(t, path)
}
