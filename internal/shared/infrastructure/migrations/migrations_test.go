package migrations

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func TestUpFiles(t *testing.T) {
	for _, dialect := range []string{"sqlite", "postgres"} {
		files, err := UpFiles(dialect)
		require.NoError(t, err, dialect)
		assert.Equal(t, []string{"001_timetable_documents.up.sql"}, files, dialect)
	}

	_, err := UpFiles("mysql")
	assert.Error(t, err)
}

func TestRunSQLiteMigrations(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, RunSQLiteMigrations(ctx, db))
	require.NoError(t, RunSQLiteMigrations(ctx, db), "migrations are idempotent")

	_, err = db.ExecContext(ctx,
		`INSERT INTO timetable_documents (name, body, updated_at) VALUES ('timetable', '{}', '2030-01-01T00:00:00Z')`)
	require.NoError(t, err)

	var body string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT body FROM timetable_documents WHERE name = 'timetable'`).Scan(&body))
	assert.Equal(t, "{}", body)
}
