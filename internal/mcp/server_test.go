package mcp

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/felixgeelhaar/mcp-go/middleware"
	"github.com/felixgeelhaar/mcp-go/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcplocal "github.com/felixgeelhaar/timetable/adapter/mcp"
	"github.com/felixgeelhaar/timetable/internal/timetable/application"
	"github.com/felixgeelhaar/timetable/internal/timetable/infrastructure/persistence"
)

func TestNewServer(t *testing.T) {
	srv, err := NewServer(mcplocal.ToolDependencies{
		Engine: application.NewEngine(persistence.NewMemoryStore()),
	})
	require.NoError(t, err)

	tc := testutil.NewTestClient(t, srv)
	defer tc.Close()

	tools, err := tc.ListTools()
	require.NoError(t, err)
	assert.Len(t, tools, 5)
}

func TestNewServer_RequiresEngine(t *testing.T) {
	_, err := NewServer(mcplocal.ToolDependencies{})
	assert.Error(t, err)
}

func TestServe_RequiresConfig(t *testing.T) {
	err := Serve(context.Background(), nil, nil, nil, nil)
	assert.EqualError(t, err, "config is required")
}

func TestMiddlewareStack_AuthFirstWhenTokenSet(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	open := middlewareStack("", logger)
	assert.Contains(t, buf.String(), "unauthenticated")

	buf.Reset()
	guarded := middlewareStack("s3cret", logger)
	assert.Len(t, guarded, len(open)+1)
	assert.NotContains(t, buf.String(), "unauthenticated")
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	a := slogAdapter{slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}

	a.Warn("tool call slow", middleware.Field{Key: "tool", Value: "timetable.add_slots"})
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "tool=timetable.add_slots")
}
