package mcp

import (
	"context"
	"errors"
	"log/slog"

	mcpgo "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/middleware"

	mcplocal "github.com/felixgeelhaar/timetable/adapter/mcp"
	"github.com/felixgeelhaar/timetable/internal/timetable/application"
	"github.com/felixgeelhaar/timetable/pkg/config"
	"github.com/felixgeelhaar/timetable/pkg/observability"
)

// agentIdentity is attached to requests that present the configured token.
var agentIdentity = &middleware.Identity{ID: "timetable-agent", Name: "timetable-agent"}

// Serve exposes the engine over streamable HTTP on cfg.MCPAddr until ctx ends.
func Serve(ctx context.Context, cfg *config.Config, engine *application.Engine, metrics observability.Metrics, logger *slog.Logger) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "mcp")

	srv, err := NewServer(mcplocal.ToolDependencies{Engine: engine, Logger: logger, Metrics: metrics})
	if err != nil {
		return err
	}

	stack := middlewareStack(cfg.MCPAuthToken, logger)
	logger.Info("serving timetable to agents", "addr", cfg.MCPAddr, "authenticated", cfg.MCPAuthToken != "")
	return mcpgo.ServeHTTPWithMiddleware(ctx, srv, cfg.MCPAddr, nil, mcpgo.WithMiddleware(stack...))
}

// middlewareStack puts bearer auth in front of the default recover/log stack
// when token is set.
func middlewareStack(token string, logger *slog.Logger) []middleware.Middleware {
	log := slogAdapter{logger}
	stack := middleware.DefaultStack(log)
	if token == "" {
		logger.Warn("MCP_AUTH_TOKEN not set; agent requests are unauthenticated")
		return stack
	}

	tokens := middleware.StaticTokens(map[string]*middleware.Identity{token: agentIdentity})
	auth := middleware.Auth(middleware.BearerTokenAuthenticator(tokens), middleware.WithAuthLogger(log))
	return append([]middleware.Middleware{auth}, stack...)
}

// slogAdapter satisfies the mcp-go middleware logger with slog.
type slogAdapter struct {
	l *slog.Logger
}

func (a slogAdapter) Debug(msg string, fields ...middleware.Field) { a.emit(slog.LevelDebug, msg, fields) }
func (a slogAdapter) Info(msg string, fields ...middleware.Field)  { a.emit(slog.LevelInfo, msg, fields) }
func (a slogAdapter) Warn(msg string, fields ...middleware.Field)  { a.emit(slog.LevelWarn, msg, fields) }
func (a slogAdapter) Error(msg string, fields ...middleware.Field) { a.emit(slog.LevelError, msg, fields) }

func (a slogAdapter) emit(level slog.Level, msg string, fields []middleware.Field) {
	attrs := make([]slog.Attr, len(fields))
	for i, f := range fields {
		attrs[i] = slog.Any(f.Key, f.Value)
	}
	a.l.LogAttrs(context.Background(), level, msg, attrs...)
}
