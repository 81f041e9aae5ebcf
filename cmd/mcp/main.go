// Command timetable-mcp serves the timetable engine to LLM agents over MCP
// without the rest of the CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/timetable/internal/app"
	mcpinternal "github.com/felixgeelhaar/timetable/internal/mcp"
	"github.com/felixgeelhaar/timetable/pkg/config"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Getenv("TIMETABLE_ENV_FILE")); err != nil {
		fmt.Fprintln(os.Stderr, "timetable-mcp:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, envFile string) error {
	cfg, err := config.LoadFile(envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// stdout stays free for agents that pipe the process.
	logger := app.NewLogger(cfg, os.Stderr, version)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init container: %w", err)
	}
	defer container.Close()

	err = mcpinternal.Serve(ctx, cfg, container.Engine, container.Metrics, logger)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
