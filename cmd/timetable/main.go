// Command timetable is the CLI: slot editing, conflict checks, calendar
// export and sync, and the HTTP and MCP servers.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/timetable/adapter/cli"
	"github.com/felixgeelhaar/timetable/adapter/cli/mcp"
	"github.com/felixgeelhaar/timetable/adapter/cli/slot"
	"github.com/felixgeelhaar/timetable/internal/app"
	"github.com/felixgeelhaar/timetable/pkg/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cli.SetAppFactory(newApp)
	cli.AddCommand(slot.Cmd)
	cli.AddCommand(mcp.Cmd)
	cli.Execute(ctx)
}

// newApp loads configuration and wires the container behind the CLI.
func newApp(ctx context.Context, configFile string) (*cli.App, func(), error) {
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return nil, nil, err
	}
	if cli.Verbose() {
		cfg.LogLevel = "debug"
	}

	logger := app.NewLogger(cfg, os.Stderr, cli.Version)
	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		return nil, nil, err
	}

	cliApp := cli.NewApp(cfg, container.Engine)
	cliApp.SetHealth(container.Health)
	cliApp.SetMetrics(container.Metrics)
	if container.CalendarSyncer != nil {
		cliApp.SetCalendarSyncer(container.CalendarSyncer)
	}

	return cliApp, container.Close, nil
}
