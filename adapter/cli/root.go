package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/timetable/pkg/observability"
)

var (
	cfgFile string
	verbose bool
	logger  *slog.Logger
)

// startedAtKey carries the command start time from PersistentPreRunE to
// PersistentPostRun.
type startedAtKey struct{}

var rootCmd = &cobra.Command{
	Use:   "timetable",
	Short: "Timetable - conflict-aware slot planning",
	Long: `Timetable keeps a dated list of time slots consistent.

Slots are kept in start-time order per date, identical slots are never
stored twice, and overlaps can be checked before anything is planned.
The same engine is served over HTTP and MCP for LLM agents.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		ctx := observability.NewRequestContext(cmd.Context(), os.Getenv("TIMETABLE_CORRELATION_ID"))
		ctx = context.WithValue(ctx, startedAtKey{}, time.Now())
		cmd.SetContext(ctx)

		Logger().DebugContext(ctx, "command start", "command", cmd.CommandPath())
		return initApp(ctx)
	},
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		closeApp()

		ctx := cmd.Context()
		if started, ok := ctx.Value(startedAtKey{}).(time.Time); ok {
			Logger().DebugContext(ctx, "command end",
				"command", cmd.CommandPath(),
				observability.DurationKey, time.Since(started).Milliseconds(),
			)
		}
	},
}

// Execute runs the CLI and exits non-zero on error.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "env file to load before the environment")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// initApp builds the App through the factory when none was set.
func initApp(ctx context.Context) error {
	if app != nil || appFactory == nil {
		return nil
	}
	a, cleanup, err := appFactory(ctx, cfgFile)
	if err != nil {
		return err
	}
	app = a
	appCleanup = cleanup
	return nil
}

func closeApp() {
	if appCleanup != nil {
		appCleanup()
		appCleanup = nil
	}
}

// AddCommand adds a command to the root command.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// SetLogger sets the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}

// ConfigFile returns the --config flag value.
func ConfigFile() string {
	return cfgFile
}

// Verbose reports whether --verbose was given.
func Verbose() bool {
	return verbose
}

// Logger returns the CLI logger.
func Logger() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
