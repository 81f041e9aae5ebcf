package app

import (
	"io"
	"log/slog"

	"github.com/felixgeelhaar/timetable/pkg/config"
	"github.com/felixgeelhaar/timetable/pkg/observability"
)

// NewLogger builds the process logger from configuration. Development mode
// always logs at debug level.
func NewLogger(cfg *config.Config, out io.Writer, version string) *slog.Logger {
	logCfg := observability.DefaultLogConfig()
	if cfg.IsProduction() {
		logCfg = observability.ProductionLogConfig()
	}
	logCfg.Output = out
	if version != "" {
		logCfg.ServiceVersion = version
	}
	if cfg.LogLevel != "" {
		logCfg.Level = observability.LogLevel(cfg.LogLevel)
	}
	if cfg.LogFormat != "" {
		logCfg.Format = observability.LogFormat(cfg.LogFormat)
	}
	if cfg.IsDevelopment() {
		logCfg.Level = observability.LogLevelDebug
	}
	return observability.NewLogger(logCfg)
}
