package cli

import (
	"context"
	"time"

	"github.com/felixgeelhaar/timetable/internal/timetable/application"
	"github.com/felixgeelhaar/timetable/internal/timetable/domain"
	"github.com/felixgeelhaar/timetable/internal/timetable/infrastructure/calendar"
	"github.com/felixgeelhaar/timetable/pkg/config"
	"github.com/felixgeelhaar/timetable/pkg/observability"
)

// CalendarSyncer pushes the timetable to a remote calendar.
type CalendarSyncer interface {
	Sync(ctx context.Context, schedule *domain.Schedule) (*calendar.SyncResult, error)
}

// App holds the CLI application dependencies.
type App struct {
	Config  *config.Config
	Engine  *application.Engine
	Health  *observability.HealthRegistry
	Metrics observability.Metrics

	// Calendar Sync
	CalendarSyncer CalendarSyncer

	// Location slots are interpreted in for calendar export.
	Location *time.Location
}

// NewApp creates a new CLI application around engine.
func NewApp(cfg *config.Config, engine *application.Engine) *App {
	if cfg == nil {
		cfg = &config.Config{AppEnv: "development"}
	}
	return &App{
		Config:   cfg,
		Engine:   engine,
		Health:   observability.NewHealthRegistry(),
		Metrics:  observability.NoopMetrics{},
		Location: time.Local,
	}
}

// SetCalendarSyncer updates the calendar syncer.
func (a *App) SetCalendarSyncer(syncer CalendarSyncer) {
	a.CalendarSyncer = syncer
}

// SetHealth updates the health registry.
func (a *App) SetHealth(health *observability.HealthRegistry) {
	if health != nil {
		a.Health = health
	}
}

// SetMetrics updates the metrics sink.
func (a *App) SetMetrics(metrics observability.Metrics) {
	if metrics != nil {
		a.Metrics = metrics
	}
}

// AppFactory builds the application for a run. The returned cleanup is
// called after the command finishes.
type AppFactory func(ctx context.Context, configFile string) (*App, func(), error)

// app is the global CLI application instance
var (
	app        *App
	appFactory AppFactory
	appCleanup func()
)

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}

// SetAppFactory sets how the application is built before a command runs.
// It is only used when no App has been set.
func SetAppFactory(f AppFactory) {
	appFactory = f
}
