package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/timetable/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/timetable/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/timetable/internal/shared/infrastructure/resilience"
	"github.com/felixgeelhaar/timetable/internal/timetable/application"
	"github.com/felixgeelhaar/timetable/internal/timetable/domain"
	"github.com/felixgeelhaar/timetable/internal/timetable/infrastructure/calendar"
	"github.com/felixgeelhaar/timetable/internal/timetable/infrastructure/persistence"
	"github.com/felixgeelhaar/timetable/pkg/config"
	"github.com/felixgeelhaar/timetable/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics observability.Metrics
	Health  *observability.HealthRegistry

	// Storage
	Store    domain.Store
	DBDriver database.Driver
	opened   *persistence.Opened

	// Events
	EventPublisher    eventbus.Publisher
	InProcessEventBus *eventbus.InProcessEventBus

	// Engine
	Engine *application.Engine

	// Calendar sync, nil unless CALDAV_URL is set
	CalendarSyncer *calendar.Syncer
}

// NewContainer creates and wires all dependencies.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewInMemoryMetrics(),
		Health:  observability.NewHealthRegistry(),
	}

	opened, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	c.opened = opened
	c.Store = opened.Store
	c.DBDriver = opened.Driver

	RegisterStoreHealth(c.Health, c.DBDriver, c.Store)

	if cfg.CalDAVEnabled() {
		c.CalendarSyncer = NewCalendarSyncer(cfg, logger)
		logger.Info("calendar sync enabled", "url", cfg.CalDAVURL)
	}

	if err := c.initPublisher(); err != nil {
		c.Close()
		return nil, err
	}

	c.Engine = application.NewEngine(c.Store,
		application.WithPublisher(c.EventPublisher),
		application.WithLogger(logger),
		application.WithMetrics(c.Metrics),
	)

	return c, nil
}

// OpenStore opens the configured timetable store. STORE_DRIVER wins; when it
// is empty the driver is detected from DATABASE_URL, REDIS_URL or SQLITE_PATH.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*persistence.Opened, error) {
	if logger == nil {
		logger = slog.Default()
	}
	driver, err := database.ParseDriver(cfg.StoreDriver, storeURL(cfg))
	if err != nil {
		return nil, err
	}

	opened, err := persistence.Open(ctx, persistence.Options{
		Driver:      driver,
		FilePath:    cfg.TimetablePath,
		SQLitePath:  cfg.SQLitePath,
		DatabaseURL: cfg.DatabaseURL,
		RedisURL:    cfg.RedisURL,
		RedisKey:    cfg.RedisKey,
		Breaker:     resilience.DefaultBreakerConfig(),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open timetable store: %w", err)
	}
	logger.Info("timetable store opened", "driver", opened.Driver)
	return opened, nil
}

// NewCalendarSyncer builds a CalDAV syncer from configuration.
func NewCalendarSyncer(cfg *config.Config, logger *slog.Logger) *calendar.Syncer {
	return calendar.NewSyncer(cfg.CalDAVURL, cfg.CalDAVUsername, cfg.CalDAVPassword, logger).
		WithCalendarPath(cfg.CalDAVCalendarPath).
		WithDeleteMissing(cfg.CalDAVDeleteMissing).
		WithTimeout(cfg.CalDAVTimeout)
}

// initPublisher connects RabbitMQ when events are enabled. Otherwise, and in
// development when the broker is unreachable, events go to an in-process bus
// that feeds calendar sync directly.
func (c *Container) initPublisher() error {
	if c.Config.EventsEnabled {
		rabbit, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
		if err == nil {
			c.EventPublisher = eventbus.NewBreakerPublisher(rabbit, resilience.DefaultBreakerConfig(), c.Logger)
			c.Health.Register("rabbitmq", observability.BrokerHealthChecker(rabbit.Check))
			return nil
		}
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		c.Logger.Warn("RabbitMQ not available, using in-process events", "error", err)
	}

	c.InProcessEventBus = eventbus.NewInProcessEventBus(c.Logger)
	if c.CalendarSyncer != nil {
		c.InProcessEventBus.RegisterConsumer(calendar.NewSyncConsumer(c.Store, c.CalendarSyncer, c.Logger))
	}
	c.EventPublisher = c.InProcessEventBus
	return nil
}

// RegisterStoreHealth adds a check that loads the schedule from store.
func RegisterStoreHealth(health *observability.HealthRegistry, driver database.Driver, store domain.Store) {
	ping := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_, err := store.Load(ctx)
		return err
	}
	health.Register("store", observability.StoreHealthChecker(driver.String(), ping))
}

// storeURL picks the connection string used for driver auto-detection.
func storeURL(cfg *config.Config) string {
	switch {
	case cfg.DatabaseURL != "":
		return cfg.DatabaseURL
	case cfg.RedisURL != "":
		return cfg.RedisURL
	default:
		return cfg.SQLitePath
	}
}

// Close releases all resources.
func (c *Container) Close() {
	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.opened != nil {
		if err := c.opened.Close(); err != nil {
			c.Logger.Warn("error closing timetable store", "driver", c.DBDriver, "error", err)
		} else if c.DBDriver != database.DriverFile && c.DBDriver != database.DriverMemory {
			c.Logger.Info("timetable store closed", "driver", c.DBDriver)
		}
	}
}
