// Command timetable-worker consumes slot events from RabbitMQ and mirrors
// the timetable into the configured CalDAV calendar.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/timetable/internal/app"
	"github.com/felixgeelhaar/timetable/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/timetable/internal/timetable/domain"
	"github.com/felixgeelhaar/timetable/internal/timetable/infrastructure/calendar"
	"github.com/felixgeelhaar/timetable/pkg/config"
	"github.com/felixgeelhaar/timetable/pkg/observability"
)

var version = "dev"

const readyTimeout = 2 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Getenv("TIMETABLE_ENV_FILE")); err != nil {
		fmt.Fprintln(os.Stderr, "timetable-worker:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, envFile string) error {
	cfg, err := config.LoadFile(envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := app.NewLogger(cfg, os.Stdout, version).With("component", "worker")

	if !cfg.CalDAVEnabled() {
		return errors.New("nothing to do: CALDAV_URL is not set")
	}

	opened, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer opened.Close()

	health := observability.NewHealthRegistry()
	app.RegisterStoreHealth(health, opened.Driver, opened.Store)

	consumer, err := eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
		URL:    cfg.RabbitMQURL,
		Logger: logger,
	}, eventbus.NewConsumerRegistry(logger))
	if err != nil {
		return fmt.Errorf("connect rabbitmq: %w", err)
	}
	defer consumer.Close()
	health.Register("rabbitmq", observability.BrokerHealthChecker(consumer.Check))

	syncer := app.NewCalendarSyncer(cfg, logger)
	consumer.RegisterConsumer(calendar.NewSyncConsumer(opened.Store, syncer, logger))

	catchUp(ctx, opened.Store, syncer, logger)

	if cfg.WorkerHealthAddr != "" {
		go serveHealth(ctx, cfg.WorkerHealthAddr, health, logger)
	}

	logger.Info("worker started", "version", version)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("consumer stopped: %w", err)
	}
	logger.Info("worker stopped")
	return nil
}

// catchUp mirrors the stored timetable once so the calendar reflects any
// change made while the worker was down.
func catchUp(ctx context.Context, store domain.Store, syncer *calendar.Syncer, logger *slog.Logger) {
	schedule, err := store.Load(ctx)
	if err != nil {
		logger.Warn("catch-up sync skipped", "error", err)
		return
	}
	result, err := syncer.Sync(ctx, schedule)
	if err != nil {
		logger.Warn("catch-up sync failed", "error", err)
		return
	}
	logger.Info("catch-up sync done",
		"created", result.Created,
		"updated", result.Updated,
		"deleted", result.Deleted,
		"failed", result.Failed,
	)
}

func serveHealth(ctx context.Context, addr string, health *observability.HealthRegistry, logger *slog.Logger) {
	srv := &http.Server{Addr: addr, Handler: healthMux(health), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("health endpoint listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("health endpoint failed", "error", err)
	}
}

// healthMux serves the cached results on /healthz and runs the checks on
// /readyz, answering 503 only when something is unhealthy.
func healthMux(health *observability.HealthRegistry) http.Handler {
	write := func(w http.ResponseWriter, overall observability.OverallHealth) {
		w.Header().Set("Content-Type", "application/json")
		if overall.Status == observability.HealthStatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		data, _ := overall.ToJSON()
		_, _ = w.Write(data)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		write(w, health.Last())
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		write(w, health.GetOverallHealth(ctx))
	})
	return mux
}
