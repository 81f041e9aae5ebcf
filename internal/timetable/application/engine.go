// Package application holds the timetable engine: the single place where the
// schedule is loaded, changed and written back.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	sharedDomain "github.com/felixgeelhaar/timetable/internal/shared/domain"
	"github.com/felixgeelhaar/timetable/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/timetable/internal/timetable/domain"
	"github.com/felixgeelhaar/timetable/pkg/observability"
)

// Metric names recorded by the engine.
const (
	MetricSlotsAdded     = "timetable.slots.added"
	MetricSlotsRemoved   = "timetable.slots.removed"
	MetricSlotsUpdated   = "timetable.slots.updated"
	MetricConflictChecks = "timetable.conflicts.checked"
	MetricConflictsFound = "timetable.conflicts.found"
)

// Engine applies timetable operations against a Store.
//
// Every mutation runs load, modify and save under one lock so concurrent
// callers in the same process never lose each other's writes. Reads take the
// shared side of the lock. Events are queued under the lock and delivered in
// order after it is released, so a slow consumer never holds up other calls.
type Engine struct {
	store     domain.Store
	publisher eventbus.Publisher
	metrics   observability.Metrics
	logger    *slog.Logger
	mu        sync.RWMutex

	outboxMu sync.Mutex
	outbox   []pendingEvent
	draining bool
}

type pendingEvent struct {
	ctx   context.Context
	event sharedDomain.DomainEvent
}

// Option configures an Engine.
type Option func(*Engine)

// WithPublisher sets where domain events are sent after each save.
func WithPublisher(p eventbus.Publisher) Option {
	return func(e *Engine) {
		if p != nil {
			e.publisher = p
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m observability.Metrics) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// NewEngine creates an engine over store.
func NewEngine(store domain.Store, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		metrics: observability.NoopMetrics{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.publisher == nil {
		e.publisher = eventbus.NewNoopPublisher(e.logger)
	}
	return e
}

// Snapshot returns the current schedule.
func (e *Engine) Snapshot(ctx context.Context) (*domain.Schedule, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.load(ctx)
}

func (e *Engine) load(ctx context.Context) (*domain.Schedule, error) {
	schedule, err := e.store.Load(ctx)
	if err != nil {
		e.metrics.Counter(observability.MetricStoreErrors, 1, observability.T("op", "load"))
		return nil, fmt.Errorf("load timetable: %w", err)
	}
	return schedule, nil
}

func (e *Engine) save(ctx context.Context, schedule *domain.Schedule) error {
	if err := e.store.Save(ctx, schedule); err != nil {
		e.metrics.Counter(observability.MetricStoreErrors, 1, observability.T("op", "save"))
		return fmt.Errorf("save timetable: %w", err)
	}
	e.metrics.Gauge(observability.MetricSlotsStored, float64(schedule.SlotCount()))
	return nil
}

// publish queues events saved under the write lock. Callers defer
// flushEvents before taking the lock so delivery starts once it is released.
func (e *Engine) publish(ctx context.Context, events ...sharedDomain.DomainEvent) {
	correlationID := observability.CorrelationIDFromContext(ctx)
	ctx = context.WithoutCancel(ctx)

	e.outboxMu.Lock()
	defer e.outboxMu.Unlock()
	for _, event := range events {
		if correlationID != "" {
			if tagger, ok := event.(interface{ WithCorrelationID(string) }); ok {
				tagger.WithCorrelationID(correlationID)
			}
		}
		e.outbox = append(e.outbox, pendingEvent{ctx: ctx, event: event})
	}
}

// flushEvents delivers queued events in FIFO order. One caller drains at a
// time; a caller that finds a drain in progress leaves its events to it.
func (e *Engine) flushEvents() {
	e.outboxMu.Lock()
	if e.draining {
		e.outboxMu.Unlock()
		return
	}
	e.draining = true
	for len(e.outbox) > 0 {
		next := e.outbox[0]
		e.outbox[0] = pendingEvent{}
		e.outbox = e.outbox[1:]
		e.outboxMu.Unlock()
		e.deliver(next.ctx, next.event)
		e.outboxMu.Lock()
	}
	e.outbox = nil
	e.draining = false
	e.outboxMu.Unlock()
}

// deliver sends one event. Failures are logged only; the schedule change has
// already been persisted.
func (e *Engine) deliver(ctx context.Context, event sharedDomain.DomainEvent) {
	tag := observability.T("routing_key", event.RoutingKey())
	if err := eventbus.PublishEvent(ctx, e.publisher, event); err != nil {
		e.metrics.Counter(observability.MetricEventsFailed, 1, tag)
		e.logger.WarnContext(ctx, "failed to publish timetable event",
			"routing_key", event.RoutingKey(),
			"event_id", event.EventID(),
			"error", err,
		)
		return
	}
	e.metrics.Counter(observability.MetricEventsPublished, 1, tag)
}
