package eventbus

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// InProcessEventBus delivers slot events to local consumers synchronously
// when no broker is configured. The engine publishes after releasing its
// lock, so a slow consumer delays only the caller that drains the queue.
type InProcessEventBus struct {
	mu       sync.Mutex
	registry *ConsumerRegistry
	logger   *slog.Logger
}

func NewInProcessEventBus(logger *slog.Logger) *InProcessEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessEventBus{registry: NewConsumerRegistry(logger), logger: logger}
}

func (b *InProcessEventBus) RegisterConsumer(consumer EventConsumer) {
	b.registry.Register(consumer)
}

// Registry exposes the consumers for inspection.
func (b *InProcessEventBus) Registry() *ConsumerRegistry { return b.registry }

// Publish hands payload to every matching consumer in registration order.
// Decode and handler errors are logged; the engine's write has already
// succeeded, so they never reach the caller.
func (b *InProcessEventBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	event, err := DecodeEvent(routingKey, payload)
	if err != nil {
		b.logger.ErrorContext(ctx, "dropping undecodable event", "routing_key", routingKey, "error", err)
		return nil
	}
	ctx = eventContext(ctx, event, "")

	start := time.Now()
	log := b.logger.With("routing_key", event.RoutingKey, "event_id", event.EventID)
	if err := b.registry.Dispatch(ctx, event); err != nil {
		log.ErrorContext(ctx, "in-process delivery failed", "error", err)
		return nil
	}
	log.DebugContext(ctx, "in-process delivery done", "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (b *InProcessEventBus) Close() error { return nil }
