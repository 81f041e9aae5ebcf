package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

type registration struct {
	pattern  string
	consumer EventConsumer
}

// ConsumerRegistry routes decoded events to the consumers whose patterns
// match the routing key.
type ConsumerRegistry struct {
	registrations []registration
	mu            sync.RWMutex
	logger        *slog.Logger
}

func NewConsumerRegistry(logger *slog.Logger) *ConsumerRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsumerRegistry{logger: logger}
}

// Register adds a consumer for its declared event types.
func (r *ConsumerRegistry) Register(consumer EventConsumer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, pattern := range consumer.EventTypes() {
		r.registrations = append(r.registrations, registration{pattern: pattern, consumer: consumer})
		r.logger.Debug("consumer registered", "pattern", pattern, "consumer", fmt.Sprintf("%T", consumer))
	}
}

// GetConsumers returns every consumer whose pattern matches routingKey.
// A consumer registered under several matching patterns is returned once.
func (r *ConsumerRegistry) GetConsumers(routingKey string) []EventConsumer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []EventConsumer
	seen := make(map[EventConsumer]bool)
	for _, reg := range r.registrations {
		if seen[reg.consumer] || !MatchRoutingKey(reg.pattern, routingKey) {
			continue
		}
		seen[reg.consumer] = true
		out = append(out, reg.consumer)
	}
	return out
}

// Patterns returns the registered routing key patterns.
func (r *ConsumerRegistry) Patterns() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	patterns := make([]string, 0, len(r.registrations))
	for _, reg := range r.registrations {
		patterns = append(patterns, reg.pattern)
	}
	return patterns
}

// Dispatch runs every matching consumer, even after one fails, and joins
// their errors.
func (r *ConsumerRegistry) Dispatch(ctx context.Context, event *ConsumedEvent) error {
	consumers := r.GetConsumers(event.RoutingKey)
	if len(consumers) == 0 {
		r.logger.DebugContext(ctx, "no consumer for event", "routing_key", event.RoutingKey)
		return nil
	}

	var errs []error
	for _, consumer := range consumers {
		if err := consumer.Handle(ctx, event); err != nil {
			r.logger.ErrorContext(ctx, "consumer failed",
				"routing_key", event.RoutingKey,
				"event_id", event.EventID,
				"consumer", fmt.Sprintf("%T", consumer),
				"error", err,
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MatchRoutingKey applies AMQP topic matching: "*" matches exactly one word
// and "#" matches zero or more words.
func MatchRoutingKey(pattern, key string) bool {
	return matchWords(strings.Split(pattern, "."), strings.Split(key, "."))
}

func matchWords(pattern, key []string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case "#":
			if len(pattern) == 1 {
				return true
			}
			for i := 0; i <= len(key); i++ {
				if matchWords(pattern[1:], key[i:]) {
					return true
				}
			}
			return false
		case "*":
			if len(key) == 0 {
				return false
			}
		default:
			if len(key) == 0 || key[0] != pattern[0] {
				return false
			}
		}
		pattern, key = pattern[1:], key[1:]
	}
	return len(key) == 0
}
