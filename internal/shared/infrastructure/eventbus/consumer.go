package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/timetable/pkg/observability"
)

// EventConsumer reacts to slot events whose routing key matches one of its
// patterns. Patterns use AMQP topic wildcards, e.g. "timetable.slot.*".
type EventConsumer interface {
	EventTypes() []string
	Handle(ctx context.Context, event *ConsumedEvent) error
}

// Consumer is a broker-backed event source.
type Consumer interface {
	RegisterConsumer(consumer EventConsumer)
	// Start blocks until ctx ends or the consumer is closed.
	Start(ctx context.Context) error
	Check(ctx context.Context) error
	Close() error
}

// ConsumedEvent is the envelope every slot event shares. Payload keeps the
// whole body so handlers can decode their own fields.
type ConsumedEvent struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateType string          `json:"aggregate_type"`
	RoutingKey    string          `json:"routing_key"`
	OccurredAt    time.Time       `json:"occurred_at"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"-"`
}

// DecodeEvent reads the envelope from body. routingKey is used when the body
// does not name one.
func DecodeEvent(routingKey string, body []byte) (*ConsumedEvent, error) {
	var event ConsumedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, err
	}
	if event.RoutingKey == "" {
		event.RoutingKey = routingKey
	}
	event.Payload = append(json.RawMessage(nil), body...)
	return &event, nil
}

// eventContext carries the event's correlation ID, or fallback when the body
// has none, into ctx for the handlers and their logs.
func eventContext(ctx context.Context, event *ConsumedEvent, fallback string) context.Context {
	if event.CorrelationID == "" {
		event.CorrelationID = fallback
	}
	if event.CorrelationID == "" {
		return ctx
	}
	return observability.WithCorrelationID(ctx, event.CorrelationID)
}
