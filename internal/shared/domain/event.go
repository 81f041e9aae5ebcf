package domain

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent represents something that happened in the domain.
type DomainEvent interface {
	EventID() uuid.UUID
	AggregateType() string
	RoutingKey() string
	OccurredAt() time.Time
}

// BaseEvent provides common event functionality. Its fields are exported so
// events serialize directly onto the message bus.
type BaseEvent struct {
	ID            uuid.UUID `json:"event_id"`
	Aggregate     string    `json:"aggregate_type"`
	Key           string    `json:"routing_key"`
	At            time.Time `json:"occurred_at"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(aggregateType, routingKey string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New(),
		Aggregate: aggregateType,
		Key:       routingKey,
		At:        time.Now().UTC(),
	}
}

func (e BaseEvent) EventID() uuid.UUID    { return e.ID }
func (e BaseEvent) AggregateType() string { return e.Aggregate }
func (e BaseEvent) RoutingKey() string    { return e.Key }
func (e BaseEvent) OccurredAt() time.Time { return e.At }

// WithCorrelationID tags the event with the request that caused it.
func (e *BaseEvent) WithCorrelationID(id string) {
	e.CorrelationID = id
}
