package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/felixgeelhaar/timetable/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	domain.BaseEvent
	Data string `json:"data"`
}

func TestNewBaseEvent(t *testing.T) {
	before := time.Now().UTC()

	event := domain.NewBaseEvent("TestAggregate", "test.event.created")

	after := time.Now().UTC()

	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.Equal(t, "TestAggregate", event.AggregateType())
	assert.Equal(t, "test.event.created", event.RoutingKey())
	assert.False(t, event.OccurredAt().Before(before))
	assert.False(t, event.OccurredAt().After(after))
}

func TestBaseEvent_WithCorrelationID(t *testing.T) {
	event := domain.NewBaseEvent("TestAggregate", "test.event.created")
	event.WithCorrelationID("req-42")

	assert.Equal(t, "req-42", event.CorrelationID)
}

func TestBaseEvent_JSONFlattensIntoEmbeddingEvent(t *testing.T) {
	event := testEvent{
		BaseEvent: domain.NewBaseEvent("TestAggregate", "test.event.created"),
		Data:      "payload",
	}

	raw, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "test.event.created", decoded["routing_key"])
	assert.Equal(t, "TestAggregate", decoded["aggregate_type"])
	assert.Equal(t, "payload", decoded["data"])
	assert.NotContains(t, decoded, "correlation_id")
}
