package eventbus

import (
	"context"
	"sync"
)

// RecordingPublisher keeps every published message in memory.
type RecordingPublisher struct {
	mu       sync.Mutex
	messages []RecordedMessage
	err      error
}

// RecordedMessage is one captured publish call.
type RecordedMessage struct {
	RoutingKey string
	Payload    []byte
}

// NewRecordingPublisher creates a publisher that records messages.
func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

// FailWith makes subsequent Publish calls return err after recording.
func (p *RecordingPublisher) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func (p *RecordingPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, RecordedMessage{
		RoutingKey: routingKey,
		Payload:    append([]byte(nil), payload...),
	})
	return p.err
}

func (p *RecordingPublisher) Close() error { return nil }

// Messages returns a copy of the recorded messages.
func (p *RecordingPublisher) Messages() []RecordedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]RecordedMessage, len(p.messages))
	copy(out, p.messages)
	return out
}

// RoutingKeys returns the routing keys in publish order.
func (p *RecordingPublisher) RoutingKeys() []string {
	msgs := p.Messages()
	keys := make([]string, len(msgs))
	for i, m := range msgs {
		keys[i] = m.RoutingKey
	}
	return keys
}
