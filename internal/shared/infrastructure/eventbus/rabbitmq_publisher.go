package eventbus

import (
	"context"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/felixgeelhaar/timetable/pkg/observability"
)

// RabbitMQPublisher publishes slot events to the timetable exchange.
type RabbitMQPublisher struct {
	session *amqpSession
	logger  *slog.Logger
	mu      sync.Mutex // amqp channels are not safe for concurrent publishes
}

// NewRabbitMQPublisher connects and declares the exchange.
func NewRabbitMQPublisher(url string, logger *slog.Logger) (*RabbitMQPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	session, err := dialSession(url, ExchangeName, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("RabbitMQ publisher connected", "exchange", ExchangeName)
	return &RabbitMQPublisher{session: session, logger: logger}, nil
}

// Publish sends a persistent JSON message. The correlation ID from ctx, if
// any, travels in the AMQP CorrelationId property.
func (p *RabbitMQPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	msg := amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		Timestamp:     time.Now(),
		CorrelationId: observability.CorrelationIDFromContext(ctx),
		Body:          payload,
	}

	p.mu.Lock()
	err := p.session.channel.PublishWithContext(ctx, p.session.exchange, routingKey, false, false, msg)
	p.mu.Unlock()
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to publish message", "routing_key", routingKey, "error", err)
		return err
	}

	p.logger.DebugContext(ctx, "message published", "routing_key", routingKey, "size", len(payload))
	return nil
}

// Check reports whether the broker connection is still open.
func (p *RabbitMQPublisher) Check(ctx context.Context) error {
	return p.session.check()
}

// Close closes the channel and connection.
func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.session.close(); err != nil {
		return err
	}
	p.logger.Info("RabbitMQ publisher closed")
	return nil
}
