package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultConsumerQueueName is the durable queue the calendar worker reads.
const DefaultConsumerQueueName = "timetable.consumer"

// ErrConsumerRunning is returned by a second Start call.
var ErrConsumerRunning = errors.New("consumer already running")

// RabbitMQConsumerConfig configures NewRabbitMQConsumer.
type RabbitMQConsumerConfig struct {
	URL       string
	QueueName string
	Exchange  string
	Logger    *slog.Logger
}

// RabbitMQConsumer feeds queued slot events to registered consumers, one
// message at a time so calendar writes apply in publish order.
type RabbitMQConsumer struct {
	session  *amqpSession
	queue    string
	registry *ConsumerRegistry
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	done    chan struct{}
	once    sync.Once
}

// NewRabbitMQConsumer connects, declares the exchange and the durable queue.
func NewRabbitMQConsumer(cfg RabbitMQConsumerConfig, registry *ConsumerRegistry) (*RabbitMQConsumer, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.QueueName == "" {
		cfg.QueueName = DefaultConsumerQueueName
	}
	if cfg.Exchange == "" {
		cfg.Exchange = ExchangeName
	}
	if registry == nil {
		registry = NewConsumerRegistry(cfg.Logger)
	}

	session, err := dialSession(cfg.URL, cfg.Exchange, cfg.Logger)
	if err != nil {
		return nil, err
	}
	if _, err := session.channel.QueueDeclare(cfg.QueueName, true, false, false, false, nil); err != nil {
		_ = session.close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", cfg.QueueName, err)
	}

	cfg.Logger.Info("RabbitMQ consumer connected", "queue", cfg.QueueName, "exchange", cfg.Exchange)
	return &RabbitMQConsumer{
		session:  session,
		queue:    cfg.QueueName,
		registry: registry,
		logger:   cfg.Logger,
		done:     make(chan struct{}),
	}, nil
}

// RegisterConsumer adds consumer and binds each of its patterns to the queue.
func (c *RabbitMQConsumer) RegisterConsumer(consumer EventConsumer) {
	c.registry.Register(consumer)

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, pattern := range consumer.EventTypes() {
		if err := c.session.channel.QueueBind(c.queue, pattern, c.session.exchange, false, nil); err != nil {
			c.logger.Error("failed to bind queue", "queue", c.queue, "pattern", pattern, "error", err)
			continue
		}
		c.logger.Debug("queue bound", "queue", c.queue, "pattern", pattern)
	}
}

// Start consumes until ctx is cancelled, Close is called or the broker
// closes the delivery channel.
func (c *RabbitMQConsumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return ErrConsumerRunning
	}
	c.running = true
	c.mu.Unlock()

	if err := c.session.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}
	deliveries, err := c.session.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.Info("consuming timetable events", "queue", c.queue)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel for %s closed", c.queue)
			}
			c.handle(ctx, d)
		}
	}
}

// handle acks on success. A failed first delivery is requeued once; a
// failed redelivery is dropped so one bad event cannot stall the queue.
func (c *RabbitMQConsumer) handle(ctx context.Context, d amqp.Delivery) {
	event, err := DecodeEvent(d.RoutingKey, d.Body)
	if err != nil {
		c.logger.Error("dropping undecodable event", "routing_key", d.RoutingKey, "error", err)
		c.ack(d)
		return
	}

	ctx = eventContext(ctx, event, d.CorrelationId)

	start := time.Now()
	if err := c.registry.Dispatch(ctx, event); err != nil {
		requeue := !d.Redelivered
		c.logger.ErrorContext(ctx, "event handling failed",
			"routing_key", event.RoutingKey,
			"event_id", event.EventID,
			"requeue", requeue,
			"error", err,
		)
		if nackErr := d.Nack(false, requeue); nackErr != nil {
			c.logger.Error("failed to nack event", "error", nackErr)
		}
		return
	}

	c.logger.DebugContext(ctx, "event handled",
		"routing_key", event.RoutingKey,
		"event_id", event.EventID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	c.ack(d)
}

func (c *RabbitMQConsumer) ack(d amqp.Delivery) {
	if err := d.Ack(false); err != nil {
		c.logger.Error("failed to ack event", "error", err)
	}
}

// Check reports whether the broker connection is still open.
func (c *RabbitMQConsumer) Check(ctx context.Context) error {
	return c.session.check()
}

// Close stops Start and closes the connection.
func (c *RabbitMQConsumer) Close() error {
	c.once.Do(func() { close(c.done) })

	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	if err := c.session.close(); err != nil {
		return err
	}
	c.logger.Info("RabbitMQ consumer closed")
	return nil
}

var _ Consumer = (*RabbitMQConsumer)(nil)
