package eventbus

import (
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ExchangeName is the topic exchange carrying timetable slot events.
const ExchangeName = "timetable.domain.events"

// ErrBrokerClosed is returned by health checks once the connection is gone.
var ErrBrokerClosed = errors.New("rabbitmq connection closed")

// amqpSession is one connection plus one channel with the exchange declared.
type amqpSession struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   *slog.Logger
}

func dialSession(url, exchange string, logger *slog.Logger) (*amqpSession, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	// durable topic exchange, kept when unused
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	return &amqpSession{conn: conn, channel: ch, exchange: exchange, logger: logger}, nil
}

func (s *amqpSession) check() error {
	if s.conn == nil || s.conn.IsClosed() {
		return ErrBrokerClosed
	}
	return nil
}

func (s *amqpSession) close() error {
	if err := s.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		s.logger.Warn("error closing channel", "error", err)
	}
	if err := s.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		return err
	}
	return nil
}
