package eventbus

import (
	"context"
	"log/slog"

	"github.com/sony/gobreaker/v2"

	"github.com/felixgeelhaar/timetable/internal/shared/infrastructure/resilience"
)

// BreakerPublisher stops calling a failing broker until it recovers.
type BreakerPublisher struct {
	next    Publisher
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewBreakerPublisher wraps next in a circuit breaker.
func NewBreakerPublisher(next Publisher, cfg resilience.BreakerConfig, logger *slog.Logger) *BreakerPublisher {
	return &BreakerPublisher{
		next:    next,
		breaker: resilience.NewBreaker[struct{}]("event-publisher", cfg, logger),
	}
}

func (p *BreakerPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	_, err := p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.next.Publish(ctx, routingKey, payload)
	})
	return resilience.Translate(err)
}

func (p *BreakerPublisher) Close() error {
	return p.next.Close()
}
