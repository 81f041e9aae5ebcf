package persistence

import (
	"context"
	"log/slog"

	"github.com/sony/gobreaker/v2"

	"github.com/felixgeelhaar/timetable/internal/shared/infrastructure/resilience"
	"github.com/felixgeelhaar/timetable/internal/timetable/domain"
)

// BreakerStore guards a remote store with a circuit breaker so a dead
// backend fails fast instead of stalling every request.
type BreakerStore struct {
	next    domain.Store
	breaker *gobreaker.CircuitBreaker[*domain.Schedule]
}

// NewBreakerStore wraps next.
func NewBreakerStore(name string, next domain.Store, cfg resilience.BreakerConfig, logger *slog.Logger) *BreakerStore {
	return &BreakerStore{
		next:    next,
		breaker: resilience.NewBreaker[*domain.Schedule](name, cfg, logger),
	}
}

func (s *BreakerStore) Load(ctx context.Context) (*domain.Schedule, error) {
	schedule, err := s.breaker.Execute(func() (*domain.Schedule, error) {
		return s.next.Load(ctx)
	})
	if err != nil {
		return nil, resilience.Translate(err)
	}
	return schedule, nil
}

func (s *BreakerStore) Save(ctx context.Context, schedule *domain.Schedule) error {
	_, err := s.breaker.Execute(func() (*domain.Schedule, error) {
		return nil, s.next.Save(ctx, schedule)
	})
	return resilience.Translate(err)
}
