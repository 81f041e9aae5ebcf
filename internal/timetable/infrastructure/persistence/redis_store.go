package persistence

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/timetable/internal/timetable/domain"
)

// DefaultRedisKey is the key holding the schedule document.
const DefaultRedisKey = "timetable:schedule"

// RedisStore keeps the schedule document under a single Redis key.
type RedisStore struct {
	client *redis.Client
	key    string
	logger *slog.Logger
}

// NewRedisStore creates a store using key, or DefaultRedisKey when empty.
func NewRedisStore(client *redis.Client, key string, logger *slog.Logger) *RedisStore {
	if logger == nil {
		logger = slog.Default()
	}
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key, logger: logger}
}

func (s *RedisStore) Load(ctx context.Context) (*domain.Schedule, error) {
	val, err := s.client.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return domain.NewSchedule(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load timetable: %w", err)
	}

	schedule, _ := decodeOrEmpty(s.logger, "redis", val)
	return schedule, nil
}

func (s *RedisStore) Save(ctx context.Context, schedule *domain.Schedule) error {
	data, err := schedule.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode timetable: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save timetable: %w", err)
	}
	return nil
}
