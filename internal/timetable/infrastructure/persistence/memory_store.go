package persistence

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/timetable/internal/timetable/domain"
)

// MemoryStore keeps the schedule in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	schedule *domain.Schedule
	saves    int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{schedule: domain.NewSchedule()}
}

// NewMemoryStoreWith seeds the store with a copy of schedule.
func NewMemoryStoreWith(schedule *domain.Schedule) *MemoryStore {
	return &MemoryStore{schedule: schedule.Clone()}
}

func (s *MemoryStore) Load(ctx context.Context) (*domain.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schedule.Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, schedule *domain.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedule = schedule.Clone()
	s.saves++
	return nil
}

// Saves returns how many times Save has been called.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
