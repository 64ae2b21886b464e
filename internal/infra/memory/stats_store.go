package memory

import (
	"context"
	"sync"

	"rich-trivia-service/internal/domain"
)

// StatsStore is an in-memory implementation of app.StatsStore, used in tests
// and when no Postgres is configured.
type StatsStore struct {
	mu    sync.RWMutex
	users map[string]domain.UserStats
}

func NewStatsStore() *StatsStore {
	return &StatsStore{
		users: make(map[string]domain.UserStats),
	}
}

func (s *StatsStore) EnsureUser(_ context.Context, stats domain.UserStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[stats.UID]; ok {
		return nil
	}
	stats.AnsweredCount = 0
	stats.MoneyEarned = 0
	s.users[stats.UID] = stats
	return nil
}

func (s *StatsStore) IncrementStats(_ context.Context, uid string, answeredDelta, moneyDelta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats, ok := s.users[uid]
	if !ok {
		return domain.ErrUserNotFound
	}
	stats.AnsweredCount += answeredDelta
	stats.MoneyEarned += moneyDelta
	s.users[uid] = stats
	return nil
}

func (s *StatsStore) GetStats(_ context.Context, uid string) (domain.UserStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats, ok := s.users[uid]
	if !ok {
		return domain.UserStats{}, domain.ErrUserNotFound
	}
	return stats, nil
}
