package app

import (
	"context"
	"log"

	"rich-trivia-service/internal/domain"
)

// StatsStore abstracts the per-user stats documents (in-memory, Postgres, etc).
// EnsureUser must never overwrite an existing record; IncrementStats must
// apply the deltas atomically at the store and skip zero-valued fields.
type StatsStore interface {
	EnsureUser(ctx context.Context, stats domain.UserStats) error
	IncrementStats(ctx context.Context, uid string, answeredDelta, moneyDelta int) error
	GetStats(ctx context.Context, uid string) (domain.UserStats, error)
}

// StatsService contains the lifetime-stats use cases.
type StatsService struct {
	store StatsStore
}

func NewStatsService(store StatsStore) *StatsService {
	return &StatsService{store: store}
}

// EnsureUser idempotently creates the stats record for an identity with
// zeroed counters.
func (s *StatsService) EnsureUser(ctx context.Context, identity domain.UserIdentity) error {
	return s.store.EnsureUser(ctx, domain.UserStats{
		UID:         identity.UID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
	})
}

// ApplyDelta increments the lifetime counters. When both deltas are zero no
// store call is issued.
func (s *StatsService) ApplyDelta(ctx context.Context, uid string, answeredDelta, moneyDelta int) error {
	if answeredDelta == 0 && moneyDelta == 0 {
		return nil
	}
	return s.store.IncrementStats(ctx, uid, answeredDelta, moneyDelta)
}

// RecordResult persists a finished session for a signed-in user. Write
// failures are logged and swallowed; the game-over view never waits on or
// rolls back for the store.
func (s *StatsService) RecordResult(ctx context.Context, uid string, summary Summary) {
	if err := s.ApplyDelta(ctx, uid, summary.CorrectCount, summary.MoneyWon); err != nil {
		log.Printf("failed to record game result for user %s: %v", uid, err)
	}
}

// Stats fetches the lifetime record; domain.ErrUserNotFound when absent.
func (s *StatsService) Stats(ctx context.Context, uid string) (domain.UserStats, error) {
	return s.store.GetStats(ctx, uid)
}
