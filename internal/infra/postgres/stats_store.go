package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"rich-trivia-service/internal/domain"
)

// StatsStore keeps per-user lifetime stats in the users table. Creation is
// idempotent and increments are single-statement atomic adds.
type StatsStore struct {
	pool *pgxpool.Pool
}

func NewStatsStore(pool *pgxpool.Pool) *StatsStore {
	return &StatsStore{pool: pool}
}

func (s *StatsStore) EnsureUser(ctx context.Context, stats domain.UserStats) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (uid, email, display_name, answered_count, money_earned)
		 VALUES ($1, $2, $3, 0, 0)
		 ON CONFLICT (uid) DO NOTHING`,
		stats.UID, stats.Email, stats.DisplayName)
	if err != nil {
		return fmt.Errorf("ensure user %s: %w", stats.UID, err)
	}
	return nil
}

func (s *StatsStore) IncrementStats(ctx context.Context, uid string, answeredDelta, moneyDelta int) error {
	// Only touch the fields with a non-zero delta.
	query := `UPDATE users SET `
	args := []interface{}{uid}
	switch {
	case answeredDelta != 0 && moneyDelta != 0:
		query += `answered_count = answered_count + $2, money_earned = money_earned + $3`
		args = append(args, answeredDelta, moneyDelta)
	case answeredDelta != 0:
		query += `answered_count = answered_count + $2`
		args = append(args, answeredDelta)
	case moneyDelta != 0:
		query += `money_earned = money_earned + $2`
		args = append(args, moneyDelta)
	default:
		return nil
	}
	query += ` WHERE uid = $1`

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("increment stats for %s: %w", uid, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *StatsStore) GetStats(ctx context.Context, uid string) (domain.UserStats, error) {
	stats := domain.UserStats{UID: uid}
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(email, ''), COALESCE(display_name, ''), answered_count, money_earned
		 FROM users WHERE uid = $1`, uid).
		Scan(&stats.Email, &stats.DisplayName, &stats.AnsweredCount, &stats.MoneyEarned)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserStats{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("get stats for %s: %w", uid, err)
	}
	return stats, nil
}
