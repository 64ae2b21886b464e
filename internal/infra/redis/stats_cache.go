package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"rich-trivia-service/internal/app"
	"rich-trivia-service/internal/domain"
)

// StatsCache is a read-through cache in front of a backing app.StatsStore.
// Reads are served from Redis when possible; increments go to the backing
// store and drop the cached entry so the next read is fresh.
type StatsCache struct {
	client *redis.Client
	store  app.StatsStore
	ttl    time.Duration
}

func NewStatsCache(client *redis.Client, store app.StatsStore, ttl time.Duration) *StatsCache {
	return &StatsCache{client: client, store: store, ttl: ttl}
}

func (c *StatsCache) EnsureUser(ctx context.Context, stats domain.UserStats) error {
	return c.store.EnsureUser(ctx, stats)
}

func (c *StatsCache) IncrementStats(ctx context.Context, uid string, answeredDelta, moneyDelta int) error {
	if err := c.store.IncrementStats(ctx, uid, answeredDelta, moneyDelta); err != nil {
		return err
	}
	// best-effort invalidation; stale reads expire with the TTL anyway
	_ = c.client.Del(ctx, c.key(uid)).Err()
	return nil
}

func (c *StatsCache) GetStats(ctx context.Context, uid string) (domain.UserStats, error) {
	if raw, err := c.client.Get(ctx, c.key(uid)).Bytes(); err == nil && len(raw) > 0 {
		var stats domain.UserStats
		if err := json.Unmarshal(raw, &stats); err == nil {
			return stats, nil
		}
	}

	stats, err := c.store.GetStats(ctx, uid)
	if err != nil {
		return domain.UserStats{}, err
	}
	if raw, err := json.Marshal(stats); err == nil {
		_ = c.client.Set(ctx, c.key(uid), raw, c.ttl).Err()
	}
	return stats, nil
}

func (c *StatsCache) key(uid string) string {
	return "user:stats:" + uid
}
