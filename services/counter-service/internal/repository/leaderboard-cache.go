package repository

import (
	"context"
	"time"

	"github.com/devayla/base-counter/common/cache"
	"github.com/devayla/base-counter/common/models"
)

const (
	LeaderboardCacheKey  = "leaderboard_top_100"
	LeaderboardCacheSize = 100
	LeaderboardCacheTTL  = 5 * time.Minute
)

type LeaderboardCache interface {
	Get(ctx context.Context) ([]models.LeaderboardEntry, bool, error)
	Set(ctx context.Context, entries []models.LeaderboardEntry) error
	Invalidate(ctx context.Context) error
}

type leaderboardCache struct {
	redis *cache.RedisClient
}

func NewLeaderboardCache(redis *cache.RedisClient) LeaderboardCache {
	return &leaderboardCache{redis: redis}
}

func (c *leaderboardCache) Get(ctx context.Context) ([]models.LeaderboardEntry, bool, error) {
	var entries []models.LeaderboardEntry
	found, err := c.redis.GetJSON(ctx, LeaderboardCacheKey, &entries)
	if err != nil || !found {
		return nil, false, err
	}
	return entries, true, nil
}

func (c *leaderboardCache) Set(ctx context.Context, entries []models.LeaderboardEntry) error {
	return c.redis.SetJSON(ctx, LeaderboardCacheKey, entries, LeaderboardCacheTTL)
}

func (c *leaderboardCache) Invalidate(ctx context.Context) error {
	return c.redis.Delete(ctx, LeaderboardCacheKey)
}
