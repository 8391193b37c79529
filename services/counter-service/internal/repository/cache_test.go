package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/devayla/base-counter/common/cache"
	"github.com/devayla/base-counter/common/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*cache.RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.FromClient(client), mr
}

func TestLeaderboardCacheRoundTripAndTTL(t *testing.T) {
	rc, mr := newTestRedis(t)
	lc := NewLeaderboardCache(rc)
	ctx := context.Background()

	_, found, err := lc.Get(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	entries := []models.LeaderboardEntry{
		{Fid: 1, Username: "alice", TotalIncrements: 40},
		{Fid: 2, Username: "bob", TotalIncrements: 12},
	}
	require.NoError(t, lc.Set(ctx, entries))
	assert.Equal(t, LeaderboardCacheTTL, mr.TTL(LeaderboardCacheKey))

	got, found, err := lc.Get(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "alice", got[0].Username)
	assert.EqualValues(t, 12, got[1].TotalIncrements)

	require.NoError(t, lc.Invalidate(ctx))
	assert.False(t, mr.Exists(LeaderboardCacheKey))
}

func TestLeaderboardCacheExpires(t *testing.T) {
	rc, mr := newTestRedis(t)
	lc := NewLeaderboardCache(rc)
	ctx := context.Background()

	require.NoError(t, lc.Set(ctx, []models.LeaderboardEntry{{Fid: 1}}))
	mr.FastForward(LeaderboardCacheTTL)

	_, found, err := lc.Get(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNotificationRepository(t *testing.T) {
	rc, mr := newTestRedis(t)
	repo := NewNotificationRepository(rc)
	ctx := context.Background()

	details, err := repo.Get(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, details)

	require.NoError(t, repo.Set(ctx, 42, models.NotificationDetails{URL: "https://api.host/notify", Token: "tok"}))
	assert.True(t, mr.Exists("42"))

	details, err = repo.Get(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, details)
	assert.Equal(t, "tok", details.Token)

	require.NoError(t, repo.Delete(ctx, 42))
	details, err = repo.Get(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, details)
}
