package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devayla/base-counter/common/errors"
	"github.com/devayla/base-counter/common/logger"
	"github.com/devayla/base-counter/common/models"
)

func newLeaderboardFixture(entries int) (LeaderboardService, *fakeLeaderboardRepo, *fakeLeaderboardCache, *fakePublisher) {
	repo := &fakeLeaderboardRepo{entries: map[int64]models.LeaderboardEntry{}}
	for i := 1; i <= entries; i++ {
		repo.entries[int64(i)] = models.LeaderboardEntry{
			Fid:             int64(i),
			Username:        fmt.Sprintf("user-%d", i),
			TotalIncrements: int64(i * 10),
		}
	}
	cache := &fakeLeaderboardCache{}
	publisher := &fakePublisher{}
	return NewLeaderboardService(repo, cache, publisher, nil, logger.Nop()), repo, cache, publisher
}

func TestLeaderboardServedFromCacheAfterMiss(t *testing.T) {
	svc, repo, cache, _ := newLeaderboardFixture(150)
	ctx := context.Background()

	entries, err := svc.GetLeaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 10)
	assert.Equal(t, int64(150), entries[0].Fid)
	assert.Equal(t, 1, repo.topCalls)
	assert.Len(t, cache.entries, 100)

	entries, err = svc.GetLeaderboard(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, DefaultLeaderboardLimit)
	assert.Equal(t, 1, repo.topCalls)
}

func TestLeaderboardLargeLimitBypassesCache(t *testing.T) {
	svc, repo, cache, _ := newLeaderboardFixture(150)

	entries, err := svc.GetLeaderboard(context.Background(), 5000)
	require.NoError(t, err)
	assert.Len(t, entries, 150)
	assert.Equal(t, 1, repo.topCalls)
	assert.False(t, cache.cached)
}

func TestLeaderboardCacheErrorFallsBackToTable(t *testing.T) {
	svc, repo, cache, _ := newLeaderboardFixture(3)
	cache.getErr = errors.New(errors.CodeRedisOperationError, "connection refused")

	entries, err := svc.GetLeaderboard(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, 1, repo.topCalls)
}

func TestUpdateEntryInvalidatesCache(t *testing.T) {
	svc, repo, cache, publisher := newLeaderboardFixture(3)
	ctx := context.Background()

	_, err := svc.GetLeaderboard(ctx, 10)
	require.NoError(t, err)
	require.True(t, cache.cached)

	entry, err := svc.UpdateEntry(ctx, UpdateLeaderboardInput{
		Fid:             99,
		Username:        "climber",
		UserAddress:     "0xABCDEF0000000000000000000000000000000001",
		TotalIncrements: 1000,
		TotalRewards:    0.25,
	})
	require.NoError(t, err)
	assert.Equal(t, "0xabcdef0000000000000000000000000000000001", entry.UserAddress)
	assert.False(t, entry.UpdatedAt.IsZero())
	assert.Equal(t, 1, cache.invalidated)
	assert.False(t, cache.cached)
	require.Len(t, publisher.leaderboards, 1)

	entries, err := svc.GetLeaderboard(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(99), entries[0].Fid)
	assert.Equal(t, 2, repo.topCalls)
	assert.True(t, cache.cached)
}

func TestUpdateEntryRequiresFields(t *testing.T) {
	svc, _, cache, _ := newLeaderboardFixture(0)
	ctx := context.Background()

	for _, input := range []UpdateLeaderboardInput{
		{Username: "a", UserAddress: ownerAddress},
		{Fid: 1, UserAddress: ownerAddress},
		{Fid: 1, Username: "a"},
	} {
		_, err := svc.UpdateEntry(ctx, input)
		assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
	}
	assert.Zero(t, cache.invalidated)
}
