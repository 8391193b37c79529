package models

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankSKSortsByScore(t *testing.T) {
	keys := []string{
		RankSK(9, 1),
		RankSK(100, 2),
		RankSK(10, 3),
		RankSK(-5, 4),
	}
	sort.Strings(keys)

	assert.Equal(t, RankSK(0, 4), keys[0])
	assert.Equal(t, RankSK(9, 1), keys[1])
	assert.Equal(t, RankSK(10, 3), keys[2])
	assert.Equal(t, RankSK(100, 2), keys[3])
}

func TestExtractFid(t *testing.T) {
	fid, err := ExtractFid(FidPK(947631))
	require.NoError(t, err)
	assert.EqualValues(t, 947631, fid)

	_, err = ExtractFid("USER#1")
	assert.Error(t, err)
}

func TestGameScoreSparseIndexes(t *testing.T) {
	g := &GameScore{Fid: 5}
	g.SetKeys()
	assert.Empty(t, g.GSI1PK)
	assert.Empty(t, g.GSI2PK)
	assert.Empty(t, g.GSI3PK)

	g.Score = 40
	g.CurrentSeasonScore = 30
	g.HasSeasonScore = true
	g.UserAddress = "0xAbC"
	g.SetKeys()

	assert.Equal(t, "SEASON", g.GSI1PK)
	assert.Equal(t, RankSK(30, 5), g.GSI1SK)
	assert.Equal(t, "ATH", g.GSI2PK)
	assert.Equal(t, "ADDRESS#0xabc", g.GSI3PK)
}

func TestCachedUserFreshness(t *testing.T) {
	now := time.Now()
	c := &CachedUser{CachedAt: now.Add(-23 * time.Hour)}
	assert.True(t, c.IsFresh(now, 24*time.Hour))

	c.CachedAt = now.Add(-25 * time.Hour)
	assert.False(t, c.IsFresh(now, 24*time.Hour))
}
