package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devayla/base-counter/common/logger"
	"github.com/devayla/base-counter/common/models"
)

var gameDay = time.Date(2025, 3, 10, 18, 30, 0, 0, time.UTC)

func int64Ptr(v int64) *int64 {
	return &v
}

func TestApplyScoreNewPlayer(t *testing.T) {
	score, newBest := applyScore(nil, SaveScoreInput{
		Fid: 7, Username: "lever-puller", Score: 300, Level: 4, Duration: int64Ptr(95),
	}, gameDay)

	assert.True(t, newBest)
	assert.Equal(t, int64(300), score.Score)
	assert.Equal(t, int64(300), score.CurrentSeasonScore)
	assert.True(t, score.HasSeasonScore)
	assert.Equal(t, int64(95), score.Duration)
	assert.Equal(t, 1, score.DailyStreak)
	assert.Equal(t, 1, score.LongestStreak)
	assert.Equal(t, "2025-03-10", score.LastPlayDate)
}

func TestApplyScoreKeepsBests(t *testing.T) {
	existing := &models.GameScore{
		Fid: 7, Username: "old", Score: 900, CurrentSeasonScore: 500, HasSeasonScore: true,
		Level: 6, Duration: 120, UserAddress: ownerAddress,
		DailyStreak: 3, LongestStreak: 5, LastPlayDate: "2025-03-10",
	}

	lower, newBest := applyScore(existing, SaveScoreInput{
		Fid: 7, Username: "new", Score: 400, Level: 2, Duration: int64Ptr(30),
	}, gameDay)
	assert.False(t, newBest)
	assert.Equal(t, int64(900), lower.Score)
	assert.Equal(t, int64(500), lower.CurrentSeasonScore)
	assert.Equal(t, 6, lower.Level)
	assert.Equal(t, int64(120), lower.Duration)
	assert.Equal(t, "new", lower.Username)
	assert.Equal(t, ownerAddress, lower.UserAddress)

	higher, newBest := applyScore(existing, SaveScoreInput{
		Fid: 7, Score: 700, Level: 7, Duration: int64Ptr(80),
	}, gameDay)
	assert.True(t, newBest)
	assert.Equal(t, int64(900), higher.Score)
	assert.Equal(t, int64(700), higher.CurrentSeasonScore)
	assert.Equal(t, 7, higher.Level)
	assert.Equal(t, int64(80), higher.Duration)
}

func TestApplyScoreStreaks(t *testing.T) {
	cases := []struct {
		name         string
		lastPlayDate string
		streak       int
		longest      int
		wantStreak   int
		wantLongest  int
	}{
		{"same day keeps streak", "2025-03-10", 3, 5, 3, 5},
		{"next day extends streak", "2025-03-09", 5, 5, 6, 6},
		{"gap resets streak", "2025-03-07", 4, 9, 1, 9},
		{"no previous play", "", 0, 0, 1, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			existing := &models.GameScore{
				Fid: 7, HasSeasonScore: true,
				DailyStreak: tc.streak, LongestStreak: tc.longest, LastPlayDate: tc.lastPlayDate,
			}
			score, _ := applyScore(existing, SaveScoreInput{Fid: 7, Score: 1}, gameDay)
			assert.Equal(t, tc.wantStreak, score.DailyStreak)
			assert.Equal(t, tc.wantLongest, score.LongestStreak)
			assert.Equal(t, "2025-03-10", score.LastPlayDate)
		})
	}
}

func TestMixLeaderboardPutsNftHoldersFirst(t *testing.T) {
	players := []models.GameScore{
		{Fid: 1, CurrentSeasonScore: 1000},
		{Fid: 2, CurrentSeasonScore: 50, HasNft: true, NftCount: 1},
		{Fid: 3, CurrentSeasonScore: 700},
		{Fid: 4, CurrentSeasonScore: 80, HasNft: true, NftCount: 2},
		{Fid: 5, CurrentSeasonScore: 900, HasNft: true},
		{Fid: 3, CurrentSeasonScore: 650},
	}

	mixed := mixLeaderboard(players)

	fids := make([]int64, 0, len(mixed))
	for _, p := range mixed {
		fids = append(fids, p.Fid)
	}
	assert.Equal(t, []int64{4, 2, 1, 5, 3}, fids)
	assert.Equal(t, int64(700), mixed[4].CurrentSeasonScore)
}

func TestMixLeaderboardCapsNftSlots(t *testing.T) {
	players := make([]models.GameScore, 0, MixedLeaderboardNftSlots+2)
	for i := 0; i < MixedLeaderboardNftSlots+1; i++ {
		players = append(players, models.GameScore{
			Fid: int64(i + 1), CurrentSeasonScore: int64(10 + i), HasNft: true, NftCount: 1,
		})
	}
	players = append(players, models.GameScore{Fid: 100, CurrentSeasonScore: 5000})

	mixed := mixLeaderboard(players)

	require.Len(t, mixed, MixedLeaderboardNftSlots+2)
	assert.Equal(t, int64(MixedLeaderboardNftSlots+1), mixed[0].Fid)
	assert.Equal(t, int64(100), mixed[MixedLeaderboardNftSlots].Fid)
	assert.Equal(t, int64(1), mixed[MixedLeaderboardNftSlots+1].Fid)
}

func TestPage(t *testing.T) {
	scores := []models.GameScore{{Fid: 1}, {Fid: 2}, {Fid: 3}}

	assert.Len(t, page(scores, 2, 0), 2)
	assert.Equal(t, int64(3), page(scores, 2, 2)[0].Fid)
	assert.Empty(t, page(scores, 2, 5))
	assert.Len(t, page(scores, 0, 1), 2)
}

func TestSaveScorePersistsAndPublishes(t *testing.T) {
	scores := newFakeScores(models.GameScore{
		Fid: 7, Score: 200, CurrentSeasonScore: 200, HasSeasonScore: true,
		DailyStreak: 2, LongestStreak: 2, LastPlayDate: "2025-03-09",
	})
	publisher := &fakePublisher{}
	svc := NewGameService(scores, publisher, logger.Nop()).(*gameService)
	svc.now = fixedClock(gameDay)

	saved, err := svc.SaveScore(context.Background(), SaveScoreInput{Fid: 7, Username: "lever-puller", Score: 250})
	require.NoError(t, err)
	assert.Equal(t, int64(250), saved.CurrentSeasonScore)
	assert.Equal(t, 3, saved.DailyStreak)
	assert.Equal(t, 1, scores.puts)

	require.Len(t, publisher.scores, 1)
	assert.True(t, publisher.scores[0].IsNewBest)

	streak, err := svc.Streak(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 3, streak.DailyStreak)
	assert.Equal(t, "2025-03-10", streak.LastPlayDate)
}

func TestMigrateSeasonScores(t *testing.T) {
	scores := newFakeScores(
		models.GameScore{Fid: 1, Score: 300},
		models.GameScore{Fid: 2, Score: 100, CurrentSeasonScore: 40, HasSeasonScore: true},
	)
	svc := NewGameService(scores, &fakePublisher{}, logger.Nop())

	migrated, err := svc.MigrateSeasonScores(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, migrated)
	assert.Equal(t, int64(300), scores.records[1].CurrentSeasonScore)
	assert.True(t, scores.records[1].HasSeasonScore)
	assert.Equal(t, int64(40), scores.records[2].CurrentSeasonScore)
}
