package service

import (
	"context"
	"sort"
	"time"

	commonevents "github.com/devayla/base-counter/common/events"
	"github.com/devayla/base-counter/common/errors"
	"github.com/devayla/base-counter/common/logger"
	"github.com/devayla/base-counter/common/models"
	"github.com/devayla/base-counter/common/utils"
	"github.com/devayla/base-counter/services/counter-service/internal/repository"
)

// MixedLeaderboardNftSlots is how many top places are reserved for NFT holders.
const MixedLeaderboardNftSlots = 10

type SaveScoreInput struct {
	Fid         int64  `json:"fid" validate:"required,gt=0"`
	Username    string `json:"username"`
	PfpURL      string `json:"pfpUrl"`
	UserAddress string `json:"userAddress" validate:"omitempty,eth_addr"`
	Score       int64  `json:"score" validate:"gte=0"`
	Level       int    `json:"level" validate:"gte=0"`
	Duration    *int64 `json:"duration,omitempty"`
	Timestamp   int64  `json:"timestamp"`
}

type StreakData struct {
	DailyStreak   int    `json:"dailyStreak"`
	LongestStreak int    `json:"longestStreak"`
	LastPlayDate  string `json:"lastPlayDate,omitempty"`
}

type PlayerCounts struct {
	SeasonPlayers      int `json:"totalPlayers"`
	AllTimeHighPlayers int `json:"totalAthPlayers"`
}

type GameService interface {
	SaveScore(ctx context.Context, input SaveScoreInput) (*models.GameScore, error)
	BestScore(ctx context.Context, fid int64) (*models.GameScore, error)
	Streak(ctx context.Context, fid int64) (*StreakData, error)
	GameDataByAddress(ctx context.Context, address string) (*models.GameScore, error)

	SeasonLeaderboard(ctx context.Context, limit int) ([]models.GameScore, error)
	AllTimeHighLeaderboard(ctx context.Context, limit, offset int) ([]models.GameScore, error)
	MixedLeaderboard(ctx context.Context, limit, offset int) ([]models.GameScore, error)
	PlayerCounts(ctx context.Context) (*PlayerCounts, error)

	RecordNftMint(ctx context.Context, fid int64, nftName string) error
	NftCount(ctx context.Context, fid int64) (int, error)

	MigrateSeasonScores(ctx context.Context) (int, error)
}

type gameService struct {
	scores    repository.GameScoreRepository
	publisher EventPublisher
	now       Clock
	logger    *logger.Logger
}

func NewGameService(
	scores repository.GameScoreRepository,
	publisher EventPublisher,
	logger *logger.Logger,
) GameService {
	return &gameService{
		scores:    scores,
		publisher: publisher,
		now:       utcNow,
		logger:    logger.With("component", "game-service"),
	}
}

func (s *gameService) SaveScore(ctx context.Context, input SaveScoreInput) (*models.GameScore, error) {
	if input.Fid <= 0 {
		return nil, errors.New(errors.CodeInvalidInput, "fid is required")
	}

	existing, err := s.scores.Get(ctx, input.Fid)
	if err != nil && !errors.HasCode(err, errors.CodeNotFound) {
		return nil, err
	}
	if err != nil {
		existing = nil
	}

	now := s.now()
	updated, newBest := applyScore(existing, input, now)

	if err := s.scores.UpdateScore(ctx, updated); err != nil {
		return nil, err
	}

	s.logger.Info("Game score saved",
		"fid", updated.Fid,
		"score", input.Score,
		"allTimeHigh", updated.Score,
		"seasonScore", updated.CurrentSeasonScore,
		"level", updated.Level,
		"streak", updated.DailyStreak,
	)

	if err := s.publisher.PublishGameScoreSaved(ctx, commonevents.GameScoreSavedEvent{
		Fid:                updated.Fid,
		Username:           updated.Username,
		Score:              input.Score,
		CurrentSeasonScore: updated.CurrentSeasonScore,
		IsNewBest:          newBest,
	}); err != nil {
		s.logger.Warn("Game score event not published", "fid", updated.Fid, "error", err)
	}

	return updated, nil
}

// applyScore merges a finished game into the stored record. Scores and level
// only ever rise; duration follows the season best. It reports whether the
// season best improved.
func applyScore(existing *models.GameScore, input SaveScoreInput, now time.Time) (*models.GameScore, bool) {
	today := utils.Day(now)

	if existing == nil {
		created := &models.GameScore{
			Fid:                input.Fid,
			Username:           input.Username,
			PfpURL:             input.PfpURL,
			UserAddress:        input.UserAddress,
			Score:              input.Score,
			CurrentSeasonScore: input.Score,
			HasSeasonScore:     true,
			Level:              input.Level,
			Timestamp:          input.Timestamp,
			DailyStreak:        1,
			LongestStreak:      1,
			LastPlayDate:       today,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if input.Duration != nil {
			created.Duration = *input.Duration
		}
		return created, true
	}

	updated := *existing
	updated.Username = input.Username
	updated.PfpURL = input.PfpURL
	updated.Timestamp = input.Timestamp
	updated.UpdatedAt = now
	if input.UserAddress != "" {
		updated.UserAddress = input.UserAddress
	}

	newBest := false
	if !existing.HasSeasonScore || input.Score > existing.CurrentSeasonScore {
		newBest = input.Score > existing.CurrentSeasonScore
		updated.CurrentSeasonScore = max(existing.CurrentSeasonScore, input.Score)
		updated.HasSeasonScore = true
		if newBest && input.Duration != nil {
			updated.Duration = *input.Duration
		}
	}
	if input.Score > existing.Score {
		updated.Score = input.Score
	}
	if input.Level > existing.Level {
		updated.Level = input.Level
	}

	updated.DailyStreak = nextStreak(existing.LastPlayDate, existing.DailyStreak, now)
	updated.LongestStreak = max(existing.LongestStreak, updated.DailyStreak)
	updated.LastPlayDate = today

	return &updated, newBest
}

// nextStreak keeps the streak for a second game on the same day, extends it
// for a game the day after and restarts it otherwise.
func nextStreak(lastPlayDate string, streak int, now time.Time) int {
	switch lastPlayDate {
	case utils.Day(now):
		return max(streak, 1)
	case utils.PreviousDay(now):
		return streak + 1
	default:
		return 1
	}
}

func (s *gameService) BestScore(ctx context.Context, fid int64) (*models.GameScore, error) {
	score, err := s.scores.Get(ctx, fid)
	if err != nil {
		return nil, err
	}
	if !score.HasSeasonScore {
		return nil, errors.New(errors.CodeNotFound, "no score recorded")
	}
	return score, nil
}

func (s *gameService) Streak(ctx context.Context, fid int64) (*StreakData, error) {
	score, err := s.scores.Get(ctx, fid)
	if err != nil {
		return nil, err
	}
	return &StreakData{
		DailyStreak:   score.DailyStreak,
		LongestStreak: score.LongestStreak,
		LastPlayDate:  score.LastPlayDate,
	}, nil
}

func (s *gameService) GameDataByAddress(ctx context.Context, address string) (*models.GameScore, error) {
	scores, err := s.scores.ListByAddress(ctx, address)
	if err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return nil, errors.New(errors.CodeNotFound, "no game data for address")
	}
	return &scores[0], nil
}

func (s *gameService) SeasonLeaderboard(ctx context.Context, limit int) ([]models.GameScore, error) {
	return s.scores.SeasonLeaderboard(ctx, limit)
}

func (s *gameService) AllTimeHighLeaderboard(ctx context.Context, limit, offset int) ([]models.GameScore, error) {
	scores, err := s.scores.AllTimeHighLeaderboard(ctx, offset+limit)
	if err != nil {
		return nil, err
	}
	return page(scores, limit, offset), nil
}

func (s *gameService) MixedLeaderboard(ctx context.Context, limit, offset int) ([]models.GameScore, error) {
	players, err := s.scores.SeasonLeaderboard(ctx, 0)
	if err != nil {
		return nil, err
	}
	return page(mixLeaderboard(players), limit, offset), nil
}

// mixLeaderboard puts the best NFT holders first, then everyone else by
// season score. Each fid appears once.
func mixLeaderboard(players []models.GameScore) []models.GameScore {
	unique := make([]models.GameScore, 0, len(players))
	index := make(map[int64]int, len(players))
	for _, p := range players {
		if i, ok := index[p.Fid]; ok {
			if p.CurrentSeasonScore > unique[i].CurrentSeasonScore {
				unique[i] = p
			}
			continue
		}
		index[p.Fid] = len(unique)
		unique = append(unique, p)
	}

	bySeasonScore := func(list []models.GameScore) {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].CurrentSeasonScore > list[j].CurrentSeasonScore
		})
	}
	bySeasonScore(unique)

	holders := make([]models.GameScore, 0)
	others := make([]models.GameScore, 0, len(unique))
	for _, p := range unique {
		if p.IsNftHolder() && len(holders) < MixedLeaderboardNftSlots {
			holders = append(holders, p)
			continue
		}
		others = append(others, p)
	}
	bySeasonScore(others)

	return append(holders, others...)
}

func page(scores []models.GameScore, limit, offset int) []models.GameScore {
	if offset >= len(scores) {
		return []models.GameScore{}
	}
	end := len(scores)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return scores[offset:end]
}

func (s *gameService) PlayerCounts(ctx context.Context) (*PlayerCounts, error) {
	season, err := s.scores.CountSeasonPlayers(ctx)
	if err != nil {
		return nil, err
	}
	ath, err := s.scores.CountAllTimeHighPlayers(ctx)
	if err != nil {
		return nil, err
	}
	return &PlayerCounts{SeasonPlayers: season, AllTimeHighPlayers: ath}, nil
}

// RecordNftMint counts a minted NFT and, when named, stores its name.
func (s *gameService) RecordNftMint(ctx context.Context, fid int64, nftName string) error {
	if fid <= 0 {
		return errors.New(errors.CodeInvalidInput, "fid is required")
	}

	now := s.now()
	if err := s.scores.IncrementNftCount(ctx, fid, now); err != nil {
		return err
	}
	if nftName != "" {
		if err := s.scores.SetNftInfo(ctx, fid, nftName, now); err != nil {
			return err
		}
	}

	s.logger.Info("NFT mint recorded", "fid", fid, "nftName", nftName)
	return nil
}

func (s *gameService) NftCount(ctx context.Context, fid int64) (int, error) {
	score, err := s.scores.Get(ctx, fid)
	if err != nil {
		if errors.HasCode(err, errors.CodeNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return score.NftCount, nil
}

// MigrateSeasonScores seeds the season score from the all-time high on
// records that predate seasons.
func (s *gameService) MigrateSeasonScores(ctx context.Context) (int, error) {
	legacy, err := s.scores.ListWithoutSeasonScore(ctx)
	if err != nil {
		return 0, err
	}

	s.logger.Info("Starting season score migration", "records", len(legacy))

	for i := range legacy {
		record := legacy[i]
		record.CurrentSeasonScore = record.Score
		record.HasSeasonScore = true
		record.UpdatedAt = s.now()
		if err := s.scores.UpdateScore(ctx, &record); err != nil {
			return i, err
		}
	}

	s.logger.Info("Season score migration completed", "migrated", len(legacy))
	return len(legacy), nil
}
