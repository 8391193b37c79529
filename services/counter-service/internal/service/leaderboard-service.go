package service

import (
	"context"
	"strings"

	"github.com/devayla/base-counter/common/logger"
	"github.com/devayla/base-counter/common/models"
	countererrors "github.com/devayla/base-counter/services/counter-service/internal/errors"
	"github.com/devayla/base-counter/services/counter-service/internal/repository"
)

const (
	DefaultLeaderboardLimit = 100
	MaxLeaderboardLimit     = 1000
)

type UpdateLeaderboardInput struct {
	Fid             int64   `json:"fid"`
	Username        string  `json:"username"`
	ImageURL        string  `json:"imageUrl"`
	UserAddress     string  `json:"userAddress"`
	TotalIncrements int64   `json:"totalIncrements"`
	TotalRewards    float64 `json:"totalRewards"`
}

type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	UpdateEntry(ctx context.Context, input UpdateLeaderboardInput) (*models.LeaderboardEntry, error)
}

type leaderboardService struct {
	repo      repository.LeaderboardRepository
	cache     repository.LeaderboardCache
	publisher EventPublisher
	recorder  Recorder
	now       Clock
	logger    *logger.Logger
}

func NewLeaderboardService(
	repo repository.LeaderboardRepository,
	cache repository.LeaderboardCache,
	publisher EventPublisher,
	recorder Recorder,
	logger *logger.Logger,
) LeaderboardService {
	return &leaderboardService{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		recorder:  recorderOrNop(recorder),
		now:       utcNow,
		logger:    logger.With("component", "leaderboard-service"),
	}
}

// GetLeaderboard serves limits up to the cached top list from the cache and
// reads larger limits straight from the table.
func (s *leaderboardService) GetLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}

	if limit > repository.LeaderboardCacheSize {
		return s.repo.Top(ctx, limit)
	}

	entries, found, err := s.cache.Get(ctx)
	switch {
	case err != nil:
		s.recorder.RecordCache("leaderboard", "error")
		s.logger.Warn("Leaderboard cache read failed", "error", err)
	case found:
		s.recorder.RecordCache("leaderboard", "hit")
		return head(entries, limit), nil
	default:
		s.recorder.RecordCache("leaderboard", "miss")
	}

	entries, err = s.repo.Top(ctx, repository.LeaderboardCacheSize)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, entries); err != nil {
		s.logger.Warn("Failed to populate leaderboard cache", "error", err)
	}

	return head(entries, limit), nil
}

func (s *leaderboardService) UpdateEntry(ctx context.Context, input UpdateLeaderboardInput) (*models.LeaderboardEntry, error) {
	if input.Fid <= 0 || strings.TrimSpace(input.Username) == "" || strings.TrimSpace(input.UserAddress) == "" {
		return nil, countererrors.MissingLeaderboardFields()
	}

	entry := &models.LeaderboardEntry{
		Fid:             input.Fid,
		Username:        input.Username,
		ImageURL:        input.ImageURL,
		UserAddress:     models.NormalizeAddress(input.UserAddress),
		TotalIncrements: input.TotalIncrements,
		TotalRewards:    input.TotalRewards,
		UpdatedAt:       s.now(),
	}

	if err := s.repo.Upsert(ctx, entry); err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Error("Failed to invalidate leaderboard cache", "fid", entry.Fid, "error", err)
	}

	if err := s.publisher.PublishLeaderboardUpdated(ctx, entry); err != nil {
		s.logger.Warn("Leaderboard event not published", "fid", entry.Fid, "error", err)
	}

	s.logger.Info("Leaderboard updated", "fid", entry.Fid, "totalIncrements", entry.TotalIncrements)
	return entry, nil
}

func head(entries []models.LeaderboardEntry, limit int) []models.LeaderboardEntry {
	if len(entries) <= limit {
		return entries
	}
	return entries[:limit]
}
