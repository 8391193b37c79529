package service

import (
	"context"

	"github.com/devayla/base-counter/common/errors"
	"github.com/devayla/base-counter/common/logger"
	"github.com/devayla/base-counter/common/models"
	"github.com/devayla/base-counter/common/utils"
	countererrors "github.com/devayla/base-counter/services/counter-service/internal/errors"
	"github.com/devayla/base-counter/services/counter-service/internal/repository"
)

const (
	MaxMintsPerDay   = 5
	MintHistoryLimit = 50
)

type RecordMintInput struct {
	UserAddress string `json:"userAddress" validate:"required,eth_addr"`
	Score       int64  `json:"score" validate:"gte=0"`
	TokenId     int64  `json:"tokenId"`
	Trait       string `json:"trait"`
	Signature   string `json:"signature" validate:"required"`
	Timestamp   int64  `json:"timestamp"`
}

type MintStatus struct {
	CanMint        bool `json:"canMint"`
	MintsToday     int  `json:"dailyMints"`
	RemainingMints int  `json:"remainingMints"`
	Limit          int  `json:"limit"`
}

type MintStats struct {
	TotalMints int64 `json:"totalMints"`
	MintsToday int   `json:"mintsToday"`
}

type MintService interface {
	Status(ctx context.Context, address string) (*MintStatus, error)
	RecordMint(ctx context.Context, input RecordMintInput) (*MintStatus, error)
	History(ctx context.Context, address string, limit int) ([]models.UserMint, error)
	Stats(ctx context.Context) (*MintStats, error)
	TopScoresToday(ctx context.Context, limit int) ([]models.UserMint, error)
	// ResetDailyStatus clears the minted-today flag on game records.
	ResetDailyStatus(ctx context.Context) (int, error)
}

type mintService struct {
	mints  repository.MintRepository
	scores repository.GameScoreRepository
	now    Clock
	logger *logger.Logger
}

func NewMintService(
	mints repository.MintRepository,
	scores repository.GameScoreRepository,
	logger *logger.Logger,
) MintService {
	return &mintService{
		mints:  mints,
		scores: scores,
		now:    utcNow,
		logger: logger.With("component", "mint-service"),
	}
}

func (s *mintService) Status(ctx context.Context, address string) (*MintStatus, error) {
	if address == "" {
		return nil, errors.New(errors.CodeInvalidInput, "userAddress is required")
	}

	count, err := s.mints.DailyCount(ctx, models.NormalizeAddress(address), utils.Day(s.now()))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "Failed to get daily mint count")
	}

	return mintStatus(count), nil
}

func mintStatus(count int) *MintStatus {
	return &MintStatus{
		CanMint:        count < MaxMintsPerDay,
		MintsToday:     count,
		RemainingMints: max(MaxMintsPerDay-count, 0),
		Limit:          MaxMintsPerDay,
	}
}

// RecordMint stores a mint after checking the daily quota. The quota check
// and the counter increment are separate calls, so two concurrent mints at
// the limit can both pass.
func (s *mintService) RecordMint(ctx context.Context, input RecordMintInput) (*MintStatus, error) {
	status, err := s.Status(ctx, input.UserAddress)
	if err != nil {
		return nil, err
	}
	if !status.CanMint {
		return status, countererrors.DailyMintLimitReached(MaxMintsPerDay)
	}

	now := s.now()
	today := utils.Day(now)
	timestamp := input.Timestamp
	if timestamp == 0 {
		timestamp = now.UnixMilli()
	}

	mint := &models.UserMint{
		UserAddress: input.UserAddress,
		Score:       input.Score,
		Timestamp:   timestamp,
		TokenId:     input.TokenId,
		Trait:       input.Trait,
		Signature:   input.Signature,
		MintDate:    today,
		CreatedAt:   now,
	}
	if err := s.mints.Save(ctx, mint); err != nil {
		return nil, errors.Wrap(err, errors.CodeTransactionError, "Failed to record mint")
	}

	updated, err := s.scores.SetMintedToday(ctx, mint.UserAddress, true, today, now)
	if err != nil {
		s.logger.Warn("Failed to update mint status on game records", "userAddress", mint.UserAddress, "error", err)
	}

	s.logger.Info("Mint recorded",
		"userAddress", mint.UserAddress,
		"score", mint.Score,
		"tokenId", mint.TokenId,
		"gameRecords", updated,
	)

	return mintStatus(status.MintsToday + 1), nil
}

func (s *mintService) History(ctx context.Context, address string, limit int) ([]models.UserMint, error) {
	if address == "" {
		return nil, errors.New(errors.CodeInvalidInput, "userAddress is required")
	}
	if limit <= 0 || limit > MintHistoryLimit {
		limit = MintHistoryLimit
	}

	mints, err := s.mints.History(ctx, address, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "Failed to get mint history")
	}
	return mints, nil
}

func (s *mintService) Stats(ctx context.Context) (*MintStats, error) {
	total, err := s.mints.TotalMints(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "Failed to get mint stats")
	}

	today, err := s.mints.MintsOn(ctx, utils.Day(s.now()))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "Failed to get mint stats")
	}

	return &MintStats{TotalMints: total, MintsToday: today}, nil
}

func (s *mintService) TopScoresToday(ctx context.Context, limit int) ([]models.UserMint, error) {
	if limit <= 0 || limit > MintHistoryLimit {
		limit = 10
	}

	mints, err := s.mints.TopScoresOn(ctx, utils.Day(s.now()), limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "Failed to get top mint scores")
	}
	return mints, nil
}

func (s *mintService) ResetDailyStatus(ctx context.Context) (int, error) {
	reset, err := s.scores.ResetDailyMints(ctx, s.now())
	if err != nil {
		return reset, errors.Wrap(err, errors.CodeDatabaseError, "Failed to reset daily mint status")
	}

	s.logger.Info("Daily mint status reset", "records", reset)
	return reset, nil
}
