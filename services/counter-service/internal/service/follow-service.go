package service

import (
	"context"
	"strings"

	"github.com/devayla/base-counter/common/errors"
	"github.com/devayla/base-counter/common/logger"
	"github.com/devayla/base-counter/common/models"
	"github.com/devayla/base-counter/services/counter-service/internal/repository"
)

type SaveFollowInput struct {
	UserAddress string `json:"userAddress" validate:"required,eth_addr"`
	Fid         int64  `json:"fid"`
	Platform    string `json:"platform" validate:"required"`
}

type FollowService interface {
	HasFollowed(ctx context.Context, address, platform string) (bool, error)
	SaveFollow(ctx context.Context, input SaveFollowInput) (*models.FollowAction, error)
}

type followService struct {
	follows repository.FollowRepository
	now     Clock
	logger  *logger.Logger
}

func NewFollowService(follows repository.FollowRepository, logger *logger.Logger) FollowService {
	return &followService{
		follows: follows,
		now:     utcNow,
		logger:  logger.With("component", "follow-service"),
	}
}

func parsePlatform(platform string) (models.FollowPlatform, error) {
	switch p := models.FollowPlatform(strings.ToLower(platform)); p {
	case models.PlatformX, models.PlatformTwitter:
		return p, nil
	default:
		return "", errors.New(errors.CodeInvalidInput, "platform must be x or twitter")
	}
}

func (s *followService) HasFollowed(ctx context.Context, address, platform string) (bool, error) {
	p, err := parsePlatform(platform)
	if err != nil {
		return false, err
	}
	return s.follows.Exists(ctx, address, p)
}

func (s *followService) SaveFollow(ctx context.Context, input SaveFollowInput) (*models.FollowAction, error) {
	p, err := parsePlatform(input.Platform)
	if err != nil {
		return nil, err
	}

	now := s.now()
	action := &models.FollowAction{
		UserAddress: input.UserAddress,
		Fid:         input.Fid,
		Platform:    p,
		Timestamp:   now.UnixMilli(),
		CreatedAt:   now,
	}
	if err := s.follows.Save(ctx, action); err != nil {
		return nil, err
	}

	s.logger.Info("Follow action saved", "userAddress", action.UserAddress, "platform", p, "fid", input.Fid)
	return action, nil
}
