package service

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/devayla/base-counter/common/errors"
	"github.com/devayla/base-counter/common/logger"
	"github.com/devayla/base-counter/common/models"
	"github.com/devayla/base-counter/services/counter-service/internal/repository"
)

type FaucetService interface {
	SaveClaim(ctx context.Context, claim *models.FaucetClaim) error
	HasClaimed(ctx context.Context, address string) (bool, error)
	GetClaim(ctx context.Context, address string) (*models.FaucetClaim, error)
	WalletStats(ctx context.Context) ([]models.WalletUsage, error)
}

type faucetService struct {
	claims repository.FaucetRepository
	scores repository.GameScoreRepository
	now    Clock
	logger *logger.Logger
}

func NewFaucetService(
	claims repository.FaucetRepository,
	scores repository.GameScoreRepository,
	logger *logger.Logger,
) FaucetService {
	return &faucetService{
		claims: claims,
		scores: scores,
		now:    utcNow,
		logger: logger.With("component", "faucet-service"),
	}
}

// SaveClaim records a payout and flags the address's game records.
func (s *faucetService) SaveClaim(ctx context.Context, claim *models.FaucetClaim) error {
	now := s.now()
	if claim.Timestamp == 0 {
		claim.Timestamp = now.UnixMilli()
	}
	claim.CreatedAt = now

	if err := s.claims.Save(ctx, claim); err != nil {
		return err
	}

	marked, err := s.scores.MarkFaucetClaimed(ctx, claim.UserAddress)
	if err != nil {
		s.logger.Warn("Failed to flag game records for faucet claim", "userAddress", claim.UserAddress, "error", err)
	}

	s.logger.Info("Faucet claim saved",
		"userAddress", claim.UserAddress,
		"amount", claim.Amount,
		"walletIndex", claim.WalletIndex,
		"transactionHash", claim.TransactionHash,
		"gameRecords", marked,
	)
	return nil
}

// HasClaimed is true when a claim record exists or any game record of the
// address carries the faucet flag.
func (s *faucetService) HasClaimed(ctx context.Context, address string) (bool, error) {
	_, err := s.claims.GetFirst(ctx, address)
	if err == nil {
		return true, nil
	}
	if !errors.HasCode(err, errors.CodeNotFound) {
		return false, err
	}

	scores, err := s.scores.ListByAddress(ctx, address)
	if err != nil {
		return false, err
	}
	for _, score := range scores {
		if score.FaucetClaimed {
			return true, nil
		}
	}
	return false, nil
}

func (s *faucetService) GetClaim(ctx context.Context, address string) (*models.FaucetClaim, error) {
	return s.claims.GetFirst(ctx, address)
}

func (s *faucetService) WalletStats(ctx context.Context) ([]models.WalletUsage, error) {
	claims, err := s.claims.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return walletUsage(claims), nil
}

func walletUsage(claims []models.FaucetClaim) []models.WalletUsage {
	type usage struct {
		count int
		total decimal.Decimal
	}

	byWallet := make(map[int]*usage)
	for _, claim := range claims {
		u, ok := byWallet[claim.WalletIndex]
		if !ok {
			u = &usage{total: decimal.Zero}
			byWallet[claim.WalletIndex] = u
		}
		u.count++
		if amount, err := decimal.NewFromString(claim.Amount); err == nil {
			u.total = u.total.Add(amount)
		}
	}

	stats := make([]models.WalletUsage, 0, len(byWallet))
	for index, u := range byWallet {
		stats = append(stats, models.WalletUsage{
			WalletIndex: index,
			UsageCount:  u.count,
			TotalAmount: u.total.String(),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].WalletIndex < stats[j].WalletIndex
	})

	return stats
}
