package service

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/devayla/base-counter/common/errors"
	"github.com/devayla/base-counter/common/logger"
	"github.com/devayla/base-counter/common/models"
	countererrors "github.com/devayla/base-counter/services/counter-service/internal/errors"
	"github.com/devayla/base-counter/services/counter-service/internal/repository"
	"github.com/devayla/base-counter/services/counter-service/internal/rewards"
	"github.com/devayla/base-counter/services/counter-service/internal/signer"
)

const (
	GiftBoxesPerDay = 1
	GiftBoxWindow   = 24 * time.Hour
	// Accounts need strictly more followers than this to claim.
	GiftBoxMinFollowers = 20
)

type GiftBoxStatus struct {
	CanClaim        bool  `json:"canClaim"`
	ClaimsToday     int   `json:"claimsToday"`
	RemainingClaims int   `json:"remainingClaims"`
	LastClaimTime   int64 `json:"lastClaimTime,omitempty"`
}

type GiftBoxClaimResult struct {
	Success         bool             `json:"success"`
	TokenType       models.TokenType `json:"tokenType"`
	Amount          float64          `json:"amount"`
	AmountInWei     string           `json:"amountInWei,omitempty"`
	Signature       string           `json:"signature,omitempty"`
	ClaimsToday     int              `json:"claimsToday"`
	RemainingClaims int              `json:"remainingClaims"`
	Username        string           `json:"username,omitempty"`
	PfpURL          string           `json:"pfpUrl,omitempty"`
	Score           int64            `json:"score"`
}

type GiftBoxStats struct {
	TotalClaims         int     `json:"totalClaims"`
	TotalUsdc           float64 `json:"totalUsdc"`
	TotalPepe           float64 `json:"totalPepe"`
	TotalBoop           float64 `json:"totalBoop"`
	TotalCrsh           float64 `json:"totalCrsh"`
	ClaimsToday         int     `json:"claimsToday"`
	RemainingClaims     int     `json:"remainingClaims"`
	TotalRewardsClaimed int     `json:"totalRewardsClaimed"`
}

type GiftBoxService interface {
	Status(ctx context.Context, fid int64) (*GiftBoxStatus, error)
	Claim(ctx context.Context, userAddress string, fid int64) (*GiftBoxClaimResult, error)
	Stats(ctx context.Context, userAddress string, fid int64) (*GiftBoxStats, error)
}

type giftBoxService struct {
	scores    repository.GameScoreRepository
	claims    repository.GiftBoxRepository
	profiles  ProfileService
	signer    *signer.Signer
	rnd       rewards.Float64Source
	publisher EventPublisher
	recorder  Recorder
	now       Clock
	logger    *logger.Logger
}

func NewGiftBoxService(
	scores repository.GameScoreRepository,
	claims repository.GiftBoxRepository,
	profiles ProfileService,
	rewardSigner *signer.Signer,
	rnd rewards.Float64Source,
	publisher EventPublisher,
	recorder Recorder,
	logger *logger.Logger,
) GiftBoxService {
	return &giftBoxService{
		scores:    scores,
		claims:    claims,
		profiles:  profiles,
		signer:    rewardSigner,
		rnd:       rnd,
		publisher: publisher,
		recorder:  recorderOrNop(recorder),
		now:       utcNow,
		logger:    logger.With("component", "giftbox-service"),
	}
}

// windowState is the claim counter as seen at one instant.
type windowState struct {
	stored  repository.GiftBoxWindow
	claims  int
	elapsed bool
}

func evaluateWindow(score *models.GameScore, now time.Time) windowState {
	if score == nil {
		return windowState{elapsed: true}
	}

	state := windowState{
		stored: repository.GiftBoxWindow{
			Exists:         true,
			LastUpdate:     score.LastGiftBoxUpdate,
			ClaimsInPeriod: score.GiftBoxClaimsInPeriod,
		},
	}

	if now.UnixMilli() >= score.LastGiftBoxUpdate+GiftBoxWindow.Milliseconds() {
		state.elapsed = true
		return state
	}

	state.claims = score.GiftBoxClaimsInPeriod
	return state
}

func (w windowState) canClaim() bool {
	return w.claims < GiftBoxesPerDay
}

func (w windowState) remaining() int {
	return max(0, GiftBoxesPerDay-w.claims)
}

// next is the counter after one more claim at now.
func (w windowState) next(now time.Time) repository.GiftBoxWindow {
	if w.elapsed {
		return repository.GiftBoxWindow{Exists: true, LastUpdate: now.UnixMilli(), ClaimsInPeriod: 1}
	}
	return repository.GiftBoxWindow{Exists: true, LastUpdate: w.stored.LastUpdate, ClaimsInPeriod: w.claims + 1}
}

func (s *giftBoxService) loadScore(ctx context.Context, fid int64) (*models.GameScore, error) {
	score, err := s.scores.Get(ctx, fid)
	if err != nil {
		if errors.HasCode(err, errors.CodeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return score, nil
}

func (s *giftBoxService) Status(ctx context.Context, fid int64) (*GiftBoxStatus, error) {
	if fid <= 0 {
		return nil, errors.New(errors.CodeInvalidInput, "fid is required")
	}

	score, err := s.loadScore(ctx, fid)
	if err != nil {
		return nil, err
	}

	state := evaluateWindow(score, s.now())
	status := &GiftBoxStatus{
		CanClaim:        state.canClaim(),
		ClaimsToday:     state.claims,
		RemainingClaims: state.remaining(),
	}
	if score != nil {
		status.LastClaimTime = score.LastGiftBoxUpdate
	}

	return status, nil
}

func (s *giftBoxService) Claim(ctx context.Context, userAddress string, fid int64) (*GiftBoxClaimResult, error) {
	if fid <= 0 || !common.IsHexAddress(userAddress) {
		return nil, countererrors.MissingAddressOrFid()
	}
	if s.signer == nil {
		return nil, countererrors.SignerNotConfigured()
	}

	now := s.now()
	score, err := s.loadScore(ctx, fid)
	if err != nil {
		return nil, err
	}

	state := evaluateWindow(score, now)
	if !state.canClaim() {
		return exhaustedResult(state.claims), countererrors.GiftBoxLimitReached()
	}

	if _, err := s.profiles.VerifyOwnership(ctx, userAddress, fid, GiftBoxMinFollowers); err != nil {
		return nil, err
	}

	usdc := rewards.USDC()
	amount := rewards.GiftBoxReward(s.rnd)
	units := usdc.ToUnits(amount)

	signature, err := s.signer.SignReward(common.HexToAddress(userAddress), usdc.Address, units)
	if err != nil {
		return nil, countererrors.WrapSigningError(err)
	}

	claim := &models.GiftBoxClaim{
		ClaimId:     uuid.New().String(),
		UserAddress: userAddress,
		Fid:         fid,
		TokenType:   models.TokenUSDC,
		Amount:      amount.InexactFloat64(),
		AmountInWei: units.String(),
		Signature:   signature,
		Timestamp:   now.UnixMilli(),
		CreatedAt:   now,
	}

	next := state.next(now)
	if err := s.claims.RecordClaim(ctx, fid, state.stored, next, claim); err != nil {
		if errors.HasCode(err, errors.CodeConflict) {
			s.logger.Warn("Concurrent gift box claim rejected", "fid", fid, "userAddress", userAddress)
			return exhaustedResult(GiftBoxesPerDay), countererrors.GiftBoxLimitReached()
		}
		return nil, err
	}

	s.recorder.RecordRewardSigned("giftbox", string(models.TokenUSDC))
	s.logger.Info("Gift box claimed",
		"fid", fid,
		"userAddress", claim.UserAddress,
		"amount", amount.String(),
		"claimsInPeriod", next.ClaimsInPeriod,
	)

	if err := s.publisher.PublishGiftBoxClaimed(ctx, claim, amount.String()); err != nil {
		s.logger.Warn("Gift box event not published", "fid", fid, "error", err)
	}

	result := &GiftBoxClaimResult{
		Success:         true,
		TokenType:       models.TokenUSDC,
		Amount:          claim.Amount,
		AmountInWei:     claim.AmountInWei,
		Signature:       signature,
		ClaimsToday:     next.ClaimsInPeriod,
		RemainingClaims: max(0, GiftBoxesPerDay-next.ClaimsInPeriod),
	}
	if score != nil {
		result.Username = score.Username
		result.PfpURL = score.PfpURL
		result.Score = score.CurrentSeasonScore
	}

	return result, nil
}

func exhaustedResult(claims int) *GiftBoxClaimResult {
	return &GiftBoxClaimResult{
		Success:         false,
		TokenType:       models.TokenNone,
		ClaimsToday:     claims,
		RemainingClaims: max(0, GiftBoxesPerDay-claims),
	}
}

func (s *giftBoxService) Stats(ctx context.Context, userAddress string, fid int64) (*GiftBoxStats, error) {
	if userAddress == "" {
		return nil, errors.New(errors.CodeInvalidInput, "userAddress is required")
	}

	stats := &GiftBoxStats{RemainingClaims: GiftBoxesPerDay}

	if fid > 0 {
		score, err := s.loadScore(ctx, fid)
		if err != nil {
			return nil, err
		}
		state := evaluateWindow(score, s.now())
		stats.ClaimsToday = state.claims
		stats.RemainingClaims = state.remaining()
		if score != nil {
			stats.TotalRewardsClaimed = score.TotalRewardsClaimed
		}
	}

	claims, err := s.claims.ListClaims(ctx, userAddress)
	if err != nil {
		return nil, err
	}

	totals := map[models.TokenType]decimal.Decimal{}
	for _, claim := range claims {
		totals[claim.TokenType] = totals[claim.TokenType].Add(decimal.NewFromFloat(claim.Amount))
	}

	stats.TotalClaims = len(claims)
	stats.TotalUsdc = totals[models.TokenUSDC].InexactFloat64()
	stats.TotalPepe = totals[models.TokenPEPE].InexactFloat64()
	stats.TotalBoop = totals[models.TokenBOOP].InexactFloat64()
	stats.TotalCrsh = totals[models.TokenCRSH].InexactFloat64()

	return stats, nil
}
