package service

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	commonevents "github.com/devayla/base-counter/common/events"
	"github.com/devayla/base-counter/common/logger"
	"github.com/devayla/base-counter/common/models"
	countererrors "github.com/devayla/base-counter/services/counter-service/internal/errors"
	"github.com/devayla/base-counter/services/counter-service/internal/rewards"
	"github.com/devayla/base-counter/services/counter-service/internal/signer"
)

type SignatureResult struct {
	Signature    string  `json:"signature"`
	TokenAddress string  `json:"tokenAddress"`
	Amount       float64 `json:"amount"`
	AmountInWei  string  `json:"amountInWei"`
}

type SignatureService interface {
	GenerateCounterSignature(ctx context.Context, userAddress string, fid int64) (*SignatureResult, error)
}

type signatureService struct {
	profiles  ProfileService
	signer    *signer.Signer
	rnd       rewards.Float64Source
	publisher EventPublisher
	recorder  Recorder
	logger    *logger.Logger
}

// NewSignatureService accepts a nil signer; requests then fail as
// misconfigured.
func NewSignatureService(
	profiles ProfileService,
	rewardSigner *signer.Signer,
	rnd rewards.Float64Source,
	publisher EventPublisher,
	recorder Recorder,
	logger *logger.Logger,
) SignatureService {
	return &signatureService{
		profiles:  profiles,
		signer:    rewardSigner,
		rnd:       rnd,
		publisher: publisher,
		recorder:  recorderOrNop(recorder),
		logger:    logger.With("component", "signature-service"),
	}
}

func (s *signatureService) GenerateCounterSignature(ctx context.Context, userAddress string, fid int64) (*SignatureResult, error) {
	if userAddress == "" || fid <= 0 || !common.IsHexAddress(userAddress) {
		return nil, countererrors.MissingAddressOrFid()
	}
	if s.signer == nil {
		return nil, countererrors.SignerNotConfigured()
	}

	user, err := s.profiles.VerifyOwnership(ctx, userAddress, fid, 0)
	if err != nil {
		return nil, err
	}

	usdc := rewards.USDC()
	amount := rewards.CounterReward(user.FollowerCount, s.rnd)
	units := usdc.ToUnits(amount)

	signature, err := s.signer.SignReward(common.HexToAddress(userAddress), usdc.Address, units)
	if err != nil {
		return nil, countererrors.WrapSigningError(err)
	}

	s.recorder.RecordRewardSigned("counter", string(models.TokenUSDC))
	s.logger.Info("Counter reward signed",
		"fid", fid,
		"userAddress", userAddress,
		"followerCount", user.FollowerCount,
		"amount", amount.String(),
		"amountInWei", units.String(),
	)

	if err := s.publisher.PublishSignatureIssued(ctx, commonevents.SignatureIssuedEvent{
		Fid:          fid,
		UserAddress:  models.NormalizeAddress(userAddress),
		TokenAddress: usdc.Address.Hex(),
		Amount:       amount.String(),
		AmountInWei:  units.String(),
	}); err != nil {
		s.logger.Warn("Signature event not published", "fid", fid, "error", err)
	}

	return &SignatureResult{
		Signature:    signature,
		TokenAddress: usdc.Address.Hex(),
		Amount:       amount.InexactFloat64(),
		AmountInWei:  units.String(),
	}, nil
}
