package service

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devayla/base-counter/common/errors"
	"github.com/devayla/base-counter/common/logger"
	"github.com/devayla/base-counter/common/models"
	"github.com/devayla/base-counter/services/counter-service/internal/rewards"
	"github.com/devayla/base-counter/services/counter-service/internal/signer"
)

func newSignatureFixture(t *testing.T, followers int64) (SignatureService, *signer.Signer, *fakePublisher) {
	t.Helper()

	rewardSigner, err := signer.New(testSignerKey)
	require.NoError(t, err)

	fetcher := &fakeFetcher{users: map[int64]models.FarcasterUser{7: testUser(7, followers)}}
	profiles := NewProfileService(newFakeUserCache(), fetcher, nil, logger.Nop())
	publisher := &fakePublisher{}

	svc := NewSignatureService(profiles, rewardSigner, func() float64 { return 0.5 }, publisher, nil, logger.Nop())
	return svc, rewardSigner, publisher
}

func TestCounterSignatureRecoversToSigner(t *testing.T) {
	svc, rewardSigner, publisher := newSignatureFixture(t, 100)

	result, err := svc.GenerateCounterSignature(context.Background(), ownerAddress, 7)
	require.NoError(t, err)

	assert.Equal(t, 0.0015, result.Amount)
	assert.Equal(t, "1500", result.AmountInWei)
	assert.Equal(t, rewards.USDC().Address.Hex(), result.TokenAddress)

	recovered, err := signer.RecoverRewardSigner(
		common.HexToAddress(ownerAddress),
		rewards.USDC().Address,
		big.NewInt(1500),
		result.Signature,
	)
	require.NoError(t, err)
	assert.Equal(t, rewardSigner.Address(), recovered)

	require.Len(t, publisher.signatures, 1)
	assert.Equal(t, "1500", publisher.signatures[0].AmountInWei)
}

func TestCounterSignatureLowFollowerReward(t *testing.T) {
	svc, _, _ := newSignatureFixture(t, 5)

	result, err := svc.GenerateCounterSignature(context.Background(), ownerAddress, 7)
	require.NoError(t, err)
	assert.Equal(t, 0.0001, result.Amount)
	assert.Equal(t, "100", result.AmountInWei)
}

func TestCounterSignatureRejections(t *testing.T) {
	svc, _, publisher := newSignatureFixture(t, 100)
	ctx := context.Background()

	_, err := svc.GenerateCounterSignature(ctx, "", 7)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	_, err = svc.GenerateCounterSignature(ctx, "not-an-address", 7)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	_, err = svc.GenerateCounterSignature(ctx, ownerAddress, 0)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	_, err = svc.GenerateCounterSignature(ctx, "0x0000000000000000000000000000000000000009", 7)
	assert.True(t, errors.HasCode(err, errors.CodeForbidden))

	assert.Empty(t, publisher.signatures)
}

func TestCounterSignatureWithoutSigner(t *testing.T) {
	fetcher := &fakeFetcher{users: map[int64]models.FarcasterUser{7: testUser(7, 100)}}
	profiles := NewProfileService(newFakeUserCache(), fetcher, nil, logger.Nop())
	svc := NewSignatureService(profiles, nil, func() float64 { return 0.5 }, &fakePublisher{}, nil, logger.Nop())

	_, err := svc.GenerateCounterSignature(context.Background(), ownerAddress, 7)
	assert.True(t, errors.HasCode(err, errors.CodeMisconfigured))
	assert.Zero(t, fetcher.calls)
}

func TestCounterSignatureSurvivesPublishFailure(t *testing.T) {
	svc, _, publisher := newSignatureFixture(t, 100)
	publisher.err = errors.New(errors.CodeEventPublishError, "nats down")

	_, err := svc.GenerateCounterSignature(context.Background(), ownerAddress, 7)
	assert.NoError(t, err)
}
