package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devayla/base-counter/common/errors"
	"github.com/devayla/base-counter/common/logger"
	"github.com/devayla/base-counter/common/models"
)

func TestFusedKeyIsKeccakWithoutPrefix(t *testing.T) {
	key := FusedKey("secret", "deadbeef")

	assert.Len(t, key, 64)
	assert.False(t, strings.HasPrefix(key, "0x"))
	assert.Equal(t, hexutil.Encode(crypto.Keccak256([]byte("secretdeadbeef")))[2:], key)
	assert.NotEqual(t, key, FusedKey("secret", "deadbeee"))
}

func TestVerifyRejectsReplay(t *testing.T) {
	keys := &fakeAuthKeys{stored: map[string]models.UsedAuthKey{}}
	svc := NewAuthService("secret", keys, logger.Nop())
	ctx := context.Background()
	fused := FusedKey("secret", "abc123")

	require.NoError(t, svc.Verify(ctx, fused, "abc123", "10.0.0.1"))
	stored := keys.stored[fused]
	assert.Equal(t, "10.0.0.1", stored.IPAddress)
	assert.Equal(t, time.UnixMilli(stored.Timestamp).Add(AuthKeyTTL).Unix(), stored.ExpiresAt)

	err := svc.Verify(ctx, fused, "abc123", "10.0.0.1")
	assert.True(t, errors.HasCode(err, errors.CodeUnauthorized))
}

func TestVerifyRejectsBadKeys(t *testing.T) {
	keys := &fakeAuthKeys{stored: map[string]models.UsedAuthKey{}}
	svc := NewAuthService("secret", keys, logger.Nop())
	ctx := context.Background()

	err := svc.Verify(ctx, FusedKey("other", "abc"), "abc", "")
	assert.True(t, errors.HasCode(err, errors.CodeUnauthorized))

	err = svc.Verify(ctx, "", "abc", "")
	assert.True(t, errors.HasCode(err, errors.CodeUnauthorized))

	err = svc.Verify(ctx, FusedKey("secret", "abc"), "", "")
	assert.True(t, errors.HasCode(err, errors.CodeUnauthorized))

	assert.Empty(t, keys.stored)
	assert.NoError(t, svc.Verify(ctx, "0x"+strings.ToUpper(FusedKey("secret", "abc")), "abc", ""))
}

func TestAuthDisabledWithoutSecret(t *testing.T) {
	assert.False(t, NewAuthService("", nil, logger.Nop()).Enabled())
	assert.True(t, NewAuthService("s", nil, logger.Nop()).Enabled())
}

func TestCleanupExpiredUsesDayCutoff(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	keys := &fakeAuthKeys{stored: map[string]models.UsedAuthKey{
		"old":   {FusedKey: "old", Timestamp: now.Add(-25 * time.Hour).UnixMilli()},
		"fresh": {FusedKey: "fresh", Timestamp: now.Add(-time.Hour).UnixMilli()},
	}}
	svc := NewAuthService("secret", keys, logger.Nop()).(*authService)
	svc.now = fixedClock(now)

	deleted, err := svc.CleanupExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.Equal(t, now.Add(-AuthKeyTTL).UnixMilli(), keys.cutoff)
	assert.Contains(t, keys.stored, "fresh")
}
