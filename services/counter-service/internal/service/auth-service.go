package service

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/devayla/base-counter/common/errors"
	"github.com/devayla/base-counter/common/logger"
	"github.com/devayla/base-counter/common/models"
	countererrors "github.com/devayla/base-counter/services/counter-service/internal/errors"
	"github.com/devayla/base-counter/services/counter-service/internal/repository"
)

// AuthKeyTTL is how long a spent key is remembered for replay checks.
const AuthKeyTTL = 24 * time.Hour

type AuthService interface {
	// Enabled is false when no API secret is configured.
	Enabled() bool
	Verify(ctx context.Context, fusedKey, randomString, ip string) error
	CleanupExpired(ctx context.Context) (int, error)
}

type authService struct {
	secret string
	keys   repository.AuthKeyRepository
	now    Clock
	logger *logger.Logger
}

func NewAuthService(secret string, keys repository.AuthKeyRepository, logger *logger.Logger) AuthService {
	return &authService{
		secret: secret,
		keys:   keys,
		now:    utcNow,
		logger: logger.With("component", "auth-service"),
	}
}

// FusedKey is hex(keccak256(secret + randomString)) without the 0x prefix.
func FusedKey(secret, randomString string) string {
	return hex.EncodeToString(crypto.Keccak256([]byte(secret + randomString)))
}

func (s *authService) Enabled() bool {
	return s.secret != ""
}

func (s *authService) Verify(ctx context.Context, fusedKey, randomString, ip string) error {
	if fusedKey == "" || randomString == "" {
		return countererrors.MissingAuthHeaders()
	}

	fusedKey = strings.ToLower(strings.TrimPrefix(fusedKey, "0x"))
	expected := FusedKey(s.secret, randomString)
	if subtle.ConstantTimeCompare([]byte(fusedKey), []byte(expected)) != 1 {
		s.logger.Warn("Invalid fused key", "ip", ip)
		return countererrors.InvalidFusedKey()
	}

	now := s.now()
	err := s.keys.Store(ctx, &models.UsedAuthKey{
		FusedKey:     fusedKey,
		RandomString: randomString,
		Timestamp:    now.UnixMilli(),
		IPAddress:    ip,
		CreatedAt:    now,
		ExpiresAt:    now.Add(AuthKeyTTL).Unix(),
	})
	if err != nil {
		if errors.HasCode(err, errors.CodeAlreadyExists) {
			s.logger.Warn("Auth key replayed", "ip", ip)
			return countererrors.AuthKeyReused()
		}
		return errors.Wrap(err, errors.CodeDatabaseError, "Failed to validate authentication key")
	}

	return nil
}

func (s *authService) CleanupExpired(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-AuthKeyTTL).UnixMilli()

	deleted, err := s.keys.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return deleted, errors.Wrap(err, errors.CodeDatabaseError, "Failed to clean up auth keys")
	}

	s.logger.Info("Expired auth keys removed", "deleted", deleted)
	return deleted, nil
}
