package service

import (
	"context"
	"strings"
	"time"

	"github.com/devayla/base-counter/common/errors"
	"github.com/devayla/base-counter/common/logger"
	"github.com/devayla/base-counter/common/models"
	countererrors "github.com/devayla/base-counter/services/counter-service/internal/errors"
	"github.com/devayla/base-counter/services/counter-service/internal/repository"
)

type UserFetcher interface {
	FetchUser(ctx context.Context, fid int64) (*models.FarcasterUser, error)
	FetchUsers(ctx context.Context, fids []int64) ([]models.FarcasterUser, error)
}

type ProfileService interface {
	GetUser(ctx context.Context, fid int64) (*models.FarcasterUser, error)
	GetUsers(ctx context.Context, fids []int64) ([]models.FarcasterUser, error)
	// VerifyOwnership returns the profile when address belongs to fid and,
	// for a positive minFollowers, the account has more followers than that.
	VerifyOwnership(ctx context.Context, address string, fid int64, minFollowers int64) (*models.FarcasterUser, error)
}

type profileService struct {
	cache    repository.UserCacheRepository
	fetcher  UserFetcher
	recorder Recorder
	now      Clock
	logger   *logger.Logger
}

func NewProfileService(
	cache repository.UserCacheRepository,
	fetcher UserFetcher,
	recorder Recorder,
	logger *logger.Logger,
) ProfileService {
	return &profileService{
		cache:    cache,
		fetcher:  fetcher,
		recorder: recorderOrNop(recorder),
		now:      utcNow,
		logger:   logger.With("component", "profile-service"),
	}
}

func (s *profileService) GetUser(ctx context.Context, fid int64) (*models.FarcasterUser, error) {
	if fid <= 0 {
		return nil, errors.New(errors.CodeInvalidInput, "invalid fid")
	}

	now := s.now()
	if user := s.cachedUser(ctx, fid, now); user != nil {
		return user, nil
	}

	user, err := s.fetcher.FetchUser(ctx, fid)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Put(ctx, user, now); err != nil {
		s.logger.Warn("Failed to cache user", "fid", fid, "error", err)
	}

	return user, nil
}

// GetUsers serves what it can from the cache and fetches the rest in one
// bulk call. The result keeps the order of fids.
func (s *profileService) GetUsers(ctx context.Context, fids []int64) ([]models.FarcasterUser, error) {
	now := s.now()
	found := make(map[int64]models.FarcasterUser, len(fids))
	missing := make([]int64, 0, len(fids))

	for _, fid := range fids {
		if _, seen := found[fid]; seen {
			continue
		}
		if user := s.cachedUser(ctx, fid, now); user != nil {
			found[fid] = *user
			continue
		}
		missing = append(missing, fid)
	}

	if len(missing) > 0 {
		fetched, err := s.fetcher.FetchUsers(ctx, missing)
		if err != nil && !errors.HasCode(err, errors.CodeNotFound) {
			return nil, err
		}
		for i := range fetched {
			found[fetched[i].Fid] = fetched[i]
			if err := s.cache.Put(ctx, &fetched[i], now); err != nil {
				s.logger.Warn("Failed to cache user", "fid", fetched[i].Fid, "error", err)
			}
		}
	}

	users := make([]models.FarcasterUser, 0, len(found))
	seen := make(map[int64]bool, len(found))
	for _, fid := range fids {
		user, ok := found[fid]
		if !ok || seen[fid] {
			continue
		}
		seen[fid] = true
		users = append(users, user)
	}

	return users, nil
}

func (s *profileService) VerifyOwnership(ctx context.Context, address string, fid int64, minFollowers int64) (*models.FarcasterUser, error) {
	user, err := s.GetUser(ctx, fid)
	if err != nil {
		if errors.HasCode(err, errors.CodeNotFound) {
			s.logger.Warn("Ownership check for unknown fid", "fid", fid, "address", address)
			return nil, countererrors.AddressNotAssociated()
		}
		return nil, err
	}

	if minFollowers > 0 && user.FollowerCount <= minFollowers {
		s.logger.Warn("Follower count requirement not met",
			"fid", fid,
			"followerCount", user.FollowerCount,
			"required", minFollowers,
		)
		return nil, countererrors.FollowerFloorNotMet(minFollowers)
	}

	if !VerifyAddress(user, address) {
		s.logger.Warn("Address verification failed",
			"fid", fid,
			"providedAddress", models.NormalizeAddress(address),
			"custodyAddress", models.NormalizeAddress(user.CustodyAddress),
			"primaryAddress", models.NormalizeAddress(user.VerifiedAddresses.Primary.EthAddress),
			"verifiedAddresses", user.VerifiedAddresses.EthAddresses,
			"verifications", user.Verifications,
		)
		return nil, countererrors.AddressNotAssociated()
	}

	return user, nil
}

func (s *profileService) cachedUser(ctx context.Context, fid int64, now time.Time) *models.FarcasterUser {
	cached, err := s.cache.Get(ctx, fid)
	switch {
	case err != nil:
		s.recorder.RecordCache("user", "error")
		s.logger.Warn("User cache read failed", "fid", fid, "error", err)
		return nil
	case cached == nil || !cached.IsFresh(now, repository.UserCacheTTL):
		s.recorder.RecordCache("user", "miss")
		return nil
	default:
		s.recorder.RecordCache("user", "hit")
		return &cached.UserData
	}
}

// VerifyAddress reports whether address is the custody address, the primary
// verified ETH address, a verified ETH address or a legacy verification of
// user. Comparison ignores case.
func VerifyAddress(user *models.FarcasterUser, address string) bool {
	if user == nil {
		return false
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return false
	}

	if strings.EqualFold(user.CustodyAddress, address) {
		return true
	}
	if strings.EqualFold(user.VerifiedAddresses.Primary.EthAddress, address) {
		return true
	}
	for _, verified := range user.VerifiedAddresses.EthAddresses {
		if strings.EqualFold(verified, address) {
			return true
		}
	}
	for _, verification := range user.Verifications {
		if strings.EqualFold(verification, address) {
			return true
		}
	}

	return false
}
