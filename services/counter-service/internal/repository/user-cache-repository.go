package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/devayla/base-counter/common/database"
	"github.com/devayla/base-counter/common/models"
)

// UserCacheTTL bounds how long a fetched social profile is reused.
const UserCacheTTL = 24 * time.Hour

type UserCacheRepository interface {
	Get(ctx context.Context, fid int64) (*models.CachedUser, error)
	Put(ctx context.Context, user *models.FarcasterUser, cachedAt time.Time) error
}

type userCacheRepo struct {
	db *database.DynamoDBClient
}

func NewUserCacheRepository(db *database.DynamoDBClient) UserCacheRepository {
	return &userCacheRepo{db: db}
}

// Get returns nil on a miss. Freshness is left to the caller since the
// table's TTL sweep is not immediate.
func (r *userCacheRepo) Get(ctx context.Context, fid int64) (*models.CachedUser, error) {
	result, err := r.db.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.db.Table()),
		Key:       itemKey(models.FidPK(fid), models.ProfileSK()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get cached user: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var cached models.CachedUser
	if err := attributevalue.UnmarshalMap(result.Item, &cached); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached user: %w", err)
	}

	return &cached, nil
}

func (r *userCacheRepo) Put(ctx context.Context, user *models.FarcasterUser, cachedAt time.Time) error {
	cached := &models.CachedUser{
		Fid:       user.Fid,
		UserData:  *user,
		CachedAt:  cachedAt,
		PK:        models.FidPK(user.Fid),
		SK:        models.ProfileSK(),
		ExpiresAt: cachedAt.Add(UserCacheTTL).Unix(),
	}

	item, err := attributevalue.MarshalMap(cached)
	if err != nil {
		return fmt.Errorf("failed to marshal cached user: %w", err)
	}

	_, err = r.db.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.db.Table()),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to cache user: %w", err)
	}

	return nil
}
