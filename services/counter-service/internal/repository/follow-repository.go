package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/devayla/base-counter/common/database"
	"github.com/devayla/base-counter/common/models"
)

type FollowRepository interface {
	Exists(ctx context.Context, address string, platform models.FollowPlatform) (bool, error)
	Save(ctx context.Context, action *models.FollowAction) error
}

type followRepo struct {
	db *database.DynamoDBClient
}

func NewFollowRepository(db *database.DynamoDBClient) FollowRepository {
	return &followRepo{db: db}
}

func (r *followRepo) Exists(ctx context.Context, address string, platform models.FollowPlatform) (bool, error) {
	result, err := r.db.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:            aws.String(r.db.Table()),
		Key:                  itemKey(models.FollowPK(address), models.PlatformSK(platform)),
		ProjectionExpression: aws.String("PK"),
	})
	if err != nil {
		return false, fmt.Errorf("failed to get follow action: %w", err)
	}
	return result.Item != nil, nil
}

func (r *followRepo) Save(ctx context.Context, action *models.FollowAction) error {
	action.UserAddress = models.NormalizeAddress(action.UserAddress)
	action.SetKeys()

	item, err := attributevalue.MarshalMap(action)
	if err != nil {
		return fmt.Errorf("failed to marshal follow action: %w", err)
	}

	_, err = r.db.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.db.Table()),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to save follow action: %w", err)
	}

	return nil
}
