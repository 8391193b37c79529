package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/devayla/base-counter/common/database"
	"github.com/devayla/base-counter/common/models"
)

type LeaderboardRepository interface {
	Upsert(ctx context.Context, entry *models.LeaderboardEntry) error
	Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

type leaderboardRepo struct {
	db *database.DynamoDBClient
}

func NewLeaderboardRepository(db *database.DynamoDBClient) LeaderboardRepository {
	return &leaderboardRepo{db: db}
}

// Upsert replaces the counter stats of one fid
func (r *leaderboardRepo) Upsert(ctx context.Context, entry *models.LeaderboardEntry) error {
	entry.UserAddress = models.NormalizeAddress(entry.UserAddress)
	entry.SetKeys()

	item, err := attributevalue.MarshalMap(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal leaderboard entry: %w", err)
	}

	_, err = r.db.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.db.Table()),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert leaderboard entry: %w", err)
	}

	return nil
}

// Top returns entries ordered by total increments, highest first
func (r *leaderboardRepo) Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.db.Table()),
		IndexName:              aws.String(database.GSI1),
		KeyConditionExpression: aws.String("GSI1PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": stringValue(models.CounterLeaderboardGSI1PK()),
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	}

	items, err := r.db.QueryAll(ctx, input, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}

	entries := make([]models.LeaderboardEntry, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal leaderboard: %w", err)
	}

	return entries, nil
}
