package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/devayla/base-counter/common/database"
	"github.com/devayla/base-counter/common/errors"
	"github.com/devayla/base-counter/common/models"
)

// BatchWriteItem accepts at most 25 requests.
const maxBatchWrite = 25

type AuthKeyRepository interface {
	// Store records a fused key as spent. A key seen before fails with
	// ALREADY_EXISTS.
	Store(ctx context.Context, key *models.UsedAuthKey) error
	DeleteOlderThan(ctx context.Context, cutoffMilli int64) (int, error)
}

type authKeyRepo struct {
	db *database.DynamoDBClient
}

func NewAuthKeyRepository(db *database.DynamoDBClient) AuthKeyRepository {
	return &authKeyRepo{db: db}
}

func (r *authKeyRepo) Store(ctx context.Context, key *models.UsedAuthKey) error {
	key.SetKeys()

	item, err := attributevalue.MarshalMap(key)
	if err != nil {
		return fmt.Errorf("failed to marshal auth key: %w", err)
	}

	_, err = r.db.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.db.Table()),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		if database.IsConditionFailed(err) {
			return errors.Wrap(err, errors.CodeAlreadyExists, "auth key already used")
		}
		return fmt.Errorf("failed to store auth key: %w", err)
	}

	return nil
}

// DeleteOlderThan removes spent keys issued before the cutoff. The table TTL
// eventually does the same; this keeps the replay window exact.
func (r *authKeyRepo) DeleteOlderThan(ctx context.Context, cutoffMilli int64) (int, error) {
	items, err := r.db.QueryAll(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.db.Table()),
		IndexName:              aws.String(database.GSI1),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND GSI1SK < :cutoff"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     stringValue(models.AuthKeysGSI1PK()),
			":cutoff": stringValue(models.TimestampSK("TS", cutoffMilli, "")),
		},
		ProjectionExpression: aws.String("PK, SK"),
	}, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to query expired auth keys: %w", err)
	}

	for start := 0; start < len(items); start += maxBatchWrite {
		end := min(start+maxBatchWrite, len(items))

		requests := make([]types.WriteRequest, 0, end-start)
		for _, item := range items[start:end] {
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{
					Key: map[string]types.AttributeValue{"PK": item["PK"], "SK": item["SK"]},
				},
			})
		}

		if err := r.batchDelete(ctx, requests); err != nil {
			return start, err
		}
	}

	return len(items), nil
}

func (r *authKeyRepo) batchDelete(ctx context.Context, requests []types.WriteRequest) error {
	pending := map[string][]types.WriteRequest{r.db.Table(): requests}

	for attempt := 0; attempt < 3 && len(pending) > 0; attempt++ {
		out, err := r.db.Client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: pending,
		})
		if err != nil {
			return fmt.Errorf("failed to delete auth keys: %w", err)
		}
		pending = out.UnprocessedItems
	}

	if len(pending) > 0 {
		return fmt.Errorf("failed to delete %d auth keys", len(pending[r.db.Table()]))
	}
	return nil
}
