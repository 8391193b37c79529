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

type FaucetRepository interface {
	Save(ctx context.Context, claim *models.FaucetClaim) error
	GetFirst(ctx context.Context, address string) (*models.FaucetClaim, error)
	ListAll(ctx context.Context) ([]models.FaucetClaim, error)
}

type faucetRepo struct {
	db *database.DynamoDBClient
}

func NewFaucetRepository(db *database.DynamoDBClient) FaucetRepository {
	return &faucetRepo{db: db}
}

func (r *faucetRepo) Save(ctx context.Context, claim *models.FaucetClaim) error {
	claim.UserAddress = models.NormalizeAddress(claim.UserAddress)
	claim.SetKeys()

	item, err := attributevalue.MarshalMap(claim)
	if err != nil {
		return fmt.Errorf("failed to marshal faucet claim: %w", err)
	}

	_, err = r.db.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.db.Table()),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		if database.IsConditionFailed(err) {
			return errors.Wrap(err, errors.CodeAlreadyExists, "faucet claim already recorded")
		}
		return fmt.Errorf("failed to save faucet claim: %w", err)
	}

	return nil
}

// GetFirst returns the earliest claim of an address
func (r *faucetRepo) GetFirst(ctx context.Context, address string) (*models.FaucetClaim, error) {
	result, err := r.db.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.db.Table()),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": stringValue(models.FaucetPK(address)),
		},
		ScanIndexForward: aws.Bool(true),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query faucet claim: %w", err)
	}
	if len(result.Items) == 0 {
		return nil, errors.New(errors.CodeNotFound, "faucet claim not found")
	}

	var claim models.FaucetClaim
	if err := attributevalue.UnmarshalMap(result.Items[0], &claim); err != nil {
		return nil, fmt.Errorf("failed to unmarshal faucet claim: %w", err)
	}

	return &claim, nil
}

// ListAll reads every claim through the wallet index, ordered by wallet
func (r *faucetRepo) ListAll(ctx context.Context) ([]models.FaucetClaim, error) {
	items, err := r.db.QueryAll(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.db.Table()),
		IndexName:              aws.String(database.GSI1),
		KeyConditionExpression: aws.String("GSI1PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": stringValue(models.FaucetClaimsGSI1PK()),
		},
	}, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to query faucet claims: %w", err)
	}

	claims := make([]models.FaucetClaim, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &claims); err != nil {
		return nil, fmt.Errorf("failed to unmarshal faucet claims: %w", err)
	}

	return claims, nil
}
