package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/devayla/base-counter/common/database"
	"github.com/devayla/base-counter/common/models"
)

type MintRepository interface {
	DailyCount(ctx context.Context, address, date string) (int, error)
	// Save stores the mint and bumps the daily and global counters atomically.
	Save(ctx context.Context, mint *models.UserMint) error
	History(ctx context.Context, address string, limit int) ([]models.UserMint, error)
	TotalMints(ctx context.Context) (int64, error)
	MintsOn(ctx context.Context, date string) (int, error)
	TopScoresOn(ctx context.Context, date string, limit int) ([]models.UserMint, error)
}

type mintRepo struct {
	db *database.DynamoDBClient
}

func NewMintRepository(db *database.DynamoDBClient) MintRepository {
	return &mintRepo{db: db}
}

func (r *mintRepo) DailyCount(ctx context.Context, address, date string) (int, error) {
	result, err := r.db.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.db.Table()),
		Key:       itemKey(models.DailyMintPK(address), models.DateSK(date)),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get daily mint count: %w", err)
	}
	if result.Item == nil {
		return 0, nil
	}

	var daily models.DailyMintCount
	if err := attributevalue.UnmarshalMap(result.Item, &daily); err != nil {
		return 0, fmt.Errorf("failed to unmarshal daily mint count: %w", err)
	}

	return daily.Count, nil
}

func (r *mintRepo) Save(ctx context.Context, mint *models.UserMint) error {
	tb, err := buildMintTransaction(r.db.Table(), mint)
	if err != nil {
		return err
	}

	if err := tb.Execute(ctx, r.db.Client); err != nil {
		return fmt.Errorf("failed to save mint: %w", err)
	}

	return nil
}

func buildMintTransaction(table string, mint *models.UserMint) (*database.TransactionBuilder, error) {
	mint.UserAddress = models.NormalizeAddress(mint.UserAddress)
	mint.SetKeys()

	item, err := attributevalue.MarshalMap(mint)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mint: %w", err)
	}

	tb := database.NewTransactionBuilder()

	if err := tb.AddPut(types.Put{
		TableName:           aws.String(table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	}); err != nil {
		return nil, err
	}

	if err := tb.AddUpdate(types.Update{
		TableName:        aws.String(table),
		Key:              itemKey(models.DailyMintPK(mint.UserAddress), models.DateSK(mint.MintDate)),
		UpdateExpression: aws.String("ADD #count :one SET user_address = :addr, #date = :date, last_mint_time = :ts"),
		ExpressionAttributeNames: map[string]string{
			"#count": "count",
			"#date":  "date",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one":  numberValue(1),
			":addr": stringValue(mint.UserAddress),
			":date": stringValue(mint.MintDate),
			":ts":   numberValue(mint.Timestamp),
		},
	}); err != nil {
		return nil, err
	}

	if err := tb.AddUpdate(types.Update{
		TableName:        aws.String(table),
		Key:              itemKey(models.StatsPK(), models.MintStatsSK()),
		UpdateExpression: aws.String("ADD total_mints :one"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": numberValue(1),
		},
	}); err != nil {
		return nil, err
	}

	return tb, nil
}

// History lists an address's mints, newest first
func (r *mintRepo) History(ctx context.Context, address string, limit int) ([]models.UserMint, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.db.Table()),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": stringValue(models.MintPK(address)),
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	}

	items, err := r.db.QueryAll(ctx, input, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query mint history: %w", err)
	}

	mints := make([]models.UserMint, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &mints); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mints: %w", err)
	}

	return mints, nil
}

func (r *mintRepo) TotalMints(ctx context.Context) (int64, error) {
	result, err := r.db.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:            aws.String(r.db.Table()),
		Key:                  itemKey(models.StatsPK(), models.MintStatsSK()),
		ProjectionExpression: aws.String("total_mints"),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get mint stats: %w", err)
	}

	total, ok := result.Item["total_mints"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, nil
	}
	return strconv.ParseInt(total.Value, 10, 64)
}

func (r *mintRepo) MintsOn(ctx context.Context, date string) (int, error) {
	paginator := dynamodb.NewQueryPaginator(r.db.Client, &dynamodb.QueryInput{
		TableName:              aws.String(r.db.Table()),
		IndexName:              aws.String(database.GSI1),
		KeyConditionExpression: aws.String("GSI1PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": stringValue(models.MintsByDateGSI1PK(date)),
		},
		Select: types.SelectCount,
	})

	total := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to count mints: %w", err)
		}
		total += int(page.Count)
	}

	return total, nil
}

func (r *mintRepo) TopScoresOn(ctx context.Context, date string, limit int) ([]models.UserMint, error) {
	items, err := r.db.QueryAll(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.db.Table()),
		IndexName:              aws.String(database.GSI1),
		KeyConditionExpression: aws.String("GSI1PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": stringValue(models.MintsByDateGSI1PK(date)),
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	}, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top mint scores: %w", err)
	}

	mints := make([]models.UserMint, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &mints); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mints: %w", err)
	}

	return mints, nil
}
