package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/devayla/base-counter/common/database"
	"github.com/devayla/base-counter/common/errors"
	"github.com/devayla/base-counter/common/models"
)

type GameScoreRepository interface {
	Get(ctx context.Context, fid int64) (*models.GameScore, error)
	// UpdateScore writes the gameplay, profile and index attributes only.
	// Counters owned by other flows (gift box window, NFTs, faucet, mints)
	// are left as stored.
	UpdateScore(ctx context.Context, score *models.GameScore) error
	ListByAddress(ctx context.Context, address string) ([]models.GameScore, error)

	SeasonLeaderboard(ctx context.Context, limit int) ([]models.GameScore, error)
	AllTimeHighLeaderboard(ctx context.Context, limit int) ([]models.GameScore, error)
	CountSeasonPlayers(ctx context.Context) (int, error)
	CountAllTimeHighPlayers(ctx context.Context) (int, error)

	IncrementNftCount(ctx context.Context, fid int64, at time.Time) error
	SetNftInfo(ctx context.Context, fid int64, nftName string, at time.Time) error
	MarkFaucetClaimed(ctx context.Context, address string) (int, error)
	SetMintedToday(ctx context.Context, address string, minted bool, date string, at time.Time) (int, error)
	ResetDailyMints(ctx context.Context, at time.Time) (int, error)
	ListWithoutSeasonScore(ctx context.Context) ([]models.GameScore, error)
}

type gameScoreRepo struct {
	db *database.DynamoDBClient
}

func NewGameScoreRepository(db *database.DynamoDBClient) GameScoreRepository {
	return &gameScoreRepo{db: db}
}

// Get one player's game record
func (r *gameScoreRepo) Get(ctx context.Context, fid int64) (*models.GameScore, error) {
	result, err := r.db.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.db.Table()),
		Key:       itemKey(models.FidPK(fid), models.GameSK()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get game score: %w", err)
	}
	if result.Item == nil {
		return nil, errors.New(errors.CodeNotFound, "game score not found")
	}

	var score models.GameScore
	if err := attributevalue.UnmarshalMap(result.Item, &score); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game score: %w", err)
	}

	return &score, nil
}

func (r *gameScoreRepo) UpdateScore(ctx context.Context, score *models.GameScore) error {
	input, err := buildScoreUpdate(r.db.Table(), score)
	if err != nil {
		return err
	}

	if _, err := r.db.Client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("failed to update game score: %w", err)
	}

	return nil
}

// buildScoreUpdate SETs the named score attributes and the sparse index keys,
// removing index keys the record no longer qualifies for.
func buildScoreUpdate(table string, score *models.GameScore) (*dynamodb.UpdateItemInput, error) {
	score.UserAddress = models.NormalizeAddress(score.UserAddress)
	score.SetKeys()

	fields := map[string]interface{}{
		"fid":                  score.Fid,
		"username":             score.Username,
		"pfp_url":              score.PfpURL,
		"user_address":         score.UserAddress,
		"score":                score.Score,
		"current_season_score": score.CurrentSeasonScore,
		"has_season_score":     score.HasSeasonScore,
		"level":                score.Level,
		"timestamp":            score.Timestamp,
		"duration":             score.Duration,
		"daily_streak":         score.DailyStreak,
		"longest_streak":       score.LongestStreak,
		"last_play_date":       score.LastPlayDate,
		"updated_at":           score.UpdatedAt,
	}
	indexKeys := []struct{ name, value string }{
		{"GSI1PK", score.GSI1PK}, {"GSI1SK", score.GSI1SK},
		{"GSI2PK", score.GSI2PK}, {"GSI2SK", score.GSI2SK},
		{"GSI3PK", score.GSI3PK}, {"GSI3SK", score.GSI3SK},
	}

	sets := make([]string, 0, len(fields)+len(indexKeys)+1)
	removes := make([]string, 0, len(indexKeys))
	names := make(map[string]string, len(fields)+len(indexKeys)+1)
	values := make(map[string]types.AttributeValue, len(fields)+len(indexKeys)+1)

	for name, v := range fields {
		av, err := attributevalue.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", name, err)
		}
		names["#"+name] = name
		values[":"+name] = av
		sets = append(sets, fmt.Sprintf("#%s = :%s", name, name))
	}

	createdAt := score.CreatedAt
	if createdAt.IsZero() {
		createdAt = score.UpdatedAt
	}
	names["#created_at"] = "created_at"
	values[":created_at"] = timeValue(createdAt)
	sets = append(sets, "#created_at = if_not_exists(#created_at, :created_at)")

	for _, key := range indexKeys {
		names["#"+key.name] = key.name
		if key.value == "" {
			removes = append(removes, "#"+key.name)
			continue
		}
		values[":"+key.name] = stringValue(key.value)
		sets = append(sets, fmt.Sprintf("#%s = :%s", key.name, key.name))
	}

	// map iteration order is random; keep the expression stable
	sort.Strings(sets)
	expression := "SET " + strings.Join(sets, ", ")
	if len(removes) > 0 {
		expression += " REMOVE " + strings.Join(removes, ", ")
	}

	return &dynamodb.UpdateItemInput{
		TableName:                 aws.String(table),
		Key:                       itemKey(score.PK, score.SK),
		UpdateExpression:          aws.String(expression),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	}, nil
}

func (r *gameScoreRepo) ListByAddress(ctx context.Context, address string) ([]models.GameScore, error) {
	return r.queryIndex(ctx, database.GSI3, models.AddressGSI3PK(address), true, 0)
}

func (r *gameScoreRepo) SeasonLeaderboard(ctx context.Context, limit int) ([]models.GameScore, error) {
	return r.queryIndex(ctx, database.GSI1, models.SeasonGSI1PK(), false, limit)
}

func (r *gameScoreRepo) AllTimeHighLeaderboard(ctx context.Context, limit int) ([]models.GameScore, error) {
	return r.queryIndex(ctx, database.GSI2, models.AllTimeHighGSI2PK(), false, limit)
}

func (r *gameScoreRepo) CountSeasonPlayers(ctx context.Context) (int, error) {
	return r.countIndex(ctx, database.GSI1, models.SeasonGSI1PK())
}

func (r *gameScoreRepo) CountAllTimeHighPlayers(ctx context.Context) (int, error) {
	return r.countIndex(ctx, database.GSI2, models.AllTimeHighGSI2PK())
}

// IncrementNftCount bumps the mint counter, creating a bare record if needed
func (r *gameScoreRepo) IncrementNftCount(ctx context.Context, fid int64, at time.Time) error {
	_, err := r.db.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.db.Table()),
		Key:              itemKey(models.FidPK(fid), models.GameSK()),
		UpdateExpression: aws.String("ADD nft_count :one SET fid = :fid, last_nft_mint = :ts, updated_at = :updatedAt"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one":       numberValue(1),
			":fid":       numberValue(fid),
			":ts":        numberValue(at.UnixMilli()),
			":updatedAt": timeValue(at),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to increment nft count: %w", err)
	}
	return nil
}

func (r *gameScoreRepo) SetNftInfo(ctx context.Context, fid int64, nftName string, at time.Time) error {
	_, err := r.db.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.db.Table()),
		Key:       itemKey(models.FidPK(fid), models.GameSK()),
		UpdateExpression: aws.String(
			"SET fid = :fid, nft_name = :name, has_nft = :true, nft_minted = :true, last_nft_mint = :ts, updated_at = :updatedAt",
		),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":fid":       numberValue(fid),
			":name":      stringValue(nftName),
			":true":      boolValue(true),
			":ts":        numberValue(at.UnixMilli()),
			":updatedAt": timeValue(at),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to update nft info: %w", err)
	}
	return nil
}

// MarkFaucetClaimed flags every game record linked to address
func (r *gameScoreRepo) MarkFaucetClaimed(ctx context.Context, address string) (int, error) {
	scores, err := r.ListByAddress(ctx, address)
	if err != nil {
		return 0, err
	}

	for _, score := range scores {
		_, err := r.db.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:        aws.String(r.db.Table()),
			Key:              itemKey(score.PK, score.SK),
			UpdateExpression: aws.String("SET faucet_claimed = :true"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":true": boolValue(true),
			},
		})
		if err != nil {
			return 0, fmt.Errorf("failed to mark faucet claimed for fid %d: %w", score.Fid, err)
		}
	}

	return len(scores), nil
}

func (r *gameScoreRepo) SetMintedToday(ctx context.Context, address string, minted bool, date string, at time.Time) (int, error) {
	scores, err := r.ListByAddress(ctx, address)
	if err != nil {
		return 0, err
	}

	for _, score := range scores {
		_, err := r.db.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:        aws.String(r.db.Table()),
			Key:              itemKey(score.PK, score.SK),
			UpdateExpression: aws.String("SET has_minted_today = :minted, last_mint_date = :date, updated_at = :updatedAt"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":minted":    boolValue(minted),
				":date":      stringValue(date),
				":updatedAt": timeValue(at),
			},
		})
		if err != nil {
			return 0, fmt.Errorf("failed to update mint status for fid %d: %w", score.Fid, err)
		}
	}

	return len(scores), nil
}

// ResetDailyMints clears the minted-today flag on every record that has it
func (r *gameScoreRepo) ResetDailyMints(ctx context.Context, at time.Time) (int, error) {
	scores, err := r.scanGameScores(ctx, "has_minted_today = :true", map[string]types.AttributeValue{
		":true": boolValue(true),
	})
	if err != nil {
		return 0, err
	}

	for _, score := range scores {
		_, err := r.db.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:        aws.String(r.db.Table()),
			Key:              itemKey(score.PK, score.SK),
			UpdateExpression: aws.String("SET has_minted_today = :false, updated_at = :updatedAt"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":false":     boolValue(false),
				":updatedAt": timeValue(at),
			},
		})
		if err != nil {
			return 0, fmt.Errorf("failed to reset mint status for fid %d: %w", score.Fid, err)
		}
	}

	return len(scores), nil
}

func (r *gameScoreRepo) ListWithoutSeasonScore(ctx context.Context) ([]models.GameScore, error) {
	return r.scanGameScores(ctx, "attribute_not_exists(has_season_score) OR has_season_score = :false", map[string]types.AttributeValue{
		":false": boolValue(false),
	})
}

func (r *gameScoreRepo) queryIndex(ctx context.Context, index, pk string, ascending bool, limit int) ([]models.GameScore, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.db.Table()),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String(fmt.Sprintf("%sPK = :pk", index)),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": stringValue(pk),
		},
		ScanIndexForward: aws.Bool(ascending),
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}

	items, err := r.db.QueryAll(ctx, input, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", index, err)
	}

	scores := make([]models.GameScore, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &scores); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game scores: %w", err)
	}

	return scores, nil
}

func (r *gameScoreRepo) countIndex(ctx context.Context, index, pk string) (int, error) {
	paginator := dynamodb.NewQueryPaginator(r.db.Client, &dynamodb.QueryInput{
		TableName:              aws.String(r.db.Table()),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String(fmt.Sprintf("%sPK = :pk", index)),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": stringValue(pk),
		},
		Select: types.SelectCount,
	})

	total := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to count %s: %w", index, err)
		}
		total += int(page.Count)
	}

	return total, nil
}

func (r *gameScoreRepo) scanGameScores(ctx context.Context, filter string, values map[string]types.AttributeValue) ([]models.GameScore, error) {
	values[":sk"] = stringValue(models.GameSK())

	paginator := dynamodb.NewScanPaginator(r.db.Client, &dynamodb.ScanInput{
		TableName:                 aws.String(r.db.Table()),
		FilterExpression:          aws.String(fmt.Sprintf("SK = :sk AND (%s)", filter)),
		ExpressionAttributeValues: values,
	})

	scores := make([]models.GameScore, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game scores: %w", err)
		}

		var batch []models.GameScore
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal game scores: %w", err)
		}
		scores = append(scores, batch...)
	}

	return scores, nil
}
