package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/devayla/base-counter/common/database"
	"github.com/devayla/base-counter/common/errors"
	"github.com/devayla/base-counter/common/models"
)

// GiftBoxWindow is the claim counter stored on a player's game record.
type GiftBoxWindow struct {
	Exists         bool
	LastUpdate     int64
	ClaimsInPeriod int
}

type GiftBoxRepository interface {
	// RecordClaim moves the window from observed to next and stores the claim
	// in one transaction. It fails with CONFLICT if the window changed since
	// it was observed.
	RecordClaim(ctx context.Context, fid int64, observed, next GiftBoxWindow, claim *models.GiftBoxClaim) error
	ListClaims(ctx context.Context, address string) ([]models.GiftBoxClaim, error)
}

type giftBoxRepo struct {
	db *database.DynamoDBClient
}

func NewGiftBoxRepository(db *database.DynamoDBClient) GiftBoxRepository {
	return &giftBoxRepo{db: db}
}

func (r *giftBoxRepo) RecordClaim(ctx context.Context, fid int64, observed, next GiftBoxWindow, claim *models.GiftBoxClaim) error {
	tb, err := buildClaimTransaction(r.db.Table(), fid, observed, next, claim, time.Now().UTC())
	if err != nil {
		return err
	}

	if err := tb.Execute(ctx, r.db.Client); err != nil {
		if database.IsTransactionConditionFailed(err) {
			return errors.Wrap(err, errors.CodeConflict, "gift box window changed concurrently")
		}
		return errors.Wrap(err, errors.CodeTransactionError, "failed to record gift box claim")
	}

	return nil
}

func buildClaimTransaction(
	table string,
	fid int64,
	observed, next GiftBoxWindow,
	claim *models.GiftBoxClaim,
	now time.Time,
) (*database.TransactionBuilder, error) {
	claim.UserAddress = models.NormalizeAddress(claim.UserAddress)
	claim.SetKeys()

	claimItem, err := attributevalue.MarshalMap(claim)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gift box claim: %w", err)
	}

	values := map[string]types.AttributeValue{
		":fid":       numberValue(fid),
		":next":      numberValue(next.LastUpdate),
		":claims":    numberValue(int64(next.ClaimsInPeriod)),
		":one":       numberValue(1),
		":updatedAt": timeValue(now),
	}

	condition := "attribute_not_exists(PK)"
	if observed.Exists {
		// Records written before gift boxes existed lack both counters.
		condition = "(attribute_not_exists(last_gift_box_update) OR last_gift_box_update = :seenTs) AND " +
			"(attribute_not_exists(gift_box_claims_in_period) OR gift_box_claims_in_period = :seenClaims)"
		values[":seenTs"] = numberValue(observed.LastUpdate)
		values[":seenClaims"] = numberValue(int64(observed.ClaimsInPeriod))
	}

	tb := database.NewTransactionBuilder()

	if err := tb.AddUpdate(types.Update{
		TableName: aws.String(table),
		Key:       itemKey(models.FidPK(fid), models.GameSK()),
		UpdateExpression: aws.String(
			"SET fid = :fid, last_gift_box_update = :next, gift_box_claims_in_period = :claims, updated_at = :updatedAt " +
				"ADD total_rewards_claimed :one",
		),
		ConditionExpression:       aws.String(condition),
		ExpressionAttributeValues: values,
	}); err != nil {
		return nil, err
	}

	if err := tb.AddPut(types.Put{
		TableName:           aws.String(table),
		Item:                claimItem,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	}); err != nil {
		return nil, err
	}

	return tb, nil
}

func (r *giftBoxRepo) ListClaims(ctx context.Context, address string) ([]models.GiftBoxClaim, error) {
	items, err := r.db.QueryAll(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.db.Table()),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     stringValue(models.GiftBoxPK(address)),
			":prefix": stringValue(models.GiftBoxClaimSKPrefix()),
		},
	}, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to query gift box claims: %w", err)
	}

	claims := make([]models.GiftBoxClaim, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &claims); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gift box claims: %w", err)
	}

	return claims, nil
}
