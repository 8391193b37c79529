package repository

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/devayla/base-counter/common/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimTransactionForNewPlayer(t *testing.T) {
	claim := &models.GiftBoxClaim{
		ClaimId:     "c1",
		UserAddress: "0xABCdef0000000000000000000000000000000001",
		Fid:         7,
		TokenType:   models.TokenUSDC,
		Amount:      0.015,
		Timestamp:   1700000000000,
	}
	next := GiftBoxWindow{LastUpdate: 1700000000000, ClaimsInPeriod: 1}

	tb, err := buildClaimTransaction("table", 7, GiftBoxWindow{}, next, claim, time.Unix(1700000000, 0))
	require.NoError(t, err)
	require.Equal(t, 2, tb.Count())

	update := tb.Items()[0].Update
	require.NotNil(t, update)
	assert.Equal(t, "attribute_not_exists(PK)", aws.ToString(update.ConditionExpression))
	assert.Equal(t, "FID#7", update.Key["PK"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "GAME", update.Key["SK"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "1", update.ExpressionAttributeValues[":claims"].(*types.AttributeValueMemberN).Value)

	put := tb.Items()[1].Put
	require.NotNil(t, put)
	assert.Equal(t, "GIFTBOX#0xabcdef0000000000000000000000000000000001", put.Item["PK"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "CLAIM#1700000000000#c1", put.Item["SK"].(*types.AttributeValueMemberS).Value)
}

func TestClaimTransactionGuardsObservedWindow(t *testing.T) {
	observed := GiftBoxWindow{Exists: true, LastUpdate: 1000, ClaimsInPeriod: 1}
	next := GiftBoxWindow{LastUpdate: 90_000_000, ClaimsInPeriod: 1}

	tb, err := buildClaimTransaction("table", 7, observed, next, &models.GiftBoxClaim{ClaimId: "c2", UserAddress: "0x1"}, time.Now())
	require.NoError(t, err)

	update := tb.Items()[0].Update
	assert.Contains(t, aws.ToString(update.ConditionExpression), "last_gift_box_update = :seenTs")
	assert.Equal(t, "1000", update.ExpressionAttributeValues[":seenTs"].(*types.AttributeValueMemberN).Value)
	assert.Equal(t, "1", update.ExpressionAttributeValues[":seenClaims"].(*types.AttributeValueMemberN).Value)
	assert.Equal(t, "90000000", update.ExpressionAttributeValues[":next"].(*types.AttributeValueMemberN).Value)
}

func TestMintTransactionUpdatesCounters(t *testing.T) {
	mint := &models.UserMint{
		UserAddress: "0xAAA",
		Score:       1200,
		Timestamp:   1700000000000,
		MintDate:    "2023-11-14",
	}

	tb, err := buildMintTransaction("table", mint)
	require.NoError(t, err)
	require.Equal(t, 3, tb.Count())

	assert.Equal(t, "MINT#0xaaa", tb.Items()[0].Put.Item["PK"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "MINTS#2023-11-14", tb.Items()[0].Put.Item["GSI1PK"].(*types.AttributeValueMemberS).Value)

	daily := tb.Items()[1].Update
	assert.Equal(t, "DAILYMINT#0xaaa", daily.Key["PK"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "DATE#2023-11-14", daily.Key["SK"].(*types.AttributeValueMemberS).Value)

	stats := tb.Items()[2].Update
	assert.Equal(t, "STATS", stats.Key["PK"].(*types.AttributeValueMemberS).Value)
}
