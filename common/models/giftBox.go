package models

import (
	"fmt"
	"time"
)

type TokenType string

const (
	TokenUSDC TokenType = "usdc"
	TokenPEPE TokenType = "pepe"
	TokenCRSH TokenType = "crsh"
	TokenBOOP TokenType = "boop"
	TokenNone TokenType = "none"
)

type GiftBoxClaim struct {
	ClaimId     string    `dynamodbav:"claim_id" json:"claimId"`
	UserAddress string    `dynamodbav:"user_address" json:"userAddress"`
	Fid         int64     `dynamodbav:"fid" json:"fid"`
	TokenType   TokenType `dynamodbav:"token_type" json:"tokenType"`
	Amount      float64   `dynamodbav:"amount" json:"amount"`
	AmountInWei string    `dynamodbav:"amount_in_wei" json:"amountInWei"`
	Signature   string    `dynamodbav:"signature" json:"signature,omitempty"`
	Timestamp   int64     `dynamodbav:"timestamp" json:"timestamp"`
	CreatedAt   time.Time `dynamodbav:"created_at" json:"createdAt"`

	PK string `dynamodbav:"PK" json:"-"`
	SK string `dynamodbav:"SK" json:"-"`
}

// Key handlers
func GiftBoxPK(address string) string {
	return fmt.Sprintf("GIFTBOX#%s", NormalizeAddress(address))
}

func GiftBoxClaimSKPrefix() string {
	return "CLAIM#"
}

func (c *GiftBoxClaim) SetKeys() {
	c.PK = GiftBoxPK(c.UserAddress)
	c.SK = TimestampSK("CLAIM", c.Timestamp, c.ClaimId)
}
