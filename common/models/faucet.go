package models

import (
	"fmt"
	"time"
)

type FaucetClaim struct {
	UserAddress     string    `dynamodbav:"user_address" json:"userAddress" validate:"required,eth_addr"`
	Amount          string    `dynamodbav:"amount" json:"amount" validate:"required,numeric"`
	TransactionHash string    `dynamodbav:"transaction_hash" json:"transactionHash" validate:"required"`
	Timestamp       int64     `dynamodbav:"timestamp" json:"timestamp"`
	BlockNumber     int64     `dynamodbav:"block_number" json:"blockNumber" validate:"gte=0"`
	WalletIndex     int       `dynamodbav:"wallet_index" json:"walletIndex,omitempty" validate:"gte=0,lte=5"`
	CreatedAt       time.Time `dynamodbav:"created_at" json:"createdAt"`

	PK     string `dynamodbav:"PK" json:"-"`
	SK     string `dynamodbav:"SK" json:"-"`
	GSI1PK string `dynamodbav:"GSI1PK" json:"-"`
	GSI1SK string `dynamodbav:"GSI1SK" json:"-"`
}

// WalletUsage aggregates faucet payouts per funding wallet.
type WalletUsage struct {
	WalletIndex int    `json:"walletIndex"`
	UsageCount  int    `json:"usageCount"`
	TotalAmount string `json:"totalAmount"`
}

// Key handlers
func FaucetPK(address string) string {
	return fmt.Sprintf("FAUCET#%s", NormalizeAddress(address))
}

func FaucetClaimsGSI1PK() string {
	return "FAUCET_CLAIMS"
}

func (c *FaucetClaim) SetKeys() {
	c.PK = FaucetPK(c.UserAddress)
	c.SK = TimestampSK("CLAIM", c.Timestamp, "")
	c.GSI1PK = FaucetClaimsGSI1PK()
	c.GSI1SK = fmt.Sprintf("WALLET#%02d#%013d", c.WalletIndex, c.Timestamp)
}
