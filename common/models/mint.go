package models

import (
	"fmt"
	"time"
)

type UserMint struct {
	UserAddress string    `dynamodbav:"user_address" json:"userAddress"`
	Score       int64     `dynamodbav:"score" json:"score"`
	Timestamp   int64     `dynamodbav:"timestamp" json:"timestamp"`
	TokenId     int64     `dynamodbav:"token_id" json:"tokenId,omitempty"`
	Trait       string    `dynamodbav:"trait" json:"trait,omitempty"`
	Signature   string    `dynamodbav:"signature" json:"signature"`
	MintDate    string    `dynamodbav:"mint_date" json:"-"`
	CreatedAt   time.Time `dynamodbav:"created_at" json:"createdAt"`

	PK     string `dynamodbav:"PK" json:"-"`
	SK     string `dynamodbav:"SK" json:"-"`
	GSI1PK string `dynamodbav:"GSI1PK" json:"-"`
	GSI1SK string `dynamodbav:"GSI1SK" json:"-"`
}

type DailyMintCount struct {
	UserAddress  string `dynamodbav:"user_address" json:"userAddress"`
	Date         string `dynamodbav:"date" json:"date"`
	Count        int    `dynamodbav:"count" json:"count"`
	LastMintTime int64  `dynamodbav:"last_mint_time" json:"lastMintTime"`

	PK string `dynamodbav:"PK" json:"-"`
	SK string `dynamodbav:"SK" json:"-"`
}

// Key handlers
func MintPK(address string) string {
	return fmt.Sprintf("MINT#%s", NormalizeAddress(address))
}

func DailyMintPK(address string) string {
	return fmt.Sprintf("DAILYMINT#%s", NormalizeAddress(address))
}

func DateSK(date string) string {
	return fmt.Sprintf("DATE#%s", date)
}

// MintsByDateGSI1PK groups every mint of one UTC day for global counts.
func MintsByDateGSI1PK(date string) string {
	return fmt.Sprintf("MINTS#%s", date)
}

func (m *UserMint) SetKeys() {
	m.PK = MintPK(m.UserAddress)
	m.SK = TimestampSK("TS", m.Timestamp, "")
	m.GSI1PK = MintsByDateGSI1PK(m.MintDate)
	m.GSI1SK = RankSK(m.Score, m.Timestamp)
}

// Global counters live on a single stats item.
func StatsPK() string {
	return "STATS"
}

func MintStatsSK() string {
	return "MINTS"
}
