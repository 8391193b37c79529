package models

import "time"

// FarcasterUser is the subset of the social-graph profile the service reads.
type FarcasterUser struct {
	Fid               int64             `dynamodbav:"fid" json:"fid"`
	Username          string            `dynamodbav:"username" json:"username"`
	DisplayName       string            `dynamodbav:"display_name" json:"display_name"`
	PfpURL            string            `dynamodbav:"pfp_url" json:"pfp_url"`
	CustodyAddress    string            `dynamodbav:"custody_address" json:"custody_address"`
	FollowerCount     int64             `dynamodbav:"follower_count" json:"follower_count"`
	FollowingCount    int64             `dynamodbav:"following_count" json:"following_count"`
	Verifications     []string          `dynamodbav:"verifications" json:"verifications"`
	VerifiedAddresses VerifiedAddresses `dynamodbav:"verified_addresses" json:"verified_addresses"`
}

type VerifiedAddresses struct {
	EthAddresses []string        `dynamodbav:"eth_addresses" json:"eth_addresses"`
	SolAddresses []string        `dynamodbav:"sol_addresses" json:"sol_addresses"`
	Primary      PrimaryAddresses `dynamodbav:"primary" json:"primary"`
}

type PrimaryAddresses struct {
	EthAddress string `dynamodbav:"eth_address" json:"eth_address"`
	SolAddress string `dynamodbav:"sol_address" json:"sol_address"`
}

// CachedUser stores a fetched profile for a bounded time.
type CachedUser struct {
	Fid      int64         `dynamodbav:"fid"`
	UserData FarcasterUser `dynamodbav:"user_data"`
	CachedAt time.Time     `dynamodbav:"cached_at"`

	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
	// DynamoDB TTL attribute, epoch seconds
	ExpiresAt int64 `dynamodbav:"expires_at"`
}

// Key handlers
func ProfileSK() string {
	return "PROFILE"
}

func (c *CachedUser) IsFresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(c.CachedAt) < ttl
}
