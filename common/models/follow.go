package models

import (
	"fmt"
	"time"
)

type FollowPlatform string

const (
	PlatformX       FollowPlatform = "x"
	PlatformTwitter FollowPlatform = "twitter"
)

type FollowAction struct {
	UserAddress   string         `dynamodbav:"user_address" json:"userAddress"`
	Fid           int64          `dynamodbav:"fid" json:"fid,omitempty"`
	Platform      FollowPlatform `dynamodbav:"platform" json:"platform"`
	Timestamp     int64          `dynamodbav:"timestamp" json:"timestamp"`
	RewardClaimed bool           `dynamodbav:"reward_claimed" json:"rewardClaimed"`
	CreatedAt     time.Time      `dynamodbav:"created_at" json:"createdAt"`

	PK string `dynamodbav:"PK" json:"-"`
	SK string `dynamodbav:"SK" json:"-"`
}

// Key handlers
func FollowPK(address string) string {
	return fmt.Sprintf("FOLLOW#%s", NormalizeAddress(address))
}

func PlatformSK(platform FollowPlatform) string {
	return fmt.Sprintf("PLATFORM#%s", platform)
}

func (f *FollowAction) SetKeys() {
	f.PK = FollowPK(f.UserAddress)
	f.SK = PlatformSK(f.Platform)
}
