package models

import "time"

type LeaderboardEntry struct {
	Fid             int64     `dynamodbav:"fid" json:"fid"`
	Username        string    `dynamodbav:"username" json:"username"`
	ImageURL        string    `dynamodbav:"image_url" json:"imageUrl"`
	UserAddress     string    `dynamodbav:"user_address" json:"userAddress"`
	TotalIncrements int64     `dynamodbav:"total_increments" json:"totalIncrements"`
	TotalRewards    float64   `dynamodbav:"total_rewards" json:"totalRewards"`
	UpdatedAt       time.Time `dynamodbav:"updated_at" json:"updatedAt"`

	PK     string `dynamodbav:"PK" json:"-"`
	SK     string `dynamodbav:"SK" json:"-"`
	GSI1PK string `dynamodbav:"GSI1PK" json:"-"`
	GSI1SK string `dynamodbav:"GSI1SK" json:"-"`
}

// Key handlers
func CounterSK() string {
	return "COUNTER"
}

func CounterLeaderboardGSI1PK() string {
	return "COUNTER_LEADERBOARD"
}

// SetKeys fills primary and ranking keys from the entry's fields.
func (e *LeaderboardEntry) SetKeys() {
	e.PK = FidPK(e.Fid)
	e.SK = CounterSK()
	e.GSI1PK = CounterLeaderboardGSI1PK()
	e.GSI1SK = RankSK(e.TotalIncrements, e.Fid)
}
