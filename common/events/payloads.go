package events

import "encoding/json"

type LeaderboardUpdatedEvent struct {
	Fid             int64   `json:"fid"`
	Username        string  `json:"username"`
	ImageURL        string  `json:"imageUrl"`
	UserAddress     string  `json:"userAddress"`
	TotalIncrements int64   `json:"totalIncrements"`
	TotalRewards    float64 `json:"totalRewards"`
	TimeStamp       int64   `json:"timestamp"`
}

type SignatureIssuedEvent struct {
	Fid          int64  `json:"fid"`
	UserAddress  string `json:"userAddress"`
	TokenAddress string `json:"tokenAddress"`
	Amount       string `json:"amount"`
	AmountInWei  string `json:"amountInWei"`
	TimeStamp    int64  `json:"timestamp"`
}

type GiftBoxClaimedEvent struct {
	Fid         int64  `json:"fid"`
	UserAddress string `json:"userAddress"`
	TokenType   string `json:"tokenType"`
	Amount      string `json:"amount"`
	TimeStamp   int64  `json:"timestamp"`
}

type GameScoreSavedEvent struct {
	Fid                int64  `json:"fid"`
	Username           string `json:"username"`
	Score              int64  `json:"score"`
	CurrentSeasonScore int64  `json:"currentSeasonScore"`
	IsNewBest          bool   `json:"isNewBest"`
	TimeStamp          int64  `json:"timestamp"`
}

// MiniAppWebhookEvent is the decoded body the host client posts to the
// manifest's webhook URL.
type MiniAppWebhookEvent struct {
	Event               string          `json:"event"`
	Fid                 int64           `json:"fid"`
	NotificationDetails json.RawMessage `json:"notificationDetails,omitempty"`
	TimeStamp           int64           `json:"timestamp"`
}

// Mini-app webhook event names.
const (
	WebhookFrameAdded            = "frame_added"
	WebhookFrameRemoved          = "frame_removed"
	WebhookNotificationsEnabled  = "notifications_enabled"
	WebhookNotificationsDisabled = "notifications_disabled"
)
