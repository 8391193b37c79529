package models

import (
	"fmt"
	"time"
)

type GameScore struct {
	Fid                int64  `dynamodbav:"fid" json:"fid"`
	Username           string `dynamodbav:"username" json:"username,omitempty"`
	PfpURL             string `dynamodbav:"pfp_url" json:"pfpUrl"`
	UserAddress        string `dynamodbav:"user_address" json:"userAddress,omitempty"`
	Score              int64  `dynamodbav:"score" json:"score"`
	CurrentSeasonScore int64  `dynamodbav:"current_season_score" json:"currentSeasonScore"`
	HasSeasonScore     bool   `dynamodbav:"has_season_score" json:"-"`
	Level              int    `dynamodbav:"level" json:"level"`
	Timestamp          int64  `dynamodbav:"timestamp" json:"timestamp"`
	Duration           int64  `dynamodbav:"duration" json:"duration,omitempty"`

	DailyStreak   int    `dynamodbav:"daily_streak" json:"dailyStreak"`
	LongestStreak int    `dynamodbav:"longest_streak" json:"longestStreak"`
	LastPlayDate  string `dynamodbav:"last_play_date" json:"lastPlayDate,omitempty"`

	NftMinted   bool   `dynamodbav:"nft_minted" json:"nftMinted,omitempty"`
	NftName     string `dynamodbav:"nft_name" json:"nftName,omitempty"`
	NftCount    int    `dynamodbav:"nft_count" json:"nftCount"`
	HasNft      bool   `dynamodbav:"has_nft" json:"hasNft"`
	LastNftMint int64  `dynamodbav:"last_nft_mint" json:"lastNftMint,omitempty"`

	FaucetClaimed  bool   `dynamodbav:"faucet_claimed" json:"faucetClaimed"`
	HasMintedToday bool   `dynamodbav:"has_minted_today" json:"hasMintedToday"`
	LastMintDate   string `dynamodbav:"last_mint_date" json:"lastMintDate,omitempty"`

	LastGiftBoxUpdate     int64 `dynamodbav:"last_gift_box_update" json:"lastGiftBoxUpdate,omitempty"`
	GiftBoxClaimsInPeriod int   `dynamodbav:"gift_box_claims_in_period" json:"giftBoxClaimsInPeriod"`
	TotalRewardsClaimed   int   `dynamodbav:"total_rewards_claimed" json:"totalRewardsClaimed"`

	CreatedAt time.Time `dynamodbav:"created_at" json:"createdAt"`
	UpdatedAt time.Time `dynamodbav:"updated_at" json:"updatedAt"`

	PK     string `dynamodbav:"PK" json:"-"`
	SK     string `dynamodbav:"SK" json:"-"`
	GSI1PK string `dynamodbav:"GSI1PK,omitempty" json:"-"`
	GSI1SK string `dynamodbav:"GSI1SK,omitempty" json:"-"`
	GSI2PK string `dynamodbav:"GSI2PK,omitempty" json:"-"`
	GSI2SK string `dynamodbav:"GSI2SK,omitempty" json:"-"`
	GSI3PK string `dynamodbav:"GSI3PK,omitempty" json:"-"`
	GSI3SK string `dynamodbav:"GSI3SK,omitempty" json:"-"`
}

// Key handlers
func GameSK() string {
	return "GAME"
}

func SeasonGSI1PK() string {
	return "SEASON"
}

func AllTimeHighGSI2PK() string {
	return "ATH"
}

func AddressGSI3PK(address string) string {
	return fmt.Sprintf("ADDRESS#%s", NormalizeAddress(address))
}

func GameGSI3SK(fid int64) string {
	return fmt.Sprintf("GAME#%d", fid)
}

// SetKeys derives all index keys. The season index only holds players with a
// season score and the all-time-high index only holds positive scores.
func (g *GameScore) SetKeys() {
	g.PK = FidPK(g.Fid)
	g.SK = GameSK()

	g.GSI1PK, g.GSI1SK = "", ""
	if g.HasSeasonScore {
		g.GSI1PK = SeasonGSI1PK()
		g.GSI1SK = RankSK(g.CurrentSeasonScore, g.Fid)
	}

	g.GSI2PK, g.GSI2SK = "", ""
	if g.Score > 0 {
		g.GSI2PK = AllTimeHighGSI2PK()
		g.GSI2SK = RankSK(g.Score, g.Fid)
	}

	g.GSI3PK, g.GSI3SK = "", ""
	if g.UserAddress != "" {
		g.GSI3PK = AddressGSI3PK(g.UserAddress)
		g.GSI3SK = GameGSI3SK(g.Fid)
	}
}

func (g *GameScore) IsNftHolder() bool {
	return g.HasNft && g.NftCount > 0
}
