package rewards

import (
	"github.com/shopspring/decimal"
)

// LowFollowerThreshold is the follower count below which counter pulls pay
// the flat minimum reward.
const LowFollowerThreshold = 20

var (
	lowFollowerReward = decimal.RequireFromString("0.0001")
	counterBandMin    = decimal.RequireFromString("0.001")
	counterBandWidth  = decimal.RequireFromString("0.001")
	giftBoxBandMin    = decimal.RequireFromString("0.01")
	giftBoxBandWidth  = decimal.RequireFromString("0.02")
)

// Float64Source yields uniform values in [0, 1).
type Float64Source func() float64

// CounterReward is 0.0001 USDC for low-follower accounts, otherwise uniform
// in [0.001, 0.002) rounded to 6 decimals.
func CounterReward(followerCount int64, rnd Float64Source) decimal.Decimal {
	if followerCount < LowFollowerThreshold {
		return lowFollowerReward
	}
	return inBand(counterBandMin, counterBandWidth, rnd)
}

// GiftBoxReward is uniform in [0.01, 0.03) USDC rounded to 6 decimals.
func GiftBoxReward(rnd Float64Source) decimal.Decimal {
	return inBand(giftBoxBandMin, giftBoxBandWidth, rnd)
}

func inBand(min, width decimal.Decimal, rnd Float64Source) decimal.Decimal {
	amount := min.Add(width.Mul(decimal.NewFromFloat(rnd()))).Round(6)
	// rounding can land exactly on the upper bound
	if upper := min.Add(width); !amount.LessThan(upper) {
		amount = upper.Sub(decimal.New(1, -6))
	}
	return amount
}
