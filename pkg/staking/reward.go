package staking

import "github.com/shopspring/decimal"

// Annual reward rates by lock tier. Longer locks earn a higher rate; a
// flexible stake earns nothing.
var (
	rateShort = decimal.RequireFromString("0.03") // under 90 days
	rateMid   = decimal.RequireFromString("0.05") // 90 to 179 days
	rateLong  = decimal.RequireFromString("0.08") // 180 days and up

	daysPerYear = decimal.NewFromInt(365)
)

// RewardRate returns the annual rate applied to a stake locked for lockDays.
func RewardRate(lockDays int) decimal.Decimal {
	switch {
	case lockDays <= 0:
		return decimal.Zero
	case lockDays < 90:
		return rateShort
	case lockDays < 180:
		return rateMid
	default:
		return rateLong
	}
}

// ComputeReward returns the reward earned by principal over the full lock
// period. The reward is fixed by the lock terms at stake time; it does not
// grow past the unlock date, so a late claim pays the same as a prompt one.
func ComputeReward(principal decimal.Decimal, lockDays int) decimal.Decimal {
	if lockDays <= 0 {
		return decimal.Zero
	}
	period := decimal.NewFromInt(int64(lockDays)).Div(daysPerYear)
	return principal.Mul(RewardRate(lockDays)).Mul(period).Round(8)
}
