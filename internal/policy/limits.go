package policy

// LimitPolicy defines betting limits for a member, in cents.
type LimitPolicy struct {
	SingleWagerMax int64 `json:"single_wager_max"`
	DailyStakeMax  int64 `json:"daily_stake_max"`
}

// DefaultLimits returns the default betting limits (25 units per wager,
// 100 units staked per day).
func DefaultLimits() LimitPolicy {
	return LimitPolicy{
		SingleWagerMax: 2_500,
		DailyStakeMax:  10_000,
	}
}

// Evaluation holds the result of a limits check.
type Evaluation struct {
	Allowed       bool   `json:"allowed"`
	BreachedLimit string `json:"breached_limit,omitempty"`
	LimitValue    int64  `json:"limit_value,omitempty"`
	RequestedAmt  int64  `json:"requested_amount,omitempty"`
}

// Evaluate checks a stake against the member's betting limits.
// dailyStaked is the member's running stake total for the current day.
func Evaluate(p LimitPolicy, stake, dailyStaked int64) Evaluation {
	if p.SingleWagerMax > 0 && stake > p.SingleWagerMax {
		return Evaluation{
			Allowed:       false,
			BreachedLimit: "single_wager",
			LimitValue:    p.SingleWagerMax,
			RequestedAmt:  stake,
		}
	}

	if p.DailyStakeMax > 0 && dailyStaked+stake > p.DailyStakeMax {
		return Evaluation{
			Allowed:       false,
			BreachedLimit: "daily_stake",
			LimitValue:    p.DailyStakeMax,
			RequestedAmt:  dailyStaked + stake,
		}
	}

	return Evaluation{Allowed: true}
}
