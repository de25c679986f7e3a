package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate_WithinLimits(t *testing.T) {
	p := DefaultLimits()

	eval := Evaluate(p, 1_000, 2_000)
	assert.True(t, eval.Allowed)
	assert.Empty(t, eval.BreachedLimit)
}

func TestEvaluate_SingleWagerBreached(t *testing.T) {
	p := DefaultLimits()

	eval := Evaluate(p, 5_000, 0)
	assert.False(t, eval.Allowed)
	assert.Equal(t, "single_wager", eval.BreachedLimit)
	assert.Equal(t, int64(2_500), eval.LimitValue)
	assert.Equal(t, int64(5_000), eval.RequestedAmt)
}

func TestEvaluate_DailyStakeBreached(t *testing.T) {
	p := DefaultLimits()

	// 9,000 already staked today, another 2,000 crosses the 10,000 cap.
	eval := Evaluate(p, 2_000, 9_000)
	assert.False(t, eval.Allowed)
	assert.Equal(t, "daily_stake", eval.BreachedLimit)
	assert.Equal(t, int64(10_000), eval.LimitValue)
	assert.Equal(t, int64(11_000), eval.RequestedAmt)
}

func TestEvaluate_ExactlyAtDailyCap(t *testing.T) {
	p := LimitPolicy{SingleWagerMax: 2_500, DailyStakeMax: 10_000}

	eval := Evaluate(p, 2_500, 7_500)
	assert.True(t, eval.Allowed)
}

func TestEvaluate_ZeroLimitsDisabled(t *testing.T) {
	p := LimitPolicy{}

	eval := Evaluate(p, 1_000_000, 1_000_000)
	assert.True(t, eval.Allowed)
}
