package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SelectionKind tags the two shapes a raw selection string can take.
type SelectionKind int

const (
	// SelectionOption is an option label on a moneyline-style bet.
	SelectionOption SelectionKind = iota
	// SelectionGuess is a numeric guess on a target-proximity bet.
	SelectionGuess
	// SelectionInvalid is a target-proximity guess that failed to parse.
	// Invalid guesses are treated as maximally distant (they always lose)
	// so that settlement stays total.
	SelectionInvalid
)

// Selection is the typed form of a wager's raw selection string, resolved
// once at the boundary according to the bet's type instead of being
// re-parsed throughout settlement.
type Selection struct {
	Kind   SelectionKind
	Option string
	Guess  decimal.Decimal
}

// ParseSelection interprets a raw selection string for the given bet type.
// For moneyline types the raw string is trimmed and kept as an option
// label; for target-proximity it is parsed as a decimal number.
func ParseSelection(betType BetType, raw string) Selection {
	raw = strings.TrimSpace(raw)
	if betType != BetTargetProximity {
		return Selection{Kind: SelectionOption, Option: raw}
	}
	guess, err := decimal.NewFromString(raw)
	if err != nil {
		return Selection{Kind: SelectionInvalid, Option: raw}
	}
	return Selection{Kind: SelectionGuess, Guess: guess}
}

// ParseOutcome parses a resolution outcome for a target-proximity bet.
// Unlike wager guesses, a non-numeric outcome is a hard error: settlement
// structurally requires a number to measure distances against.
func ParseOutcome(raw string) (decimal.Decimal, error) {
	out, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, ErrInvalidOutcome("target-proximity outcome must be numeric, got " + raw)
	}
	return out, nil
}

// DistanceTo returns |guess - outcome|, and ok=false for selections that
// carry no usable number.
func (s Selection) DistanceTo(outcome decimal.Decimal) (decimal.Decimal, bool) {
	if s.Kind != SelectionGuess {
		return decimal.Zero, false
	}
	return s.Guess.Sub(outcome).Abs(), true
}
