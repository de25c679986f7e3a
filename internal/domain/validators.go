package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks if an email address is valid.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrValidation("email is required")
	}
	if !emailRegex.MatchString(email) {
		return ErrValidation("invalid email format")
	}
	return nil
}

// ValidatePositiveAmount checks that an amount is positive (in cents).
func ValidatePositiveAmount(amount int64) error {
	if amount <= 0 {
		return ErrValidation(fmt.Sprintf("amount must be positive, got %d", amount))
	}
	return nil
}

// ValidateStake checks a bet stake against the configured maximum.
func ValidateStake(stake, maxStake int64) error {
	if err := ValidatePositiveAmount(stake); err != nil {
		return err
	}
	if stake > maxStake {
		return ErrValidation(fmt.Sprintf("stake %d exceeds maximum %d", stake, maxStake))
	}
	return nil
}

// ValidateBetOptions checks the option list for the given bet type:
// moneyline needs exactly 2 options, n-way at least 3, and target-proximity
// options must all be numeric target strings. Duplicates are rejected
// case-insensitively.
func ValidateBetOptions(betType BetType, options []string) error {
	switch betType {
	case BetMoneyline:
		if len(options) != 2 {
			return ErrValidation(fmt.Sprintf("moneyline bet requires exactly 2 options, got %d", len(options)))
		}
	case BetNWayMoneyline:
		if len(options) < 3 {
			return ErrValidation(fmt.Sprintf("n-way moneyline bet requires at least 3 options, got %d", len(options)))
		}
	case BetTargetProximity:
		if len(options) == 0 {
			return ErrValidation("target-proximity bet requires at least 1 target option")
		}
		for _, o := range options {
			if _, err := decimal.NewFromString(strings.TrimSpace(o)); err != nil {
				return ErrValidation(fmt.Sprintf("target-proximity option %q is not numeric", o))
			}
		}
	default:
		return ErrValidation(fmt.Sprintf("unknown bet type: %s", betType))
	}

	seen := make(map[string]bool, len(options))
	for _, o := range options {
		key := strings.ToLower(strings.TrimSpace(o))
		if key == "" {
			return ErrValidation("empty option")
		}
		if seen[key] {
			return ErrValidation(fmt.Sprintf("duplicate option: %q", o))
		}
		seen[key] = true
	}
	return nil
}
