package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)
)

// ValidateEmail checks if an email address is valid.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateCurrency checks if a currency code is ISO 4217.
func ValidateCurrency(currency string) error {
	if !currencyRegex.MatchString(currency) {
		return fmt.Errorf("invalid currency code: %s", currency)
	}
	return nil
}

// ValidateLeg checks the fields settlement depends on. Market naming may be
// sparse (the identifier degrades to unknown), but identity, odds and the
// selection must be present.
func ValidateLeg(leg Leg) error {
	if leg.MatchID == "" {
		return fmt.Errorf("leg is missing match id")
	}
	if leg.SelectionID == "" {
		return fmt.Errorf("leg is missing selection id")
	}
	if leg.OutcomeLabel == "" {
		return fmt.Errorf("leg is missing outcome label")
	}
	if leg.Odds.Cmp(decimal.NewFromInt(1)) <= 0 {
		return fmt.Errorf("leg odds must be greater than 1.0, got %s", leg.Odds)
	}
	return nil
}

// ValidateWager checks a wager at admission time.
func ValidateWager(w Wager) error {
	if w.UserID == uuid.Nil {
		return fmt.Errorf("wager is missing user id")
	}
	if len(w.Legs) == 0 {
		return fmt.Errorf("wager has no legs")
	}
	for i, leg := range w.Legs {
		if err := ValidateLeg(leg); err != nil {
			return fmt.Errorf("leg %d: %w", i, err)
		}
	}
	switch w.BetType {
	case BetSingle:
		if len(w.Legs) != 1 {
			return fmt.Errorf("single wager must have exactly one leg")
		}
		if !w.Stake.IsPositive() {
			return fmt.Errorf("stake must be positive")
		}
	case BetAccumulator:
		if len(w.Legs) < 2 {
			return fmt.Errorf("accumulator requires at least two legs")
		}
		if !w.Stake.IsPositive() {
			return fmt.Errorf("stake must be positive")
		}
	case BetSystem:
		if w.System == nil {
			return fmt.Errorf("system wager requires a system config")
		}
		sizes := w.System.CombinationSizes()
		if len(sizes) == 0 {
			return fmt.Errorf("system wager names no sizes and no known preset")
		}
		if n := PresetLegCount(w.System.Name); n > 0 && len(w.System.Sizes) == 0 && len(w.Legs) != n {
			return fmt.Errorf("%s requires exactly %d legs, got %d", strings.ToLower(w.System.Name), n, len(w.Legs))
		}
		seen := make(map[int]struct{}, len(sizes))
		for _, k := range sizes {
			if k < 1 || k > len(w.Legs) {
				return fmt.Errorf("system size %d invalid for %d legs", k, len(w.Legs))
			}
			if _, dup := seen[k]; dup {
				return fmt.Errorf("system size %d listed more than once", k)
			}
			seen[k] = struct{}{}
		}
		if w.System.MinWins < 1 {
			return fmt.Errorf("system min wins must be at least 1")
		}
		if !w.System.UnitStake.IsPositive() {
			return fmt.Errorf("system unit stake must be positive")
		}
	default:
		return fmt.Errorf("unknown bet type %q", w.BetType)
	}
	return nil
}
