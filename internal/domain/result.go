package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DebugInfo records how a settlement decision was reached. Required for
// audit and dispute resolution; populated on every result, including errors.
type DebugInfo struct {
	// Code carries the AppError taxonomy code when the result is a void
	// or error, e.g. UNRESOLVABLE_MARKET or INCOMPLETE_MATCH_DATA.
	Code        string           `json:"code,omitempty"`
	MarketCode  MarketCode       `json:"market_code,omitempty"`
	MatchedRule string           `json:"matched_rule,omitempty"`
	Line        *decimal.Decimal `json:"line,omitempty"`
	HomeScore   *int             `json:"home_score,omitempty"`
	AwayScore   *int             `json:"away_score,omitempty"`
}

// LegResult is the settlement outcome of one leg.
type LegResult struct {
	MatchID     string          `json:"match_id"`
	SelectionID string          `json:"selection_id,omitempty"`
	Status      WagerStatus     `json:"status"`
	Payout      decimal.Decimal `json:"payout"`
	Odds        decimal.Decimal `json:"odds"`
	Reason      string          `json:"reason"`
	Debug       DebugInfo       `json:"debug"`
}

// CombinationResult is the settlement of one generated sub-combination of a
// system bet, retained for auditability.
type CombinationResult struct {
	LegIndexes []int           `json:"leg_indexes"`
	Status     WagerStatus     `json:"status"`
	Payout     decimal.Decimal `json:"payout"`
	TotalOdds  decimal.Decimal `json:"total_odds"`
	Reason     string          `json:"reason"`
}

// SettlementResult is the terminal computation for one wager. It is always
// produced, even on failure (Status == StatusError), and is a pure function
// of the wager and the match outcomes it references.
type SettlementResult struct {
	WagerID      uuid.UUID           `json:"wager_id"`
	Status       WagerStatus         `json:"status"`
	Payout       decimal.Decimal     `json:"payout"`
	Reason       string              `json:"reason"`
	Debug        DebugInfo           `json:"debug"`
	Legs         []LegResult         `json:"legs,omitempty"`
	Combinations []CombinationResult `json:"combinations,omitempty"`
	ProcessedAt  time.Time           `json:"processed_at"`
}

// WagerError pairs a wager with the failure that kept it from settling.
type WagerError struct {
	WagerID uuid.UUID `json:"wager_id"`
	Error   string    `json:"error"`
}

// BatchStats aggregates one settlement sweep for observability.
type BatchStats struct {
	Total     int          `json:"total"`
	Processed int          `json:"processed"`
	Won       int          `json:"won"`
	Lost      int          `json:"lost"`
	Push      int          `json:"push"`
	Void      int          `json:"void"`
	Errored   int          `json:"errored"`
	Skipped   int          `json:"skipped"`
	Errors    []WagerError `json:"errors,omitempty"`
}

// Record folds one result into the stats.
func (s *BatchStats) Record(r SettlementResult) {
	s.Processed++
	switch r.Status {
	case StatusWon:
		s.Won++
	case StatusLost:
		s.Lost++
	case StatusPush:
		s.Push++
	case StatusVoid, StatusCanceled:
		s.Void++
	case StatusError:
		s.Errored++
		s.Errors = append(s.Errors, WagerError{WagerID: r.WagerID, Error: r.Reason})
	case StatusPending:
		s.Processed--
		s.Skipped++
	}
}
