package domain

import "github.com/shopspring/decimal"

// MarketCode is one entry of the closed market taxonomy. Everything the
// identifier cannot place resolves to CodeUnknown; settlement for unknown
// markets always yields an error status, never a guessed result.
type MarketCode string

const (
	CodeMatchResult      MarketCode = "match_result"
	CodeDoubleChance     MarketCode = "double_chance"
	CodeTotals           MarketCode = "totals"
	CodeAsianHandicap    MarketCode = "asian_handicap"
	CodeGoalLine         MarketCode = "goal_line"
	CodeCorrectScore     MarketCode = "correct_score"
	CodeThreeWayHandicap MarketCode = "three_way_handicap"
	CodeDrawNoBet        MarketCode = "draw_no_bet"
	CodeOddEven          MarketCode = "odd_even"
	CodeBothTeamsToScore MarketCode = "both_teams_to_score"
	CodeCleanSheet       MarketCode = "clean_sheet"
	CodeExactGoals       MarketCode = "exact_goals"
	CodeTeamTotals       MarketCode = "team_totals"
	CodeHalfResult       MarketCode = "half_result"
	CodeHalfHandicap     MarketCode = "half_handicap"
	CodeHalfGoalLine     MarketCode = "half_goal_line"
	CodeHalfTotals       MarketCode = "half_totals"
	CodePlayerScorer     MarketCode = "player_scorer"
	CodePlayerShots      MarketCode = "player_shots"
	CodePlayerCards      MarketCode = "player_cards"
	CodeTimeWindow       MarketCode = "time_window"
	CodeUnknown          MarketCode = "unknown"
)

// MarketFamily groups codes that share settlement mechanics.
type MarketFamily string

const (
	FamilyResult       MarketFamily = "result"
	FamilyTotals       MarketFamily = "totals"
	FamilyHandicap     MarketFamily = "handicap"
	FamilyCorrectScore MarketFamily = "correct_score"
	FamilyPlayerProp   MarketFamily = "player_prop"
	FamilyTimeWindow   MarketFamily = "time_window"
	FamilySpecials     MarketFamily = "specials"
	FamilyUnknown      MarketFamily = "unknown"
)

// Family returns the settlement family of a market code.
func (c MarketCode) Family() MarketFamily {
	switch c {
	case CodeMatchResult, CodeDoubleChance, CodeDrawNoBet, CodeHalfResult:
		return FamilyResult
	case CodeTotals, CodeGoalLine, CodeTeamTotals, CodeHalfGoalLine, CodeHalfTotals:
		return FamilyTotals
	case CodeAsianHandicap, CodeThreeWayHandicap, CodeHalfHandicap:
		return FamilyHandicap
	case CodeCorrectScore:
		return FamilyCorrectScore
	case CodePlayerScorer, CodePlayerShots, CodePlayerCards:
		return FamilyPlayerProp
	case CodeTimeWindow:
		return FamilyTimeWindow
	case CodeOddEven, CodeBothTeamsToScore, CodeCleanSheet, CodeExactGoals:
		return FamilySpecials
	}
	return FamilyUnknown
}

// TimeRange is an inclusive minute window for occurrence markets.
type TimeRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// MarketDefinition is the resolved, settlement-ready view of a leg. It is
// derived by the market package at settlement time and never persisted.
type MarketDefinition struct {
	Code      MarketCode       `json:"code"`
	Family    MarketFamily     `json:"family"`
	Side      Side             `json:"side,omitempty"`
	Half      int              `json:"half,omitempty"` // 0 = full time
	Line      *decimal.Decimal `json:"line,omitempty"`
	EventType EventType        `json:"event_type,omitempty"`
	TimeRange *TimeRange       `json:"time_range,omitempty"`
}
