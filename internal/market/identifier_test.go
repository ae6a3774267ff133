package market

import (
	"testing"

	"github.com/oddsward/platform/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identify(leg domain.Leg) (domain.MarketCode, domain.Side, int) {
	return Identify(leg, Normalize(leg))
}

func TestIdentify_NumericIDWinsOverName(t *testing.T) {
	id := 6
	code, _, _ := identify(domain.Leg{MarketID: &id, MarketName: "Total Goals"})
	assert.Equal(t, domain.CodeAsianHandicap, code)
}

func TestIdentify_IDTableCarriesSideAndHalf(t *testing.T) {
	id := 20
	code, side, _ := identify(domain.Leg{MarketID: &id, MarketName: ""})
	assert.Equal(t, domain.CodeTeamTotals, code)
	assert.Equal(t, domain.SideHome, side)

	id = 22
	code, _, half := identify(domain.Leg{MarketID: &id})
	assert.Equal(t, domain.CodeHalfResult, code)
	assert.Equal(t, 1, half)
}

func TestIdentify_UnknownIDFallsThroughToKeywords(t *testing.T) {
	id := 99999
	code, _, _ := identify(domain.Leg{MarketID: &id, MarketName: "Match Result"})
	assert.Equal(t, domain.CodeMatchResult, code)
}

func TestIdentify_KeywordClassification(t *testing.T) {
	cases := []struct {
		name string
		want domain.MarketCode
	}{
		{"Match Result", domain.CodeMatchResult},
		{"Fulltime Result", domain.CodeMatchResult},
		{"Double Chance", domain.CodeDoubleChance},
		{"Draw No Bet", domain.CodeDrawNoBet},
		{"Correct Score", domain.CodeCorrectScore},
		{"Total Goals", domain.CodeTotals},
		{"Over/Under 2.5 Goals", domain.CodeTotals},
		{"Asian Handicap", domain.CodeAsianHandicap},
		{"Handicap", domain.CodeAsianHandicap},
		{"3 Way Handicap", domain.CodeThreeWayHandicap},
		{"European Handicap", domain.CodeThreeWayHandicap},
		{"Goal Line", domain.CodeGoalLine},
		{"Both Teams To Score", domain.CodeBothTeamsToScore},
		{"Total Goals Odd/Even", domain.CodeOddEven},
		{"Home Team Clean Sheet", domain.CodeCleanSheet},
		{"Anytime Goalscorer", domain.CodePlayerScorer},
		{"Jane Striker Shots On Target", domain.CodePlayerShots},
		{"Jane Striker To Get A Card", domain.CodePlayerCards},
	}
	for _, tc := range cases {
		code, _, _ := identify(domain.Leg{MarketName: tc.name})
		assert.Equal(t, tc.want, code, "market %q", tc.name)
	}
}

func TestIdentify_SpecificRulesBeatGenericOnes(t *testing.T) {
	// "1st Half Asian Handicap" must not classify as plain asian handicap,
	// and "Home Team Goals" must not classify as plain totals.
	code, _, half := identify(domain.Leg{MarketName: "1st Half Asian Handicap"})
	assert.Equal(t, domain.CodeHalfHandicap, code)
	assert.Equal(t, 1, half)

	code, side, _ := identify(domain.Leg{MarketName: "Home Team Goals"})
	assert.Equal(t, domain.CodeTeamTotals, code)
	assert.Equal(t, domain.SideHome, side)
}

func TestIdentify_TimeWindowBeatsEverything(t *testing.T) {
	code, _, _ := identify(domain.Leg{MarketName: "Total Goals 15:00 - 30:00"})
	assert.Equal(t, domain.CodeTimeWindow, code)
}

func TestIdentify_BothTeamsToScoreNotAPlayerMarket(t *testing.T) {
	// Contains "to score" but the exclusion list keeps it off the player
	// scorer rule.
	code, _, _ := identify(domain.Leg{MarketName: "Both Teams To Score"})
	assert.Equal(t, domain.CodeBothTeamsToScore, code)
}

func TestIdentify_UnmatchedIsUnknown(t *testing.T) {
	code, _, _ := identify(domain.Leg{MarketName: "Coin Flip Special"})
	assert.Equal(t, domain.CodeUnknown, code)
}

func TestIdentify_CriterionLabelAlsoMatched(t *testing.T) {
	code, _, _ := identify(domain.Leg{MarketName: "", CriterionLabel: "Draw No Bet"})
	assert.Equal(t, domain.CodeDrawNoBet, code)
}

func TestResolve_SideFromSelection(t *testing.T) {
	def := Resolve(domain.Leg{MarketName: "Asian Handicap", OutcomeLabel: "home"})
	assert.Equal(t, domain.SideHome, def.Side)

	def = Resolve(domain.Leg{MarketName: "Match Result", OutcomeLabel: "2"})
	assert.Equal(t, domain.SideAway, def.Side)
}

func TestResolve_LineRecoveredFromLabel(t *testing.T) {
	def := Resolve(domain.Leg{MarketName: "Total Goals", OutcomeLabel: "Over 2.5"})
	require.NotNil(t, def.Line)
	assert.True(t, def.Line.Equal(dec("2.5")))
}

func TestIdentify_GoalBandIsNotATimeWindow(t *testing.T) {
	// "Total Goals 2-3" is a goal band, not minutes 2-3; it must fall
	// through to the totals rule and fail at settlement for want of a
	// line rather than silently settle as a window.
	code, _, _ := identify(domain.Leg{MarketName: "Total Goals 2-3"})
	assert.Equal(t, domain.CodeTotals, code)
}

func TestResolve_TimeWindowCarriesRangeAndEventType(t *testing.T) {
	def := Resolve(domain.Leg{MarketName: "Corners 30:00 - 45:00", OutcomeLabel: "yes"})
	assert.Equal(t, domain.CodeTimeWindow, def.Code)
	require.NotNil(t, def.TimeRange)
	assert.Equal(t, 30, def.TimeRange.Start)
	assert.Equal(t, 45, def.TimeRange.End)
	assert.Equal(t, domain.EventCorner, def.EventType)
}

func TestSelectionSide(t *testing.T) {
	assert.Equal(t, domain.SideHome, SelectionSide("1"))
	assert.Equal(t, domain.SideHome, SelectionSide("home -1.5"))
	assert.Equal(t, domain.SideAway, SelectionSide("2"))
	assert.Equal(t, domain.SideDraw, SelectionSide("x"))
	assert.Equal(t, domain.SideNone, SelectionSide("over"))
}
