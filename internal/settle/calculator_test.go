package settle

import (
	"testing"

	"github.com/oddsward/platform/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(n int) *int { return &n }

func outcome(home, away int) *domain.MatchOutcome {
	return &domain.MatchOutcome{MatchID: "m1", HomeScore: home, AwayScore: away, Finished: true}
}

func outcomeWithHT(home, away, htHome, htAway int) *domain.MatchOutcome {
	o := outcome(home, away)
	o.HTHomeScore = &htHome
	o.HTAwayScore = &htAway
	return o
}

func leg(marketName, outcomeLabel string) domain.Leg {
	return domain.Leg{
		MatchID:      "m1",
		SelectionID:  "s1",
		MarketName:   marketName,
		OutcomeLabel: outcomeLabel,
		Odds:         dec("2.0"),
	}
}

func TestLeg_MatchResultHomeWins(t *testing.T) {
	r := Leg(leg("Match Result", "1"), dec("10"), outcome(2, 1))
	assert.Equal(t, domain.StatusWon, r.Status)
	assert.True(t, r.Payout.Equal(dec("20")), "payout %s", r.Payout)
}

func TestLeg_MatchResultDrawSelectionLosesOnHomeWin(t *testing.T) {
	r := Leg(leg("Match Result", "X"), dec("10"), outcome(2, 1))
	assert.Equal(t, domain.StatusLost, r.Status)
	assert.True(t, r.Payout.IsZero())
}

func TestLeg_NilOutcomeVoidsWithRefund(t *testing.T) {
	r := Leg(leg("Match Result", "1"), dec("10"), nil)
	assert.Equal(t, domain.StatusVoid, r.Status)
	assert.True(t, r.Payout.Equal(dec("10")))
	assert.Equal(t, "INCOMPLETE_MATCH_DATA", r.Debug.Code)
}

func TestLeg_UnknownMarketErrors(t *testing.T) {
	r := Leg(leg("Time Travel Winner", "1"), dec("10"), outcome(1, 0))
	assert.Equal(t, domain.StatusError, r.Status)
	assert.True(t, r.Payout.IsZero())
	assert.Equal(t, "UNRESOLVABLE_MARKET", r.Debug.Code)
}

func TestLeg_BadSelectionCarriesValidationCode(t *testing.T) {
	r := Leg(leg("Match Result", "banana"), dec("10"), outcome(1, 0))
	assert.Equal(t, domain.StatusError, r.Status)
	assert.Equal(t, "VALIDATION_ERROR", r.Debug.Code)
}

func TestLeg_HalfResultUsesFirstHalfScore(t *testing.T) {
	// Full time 2-1 but first half 0-1: the away selection wins the half.
	l := leg("Half Time Result", "2")
	r := Leg(l, dec("10"), outcomeWithHT(2, 1, 0, 1))
	assert.Equal(t, domain.StatusWon, r.Status)
}

func TestLeg_HalfResultVoidsWithoutHTData(t *testing.T) {
	r := Leg(leg("Half Time Result", "1"), dec("10"), outcome(2, 1))
	assert.Equal(t, domain.StatusVoid, r.Status)
	assert.True(t, r.Payout.Equal(dec("10")))
}

func TestLeg_DoubleChanceCoversDraw(t *testing.T) {
	r := Leg(leg("Double Chance", "1X"), dec("10"), outcome(0, 0))
	assert.Equal(t, domain.StatusWon, r.Status)
}

func TestLeg_DoubleChanceLoses(t *testing.T) {
	r := Leg(leg("Double Chance", "12"), dec("10"), outcome(1, 1))
	assert.Equal(t, domain.StatusLost, r.Status)
}

func TestLeg_DrawNoBetPushesOnDraw(t *testing.T) {
	r := Leg(leg("Draw No Bet", "1"), dec("10"), outcome(1, 1))
	assert.Equal(t, domain.StatusPush, r.Status)
	assert.True(t, r.Payout.Equal(dec("10")))
}

func TestLeg_CorrectScoreExactMatch(t *testing.T) {
	r := Leg(leg("Correct Score", "2-1"), dec("10"), outcome(2, 1))
	assert.Equal(t, domain.StatusWon, r.Status)

	r = Leg(leg("Correct Score", "2-1"), dec("10"), outcome(1, 2))
	assert.Equal(t, domain.StatusLost, r.Status)
}

func TestLeg_OddEven(t *testing.T) {
	r := Leg(leg("Total Goals Odd/Even", "odd"), dec("10"), outcome(2, 1))
	assert.Equal(t, domain.StatusWon, r.Status)

	r = Leg(leg("Total Goals Odd/Even", "even"), dec("10"), outcome(2, 1))
	assert.Equal(t, domain.StatusLost, r.Status)
}

func TestLeg_BothTeamsToScore(t *testing.T) {
	r := Leg(leg("Both Teams To Score", "yes"), dec("10"), outcome(1, 1))
	assert.Equal(t, domain.StatusWon, r.Status)

	r = Leg(leg("Both Teams To Score", "yes"), dec("10"), outcome(3, 0))
	assert.Equal(t, domain.StatusLost, r.Status)
}

func TestLeg_CleanSheetHome(t *testing.T) {
	r := Leg(leg("Home Team Clean Sheet", "yes"), dec("10"), outcome(2, 0))
	assert.Equal(t, domain.StatusWon, r.Status)

	r = Leg(leg("Home Team Clean Sheet", "yes"), dec("10"), outcome(2, 1))
	assert.Equal(t, domain.StatusLost, r.Status)
}

func TestLeg_ExactGoalsByHomeTeam(t *testing.T) {
	l := leg("Home Team Exact Goals", "2")
	r := Leg(l, dec("10"), outcome(2, 3))
	assert.Equal(t, domain.StatusWon, r.Status)
}

func TestLeg_NumericMarketIDOverridesName(t *testing.T) {
	// id 1 is match result even if the name says something generic.
	l := leg("Winner", "1")
	l.MarketID = intPtr(1)
	r := Leg(l, dec("10"), outcome(1, 0))
	assert.Equal(t, domain.StatusWon, r.Status)
	assert.Equal(t, domain.CodeMatchResult, r.Debug.MarketCode)
}

func TestLeg_DebugCarriesScores(t *testing.T) {
	r := Leg(leg("Match Result", "1"), dec("10"), outcome(2, 1))
	if assert.NotNil(t, r.Debug.HomeScore) {
		assert.Equal(t, 2, *r.Debug.HomeScore)
	}
	if assert.NotNil(t, r.Debug.AwayScore) {
		assert.Equal(t, 1, *r.Debug.AwayScore)
	}
}
