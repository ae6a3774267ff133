package market

import (
	"testing"

	"github.com/oddsward/platform/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestNormalize_LowercasesAndTrims(t *testing.T) {
	n := Normalize(domain.Leg{
		MarketName:     "  Match Result  ",
		CriterionLabel: "Full Time",
		OutcomeLabel:   " Home ",
	})
	assert.Equal(t, "Match Result", n.MarketName)
	assert.Equal(t, "match result", n.MarketLower)
	assert.Equal(t, "full time", n.CriterionLower)
	assert.Equal(t, "home", n.OutcomeLower)
	assert.Equal(t, "home", n.Hints.Selection)
}

func TestNormalize_ExplicitLinePassesThrough(t *testing.T) {
	line := dec("2.5")
	n := Normalize(domain.Leg{MarketName: "Total Goals", Line: &line})
	require.NotNil(t, n.Hints.Line)
	assert.True(t, n.Hints.Line.Equal(dec("2.5")))
}

func TestNormalize_MilliEncodedExplicitLine(t *testing.T) {
	line := dec("7500")
	n := Normalize(domain.Leg{MarketName: "Total Goals", Line: &line})
	require.NotNil(t, n.Hints.Line)
	assert.True(t, n.Hints.Line.Equal(dec("7.5")), "line %s", n.Hints.Line)
}

func TestNormalize_SmallIntegerLineLeftAlone(t *testing.T) {
	// A genuine handicap of 1 must not be decoded as 0.001.
	line := dec("1")
	n := Normalize(domain.Leg{MarketName: "Handicap", Line: &line})
	require.NotNil(t, n.Hints.Line)
	assert.True(t, n.Hints.Line.Equal(dec("1")))
}

func TestNormalize_NegativeMilliLine(t *testing.T) {
	line := dec("-1250")
	n := Normalize(domain.Leg{MarketName: "Asian Handicap", Line: &line})
	require.NotNil(t, n.Hints.Line)
	assert.True(t, n.Hints.Line.Equal(dec("-1.25")), "line %s", n.Hints.Line)
}

func TestNormalize_RawLineAlwaysMilli(t *testing.T) {
	raw := int64(500)
	n := Normalize(domain.Leg{MarketName: "Total Goals", RawLine: &raw})
	require.NotNil(t, n.Hints.Line)
	assert.True(t, n.Hints.Line.Equal(dec("0.5")))
}

func TestNormalize_NoLine(t *testing.T) {
	n := Normalize(domain.Leg{MarketName: "Match Result"})
	assert.Nil(t, n.Hints.Line)
}

func TestNormalize_PlayerOccurrenceOfferType(t *testing.T) {
	typ := 127
	n := Normalize(domain.Leg{MarketName: "Player Occurrence Line", OfferTypeID: &typ})
	assert.True(t, n.Hints.IsPlayerOccurrence)
	assert.True(t, n.Hints.IsPlayerMarket)
}

func TestNormalize_TokenParticipantIsNotAPlayer(t *testing.T) {
	// Some feeds put Over/Under in the participant slot.
	n := Normalize(domain.Leg{MarketName: "Total Goals", Participant: "Over"})
	assert.False(t, n.Hints.HasExplicitPlayer)

	n = Normalize(domain.Leg{MarketName: "Anytime Goalscorer", Participant: "Jane Striker"})
	assert.True(t, n.Hints.HasExplicitPlayer)
}

func TestNormalize_TimeWindowDetection(t *testing.T) {
	assert.True(t, Normalize(domain.Leg{MarketName: "Goals 15:00 - 30:00"}).Hints.HasTimeWindow)
	assert.True(t, Normalize(domain.Leg{MarketName: "Corners 30:00 - 45:00"}).Hints.HasTimeWindow)
	assert.True(t, Normalize(domain.Leg{MarketName: "Goal in 10. minute"}).Hints.HasTimeWindow)
	assert.True(t, Normalize(domain.Leg{MarketName: "Goal in 10th minute"}).Hints.HasTimeWindow)
	assert.True(t, Normalize(domain.Leg{MarketName: "Corner in 1st minute"}).Hints.HasTimeWindow)
	// Goal bands and score-like names must not read as minute windows.
	assert.False(t, Normalize(domain.Leg{MarketName: "Total Goals 2-3"}).Hints.HasTimeWindow)
	assert.False(t, Normalize(domain.Leg{MarketName: "Corners 30-45"}).Hints.HasTimeWindow)
	assert.False(t, Normalize(domain.Leg{MarketName: "Correct Score 2-1"}).Hints.HasTimeWindow)
	assert.False(t, Normalize(domain.Leg{MarketName: "Match Result"}).Hints.HasTimeWindow)
}

func TestParseTimeRange(t *testing.T) {
	r := ParseTimeRange("goals 15:00 - 30:00")
	require.NotNil(t, r)
	assert.Equal(t, 15, r.Start)
	assert.Equal(t, 30, r.End)

	r = ParseTimeRange("corners 30:00 - 45:00")
	require.NotNil(t, r)
	assert.Equal(t, 30, r.Start)
	assert.Equal(t, 45, r.End)

	r = ParseTimeRange("goal in 10th minute")
	require.NotNil(t, r)
	assert.Equal(t, 10, r.Start)
	assert.Equal(t, 10, r.End)

	assert.Nil(t, ParseTimeRange("total goals 2-3"))
	assert.Nil(t, ParseTimeRange("match result"))
}
