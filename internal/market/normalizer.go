// Package market canonicalizes raw wager fields and maps them onto the
// closed market taxonomy used by settlement.
package market

import (
	"regexp"
	"strings"

	"github.com/oddsward/platform/internal/domain"
	"github.com/shopspring/decimal"
)

// Normalized is the canonical view of a leg's market fields plus derived
// hints. It is a pure projection: building one never fails, and malformed
// input degrades to empty strings and false hints.
type Normalized struct {
	MarketName     string
	MarketLower    string
	CriterionLower string
	OutcomeLower   string
	OfferTypeID    int
	Hints          Hints
}

// Hints carries the boolean/derived signals the identifier keys off.
type Hints struct {
	IsPlayerMarket       bool
	IsPlayerOccurrence   bool
	HasExplicitPlayer    bool
	HasTimeWindow        bool
	MaybePlayerTotals    bool
	Selection            string
	Line                 *decimal.Decimal
}

// offerTypePlayerOccurrence is the upstream type code for the "player
// occurrence line" family.
const offerTypePlayerOccurrence = 127

// Time windows are detected only from an explicit MM:SS-MM:SS range or an
// "Nth minute" phrase. A bare "N-M" next to an event word is ambiguous with
// goal-band markets ("Total Goals 2-3") and must stay unclassified rather
// than settle as a window.
var (
	timeWindowRe = regexp.MustCompile(`\b(\d{1,2})[:\-](\d{2})\s*[-–]\s*(\d{1,2})[:\-](\d{2})\b`)
	nthMinuteRe  = regexp.MustCompile(`\b(\d+)(?:st|nd|rd|th)?\.?\s*minute\b`)
)

// Normalize canonicalizes a leg's raw market fields.
func Normalize(leg domain.Leg) Normalized {
	marketName := strings.TrimSpace(leg.MarketName)
	marketLower := strings.ToLower(marketName)
	criterionLower := strings.ToLower(strings.TrimSpace(leg.CriterionLabel))
	outcomeLower := strings.ToLower(strings.TrimSpace(leg.OutcomeLabel))

	offerTypeID := 0
	if leg.OfferTypeID != nil {
		offerTypeID = *leg.OfferTypeID
	}

	hasParticipantID := leg.ParticipantID != nil
	hasParticipantName := leg.Participant != ""
	// Over/Under/Yes/No arrive in the participant slot for some feeds.
	participantLower := strings.ToLower(strings.TrimSpace(leg.Participant))
	isTokenParticipant := participantLower == "over" || participantLower == "under" ||
		participantLower == "yes" || participantLower == "no"
	hasExplicitPlayer := (hasParticipantID || hasParticipantName) && !isTokenParticipant

	isPlayerOccurrence := offerTypeID == offerTypePlayerOccurrence
	hasTimeWindow := timeWindowRe.MatchString(marketLower) || nthMinuteRe.MatchString(marketLower)

	isPlayerScorer := (strings.Contains(marketLower, "to score") || strings.Contains(criterionLower, "to score")) &&
		!strings.Contains(marketLower, "team")
	isPlayerShots := strings.Contains(marketLower, "shots on target") || strings.Contains(criterionLower, "shots on target")
	isPlayerCard := strings.Contains(marketLower, "to get a card") ||
		strings.Contains(marketLower, "to get a red card") ||
		strings.Contains(criterionLower, "to get a card")

	isOverUnderSelection := outcomeLower == "over" || outcomeLower == "under" ||
		outcomeLower == "yes" || outcomeLower == "no"
	maybePlayerTotals := strings.Contains(marketLower, "total goals") &&
		(strings.Contains(marketLower, "by ") || isPlayerOccurrence) &&
		!isOverUnderSelection

	return Normalized{
		MarketName:     marketName,
		MarketLower:    marketLower,
		CriterionLower: criterionLower,
		OutcomeLower:   outcomeLower,
		OfferTypeID:    offerTypeID,
		Hints: Hints{
			IsPlayerMarket:     isPlayerOccurrence || hasExplicitPlayer || isPlayerScorer || isPlayerShots || isPlayerCard || maybePlayerTotals,
			IsPlayerOccurrence: isPlayerOccurrence,
			HasExplicitPlayer:  hasExplicitPlayer,
			HasTimeWindow:      hasTimeWindow,
			MaybePlayerTotals:  maybePlayerTotals,
			Selection:          outcomeLower,
			Line:               normalizeLine(leg),
		},
	}
}

// normalizeLine picks the leg's line, decoding milli-encoded integers.
// An explicit decimal line always wins; RawLine is assumed milli-encoded
// only when it passes the narrow heuristic below, so a genuine small
// integer handicap (e.g. 1) is left alone.
//
// Known precision risk: an actual integer handicap of exactly ±100 is
// indistinguishable from a milli line of 0.1 here; an explicit line-unit
// field from the upstream feed is the only real fix.
func normalizeLine(leg domain.Leg) *decimal.Decimal {
	if leg.Line != nil {
		d := *leg.Line
		if isProbablyMilli(d) {
			d = d.Div(decimal.NewFromInt(1000))
		}
		return &d
	}
	if leg.RawLine != nil {
		d := decimal.NewFromInt(*leg.RawLine).Div(decimal.NewFromInt(1000))
		return &d
	}
	return nil
}

// isProbablyMilli reports whether n looks like a milli-encoded line
// (7500 -> 7.5): an integer with |n| >= 100 divisible by 25.
func isProbablyMilli(n decimal.Decimal) bool {
	if !n.IsInteger() {
		return false
	}
	abs := n.Abs()
	if abs.Cmp(decimal.NewFromInt(100)) < 0 {
		return false
	}
	return abs.Mod(decimal.NewFromInt(25)).IsZero()
}

// ParseTimeRange extracts an inclusive minute window from a market name:
// "goals 15:00 - 30:00" yields 15-30, "goal in 10th minute" the single
// minute 10-10. Returns nil when absent.
func ParseTimeRange(marketLower string) *domain.TimeRange {
	if m := timeWindowRe.FindStringSubmatch(marketLower); m != nil {
		return &domain.TimeRange{Start: atoi(m[1]), End: atoi(m[3])}
	}
	if m := nthMinuteRe.FindStringSubmatch(marketLower); m != nil {
		minute := atoi(m[1])
		return &domain.TimeRange{Start: minute, End: minute}
	}
	return nil
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
