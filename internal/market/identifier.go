package market

import (
	"regexp"
	"strings"

	"github.com/oddsward/platform/internal/domain"
	"github.com/shopspring/decimal"
)

// idEntry is the authoritative mapping for feeds that supply a numeric
// market id.
type idEntry struct {
	Code domain.MarketCode
	Side domain.Side
	Half int
}

// marketIDTable maps upstream market ids onto the taxonomy. A numeric id
// always wins over keyword matching.
var marketIDTable = map[int]idEntry{
	1:   {Code: domain.CodeMatchResult},
	2:   {Code: domain.CodeDoubleChance},
	4:   {Code: domain.CodeTotals},
	5:   {Code: domain.CodeTotals},
	6:   {Code: domain.CodeAsianHandicap},
	7:   {Code: domain.CodeGoalLine},
	8:   {Code: domain.CodeCorrectScore},
	9:   {Code: domain.CodeThreeWayHandicap},
	10:  {Code: domain.CodeDrawNoBet},
	12:  {Code: domain.CodeOddEven},
	14:  {Code: domain.CodeBothTeamsToScore},
	15:  {Code: domain.CodeBothTeamsToScore, Half: 1},
	16:  {Code: domain.CodeBothTeamsToScore, Half: 2},
	17:  {Code: domain.CodeCleanSheet},
	18:  {Code: domain.CodeExactGoals, Side: domain.SideHome},
	19:  {Code: domain.CodeExactGoals, Side: domain.SideAway},
	20:  {Code: domain.CodeTeamTotals, Side: domain.SideHome},
	21:  {Code: domain.CodeTeamTotals, Side: domain.SideAway},
	22:  {Code: domain.CodeHalfResult, Half: 1},
	23:  {Code: domain.CodeHalfResult, Half: 2},
	26:  {Code: domain.CodeHalfHandicap, Half: 1},
	27:  {Code: domain.CodeHalfGoalLine, Half: 1},
	28:  {Code: domain.CodeHalfTotals, Half: 1},
	96:  {Code: domain.CodePlayerShots},
	98:  {Code: domain.CodePlayerCards},
	99:  {Code: domain.CodePlayerCards},
	11:  {Code: domain.CodePlayerScorer},
	247: {Code: domain.CodePlayerScorer},
	248: {Code: domain.CodePlayerScorer},
}

// keywordRule is one ordered classification rule. Rules are evaluated
// top-down and the first match wins, so more specific phrases must precede
// generic ones. Keeping the order in a slice (not a map) makes priority
// auditable and testable per rule.
type keywordRule struct {
	Name     string
	Code     domain.MarketCode
	Side     domain.Side
	Half     int
	Contains []string // any of these phrases, in market name or criterion
	Excludes []string // none of these phrases
	When     func(n Normalized) bool
}

var keywordRules = []keywordRule{
	{Name: "time window occurrence", Code: domain.CodeTimeWindow,
		When: func(n Normalized) bool { return n.Hints.HasTimeWindow }},
	{Name: "player shots on target", Code: domain.CodePlayerShots,
		Contains: []string{"shots on target"}},
	{Name: "player cards", Code: domain.CodePlayerCards,
		Contains: []string{"to get a card", "to get a red card", "booking"}},
	{Name: "player scorer", Code: domain.CodePlayerScorer,
		Contains: []string{"goalscorer", "anytime scorer", "to score"},
		Excludes: []string{"team", "both"}},
	{Name: "btts first half", Code: domain.CodeBothTeamsToScore, Half: 1,
		Contains: []string{"both teams to score in 1st half", "both teams to score in first half"}},
	{Name: "btts second half", Code: domain.CodeBothTeamsToScore, Half: 2,
		Contains: []string{"both teams to score in 2nd half", "both teams to score in second half"}},
	{Name: "btts", Code: domain.CodeBothTeamsToScore,
		Contains: []string{"both teams to score", "btts"}},
	{Name: "first half asian handicap", Code: domain.CodeHalfHandicap, Half: 1,
		Contains: []string{"1st half asian handicap", "first half asian handicap", "1st half handicap"}},
	{Name: "first half goal line", Code: domain.CodeHalfGoalLine, Half: 1,
		Contains: []string{"1st half goal line", "first half goal line"}},
	{Name: "first half goals", Code: domain.CodeHalfTotals, Half: 1,
		Contains: []string{"1st half goals", "first half goals"}},
	{Name: "second half goals", Code: domain.CodeHalfTotals, Half: 2,
		Contains: []string{"2nd half goals", "second half goals"}},
	{Name: "win first half", Code: domain.CodeHalfResult, Half: 1,
		Contains: []string{"to win 1st half", "half time result", "half-time result", "1st half result"}},
	{Name: "win second half", Code: domain.CodeHalfResult, Half: 2,
		Contains: []string{"to win 2nd half", "2nd half result"}},
	{Name: "three way handicap", Code: domain.CodeThreeWayHandicap,
		Contains: []string{"3-way handicap", "3 way handicap", "three way handicap", "european handicap"}},
	{Name: "asian handicap", Code: domain.CodeAsianHandicap,
		Contains: []string{"asian handicap", "handicap"}},
	{Name: "goal line", Code: domain.CodeGoalLine,
		Contains: []string{"goal line", "asian total"}},
	{Name: "home team goals", Code: domain.CodeTeamTotals, Side: domain.SideHome,
		Contains: []string{"home team goals", "home team total goals", "total goals by home"}},
	{Name: "away team goals", Code: domain.CodeTeamTotals, Side: domain.SideAway,
		Contains: []string{"away team goals", "away team total goals", "total goals by away"}},
	{Name: "home exact goals", Code: domain.CodeExactGoals, Side: domain.SideHome,
		Contains: []string{"home team exact goals"}},
	{Name: "away exact goals", Code: domain.CodeExactGoals, Side: domain.SideAway,
		Contains: []string{"away team exact goals"}},
	{Name: "exact goals", Code: domain.CodeExactGoals,
		Contains: []string{"exact goals", "exact number of goals"}},
	{Name: "clean sheet", Code: domain.CodeCleanSheet,
		Contains: []string{"clean sheet", "win to nil"}},
	{Name: "odd even", Code: domain.CodeOddEven,
		Contains: []string{"odd/even", "odd or even", "goals odd", "odd even"}},
	{Name: "correct score", Code: domain.CodeCorrectScore,
		Contains: []string{"correct score", "final score", "exact score"}},
	{Name: "draw no bet", Code: domain.CodeDrawNoBet,
		Contains: []string{"draw no bet"}},
	{Name: "double chance", Code: domain.CodeDoubleChance,
		Contains: []string{"double chance"}},
	{Name: "totals", Code: domain.CodeTotals,
		Contains: []string{"total goals", "match goals", "over/under", "goals over", "total"}},
	{Name: "match result", Code: domain.CodeMatchResult,
		Contains: []string{"fulltime result", "full time result", "match result", "1x2", "match winner", "moneyline", "result"}},
}

// Identify classifies a leg: numeric id lookup first, ordered keyword rules
// second. Unmatched legs resolve to CodeUnknown rather than failing.
func Identify(leg domain.Leg, n Normalized) (domain.MarketCode, domain.Side, int) {
	if leg.MarketID != nil {
		if entry, ok := marketIDTable[*leg.MarketID]; ok {
			return entry.Code, entry.Side, entry.Half
		}
	}
	for _, rule := range keywordRules {
		if rule.matches(n) {
			return rule.Code, rule.Side, rule.Half
		}
	}
	return domain.CodeUnknown, domain.SideNone, 0
}

func (r keywordRule) matches(n Normalized) bool {
	if r.When != nil && !r.When(n) {
		return false
	}
	if r.When != nil && len(r.Contains) == 0 {
		return true
	}
	text := n.MarketLower
	if text == "" {
		text = n.CriterionLower
	}
	for _, ex := range r.Excludes {
		if strings.Contains(text, ex) || strings.Contains(n.CriterionLower, ex) {
			return false
		}
	}
	for _, kw := range r.Contains {
		if strings.Contains(text, kw) || strings.Contains(n.CriterionLower, kw) {
			return true
		}
	}
	return false
}

// Resolve derives the full settlement-ready market definition for a leg.
func Resolve(leg domain.Leg) domain.MarketDefinition {
	n := Normalize(leg)
	code, side, half := Identify(leg, n)

	def := domain.MarketDefinition{
		Code:   code,
		Family: code.Family(),
		Side:   side,
		Half:   half,
		Line:   n.Hints.Line,
	}

	if def.Side == domain.SideNone {
		def.Side = SelectionSide(n.Hints.Selection)
	}
	if def.Line == nil {
		def.Line = parseLabelLine(n)
	}
	if code == domain.CodeTimeWindow {
		def.TimeRange = ParseTimeRange(n.MarketLower)
		def.EventType = extractEventType(n.MarketLower)
	}
	return def
}

// SelectionSide maps a selection label onto home/draw/away. Labels such as
// "home -1.5" or "1" resolve; anything else is SideNone.
func SelectionSide(selection string) domain.Side {
	s := strings.TrimSpace(selection)
	switch {
	case s == "1" || s == "home" || strings.HasPrefix(s, "home "):
		return domain.SideHome
	case s == "2" || s == "away" || strings.HasPrefix(s, "away "):
		return domain.SideAway
	case s == "x" || s == "draw" || strings.HasPrefix(s, "draw "):
		return domain.SideDraw
	}
	return domain.SideNone
}

var labelLineRe = regexp.MustCompile(`[-+]?\d+(?:\.\d+)?`)

// parseLabelLine recovers a threshold embedded in the outcome label or
// market name ("Over 2.5" -> 2.5) when no structured line was supplied.
func parseLabelLine(n Normalized) *decimal.Decimal {
	for _, text := range []string{n.OutcomeLower, n.MarketLower, n.CriterionLower} {
		idx := strings.Index(text, "over")
		if i := strings.Index(text, "under"); idx < 0 || (i >= 0 && i < idx) {
			if i >= 0 {
				idx = i
			}
		}
		if idx < 0 {
			continue
		}
		if m := labelLineRe.FindString(text[idx:]); m != "" {
			if d, err := decimal.NewFromString(m); err == nil {
				return &d
			}
		}
	}
	return nil
}

// extractEventType classifies what a time-window market counts.
func extractEventType(marketLower string) domain.EventType {
	switch {
	case strings.Contains(marketLower, "goal"):
		return domain.EventGoal
	case strings.Contains(marketLower, "card"):
		return domain.EventCard
	case strings.Contains(marketLower, "corner"):
		return domain.EventCorner
	case strings.Contains(marketLower, "foul"):
		return domain.EventFoul
	}
	return domain.EventGoal
}
