// Package settle computes settlement results for wagers against
// authoritative match outcomes. Every function here is pure: no I/O, no
// clocks, no mutation of its inputs, so settling the same (wager, outcome)
// pair twice yields identical results.
package settle

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/oddsward/platform/internal/domain"
	"github.com/oddsward/platform/internal/market"
	"github.com/shopspring/decimal"
)

// Leg settles a single leg staked at stake against the match outcome.
// A nil outcome means the feed has no data for the match: the leg voids
// with the stake refunded, never a silent loss.
func Leg(leg domain.Leg, stake decimal.Decimal, out *domain.MatchOutcome) domain.LegResult {
	def := market.Resolve(leg)

	if out == nil {
		return voidLeg(leg, def, stake, domain.ErrIncompleteMatchData(leg.MatchID, "match data unavailable"))
	}

	switch def.Code {
	case domain.CodeMatchResult:
		return settleMatchResult(leg, def, stake, out, 0)
	case domain.CodeHalfResult:
		return settleMatchResult(leg, def, stake, out, def.Half)
	case domain.CodeDoubleChance:
		return settleDoubleChance(leg, def, stake, out)
	case domain.CodeDrawNoBet:
		return settleDrawNoBet(leg, def, stake, out)
	case domain.CodeCorrectScore:
		return settleCorrectScore(leg, def, stake, out)
	case domain.CodeOddEven:
		return settleOddEven(leg, def, stake, out)
	case domain.CodeBothTeamsToScore:
		return settleBothTeamsToScore(leg, def, stake, out)
	case domain.CodeCleanSheet:
		return settleCleanSheet(leg, def, stake, out)
	case domain.CodeExactGoals:
		return settleExactGoals(leg, def, stake, out)
	case domain.CodeAsianHandicap, domain.CodeHalfHandicap:
		return settleAsianHandicap(leg, def, stake, out)
	case domain.CodeThreeWayHandicap:
		return settleThreeWayHandicap(leg, def, stake, out)
	case domain.CodeGoalLine, domain.CodeHalfGoalLine:
		return settleGoalLine(leg, def, stake, out)
	case domain.CodeTotals, domain.CodeHalfTotals, domain.CodeTeamTotals:
		return settleTotals(leg, def, stake, out)
	case domain.CodeTimeWindow:
		return settleTimeWindow(leg, def, stake, out)
	case domain.CodePlayerScorer:
		return settlePlayerScorer(leg, def, stake, out)
	case domain.CodePlayerShots:
		return settlePlayerShots(leg, def, stake, out)
	case domain.CodePlayerCards:
		return settlePlayerCards(leg, def, stake, out)
	}

	return errorLeg(leg, def, domain.ErrUnresolvableMarket(leg.MarketName))
}

// --- result family ---

func settleMatchResult(leg domain.Leg, def domain.MarketDefinition, stake decimal.Decimal, out *domain.MatchOutcome, half int) domain.LegResult {
	home, away := out.HomeScore, out.AwayScore
	scope := "full time"
	if half > 0 {
		var ok bool
		home, away, ok = out.HalfScores(half)
		if !ok {
			return voidLeg(leg, def, stake, domain.ErrIncompleteMatchData(leg.MatchID, "half-time score unavailable"))
		}
		scope = fmt.Sprintf("half %d", half)
	}

	selection := market.SelectionSide(strings.ToLower(leg.OutcomeLabel))
	if selection == domain.SideNone {
		return errorLeg(leg, def, domain.ErrValidation(fmt.Sprintf("selection %q is not home/draw/away", leg.OutcomeLabel)))
	}

	winner := winnerOf(home, away)
	reason := fmt.Sprintf("%s result %d-%d: winner %s, selection %s", scope, home, away, winner, selection)
	if selection == winner {
		return wonLeg(leg, def, stake, reason, home, away)
	}
	return lostLeg(leg, def, reason, home, away)
}

func settleDoubleChance(leg domain.Leg, def domain.MarketDefinition, stake decimal.Decimal, out *domain.MatchOutcome) domain.LegResult {
	covered := doubleChanceSides(strings.ToLower(leg.OutcomeLabel))
	if len(covered) != 2 {
		return errorLeg(leg, def, domain.ErrValidation(fmt.Sprintf("selection %q is not a double chance pair", leg.OutcomeLabel)))
	}
	winner := out.Winner()
	reason := fmt.Sprintf("result %d-%d: winner %s, covered %s+%s", out.HomeScore, out.AwayScore, winner, covered[0], covered[1])
	if winner == covered[0] || winner == covered[1] {
		return wonLeg(leg, def, stake, reason, out.HomeScore, out.AwayScore)
	}
	return lostLeg(leg, def, reason, out.HomeScore, out.AwayScore)
}

// doubleChanceSides parses "1X", "12", "X2" and the verbose variants.
func doubleChanceSides(selection string) []domain.Side {
	s := strings.ReplaceAll(strings.TrimSpace(selection), " ", "")
	switch s {
	case "1x", "x1", "homeordraw", "homedraw", "home/draw":
		return []domain.Side{domain.SideHome, domain.SideDraw}
	case "12", "homeoraway", "home/away":
		return []domain.Side{domain.SideHome, domain.SideAway}
	case "x2", "2x", "draworaway", "drawaway", "draw/away":
		return []domain.Side{domain.SideDraw, domain.SideAway}
	}
	return nil
}

func settleDrawNoBet(leg domain.Leg, def domain.MarketDefinition, stake decimal.Decimal, out *domain.MatchOutcome) domain.LegResult {
	selection := market.SelectionSide(strings.ToLower(leg.OutcomeLabel))
	if selection != domain.SideHome && selection != domain.SideAway {
		return errorLeg(leg, def, domain.ErrValidation(fmt.Sprintf("selection %q is not home/away", leg.OutcomeLabel)))
	}
	winner := out.Winner()
	reason := fmt.Sprintf("result %d-%d: winner %s, selection %s", out.HomeScore, out.AwayScore, winner, selection)
	switch winner {
	case domain.SideDraw:
		return pushLeg(leg, def, stake, fmt.Sprintf("result %d-%d: draw, stake returned", out.HomeScore, out.AwayScore), out.HomeScore, out.AwayScore)
	case selection:
		return wonLeg(leg, def, stake, reason, out.HomeScore, out.AwayScore)
	}
	return lostLeg(leg, def, reason, out.HomeScore, out.AwayScore)
}

var scoreRe = regexp.MustCompile(`(\d+)\s*[-:]\s*(\d+)`)

func settleCorrectScore(leg domain.Leg, def domain.MarketDefinition, stake decimal.Decimal, out *domain.MatchOutcome) domain.LegResult {
	m := scoreRe.FindStringSubmatch(leg.OutcomeLabel)
	if m == nil {
		return errorLeg(leg, def, domain.ErrValidation(fmt.Sprintf("selection %q has no score pattern", leg.OutcomeLabel)))
	}
	predHome, predAway := mustAtoi(m[1]), mustAtoi(m[2])
	reason := fmt.Sprintf("correct score %d-%d: actual %d-%d", predHome, predAway, out.HomeScore, out.AwayScore)
	if predHome == out.HomeScore && predAway == out.AwayScore {
		return wonLeg(leg, def, stake, reason, out.HomeScore, out.AwayScore)
	}
	return lostLeg(leg, def, reason, out.HomeScore, out.AwayScore)
}

func settleOddEven(leg domain.Leg, def domain.MarketDefinition, stake decimal.Decimal, out *domain.MatchOutcome) domain.LegResult {
	total := out.TotalGoals()
	actual := "even"
	if total%2 == 1 {
		actual = "odd"
	}
	selection := strings.ToLower(strings.TrimSpace(leg.OutcomeLabel))
	if selection != "odd" && selection != "even" {
		return errorLeg(leg, def, domain.ErrValidation(fmt.Sprintf("selection %q is not odd/even", leg.OutcomeLabel)))
	}
	reason := fmt.Sprintf("%d goals are %s, selection %s", total, actual, selection)
	if selection == actual {
		return wonLeg(leg, def, stake, reason, out.HomeScore, out.AwayScore)
	}
	return lostLeg(leg, def, reason, out.HomeScore, out.AwayScore)
}

func settleBothTeamsToScore(leg domain.Leg, def domain.MarketDefinition, stake decimal.Decimal, out *domain.MatchOutcome) domain.LegResult {
	home, away := out.HomeScore, out.AwayScore
	scope := "full time"
	if def.Half > 0 {
		var ok bool
		home, away, ok = out.HalfScores(def.Half)
		if !ok {
			return voidLeg(leg, def, stake, domain.ErrIncompleteMatchData(leg.MatchID, "half-time score unavailable"))
		}
		scope = fmt.Sprintf("half %d", def.Half)
	}
	both := home > 0 && away > 0
	want, ok := yesNo(leg.OutcomeLabel)
	if !ok {
		return errorLeg(leg, def, domain.ErrValidation(fmt.Sprintf("selection %q is not yes/no", leg.OutcomeLabel)))
	}
	reason := fmt.Sprintf("%s score %d-%d: both scored = %t, selection %s", scope, home, away, both, leg.OutcomeLabel)
	if both == want {
		return wonLeg(leg, def, stake, reason, home, away)
	}
	return lostLeg(leg, def, reason, home, away)
}

func settleCleanSheet(leg domain.Leg, def domain.MarketDefinition, stake decimal.Decimal, out *domain.MatchOutcome) domain.LegResult {
	side := def.Side
	if side == domain.SideNone || side == domain.SideDraw {
		side = sideFromText(strings.ToLower(leg.MarketName + " " + leg.CriterionLabel))
	}
	if side == domain.SideNone {
		return errorLeg(leg, def, domain.ErrValidation("clean sheet market does not name a team"))
	}
	conceded := out.AwayScore
	if side == domain.SideAway {
		conceded = out.HomeScore
	}
	kept := conceded == 0
	want, ok := yesNo(leg.OutcomeLabel)
	if !ok {
		return errorLeg(leg, def, domain.ErrValidation(fmt.Sprintf("selection %q is not yes/no", leg.OutcomeLabel)))
	}
	reason := fmt.Sprintf("%s conceded %d: clean sheet = %t, selection %s", side, conceded, kept, leg.OutcomeLabel)
	if kept == want {
		return wonLeg(leg, def, stake, reason, out.HomeScore, out.AwayScore)
	}
	return lostLeg(leg, def, reason, out.HomeScore, out.AwayScore)
}

var exactGoalsRe = regexp.MustCompile(`\d+`)

func settleExactGoals(leg domain.Leg, def domain.MarketDefinition, stake decimal.Decimal, out *domain.MatchOutcome) domain.LegResult {
	side := def.Side
	if side == domain.SideNone || side == domain.SideDraw {
		side = sideFromText(strings.ToLower(leg.MarketName + " " + leg.CriterionLabel))
	}
	m := exactGoalsRe.FindString(leg.OutcomeLabel)
	if m == "" {
		return errorLeg(leg, def, domain.ErrValidation(fmt.Sprintf("selection %q names no goal count", leg.OutcomeLabel)))
	}
	target := mustAtoi(m)

	actual := out.TotalGoals()
	scope := "match"
	if side == domain.SideHome || side == domain.SideAway {
		actual = out.TeamScore(side)
		scope = string(side)
	}
	reason := fmt.Sprintf("exact goals %d: %s scored %d", target, scope, actual)
	if actual == target {
		return wonLeg(leg, def, stake, reason, out.HomeScore, out.AwayScore)
	}
	return lostLeg(leg, def, reason, out.HomeScore, out.AwayScore)
}

// --- shared helpers ---

func winnerOf(home, away int) domain.Side {
	switch {
	case home > away:
		return domain.SideHome
	case away > home:
		return domain.SideAway
	}
	return domain.SideDraw
}

func sideFromText(text string) domain.Side {
	switch {
	case strings.Contains(text, "home"):
		return domain.SideHome
	case strings.Contains(text, "away"):
		return domain.SideAway
	}
	return domain.SideNone
}

func yesNo(label string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "yes":
		return true, true
	case "no":
		return false, true
	}
	return false, false
}

func mustAtoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

func debugInfo(def domain.MarketDefinition, rule string, home, away int) domain.DebugInfo {
	h, a := home, away
	return domain.DebugInfo{
		MarketCode:  def.Code,
		MatchedRule: rule,
		Line:        def.Line,
		HomeScore:   &h,
		AwayScore:   &a,
	}
}

func wonLeg(leg domain.Leg, def domain.MarketDefinition, stake decimal.Decimal, reason string, home, away int) domain.LegResult {
	return domain.LegResult{
		MatchID:     leg.MatchID,
		SelectionID: leg.SelectionID,
		Status:      domain.StatusWon,
		Payout:      stake.Mul(leg.Odds),
		Odds:        leg.Odds,
		Reason:      reason,
		Debug:       debugInfo(def, string(def.Code), home, away),
	}
}

func lostLeg(leg domain.Leg, def domain.MarketDefinition, reason string, home, away int) domain.LegResult {
	return domain.LegResult{
		MatchID:     leg.MatchID,
		SelectionID: leg.SelectionID,
		Status:      domain.StatusLost,
		Payout:      decimal.Zero,
		Odds:        leg.Odds,
		Reason:      reason,
		Debug:       debugInfo(def, string(def.Code), home, away),
	}
}

func pushLeg(leg domain.Leg, def domain.MarketDefinition, stake decimal.Decimal, reason string, home, away int) domain.LegResult {
	return domain.LegResult{
		MatchID:     leg.MatchID,
		SelectionID: leg.SelectionID,
		Status:      domain.StatusPush,
		Payout:      stake,
		Odds:        leg.Odds,
		Reason:      reason,
		Debug:       debugInfo(def, string(def.Code), home, away),
	}
}

// voidLeg and errorLeg take an AppError so the taxonomy code travels with
// the result for audit and alerting.
func voidLeg(leg domain.Leg, def domain.MarketDefinition, stake decimal.Decimal, e *domain.AppError) domain.LegResult {
	return domain.LegResult{
		MatchID:     leg.MatchID,
		SelectionID: leg.SelectionID,
		Status:      domain.StatusVoid,
		Payout:      stake,
		Odds:        leg.Odds,
		Reason:      e.Message,
		Debug:       domain.DebugInfo{Code: e.Code, MarketCode: def.Code, MatchedRule: "void", Line: def.Line},
	}
}

func errorLeg(leg domain.Leg, def domain.MarketDefinition, e *domain.AppError) domain.LegResult {
	return domain.LegResult{
		MatchID:     leg.MatchID,
		SelectionID: leg.SelectionID,
		Status:      domain.StatusError,
		Payout:      decimal.Zero,
		Odds:        leg.Odds,
		Reason:      e.Message,
		Debug:       domain.DebugInfo{Code: e.Code, MarketCode: def.Code, MatchedRule: "error", Line: def.Line},
	}
}
