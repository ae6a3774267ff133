package settle

import (
	"fmt"
	"strings"

	"github.com/oddsward/platform/internal/domain"
	"github.com/oddsward/platform/internal/market"
	"github.com/shopspring/decimal"
)

var (
	half    = decimal.NewFromFloat(0.5)
	quarter = decimal.NewFromFloat(0.25)
	two     = decimal.NewFromInt(2)
)

// isQuarterLine reports whether a line sits on a quarter step (-0.25,
// +0.75, ...). The absolute value is taken first so negative quarter lines
// split the same way positive ones do.
func isQuarterLine(line decimal.Decimal) bool {
	return line.Abs().Mod(half).Equal(quarter)
}

// quarterBounds returns the flanking half-step lines of a quarter line,
// e.g. -0.25 -> (-0.5, 0).
func quarterBounds(line decimal.Decimal) (lower, upper decimal.Decimal) {
	doubled := line.Mul(two)
	return doubled.Floor().Div(two), doubled.Ceil().Div(two)
}

// settleAsianHandicap applies the line to the chosen side's score and
// compares. Equal adjusted scores push; quarter lines split into two
// half-stake wagers at the flanking half lines.
func settleAsianHandicap(leg domain.Leg, def domain.MarketDefinition, stake decimal.Decimal, out *domain.MatchOutcome) domain.LegResult {
	if def.Line == nil {
		return errorLeg(leg, def, domain.ErrValidation("handicap market has no line"))
	}
	side := def.Side
	if side != domain.SideHome && side != domain.SideAway {
		return errorLeg(leg, def, domain.ErrValidation(fmt.Sprintf("selection %q does not pick a side", leg.OutcomeLabel)))
	}

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
	line := *def.Line

	if isQuarterLine(line) {
		return settleQuarterHandicap(leg, def, stake, line, side, home, away, scope)
	}

	status, payout := handicapOutcome(line, side, home, away, stake, leg.Odds)
	reason := fmt.Sprintf("%s handicap %s on %s: score %d-%d", scope, line, side, home, away)
	return handicapResult(leg, def, status, payout, reason, home, away)
}

// settleQuarterHandicap splits the stake across the two flanking half
// lines and derives the status purely from the summed payout: equal to the
// stake pushes, above wins, below loses.
func settleQuarterHandicap(leg domain.Leg, def domain.MarketDefinition, stake, line decimal.Decimal, side domain.Side, home, away int, scope string) domain.LegResult {
	lower, upper := quarterBounds(line)
	halfStake := stake.Div(two)

	_, lowerPayout := handicapOutcome(lower, side, home, away, halfStake, leg.Odds)
	_, upperPayout := handicapOutcome(upper, side, home, away, halfStake, leg.Odds)
	total := lowerPayout.Add(upperPayout)

	status := domain.StatusLost
	switch total.Cmp(stake) {
	case 1:
		status = domain.StatusWon
	case 0:
		status = domain.StatusPush
	}

	reason := fmt.Sprintf("%s quarter handicap %s on %s split %s & %s: score %d-%d, combined payout %s",
		scope, line, side, lower, upper, home, away, total)
	r := handicapResult(leg, def, status, total, reason, home, away)
	r.Debug.MatchedRule = "quarter_handicap_split"
	return r
}

// handicapOutcome settles one half/integer-line handicap sub-bet and
// returns its status and payout.
func handicapOutcome(line decimal.Decimal, side domain.Side, home, away int, stake, odds decimal.Decimal) (domain.WagerStatus, decimal.Decimal) {
	adjHome := decimal.NewFromInt(int64(home))
	adjAway := decimal.NewFromInt(int64(away))
	if side == domain.SideHome {
		adjHome = adjHome.Add(line)
	} else {
		adjAway = adjAway.Add(line)
	}

	cmp := adjHome.Cmp(adjAway)
	if cmp == 0 {
		return domain.StatusPush, stake
	}
	won := (side == domain.SideHome && cmp > 0) || (side == domain.SideAway && cmp < 0)
	if won {
		return domain.StatusWon, stake.Mul(odds)
	}
	return domain.StatusLost, decimal.Zero
}

// settleThreeWayHandicap applies an integer line and settles 1X2 on the
// adjusted score. There is no push: the adjusted draw is its own selection.
func settleThreeWayHandicap(leg domain.Leg, def domain.MarketDefinition, stake decimal.Decimal, out *domain.MatchOutcome) domain.LegResult {
	if def.Line == nil {
		return errorLeg(leg, def, domain.ErrValidation("three-way handicap market has no line"))
	}
	line := *def.Line
	if !line.IsInteger() {
		return errorLeg(leg, def, domain.ErrValidation(fmt.Sprintf("three-way handicap line %s is not a whole number", line)))
	}
	selection := market.SelectionSide(strings.ToLower(leg.OutcomeLabel))
	if selection == domain.SideNone {
		return errorLeg(leg, def, domain.ErrValidation(fmt.Sprintf("selection %q is not home/draw/away", leg.OutcomeLabel)))
	}

	// The line is quoted for the home side; "Home -1" shifts home down.
	adjHome := decimal.NewFromInt(int64(out.HomeScore)).Add(line)
	adjAway := decimal.NewFromInt(int64(out.AwayScore))
	adjWinner := domain.SideDraw
	switch adjHome.Cmp(adjAway) {
	case 1:
		adjWinner = domain.SideHome
	case -1:
		adjWinner = domain.SideAway
	}

	reason := fmt.Sprintf("three-way handicap %s: adjusted %s-%d, winner %s, selection %s",
		line, adjHome, out.AwayScore, adjWinner, selection)
	if selection == adjWinner {
		return wonLeg(leg, def, stake, reason, out.HomeScore, out.AwayScore)
	}
	return lostLeg(leg, def, reason, out.HomeScore, out.AwayScore)
}

// settleGoalLine settles an over/under with asian semantics: whole lines
// push on equality and quarter lines split like quarter handicaps.
func settleGoalLine(leg domain.Leg, def domain.MarketDefinition, stake decimal.Decimal, out *domain.MatchOutcome) domain.LegResult {
	if def.Line == nil {
		return errorLeg(leg, def, domain.ErrValidation("goal line market has no line"))
	}
	over, ok := overUnder(leg.OutcomeLabel)
	if !ok {
		return errorLeg(leg, def, domain.ErrValidation(fmt.Sprintf("selection %q is not over/under", leg.OutcomeLabel)))
	}

	goals := out.TotalGoals()
	scope := "full time"
	if def.Half > 0 {
		h, a, hasHT := out.HalfScores(def.Half)
		if !hasHT {
			return voidLeg(leg, def, stake, domain.ErrIncompleteMatchData(leg.MatchID, "half-time score unavailable"))
		}
		goals = h + a
		scope = fmt.Sprintf("half %d", def.Half)
	}
	line := *def.Line

	if isQuarterLine(line) {
		lower, upper := quarterBounds(line)
		halfStake := stake.Div(two)
		_, lowerPayout := totalsOutcome(lower, over, goals, halfStake, leg.Odds)
		_, upperPayout := totalsOutcome(upper, over, goals, halfStake, leg.Odds)
		total := lowerPayout.Add(upperPayout)

		status := domain.StatusLost
		switch total.Cmp(stake) {
		case 1:
			status = domain.StatusWon
		case 0:
			status = domain.StatusPush
		}
		reason := fmt.Sprintf("%s goal line %s split %s & %s: %d goals, combined payout %s",
			scope, line, lower, upper, goals, total)
		r := handicapResult(leg, def, status, total, reason, out.HomeScore, out.AwayScore)
		r.Debug.MatchedRule = "quarter_goal_line_split"
		return r
	}

	status, payout := totalsOutcome(line, over, goals, stake, leg.Odds)
	direction := "under"
	if over {
		direction = "over"
	}
	reason := fmt.Sprintf("%s goal line %s %s: %d goals", scope, direction, line, goals)
	return handicapResult(leg, def, status, payout, reason, out.HomeScore, out.AwayScore)
}

// totalsOutcome settles one over/under sub-bet against a whole or half
// line. Equality pushes (only reachable on whole lines).
func totalsOutcome(line decimal.Decimal, over bool, actual int, stake, odds decimal.Decimal) (domain.WagerStatus, decimal.Decimal) {
	cmp := decimal.NewFromInt(int64(actual)).Cmp(line)
	if cmp == 0 {
		return domain.StatusPush, stake
	}
	won := (over && cmp > 0) || (!over && cmp < 0)
	if won {
		return domain.StatusWon, stake.Mul(odds)
	}
	return domain.StatusLost, decimal.Zero
}

// overUnder parses an over/under selection token.
func overUnder(label string) (over, ok bool) {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "over"):
		return true, true
	case strings.Contains(l, "under"):
		return false, true
	}
	return false, false
}

func handicapResult(leg domain.Leg, def domain.MarketDefinition, status domain.WagerStatus, payout decimal.Decimal, reason string, home, away int) domain.LegResult {
	return domain.LegResult{
		MatchID:     leg.MatchID,
		SelectionID: leg.SelectionID,
		Status:      status,
		Payout:      payout,
		Odds:        leg.Odds,
		Reason:      reason,
		Debug:       debugInfo(def, string(def.Code), home, away),
	}
}
