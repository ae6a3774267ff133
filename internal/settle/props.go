package settle

import (
	"fmt"
	"strings"

	"github.com/oddsward/platform/internal/domain"
	"github.com/shopspring/decimal"
)

// settleTotals settles classic over/under markets: match totals, per-half
// totals and team totals. Whole lines push on equality; a tie against a
// half line cannot happen with integer scores and is reported as an
// arithmetic fault rather than guessed around.
func settleTotals(leg domain.Leg, def domain.MarketDefinition, stake decimal.Decimal, out *domain.MatchOutcome) domain.LegResult {
	if def.Line == nil {
		return errorLeg(leg, def, domain.ErrValidation("totals market has no line"))
	}
	over, ok := overUnder(leg.OutcomeLabel)
	if !ok {
		return errorLeg(leg, def, domain.ErrValidation(fmt.Sprintf("selection %q is not over/under", leg.OutcomeLabel)))
	}

	actual := out.TotalGoals()
	scope := "match"
	switch {
	case def.Code == domain.CodeTeamTotals:
		side := def.Side
		if side != domain.SideHome && side != domain.SideAway {
			return errorLeg(leg, def, domain.ErrValidation("team totals market does not name a team"))
		}
		actual = out.TeamScore(side)
		scope = string(side) + " team"
	case def.Code == domain.CodeHalfTotals || def.Half > 0:
		h, a, hasHT := out.HalfScores(def.Half)
		if !hasHT {
			return voidLeg(leg, def, stake, domain.ErrIncompleteMatchData(leg.MatchID, "half-time score unavailable"))
		}
		actual = h + a
		scope = fmt.Sprintf("half %d", def.Half)
	}

	line := *def.Line
	direction := "under"
	if over {
		direction = "over"
	}
	reason := fmt.Sprintf("%s goals %s %s: actual %d", scope, direction, line, actual)

	cmp := decimal.NewFromInt(int64(actual)).Cmp(line)
	switch {
	case cmp == 0 && line.IsInteger():
		return pushLeg(leg, def, stake, reason+", stake returned", out.HomeScore, out.AwayScore)
	case cmp == 0:
		return errorLeg(leg, def, domain.ErrArithmeticInconsistency(fmt.Sprintf("goal count %d ties fractional line %s", actual, line)))
	case (over && cmp > 0) || (!over && cmp < 0):
		return wonLeg(leg, def, stake, reason, out.HomeScore, out.AwayScore)
	}
	return lostLeg(leg, def, reason, out.HomeScore, out.AwayScore)
}

// settleTimeWindow counts events of the market's type inside an inclusive
// minute window and compares the count to the threshold. A market with no
// parsable window cannot be settled.
func settleTimeWindow(leg domain.Leg, def domain.MarketDefinition, stake decimal.Decimal, out *domain.MatchOutcome) domain.LegResult {
	if def.TimeRange == nil {
		return errorLeg(leg, def, domain.ErrValidation(fmt.Sprintf("market %q has no parsable minute window", leg.MarketName)))
	}
	if !out.Finished {
		return voidLeg(leg, def, stake, domain.ErrIncompleteMatchData(leg.MatchID, "match data incomplete"))
	}

	count := 0
	for _, ev := range out.Events {
		if ev.Type == def.EventType && ev.Minute >= def.TimeRange.Start && ev.Minute <= def.TimeRange.End {
			count++
		}
	}
	reason := fmt.Sprintf("%s in minutes %d-%d: %d", def.EventType, def.TimeRange.Start, def.TimeRange.End, count)

	if def.Line != nil {
		over, ok := overUnder(leg.OutcomeLabel)
		if !ok {
			return errorLeg(leg, def, domain.ErrValidation(fmt.Sprintf("selection %q is not over/under", leg.OutcomeLabel)))
		}
		cmp := decimal.NewFromInt(int64(count)).Cmp(*def.Line)
		switch {
		case cmp == 0 && def.Line.IsInteger():
			return pushLeg(leg, def, stake, reason+", stake returned", out.HomeScore, out.AwayScore)
		case (over && cmp > 0) || (!over && cmp < 0):
			return wonLeg(leg, def, stake, reason, out.HomeScore, out.AwayScore)
		default:
			return lostLeg(leg, def, reason, out.HomeScore, out.AwayScore)
		}
	}

	// No line: yes/no on at least one event in the window.
	want, ok := yesNo(leg.OutcomeLabel)
	if !ok {
		return errorLeg(leg, def, domain.ErrValidation(fmt.Sprintf("selection %q is not yes/no", leg.OutcomeLabel)))
	}
	if (count > 0) == want {
		return wonLeg(leg, def, stake, reason, out.HomeScore, out.AwayScore)
	}
	return lostLeg(leg, def, reason, out.HomeScore, out.AwayScore)
}

// settlePlayerScorer settles anytime/first/last goalscorer markets. Player
// props need the full event stream, so an unfinished match voids instead of
// settling on partial data. A finished match with no recorded events means
// zero occurrences, not missing data.
func settlePlayerScorer(leg domain.Leg, def domain.MarketDefinition, stake decimal.Decimal, out *domain.MatchOutcome) domain.LegResult {
	if !out.Finished {
		return voidLeg(leg, def, stake, domain.ErrIncompleteMatchData(leg.MatchID, "match data incomplete"))
	}

	goals := playerEvents(leg, out, domain.EventGoal)
	marketLower := strings.ToLower(leg.MarketName)

	var hit bool
	var kind string
	switch {
	case strings.Contains(marketLower, "first"):
		kind = "first goal"
		first := earliestEvent(out.Events, domain.EventGoal)
		hit = first != nil && eventIsPlayer(*first, leg)
	case strings.Contains(marketLower, "last"):
		kind = "last goal"
		last := latestEvent(out.Events, domain.EventGoal)
		hit = last != nil && eventIsPlayer(*last, leg)
	default:
		kind = "anytime goal"
		hit = len(goals) > 0
	}

	reason := fmt.Sprintf("%s by %s: scored %d", kind, playerName(leg), len(goals))
	if hit {
		return wonLeg(leg, def, stake, reason, out.HomeScore, out.AwayScore)
	}
	return lostLeg(leg, def, reason, out.HomeScore, out.AwayScore)
}

// settlePlayerShots settles a player's shots-on-target line.
func settlePlayerShots(leg domain.Leg, def domain.MarketDefinition, stake decimal.Decimal, out *domain.MatchOutcome) domain.LegResult {
	if !out.Finished {
		return voidLeg(leg, def, stake, domain.ErrIncompleteMatchData(leg.MatchID, "match data incomplete"))
	}
	if def.Line == nil {
		return errorLeg(leg, def, domain.ErrValidation("player shots market has no line"))
	}
	over, ok := overUnder(leg.OutcomeLabel)
	if !ok {
		return errorLeg(leg, def, domain.ErrValidation(fmt.Sprintf("selection %q is not over/under", leg.OutcomeLabel)))
	}

	count := len(playerEvents(leg, out, domain.EventShotOnTarget))
	line := *def.Line
	reason := fmt.Sprintf("shots on target by %s: %d vs line %s", playerName(leg), count, line)

	cmp := decimal.NewFromInt(int64(count)).Cmp(line)
	switch {
	case cmp == 0 && line.IsInteger():
		return pushLeg(leg, def, stake, reason+", stake returned", out.HomeScore, out.AwayScore)
	case (over && cmp > 0) || (!over && cmp < 0):
		return wonLeg(leg, def, stake, reason, out.HomeScore, out.AwayScore)
	}
	return lostLeg(leg, def, reason, out.HomeScore, out.AwayScore)
}

// settlePlayerCards settles yes/no card markets for a player. Red-card
// markets only count red cards; plain card markets count any booking.
func settlePlayerCards(leg domain.Leg, def domain.MarketDefinition, stake decimal.Decimal, out *domain.MatchOutcome) domain.LegResult {
	if !out.Finished {
		return voidLeg(leg, def, stake, domain.ErrIncompleteMatchData(leg.MatchID, "match data incomplete"))
	}
	want, ok := yesNo(leg.OutcomeLabel)
	if !ok {
		return errorLeg(leg, def, domain.ErrValidation(fmt.Sprintf("selection %q is not yes/no", leg.OutcomeLabel)))
	}

	redOnly := strings.Contains(strings.ToLower(leg.MarketName), "red card")
	count := len(playerEvents(leg, out, domain.EventRedCard))
	label := "red cards"
	if !redOnly {
		count += len(playerEvents(leg, out, domain.EventCard))
		label = "cards"
	}

	reason := fmt.Sprintf("%s for %s: %d", label, playerName(leg), count)
	if (count > 0) == want {
		return wonLeg(leg, def, stake, reason, out.HomeScore, out.AwayScore)
	}
	return lostLeg(leg, def, reason, out.HomeScore, out.AwayScore)
}

// --- player event helpers ---

// eventIsPlayer matches an event to the leg's participant, preferring the
// numeric id when both sides carry one.
func eventIsPlayer(ev domain.MatchEvent, leg domain.Leg) bool {
	if leg.ParticipantID != nil && ev.PlayerID != nil {
		return *leg.ParticipantID == *ev.PlayerID
	}
	return leg.Participant != "" && strings.EqualFold(ev.Player, leg.Participant)
}

func playerEvents(leg domain.Leg, out *domain.MatchOutcome, typ domain.EventType) []domain.MatchEvent {
	var evs []domain.MatchEvent
	for _, ev := range out.Events {
		if ev.Type == typ && eventIsPlayer(ev, leg) {
			evs = append(evs, ev)
		}
	}
	return evs
}

func earliestEvent(events []domain.MatchEvent, typ domain.EventType) *domain.MatchEvent {
	var best *domain.MatchEvent
	for i := range events {
		if events[i].Type != typ {
			continue
		}
		if best == nil || events[i].Minute < best.Minute {
			best = &events[i]
		}
	}
	return best
}

func latestEvent(events []domain.MatchEvent, typ domain.EventType) *domain.MatchEvent {
	var best *domain.MatchEvent
	for i := range events {
		if events[i].Type != typ {
			continue
		}
		if best == nil || events[i].Minute >= best.Minute {
			best = &events[i]
		}
	}
	return best
}

func playerName(leg domain.Leg) string {
	if leg.Participant != "" {
		return leg.Participant
	}
	if leg.ParticipantID != nil {
		return fmt.Sprintf("player %d", *leg.ParticipantID)
	}
	return "unknown player"
}
