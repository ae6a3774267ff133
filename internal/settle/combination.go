package settle

import (
	"fmt"

	"github.com/oddsward/platform/internal/domain"
	"github.com/shopspring/decimal"
)

// Settle computes the terminal settlement of a wager against the outcomes
// of the matches it references. outcomes maps match id to outcome; a
// missing or nil entry voids the affected leg. The returned result carries
// no timestamp so identical inputs always produce identical results.
func Settle(w domain.Wager, outcomes map[string]*domain.MatchOutcome) domain.SettlementResult {
	switch w.BetType {
	case domain.BetSingle:
		return settleSingle(w, outcomes)
	case domain.BetAccumulator:
		return settleAccumulator(w, outcomes)
	case domain.BetSystem:
		return settleSystem(w, outcomes)
	}
	return domain.SettlementResult{
		WagerID: w.ID,
		Status:  domain.StatusError,
		Payout:  decimal.Zero,
		Reason:  fmt.Sprintf("unknown bet type %q", w.BetType),
	}
}

func settleSingle(w domain.Wager, outcomes map[string]*domain.MatchOutcome) domain.SettlementResult {
	if len(w.Legs) != 1 {
		return domain.SettlementResult{
			WagerID: w.ID,
			Status:  domain.StatusError,
			Payout:  decimal.Zero,
			Reason:  fmt.Sprintf("single wager has %d legs", len(w.Legs)),
		}
	}
	leg := w.Legs[0]
	r := Leg(leg, w.Stake, outcomes[leg.MatchID])
	return domain.SettlementResult{
		WagerID: w.ID,
		Status:  r.Status,
		Payout:  r.Payout,
		Reason:  r.Reason,
		Debug:   r.Debug,
		Legs:    []domain.LegResult{r},
	}
}

// settleAccumulator evaluates every leg even after one loses, so the
// result records the full picture. Any lost leg loses the whole wager;
// void and push legs drop out of the odds product; a wager whose legs all
// dropped out voids with the stake refunded. A leg that cannot be settled
// fails the whole wager rather than guessing.
func settleAccumulator(w domain.Wager, outcomes map[string]*domain.MatchOutcome) domain.SettlementResult {
	legs, status, totalOdds := settleLegs(w.Legs, w.Stake, outcomes)
	res := domain.SettlementResult{
		WagerID: w.ID,
		Status:  status,
		Payout:  decimal.Zero,
		Legs:    legs,
	}

	switch status {
	case domain.StatusError:
		if r, ok := firstWithStatus(legs, domain.StatusError); ok {
			res.Reason = r.Reason
			res.Debug = r.Debug
		}
	case domain.StatusLost:
		res.Reason = fmt.Sprintf("%d of %d legs lost", countStatus(legs, domain.StatusLost), len(legs))
	case domain.StatusVoid:
		res.Payout = w.Stake
		res.Reason = "all legs void, stake returned"
	case domain.StatusPush:
		res.Payout = w.Stake
		res.Reason = "all effective legs pushed, stake returned"
	case domain.StatusWon:
		res.Payout = w.Stake.Mul(totalOdds)
		res.Reason = fmt.Sprintf("all effective legs won at combined odds %s", totalOdds)
	}
	return res
}

// settleLegs settles each leg at the notional stake and aggregates the
// accumulator status plus the effective odds product (won legs contribute
// their odds, push/void legs contribute 1).
func settleLegs(legs []domain.Leg, stake decimal.Decimal, outcomes map[string]*domain.MatchOutcome) ([]domain.LegResult, domain.WagerStatus, decimal.Decimal) {
	results := make([]domain.LegResult, 0, len(legs))
	totalOdds := decimal.NewFromInt(1)
	won, lost, errored := 0, 0, 0

	for _, leg := range legs {
		r := Leg(leg, stake, outcomes[leg.MatchID])
		results = append(results, r)
		switch r.Status {
		case domain.StatusWon:
			won++
			totalOdds = totalOdds.Mul(r.Odds)
		case domain.StatusLost:
			lost++
		case domain.StatusError:
			errored++
		}
	}

	switch {
	case errored > 0:
		return results, domain.StatusError, totalOdds
	case lost > 0:
		return results, domain.StatusLost, totalOdds
	case won > 0:
		return results, domain.StatusWon, totalOdds
	case countStatus(results, domain.StatusPush) > 0:
		return results, domain.StatusPush, totalOdds
	}
	return results, domain.StatusVoid, totalOdds
}

// settleSystem generates every combination of the legs at each configured
// size, settles each as an independent accumulator at the unit stake, and
// pays the sum of the winning combinations. The per-combination breakdown
// is retained.
func settleSystem(w domain.Wager, outcomes map[string]*domain.MatchOutcome) domain.SettlementResult {
	if w.System == nil {
		return domain.SettlementResult{
			WagerID: w.ID,
			Status:  domain.StatusError,
			Payout:  decimal.Zero,
			Reason:  "system wager has no system configuration",
		}
	}
	cfg := *w.System
	sizes := cfg.CombinationSizes()
	if len(sizes) == 0 {
		return domain.SettlementResult{
			WagerID: w.ID,
			Status:  domain.StatusError,
			Payout:  decimal.Zero,
			Reason:  "system wager names no combination sizes",
		}
	}

	// Settle each leg once; combinations reuse the per-leg results.
	legs, _, _ := settleLegs(w.Legs, cfg.UnitStake, outcomes)
	for _, r := range legs {
		if r.Status == domain.StatusError {
			return domain.SettlementResult{
				WagerID: w.ID,
				Status:  domain.StatusError,
				Payout:  decimal.Zero,
				Reason:  r.Reason,
				Debug:   r.Debug,
				Legs:    legs,
			}
		}
	}

	var combos [][]int
	for _, k := range sizes {
		combos = append(combos, combinations(len(w.Legs), k)...)
	}
	results := make([]domain.CombinationResult, 0, len(combos))
	payout := decimal.Zero
	wins, losses := 0, 0
	for _, idx := range combos {
		cr := settleCombo(idx, legs, cfg.UnitStake)
		results = append(results, cr)
		payout = payout.Add(cr.Payout)
		switch cr.Status {
		case domain.StatusWon:
			wins++
		case domain.StatusLost:
			losses++
		}
	}

	// The payout is always the sum of the combination payouts; the status
	// alone depends on the win threshold.
	status := domain.StatusLost
	reason := fmt.Sprintf("%d of %d combinations won, %d needed", wins, len(combos), cfg.MinWins)
	switch {
	case wins >= cfg.MinWins:
		status = domain.StatusWon
	case wins == 0 && losses == 0:
		status = domain.StatusVoid
		reason = "all combinations returned their stake"
	}

	return domain.SettlementResult{
		WagerID:      w.ID,
		Status:       status,
		Payout:       payout,
		Reason:       reason,
		Legs:         legs,
		Combinations: results,
	}
}

// settleCombo folds pre-settled leg results into one combination staked at
// unitStake, with accumulator semantics.
func settleCombo(idx []int, legs []domain.LegResult, unitStake decimal.Decimal) domain.CombinationResult {
	totalOdds := decimal.NewFromInt(1)
	won, lost := 0, 0
	for _, i := range idx {
		switch legs[i].Status {
		case domain.StatusWon:
			won++
			totalOdds = totalOdds.Mul(legs[i].Odds)
		case domain.StatusLost:
			lost++
		}
	}

	cr := domain.CombinationResult{
		LegIndexes: idx,
		TotalOdds:  totalOdds,
		Payout:     decimal.Zero,
	}
	switch {
	case lost > 0:
		cr.Status = domain.StatusLost
		cr.Reason = "a leg lost"
	case won > 0:
		cr.Status = domain.StatusWon
		cr.Payout = unitStake.Mul(totalOdds)
		cr.Reason = fmt.Sprintf("won at combined odds %s", totalOdds)
	default:
		cr.Status = domain.StatusVoid
		cr.Payout = unitStake
		cr.Reason = "all legs void or pushed, stake returned"
	}
	return cr
}

// combinations returns every k-element index subset of [0, n) in
// lexicographic order, iteratively.
func combinations(n, k int) [][]int {
	if k <= 0 || k > n {
		return nil
	}
	out := make([][]int, 0, domain.CombinationCount(n, k))
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		out = append(out, append([]int(nil), idx...))
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return out
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

func countStatus(legs []domain.LegResult, st domain.WagerStatus) int {
	n := 0
	for _, r := range legs {
		if r.Status == st {
			n++
		}
	}
	return n
}

func firstWithStatus(legs []domain.LegResult, st domain.WagerStatus) (domain.LegResult, bool) {
	for _, r := range legs {
		if r.Status == st {
			return r, true
		}
	}
	return domain.LegResult{}, false
}
