package settle

import (
	"context"
	"fmt"
	"sync"

	"github.com/oddsward/platform/internal/domain"
	"github.com/shopspring/decimal"
)

// OutcomeLookup resolves match outcomes for the matches a batch of wagers
// references. Implementations return only the outcomes they have; missing
// matches simply have no map entry.
type OutcomeLookup interface {
	Outcomes(ctx context.Context, matchIDs []string) (map[string]*domain.MatchOutcome, error)
}

// OutcomeLookupFunc adapts a function to the OutcomeLookup interface.
type OutcomeLookupFunc func(ctx context.Context, matchIDs []string) (map[string]*domain.MatchOutcome, error)

func (f OutcomeLookupFunc) Outcomes(ctx context.Context, matchIDs []string) (map[string]*domain.MatchOutcome, error) {
	return f(ctx, matchIDs)
}

// Batch settles a slice of wagers with at most workers goroutines. One bad
// wager never takes the sweep down: panics are recovered into error
// results, and the per-wager results are returned in input order alongside
// the aggregate stats.
func Batch(ctx context.Context, wagers []domain.Wager, lookup OutcomeLookup, workers int) ([]domain.SettlementResult, domain.BatchStats, error) {
	stats := domain.BatchStats{Total: len(wagers)}
	if len(wagers) == 0 {
		return nil, stats, nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(wagers) {
		workers = len(wagers)
	}

	outcomes, err := lookup.Outcomes(ctx, matchIDs(wagers))
	if err != nil {
		return nil, stats, fmt.Errorf("look up outcomes: %w", err)
	}

	results := make([]domain.SettlementResult, len(wagers))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = settleRecovering(wagers[i], outcomes)
			}
		}()
	}

feed:
	for i := range wagers {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}
	for _, r := range results {
		stats.Record(r)
	}
	return results, stats, nil
}

// settleRecovering wraps Settle so a panic in one wager's settlement is
// isolated into an error result for that wager alone.
func settleRecovering(w domain.Wager, outcomes map[string]*domain.MatchOutcome) (res domain.SettlementResult) {
	defer func() {
		if r := recover(); r != nil {
			res = domain.SettlementResult{
				WagerID: w.ID,
				Status:  domain.StatusError,
				Payout:  decimal.Zero,
				Reason:  fmt.Sprintf("settlement panic: %v", r),
			}
		}
	}()
	return Settle(w, outcomes)
}

// matchIDs collects the distinct match ids a batch references, preserving
// first-seen order.
func matchIDs(wagers []domain.Wager) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, w := range wagers {
		for _, leg := range w.Legs {
			if _, ok := seen[leg.MatchID]; ok {
				continue
			}
			seen[leg.MatchID] = struct{}{}
			ids = append(ids, leg.MatchID)
		}
	}
	return ids
}
