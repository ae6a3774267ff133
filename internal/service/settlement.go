package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oddsward/platform/internal/domain"
	"github.com/oddsward/platform/internal/infra"
	"github.com/oddsward/platform/internal/repository"
	"github.com/oddsward/platform/internal/settle"
)

// SettlementService drives the settlement sweep: it loads settleable
// wagers, computes results with the pure settlement core, and applies each
// result (wager update plus balance credit) in its own transaction.
type SettlementService struct {
	pool     *pgxpool.Pool
	users    repository.UserRepository
	wagers   repository.WagerRepository
	outcomes repository.OutcomeRepository
	producer *infra.KafkaProducer
	logger   *slog.Logger
	workers  int
	batch    int
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(
	pool *pgxpool.Pool,
	users repository.UserRepository,
	wagers repository.WagerRepository,
	outcomes repository.OutcomeRepository,
	producer *infra.KafkaProducer,
	logger *slog.Logger,
	workers, batchSize int,
) *SettlementService {
	return &SettlementService{
		pool:     pool,
		users:    users,
		wagers:   wagers,
		outcomes: outcomes,
		producer: producer,
		logger:   logger,
		workers:  workers,
		batch:    batchSize,
	}
}

// Sweep settles one batch of pending wagers. Per-wager failures are
// recorded in the stats and never abort the rest of the batch.
func (s *SettlementService) Sweep(ctx context.Context) (domain.BatchStats, error) {
	wagers, err := s.wagers.ListSettleable(ctx, s.pool, s.batch)
	if err != nil {
		return domain.BatchStats{}, domain.ErrInternal("list settleable wagers", err)
	}
	if len(wagers) == 0 {
		return domain.BatchStats{Total: 0}, nil
	}

	lookup := settle.OutcomeLookupFunc(func(ctx context.Context, matchIDs []string) (map[string]*domain.MatchOutcome, error) {
		return s.outcomes.FindByMatchIDs(ctx, s.pool, matchIDs)
	})
	results, stats, err := settle.Batch(ctx, wagers, lookup, s.workers)
	if err != nil {
		return stats, domain.ErrInternal("settle batch", err)
	}

	now := time.Now().UTC()
	for _, r := range results {
		r.ProcessedAt = now
		if err := s.apply(ctx, r); err != nil {
			s.logger.Error("apply settlement failed", "wager_id", r.WagerID, "error", err)
			stats.Errors = append(stats.Errors, domain.WagerError{WagerID: r.WagerID, Error: err.Error()})
			continue
		}
		if err := s.producer.PublishSettlement(ctx, r); err != nil {
			// Settlement already committed; publishing is best effort.
			s.logger.Warn("publish settlement event failed", "wager_id", r.WagerID, "error", err)
		}
	}

	s.logger.Info("settlement sweep complete",
		"total", stats.Total, "won", stats.Won, "lost", stats.Lost,
		"push", stats.Push, "void", stats.Void, "errored", stats.Errored)
	return stats, nil
}

// SettleWager settles one wager on demand (admin resettlement path).
func (s *SettlementService) SettleWager(ctx context.Context, wagerID uuid.UUID) (*domain.SettlementResult, error) {
	w, err := s.wagers.FindByID(ctx, s.pool, wagerID)
	if err != nil {
		return nil, domain.ErrInternal("find wager", err)
	}
	if w == nil {
		return nil, domain.ErrNotFound("wager", wagerID.String())
	}
	if w.Status.Terminal() {
		return nil, domain.ErrConflict("wager already settled")
	}

	ids := make([]string, 0, len(w.Legs))
	for _, leg := range w.Legs {
		ids = append(ids, leg.MatchID)
	}
	outcomes, err := s.outcomes.FindByMatchIDs(ctx, s.pool, ids)
	if err != nil {
		return nil, domain.ErrInternal("find outcomes", err)
	}

	r := settle.Settle(*w, outcomes)
	r.ProcessedAt = time.Now().UTC()
	if err := s.apply(ctx, r); err != nil {
		return nil, err
	}
	if err := s.producer.PublishSettlement(ctx, r); err != nil {
		s.logger.Warn("publish settlement event failed", "wager_id", r.WagerID, "error", err)
	}
	return &r, nil
}

// apply commits one settlement: the wager flips to its terminal status and
// any payout is credited atomically. Error results stay pending so a later
// sweep can retry after the data issue is fixed.
func (s *SettlementService) apply(ctx context.Context, r domain.SettlementResult) error {
	if r.Status == domain.StatusError || r.Status == domain.StatusPending {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := s.wagers.ApplySettlement(ctx, tx, r); err != nil {
		return err
	}
	if r.Payout.IsPositive() {
		w, err := s.wagers.FindByID(ctx, tx, r.WagerID)
		if err != nil {
			return domain.ErrInternal("find wager for credit", err)
		}
		if _, err := s.users.AdjustBalance(ctx, tx, w.UserID, r.Payout); err != nil {
			return domain.ErrInternal("credit payout", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}
	return nil
}

// Run loops Sweep on the configured interval until the context ends.
func (s *SettlementService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Error("settlement sweep failed", "error", err)
			}
		}
	}
}
