package service

import (
	"context"
	"encoding/binary"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/oddsward/platform/internal/domain"
	"github.com/oddsward/platform/internal/guard"
	"github.com/oddsward/platform/internal/repository"
)

// PlacementService accepts new wagers: validation, admission against the
// user's open wagers, and the stake debit run in one transaction.
type PlacementService struct {
	pool   *pgxpool.Pool
	users  repository.UserRepository
	wagers repository.WagerRepository
	logger *slog.Logger
}

// NewPlacementService creates a new PlacementService.
func NewPlacementService(pool *pgxpool.Pool, users repository.UserRepository, wagers repository.WagerRepository, logger *slog.Logger) *PlacementService {
	return &PlacementService{pool: pool, users: users, wagers: wagers, logger: logger}
}

// PlaceInput holds a placement request. Stakes accept both JSON numbers
// and strings.
type PlaceInput struct {
	BetType domain.BetType       `json:"bet_type"`
	Legs    []domain.Leg         `json:"legs"`
	Stake   decimal.Decimal      `json:"stake"`
	System  *domain.SystemConfig `json:"system,omitempty"`
}

// Place validates, admits, debits, and persists a wager. Concurrent
// placements by the same user are serialized with a transaction-scoped
// advisory lock so the admission check always sees the latest open set.
func (s *PlacementService) Place(ctx context.Context, userID uuid.UUID, input PlaceInput) (*domain.Wager, error) {
	w := &domain.Wager{
		ID:       uuid.New(),
		UserID:   userID,
		BetType:  input.BetType,
		Legs:     input.Legs,
		Stake:    input.Stake,
		Status:   domain.StatusPending,
		System:   input.System,
		PlacedAt: time.Now().UTC(),
	}
	if err := domain.ValidateWager(*w); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := lockUser(ctx, tx, userID); err != nil {
		return nil, domain.ErrInternal("acquire placement lock", err)
	}

	open, err := s.wagers.ListOpenByUser(ctx, tx, userID)
	if err != nil {
		return nil, domain.ErrInternal("list open wagers", err)
	}
	if d := guard.CheckAdmission(*w, open); !d.Allowed {
		return nil, domain.ErrConflict(d.Reason)
	}

	user, err := s.users.LockForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, domain.ErrInternal("lock user", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound("user", userID.String())
	}
	stake := w.TotalStake()
	if user.Balance.LessThan(stake) {
		return nil, domain.ErrInsufficientBalance()
	}
	if _, err := s.users.AdjustBalance(ctx, tx, userID, stake.Neg()); err != nil {
		return nil, domain.ErrInternal("debit stake", err)
	}

	if err := s.wagers.Create(ctx, tx, w); err != nil {
		return nil, domain.ErrInternal("create wager", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("wager placed",
		"wager_id", w.ID, "user_id", userID, "bet_type", w.BetType,
		"legs", len(w.Legs), "stake", stake)
	return w, nil
}

// lockUser takes a transaction-scoped advisory lock derived from the user
// id. Released automatically at commit or rollback.
func lockUser(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	key := int64(binary.BigEndian.Uint64(userID[:8]))
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, key)
	return err
}
