package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oddsward/platform/internal/domain"
	"github.com/shopspring/decimal"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// UserRepository provides access to users.
type UserRepository interface {
	// FindByID returns a user by ID, or nil when absent.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.User, error)

	// FindByEmail returns a user by email, or nil when absent.
	FindByEmail(ctx context.Context, db DBTX, email string) (*domain.User, error)

	// Create inserts a new user.
	Create(ctx context.Context, db DBTX, user *domain.User) error

	// LockForUpdate acquires a row-level lock (SELECT FOR UPDATE) and returns the user.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.User, error)

	// AdjustBalance applies a delta with server-side arithmetic and returns
	// the updated user.
	AdjustBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta decimal.Decimal) (*domain.User, error)
}

// WagerRepository provides access to wagers.
type WagerRepository interface {
	// Create inserts a wager with its legs.
	Create(ctx context.Context, db DBTX, w *domain.Wager) error

	// FindByID returns a wager by ID, or nil when absent.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Wager, error)

	// ListByUser returns a user's wagers, newest first.
	ListByUser(ctx context.Context, db DBTX, userID uuid.UUID, limit int) ([]domain.Wager, error)

	// ListOpenByUser returns the user's non-terminal wagers for admission checks.
	ListOpenByUser(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.Wager, error)

	// ListSettleable returns pending wagers whose referenced matches have
	// all finished, up to limit.
	ListSettleable(ctx context.Context, db DBTX, limit int) ([]domain.Wager, error)

	// ApplySettlement marks a wager terminal with its payout and reason.
	// A wager already terminal is left untouched.
	ApplySettlement(ctx context.Context, tx pgx.Tx, r domain.SettlementResult) error
}

// OutcomeRepository provides access to match_outcomes.
type OutcomeRepository interface {
	// FindByMatchIDs returns the outcomes present for the given matches,
	// keyed by match id. Missing matches have no entry.
	FindByMatchIDs(ctx context.Context, db DBTX, matchIDs []string) (map[string]*domain.MatchOutcome, error)

	// Upsert inserts or replaces a match outcome from the result feed.
	Upsert(ctx context.Context, db DBTX, out *domain.MatchOutcome) error
}
