package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/oddsward/platform/internal/domain"
	"github.com/oddsward/platform/internal/infra"
)

type wagerRepo struct{}

// NewWagerRepository returns a pgx-backed WagerRepository.
func NewWagerRepository() WagerRepository {
	return &wagerRepo{}
}

const wagerColumns = `id, user_id, bet_type, legs, stake, status, system_config, payout, reason, placed_at, settled_at`

func (r *wagerRepo) Create(ctx context.Context, db DBTX, w *domain.Wager) error {
	legs, err := json.Marshal(w.Legs)
	if err != nil {
		return fmt.Errorf("marshal legs: %w", err)
	}
	var system []byte
	if w.System != nil {
		if system, err = json.Marshal(w.System); err != nil {
			return fmt.Errorf("marshal system config: %w", err)
		}
	}

	_, err = db.Exec(ctx, `
		INSERT INTO wagers (id, user_id, bet_type, legs, stake, status, system_config, payout, reason, placed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		w.ID,
		w.UserID,
		w.BetType,
		legs,
		infra.DecimalToNumeric(w.Stake),
		w.Status,
		system,
		infra.DecimalToNumeric(w.Payout),
		w.Reason,
		w.PlacedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wager: %w", err)
	}
	return nil
}

func (r *wagerRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Wager, error) {
	row := db.QueryRow(ctx, `SELECT `+wagerColumns+` FROM wagers WHERE id = $1`, id)
	w, err := scanWager(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (r *wagerRepo) ListByUser(ctx context.Context, db DBTX, userID uuid.UUID, limit int) ([]domain.Wager, error) {
	rows, err := db.Query(ctx, `
		SELECT `+wagerColumns+` FROM wagers
		WHERE user_id = $1
		ORDER BY placed_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list wagers: %w", err)
	}
	defer rows.Close()
	return collectWagers(rows)
}

func (r *wagerRepo) ListOpenByUser(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.Wager, error) {
	rows, err := db.Query(ctx, `
		SELECT `+wagerColumns+` FROM wagers
		WHERE user_id = $1 AND status = $2`, userID, domain.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("list open wagers: %w", err)
	}
	defer rows.Close()
	return collectWagers(rows)
}

// ListSettleable returns pending wagers whose legs all reference a finished
// match, so the sweep never settles on partial data. Legs are stored as
// jsonb; the lateral join expands them against match_outcomes.
func (r *wagerRepo) ListSettleable(ctx context.Context, db DBTX, limit int) ([]domain.Wager, error) {
	rows, err := db.Query(ctx, `
		SELECT `+wagerColumns+` FROM wagers w
		WHERE w.status = $1
		  AND NOT EXISTS (
			SELECT 1
			FROM jsonb_array_elements(w.legs) AS leg
			LEFT JOIN match_outcomes mo ON mo.match_id = leg->>'match_id'
			WHERE mo.match_id IS NULL OR NOT mo.finished
		  )
		ORDER BY w.placed_at
		LIMIT $2`, domain.StatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list settleable wagers: %w", err)
	}
	defer rows.Close()
	return collectWagers(rows)
}

// ApplySettlement is guarded on status so a concurrent sweep cannot settle
// the same wager twice.
func (r *wagerRepo) ApplySettlement(ctx context.Context, tx pgx.Tx, res domain.SettlementResult) error {
	tag, err := tx.Exec(ctx, `
		UPDATE wagers
		SET status = $1, payout = $2, reason = $3, settled_at = $4
		WHERE id = $5 AND status = $6`,
		res.Status,
		infra.DecimalToNumeric(res.Payout),
		res.Reason,
		res.ProcessedAt,
		res.WagerID,
		domain.StatusPending,
	)
	if err != nil {
		return fmt.Errorf("apply settlement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict("wager is not pending")
	}
	return nil
}

func scanWager(row pgx.Row) (*domain.Wager, error) {
	var w domain.Wager
	var legs []byte
	var system []byte
	var stakeNum, payoutNum pgtype.Numeric
	err := row.Scan(&w.ID, &w.UserID, &w.BetType, &legs, &stakeNum, &w.Status,
		&system, &payoutNum, &w.Reason, &w.PlacedAt, &w.SettledAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan wager: %w", err)
	}

	if err := json.Unmarshal(legs, &w.Legs); err != nil {
		return nil, fmt.Errorf("unmarshal legs: %w", err)
	}
	if len(system) > 0 {
		w.System = &domain.SystemConfig{}
		if err := json.Unmarshal(system, w.System); err != nil {
			return nil, fmt.Errorf("unmarshal system config: %w", err)
		}
	}
	if w.Stake, err = infra.NumericToDecimal(stakeNum); err != nil {
		return nil, fmt.Errorf("convert stake: %w", err)
	}
	if w.Payout, err = infra.NumericToDecimal(payoutNum); err != nil {
		return nil, fmt.Errorf("convert payout: %w", err)
	}
	return &w, nil
}

func collectWagers(rows pgx.Rows) ([]domain.Wager, error) {
	var out []domain.Wager
	for rows.Next() {
		w, err := scanWager(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wagers: %w", err)
	}
	return out, nil
}
