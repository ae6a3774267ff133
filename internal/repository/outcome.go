package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/oddsward/platform/internal/domain"
)

type outcomeRepo struct{}

// NewOutcomeRepository returns a pgx-backed OutcomeRepository.
func NewOutcomeRepository() OutcomeRepository {
	return &outcomeRepo{}
}

func (r *outcomeRepo) FindByMatchIDs(ctx context.Context, db DBTX, matchIDs []string) (map[string]*domain.MatchOutcome, error) {
	if len(matchIDs) == 0 {
		return map[string]*domain.MatchOutcome{}, nil
	}
	rows, err := db.Query(ctx, `
		SELECT match_id, home_score, away_score, ht_home_score, ht_away_score, minute, finished, events
		FROM match_outcomes
		WHERE match_id = ANY($1)`, matchIDs)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*domain.MatchOutcome, len(matchIDs))
	for rows.Next() {
		o, err := scanOutcome(rows)
		if err != nil {
			return nil, err
		}
		out[o.MatchID] = o
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return out, nil
}

func (r *outcomeRepo) Upsert(ctx context.Context, db DBTX, out *domain.MatchOutcome) error {
	events, err := json.Marshal(out.Events)
	if err != nil {
		return fmt.Errorf("marshal events: %w", err)
	}
	_, err = db.Exec(ctx, `
		INSERT INTO match_outcomes (match_id, home_score, away_score, ht_home_score, ht_away_score, minute, finished, events, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (match_id) DO UPDATE SET
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			ht_home_score = EXCLUDED.ht_home_score,
			ht_away_score = EXCLUDED.ht_away_score,
			minute = EXCLUDED.minute,
			finished = EXCLUDED.finished,
			events = EXCLUDED.events,
			updated_at = now()`,
		out.MatchID,
		out.HomeScore,
		out.AwayScore,
		out.HTHomeScore,
		out.HTAwayScore,
		out.Minute,
		out.Finished,
		events,
	)
	if err != nil {
		return fmt.Errorf("upsert outcome: %w", err)
	}
	return nil
}

func scanOutcome(row pgx.Row) (*domain.MatchOutcome, error) {
	var o domain.MatchOutcome
	var events []byte
	err := row.Scan(&o.MatchID, &o.HomeScore, &o.AwayScore, &o.HTHomeScore, &o.HTAwayScore, &o.Minute, &o.Finished, &events)
	if err != nil {
		return nil, fmt.Errorf("scan outcome: %w", err)
	}
	if len(events) > 0 {
		if err := json.Unmarshal(events, &o.Events); err != nil {
			return nil, fmt.Errorf("unmarshal events: %w", err)
		}
	}
	return &o, nil
}
