package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RCDNC/swipedeck/internal/domain/enums"
	"github.com/RCDNC/swipedeck/internal/domain/model"
)

// OutcomeRepo journals reconciled swipe outcomes and the matches they created.
type OutcomeRepo struct {
	pool *pgxpool.Pool
}

func NewOutcomeRepo(pool *pgxpool.Pool) *OutcomeRepo {
	return &OutcomeRepo{pool: pool}
}

func (r *OutcomeRepo) Record(ctx context.Context, userID string, outcome model.SwipeOutcome, at time.Time) error {
	userID = strings.TrimSpace(userID)
	if userID == "" || strings.TrimSpace(outcome.Candidate.ID) == "" {
		return fmt.Errorf("invalid swipe outcome payload")
	}
	if r.pool == nil {
		return nil
	}

	at = at.UTC()
	if at.IsZero() {
		at = time.Now().UTC()
	}

	return WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		batch := &pgx.Batch{}
		batch.Queue(`
INSERT INTO swipe_outcomes (
	user_id,
	target_id,
	decision,
	matched,
	created_at
) VALUES ($1, $2, $3, $4, $5)
`, userID, outcome.Candidate.ID, string(outcome.Decision), outcome.Matched, at)

		queued := 1
		if outcome.Matched && outcome.Match != nil {
			batch.Queue(`
INSERT INTO matches (
	id,
	user_id,
	target_id,
	message,
	matched_at
) VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO NOTHING
`, outcome.Match.ID, userID, outcome.Candidate.ID, outcome.Match.Message, outcome.Match.MatchedAt.UTC())
			queued++
		}

		results := tx.SendBatch(ctx, batch)
		for i := 0; i < queued; i++ {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return fmt.Errorf("journal swipe outcome item #%d: %w", i, err)
			}
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("close swipe outcome batch: %w", err)
		}
		return nil
	})
}

func (r *OutcomeRepo) ListRecent(ctx context.Context, userID string, limit int) ([]model.SwipeRecord, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if r.pool == nil {
		return []model.SwipeRecord{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	o.id,
	o.user_id,
	o.target_id,
	o.decision,
	o.matched,
	COALESCE(m.id, ''),
	o.created_at
FROM swipe_outcomes o
LEFT JOIN matches m ON m.user_id = o.user_id AND m.target_id = o.target_id
WHERE o.user_id = $1
ORDER BY o.created_at DESC, o.id DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list swipe outcomes: %w", err)
	}
	defer rows.Close()

	items := make([]model.SwipeRecord, 0, limit)
	for rows.Next() {
		var item model.SwipeRecord
		var decision string
		if err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.TargetID,
			&decision,
			&item.Matched,
			&item.MatchID,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan swipe outcome: %w", err)
		}
		item.Decision, _ = enums.ParseSwipeDecision(decision)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate swipe outcomes: %w", err)
	}

	return items, nil
}
