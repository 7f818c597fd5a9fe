package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RCDNC/swipedeck/internal/domain/model"
	"github.com/RCDNC/swipedeck/internal/domain/rules"
	metricssvc "github.com/RCDNC/swipedeck/internal/services/metrics"
)

// QuotaRepo keeps one quotas_daily row per user and quota day.
type QuotaRepo struct {
	pool *pgxpool.Pool
	loc  *time.Location
	now  func() time.Time
}

func NewQuotaRepo(pool *pgxpool.Pool, loc *time.Location) *QuotaRepo {
	if loc == nil {
		loc = time.UTC
	}
	return &QuotaRepo{pool: pool, loc: loc, now: time.Now}
}

func (r *QuotaRepo) Get(ctx context.Context, userID string) (model.QuotaState, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return model.QuotaState{}, metricssvc.ErrInvalidUserID
	}
	if r.pool == nil {
		return model.QuotaState{}, metricssvc.ErrNotFound
	}

	var q model.QuotaState
	err := r.pool.QueryRow(ctx, `
SELECT
	likes_used,
	likes_limit,
	super_likes_used,
	super_likes_limit,
	rewinds_used,
	rewinds_limit,
	premium,
	reset_at
FROM quotas_daily
WHERE user_id = $1 AND reset_at > $2
ORDER BY day_key DESC
LIMIT 1
`, userID, r.now().UTC()).Scan(
		&q.LikesUsed,
		&q.LikesLimit,
		&q.SuperLikesUsed,
		&q.SuperLikesLimit,
		&q.RewindsUsed,
		&q.RewindsLimit,
		&q.Premium,
		&q.ResetAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.QuotaState{}, metricssvc.ErrNotFound
		}
		return model.QuotaState{}, fmt.Errorf("get daily quota: %w", err)
	}

	q.ResetAt = q.ResetAt.UTC()
	return q.Normalized(), nil
}

// Save upserts the row of the quota day that ends at quota.ResetAt. Counters
// only move forward within a day.
func (r *QuotaRepo) Save(ctx context.Context, userID string, quota model.QuotaState) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return metricssvc.ErrInvalidUserID
	}
	if r.pool == nil {
		return nil
	}

	quota = quota.Normalized()
	if quota.ResetAt.IsZero() {
		quota.ResetAt = rules.NextResetAt(r.now().UTC(), r.loc)
	}
	dayKey := rules.DayKey(quota.ResetAt.Add(-time.Second), r.loc)

	_, err := r.pool.Exec(ctx, `
INSERT INTO quotas_daily (
	user_id,
	day_key,
	tz_name,
	likes_used,
	likes_limit,
	super_likes_used,
	super_likes_limit,
	rewinds_used,
	rewinds_limit,
	premium,
	reset_at,
	updated_at
) VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
ON CONFLICT (user_id, day_key) DO UPDATE SET
	likes_used = EXCLUDED.likes_used,
	likes_limit = EXCLUDED.likes_limit,
	super_likes_used = EXCLUDED.super_likes_used,
	super_likes_limit = EXCLUDED.super_likes_limit,
	rewinds_used = EXCLUDED.rewinds_used,
	rewinds_limit = EXCLUDED.rewinds_limit,
	premium = EXCLUDED.premium,
	tz_name = EXCLUDED.tz_name,
	updated_at = NOW()
`,
		userID,
		dayKey,
		r.loc.String(),
		quota.LikesUsed,
		quota.LikesLimit,
		quota.SuperLikesUsed,
		quota.SuperLikesLimit,
		quota.RewindsUsed,
		quota.RewindsLimit,
		quota.Premium,
		quota.ResetAt,
	)
	if err != nil {
		return fmt.Errorf("upsert daily quota: %w", err)
	}

	return nil
}
