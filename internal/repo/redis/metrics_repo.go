package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/RCDNC/swipedeck/internal/domain/model"
	metricssvc "github.com/RCDNC/swipedeck/internal/services/metrics"
)

const (
	metricsPrefix     = "metrics:quota:"
	metricsMaxRetries = 3
	// Cached quotas outlive their reset by a grace period so a late session
	// can still read yesterday's premium flag and limits.
	metricsGrace = time.Hour
)

type MetricsRepo struct {
	client *goredis.Client
	now    func() time.Time
}

func NewMetricsRepo(client *goredis.Client) *MetricsRepo {
	return &MetricsRepo{client: client, now: time.Now}
}

func (r *MetricsRepo) Get(ctx context.Context, userID string) (model.QuotaState, error) {
	if r.client == nil {
		return model.QuotaState{}, fmt.Errorf("redis client is nil")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return model.QuotaState{}, metricssvc.ErrInvalidUserID
	}

	values, err := r.client.HGetAll(ctx, metricsKey(userID)).Result()
	if err != nil {
		return model.QuotaState{}, fmt.Errorf("get quota hash: %w", err)
	}
	if len(values) == 0 {
		return model.QuotaState{}, metricssvc.ErrNotFound
	}
	return parseQuota(values)
}

// Save writes the quota under WATCH so that a state from an earlier day never
// overwrites a newer one written by another session.
func (r *MetricsRepo) Save(ctx context.Context, userID string, quota model.QuotaState) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return metricssvc.ErrInvalidUserID
	}

	key := metricsKey(userID)
	quota = quota.Normalized()
	expireAt := quota.ResetAt.Add(metricsGrace)
	if quota.ResetAt.IsZero() {
		expireAt = r.now().Add(24*time.Hour + metricsGrace)
	}

	txf := func(tx *goredis.Tx) error {
		stored, err := tx.HGet(ctx, key, "reset_at").Int64()
		if err != nil && err != goredis.Nil {
			return err
		}
		if err == nil && !quota.ResetAt.IsZero() && stored > quota.ResetAt.Unix() {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.HSet(ctx, key, quotaFields(quota))
			pipe.ExpireAt(ctx, key, expireAt)
			return nil
		})
		return err
	}

	for i := 0; i < metricsMaxRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		return fmt.Errorf("save quota hash: %w", err)
	}
	return fmt.Errorf("save quota hash: %w", goredis.TxFailedErr)
}

func metricsKey(userID string) string {
	return metricsPrefix + userID
}

func quotaFields(q model.QuotaState) map[string]interface{} {
	premium := "0"
	if q.Premium {
		premium = "1"
	}
	var resetAt int64
	if !q.ResetAt.IsZero() {
		resetAt = q.ResetAt.Unix()
	}
	return map[string]interface{}{
		"likes_used":        q.LikesUsed,
		"likes_limit":       q.LikesLimit,
		"super_likes_used":  q.SuperLikesUsed,
		"super_likes_limit": q.SuperLikesLimit,
		"rewinds_used":      q.RewindsUsed,
		"rewinds_limit":     q.RewindsLimit,
		"premium":           premium,
		"reset_at":          resetAt,
	}
}

func parseQuota(values map[string]string) (model.QuotaState, error) {
	var q model.QuotaState
	ints := []struct {
		field string
		dst   *int
	}{
		{"likes_used", &q.LikesUsed},
		{"likes_limit", &q.LikesLimit},
		{"super_likes_used", &q.SuperLikesUsed},
		{"super_likes_limit", &q.SuperLikesLimit},
		{"rewinds_used", &q.RewindsUsed},
		{"rewinds_limit", &q.RewindsLimit},
	}
	for _, f := range ints {
		raw, ok := values[f.field]
		if !ok {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return model.QuotaState{}, fmt.Errorf("parse %s: %w", f.field, err)
		}
		*f.dst = v
	}

	q.Premium = values["premium"] == "1"
	if raw := values["reset_at"]; raw != "" && raw != "0" {
		unix, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return model.QuotaState{}, fmt.Errorf("parse reset_at: %w", err)
		}
		q.ResetAt = time.Unix(unix, 0).UTC()
	}
	return q.Normalized(), nil
}
