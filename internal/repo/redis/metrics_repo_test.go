package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/RCDNC/swipedeck/internal/domain/model"
	metricssvc "github.com/RCDNC/swipedeck/internal/services/metrics"
)

func TestMetricsRepoRoundTrip(t *testing.T) {
	mr, client := newMiniRedis(t)
	repo := NewMetricsRepo(client)
	ctx := context.Background()

	if _, err := repo.Get(ctx, "u-1"); !errors.Is(err, metricssvc.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	resetAt := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	mr.SetTime(resetAt.Add(-6 * time.Hour))
	want := model.QuotaState{
		LikesUsed: 3, LikesLimit: 500,
		SuperLikesUsed: 1, SuperLikesLimit: 5,
		RewindsUsed: 0, RewindsLimit: 3,
		Premium: true, ResetAt: resetAt,
	}
	if err := repo.Save(ctx, "u-1", want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.Get(ctx, "u-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != want {
		t.Fatalf("unexpected quota: %+v", got)
	}

	ttl := mr.TTL(metricsKey("u-1"))
	if ttl <= 6*time.Hour || ttl > 7*time.Hour+time.Minute {
		t.Fatalf("expected ttl until reset plus grace, got %s", ttl)
	}
}

func TestMetricsRepoIgnoresStaleDay(t *testing.T) {
	_, client := newMiniRedis(t)
	repo := NewMetricsRepo(client)
	ctx := context.Background()

	today := time.Now().UTC().Add(12 * time.Hour).Truncate(time.Second)
	yesterday := today.Add(-24 * time.Hour)

	if err := repo.Save(ctx, "u-1", model.QuotaState{LikesUsed: 1, LikesLimit: 35, ResetAt: today}); err != nil {
		t.Fatalf("save today: %v", err)
	}
	if err := repo.Save(ctx, "u-1", model.QuotaState{LikesUsed: 30, LikesLimit: 35, ResetAt: yesterday}); err != nil {
		t.Fatalf("save stale: %v", err)
	}

	got, err := repo.Get(ctx, "u-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.LikesUsed != 1 || !got.ResetAt.Equal(today) {
		t.Fatalf("stale write must not win, got %+v", got)
	}
}

func TestMetricsRepoRejectsEmptyUser(t *testing.T) {
	_, client := newMiniRedis(t)
	if err := NewMetricsRepo(client).Save(context.Background(), "", model.QuotaState{}); !errors.Is(err, metricssvc.ErrInvalidUserID) {
		t.Fatalf("expected invalid user id, got %v", err)
	}
	if _, err := NewMetricsRepo(nil).Get(context.Background(), "u-1"); err == nil {
		t.Fatalf("expected nil client error")
	}
}

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}
