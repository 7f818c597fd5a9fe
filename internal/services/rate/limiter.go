package rate

import (
	"context"
	"errors"
	"strings"
	"time"
)

const (
	minuteWindow = time.Minute
	tenSecWindow = 10 * time.Second
)

var (
	ErrInvalidKey = errors.New("invalid rate limit key")
	ErrStoreNil   = errors.New("rate limiter store is nil")
)

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	WindowState(ctx context.Context, key string) (int64, time.Duration, error)
}

type Config struct {
	PerMinute int
	Per10Sec  int
}

// Limiter throttles positive swipes with two fixed windows. A zero limit
// disables its window.
type Limiter struct {
	store     WindowStore
	perMinute int
	per10Sec  int
}

func NewLimiter(store WindowStore, cfg Config) *Limiter {
	return &Limiter{
		store:     store,
		perMinute: max(cfg.PerMinute, 0),
		per10Sec:  max(cfg.Per10Sec, 0),
	}
}

func (l *Limiter) AllowLike(ctx context.Context, key string) (int64, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return 0, false, ErrInvalidKey
	}
	if l.store == nil {
		return 0, false, ErrStoreNil
	}

	var retryAfterSec int64
	for _, w := range l.windows(key) {
		count, ttl, err := l.store.IncrementWindow(ctx, w.key, w.length)
		if err != nil {
			return 0, false, err
		}
		if count > int64(w.limit) {
			retryAfterSec = max(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if retryAfterSec > 0 {
		return retryAfterSec, false, nil
	}
	return 0, true, nil
}

// RetryAfter reports how long the key stays blocked without counting a hit.
func (l *Limiter) RetryAfter(ctx context.Context, key string) (int64, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return 0, ErrInvalidKey
	}
	if l.store == nil {
		return 0, ErrStoreNil
	}

	var retryAfterSec int64
	for _, w := range l.windows(key) {
		count, ttl, err := l.store.WindowState(ctx, w.key)
		if err != nil {
			return 0, err
		}
		if count >= int64(w.limit) {
			retryAfterSec = max(retryAfterSec, ceilSeconds(ttl))
		}
	}
	return retryAfterSec, nil
}

type window struct {
	key    string
	length time.Duration
	limit  int
}

func (l *Limiter) windows(key string) []window {
	out := make([]window, 0, 2)
	if l.perMinute > 0 {
		out = append(out, window{key: "rate:swipes:min:" + key, length: minuteWindow, limit: l.perMinute})
	}
	if l.per10Sec > 0 {
		out = append(out, window{key: "rate:swipes:10s:" + key, length: tenSecWindow, limit: l.per10Sec})
	}
	return out
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	return max(sec, 1)
}
