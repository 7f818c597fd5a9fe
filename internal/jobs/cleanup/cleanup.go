package cleanup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const defaultInterval = time.Minute

type idleEvictor interface {
	EvictIdle(ctx context.Context) (int, error)
}

// Job drops swipe sessions that have been idle for too long.
type Job struct {
	sessions idleEvictor
	interval time.Duration
	logger   *zap.Logger
}

func New(sessions idleEvictor, interval time.Duration, logger *zap.Logger) *Job {
	if interval <= 0 {
		interval = defaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Job{
		sessions: sessions,
		interval: interval,
		logger:   logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.sessions == nil {
		return nil
	}

	evicted, err := j.sessions.EvictIdle(ctx)
	if err != nil {
		return fmt.Errorf("evict idle sessions: %w", err)
	}
	if evicted > 0 {
		j.logger.Info("cleanup idle sessions completed", zap.Int("evicted", evicted))
	}
	return nil
}

// Loop runs the job immediately and then on every tick until ctx is done.
// Failed passes are logged and retried on the next tick.
func (j *Job) Loop(ctx context.Context) {
	j.runLogged(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.runLogged(ctx)
		}
	}
}

func (j *Job) runLogged(ctx context.Context) {
	if err := j.Run(ctx); err != nil {
		j.logger.Warn("cleanup pass failed", zap.Error(err))
	}
}
