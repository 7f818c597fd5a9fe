package metrics

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/RCDNC/swipedeck/internal/domain/model"
)

var (
	ErrNotFound        = errors.New("quota state not found")
	ErrInvalidUserID   = errors.New("invalid user id")
	ErrDependenciesNil = errors.New("metrics dependencies are not configured")
)

type Store interface {
	Get(ctx context.Context, userID string) (model.QuotaState, error)
	Save(ctx context.Context, userID string, quota model.QuotaState) error
}

// Layered reads through a cache in front of the authoritative source and
// writes the cache plus an optional durable store. Cache read failures and
// durable write failures are logged and do not fail the call.
type Layered struct {
	source   Store
	cache    Store
	durable  Store
	fallback func(userID string) model.QuotaState
	logger   *zap.Logger
}

type LayeredDependencies struct {
	Source  Store
	Cache   Store
	Durable Store

	// Fallback, when set, answers a source miss for users with no saved quota.
	Fallback func(userID string) model.QuotaState
	Logger   *zap.Logger
}

func NewLayered(deps LayeredDependencies) *Layered {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Layered{
		source:   deps.Source,
		cache:    deps.Cache,
		durable:  deps.Durable,
		fallback: deps.Fallback,
		logger:   logger,
	}
}

func (l *Layered) Get(ctx context.Context, userID string) (model.QuotaState, error) {
	if strings.TrimSpace(userID) == "" {
		return model.QuotaState{}, ErrInvalidUserID
	}
	if l.source == nil && l.cache == nil {
		return model.QuotaState{}, ErrDependenciesNil
	}

	if l.cache != nil {
		quota, err := l.cache.Get(ctx, userID)
		switch {
		case err == nil:
			return quota, nil
		case errors.Is(err, ErrNotFound):
		default:
			l.logger.Warn("metrics cache read failed", zap.String("user_id", userID), zap.Error(err))
		}
		if l.source == nil {
			return model.QuotaState{}, err
		}
	}

	quota, err := l.source.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) && l.fallback != nil {
		return l.fallback(userID), nil
	}
	if err != nil {
		return model.QuotaState{}, fmt.Errorf("get quota: %w", err)
	}
	if l.cache != nil {
		if err := l.cache.Save(ctx, userID, quota); err != nil {
			l.logger.Warn("metrics cache fill failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return quota, nil
}

func (l *Layered) Save(ctx context.Context, userID string, quota model.QuotaState) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidUserID
	}

	var firstErr error
	if l.cache != nil {
		if err := l.cache.Save(ctx, userID, quota); err != nil {
			firstErr = fmt.Errorf("save cached quota: %w", err)
		}
	}
	if l.durable != nil {
		if err := l.durable.Save(ctx, userID, quota); err != nil {
			l.logger.Warn("durable quota save failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return firstErr
}
