package rules

import (
	"time"

	"github.com/RCDNC/swipedeck/internal/domain/model"
)

const (
	FreeLikesPerDay      = 35
	PlusLikesPerDay      = 500
	FreeSuperLikesPerDay = 1
	PlusSuperLikesPerDay = 5
	FreeRewindsPerDay    = 0
	PlusRewindsPerDay    = 3
)

type Limits struct {
	FreeLikesPerDay      int
	PlusLikesPerDay      int
	FreeSuperLikesPerDay int
	PlusSuperLikesPerDay int
	FreeRewindsPerDay    int
	PlusRewindsPerDay    int
}

func DefaultLimits() Limits {
	return Limits{
		FreeLikesPerDay:      FreeLikesPerDay,
		PlusLikesPerDay:      PlusLikesPerDay,
		FreeSuperLikesPerDay: FreeSuperLikesPerDay,
		PlusSuperLikesPerDay: PlusSuperLikesPerDay,
		FreeRewindsPerDay:    FreeRewindsPerDay,
		PlusRewindsPerDay:    PlusRewindsPerDay,
	}
}

// Quota returns an unused quota for the given tier. Negative limits are
// treated as zero.
func (l Limits) Quota(premium bool, resetAt time.Time) model.QuotaState {
	q := model.QuotaState{
		LikesLimit:      l.FreeLikesPerDay,
		SuperLikesLimit: l.FreeSuperLikesPerDay,
		RewindsLimit:    l.FreeRewindsPerDay,
		Premium:         premium,
		ResetAt:         resetAt,
	}
	if premium {
		q.LikesLimit = l.PlusLikesPerDay
		q.SuperLikesLimit = l.PlusSuperLikesPerDay
		q.RewindsLimit = l.PlusRewindsPerDay
	}
	return q.Normalized()
}

func DayKey(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format("2006-01-02")
}

func NextResetAt(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
	return next.UTC()
}
