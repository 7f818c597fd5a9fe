package model

import "time"

type QuotaState struct {
	LikesUsed       int       `json:"likes_used"`
	LikesLimit      int       `json:"likes_limit"`
	SuperLikesUsed  int       `json:"super_likes_used"`
	SuperLikesLimit int       `json:"super_likes_limit"`
	RewindsUsed     int       `json:"rewinds_used"`
	RewindsLimit    int       `json:"rewinds_limit"`
	Premium         bool      `json:"premium"`
	ResetAt         time.Time `json:"reset_at"`
}

func (q QuotaState) CanUseLike() bool {
	return q.LikesUsed < q.LikesLimit
}

func (q QuotaState) CanUseSuperLike() bool {
	return q.SuperLikesUsed < q.SuperLikesLimit
}

func (q QuotaState) CanUseRewind() bool {
	return q.RewindsUsed < q.RewindsLimit
}

func (q QuotaState) RemainingLikes() int {
	return remaining(q.LikesUsed, q.LikesLimit)
}

func (q QuotaState) RemainingSuperLikes() int {
	return remaining(q.SuperLikesUsed, q.SuperLikesLimit)
}

func (q QuotaState) RemainingRewinds() int {
	return remaining(q.RewindsUsed, q.RewindsLimit)
}

// Normalized clamps every counter into [0, limit].
func (q QuotaState) Normalized() QuotaState {
	q.LikesLimit, q.LikesUsed = clampPair(q.LikesLimit, q.LikesUsed)
	q.SuperLikesLimit, q.SuperLikesUsed = clampPair(q.SuperLikesLimit, q.SuperLikesUsed)
	q.RewindsLimit, q.RewindsUsed = clampPair(q.RewindsLimit, q.RewindsUsed)
	return q
}

func remaining(used, limit int) int {
	left := limit - used
	if left < 0 {
		return 0
	}
	return left
}

func clampPair(limit, used int) (int, int) {
	if limit < 0 {
		limit = 0
	}
	if used < 0 {
		used = 0
	}
	if used > limit {
		used = limit
	}
	return limit, used
}
