package model

import "testing"

func TestQuotaStateRemainingIsClamped(t *testing.T) {
	q := QuotaState{
		LikesUsed:       12,
		LikesLimit:      10,
		SuperLikesUsed:  1,
		SuperLikesLimit: 3,
	}

	if got := q.RemainingLikes(); got != 0 {
		t.Fatalf("expected remaining likes clamped to 0, got %d", got)
	}
	if got := q.RemainingSuperLikes(); got != 2 {
		t.Fatalf("unexpected remaining super likes: %d", got)
	}
	if got := q.RemainingRewinds(); got != 0 {
		t.Fatalf("zero rewind limit must leave nothing, got %d", got)
	}
	if q.CanUseRewind() {
		t.Fatalf("rewind must be unavailable with zero limit")
	}
}

func TestQuotaStateNormalized(t *testing.T) {
	q := QuotaState{
		LikesUsed:    40,
		LikesLimit:   35,
		RewindsUsed:  -2,
		RewindsLimit: 1,
	}.Normalized()

	if q.LikesUsed != 35 {
		t.Fatalf("expected likes used clamped to limit, got %d", q.LikesUsed)
	}
	if q.RewindsUsed != 0 {
		t.Fatalf("expected negative rewinds used to clamp to 0, got %d", q.RewindsUsed)
	}
}
