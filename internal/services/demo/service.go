package demo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/RCDNC/swipedeck/internal/domain/enums"
	"github.com/RCDNC/swipedeck/internal/domain/model"
	"github.com/RCDNC/swipedeck/internal/domain/rules"
	"github.com/RCDNC/swipedeck/internal/services/swipes"
)

const (
	LikesPerDay      = 100
	SuperLikesPerDay = 5
	RewindsPerDay    = 3

	defaultMatchMessage = "Vocês deram match!"
)

var ErrUnknownCandidate = errors.New("unknown demo candidate")

type Config struct {
	Timezone *time.Location
}

// Service is the deterministic backend used for demo users. It implements
// the candidate source, the action service and the metrics store of a swipe
// session without any network I/O. It keeps no per-user state: counters live
// in each session, so every demo session starts from the same quota.
type Service struct {
	loc *time.Location
	now func() time.Time
}

func NewService(cfg Config) *Service {
	loc := cfg.Timezone
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		loc: loc,
		now: time.Now,
	}
}

// Backend returns the service wired as a swipe session backend.
func (s *Service) Backend() swipes.Backend {
	return swipes.Backend{Candidates: s, Actions: s, Metrics: s}
}

func (s *Service) Fetch(_ context.Context, _ string, filters model.CandidateFilters) ([]model.Candidate, error) {
	out := make([]model.Candidate, 0, len(catalog))
	for _, p := range catalog {
		if !matchesFilters(p.candidate, filters) {
			continue
		}
		out = append(out, materialize(p.candidate))
		if filters.Limit > 0 && len(out) >= filters.Limit {
			break
		}
	}
	return out, nil
}

func (s *Service) Submit(_ context.Context, _ string, targetID string, decision enums.SwipeDecision) (swipes.ActionResult, error) {
	p, ok := lookup(strings.TrimSpace(targetID))
	if !ok {
		return swipes.ActionResult{}, ErrUnknownCandidate
	}

	matched := false
	switch decision {
	case enums.SwipeDecisionSuperLike:
		matched = true
	case enums.SwipeDecisionLike:
		matched = p.likesBack
	}
	if !matched {
		return swipes.ActionResult{}, nil
	}

	matchedAt := s.now().UTC()
	return swipes.ActionResult{
		Matched:      true,
		MatchID:      "demo-match-" + p.candidate.ID,
		MatchMessage: MatchMessage(mutualInterests(p.candidate.Interests)),
		MatchedAt:    &matchedAt,
	}, nil
}

func (s *Service) Rewind(_ context.Context, _ string, targetID string) (*model.Candidate, error) {
	p, ok := lookup(strings.TrimSpace(targetID))
	if !ok {
		return nil, ErrUnknownCandidate
	}
	c := materialize(p.candidate)
	return &c, nil
}

// Get always returns a fresh premium quota.
func (s *Service) Get(context.Context, string) (model.QuotaState, error) {
	return Quota(rules.NextResetAt(s.now().UTC(), s.loc)), nil
}

// Save is a no-op. Demo ids are shared between visitors, so spent counters
// must not outlive the session that spent them.
func (s *Service) Save(context.Context, string, model.QuotaState) error {
	return nil
}

func Quota(resetAt time.Time) model.QuotaState {
	return model.QuotaState{
		LikesLimit:      LikesPerDay,
		SuperLikesLimit: SuperLikesPerDay,
		RewindsLimit:    RewindsPerDay,
		Premium:         true,
		ResetAt:         resetAt,
	}
}

func MatchMessage(mutual []string) string {
	switch len(mutual) {
	case 0:
		return defaultMatchMessage
	case 1:
		return "Vocês têm " + mutual[0] + " em comum!"
	default:
		return "Vocês têm " + mutual[0] + " e " + mutual[1] + " em comum!"
	}
}

func materialize(c model.Candidate) model.Candidate {
	out := c.Clone()
	out.Photos = photosFor(c.ID)
	out.MutualInterests = mutualInterests(c.Interests)
	return out
}

func matchesFilters(c model.Candidate, f model.CandidateFilters) bool {
	if f.MinAge > 0 && c.Age < f.MinAge {
		return false
	}
	if f.MaxAge > 0 && c.Age > f.MaxAge {
		return false
	}
	if f.MaxDistanceKM > 0 && c.DistanceKM > float64(f.MaxDistanceKM) {
		return false
	}
	if !f.Gender.Accepts(c.Gender) {
		return false
	}
	if f.OnlineOnly && !c.Online {
		return false
	}
	if f.VerifiedOnly && !c.Verified {
		return false
	}
	if len(f.Interests) == 0 {
		return true
	}
	for _, want := range f.Interests {
		for _, have := range c.Interests {
			if strings.EqualFold(want, have) {
				return true
			}
		}
	}
	return false
}
