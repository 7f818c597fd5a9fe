package swipes

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/RCDNC/swipedeck/internal/domain/enums"
	"github.com/RCDNC/swipedeck/internal/domain/model"
	"github.com/RCDNC/swipedeck/internal/domain/rules"
)

type sourceStub struct {
	mu      sync.Mutex
	pages   [][]model.Candidate
	calls   int
	err     error
	filters []model.CandidateFilters
}

func (s *sourceStub) Fetch(_ context.Context, _ string, filters model.CandidateFilters) ([]model.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = append(s.filters, filters)
	if s.err != nil {
		return nil, s.err
	}
	if s.calls >= len(s.pages) {
		s.calls++
		return nil, nil
	}
	page := s.pages[s.calls]
	s.calls++
	return page, nil
}

type actionsStub struct {
	mu        sync.Mutex
	result    ActionResult
	err       error
	rewindErr error
	rewindTo  *model.Candidate
	submitted []string
	rewound   []string
	block     chan struct{}
	entered   chan struct{}
}

func (a *actionsStub) Submit(ctx context.Context, _ string, targetID string, _ enums.SwipeDecision) (ActionResult, error) {
	if a.entered != nil {
		a.entered <- struct{}{}
	}
	if a.block != nil {
		select {
		case <-a.block:
		case <-ctx.Done():
			return ActionResult{}, ctx.Err()
		}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.submitted = append(a.submitted, targetID)
	return a.result, a.err
}

func (a *actionsStub) Rewind(_ context.Context, _ string, targetID string) (*model.Candidate, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rewound = append(a.rewound, targetID)
	return a.rewindTo, a.rewindErr
}

type metricsStub struct {
	quota  model.QuotaState
	getErr error
	saved  []model.QuotaState
}

func (m *metricsStub) Get(context.Context, string) (model.QuotaState, error) {
	return m.quota, m.getErr
}

func (m *metricsStub) Save(_ context.Context, _ string, quota model.QuotaState) error {
	m.saved = append(m.saved, quota)
	return nil
}

type limiterStub struct {
	retryAfter int64
	allowed    bool
	err        error
	keys       []string
}

func (l *limiterStub) AllowLike(_ context.Context, key string) (int64, bool, error) {
	l.keys = append(l.keys, key)
	return l.retryAfter, l.allowed, l.err
}

type journalStub struct {
	outcomes []model.SwipeOutcome
}

func (j *journalStub) Record(_ context.Context, _ string, outcome model.SwipeOutcome, _ time.Time) error {
	j.outcomes = append(j.outcomes, outcome)
	return nil
}

type testHarness struct {
	session *Session
	source  *sourceStub
	actions *actionsStub
	metrics *metricsStub
	journal *journalStub
	now     time.Time
}

func newHarness(t *testing.T, cfg Config, quota model.QuotaState, pages ...[]model.Candidate) *testHarness {
	t.Helper()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	if quota.ResetAt.IsZero() {
		quota.ResetAt = rules.NextResetAt(now, time.UTC)
	}

	h := &testHarness{
		source:  &sourceStub{pages: pages},
		actions: &actionsStub{},
		metrics: &metricsStub{quota: quota},
		journal: &journalStub{},
		now:     now,
	}
	session, err := NewSession(Dependencies{
		Live:    Backend{Candidates: h.source, Actions: h.actions, Metrics: h.metrics},
		Journal: h.journal,
	}, cfg, "u-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	session.now = func() time.Time { return h.now }
	h.session = session

	if err := session.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}
	return h
}

func candidates(ids ...string) []model.Candidate {
	out := make([]model.Candidate, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Candidate{ID: id, DisplayName: "c" + id, Age: 25, DistanceKM: 3.4})
	}
	return out
}

func freeQuota() model.QuotaState {
	return rules.DefaultLimits().Quota(false, time.Time{})
}

func plusQuota() model.QuotaState {
	return rules.DefaultLimits().Quota(true, time.Time{})
}

func intPtr(v int) *int {
	return &v
}

func TestNewSessionRejectsEmptyUser(t *testing.T) {
	if _, err := NewSession(Dependencies{}, Config{}, "  "); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewSessionSelectsDemoBackend(t *testing.T) {
	cfg := Config{DemoUserPattern: DefaultDemoUserPattern}
	for _, userID := range []string{"demo", "demo-1", "demo_abc"} {
		s, err := NewSession(Dependencies{}, cfg, userID)
		if err != nil {
			t.Fatalf("new session %q: %v", userID, err)
		}
		if !s.IsDemo() {
			t.Fatalf("expected %q to be a demo user", userID)
		}
	}
	s, err := NewSession(Dependencies{}, cfg, "demolition")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if s.IsDemo() {
		t.Fatalf("expected demolition to be a live user")
	}
}

func TestSubmitWithoutBackendReturnsDependenciesNil(t *testing.T) {
	s, err := NewSession(Dependencies{}, Config{}, "u-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, err := s.SubmitDecision(context.Background(), "1", enums.SwipeDecisionLike); !errors.Is(err, ErrDependenciesNil) {
		t.Fatalf("expected dependencies error, got %v", err)
	}
}

func TestLoadCandidatesRefreshAndAppend(t *testing.T) {
	h := newHarness(t, Config{}, freeQuota(), candidates("1", "2"), candidates("2", "3"), candidates("9"))
	ctx := context.Background()

	if err := h.session.LoadCandidates(ctx, model.CandidateFilters{}, true); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := h.session.LoadCandidates(ctx, model.CandidateFilters{}, false); err != nil {
		t.Fatalf("append: %v", err)
	}
	view := h.session.View()
	if view.QueueSize != 3 {
		t.Fatalf("expected duplicate to be dropped on append, queue=%d", view.QueueSize)
	}
	if view.Head == nil || view.Head.ID != "1" {
		t.Fatalf("unexpected head: %+v", view.Head)
	}
	if view.Head.DistanceLabel != "a 3 km" {
		t.Fatalf("expected distance label, got %q", view.Head.DistanceLabel)
	}

	if err := h.session.LoadCandidates(ctx, model.CandidateFilters{}, true); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	view = h.session.View()
	if view.QueueSize != 1 || view.Head.ID != "9" {
		t.Fatalf("expected refresh to replace queue, got size=%d head=%+v", view.QueueSize, view.Head)
	}
}

func TestLoadCandidatesDropsUnderageAndAppliesFilterDefaults(t *testing.T) {
	page := append(candidates("1"), model.Candidate{ID: "2", Age: 17}, model.Candidate{ID: "", Age: 30})
	h := newHarness(t, Config{
		PageSize:       10,
		DefaultFilters: model.CandidateFilters{MinAge: 20, MaxAge: 40, MaxDistanceKM: 50, Gender: enums.GenderPreferenceAll},
	}, freeQuota(), page)

	if err := h.session.LoadCandidates(context.Background(), model.CandidateFilters{Limit: 100}, true); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := h.session.QueueSize(); got != 1 {
		t.Fatalf("expected one adult candidate, got %d", got)
	}
	f := h.source.filters[0]
	if f.MinAge != 20 || f.MaxAge != 40 || f.MaxDistanceKM != 50 || f.Limit != 10 {
		t.Fatalf("unexpected normalized filters: %+v", f)
	}
}

func TestLoadCandidatesCapsRadius(t *testing.T) {
	h := newHarness(t, Config{MaxDistanceKM: 150}, freeQuota(), candidates("1"))
	if err := h.session.LoadCandidates(context.Background(), model.CandidateFilters{MaxDistanceKM: 900}, true); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := h.source.filters[0].MaxDistanceKM; got != 150 {
		t.Fatalf("expected radius capped at 150, got %d", got)
	}
}

func TestLoadCandidatesRejectsInvertedAgeRange(t *testing.T) {
	h := newHarness(t, Config{}, freeQuota(), candidates("1"))
	err := h.session.LoadCandidates(context.Background(), model.CandidateFilters{MinAge: 40, MaxAge: 30}, true)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if h.source.calls != 0 {
		t.Fatalf("expected no fetch for invalid filters")
	}
}

func TestLoadCandidatesFailureKeepsQueueAndSetsNotice(t *testing.T) {
	h := newHarness(t, Config{}, freeQuota(), candidates("1", "2"))
	ctx := context.Background()
	if err := h.session.LoadCandidates(ctx, model.CandidateFilters{}, true); err != nil {
		t.Fatalf("load: %v", err)
	}

	h.source.err = errors.New("upstream down")
	err := h.session.LoadCandidates(ctx, model.CandidateFilters{}, true)
	if _, ok := IsRemoteService(err); !ok {
		t.Fatalf("expected remote service error, got %v", err)
	}
	view := h.session.View()
	if view.QueueSize != 2 {
		t.Fatalf("expected queue untouched, got %d", view.QueueSize)
	}
	if view.Error == nil {
		t.Fatalf("expected error notice")
	}

	h.now = h.now.Add(defaultNoticeTTL + time.Second)
	if h.session.View().Error != nil {
		t.Fatalf("expected error notice to expire")
	}
}

func TestSubmitDecisionPopsHeadAndReconcilesRemaining(t *testing.T) {
	h := newHarness(t, Config{}, freeQuota(), candidates("1", "2", "3"))
	ctx := context.Background()
	if err := h.session.LoadCandidates(ctx, model.CandidateFilters{}, true); err != nil {
		t.Fatalf("load: %v", err)
	}

	h.actions.result = ActionResult{LikesRemaining: intPtr(10)}
	outcome, err := h.session.SubmitDecision(ctx, "1", enums.SwipeDecisionLike)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Matched || outcome.Candidate.ID != "1" {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if got := h.session.QueueSize(); got != 2 {
		t.Fatalf("expected queue to shrink by one, got %d", got)
	}
	if got := h.session.RemainingLikes(); got != 10 {
		t.Fatalf("expected server remaining to win, got %d", got)
	}
	if len(h.metrics.saved) != 1 || len(h.journal.outcomes) != 1 {
		t.Fatalf("expected save and journal, got saved=%d journal=%d", len(h.metrics.saved), len(h.journal.outcomes))
	}

	h.actions.result = ActionResult{}
	if _, err := h.session.SubmitDecision(ctx, "2", enums.SwipeDecisionDislike); err != nil {
		t.Fatalf("dislike: %v", err)
	}
	if got := h.session.RemainingLikes(); got != 10 {
		t.Fatalf("dislike must not consume likes, got %d", got)
	}
}

func TestSubmitDecisionRequiresHeadCandidate(t *testing.T) {
	h := newHarness(t, Config{}, freeQuota(), candidates("1", "2"))
	ctx := context.Background()
	if err := h.session.LoadCandidates(ctx, model.CandidateFilters{}, true); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := h.session.SubmitDecision(ctx, "2", enums.SwipeDecisionLike); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := h.session.SubmitDecision(ctx, "1", "MAYBE"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSubmitMatchSetsNoticeAndDefaults(t *testing.T) {
	h := newHarness(t, Config{}, freeQuota(), candidates("1", "2"))
	ctx := context.Background()
	if err := h.session.LoadCandidates(ctx, model.CandidateFilters{}, true); err != nil {
		t.Fatalf("load: %v", err)
	}

	h.actions.result = ActionResult{Matched: true}
	outcome, err := h.session.SubmitDecision(ctx, "1", enums.SwipeDecisionLike)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !outcome.Matched || outcome.Match == nil {
		t.Fatalf("expected match, got %+v", outcome)
	}
	if outcome.Match.ID == "" || outcome.Match.Message != defaultMatchMessage || !outcome.Match.MatchedAt.Equal(h.now) {
		t.Fatalf("unexpected match defaults: %+v", outcome.Match)
	}
	view := h.session.View()
	if view.Match == nil || view.Match.Outcome.Candidate.ID != "1" {
		t.Fatalf("expected match notice, got %+v", view.Match)
	}
	h.session.DismissNotice()
	if h.session.View().Match != nil {
		t.Fatalf("expected dismissed notice")
	}

	outcome, err = h.session.SubmitDecision(ctx, "2", enums.SwipeDecisionDislike)
	if err != nil {
		t.Fatalf("dislike: %v", err)
	}
	if outcome.Matched {
		t.Fatalf("a dislike never matches")
	}
}

func TestLikeQuotaBlocksAtLimit(t *testing.T) {
	quota := freeQuota()
	quota.LikesUsed = quota.LikesLimit - 1
	h := newHarness(t, Config{}, quota, candidates("1", "2", "3"))
	ctx := context.Background()
	if err := h.session.LoadCandidates(ctx, model.CandidateFilters{}, true); err != nil {
		t.Fatalf("load: %v", err)
	}

	if !h.session.CanSubmit(enums.SwipeDecisionLike) {
		t.Fatalf("expected one like left")
	}
	if _, err := h.session.SubmitDecision(ctx, "1", enums.SwipeDecisionLike); err != nil {
		t.Fatalf("last like: %v", err)
	}
	if h.session.CanSubmit(enums.SwipeDecisionLike) {
		t.Fatalf("expected like quota exhausted")
	}
	_, err := h.session.SubmitDecision(ctx, "2", enums.SwipeDecisionLike)
	qe, ok := IsQuotaExceeded(err)
	if !ok || qe.Decision != enums.SwipeDecisionLike {
		t.Fatalf("expected like quota error, got %v", err)
	}
	if got := h.session.QueueSize(); got != 2 {
		t.Fatalf("blocked like must not pop, queue=%d", got)
	}
	if !h.session.CanSubmit(enums.SwipeDecisionDislike) {
		t.Fatalf("dislikes stay unlimited")
	}
}

func TestQuotaResetsAfterResetAt(t *testing.T) {
	quota := freeQuota()
	quota.LikesUsed = quota.LikesLimit
	h := newHarness(t, Config{}, quota, candidates("1"))
	if err := h.session.LoadCandidates(context.Background(), model.CandidateFilters{}, true); err != nil {
		t.Fatalf("load: %v", err)
	}
	if h.session.CanSubmit(enums.SwipeDecisionLike) {
		t.Fatalf("expected exhausted likes")
	}
	h.now = h.now.Add(24 * time.Hour)
	if !h.session.CanSubmit(enums.SwipeDecisionLike) {
		t.Fatalf("expected likes to reset on the next day")
	}
}

func TestFailedSubmitRollsBackAndKeepsQuota(t *testing.T) {
	h := newHarness(t, Config{}, freeQuota(), candidates("1", "2"))
	ctx := context.Background()
	if err := h.session.LoadCandidates(ctx, model.CandidateFilters{}, true); err != nil {
		t.Fatalf("load: %v", err)
	}
	before := h.session.Quota()

	h.actions.err = errors.New("503")
	_, err := h.session.SubmitDecision(ctx, "1", enums.SwipeDecisionLike)
	if _, ok := IsRemoteService(err); !ok {
		t.Fatalf("expected remote error, got %v", err)
	}
	if h.session.Quota() != before {
		t.Fatalf("quota changed after failure: %+v vs %+v", h.session.Quota(), before)
	}
	view := h.session.View()
	if view.Head == nil || view.Head.ID != "1" || view.QueueSize != 2 {
		t.Fatalf("expected rollback to restore head, got %+v size=%d", view.Head, view.QueueSize)
	}
	if view.Error == nil {
		t.Fatalf("expected error notice")
	}
	if h.session.CanSubmit(enums.SwipeDecisionRewind) {
		t.Fatalf("failed decision must not be rewindable")
	}
	if len(h.metrics.saved) != 0 {
		t.Fatalf("failed decision must not persist quota")
	}
}

func TestFailedSubmitKeepsProgressWhenConfigured(t *testing.T) {
	h := newHarness(t, Config{KeepProgressOnFailure: true}, freeQuota(), candidates("1", "2"))
	ctx := context.Background()
	if err := h.session.LoadCandidates(ctx, model.CandidateFilters{}, true); err != nil {
		t.Fatalf("load: %v", err)
	}
	h.actions.err = errors.New("503")
	if _, err := h.session.SubmitDecision(ctx, "1", enums.SwipeDecisionLike); err == nil {
		t.Fatalf("expected error")
	}
	if got := h.session.QueueSize(); got != 1 {
		t.Fatalf("expected candidate to stay skipped, queue=%d", got)
	}
}

func TestRewindBeforeAnyDecisionIsInvalid(t *testing.T) {
	h := newHarness(t, Config{}, plusQuota(), candidates("1"))
	if err := h.session.LoadCandidates(context.Background(), model.CandidateFilters{}, true); err != nil {
		t.Fatalf("load: %v", err)
	}
	if h.session.CanSubmit(enums.SwipeDecisionRewind) {
		t.Fatalf("nothing to rewind yet")
	}
	if _, err := h.session.SubmitDecision(context.Background(), "", enums.SwipeDecisionRewind); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
}

func TestRewindRestoresExactlyOneAndRefundsLike(t *testing.T) {
	h := newHarness(t, Config{}, plusQuota(), candidates("1", "2", "3"))
	ctx := context.Background()
	if err := h.session.LoadCandidates(ctx, model.CandidateFilters{}, true); err != nil {
		t.Fatalf("load: %v", err)
	}
	likesBefore := h.session.RemainingLikes()

	for _, id := range []string{"1", "2"} {
		if _, err := h.session.SubmitDecision(ctx, id, enums.SwipeDecisionLike); err != nil {
			t.Fatalf("like %s: %v", id, err)
		}
	}

	h.actions.rewindTo = &model.Candidate{ID: "2", DisplayName: "restored", Age: 25}
	outcome, err := h.session.SubmitDecision(ctx, "", enums.SwipeDecisionRewind)
	if err != nil {
		t.Fatalf("rewind: %v", err)
	}
	if outcome.Matched || outcome.Candidate.ID != "2" {
		t.Fatalf("unexpected rewind outcome: %+v", outcome)
	}
	view := h.session.View()
	if view.QueueSize != 2 || view.Head.ID != "2" || view.Head.DisplayName != "restored" {
		t.Fatalf("expected restored head, got size=%d head=%+v", view.QueueSize, view.Head)
	}
	if got := h.session.RemainingLikes(); got != likesBefore-1 {
		t.Fatalf("expected one like refunded, remaining=%d want=%d", got, likesBefore-1)
	}
	if got := h.session.Quota().RewindsUsed; got != 1 {
		t.Fatalf("expected one rewind used, got %d", got)
	}

	if _, err := h.session.SubmitDecision(ctx, "", enums.SwipeDecisionRewind); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("only the last decision can be rewound, got %v", err)
	}
}

func TestRewindRequiresQuotaAndMatchingID(t *testing.T) {
	h := newHarness(t, Config{}, freeQuota(), candidates("1", "2"))
	ctx := context.Background()
	if err := h.session.LoadCandidates(ctx, model.CandidateFilters{}, true); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := h.session.SubmitDecision(ctx, "1", enums.SwipeDecisionDislike); err != nil {
		t.Fatalf("dislike: %v", err)
	}
	if _, err := h.session.SubmitDecision(ctx, "2", enums.SwipeDecisionRewind); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected id mismatch, got %v", err)
	}
	_, err := h.session.SubmitDecision(ctx, "1", enums.SwipeDecisionRewind)
	if _, ok := IsQuotaExceeded(err); !ok {
		t.Fatalf("free tier has no rewinds, got %v", err)
	}
}

func TestFailedRewindRestoresState(t *testing.T) {
	h := newHarness(t, Config{}, plusQuota(), candidates("1", "2"))
	ctx := context.Background()
	if err := h.session.LoadCandidates(ctx, model.CandidateFilters{}, true); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := h.session.SubmitDecision(ctx, "1", enums.SwipeDecisionDislike); err != nil {
		t.Fatalf("dislike: %v", err)
	}

	h.actions.rewindErr = errors.New("timeout")
	if _, err := h.session.SubmitDecision(ctx, "", enums.SwipeDecisionRewind); err == nil {
		t.Fatalf("expected rewind error")
	}
	view := h.session.View()
	if view.QueueSize != 1 || view.Head.ID != "2" {
		t.Fatalf("expected queue unchanged, got size=%d head=%+v", view.QueueSize, view.Head)
	}
	if view.Quota.RewindsUsed != 0 {
		t.Fatalf("failed rewind must not consume quota")
	}
	if !h.session.CanSubmit(enums.SwipeDecisionRewind) {
		t.Fatalf("expected last decision to stay rewindable")
	}
}

func TestPremiumLikeThrottle(t *testing.T) {
	h := newHarness(t, Config{}, plusQuota(), candidates("1", "2"))
	limiter := &limiterStub{retryAfter: 7}
	h.session.deps.RateLimiter = limiter
	ctx := context.Background()
	if err := h.session.LoadCandidates(ctx, model.CandidateFilters{}, true); err != nil {
		t.Fatalf("load: %v", err)
	}

	_, err := h.session.SubmitDecision(ctx, "1", enums.SwipeDecisionLike)
	tf, ok := IsTooFast(err)
	if !ok || tf.RetryAfter() != 7 {
		t.Fatalf("expected too fast with retry 7, got %v", err)
	}
	if h.session.QueueSize() != 2 {
		t.Fatalf("throttled like must not pop")
	}

	limiter.err = errors.New("redis down")
	if _, err := h.session.SubmitDecision(ctx, "1", enums.SwipeDecisionLike); err != nil {
		t.Fatalf("limiter failure should fail open, got %v", err)
	}
	if len(limiter.keys) != 2 || limiter.keys[0] != "u-1" {
		t.Fatalf("unexpected limiter keys: %v", limiter.keys)
	}
}

func TestRefillIfLow(t *testing.T) {
	h := newHarness(t, Config{LowWaterMark: 2}, freeQuota(), candidates("1", "2", "3"), candidates("4", "5"))
	ctx := context.Background()
	if err := h.session.LoadCandidates(ctx, model.CandidateFilters{}, true); err != nil {
		t.Fatalf("load: %v", err)
	}
	refilled, err := h.session.RefillIfLow(ctx)
	if err != nil || refilled {
		t.Fatalf("expected no refill above mark, refilled=%v err=%v", refilled, err)
	}
	if _, err := h.session.SubmitDecision(ctx, "1", enums.SwipeDecisionDislike); err != nil {
		t.Fatalf("dislike: %v", err)
	}
	refilled, err = h.session.RefillIfLow(ctx)
	if err != nil || !refilled {
		t.Fatalf("expected refill, refilled=%v err=%v", refilled, err)
	}
	if got := h.session.QueueSize(); got != 4 {
		t.Fatalf("expected appended page, queue=%d", got)
	}
	for i := 0; i < 3; i++ {
		if _, err := h.session.SubmitDecision(ctx, h.session.View().Head.ID, enums.SwipeDecisionDislike); err != nil {
			t.Fatalf("dislike: %v", err)
		}
	}
	if _, err := h.session.RefillIfLow(ctx); err != nil {
		t.Fatalf("refill: %v", err)
	}
	if !h.session.View().Exhausted {
		t.Fatalf("expected exhausted after empty page")
	}
	refilled, _ = h.session.RefillIfLow(ctx)
	if refilled {
		t.Fatalf("exhausted session must not refetch")
	}
}

func TestConcurrentMutationsAreSerialized(t *testing.T) {
	h := newHarness(t, Config{}, freeQuota(), candidates("1", "2"))
	ctx := context.Background()
	if err := h.session.LoadCandidates(ctx, model.CandidateFilters{}, true); err != nil {
		t.Fatalf("load: %v", err)
	}

	h.actions.block = make(chan struct{})
	h.actions.entered = make(chan struct{}, 2)

	done := make(chan error, 1)
	go func() {
		_, err := h.session.SubmitDecision(ctx, "1", enums.SwipeDecisionDislike)
		done <- err
	}()
	<-h.actions.entered

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if _, err := h.session.SubmitDecision(waitCtx, "2", enums.SwipeDecisionDislike); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected queued call to time out, got %v", err)
	}

	// Reads stay available while the mutation is in flight.
	if got := h.session.QueueSize(); got != 1 {
		t.Fatalf("expected optimistic pop visible, queue=%d", got)
	}

	close(h.actions.block)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := h.session.SubmitDecision(ctx, "2", enums.SwipeDecisionDislike); err != nil {
		t.Fatalf("second submit: %v", err)
	}
}

func TestRejectWhenBusy(t *testing.T) {
	h := newHarness(t, Config{RejectWhenBusy: true}, freeQuota(), candidates("1", "2"))
	ctx := context.Background()
	if err := h.session.LoadCandidates(ctx, model.CandidateFilters{}, true); err != nil {
		t.Fatalf("load: %v", err)
	}
	h.actions.block = make(chan struct{})
	h.actions.entered = make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() {
		_, err := h.session.SubmitDecision(ctx, "1", enums.SwipeDecisionDislike)
		done <- err
	}()
	<-h.actions.entered

	if _, err := h.session.SubmitDecision(ctx, "1", enums.SwipeDecisionDislike); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected busy, got %v", err)
	}
	close(h.actions.block)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
}

func TestCancelledSubmitDiscardsReconciliation(t *testing.T) {
	h := newHarness(t, Config{KeepProgressOnFailure: true}, freeQuota(), candidates("1", "2"))
	if err := h.session.LoadCandidates(context.Background(), model.CandidateFilters{}, true); err != nil {
		t.Fatalf("load: %v", err)
	}
	h.actions.block = make(chan struct{})
	h.actions.entered = make(chan struct{}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := h.session.SubmitDecision(ctx, "1", enums.SwipeDecisionLike)
		done <- err
	}()
	<-h.actions.entered
	cancel()

	err := <-done
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	view := h.session.View()
	if view.QueueSize != 2 || view.Head.ID != "1" {
		t.Fatalf("cancelled submit must restore queue, got size=%d head=%+v", view.QueueSize, view.Head)
	}
	if view.Error != nil {
		t.Fatalf("cancellation must not surface an error notice")
	}
	if view.Quota.LikesUsed != 0 {
		t.Fatalf("cancelled submit must not consume quota")
	}
}

func TestOpenFailureKeepsTierDefaults(t *testing.T) {
	s, err := NewSession(Dependencies{
		Live: Backend{
			Candidates: &sourceStub{},
			Actions:    &actionsStub{},
			Metrics:    &metricsStub{getErr: errors.New("boom")},
		},
	}, Config{DemoUserPattern: regexp.MustCompile(`^never$`)}, "u-2")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if err := s.Open(context.Background()); err == nil {
		t.Fatalf("expected open error")
	}
	q := s.Quota()
	if q.LikesLimit != rules.FreeLikesPerDay || q.Premium {
		t.Fatalf("expected free tier defaults, got %+v", q)
	}
}

func TestReconcileQuotaRaisesLimitWhenServerReportsMore(t *testing.T) {
	q := model.QuotaState{LikesUsed: 3, LikesLimit: 5}
	got := reconcileQuota(q, enums.SwipeDecisionLike, ActionResult{LikesRemaining: intPtr(40)})
	if got.LikesLimit != 40 || got.LikesUsed != 0 {
		t.Fatalf("unexpected reconciled quota: %+v", got)
	}
	got = reconcileQuota(q, enums.SwipeDecisionLike, ActionResult{})
	if got.LikesUsed != 4 {
		t.Fatalf("expected local increment, got %+v", got)
	}
}
