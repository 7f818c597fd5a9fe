package swipes

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/RCDNC/swipedeck/internal/domain/enums"
	"github.com/RCDNC/swipedeck/internal/domain/model"
	"github.com/RCDNC/swipedeck/internal/domain/rules"
)

const (
	defaultLowWaterMark = 3
	defaultPageSize     = 20
	defaultNoticeTTL    = 4 * time.Second
	defaultMatchMessage = "Vocês deram match!"
)

// DefaultDemoUserPattern matches "demo", "demo-<anything>" and "demo_<anything>".
var DefaultDemoUserPattern = regexp.MustCompile(`^demo([-_].*)?$`)

type CandidateSource interface {
	Fetch(ctx context.Context, userID string, filters model.CandidateFilters) ([]model.Candidate, error)
}

// ActionResult is the remote answer to a submitted decision. Nil remaining
// counters mean the service did not report them.
type ActionResult struct {
	Matched             bool
	MatchID             string
	MatchMessage        string
	MatchedAt           *time.Time
	LikesRemaining      *int
	SuperLikesRemaining *int
	RewindsRemaining    *int
}

type ActionService interface {
	Submit(ctx context.Context, userID, targetID string, decision enums.SwipeDecision) (ActionResult, error)
	Rewind(ctx context.Context, userID, targetID string) (*model.Candidate, error)
}

type MetricsStore interface {
	Get(ctx context.Context, userID string) (model.QuotaState, error)
	Save(ctx context.Context, userID string, quota model.QuotaState) error
}

type RateLimiter interface {
	AllowLike(ctx context.Context, key string) (int64, bool, error)
}

type PhotoResolver interface {
	Resolve(ctx context.Context, refs []string) []string
}

type OutcomeJournal interface {
	Record(ctx context.Context, userID string, outcome model.SwipeOutcome, at time.Time) error
}

type MatchNotifier interface {
	NotifyMatch(ctx context.Context, userID string, outcome model.SwipeOutcome) error
}

// Backend bundles the three collaborators a session talks to. Live and demo
// sessions differ only in the backend they are given.
type Backend struct {
	Candidates CandidateSource
	Actions    ActionService
	Metrics    MetricsStore
}

func (b Backend) configured() bool {
	return b.Candidates != nil && b.Actions != nil && b.Metrics != nil
}

type Dependencies struct {
	Live        Backend
	Demo        Backend
	RateLimiter RateLimiter
	Photos      PhotoResolver
	Journal     OutcomeJournal
	Notifier    MatchNotifier
	Logger      *zap.Logger
}

type Config struct {
	LowWaterMark int
	PageSize     int
	NoticeTTL    time.Duration

	// KeepProgressOnFailure leaves an optimistically swiped candidate out of
	// the queue when the remote call fails instead of restoring it.
	KeepProgressOnFailure bool
	RejectWhenBusy        bool
	DemoUserPattern       *regexp.Regexp
	Limits                rules.Limits
	DefaultFilters        model.CandidateFilters

	// MaxDistanceKM caps the requested radius. Zero means no cap.
	MaxDistanceKM int
	Timezone      string
}

type NoticeKind string

const (
	NoticeError NoticeKind = "error"
	NoticeMatch NoticeKind = "match"
)

type Notice struct {
	Kind      NoticeKind          `json:"kind"`
	Message   string              `json:"message"`
	Outcome   *model.SwipeOutcome `json:"outcome,omitempty"`
	ExpiresAt time.Time           `json:"expires_at"`
}

type View struct {
	UserID    string            `json:"user_id"`
	Demo      bool              `json:"demo"`
	Head      *model.Candidate  `json:"head,omitempty"`
	Upcoming  []model.Candidate `json:"upcoming"`
	QueueSize int               `json:"queue_size"`
	Quota     model.QuotaState  `json:"quota"`
	Exhausted bool              `json:"exhausted"`
	Error     *Notice           `json:"error,omitempty"`
	Match     *Notice           `json:"match,omitempty"`
}

type swipedEntry struct {
	candidate model.Candidate
	decision  enums.SwipeDecision
}

// Session is the swipe controller for one UI surface. Mutating operations run
// one at a time; reads never wait on network I/O.
type Session struct {
	userID  string
	demo    bool
	backend Backend
	deps    Dependencies
	cfg     Config
	loc     *time.Location
	logger  *zap.Logger
	now     func() time.Time

	slot chan struct{}

	mu          sync.RWMutex
	queue       []model.Candidate
	seen        map[string]struct{}
	quota       model.QuotaState
	last        *swipedEntry
	filters     model.CandidateFilters
	exhausted   bool
	errNotice   *Notice
	matchNotice *Notice
}

func NewSession(deps Dependencies, cfg Config, userID string) (*Session, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrValidation
	}
	if cfg.LowWaterMark <= 0 {
		cfg.LowWaterMark = defaultLowWaterMark
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.NoticeTTL <= 0 {
		cfg.NoticeTTL = defaultNoticeTTL
	}
	if cfg.Limits == (rules.Limits{}) {
		cfg.Limits = rules.DefaultLimits()
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	demo := cfg.DemoUserPattern != nil && cfg.DemoUserPattern.MatchString(userID)
	backend := deps.Live
	if demo {
		backend = deps.Demo
	}

	s := &Session{
		userID:  userID,
		demo:    demo,
		backend: backend,
		deps:    deps,
		cfg:     cfg,
		loc:     resolveLocation(cfg.Timezone),
		logger:  logger.With(zap.String("user_id", userID), zap.Bool("demo", demo)),
		now:     time.Now,
		slot:    make(chan struct{}, 1),
		seen:    make(map[string]struct{}),
	}
	s.quota = cfg.Limits.Quota(false, rules.NextResetAt(s.now().UTC(), s.loc))
	return s, nil
}

func (s *Session) UserID() string {
	return s.userID
}

func (s *Session) IsDemo() bool {
	return s.demo
}

// Open loads the quota from the metrics store. It is meant to run once when
// the session starts; on failure the tier defaults stay in place.
func (s *Session) Open(ctx context.Context) error {
	release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if !s.backend.configured() {
		return ErrDependenciesNil
	}

	quota, err := s.backend.Metrics.Get(ctx, s.userID)
	if err != nil {
		rerr := remoteError("load quota", err)
		s.logger.Warn("load quota failed, using tier defaults", zap.Error(err))
		s.mu.Lock()
		s.setErrorNoticeLocked(rerr.Message)
		s.mu.Unlock()
		return rerr
	}

	now := s.now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quota = quota.Normalized()
	if s.quota.ResetAt.IsZero() {
		s.quota.ResetAt = rules.NextResetAt(now, s.loc)
	}
	s.rolloverLocked(now)
	return nil
}

func (s *Session) LoadCandidates(ctx context.Context, filters model.CandidateFilters, refresh bool) error {
	release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	_, err = s.load(ctx, filters, refresh)
	return err
}

// RefillIfLow tops the queue up with the last used filters once it shrinks to
// the low-water mark. It reports whether a fetch happened.
func (s *Session) RefillIfLow(ctx context.Context) (bool, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return false, err
	}
	defer release()

	s.mu.RLock()
	low := len(s.queue) <= s.cfg.LowWaterMark && !s.exhausted
	filters := s.filters
	s.mu.RUnlock()
	if !low {
		return false, nil
	}

	if _, err := s.load(ctx, filters, false); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Session) SubmitDecision(ctx context.Context, candidateID string, decision enums.SwipeDecision) (model.SwipeOutcome, error) {
	decision, ok := enums.ParseSwipeDecision(string(decision))
	if !ok {
		return model.SwipeOutcome{}, ErrValidation
	}

	release, err := s.acquire(ctx)
	if err != nil {
		return model.SwipeOutcome{}, err
	}
	defer release()

	if !s.backend.configured() {
		return model.SwipeOutcome{}, ErrDependenciesNil
	}

	candidateID = strings.TrimSpace(candidateID)
	if decision == enums.SwipeDecisionRewind {
		return s.rewind(ctx, candidateID)
	}
	return s.swipe(ctx, candidateID, decision)
}

func (s *Session) CanSubmit(decision enums.SwipeDecision) bool {
	decision, ok := enums.ParseSwipeDecision(string(decision))
	if !ok {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	quota := s.effectiveQuotaLocked(s.now().UTC())
	if decision == enums.SwipeDecisionRewind {
		return s.last != nil && quota.CanUseRewind()
	}
	if len(s.queue) == 0 {
		return false
	}
	return checkQuota(quota, decision) == nil
}

func (s *Session) RemainingLikes() int {
	return s.Quota().RemainingLikes()
}

func (s *Session) RemainingSuperLikes() int {
	return s.Quota().RemainingSuperLikes()
}

func (s *Session) RemainingRewinds() int {
	return s.Quota().RemainingRewinds()
}

func (s *Session) Quota() model.QuotaState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.effectiveQuotaLocked(s.now().UTC())
}

func (s *Session) QueueSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.queue)
}

func (s *Session) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now().UTC()
	view := View{
		UserID:    s.userID,
		Demo:      s.demo,
		QueueSize: len(s.queue),
		Quota:     s.effectiveQuotaLocked(now),
		Exhausted: s.exhausted,
		Upcoming:  []model.Candidate{},
		Error:     liveNotice(s.errNotice, now),
		Match:     liveNotice(s.matchNotice, now),
	}
	if len(s.queue) > 0 {
		head := s.queue[0].Clone()
		view.Head = &head
	}
	for i := 1; i < len(s.queue) && i <= 2; i++ {
		view.Upcoming = append(view.Upcoming, s.queue[i].Clone())
	}
	return view
}

func (s *Session) DismissNotice() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errNotice = nil
	s.matchNotice = nil
}

func (s *Session) acquire(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.cfg.RejectWhenBusy {
		select {
		case s.slot <- struct{}{}:
			return s.release, nil
		default:
			return nil, ErrBusy
		}
	}
	select {
	case s.slot <- struct{}{}:
		return s.release, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Session) release() {
	<-s.slot
}

func (s *Session) load(ctx context.Context, filters model.CandidateFilters, refresh bool) (int, error) {
	if !s.backend.configured() {
		return 0, ErrDependenciesNil
	}

	filters, err := s.normalizeFilters(filters)
	if err != nil {
		return 0, err
	}

	items, err := s.backend.Candidates.Fetch(ctx, s.userID, filters)
	if err != nil {
		rerr := remoteError("load candidates", err)
		if ctx.Err() == nil {
			s.logger.Warn("load candidates failed", zap.Error(err))
			s.mu.Lock()
			s.setErrorNoticeLocked(rerr.Message)
			s.mu.Unlock()
		}
		return 0, rerr
	}

	prepared := make([]model.Candidate, 0, len(items))
	for _, item := range items {
		if c, ok := s.prepareCandidate(ctx, item); ok {
			prepared = append(prepared, c)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if refresh {
		s.queue = nil
		s.seen = make(map[string]struct{}, len(prepared))
	}
	added := 0
	for _, c := range prepared {
		if _, dup := s.seen[c.ID]; dup {
			continue
		}
		s.seen[c.ID] = struct{}{}
		s.queue = append(s.queue, c)
		added++
	}
	s.filters = filters
	s.exhausted = added == 0
	s.errNotice = nil

	return added, nil
}

func (s *Session) swipe(ctx context.Context, candidateID string, decision enums.SwipeDecision) (model.SwipeOutcome, error) {
	now := s.now().UTC()

	s.mu.Lock()
	s.rolloverLocked(now)
	if len(s.queue) == 0 || s.queue[0].ID != candidateID {
		s.mu.Unlock()
		return model.SwipeOutcome{}, ErrNotFound
	}
	if err := checkQuota(s.quota, decision); err != nil {
		s.mu.Unlock()
		return model.SwipeOutcome{}, err
	}
	premium := s.quota.Premium
	s.mu.Unlock()

	if decision.IsPositive() && premium {
		if err := s.throttle(ctx); err != nil {
			return model.SwipeOutcome{}, err
		}
	}

	s.mu.Lock()
	candidate := s.queue[0]
	previous := s.last
	s.queue = s.queue[1:]
	s.last = &swipedEntry{candidate: candidate, decision: decision}
	s.mu.Unlock()

	result, err := s.backend.Actions.Submit(ctx, s.userID, candidate.ID, decision)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		cancelled := ctx.Err() != nil
		rerr := remoteError("submit "+strings.ToLower(string(decision)), err)

		s.mu.Lock()
		if cancelled || !s.cfg.KeepProgressOnFailure {
			s.queue = prependCandidate(s.queue, candidate)
		}
		s.last = previous
		if !cancelled {
			s.setErrorNoticeLocked(rerr.Message)
		}
		s.mu.Unlock()

		if !cancelled {
			s.logger.Warn("submit decision failed",
				zap.String("target_id", candidate.ID),
				zap.String("decision", string(decision)),
				zap.Error(err),
			)
		}
		return model.SwipeOutcome{}, rerr
	}

	outcome := buildOutcome(decision, candidate, result, now)

	s.mu.Lock()
	s.quota = reconcileQuota(s.quota, decision, result)
	if outcome.Matched {
		s.matchNotice = &Notice{
			Kind:      NoticeMatch,
			Message:   outcome.Match.Message,
			Outcome:   &outcome,
			ExpiresAt: now.Add(s.cfg.NoticeTTL),
		}
	}
	quota := s.quota
	s.mu.Unlock()

	s.afterReconcile(ctx, quota, outcome, now)
	return outcome, nil
}

func (s *Session) rewind(ctx context.Context, candidateID string) (model.SwipeOutcome, error) {
	now := s.now().UTC()

	s.mu.Lock()
	s.rolloverLocked(now)
	if s.last == nil {
		s.mu.Unlock()
		return model.SwipeOutcome{}, ErrInvalidState
	}
	if candidateID != "" && candidateID != s.last.candidate.ID {
		s.mu.Unlock()
		return model.SwipeOutcome{}, ErrNotFound
	}
	if !s.quota.CanUseRewind() {
		limit := s.quota.RewindsLimit
		s.mu.Unlock()
		return model.SwipeOutcome{}, QuotaExceededError{Decision: enums.SwipeDecisionRewind, Limit: limit}
	}

	entry := *s.last
	s.queue = prependCandidate(removeCandidate(s.queue, entry.candidate.ID), entry.candidate)
	s.last = nil
	s.mu.Unlock()

	restored, err := s.backend.Actions.Rewind(ctx, s.userID, entry.candidate.ID)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		cancelled := ctx.Err() != nil
		rerr := remoteError("rewind", err)

		s.mu.Lock()
		if cancelled || !s.cfg.KeepProgressOnFailure {
			s.queue = removeCandidate(s.queue, entry.candidate.ID)
			s.last = &entry
		}
		if !cancelled {
			s.setErrorNoticeLocked(rerr.Message)
		}
		s.mu.Unlock()

		if !cancelled {
			s.logger.Warn("rewind failed", zap.String("target_id", entry.candidate.ID), zap.Error(err))
		}
		return model.SwipeOutcome{}, rerr
	}

	head := entry.candidate
	if restored != nil && restored.ID == entry.candidate.ID {
		if c, ok := s.prepareCandidate(ctx, *restored); ok {
			head = c
		}
	}

	s.mu.Lock()
	if len(s.queue) > 0 && s.queue[0].ID == head.ID {
		s.queue[0] = head
	}
	s.quota = refundQuota(s.quota, entry.decision)
	if s.matchNotice != nil && s.matchNotice.Outcome != nil && s.matchNotice.Outcome.Candidate.ID == head.ID {
		s.matchNotice = nil
	}
	quota := s.quota
	s.mu.Unlock()

	outcome := model.SwipeOutcome{
		Decision:  enums.SwipeDecisionRewind,
		Candidate: head.Clone(),
	}
	s.afterReconcile(ctx, quota, outcome, now)
	return outcome, nil
}

func (s *Session) throttle(ctx context.Context) error {
	if s.demo || s.deps.RateLimiter == nil {
		return nil
	}
	retryAfter, allowed, err := s.deps.RateLimiter.AllowLike(ctx, s.userID)
	if err != nil {
		s.logger.Warn("like rate limiter unavailable, allowing", zap.Error(err))
		return nil
	}
	if !allowed {
		return TooFastError{RetryAfterSec: retryAfter}
	}
	return nil
}

// afterReconcile runs the best-effort side effects of a successful decision.
// Their failures are logged and never surface to the caller.
func (s *Session) afterReconcile(ctx context.Context, quota model.QuotaState, outcome model.SwipeOutcome, at time.Time) {
	if err := s.backend.Metrics.Save(ctx, s.userID, quota); err != nil {
		s.logger.Warn("save quota failed", zap.Error(err))
	}
	if s.demo {
		return
	}
	if s.deps.Journal != nil {
		if err := s.deps.Journal.Record(ctx, s.userID, outcome, at); err != nil {
			s.logger.Warn("record swipe outcome failed", zap.Error(err))
		}
	}
	if outcome.Matched && s.deps.Notifier != nil {
		if err := s.deps.Notifier.NotifyMatch(ctx, s.userID, outcome); err != nil {
			s.logger.Warn("notify match failed", zap.Error(err))
		}
	}
}

func (s *Session) prepareCandidate(ctx context.Context, c model.Candidate) (model.Candidate, bool) {
	c.ID = strings.TrimSpace(c.ID)
	if c.ID == "" || c.Age < 18 {
		return model.Candidate{}, false
	}
	c = c.Clone()
	if c.DistanceLabel == "" {
		c.DistanceLabel = rules.DistanceLabel(c.DistanceKM)
	}
	if c.MutualInterests == nil {
		c.MutualInterests = []string{}
	}
	if !s.demo && s.deps.Photos != nil && len(c.Photos) > 0 {
		c.Photos = s.deps.Photos.Resolve(ctx, c.Photos)
	}
	return c, true
}

func (s *Session) normalizeFilters(filters model.CandidateFilters) (model.CandidateFilters, error) {
	defaults := s.cfg.DefaultFilters
	if filters.MinAge <= 0 {
		filters.MinAge = defaults.MinAge
	}
	if filters.MinAge < 18 {
		filters.MinAge = 18
	}
	if filters.MaxAge <= 0 {
		filters.MaxAge = defaults.MaxAge
	}
	if filters.MaxAge > 0 && filters.MaxAge < filters.MinAge {
		return model.CandidateFilters{}, fmt.Errorf("%w: max_age is below min_age", ErrValidation)
	}
	if filters.MaxDistanceKM <= 0 {
		filters.MaxDistanceKM = defaults.MaxDistanceKM
	}
	if filters.MaxDistanceKM < 0 {
		filters.MaxDistanceKM = 0
	}
	if s.cfg.MaxDistanceKM > 0 && filters.MaxDistanceKM > s.cfg.MaxDistanceKM {
		filters.MaxDistanceKM = s.cfg.MaxDistanceKM
	}
	if filters.Gender == "" {
		filters.Gender = defaults.Gender
	}
	gender, ok := enums.ParseGenderPreference(string(filters.Gender))
	if !ok {
		return model.CandidateFilters{}, fmt.Errorf("%w: unsupported gender preference", ErrValidation)
	}
	filters.Gender = gender
	filters.Interests = normalizeTags(filters.Interests)
	if filters.Limit <= 0 || filters.Limit > s.cfg.PageSize {
		filters.Limit = s.cfg.PageSize
	}
	return filters, nil
}

func (s *Session) setErrorNoticeLocked(message string) {
	s.errNotice = &Notice{
		Kind:      NoticeError,
		Message:   message,
		ExpiresAt: s.now().UTC().Add(s.cfg.NoticeTTL),
	}
}

func (s *Session) rolloverLocked(now time.Time) {
	s.quota = s.effectiveQuotaLocked(now)
}

// effectiveQuotaLocked applies the daily reset without mutating the session.
func (s *Session) effectiveQuotaLocked(now time.Time) model.QuotaState {
	q := s.quota
	if q.ResetAt.IsZero() || now.Before(q.ResetAt) {
		return q
	}
	q.LikesUsed = 0
	q.SuperLikesUsed = 0
	q.RewindsUsed = 0
	q.ResetAt = rules.NextResetAt(now, s.loc)
	return q
}

func checkQuota(q model.QuotaState, decision enums.SwipeDecision) error {
	switch decision {
	case enums.SwipeDecisionLike:
		if !q.CanUseLike() {
			return QuotaExceededError{Decision: decision, Limit: q.LikesLimit}
		}
	case enums.SwipeDecisionSuperLike:
		if !q.CanUseSuperLike() {
			return QuotaExceededError{Decision: decision, Limit: q.SuperLikesLimit}
		}
	case enums.SwipeDecisionRewind:
		if !q.CanUseRewind() {
			return QuotaExceededError{Decision: decision, Limit: q.RewindsLimit}
		}
	}
	return nil
}

// reconcileQuota prefers the remaining counters reported by the remote service
// and falls back to a local increment for the consumed counter.
func reconcileQuota(q model.QuotaState, decision enums.SwipeDecision, r ActionResult) model.QuotaState {
	likeDelta, superDelta := 0, 0
	switch decision {
	case enums.SwipeDecisionLike:
		likeDelta = 1
	case enums.SwipeDecisionSuperLike:
		superDelta = 1
	}

	q.LikesUsed, q.LikesLimit = applyRemaining(q.LikesUsed, q.LikesLimit, r.LikesRemaining, likeDelta)
	q.SuperLikesUsed, q.SuperLikesLimit = applyRemaining(q.SuperLikesUsed, q.SuperLikesLimit, r.SuperLikesRemaining, superDelta)
	q.RewindsUsed, q.RewindsLimit = applyRemaining(q.RewindsUsed, q.RewindsLimit, r.RewindsRemaining, 0)
	return q.Normalized()
}

func applyRemaining(used, limit int, remaining *int, localDelta int) (int, int) {
	if remaining == nil {
		return used + localDelta, limit
	}
	left := *remaining
	if left < 0 {
		left = 0
	}
	if left > limit {
		return 0, left
	}
	return limit - left, limit
}

// refundQuota spends one rewind and gives back what the undone decision used.
func refundQuota(q model.QuotaState, undone enums.SwipeDecision) model.QuotaState {
	q.RewindsUsed++
	switch undone {
	case enums.SwipeDecisionLike:
		q.LikesUsed--
	case enums.SwipeDecisionSuperLike:
		q.SuperLikesUsed--
	}
	return q.Normalized()
}

func buildOutcome(decision enums.SwipeDecision, candidate model.Candidate, r ActionResult, now time.Time) model.SwipeOutcome {
	outcome := model.SwipeOutcome{
		Decision:  decision,
		Candidate: candidate.Clone(),
		Matched:   decision.IsPositive() && r.Matched,
	}
	if !outcome.Matched {
		return outcome
	}

	match := &model.MatchData{
		ID:        strings.TrimSpace(r.MatchID),
		MatchedAt: now,
		Message:   strings.TrimSpace(r.MatchMessage),
	}
	if match.ID == "" {
		match.ID = uuid.NewString()
	}
	if r.MatchedAt != nil && !r.MatchedAt.IsZero() {
		match.MatchedAt = r.MatchedAt.UTC()
	}
	if match.Message == "" {
		match.Message = defaultMatchMessage
	}
	outcome.Match = match
	return outcome
}

func liveNotice(n *Notice, now time.Time) *Notice {
	if n == nil || !now.Before(n.ExpiresAt) {
		return nil
	}
	out := *n
	return &out
}

func prependCandidate(queue []model.Candidate, c model.Candidate) []model.Candidate {
	out := make([]model.Candidate, 0, len(queue)+1)
	out = append(out, c)
	return append(out, queue...)
}

func removeCandidate(queue []model.Candidate, id string) []model.Candidate {
	out := queue[:0:0]
	for _, c := range queue {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		key := strings.ToLower(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func resolveLocation(name string) *time.Location {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
