package sessions

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/RCDNC/swipedeck/internal/pkg/validate"
	"github.com/RCDNC/swipedeck/internal/services/swipes"
)

const (
	defaultIdleTTL    = 30 * time.Minute
	defaultMaxPerUser = 4
)

var (
	ErrNotFound   = errors.New("session not found")
	ErrForbidden  = errors.New("session belongs to another user")
	ErrValidation = errors.New("validation error")
)

type Config struct {
	IdleTTL    time.Duration
	MaxPerUser int
}

type Dependencies struct {
	Swipes       swipes.Dependencies
	SwipesConfig swipes.Config
	Logger       *zap.Logger
}

type Handle struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	Session   *swipes.Session

	// OpenErr is set when the quota could not be loaded. The session is still
	// usable with tier defaults.
	OpenErr error
}

type entry struct {
	handle     Handle
	lastAccess time.Time
}

// Registry keeps one swipe session per UI surface. Sessions are owned by the
// user that created them and dropped after IdleTTL without access.
type Registry struct {
	deps   Dependencies
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
	newID  func() string

	mu      sync.Mutex
	entries map[string]*entry
}

func NewRegistry(deps Dependencies, cfg Config) *Registry {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = defaultIdleTTL
	}
	if cfg.MaxPerUser <= 0 {
		cfg.MaxPerUser = defaultMaxPerUser
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		deps:    deps,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
		entries: make(map[string]*entry),
	}
}

func (r *Registry) Create(ctx context.Context, userID string) (Handle, error) {
	userID = strings.TrimSpace(userID)
	if !validate.Identifier(userID) {
		return Handle{}, ErrValidation
	}

	session, err := swipes.NewSession(r.deps.Swipes, r.deps.SwipesConfig, userID)
	if err != nil {
		return Handle{}, err
	}

	handle := Handle{
		ID:        r.newID(),
		UserID:    userID,
		CreatedAt: r.now().UTC(),
		Session:   session,
	}
	if err := session.Open(ctx); err != nil {
		handle.OpenErr = err
		r.logger.Warn("session opened with default quota", zap.String("user_id", userID), zap.Error(err))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[handle.ID] = &entry{handle: handle, lastAccess: handle.CreatedAt}
	r.trimUserLocked(userID)
	return handle, nil
}

func (r *Registry) Get(id, userID string) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[strings.TrimSpace(id)]
	if !ok {
		return Handle{}, ErrNotFound
	}
	if e.handle.UserID != userID {
		return Handle{}, ErrForbidden
	}
	e.lastAccess = r.now().UTC()
	return e.handle, nil
}

func (r *Registry) Delete(id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id = strings.TrimSpace(id)
	e, ok := r.entries[id]
	if !ok {
		return ErrNotFound
	}
	if e.handle.UserID != userID {
		return ErrForbidden
	}
	delete(r.entries, id)
	return nil
}

// EvictIdle drops every session not accessed since IdleTTL and reports how
// many were removed.
func (r *Registry) EvictIdle(_ context.Context) (int, error) {
	cutoff := r.now().UTC().Add(-r.cfg.IdleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, e := range r.entries {
		if e.lastAccess.Before(cutoff) {
			delete(r.entries, id)
			evicted++
		}
	}
	return evicted, nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) trimUserLocked(userID string) {
	owned := make([]*entry, 0, r.cfg.MaxPerUser+1)
	for _, e := range r.entries {
		if e.handle.UserID == userID {
			owned = append(owned, e)
		}
	}
	if len(owned) <= r.cfg.MaxPerUser {
		return
	}

	sort.Slice(owned, func(i, j int) bool {
		return owned[i].lastAccess.Before(owned[j].lastAccess)
	})
	for _, e := range owned[:len(owned)-r.cfg.MaxPerUser] {
		delete(r.entries, e.handle.ID)
	}
}
