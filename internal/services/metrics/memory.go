package metrics

import (
	"context"
	"strings"
	"sync"

	"github.com/RCDNC/swipedeck/internal/domain/model"
)

type MemoryStore struct {
	mu     sync.Mutex
	quotas map[string]model.QuotaState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{quotas: make(map[string]model.QuotaState)}
}

func (s *MemoryStore) Get(_ context.Context, userID string) (model.QuotaState, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return model.QuotaState{}, ErrInvalidUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	quota, ok := s.quotas[userID]
	if !ok {
		return model.QuotaState{}, ErrNotFound
	}
	return quota, nil
}

func (s *MemoryStore) Save(_ context.Context, userID string, quota model.QuotaState) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrInvalidUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotas[userID] = quota.Normalized()
	return nil
}
