package memory

import (
	"context"
	"sync"

	"deck-game-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionStore, the
// default backend and the test workhorse. States are deep-copied on both
// paths so callers never alias store-held data.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.SessionState
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]domain.SessionState),
	}
}

func (s *SessionStore) Load(_ context.Context, playerID string) (domain.SessionState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[playerID]
	if !ok {
		return domain.SessionState{}, false, nil
	}
	return state.Clone(), true, nil
}

func (s *SessionStore) Save(_ context.Context, playerID string, state domain.SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[playerID] = state.Clone()
	return nil
}
