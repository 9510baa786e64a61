package memory

import (
	"context"
	"sync"

	"quizboard-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionStateStore.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.SessionState
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]domain.SessionState),
	}
}

func (s *SessionStore) Get(_ context.Context, key string) (domain.SessionState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[key]
	if !ok {
		return domain.SessionState{}, false, nil
	}
	return cloneState(state), true, nil
}

func (s *SessionStore) Set(_ context.Context, key string, state domain.SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[key] = cloneState(state)
	return nil
}

func (s *SessionStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
	return nil
}

// Len reports how many sessions are in progress.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// cloneState keeps callers from mutating the stored order slice.
func cloneState(state domain.SessionState) domain.SessionState {
	order := make([]int64, len(state.Order))
	copy(order, state.Order)
	state.Order = order
	if state.Recorded != nil {
		rec := *state.Recorded
		state.Recorded = &rec
	}
	return state
}
