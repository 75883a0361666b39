package memory

import (
	"context"
	"sync"
	"time"

	"github.com/tsiemasilo/tendermanagement/internal/core/domain"
)

// SessionStore keeps sessions in process memory. Expired entries are
// dropped lazily on access.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]domain.Session), now: time.Now}
}

func (s *SessionStore) Save(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = session
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if session.Expired(s.now()) {
		s.mu.Lock()
		defer s.mu.Unlock()
		// A Touch may have extended it since the read lock was released.
		current, ok := s.sessions[id]
		if !ok {
			return nil, domain.ErrSessionNotFound
		}
		if !current.Expired(s.now()) {
			return &current, nil
		}
		delete(s.sessions, id)
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (s *SessionStore) Touch(_ context.Context, id string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok || session.Expired(s.now()) {
		delete(s.sessions, id)
		return domain.ErrSessionNotFound
	}
	session.ExpiresAt = expiresAt
	s.sessions[id] = session
	return nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// Ping always succeeds.
func (s *SessionStore) Ping(context.Context) error { return nil }
