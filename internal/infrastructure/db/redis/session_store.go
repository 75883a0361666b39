package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tsiemasilo/tendermanagement/internal/core/domain"
)

// SessionStore keeps sessions as JSON values whose Redis TTL tracks the
// session expiry.
// Key format: session:<id>
type SessionStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client, now: time.Now}
}

func (s *SessionStore) Save(ctx context.Context, session domain.Session) error {
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("session save: already expired")
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	if err := s.client.Set(ctx, s.key(session.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("session get: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("session decode: %w", err)
	}
	if session.Expired(s.now()) {
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

// Touch rewrites the stored expiry and the key TTL together.
func (s *SessionStore) Touch(ctx context.Context, id string, expiresAt time.Time) error {
	session, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	session.ExpiresAt = expiresAt

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return s.Delete(ctx, id)
	}
	// XX: never resurrect a key deleted by a concurrent logout.
	ok, err := s.client.SetXX(ctx, s.key(id), payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("session touch: %w", err)
	}
	if !ok {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *SessionStore) key(id string) string {
	return "session:" + id
}
