package ports

import (
	"context"
	"time"

	"github.com/tsiemasilo/tendermanagement/internal/core/domain"
)

// SessionStore persists server-side session records.
type SessionStore interface {
	Save(ctx context.Context, session domain.Session) error
	// Get returns domain.ErrSessionNotFound for unknown or expired ids.
	Get(ctx context.Context, id string) (*domain.Session, error)
	// Touch extends the session so that it expires at expiresAt.
	Touch(ctx context.Context, id string, expiresAt time.Time) error
	Delete(ctx context.Context, id string) error
}

// Pinger is implemented by backends that can report their reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
