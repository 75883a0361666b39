// Package session issues and verifies the signed session cookie and keeps the
// backing record in a ports.SessionStore.
//
// The cookie carries an HS256 JWT whose jti is the session id. The store is
// authoritative: a well-signed cookie whose record is gone is not a session.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tsiemasilo/tendermanagement/internal/core/domain"
	"github.com/tsiemasilo/tendermanagement/internal/core/ports"
)

const (
	CookieName = "tender_session"
	// ContextKey is where the session middleware stores *domain.Session.
	ContextKey = "session"
	DefaultTTL = 7 * 24 * time.Hour
)

type Options struct {
	Secret string
	TTL    time.Duration
	// Secure marks the cookie Secure with SameSite=None. Otherwise Lax.
	Secure bool
}

type Manager struct {
	store  ports.SessionStore
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewManager(store ports.SessionStore, opts Options) *Manager {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		store:  store,
		secret: []byte(opts.Secret),
		ttl:    ttl,
		secure: opts.Secure,
		now:    time.Now,
	}
}

// Start creates a session for userID and writes its cookie.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, userID string) (*domain.Session, error) {
	now := m.now().UTC()
	s := domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	if err := m.writeCookie(w, s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load resolves the session named by the request cookie. A missing, forged or
// expired cookie and an unknown record all yield domain.ErrSessionNotFound.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*domain.Session, error) {
	id, err := m.sessionID(r)
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}
	return m.store.Get(ctx, id)
}

// Refresh slides the expiry forward and re-issues the cookie.
func (m *Manager) Refresh(ctx context.Context, w http.ResponseWriter, s *domain.Session) error {
	expiresAt := m.now().UTC().Add(m.ttl)
	if err := m.store.Touch(ctx, s.ID, expiresAt); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	s.ExpiresAt = expiresAt
	return m.writeCookie(w, *s)
}

// Destroy deletes the record behind the request cookie, if any, and expires
// the cookie. Only a store failure is reported.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if id, err := m.sessionID(r); err == nil {
		if err := m.store.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
	}
	http.SetCookie(w, m.cookie("", -1, time.Unix(0, 0)))
	return nil
}

func (m *Manager) writeCookie(w http.ResponseWriter, s domain.Session) error {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        s.ID,
		Subject:   s.UserID,
		IssuedAt:  jwt.NewNumericDate(m.now()),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}
	http.SetCookie(w, m.cookie(signed, int(m.ttl.Seconds()), s.ExpiresAt))
	return nil
}

func (m *Manager) cookie(value string, maxAge int, expires time.Time) *http.Cookie {
	c := &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if m.secure {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}

func (m *Manager) sessionID(r *http.Request) (string, error) {
	ck, err := r.Cookie(CookieName)
	if err != nil || ck.Value == "" {
		return "", errors.New("no session cookie")
	}

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(ck.Value, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		return "", err
	}
	if claims.ID == "" {
		return "", errors.New("session cookie without id")
	}
	return claims.ID, nil
}

// From returns the session the middleware attached to c.
func From(c echo.Context) (*domain.Session, bool) {
	s, ok := c.Get(ContextKey).(*domain.Session)
	return s, ok && s != nil
}
