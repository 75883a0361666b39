package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tsiemasilo/tendermanagement/internal/api/session"
	"github.com/tsiemasilo/tendermanagement/internal/core/domain"
	"github.com/tsiemasilo/tendermanagement/internal/infrastructure/db/memory"
)

type stubAuthService struct {
	loginFn       func(ctx context.Context, username, password string) (*domain.User, error)
	currentUserFn func(ctx context.Context, userID string) (*domain.User, error)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.currentUserFn(ctx, userID)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (*domain.User, error) {
			if username != "alice" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return &domain.User{ID: "u1", Username: username, PasswordHash: "hash"}, nil
		},
	}
	sessions := session.NewManager(memory.NewSessionStore(), session.Options{Secret: "s3cret"})
	handler := NewAuthHandler(stub, sessions, zerolog.Nop())

	req := jsonRequest(http.MethodPost, "/auth/login", `{"username":"alice","password":"secret"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["id"] != "u1" || resp["username"] != "alice" || resp["isAdmin"] != false {
		t.Fatalf("unexpected user payload: %+v", resp)
	}
	if strings.Contains(rec.Body.String(), "hash") {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}

	ck := sessionCookie(rec)
	if ck == nil {
		t.Fatalf("expected session cookie")
	}
	if !ck.HttpOnly || ck.Path != "/" {
		t.Fatalf("unexpected cookie attributes: %+v", ck)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*domain.User, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	sessions := session.NewManager(memory.NewSessionStore(), session.Options{Secret: "s3cret"})
	handler := NewAuthHandler(stub, sessions, zerolog.Nop())

	req := jsonRequest(http.MethodPost, "/auth/login", `{"username":"alice","password":"nope"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.Login(c)
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if sessionCookie(rec) != nil {
		t.Fatalf("cookie set on failed login")
	}
}

func TestAuthHandler_Login_ValidationError(t *testing.T) {
	e := newEcho()
	called := false
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*domain.User, error) {
			called = true
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub, nil, zerolog.Nop())

	req := jsonRequest(http.MethodPost, "/auth/login", `{"username":"alice"}`)
	c := e.NewContext(req, httptest.NewRecorder())

	err := handler.Login(c)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Fields) != 1 || ve.Fields[0].Field != "password" {
		t.Fatalf("unexpected fields: %+v", ve.Fields)
	}
	if called {
		t.Fatalf("service called with invalid payload")
	}
}

func TestAuthHandler_Login_MalformedJSON(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{}, nil, zerolog.Nop())

	req := jsonRequest(http.MethodPost, "/auth/login", `{"username":`)
	c := e.NewContext(req, httptest.NewRecorder())

	err := handler.Login(c)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Fields[0].Field != "body" {
		t.Fatalf("expected body ValidationError, got %v", err)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newEcho()
	store := memory.NewSessionStore()
	sessions := session.NewManager(store, session.Options{Secret: "s3cret"})
	handler := NewAuthHandler(&stubAuthService{}, sessions, zerolog.Nop())

	loginRec := httptest.NewRecorder()
	s, err := sessions.Start(context.Background(), loginRec, "u1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(sessionCookie(loginRec))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Logged out successfully") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if _, err := store.Get(context.Background(), s.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("session still stored: %v", err)
	}
	if ck := sessionCookie(rec); ck == nil || ck.MaxAge >= 0 {
		t.Fatalf("expected expired cookie, got %+v", ck)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		currentUserFn: func(_ context.Context, id string) (*domain.User, error) {
			if id == "gone" {
				return nil, domain.ErrUserNotFound
			}
			return &domain.User{ID: id, Username: "alice", IsAdmin: true}, nil
		},
	}
	handler := NewAuthHandler(stub, nil, zerolog.Nop())

	t.Run("signed in", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/auth/me", nil), rec)
		c.Set(session.ContextKey, &domain.Session{ID: "s1", UserID: "u1"})

		if err := handler.Me(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if !strings.Contains(rec.Body.String(), `"isAdmin":true`) {
			t.Fatalf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("no session", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/auth/me", nil), httptest.NewRecorder())

		err := handler.Me(c)
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusUnauthorized || he.Message != "Not authenticated" {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("user deleted", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/auth/me", nil), httptest.NewRecorder())
		c.Set(session.ContextKey, &domain.Session{ID: "s1", UserID: "gone"})

		err := handler.Me(c)
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusUnauthorized || he.Message != "User not found" {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
