package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tsiemasilo/tendermanagement/internal/api/session"
	"github.com/tsiemasilo/tendermanagement/internal/core/ports"
	"github.com/tsiemasilo/tendermanagement/internal/core/service"
	"github.com/tsiemasilo/tendermanagement/internal/infrastructure/db/memory"
	"github.com/tsiemasilo/tendermanagement/internal/infrastructure/export"
)

type testServer struct {
	e     *echo.Echo
	users *service.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	userRepo := memory.NewUserRepository()
	tenderRepo := memory.NewTenderRepository()
	sessions := memory.NewSessionStore()
	log := zerolog.Nop()

	users := service.NewUserService(userRepo, log)
	e, err := NewRouter(Deps{
		Logger:   log,
		Auth:     service.NewAuthService(userRepo, log),
		Users:    users,
		Tenders:  service.NewTenderService(tenderRepo, time.UTC, log),
		Exporter: export.NewXLSXExporter(),
		Sessions: session.NewManager(sessions, session.Options{Secret: "test-secret"}),
		Pingers:  map[string]ports.Pinger{"storage": tenderRepo, "sessions": sessions},
	})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return &testServer{e: e, users: users}
}

func (s *testServer) seedUser(t *testing.T, username, password string, admin bool) string {
	t.Helper()
	u, err := s.users.Create(context.Background(), ports.CreateUserInput{Username: username, Password: password, IsAdmin: admin})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u.ID
}

func (s *testServer) do(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	rec := s.do(http.MethodPost, "/api/auth/login", `{"username":"`+username+`","password":"`+password+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", username, rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	t.Fatalf("login %s: no session cookie", username)
	return nil
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
}

func TestRouter_LoginThenMe(t *testing.T) {
	s := newTestServer(t)
	s.seedUser(t, "alice", "secret", false)

	ck := s.login(t, "alice", "secret")
	rec := s.do(http.MethodGet, "/api/auth/me", "", ck)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var me map[string]any
	decode(t, rec, &me)
	if me["username"] != "alice" || me["isAdmin"] != false {
		t.Fatalf("unexpected user payload: %+v", me)
	}
	if _, leaked := me["password"]; leaked {
		t.Fatalf("password leaked: %+v", me)
	}
	if _, leaked := me["passwordHash"]; leaked {
		t.Fatalf("password hash leaked: %+v", me)
	}
}

func TestRouter_LoginWrongPassword(t *testing.T) {
	s := newTestServer(t)
	s.seedUser(t, "alice", "secret", false)

	rec := s.do(http.MethodPost, "/api/auth/login", `{"username":"alice","password":"nope"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			t.Fatalf("session cookie set on failed login")
		}
	}

	var body errorResponse
	decode(t, rec, &body)
	if body.Message != "Invalid username or password" {
		t.Fatalf("unexpected message %q", body.Message)
	}
}

func TestRouter_LoginValidation(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/auth/login", `{"username":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body errorResponse
	decode(t, rec, &body)
	if body.Message != "Validation error" || len(body.Errors) != 2 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestRouter_MeWithoutSession(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/auth/me", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var body errorResponse
	decode(t, rec, &body)
	if body.Message != "Not authenticated" {
		t.Fatalf("unexpected message %q", body.Message)
	}
}

func TestRouter_MeAfterUserDeleted(t *testing.T) {
	s := newTestServer(t)
	s.seedUser(t, "root", "pw", true)
	victim := s.seedUser(t, "bob", "pw", false)

	bobCookie := s.login(t, "bob", "pw")
	rootCookie := s.login(t, "root", "pw")

	if rec := s.do(http.MethodDelete, "/api/admin/users/"+victim, "", rootCookie); rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}

	rec := s.do(http.MethodGet, "/api/auth/me", "", bobCookie)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var body errorResponse
	decode(t, rec, &body)
	if body.Message != "User not found" {
		t.Fatalf("unexpected message %q", body.Message)
	}
}

func TestRouter_Logout(t *testing.T) {
	s := newTestServer(t)
	s.seedUser(t, "alice", "secret", false)
	ck := s.login(t, "alice", "secret")

	rec := s.do(http.MethodPost, "/api/auth/logout", "", ck)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	decode(t, rec, &body)
	if body["message"] != "Logged out successfully" {
		t.Fatalf("unexpected body: %+v", body)
	}

	if rec := s.do(http.MethodGet, "/api/tenders", "", ck); rec.Code != http.StatusUnauthorized {
		t.Fatalf("old cookie still valid: %d", rec.Code)
	}
}

func TestRouter_TendersRequireAuth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/tenders", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var body errorResponse
	decode(t, rec, &body)
	if body.Message != "Authentication required" {
		t.Fatalf("unexpected message %q", body.Message)
	}
}

const sampleTender = `{"tenderNumber":"TND-2025-099","clientName":"Acme","description":"x",` +
	`"briefingDate":"2025-03-01T10:00:00Z","submissionDate":"2025-03-10T10:00:00Z",` +
	`"venue":"HQ","compulsoryBriefing":true}`

func TestRouter_TenderScenario(t *testing.T) {
	s := newTestServer(t)
	s.seedUser(t, "alice", "secret", false)
	ck := s.login(t, "alice", "secret")

	rec := s.do(http.MethodPost, "/api/tenders", sampleTender, ck)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created map[string]any
	decode(t, rec, &created)

	id, _ := created["id"].(string)
	if id == "" {
		t.Fatalf("expected generated id: %+v", created)
	}
	want := map[string]any{
		"id":                 id,
		"tenderNumber":       "TND-2025-099",
		"clientName":         "Acme",
		"description":        "x",
		"briefingDate":       "2025-03-01T10:00:00Z",
		"submissionDate":     "2025-03-10T10:00:00Z",
		"venue":              "HQ",
		"compulsoryBriefing": true,
	}
	for k, v := range want {
		if created[k] != v {
			t.Fatalf("field %s: expected %v, got %v", k, v, created[k])
		}
	}

	rec = s.do(http.MethodGet, "/api/tenders/"+id, "", ck)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}
	var fetched map[string]any
	decode(t, rec, &fetched)
	for k, v := range want {
		if fetched[k] != v {
			t.Fatalf("fetched field %s: expected %v, got %v", k, v, fetched[k])
		}
	}
}

func TestRouter_TenderDuplicateNumber(t *testing.T) {
	s := newTestServer(t)
	s.seedUser(t, "alice", "secret", false)
	ck := s.login(t, "alice", "secret")

	if rec := s.do(http.MethodPost, "/api/tenders", sampleTender, ck); rec.Code != http.StatusCreated {
		t.Fatalf("first create: %d", rec.Code)
	}
	rec := s.do(http.MethodPost, "/api/tenders", sampleTender, ck)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body errorResponse
	decode(t, rec, &body)
	if body.Message != "Tender number already exists" {
		t.Fatalf("unexpected message %q", body.Message)
	}

	var list []map[string]any
	decode(t, s.do(http.MethodGet, "/api/tenders", "", ck), &list)
	if len(list) != 1 {
		t.Fatalf("expected 1 tender, got %d", len(list))
	}
}

func TestRouter_TenderValidation(t *testing.T) {
	s := newTestServer(t)
	s.seedUser(t, "alice", "secret", false)
	ck := s.login(t, "alice", "secret")

	cases := map[string]struct {
		body   string
		fields []string
	}{
		"missing fields": {`{"tenderNumber":"TND-1"}`, []string{"clientName", "description", "briefingDate", "submissionDate", "venue"}},
		"empty number":   {strings.Replace(sampleTender, `"TND-2025-099"`, `""`, 1), []string{"tenderNumber"}},
		"bad date":       {strings.Replace(sampleTender, `"2025-03-01T10:00:00Z"`, `"tomorrow"`, 1), []string{"briefingDate"}},
		"wrong type":     {strings.Replace(sampleTender, `"Acme"`, `42`, 1), []string{"clientName"}},
		"mixed":          {`{"tenderNumber":5,"compulsoryBriefing":"yes"}`, []string{"tenderNumber", "compulsoryBriefing", "clientName", "description", "briefingDate", "submissionDate", "venue"}},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/api/tenders", tc.body, ck)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			var body errorResponse
			decode(t, rec, &body)
			if len(body.Errors) != len(tc.fields) {
				t.Fatalf("expected %d field errors, got %+v", len(tc.fields), body.Errors)
			}
			for i, f := range tc.fields {
				if body.Errors[i].Field != f {
					t.Fatalf("error %d: expected field %s, got %s", i, f, body.Errors[i].Field)
				}
			}
		})
	}
}

func TestRouter_TenderUpdateIdempotentAndDelete(t *testing.T) {
	s := newTestServer(t)
	s.seedUser(t, "alice", "secret", false)
	ck := s.login(t, "alice", "secret")

	var created map[string]any
	decode(t, s.do(http.MethodPost, "/api/tenders", sampleTender, ck), &created)
	id := created["id"].(string)

	patch := `{"venue":"Boardroom","compulsoryBriefing":false}`
	first := s.do(http.MethodPut, "/api/tenders/"+id, patch, ck)
	second := s.do(http.MethodPut, "/api/tenders/"+id, patch, ck)
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("update: %d, %d", first.Code, second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("update not idempotent:\n%s\n%s", first.Body.String(), second.Body.String())
	}
	var updated map[string]any
	decode(t, second, &updated)
	if updated["venue"] != "Boardroom" || updated["clientName"] != "Acme" || updated["compulsoryBriefing"] != false {
		t.Fatalf("unexpected merge: %+v", updated)
	}

	rec := s.do(http.MethodDelete, "/api/tenders/"+id, "", ck)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
	var deleted map[string]string
	decode(t, rec, &deleted)
	if deleted["id"] != id || deleted["message"] != "Tender deleted successfully" {
		t.Fatalf("unexpected delete body: %+v", deleted)
	}

	rec = s.do(http.MethodGet, "/api/tenders/"+id, "", ck)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
	var body errorResponse
	decode(t, rec, &body)
	if body.Message != "Tender not found" {
		t.Fatalf("unexpected message %q", body.Message)
	}

	if rec := s.do(http.MethodPut, "/api/tenders/"+id, patch, ck); rec.Code != http.StatusNotFound {
		t.Fatalf("update unknown: expected 404, got %d", rec.Code)
	}
}

func TestRouter_Calendar(t *testing.T) {
	s := newTestServer(t)
	s.seedUser(t, "alice", "secret", false)
	ck := s.login(t, "alice", "secret")
	s.do(http.MethodPost, "/api/tenders", sampleTender, ck)

	rec := s.do(http.MethodGet, "/api/tenders/calendar?month=2025-03", "", ck)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var days []map[string]any
	decode(t, rec, &days)
	if len(days) != 2 || days[0]["date"] != "2025-03-01" || days[1]["date"] != "2025-03-10" {
		t.Fatalf("unexpected days: %+v", days)
	}

	if rec := s.do(http.MethodGet, "/api/tenders/calendar?month=March", "", ck); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad month: expected 400, got %d", rec.Code)
	}
}

func TestRouter_Export(t *testing.T) {
	s := newTestServer(t)
	s.seedUser(t, "alice", "secret", false)
	ck := s.login(t, "alice", "secret")
	s.do(http.MethodPost, "/api/tenders", sampleTender, ck)

	rec := s.do(http.MethodGet, "/api/tenders/export", "", ck)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := rec.Header().Get(echo.HeaderContentDisposition); !strings.HasPrefix(cd, "attachment;") || !strings.Contains(cd, ".xlsx") {
		t.Fatalf("unexpected disposition %q", cd)
	}
	if rec.Body.Len() == 0 {
		t.Fatalf("empty workbook")
	}
}

func TestRouter_AdminGuard(t *testing.T) {
	s := newTestServer(t)
	s.seedUser(t, "root", "pw", true)
	s.seedUser(t, "bob", "pw", false)

	if rec := s.do(http.MethodGet, "/api/admin/users", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", rec.Code)
	}

	rec := s.do(http.MethodGet, "/api/admin/users", "", s.login(t, "bob", "pw"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin: expected 403, got %d", rec.Code)
	}
	var body errorResponse
	decode(t, rec, &body)
	if body.Message != "Admin access required" {
		t.Fatalf("unexpected message %q", body.Message)
	}

	rec = s.do(http.MethodGet, "/api/admin/users", "", s.login(t, "root", "pw"))
	if rec.Code != http.StatusOK {
		t.Fatalf("admin: expected 200, got %d", rec.Code)
	}
	var users []map[string]any
	decode(t, rec, &users)
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
}

func TestRouter_AdminUserCRUD(t *testing.T) {
	s := newTestServer(t)
	s.seedUser(t, "root", "pw", true)
	ck := s.login(t, "root", "pw")

	rec := s.do(http.MethodPost, "/api/admin/users", `{"username":"carol","password":"first"}`, ck)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created map[string]any
	decode(t, rec, &created)
	id := created["id"].(string)
	if created["isAdmin"] != false {
		t.Fatalf("expected non-admin default: %+v", created)
	}

	rec = s.do(http.MethodPost, "/api/admin/users", `{"username":"carol","password":"again"}`, ck)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate: expected 400, got %d", rec.Code)
	}
	var dup errorResponse
	decode(t, rec, &dup)
	if dup.Message != "Username already exists" {
		t.Fatalf("unexpected message %q", dup.Message)
	}

	rec = s.do(http.MethodPut, "/api/admin/users/"+id, `{"password":"second"}`, ck)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", rec.Code)
	}
	s.login(t, "carol", "second")

	rec = s.do(http.MethodGet, "/api/admin/users/"+id, "", ck)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}

	if rec := s.do(http.MethodPut, "/api/admin/users/ghost", `{"isAdmin":true}`, ck); rec.Code != http.StatusNotFound {
		t.Fatalf("update unknown: expected 404, got %d", rec.Code)
	}

	rec = s.do(http.MethodDelete, "/api/admin/users/"+id, "", ck)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/api/admin/users/"+id, "", ck); rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", rec.Code)
	}
}

func TestRouter_AdminUserPasswordTooLong(t *testing.T) {
	s := newTestServer(t)
	s.seedUser(t, "root", "pw", true)
	ck := s.login(t, "root", "pw")
	long := strings.Repeat("a", 80)

	rec := s.do(http.MethodPost, "/api/admin/users", `{"username":"bob","password":"`+long+`"}`, ck)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("create: expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	var body errorResponse
	decode(t, rec, &body)
	if body.Message != "Validation error" || len(body.Errors) != 1 || body.Errors[0].Field != "password" {
		t.Fatalf("unexpected body: %+v", body)
	}

	var created map[string]any
	decode(t, s.do(http.MethodPost, "/api/admin/users", `{"username":"bob","password":"short"}`, ck), &created)
	rec = s.do(http.MethodPut, "/api/admin/users/"+created["id"].(string), `{"password":"`+long+`"}`, ck)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("update: expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	s.login(t, "bob", "short")
}

func TestRouter_AdminCannotDeleteSelf(t *testing.T) {
	s := newTestServer(t)
	rootID := s.seedUser(t, "root", "pw", true)
	ck := s.login(t, "root", "pw")

	rec := s.do(http.MethodDelete, "/api/admin/users/"+rootID, "", ck)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body errorResponse
	decode(t, rec, &body)
	if body.Message != "Cannot delete your own account" {
		t.Fatalf("unexpected message %q", body.Message)
	}
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	decode(t, rec, &body)
	if body["status"] != "ok" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if _, err := time.Parse(time.RFC3339, body["timestamp"]); err != nil {
		t.Fatalf("bad timestamp %q", body["timestamp"])
	}

	if rec := s.do(http.MethodGet, "/api/health/ready", ""); rec.Code != http.StatusOK {
		t.Fatalf("ready: expected 200, got %d", rec.Code)
	}
}

func TestRouter_Metrics(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodGet, "/api/health", "")

	rec := s.do(http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Fatalf("expected echo request metrics in exposition")
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/tenders", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:5173")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "http://localhost:5173" {
		t.Fatalf("unexpected allow-origin %q", got)
	}
	if rec.Header().Get(echo.HeaderAccessControlAllowCredentials) != "true" {
		t.Fatalf("credentials not allowed")
	}
}
