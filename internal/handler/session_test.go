package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ulsoft/platform-auth/internal/model"
	"github.com/ulsoft/platform-auth/internal/repository"
	"github.com/ulsoft/platform-auth/internal/service"
	"github.com/ulsoft/platform-auth/internal/token"
)

// memAdminStore is just enough of an AdminStore for the cookie tests.
type memAdminStore struct {
	mu     sync.Mutex
	admins map[string]model.Admin
}

func newMemAdminStore() *memAdminStore {
	return &memAdminStore{admins: make(map[string]model.Admin)}
}

func (s *memAdminStore) Create(_ context.Context, a model.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cur := range s.admins {
		if cur.Username == a.Username {
			return repository.ErrConflict
		}
	}
	s.admins[a.ID] = a
	return nil
}

func (s *memAdminStore) GetByID(_ context.Context, id string) (model.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.admins[id]
	if !ok {
		return model.Admin{}, repository.ErrNotFound
	}
	return a, nil
}

func (s *memAdminStore) GetByUsername(_ context.Context, username string) (model.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.admins {
		if a.Username == username {
			return a, nil
		}
	}
	return model.Admin{}, repository.ErrNotFound
}

func (s *memAdminStore) GetByPhone(context.Context, string) (model.Admin, error) {
	return model.Admin{}, repository.ErrNotFound
}

func (s *memAdminStore) GetByEmail(context.Context, string) (model.Admin, error) {
	return model.Admin{}, repository.ErrNotFound
}

func (s *memAdminStore) List(context.Context) ([]model.Admin, error) { return nil, nil }

func (s *memAdminStore) Update(_ context.Context, a model.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admins[a.ID] = a
	return nil
}

func (s *memAdminStore) Deactivate(context.Context, string, time.Time) error { return nil }

func (s *memAdminStore) Delete(context.Context, string) error { return nil }

func newAdminHandler(t *testing.T) *AdminHandler {
	t.Helper()
	issuer, err := token.NewIssuer("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	svc := service.NewAdminService(newMemAdminStore(), issuer, 4)
	if err := svc.CreateSuperAdmin(context.Background(), service.CreateAdminInput{
		Username: "root", Password: "hunter2",
	}); err != nil {
		t.Fatalf("seed superadmin: %v", err)
	}
	return NewAdminHandler(svc)
}

func doJSON(h echo.HandlerFunc, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func refreshCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == cookieAdminRefresh {
			return ck
		}
	}
	t.Fatalf("no %s cookie in response", cookieAdminRefresh)
	return nil
}

func TestSigninSetsRefreshCookie(t *testing.T) {
	h := newAdminHandler(t)

	rec := doJSON(h.Signin, http.MethodPost, "/v1/admin/signin", `{"username":"root","password":"hunter2"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("signin status = %d, body %s", rec.Code, rec.Body.String())
	}

	ck := refreshCookie(t, rec)
	if !ck.HttpOnly {
		t.Error("refresh cookie must be httpOnly")
	}
	if ck.Path != adminCookiePath {
		t.Errorf("cookie path = %q, want %q", ck.Path, adminCookiePath)
	}
	if ck.Value == "" {
		t.Error("refresh cookie has no value")
	}
	if ck.MaxAge <= 0 {
		t.Errorf("cookie max-age = %d, want positive", ck.MaxAge)
	}

	var body struct {
		Access  tokenPart `json:"access"`
		Refresh tokenPart `json:"refresh"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Refresh.Token != ck.Value {
		t.Error("body refresh token differs from cookie value")
	}
	if body.Access.Token == "" {
		t.Error("no access token in body")
	}
}

func TestSigninWrongPassword(t *testing.T) {
	h := newAdminHandler(t)

	rec := doJSON(h.Signin, http.MethodPost, "/v1/admin/signin", `{"username":"root","password":"nope"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("failed signin must not set cookies")
	}
}

func TestRefreshFromCookie(t *testing.T) {
	h := newAdminHandler(t)

	signin := doJSON(h.Signin, http.MethodPost, "/v1/admin/signin", `{"username":"root","password":"hunter2"}`)
	ck := refreshCookie(t, signin)

	rec := doJSON(h.Refresh, http.MethodPost, "/v1/admin/refresh-token", "", ck)
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Access tokenPart `json:"access"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Access.Token == "" {
		t.Error("no access token in refresh response")
	}
	// The refresh token is not rotated: no new cookie should be written.
	for _, out := range rec.Result().Cookies() {
		if out.Name == cookieAdminRefresh {
			t.Error("refresh must not rewrite the refresh cookie")
		}
	}
}

func TestRefreshWithoutCookie(t *testing.T) {
	h := newAdminHandler(t)

	rec := doJSON(h.Refresh, http.MethodPost, "/v1/admin/refresh-token", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	h := newAdminHandler(t)

	signin := doJSON(h.Signin, http.MethodPost, "/v1/admin/signin", `{"username":"root","password":"hunter2"}`)
	ck := refreshCookie(t, signin)

	rec := doJSON(h.Logout, http.MethodPost, "/v1/admin/logout", "", ck)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d, body %s", rec.Code, rec.Body.String())
	}

	cleared := refreshCookie(t, rec)
	if cleared.Value != "" {
		t.Error("logout must blank the cookie value")
	}
	if cleared.MaxAge != -1 {
		t.Errorf("cleared cookie max-age = %d, want -1", cleared.MaxAge)
	}

	// Logout does not revoke the token itself, so a held copy still works.
	again := doJSON(h.Refresh, http.MethodPost, "/v1/admin/refresh-token", "", ck)
	if again.Code != http.StatusOK {
		t.Fatalf("refresh after logout = %d, want 200", again.Code)
	}
}

func TestLogoutWithoutCookie(t *testing.T) {
	h := newAdminHandler(t)

	rec := doJSON(h.Logout, http.MethodPost, "/v1/admin/logout", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == cookieAdminRefresh {
			t.Error("failed logout must not touch the cookie")
		}
	}
}
