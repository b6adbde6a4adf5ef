package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/chronicle-cms/chronicle/internal/auth"
	"github.com/chronicle-cms/chronicle/internal/platform/httpx"
	"github.com/chronicle-cms/chronicle/internal/shared"
	_ "github.com/chronicle-cms/chronicle/testing"
)

type stubRepo struct {
	user            *auth.User
	findErr         error
	createdSessions []string
	deletedSessions []string
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	s.createdSessions = append(s.createdSessions, id)
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	s.deletedSessions = append(s.deletedSessions, id)
	return nil
}

func (s *stubRepo) PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func newAuthHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	throttle := httpx.NewThrottle(100, 100, 100, time.Minute)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := auth.NewHandler(logger, auth.NewService(repo), sessionManager, throttle)
	return handler, sessionManager
}

func activeUser(t *testing.T, password string) *auth.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	roleID := int64(2)
	return &auth.User{ID: 1, Email: "editor@test.local", Name: "Editor", PasswordHash: string(hashed), RoleID: &roleID, IsActive: true}
}

func doLogin(t *testing.T, handler http.Handler, sessionManager *shared.SessionManager, body string) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	sess, err := sessionManager.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	ctx := shared.ContextWithSession(req.Context(), sess)
	req = req.WithContext(ctx)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if err := sessionManager.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}
	return res, sess
}

func TestLoginSuccess(t *testing.T) {
	repo := &stubRepo{user: activeUser(t, "correctpass99")}
	handler, sessionManager := newAuthHandler(t, repo)

	res, sess := doLogin(t, http.HandlerFunc(handler.HandleLoginForTest), sessionManager,
		`{"email":"editor@test.local","password":"correctpass99"}`)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if id, ok := sess.UserID(); !ok || id != 1 {
		t.Fatalf("session user not set, got %d %v", id, ok)
	}
	if len(repo.createdSessions) != 1 {
		t.Fatalf("expected one registered session, got %d", len(repo.createdSessions))
	}
	if !strings.Contains(res.Body.String(), `"email":"editor@test.local"`) {
		t.Fatalf("expected user payload in response: %s", res.Body.String())
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	repo := &stubRepo{user: activeUser(t, "correctpass99")}
	handler, sessionManager := newAuthHandler(t, repo)

	res, sess := doLogin(t, http.HandlerFunc(handler.HandleLoginForTest), sessionManager,
		`{"email":"editor@test.local","password":"wrongpass99"}`)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
	if _, ok := sess.UserID(); ok {
		t.Fatalf("session must stay anonymous after failed login")
	}
}

func TestLoginStoreFailure(t *testing.T) {
	// An unreachable user store is an infrastructure fault, not a
	// credential denial: the response must be 500, never 401.
	repo := &stubRepo{findErr: errors.New("dial tcp: connection refused")}
	handler, sessionManager := newAuthHandler(t, repo)

	res, sess := doLogin(t, http.HandlerFunc(handler.HandleLoginForTest), sessionManager,
		`{"email":"editor@test.local","password":"correctpass99"}`)

	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", res.Code, res.Body.String())
	}
	if _, ok := sess.UserID(); ok {
		t.Fatalf("session must stay anonymous after a store failure")
	}
	if strings.Contains(res.Body.String(), "connection refused") {
		t.Fatalf("store error detail leaked: %s", res.Body.String())
	}
}

func TestLoginInactiveUser(t *testing.T) {
	user := activeUser(t, "correctpass99")
	user.IsActive = false
	handler, sessionManager := newAuthHandler(t, &stubRepo{user: user})

	res, _ := doLogin(t, http.HandlerFunc(handler.HandleLoginForTest), sessionManager,
		`{"email":"editor@test.local","password":"correctpass99"}`)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestLoginValidation(t *testing.T) {
	handler, sessionManager := newAuthHandler(t, &stubRepo{})

	res, _ := doLogin(t, http.HandlerFunc(handler.HandleLoginForTest), sessionManager,
		`{"email":"not-an-email","password":"short"}`)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestLogout(t *testing.T) {
	repo := &stubRepo{user: activeUser(t, "correctpass99")}
	handler, sessionManager := newAuthHandler(t, repo)

	_, sess := doLogin(t, http.HandlerFunc(handler.HandleLoginForTest), sessionManager,
		`{"email":"editor@test.local","password":"correctpass99"}`)

	// Commit into a clean recorder to capture the signed cookie value
	// the browser would replay.
	carrier := httptest.NewRecorder()
	if err := sessionManager.Commit(context.Background(), carrier, nil, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}
	var cookie *http.Cookie
	for _, c := range carrier.Result().Cookies() {
		if c.Name == sessionManager.CookieName() {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatalf("session cookie not written")
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(cookie)
	loaded, err := sessionManager.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	ctx := shared.ContextWithSession(req.Context(), loaded)
	req = req.WithContext(ctx)

	res := httptest.NewRecorder()
	handler.HandleLogoutForTest(res, req)
	if err := sessionManager.Commit(ctx, res, req, loaded); err != nil {
		t.Fatalf("commit session: %v", err)
	}

	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.Code)
	}
	if len(repo.deletedSessions) != 1 {
		t.Fatalf("expected session record removal, got %d", len(repo.deletedSessions))
	}
}
