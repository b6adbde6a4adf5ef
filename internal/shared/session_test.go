package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/chronicle-cms/chronicle/internal/shared"
	_ "github.com/chronicle-cms/chronicle/testing"
)

func newManager(t *testing.T, secret string) *shared.SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewSessionManager(client, "test_session", secret, time.Hour, false)
}

func commitCookie(t *testing.T, sm *shared.SessionManager, sess *shared.Session) *http.Cookie {
	t.Helper()
	res := httptest.NewRecorder()
	if err := sm.Commit(context.Background(), res, nil, sess); err != nil {
		t.Fatalf("commit: %v", err)
	}
	for _, c := range res.Result().Cookies() {
		if c.Name == sm.CookieName() {
			return c
		}
	}
	t.Fatalf("no session cookie written")
	return nil
}

func TestSessionRoundTrip(t *testing.T) {
	sm := newManager(t, "round-trip-secret")

	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sess.SetUser(7)
	cookie := commitCookie(t, sm, sess)

	if cookie.Value == sess.ID {
		t.Fatalf("cookie must carry a signature, got bare session ID")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	loaded, err := sm.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if id, ok := loaded.UserID(); !ok || id != 7 {
		t.Fatalf("expected user 7 after round trip, got %d %v", id, ok)
	}
}

func TestTamperedCookieIsAnonymous(t *testing.T) {
	sm := newManager(t, "tamper-secret")

	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sess.SetUser(7)
	cookie := commitCookie(t, sm, sess)

	// Swap in a different session ID while keeping the old signature.
	_, sig, _ := strings.Cut(cookie.Value, ".")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookie.Name, Value: "forged-id." + sig})

	loaded, err := sm.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if _, ok := loaded.UserID(); ok {
		t.Fatalf("forged cookie must not resolve to an authenticated session")
	}
	if loaded.ID == "forged-id" {
		t.Fatalf("forged session ID must not be adopted")
	}
}

func TestUnsignedCookieIsAnonymous(t *testing.T) {
	sm := newManager(t, "unsigned-secret")

	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sess.SetUser(7)
	commitCookie(t, sm, sess)

	// Replaying the bare session ID without its signature is rejected.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: sess.ID})

	loaded, err := sm.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if _, ok := loaded.UserID(); ok {
		t.Fatalf("unsigned cookie must not resolve to an authenticated session")
	}
}

func TestDestroyClearsCookie(t *testing.T) {
	sm := newManager(t, "destroy-secret")

	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sess.SetUser(7)
	commitCookie(t, sm, sess)

	sm.Destroy(sess)
	cleared := commitCookie(t, sm, sess)
	if cleared.MaxAge != -1 || cleared.Value != "" {
		t.Fatalf("destroyed session must clear the cookie, got %q maxage %d", cleared.Value, cleared.MaxAge)
	}
}
