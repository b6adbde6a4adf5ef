package rbac

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronicle-cms/chronicle/internal/shared"
)

// countingRepository wraps the mock and records how often grants were read.
type countingRepository struct {
	*mockRepository
	grantCalls int
}

func (c *countingRepository) UserGrants(ctx context.Context, userID int64) ([]Permission, error) {
	c.grantCalls++
	return c.mockRepository.UserGrants(ctx, userID)
}

func gateFixture(t *testing.T) (*countingRepository, Middleware) {
	t.Helper()
	repo, _ := editorFixture()
	counting := &countingRepository{mockRepository: repo}
	return counting, Middleware{Service: NewService(counting)}
}

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func requestAs(userID int64) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/posts", nil)
	sess := &shared.Session{}
	sess.SetUser(userID)
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func TestRequireAnyPublicOperation(t *testing.T) {
	_, mw := gateFixture(t)
	next, called := okHandler()

	// No declared requirements and no session: the operation is public.
	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	res := httptest.NewRecorder()
	mw.RequireAny()(next).ServeHTTP(res, req)

	assert.Equal(t, http.StatusOK, res.Code)
	assert.True(t, *called)
}

func TestRequireAnyUnauthenticated(t *testing.T) {
	repo, mw := gateFixture(t)
	next, called := okHandler()

	req := httptest.NewRequest(http.MethodPost, "/posts", nil)
	res := httptest.NewRecorder()
	mw.RequireAny(Require(ResourcePost, ActionCreate))(next).ServeHTTP(res, req)

	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.False(t, *called)
	assert.Zero(t, repo.grantCalls, "permissions must not be evaluated without a principal")
}

func TestRequireAnyGranted(t *testing.T) {
	repo, mw := gateFixture(t)
	repo.userRoles[1] = roleEditorID
	next, called := okHandler()

	res := httptest.NewRecorder()
	mw.RequireAny(Require(ResourcePost, ActionCreate))(next).ServeHTTP(res, requestAs(1))

	assert.Equal(t, http.StatusOK, res.Code)
	assert.True(t, *called)
}

func TestRequireAnyOrSemantics(t *testing.T) {
	repo, mw := gateFixture(t)
	repo.userRoles[1] = roleEditorID
	next, called := okHandler()

	// Editor holds update_own but not update_any; either one suffices.
	res := httptest.NewRecorder()
	mw.RequireAny(
		Require(ResourcePost, ActionUpdateOwn),
		Require(ResourcePost, ActionUpdateAny),
	)(next).ServeHTTP(res, requestAs(1))

	assert.Equal(t, http.StatusOK, res.Code)
	assert.True(t, *called)
}

func TestRequireAnyShortCircuits(t *testing.T) {
	repo, mw := gateFixture(t)
	repo.userRoles[1] = roleEditorID
	next, _ := okHandler()

	res := httptest.NewRecorder()
	mw.RequireAny(
		Require(ResourcePost, ActionCreate),
		Require(ResourcePost, ActionRead),
	)(next).ServeHTTP(res, requestAs(1))

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, 1, repo.grantCalls, "first grant must stop evaluation")
}

func TestRequireAnyForbidden(t *testing.T) {
	repo, mw := gateFixture(t)
	repo.userRoles[1] = roleEditorID
	next, called := okHandler()

	res := httptest.NewRecorder()
	mw.RequireAny(
		Require(ResourceCategory, ActionCreate),
		Require(ResourceCategory, ActionDelete),
	)(next).ServeHTTP(res, requestAs(1))

	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.False(t, *called)
	body := res.Body.String()
	assert.Contains(t, body, "not permitted")
	assert.NotContains(t, body, "category", "denial must not reveal the missing permission")
}

func TestRequireAnyStoreFailure(t *testing.T) {
	repo, mw := gateFixture(t)
	repo.userRoles[1] = roleEditorID
	repo.grantsErr = errors.New("connection refused")
	next, called := okHandler()

	res := httptest.NewRecorder()
	mw.RequireAny(Require(ResourcePost, ActionCreate))(next).ServeHTTP(res, requestAs(1))

	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.False(t, *called, "infrastructure failure must fail closed")
	assert.False(t, strings.Contains(res.Body.String(), "connection refused"))
}
