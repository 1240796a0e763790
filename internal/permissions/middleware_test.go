package permissions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/contaflow/contaflow/internal/shared"
)

type fakeResolver struct {
	grants map[Tab]Capabilities
	admin  bool
}

func (f *fakeResolver) Resolve(ctx context.Context, userID string, scope shared.Scope) (map[Tab]Capabilities, error) {
	return f.grants, nil
}

func (f *fakeResolver) IsAdmin(ctx context.Context, userID string) (bool, error) {
	return f.admin, nil
}

func authedRequest(t *testing.T, scope shared.Scope) *http.Request {
	t.Helper()
	sess := &shared.Session{}
	sess.SetUser("user-1")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := shared.ContextWithSession(req.Context(), sess)
	ctx = shared.ContextWithScope(ctx, scope)
	return req.WithContext(ctx)
}

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func TestRequireAllowsGrantedCapability(t *testing.T) {
	mw := Middleware{Service: &fakeResolver{grants: map[Tab]Capabilities{
		TabAccounts: {Read: true},
	}}}

	next, called := okHandler()
	rec := httptest.NewRecorder()
	mw.Require(TabAccounts, CapRead)(next).ServeHTTP(rec, authedRequest(t, shared.ScopePersonal))

	require.True(t, *called)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireDeniesMissingCapability(t *testing.T) {
	mw := Middleware{Service: &fakeResolver{grants: map[Tab]Capabilities{
		TabAccounts: {Read: true},
	}}}

	next, called := okHandler()
	rec := httptest.NewRecorder()
	mw.Require(TabAccounts, CapDelete)(next).ServeHTTP(rec, authedRequest(t, shared.ScopePersonal))

	require.False(t, *called)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRejectsAnonymous(t *testing.T) {
	mw := Middleware{Service: &fakeResolver{}}

	next, called := okHandler()
	rec := httptest.NewRecorder()
	mw.Require(TabAccounts, CapRead)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.False(t, *called)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWithScopeHeader(t *testing.T) {
	mw := Middleware{Service: &fakeResolver{}}

	var seen shared.Scope
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = shared.ScopeFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(shared.ScopeHeader, "household")
	mw.WithScope(next).ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, shared.ScopeHousehold, seen)

	rec := httptest.NewRecorder()
	bad := httptest.NewRequest(http.MethodGet, "/", nil)
	bad.Header.Set(shared.ScopeHeader, "everything")
	mw.WithScope(next).ServeHTTP(rec, bad)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	admin := Middleware{Service: &fakeResolver{admin: true}}
	next, called := okHandler()
	rec := httptest.NewRecorder()
	admin.RequireAdmin(next).ServeHTTP(rec, authedRequest(t, shared.ScopePersonal))
	require.True(t, *called)

	member := Middleware{Service: &fakeResolver{}}
	next2, called2 := okHandler()
	rec2 := httptest.NewRecorder()
	member.RequireAdmin(next2).ServeHTTP(rec2, authedRequest(t, shared.ScopePersonal))
	require.False(t, *called2)
	require.Equal(t, http.StatusForbidden, rec2.Code)
}
