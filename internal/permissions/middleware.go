package permissions

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/contaflow/contaflow/internal/shared"
)

// Resolver resolves capability maps; satisfied by *Service and by
// test fakes.
type Resolver interface {
	Resolve(ctx context.Context, userID string, scope shared.Scope) (map[Tab]Capabilities, error)
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// Middleware wires permission checks into HTTP handlers.
type Middleware struct {
	Service Resolver
	Logger  *slog.Logger
}

// WithScope reads the management scope from the X-Scope header and
// stores it in the request context. Unknown scopes are rejected.
func (m Middleware) WithScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(shared.ScopeHeader))
		scope := shared.ScopePersonal
		if raw != "" {
			scope = shared.Scope(raw)
			if !shared.ValidScope(scope) {
				http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
				return
			}
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithScope(r.Context(), scope)))
	})
}

// Require ensures the current user holds the capability on the tab
// within the request's scope.
func (m Middleware) Require(tab Tab, cap Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := currentUserID(r)
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			scope := shared.ScopeFromContext(r.Context())
			granted, err := m.Service.Resolve(r.Context(), userID, scope)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("resolve permissions", slog.Any("error", err), slog.String("user_id", userID))
				}
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if granted[tab].Allows(cap) {
				next.ServeHTTP(w, r)
				return
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

// RequireAdmin ensures the current user carries the admin flag.
func (m Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUserID(r)
		if !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		isAdmin, err := m.Service.IsAdmin(r.Context(), userID)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Error("resolve admin flag", slog.Any("error", err), slog.String("user_id", userID))
			}
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if !isAdmin {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func currentUserID(r *http.Request) (string, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return "", false
	}
	id := strings.TrimSpace(sess.User())
	if id == "" {
		return "", false
	}
	return id, true
}
