package shared

import "context"

// Scope identifies one of the isolated financial contexts a user's
// records and permissions are partitioned by.
type Scope string

const (
	ScopePersonal  Scope = "personal"
	ScopeHousehold Scope = "household"
	ScopeFather    Scope = "father"
	ScopeMother    Scope = "mother"
)

// ScopeHeader selects the management scope on API requests.
const ScopeHeader = "X-Scope"

// ValidScope reports whether s names a known management scope.
func ValidScope(s Scope) bool {
	switch s {
	case ScopePersonal, ScopeHousehold, ScopeFather, ScopeMother:
		return true
	}
	return false
}

type sessionContextKey struct{}

type scopeContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// ContextWithScope stores the request's management scope in context.
func ContextWithScope(ctx context.Context, scope Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, scope)
}

// ScopeFromContext extracts the management scope, defaulting to personal.
func ScopeFromContext(ctx context.Context) Scope {
	if scope, ok := ctx.Value(scopeContextKey{}).(Scope); ok && ValidScope(scope) {
		return scope
	}
	return ScopePersonal
}
