package permissions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/contaflow/contaflow/internal/shared"
)

// ErrNotFound indicates that the requested grant does not exist.
var ErrNotFound = errors.New("permissions: not found")

const cacheTTL = 2 * time.Minute

// Service resolves and manages permission grants, caching resolved
// capability maps in Redis.
type Service struct {
	pool  *pgxpool.Pool
	cache *redis.Client
}

// NewService constructs a Service backed by the provided pool and cache.
func NewService(pool *pgxpool.Pool, cache *redis.Client) *Service {
	return &Service{pool: pool, cache: cache}
}

type resolved struct {
	Admin bool                 `json:"admin"`
	Tabs  map[Tab]Capabilities `json:"tabs"`
}

// Resolve returns the capability map for a user within a scope.
// Admins receive every capability on every tab.
func (s *Service) Resolve(ctx context.Context, userID string, scope shared.Scope) (map[Tab]Capabilities, error) {
	if cached, ok := s.fromCache(ctx, userID, scope); ok {
		return cached, nil
	}

	var isAdmin bool
	err := s.pool.QueryRow(ctx, `SELECT is_admin FROM users WHERE id = $1 AND is_active`, userID).Scan(&isAdmin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return map[Tab]Capabilities{}, nil
		}
		return nil, fmt.Errorf("permissions: resolve user: %w", err)
	}

	out := make(map[Tab]Capabilities, len(Tabs))
	if isAdmin {
		for _, tab := range Tabs {
			out[tab] = AllCapabilities
		}
		s.toCache(ctx, userID, scope, resolved{Admin: true, Tabs: out})
		return out, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT tab, can_read, can_write, can_edit, can_delete
		   FROM user_permissions
		  WHERE user_id = $1 AND scope = $2`,
		userID, string(scope))
	if err != nil {
		return nil, fmt.Errorf("permissions: resolve grants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tab string
		var caps Capabilities
		if err := rows.Scan(&tab, &caps.Read, &caps.Write, &caps.Edit, &caps.Delete); err != nil {
			return nil, err
		}
		out[Tab(tab)] = caps
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.toCache(ctx, userID, scope, resolved{Tabs: out})
	return out, nil
}

// Grant upserts a permission row.
func (s *Service) Grant(ctx context.Context, grant Grant) error {
	if !shared.ValidScope(grant.Scope) {
		return fmt.Errorf("%w: unknown scope %q", shared.ErrValidation, grant.Scope)
	}
	if !ValidTab(grant.Tab) {
		return fmt.Errorf("%w: unknown tab %q", shared.ErrValidation, grant.Tab)
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_permissions (user_id, scope, tab, can_read, can_write, can_edit, can_delete, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		 ON CONFLICT (user_id, scope, tab) DO UPDATE SET
		   can_read = EXCLUDED.can_read,
		   can_write = EXCLUDED.can_write,
		   can_edit = EXCLUDED.can_edit,
		   can_delete = EXCLUDED.can_delete,
		   updated_at = NOW()`,
		grant.UserID, string(grant.Scope), string(grant.Tab),
		grant.Capabilities.Read, grant.Capabilities.Write, grant.Capabilities.Edit, grant.Capabilities.Delete)
	if err != nil {
		return fmt.Errorf("permissions: grant: %w", err)
	}
	s.invalidate(ctx, grant.UserID)
	return nil
}

// Revoke removes a permission row. Returns ErrNotFound when nothing
// was deleted.
func (s *Service) Revoke(ctx context.Context, userID string, scope shared.Scope, tab Tab) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM user_permissions WHERE user_id = $1 AND scope = $2 AND tab = $3`,
		userID, string(scope), string(tab))
	if err != nil {
		return fmt.Errorf("permissions: revoke: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	s.invalidate(ctx, userID)
	return nil
}

// ListForUser returns every grant a user holds across scopes.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]Grant, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id, scope, tab, can_read, can_write, can_edit, can_delete, created_at, updated_at
		   FROM user_permissions
		  WHERE user_id = $1
		  ORDER BY scope, tab`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("permissions: list: %w", err)
	}
	defer rows.Close()

	var grants []Grant
	for rows.Next() {
		var g Grant
		var scope, tab string
		if err := rows.Scan(&g.UserID, &scope, &tab,
			&g.Capabilities.Read, &g.Capabilities.Write, &g.Capabilities.Edit, &g.Capabilities.Delete,
			&g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		g.Scope = shared.Scope(scope)
		g.Tab = Tab(tab)
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

// RemoveAllForUser drops every grant a user holds. Used when the user
// record itself is deleted.
func (s *Service) RemoveAllForUser(ctx context.Context, userID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM user_permissions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("permissions: remove all: %w", err)
	}
	s.invalidate(ctx, userID)
	return nil
}

// IsAdmin reports whether the user carries the admin flag.
func (s *Service) IsAdmin(ctx context.Context, userID string) (bool, error) {
	var isAdmin bool
	err := s.pool.QueryRow(ctx, `SELECT is_admin FROM users WHERE id = $1 AND is_active`, userID).Scan(&isAdmin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return isAdmin, nil
}

func (s *Service) cacheKey(userID string, scope shared.Scope) string {
	return "perm:" + userID + ":" + string(scope)
}

func (s *Service) fromCache(ctx context.Context, userID string, scope shared.Scope) (map[Tab]Capabilities, bool) {
	if s.cache == nil {
		return nil, false
	}
	payload, err := s.cache.Get(ctx, s.cacheKey(userID, scope)).Bytes()
	if err != nil {
		return nil, false
	}
	var stored resolved
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, false
	}
	if stored.Tabs == nil {
		stored.Tabs = map[Tab]Capabilities{}
	}
	return stored.Tabs, true
}

func (s *Service) toCache(ctx context.Context, userID string, scope shared.Scope, value resolved) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, s.cacheKey(userID, scope), payload, cacheTTL).Err()
}

func (s *Service) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	for _, scope := range []shared.Scope{shared.ScopePersonal, shared.ScopeHousehold, shared.ScopeFather, shared.ScopeMother} {
		_ = s.cache.Del(ctx, s.cacheKey(userID, scope)).Err()
	}
}
