package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contaflow/contaflow/internal/shared"
)

// Repository provides PostgreSQL backed persistence for profiles.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get fetches one profile. Returns (nil, nil) when absent.
func (r *Repository) Get(ctx context.Context, userID string, scope shared.Scope) (*Profile, error) {
	var p Profile
	var rawScope string
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, scope, name, document, address, city, postal_code, phone, email,
			created_at, updated_at
		FROM profiles WHERE user_id = $1 AND scope = $2`, userID, scope).Scan(
		&p.UserID, &rawScope, &p.Name, &p.Document, &p.Address, &p.City, &p.PostalCode,
		&p.Phone, &p.Email, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("profiles: get: %w", err)
	}
	p.Scope = shared.Scope(rawScope)
	return &p, nil
}

// Upsert creates or replaces a profile keyed by user and scope.
func (r *Repository) Upsert(ctx context.Context, profile *Profile) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO profiles (user_id, scope, name, document, address, city, postal_code, phone, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), $10)
		ON CONFLICT (user_id, scope) DO UPDATE SET
			name = EXCLUDED.name, document = EXCLUDED.document,
			address = EXCLUDED.address, city = EXCLUDED.city,
			postal_code = EXCLUDED.postal_code, phone = EXCLUDED.phone,
			email = EXCLUDED.email, updated_at = EXCLUDED.updated_at
		RETURNING created_at`,
		profile.UserID, profile.Scope, profile.Name, profile.Document,
		profile.Address, profile.City, profile.PostalCode, profile.Phone,
		profile.Email, profile.UpdatedAt,
	).Scan(&profile.CreatedAt)
	if err != nil {
		return fmt.Errorf("profiles: upsert: %w", err)
	}
	return nil
}
