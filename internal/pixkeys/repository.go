package pixkeys

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contaflow/contaflow/internal/shared"
)

// Repository provides PostgreSQL backed persistence for PIX keys.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const columns = `
	id, user_id, scope, label, key_type, key_value, bank_account_id,
	created_at, updated_at`

// Create inserts one PIX key.
func (r *Repository) Create(ctx context.Context, key *PixKey) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO pix_keys (`+columns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		key.ID, key.UserID, key.Scope, key.Label, key.KeyType, key.KeyValue,
		key.BankAccountID, key.CreatedAt, key.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("pixkeys: create: %w", err)
	}
	return nil
}

// Get fetches one PIX key. Returns (nil, nil) when absent.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*PixKey, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+columns+`
		FROM pix_keys WHERE id = $1`, id)

	key, err := scanPixKey(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pixkeys: get: %w", err)
	}
	return key, nil
}

// List returns every PIX key in the scope, newest first.
func (r *Repository) List(ctx context.Context, scope shared.Scope) ([]PixKey, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+columns+`
		FROM pix_keys WHERE scope = $1
		ORDER BY created_at DESC`, scope)
	if err != nil {
		return nil, fmt.Errorf("pixkeys: list: %w", err)
	}
	defer rows.Close()

	var out []PixKey
	for rows.Next() {
		key, err := scanPixKey(rows)
		if err != nil {
			return nil, fmt.Errorf("pixkeys: scan: %w", err)
		}
		out = append(out, *key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pixkeys: rows: %w", err)
	}
	return out, nil
}

// Update rewrites the editable columns of one PIX key.
func (r *Repository) Update(ctx context.Context, key *PixKey) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE pix_keys SET
			label = $2, key_type = $3, key_value = $4, bank_account_id = $5, updated_at = $6
		WHERE id = $1`,
		key.ID, key.Label, key.KeyType, key.KeyValue, key.BankAccountID, key.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("pixkeys: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes one PIX key.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM pix_keys WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pixkeys: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPixKey(row pgx.Row) (*PixKey, error) {
	var key PixKey
	var scope string
	err := row.Scan(
		&key.ID, &key.UserID, &scope, &key.Label, &key.KeyType, &key.KeyValue,
		&key.BankAccountID, &key.CreatedAt, &key.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	key.Scope = shared.Scope(scope)
	return &key, nil
}
