package bankaccounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contaflow/contaflow/internal/money"
	"github.com/contaflow/contaflow/internal/shared"
)

// Repository provides PostgreSQL backed persistence for bank accounts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const columns = `
	id, user_id, scope, name, kind,
	bank_code, agency, account_number,
	card_brand, card_last_digits, card_limit_cents, card_closing_day, card_due_day,
	created_at, updated_at`

// Create inserts one bank account.
func (r *Repository) Create(ctx context.Context, acc *BankAccount) error {
	var bankCode, agency, number *string
	if acc.Checking != nil {
		bankCode = &acc.Checking.BankCode
		agency = &acc.Checking.Agency
		number = &acc.Checking.Number
	}
	var brand, lastDigits *string
	var limitCents *int64
	var closingDay, dueDay *int
	if acc.Card != nil {
		brand = &acc.Card.Brand
		lastDigits = &acc.Card.LastDigits
		c := acc.Card.Limit.Cents()
		limitCents = &c
		closingDay = &acc.Card.ClosingDay
		dueDay = &acc.Card.DueDay
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO bank_accounts (`+columns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		acc.ID, acc.UserID, acc.Scope, acc.Name, acc.Kind,
		bankCode, agency, number,
		brand, lastDigits, limitCents, closingDay, dueDay,
		acc.CreatedAt, acc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("bankaccounts: create: %w", err)
	}
	return nil
}

// Get fetches one bank account. Returns (nil, nil) when absent.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*BankAccount, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+columns+`
		FROM bank_accounts WHERE id = $1`, id)

	acc, err := scanBankAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("bankaccounts: get: %w", err)
	}
	return acc, nil
}

// List returns every bank account in the scope, newest first.
func (r *Repository) List(ctx context.Context, scope shared.Scope) ([]BankAccount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+columns+`
		FROM bank_accounts WHERE scope = $1
		ORDER BY created_at DESC`, scope)
	if err != nil {
		return nil, fmt.Errorf("bankaccounts: list: %w", err)
	}
	defer rows.Close()

	var out []BankAccount
	for rows.Next() {
		acc, err := scanBankAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("bankaccounts: scan: %w", err)
		}
		out = append(out, *acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bankaccounts: rows: %w", err)
	}
	return out, nil
}

// Update rewrites the editable columns of one bank account.
func (r *Repository) Update(ctx context.Context, acc *BankAccount) error {
	var bankCode, agency, number *string
	if acc.Checking != nil {
		bankCode = &acc.Checking.BankCode
		agency = &acc.Checking.Agency
		number = &acc.Checking.Number
	}
	var brand, lastDigits *string
	var limitCents *int64
	var closingDay, dueDay *int
	if acc.Card != nil {
		brand = &acc.Card.Brand
		lastDigits = &acc.Card.LastDigits
		c := acc.Card.Limit.Cents()
		limitCents = &c
		closingDay = &acc.Card.ClosingDay
		dueDay = &acc.Card.DueDay
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE bank_accounts SET
			name = $2, bank_code = $3, agency = $4, account_number = $5,
			card_brand = $6, card_last_digits = $7, card_limit_cents = $8,
			card_closing_day = $9, card_due_day = $10,
			updated_at = $11
		WHERE id = $1`,
		acc.ID, acc.Name, bankCode, agency, number,
		brand, lastDigits, limitCents, closingDay, dueDay, acc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("bankaccounts: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes one bank account.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bank_accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("bankaccounts: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanBankAccount(row pgx.Row) (*BankAccount, error) {
	var (
		acc        BankAccount
		scope      string
		bankCode   *string
		agency     *string
		number     *string
		brand      *string
		lastDigits *string
		limitCents *int64
		closingDay *int
		dueDay     *int
	)
	err := row.Scan(
		&acc.ID, &acc.UserID, &scope, &acc.Name, &acc.Kind,
		&bankCode, &agency, &number,
		&brand, &lastDigits, &limitCents, &closingDay, &dueDay,
		&acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	acc.Scope = shared.Scope(scope)
	if acc.Kind == KindChecking && bankCode != nil {
		acc.Checking = &CheckingInfo{BankCode: *bankCode, Number: deref(number)}
		if agency != nil {
			acc.Checking.Agency = *agency
		}
	}
	if acc.Kind == KindCard && brand != nil {
		acc.Card = &CardInfo{Brand: *brand}
		if lastDigits != nil {
			acc.Card.LastDigits = *lastDigits
		}
		if limitCents != nil {
			acc.Card.Limit = money.FromCents(*limitCents)
		}
		if closingDay != nil {
			acc.Card.ClosingDay = *closingDay
		}
		if dueDay != nil {
			acc.Card.DueDay = *dueDay
		}
	}
	return &acc, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
