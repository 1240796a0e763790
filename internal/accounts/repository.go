package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contaflow/contaflow/internal/money"
	"github.com/contaflow/contaflow/internal/platform/db"
	"github.com/contaflow/contaflow/internal/shared"
)

// Repository provides PostgreSQL backed persistence for accounts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const accountColumns = `
	id, user_id, scope, group_id, name, kind,
	total_value_cents, fees_cents, due_date,
	installment_current, installment_total, recurrence_end,
	status, payment_date, payment_method, payment_bank_ref,
	bill_document, payment_proof, generated_bill, generated_report,
	custom_attachments, created_at, updated_at`

// CreateBatch inserts every expanded row in one transaction so a
// partial installment plan never becomes visible.
func (r *Repository) CreateBatch(ctx context.Context, accounts []Account) error {
	batch := &pgx.Batch{}
	for _, acc := range accounts {
		custom, err := json.Marshal(acc.Custom)
		if err != nil {
			return fmt.Errorf("accounts: encode attachments: %w", err)
		}

		var feesCents *int64
		if acc.FeesAndFines != nil {
			c := acc.FeesAndFines.Cents()
			feesCents = &c
		}
		var instCurrent, instTotal *int
		if acc.Installment != nil {
			instCurrent = &acc.Installment.Current
			instTotal = &acc.Installment.Total
		}
		var recurrenceEnd *time.Time
		if acc.Recurrence != nil {
			recurrenceEnd = &acc.Recurrence.EndDate
		}

		batch.Queue(`
			INSERT INTO accounts (`+accountColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
				$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`,
			acc.ID, acc.UserID, acc.Scope, acc.GroupID, acc.Name, acc.Kind,
			acc.TotalValue.Cents(), feesCents, acc.DueDate,
			instCurrent, instTotal, recurrenceEnd,
			acc.Status, nil, nil, nil,
			acc.Fixed.BillDocument, acc.Fixed.PaymentProof, acc.Fixed.GeneratedBill, acc.Fixed.GeneratedReport,
			custom, acc.CreatedAt, acc.UpdatedAt,
		)
	}

	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		results := tx.SendBatch(ctx, batch)
		for range accounts {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("accounts: insert: %w", err)
			}
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("accounts: close batch: %w", err)
		}
		return nil
	})
}

// Get fetches one account. Returns (nil, nil) when absent.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts WHERE id = $1`, id)

	acc, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("accounts: get: %w", err)
	}
	return acc, nil
}

// List returns accounts for a scope and optional due-date window,
// ascending by due date.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts WHERE scope = $1`
	args := []any{filter.UserScope}

	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(" AND due_date >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(" AND due_date <= $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY due_date ASC, created_at ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("accounts: list: %w", err)
	}
	defer rows.Close()
	return collectAccounts(rows)
}

// ListByGroup returns every sibling in an installment or recurrence
// group, ordered by due date.
func (r *Repository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts WHERE group_id = $1
		ORDER BY due_date ASC`, groupID)
	if err != nil {
		return nil, fmt.Errorf("accounts: list group: %w", err)
	}
	defer rows.Close()
	return collectAccounts(rows)
}

// Update rewrites the editable columns of one row.
func (r *Repository) Update(ctx context.Context, acc *Account) error {
	custom, err := json.Marshal(acc.Custom)
	if err != nil {
		return fmt.Errorf("accounts: encode attachments: %w", err)
	}
	var feesCents *int64
	if acc.FeesAndFines != nil {
		c := acc.FeesAndFines.Cents()
		feesCents = &c
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts SET
			name = $2, total_value_cents = $3, fees_cents = $4, due_date = $5,
			bill_document = $6, payment_proof = $7, generated_bill = $8, generated_report = $9,
			custom_attachments = $10, updated_at = $11
		WHERE id = $1`,
		acc.ID, acc.Name, acc.TotalValue.Cents(), feesCents, acc.DueDate,
		acc.Fixed.BillDocument, acc.Fixed.PaymentProof, acc.Fixed.GeneratedBill, acc.Fixed.GeneratedReport,
		custom, acc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("accounts: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkPaid transitions one row to paid and records the settlement.
func (r *Repository) MarkPaid(ctx context.Context, id uuid.UUID, payment Payment) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts SET
			status = $2, payment_date = $3, payment_method = $4, payment_bank_ref = $5,
			updated_at = NOW()
		WHERE id = $1`,
		id, StatusPaid, payment.Date, payment.Method, payment.BankReference,
	)
	if err != nil {
		return fmt.Errorf("accounts: mark paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetGeneratedBill stamps the generated bill URL on every row of an
// expansion.
func (r *Repository) SetGeneratedBill(ctx context.Context, ids []uuid.UUID, url string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE accounts SET generated_bill = $2, updated_at = NOW()
		WHERE id = ANY($1)`, ids, url)
	if err != nil {
		return fmt.Errorf("accounts: set generated bill: %w", err)
	}
	return nil
}

// SetGeneratedReport stamps the full report URL on one row.
func (r *Repository) SetGeneratedReport(ctx context.Context, id uuid.UUID, url string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts SET generated_report = $2, updated_at = NOW()
		WHERE id = $1`, id, url)
	if err != nil {
		return fmt.Errorf("accounts: set generated report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes one row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("accounts: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteGroup removes every sibling of a group and returns the count.
func (r *Repository) DeleteGroup(ctx context.Context, groupID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE group_id = $1`, groupID)
	if err != nil {
		return 0, fmt.Errorf("accounts: delete group: %w", err)
	}
	return tag.RowsAffected(), nil
}

// SummarizeRange reduces the filtered window into paid/open/overdue
// totals.
func (r *Repository) SummarizeRange(ctx context.Context, filter ListFilter) (Summary, error) {
	query := `
		SELECT
			COALESCE(SUM(total_value_cents) FILTER (WHERE status = 'paid'), 0),
			COALESCE(SUM(total_value_cents) FILTER (WHERE status = 'pending'), 0),
			COALESCE(SUM(total_value_cents) FILTER (WHERE status = 'overdue'), 0)
		FROM accounts WHERE scope = $1`
	args := []any{filter.UserScope}

	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(" AND due_date >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(" AND due_date <= $%d", len(args))
	}

	var paid, open, overdue int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&paid, &open, &overdue); err != nil {
		return Summary{}, fmt.Errorf("accounts: summarize: %w", err)
	}
	return Summary{
		Paid:    money.FromCents(paid),
		Open:    money.FromCents(open),
		Overdue: money.FromCents(overdue),
	}, nil
}

// MarkOverdue transitions pending rows whose due date already passed.
func (r *Repository) MarkOverdue(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts SET status = $2, updated_at = NOW()
		WHERE status = $3 AND due_date < $1`,
		before, StatusOverdue, StatusPending)
	if err != nil {
		return 0, fmt.Errorf("accounts: mark overdue: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanAccount(row pgx.Row) (*Account, error) {
	var (
		acc           Account
		scope         string
		feesCents     *int64
		instCurrent   *int
		instTotal     *int
		recurrenceEnd *time.Time
		paymentDate   *time.Time
		paymentMethod *string
		paymentRef    *string
		totalCents    int64
		custom        []byte
	)
	err := row.Scan(
		&acc.ID, &acc.UserID, &scope, &acc.GroupID, &acc.Name, &acc.Kind,
		&totalCents, &feesCents, &acc.DueDate,
		&instCurrent, &instTotal, &recurrenceEnd,
		&acc.Status, &paymentDate, &paymentMethod, &paymentRef,
		&acc.Fixed.BillDocument, &acc.Fixed.PaymentProof, &acc.Fixed.GeneratedBill, &acc.Fixed.GeneratedReport,
		&custom, &acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	acc.Scope = shared.Scope(scope)
	acc.TotalValue = money.FromCents(totalCents)
	if feesCents != nil {
		fees := money.FromCents(*feesCents)
		acc.FeesAndFines = &fees
	}
	if instCurrent != nil && instTotal != nil {
		acc.Installment = &InstallmentInfo{Current: *instCurrent, Total: *instTotal}
	}
	if recurrenceEnd != nil {
		acc.Recurrence = &RecurrenceInfo{EndDate: *recurrenceEnd}
	}
	if paymentDate != nil {
		acc.Payment = &Payment{Date: *paymentDate}
		if paymentMethod != nil {
			acc.Payment.Method = *paymentMethod
		}
		if paymentRef != nil {
			acc.Payment.BankReference = *paymentRef
		}
	}
	if len(custom) > 0 {
		if err := json.Unmarshal(custom, &acc.Custom); err != nil {
			return nil, fmt.Errorf("accounts: decode attachments: %w", err)
		}
	}
	return &acc, nil
}

func collectAccounts(rows pgx.Rows) ([]Account, error) {
	var out []Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("accounts: scan: %w", err)
		}
		out = append(out, *acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("accounts: rows: %w", err)
	}
	return out, nil
}
