package accounts

import (
	"time"

	"github.com/google/uuid"

	"github.com/contaflow/contaflow/internal/money"
	"github.com/contaflow/contaflow/internal/shared"
)

// Kind discriminates the three account shapes.
type Kind string

const (
	KindUnique      Kind = "unique"
	KindInstallment Kind = "installment"
	KindRecurring   Kind = "recurring"
)

// Status enumerates account payment states.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

// InstallmentInfo carries the per-row installment position. Present
// only on installment accounts.
type InstallmentInfo struct {
	Current int `json:"current"` // 1-indexed
	Total   int `json:"total"`   // >= 2
}

// RecurrenceInfo carries the recurrence horizon. Present only on
// recurring accounts.
type RecurrenceInfo struct {
	EndDate time.Time `json:"end_date"`
}

// Payment holds settlement details, populated only when paid.
type Payment struct {
	Date          time.Time `json:"date"`
	Method        string    `json:"method"`
	BankReference string    `json:"bank_reference,omitempty"`
}

// Attachment is a named document linked to an account.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// FixedAttachments are the four well-known document slots.
type FixedAttachments struct {
	BillDocument    string `json:"bill_document,omitempty"`
	PaymentProof    string `json:"payment_proof,omitempty"`
	GeneratedBill   string `json:"generated_bill,omitempty"`
	GeneratedReport string `json:"generated_report,omitempty"`
}

// Account is one billable obligation row. Installment and recurring
// siblings share a GroupID.
type Account struct {
	ID      uuid.UUID    `json:"id"`
	UserID  string       `json:"user_id"`
	Scope   shared.Scope `json:"scope"`
	GroupID *uuid.UUID   `json:"group_id,omitempty"`

	Name string `json:"name"`
	Kind Kind   `json:"kind"`

	TotalValue   money.Amount  `json:"total_value"`
	FeesAndFines *money.Amount `json:"fees_and_fines,omitempty"`

	DueDate     time.Time        `json:"due_date"`
	Installment *InstallmentInfo `json:"installment,omitempty"`
	Recurrence  *RecurrenceInfo  `json:"recurrence,omitempty"`

	Status  Status   `json:"status"`
	Payment *Payment `json:"payment,omitempty"`

	Fixed  FixedAttachments `json:"attachments"`
	Custom []Attachment     `json:"custom_attachments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Draft is a submitted account form before expansion.
type Draft struct {
	UserID string
	Scope  shared.Scope

	Name         string
	Kind         Kind
	TotalValue   money.Amount
	FeesAndFines *money.Amount
	DueDate      time.Time

	// Installment only.
	InstallmentsTotal int
	// Recurring only.
	RecurrenceEndDate time.Time

	Fixed  FixedAttachments
	Custom []Attachment
}

// DashboardRow is a display row: either a single account or a
// synthesized parent aggregating an installment group. Parents are
// never persisted.
type DashboardRow struct {
	Account  Account   `json:"account"`
	IsGroup  bool      `json:"is_group"`
	Children []Account `json:"children,omitempty"`
}

// Summary reduces a period's accounts into paid/open/overdue totals.
type Summary struct {
	Paid    money.Amount `json:"paid"`
	Open    money.Amount `json:"open"`
	Overdue money.Amount `json:"overdue"`
}
