package bankaccounts

import (
	"time"

	"github.com/google/uuid"

	"github.com/contaflow/contaflow/internal/money"
	"github.com/contaflow/contaflow/internal/shared"
)

// Kind discriminates checking accounts from credit cards.
type Kind string

const (
	KindChecking Kind = "checking"
	KindCard     Kind = "card"
)

// CheckingInfo holds the fields of a checking account. Present only
// on checking entries.
type CheckingInfo struct {
	BankCode string `json:"bank_code"`
	Agency   string `json:"agency"`
	Number   string `json:"number"`
}

// CardInfo holds the fields of a credit card. Present only on card
// entries.
type CardInfo struct {
	Brand      string       `json:"brand"`
	LastDigits string       `json:"last_digits"`
	Limit      money.Amount `json:"limit"`
	ClosingDay int          `json:"closing_day"`
	DueDay     int          `json:"due_day"`
}

// BankAccount is one registered bank account or card.
type BankAccount struct {
	ID     uuid.UUID    `json:"id"`
	UserID string       `json:"user_id"`
	Scope  shared.Scope `json:"scope"`

	Name string `json:"name"`
	Kind Kind   `json:"kind"`

	Checking *CheckingInfo `json:"checking,omitempty"`
	Card     *CardInfo     `json:"card,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
