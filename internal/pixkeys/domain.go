package pixkeys

import (
	"time"

	"github.com/google/uuid"

	"github.com/contaflow/contaflow/internal/shared"
)

// KeyType enumerates the PIX key formats. BRCode entries hold a full
// copy-and-paste payload instead of an addressing key; rendering it
// as a QR image is left to the client.
type KeyType string

const (
	TypeCPF    KeyType = "cpf"
	TypeCNPJ   KeyType = "cnpj"
	TypeEmail  KeyType = "email"
	TypePhone  KeyType = "phone"
	TypeRandom KeyType = "random"
	TypeBRCode KeyType = "br_code"
)

// ValidKeyType reports whether t names a known key type.
func ValidKeyType(t KeyType) bool {
	switch t {
	case TypeCPF, TypeCNPJ, TypeEmail, TypePhone, TypeRandom, TypeBRCode:
		return true
	}
	return false
}

// PixKey is one registered PIX key, optionally linked to a bank
// account.
type PixKey struct {
	ID     uuid.UUID    `json:"id"`
	UserID string       `json:"user_id"`
	Scope  shared.Scope `json:"scope"`

	Label    string  `json:"label"`
	KeyType  KeyType `json:"key_type"`
	KeyValue string  `json:"key_value"`

	BankAccountID *uuid.UUID `json:"bank_account_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
