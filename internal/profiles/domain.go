package profiles

import (
	"time"

	"github.com/contaflow/contaflow/internal/shared"
)

// Profile holds the identity fields printed on generated documents.
// Each user keeps one profile per management scope.
type Profile struct {
	UserID string       `json:"user_id"`
	Scope  shared.Scope `json:"scope"`

	Name       string `json:"name"`
	Document   string `json:"document"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
