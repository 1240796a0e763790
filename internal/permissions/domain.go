package permissions

import (
	"time"

	"github.com/contaflow/contaflow/internal/shared"
)

// Tab identifies an application area guarded by permissions.
type Tab string

const (
	TabDashboard    Tab = "dashboard"
	TabAccounts     Tab = "accounts"
	TabBankAccounts Tab = "bank_accounts"
	TabPixKeys      Tab = "pix_keys"
	TabProfile      Tab = "profile"
	TabUsers        Tab = "users"
)

// Tabs lists every known tab.
var Tabs = []Tab{TabDashboard, TabAccounts, TabBankAccounts, TabPixKeys, TabProfile, TabUsers}

// ValidTab reports whether t names a known tab.
func ValidTab(t Tab) bool {
	for _, known := range Tabs {
		if known == t {
			return true
		}
	}
	return false
}

// Capability is one of the four independent actions a grant can allow.
type Capability string

const (
	CapRead   Capability = "read"
	CapWrite  Capability = "write"
	CapEdit   Capability = "edit"
	CapDelete Capability = "delete"
)

// Capabilities holds the four independent booleans of a grant.
type Capabilities struct {
	Read   bool `json:"read"`
	Write  bool `json:"write"`
	Edit   bool `json:"edit"`
	Delete bool `json:"delete"`
}

// AllCapabilities grants everything; used for admins.
var AllCapabilities = Capabilities{Read: true, Write: true, Edit: true, Delete: true}

// Allows reports whether the capability set includes cap.
func (c Capabilities) Allows(cap Capability) bool {
	switch cap {
	case CapRead:
		return c.Read
	case CapWrite:
		return c.Write
	case CapEdit:
		return c.Edit
	case CapDelete:
		return c.Delete
	}
	return false
}

// Grant is a (user, scope, tab) permission row. Absence of a row
// means no access.
type Grant struct {
	UserID       string       `json:"user_id"`
	Scope        shared.Scope `json:"scope"`
	Tab          Tab          `json:"tab"`
	Capabilities Capabilities `json:"capabilities"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
