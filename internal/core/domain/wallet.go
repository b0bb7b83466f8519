package domain

import (
	"time"

	"github.com/google/uuid"
)

// WalletKind classifies where the money physically lives.
type WalletKind string

const (
	WalletKindCash       WalletKind = "cash"
	WalletKindBank       WalletKind = "bank"
	WalletKindCreditCard WalletKind = "credit_card"
)

// ValidWalletKind reports whether k is a known wallet kind.
func ValidWalletKind(k WalletKind) bool {
	switch k {
	case WalletKindCash, WalletKindBank, WalletKindCreditCard:
		return true
	}
	return false
}

// Wallet is a balance-holding account, personal or organization-owned.
// Balance is denormalized from the transaction ledger and kept in sync
// synchronously by the ledger service; nothing else writes it after creation.
type Wallet struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Kind           WalletKind `json:"kind"`
	Balance        int64      `json:"balance"` // smallest currency unit
	UserID         uuid.UUID  `json:"user_id"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
