package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionKind represents the kind of money movement.
type TransactionKind string

const (
	TransactionKindIncome   TransactionKind = "income"
	TransactionKindExpense  TransactionKind = "expense"
	TransactionKindTransfer TransactionKind = "transfer"
)

// ValidTransactionKind reports whether k is a known transaction kind.
func ValidTransactionKind(k TransactionKind) bool {
	switch k {
	case TransactionKindIncome, TransactionKindExpense, TransactionKindTransfer:
		return true
	}
	return false
}

// Transaction is a recorded income, expense, or transfer event. WalletID is
// the source wallet; ToWalletID is set only for transfers and CategoryID
// only for non-transfers.
type Transaction struct {
	ID             uuid.UUID       `json:"id"`
	Amount         int64           `json:"amount"` // positive, smallest currency unit
	Kind           TransactionKind `json:"kind"`
	Description    *string         `json:"description,omitempty"`
	Date           time.Time       `json:"date"` // business date, not creation time
	WalletID       uuid.UUID       `json:"wallet_id"`
	ToWalletID     *uuid.UUID      `json:"to_wallet_id,omitempty"`
	CategoryID     *uuid.UUID      `json:"category_id,omitempty"`
	UserID         uuid.UUID       `json:"user_id"`
	OrganizationID *uuid.UUID      `json:"organization_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// SourceDelta returns the signed effect of the transaction on its source
// wallet's balance: income credits, expense and transfer-out debit.
func (t *Transaction) SourceDelta() int64 {
	if t.Kind == TransactionKindIncome {
		return t.Amount
	}
	return -t.Amount
}

// IsTransfer reports whether the transaction moves money between wallets.
func (t *Transaction) IsTransfer() bool {
	return t.Kind == TransactionKindTransfer
}
