package domain

import (
	"time"

	"github.com/google/uuid"
)

// CategoryKind restricts a category to tagging either income or expense
// transactions. Transfers are never categorized.
type CategoryKind string

const (
	CategoryKindIncome  CategoryKind = "income"
	CategoryKindExpense CategoryKind = "expense"
)

// ValidCategoryKind reports whether k is a known category kind.
func ValidCategoryKind(k CategoryKind) bool {
	return k == CategoryKindIncome || k == CategoryKindExpense
}

// Category labels non-transfer transactions for reporting.
type Category struct {
	ID             uuid.UUID    `json:"id"`
	Name           string       `json:"name"`
	Icon           *string      `json:"icon,omitempty"`
	Kind           CategoryKind `json:"kind"`
	UserID         uuid.UUID    `json:"user_id"`
	OrganizationID *uuid.UUID   `json:"organization_id,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}
