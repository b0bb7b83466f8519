package dto

import "time"

// TransactionRequest is the request body for creating or editing a
// transaction. Edits replace the whole record, so the same full field set
// applies to both.
type TransactionRequest struct {
	Amount      int64     `json:"amount" binding:"required,gt=0"`
	Kind        string    `json:"kind" binding:"required,oneof=income expense transfer"`
	WalletID    string    `json:"wallet_id" binding:"required,uuid"`
	ToWalletID  *string   `json:"to_wallet_id,omitempty" binding:"omitempty,uuid"`
	CategoryID  *string   `json:"category_id,omitempty" binding:"omitempty,uuid"`
	Description *string   `json:"description,omitempty" binding:"omitempty,max=500"`
	Date        time.Time `json:"date" binding:"required"`
}

// WalletRequest is the request body for creating or updating a wallet.
type WalletRequest struct {
	Name    string `json:"name" binding:"required,min=3,max=100"`
	Kind    string `json:"kind" binding:"required,oneof=cash bank credit_card"`
	Balance int64  `json:"balance" binding:"gte=0"`
}

// CategoryRequest is the request body for creating or updating a category.
type CategoryRequest struct {
	Name string  `json:"name" binding:"required,min=2,max=50"`
	Kind string  `json:"kind" binding:"required,oneof=income expense"`
	Icon *string `json:"icon,omitempty" binding:"omitempty,safe_id,max=50"`
}

// TransactionResponse is the response body for a single transaction.
type TransactionResponse struct {
	ID          string  `json:"id"`
	Amount      int64   `json:"amount"`
	Kind        string  `json:"kind"`
	Description *string `json:"description,omitempty"`
	Date        string  `json:"date"`
	WalletID    string  `json:"wallet_id"`
	ToWalletID  *string `json:"to_wallet_id,omitempty"`
	CategoryID  *string `json:"category_id,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// WalletResponse is the response body for a single wallet.
type WalletResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Balance   int64  `json:"balance"`
	CreatedAt string `json:"created_at"`
}

// CategoryResponse is the response body for a single category.
type CategoryResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Kind      string  `json:"kind"`
	Icon      *string `json:"icon,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// DashboardResponse is the response for the dashboard view.
type DashboardResponse struct {
	TotalBalance       int64                 `json:"total_balance"`
	WalletCount        int                   `json:"wallet_count"`
	MonthlyIncome      int64                 `json:"monthly_income"`
	MonthlyExpense     int64                 `json:"monthly_expense"`
	Wallets            []WalletResponse      `json:"wallets"`
	RecentTransactions []TransactionResponse `json:"recent_transactions"`
}

// TransactionListResponse wraps the transaction list view.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
}
