package ports

import (
	"context"
	"time"

	"finance-tracker/internal/core/domain"

	"github.com/google/uuid"
)

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

// TokenService validates the bearer tokens issued by the external identity
// provider. Claims carry the acting user and the active organization.
type TokenService interface {
	Generate(userID uuid.UUID, organizationID *uuid.UUID) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed token claims.
type TokenClaims struct {
	UserID         uuid.UUID
	OrganizationID *uuid.UUID
}

// --- Service Ports (Business Logic) ---

// TransactionIntent is the validated input for a ledger mutation. For
// transfers ToWalletID is required and CategoryID is ignored; for the other
// kinds ToWalletID is ignored.
type TransactionIntent struct {
	Amount      int64
	Kind        domain.TransactionKind
	WalletID    uuid.UUID
	ToWalletID  *uuid.UUID
	CategoryID  *uuid.UUID
	Description *string
	Date        time.Time
}

// LedgerService is the only capability allowed to mutate wallet balances
// after creation. Each operation applies, replaces, or reverts the balance
// effect of one transaction atomically.
type LedgerService interface {
	Create(ctx context.Context, scope domain.Scope, intent TransactionIntent) (*domain.Transaction, error)
	Edit(ctx context.Context, scope domain.Scope, id uuid.UUID, intent TransactionIntent) (*domain.Transaction, error)
	Delete(ctx context.Context, scope domain.Scope, id uuid.UUID) error
}

// WalletInput is the full field set for wallet create/update.
type WalletInput struct {
	Name    string
	Kind    domain.WalletKind
	Balance int64
}

// WalletService manages wallet CRUD. It never applies transaction deltas;
// the only balance it writes is the initial/edited figure before or outside
// ledger history (see LedgerService).
type WalletService interface {
	List(ctx context.Context, scope domain.Scope) ([]domain.Wallet, error)
	Create(ctx context.Context, scope domain.Scope, input WalletInput) (*domain.Wallet, error)
	Update(ctx context.Context, scope domain.Scope, id uuid.UUID, input WalletInput) error
	Delete(ctx context.Context, scope domain.Scope, id uuid.UUID) error
}

// CategoryInput is the full field set for category create/update.
type CategoryInput struct {
	Name string
	Kind domain.CategoryKind
	Icon *string
}

// CategoryService manages category CRUD.
type CategoryService interface {
	List(ctx context.Context, scope domain.Scope) ([]domain.Category, error)
	Create(ctx context.Context, scope domain.Scope, input CategoryInput) (*domain.Category, error)
	Update(ctx context.Context, scope domain.Scope, id uuid.UUID, input CategoryInput) error
	Delete(ctx context.Context, scope domain.Scope, id uuid.UUID) error
}

// DashboardStats aggregates the scope's current position.
type DashboardStats struct {
	TotalBalance       int64                `json:"total_balance"`
	WalletCount        int                  `json:"wallet_count"`
	MonthlyIncome      int64                `json:"monthly_income"`
	MonthlyExpense     int64                `json:"monthly_expense"`
	Wallets            []domain.Wallet      `json:"wallets"`
	RecentTransactions []domain.Transaction `json:"recent_transactions"`
}

// ReportingService serves read-only views. Results may be stale within the
// cache TTL; it never writes balances.
type ReportingService interface {
	Dashboard(ctx context.Context, scope domain.Scope) (*DashboardStats, error)
	ListTransactions(ctx context.Context, scope domain.Scope) ([]domain.Transaction, error)
}
