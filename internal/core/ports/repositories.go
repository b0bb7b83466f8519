package ports

import (
	"context"
	"time"

	"finance-tracker/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

// WalletRepository defines persistence operations for wallets. Every read
// and write is restricted by the caller's scope predicate. Methods accepting
// pgx.Tx run inside an atomic scope and lock the row for update.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByID(ctx context.Context, id uuid.UUID, scope domain.Scope) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID, scope domain.Scope) (*domain.Wallet, error)
	ListByScope(ctx context.Context, scope domain.Scope) ([]domain.Wallet, error)
	// UpdateBalance writes the already-computed balance of a locked row.
	// Only the ledger service may call it.
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance int64) error
	// Update replaces name/kind/balance. Returns false when the wallet does
	// not exist or is outside the scope.
	Update(ctx context.Context, wallet *domain.Wallet, scope domain.Scope) (bool, error)
	Delete(ctx context.Context, id uuid.UUID, scope domain.Scope) (bool, error)
}

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	ListByScope(ctx context.Context, scope domain.Scope) ([]domain.Category, error)
	Update(ctx context.Context, category *domain.Category, scope domain.Scope) (bool, error)
	// Delete removes the category within an atomic scope so the caller can
	// detach referencing transactions in the same unit of work.
	Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID, scope domain.Scope) (bool, error)
}

// TransactionRepository defines persistence operations for ledger
// transactions. Mutations always run inside an atomic scope alongside the
// wallet balance writes they belong to.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	// GetByIDForUser loads a transaction owned by the given user inside the
	// current atomic scope. Returns nil, nil when absent.
	GetByIDForUser(ctx context.Context, tx pgx.Tx, id uuid.UUID, userID uuid.UUID) (*domain.Transaction, error)
	// Update fully replaces the row's fields (not a patch).
	Update(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	ListByScope(ctx context.Context, scope domain.Scope, limit int) ([]domain.Transaction, error)
	// ExistsByWallet reports whether any transaction references the wallet
	// as source or destination.
	ExistsByWallet(ctx context.Context, walletID uuid.UUID) (bool, error)
	// DetachCategory nulls category_id on every transaction referencing it.
	DetachCategory(ctx context.Context, tx pgx.Tx, categoryID uuid.UUID) error
	// SumKindsSince returns income and expense totals for the scope with
	// business date >= since. Transfers are excluded.
	SumKindsSince(ctx context.Context, scope domain.Scope, since time.Time) (income int64, expense int64, err error)
}

// ViewCache is the best-effort read cache for dashboard and list views.
// Failures only affect read staleness, never ledger correctness.
type ViewCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // nil, nil on miss
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// InvalidateScope drops every cached view belonging to the scope. Called
	// after each committed mutation; fire-and-forget.
	InvalidateScope(ctx context.Context, scope domain.Scope) error
}

// DBTransactor provides the atomic scope all balance math runs in.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
