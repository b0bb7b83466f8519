package postgres

import (
	"context"
	"errors"
	"fmt"

	"finance-tracker/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

const walletColumns = "id, name, kind, balance, user_id, organization_id, created_at"

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	err := row.Scan(&w.ID, &w.Name, &w.Kind, &w.Balance, &w.UserID, &w.OrganizationID, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return w, nil
}

// Create inserts a new wallet.
func (r *WalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	query := `INSERT INTO wallets (id, name, kind, balance, user_id, organization_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		w.ID, w.Name, w.Kind, w.Balance, w.UserID, w.OrganizationID, w.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByID fetches a wallet visible to the scope (without locking).
func (r *WalletRepo) GetByID(ctx context.Context, id uuid.UUID, scope domain.Scope) (*domain.Wallet, error) {
	clause, scopeArgs := scopeClause(scope, 2)
	query := fmt.Sprintf(`SELECT %s FROM wallets WHERE id = $1 AND %s`, walletColumns, clause)

	w, err := scanWallet(r.pool.QueryRow(ctx, query, append([]any{id}, scopeArgs...)...))
	if err != nil {
		return nil, fmt.Errorf("get wallet by id: %w", err)
	}
	return w, nil
}

// GetByIDForUpdate fetches a wallet visible to the scope with pessimistic
// locking. This MUST be called within a transaction; the returned balance
// is the authoritative value for any funds check in the same scope.
func (r *WalletRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID, scope domain.Scope) (*domain.Wallet, error) {
	clause, scopeArgs := scopeClause(scope, 2)
	query := fmt.Sprintf(`SELECT %s FROM wallets WHERE id = $1 AND %s FOR UPDATE`, walletColumns, clause)

	w, err := scanWallet(tx.QueryRow(ctx, query, append([]any{id}, scopeArgs...)...))
	if err != nil {
		return nil, fmt.Errorf("get wallet for update: %w", err)
	}
	return w, nil
}

// ListByScope fetches the scope's wallets, newest first.
func (r *WalletRepo) ListByScope(ctx context.Context, scope domain.Scope) ([]domain.Wallet, error) {
	clause, scopeArgs := scopeClause(scope, 1)
	query := fmt.Sprintf(`SELECT %s FROM wallets WHERE %s ORDER BY created_at DESC`, walletColumns, clause)

	rows, err := r.pool.Query(ctx, query, scopeArgs...)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	var wallets []domain.Wallet
	for rows.Next() {
		var w domain.Wallet
		if err := rows.Scan(&w.ID, &w.Name, &w.Kind, &w.Balance, &w.UserID, &w.OrganizationID, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallets: %w", err)
	}
	return wallets, nil
}

// UpdateBalance writes a wallet's balance within a transaction. The row must
// already be locked by GetByIDForUpdate in the same transaction.
func (r *WalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance int64) error {
	query := `UPDATE wallets SET balance = $1 WHERE id = $2`

	tag, err := tx.Exec(ctx, query, balance, walletID)
	if err != nil {
		return fmt.Errorf("update wallet balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", walletID)
	}
	return nil
}

// Update replaces name, kind, and balance of a wallet in the scope.
func (r *WalletRepo) Update(ctx context.Context, w *domain.Wallet, scope domain.Scope) (bool, error) {
	clause, scopeArgs := scopeClause(scope, 5)
	query := fmt.Sprintf(`UPDATE wallets SET name = $1, kind = $2, balance = $3 WHERE id = $4 AND %s`, clause)

	tag, err := r.pool.Exec(ctx, query, append([]any{w.Name, w.Kind, w.Balance, w.ID}, scopeArgs...)...)
	if err != nil {
		return false, fmt.Errorf("update wallet: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes a wallet in the scope.
func (r *WalletRepo) Delete(ctx context.Context, id uuid.UUID, scope domain.Scope) (bool, error) {
	clause, scopeArgs := scopeClause(scope, 2)
	query := fmt.Sprintf(`DELETE FROM wallets WHERE id = $1 AND %s`, clause)

	tag, err := r.pool.Exec(ctx, query, append([]any{id}, scopeArgs...)...)
	if err != nil {
		return false, fmt.Errorf("delete wallet: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
