package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finance-tracker/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

const transactionColumns = `id, amount, kind, description, date, wallet_id, to_wallet_id, category_id, user_id, organization_id, created_at`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(
		&t.ID, &t.Amount, &t.Kind, &t.Description, &t.Date,
		&t.WalletID, &t.ToWalletID, &t.CategoryID,
		&t.UserID, &t.OrganizationID, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

// Create inserts a transaction row within a database transaction.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (id, amount, kind, description, date, wallet_id, to_wallet_id, category_id, user_id, organization_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.Amount, t.Kind, t.Description, t.Date,
		t.WalletID, t.ToWalletID, t.CategoryID,
		t.UserID, t.OrganizationID, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByIDForUser fetches a transaction owned by the user within the current
// database transaction. Returns nil, nil when absent.
func (r *TransactionRepo) GetByIDForUser(ctx context.Context, tx pgx.Tx, id uuid.UUID, userID uuid.UUID) (*domain.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE id = $1 AND user_id = $2`, transactionColumns)

	t, err := scanTransaction(tx.QueryRow(ctx, query, id, userID))
	if err != nil {
		return nil, fmt.Errorf("get transaction by id: %w", err)
	}
	return t, nil
}

// Update fully replaces a transaction row's fields within a database
// transaction.
func (r *TransactionRepo) Update(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `UPDATE transactions SET amount = $1, kind = $2, description = $3, date = $4,
		wallet_id = $5, to_wallet_id = $6, category_id = $7, user_id = $8, organization_id = $9
		WHERE id = $10`

	tag, err := tx.Exec(ctx, query,
		t.Amount, t.Kind, t.Description, t.Date,
		t.WalletID, t.ToWalletID, t.CategoryID,
		t.UserID, t.OrganizationID, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction not found: %s", t.ID)
	}
	return nil
}

// Delete removes a transaction row within a database transaction.
func (r *TransactionRepo) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction not found: %s", id)
	}
	return nil
}

// ListByScope fetches the scope's transactions, newest business date first.
func (r *TransactionRepo) ListByScope(ctx context.Context, scope domain.Scope, limit int) ([]domain.Transaction, error) {
	clause, scopeArgs := scopeClause(scope, 1)
	args := scopeArgs
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE %s ORDER BY date DESC`, transactionColumns, clause)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(
			&t.ID, &t.Amount, &t.Kind, &t.Description, &t.Date,
			&t.WalletID, &t.ToWalletID, &t.CategoryID,
			&t.UserID, &t.OrganizationID, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txns, nil
}

// ExistsByWallet reports whether any transaction references the wallet as
// source or destination.
func (r *TransactionRepo) ExistsByWallet(ctx context.Context, walletID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM transactions WHERE wallet_id = $1 OR to_wallet_id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, walletID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check wallet usage: %w", err)
	}
	return exists, nil
}

// DetachCategory nulls category_id on every transaction referencing it,
// within a database transaction.
func (r *TransactionRepo) DetachCategory(ctx context.Context, tx pgx.Tx, categoryID uuid.UUID) error {
	_, err := tx.Exec(ctx, `UPDATE transactions SET category_id = NULL WHERE category_id = $1`, categoryID)
	if err != nil {
		return fmt.Errorf("detach category: %w", err)
	}
	return nil
}

// SumKindsSince returns income and expense totals for the scope with
// business date >= since. Transfers move money between the scope's own
// wallets and are excluded.
func (r *TransactionRepo) SumKindsSince(ctx context.Context, scope domain.Scope, since time.Time) (int64, int64, error) {
	clause, scopeArgs := scopeClause(scope, 2)
	query := fmt.Sprintf(`SELECT kind, COALESCE(SUM(amount), 0) FROM transactions
		WHERE date >= $1 AND %s AND kind IN ('income', 'expense')
		GROUP BY kind`, clause)

	rows, err := r.pool.Query(ctx, query, append([]any{since}, scopeArgs...)...)
	if err != nil {
		return 0, 0, fmt.Errorf("sum transactions: %w", err)
	}
	defer rows.Close()

	var income, expense int64
	for rows.Next() {
		var kind domain.TransactionKind
		var total int64
		if err := rows.Scan(&kind, &total); err != nil {
			return 0, 0, fmt.Errorf("scan totals: %w", err)
		}
		switch kind {
		case domain.TransactionKindIncome:
			income = total
		case domain.TransactionKindExpense:
			expense = total
		}
	}
	if err := rows.Err(); err != nil {
		return 0, 0, fmt.Errorf("iterate totals: %w", err)
	}
	return income, expense, nil
}
