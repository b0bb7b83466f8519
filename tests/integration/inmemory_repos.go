package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"finance-tracker/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func scopeMatches(scope domain.Scope, userID uuid.UUID, orgID *uuid.UUID) bool {
	if scope.IsPersonal() {
		return userID == scope.UserID && orgID == nil
	}
	return orgID != nil && *orgID == *scope.OrganizationID
}

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	mu      sync.RWMutex
	wallets map[uuid.UUID]*domain.Wallet
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{wallets: make(map[uuid.UUID]*domain.Wallet)}
}

func (r *inMemoryWalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *w
	r.wallets[w.ID] = &cp
	return nil
}

func (r *inMemoryWalletRepo) GetByID(ctx context.Context, id uuid.UUID, scope domain.Scope) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[id]
	if !ok || !scopeMatches(scope, w.UserID, w.OrganizationID) {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *inMemoryWalletRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID, scope domain.Scope) (*domain.Wallet, error) {
	return r.GetByID(ctx, id, scope)
}

func (r *inMemoryWalletRepo) ListByScope(ctx context.Context, scope domain.Scope) ([]domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Wallet
	for _, w := range r.wallets {
		if scopeMatches(scope, w.UserID, w.OrganizationID) {
			result = append(result, *w)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *inMemoryWalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[walletID]
	if !ok {
		return fmt.Errorf("wallet not found")
	}
	w.Balance = balance
	return nil
}

func (r *inMemoryWalletRepo) Update(ctx context.Context, wallet *domain.Wallet, scope domain.Scope) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[wallet.ID]
	if !ok || !scopeMatches(scope, w.UserID, w.OrganizationID) {
		return false, nil
	}
	w.Name = wallet.Name
	w.Kind = wallet.Kind
	w.Balance = wallet.Balance
	return true, nil
}

func (r *inMemoryWalletRepo) Delete(ctx context.Context, id uuid.UUID, scope domain.Scope) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[id]
	if !ok || !scopeMatches(scope, w.UserID, w.OrganizationID) {
		return false, nil
	}
	delete(r.wallets, id)
	return true, nil
}

// --- In-Memory Category Repo ---

type inMemoryCategoryRepo struct {
	mu         sync.RWMutex
	categories map[uuid.UUID]*domain.Category
}

func newInMemoryCategoryRepo() *inMemoryCategoryRepo {
	return &inMemoryCategoryRepo{categories: make(map[uuid.UUID]*domain.Category)}
}

func (r *inMemoryCategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.categories[c.ID] = &cp
	return nil
}

func (r *inMemoryCategoryRepo) ListByScope(ctx context.Context, scope domain.Scope) ([]domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Category
	for _, c := range r.categories {
		if scopeMatches(scope, c.UserID, c.OrganizationID) {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (r *inMemoryCategoryRepo) Update(ctx context.Context, category *domain.Category, scope domain.Scope) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[category.ID]
	if !ok || !scopeMatches(scope, c.UserID, c.OrganizationID) {
		return false, nil
	}
	c.Name = category.Name
	c.Kind = category.Kind
	c.Icon = category.Icon
	return true, nil
}

func (r *inMemoryCategoryRepo) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID, scope domain.Scope) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok || !scopeMatches(scope, c.UserID, c.OrganizationID) {
		return false, nil
	}
	delete(r.categories, id)
	return true, nil
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu           sync.RWMutex
	transactions map[uuid.UUID]*domain.Transaction
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{transactions: make(map[uuid.UUID]*domain.Transaction)}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.transactions[t.ID] = &cp
	return nil
}

func (r *inMemoryTransactionRepo) GetByIDForUser(ctx context.Context, tx pgx.Tx, id uuid.UUID, userID uuid.UUID) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transactions[id]
	if !ok || t.UserID != userID {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *inMemoryTransactionRepo) Update(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.transactions[transaction.ID]; !ok {
		return fmt.Errorf("transaction not found")
	}
	cp := *transaction
	r.transactions[transaction.ID] = &cp
	return nil
}

func (r *inMemoryTransactionRepo) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.transactions[id]; !ok {
		return fmt.Errorf("transaction not found")
	}
	delete(r.transactions, id)
	return nil
}

func (r *inMemoryTransactionRepo) ListByScope(ctx context.Context, scope domain.Scope, limit int) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Transaction
	for _, t := range r.transactions {
		if scopeMatches(scope, t.UserID, t.OrganizationID) {
			result = append(result, *t)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *inMemoryTransactionRepo) ExistsByWallet(ctx context.Context, walletID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.transactions {
		if t.WalletID == walletID {
			return true, nil
		}
		if t.ToWalletID != nil && *t.ToWalletID == walletID {
			return true, nil
		}
	}
	return false, nil
}

func (r *inMemoryTransactionRepo) DetachCategory(ctx context.Context, tx pgx.Tx, categoryID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.transactions {
		if t.CategoryID != nil && *t.CategoryID == categoryID {
			t.CategoryID = nil
		}
	}
	return nil
}

func (r *inMemoryTransactionRepo) SumKindsSince(ctx context.Context, scope domain.Scope, since time.Time) (int64, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var income, expense int64
	for _, t := range r.transactions {
		if !scopeMatches(scope, t.UserID, t.OrganizationID) || t.Date.Before(since) {
			continue
		}
		switch t.Kind {
		case domain.TransactionKindIncome:
			income += t.Amount
		case domain.TransactionKindExpense:
			expense += t.Amount
		}
	}
	return income, expense, nil
}

// --- In-Memory Transactor ---

// inMemoryTransactor serializes atomic scopes with a single mutex. The
// in-memory repos have no row-level locks, so Begin standing in for
// SELECT FOR UPDATE is what keeps concurrent ledger mutations from
// interleaving their read-compute-write cycles.
type inMemoryTransactor struct {
	mu sync.Mutex
}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &memTx{unlock: &t.mu}, nil
}

// memTx is a no-op pgx.Tx that releases the transactor's mutex exactly once
// on Commit or Rollback, whichever comes first.
type memTx struct {
	unlock *sync.Mutex
	once   sync.Once
}

func (t *memTx) release() {
	t.once.Do(t.unlock.Unlock)
}

func (t *memTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *memTx) Commit(ctx context.Context) error          { t.release(); return nil }
func (t *memTx) Rollback(ctx context.Context) error        { t.release(); return nil }
func (t *memTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *memTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *memTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *memTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *memTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *memTx) Conn() *pgx.Conn { return nil }
