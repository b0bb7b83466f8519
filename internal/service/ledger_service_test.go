package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"finance-tracker/internal/core/domain"
	"finance-tracker/internal/core/ports"
	"finance-tracker/internal/core/ports/mocks"
	"finance-tracker/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type ledgerTestDeps struct {
	svc        *LedgerServiceImpl
	txRepo     *mocks.MockTransactionRepository
	walletRepo *mocks.MockWalletRepository
	transactor *mocks.MockDBTransactor
	viewCache  *mocks.MockViewCache
	ctrl       *gomock.Controller
}

func setupLedgerService(t *testing.T) *ledgerTestDeps {
	ctrl := gomock.NewController(t)
	d := &ledgerTestDeps{
		txRepo:     mocks.NewMockTransactionRepository(ctrl),
		walletRepo: mocks.NewMockWalletRepository(ctrl),
		transactor: mocks.NewMockDBTransactor(ctrl),
		viewCache:  mocks.NewMockViewCache(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewLedgerService(d.txRepo, d.walletRepo, d.transactor, d.viewCache, zerolog.Nop())
	return d
}

// mockTx implements pgx.Tx for testing
type mockTx struct{ pgx.Tx }

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error   { return nil }

func assertAppCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

// ==================== Create Tests ====================

func TestLedgerService_Create_Income(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	scope := domain.PersonalScope(uuid.New())
	walletID := uuid.New()
	tx := &mockTx{}

	intent := ports.TransactionIntent{
		Amount:   30000,
		Kind:     domain.TransactionKindIncome,
		WalletID: walletID,
		Date:     time.Now().UTC(),
	}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID, scope).
		Return(&domain.Wallet{ID: walletID, Balance: 100000, UserID: scope.UserID}, nil)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, walletID, int64(130000)).Return(nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	d.viewCache.EXPECT().InvalidateScope(ctx, scope).Return(nil)

	txn, err := d.svc.Create(ctx, scope, intent)
	require.NoError(t, err)
	require.NotNil(t, txn)
	assert.Equal(t, domain.TransactionKindIncome, txn.Kind)
	assert.Equal(t, int64(30000), txn.Amount)
	assert.Equal(t, walletID, txn.WalletID)
	assert.Equal(t, scope.UserID, txn.UserID)
	assert.Nil(t, txn.ToWalletID)
}

func TestLedgerService_Create_Expense(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	scope := domain.PersonalScope(uuid.New())
	walletID := uuid.New()
	categoryID := uuid.New()
	tx := &mockTx{}

	intent := ports.TransactionIntent{
		Amount:     25000,
		Kind:       domain.TransactionKindExpense,
		WalletID:   walletID,
		CategoryID: &categoryID,
		Date:       time.Now().UTC(),
	}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID, scope).
		Return(&domain.Wallet{ID: walletID, Balance: 100000, UserID: scope.UserID}, nil)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, walletID, int64(75000)).Return(nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	d.viewCache.EXPECT().InvalidateScope(ctx, scope).Return(nil)

	txn, err := d.svc.Create(ctx, scope, intent)
	require.NoError(t, err)
	require.NotNil(t, txn.CategoryID)
	assert.Equal(t, categoryID, *txn.CategoryID)
}

func TestLedgerService_Create_InsufficientBalance(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	scope := domain.PersonalScope(uuid.New())
	walletID := uuid.New()
	tx := &mockTx{}

	intent := ports.TransactionIntent{
		Amount:   50000,
		Kind:     domain.TransactionKindExpense,
		WalletID: walletID,
		Date:     time.Now().UTC(),
	}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID, scope).
		Return(&domain.Wallet{ID: walletID, Balance: 49999, UserID: scope.UserID}, nil)
	// No UpdateBalance, no Create: the transaction rolls back untouched.

	txn, err := d.svc.Create(ctx, scope, intent)
	assert.Nil(t, txn)
	assertAppCode(t, err, "LEDGER_001")
}

func TestLedgerService_Create_Transfer(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	scope := domain.PersonalScope(uuid.New())
	srcID := uuid.New()
	destID := uuid.New()
	categoryID := uuid.New()
	tx := &mockTx{}

	intent := ports.TransactionIntent{
		Amount:     40000,
		Kind:       domain.TransactionKindTransfer,
		WalletID:   srcID,
		ToWalletID: &destID,
		CategoryID: &categoryID, // ignored for transfers
		Date:       time.Now().UTC(),
	}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, srcID, scope).
		Return(&domain.Wallet{ID: srcID, Balance: 100000, UserID: scope.UserID}, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, destID, scope).
		Return(&domain.Wallet{ID: destID, Balance: 5000, UserID: scope.UserID}, nil)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, srcID, int64(60000)).Return(nil)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, destID, int64(45000)).Return(nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	d.viewCache.EXPECT().InvalidateScope(ctx, scope).Return(nil)

	txn, err := d.svc.Create(ctx, scope, intent)
	require.NoError(t, err)
	require.NotNil(t, txn.ToWalletID)
	assert.Equal(t, destID, *txn.ToWalletID)
	assert.Nil(t, txn.CategoryID, "transfers never carry a category")
}

func TestLedgerService_Create_Transfer_MissingDestination(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	scope := domain.PersonalScope(uuid.New())
	srcID := uuid.New()
	destID := uuid.New()
	tx := &mockTx{}

	intent := ports.TransactionIntent{
		Amount:     10000,
		Kind:       domain.TransactionKindTransfer,
		WalletID:   srcID,
		ToWalletID: &destID,
		Date:       time.Now().UTC(),
	}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, srcID, scope).
		Return(&domain.Wallet{ID: srcID, Balance: 100000, UserID: scope.UserID}, nil)
	// Destination wallet is gone (or belongs to another scope).
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, destID, scope).Return(nil, nil)

	txn, err := d.svc.Create(ctx, scope, intent)
	assert.Nil(t, txn)
	assertAppCode(t, err, "RES_001")
}

func TestLedgerService_Create_InvalidIntent(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	scope := domain.PersonalScope(uuid.New())
	walletID := uuid.New()

	tests := []struct {
		name     string
		intent   ports.TransactionIntent
		wantCode string
	}{
		{
			name:     "zero amount",
			intent:   ports.TransactionIntent{Amount: 0, Kind: domain.TransactionKindExpense, WalletID: walletID},
			wantCode: "LEDGER_002",
		},
		{
			name:     "negative amount",
			intent:   ports.TransactionIntent{Amount: -100, Kind: domain.TransactionKindIncome, WalletID: walletID},
			wantCode: "LEDGER_002",
		},
		{
			name:     "unknown kind",
			intent:   ports.TransactionIntent{Amount: 100, Kind: "refund", WalletID: walletID},
			wantCode: "LEDGER_004",
		},
		{
			name:     "transfer without destination",
			intent:   ports.TransactionIntent{Amount: 100, Kind: domain.TransactionKindTransfer, WalletID: walletID},
			wantCode: "LEDGER_003",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// No storage call expected.
			txn, err := d.svc.Create(ctx, scope, tt.intent)
			assert.Nil(t, txn)
			assertAppCode(t, err, tt.wantCode)
		})
	}
}

func TestLedgerService_Create_CacheFailureDoesNotFail(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	scope := domain.PersonalScope(uuid.New())
	walletID := uuid.New()
	tx := &mockTx{}

	intent := ports.TransactionIntent{
		Amount:   1000,
		Kind:     domain.TransactionKindIncome,
		WalletID: walletID,
		Date:     time.Now().UTC(),
	}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID, scope).
		Return(&domain.Wallet{ID: walletID, Balance: 0, UserID: scope.UserID}, nil)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, walletID, int64(1000)).Return(nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	d.viewCache.EXPECT().InvalidateScope(ctx, scope).Return(errors.New("redis down"))

	txn, err := d.svc.Create(ctx, scope, intent)
	require.NoError(t, err, "cache invalidation is best-effort")
	assert.NotNil(t, txn)
}

// ==================== Edit Tests ====================

func TestLedgerService_Edit_SameWallet(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	scope := domain.PersonalScope(uuid.New())
	walletID := uuid.New()
	txnID := uuid.New()
	createdAt := time.Now().UTC().Add(-time.Hour)
	tx := &mockTx{}

	old := &domain.Transaction{
		ID:        txnID,
		Amount:    10000,
		Kind:      domain.TransactionKindExpense,
		WalletID:  walletID,
		UserID:    scope.UserID,
		CreatedAt: createdAt,
	}
	intent := ports.TransactionIntent{
		Amount:   30000,
		Kind:     domain.TransactionKindExpense,
		WalletID: walletID,
		Date:     time.Now().UTC(),
	}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txRepo.EXPECT().GetByIDForUser(ctx, tx, txnID, scope.UserID).Return(old, nil)
	// The wallet is locked once; revert (+10000) and apply (-30000) land on
	// the in-memory copy, so a single balance write goes out.
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID, scope).
		Return(&domain.Wallet{ID: walletID, Balance: 90000, UserID: scope.UserID}, nil)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, walletID, int64(70000)).Return(nil)
	d.txRepo.EXPECT().Update(ctx, tx, gomock.Any()).Return(nil)
	d.viewCache.EXPECT().InvalidateScope(ctx, scope).Return(nil)

	txn, err := d.svc.Edit(ctx, scope, txnID, intent)
	require.NoError(t, err)
	assert.Equal(t, txnID, txn.ID, "edit keeps the transaction identity")
	assert.Equal(t, createdAt, txn.CreatedAt)
	assert.Equal(t, int64(30000), txn.Amount)
}

func TestLedgerService_Edit_AcrossWallets(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	scope := domain.PersonalScope(uuid.New())
	oldWallet := uuid.New()
	newWallet := uuid.New()
	txnID := uuid.New()
	tx := &mockTx{}

	old := &domain.Transaction{
		ID:        txnID,
		Amount:    10000,
		Kind:      domain.TransactionKindExpense,
		WalletID:  oldWallet,
		UserID:    scope.UserID,
		CreatedAt: time.Now().UTC(),
	}
	intent := ports.TransactionIntent{
		Amount:   10000,
		Kind:     domain.TransactionKindExpense,
		WalletID: newWallet,
		Date:     time.Now().UTC(),
	}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txRepo.EXPECT().GetByIDForUser(ctx, tx, txnID, scope.UserID).Return(old, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, oldWallet, scope).
		Return(&domain.Wallet{ID: oldWallet, Balance: 40000, UserID: scope.UserID}, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, newWallet, scope).
		Return(&domain.Wallet{ID: newWallet, Balance: 15000, UserID: scope.UserID}, nil)
	// Old wallet refunded, new wallet debited.
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, oldWallet, int64(50000)).Return(nil)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, newWallet, int64(5000)).Return(nil)
	d.txRepo.EXPECT().Update(ctx, tx, gomock.Any()).Return(nil)
	d.viewCache.EXPECT().InvalidateScope(ctx, scope).Return(nil)

	_, err := d.svc.Edit(ctx, scope, txnID, intent)
	require.NoError(t, err)
}

func TestLedgerService_Edit_FundsCheckAfterRevert(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	scope := domain.PersonalScope(uuid.New())
	walletID := uuid.New()
	txnID := uuid.New()
	tx := &mockTx{}

	// Old income of 50000 inflated the balance to 60000. Reverting leaves
	// 10000, which cannot cover a 20000 expense.
	old := &domain.Transaction{
		ID:        txnID,
		Amount:    50000,
		Kind:      domain.TransactionKindIncome,
		WalletID:  walletID,
		UserID:    scope.UserID,
		CreatedAt: time.Now().UTC(),
	}
	intent := ports.TransactionIntent{
		Amount:   20000,
		Kind:     domain.TransactionKindExpense,
		WalletID: walletID,
		Date:     time.Now().UTC(),
	}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txRepo.EXPECT().GetByIDForUser(ctx, tx, txnID, scope.UserID).Return(old, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID, scope).
		Return(&domain.Wallet{ID: walletID, Balance: 60000, UserID: scope.UserID}, nil)
	// No UpdateBalance: the rollback discards the revert too.

	txn, err := d.svc.Edit(ctx, scope, txnID, intent)
	assert.Nil(t, txn)
	assertAppCode(t, err, "LEDGER_001")
}

func TestLedgerService_Edit_NotFound(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	scope := domain.PersonalScope(uuid.New())
	txnID := uuid.New()
	tx := &mockTx{}

	intent := ports.TransactionIntent{
		Amount:   1000,
		Kind:     domain.TransactionKindExpense,
		WalletID: uuid.New(),
		Date:     time.Now().UTC(),
	}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txRepo.EXPECT().GetByIDForUser(ctx, tx, txnID, scope.UserID).Return(nil, nil)

	txn, err := d.svc.Edit(ctx, scope, txnID, intent)
	assert.Nil(t, txn)
	assertAppCode(t, err, "RES_001")
}

// ==================== Delete Tests ====================

func TestLedgerService_Delete_Expense(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	scope := domain.PersonalScope(uuid.New())
	walletID := uuid.New()
	txnID := uuid.New()
	tx := &mockTx{}

	txn := &domain.Transaction{
		ID:       txnID,
		Amount:   15000,
		Kind:     domain.TransactionKindExpense,
		WalletID: walletID,
		UserID:   scope.UserID,
	}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txRepo.EXPECT().GetByIDForUser(ctx, tx, txnID, scope.UserID).Return(txn, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID, scope).
		Return(&domain.Wallet{ID: walletID, Balance: 85000, UserID: scope.UserID}, nil)
	// The expense is refunded.
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, walletID, int64(100000)).Return(nil)
	d.txRepo.EXPECT().Delete(ctx, tx, txnID).Return(nil)
	d.viewCache.EXPECT().InvalidateScope(ctx, scope).Return(nil)

	err := d.svc.Delete(ctx, scope, txnID)
	require.NoError(t, err)
}

func TestLedgerService_Delete_Transfer_RevertsBothWallets(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	scope := domain.PersonalScope(uuid.New())
	srcID := uuid.New()
	destID := uuid.New()
	txnID := uuid.New()
	tx := &mockTx{}

	txn := &domain.Transaction{
		ID:         txnID,
		Amount:     20000,
		Kind:       domain.TransactionKindTransfer,
		WalletID:   srcID,
		ToWalletID: &destID,
		UserID:     scope.UserID,
	}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txRepo.EXPECT().GetByIDForUser(ctx, tx, txnID, scope.UserID).Return(txn, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, srcID, scope).
		Return(&domain.Wallet{ID: srcID, Balance: 30000, UserID: scope.UserID}, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, destID, scope).
		Return(&domain.Wallet{ID: destID, Balance: 70000, UserID: scope.UserID}, nil)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, srcID, int64(50000)).Return(nil)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, destID, int64(50000)).Return(nil)
	d.txRepo.EXPECT().Delete(ctx, tx, txnID).Return(nil)
	d.viewCache.EXPECT().InvalidateScope(ctx, scope).Return(nil)

	err := d.svc.Delete(ctx, scope, txnID)
	require.NoError(t, err)
}

func TestLedgerService_Delete_NotFound(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	scope := domain.PersonalScope(uuid.New())
	txnID := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txRepo.EXPECT().GetByIDForUser(ctx, tx, txnID, scope.UserID).Return(nil, nil)

	err := d.svc.Delete(ctx, scope, txnID)
	assertAppCode(t, err, "RES_001")
}
