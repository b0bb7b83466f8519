package service

import (
	"context"
	"fmt"
	"time"

	"finance-tracker/internal/core/domain"
	"finance-tracker/internal/core/ports"
	"finance-tracker/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// LedgerServiceImpl implements ports.LedgerService. It is the only write
// path into wallet balances: every operation locks the touched wallet rows
// FOR UPDATE inside one database transaction, recomputes balances from the
// freshest values, and commits the balance writes together with the
// transaction row mutation.
type LedgerServiceImpl struct {
	txRepo     ports.TransactionRepository
	walletRepo ports.WalletRepository
	transactor ports.DBTransactor
	viewCache  ports.ViewCache
	log        zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	txRepo ports.TransactionRepository,
	walletRepo ports.WalletRepository,
	transactor ports.DBTransactor,
	viewCache ports.ViewCache,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		txRepo:     txRepo,
		walletRepo: walletRepo,
		transactor: transactor,
		viewCache:  viewCache,
		log:        log,
	}
}

// validateIntent rejects structurally invalid intents before any storage
// call is made.
func validateIntent(intent ports.TransactionIntent) error {
	if intent.Amount <= 0 {
		return apperror.ErrInvalidAmount()
	}
	if !domain.ValidTransactionKind(intent.Kind) {
		return apperror.ErrInvalidKind()
	}
	if intent.Kind == domain.TransactionKindTransfer && intent.ToWalletID == nil {
		return apperror.ErrDestinationRequired()
	}
	return nil
}

// balanceSheet tracks the wallets locked inside the current atomic scope.
// Each wallet row is locked and read exactly once; subsequent deltas mutate
// the in-memory copy so revert-then-reapply always sees the freshest value,
// including when old and new wallets coincide. Flush writes each touched
// balance back exactly once.
type balanceSheet struct {
	repo    ports.WalletRepository
	tx      pgx.Tx
	scope   domain.Scope
	wallets map[uuid.UUID]*domain.Wallet
	order   []uuid.UUID
}

func newBalanceSheet(repo ports.WalletRepository, tx pgx.Tx, scope domain.Scope) *balanceSheet {
	return &balanceSheet{
		repo:    repo,
		tx:      tx,
		scope:   scope,
		wallets: make(map[uuid.UUID]*domain.Wallet),
	}
}

// acquire locks the wallet row under the scope predicate, or returns the
// already-locked copy.
func (b *balanceSheet) acquire(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	if w, ok := b.wallets[id]; ok {
		return w, nil
	}
	w, err := b.repo.GetByIDForUpdate(ctx, b.tx, id, b.scope)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if w == nil {
		return nil, apperror.ErrNotFound("wallet")
	}
	b.wallets[id] = w
	b.order = append(b.order, id)
	return w, nil
}

// add applies a signed delta to an already-acquired wallet.
func (b *balanceSheet) add(id uuid.UUID, delta int64) {
	b.wallets[id].Balance += delta
}

// flush persists every touched balance in acquisition order.
func (b *balanceSheet) flush(ctx context.Context) error {
	for _, id := range b.order {
		if err := b.repo.UpdateBalance(ctx, b.tx, id, b.wallets[id].Balance); err != nil {
			return apperror.InternalError(fmt.Errorf("update balance: %w", err))
		}
	}
	return nil
}

// applyIntent debits/credits the wallets an intent touches, locking them as
// needed. The funds check runs against the freshest in-scope balance of the
// source wallet.
func (b *balanceSheet) applyIntent(ctx context.Context, intent ports.TransactionIntent) error {
	src, err := b.acquire(ctx, intent.WalletID)
	if err != nil {
		return err
	}
	if intent.Kind != domain.TransactionKindIncome && src.Balance < intent.Amount {
		return apperror.ErrInsufficientBalance()
	}

	switch intent.Kind {
	case domain.TransactionKindTransfer:
		if _, err := b.acquire(ctx, *intent.ToWalletID); err != nil {
			return err
		}
		b.add(intent.WalletID, -intent.Amount)
		b.add(*intent.ToWalletID, intent.Amount)
	case domain.TransactionKindIncome:
		b.add(intent.WalletID, intent.Amount)
	default: // expense
		b.add(intent.WalletID, -intent.Amount)
	}
	return nil
}

// revertTransaction undoes the balance effect of an existing transaction,
// locking its wallets as needed.
func (b *balanceSheet) revertTransaction(ctx context.Context, t *domain.Transaction) error {
	if _, err := b.acquire(ctx, t.WalletID); err != nil {
		return err
	}
	b.add(t.WalletID, -t.SourceDelta())

	if t.IsTransfer() && t.ToWalletID != nil {
		if _, err := b.acquire(ctx, *t.ToWalletID); err != nil {
			return err
		}
		b.add(*t.ToWalletID, -t.Amount)
	}
	return nil
}

// rowFromIntent builds the transaction row for an intent. Destination is
// stored only for transfers, category only for the other kinds, regardless
// of what the caller supplied.
func rowFromIntent(id uuid.UUID, scope domain.Scope, intent ports.TransactionIntent, createdAt time.Time) *domain.Transaction {
	t := &domain.Transaction{
		ID:             id,
		Amount:         intent.Amount,
		Kind:           intent.Kind,
		Description:    intent.Description,
		Date:           intent.Date,
		WalletID:       intent.WalletID,
		UserID:         scope.UserID,
		OrganizationID: scope.OrganizationID,
		CreatedAt:      createdAt,
	}
	if intent.Kind == domain.TransactionKindTransfer {
		t.ToWalletID = intent.ToWalletID
	} else {
		t.CategoryID = intent.CategoryID
	}
	return t
}

// Create records a new transaction and applies its balance effect.
func (s *LedgerServiceImpl) Create(ctx context.Context, scope domain.Scope, intent ports.TransactionIntent) (*domain.Transaction, error) {
	if err := validateIntent(intent); err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	sheet := newBalanceSheet(s.walletRepo, dbTx, scope)
	if err := sheet.applyIntent(ctx, intent); err != nil {
		return nil, err
	}
	if err := sheet.flush(ctx); err != nil {
		return nil, err
	}

	txn := rowFromIntent(uuid.New(), scope, intent, time.Now().UTC())
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.invalidateViews(ctx, scope)

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("kind", string(txn.Kind)).
		Int64("amount", txn.Amount).
		Str("wallet_id", txn.WalletID.String()).
		Msg("transaction created")

	return txn, nil
}

// Edit replaces a transaction with a new intent: the old balance effect is
// reverted and the new one applied inside the same atomic scope, so no
// intermediate state is ever observable and any failure (including the
// funds check against the post-revert balance) rolls the revert back too.
func (s *LedgerServiceImpl) Edit(ctx context.Context, scope domain.Scope, id uuid.UUID, intent ports.TransactionIntent) (*domain.Transaction, error) {
	if err := validateIntent(intent); err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	old, err := s.txRepo.GetByIDForUser(ctx, dbTx, id, scope.UserID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load transaction: %w", err))
	}
	if old == nil {
		return nil, apperror.ErrNotFound("transaction")
	}

	sheet := newBalanceSheet(s.walletRepo, dbTx, scope)
	if err := sheet.revertTransaction(ctx, old); err != nil {
		return nil, err
	}
	if err := sheet.applyIntent(ctx, intent); err != nil {
		return nil, err
	}
	if err := sheet.flush(ctx); err != nil {
		return nil, err
	}

	txn := rowFromIntent(old.ID, scope, intent, old.CreatedAt)
	if err := s.txRepo.Update(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.invalidateViews(ctx, scope)

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("kind", string(txn.Kind)).
		Int64("amount", txn.Amount).
		Msg("transaction updated")

	return txn, nil
}

// Delete reverts a transaction's balance effect and removes the row.
func (s *LedgerServiceImpl) Delete(ctx context.Context, scope domain.Scope, id uuid.UUID) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	txn, err := s.txRepo.GetByIDForUser(ctx, dbTx, id, scope.UserID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("load transaction: %w", err))
	}
	if txn == nil {
		return apperror.ErrNotFound("transaction")
	}

	sheet := newBalanceSheet(s.walletRepo, dbTx, scope)
	if err := sheet.revertTransaction(ctx, txn); err != nil {
		return err
	}
	if err := sheet.flush(ctx); err != nil {
		return err
	}

	if err := s.txRepo.Delete(ctx, dbTx, txn.ID); err != nil {
		return apperror.InternalError(fmt.Errorf("delete transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.invalidateViews(ctx, scope)

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("kind", string(txn.Kind)).
		Int64("amount", txn.Amount).
		Msg("transaction deleted, balances reverted")

	return nil
}

// invalidateViews drops the scope's cached read views after a commit.
// Best-effort: a failure here only extends read staleness.
func (s *LedgerServiceImpl) invalidateViews(ctx context.Context, scope domain.Scope) {
	if err := s.viewCache.InvalidateScope(ctx, scope); err != nil {
		s.log.Warn().Err(err).Str("scope", scope.OwnerKey()).Msg("failed to invalidate view cache")
	}
}
