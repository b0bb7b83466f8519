package service

import (
	"context"
	"fmt"
	"time"

	"finance-tracker/internal/core/domain"
	"finance-tracker/internal/core/ports"
	"finance-tracker/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WalletServiceImpl implements ports.WalletService. The only balance it
// writes is the user-declared starting figure on create/update; transaction
// effects stay with the ledger service.
type WalletServiceImpl struct {
	walletRepo ports.WalletRepository
	txRepo     ports.TransactionRepository
	viewCache  ports.ViewCache
	log        zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	viewCache ports.ViewCache,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		walletRepo: walletRepo,
		txRepo:     txRepo,
		viewCache:  viewCache,
		log:        log,
	}
}

// List returns the scope's wallets, newest first.
func (s *WalletServiceImpl) List(ctx context.Context, scope domain.Scope) ([]domain.Wallet, error) {
	wallets, err := s.walletRepo.ListByScope(ctx, scope)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list wallets: %w", err))
	}
	return wallets, nil
}

func validateWalletInput(input ports.WalletInput) error {
	if len(input.Name) < 3 {
		return apperror.Validation("wallet name must be at least 3 characters")
	}
	if !domain.ValidWalletKind(input.Kind) {
		return apperror.Validation("unknown wallet kind")
	}
	if input.Balance < 0 {
		return apperror.Validation("starting balance cannot be negative")
	}
	return nil
}

// Create adds a wallet with its starting balance to the scope.
func (s *WalletServiceImpl) Create(ctx context.Context, scope domain.Scope, input ports.WalletInput) (*domain.Wallet, error) {
	if err := validateWalletInput(input); err != nil {
		return nil, err
	}

	w := &domain.Wallet{
		ID:             uuid.New(),
		Name:           input.Name,
		Kind:           input.Kind,
		Balance:        input.Balance,
		UserID:         scope.UserID,
		OrganizationID: scope.OrganizationID,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.walletRepo.Create(ctx, w); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
	}

	s.invalidateViews(ctx, scope)
	s.log.Info().Str("wallet_id", w.ID.String()).Str("scope", scope.OwnerKey()).Msg("wallet created")
	return w, nil
}

// Update replaces a wallet's name, kind, and balance.
func (s *WalletServiceImpl) Update(ctx context.Context, scope domain.Scope, id uuid.UUID, input ports.WalletInput) error {
	if err := validateWalletInput(input); err != nil {
		return err
	}

	w := &domain.Wallet{
		ID:      id,
		Name:    input.Name,
		Kind:    input.Kind,
		Balance: input.Balance,
	}
	updated, err := s.walletRepo.Update(ctx, w, scope)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("update wallet: %w", err))
	}
	if !updated {
		return apperror.ErrNotFound("wallet")
	}

	s.invalidateViews(ctx, scope)
	return nil
}

// Delete removes a wallet. It refuses while any transaction still
// references the wallet, so ledger history never dangles and sibling
// balances cannot silently drift.
func (s *WalletServiceImpl) Delete(ctx context.Context, scope domain.Scope, id uuid.UUID) error {
	inUse, err := s.txRepo.ExistsByWallet(ctx, id)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("check wallet usage: %w", err))
	}
	if inUse {
		return apperror.ErrWalletInUse()
	}

	deleted, err := s.walletRepo.Delete(ctx, id, scope)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("delete wallet: %w", err))
	}
	if !deleted {
		return apperror.ErrNotFound("wallet")
	}

	s.invalidateViews(ctx, scope)
	s.log.Info().Str("wallet_id", id.String()).Msg("wallet deleted")
	return nil
}

func (s *WalletServiceImpl) invalidateViews(ctx context.Context, scope domain.Scope) {
	if err := s.viewCache.InvalidateScope(ctx, scope); err != nil {
		s.log.Warn().Err(err).Str("scope", scope.OwnerKey()).Msg("failed to invalidate view cache")
	}
}
