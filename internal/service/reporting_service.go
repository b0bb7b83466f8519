package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"finance-tracker/internal/core/domain"
	"finance-tracker/internal/core/ports"
	"finance-tracker/pkg/apperror"

	"github.com/rs/zerolog"
)

const (
	defaultViewTTL   = time.Hour
	recentTxLimit    = 5
	listTxLimit      = 50
	dashboardKeyName = "dashboard"
	txListKeyName    = "transactions"
)

// reportingService implements ports.ReportingService with a read-through
// view cache. Cached views may be stale until the next mutation invalidates
// them; the authoritative balances live behind the ledger service only.
type reportingService struct {
	txRepo     ports.TransactionRepository
	walletRepo ports.WalletRepository
	viewCache  ports.ViewCache
	viewTTL    time.Duration
	log        zerolog.Logger
}

// NewReportingService creates a new reporting service. A non-positive
// viewTTL falls back to the default one-hour lifetime.
func NewReportingService(
	txRepo ports.TransactionRepository,
	walletRepo ports.WalletRepository,
	viewCache ports.ViewCache,
	viewTTL time.Duration,
	log zerolog.Logger,
) ports.ReportingService {
	if viewTTL <= 0 {
		viewTTL = defaultViewTTL
	}
	return &reportingService{
		txRepo:     txRepo,
		walletRepo: walletRepo,
		viewCache:  viewCache,
		viewTTL:    viewTTL,
		log:        log,
	}
}

// Dashboard aggregates the scope's wallets, current-month income/expense
// totals, and recent transactions.
func (s *reportingService) Dashboard(ctx context.Context, scope domain.Scope) (*ports.DashboardStats, error) {
	key := dashboardKeyName + ":" + scope.OwnerKey()

	var cached ports.DashboardStats
	if s.readView(ctx, key, &cached) {
		return &cached, nil
	}

	wallets, err := s.walletRepo.ListByScope(ctx, scope)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list wallets: %w", err))
	}

	var total int64
	for _, w := range wallets {
		total += w.Balance
	}

	now := time.Now().UTC()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	income, expense, err := s.txRepo.SumKindsSince(ctx, scope, startOfMonth)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("monthly totals: %w", err))
	}

	recent, err := s.txRepo.ListByScope(ctx, scope, recentTxLimit)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("recent transactions: %w", err))
	}

	stats := &ports.DashboardStats{
		TotalBalance:       total,
		WalletCount:        len(wallets),
		MonthlyIncome:      income,
		MonthlyExpense:     expense,
		Wallets:            wallets,
		RecentTransactions: recent,
	}

	s.writeView(ctx, key, stats)
	return stats, nil
}

// ListTransactions returns the scope's transactions, newest business date
// first.
func (s *reportingService) ListTransactions(ctx context.Context, scope domain.Scope) ([]domain.Transaction, error) {
	key := txListKeyName + ":" + scope.OwnerKey()

	var cached []domain.Transaction
	if s.readView(ctx, key, &cached) {
		return cached, nil
	}

	txns, err := s.txRepo.ListByScope(ctx, scope, listTxLimit)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}

	s.writeView(ctx, key, txns)
	return txns, nil
}

// readView attempts a cache hit; cache failures degrade to a miss.
func (s *reportingService) readView(ctx context.Context, key string, out any) bool {
	data, err := s.viewCache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("view cache read failed, falling through")
		return false
	}
	if data == nil {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("corrupt cached view, falling through")
		return false
	}
	return true
}

// writeView stores a view; failures are logged, never propagated.
func (s *reportingService) writeView(ctx context.Context, key string, view any) {
	data, err := json.Marshal(view)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to marshal view for cache")
		return
	}
	if err := s.viewCache.Set(ctx, key, data, s.viewTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to cache view")
	}
}
