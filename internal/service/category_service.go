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

// CategoryServiceImpl implements ports.CategoryService.
type CategoryServiceImpl struct {
	catRepo    ports.CategoryRepository
	txRepo     ports.TransactionRepository
	transactor ports.DBTransactor
	viewCache  ports.ViewCache
	log        zerolog.Logger
}

// NewCategoryService creates a new CategoryServiceImpl.
func NewCategoryService(
	catRepo ports.CategoryRepository,
	txRepo ports.TransactionRepository,
	transactor ports.DBTransactor,
	viewCache ports.ViewCache,
	log zerolog.Logger,
) *CategoryServiceImpl {
	return &CategoryServiceImpl{
		catRepo:    catRepo,
		txRepo:     txRepo,
		transactor: transactor,
		viewCache:  viewCache,
		log:        log,
	}
}

func validateCategoryInput(input ports.CategoryInput) error {
	if len(input.Name) < 2 {
		return apperror.Validation("category name must be at least 2 characters")
	}
	if !domain.ValidCategoryKind(input.Kind) {
		return apperror.Validation("category kind must be income or expense")
	}
	return nil
}

// List returns the scope's categories.
func (s *CategoryServiceImpl) List(ctx context.Context, scope domain.Scope) ([]domain.Category, error) {
	categories, err := s.catRepo.ListByScope(ctx, scope)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list categories: %w", err))
	}
	return categories, nil
}

// Create adds a category to the scope.
func (s *CategoryServiceImpl) Create(ctx context.Context, scope domain.Scope, input ports.CategoryInput) (*domain.Category, error) {
	if err := validateCategoryInput(input); err != nil {
		return nil, err
	}

	c := &domain.Category{
		ID:             uuid.New(),
		Name:           input.Name,
		Icon:           input.Icon,
		Kind:           input.Kind,
		UserID:         scope.UserID,
		OrganizationID: scope.OrganizationID,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.catRepo.Create(ctx, c); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create category: %w", err))
	}

	s.invalidateViews(ctx, scope)
	return c, nil
}

// Update replaces a category's name, kind, and icon.
func (s *CategoryServiceImpl) Update(ctx context.Context, scope domain.Scope, id uuid.UUID, input ports.CategoryInput) error {
	if err := validateCategoryInput(input); err != nil {
		return err
	}

	c := &domain.Category{
		ID:   id,
		Name: input.Name,
		Icon: input.Icon,
		Kind: input.Kind,
	}
	updated, err := s.catRepo.Update(ctx, c, scope)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("update category: %w", err))
	}
	if !updated {
		return apperror.ErrNotFound("category")
	}

	s.invalidateViews(ctx, scope)
	return nil
}

// Delete removes a category and detaches referencing transactions in one
// atomic scope, so a transaction never points at a vanished category.
func (s *CategoryServiceImpl) Delete(ctx context.Context, scope domain.Scope, id uuid.UUID) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.txRepo.DetachCategory(ctx, dbTx, id); err != nil {
		return apperror.InternalError(fmt.Errorf("detach category: %w", err))
	}

	deleted, err := s.catRepo.Delete(ctx, dbTx, id, scope)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("delete category: %w", err))
	}
	if !deleted {
		return apperror.ErrNotFound("category")
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.invalidateViews(ctx, scope)
	s.log.Info().Str("category_id", id.String()).Msg("category deleted")
	return nil
}

func (s *CategoryServiceImpl) invalidateViews(ctx context.Context, scope domain.Scope) {
	if err := s.viewCache.InvalidateScope(ctx, scope); err != nil {
		s.log.Warn().Err(err).Str("scope", scope.OwnerKey()).Msg("failed to invalidate view cache")
	}
}
