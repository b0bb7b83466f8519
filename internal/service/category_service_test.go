package service

import (
	"context"
	"testing"

	"finance-tracker/internal/core/domain"
	"finance-tracker/internal/core/ports"
	"finance-tracker/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type categoryTestDeps struct {
	svc        *CategoryServiceImpl
	catRepo    *mocks.MockCategoryRepository
	txRepo     *mocks.MockTransactionRepository
	transactor *mocks.MockDBTransactor
	viewCache  *mocks.MockViewCache
	ctrl       *gomock.Controller
}

func setupCategoryService(t *testing.T) *categoryTestDeps {
	ctrl := gomock.NewController(t)
	d := &categoryTestDeps{
		catRepo:    mocks.NewMockCategoryRepository(ctrl),
		txRepo:     mocks.NewMockTransactionRepository(ctrl),
		transactor: mocks.NewMockDBTransactor(ctrl),
		viewCache:  mocks.NewMockViewCache(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewCategoryService(d.catRepo, d.txRepo, d.transactor, d.viewCache, zerolog.Nop())
	return d
}

func TestCategoryService_Create(t *testing.T) {
	d := setupCategoryService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	scope := domain.PersonalScope(uuid.New())
	icon := "salary"

	d.catRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	d.viewCache.EXPECT().InvalidateScope(ctx, scope).Return(nil)

	c, err := d.svc.Create(ctx, scope, ports.CategoryInput{
		Name: "Salary",
		Kind: domain.CategoryKindIncome,
		Icon: &icon,
	})
	require.NoError(t, err)
	assert.Equal(t, "Salary", c.Name)
	assert.Equal(t, domain.CategoryKindIncome, c.Kind)
	assert.Equal(t, scope.UserID, c.UserID)
}

func TestCategoryService_Create_InvalidInput(t *testing.T) {
	d := setupCategoryService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	scope := domain.PersonalScope(uuid.New())

	c, err := d.svc.Create(ctx, scope, ports.CategoryInput{Name: "x", Kind: domain.CategoryKindExpense})
	assert.Nil(t, c)
	assertAppCode(t, err, "VAL_001")

	c, err = d.svc.Create(ctx, scope, ports.CategoryInput{Name: "Food", Kind: "savings"})
	assert.Nil(t, c)
	assertAppCode(t, err, "VAL_001")
}

func TestCategoryService_Update_NotFound(t *testing.T) {
	d := setupCategoryService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	scope := domain.PersonalScope(uuid.New())
	id := uuid.New()

	d.catRepo.EXPECT().Update(ctx, gomock.Any(), scope).Return(false, nil)

	err := d.svc.Update(ctx, scope, id, ports.CategoryInput{Name: "Food", Kind: domain.CategoryKindExpense})
	assertAppCode(t, err, "RES_001")
}

func TestCategoryService_Delete_DetachesTransactions(t *testing.T) {
	d := setupCategoryService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	scope := domain.PersonalScope(uuid.New())
	id := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txRepo.EXPECT().DetachCategory(ctx, tx, id).Return(nil)
	d.catRepo.EXPECT().Delete(ctx, tx, id, scope).Return(true, nil)
	d.viewCache.EXPECT().InvalidateScope(ctx, scope).Return(nil)

	err := d.svc.Delete(ctx, scope, id)
	require.NoError(t, err)
}

func TestCategoryService_Delete_NotFound(t *testing.T) {
	d := setupCategoryService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	scope := domain.PersonalScope(uuid.New())
	id := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txRepo.EXPECT().DetachCategory(ctx, tx, id).Return(nil)
	d.catRepo.EXPECT().Delete(ctx, tx, id, scope).Return(false, nil)

	err := d.svc.Delete(ctx, scope, id)
	assertAppCode(t, err, "RES_001")
}
