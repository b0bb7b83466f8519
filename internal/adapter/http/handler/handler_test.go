package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finance-tracker/internal/adapter/http/dto"
	"finance-tracker/internal/adapter/http/middleware"
	"finance-tracker/internal/core/domain"
	"finance-tracker/internal/core/ports"
	"finance-tracker/internal/core/ports/mocks"
	"finance-tracker/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func authedContext(t *testing.T, w *httptest.ResponseRecorder, userID uuid.UUID) *gin.Context {
	t.Helper()
	c, _ := gin.CreateTestContext(w)
	c.Set(middleware.CtxUserID, userID)
	return c
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(body)
}

// --- Transaction Handler Tests ---

func TestTransactionCreate_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewTransactionHandler(mockLedger)

	userID := uuid.New()
	walletID := uuid.New()
	txnID := uuid.New()
	date := time.Now().UTC().Truncate(time.Second)

	mockLedger.EXPECT().Create(gomock.Any(), domain.PersonalScope(userID), gomock.Any()).
		Return(&domain.Transaction{
			ID:        txnID,
			Amount:    5000,
			Kind:      domain.TransactionKindExpense,
			Date:      date,
			WalletID:  walletID,
			UserID:    userID,
			CreatedAt: date,
		}, nil)

	w := httptest.NewRecorder()
	c := authedContext(t, w, userID)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/transactions", jsonBody(t, dto.TransactionRequest{
		Amount:   5000,
		Kind:     "expense",
		WalletID: walletID.String(),
		Date:     date,
	}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, txnID.String(), data["id"])
	assert.Equal(t, "expense", data["kind"])
	assert.Equal(t, float64(5000), data["amount"])
}

func TestTransactionCreate_BindingError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewTransactionHandler(mockLedger)

	w := httptest.NewRecorder()
	c := authedContext(t, w, uuid.New())
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewReader([]byte("{}")))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransactionCreate_InsufficientBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewTransactionHandler(mockLedger)

	userID := uuid.New()
	mockLedger.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrInsufficientBalance())

	w := httptest.NewRecorder()
	c := authedContext(t, w, userID)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/transactions", jsonBody(t, dto.TransactionRequest{
		Amount:   999999,
		Kind:     "expense",
		WalletID: uuid.New().String(),
		Date:     time.Now().UTC(),
	}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Create(c)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, w.Body.String(), "LEDGER_001")
}

func TestTransactionUpdate_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewTransactionHandler(mockLedger)

	userID := uuid.New()
	txnID := uuid.New()
	walletID := uuid.New()
	date := time.Now().UTC().Truncate(time.Second)

	mockLedger.EXPECT().Edit(gomock.Any(), domain.PersonalScope(userID), txnID, gomock.Any()).
		Return(&domain.Transaction{
			ID:       txnID,
			Amount:   7000,
			Kind:     domain.TransactionKindIncome,
			Date:     date,
			WalletID: walletID,
			UserID:   userID,
		}, nil)

	w := httptest.NewRecorder()
	c := authedContext(t, w, userID)
	c.Params = gin.Params{{Key: "id", Value: txnID.String()}}
	c.Request = httptest.NewRequest(http.MethodPut, "/api/v1/transactions/"+txnID.String(), jsonBody(t, dto.TransactionRequest{
		Amount:   7000,
		Kind:     "income",
		WalletID: walletID.String(),
		Date:     date,
	}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Update(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTransactionUpdate_BadID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewTransactionHandler(mockLedger)

	w := httptest.NewRecorder()
	c := authedContext(t, w, uuid.New())
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}
	c.Request = httptest.NewRequest(http.MethodPut, "/api/v1/transactions/not-a-uuid", nil)

	h.Update(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransactionDelete_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewTransactionHandler(mockLedger)

	userID := uuid.New()
	txnID := uuid.New()
	mockLedger.EXPECT().Delete(gomock.Any(), domain.PersonalScope(userID), txnID).Return(nil)

	w := httptest.NewRecorder()
	c := authedContext(t, w, userID)
	c.Params = gin.Params{{Key: "id", Value: txnID.String()}}
	c.Request = httptest.NewRequest(http.MethodDelete, "/api/v1/transactions/"+txnID.String(), nil)

	h.Delete(c)
	// gin only flushes a bare Status() at end-of-request; the test context
	// bypasses the engine, so flush manually as the engine would.
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestTransactionDelete_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewTransactionHandler(mockLedger)

	userID := uuid.New()
	txnID := uuid.New()
	mockLedger.EXPECT().Delete(gomock.Any(), gomock.Any(), txnID).Return(apperror.ErrNotFound("transaction"))

	w := httptest.NewRecorder()
	c := authedContext(t, w, userID)
	c.Params = gin.Params{{Key: "id", Value: txnID.String()}}
	c.Request = httptest.NewRequest(http.MethodDelete, "/api/v1/transactions/"+txnID.String(), nil)

	h.Delete(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- Wallet Handler Tests ---

func TestWalletList_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	userID := uuid.New()
	mockWallet.EXPECT().List(gomock.Any(), domain.PersonalScope(userID)).Return([]domain.Wallet{
		{ID: uuid.New(), Name: "Cash", Kind: domain.WalletKindCash, Balance: 10000, UserID: userID},
		{ID: uuid.New(), Name: "Bank", Kind: domain.WalletKindBank, Balance: 250000, UserID: userID},
	}, nil)

	w := httptest.NewRecorder()
	c := authedContext(t, w, userID)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/wallets", nil)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].([]interface{})
	assert.Len(t, data, 2)
}

func TestWalletCreate_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	userID := uuid.New()
	walletID := uuid.New()
	mockWallet.EXPECT().Create(gomock.Any(), domain.PersonalScope(userID), ports.WalletInput{
		Name:    "Savings",
		Kind:    domain.WalletKindBank,
		Balance: 100000,
	}).Return(&domain.Wallet{
		ID:      walletID,
		Name:    "Savings",
		Kind:    domain.WalletKindBank,
		Balance: 100000,
		UserID:  userID,
	}, nil)

	w := httptest.NewRecorder()
	c := authedContext(t, w, userID)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/wallets", jsonBody(t, dto.WalletRequest{
		Name:    "Savings",
		Kind:    "bank",
		Balance: 100000,
	}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), walletID.String())
}

func TestWalletCreate_InvalidKind(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	w := httptest.NewRecorder()
	c := authedContext(t, w, uuid.New())
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/wallets", jsonBody(t, dto.WalletRequest{
		Name: "Crypto",
		Kind: "crypto",
	}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWalletDelete_InUse(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	userID := uuid.New()
	walletID := uuid.New()
	mockWallet.EXPECT().Delete(gomock.Any(), gomock.Any(), walletID).Return(apperror.ErrWalletInUse())

	w := httptest.NewRecorder()
	c := authedContext(t, w, userID)
	c.Params = gin.Params{{Key: "id", Value: walletID.String()}}
	c.Request = httptest.NewRequest(http.MethodDelete, "/api/v1/wallets/"+walletID.String(), nil)

	h.Delete(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "RES_002")
}

// --- Category Handler Tests ---

func TestCategoryCreate_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCat := mocks.NewMockCategoryService(ctrl)
	h := NewCategoryHandler(mockCat)

	userID := uuid.New()
	catID := uuid.New()
	icon := "cart"
	mockCat.EXPECT().Create(gomock.Any(), domain.PersonalScope(userID), ports.CategoryInput{
		Name: "Groceries",
		Kind: domain.CategoryKindExpense,
		Icon: &icon,
	}).Return(&domain.Category{
		ID:     catID,
		Name:   "Groceries",
		Kind:   domain.CategoryKindExpense,
		Icon:   &icon,
		UserID: userID,
	}, nil)

	w := httptest.NewRecorder()
	c := authedContext(t, w, userID)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/categories", jsonBody(t, dto.CategoryRequest{
		Name: "Groceries",
		Kind: "expense",
		Icon: &icon,
	}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), catID.String())
}

func TestCategoryUpdate_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCat := mocks.NewMockCategoryService(ctrl)
	h := NewCategoryHandler(mockCat)

	userID := uuid.New()
	catID := uuid.New()
	mockCat.EXPECT().Update(gomock.Any(), gomock.Any(), catID, gomock.Any()).
		Return(apperror.ErrNotFound("category"))

	w := httptest.NewRecorder()
	c := authedContext(t, w, userID)
	c.Params = gin.Params{{Key: "id", Value: catID.String()}}
	c.Request = httptest.NewRequest(http.MethodPut, "/api/v1/categories/"+catID.String(), jsonBody(t, dto.CategoryRequest{
		Name: "Food",
		Kind: "expense",
	}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Update(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- Dashboard Handler Tests ---

func TestGetDashboard_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewDashboardHandler(mockReporting)

	userID := uuid.New()
	mockReporting.EXPECT().Dashboard(gomock.Any(), domain.PersonalScope(userID)).
		Return(&ports.DashboardStats{
			TotalBalance:   350000,
			WalletCount:    2,
			MonthlyIncome:  80000,
			MonthlyExpense: 30000,
		}, nil)

	w := httptest.NewRecorder()
	c := authedContext(t, w, userID)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)

	h.GetDashboard(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(350000), data["total_balance"])
	assert.Equal(t, float64(2), data["wallet_count"])
}

func TestListTransactions_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReporting := mocks.NewMockReportingService(ctrl)
	h := NewDashboardHandler(mockReporting)

	userID := uuid.New()
	mockReporting.EXPECT().ListTransactions(gomock.Any(), domain.PersonalScope(userID)).
		Return([]domain.Transaction{
			{ID: uuid.New(), Amount: 5000, Kind: domain.TransactionKindExpense, WalletID: uuid.New()},
		}, nil)

	w := httptest.NewRecorder()
	c := authedContext(t, w, userID)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)

	h.ListTransactions(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	assert.Len(t, items, 1)
}

func TestHandlers_MissingScope(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewDashboardHandler(mocks.NewMockReportingService(ctrl))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)

	h.GetDashboard(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// --- Health Check Tests ---

type fakeChecker struct {
	name string
	err  error
}

func (f fakeChecker) Ping(_ context.Context) error { return f.err }
func (f fakeChecker) Name() string                 { return f.name }

func TestHealthCheck_AllHealthy(t *testing.T) {
	r := gin.New()
	r.GET("/health", HealthCheck(fakeChecker{name: "postgresql"}, fakeChecker{name: "redis"}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}

func TestHealthCheck_Degraded(t *testing.T) {
	r := gin.New()
	r.GET("/health", HealthCheck(
		fakeChecker{name: "postgresql"},
		fakeChecker{name: "redis", err: errors.New("connection refused")},
	))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")
}

// --- Router Tests ---

func TestSetupRouter_UnauthenticatedRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r := SetupRouter(RouterDeps{
		LedgerSvc:    mocks.NewMockLedgerService(ctrl),
		WalletSvc:    mocks.NewMockWalletService(ctrl),
		CategorySvc:  mocks.NewMockCategoryService(ctrl),
		ReportingSvc: mocks.NewMockReportingService(ctrl),
		TokenSvc:     mocks.NewMockTokenService(ctrl),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallets", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSetupRouter_HealthIsPublic(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r := SetupRouter(RouterDeps{
		LedgerSvc:      mocks.NewMockLedgerService(ctrl),
		WalletSvc:      mocks.NewMockWalletService(ctrl),
		CategorySvc:    mocks.NewMockCategoryService(ctrl),
		ReportingSvc:   mocks.NewMockReportingService(ctrl),
		TokenSvc:       mocks.NewMockTokenService(ctrl),
		HealthCheckers: []ports.HealthChecker{fakeChecker{name: "postgresql"}},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
