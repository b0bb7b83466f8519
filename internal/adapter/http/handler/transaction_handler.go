package handler

import (
	"time"

	"finance-tracker/internal/adapter/http/dto"
	"finance-tracker/internal/adapter/http/middleware"
	"finance-tracker/internal/core/domain"
	"finance-tracker/internal/core/ports"
	"finance-tracker/pkg/apperror"
	"finance-tracker/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TransactionHandler handles ledger transaction endpoints.
type TransactionHandler struct {
	ledgerSvc ports.LedgerService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ledgerSvc ports.LedgerService) *TransactionHandler {
	return &TransactionHandler{ledgerSvc: ledgerSvc}
}

// requestScope extracts the authenticated data scope, writing an auth error
// on failure.
func requestScope(c *gin.Context) (domain.Scope, bool) {
	scope, ok := middleware.ScopeFromContext(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
	}
	return scope, ok
}

// pathID parses the :id path parameter, writing a validation error on
// failure.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

func intentFromRequest(req dto.TransactionRequest) (ports.TransactionIntent, error) {
	walletID, err := uuid.Parse(req.WalletID)
	if err != nil {
		return ports.TransactionIntent{}, apperror.Validation("invalid wallet_id")
	}

	intent := ports.TransactionIntent{
		Amount:      req.Amount,
		Kind:        domain.TransactionKind(req.Kind),
		WalletID:    walletID,
		Description: req.Description,
		Date:        req.Date,
	}
	if req.ToWalletID != nil {
		id, err := uuid.Parse(*req.ToWalletID)
		if err != nil {
			return ports.TransactionIntent{}, apperror.Validation("invalid to_wallet_id")
		}
		intent.ToWalletID = &id
	}
	if req.CategoryID != nil {
		id, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return ports.TransactionIntent{}, apperror.Validation("invalid category_id")
		}
		intent.CategoryID = &id
	}
	return intent, nil
}

func toTransactionResponse(t *domain.Transaction) dto.TransactionResponse {
	resp := dto.TransactionResponse{
		ID:          t.ID.String(),
		Amount:      t.Amount,
		Kind:        string(t.Kind),
		Description: t.Description,
		Date:        t.Date.Format(time.RFC3339),
		WalletID:    t.WalletID.String(),
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
	if t.ToWalletID != nil {
		s := t.ToWalletID.String()
		resp.ToWalletID = &s
	}
	if t.CategoryID != nil {
		s := t.CategoryID.String()
		resp.CategoryID = &s
	}
	return resp
}

// Create handles POST /api/v1/transactions.
func (h *TransactionHandler) Create(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	intent, err := intentFromRequest(req)
	if err != nil {
		response.Error(c, err)
		return
	}

	txn, err := h.ledgerSvc.Create(c.Request.Context(), scope, intent)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTransactionResponse(txn))
}

// Update handles PUT /api/v1/transactions/:id.
func (h *TransactionHandler) Update(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	intent, err := intentFromRequest(req)
	if err != nil {
		response.Error(c, err)
		return
	}

	txn, err := h.ledgerSvc.Edit(c.Request.Context(), scope, id, intent)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toTransactionResponse(txn))
}

// Delete handles DELETE /api/v1/transactions/:id.
func (h *TransactionHandler) Delete(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.ledgerSvc.Delete(c.Request.Context(), scope, id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
