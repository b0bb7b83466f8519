package handler

import (
	"time"

	"finance-tracker/internal/adapter/http/dto"
	"finance-tracker/internal/core/domain"
	"finance-tracker/internal/core/ports"
	"finance-tracker/pkg/apperror"
	"finance-tracker/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles wallet CRUD endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

func toWalletResponse(w *domain.Wallet) dto.WalletResponse {
	return dto.WalletResponse{
		ID:        w.ID.String(),
		Name:      w.Name,
		Kind:      string(w.Kind),
		Balance:   w.Balance,
		CreatedAt: w.CreatedAt.Format(time.RFC3339),
	}
}

// List handles GET /api/v1/wallets.
func (h *WalletHandler) List(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	wallets, err := h.walletSvc.List(c.Request.Context(), scope)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.WalletResponse, 0, len(wallets))
	for i := range wallets {
		items = append(items, toWalletResponse(&wallets[i]))
	}
	response.OK(c, items)
}

// Create handles POST /api/v1/wallets.
func (h *WalletHandler) Create(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	var req dto.WalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	w, err := h.walletSvc.Create(c.Request.Context(), scope, ports.WalletInput{
		Name:    req.Name,
		Kind:    domain.WalletKind(req.Kind),
		Balance: req.Balance,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toWalletResponse(w))
}

// Update handles PUT /api/v1/wallets/:id.
func (h *WalletHandler) Update(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.WalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	err := h.walletSvc.Update(c.Request.Context(), scope, id, ports.WalletInput{
		Name:    req.Name,
		Kind:    domain.WalletKind(req.Kind),
		Balance: req.Balance,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Delete handles DELETE /api/v1/wallets/:id.
func (h *WalletHandler) Delete(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.walletSvc.Delete(c.Request.Context(), scope, id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
