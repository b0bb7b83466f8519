package handler

import (
	"net/http"

	"finance-tracker/internal/adapter/http/dto"
	"finance-tracker/internal/core/ports"
	"finance-tracker/pkg/response"

	"github.com/gin-gonic/gin"
)

// DashboardHandler handles the read-only reporting endpoints.
type DashboardHandler struct {
	reportingSvc ports.ReportingService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(reportingSvc ports.ReportingService) *DashboardHandler {
	return &DashboardHandler{reportingSvc: reportingSvc}
}

// GetDashboard handles GET /api/v1/dashboard.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	stats, err := h.reportingSvc.Dashboard(c.Request.Context(), scope)
	if err != nil {
		response.Error(c, err)
		return
	}

	wallets := make([]dto.WalletResponse, 0, len(stats.Wallets))
	for i := range stats.Wallets {
		wallets = append(wallets, toWalletResponse(&stats.Wallets[i]))
	}
	recent := make([]dto.TransactionResponse, 0, len(stats.RecentTransactions))
	for i := range stats.RecentTransactions {
		recent = append(recent, toTransactionResponse(&stats.RecentTransactions[i]))
	}

	response.OK(c, dto.DashboardResponse{
		TotalBalance:       stats.TotalBalance,
		WalletCount:        stats.WalletCount,
		MonthlyIncome:      stats.MonthlyIncome,
		MonthlyExpense:     stats.MonthlyExpense,
		Wallets:            wallets,
		RecentTransactions: recent,
	})
}

// ListTransactions handles GET /api/v1/transactions.
func (h *DashboardHandler) ListTransactions(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	txns, err := h.reportingSvc.ListTransactions(c.Request.Context(), scope)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		items = append(items, toTransactionResponse(&txns[i]))
	}
	response.OK(c, dto.TransactionListResponse{Items: items})
}

// HealthCheck handles GET /health, verifying every registered dependency.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = depStatus{Status: "healthy"}
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}
