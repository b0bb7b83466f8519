package handler

import (
	"finance-tracker/internal/adapter/http/middleware"
	"finance-tracker/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	LedgerSvc      ports.LedgerService
	WalletSvc      ports.WalletService
	CategorySvc    ports.CategoryService
	ReportingSvc   ports.ReportingService
	TokenSvc       ports.TokenService
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep, verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// API v1 routes, all behind bearer auth
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	v1 := r.Group("/api/v1")

	walletHandler := NewWalletHandler(deps.WalletSvc)
	wallets := v1.Group("/wallets", jwtAuth)
	{
		wallets.GET("", walletHandler.List)
		wallets.POST("", walletHandler.Create)
		wallets.PUT("/:id", walletHandler.Update)
		wallets.DELETE("/:id", walletHandler.Delete)
	}

	categoryHandler := NewCategoryHandler(deps.CategorySvc)
	categories := v1.Group("/categories", jwtAuth)
	{
		categories.GET("", categoryHandler.List)
		categories.POST("", categoryHandler.Create)
		categories.PUT("/:id", categoryHandler.Update)
		categories.DELETE("/:id", categoryHandler.Delete)
	}

	txHandler := NewTransactionHandler(deps.LedgerSvc)
	dashboardHandler := NewDashboardHandler(deps.ReportingSvc)
	transactions := v1.Group("/transactions", jwtAuth)
	{
		transactions.GET("", dashboardHandler.ListTransactions)
		transactions.POST("", txHandler.Create)
		transactions.PUT("/:id", txHandler.Update)
		transactions.DELETE("/:id", txHandler.Delete)
	}

	dashboard := v1.Group("/dashboard", jwtAuth)
	{
		dashboard.GET("", dashboardHandler.GetDashboard)
	}

	return r
}
