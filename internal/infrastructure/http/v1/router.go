// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"stockpulse/internal/domain/auth"
	"stockpulse/internal/infrastructure/http/v1/handlers"
	"stockpulse/internal/infrastructure/http/v1/middleware"
	"stockpulse/pkg/logger"
)

// LotsService is the lifecycle surface the API exposes.
type LotsService interface {
	handlers.PurchaseService
	handlers.ItemService
	handlers.SaleService
	handlers.SyncService
}

// ReportsService is the read surface the API exposes.
type ReportsService interface {
	handlers.PurchaseReader
	handlers.ItemReader
	handlers.ReportsService
}

// RouterConfig holds router configuration.
type RouterConfig struct {
	// DB is pinged by the readiness probe
	DB handlers.Pinger

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService issues tokens; auth routes are skipped when nil
	AuthService handlers.TokenIssuer

	Lots    LotsService
	Reports ReportsService

	Version string

	// Debug switches gin to debug mode
	Debug bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, cfg)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		registerInventoryRoutes(protected, cfg)
		registerReportRoutes(protected, cfg)
		registerSyncRoutes(protected, cfg)
	}

	return router
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	authHandler := handlers.NewAuthHandler(handlers.NewBaseHandler(), cfg.AuthService)
	authHandler.RegisterRoutes(rg.Group("/auth"))
}

// registerInventoryRoutes registers purchase, item and sale endpoints.
func registerInventoryRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	RegisterScopedRoutes(rg, "/purchases",
		handlers.NewPurchaseHandler(baseHandler, cfg.Lots, cfg.Reports), auth.ScopeAPI)
	RegisterScopedRoutes(rg, "/items",
		handlers.NewItemHandler(baseHandler, cfg.Lots, cfg.Reports), auth.ScopeAPI)
	RegisterScopedRoutes(rg, "/sales",
		handlers.NewSaleHandler(baseHandler, cfg.Lots), auth.ScopeAPI)
}

// registerReportRoutes registers report endpoints.
func registerReportRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	RegisterScopedRoutes(rg, "/reports",
		handlers.NewReportsHandler(handlers.NewBaseHandler(), cfg.Reports), auth.ScopeAPI)
}

// registerSyncRoutes registers the billing-system integration endpoints.
// Operators may call them too, e.g. to replay a failed batch.
func registerSyncRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	RegisterScopedRoutes(rg, "/sync",
		handlers.NewSyncHandler(handlers.NewBaseHandler(), cfg.Lots), auth.ScopeSync, auth.ScopeAPI)
}
