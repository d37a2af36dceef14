// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"posledger/internal/core/security"
	"posledger/internal/domain/catalogs/location"
	"posledger/internal/domain/catalogs/product"
	"posledger/internal/domain/inventory"
	"posledger/internal/domain/possale"
	"posledger/internal/domain/reports"
	"posledger/internal/infrastructure/http/v1/handlers"
	"posledger/internal/infrastructure/http/v1/middleware"
	"posledger/internal/infrastructure/storage/postgres"
	"posledger/pkg/logger"
)

// RouterConfig holds everything the HTTP layer depends on.
type RouterConfig struct {
	// Pool is the database connection (health checks)
	Pool *postgres.Pool

	// TxManager drives the idempotency store
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Version reported by /health/info
	Version string

	// IdempotencyEnabled enables replay protection for mutating requests
	IdempotencyEnabled bool
	IdempotencyTTL     time.Duration

	// Domain services
	InventoryService *inventory.Service
	ReservedAdjuster *inventory.ReservedAdjuster
	SaleService      *possale.Service
	ProductService   *product.Service
	LocationService  *location.Service
	ReportsService   *reports.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1, everything behind JWT auth
	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWTValidator))

	if cfg.IdempotencyEnabled {
		ttl := cfg.IdempotencyTTL
		if ttl == 0 {
			ttl = 10 * time.Minute
		}
		store := postgres.NewIdempotencyStore(cfg.TxManager, ttl)
		api.Use(middleware.Idempotency(store))
	}

	baseHandler := handlers.NewBaseHandler()

	// --- Catalogs ---

	productHandler := handlers.NewProductHandler(baseHandler, cfg.ProductService)
	productGroup := api.Group("/products")
	{
		productGroup.POST("", productHandler.Create)
		productGroup.GET("", productHandler.List)
		productGroup.GET("/sku/:sku", productHandler.GetBySKU)
		productGroup.GET("/barcode/:barcode", productHandler.GetByBarcode)
		productGroup.GET("/:id", productHandler.GetByID)
		productGroup.PUT("/:id", productHandler.Update)
		productGroup.DELETE("/:id", productHandler.Delete)
	}

	locationHandler := handlers.NewLocationHandler(baseHandler, cfg.LocationService)
	locationGroup := api.Group("/locations")
	{
		locationGroup.POST("", locationHandler.Create)
		locationGroup.GET("", locationHandler.List)
		locationGroup.GET("/default", locationHandler.GetDefault)
		locationGroup.GET("/:id", locationHandler.GetByID)
		locationGroup.PUT("/:id", locationHandler.Update)
		locationGroup.DELETE("/:id", locationHandler.Delete)
	}

	// --- Inventory ---

	inventoryHandler := handlers.NewInventoryHandler(baseHandler, cfg.InventoryService, cfg.ReservedAdjuster)
	inventoryGroup := api.Group("/inventory")
	{
		inventoryGroup.POST("/movements", inventoryHandler.CreateMovement)
		inventoryGroup.GET("/movements", inventoryHandler.ListMovements)
		inventoryGroup.GET("/quantity", inventoryHandler.GetQuantity)
		inventoryGroup.GET("/records", inventoryHandler.ListRecords)
		inventoryGroup.GET("/reserved", inventoryHandler.GetReserved)

		// Reserved adjustments belong to back-office staff, not cashiers.
		inventoryGroup.PUT("/reserved",
			middleware.RequireRole(security.RoleManager),
			inventoryHandler.SetReserved)
	}

	// --- POS Sales ---

	saleHandler := handlers.NewPosSaleHandler(baseHandler, cfg.SaleService)
	saleGroup := api.Group("/sales")
	{
		saleGroup.POST("", saleHandler.Create)
		saleGroup.GET("", saleHandler.List)
		saleGroup.GET("/:id", saleHandler.GetByID)
		saleGroup.PUT("/:id", saleHandler.Update)
		saleGroup.POST("/:id/cancel", saleHandler.Cancel)
		saleGroup.DELETE("/:id", saleHandler.Delete)
	}

	// --- Reports ---

	reportsHandler := handlers.NewReportsHandler(baseHandler, cfg.ReportsService)
	reportsGroup := api.Group("/reports")
	{
		reportsGroup.GET("/stock-balance", reportsHandler.GetStockBalance)
		reportsGroup.GET("/stock-turnover", reportsHandler.GetStockTurnover)
		reportsGroup.GET("/reconciliation", reportsHandler.GetReconciliation)
		reportsGroup.GET("/sales-summary", reportsHandler.GetSalesSummary)
	}

	return router
}
