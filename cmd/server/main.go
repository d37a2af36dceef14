// Package main is the entry point for the posledger API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"posledger/internal/config"
	"posledger/internal/domain/catalogs/location"
	"posledger/internal/domain/catalogs/product"
	"posledger/internal/domain/inventory"
	"posledger/internal/domain/possale"
	"posledger/internal/domain/reports"
	v1 "posledger/internal/infrastructure/http/v1"
	"posledger/internal/infrastructure/http/v1/middleware"
	"posledger/internal/infrastructure/storage/postgres"
	"posledger/internal/infrastructure/storage/postgres/catalog_repo"
	"posledger/internal/infrastructure/storage/postgres/inventory_repo"
	"posledger/internal/infrastructure/storage/postgres/report_repo"
	"posledger/internal/infrastructure/storage/postgres/sale_repo"
	"posledger/pkg/logger"
	"posledger/pkg/numerator"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: !cfg.App.IsProduction(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	ctx := context.Background()
	log.Infow("starting posledger server", "env", cfg.App.Env, "version", version)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DB.ConnectionString())
	if cfg.DB.MaxConns > 0 {
		poolCfg.MaxConns = cfg.DB.MaxConns
	}
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Numbering ---
	// The provider resolves to the active transaction when one is open, so
	// invoice numbers commit or roll back together with the sale.
	num := numerator.New(func(ctx context.Context) numerator.Querier {
		return txManager.GetQuerier(ctx)
	})

	// --- Repositories ---
	productRepo := catalog_repo.NewProductRepo(txManager)
	locationRepo := catalog_repo.NewLocationRepo(txManager)
	inventoryRepo := inventory_repo.NewInventoryRepo(txManager)
	saleRepo := sale_repo.NewPosSaleRepo(txManager)
	reportRepo := report_repo.NewReportRepo(txManager)

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- Services ---
	mutator := inventory.NewMutator(inventoryRepo)
	inventoryService := inventory.NewService(inventoryRepo, mutator, txManager)
	reservedAdjuster := inventory.NewReservedAdjuster(inventoryRepo, txManager)
	saleService := possale.NewService(
		saleRepo,
		inventoryRepo,
		mutator,
		num,
		txManager,
		cfg.Sale.InvoicePrefix,
	).WithAudit(auditService)
	productService := product.NewService(productRepo, txManager, num)
	locationService := location.NewService(locationRepo, txManager, num)
	reportsService := reports.NewService(reportRepo)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:               pool,
		TxManager:          txManager,
		Logger:             log,
		JWTValidator:       middleware.NewTokenValidator(cfg.JWT.Secret, cfg.JWT.Issuer),
		Version:            version,
		IdempotencyEnabled: true,
		InventoryService:   inventoryService,
		ReservedAdjuster:   reservedAdjuster,
		SaleService:        saleService,
		ProductService:     productService,
		LocationService:    locationService,
		ReportsService:     reportsService,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
