// Package main is the entry point for the posledger maintenance worker.
// It prunes expired idempotency keys and old audit entries on a schedule,
// keeping those tables out of the API server's hot path.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"posledger/internal/config"
	"posledger/internal/infrastructure/storage/postgres"
	"posledger/pkg/logger"
)

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting posledger worker")

	poolCfg := postgres.DefaultPoolConfig(cfg.DB.ConnectionString())
	// Maintenance needs only a couple of connections.
	poolCfg.MaxConns = 2
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)
	store := postgres.NewIdempotencyStore(txManager, 0)

	w := &worker{
		pool:           pool,
		store:          store,
		auditRetention: getEnvInt("AUDIT_RETENTION_DAYS", 365),
		log:            log.WithComponent("worker"),
	}

	go w.run(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()
	log.Info("worker stopped")
}

type worker struct {
	pool           *postgres.Pool
	store          *postgres.IdempotencyStore
	auditRetention int // days
	log            *logger.Logger
}

func (w *worker) run(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	// First pass right away so a restarted worker does not wait an hour.
	w.cleanupIdempotency(ctx)
	w.cleanupAudit(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.cleanupIdempotency(ctx)
			w.cleanupAudit(ctx)
		}
	}
}

func (w *worker) cleanupIdempotency(ctx context.Context) {
	deleted, err := w.store.CleanupExpired(ctx)
	if err != nil {
		w.log.Errorw("failed to clean up idempotency keys", "error", err)
		return
	}
	if deleted > 0 {
		w.log.Infow("cleaned up idempotency keys", "count", deleted)
	}
}

func (w *worker) cleanupAudit(ctx context.Context) {
	if w.auditRetention <= 0 {
		return
	}

	result, err := w.pool.Exec(ctx, `
		DELETE FROM sys_audit
		WHERE created_at < NOW() - make_interval(days => $1)
	`, w.auditRetention)
	if err != nil {
		w.log.Errorw("failed to clean up audit entries", "error", err)
		return
	}
	if result.RowsAffected() > 0 {
		w.log.Infow("cleaned up audit entries", "count", result.RowsAffected(), "retention_days", w.auditRetention)
	}
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
