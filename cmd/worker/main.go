// Package main is the entry point for the stockpulse background worker.
// It pulls pending sales from InvoiceX on a cron schedule.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/robfig/cron/v3"

	"stockpulse/internal/config"
	"stockpulse/internal/domain/lots"
	"stockpulse/internal/infrastructure/invoicex"
	"stockpulse/internal/infrastructure/lock"
	"stockpulse/internal/infrastructure/storage/postgres"
	"stockpulse/internal/infrastructure/storage/postgres/inventory_repo"
	"stockpulse/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Development(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = logger.WithLogger(ctx, log.WithComponent("invoicex-sync"))

	log.Info("starting stockpulse worker")

	if cfg.Sync.InvoiceXDSN == "" {
		log.Fatal("INVOICEX_DSN is required")
	}

	poolCfg := postgres.DefaultPoolConfig(cfg.Database.URL)
	poolCfg.MaxConns = int32(cfg.Database.MaxConns)
	poolCfg.MinConns = int32(cfg.Database.MinConns)

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)

	auditService, err := postgres.NewAuditService(txm)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}
	defer auditService.Close()

	lotsService := lots.NewService(lots.Config{
		TxManager: txm,
		Purchases: inventory_repo.NewPurchaseRepo(txm),
		Items:     inventory_repo.NewItemRepo(txm),
		Sales:     inventory_repo.NewSaleRepo(txm),
		Lots:      inventory_repo.NewLotReader(txm),
		Auditor:   auditService,
	})

	source, err := invoicex.Open(ctx, cfg.Sync.InvoiceXDSN)
	if err != nil {
		log.Fatalw("failed to connect to invoicex", "error", err)
	}
	defer source.Close()

	var locker lock.Locker = lock.Noop{}
	if cfg.Sync.RedisAddr != "" {
		redisLocker, err := lock.NewRedisLocker(ctx, cfg.Sync.RedisAddr)
		if err != nil {
			log.Fatalw("failed to connect to redis", "error", err)
		}
		defer redisLocker.Close()
		locker = redisLocker
	} else {
		log.Warn("REDIS_ADDR not set; sync runs are not guarded across workers")
	}

	job := newSyncJob(invoicex.NewSyncer(source, lotsService, cfg.Sync.BatchSize), locker, cfg.Sync.LockTTL)

	c := cron.New()
	if _, err := c.AddFunc(cfg.Sync.Cron, func() { job.Run(ctx) }); err != nil {
		log.Fatalw("invalid sync schedule", "cron", cfg.Sync.Cron, "error", err)
	}
	c.Start()
	log.Infow("invoicex sync scheduled", "cron", cfg.Sync.Cron, "batch_size", cfg.Sync.BatchSize)

	// First run right away instead of waiting for the first tick.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		job.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	<-c.Stop().Done()
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}
