// Package main is the entry point for the stockpulse API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"stockpulse/internal/config"
	"stockpulse/internal/domain/auth"
	"stockpulse/internal/domain/lots"
	"stockpulse/internal/domain/reports"
	v1 "stockpulse/internal/infrastructure/http/v1"
	"stockpulse/internal/infrastructure/storage/postgres"
	"stockpulse/internal/infrastructure/storage/postgres/inventory_repo"
	"stockpulse/pkg/logger"
)

const version = "0.3.0"

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

	ctx := context.Background()
	log.Infow("starting stockpulse server", "version", version, "env", cfg.AppEnv)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.Database.URL)
	poolCfg.MaxConns = int32(cfg.Database.MaxConns)
	poolCfg.MinConns = int32(cfg.Database.MinConns)
	poolCfg.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txm := postgres.NewTxManager(pool)

	if cfg.Database.Migrate {
		if err := postgres.Migrate(ctx, txm); err != nil {
			log.Fatalw("failed to apply migrations", "error", err)
		}
	}

	auditService, err := postgres.NewAuditService(txm)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}
	defer auditService.Close()

	// --- Domain services ---
	thresholds := reports.DefaultThresholds()
	if cfg.LowMarginPct != "" {
		pct, err := decimal.NewFromString(cfg.LowMarginPct)
		if err != nil {
			log.Fatalw("invalid LOW_MARGIN_PCT", "value", cfg.LowMarginPct, "error", err)
		}
		thresholds.LowMarginPct = pct
	}

	lotReader := inventory_repo.NewLotReader(txm)
	lotsService := lots.NewService(lots.Config{
		TxManager: txm,
		Purchases: inventory_repo.NewPurchaseRepo(txm),
		Items:     inventory_repo.NewItemRepo(txm),
		Sales:     inventory_repo.NewSaleRepo(txm),
		Lots:      lotReader,
		Auditor:   auditService,
	})
	reportsService := reports.NewService(lotReader, thresholds)

	// --- Auth ---
	jwtConfig := auth.DefaultJWTConfig(cfg.Auth.JWTSecret)
	jwtConfig.AccessTokenTTL = cfg.Auth.TokenTTL
	jwtService := auth.NewJWTService(jwtConfig)

	accounts := auth.NewStaticAccounts(
		auth.Account{Username: cfg.Auth.AdminUser, PasswordHash: cfg.Auth.AdminPassHash, Scope: auth.ScopeAPI},
		auth.Account{Username: cfg.Auth.SyncUser, PasswordHash: cfg.Auth.SyncPassHash, Scope: auth.ScopeSync},
	)
	if len(accounts) == 0 {
		log.Warn("no accounts configured; token endpoint will reject every login")
	}

	authConfig := auth.DefaultServiceConfig()
	authConfig.MaxLoginAttempts = cfg.Auth.MaxLoginAttempts
	authConfig.LockDuration = cfg.Auth.LockDuration
	authService := auth.NewService(accounts, jwtService, authConfig)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		DB:           txm,
		Logger:       log,
		JWTValidator: jwtService,
		AuthService:  authService,
		Lots:         lotsService,
		Reports:      reportsService,
		Version:      version,
		Debug:        cfg.Development(),
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	statsCtx, stopStats := context.WithCancel(ctx)
	defer stopStats()
	go logPoolStats(statsCtx, pool)

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func logPoolStats(ctx context.Context, pool *postgres.Pool) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pool.LogPoolStats(ctx)
		}
	}
}
