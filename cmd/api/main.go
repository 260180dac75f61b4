package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wallet-ledger/config"
	"wallet-ledger/internal/adapter/broker/rabbitmq"
	httpHandler "wallet-ledger/internal/adapter/http/handler"
	pgStorage "wallet-ledger/internal/adapter/storage/postgres"
	redisStorage "wallet-ledger/internal/adapter/storage/redis"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/internal/service"
	"wallet-ledger/pkg/logger"
	"wallet-ledger/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Wallet Ledger Engine")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize RabbitMQ publisher
	publisher, err := rabbitmq.NewPublisher(cfg.Rabbit, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to RabbitMQ")
	}
	defer publisher.Close()
	log.Info().Msg("RabbitMQ connected")

	// Initialize repositories
	walletRepo := pgStorage.NewWalletRepo(pool)
	ledgerRepo := pgStorage.NewLedgerRepo(pool)
	snapshotRepo := pgStorage.NewSnapshotRepo(pool)
	idempotencyRepo := pgStorage.NewIdempotencyRepo(pool)
	intentRepo := pgStorage.NewIntentRepo(pool)
	paymentRepo := pgStorage.NewPaymentRepo(pool)
	outboxRepo := pgStorage.NewOutboxRepo(pool)
	transactor := pgStorage.NewTransactor(pool, cfg.Ledger.LockTimeout)

	// Initialize Redis stores
	balanceCache := redisStorage.NewBalanceCache(rdb)

	// Initialize metrics
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	// Initialize business services
	ledgerSvc := service.NewLedgerService(
		walletRepo,
		ledgerRepo,
		snapshotRepo,
		idempotencyRepo,
		intentRepo,
		paymentRepo,
		outboxRepo,
		transactor,
		balanceCache,
		m,
		cfg.Ledger.PendingStaleAfter,
		log,
	)
	rebuildSvc := service.NewRebuildService(walletRepo, ledgerRepo, snapshotRepo, transactor, balanceCache, m, log)
	readSvc := service.NewReadService(walletRepo, ledgerRepo, snapshotRepo, balanceCache, cfg.Ledger.BalanceCacheTTL, log)

	// Start the outbox dispatcher
	dispatcher := service.NewOutboxDispatcher(
		outboxRepo,
		publisher,
		m,
		cfg.Ledger.OutboxInterval,
		cfg.Ledger.OutboxBatchSize,
		log,
	)
	go dispatcher.Run(ctx)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		LedgerSvc:      ledgerSvc,
		ReadSvc:        readSvc,
		RebuildSvc:     rebuildSvc,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Registry:       registry,
		JWT:            cfg.JWT,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	// Stop the dispatcher before the server drains, so no new publishes race
	// the pool teardown.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
