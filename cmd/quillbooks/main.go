package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/quillbooks/quillbooks/internal/app"
	"github.com/quillbooks/quillbooks/internal/invoices"
	"github.com/quillbooks/quillbooks/internal/ledger"
	"github.com/quillbooks/quillbooks/internal/observability"
	"github.com/quillbooks/quillbooks/internal/shared"
	"github.com/quillbooks/quillbooks/internal/statements"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(dbpool, logger)
	idempotencyStore := shared.NewIdempotencyStore(dbpool)

	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := idempotencyStore.Cleanup(ctx, cfg.IdempotencyRetention); err != nil {
					logger.Warn("idempotency cleanup", slog.Any("error", err))
				}
			}
		}
	}()

	ledgerRepo := ledger.NewRepository(dbpool)
	ledgerService := ledger.NewService(ledgerRepo, auditLogger)
	ledgerHandler := ledger.NewHandler(logger, ledgerService, idempotencyStore)

	statementsRepo := statements.NewRepository(dbpool)
	statementsCache := statements.NewCache(redisClient, cfg.StatementCacheTTL)
	statementsService := statements.NewService(statementsRepo, statementsCache, auditLogger, logger)
	statementsHandler := statements.NewHandler(logger, statementsService)

	invoicesRepo := invoices.NewRepository(dbpool)
	invoicesService := invoices.NewService(invoicesRepo, auditLogger)
	invoicesHandler := invoices.NewHandler(logger, invoicesService)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		LedgerHandler:     ledgerHandler,
		StatementsHandler: statementsHandler,
		InvoicesHandler:   invoicesHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", slog.Any("error", err))
	}
}
