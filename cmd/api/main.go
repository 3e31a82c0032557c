// Package main provides the EcoLog HTTP API server.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ecolog-app/ecolog/internal/config"
	"github.com/ecolog-app/ecolog/internal/logger"
	"github.com/ecolog-app/ecolog/internal/repository"
	"github.com/ecolog-app/ecolog/internal/server"
	"github.com/ecolog-app/ecolog/internal/service"
)

const exitCode = 1

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(exitCode)
	}

	loggerInstance := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(loggerInstance)

	userRepo, actionRepo, outboxRepo, transactionMgr, cleanup, err := buildRepositories(cfg)
	if err != nil {
		slog.Error("failed to initialize store", slog.String("error", err.Error()))
		os.Exit(exitCode)
	}
	defer cleanup()

	handler := &server.Handler{
		Users:       service.NewUserServiceImpl(userRepo),
		Actions:     service.NewActionServiceImpl(userRepo, actionRepo, outboxRepo, transactionMgr),
		Metrics:     service.NewMetricsServiceImpl(userRepo, actionRepo),
		Leaderboard: service.NewLeaderboardServiceImpl(actionRepo),
	}

	router := server.NewRouter(handler, prometheus.NewRegistry())

	slog.Info("starting API server",
		slog.String("service", "api"),
		slog.String("port", cfg.Port),
		slog.String("store", cfg.StoreDriver),
	)

	if err := router.Run(":" + cfg.Port); err != nil {
		slog.Error("failed to start server", slog.String("error", err.Error()))
	}
}

// buildRepositories selects the store implementation at process start:
// PostgreSQL by default, the in-process store when configured.
func buildRepositories(cfg *config.Config) (
	repository.UserRepository,
	repository.ActionRepository,
	repository.OutboxRepository,
	repository.TransactionManager,
	func(),
	error,
) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		mem := repository.NewMemoryStore()
		return mem, mem, mem, mem, func() {}, nil
	}

	dbPool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}

	return repository.NewUserRepositoryImpl(dbPool),
		repository.NewActionRepositoryImpl(dbPool),
		repository.NewOutboxRepositoryImpl(dbPool),
		repository.NewTransactionManagerImpl(dbPool),
		dbPool.Close,
		nil
}
