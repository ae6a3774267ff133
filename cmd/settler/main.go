package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/oddsward/platform/internal/infra"
	"github.com/oddsward/platform/internal/repository"
	"github.com/oddsward/platform/internal/service"
)

// The settler runs the settlement sweep on an interval, independently of
// the API so a slow sweep never blocks request handling.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("settler failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to postgres")

	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaSettlementTopic, cfg.KafkaEnabled, logger)
	defer producer.Close()

	settlementSvc := service.NewSettlementService(
		pool,
		repository.NewUserRepository(),
		repository.NewWagerRepository(),
		repository.NewOutcomeRepository(),
		producer,
		logger,
		cfg.SettlerWorkers,
		cfg.SettlerBatchSize,
	)

	logger.Info("settler starting", "interval", cfg.SettlerInterval, "workers", cfg.SettlerWorkers)
	settlementSvc.Run(ctx, cfg.SettlerInterval)

	logger.Info("settler stopped")
	return nil
}
