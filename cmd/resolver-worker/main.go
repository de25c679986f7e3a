package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sidebet/platform/internal/app"
	"github.com/sidebet/platform/internal/auth"
	"github.com/sidebet/platform/internal/infra"
	"github.com/sidebet/platform/internal/projection"
	"github.com/sidebet/platform/internal/provider"
	"github.com/sidebet/platform/internal/service"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("resolver worker failed", "error", err)
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
	logger.Info("resolver-worker connected to postgres")

	svcs := app.BuildServices(app.Deps{
		Pool:   pool,
		Cache:  projection.NewInMemoryStore(),
		JWTMgr: auth.NewJWTManager(cfg.JWTSecret, cfg.JWTMemberExpiry),
		Cfg:    cfg,
		Logger: logger,
	})

	feed := provider.NewResultFeedClient(cfg.ResultFeedURL, cfg.ResultFeedAPIKey)
	worker := service.NewResolverWorker(pool, svcs.Bets, svcs.Events, svcs.Betting, feed,
		cfg.ResultFeedPollInterval, logger)

	worker.Run(ctx)
	return nil
}
