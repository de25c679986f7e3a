package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sidebet/platform/internal/app"
	"github.com/sidebet/platform/internal/auth"
	"github.com/sidebet/platform/internal/infra"
	"github.com/sidebet/platform/internal/projection"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
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
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to postgres")

	var cache projection.Store
	if rdb, err := infra.NewRedisClient(ctx, cfg); err != nil {
		logger.Warn("redis unavailable, using in-memory leaderboard cache", "error", err)
		cache = projection.NewInMemoryStore()
	} else {
		cache = projection.NewRedisStore(rdb)
	}

	r := app.NewRouter(app.Deps{
		Pool:   pool,
		Cache:  cache,
		JWTMgr: auth.NewJWTManager(cfg.JWTSecret, cfg.JWTMemberExpiry),
		Cfg:    cfg,
		Logger: logger,
	})

	metricsSrv := infra.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return infra.HealthCheck(ctx, pool)
	})
	defer metricsSrv.Shutdown(context.Background())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.APIPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api listening", "port", cfg.APIPort)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
