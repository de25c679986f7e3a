//go:build integration

// Package testutil bootstraps a real Postgres database and an in-process
// HTTP server for the integration suite.
package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sidebet/platform/internal/app"
	"github.com/sidebet/platform/internal/auth"
	"github.com/sidebet/platform/internal/infra"
	"github.com/sidebet/platform/internal/projection"
)

const (
	TestJWTSecret = "integration-test-secret-at-least-32-chars"
	TestDBHost    = "localhost"
	TestDBPort    = 5435
	TestDBUser    = "sidebet"
	TestDBPass    = "sidebet"
	TestDBName    = "sidebet_test"
)

// TestEnv holds all resources for an integration test.
type TestEnv struct {
	Server *httptest.Server
	Pool   *pgxpool.Pool
	JWTMgr *auth.JWTManager
	t      *testing.T
}

var (
	sharedPool *pgxpool.Pool
	poolOnce   sync.Once
	poolErr    error
)

func testDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		TestDBUser, TestDBPass, TestDBHost, TestDBPort, TestDBName)
}

func bootstrapDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		TestDBUser, TestDBPass, TestDBHost, TestDBPort, TestDBUser)
}

func ensureTestDB() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bPool, err := pgxpool.New(ctx, bootstrapDSN())
	if err != nil {
		return fmt.Errorf("connect bootstrap db: %w", err)
	}
	defer bPool.Close()

	var exists bool
	err = bPool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", TestDBName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check db exists: %w", err)
	}
	if !exists {
		if _, err := bPool.Exec(ctx, "CREATE DATABASE "+TestDBName); err != nil {
			return fmt.Errorf("create test db: %w", err)
		}
	}
	return nil
}

func getSharedPool() (*pgxpool.Pool, error) {
	poolOnce.Do(func() {
		if poolErr = ensureTestDB(); poolErr != nil {
			return
		}

		quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
		if poolErr = infra.RunMigrations(testDSN(), quiet); poolErr != nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		sharedPool, poolErr = pgxpool.New(ctx, testDSN())
	})
	return sharedPool, poolErr
}

// NewTestEnv returns a fresh environment with a clean database and a
// running in-process server. Calls t.Fatal if the database is not up.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	pool, err := getSharedPool()
	if err != nil {
		t.Fatalf("integration database unavailable on port %d: %v", TestDBPort, err)
	}

	TruncateAll(t, pool)

	cfg := &infra.Config{
		JWTSecret:       TestJWTSecret,
		JWTMemberExpiry: time.Hour,
		MaxStake:        2_500,
		DailyStakeMax:   10_000,
		WagerRateLimit:  1_000,
		PotPolicy:       "hold",
		LeaderboardTTL:  time.Minute,
	}

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTMemberExpiry)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := app.NewRouter(app.Deps{
		Pool:   pool,
		Cache:  projection.NewInMemoryStore(),
		JWTMgr: jwtMgr,
		Cfg:    cfg,
		Logger: logger,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &TestEnv{Server: server, Pool: pool, JWTMgr: jwtMgr, t: t}
}
