//go:build integration

package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TruncateAll wipes every application table between tests. Keeps the
// schema_migrations bookkeeping intact.
func TruncateAll(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := pool.Exec(ctx, `
		TRUNCATE event_outbox, ledger_entries, member_stats, wagers, bets,
			events, league_members, leagues, login_attempts, auth_users,
			members CASCADE`)
	if err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
