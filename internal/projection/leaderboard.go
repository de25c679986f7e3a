package projection

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sidebet/platform/internal/domain"
)

func leaderboardKey(leagueID uuid.UUID) string {
	return fmt.Sprintf("projection:leaderboard:%s", leagueID)
}

// UpdateLeaderboard caches a league's standings.
func UpdateLeaderboard(ctx context.Context, store Store, leagueID uuid.UUID, rows []domain.LeaderboardRow, ttl time.Duration) error {
	return SetJSON(ctx, store, leaderboardKey(leagueID), rows, ttl)
}

// GetLeaderboard retrieves a league's cached standings. Returns
// ErrNotFound when the projection is absent or stale.
func GetLeaderboard(ctx context.Context, store Store, leagueID uuid.UUID) ([]domain.LeaderboardRow, error) {
	var rows []domain.LeaderboardRow
	if err := GetJSON(ctx, store, leaderboardKey(leagueID), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// InvalidateLeaderboard removes a league's cached standings, forcing the
// next read to rebuild from the database.
func InvalidateLeaderboard(ctx context.Context, store Store, leagueID uuid.UUID) error {
	return store.Delete(ctx, leaderboardKey(leagueID))
}
