package leaderboard

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidebet/platform/internal/domain"
)

func TestBuildStandingsRanksAndTies(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	c := uuid.New()

	members := []domain.Member{
		{ID: a, DisplayName: "alice", Balance: 5000},
		{ID: b, DisplayName: "bob", Balance: 5000},
		{ID: c, DisplayName: "charlie", Balance: 1000},
	}
	stats := []domain.MemberStats{
		{MemberID: a, TotalWins: 3, TotalWagers: 5},
		{MemberID: c, TotalWins: 1, TotalWagers: 2},
	}

	rows := BuildStandings(members, stats)
	require.Len(t, rows, 3)

	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, 1, rows[1].Rank)
	assert.Equal(t, 3, rows[2].Rank)

	assert.Equal(t, "alice", rows[0].DisplayName)
	require.NotNil(t, rows[0].Stats)
	assert.Equal(t, 3, rows[0].Stats.TotalWins)

	// Bob has no stats row yet.
	assert.Nil(t, rows[1].Stats)
	assert.Empty(t, rows[1].Titles)

	assert.Contains(t, rows[0].Titles, string(TitleKing))
	assert.Contains(t, rows[2].Titles, string(TitleCoward))
}

func TestBuildStandingsEmpty(t *testing.T) {
	rows := BuildStandings(nil, nil)
	assert.Empty(t, rows)
}
