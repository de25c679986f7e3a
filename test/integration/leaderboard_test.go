//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidebet/platform/test/integration/testutil"
)

type leaderboardRow struct {
	Rank        int       `json:"rank"`
	MemberID    uuid.UUID `json:"member_id"`
	DisplayName string    `json:"display_name"`
	Balance     int64     `json:"balance"`
	Titles      []string  `json:"titles"`
}

func TestLeaderboard_RanksByBalanceAfterSettlement(t *testing.T) {
	env := testutil.NewTestEnv(t)
	tokens, ids, leagueID := threeMemberLeague(env)

	eventID := env.CreateCustomEvent(tokens[0])
	betID := env.CreateMoneylineBet(tokens[0], eventID, leagueID, 1_000, []string{"yes", "no"})

	for i, sel := range []string{"yes", "no", "no"} {
		resp := env.PlaceWager(tokens[i], betID, sel)
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	res := env.POST("/bets/"+betID.String()+"/resolve",
		map[string]interface{}{"winner": "yes", "is_finished": true}, tokens[0])
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	resp := env.GET("/leagues/"+leagueID.String()+"/leaderboard", tokens[0])
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rows []leaderboardRow
	testutil.Decode(t, resp, &rows)
	require.Len(t, rows, 3)

	// alice took the whole pot: 100,000 - 1,000 + 3,000.
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, ids[0], rows[0].MemberID)
	assert.Equal(t, int64(102_000), rows[0].Balance)
	assert.Contains(t, rows[0].Titles, "king")

	// bob and carol are tied at 99,000 with competition ranking.
	assert.Equal(t, 2, rows[1].Rank)
	assert.Equal(t, 2, rows[2].Rank)
}

func TestLeaderboard_ServedFromCache(t *testing.T) {
	env := testutil.NewTestEnv(t)
	tokens, _, leagueID := threeMemberLeague(env)

	first := env.GET("/leagues/"+leagueID.String()+"/leaderboard", tokens[0])
	var before []leaderboardRow
	testutil.Decode(t, first, &before)
	require.Len(t, before, 3)

	// A direct balance update is invisible until the projection expires
	// or is invalidated.
	_, err := env.Pool.Exec(t.Context(),
		"UPDATE members SET balance = balance + 500 WHERE id = $1", before[0].MemberID)
	require.NoError(t, err)

	second := env.GET("/leagues/"+leagueID.String()+"/leaderboard", tokens[0])
	var after []leaderboardRow
	testutil.Decode(t, second, &after)
	assert.Equal(t, before[0].Balance, after[0].Balance)
}

func TestLeaderboard_NonexistentLeague(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.SignupMember("solo@test.com", "solo")

	resp := env.GET("/leagues/"+uuid.NewString()+"/leaderboard", token)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
