//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidebet/platform/internal/ledger"
	"github.com/sidebet/platform/internal/repository"
	"github.com/sidebet/platform/test/integration/testutil"
)

// threeMemberLeague signs up alice, bob and carol, puts them in one
// league (alice is commissioner) and returns their tokens and ids.
func threeMemberLeague(env *testutil.TestEnv) (tokens [3]string, ids [3]uuid.UUID, leagueID uuid.UUID) {
	tokens[0], ids[0] = env.SignupMember("alice@test.com", "alice")
	tokens[1], ids[1] = env.SignupMember("bob@test.com", "bob")
	tokens[2], ids[2] = env.SignupMember("carol@test.com", "carol")

	leagueID = env.CreateLeague(tokens[0], "the office")
	env.JoinLeague(tokens[1], leagueID)
	env.JoinLeague(tokens[2], leagueID)
	return tokens, ids, leagueID
}

func TestBettingFlow_MoneylineSettlement(t *testing.T) {
	env := testutil.NewTestEnv(t)
	tokens, ids, leagueID := threeMemberLeague(env)

	eventID := env.CreateCustomEvent(tokens[0])
	betID := env.CreateMoneylineBet(tokens[0], eventID, leagueID, 1_000, []string{"yes", "no"})

	// Stakes are debited at wager time.
	for i, sel := range []string{"yes", "no", "yes"} {
		resp := env.PlaceWager(tokens[i], betID, sel)
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, int64(99_000), env.Balance(ids[i]))
	}

	// One wager per member per bet.
	dup := env.PlaceWager(tokens[0], betID, "no")
	dup.Body.Close()
	assert.Equal(t, http.StatusConflict, dup.StatusCode)

	// Commissioner resolves: pot 3000 split across the two yes-pickers.
	resp := env.POST("/bets/"+betID.String()+"/resolve", map[string]interface{}{
		"winner":      "yes",
		"is_finished": true,
	}, tokens[0])
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Winner    *string `json:"winner"`
		Pot       int64   `json:"pot"`
		Unclaimed int64   `json:"unclaimed"`
	}
	testutil.Decode(t, resp, &result)
	require.NotNil(t, result.Winner)
	assert.Equal(t, "yes", *result.Winner)
	assert.Equal(t, int64(3_000), result.Pot)
	assert.Equal(t, int64(0), result.Unclaimed)

	// payout = stake * pot / winSum = 1000 * 3000 / 2000 = 1500
	assert.Equal(t, int64(100_500), env.Balance(ids[0]))
	assert.Equal(t, int64(99_000), env.Balance(ids[1]))
	assert.Equal(t, int64(100_500), env.Balance(ids[2]))

	// Stats recorded inside the settlement transaction.
	var wins, losses int
	require.NoError(t, env.Pool.QueryRow(t.Context(),
		"SELECT wins, losses FROM member_stats WHERE member_id = $1", ids[1]).Scan(&wins, &losses))
	assert.Equal(t, 0, wins)
	assert.Equal(t, 1, losses)

	// Replaying each ledger from zero must land back on the member rows.
	replayer := ledger.NewReplayer(env.Pool, repository.NewMemberRepository(), repository.NewLedgerRepository())
	for _, id := range ids {
		report, err := replayer.VerifyMember(t.Context(), id)
		require.NoError(t, err)
		assert.True(t, report.AllPassed, "ledger drift for %s: %+v", id, report.Invariants)
	}
}

func TestBettingFlow_ConcurrentResolves(t *testing.T) {
	env := testutil.NewTestEnv(t)
	tokens, ids, leagueID := threeMemberLeague(env)

	eventID := env.CreateCustomEvent(tokens[0])
	betID := env.CreateMoneylineBet(tokens[0], eventID, leagueID, 1_000, []string{"yes", "no"})
	for i, sel := range []string{"yes", "no"} {
		resp := env.PlaceWager(tokens[i], betID, sel)
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	body, err := json.Marshal(map[string]interface{}{"winner": "yes", "is_finished": true})
	require.NoError(t, err)

	// Two racing resolves: the status gate lets exactly one through.
	start := make(chan struct{})
	codes := make(chan int, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			req, err := http.NewRequest(http.MethodPost,
				env.Server.URL+"/bets/"+betID.String()+"/resolve", bytes.NewReader(body))
			if err != nil {
				codes <- 0
				return
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+tokens[0])
			resp, err := env.Server.Client().Do(req)
			if err != nil {
				codes <- 0
				return
			}
			resp.Body.Close()
			codes <- resp.StatusCode
		}()
	}
	close(start)
	wg.Wait()
	close(codes)

	var got []int
	for c := range codes {
		got = append(got, c)
	}
	sort.Ints(got)
	assert.Equal(t, []int{http.StatusOK, http.StatusConflict}, got)

	// The winner was paid exactly once.
	assert.Equal(t, int64(101_000), env.Balance(ids[0]))
	assert.Equal(t, int64(99_000), env.Balance(ids[1]))
}

func TestBettingFlow_ResolveIsIdempotent(t *testing.T) {
	env := testutil.NewTestEnv(t)
	tokens, ids, leagueID := threeMemberLeague(env)

	eventID := env.CreateCustomEvent(tokens[0])
	betID := env.CreateMoneylineBet(tokens[0], eventID, leagueID, 1_000, []string{"yes", "no"})

	for i, sel := range []string{"yes", "no"} {
		resp := env.PlaceWager(tokens[i], betID, sel)
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	first := env.POST("/bets/"+betID.String()+"/resolve",
		map[string]interface{}{"winner": "yes", "is_finished": true}, tokens[0])
	first.Body.Close()
	require.Equal(t, http.StatusOK, first.StatusCode)

	second := env.POST("/bets/"+betID.String()+"/resolve",
		map[string]interface{}{"winner": "no", "is_finished": true}, tokens[0])
	second.Body.Close()
	assert.Equal(t, http.StatusConflict, second.StatusCode)

	// The losing replay must not move money.
	assert.Equal(t, int64(101_000), env.Balance(ids[0]))
	assert.Equal(t, int64(99_000), env.Balance(ids[1]))
}

func TestBettingFlow_RemainderStaysUnclaimed(t *testing.T) {
	env := testutil.NewTestEnv(t)
	tokens, ids, leagueID := threeMemberLeague(env)
	token4, id4 := env.SignupMember("dave@test.com", "dave")
	env.JoinLeague(token4, leagueID)

	eventID := env.CreateCustomEvent(tokens[0])
	betID := env.CreateMoneylineBet(tokens[0], eventID, leagueID, 1_000, []string{"yes", "no"})

	// Three yes, one no: pot 4000 over winSum 3000 leaves a remainder.
	for i, sel := range []string{"yes", "yes", "yes"} {
		resp := env.PlaceWager(tokens[i], betID, sel)
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
	resp := env.PlaceWager(token4, betID, "no")
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	res := env.POST("/bets/"+betID.String()+"/resolve",
		map[string]interface{}{"winner": "yes", "is_finished": true}, tokens[0])
	var result struct {
		Pot       int64 `json:"pot"`
		Unclaimed int64 `json:"unclaimed"`
	}
	testutil.Decode(t, res, &result)

	// payout = 1000 * 4000 / 3000 = 1333, 3 * 1333 = 3999, 1 unclaimed
	assert.Equal(t, int64(4_000), result.Pot)
	assert.Equal(t, int64(1), result.Unclaimed)
	for _, id := range ids {
		assert.Equal(t, int64(100_333), env.Balance(id))
	}
	assert.Equal(t, int64(99_000), env.Balance(id4))
}

func TestBettingFlow_ClosedBetRejectsWagers(t *testing.T) {
	env := testutil.NewTestEnv(t)
	tokens, _, leagueID := threeMemberLeague(env)

	eventID := env.CreateCustomEvent(tokens[0])
	betID := env.CreateMoneylineBet(tokens[0], eventID, leagueID, 1_000, []string{"yes", "no"})

	resp := env.PlaceWager(tokens[0], betID, "yes")
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	closeResp := env.POST("/bets/"+betID.String()+"/close", nil, tokens[0])
	closeResp.Body.Close()
	require.Equal(t, http.StatusOK, closeResp.StatusCode)

	// The close event commits with the status change, not after it.
	var events int
	require.NoError(t, env.Pool.QueryRow(t.Context(),
		"SELECT COUNT(*) FROM event_outbox WHERE event_type = 'sidebet.bet.closed' AND aggregate_id = $1",
		betID.String()).Scan(&events))
	assert.Equal(t, 1, events)

	late := env.PlaceWager(tokens[1], betID, "no")
	late.Body.Close()
	assert.Equal(t, http.StatusConflict, late.StatusCode)
}

func TestBettingFlow_DisputeFreezesBet(t *testing.T) {
	env := testutil.NewTestEnv(t)
	tokens, _, leagueID := threeMemberLeague(env)

	eventID := env.CreateCustomEvent(tokens[0])
	betID := env.CreateMoneylineBet(tokens[0], eventID, leagueID, 1_000, []string{"yes", "no"})

	for i, sel := range []string{"yes", "no"} {
		resp := env.PlaceWager(tokens[i], betID, sel)
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	// Bob holds a wager, so he may dispute.
	resp := env.POST("/bets/"+betID.String()+"/dispute", nil, tokens[1])
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status string
	require.NoError(t, env.Pool.QueryRow(t.Context(),
		"SELECT status FROM bets WHERE id = $1", betID).Scan(&status))
	assert.Equal(t, "disputed", status)

	var events int
	require.NoError(t, env.Pool.QueryRow(t.Context(),
		"SELECT COUNT(*) FROM event_outbox WHERE event_type = 'sidebet.bet.disputed' AND aggregate_id = $1",
		betID.String()).Scan(&events))
	assert.Equal(t, 1, events)
}

func TestBettingFlow_DailyStakeCap(t *testing.T) {
	env := testutil.NewTestEnv(t)
	tokens, _, leagueID := threeMemberLeague(env)

	eventID := env.CreateCustomEvent(tokens[0])

	// Four max-stake wagers hit the 10,000 daily cap; the fifth breaches.
	for i := 0; i < 4; i++ {
		betID := env.CreateMoneylineBet(tokens[0], eventID, leagueID, 2_500, []string{"yes", "no"})
		resp := env.PlaceWager(tokens[1], betID, "yes")
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	betID := env.CreateMoneylineBet(tokens[0], eventID, leagueID, 2_500, []string{"yes", "no"})
	resp := env.PlaceWager(tokens[1], betID, "yes")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestBettingFlow_IdempotencyKeyDeduplicates(t *testing.T) {
	env := testutil.NewTestEnv(t)
	tokens, _, leagueID := threeMemberLeague(env)

	eventID := env.CreateCustomEvent(tokens[0])

	body := map[string]interface{}{
		"event_id":  eventID,
		"league_id": leagueID,
		"type":      "moneyline",
		"title":     "double submit",
		"options":   []string{"yes", "no"},
		"stake":     1_000,
	}

	req1 := env.POSTWithHeader("/bets", body, tokens[0], "Idempotency-Key", "create-bet-1")
	req1.Body.Close()
	require.Equal(t, http.StatusCreated, req1.StatusCode)

	req2 := env.POSTWithHeader("/bets", body, tokens[0], "Idempotency-Key", "create-bet-1")
	req2.Body.Close()
	assert.Equal(t, http.StatusConflict, req2.StatusCode)
}
