//go:build integration

package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// POST sends a JSON request, with a Bearer token when token is non-empty.
func (env *TestEnv) POST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(env.t, err)

	req, err := http.NewRequest(http.MethodPost, env.Server.URL+path, bytes.NewReader(raw))
	require.NoError(env.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := env.Server.Client().Do(req)
	require.NoError(env.t, err)
	return resp
}

// POSTWithHeader is POST with one extra request header.
func (env *TestEnv) POSTWithHeader(path string, body interface{}, token, header, value string) *http.Response {
	env.t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(env.t, err)

	req, err := http.NewRequest(http.MethodPost, env.Server.URL+path, bytes.NewReader(raw))
	require.NoError(env.t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(header, value)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := env.Server.Client().Do(req)
	require.NoError(env.t, err)
	return resp
}

// GET sends a request, with a Bearer token when token is non-empty.
func (env *TestEnv) GET(path, token string) *http.Response {
	env.t.Helper()

	req, err := http.NewRequest(http.MethodGet, env.Server.URL+path, nil)
	require.NoError(env.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := env.Server.Client().Do(req)
	require.NoError(env.t, err)
	return resp
}

// Decode reads a JSON response body into dest and closes it.
func Decode(t *testing.T, resp *http.Response, dest interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// SignupMember registers a member and returns (token, memberID).
func (env *TestEnv) SignupMember(email, displayName string) (string, uuid.UUID) {
	env.t.Helper()

	resp := env.POST("/auth/signup", map[string]string{
		"email":        email,
		"password":     "securepass123",
		"display_name": displayName,
	}, "")
	require.Equal(env.t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Token    string    `json:"token"`
		MemberID uuid.UUID `json:"member_id"`
	}
	Decode(env.t, resp, &result)
	return result.Token, result.MemberID
}

// CreateLeague creates a league owned by the token's member.
func (env *TestEnv) CreateLeague(token, name string) uuid.UUID {
	env.t.Helper()

	resp := env.POST("/leagues", map[string]string{"name": name}, token)
	require.Equal(env.t, http.StatusCreated, resp.StatusCode)

	var league struct {
		ID uuid.UUID `json:"id"`
	}
	Decode(env.t, resp, &league)
	return league.ID
}

// JoinLeague adds the token's member to a league.
func (env *TestEnv) JoinLeague(token string, leagueID uuid.UUID) {
	env.t.Helper()

	resp := env.POST("/leagues/"+leagueID.String()+"/join", nil, token)
	defer resp.Body.Close()
	require.Equal(env.t, http.StatusOK, resp.StatusCode)
}

// CreateCustomEvent creates a custom event starting an hour from now.
func (env *TestEnv) CreateCustomEvent(token string) uuid.UUID {
	env.t.Helper()

	resp := env.POST("/events", map[string]interface{}{
		"category":   "custom",
		"start_time": time.Now().Add(time.Hour).Format(time.RFC3339),
	}, token)
	require.Equal(env.t, http.StatusCreated, resp.StatusCode)

	var event struct {
		ID uuid.UUID `json:"id"`
	}
	Decode(env.t, resp, &event)
	return event.ID
}

// CreateMoneylineBet opens a moneyline bet in the given league.
func (env *TestEnv) CreateMoneylineBet(token string, eventID, leagueID uuid.UUID, stake int64, options []string) uuid.UUID {
	env.t.Helper()

	resp := env.POST("/bets", map[string]interface{}{
		"event_id":  eventID,
		"league_id": leagueID,
		"type":      "moneyline",
		"title":     "who takes it",
		"options":   options,
		"stake":     stake,
	}, token)
	require.Equal(env.t, http.StatusCreated, resp.StatusCode)

	var bet struct {
		ID uuid.UUID `json:"id"`
	}
	Decode(env.t, resp, &bet)
	return bet.ID
}

// PlaceWager joins the token's member to a bet.
func (env *TestEnv) PlaceWager(token string, betID uuid.UUID, selection string) *http.Response {
	env.t.Helper()
	return env.POST("/bets/"+betID.String()+"/wagers", map[string]string{"selection": selection}, token)
}

// Balance reads a member's balance straight from the database.
func (env *TestEnv) Balance(memberID uuid.UUID) int64 {
	env.t.Helper()

	var balance int64
	err := env.Pool.QueryRow(env.t.Context(),
		"SELECT balance FROM members WHERE id = $1", memberID).Scan(&balance)
	require.NoError(env.t, err)
	return balance
}
