package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckEventResolved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/results", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "barca vs madrid", req["query"])

		json.NewEncoder(w).Encode(map[string]string{"state": "DONE", "output": "barca"})
	}))
	defer srv.Close()

	client := NewResultFeedClient(srv.URL, "test-key")
	res, err := client.CheckEvent(context.Background(), uuid.New(), "barca vs madrid")
	require.NoError(t, err)
	assert.True(t, res.Resolved)
	assert.Equal(t, "barca", res.Output)
}

func TestCheckEventPending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"state": "DONE", "output": "Game not yet resolved"})
	}))
	defer srv.Close()

	client := NewResultFeedClient(srv.URL, "")
	res, err := client.CheckEvent(context.Background(), uuid.New(), "anything")
	require.NoError(t, err)
	assert.False(t, res.Resolved)
}

func TestCheckEventServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewResultFeedClient(srv.URL, "")
	_, err := client.CheckEvent(context.Background(), uuid.New(), "anything")
	assert.Error(t, err)
}

func TestParseFeedResult(t *testing.T) {
	tests := []struct {
		name     string
		resp     feedResponse
		resolved bool
	}{
		{"winner string", feedResponse{State: "DONE", Output: "home"}, true},
		{"empty output", feedResponse{State: "DONE", Output: ""}, false},
		{"whitespace only", feedResponse{State: "DONE", Output: "   "}, false},
		{"not yet resolved", feedResponse{State: "DONE", Output: "Not Yet Resolved"}, false},
		{"not resolved phrasing", feedResponse{State: "DONE", Output: "game not resolved"}, false},
		{"running state", feedResponse{State: "RUNNING", Output: "partial"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.resolved, parseFeedResult(tt.resp).Resolved)
		})
	}
}
