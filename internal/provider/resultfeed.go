package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ResultFeedClient queries the external sports result feed. The feed
// answers a free-text query about a game with either a winner string or a
// not-yet-resolved marker.
type ResultFeedClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewResultFeedClient creates a result feed client.
func NewResultFeedClient(baseURL, apiKey string) *ResultFeedClient {
	return &ResultFeedClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// FeedResult is one answer from the feed.
type FeedResult struct {
	// Resolved is false while the game has no final result yet.
	Resolved bool
	// Output is the feed's winner string once resolved.
	Output string
}

type feedRequest struct {
	Query   string `json:"query"`
	EventID string `json:"event_id,omitempty"`
}

type feedResponse struct {
	State  string `json:"state"`
	Output string `json:"output"`
}

// CheckEvent asks the feed for the result of one event. The description is
// a human-readable game label ("home vs away, date"); the feed matches it
// against finished games.
func (c *ResultFeedClient) CheckEvent(ctx context.Context, eventID uuid.UUID, description string) (*FeedResult, error) {
	body, _ := json.Marshal(feedRequest{Query: description, EventID: eventID.String()})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/results", strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call result feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("result feed returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var fr feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return nil, fmt.Errorf("decode feed response: %w", err)
	}

	return parseFeedResult(fr), nil
}

// parseFeedResult normalizes the feed's answer. Anything that reads as
// "not resolved" or an empty output means the game is still pending.
func parseFeedResult(fr feedResponse) *FeedResult {
	out := strings.TrimSpace(fr.Output)
	lower := strings.ToLower(out)
	if out == "" || strings.Contains(lower, "not yet resolved") || strings.Contains(lower, "not resolved") {
		return &FeedResult{Resolved: false}
	}
	if fr.State != "" && fr.State != "DONE" {
		return &FeedResult{Resolved: false}
	}
	return &FeedResult{Resolved: true, Output: out}
}
