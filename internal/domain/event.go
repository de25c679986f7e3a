package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventCategory distinguishes feed-driven sports events from custom ones.
type EventCategory string

const (
	EventSports EventCategory = "sports"
	EventCustom EventCategory = "custom"
)

// EventStatus tracks an event's progress in the external feed.
type EventStatus string

const (
	EventUpcoming EventStatus = "upcoming"
	EventLive     EventStatus = "live"
	EventFinished EventStatus = "finished"
)

// Event represents an events row. Events come from the external result feed
// and are read-only to the settlement core.
type Event struct {
	ID        uuid.UUID     `json:"id"`
	Category  EventCategory `json:"category"`
	League    *string       `json:"league,omitempty"`
	HomeTeam  *string       `json:"home_team,omitempty"`
	AwayTeam  *string       `json:"away_team,omitempty"`
	Status    EventStatus   `json:"status"`
	Result    *string       `json:"result,omitempty"`
	StartTime time.Time     `json:"start_time"`
	CreatedAt time.Time     `json:"created_at"`
}
