package domain

import (
	"time"

	"github.com/google/uuid"
)

// League groups members and bets for leaderboard scoping. Membership does
// not affect settlement math, only visibility and who the commissioner is.
type League struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	CommissionerID uuid.UUID `json:"commissioner_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// LeagueMember is one row of the league membership table.
type LeagueMember struct {
	LeagueID uuid.UUID `json:"league_id"`
	MemberID uuid.UUID `json:"member_id"`
	JoinedAt time.Time `json:"joined_at"`
}

// LeaderboardRow is one ranked entry of a league leaderboard.
type LeaderboardRow struct {
	Rank        int          `json:"rank"`
	MemberID    uuid.UUID    `json:"member_id"`
	DisplayName string       `json:"display_name"`
	Balance     int64        `json:"balance"`
	Stats       *MemberStats `json:"stats,omitempty"`
	Titles      []string     `json:"titles,omitempty"`
}
