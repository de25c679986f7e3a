package domain

import (
	"time"

	"github.com/google/uuid"
)

// BetType determines how wager selections are interpreted at settlement.
type BetType string

const (
	// BetMoneyline is a two-option pick.
	BetMoneyline BetType = "moneyline"
	// BetNWayMoneyline is a pick among three or more options.
	BetNWayMoneyline BetType = "n_way_moneyline"
	// BetTargetProximity pays the wager(s) closest to a numeric outcome.
	// Options hold numeric target strings.
	BetTargetProximity BetType = "target_proximity"
)

// BetStatus tracks the bet lifecycle.
type BetStatus string

const (
	BetOpen     BetStatus = "open"
	BetClosed   BetStatus = "closed"
	BetResolved BetStatus = "resolved"
	BetDisputed BetStatus = "disputed"
)

// ResolutionMode records how a bet's outcome was determined.
type ResolutionMode string

const (
	ResolutionAutomatic ResolutionMode = "automatic"
	ResolutionManual    ResolutionMode = "manual"
	// ResolutionCommissionerOverride uses the commissioner's own wager as
	// the oracle signal for hit/miss determination.
	ResolutionCommissionerOverride ResolutionMode = "commissioner_override"
)

// Bet represents a bets row. Winner, DidHit and IsFinished are populated
// exactly once, when the status transitions to resolved; after that the
// resolved fields are immutable.
type Bet struct {
	ID         uuid.UUID       `json:"id"`
	CreatorID  uuid.UUID       `json:"creator_id"`
	EventID    uuid.UUID       `json:"event_id"`
	LeagueID   *uuid.UUID      `json:"league_id,omitempty"`
	Type       BetType         `json:"type"`
	Title      string          `json:"title"`
	Options    []string        `json:"options"`
	Stake      int64           `json:"stake"`
	Status     BetStatus       `json:"status"`
	Mode       *ResolutionMode `json:"resolution_mode,omitempty"`
	Winner     *string         `json:"winner,omitempty"`
	DidHit     *bool           `json:"did_hit,omitempty"`
	IsFinished bool            `json:"is_finished"`
	ResolvedBy *uuid.UUID      `json:"resolved_by,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	ResolvedAt *time.Time      `json:"resolved_at,omitempty"`
}

// Resolvable reports whether the bet can still transition to resolved.
func (b *Bet) Resolvable() bool {
	return b.Status == BetOpen || b.Status == BetClosed
}

// IsMoneyline reports whether selections are option labels.
func (b *Bet) IsMoneyline() bool {
	return b.Type == BetMoneyline || b.Type == BetNWayMoneyline
}

// HasOption reports whether label is one of the bet's options.
func (b *Bet) HasOption(label string) bool {
	for _, o := range b.Options {
		if o == label {
			return true
		}
	}
	return false
}

// OtherOption returns the single option that is not the given one.
// Only meaningful for two-option bets; ok is false otherwise.
func (b *Bet) OtherOption(label string) (string, bool) {
	if len(b.Options) != 2 {
		return "", false
	}
	switch label {
	case b.Options[0]:
		return b.Options[1], true
	case b.Options[1]:
		return b.Options[0], true
	}
	return "", false
}
