package domain

import (
	"time"

	"github.com/google/uuid"
)

// WagerStatus tracks a wager's single lifecycle transition.
type WagerStatus string

const (
	WagerPending WagerStatus = "pending"
	WagerWon     WagerStatus = "won"
	WagerLost    WagerStatus = "lost"
)

// Wager represents a wagers row. Stake is fixed at creation and must equal
// the parent bet's stake. Status transitions exactly once,
// pending -> won|lost, triggered solely by settlement of the parent bet;
// Payout is set in that same transition.
type Wager struct {
	ID        uuid.UUID   `json:"id"`
	BetID     uuid.UUID   `json:"bet_id"`
	MemberID  uuid.UUID   `json:"member_id"`
	Selection string      `json:"selection"`
	Stake     int64       `json:"stake"`
	Status    WagerStatus `json:"status"`
	Payout    *int64      `json:"payout,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	SettledAt *time.Time  `json:"settled_at,omitempty"`
}

// PnL returns payout minus stake for a settled wager, zero otherwise.
func (w *Wager) PnL() int64 {
	if w.Payout == nil {
		return 0
	}
	return *w.Payout - w.Stake
}
