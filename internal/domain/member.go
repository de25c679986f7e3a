package domain

import (
	"time"

	"github.com/google/uuid"
)

// Member represents a members row. Balance is integer cents (numeric(15,0));
// it is mutated only through the ledger engine, never directly.
type Member struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	Balance     int64     `json:"balance"`
	LeagueID    *uuid.UUID `json:"league_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AuthUser holds credentials from auth_users.
type AuthUser struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MemberStats is the running betting record for one member, updated inside
// the settlement transaction. A zero-stake wager never counts toward stats.
type MemberStats struct {
	MemberID     uuid.UUID `json:"member_id"`
	TotalWins    int       `json:"total_wins"`
	TotalLosses  int       `json:"total_losses"`
	PnL          int64     `json:"pnl"`
	GreatestWin  int64     `json:"greatest_win"`
	GreatestLoss int64     `json:"greatest_loss"`
	WinStreak    int       `json:"win_streak"`
	TotalWagers  int       `json:"total_wagers"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ApplyWagerResult folds one settled wager into the stats.
// pnl = payout - stake; the streak resets on a loss.
func (s *MemberStats) ApplyWagerResult(stake, pnl int64, won bool) {
	if stake <= 0 {
		return
	}
	s.TotalWagers++
	s.PnL += pnl
	if pnl > s.GreatestWin {
		s.GreatestWin = pnl
	}
	if pnl < s.GreatestLoss {
		s.GreatestLoss = pnl
	}
	if won {
		s.TotalWins++
		s.WinStreak++
	} else {
		s.TotalLosses++
		s.WinStreak = 0
	}
}
