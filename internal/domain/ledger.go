package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EntryType enumerates all ledger entry types.
type EntryType string

const (
	EntryWagerStake EntryType = "wager_stake"
	EntryPayout     EntryType = "payout"
	EntryPotReturn  EntryType = "pot_return"
	EntryAdjustment EntryType = "adjustment"
	EntrySeed       EntryType = "seed"
)

// LedgerEntry represents a ledger_entries row (append-only). BalanceAfter
// is the member's balance snapshot taken after the entry was applied.
type LedgerEntry struct {
	ID           uuid.UUID       `json:"id"`
	MemberID     uuid.UUID       `json:"member_id"`
	Type         EntryType       `json:"type"`
	Amount       int64           `json:"amount"`
	BalanceAfter int64           `json:"balance_after"`
	BetID        *uuid.UUID      `json:"bet_id,omitempty"`
	WagerID      *uuid.UUID      `json:"wager_id,omitempty"`
	Metadata     json.RawMessage `json:"metadata"`
	CreatedAt    time.Time       `json:"created_at"`
}

// PostEntryParams is the input to the atomic PostEntry operation.
type PostEntryParams struct {
	MemberID uuid.UUID
	Type     EntryType
	// Delta is the signed balance change: negative for stakes, positive
	// for payouts.
	Delta    int64
	BetID    *uuid.UUID
	WagerID  *uuid.UUID
	Metadata json.RawMessage
}
