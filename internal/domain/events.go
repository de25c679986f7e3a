package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types.
type DomainEventType string

const (
	EventMemberCreated DomainEventType = "sidebet.member.created"
	EventBetCreated    DomainEventType = "sidebet.bet.created"
	EventBetClosed     DomainEventType = "sidebet.bet.closed"
	EventBetDisputed   DomainEventType = "sidebet.bet.disputed"
	EventBetResolved   DomainEventType = "sidebet.bet.resolved"
	EventWagerPlaced   DomainEventType = "sidebet.wager.placed"
	EventWagerSettled  DomainEventType = "sidebet.wager.settled"
	EventEntryPosted   DomainEventType = "sidebet.ledger.entry.posted"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateMember AggregateType = "member"
	AggregateBet    AggregateType = "bet"
	AggregateWager  AggregateType = "wager"
	AggregateLedger AggregateType = "ledger"
)

// OutboxDraft is the payload written to the event_outbox table, inside the
// same transaction as the state change it describes.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateType AggregateType   `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     DomainEventType `json:"event_type"`
	PartitionKey  string          `json:"partition_key"`
	Headers       json.RawMessage `json:"headers"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// NewEntryPostedEvent creates the standard ledger event for a posted entry.
func NewEntryPostedEvent(entry *LedgerEntry) OutboxDraft {
	payload, _ := json.Marshal(entry)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateLedger,
		AggregateID:   entry.MemberID.String(),
		EventType:     EventEntryPosted,
		PartitionKey:  entry.MemberID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewMemberCreatedEvent announces a new member and their seeded balance.
func NewMemberCreatedEvent(m *Member) OutboxDraft {
	payload, _ := json.Marshal(m)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateMember,
		AggregateID:   m.ID.String(),
		EventType:     EventMemberCreated,
		PartitionKey:  m.ID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewBetResolvedEvent announces a completed settlement.
func NewBetResolvedEvent(bet *Bet, pot, unclaimed int64) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"bet_id":    bet.ID.String(),
		"mode":      bet.Mode,
		"winner":    bet.Winner,
		"pot":       pot,
		"unclaimed": unclaimed,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateBet,
		AggregateID:   bet.ID.String(),
		EventType:     EventBetResolved,
		PartitionKey:  bet.ID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewBetLifecycleEvent announces a non-settling status change (closed or
// disputed).
func NewBetLifecycleEvent(bet *Bet, evtType DomainEventType) OutboxDraft {
	payload, _ := json.Marshal(map[string]string{
		"bet_id": bet.ID.String(),
		"status": string(bet.Status),
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateBet,
		AggregateID:   bet.ID.String(),
		EventType:     evtType,
		PartitionKey:  bet.ID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewWagerSettledEvent announces one wager's terminal status and payout.
func NewWagerSettledEvent(w *Wager) OutboxDraft {
	payload, _ := json.Marshal(w)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateWager,
		AggregateID:   w.ID.String(),
		EventType:     EventWagerSettled,
		PartitionKey:  w.BetID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewWagerPlacedEvent announces a newly placed wager.
func NewWagerPlacedEvent(w *Wager) OutboxDraft {
	payload, _ := json.Marshal(w)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateWager,
		AggregateID:   w.ID.String(),
		EventType:     EventWagerPlaced,
		PartitionKey:  w.BetID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}
