package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sidebet/platform/internal/domain"
	"github.com/sidebet/platform/internal/repository"
)

// Engine provides the foundational balance operations:
//  1. LockMemberForUpdate, a row-level pessimistic lock
//  2. PostEntry, an atomic balance update + append-only insert + outbox event
//
// Every balance change in the system flows through PostEntry; nothing else
// writes members.balance.
type Engine struct {
	members repository.MemberRepository
	entries repository.LedgerRepository
	outbox  repository.OutboxRepository
}

// NewEngine creates a ledger engine with the given repositories.
func NewEngine(
	members repository.MemberRepository,
	entries repository.LedgerRepository,
	outbox repository.OutboxRepository,
) *Engine {
	return &Engine{
		members: members,
		entries: entries,
		outbox:  outbox,
	}
}

// LockMemberForUpdate acquires a row-level lock and returns the member.
// Must be called within a transaction.
func (e *Engine) LockMemberForUpdate(ctx context.Context, tx pgx.Tx, memberID uuid.UUID) (*domain.Member, error) {
	member, err := e.members.LockForUpdate(ctx, tx, memberID)
	if err != nil {
		return nil, fmt.Errorf("lock member: %w", err)
	}
	if member == nil {
		return nil, domain.ErrNotFound("member", memberID.String())
	}
	return member, nil
}

// PostEntry atomically applies a signed balance delta and records it.
//
// Steps:
//  1. Update the member balance using server-side arithmetic
//  2. Insert the ledger entry with the post-update balance snapshot
//  3. Insert the outbox event
//
// All 3 steps run within the caller's transaction.
func (e *Engine) PostEntry(ctx context.Context, tx pgx.Tx, params domain.PostEntryParams) (*domain.LedgerEntry, *domain.Member, error) {
	updated, err := e.members.ApplyBalanceDelta(ctx, tx, params.MemberID, params.Delta)
	if err != nil {
		return nil, nil, fmt.Errorf("apply balance delta: %w", err)
	}
	if updated == nil {
		return nil, nil, domain.ErrNotFound("member", params.MemberID.String())
	}

	entry, err := e.entries.Insert(ctx, tx, params, updated.Balance)
	if err != nil {
		return nil, nil, fmt.Errorf("insert ledger entry: %w", err)
	}

	if err := e.outbox.Insert(ctx, tx, domain.NewEntryPostedEvent(entry)); err != nil {
		return nil, nil, fmt.Errorf("insert outbox event: %w", err)
	}

	return entry, updated, nil
}
