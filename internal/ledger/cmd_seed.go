package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sidebet/platform/internal/domain"
)

// ExecuteSeed credits the starting balance to a newly created member.
func (e *Engine) ExecuteSeed(ctx context.Context, tx pgx.Tx, memberID uuid.UUID, amount int64) (*domain.LedgerEntry, *domain.Member, error) {
	if err := domain.ValidatePositiveAmount(amount); err != nil {
		return nil, nil, err
	}

	entry, updated, err := e.PostEntry(ctx, tx, domain.PostEntryParams{
		MemberID: memberID,
		Type:     domain.EntrySeed,
		Delta:    amount,
		Metadata: json.RawMessage(`{"reason":"initial_balance"}`),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("seed post: %w", err)
	}
	return entry, updated, nil
}

// AdjustmentParams is a manual balance correction by a commissioner.
type AdjustmentParams struct {
	MemberID   uuid.UUID
	Delta      int64
	Note       string
	AdjustedBy uuid.UUID
}

// ExecuteAdjustment applies a signed manual correction. A negative delta
// may not take the balance below zero.
func (e *Engine) ExecuteAdjustment(ctx context.Context, tx pgx.Tx, params AdjustmentParams) (*domain.LedgerEntry, *domain.Member, error) {
	if params.Delta == 0 {
		return nil, nil, domain.ErrValidation("adjustment delta must be non-zero")
	}

	member, err := e.LockMemberForUpdate(ctx, tx, params.MemberID)
	if err != nil {
		return nil, nil, fmt.Errorf("adjustment: %w", err)
	}
	if member.Balance+params.Delta < 0 {
		return nil, nil, domain.ErrInsufficientBalance()
	}

	meta, _ := json.Marshal(map[string]string{
		"note":        params.Note,
		"adjusted_by": params.AdjustedBy.String(),
	})
	entry, updated, err := e.PostEntry(ctx, tx, domain.PostEntryParams{
		MemberID: params.MemberID,
		Type:     domain.EntryAdjustment,
		Delta:    params.Delta,
		Metadata: meta,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("adjustment post: %w", err)
	}
	return entry, updated, nil
}
