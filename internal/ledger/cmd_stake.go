package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sidebet/platform/internal/domain"
)

// StakeParams debit a wager's stake from a member.
type StakeParams struct {
	Wager *domain.Wager
}

// ExecuteStake deducts the wager's stake from the member's balance at
// placement time. The member row must already be locked by the caller's
// transaction; the balance check here runs against the locked row, so a
// concurrent wager cannot overdraw.
func (e *Engine) ExecuteStake(ctx context.Context, tx pgx.Tx, params StakeParams) (*domain.LedgerEntry, *domain.Member, error) {
	w := params.Wager
	if err := domain.ValidatePositiveAmount(w.Stake); err != nil {
		return nil, nil, err
	}

	member, err := e.LockMemberForUpdate(ctx, tx, w.MemberID)
	if err != nil {
		return nil, nil, fmt.Errorf("stake: %w", err)
	}
	if member.Balance < w.Stake {
		return nil, nil, domain.ErrInsufficientBalance()
	}

	meta, _ := json.Marshal(map[string]string{"selection": w.Selection})
	entry, updated, err := e.PostEntry(ctx, tx, domain.PostEntryParams{
		MemberID: w.MemberID,
		Type:     domain.EntryWagerStake,
		Delta:    -w.Stake,
		BetID:    &w.BetID,
		WagerID:  &w.ID,
		Metadata: meta,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("stake post: %w", err)
	}
	return entry, updated, nil
}
