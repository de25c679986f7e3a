package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sidebet/platform/internal/domain"
	"github.com/sidebet/platform/internal/repository"
)

// InvariantCheck records a single replay invariant validation.
type InvariantCheck struct {
	Name   string
	Passed bool
	Detail string
}

// ReplayReport is the outcome of replaying one member's ledger.
type ReplayReport struct {
	MemberID   uuid.UUID
	EntryCount int
	Invariants []InvariantCheck
	AllPassed  bool
}

// ReplayEntries folds a member's entries oldest-first from a zero balance
// and validates three invariants:
//  1. chain continuity: each balance_after snapshot equals the previous
//     snapshot plus the entry amount
//  2. balance non-negativity: no snapshot along the chain dips below zero
//  3. ledger parity: the replayed final balance matches the member row
//
// PostEntry is the only writer of members.balance, so any failure here
// means something bypassed it or an entry was mutated after the fact.
func ReplayEntries(member *domain.Member, entries []domain.LedgerEntry) []InvariantCheck {
	checks := make([]InvariantCheck, 0, 3)

	var running int64
	chain := InvariantCheck{Name: "chain_continuity", Passed: true,
		Detail: fmt.Sprintf("%d entries", len(entries))}
	nonNeg := InvariantCheck{Name: "balance_non_negative", Passed: true,
		Detail: "no negative snapshot"}
	for i := range entries {
		e := &entries[i]
		running += e.Amount
		if chain.Passed && e.BalanceAfter != running {
			chain.Passed = false
			chain.Detail = fmt.Sprintf("entry %s: snapshot %d, replayed %d", e.ID, e.BalanceAfter, running)
		}
		if nonNeg.Passed && running < 0 {
			nonNeg.Passed = false
			nonNeg.Detail = fmt.Sprintf("entry %s: replayed balance %d", e.ID, running)
		}
	}
	checks = append(checks, chain, nonNeg)

	checks = append(checks, InvariantCheck{
		Name:   "ledger_parity",
		Passed: running == member.Balance,
		Detail: fmt.Sprintf("member=%d replayed=%d", member.Balance, running),
	})
	return checks
}

// Replayer re-derives member balances from the append-only ledger and
// checks them against the member rows.
type Replayer struct {
	pool    *pgxpool.Pool
	members repository.MemberRepository
	entries repository.LedgerRepository
}

// NewReplayer creates a ledger replayer.
func NewReplayer(pool *pgxpool.Pool, members repository.MemberRepository, entries repository.LedgerRepository) *Replayer {
	return &Replayer{pool: pool, members: members, entries: entries}
}

// VerifyMember locks the member row, fetches their full ledger in one
// transaction and replays it.
func (r *Replayer) VerifyMember(ctx context.Context, memberID uuid.UUID) (*ReplayReport, error) {
	var member *domain.Member
	var entries []domain.LedgerEntry
	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		var err error
		member, err = r.members.LockForUpdate(ctx, tx, memberID)
		if err != nil {
			return err
		}
		if member == nil {
			return domain.ErrNotFound("member", memberID.String())
		}
		entries, err = r.entries.ListAllByMember(ctx, tx, memberID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("replay fetch: %w", err)
	}

	checks := ReplayEntries(member, entries)
	all := true
	for _, c := range checks {
		if !c.Passed {
			all = false
		}
	}
	return &ReplayReport{
		MemberID:   memberID,
		EntryCount: len(entries),
		Invariants: checks,
		AllPassed:  all,
	}, nil
}
