package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sidebet/platform/internal/domain"
	"github.com/sidebet/platform/internal/infra"
)

type ledgerRepo struct{}

// NewLedgerRepository returns a pgx-backed LedgerRepository.
func NewLedgerRepository() LedgerRepository {
	return &ledgerRepo{}
}

func (r *ledgerRepo) Insert(ctx context.Context, db DBTX, params domain.PostEntryParams, balanceAfter int64) (*domain.LedgerEntry, error) {
	entry := &domain.LedgerEntry{
		ID:           uuid.New(),
		MemberID:     params.MemberID,
		Type:         params.Type,
		Amount:       params.Delta,
		BalanceAfter: balanceAfter,
		BetID:        params.BetID,
		WagerID:      params.WagerID,
		Metadata:     params.Metadata,
		CreatedAt:    time.Now(),
	}
	if entry.Metadata == nil {
		entry.Metadata = json.RawMessage(`{}`)
	}

	_, err := db.Exec(ctx, `
		INSERT INTO ledger_entries (id, member_id, type, amount, balance_after, bet_id, wager_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.ID,
		entry.MemberID,
		entry.Type,
		infra.MoneyToNumeric(entry.Amount),
		infra.MoneyToNumeric(entry.BalanceAfter),
		entry.BetID,
		entry.WagerID,
		entry.Metadata,
		entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert ledger entry: %w", err)
	}
	return entry, nil
}

func (r *ledgerRepo) ListByMember(ctx context.Context, db DBTX, memberID uuid.UUID, limit int) ([]domain.LedgerEntry, error) {
	rows, err := db.Query(ctx, `
		SELECT id, member_id, type, amount, balance_after, bet_id, wager_id, metadata, created_at
		FROM ledger_entries
		WHERE member_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, memberID, limit)
	if err != nil {
		return nil, fmt.Errorf("query ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (r *ledgerRepo) ListAllByMember(ctx context.Context, db DBTX, memberID uuid.UUID) ([]domain.LedgerEntry, error) {
	rows, err := db.Query(ctx, `
		SELECT id, member_id, type, amount, balance_after, bet_id, wager_id, metadata, created_at
		FROM ledger_entries
		WHERE member_id = $1
		ORDER BY created_at ASC`, memberID)
	if err != nil {
		return nil, fmt.Errorf("query ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (r *ledgerRepo) DailyStakeTotal(ctx context.Context, db DBTX, memberID uuid.UUID, since time.Time) (int64, error) {
	// Stake entries carry negative amounts; flip the sign of the sum.
	var total pgtype.Numeric
	err := db.QueryRow(ctx, `
		SELECT COALESCE(-SUM(amount), 0)
		FROM ledger_entries
		WHERE member_id = $1 AND type = $2 AND created_at >= $3`,
		memberID, domain.EntryWagerStake, since).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum daily stakes: %w", err)
	}
	return infra.NumericToMoney(total)
}

func scanLedgerEntry(row pgx.Row) (*domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	var amountNum, balanceNum pgtype.Numeric
	err := row.Scan(&e.ID, &e.MemberID, &e.Type, &amountNum, &balanceNum, &e.BetID, &e.WagerID, &e.Metadata, &e.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan ledger entry: %w", err)
	}

	if e.Amount, err = infra.NumericToMoney(amountNum); err != nil {
		return nil, fmt.Errorf("convert amount: %w", err)
	}
	if e.BalanceAfter, err = infra.NumericToMoney(balanceNum); err != nil {
		return nil, fmt.Errorf("convert balance_after: %w", err)
	}
	return &e, nil
}
