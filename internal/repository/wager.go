package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sidebet/platform/internal/domain"
	"github.com/sidebet/platform/internal/infra"
)

const wagerColumns = `id, bet_id, member_id, selection, stake, status, payout, created_at, settled_at`

type wagerRepo struct{}

// NewWagerRepository returns a pgx-backed WagerRepository.
func NewWagerRepository() WagerRepository {
	return &wagerRepo{}
}

func (r *wagerRepo) Insert(ctx context.Context, db DBTX, wager *domain.Wager) error {
	_, err := db.Exec(ctx, `
		INSERT INTO wagers (id, bet_id, member_id, selection, stake, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		wager.ID,
		wager.BetID,
		wager.MemberID,
		wager.Selection,
		infra.MoneyToNumeric(wager.Stake),
		wager.Status,
		wager.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 unique_violation: this member already has a wager on the bet.
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrConflict("member already has a wager on this bet")
		}
		return fmt.Errorf("insert wager: %w", err)
	}
	return nil
}

func (r *wagerRepo) ListByBet(ctx context.Context, db DBTX, betID uuid.UUID) ([]domain.Wager, error) {
	rows, err := db.Query(ctx, `
		SELECT `+wagerColumns+` FROM wagers
		WHERE bet_id = $1
		ORDER BY created_at ASC`, betID)
	if err != nil {
		return nil, fmt.Errorf("query bet wagers: %w", err)
	}
	defer rows.Close()
	return collectWagers(rows)
}

func (r *wagerRepo) ListByMember(ctx context.Context, db DBTX, memberID uuid.UUID, limit int) ([]domain.Wager, error) {
	rows, err := db.Query(ctx, `
		SELECT `+wagerColumns+` FROM wagers
		WHERE member_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, memberID, limit)
	if err != nil {
		return nil, fmt.Errorf("query member wagers: %w", err)
	}
	defer rows.Close()
	return collectWagers(rows)
}

func (r *wagerRepo) FindByBetAndMember(ctx context.Context, db DBTX, betID, memberID uuid.UUID) (*domain.Wager, error) {
	row := db.QueryRow(ctx, `
		SELECT `+wagerColumns+` FROM wagers
		WHERE bet_id = $1 AND member_id = $2`, betID, memberID)
	return scanWager(row)
}

// MarkSettled is single-shot: the pending guard means re-running a
// settlement can never rewrite an already settled wager.
func (r *wagerRepo) MarkSettled(ctx context.Context, tx pgx.Tx, wagerID uuid.UUID, status domain.WagerStatus, payout int64) error {
	tag, err := tx.Exec(ctx, `
		UPDATE wagers
		SET status = $2, payout = $3, settled_at = now()
		WHERE id = $1 AND status = 'pending'`,
		wagerID, status, infra.MoneyToNumeric(payout))
	if err != nil {
		return fmt.Errorf("settle wager: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict("wager " + wagerID.String() + " already settled")
	}
	return nil
}

func collectWagers(rows pgx.Rows) ([]domain.Wager, error) {
	var wagers []domain.Wager
	for rows.Next() {
		w, err := scanWager(rows)
		if err != nil {
			return nil, err
		}
		wagers = append(wagers, *w)
	}
	return wagers, rows.Err()
}

func scanWager(row pgx.Row) (*domain.Wager, error) {
	var w domain.Wager
	var stakeNum pgtype.Numeric
	var payoutNum *pgtype.Numeric
	err := row.Scan(&w.ID, &w.BetID, &w.MemberID, &w.Selection, &stakeNum, &w.Status, &payoutNum, &w.CreatedAt, &w.SettledAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan wager: %w", err)
	}

	w.Stake, err = infra.NumericToMoney(stakeNum)
	if err != nil {
		return nil, fmt.Errorf("convert stake: %w", err)
	}
	if payoutNum != nil {
		payout, err := infra.NumericToMoney(*payoutNum)
		if err != nil {
			return nil, fmt.Errorf("convert payout: %w", err)
		}
		w.Payout = &payout
	}
	return &w, nil
}
