package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sidebet/platform/internal/domain"
	"github.com/sidebet/platform/internal/infra"
)

type statsRepo struct{}

// NewStatsRepository returns a pgx-backed StatsRepository.
func NewStatsRepository() StatsRepository {
	return &statsRepo{}
}

// ApplyResult folds one settled wager into member_stats with a single
// upsert. A zero-stake wager is skipped, mirroring
// domain.MemberStats.ApplyWagerResult.
func (r *statsRepo) ApplyResult(ctx context.Context, tx pgx.Tx, memberID uuid.UUID, stake, pnl int64, won bool) error {
	if stake <= 0 {
		return nil
	}

	winInc, lossInc := 0, 0
	if won {
		winInc = 1
	} else {
		lossInc = 1
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO member_stats (member_id, total_wins, total_losses, pnl, greatest_win, greatest_loss, win_streak, total_wagers, updated_at)
		VALUES ($1, $2, $3, $4, GREATEST($4, 0), LEAST($4, 0), $2, 1, now())
		ON CONFLICT (member_id) DO UPDATE SET
			total_wins    = member_stats.total_wins + $2,
			total_losses  = member_stats.total_losses + $3,
			pnl           = member_stats.pnl + $4,
			greatest_win  = GREATEST(member_stats.greatest_win, $4),
			greatest_loss = LEAST(member_stats.greatest_loss, $4),
			win_streak    = CASE WHEN $5 THEN member_stats.win_streak + 1 ELSE 0 END,
			total_wagers  = member_stats.total_wagers + 1,
			updated_at    = now()`,
		memberID, winInc, lossInc, infra.MoneyToNumeric(pnl), won)
	if err != nil {
		return fmt.Errorf("apply stats result: %w", err)
	}
	return nil
}

func (r *statsRepo) FindByMemberID(ctx context.Context, db DBTX, memberID uuid.UUID) (*domain.MemberStats, error) {
	row := db.QueryRow(ctx, `
		SELECT member_id, total_wins, total_losses, pnl, greatest_win, greatest_loss, win_streak, total_wagers, updated_at
		FROM member_stats WHERE member_id = $1`, memberID)
	return scanStats(row)
}

func (r *statsRepo) ListByLeague(ctx context.Context, db DBTX, leagueID uuid.UUID) ([]domain.MemberStats, error) {
	rows, err := db.Query(ctx, `
		SELECT s.member_id, s.total_wins, s.total_losses, s.pnl, s.greatest_win, s.greatest_loss, s.win_streak, s.total_wagers, s.updated_at
		FROM member_stats s
		JOIN league_members lm ON lm.member_id = s.member_id
		WHERE lm.league_id = $1`, leagueID)
	if err != nil {
		return nil, fmt.Errorf("query league stats: %w", err)
	}
	defer rows.Close()

	var stats []domain.MemberStats
	for rows.Next() {
		s, err := scanStats(rows)
		if err != nil {
			return nil, err
		}
		stats = append(stats, *s)
	}
	return stats, rows.Err()
}

func scanStats(row pgx.Row) (*domain.MemberStats, error) {
	var s domain.MemberStats
	var pnlNum, winNum, lossNum pgtype.Numeric
	err := row.Scan(&s.MemberID, &s.TotalWins, &s.TotalLosses, &pnlNum, &winNum, &lossNum, &s.WinStreak, &s.TotalWagers, &s.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan stats: %w", err)
	}

	if s.PnL, err = infra.NumericToMoney(pnlNum); err != nil {
		return nil, fmt.Errorf("convert pnl: %w", err)
	}
	if s.GreatestWin, err = infra.NumericToMoney(winNum); err != nil {
		return nil, fmt.Errorf("convert greatest_win: %w", err)
	}
	if s.GreatestLoss, err = infra.NumericToMoney(lossNum); err != nil {
		return nil, fmt.Errorf("convert greatest_loss: %w", err)
	}
	return &s, nil
}
