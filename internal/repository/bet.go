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

const betColumns = `id, creator_id, event_id, league_id, type, title, options,
	stake, status, resolution_mode, winner, did_hit, is_finished,
	resolved_by, created_at, resolved_at`

type betRepo struct{}

// NewBetRepository returns a pgx-backed BetRepository.
func NewBetRepository() BetRepository {
	return &betRepo{}
}

func (r *betRepo) Create(ctx context.Context, db DBTX, bet *domain.Bet) error {
	_, err := db.Exec(ctx, `
		INSERT INTO bets (id, creator_id, event_id, league_id, type, title, options, stake, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		bet.ID,
		bet.CreatorID,
		bet.EventID,
		bet.LeagueID,
		bet.Type,
		bet.Title,
		bet.Options,
		infra.MoneyToNumeric(bet.Stake),
		bet.Status,
		bet.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert bet: %w", err)
	}
	return nil
}

func (r *betRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Bet, error) {
	row := db.QueryRow(ctx, `SELECT `+betColumns+` FROM bets WHERE id = $1`, id)
	return scanBet(row)
}

func (r *betRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Bet, error) {
	row := tx.QueryRow(ctx, `SELECT `+betColumns+` FROM bets WHERE id = $1 FOR UPDATE`, id)
	return scanBet(row)
}

// MarkResolved is a compare-and-set on status. Exactly one concurrent
// resolution request can win it; the losers see zero rows and surface
// ALREADY_SETTLED.
func (r *betRepo) MarkResolved(ctx context.Context, tx pgx.Tx, betID uuid.UUID, res domain.ResolutionMode, winner *string, didHit *bool, resolvedBy uuid.UUID) (*domain.Bet, error) {
	row := tx.QueryRow(ctx, `
		UPDATE bets
		SET status = 'resolved',
		    resolution_mode = $2,
		    winner = $3,
		    did_hit = $4,
		    is_finished = TRUE,
		    resolved_by = $5,
		    resolved_at = now()
		WHERE id = $1 AND status IN ('open', 'closed')
		RETURNING `+betColumns,
		betID, res, winner, didHit, resolvedBy)
	return scanBet(row)
}

func (r *betRepo) TransitionStatus(ctx context.Context, db DBTX, betID uuid.UUID, from []domain.BetStatus, to domain.BetStatus) (*domain.Bet, error) {
	row := db.QueryRow(ctx, `
		UPDATE bets
		SET status = $3
		WHERE id = $1 AND status = ANY($2)
		RETURNING `+betColumns,
		betID, statusStrings(from), to)
	return scanBet(row)
}

func (r *betRepo) ListByLeague(ctx context.Context, db DBTX, leagueID uuid.UUID, activeOnly bool) ([]domain.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE league_id = $1`
	if activeOnly {
		query += ` AND status IN ('open', 'closed')`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.Query(ctx, query, leagueID)
	if err != nil {
		return nil, fmt.Errorf("query league bets: %w", err)
	}
	defer rows.Close()
	return collectBets(rows)
}

func (r *betRepo) ListOpenSportsBets(ctx context.Context, db DBTX) ([]domain.Bet, error) {
	rows, err := db.Query(ctx, `
		SELECT b.id, b.creator_id, b.event_id, b.league_id, b.type, b.title,
		       b.options, b.stake, b.status, b.resolution_mode, b.winner,
		       b.did_hit, b.is_finished, b.resolved_by, b.created_at, b.resolved_at
		FROM bets b
		JOIN events e ON e.id = b.event_id
		WHERE b.status IN ('open', 'closed') AND e.category = 'sports'
		ORDER BY b.created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("query open sports bets: %w", err)
	}
	defer rows.Close()
	return collectBets(rows)
}

func collectBets(rows pgx.Rows) ([]domain.Bet, error) {
	var bets []domain.Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		bets = append(bets, *b)
	}
	return bets, rows.Err()
}

func scanBet(row pgx.Row) (*domain.Bet, error) {
	var b domain.Bet
	var stakeNum pgtype.Numeric
	err := row.Scan(
		&b.ID, &b.CreatorID, &b.EventID, &b.LeagueID, &b.Type, &b.Title,
		&b.Options, &stakeNum, &b.Status, &b.Mode, &b.Winner, &b.DidHit,
		&b.IsFinished, &b.ResolvedBy, &b.CreatedAt, &b.ResolvedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan bet: %w", err)
	}

	b.Stake, err = infra.NumericToMoney(stakeNum)
	if err != nil {
		return nil, fmt.Errorf("convert stake: %w", err)
	}
	return &b, nil
}

func statusStrings(statuses []domain.BetStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
