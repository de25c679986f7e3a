package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sidebet/platform/internal/domain"
)

type leagueRepo struct{}

// NewLeagueRepository returns a pgx-backed LeagueRepository.
func NewLeagueRepository() LeagueRepository {
	return &leagueRepo{}
}

func (r *leagueRepo) Create(ctx context.Context, db DBTX, league *domain.League) error {
	_, err := db.Exec(ctx, `
		INSERT INTO leagues (id, name, commissioner_id, created_at)
		VALUES ($1, $2, $3, $4)`,
		league.ID, league.Name, league.CommissionerID, league.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert league: %w", err)
	}
	return nil
}

func (r *leagueRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.League, error) {
	row := db.QueryRow(ctx, `
		SELECT id, name, commissioner_id, created_at
		FROM leagues WHERE id = $1`, id)

	var l domain.League
	err := row.Scan(&l.ID, &l.Name, &l.CommissionerID, &l.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan league: %w", err)
	}
	return &l, nil
}

func (r *leagueRepo) AddMember(ctx context.Context, db DBTX, leagueID, memberID uuid.UUID) error {
	_, err := db.Exec(ctx, `
		INSERT INTO league_members (league_id, member_id, joined_at)
		VALUES ($1, $2, now())
		ON CONFLICT (league_id, member_id) DO NOTHING`,
		leagueID, memberID)
	if err != nil {
		return fmt.Errorf("insert league member: %w", err)
	}
	return nil
}

func (r *leagueRepo) CommissionerOver(ctx context.Context, db DBTX, requesterID, memberID uuid.UUID) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM leagues l
			JOIN league_members lm ON lm.league_id = l.id
			WHERE l.commissioner_id = $1 AND lm.member_id = $2
		)`, requesterID, memberID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query commissioner authority: %w", err)
	}
	return exists, nil
}

func (r *leagueRepo) IsMember(ctx context.Context, db DBTX, leagueID, memberID uuid.UUID) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM league_members WHERE league_id = $1 AND member_id = $2
		)`, leagueID, memberID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query league membership: %w", err)
	}
	return exists, nil
}
