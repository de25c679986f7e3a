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

type memberRepo struct{}

// NewMemberRepository returns a pgx-backed MemberRepository.
func NewMemberRepository() MemberRepository {
	return &memberRepo{}
}

func (r *memberRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Member, error) {
	row := db.QueryRow(ctx, `
		SELECT id, display_name, balance, league_id, created_at, updated_at
		FROM members WHERE id = $1`, id)
	return scanMember(row)
}

func (r *memberRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Member, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, display_name, balance, league_id, created_at, updated_at
		FROM members WHERE id = $1 FOR UPDATE`, id)
	return scanMember(row)
}

func (r *memberRepo) Create(ctx context.Context, db DBTX, member *domain.Member) error {
	_, err := db.Exec(ctx, `
		INSERT INTO members (id, display_name, balance, league_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		member.ID,
		member.DisplayName,
		infra.MoneyToNumeric(member.Balance),
		member.LeagueID,
		member.CreatedAt,
		member.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

// ApplyBalanceDelta uses server-side arithmetic so concurrent settlements
// never clobber each other's writes.
func (r *memberRepo) ApplyBalanceDelta(ctx context.Context, tx pgx.Tx, memberID uuid.UUID, delta int64) (*domain.Member, error) {
	row := tx.QueryRow(ctx, `
		UPDATE members
		SET balance = balance + $1, updated_at = now()
		WHERE id = $2
		RETURNING id, display_name, balance, league_id, created_at, updated_at`,
		infra.MoneyToNumeric(delta), memberID)
	return scanMember(row)
}

func (r *memberRepo) ListByLeagueRanked(ctx context.Context, db DBTX, leagueID uuid.UUID) ([]domain.Member, error) {
	rows, err := db.Query(ctx, `
		SELECT m.id, m.display_name, m.balance, m.league_id, m.created_at, m.updated_at
		FROM members m
		JOIN league_members lm ON lm.member_id = m.id
		WHERE lm.league_id = $1
		ORDER BY m.balance DESC, m.display_name ASC`, leagueID)
	if err != nil {
		return nil, fmt.Errorf("query league members: %w", err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func scanMember(row pgx.Row) (*domain.Member, error) {
	var m domain.Member
	var balNum pgtype.Numeric
	err := row.Scan(&m.ID, &m.DisplayName, &balNum, &m.LeagueID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan member: %w", err)
	}

	m.Balance, err = infra.NumericToMoney(balNum)
	if err != nil {
		return nil, fmt.Errorf("convert balance: %w", err)
	}
	return &m, nil
}
