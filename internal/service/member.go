package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sidebet/platform/internal/domain"
	"github.com/sidebet/platform/internal/ledger"
	"github.com/sidebet/platform/internal/repository"
)

// MemberService exposes member profiles, wallet history and stats.
type MemberService struct {
	pool    *pgxpool.Pool
	members repository.MemberRepository
	wagers  repository.WagerRepository
	entries repository.LedgerRepository
	stats   repository.StatsRepository
	leagues repository.LeagueRepository
	engine  *ledger.Engine
	logger  *slog.Logger
}

// NewMemberService creates a MemberService.
func NewMemberService(
	pool *pgxpool.Pool,
	members repository.MemberRepository,
	wagers repository.WagerRepository,
	entries repository.LedgerRepository,
	stats repository.StatsRepository,
	leagues repository.LeagueRepository,
	engine *ledger.Engine,
	logger *slog.Logger,
) *MemberService {
	return &MemberService{
		pool:    pool,
		members: members,
		wagers:  wagers,
		entries: entries,
		stats:   stats,
		leagues: leagues,
		engine:  engine,
		logger:  logger,
	}
}

// MemberProfile bundles a member with their running stats.
type MemberProfile struct {
	Member *domain.Member      `json:"member"`
	Stats  *domain.MemberStats `json:"stats,omitempty"`
}

// GetProfile returns a member and their stats.
func (s *MemberService) GetProfile(ctx context.Context, memberID uuid.UUID) (*MemberProfile, error) {
	member, err := s.members.FindByID(ctx, s.pool, memberID)
	if err != nil {
		return nil, domain.ErrInternal("find member", err)
	}
	if member == nil {
		return nil, domain.ErrNotFound("member", memberID.String())
	}

	stats, err := s.stats.FindByMemberID(ctx, s.pool, memberID)
	if err != nil {
		return nil, domain.ErrInternal("find stats", err)
	}
	return &MemberProfile{Member: member, Stats: stats}, nil
}

// ListLedger returns a member's most recent ledger entries.
func (s *MemberService) ListLedger(ctx context.Context, memberID uuid.UUID, limit int) ([]domain.LedgerEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	entries, err := s.entries.ListByMember(ctx, s.pool, memberID, limit)
	if err != nil {
		return nil, domain.ErrInternal("list ledger entries", err)
	}
	return entries, nil
}

// ListWagers returns a member's most recent wagers.
func (s *MemberService) ListWagers(ctx context.Context, memberID uuid.UUID, limit int) ([]domain.Wager, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	wagers, err := s.wagers.ListByMember(ctx, s.pool, memberID, limit)
	if err != nil {
		return nil, domain.ErrInternal("list wagers", err)
	}
	return wagers, nil
}

// Adjust applies a manual balance correction to a member. Only a
// commissioner of one of the member's leagues may adjust, and never
// their own balance.
func (s *MemberService) Adjust(ctx context.Context, requesterID uuid.UUID, params ledger.AdjustmentParams) (*domain.LedgerEntry, error) {
	if requesterID == params.MemberID {
		return nil, domain.ErrForbidden("members may not adjust their own balance")
	}
	allowed, err := s.leagues.CommissionerOver(ctx, s.pool, requesterID, params.MemberID)
	if err != nil {
		return nil, domain.ErrInternal("check commissioner authority", err)
	}
	if !allowed {
		return nil, domain.ErrForbidden("only a commissioner of the member's league may adjust their balance")
	}
	params.AdjustedBy = requesterID

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	entry, _, err := s.engine.ExecuteAdjustment(ctx, tx, params)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("balance adjusted", "member_id", params.MemberID, "delta", params.Delta, "by", params.AdjustedBy)
	return entry, nil
}
