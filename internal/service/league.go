package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sidebet/platform/internal/domain"
	"github.com/sidebet/platform/internal/leaderboard"
	"github.com/sidebet/platform/internal/projection"
	"github.com/sidebet/platform/internal/repository"
)

// LeagueService manages leagues and serves the cached leaderboard.
type LeagueService struct {
	pool     *pgxpool.Pool
	leagues  repository.LeagueRepository
	members  repository.MemberRepository
	stats    repository.StatsRepository
	cache    projection.Store
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewLeagueService creates a LeagueService.
func NewLeagueService(
	pool *pgxpool.Pool,
	leagues repository.LeagueRepository,
	members repository.MemberRepository,
	stats repository.StatsRepository,
	cache projection.Store,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *LeagueService {
	return &LeagueService{
		pool:     pool,
		leagues:  leagues,
		members:  members,
		stats:    stats,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// CreateLeagueInput holds league creation fields.
type CreateLeagueInput struct {
	Name string `json:"name"`
}

// CreateLeague creates a league with the creator as commissioner and
// first member.
func (s *LeagueService) CreateLeague(ctx context.Context, creatorID uuid.UUID, input CreateLeagueInput) (*domain.League, error) {
	if input.Name == "" {
		return nil, domain.ErrValidation("name is required")
	}

	league := &domain.League{
		ID:             uuid.New(),
		Name:           input.Name,
		CommissionerID: creatorID,
		CreatedAt:      time.Now(),
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := s.leagues.Create(ctx, tx, league); err != nil {
		return nil, domain.ErrInternal("insert league", err)
	}
	if err := s.leagues.AddMember(ctx, tx, league.ID, creatorID); err != nil {
		return nil, domain.ErrInternal("add commissioner", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("league created", "league_id", league.ID, "commissioner_id", creatorID)
	return league, nil
}

// Join adds a member to a league.
func (s *LeagueService) Join(ctx context.Context, leagueID, memberID uuid.UUID) error {
	league, err := s.leagues.FindByID(ctx, s.pool, leagueID)
	if err != nil {
		return domain.ErrInternal("find league", err)
	}
	if league == nil {
		return domain.ErrNotFound("league", leagueID.String())
	}
	if err := s.leagues.AddMember(ctx, s.pool, leagueID, memberID); err != nil {
		return domain.ErrInternal("add member", err)
	}
	if err := projection.InvalidateLeaderboard(ctx, s.cache, leagueID); err != nil {
		s.logger.Warn("leaderboard invalidate failed", "league_id", leagueID, "error", err)
	}
	return nil
}

// Leaderboard returns the league standings with titles, served from the
// projection cache when fresh.
func (s *LeagueService) Leaderboard(ctx context.Context, leagueID uuid.UUID) ([]domain.LeaderboardRow, error) {
	rows, err := projection.GetLeaderboard(ctx, s.cache, leagueID)
	if err == nil {
		return rows, nil
	}
	if !errors.Is(err, projection.ErrNotFound) {
		s.logger.Warn("leaderboard cache read failed", "league_id", leagueID, "error", err)
	}

	league, err := s.leagues.FindByID(ctx, s.pool, leagueID)
	if err != nil {
		return nil, domain.ErrInternal("find league", err)
	}
	if league == nil {
		return nil, domain.ErrNotFound("league", leagueID.String())
	}

	members, err := s.members.ListByLeagueRanked(ctx, s.pool, leagueID)
	if err != nil {
		return nil, domain.ErrInternal("list members", err)
	}
	stats, err := s.stats.ListByLeague(ctx, s.pool, leagueID)
	if err != nil {
		return nil, domain.ErrInternal("list stats", err)
	}

	rows = leaderboard.BuildStandings(members, stats)
	if err := projection.UpdateLeaderboard(ctx, s.cache, leagueID, rows, s.cacheTTL); err != nil {
		s.logger.Warn("leaderboard cache write failed", "league_id", leagueID, "error", err)
	}
	return rows, nil
}
