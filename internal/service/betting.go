package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sidebet/platform/internal/domain"
	"github.com/sidebet/platform/internal/infra"
	"github.com/sidebet/platform/internal/ledger"
	"github.com/sidebet/platform/internal/lifecycle"
	"github.com/sidebet/platform/internal/policy"
	"github.com/sidebet/platform/internal/projection"
	"github.com/sidebet/platform/internal/repository"
	"github.com/sidebet/platform/internal/settlement"
)

// startOfDayUTC returns UTC midnight of the current day, the boundary
// for the daily stake cap.
func startOfDayUTC() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// BettingService orchestrates the bet lifecycle: creation, wagering,
// closing, disputing and settlement.
type BettingService struct {
	pool    *pgxpool.Pool
	bets    repository.BetRepository
	wagers  repository.WagerRepository
	leagues repository.LeagueRepository
	events  repository.EventRepository
	ledgers repository.LedgerRepository
	outbox  repository.OutboxRepository
	engine  *ledger.Engine
	applier *ledger.Applier
	settler *settlement.Engine
	limits  policy.LimitPolicy
	cache   projection.Store
	logger  *slog.Logger
}

// NewBettingService creates a BettingService.
func NewBettingService(
	pool *pgxpool.Pool,
	bets repository.BetRepository,
	wagers repository.WagerRepository,
	leagues repository.LeagueRepository,
	events repository.EventRepository,
	ledgers repository.LedgerRepository,
	outbox repository.OutboxRepository,
	engine *ledger.Engine,
	applier *ledger.Applier,
	settler *settlement.Engine,
	limits policy.LimitPolicy,
	cache projection.Store,
	logger *slog.Logger,
) *BettingService {
	return &BettingService{
		pool:    pool,
		bets:    bets,
		wagers:  wagers,
		leagues: leagues,
		events:  events,
		ledgers: ledgers,
		outbox:  outbox,
		engine:  engine,
		applier: applier,
		settler: settler,
		limits:  limits,
		cache:   cache,
		logger:  logger,
	}
}

// CreateBetInput holds the bet creation request.
type CreateBetInput struct {
	EventID  uuid.UUID      `json:"event_id"`
	LeagueID *uuid.UUID     `json:"league_id,omitempty"`
	Type     domain.BetType `json:"type"`
	Title    string         `json:"title"`
	Options  []string       `json:"options"`
	Stake    int64          `json:"stake"`
}

// CreateBet opens a new bet. The creator does not wager implicitly; they
// join with a wager like everyone else.
func (s *BettingService) CreateBet(ctx context.Context, creatorID uuid.UUID, input CreateBetInput) (*domain.Bet, error) {
	if input.Title == "" {
		return nil, domain.ErrValidation("title is required")
	}
	if err := domain.ValidateStake(input.Stake, s.limits.SingleWagerMax); err != nil {
		return nil, err
	}
	if err := domain.ValidateBetOptions(input.Type, input.Options); err != nil {
		return nil, err
	}

	event, err := s.events.FindByID(ctx, s.pool, input.EventID)
	if err != nil {
		return nil, domain.ErrInternal("lookup event", err)
	}
	if event == nil {
		return nil, domain.ErrNotFound("event", input.EventID.String())
	}
	if event.Status == domain.EventFinished {
		return nil, domain.ErrConflict("event has already finished")
	}

	if input.LeagueID != nil {
		ok, err := s.leagues.IsMember(ctx, s.pool, *input.LeagueID, creatorID)
		if err != nil {
			return nil, domain.ErrInternal("check league membership", err)
		}
		if !ok {
			return nil, domain.ErrForbidden("creator is not a member of the league")
		}
	}

	bet := &domain.Bet{
		ID:        uuid.New(),
		CreatorID: creatorID,
		EventID:   input.EventID,
		LeagueID:  input.LeagueID,
		Type:      input.Type,
		Title:     input.Title,
		Options:   input.Options,
		Stake:     input.Stake,
		Status:    domain.BetOpen,
		CreatedAt: time.Now(),
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := s.bets.Create(ctx, tx, bet); err != nil {
		return nil, domain.ErrInternal("insert bet", err)
	}
	if err := s.outbox.Insert(ctx, tx, domain.NewBetLifecycleEvent(bet, domain.EventBetCreated)); err != nil {
		return nil, domain.ErrInternal("bet created event", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("bet created", "bet_id", bet.ID, "type", bet.Type, "stake", bet.Stake)
	return bet, nil
}

// PlaceWager joins a member to an open bet with the bet's fixed stake. The
// stake is debited immediately; the bet row lock plus the status re-check
// closes the race against a concurrent resolve, and the unique index on
// (bet_id, member_id) closes the race against a duplicate join.
func (s *BettingService) PlaceWager(ctx context.Context, memberID, betID uuid.UUID, selection string) (*domain.Wager, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	bet, err := s.bets.LockForUpdate(ctx, tx, betID)
	if err != nil {
		return nil, domain.ErrInternal("lock bet", err)
	}
	if bet == nil {
		return nil, domain.ErrNotFound("bet", betID.String())
	}
	if bet.Status != domain.BetOpen {
		return nil, domain.ErrConflict("bet " + betID.String() + " is not open for wagers")
	}

	if bet.LeagueID != nil {
		ok, err := s.leagues.IsMember(ctx, tx, *bet.LeagueID, memberID)
		if err != nil {
			return nil, domain.ErrInternal("check league membership", err)
		}
		if !ok {
			return nil, domain.ErrForbidden("member is not in the bet's league")
		}
	}

	selection = strings.TrimSpace(selection)
	if selection == "" {
		return nil, domain.ErrValidation("selection is required")
	}
	if bet.IsMoneyline() && !bet.HasOption(selection) {
		return nil, domain.ErrValidation("selection must be one of the bet's options")
	}

	staked, err := s.ledgers.DailyStakeTotal(ctx, tx, memberID, startOfDayUTC())
	if err != nil {
		return nil, domain.ErrInternal("sum daily stakes", err)
	}
	if eval := policy.Evaluate(s.limits, bet.Stake, staked); !eval.Allowed {
		return nil, domain.ErrLimitExceeded(fmt.Sprintf(
			"%s limit breached: %d requested against a cap of %d",
			eval.BreachedLimit, eval.RequestedAmt, eval.LimitValue))
	}

	wager := &domain.Wager{
		ID:        uuid.New(),
		BetID:     betID,
		MemberID:  memberID,
		Selection: selection,
		Stake:     bet.Stake,
		Status:    domain.WagerPending,
		CreatedAt: time.Now(),
	}

	if err := s.wagers.Insert(ctx, tx, wager); err != nil {
		return nil, err
	}

	if _, _, err := s.engine.ExecuteStake(ctx, tx, ledger.StakeParams{Wager: wager}); err != nil {
		return nil, err
	}

	if err := s.outbox.Insert(ctx, tx, domain.NewWagerPlacedEvent(wager)); err != nil {
		return nil, domain.ErrInternal("wager placed event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	infra.WagersPlaced.Inc()
	s.logger.Info("wager placed", "wager_id", wager.ID, "bet_id", betID, "member_id", memberID)
	return wager, nil
}

// Close halts wagering on a bet without settling it.
func (s *BettingService) Close(ctx context.Context, requesterID, betID uuid.UUID) (*domain.Bet, error) {
	bet, commissionerID, err := s.loadBetWithCommissioner(ctx, betID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.Authorize(bet, requesterID, commissionerID); err != nil {
		return nil, err
	}
	if err := lifecycle.ValidateClose(bet); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	updated, err := s.bets.TransitionStatus(ctx, tx, betID, []domain.BetStatus{domain.BetOpen}, domain.BetClosed)
	if err != nil {
		return nil, domain.ErrInternal("close bet", err)
	}
	if updated == nil {
		return nil, domain.ErrConflict("bet " + betID.String() + " cannot be closed from its current status")
	}

	if err := s.outbox.Insert(ctx, tx, domain.NewBetLifecycleEvent(updated, domain.EventBetClosed)); err != nil {
		return nil, domain.ErrInternal("bet closed event", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}
	return updated, nil
}

// Dispute freezes an unresolved bet pending manual resolution.
func (s *BettingService) Dispute(ctx context.Context, requesterID, betID uuid.UUID) (*domain.Bet, error) {
	bet, err := s.bets.FindByID(ctx, s.pool, betID)
	if err != nil {
		return nil, domain.ErrInternal("find bet", err)
	}
	if bet == nil {
		return nil, domain.ErrNotFound("bet", betID.String())
	}

	// Any member with a wager on the bet, plus the creator, may dispute.
	if requesterID != bet.CreatorID {
		w, err := s.wagers.FindByBetAndMember(ctx, s.pool, betID, requesterID)
		if err != nil {
			return nil, domain.ErrInternal("find wager", err)
		}
		if w == nil {
			return nil, domain.ErrForbidden("only participants may dispute a bet")
		}
	}

	if err := lifecycle.ValidateDispute(bet); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	updated, err := s.bets.TransitionStatus(ctx, tx, betID,
		[]domain.BetStatus{domain.BetOpen, domain.BetClosed}, domain.BetDisputed)
	if err != nil {
		return nil, domain.ErrInternal("dispute bet", err)
	}
	if updated == nil {
		return nil, domain.ErrAlreadySettled(betID.String())
	}

	if err := s.outbox.Insert(ctx, tx, domain.NewBetLifecycleEvent(updated, domain.EventBetDisputed)); err != nil {
		return nil, domain.ErrInternal("bet disputed event", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}
	return updated, nil
}

// ResolveResult is the response to a successful resolution.
type ResolveResult struct {
	Bet       *domain.Bet               `json:"bet"`
	Winner    string                    `json:"winner"`
	Pot       int64                     `json:"pot"`
	Unclaimed int64                     `json:"unclaimed"`
	Outcomes  []settlement.WagerOutcome `json:"outcomes"`
}

// Resolve settles a bet: validates the request, claims the status gate,
// computes payouts and applies them, all in one transaction. Concurrent
// resolves serialize on the gate; exactly one wins.
func (s *BettingService) Resolve(ctx context.Context, req lifecycle.ResolutionRequest, betID uuid.UUID) (*ResolveResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	bet, err := s.bets.LockForUpdate(ctx, tx, betID)
	if err != nil {
		return nil, domain.ErrInternal("lock bet", err)
	}
	if bet == nil {
		return nil, domain.ErrNotFound("bet", betID.String())
	}

	commissionerID, err := s.commissionerOf(ctx, tx, bet)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.Authorize(bet, req.RequestedBy, commissionerID); err != nil {
		return nil, err
	}

	isCommissioner := commissionerID != nil && req.RequestedBy == *commissionerID

	var oracle *domain.Wager
	if req.Mode == domain.ResolutionCommissionerOverride && isCommissioner {
		oracle, err = s.wagers.FindByBetAndMember(ctx, tx, betID, req.RequestedBy)
		if err != nil {
			return nil, domain.ErrInternal("find commissioner wager", err)
		}
	}

	if err := lifecycle.ValidateResolution(bet, req, isCommissioner, oracle); err != nil {
		return nil, err
	}

	wagers, err := s.wagers.ListByBet(ctx, tx, betID)
	if err != nil {
		return nil, domain.ErrInternal("list wagers", err)
	}

	result, err := s.settler.Settle(bet, settlement.Resolution{
		Mode:              req.Mode,
		Winner:            req.Winner,
		DidHit:            req.DidHit,
		CommissionerWager: oracle,
	}, wagers)
	if err != nil {
		return nil, err
	}

	winner := result.Winner
	resolved, err := s.bets.MarkResolved(ctx, tx, betID, req.Mode, &winner, req.DidHit, req.RequestedBy)
	if err != nil {
		return nil, domain.ErrInternal("mark resolved", err)
	}
	if resolved == nil {
		infra.ResolutionConflicts.Inc()
		return nil, domain.ErrAlreadySettled(betID.String())
	}

	if err := s.applier.Apply(ctx, tx, resolved, result, wagers); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	infra.BetsResolved.WithLabelValues(string(req.Mode)).Inc()
	var paid int64
	for _, o := range result.Outcomes {
		paid += o.Payout
	}
	infra.PayoutsCredited.Add(float64(paid))

	// Balances moved, so the league standings are stale.
	if resolved.LeagueID != nil {
		if err := projection.InvalidateLeaderboard(ctx, s.cache, *resolved.LeagueID); err != nil {
			s.logger.Warn("leaderboard invalidate failed", "league_id", *resolved.LeagueID, "error", err)
		}
	}

	s.logger.Info("bet resolved",
		"bet_id", betID,
		"mode", req.Mode,
		"winner", result.Winner,
		"pot", result.Pot,
		"unclaimed", result.Unclaimed,
	)

	return &ResolveResult{
		Bet:       resolved,
		Winner:    result.Winner,
		Pot:       result.Pot,
		Unclaimed: result.Unclaimed,
		Outcomes:  result.Outcomes,
	}, nil
}

// GetBet returns a bet with its wagers.
func (s *BettingService) GetBet(ctx context.Context, betID uuid.UUID) (*domain.Bet, []domain.Wager, error) {
	bet, err := s.bets.FindByID(ctx, s.pool, betID)
	if err != nil {
		return nil, nil, domain.ErrInternal("find bet", err)
	}
	if bet == nil {
		return nil, nil, domain.ErrNotFound("bet", betID.String())
	}
	wagers, err := s.wagers.ListByBet(ctx, s.pool, betID)
	if err != nil {
		return nil, nil, domain.ErrInternal("list wagers", err)
	}
	return bet, wagers, nil
}

// ListLeagueBets returns a league's bets.
func (s *BettingService) ListLeagueBets(ctx context.Context, leagueID uuid.UUID, activeOnly bool) ([]domain.Bet, error) {
	bets, err := s.bets.ListByLeague(ctx, s.pool, leagueID, activeOnly)
	if err != nil {
		return nil, domain.ErrInternal("list bets", err)
	}
	return bets, nil
}

func (s *BettingService) loadBetWithCommissioner(ctx context.Context, betID uuid.UUID) (*domain.Bet, *uuid.UUID, error) {
	bet, err := s.bets.FindByID(ctx, s.pool, betID)
	if err != nil {
		return nil, nil, domain.ErrInternal("find bet", err)
	}
	if bet == nil {
		return nil, nil, domain.ErrNotFound("bet", betID.String())
	}
	commissionerID, err := s.commissionerOf(ctx, s.pool, bet)
	if err != nil {
		return nil, nil, err
	}
	return bet, commissionerID, nil
}

func (s *BettingService) commissionerOf(ctx context.Context, db repository.DBTX, bet *domain.Bet) (*uuid.UUID, error) {
	if bet.LeagueID == nil {
		return nil, nil
	}
	league, err := s.leagues.FindByID(ctx, db, *bet.LeagueID)
	if err != nil {
		return nil, domain.ErrInternal("find league", err)
	}
	if league == nil {
		return nil, nil
	}
	id := league.CommissionerID
	return &id, nil
}
