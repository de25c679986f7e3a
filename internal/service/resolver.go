package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sidebet/platform/internal/domain"
	"github.com/sidebet/platform/internal/guard"
	"github.com/sidebet/platform/internal/lifecycle"
	"github.com/sidebet/platform/internal/provider"
	"github.com/sidebet/platform/internal/repository"
)

// ResolverWorker polls the result feed for finished sports events and
// submits automatic resolutions for their open bets.
type ResolverWorker struct {
	pool     *pgxpool.Pool
	bets     repository.BetRepository
	events   repository.EventRepository
	betting  *BettingService
	feed     *provider.ResultFeedClient
	breaker  *guard.CircuitBreaker
	interval time.Duration
	logger   *slog.Logger
}

const feedCircuitKey = "result_feed"

// NewResolverWorker creates a ResolverWorker. The circuit breaker trips
// after repeated feed failures so a dead feed stops eating the sweep.
func NewResolverWorker(
	pool *pgxpool.Pool,
	bets repository.BetRepository,
	events repository.EventRepository,
	betting *BettingService,
	feed *provider.ResultFeedClient,
	interval time.Duration,
	logger *slog.Logger,
) *ResolverWorker {
	return &ResolverWorker{
		pool:     pool,
		bets:     bets,
		events:   events,
		betting:  betting,
		feed:     feed,
		breaker:  guard.NewCircuitBreaker(5, 2*time.Minute),
		interval: interval,
		logger:   logger,
	}
}

// Run polls until the context is cancelled.
func (w *ResolverWorker) Run(ctx context.Context) {
	w.logger.Info("resolver worker started", "interval", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("resolver worker stopped")
			return
		case <-ticker.C:
			if err := w.sweep(ctx); err != nil {
				w.logger.Error("resolver sweep failed", "error", err)
			}
		}
	}
}

// sweep checks every open sports bet once. A feed miss or a lost
// resolution race just leaves the bet for the next sweep.
func (w *ResolverWorker) sweep(ctx context.Context) error {
	bets, err := w.bets.ListOpenSportsBets(ctx, w.pool)
	if err != nil {
		return fmt.Errorf("list open sports bets: %w", err)
	}

	checked := make(map[string]*provider.FeedResult)
	for i := range bets {
		bet := &bets[i]

		key := bet.EventID.String()
		result, seen := checked[key]
		if !seen {
			event, err := w.events.FindByID(ctx, w.pool, bet.EventID)
			if err != nil || event == nil {
				w.logger.Warn("event lookup failed", "event_id", bet.EventID, "error", err)
				continue
			}

			if res := w.breaker.Check(ctx, feedCircuitKey); !res.Allowed {
				w.logger.Warn("feed circuit open, skipping event", "event_id", event.ID, "reason", res.Reason)
				continue
			}

			result, err = w.feed.CheckEvent(ctx, event.ID, describeEvent(event))
			if err != nil {
				w.breaker.RecordFailure(feedCircuitKey)
				w.logger.Warn("feed check failed", "event_id", event.ID, "error", err)
				continue
			}
			w.breaker.RecordSuccess(feedCircuitKey)
			checked[key] = result

			if result.Resolved {
				if err := w.events.RecordResult(ctx, w.pool, event.ID, result.Output); err != nil {
					w.logger.Error("record event result", "event_id", event.ID, "error", err)
				}
			}
		}
		if result == nil || !result.Resolved {
			continue
		}

		w.resolveBet(ctx, bet, result.Output)
	}
	return nil
}

func (w *ResolverWorker) resolveBet(ctx context.Context, bet *domain.Bet, outcome string) {
	winner := outcome
	req := lifecycle.ResolutionRequest{
		Winner:      &winner,
		IsFinished:  true,
		Mode:        domain.ResolutionAutomatic,
		RequestedBy: bet.CreatorID,
	}

	if _, err := w.betting.Resolve(ctx, req, bet.ID); err != nil {
		// A feed outcome that matches no option needs a human; leave the
		// bet alone and log it.
		w.logger.Warn("automatic resolution rejected", "bet_id", bet.ID, "outcome", outcome, "error", err)
		return
	}
	w.logger.Info("bet auto-resolved", "bet_id", bet.ID, "winner", outcome)
}

func describeEvent(e *domain.Event) string {
	home, away, league := "", "", ""
	if e.HomeTeam != nil {
		home = *e.HomeTeam
	}
	if e.AwayTeam != nil {
		away = *e.AwayTeam
	}
	if e.League != nil {
		league = *e.League
	}
	return fmt.Sprintf("%s vs %s (%s) on %s", home, away, league, e.StartTime.Format("2006-01-02"))
}
