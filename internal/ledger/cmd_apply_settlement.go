package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sidebet/platform/internal/domain"
	"github.com/sidebet/platform/internal/repository"
	"github.com/sidebet/platform/internal/settlement"
)

// Applier turns a computed settlement result into durable state: wager
// transitions, payout credits, stats updates and outbox events, all within
// one caller-owned transaction. The bet status gate upstream guarantees
// this runs at most once per bet.
type Applier struct {
	engine *Engine
	wagers repository.WagerRepository
	stats  repository.StatsRepository
	outbox repository.OutboxRepository
}

// NewApplier creates a settlement applier on top of the ledger engine.
func NewApplier(
	engine *Engine,
	wagers repository.WagerRepository,
	stats repository.StatsRepository,
	outbox repository.OutboxRepository,
) *Applier {
	return &Applier{
		engine: engine,
		wagers: wagers,
		stats:  stats,
		outbox: outbox,
	}
}

// Apply persists a settlement result. The wagers slice must be the same
// set the settlement engine computed over. Any failure aborts the caller's
// transaction and the bet remains unsettled.
func (a *Applier) Apply(ctx context.Context, tx pgx.Tx, bet *domain.Bet, result *settlement.Result, wagers []domain.Wager) error {
	stakes := make(map[uuid.UUID]int64, len(wagers))
	byID := make(map[uuid.UUID]*domain.Wager, len(wagers))
	for i := range wagers {
		stakes[wagers[i].ID] = wagers[i].Stake
		byID[wagers[i].ID] = &wagers[i]
	}

	for _, outcome := range result.Outcomes {
		if err := a.wagers.MarkSettled(ctx, tx, outcome.WagerID, outcome.Status, outcome.Payout); err != nil {
			return fmt.Errorf("apply settlement: %w", err)
		}

		if outcome.Status == domain.WagerWon && outcome.Payout > 0 {
			meta, _ := json.Marshal(map[string]interface{}{
				"winner": result.Winner,
				"pot":    result.Pot,
			})
			wagerID := outcome.WagerID
			if _, _, err := a.engine.PostEntry(ctx, tx, domain.PostEntryParams{
				MemberID: outcome.MemberID,
				Type:     domain.EntryPayout,
				Delta:    outcome.Payout,
				BetID:    &bet.ID,
				WagerID:  &wagerID,
				Metadata: meta,
			}); err != nil {
				return fmt.Errorf("credit payout: %w", err)
			}
		}

		stake := stakes[outcome.WagerID]
		pnl := outcome.Payout - stake
		won := outcome.Status == domain.WagerWon
		if err := a.stats.ApplyResult(ctx, tx, outcome.MemberID, stake, pnl, won); err != nil {
			return fmt.Errorf("apply stats: %w", err)
		}

		if w := byID[outcome.WagerID]; w != nil {
			settled := *w
			settled.Status = outcome.Status
			payout := outcome.Payout
			settled.Payout = &payout
			now := time.Now()
			settled.SettledAt = &now
			if err := a.outbox.Insert(ctx, tx, domain.NewWagerSettledEvent(&settled)); err != nil {
				return fmt.Errorf("wager settled event: %w", err)
			}
		}
	}

	if result.PotReturn != nil && result.PotReturn.Amount > 0 {
		meta, _ := json.Marshal(map[string]string{"reason": "unclaimed_pot"})
		if _, _, err := a.engine.PostEntry(ctx, tx, domain.PostEntryParams{
			MemberID: result.PotReturn.MemberID,
			Type:     domain.EntryPotReturn,
			Delta:    result.PotReturn.Amount,
			BetID:    &bet.ID,
			Metadata: meta,
		}); err != nil {
			return fmt.Errorf("return pot: %w", err)
		}
	}

	if err := a.outbox.Insert(ctx, tx, domain.NewBetResolvedEvent(bet, result.Pot, result.Unclaimed)); err != nil {
		return fmt.Errorf("bet resolved event: %w", err)
	}
	return nil
}
