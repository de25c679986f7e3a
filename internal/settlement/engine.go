package settlement

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sidebet/platform/internal/domain"
)

// Resolution carries the outcome inputs for one settlement run.
type Resolution struct {
	Mode   domain.ResolutionMode
	Winner *string
	DidHit *bool
	// CommissionerWager is the commissioner's own wager on the bet. It is
	// the oracle for commissioner_override mode and ignored otherwise.
	CommissionerWager *domain.Wager
}

// WagerOutcome is the terminal (status, payout) pair computed for one wager.
type WagerOutcome struct {
	WagerID  uuid.UUID          `json:"wager_id"`
	MemberID uuid.UUID          `json:"member_id"`
	Status   domain.WagerStatus `json:"status"`
	Payout   int64              `json:"payout"`
}

// Result is the full settlement computation for one bet. The engine only
// computes; applying payouts to balances is the ledger's job.
type Result struct {
	BetID uuid.UUID `json:"bet_id"`
	// Winner is the effective winning option, or for target-proximity the
	// observed numeric outcome, after oracle substitution.
	Winner   string         `json:"winner"`
	Pot      int64          `json:"pot"`
	Outcomes []WagerOutcome `json:"outcomes"`
	// Unclaimed is the part of the pot not paid out: the integer-division
	// remainder, plus the whole pot when no wager won and the pot policy
	// holds it. It is never invented into payouts.
	Unclaimed int64 `json:"unclaimed"`
	// PotReturn is set when the pot policy redirects an unclaimed pot to a
	// member instead of holding it.
	PotReturn *PotReturn `json:"pot_return,omitempty"`
}

// Engine computes per-wager outcomes and payouts for a resolved bet.
// Settlement is pure computation over already-fetched data; it performs no
// I/O and is safe to re-run (the caller's status gate provides idempotency).
type Engine struct {
	potPolicy PotPolicy
}

// NewEngine creates a settlement engine. A nil policy holds unclaimed pots.
func NewEngine(policy PotPolicy) *Engine {
	if policy == nil {
		policy = HoldPot{}
	}
	return &Engine{potPolicy: policy}
}

// Settle computes the (status, payout) pair for every wager on the bet and
// the aggregate pot. Every wager receives exactly one terminal status and
// the sum of payouts never exceeds the pot.
//
// Preconditions: every wager references the bet and carries the bet's fixed
// stake (stake uniformity is a system-wide rule checked at wager creation).
func (e *Engine) Settle(bet *domain.Bet, res Resolution, wagers []domain.Wager) (*Result, error) {
	if !bet.Resolvable() {
		return nil, domain.ErrAlreadySettled(bet.ID.String())
	}
	for i := range wagers {
		if wagers[i].BetID != bet.ID {
			return nil, domain.ErrValidation(fmt.Sprintf("wager %s does not belong to bet %s", wagers[i].ID, bet.ID))
		}
	}

	winner, err := e.effectiveWinner(bet, res)
	if err != nil {
		return nil, err
	}

	// Zero wagers: settlement succeeds trivially with zero payouts.
	if len(wagers) == 0 {
		return &Result{BetID: bet.ID, Winner: winner}, nil
	}

	var won []bool
	switch {
	case bet.IsMoneyline():
		won = markMoneylineWinners(bet.Type, wagers, winner)
	case bet.Type == domain.BetTargetProximity:
		outcome, err := domain.ParseOutcome(winner)
		if err != nil {
			return nil, err
		}
		won = markProximityWinners(wagers, outcome)
	default:
		return nil, domain.ErrValidation(fmt.Sprintf("unknown bet type: %s", bet.Type))
	}

	return e.buildResult(bet, winner, wagers, won), nil
}

// effectiveWinner determines the winning option (or numeric outcome) after
// applying the commissioner-override oracle substitution.
func (e *Engine) effectiveWinner(bet *domain.Bet, res Resolution) (string, error) {
	if res.Mode != domain.ResolutionCommissionerOverride {
		if res.Winner == nil || *res.Winner == "" {
			return "", domain.ErrValidation("resolution requires a winner or outcome value")
		}
		if bet.IsMoneyline() && !bet.HasOption(*res.Winner) {
			return "", domain.ErrInvalidOutcome(fmt.Sprintf("winner %q is not an option of the bet", *res.Winner))
		}
		return *res.Winner, nil
	}

	oracle := res.CommissionerWager
	if oracle == nil || oracle.BetID != bet.ID {
		return "", domain.ErrMissingOracle(bet.ID.String())
	}
	if res.DidHit == nil {
		return "", domain.ErrValidation("commissioner override requires did_hit")
	}

	// Hit: the commissioner bet with knowledge of intent, so their own
	// selection is the outcome.
	if *res.DidHit {
		return oracle.Selection, nil
	}

	// Miss on a target-proximity bet: the oracle's guess tells us nothing
	// about the actual number, the caller must supply it.
	if bet.Type == domain.BetTargetProximity {
		if res.Winner == nil || *res.Winner == "" {
			return "", domain.ErrInvalidOutcome("target-proximity miss requires the actual numeric outcome")
		}
		return *res.Winner, nil
	}

	// Miss on a two-option bet: the winner is the other option. Beyond two
	// options "not the commissioner's pick" is ambiguous, so an explicit
	// winner is required.
	if other, ok := bet.OtherOption(oracle.Selection); ok {
		return other, nil
	}
	if res.Winner != nil && *res.Winner != "" {
		if !bet.HasOption(*res.Winner) {
			return "", domain.ErrInvalidOutcome(fmt.Sprintf("winner %q is not an option of the bet", *res.Winner))
		}
		return *res.Winner, nil
	}
	return "", domain.ErrInvalidOutcome("commissioner miss on a bet with more than 2 options requires an explicit winner")
}

// markMoneylineWinners flags every wager whose selection equals the winner.
func markMoneylineWinners(betType domain.BetType, wagers []domain.Wager, winner string) []bool {
	won := make([]bool, len(wagers))
	for i := range wagers {
		sel := domain.ParseSelection(betType, wagers[i].Selection)
		won[i] = sel.Option == winner
	}
	return won
}

// markProximityWinners flags the wager(s) at minimum absolute distance from
// the outcome. Non-numeric guesses are maximally distant and always lose.
func markProximityWinners(wagers []domain.Wager, outcome decimal.Decimal) []bool {
	won := make([]bool, len(wagers))

	var best decimal.Decimal
	haveBest := false
	dists := make([]*decimal.Decimal, len(wagers))
	for i := range wagers {
		sel := domain.ParseSelection(domain.BetTargetProximity, wagers[i].Selection)
		d, ok := sel.DistanceTo(outcome)
		if !ok {
			continue
		}
		dists[i] = &d
		if !haveBest || d.LessThan(best) {
			best = d
			haveBest = true
		}
	}
	if !haveBest {
		return won
	}
	for i := range wagers {
		won[i] = dists[i] != nil && dists[i].Equal(best)
	}
	return won
}

// buildResult computes the pari-mutuel split: each winner's payout is
// (winner's stake / sum of winning stakes) * pot. Integer division drops
// the remainder into Unclaimed.
func (e *Engine) buildResult(bet *domain.Bet, winner string, wagers []domain.Wager, won []bool) *Result {
	var pot, winSum int64
	for i := range wagers {
		pot += wagers[i].Stake
		if won[i] {
			winSum += wagers[i].Stake
		}
	}

	result := &Result{
		BetID:    bet.ID,
		Winner:   winner,
		Pot:      pot,
		Outcomes: make([]WagerOutcome, len(wagers)),
	}

	var paid int64
	for i := range wagers {
		out := WagerOutcome{
			WagerID:  wagers[i].ID,
			MemberID: wagers[i].MemberID,
			Status:   domain.WagerLost,
		}
		if won[i] && winSum > 0 {
			out.Status = domain.WagerWon
			out.Payout = wagers[i].Stake * pot / winSum
			paid += out.Payout
		}
		result.Outcomes[i] = out
	}
	result.Unclaimed = pot - paid

	// No winning wagers: the pot is not distributed; the policy decides
	// where it goes.
	if winSum == 0 && pot > 0 {
		result.PotReturn = e.potPolicy.DisposeUnclaimed(bet, pot)
		if result.PotReturn != nil {
			result.Unclaimed -= result.PotReturn.Amount
		}
	}
	return result
}
