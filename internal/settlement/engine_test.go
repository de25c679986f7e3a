package settlement

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidebet/platform/internal/domain"
)

func newBet(betType domain.BetType, options []string, stake int64) *domain.Bet {
	return &domain.Bet{
		ID:        uuid.New(),
		CreatorID: uuid.New(),
		EventID:   uuid.New(),
		Type:      betType,
		Title:     "test bet",
		Options:   options,
		Stake:     stake,
		Status:    domain.BetOpen,
	}
}

func newWager(bet *domain.Bet, selection string) domain.Wager {
	return domain.Wager{
		ID:        uuid.New(),
		BetID:     bet.ID,
		MemberID:  uuid.New(),
		Selection: selection,
		Stake:     bet.Stake,
		Status:    domain.WagerPending,
	}
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func manualWinner(winner string) Resolution {
	return Resolution{Mode: domain.ResolutionManual, Winner: strPtr(winner)}
}

func outcomeFor(t *testing.T, result *Result, w domain.Wager) WagerOutcome {
	t.Helper()
	for _, out := range result.Outcomes {
		if out.WagerID == w.ID {
			return out
		}
	}
	t.Fatalf("no outcome for wager %s", w.ID)
	return WagerOutcome{}
}

// --- Moneyline ---

func TestSettleMoneyline(t *testing.T) {
	engine := NewEngine(nil)

	t.Run("single winner takes the whole pot", func(t *testing.T) {
		bet := newBet(domain.BetMoneyline, []string{"Lakers", "Celtics"}, 100)
		w1 := newWager(bet, "Lakers")
		w2 := newWager(bet, "Celtics")
		w3 := newWager(bet, "Celtics")

		result, err := engine.Settle(bet, manualWinner("Lakers"), []domain.Wager{w1, w2, w3})
		require.NoError(t, err)

		assert.Equal(t, int64(300), result.Pot)
		assert.Equal(t, domain.WagerWon, outcomeFor(t, result, w1).Status)
		assert.Equal(t, int64(300), outcomeFor(t, result, w1).Payout)
		assert.Equal(t, domain.WagerLost, outcomeFor(t, result, w2).Status)
		assert.Equal(t, int64(0), outcomeFor(t, result, w2).Payout)
		assert.Equal(t, int64(0), result.Unclaimed)
	})

	t.Run("pari-mutuel split among multiple winners", func(t *testing.T) {
		bet := newBet(domain.BetMoneyline, []string{"yes", "no"}, 100)
		w1 := newWager(bet, "yes")
		w2 := newWager(bet, "yes")
		w3 := newWager(bet, "no")
		w4 := newWager(bet, "no")

		result, err := engine.Settle(bet, manualWinner("yes"), []domain.Wager{w1, w2, w3, w4})
		require.NoError(t, err)

		// pot 400 split across winning stake 200: each winner gets 200.
		assert.Equal(t, int64(200), outcomeFor(t, result, w1).Payout)
		assert.Equal(t, int64(200), outcomeFor(t, result, w2).Payout)
		assert.Equal(t, int64(0), result.Unclaimed)
	})

	t.Run("rounding remainder is dropped, never invented", func(t *testing.T) {
		bet := newBet(domain.BetMoneyline, []string{"yes", "no"}, 100)
		wagers := []domain.Wager{
			newWager(bet, "yes"), newWager(bet, "yes"), newWager(bet, "yes"),
			newWager(bet, "no"),
		}

		result, err := engine.Settle(bet, manualWinner("yes"), wagers)
		require.NoError(t, err)

		// pot 400 over winning stake 300: 133 each, 1 cent left over.
		var paid int64
		for _, out := range result.Outcomes {
			if out.Status == domain.WagerWon {
				assert.Equal(t, int64(133), out.Payout)
			}
			paid += out.Payout
		}
		assert.Equal(t, int64(399), paid)
		assert.Equal(t, int64(1), result.Unclaimed)
		assert.LessOrEqual(t, paid, result.Pot)
	})

	t.Run("every wager gets exactly one terminal status", func(t *testing.T) {
		bet := newBet(domain.BetNWayMoneyline, []string{"a", "b", "c"}, 50)
		wagers := []domain.Wager{newWager(bet, "a"), newWager(bet, "b"), newWager(bet, "c")}

		result, err := engine.Settle(bet, manualWinner("b"), wagers)
		require.NoError(t, err)

		require.Len(t, result.Outcomes, 3)
		for _, out := range result.Outcomes {
			assert.Contains(t, []domain.WagerStatus{domain.WagerWon, domain.WagerLost}, out.Status)
		}
	})

	t.Run("winner not among options is InvalidOutcome", func(t *testing.T) {
		bet := newBet(domain.BetMoneyline, []string{"yes", "no"}, 100)
		_, err := engine.Settle(bet, manualWinner("maybe"), []domain.Wager{newWager(bet, "yes")})
		require.Error(t, err)
		assert.Equal(t, "INVALID_OUTCOME", err.(*domain.AppError).Code)
	})

	t.Run("missing winner is a validation error", func(t *testing.T) {
		bet := newBet(domain.BetMoneyline, []string{"yes", "no"}, 100)
		_, err := engine.Settle(bet, Resolution{Mode: domain.ResolutionManual}, []domain.Wager{newWager(bet, "yes")})
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", err.(*domain.AppError).Code)
	})
}

// --- Target proximity ---

func TestSettleTargetProximity(t *testing.T) {
	engine := NewEngine(nil)

	t.Run("closest guess wins outright", func(t *testing.T) {
		bet := newBet(domain.BetTargetProximity, []string{"100"}, 100)
		w90 := newWager(bet, "90")
		w95 := newWager(bet, "95")
		w110 := newWager(bet, "110")

		result, err := engine.Settle(bet, manualWinner("100"), []domain.Wager{w90, w95, w110})
		require.NoError(t, err)

		// 95 is distance 5; 90 and 110 tie at distance 10 but do not win.
		assert.Equal(t, domain.WagerWon, outcomeFor(t, result, w95).Status)
		assert.Equal(t, int64(300), outcomeFor(t, result, w95).Payout)
		assert.Equal(t, domain.WagerLost, outcomeFor(t, result, w90).Status)
		assert.Equal(t, domain.WagerLost, outcomeFor(t, result, w110).Status)
	})

	t.Run("equidistant guesses split the pot", func(t *testing.T) {
		bet := newBet(domain.BetTargetProximity, []string{"100"}, 100)
		w95 := newWager(bet, "95")
		w105 := newWager(bet, "105")

		result, err := engine.Settle(bet, manualWinner("100"), []domain.Wager{w95, w105})
		require.NoError(t, err)

		assert.Equal(t, domain.WagerWon, outcomeFor(t, result, w95).Status)
		assert.Equal(t, domain.WagerWon, outcomeFor(t, result, w105).Status)
		assert.Equal(t, int64(100), outcomeFor(t, result, w95).Payout)
		assert.Equal(t, int64(100), outcomeFor(t, result, w105).Payout)
	})

	t.Run("decimal guesses compare exactly", func(t *testing.T) {
		bet := newBet(domain.BetTargetProximity, []string{"100"}, 100)
		wClose := newWager(bet, "99.9")
		wFar := newWager(bet, "100.2")

		result, err := engine.Settle(bet, manualWinner("100"), []domain.Wager{wClose, wFar})
		require.NoError(t, err)

		assert.Equal(t, domain.WagerWon, outcomeFor(t, result, wClose).Status)
		assert.Equal(t, domain.WagerLost, outcomeFor(t, result, wFar).Status)
	})

	t.Run("non-numeric guess always loses", func(t *testing.T) {
		bet := newBet(domain.BetTargetProximity, []string{"100"}, 100)
		wBad := newWager(bet, "around fifty")
		wOK := newWager(bet, "500")

		result, err := engine.Settle(bet, manualWinner("100"), []domain.Wager{wBad, wOK})
		require.NoError(t, err)

		assert.Equal(t, domain.WagerLost, outcomeFor(t, result, wBad).Status)
		assert.Equal(t, domain.WagerWon, outcomeFor(t, result, wOK).Status)
	})

	t.Run("all guesses non-numeric means zero winners", func(t *testing.T) {
		bet := newBet(domain.BetTargetProximity, []string{"100"}, 100)
		wagers := []domain.Wager{newWager(bet, "high"), newWager(bet, "low")}

		result, err := engine.Settle(bet, manualWinner("100"), wagers)
		require.NoError(t, err)

		for _, out := range result.Outcomes {
			assert.Equal(t, domain.WagerLost, out.Status)
		}
		assert.Equal(t, result.Pot, result.Unclaimed)
	})

	t.Run("non-numeric outcome is InvalidOutcome", func(t *testing.T) {
		bet := newBet(domain.BetTargetProximity, []string{"100"}, 100)
		_, err := engine.Settle(bet, manualWinner("a lot"), []domain.Wager{newWager(bet, "90")})
		require.Error(t, err)
		assert.Equal(t, "INVALID_OUTCOME", err.(*domain.AppError).Code)
	})
}

// --- Commissioner override ---

func TestSettleCommissionerOverride(t *testing.T) {
	engine := NewEngine(nil)

	override := func(oracle *domain.Wager, didHit bool, winner *string) Resolution {
		return Resolution{
			Mode:              domain.ResolutionCommissionerOverride,
			DidHit:            boolPtr(didHit),
			Winner:            winner,
			CommissionerWager: oracle,
		}
	}

	t.Run("hit uses the commissioner's selection as winner", func(t *testing.T) {
		bet := newBet(domain.BetMoneyline, []string{"yes", "no"}, 100)
		oracle := newWager(bet, "yes")
		other := newWager(bet, "no")

		result, err := engine.Settle(bet, override(&oracle, true, nil), []domain.Wager{oracle, other})
		require.NoError(t, err)

		assert.Equal(t, "yes", result.Winner)
		assert.Equal(t, domain.WagerWon, outcomeFor(t, result, oracle).Status)
	})

	t.Run("miss on a two-option bet flips to the other option", func(t *testing.T) {
		bet := newBet(domain.BetMoneyline, []string{"yes", "no"}, 100)
		oracle := newWager(bet, "yes")
		other := newWager(bet, "no")

		result, err := engine.Settle(bet, override(&oracle, false, nil), []domain.Wager{oracle, other})
		require.NoError(t, err)

		assert.Equal(t, "no", result.Winner)
		assert.Equal(t, domain.WagerLost, outcomeFor(t, result, oracle).Status)
		assert.Equal(t, domain.WagerWon, outcomeFor(t, result, other).Status)
	})

	t.Run("miss with more than 2 options requires an explicit winner", func(t *testing.T) {
		bet := newBet(domain.BetNWayMoneyline, []string{"a", "b", "c"}, 100)
		oracle := newWager(bet, "a")

		_, err := engine.Settle(bet, override(&oracle, false, nil), []domain.Wager{oracle})
		require.Error(t, err)
		assert.Equal(t, "INVALID_OUTCOME", err.(*domain.AppError).Code)

		result, err := engine.Settle(bet, override(&oracle, false, strPtr("c")), []domain.Wager{oracle})
		require.NoError(t, err)
		assert.Equal(t, "c", result.Winner)
	})

	t.Run("target-proximity hit uses the oracle guess as outcome", func(t *testing.T) {
		bet := newBet(domain.BetTargetProximity, []string{"100"}, 100)
		oracle := newWager(bet, "100")
		near := newWager(bet, "105")

		result, err := engine.Settle(bet, override(&oracle, true, nil), []domain.Wager{oracle, near})
		require.NoError(t, err)

		assert.Equal(t, "100", result.Winner)
		assert.Equal(t, domain.WagerWon, outcomeFor(t, result, oracle).Status)
		assert.Equal(t, domain.WagerLost, outcomeFor(t, result, near).Status)
	})

	t.Run("target-proximity miss requires the actual outcome", func(t *testing.T) {
		bet := newBet(domain.BetTargetProximity, []string{"100"}, 100)
		oracle := newWager(bet, "100")

		_, err := engine.Settle(bet, override(&oracle, false, nil), []domain.Wager{oracle})
		require.Error(t, err)
		assert.Equal(t, "INVALID_OUTCOME", err.(*domain.AppError).Code)

		far := newWager(bet, "300")
		result, err := engine.Settle(bet, override(&oracle, false, strPtr("120")), []domain.Wager{oracle, far})
		require.NoError(t, err)
		assert.Equal(t, domain.WagerWon, outcomeFor(t, result, oracle).Status)
	})

	t.Run("no commissioner wager is MissingOracle", func(t *testing.T) {
		bet := newBet(domain.BetMoneyline, []string{"yes", "no"}, 100)
		w := newWager(bet, "yes")

		_, err := engine.Settle(bet, override(nil, true, nil), []domain.Wager{w})
		require.Error(t, err)
		assert.Equal(t, "MISSING_ORACLE", err.(*domain.AppError).Code)
	})

	t.Run("oracle wager from another bet is MissingOracle", func(t *testing.T) {
		bet := newBet(domain.BetMoneyline, []string{"yes", "no"}, 100)
		otherBet := newBet(domain.BetMoneyline, []string{"yes", "no"}, 100)
		stray := newWager(otherBet, "yes")

		_, err := engine.Settle(bet, override(&stray, true, nil), []domain.Wager{newWager(bet, "no")})
		require.Error(t, err)
		assert.Equal(t, "MISSING_ORACLE", err.(*domain.AppError).Code)
	})

	t.Run("missing did_hit is a validation error", func(t *testing.T) {
		bet := newBet(domain.BetMoneyline, []string{"yes", "no"}, 100)
		oracle := newWager(bet, "yes")

		_, err := engine.Settle(bet,
			Resolution{Mode: domain.ResolutionCommissionerOverride, CommissionerWager: &oracle},
			[]domain.Wager{oracle})
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", err.(*domain.AppError).Code)
	})
}

// --- Guards and edge cases ---

func TestSettleGuards(t *testing.T) {
	engine := NewEngine(nil)

	t.Run("resolved bet refuses with AlreadySettled", func(t *testing.T) {
		bet := newBet(domain.BetMoneyline, []string{"yes", "no"}, 100)
		bet.Status = domain.BetResolved

		_, err := engine.Settle(bet, manualWinner("yes"), nil)
		require.Error(t, err)
		assert.Equal(t, "ALREADY_SETTLED", err.(*domain.AppError).Code)
	})

	t.Run("disputed bet refuses with AlreadySettled", func(t *testing.T) {
		bet := newBet(domain.BetMoneyline, []string{"yes", "no"}, 100)
		bet.Status = domain.BetDisputed

		_, err := engine.Settle(bet, manualWinner("yes"), nil)
		require.Error(t, err)
		assert.Equal(t, "ALREADY_SETTLED", err.(*domain.AppError).Code)
	})

	t.Run("closed bet is still resolvable", func(t *testing.T) {
		bet := newBet(domain.BetMoneyline, []string{"yes", "no"}, 100)
		bet.Status = domain.BetClosed

		_, err := engine.Settle(bet, manualWinner("yes"), []domain.Wager{newWager(bet, "yes")})
		require.NoError(t, err)
	})

	t.Run("zero wagers settles trivially", func(t *testing.T) {
		bet := newBet(domain.BetMoneyline, []string{"yes", "no"}, 100)

		result, err := engine.Settle(bet, manualWinner("yes"), nil)
		require.NoError(t, err)
		assert.Empty(t, result.Outcomes)
		assert.Equal(t, int64(0), result.Pot)
	})

	t.Run("foreign wager rejected", func(t *testing.T) {
		bet := newBet(domain.BetMoneyline, []string{"yes", "no"}, 100)
		otherBet := newBet(domain.BetMoneyline, []string{"yes", "no"}, 100)
		stray := newWager(otherBet, "yes")

		_, err := engine.Settle(bet, manualWinner("yes"), []domain.Wager{stray})
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", err.(*domain.AppError).Code)
	})
}

// --- Pot policy ---

func TestZeroWinnerPotDisposition(t *testing.T) {
	t.Run("hold policy keeps the pot unclaimed", func(t *testing.T) {
		engine := NewEngine(HoldPot{})
		bet := newBet(domain.BetMoneyline, []string{"yes", "no"}, 100)
		// Nobody picked the winner.
		wagers := []domain.Wager{newWager(bet, "no"), newWager(bet, "no")}

		result, err := engine.Settle(bet, manualWinner("yes"), wagers)
		require.NoError(t, err)

		assert.Nil(t, result.PotReturn)
		assert.Equal(t, int64(200), result.Unclaimed)
		for _, out := range result.Outcomes {
			assert.Equal(t, domain.WagerLost, out.Status)
			assert.Equal(t, int64(0), out.Payout)
		}
	})

	t.Run("return-to-creator policy credits the creator", func(t *testing.T) {
		engine := NewEngine(ReturnToCreator{})
		bet := newBet(domain.BetMoneyline, []string{"yes", "no"}, 100)
		wagers := []domain.Wager{newWager(bet, "no")}

		result, err := engine.Settle(bet, manualWinner("yes"), wagers)
		require.NoError(t, err)

		require.NotNil(t, result.PotReturn)
		assert.Equal(t, bet.CreatorID, result.PotReturn.MemberID)
		assert.Equal(t, int64(100), result.PotReturn.Amount)
		assert.Equal(t, int64(0), result.Unclaimed)
	})

	t.Run("policy not consulted when someone won", func(t *testing.T) {
		engine := NewEngine(ReturnToCreator{})
		bet := newBet(domain.BetMoneyline, []string{"yes", "no"}, 100)
		wagers := []domain.Wager{newWager(bet, "yes"), newWager(bet, "no")}

		result, err := engine.Settle(bet, manualWinner("yes"), wagers)
		require.NoError(t, err)
		assert.Nil(t, result.PotReturn)
	})
}

// sum(payouts) <= pot across a spread of winner counts.
func TestPayoutNeverExceedsPot(t *testing.T) {
	engine := NewEngine(nil)

	for winners := 0; winners <= 5; winners++ {
		bet := newBet(domain.BetMoneyline, []string{"yes", "no"}, 73)
		var wagers []domain.Wager
		for i := 0; i < winners; i++ {
			wagers = append(wagers, newWager(bet, "yes"))
		}
		for i := 0; i < 5-winners; i++ {
			wagers = append(wagers, newWager(bet, "no"))
		}

		result, err := engine.Settle(bet, manualWinner("yes"), wagers)
		require.NoError(t, err)

		var paid int64
		for _, out := range result.Outcomes {
			paid += out.Payout
		}
		assert.LessOrEqual(t, paid, result.Pot, "winners=%d", winners)
		assert.Equal(t, result.Pot, paid+result.Unclaimed, "winners=%d", winners)
	}
}
