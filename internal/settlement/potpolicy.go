package settlement

import (
	"github.com/google/uuid"

	"github.com/sidebet/platform/internal/domain"
)

// PotReturn credits an unclaimed pot to one member.
type PotReturn struct {
	MemberID uuid.UUID `json:"member_id"`
	Amount   int64     `json:"amount"`
}

// PotPolicy decides the disposition of a pot no wager won. The engine never
// assumes an implicit default; the deployment picks a policy.
type PotPolicy interface {
	DisposeUnclaimed(bet *domain.Bet, pot int64) *PotReturn
}

// HoldPot keeps an unclaimed pot undistributed. It stays reported as
// Unclaimed on the settlement result.
type HoldPot struct{}

func (HoldPot) DisposeUnclaimed(*domain.Bet, int64) *PotReturn { return nil }

// ReturnToCreator credits an unclaimed pot back to the bet's creator.
type ReturnToCreator struct{}

func (ReturnToCreator) DisposeUnclaimed(bet *domain.Bet, pot int64) *PotReturn {
	return &PotReturn{MemberID: bet.CreatorID, Amount: pot}
}
