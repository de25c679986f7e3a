// Package lifecycle governs bet state transitions and validates resolution
// requests before they reach the settlement engine.
package lifecycle

import (
	"github.com/google/uuid"

	"github.com/sidebet/platform/internal/domain"
)

// transitions is the full bet state graph. resolved is terminal; disputed
// freezes the bet pending manual resolution.
var transitions = map[domain.BetStatus]map[domain.BetStatus]bool{
	domain.BetOpen: {
		domain.BetClosed:   true,
		domain.BetResolved: true,
		domain.BetDisputed: true,
	},
	domain.BetClosed: {
		domain.BetResolved: true,
		domain.BetDisputed: true,
	},
}

// CanTransition reports whether from -> to is a legal bet status change.
func CanTransition(from, to domain.BetStatus) bool {
	return transitions[from][to]
}

// ResolutionRequest is the POST /bets/{id}/resolve body plus the
// request-scoped requester identity. Identity is always passed explicitly,
// never read from ambient state.
type ResolutionRequest struct {
	Winner      *string               `json:"winner,omitempty"`
	DidHit      *bool                 `json:"did_hit,omitempty"`
	IsFinished  bool                  `json:"is_finished"`
	Mode        domain.ResolutionMode `json:"mode"`
	Note        *string               `json:"note,omitempty"`
	RequestedBy uuid.UUID             `json:"-"`
}

// Authorize checks that the requester may resolve the bet: only the bet's
// creator or the league commissioner qualify.
func Authorize(bet *domain.Bet, requester uuid.UUID, commissionerID *uuid.UUID) error {
	if requester == bet.CreatorID {
		return nil
	}
	if commissionerID != nil && requester == *commissionerID {
		return nil
	}
	return domain.ErrForbidden("only the bet creator or the league commissioner may resolve a bet")
}

// ValidateResolution checks a resolution request against the bet's current
// state. On any error the bet stays unchanged. commissionerWager is the
// requester's own wager on the bet, located by the caller; it may be nil.
func ValidateResolution(bet *domain.Bet, req ResolutionRequest, isCommissioner bool, commissionerWager *domain.Wager) error {
	if !bet.Resolvable() {
		return domain.ErrAlreadySettled(bet.ID.String())
	}
	if !req.IsFinished {
		return domain.ErrValidation("resolution requires is_finished; use close to halt wagering early")
	}

	switch req.Mode {
	case domain.ResolutionAutomatic, domain.ResolutionManual:
		if req.Winner == nil || *req.Winner == "" {
			if bet.IsMoneyline() {
				return domain.ErrValidation("a winner is required to finish a moneyline bet")
			}
			return domain.ErrValidation("the observed outcome is required to finish a target-proximity bet")
		}
	case domain.ResolutionCommissionerOverride:
		if !isCommissioner {
			return domain.ErrForbidden("commissioner override may only be requested by the commissioner")
		}
		if commissionerWager == nil {
			return domain.ErrMissingOracle(bet.ID.String())
		}
		if req.DidHit == nil {
			return domain.ErrValidation("commissioner override requires did_hit")
		}
		if !*req.DidHit {
			// A miss needs an explicit outcome whenever "the other option"
			// is undefined.
			needsExplicit := bet.Type == domain.BetTargetProximity || len(bet.Options) > 2
			if needsExplicit && (req.Winner == nil || *req.Winner == "") {
				return domain.ErrInvalidOutcome("miss resolution requires an explicit winner or outcome")
			}
		}
	default:
		return domain.ErrValidation("unknown resolution mode: " + string(req.Mode))
	}

	return nil
}

// ValidateClose checks the open -> closed transition: wagering halts but no
// payouts occur.
func ValidateClose(bet *domain.Bet) error {
	if !CanTransition(bet.Status, domain.BetClosed) {
		return domain.ErrConflict("bet " + bet.ID.String() + " cannot be closed from status " + string(bet.Status))
	}
	return nil
}

// ValidateDispute checks the open|closed -> disputed transition.
func ValidateDispute(bet *domain.Bet) error {
	if !CanTransition(bet.Status, domain.BetDisputed) {
		return domain.ErrConflict("bet " + bet.ID.String() + " cannot be disputed from status " + string(bet.Status))
	}
	return nil
}
