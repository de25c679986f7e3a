package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sidebet/platform/internal/auth"
	"github.com/sidebet/platform/internal/domain"
	"github.com/sidebet/platform/internal/lifecycle"
	"github.com/sidebet/platform/internal/service"
)

// BetHandler handles bet lifecycle endpoints.
type BetHandler struct {
	svc *service.BettingService
}

// NewBetHandler creates a new BetHandler.
func NewBetHandler(svc *service.BettingService) *BetHandler {
	return &BetHandler{svc: svc}
}

// Create handles POST /bets.
func (h *BetHandler) Create(w http.ResponseWriter, r *http.Request) {
	memberID := auth.MemberFromContext(r.Context())
	if memberID == uuid.Nil {
		RespondError(w, domain.ErrUnauthorized("no subject in context"))
		return
	}

	var input service.CreateBetInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	bet, err := h.svc.CreateBet(r.Context(), memberID, input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, bet)
}

// betResponse is a bet with its wagers for GET /bets/{id}.
type betResponse struct {
	Bet    *domain.Bet    `json:"bet"`
	Wagers []domain.Wager `json:"wagers"`
}

// Get handles GET /bets/{betID}.
func (h *BetHandler) Get(w http.ResponseWriter, r *http.Request) {
	betID, err := uuid.Parse(chi.URLParam(r, "betID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid bet id"))
		return
	}

	bet, wagers, err := h.svc.GetBet(r.Context(), betID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, betResponse{Bet: bet, Wagers: wagers})
}

// Close handles POST /bets/{betID}/close.
func (h *BetHandler) Close(w http.ResponseWriter, r *http.Request) {
	memberID := auth.MemberFromContext(r.Context())
	betID, err := uuid.Parse(chi.URLParam(r, "betID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid bet id"))
		return
	}

	bet, err := h.svc.Close(r.Context(), memberID, betID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, bet)
}

// Dispute handles POST /bets/{betID}/dispute.
func (h *BetHandler) Dispute(w http.ResponseWriter, r *http.Request) {
	memberID := auth.MemberFromContext(r.Context())
	betID, err := uuid.Parse(chi.URLParam(r, "betID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid bet id"))
		return
	}

	bet, err := h.svc.Dispute(r.Context(), memberID, betID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, bet)
}

// Resolve handles POST /bets/{betID}/resolve.
func (h *BetHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	memberID := auth.MemberFromContext(r.Context())
	if memberID == uuid.Nil {
		RespondError(w, domain.ErrUnauthorized("no subject in context"))
		return
	}
	betID, err := uuid.Parse(chi.URLParam(r, "betID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid bet id"))
		return
	}

	var req lifecycle.ResolutionRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if req.Mode == "" {
		req.Mode = domain.ResolutionManual
	}
	req.RequestedBy = memberID

	result, err := h.svc.Resolve(r.Context(), req, betID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}

// PlaceWager handles POST /bets/{betID}/wagers.
func (h *BetHandler) PlaceWager(w http.ResponseWriter, r *http.Request) {
	memberID := auth.MemberFromContext(r.Context())
	if memberID == uuid.Nil {
		RespondError(w, domain.ErrUnauthorized("no subject in context"))
		return
	}
	betID, err := uuid.Parse(chi.URLParam(r, "betID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid bet id"))
		return
	}

	var input struct {
		Selection string `json:"selection"`
	}
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	wager, err := h.svc.PlaceWager(r.Context(), memberID, betID, input.Selection)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, wager)
}
