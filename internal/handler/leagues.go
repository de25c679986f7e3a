package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sidebet/platform/internal/auth"
	"github.com/sidebet/platform/internal/domain"
	"github.com/sidebet/platform/internal/service"
)

// LeagueHandler handles league and leaderboard endpoints.
type LeagueHandler struct {
	leagues *service.LeagueService
	betting *service.BettingService
}

// NewLeagueHandler creates a new LeagueHandler.
func NewLeagueHandler(leagues *service.LeagueService, betting *service.BettingService) *LeagueHandler {
	return &LeagueHandler{leagues: leagues, betting: betting}
}

// Create handles POST /leagues.
func (h *LeagueHandler) Create(w http.ResponseWriter, r *http.Request) {
	memberID := auth.MemberFromContext(r.Context())
	if memberID == uuid.Nil {
		RespondError(w, domain.ErrUnauthorized("no subject in context"))
		return
	}

	var input service.CreateLeagueInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	league, err := h.leagues.CreateLeague(r.Context(), memberID, input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, league)
}

// Join handles POST /leagues/{leagueID}/join.
func (h *LeagueHandler) Join(w http.ResponseWriter, r *http.Request) {
	memberID := auth.MemberFromContext(r.Context())
	leagueID, err := uuid.Parse(chi.URLParam(r, "leagueID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid league id"))
		return
	}

	if err := h.leagues.Join(r.Context(), leagueID, memberID); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": "joined"})
}

// Leaderboard handles GET /leagues/{leagueID}/leaderboard.
func (h *LeagueHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	leagueID, err := uuid.Parse(chi.URLParam(r, "leagueID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid league id"))
		return
	}

	rows, err := h.leagues.Leaderboard(r.Context(), leagueID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": rows})
}

// ListBets handles GET /leagues/{leagueID}/bets (?active=true filters to
// unresolved bets).
func (h *LeagueHandler) ListBets(w http.ResponseWriter, r *http.Request) {
	leagueID, err := uuid.Parse(chi.URLParam(r, "leagueID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid league id"))
		return
	}

	activeOnly := r.URL.Query().Get("active") == "true"
	bets, err := h.betting.ListLeagueBets(r.Context(), leagueID, activeOnly)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"bets": bets})
}
