package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sidebet/platform/internal/auth"
	"github.com/sidebet/platform/internal/domain"
	"github.com/sidebet/platform/internal/ledger"
	"github.com/sidebet/platform/internal/service"
)

// MemberHandler handles member profile, wallet and wager history endpoints.
type MemberHandler struct {
	svc *service.MemberService
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(svc *service.MemberService) *MemberHandler {
	return &MemberHandler{svc: svc}
}

// GetMe handles GET /members/me.
func (h *MemberHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	memberID := auth.MemberFromContext(r.Context())
	if memberID == uuid.Nil {
		RespondError(w, domain.ErrUnauthorized("no subject in context"))
		return
	}

	profile, err := h.svc.GetProfile(r.Context(), memberID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, profile)
}

// ListLedger handles GET /members/me/ledger.
func (h *MemberHandler) ListLedger(w http.ResponseWriter, r *http.Request) {
	memberID := auth.MemberFromContext(r.Context())
	if memberID == uuid.Nil {
		RespondError(w, domain.ErrUnauthorized("no subject in context"))
		return
	}

	entries, err := h.svc.ListLedger(r.Context(), memberID, queryLimit(r))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

// ListWagers handles GET /members/me/wagers.
func (h *MemberHandler) ListWagers(w http.ResponseWriter, r *http.Request) {
	memberID := auth.MemberFromContext(r.Context())
	if memberID == uuid.Nil {
		RespondError(w, domain.ErrUnauthorized("no subject in context"))
		return
	}

	wagers, err := h.svc.ListWagers(r.Context(), memberID, queryLimit(r))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"wagers": wagers})
}

// Adjust handles POST /members/{memberID}/adjust.
func (h *MemberHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	requesterID := auth.MemberFromContext(r.Context())
	if requesterID == uuid.Nil {
		RespondError(w, domain.ErrUnauthorized("no subject in context"))
		return
	}
	memberID, err := uuid.Parse(chi.URLParam(r, "memberID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid member id"))
		return
	}

	var input struct {
		Delta int64  `json:"delta"`
		Note  string `json:"note"`
	}
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	entry, err := h.svc.Adjust(r.Context(), requesterID, ledger.AdjustmentParams{
		MemberID: memberID,
		Delta:    input.Delta,
		Note:     input.Note,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, entry)
}

func queryLimit(r *http.Request) int {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return limit
}
