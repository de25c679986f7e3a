package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sidebet/platform/internal/domain"
	"github.com/sidebet/platform/internal/repository"
)

// EventHandler handles event endpoints. Sports events are written by the
// result feed worker; custom events are created here.
type EventHandler struct {
	events repository.EventRepository
	db     repository.DBTX
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(events repository.EventRepository, db repository.DBTX) *EventHandler {
	return &EventHandler{events: events, db: db}
}

type createEventInput struct {
	Category  domain.EventCategory `json:"category"`
	League    *string              `json:"league,omitempty"`
	HomeTeam  *string              `json:"home_team,omitempty"`
	AwayTeam  *string              `json:"away_team,omitempty"`
	StartTime time.Time            `json:"start_time"`
}

// Create handles POST /events.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input createEventInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if input.Category != domain.EventSports && input.Category != domain.EventCustom {
		RespondError(w, domain.ErrValidation("category must be sports or custom"))
		return
	}
	if input.StartTime.IsZero() {
		RespondError(w, domain.ErrValidation("start_time is required"))
		return
	}

	event := &domain.Event{
		ID:        uuid.New(),
		Category:  input.Category,
		League:    input.League,
		HomeTeam:  input.HomeTeam,
		AwayTeam:  input.AwayTeam,
		Status:    domain.EventUpcoming,
		StartTime: input.StartTime,
		CreatedAt: time.Now(),
	}
	if err := h.events.Create(r.Context(), h.db, event); err != nil {
		RespondError(w, domain.ErrInternal("insert event", err))
		return
	}
	RespondJSON(w, http.StatusCreated, event)
}

// Get handles GET /events/{eventID}.
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid event id"))
		return
	}

	event, err := h.events.FindByID(r.Context(), h.db, eventID)
	if err != nil {
		RespondError(w, domain.ErrInternal("find event", err))
		return
	}
	if event == nil {
		RespondError(w, domain.ErrNotFound("event", eventID.String()))
		return
	}
	RespondJSON(w, http.StatusOK, event)
}
