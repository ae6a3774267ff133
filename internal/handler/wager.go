package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/oddsward/platform/internal/auth"
	"github.com/oddsward/platform/internal/domain"
	"github.com/oddsward/platform/internal/repository"
	"github.com/oddsward/platform/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

// WagerHandler exposes the player-facing wager endpoints.
type WagerHandler struct {
	pool      *pgxpool.Pool
	placement *service.PlacementService
	wagers    repository.WagerRepository
}

// NewWagerHandler creates a WagerHandler.
func NewWagerHandler(pool *pgxpool.Pool, placement *service.PlacementService, wagers repository.WagerRepository) *WagerHandler {
	return &WagerHandler{pool: pool, placement: placement, wagers: wagers}
}

// Routes mounts the wager endpoints.
func (h *WagerHandler) Routes(r chi.Router) {
	r.Post("/", h.Place)
	r.Get("/", h.List)
	r.Get("/{wagerID}", h.Get)
}

// Place accepts a new wager for the authenticated player.
func (h *WagerHandler) Place(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectID(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var input service.PlaceInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	wager, err := h.placement.Place(r.Context(), userID, input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, wager)
}

// List returns the authenticated player's wagers, newest first.
func (h *WagerHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectID(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	wagers, err := h.wagers.ListByUser(r.Context(), h.pool, userID, 100)
	if err != nil {
		RespondError(w, domain.ErrInternal("list wagers", err))
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"wagers": wagers})
}

// Get returns one wager, only to its owner.
func (h *WagerHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectID(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	wagerID, err := uuid.Parse(chi.URLParam(r, "wagerID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid wager id"))
		return
	}

	wager, err := h.wagers.FindByID(r.Context(), h.pool, wagerID)
	if err != nil {
		RespondError(w, domain.ErrInternal("find wager", err))
		return
	}
	if wager == nil || wager.UserID != userID {
		RespondError(w, domain.ErrNotFound("wager", wagerID.String()))
		return
	}
	RespondJSON(w, http.StatusOK, wager)
}

// subjectID resolves the authenticated subject to a user id.
func subjectID(r *http.Request) (uuid.UUID, error) {
	sub := auth.SubjectFromContext(r.Context())
	if sub == "" {
		return uuid.Nil, domain.ErrUnauthorized("no auth context")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, domain.ErrUnauthorized("invalid subject")
	}
	return id, nil
}
