package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oddsward/platform/internal/domain"
	"github.com/oddsward/platform/internal/market"
	"github.com/oddsward/platform/internal/repository"
	"github.com/oddsward/platform/internal/service"
)

// AdminHandler exposes the trading endpoints: outcome ingest, settlement
// sweeps, and per-wager resettlement.
type AdminHandler struct {
	pool       *pgxpool.Pool
	settlement *service.SettlementService
	outcomes   repository.OutcomeRepository
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(pool *pgxpool.Pool, settlement *service.SettlementService, outcomes repository.OutcomeRepository) *AdminHandler {
	return &AdminHandler{pool: pool, settlement: settlement, outcomes: outcomes}
}

// Routes mounts the admin endpoints.
func (h *AdminHandler) Routes(r chi.Router) {
	r.Put("/outcomes/{matchID}", h.UpsertOutcome)
	r.Post("/settlements/sweep", h.Sweep)
	r.Post("/wagers/{wagerID}/settle", h.SettleWager)
	r.Post("/markets/classify", h.ClassifyMarkets)
}

// UpsertOutcome ingests an authoritative match outcome from the feed.
func (h *AdminHandler) UpsertOutcome(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	if matchID == "" {
		RespondError(w, domain.ErrValidation("missing match id"))
		return
	}

	var out domain.MatchOutcome
	if err := DecodeJSON(r, &out); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	out.MatchID = matchID
	if out.HomeScore < 0 || out.AwayScore < 0 {
		RespondError(w, domain.ErrValidation("scores must be non-negative"))
		return
	}

	if err := h.outcomes.Upsert(r.Context(), h.pool, &out); err != nil {
		RespondError(w, domain.ErrInternal("upsert outcome", err))
		return
	}
	RespondJSON(w, http.StatusOK, out)
}

// Sweep runs one settlement sweep immediately.
func (h *AdminHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	stats, err := h.settlement.Sweep(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, stats)
}

// SettleWager settles a single wager on demand.
func (h *AdminHandler) SettleWager(w http.ResponseWriter, r *http.Request) {
	wagerID, err := uuid.Parse(chi.URLParam(r, "wagerID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid wager id"))
		return
	}

	result, err := h.settlement.SettleWager(r.Context(), wagerID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}

// ClassifyMarkets buckets a match's market catalog into display categories.
func (h *AdminHandler) ClassifyMarkets(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Markets []market.CatalogMarket `json:"markets"`
	}
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	RespondJSON(w, http.StatusOK, market.Classify(input.Markets))
}
