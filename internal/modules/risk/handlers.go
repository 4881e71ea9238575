package risk

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/spyglass/internal/history"
)

// Handler handles risk metrics HTTP requests
type Handler struct {
	engine *Engine
	log    zerolog.Logger
}

// NewHandler creates a new risk metrics handler
func NewHandler(engine *Engine, log zerolog.Logger) *Handler {
	return &Handler{
		engine: engine,
		log:    log.With().Str("handler", "risk").Logger(),
	}
}

// RegisterRoutes registers all risk metrics routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/risk", func(r chi.Router) {
		r.Post("/metrics", h.HandlePortfolioMetrics)
	})
}

type metricsRequest struct {
	Holdings []Holding `json:"holdings"`
	Period   string    `json:"period"`
}

// HandlePortfolioMetrics handles POST /api/risk/metrics
func (h *Handler) HandlePortfolioMetrics(w http.ResponseWriter, r *http.Request) {
	var req metricsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Period == "" {
		req.Period = string(history.Period3Mo)
	}
	period, err := history.ParsePeriod(req.Period)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := ValidateHoldings(req.Holdings); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	metrics, err := h.engine.PortfolioMetrics(r.Context(), req.Holdings, period)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute portfolio metrics")
		http.Error(w, "Failed to compute portfolio metrics", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": metrics,
		"metadata": map[string]interface{}{
			"period":    string(period),
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
