package sectors

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/spyglass/internal/history"
)

// Handler handles sector rotation HTTP requests
type Handler struct {
	engine *Engine
	log    zerolog.Logger
}

// NewHandler creates a new sector rotation handler
func NewHandler(engine *Engine, log zerolog.Logger) *Handler {
	return &Handler{
		engine: engine,
		log:    log.With().Str("handler", "sectors").Logger(),
	}
}

// RegisterRoutes registers all sector routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/sectors", func(r chi.Router) {
		r.Get("/", h.HandleListSectors)
		r.Get("/rotation", h.HandleRotation)
	})
}

// HandleListSectors handles GET /api/sectors
func (h *Handler) HandleListSectors(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": DefaultSectors,
	})
}

// HandleRotation handles GET /api/sectors/rotation?sectors=XLK,XLF
// Without the sectors parameter the default sector ETF set is analyzed.
func (h *Handler) HandleRotation(w http.ResponseWriter, r *http.Request) {
	var sectors []string
	if raw := r.URL.Query().Get("sectors"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			s = strings.ToUpper(strings.TrimSpace(s))
			if s != "" {
				sectors = append(sectors, s)
			}
		}
	}

	rotation, err := h.engine.Analyze(r.Context(), sectors)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute sector rotation")
		if errors.Is(err, history.ErrDataUnavailable) {
			http.Error(w, "Benchmark price data unavailable", http.StatusBadGateway)
			return
		}
		http.Error(w, "Failed to compute sector rotation", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": rotation,
		"metadata": map[string]interface{}{
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
