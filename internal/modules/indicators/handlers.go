package indicators

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

// Handler handles indicator HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new indicators handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "indicators").Logger(),
	}
}

// RegisterRoutes registers all indicator routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/indicators", func(r chi.Router) {
		r.Get("/{ticker}", h.HandleTickerIndicators)
	})
}

// HandleTickerIndicators handles GET /api/indicators/{ticker}
func (h *Handler) HandleTickerIndicators(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))
	if ticker == "" {
		http.Error(w, "Ticker is required", http.StatusBadRequest)
		return
	}

	result, err := h.service.ForTicker(r.Context(), ticker)
	if err != nil {
		if errors.Is(err, history.ErrDataUnavailable) {
			http.Error(w, "No price data for ticker", http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Str("ticker", ticker).Msg("Failed to compute indicators")
		http.Error(w, "Failed to compute indicators", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": result,
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
