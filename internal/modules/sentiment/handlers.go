package sentiment

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles sentiment HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new sentiment handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "sentiment").Logger(),
	}
}

// RegisterRoutes registers all sentiment routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/sentiment", func(r chi.Router) {
		r.Post("/score", h.HandleScoreArticles)
		r.Get("/{ticker}", h.HandleTickerSentiment)
	})
}

// HandleTickerSentiment handles GET /api/sentiment/{ticker}
func (h *Handler) HandleTickerSentiment(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))
	if ticker == "" {
		http.Error(w, "Ticker is required", http.StatusBadRequest)
		return
	}

	result, err := h.service.ForTicker(r.Context(), ticker)
	if err != nil {
		h.log.Error().Err(err).Str("ticker", ticker).Msg("Failed to score ticker sentiment")
		http.Error(w, "Failed to score ticker sentiment", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": result,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

type scoreRequest struct {
	Articles []Article `json:"articles"`
}

// HandleScoreArticles handles POST /api/sentiment/score. Scores the supplied
// articles directly, without touching the cache or the news store.
func (h *Handler) HandleScoreArticles(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	scored := make([]ScoredArticle, len(req.Articles))
	scores := make([]Score, len(req.Articles))
	for i, a := range req.Articles {
		scores[i] = ScoreArticle(a)
		scored[i] = ScoredArticle{Article: a, Sentiment: scores[i]}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"articles": scored,
			"summary":  Aggregate(scores),
		},
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
