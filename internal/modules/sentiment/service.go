package sentiment

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/aristath/spyglass/internal/cache"
)

// ScoredArticle pairs an article with its sentiment score.
type ScoredArticle struct {
	Article
	Sentiment Score `json:"sentiment"`
}

// TickerSentiment is the bundle served for one ticker.
type TickerSentiment struct {
	Ticker   string          `json:"ticker"`
	Articles []ScoredArticle `json:"articles"`
	Summary  Summary         `json:"summary"`
}

// Service scores a ticker's news, cache-aside over the store.
type Service struct {
	provider ArticleProvider
	store    *cache.Store
	log      zerolog.Logger
}

// NewService creates a sentiment service.
func NewService(provider ArticleProvider, store *cache.Store, log zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		store:    store,
		log:      log.With().Str("service", "sentiment").Logger(),
	}
}

// ForTicker fetches the ticker's recent articles, scores each one and
// aggregates them. A ticker with no articles produces a neutral summary.
func (s *Service) ForTicker(ctx context.Context, ticker string) (TickerSentiment, error) {
	key := cache.Key(cache.NamespaceSentiment, ticker)

	return cache.CacheAside(ctx, s.store, key, cache.TTLFor(cache.NamespaceSentiment),
		func(ctx context.Context) (TickerSentiment, error) {
			articles, err := s.provider.FetchArticles(ctx, ticker)
			if err != nil {
				return TickerSentiment{}, err
			}

			scored := make([]ScoredArticle, len(articles))
			scores := make([]Score, len(articles))
			for i, a := range articles {
				scores[i] = ScoreArticle(a)
				scored[i] = ScoredArticle{Article: a, Sentiment: scores[i]}
			}

			return TickerSentiment{
				Ticker:   ticker,
				Articles: scored,
				Summary:  Aggregate(scores),
			}, nil
		})
}
