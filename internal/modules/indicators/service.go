// Package indicators computes technical indicators (RSI, moving averages,
// rate of change) from daily price history.
package indicators

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/spyglass/internal/cache"
	"github.com/aristath/spyglass/internal/history"
	"github.com/aristath/spyglass/pkg/formulas"
)

// Standard lookback periods.
const (
	rsiPeriod      = 14
	smaShortPeriod = 20
	smaLongPeriod  = 50
	emaPeriod      = 200
	rocPeriod      = 10
)

// Indicators is the computed bundle for one ticker. Fields are nil when the
// available history is too short for the indicator's lookback.
type Indicators struct {
	Ticker    string   `json:"ticker"`
	LastClose float64  `json:"lastClose"`
	RSI14     *float64 `json:"rsi14"`
	SMA20     *float64 `json:"sma20"`
	SMA50     *float64 `json:"sma50"`
	EMA200    *float64 `json:"ema200"`
	ROC10     *float64 `json:"roc10"` // Percentage
}

// Service computes indicator bundles, cache-aside over the store.
type Service struct {
	provider history.SeriesProvider
	store    *cache.Store
	log      zerolog.Logger
}

// NewService creates an indicators service.
func NewService(provider history.SeriesProvider, store *cache.Store, log zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		store:    store,
		log:      log.With().Str("service", "indicators").Logger(),
	}
}

// ForTicker computes the indicator bundle from a year of history.
func (s *Service) ForTicker(ctx context.Context, ticker string) (Indicators, error) {
	key := cache.Key(cache.NamespaceIndicators, ticker)

	return cache.CacheAside(ctx, s.store, key, cache.TTLFor(cache.NamespaceIndicators),
		func(ctx context.Context) (Indicators, error) {
			series, err := s.provider.FetchSeries(ctx, ticker, history.Period1Y)
			if err != nil {
				return Indicators{}, fmt.Errorf("fetch series for %s: %w", ticker, err)
			}

			closes := series.Closes()
			return Indicators{
				Ticker:    ticker,
				LastClose: closes[len(closes)-1],
				RSI14:     round2p(formulas.RSI(closes, rsiPeriod)),
				SMA20:     round2p(formulas.SMA(closes, smaShortPeriod)),
				SMA50:     round2p(formulas.SMA(closes, smaLongPeriod)),
				EMA200:    round2p(formulas.EMA(closes, emaPeriod)),
				ROC10:     round2p(formulas.ROC(closes, rocPeriod)),
			}, nil
		})
}

func round2p(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := formulas.Round2(*v)
	return &r
}
