// Package risk computes portfolio-level risk and return statistics from
// per-holding price history.
package risk

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/spyglass/internal/cache"
	"github.com/aristath/spyglass/internal/history"
	"github.com/aristath/spyglass/pkg/formulas"
)

// errHoldingUnavailable marks a compute that degraded to zeroed metrics
// because a holding had no price data. The fallback is returned to the
// caller but kept out of the cache.
var errHoldingUnavailable = errors.New("holding price data unavailable")

// Engine computes portfolio risk metrics, cache-aside over the store.
type Engine struct {
	provider     history.SeriesProvider
	store        *cache.Store
	benchmark    string
	riskFreeRate float64
	log          zerolog.Logger
}

// NewEngine creates a new risk metrics engine. riskFreeRate is annual, as a
// decimal; benchmark is the index ticker used for beta.
func NewEngine(provider history.SeriesProvider, store *cache.Store, benchmark string, riskFreeRate float64, log zerolog.Logger) *Engine {
	return &Engine{
		provider:     provider,
		store:        store,
		benchmark:    benchmark,
		riskFreeRate: riskFreeRate,
		log:          log.With().Str("service", "risk").Logger(),
	}
}

// PortfolioMetrics returns the metrics bundle for a set of holdings over a
// lookback period. The cache key carries each constituent ticker as its own
// segment so ticker invalidation evicts the entry, followed by a fingerprint
// of the share counts and the period; identical inputs always produce
// identical keys.
func (e *Engine) PortfolioMetrics(ctx context.Context, holdings []Holding, period history.Period) (Metrics, error) {
	if err := ValidateHoldings(holdings); err != nil {
		return Metrics{}, err
	}
	if len(holdings) == 0 {
		return Metrics{}, nil
	}

	tickers := make([]string, len(holdings))
	shareParts := make([]string, len(holdings))
	for i, h := range holdings {
		tickers[i] = h.Ticker
		shareParts[i] = fmt.Sprintf("%s|%g", h.Ticker, h.Shares)
	}
	sort.Strings(tickers)
	keyParts := append(tickers, cache.Fingerprint(shareParts), string(period))
	key := cache.Key(cache.NamespaceRiskMetrics, keyParts...)

	metrics, err := cache.CacheAside(ctx, e.store, key, cache.TTLFor(cache.NamespaceRiskMetrics),
		func(ctx context.Context) (Metrics, error) {
			return e.compute(ctx, holdings, period)
		})
	if errors.Is(err, errHoldingUnavailable) {
		// Degraded fallback, served but never cached: the next request
		// recomputes as soon as the provider recovers.
		return Metrics{}, nil
	}
	return metrics, err
}

// compute fetches the input series and runs the pure calculation.
func (e *Engine) compute(ctx context.Context, holdings []Holding, period history.Period) (Metrics, error) {
	seriesByTicker := make(map[string]history.Series, len(holdings))
	for _, h := range holdings {
		series, err := e.provider.FetchSeries(ctx, h.Ticker, period)
		if err != nil {
			if errors.Is(err, history.ErrDataUnavailable) {
				// A holding with no usable data empties the date
				// intersection; the result degrades to zeroed metrics
				// rather than failing the whole request.
				e.log.Warn().Str("ticker", h.Ticker).Msg("No price data for holding")
				return Metrics{}, errHoldingUnavailable
			}
			return Metrics{}, err
		}
		seriesByTicker[h.Ticker] = series
	}

	benchmark, err := e.provider.FetchSeries(ctx, e.benchmark, period)
	if err != nil {
		if !errors.Is(err, history.ErrDataUnavailable) {
			return Metrics{}, err
		}
		e.log.Warn().Str("ticker", e.benchmark).Msg("No benchmark data, beta will be 0")
		benchmark = nil
	}

	return Compute(holdings, seriesByTicker, benchmark, e.riskFreeRate), nil
}

// Compute builds the portfolio value series and derives all metrics.
// It is a pure function of its inputs.
//
// The portfolio value series is an inner join on trading dates: a date
// missing (or non-positive) in any constituent series is excluded from the
// whole portfolio series. An empty intersection yields zeroed metrics.
func Compute(holdings []Holding, seriesByTicker map[string]history.Series, benchmark history.Series, riskFreeRate float64) Metrics {
	dates, values := portfolioValueSeries(holdings, seriesByTicker)
	if len(values) < 2 {
		return Metrics{}
	}

	returns := formulas.Returns(values)
	volatility := formulas.AnnualizedVolatility(returns)

	first, last := values[0], values[len(values)-1]
	daysElapsed := daySpan(dates[0], dates[len(dates)-1])

	return Metrics{
		Volatility:         formulas.Round2(volatility * 100),
		SharpeRatio:        formulas.Round2(formulas.SharpeRatio(returns, riskFreeRate)),
		Beta:               formulas.Round2(portfolioBeta(dates, values, benchmark)),
		MaxDrawdown:        formulas.Round2(formulas.MaxDrawdown(values) * 100),
		TotalReturn:        formulas.Round2(last - first),
		TotalReturnPercent: formulas.Round2(formulas.TotalReturn(first, last) * 100),
		CAGR:               formulas.Round2(formulas.CAGR(first, last, daysElapsed) * 100),
	}
}

// portfolioValueSeries inner-joins the holdings' series on trading dates and
// sums shares * price per date.
func portfolioValueSeries(holdings []Holding, seriesByTicker map[string]history.Series) ([]string, []float64) {
	if len(holdings) == 0 {
		return nil, nil
	}

	priceMaps := make(map[string]map[string]float64, len(holdings))
	for _, h := range holdings {
		priceMaps[h.Ticker] = seriesByTicker[h.Ticker].ByDate()
	}

	// Candidate dates come from the first holding; each must be present with
	// a positive price in every other series.
	var dates []string
	for date := range priceMaps[holdings[0].Ticker] {
		available := true
		for _, h := range holdings {
			if price, ok := priceMaps[h.Ticker][date]; !ok || price <= 0 {
				available = false
				break
			}
		}
		if available {
			dates = append(dates, date)
		}
	}
	sort.Strings(dates)

	values := make([]float64, len(dates))
	for i, date := range dates {
		total := 0.0
		for _, h := range holdings {
			total += h.Shares * priceMaps[h.Ticker][date]
		}
		values[i] = total
	}

	return dates, values
}

// portfolioBeta aligns the portfolio and benchmark on their common dates and
// regresses daily returns. 0 when the benchmark is flat or missing.
func portfolioBeta(dates []string, values []float64, benchmark history.Series) float64 {
	if len(benchmark) == 0 {
		return 0
	}

	benchByDate := benchmark.ByDate()
	var portAligned, benchAligned []float64
	for i, date := range dates {
		if price, ok := benchByDate[date]; ok && price > 0 {
			portAligned = append(portAligned, values[i])
			benchAligned = append(benchAligned, price)
		}
	}

	return formulas.Beta(formulas.Returns(portAligned), formulas.Returns(benchAligned))
}

// daySpan returns calendar days between two YYYY-MM-DD dates.
func daySpan(first, last string) int {
	s := history.Series{{Date: first, Close: 1}, {Date: last, Close: 1}}
	return s.SpanDays()
}
