package risk

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/aristath/spyglass/internal/cache"
	"github.com/aristath/spyglass/internal/history"
)

func daySeries(closes ...float64) history.Series {
	series := make(history.Series, len(closes))
	for i, c := range closes {
		series[i] = history.PricePoint{
			Date:  fmt.Sprintf("2026-01-%02d", i+1),
			Close: c,
		}
	}
	return series
}

func TestComputePortfolioScenario(t *testing.T) {
	holdings := []Holding{{Ticker: "AAPL", Shares: 10, AvgCost: 100}}
	seriesByTicker := map[string]history.Series{
		"AAPL": daySeries(100, 110, 99, 121),
	}
	benchmark := daySeries(100, 100, 100, 100)

	m := Compute(holdings, seriesByTicker, benchmark, 0.045)

	assert.Equal(t, 21.0, m.TotalReturnPercent)
	assert.Equal(t, 210.0, m.TotalReturn)
	assert.Equal(t, -10.0, m.MaxDrawdown)
	// Flat benchmark has zero variance, beta is 0 by convention
	assert.Equal(t, 0.0, m.Beta)
	assert.Greater(t, m.Volatility, 0.0)
}

func TestComputeConstantPrices(t *testing.T) {
	holdings := []Holding{{Ticker: "AAPL", Shares: 5, AvgCost: 50}}
	seriesByTicker := map[string]history.Series{
		"AAPL": daySeries(100, 100, 100, 100),
	}

	m := Compute(holdings, seriesByTicker, daySeries(100, 101, 102, 103), 0.045)

	assert.Equal(t, 0.0, m.Volatility)
	assert.Equal(t, 0.0, m.SharpeRatio)
	assert.Equal(t, 0.0, m.MaxDrawdown)
	assert.Equal(t, 0.0, m.TotalReturnPercent)
}

func TestComputeMonotonicIncreaseHasZeroDrawdown(t *testing.T) {
	holdings := []Holding{{Ticker: "AAPL", Shares: 1, AvgCost: 10}}
	seriesByTicker := map[string]history.Series{
		"AAPL": daySeries(100, 105, 111, 120, 128),
	}

	m := Compute(holdings, seriesByTicker, nil, 0.045)

	assert.Equal(t, 0.0, m.MaxDrawdown)
	assert.Equal(t, 28.0, m.TotalReturnPercent)
}

func TestComputeBetaAgainstIdenticalBenchmark(t *testing.T) {
	series := daySeries(100, 104, 99, 108, 112)
	holdings := []Holding{{Ticker: "AAPL", Shares: 1, AvgCost: 10}}

	m := Compute(holdings, map[string]history.Series{"AAPL": series}, series, 0.045)

	assert.Equal(t, 1.0, m.Beta)
}

func TestComputeEmptyHoldings(t *testing.T) {
	m := Compute(nil, nil, nil, 0.045)
	assert.Equal(t, Metrics{}, m)
}

func TestPortfolioValueSeriesInnerJoin(t *testing.T) {
	holdings := []Holding{
		{Ticker: "AAPL", Shares: 2},
		{Ticker: "MSFT", Shares: 1},
	}
	seriesByTicker := map[string]history.Series{
		"AAPL": {
			{Date: "2026-01-01", Close: 100},
			{Date: "2026-01-02", Close: 110},
			{Date: "2026-01-03", Close: 120},
		},
		// MSFT has no observation on Jan 2, so that date drops out
		"MSFT": {
			{Date: "2026-01-01", Close: 50},
			{Date: "2026-01-03", Close: 60},
		},
	}

	dates, values := portfolioValueSeries(holdings, seriesByTicker)

	require.Equal(t, []string{"2026-01-01", "2026-01-03"}, dates)
	assert.Equal(t, []float64{250, 300}, values)
}

func TestPortfolioValueSeriesEmptyIntersection(t *testing.T) {
	holdings := []Holding{
		{Ticker: "AAPL", Shares: 1},
		{Ticker: "MSFT", Shares: 1},
	}
	seriesByTicker := map[string]history.Series{
		"AAPL": {{Date: "2026-01-01", Close: 100}},
		"MSFT": {{Date: "2026-01-02", Close: 50}},
	}

	m := Compute(holdings, seriesByTicker, nil, 0.045)
	assert.Equal(t, Metrics{}, m)
}

func TestValidateHoldings(t *testing.T) {
	assert.NoError(t, ValidateHoldings(nil))
	assert.NoError(t, ValidateHoldings([]Holding{{Ticker: "AAPL", Shares: 1, AvgCost: 0}}))

	assert.Error(t, ValidateHoldings([]Holding{{Ticker: "", Shares: 1}}))
	assert.Error(t, ValidateHoldings([]Holding{{Ticker: "AAPL", Shares: 0}}))
	assert.Error(t, ValidateHoldings([]Holding{{Ticker: "AAPL", Shares: -2}}))
	assert.Error(t, ValidateHoldings([]Holding{{Ticker: "AAPL", Shares: 1, AvgCost: -1}}))
	assert.Error(t, ValidateHoldings([]Holding{
		{Ticker: "AAPL", Shares: 1},
		{Ticker: "AAPL", Shares: 2},
	}))
}

// fakeProvider serves canned series and counts fetches.
type fakeProvider struct {
	series map[string]history.Series
	calls  int
}

func (f *fakeProvider) FetchSeries(ctx context.Context, ticker string, period history.Period) (history.Series, error) {
	f.calls++
	s, ok := f.series[ticker]
	if !ok {
		return nil, fmt.Errorf("%w: %s", history.ErrDataUnavailable, ticker)
	}
	return s, nil
}

func setupEngine(t *testing.T, provider history.SeriesProvider) (*Engine, *cache.Store) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := zerolog.New(nil).Level(zerolog.Disabled)
	store := cache.New(db, log)
	require.NoError(t, store.InitSchema())
	t.Cleanup(store.Close)

	return NewEngine(provider, store, "SPY", 0.045, log), store
}

func TestPortfolioMetricsCachesResult(t *testing.T) {
	provider := &fakeProvider{series: map[string]history.Series{
		"AAPL": daySeries(100, 110, 99, 121),
		"SPY":  daySeries(100, 101, 102, 103),
	}}
	engine, store := setupEngine(t, provider)

	holdings := []Holding{{Ticker: "AAPL", Shares: 10, AvgCost: 100}}
	ctx := context.Background()

	first, err := engine.PortfolioMetrics(ctx, holdings, history.Period3Mo)
	require.NoError(t, err)
	fetchesAfterFirst := provider.calls
	require.Greater(t, fetchesAfterFirst, 0)

	store.Flush()

	second, err := engine.PortfolioMetrics(ctx, holdings, history.Period3Mo)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, fetchesAfterFirst, provider.calls, "second call must be served from cache")
	assert.Equal(t, int64(1), store.Stats().Hits())
}

func TestPortfolioMetricsUnknownTickerYieldsZeroedMetrics(t *testing.T) {
	provider := &fakeProvider{series: map[string]history.Series{
		"SPY": daySeries(100, 101),
	}}
	engine, _ := setupEngine(t, provider)

	m, err := engine.PortfolioMetrics(context.Background(),
		[]Holding{{Ticker: "NOPE", Shares: 1, AvgCost: 1}}, history.Period1Mo)
	require.NoError(t, err)
	assert.Equal(t, Metrics{}, m)
}

func TestPortfolioMetricsEmptyPortfolio(t *testing.T) {
	engine, _ := setupEngine(t, &fakeProvider{})

	m, err := engine.PortfolioMetrics(context.Background(), nil, history.Period3Mo)
	require.NoError(t, err)
	assert.Equal(t, Metrics{}, m)
}

func TestPortfolioMetricsRejectsInvalidHoldings(t *testing.T) {
	engine, _ := setupEngine(t, &fakeProvider{})

	_, err := engine.PortfolioMetrics(context.Background(),
		[]Holding{{Ticker: "AAPL", Shares: -1}}, history.Period3Mo)
	assert.Error(t, err)
}

func TestInvalidateTickerEvictsPortfolioMetrics(t *testing.T) {
	provider := &fakeProvider{series: map[string]history.Series{
		"AAPL": daySeries(100, 110, 99, 121),
		"MSFT": daySeries(200, 202, 204, 206),
		"SPY":  daySeries(100, 101, 102, 103),
	}}
	engine, store := setupEngine(t, provider)

	holdings := []Holding{
		{Ticker: "AAPL", Shares: 10, AvgCost: 100},
		{Ticker: "MSFT", Shares: 5, AvgCost: 200},
	}
	ctx := context.Background()

	_, err := engine.PortfolioMetrics(ctx, holdings, history.Period3Mo)
	require.NoError(t, err)
	store.Flush()

	deleted := store.InvalidateTicker("AAPL")
	assert.Equal(t, 1, deleted, "ticker invalidation must evict the portfolio entry")

	fetchesBefore := provider.calls
	_, err = engine.PortfolioMetrics(ctx, holdings, history.Period3Mo)
	require.NoError(t, err)
	assert.Greater(t, provider.calls, fetchesBefore, "call after invalidation must recompute")
}

func TestDegradedMetricsNotCached(t *testing.T) {
	provider := &fakeProvider{series: map[string]history.Series{
		"SPY": daySeries(100, 101, 102, 103),
	}}
	engine, store := setupEngine(t, provider)

	holdings := []Holding{{Ticker: "AAPL", Shares: 10, AvgCost: 100}}
	ctx := context.Background()

	m, err := engine.PortfolioMetrics(ctx, holdings, history.Period3Mo)
	require.NoError(t, err)
	assert.Equal(t, Metrics{}, m)
	store.Flush()

	// The provider recovers; the degraded result must not be served back
	provider.series["AAPL"] = daySeries(100, 110, 99, 121)

	m, err = engine.PortfolioMetrics(ctx, holdings, history.Period3Mo)
	require.NoError(t, err)
	assert.NotEqual(t, Metrics{}, m, "recovered data must replace the degraded fallback")
	assert.Equal(t, 21.0, m.TotalReturnPercent)
}
