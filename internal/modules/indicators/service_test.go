package indicators

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/aristath/spyglass/internal/cache"
	"github.com/aristath/spyglass/internal/history"
)

func setupService(t *testing.T) (*Service, *history.Store, *cache.Store) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := zerolog.New(nil).Level(zerolog.Disabled)

	prices := history.NewStore(db, log)
	require.NoError(t, prices.InitSchema())

	store := cache.New(db, log)
	require.NoError(t, store.InitSchema())
	t.Cleanup(store.Close)

	return NewService(prices, store, log), prices, store
}

// seedSeries writes n consecutive daily closes ending today.
func seedSeries(t *testing.T, prices *history.Store, ticker string, n int, fn func(i int) float64) {
	t.Helper()

	start := time.Now().AddDate(0, 0, -(n - 1))
	series := make(history.Series, n)
	for i := 0; i < n; i++ {
		series[i] = history.PricePoint{
			Date:  start.AddDate(0, 0, i).Format("2006-01-02"),
			Close: fn(i),
		}
	}
	require.NoError(t, prices.SaveSeries(context.Background(), ticker, series))
}

func TestForTickerFullHistory(t *testing.T) {
	service, prices, _ := setupService(t)
	seedSeries(t, prices, "AAPL", 250, func(i int) float64 {
		return 100 + float64(i%10) + float64(i)*0.1
	})

	result, err := service.ForTicker(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", result.Ticker)
	assert.Greater(t, result.LastClose, 0.0)

	require.NotNil(t, result.RSI14)
	assert.GreaterOrEqual(t, *result.RSI14, 0.0)
	assert.LessOrEqual(t, *result.RSI14, 100.0)

	require.NotNil(t, result.SMA20)
	require.NotNil(t, result.SMA50)
	require.NotNil(t, result.EMA200)
	require.NotNil(t, result.ROC10)

	// Uptrend: the short average sits above the long one
	assert.Greater(t, *result.SMA20, *result.SMA50)
}

func TestForTickerShortHistoryNilsLongIndicators(t *testing.T) {
	service, prices, _ := setupService(t)
	seedSeries(t, prices, "AAPL", 30, func(i int) float64 { return 100 + float64(i) })

	result, err := service.ForTicker(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.NotNil(t, result.RSI14)
	assert.NotNil(t, result.SMA20)
	assert.Nil(t, result.SMA50)
	// EMA falls back to the simple mean on short series
	assert.NotNil(t, result.EMA200)
}

func TestForTickerUnknownTicker(t *testing.T) {
	service, _, _ := setupService(t)

	_, err := service.ForTicker(context.Background(), "NOPE")
	assert.ErrorIs(t, err, history.ErrDataUnavailable)
}

func TestForTickerCachesResult(t *testing.T) {
	service, prices, store := setupService(t)
	seedSeries(t, prices, "AAPL", 250, func(i int) float64 { return 100 + float64(i)*0.1 })
	ctx := context.Background()

	first, err := service.ForTicker(ctx, "AAPL")
	require.NoError(t, err)

	store.Flush()

	second, err := service.ForTicker(ctx, "AAPL")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), store.Stats().Hits())
}
