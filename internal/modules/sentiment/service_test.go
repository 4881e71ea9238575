package sentiment

import (
	"context"
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/aristath/spyglass/internal/cache"
)

func setupService(t *testing.T) (*Service, *NewsStore, *cache.Store) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := zerolog.New(nil).Level(zerolog.Disabled)

	news := NewNewsStore(db, log)
	require.NoError(t, news.InitSchema())

	store := cache.New(db, log)
	require.NoError(t, store.InitSchema())
	t.Cleanup(store.Close)

	return NewService(news, store, log), news, store
}

func TestForTickerScoresStoredArticles(t *testing.T) {
	service, news, _ := setupService(t)
	ctx := context.Background()

	require.NoError(t, news.SaveArticles(ctx, "AAPL", "2026-08-30", []Article{
		{Title: "great earnings beat, stock soars"},
		{Title: "massive losses, shares plunge"},
	}))

	result, err := service.ForTicker(ctx, "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", result.Ticker)
	require.Len(t, result.Articles, 2)
	assert.Equal(t, 1, result.Summary.BullishCount)
	assert.Equal(t, 1, result.Summary.BearishCount)
}

func TestForTickerNoNewsIsNeutral(t *testing.T) {
	service, _, _ := setupService(t)

	result, err := service.ForTicker(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Empty(t, result.Articles)
	assert.Equal(t, LabelNeutral, result.Summary.Label)
}

func TestForTickerCachesResult(t *testing.T) {
	service, news, store := setupService(t)
	ctx := context.Background()

	require.NoError(t, news.SaveArticles(ctx, "AAPL", "2026-08-30", []Article{
		{Title: "stock soars on record profits"},
	}))

	first, err := service.ForTicker(ctx, "AAPL")
	require.NoError(t, err)

	store.Flush()

	// A later article must not show up until the cache entry expires
	require.NoError(t, news.SaveArticles(ctx, "AAPL", "2026-08-31", []Article{
		{Title: "shares plunge on fraud investigation"},
	}))

	second, err := service.ForTicker(ctx, "AAPL")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), store.Stats().Hits())
}

func TestNewsStoreUpsertIsIdempotent(t *testing.T) {
	_, news, _ := setupService(t)
	ctx := context.Background()

	article := []Article{{Title: "shares rally after upgrade", Description: "old"}}
	require.NoError(t, news.SaveArticles(ctx, "MSFT", "2026-08-30", article))

	article[0].Description = "new"
	require.NoError(t, news.SaveArticles(ctx, "MSFT", "2026-08-30", article))

	fetched, err := news.FetchArticles(ctx, "MSFT")
	require.NoError(t, err)
	require.Len(t, fetched, 1)
	assert.Equal(t, "new", fetched[0].Description)
}

func TestNewsStoreOrdersNewestFirst(t *testing.T) {
	_, news, _ := setupService(t)
	ctx := context.Background()

	require.NoError(t, news.SaveArticles(ctx, "AAPL", "2026-08-01", []Article{{Title: "older"}}))
	require.NoError(t, news.SaveArticles(ctx, "AAPL", "2026-08-30", []Article{{Title: "newer"}}))

	fetched, err := news.FetchArticles(ctx, "AAPL")
	require.NoError(t, err)
	require.Len(t, fetched, 2)
	assert.Equal(t, "newer", fetched[0].Title)
}
