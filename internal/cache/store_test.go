package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// setupTestStore creates a store backed by an in-memory SQLite database.
func setupTestStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := zerolog.New(nil).Level(zerolog.Disabled)
	store := New(db, log)
	require.NoError(t, store.InitSchema())
	t.Cleanup(store.Close)

	return store, db
}

func TestSetGetRoundtrip(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	type payload struct {
		Ticker string  `json:"ticker"`
		Value  float64 `json:"value"`
	}

	ok := store.Set("quote:AAPL", payload{Ticker: "AAPL", Value: 187.32}, time.Minute)
	require.True(t, ok)

	var got payload
	require.True(t, store.Get(ctx, "quote:AAPL", &got))
	assert.Equal(t, "AAPL", got.Ticker)
	assert.Equal(t, 187.32, got.Value)

	assert.Equal(t, int64(1), store.Stats().Hits())
	assert.Equal(t, int64(1), store.Stats().Sets())
}

func TestGetMissingKey(t *testing.T) {
	store, _ := setupTestStore(t)

	var got map[string]interface{}
	assert.False(t, store.Get(context.Background(), "quote:MISSING", &got))
	assert.Equal(t, int64(1), store.Stats().Misses())
}

func TestGetExpiredEntryIsMiss(t *testing.T) {
	store, db := setupTestStore(t)

	_, err := db.Exec(
		"INSERT INTO cache (key, value, expires_at) VALUES (?, ?, ?)",
		"quote:OLD", `{"value":1}`, time.Now().Add(-time.Minute).Unix(),
	)
	require.NoError(t, err)

	var got map[string]float64
	assert.False(t, store.Get(context.Background(), "quote:OLD", &got))
	assert.Equal(t, int64(1), store.Stats().Misses())
	assert.Equal(t, int64(0), store.Stats().Errors())
}

func TestCorruptPayloadIsErrorNotMiss(t *testing.T) {
	store, db := setupTestStore(t)

	_, err := db.Exec(
		"INSERT INTO cache (key, value, expires_at) VALUES (?, ?, ?)",
		"quote:BAD", `{not json`, time.Now().Add(time.Minute).Unix(),
	)
	require.NoError(t, err)

	var got map[string]float64
	assert.False(t, store.Get(context.Background(), "quote:BAD", &got))
	assert.Equal(t, int64(1), store.Stats().Errors())
	assert.Equal(t, int64(0), store.Stats().Misses())

	// The corrupt row is dropped so later reads are ordinary misses
	var row string
	err = db.QueryRow("SELECT value FROM cache WHERE key = ?", "quote:BAD").Scan(&row)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDeletePattern(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	store.Set("quote:AAPL", 1.0, time.Minute)
	store.Set("quote:MSFT", 2.0, time.Minute)
	store.Set("indicators:AAPL:rsi", 3.0, time.Minute)
	store.Set("sector-rotation:snapshot", 4.0, time.Minute)

	deleted := store.DeletePattern("quote:*")
	assert.Equal(t, 2, deleted)

	var v float64
	assert.False(t, store.Get(ctx, "quote:AAPL", &v))
	assert.False(t, store.Get(ctx, "quote:MSFT", &v))
	assert.True(t, store.Get(ctx, "indicators:AAPL:rsi", &v))

	assert.Equal(t, 0, store.DeletePattern("quote:*"))
}

func TestInvalidateTicker(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	store.Set("quote:AAPL", 1.0, time.Minute)
	store.Set("indicators:AAPL:rsi", 2.0, time.Minute)
	store.Set("chart-short:AAPL:1mo", 3.0, time.Minute)
	store.Set("quote:MSFT", 4.0, time.Minute)

	deleted := store.InvalidateTicker("AAPL")
	assert.Equal(t, 3, deleted)

	var v float64
	assert.True(t, store.Get(ctx, "quote:MSFT", &v))
}

func TestCacheAsideComputesOnce(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	calls := 0
	compute := func(ctx context.Context) (float64, error) {
		calls++
		return 42.5, nil
	}

	v, err := CacheAside(ctx, store, "quote:AAPL", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, 42.5, v)

	// Wait for the background write-back before the second call
	store.Flush()

	v, err = CacheAside(ctx, store, "quote:AAPL", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, 42.5, v)

	assert.Equal(t, 1, calls)
	assert.Equal(t, int64(1), store.Stats().Hits())
	assert.Equal(t, int64(1), store.Stats().Misses())
}

func TestCacheAsideComputeErrorPropagatesUncached(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	wantErr := errors.New("provider down")
	_, err := CacheAside(ctx, store, "quote:FAIL", time.Minute, func(ctx context.Context) (int, error) {
		return 0, wantErr
	})
	require.ErrorIs(t, err, wantErr)

	store.Flush()

	var v int
	assert.False(t, store.Get(ctx, "quote:FAIL", &v))
}

func TestDegradedModeNilDB(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	store := New(nil, log)
	defer store.Close()
	ctx := context.Background()

	var v float64
	assert.False(t, store.Get(ctx, "quote:AAPL", &v))
	assert.False(t, store.Set("quote:AAPL", 1.0, time.Minute))
	assert.Equal(t, 0, store.DeletePattern("*"))
	assert.False(t, store.Delete("quote:AAPL"))

	got, err := CacheAside(ctx, store, "quote:AAPL", time.Minute, func(ctx context.Context) (float64, error) {
		return 7.0, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7.0, got)
}

func TestDegradedModeUnreachableStore(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)

	log := zerolog.New(nil).Level(zerolog.Disabled)
	store := New(db, log)
	require.NoError(t, store.InitSchema())
	defer store.Close()

	// Force the backing store unreachable
	require.NoError(t, db.Close())

	ctx := context.Background()
	var v float64
	assert.False(t, store.Get(ctx, "quote:AAPL", &v))
	assert.False(t, store.Set("quote:AAPL", 1.0, time.Minute))

	got, err := CacheAside(ctx, store, "quote:AAPL", time.Minute, func(ctx context.Context) (float64, error) {
		return 3.0, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3.0, got)
}

func TestDeleteExpired(t *testing.T) {
	store, db := setupTestStore(t)

	_, err := db.Exec(
		"INSERT INTO cache (key, value, expires_at) VALUES (?, ?, ?), (?, ?, ?)",
		"quote:OLD", `1`, time.Now().Add(-time.Hour).Unix(),
		"quote:FRESH", `2`, time.Now().Add(time.Hour).Unix(),
	)
	require.NoError(t, err)

	deleted, err := store.DeleteExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var v float64
	assert.True(t, store.Get(context.Background(), "quote:FRESH", &v))
}

func TestHitRateAndReset(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	store.Set("quote:AAPL", 1.0, time.Minute)

	var v float64
	store.Get(ctx, "quote:AAPL", &v)   // hit
	store.Get(ctx, "quote:MSFT", &v)   // miss
	store.Get(ctx, "quote:AAPL", &v)   // hit
	assert.InDelta(t, 66.67, store.Stats().HitRate(), 0.01)

	snap := store.Stats().Snapshot()
	assert.Equal(t, int64(2), snap.Hits)
	assert.Equal(t, int64(1), snap.Misses)

	store.Stats().Reset()
	assert.Equal(t, float64(0), store.Stats().HitRate())
	assert.Equal(t, int64(0), store.Stats().Hits())
}

func TestFlushConcurrentWithClose(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	log := zerolog.New(nil).Level(zerolog.Disabled)
	store := New(db, log)
	require.NoError(t, store.InitSchema())

	for i := 0; i < 20; i++ {
		store.Set(fmt.Sprintf("quote:T%d", i), i, time.Minute)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Flush()
		}()
	}
	store.Close()
	wg.Wait()
}

func TestFlushAfterCloseReturns(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	store := New(nil, log)
	store.Close()
	store.Flush()
}
