// Package cache provides the key-value caching layer for computed analytics.
// Values are stored as JSON blobs with expiration timestamps in a sqlite
// cache database. The store degrades to "always miss" when the backing
// database is unavailable - callers keep working, just uncached.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const schema = `
CREATE TABLE IF NOT EXISTS cache (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cache_expires_at ON cache(expires_at);
`

// writeTask is a queued background write. A task with a nil payload and a
// non-nil done channel is a flush barrier.
type writeTask struct {
	key     string
	payload []byte
	ttl     time.Duration
	done    chan struct{}
}

// Store provides cache operations over a sqlite backing database.
type Store struct {
	db    *sql.DB // May be nil: store runs in degraded (always-miss) mode
	stats *Stats
	log   zerolog.Logger

	writes  chan writeTask
	stopped chan struct{}
	mu      sync.RWMutex // Guards sends on writes against Close
	closed  atomic.Bool
	once    sync.Once
}

// New creates a new cache store and starts its background writer.
// db may be nil, in which case the store serves misses and drops writes.
func New(db *sql.DB, log zerolog.Logger) *Store {
	s := &Store{
		db:      db,
		stats:   &Stats{},
		log:     log.With().Str("component", "cache").Logger(),
		writes:  make(chan writeTask, 256),
		stopped: make(chan struct{}),
	}
	go s.writer()
	return s
}

// InitSchema creates the cache table if it does not exist.
func (s *Store) InitSchema() error {
	if s.db == nil {
		return nil
	}
	_, err := s.db.Exec(schema)
	return err
}

// Stats returns the store's counters.
func (s *Store) Stats() *Stats {
	return s.stats
}

// Get retrieves the value for key and unmarshals it into dest.
// Returns true only on a fresh, well-formed hit.
//
// A miss, an expired entry, or an unreachable backing store all return false;
// a corrupt payload also returns false but is counted as an error rather than
// a miss, and the corrupt row is dropped so it cannot be served again.
func (s *Store) Get(ctx context.Context, key string, dest interface{}) bool {
	if s.db == nil {
		s.stats.misses.Add(1)
		return false
	}

	var value string
	var expiresAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT value, expires_at FROM cache WHERE key = ?", key,
	).Scan(&value, &expiresAt)
	if err != nil {
		if err != sql.ErrNoRows {
			// Store unreachable degrades to a miss
			s.log.Debug().Err(err).Str("key", key).Msg("Cache get failed, treating as miss")
		}
		s.stats.misses.Add(1)
		return false
	}

	if time.Now().Unix() >= expiresAt {
		s.stats.misses.Add(1)
		return false
	}

	if err := json.Unmarshal([]byte(value), dest); err != nil {
		s.stats.errors.Add(1)
		s.log.Warn().Err(err).Str("key", key).Msg("Corrupt cache payload, treating as absent")
		_, _ = s.db.ExecContext(ctx, "DELETE FROM cache WHERE key = ?", key)
		return false
	}

	s.stats.hits.Add(1)
	return true
}

// Set serializes value and stores it with an expiry of now + ttl.
// Failures (store unavailable, serialization error) are reported as false,
// never propagated.
func (s *Store) Set(key string, value interface{}, ttl time.Duration) bool {
	payload, err := json.Marshal(value)
	if err != nil {
		s.stats.errors.Add(1)
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to serialize cache value")
		return false
	}
	return s.setRaw(key, payload, ttl)
}

func (s *Store) setRaw(key string, payload []byte, ttl time.Duration) bool {
	if s.db == nil {
		return false
	}

	expiresAt := time.Now().Add(ttl).Unix()
	_, err := s.db.Exec(`
		INSERT INTO cache (key, value, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at
	`, key, string(payload), expiresAt)
	if err != nil {
		s.stats.errors.Add(1)
		s.log.Warn().Err(err).Str("key", key).Msg("Cache set failed")
		return false
	}

	s.stats.sets.Add(1)
	return true
}

// Delete removes a single cache entry. Returns false when the key did not
// exist or the store is unavailable.
func (s *Store) Delete(key string) bool {
	if s.db == nil {
		return false
	}

	result, err := s.db.Exec("DELETE FROM cache WHERE key = ?", key)
	if err != nil {
		s.stats.errors.Add(1)
		return false
	}

	affected, _ := result.RowsAffected()
	if affected > 0 {
		s.stats.deletes.Add(affected)
		return true
	}
	return false
}

// DeletePattern removes every key matching a glob pattern ('*' wildcard) in
// one pass: enumerate, then delete. Returns the number of keys deleted,
// 0 if none match or the store is unavailable.
func (s *Store) DeletePattern(pattern string) int {
	if s.db == nil {
		return 0
	}

	like := strings.ReplaceAll(pattern, "*", "%")

	rows, err := s.db.Query("SELECT key FROM cache WHERE key LIKE ?", like)
	if err != nil {
		s.stats.errors.Add(1)
		return 0
	}

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			continue
		}
		keys = append(keys, key)
	}
	rows.Close()

	if len(keys) == 0 {
		return 0
	}

	placeholders := strings.Repeat("?,", len(keys))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(keys))
	for i, k := range keys {
		args[i] = k
	}

	result, err := s.db.Exec("DELETE FROM cache WHERE key IN ("+placeholders+")", args...)
	if err != nil {
		s.stats.errors.Add(1)
		return 0
	}

	deleted, _ := result.RowsAffected()
	s.stats.deletes.Add(deleted)
	return int(deleted)
}

// InvalidateTicker deletes every key across all namespaces that references
// the ticker in its positional key structure.
func (s *Store) InvalidateTicker(ticker string) int {
	count := 0
	for _, pattern := range tickerPatterns(ticker) {
		count += s.DeletePattern(pattern)
	}
	if count > 0 {
		s.log.Info().Str("ticker", ticker).Int("deleted", count).Msg("Invalidated ticker cache")
	}
	return count
}

// DeleteExpired removes all rows whose expiry has passed.
// Returns the number of rows deleted.
func (s *Store) DeleteExpired() (int64, error) {
	if s.db == nil {
		return 0, nil
	}

	result, err := s.db.Exec("DELETE FROM cache WHERE expires_at < ?", time.Now().Unix())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// CacheAside is the canonical read path: on hit, return the cached value; on
// miss, run compute, dispatch an asynchronous write-back, and return the fresh
// value. compute failures propagate to the caller uncached; write-back
// failures are logged and counted, never propagated.
func CacheAside[T any](ctx context.Context, s *Store, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	var cached T
	if s.Get(ctx, key, &cached) {
		return cached, nil
	}

	value, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	// Serialize synchronously so a partially built value can never reach the
	// store, then hand the bytes to the background writer.
	payload, merr := json.Marshal(value)
	if merr != nil {
		s.stats.errors.Add(1)
		s.log.Warn().Err(merr).Str("key", key).Msg("Failed to serialize computed value for cache")
		return value, nil
	}
	s.dispatch(writeTask{key: key, payload: payload, ttl: ttl})

	return value, nil
}

// dispatch enqueues a background write without blocking the response path.
// If the queue is full the write is dropped; the next miss recomputes.
func (s *Store) dispatch(task writeTask) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed.Load() {
		return
	}
	select {
	case s.writes <- task:
	default:
		s.log.Warn().Str("key", task.key).Msg("Cache write queue full, dropping write-back")
	}
}

// writer is the background task that performs write-backs. Failures are
// observable in logs and the error counter but never reach request paths.
func (s *Store) writer() {
	defer close(s.stopped)
	for task := range s.writes {
		if task.done != nil {
			close(task.done)
			continue
		}
		s.setRaw(task.key, task.payload, task.ttl)
	}
}

// Flush blocks until every write queued before the call has been applied.
// Used by tests and shutdown.
func (s *Store) Flush() {
	s.mu.RLock()
	if s.closed.Load() {
		s.mu.RUnlock()
		return
	}
	done := make(chan struct{})
	s.writes <- writeTask{done: done}
	s.mu.RUnlock()

	select {
	case <-done:
	case <-s.stopped:
	}
}

// Close flushes pending writes and stops the background writer. Safe to call
// concurrently with Flush and with in-flight write-backs.
func (s *Store) Close() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed.Store(true)
		close(s.writes)
		s.mu.Unlock()
		<-s.stopped
	})
}
