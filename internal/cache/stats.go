package cache

import "sync/atomic"

// Stats tracks running cache counters. Every Store instance owns its own
// Stats object; counters are atomic because concurrent requests share them.
type Stats struct {
	hits    atomic.Int64
	misses  atomic.Int64
	sets    atomic.Int64
	deletes atomic.Int64
	errors  atomic.Int64
}

// Snapshot is the JSON shape reported by the stats endpoint.
type Snapshot struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Sets    int64   `json:"sets"`
	Deletes int64   `json:"deletes"`
	Errors  int64   `json:"errors"`
	HitRate float64 `json:"hitRate"` // Percentage
}

// HitRate returns hits/(hits+misses) as a percentage. 0 when no lookups have
// happened yet.
func (s *Stats) HitRate() float64 {
	hits := s.hits.Load()
	total := hits + s.misses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// Snapshot returns a point-in-time copy of all counters.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
		Sets:    s.sets.Load(),
		Deletes: s.deletes.Load(),
		Errors:  s.errors.Load(),
		HitRate: s.HitRate(),
	}
}

// Reset zeroes all counters.
func (s *Stats) Reset() {
	s.hits.Store(0)
	s.misses.Store(0)
	s.sets.Store(0)
	s.deletes.Store(0)
	s.errors.Store(0)
}

// Accessors used by tests and handlers.
func (s *Stats) Hits() int64    { return s.hits.Load() }
func (s *Stats) Misses() int64  { return s.misses.Load() }
func (s *Stats) Sets() int64    { return s.sets.Load() }
func (s *Stats) Deletes() int64 { return s.deletes.Load() }
func (s *Stats) Errors() int64  { return s.errors.Load() }
