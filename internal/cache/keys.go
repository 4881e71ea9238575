package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Key builds a colon-joined cache key: namespace:part1:part2:...
//
// Two calls with identical inputs always produce identical keys, so a key
// deterministically identifies the inputs that produced its value.
func Key(ns Namespace, parts ...string) string {
	segments := make([]string, 0, len(parts)+1)
	segments = append(segments, string(ns))
	segments = append(segments, parts...)
	return strings.Join(segments, ":")
}

// Fingerprint creates a deterministic hash from a list of identifiers for use
// as a cache key segment. The inputs are sorted first so the fingerprint is
// independent of input order.
func Fingerprint(parts []string) string {
	sorted := make([]string, len(parts))
	copy(sorted, parts)
	sort.Strings(sorted)
	h := sha256.Sum256([]byte(strings.Join(sorted, ",")))
	return hex.EncodeToString(h[:16])
}

// tickerPatterns returns the glob patterns that match every key referencing a
// ticker, whichever positional segment it occupies.
func tickerPatterns(ticker string) []string {
	return []string{
		"*:" + ticker,
		"*:" + ticker + ":*",
	}
}
