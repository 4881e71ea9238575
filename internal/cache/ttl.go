package cache

import "time"

// Namespace identifies a logical cache category. The namespace is always the
// first segment of a cache key and selects the TTL policy for entries written
// under it.
type Namespace string

const (
	NamespaceQuote       Namespace = "quote"
	NamespaceChartShort  Namespace = "chart-short"
	NamespaceChartLong   Namespace = "chart-long"
	NamespaceIndicators  Namespace = "indicators"
	NamespaceNews        Namespace = "news"
	NamespaceSentiment   Namespace = "sentiment"
	NamespaceHistorical  Namespace = "historical"
	NamespaceSector      Namespace = "sector-rotation"
	NamespaceRiskMetrics Namespace = "risk-metrics"
)

// TTL constants per namespace. These are fixed policy, consulted by callers
// when invoking CacheAside - not configurable per call.
const (
	TTLQuote      = 5 * time.Minute  // Current quotes go stale quickly
	TTLChartShort = 15 * time.Minute // Short-range chart data
	TTLChartLong  = 60 * time.Minute // Long-range chart data
	TTLIndicators = 10 * time.Minute // Technical indicators
	TTLNews       = 5 * time.Minute  // News listings
	TTLSentiment  = 10 * time.Minute // Sentiment aggregates
	TTLHistorical = 60 * time.Minute // Historical price data
	TTLSector     = 30 * time.Minute // Sector rotation snapshots
)

// TTLFor returns the policy TTL for a namespace. Risk metrics are derived
// from historical data and share its TTL.
func TTLFor(ns Namespace) time.Duration {
	switch ns {
	case NamespaceQuote:
		return TTLQuote
	case NamespaceChartShort:
		return TTLChartShort
	case NamespaceChartLong:
		return TTLChartLong
	case NamespaceIndicators:
		return TTLIndicators
	case NamespaceNews:
		return TTLNews
	case NamespaceSentiment:
		return TTLSentiment
	case NamespaceHistorical, NamespaceRiskMetrics:
		return TTLHistorical
	case NamespaceSector:
		return TTLSector
	default:
		return TTLChartShort
	}
}
