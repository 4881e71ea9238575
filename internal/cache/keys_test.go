package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyJoinsNamespaceFirst(t *testing.T) {
	assert.Equal(t, "risk-metrics:abc123:3mo", Key(NamespaceRiskMetrics, "abc123", "3mo"))
	assert.Equal(t, "quote:AAPL", Key(NamespaceQuote, "AAPL"))
}

func TestKeyDeterministic(t *testing.T) {
	a := Key(NamespaceSector, "XLK", "XLF", "1y")
	b := Key(NamespaceSector, "XLK", "XLF", "1y")
	assert.Equal(t, a, b)
}

func TestFingerprintOrderIndependent(t *testing.T) {
	a := Fingerprint([]string{"AAPL", "MSFT", "GOOG"})
	b := Fingerprint([]string{"MSFT", "GOOG", "AAPL"})
	assert.Equal(t, a, b)
	assert.Len(t, a, 32)
}

func TestFingerprintDistinguishesInputs(t *testing.T) {
	a := Fingerprint([]string{"AAPL", "MSFT"})
	b := Fingerprint([]string{"AAPL", "TSLA"})
	assert.NotEqual(t, a, b)
}

func TestTTLForKnownNamespaces(t *testing.T) {
	assert.Equal(t, TTLQuote, TTLFor(NamespaceQuote))
	assert.Equal(t, TTLSector, TTLFor(NamespaceSector))
	assert.Equal(t, TTLHistorical, TTLFor(NamespaceRiskMetrics))
}
