package risk

import "fmt"

// Holding is one portfolio position.
type Holding struct {
	Ticker  string  `json:"ticker"`
	Shares  float64 `json:"shares"`
	AvgCost float64 `json:"avgCost"`
}

// Metrics is the computed portfolio risk/return bundle. Field names and
// two-decimal rounding are part of the consumer contract.
//
// Volatility, MaxDrawdown, TotalReturnPercent, and CAGR are percentages;
// SharpeRatio and Beta are ratios; TotalReturn is the absolute value change.
type Metrics struct {
	Volatility         float64 `json:"volatility"`         // Annualized, >= 0
	SharpeRatio        float64 `json:"sharpeRatio"`        // Can be negative
	Beta               float64 `json:"beta"`               // vs benchmark, can be negative
	MaxDrawdown        float64 `json:"maxDrawdown"`        // <= 0
	TotalReturn        float64 `json:"totalReturn"`        // Absolute change in portfolio value
	TotalReturnPercent float64 `json:"totalReturnPercent"` //
	CAGR               float64 `json:"cagr"`               //
}

// ValidateHoldings rejects malformed portfolio input before any computation
// begins. This is the only error in the risk path that reaches callers as a
// validation failure.
func ValidateHoldings(holdings []Holding) error {
	seen := make(map[string]bool, len(holdings))
	for _, h := range holdings {
		if h.Ticker == "" {
			return fmt.Errorf("holding ticker cannot be empty")
		}
		if seen[h.Ticker] {
			return fmt.Errorf("duplicate holding ticker: %s", h.Ticker)
		}
		seen[h.Ticker] = true

		if h.Shares <= 0 {
			return fmt.Errorf("holding %s: shares must be positive, got %g", h.Ticker, h.Shares)
		}
		if h.AvgCost < 0 {
			return fmt.Errorf("holding %s: avgCost cannot be negative, got %g", h.Ticker, h.AvgCost)
		}
	}
	return nil
}
