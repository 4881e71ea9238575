package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
)

// RSI returns the current Relative Strength Index (0-100) over the given
// period, or nil when the series is too short.
func RSI(closes []float64, length int) *float64 {
	if len(closes) < length+1 {
		return nil
	}
	return lastValid(talib.Rsi(closes, length))
}

// SMA returns the current Simple Moving Average over the given period, or
// nil when the series is too short.
func SMA(closes []float64, length int) *float64 {
	if len(closes) < length {
		return nil
	}
	return lastValid(talib.Sma(closes, length))
}

// EMA returns the current Exponential Moving Average over the given period.
// Falls back to the simple mean when the series is shorter than the period.
func EMA(closes []float64, length int) *float64 {
	if len(closes) == 0 {
		return nil
	}
	if len(closes) < length {
		sma := Mean(closes)
		return &sma
	}
	return lastValid(talib.Ema(closes, length))
}

// ROC returns the current Rate of Change as a percentage over the given
// period, or nil when the series is too short.
func ROC(closes []float64, length int) *float64 {
	if len(closes) < length+1 {
		return nil
	}
	return lastValid(talib.Roc(closes, length))
}

// lastValid returns a pointer to the last non-NaN value of an indicator
// series, or nil.
func lastValid(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	v := values[len(values)-1]
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
