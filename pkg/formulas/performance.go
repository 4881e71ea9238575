package formulas

import "math"

// SharpeRatio calculates the annualized Sharpe ratio from daily returns.
//
// Formula: (mean(r) * 252 - riskFreeRate) / annualizedVolatility
//
// When volatility is zero (constant value series) the ratio is 0 by
// convention, never infinite or NaN.
func SharpeRatio(dailyReturns []float64, riskFreeRate float64) float64 {
	vol := AnnualizedVolatility(dailyReturns)
	if vol == 0 {
		return 0
	}
	annualReturn := Mean(dailyReturns) * TradingDaysPerYear
	return (annualReturn - riskFreeRate) / vol
}

// Beta calculates the sensitivity of a return series to a benchmark series:
// covariance(returns, benchmark) / variance(benchmark).
//
// Returns 0 when the benchmark variance is zero (flat benchmark) or the
// series lengths do not match.
func Beta(dailyReturns, benchmarkReturns []float64) float64 {
	if len(dailyReturns) != len(benchmarkReturns) || len(dailyReturns) < 2 {
		return 0
	}
	benchVar := Variance(benchmarkReturns)
	if benchVar == 0 {
		return 0
	}
	return Covariance(dailyReturns, benchmarkReturns) / benchVar
}

// MaxDrawdown calculates the largest peak-to-trough decline over a value
// series, reported as a negative (or zero) fraction: -0.10 means a 10% fall
// from the running peak.
func MaxDrawdown(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	maxDrawdown := 0.0
	peak := values[0]
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			drawdown := (peak - v) / peak
			if drawdown > maxDrawdown {
				maxDrawdown = drawdown
			}
		}
	}
	return -maxDrawdown
}

// TotalReturn calculates the simple return between the first and last values.
func TotalReturn(first, last float64) float64 {
	if first <= 0 {
		return 0
	}
	return last/first - 1
}

// CAGR calculates the compound annual growth rate between two values over the
// given number of calendar days: (last/first)^(365/days) - 1.
func CAGR(first, last float64, daysElapsed int) float64 {
	if first <= 0 || last <= 0 || daysElapsed <= 0 {
		return 0
	}
	return math.Pow(last/first, 365.0/float64(daysElapsed)) - 1
}
