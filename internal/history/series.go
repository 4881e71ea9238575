// Package history provides price series types and access to historical
// daily prices. Engines consume series through the SeriesProvider interface;
// the concrete implementation in this service reads from the history
// database.
package history

import (
	"fmt"
	"time"
)

// PricePoint is a single trading-day observation.
type PricePoint struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Close float64 `json:"close"`
}

// Series is an ordered sequence of trading-day prices for one instrument.
// Dates are strictly increasing with no duplicates.
type Series []PricePoint

// Closes returns the close prices in date order.
func (s Series) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, p := range s {
		closes[i] = p.Close
	}
	return closes
}

// ByDate returns a date -> close lookup map.
func (s Series) ByDate() map[string]float64 {
	m := make(map[string]float64, len(s))
	for _, p := range s {
		m[p.Date] = p.Close
	}
	return m
}

// SpanDays returns the number of calendar days between the first and last
// observations. 0 for series shorter than two points.
func (s Series) SpanDays() int {
	if len(s) < 2 {
		return 0
	}
	first, err1 := time.Parse("2006-01-02", s[0].Date)
	last, err2 := time.Parse("2006-01-02", s[len(s)-1].Date)
	if err1 != nil || err2 != nil {
		return 0
	}
	return int(last.Sub(first).Hours() / 24)
}

// TrailingReturn computes the simple return over the trailing window of the
// given calendar days, ending at the latest observation. The second return
// value is false when the series does not cover the window.
func (s Series) TrailingReturn(days int) (float64, bool) {
	if len(s) < 2 {
		return 0, false
	}

	last := s[len(s)-1]
	lastDate, err := time.Parse("2006-01-02", last.Date)
	if err != nil {
		return 0, false
	}
	cutoff := lastDate.AddDate(0, 0, -days).Format("2006-01-02")

	// First observation on or after the cutoff
	for _, p := range s {
		if p.Date >= cutoff {
			if p.Date == last.Date || p.Close <= 0 {
				return 0, false
			}
			return last.Close/p.Close - 1, true
		}
	}
	return 0, false
}

// Period is a named lookback window accepted by the price provider.
type Period string

const (
	Period1W  Period = "1w"
	Period1Mo Period = "1mo"
	Period3Mo Period = "3mo"
	Period6Mo Period = "6mo"
	Period1Y  Period = "1y"
)

// Days returns the calendar-day span of the period.
func (p Period) Days() int {
	switch p {
	case Period1W:
		return 7
	case Period1Mo:
		return 30
	case Period3Mo:
		return 91
	case Period6Mo:
		return 182
	case Period1Y:
		return 365
	default:
		return 0
	}
}

// ParsePeriod validates a period string.
func ParsePeriod(s string) (Period, error) {
	p := Period(s)
	if p.Days() == 0 {
		return "", fmt.Errorf("invalid period: %q (must be one of 1w, 1mo, 3mo, 6mo, 1y)", s)
	}
	return p, nil
}
