package history

import (
	"context"
	"errors"
)

// ErrDataUnavailable signals that a ticker is unknown or the upstream source
// returned nothing. Callers recover by falling back to an empty or zeroed
// result where that is semantically valid.
var ErrDataUnavailable = errors.New("price data unavailable")

// SeriesProvider supplies ordered daily price series for a ticker over a
// lookback period.
type SeriesProvider interface {
	FetchSeries(ctx context.Context, ticker string, period Period) (Series, error)
}
