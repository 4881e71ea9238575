// Package sectors ranks market sectors by relative strength, classifies
// their momentum, and computes a pairwise correlation matrix of daily
// returns.
package sectors

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/spyglass/internal/cache"
	"github.com/aristath/spyglass/internal/history"
	"github.com/aristath/spyglass/pkg/formulas"
)

// Engine produces sector rotation analysis, cache-aside over the store.
type Engine struct {
	provider        history.SeriesProvider
	store           *cache.Store
	benchmark       string
	strongThreshold float64
	log             zerolog.Logger
}

// NewEngine creates a sector rotation engine. strongThreshold is the 3-month
// return (as a decimal, default 0.10) beyond which a consistent trend is
// classified strong_up / strong_down.
func NewEngine(provider history.SeriesProvider, store *cache.Store, benchmark string, strongThreshold float64, log zerolog.Logger) *Engine {
	return &Engine{
		provider:        provider,
		store:           store,
		benchmark:       benchmark,
		strongThreshold: strongThreshold,
		log:             log.With().Str("service", "sectors").Logger(),
	}
}

// Analyze returns the rotation bundle for a sector set. Sectors with no
// usable price data are dropped from the result with a warning. The cache
// key carries the benchmark and every sector ticker as its own segment so
// ticker invalidation evicts the entry; segments are sorted, so the order of
// the input slice does not affect the key.
func (e *Engine) Analyze(ctx context.Context, sectors []string) (Rotation, error) {
	if len(sectors) == 0 {
		sectors = DefaultSectors
	}

	sorted := make([]string, len(sectors))
	copy(sorted, sectors)
	sort.Strings(sorted)
	key := cache.Key(cache.NamespaceSector, append([]string{e.benchmark}, sorted...)...)

	return cache.CacheAside(ctx, e.store, key, cache.TTLFor(cache.NamespaceSector),
		func(ctx context.Context) (Rotation, error) {
			return e.compute(ctx, sectors)
		})
}

func (e *Engine) compute(ctx context.Context, sectors []string) (Rotation, error) {
	benchmark, err := e.provider.FetchSeries(ctx, e.benchmark, history.Period1Y)
	if err != nil {
		return Rotation{}, fmt.Errorf("benchmark %s: %w", e.benchmark, err)
	}
	benchmark3Mo, _ := benchmark.TrailingReturn(history.Period3Mo.Days())

	seriesBySector := make(map[string]history.Series, len(sectors))
	var available []string
	for _, sector := range sectors {
		series, err := e.provider.FetchSeries(ctx, sector, history.Period1Y)
		if err != nil {
			if errors.Is(err, history.ErrDataUnavailable) {
				e.log.Warn().Str("sector", sector).Msg("No price data for sector, skipping")
				continue
			}
			return Rotation{}, err
		}
		seriesBySector[sector] = series
		available = append(available, sector)
	}
	sort.Strings(available)

	snapshots := make([]Snapshot, 0, len(available))
	for _, sector := range available {
		snapshots = append(snapshots, e.snapshot(sector, seriesBySector[sector], benchmark3Mo))
	}

	return Rotation{
		Snapshots:   snapshots,
		Correlation: correlationMatrix(available, seriesBySector),
	}, nil
}

// snapshot derives one sector's rotation view from its price series and the
// benchmark's trailing 3-month return.
func (e *Engine) snapshot(sector string, series history.Series, benchmark3Mo float64) Snapshot {
	week, _ := series.TrailingReturn(history.Period1W.Days())
	month, _ := series.TrailingReturn(history.Period1Mo.Days())
	quarter, _ := series.TrailingReturn(history.Period3Mo.Days())
	half, _ := series.TrailingReturn(history.Period6Mo.Days())
	year, _ := series.TrailingReturn(history.Period1Y.Days())

	relativeStrength := (quarter - benchmark3Mo) * 100
	momentum := classifyMomentum(week, month, quarter, e.strongThreshold)

	return Snapshot{
		Sector:           sector,
		RelativeStrength: formulas.Round2(relativeStrength),
		Momentum:         momentum,
		Performance: Performance{
			Week:    formulas.Round2(week * 100),
			Month:   formulas.Round2(month * 100),
			Quarter: formulas.Round2(quarter * 100),
			Half:    formulas.Round2(half * 100),
			Year:    formulas.Round2(year * 100),
		},
		Signal: rotationSignal(relativeStrength, momentum),
	}
}

// classifyMomentum looks at the trend across the 1w, 1m and 3m returns. A
// consistent trend (all windows the same sign, magnitude growing with the
// window) whose 3-month return clears the strong threshold is strong_up or
// strong_down; same-sign returns below that are up or down; mixed signs are
// neutral.
func classifyMomentum(week, month, quarter, strongThreshold float64) Momentum {
	switch {
	case week > 0 && month > 0 && quarter > 0:
		if week <= month && month <= quarter && quarter >= strongThreshold {
			return MomentumStrongUp
		}
		return MomentumUp
	case week < 0 && month < 0 && quarter < 0:
		if week >= month && month >= quarter && quarter <= -strongThreshold {
			return MomentumStrongDown
		}
		return MomentumDown
	default:
		return MomentumNeutral
	}
}

// rotationSignal is the policy table combining relative strength and
// momentum.
func rotationSignal(relativeStrength float64, momentum Momentum) Signal {
	if relativeStrength > 0 {
		switch momentum {
		case MomentumStrongUp:
			return SignalBuy
		case MomentumUp:
			return SignalAccumulate
		}
		return SignalHold
	}

	switch momentum {
	case MomentumStrongDown:
		return SignalSell
	case MomentumDown:
		return SignalReduce
	}
	return SignalHold
}

// correlationMatrix computes the pairwise Pearson correlation of daily
// returns for every sector pair. Each cell aligns only that pair's common
// trading dates; the intersection is not global across all sectors. The
// diagonal is exactly 1.0 by definition.
func correlationMatrix(sectors []string, seriesBySector map[string]history.Series) CorrelationMatrix {
	values := make(map[string]map[string]float64, len(sectors))
	for _, s := range sectors {
		values[s] = make(map[string]float64, len(sectors))
		values[s][s] = 1.0
	}

	for i := 0; i < len(sectors); i++ {
		for j := i + 1; j < len(sectors); j++ {
			a, b := sectors[i], sectors[j]
			corr := pairCorrelation(seriesBySector[a], seriesBySector[b])
			values[a][b] = corr
			values[b][a] = corr
		}
	}

	return CorrelationMatrix{Sectors: sectors, Values: values}
}

// pairCorrelation inner-joins two series on trading dates and correlates
// their daily returns. 0 when fewer than three common dates exist or either
// return series is constant.
func pairCorrelation(a, b history.Series) float64 {
	bByDate := b.ByDate()

	var aAligned, bAligned []float64
	for _, p := range a {
		if price, ok := bByDate[p.Date]; ok && price > 0 && p.Close > 0 {
			aAligned = append(aAligned, p.Close)
			bAligned = append(bAligned, price)
		}
	}

	corr := formulas.Correlation(formulas.Returns(aAligned), formulas.Returns(bAligned))
	return formulas.Round2(corr)
}
