package sectors

// Momentum classifies the trend across trailing return windows.
type Momentum string

const (
	MomentumStrongUp   Momentum = "strong_up"
	MomentumUp         Momentum = "up"
	MomentumNeutral    Momentum = "neutral"
	MomentumDown       Momentum = "down"
	MomentumStrongDown Momentum = "strong_down"
)

// Signal is the rotation recommendation derived from relative strength and
// momentum jointly.
type Signal string

const (
	SignalBuy        Signal = "Buy"
	SignalAccumulate Signal = "Accumulate"
	SignalHold       Signal = "Hold"
	SignalReduce     Signal = "Reduce"
	SignalSell       Signal = "Sell"
)

// Performance holds trailing simple returns as percentages.
type Performance struct {
	Week    float64 `json:"1w"`
	Month   float64 `json:"1m"`
	Quarter float64 `json:"3m"`
	Half    float64 `json:"6m"`
	Year    float64 `json:"1y"`
}

// Snapshot is the per-sector rotation view served to the dashboard.
type Snapshot struct {
	Sector           string      `json:"sector"`
	RelativeStrength float64     `json:"relativeStrength"` // Percentage points vs benchmark, 3mo
	Momentum         Momentum    `json:"momentum"`
	Performance      Performance `json:"performance"`
	Signal           Signal      `json:"signal"`
}

// CorrelationMatrix maps sector x sector to the Pearson correlation of their
// daily returns. Symmetric, diagonal exactly 1.0.
type CorrelationMatrix struct {
	Sectors []string                      `json:"sectors"`
	Values  map[string]map[string]float64 `json:"values"`
}

// Rotation bundles the snapshots and the correlation matrix for one sector
// set.
type Rotation struct {
	Snapshots   []Snapshot        `json:"snapshots"`
	Correlation CorrelationMatrix `json:"correlation"`
}

// DefaultSectors are the SPDR sector ETFs used when the caller does not name
// an explicit sector set.
var DefaultSectors = []string{
	"XLB", "XLC", "XLE", "XLF", "XLI", "XLK", "XLP", "XLRE", "XLU", "XLV", "XLY",
}
