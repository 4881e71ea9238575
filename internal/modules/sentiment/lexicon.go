package sentiment

// lexicon maps lowercase tokens to polarity weights. AFINN-style valences in
// [-5, 5], skewed toward vocabulary that shows up in financial headlines.
var lexicon = map[string]float64{
	// Positive
	"accelerate":   1,
	"accelerates":  1,
	"advance":      1,
	"advances":     1,
	"beat":         2,
	"beats":        2,
	"boom":         3,
	"booming":      3,
	"boost":        2,
	"boosts":       2,
	"breakout":     2,
	"bullish":      3,
	"buy":          1,
	"buyback":      2,
	"climb":        2,
	"climbs":       2,
	"confident":    2,
	"dividend":     1,
	"exceed":       2,
	"exceeds":      2,
	"expand":       1,
	"expands":      1,
	"gain":         2,
	"gains":        2,
	"good":         2,
	"great":        3,
	"growth":       2,
	"high":         1,
	"improve":      2,
	"improves":     2,
	"improved":     2,
	"jump":         2,
	"jumps":        2,
	"momentum":     1,
	"opportunity":  1,
	"optimistic":   2,
	"outperform":   3,
	"outperforms":  3,
	"positive":     2,
	"profit":       2,
	"profitable":   2,
	"profits":      2,
	"rally":        3,
	"rallies":      3,
	"rebound":      2,
	"rebounds":     2,
	"record":       2,
	"recover":      2,
	"recovery":     2,
	"rise":         2,
	"rises":        2,
	"rising":       2,
	"soar":         3,
	"soars":        3,
	"soaring":      3,
	"solid":        2,
	"strong":       2,
	"success":      2,
	"successful":   2,
	"surge":        3,
	"surges":       3,
	"surging":      3,
	"upbeat":       2,
	"upgrade":      2,
	"upgraded":     2,
	"upgrades":     2,
	"upside":       2,
	"win":          2,
	"wins":         2,

	// Negative
	"bankrupt":      -4,
	"bankruptcy":    -4,
	"bear":          -2,
	"bearish":       -3,
	"collapse":      -4,
	"collapses":     -4,
	"concern":       -1,
	"concerns":      -1,
	"crash":         -4,
	"crashes":       -4,
	"crisis":        -3,
	"cut":           -1,
	"cuts":          -1,
	"decline":       -2,
	"declines":      -2,
	"default":       -3,
	"deficit":       -2,
	"disappointing": -2,
	"downgrade":     -2,
	"downgraded":    -2,
	"downgrades":    -2,
	"downside":      -2,
	"downturn":      -2,
	"drop":          -2,
	"drops":         -2,
	"fall":          -2,
	"falls":         -2,
	"falling":       -2,
	"fear":          -2,
	"fears":         -2,
	"fraud":         -4,
	"investigation": -2,
	"lawsuit":       -2,
	"layoff":        -2,
	"layoffs":       -2,
	"loses":         -2,
	"loss":          -3,
	"losses":        -3,
	"low":           -1,
	"miss":          -2,
	"missed":        -2,
	"misses":        -2,
	"negative":      -2,
	"pessimistic":   -2,
	"plummet":       -4,
	"plummets":      -4,
	"plunge":        -3,
	"plunges":       -3,
	"plunging":      -3,
	"poor":          -2,
	"recession":     -3,
	"risk":          -1,
	"risks":         -1,
	"sell":          -1,
	"selloff":       -3,
	"shortfall":     -2,
	"sink":          -2,
	"sinks":         -2,
	"slide":         -2,
	"slides":        -2,
	"slump":         -3,
	"slumps":        -3,
	"struggle":      -2,
	"struggles":     -2,
	"tumble":        -3,
	"tumbles":       -3,
	"underperform":  -3,
	"underperforms": -3,
	"volatile":      -1,
	"warn":          -2,
	"warning":       -2,
	"warns":         -2,
	"weak":          -2,
	"weakness":      -2,
	"worst":         -3,
}
