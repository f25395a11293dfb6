package search

import "github.com/atlas-desktop/quantback/internal/metrics"

// ObjectiveKey is one of the seven extractable fitness targets (spec §4.8).
// MinStagnation and MinUlcerIndex are minimise-type: extractObjective
// negates them so every objective value is uniformly "bigger is better",
// letting the rest of the package (tournament selection, composite scoring)
// stay agnostic to direction.
type ObjectiveKey int

const (
	TotalProfit ObjectiveKey = iota
	SharpeRatio
	ProfitFactor
	WinRate
	ReturnDdRatio
	MinStagnation
	MinUlcerIndex
)

func extractObjective(m *metrics.Metrics, key ObjectiveKey) float64 {
	switch key {
	case TotalProfit:
		return m.NetProfit
	case SharpeRatio:
		return m.SharpeRatio
	case ProfitFactor:
		return m.ProfitFactor
	case WinRate:
		return m.WinRate
	case ReturnDdRatio:
		return m.CalmarRatio
	case MinStagnation:
		return -float64(m.StagnationBars)
	case MinUlcerIndex:
		return -m.UlcerIndex
	default:
		return 0
	}
}

// compositeScore computes each result's multi-objective composite: the
// arithmetic mean of its per-objective min-max normalisation over the full
// result set (spec §4.8). A single-objective search's composite equals its
// one (already direction-corrected) objective value.
func compositeScore(results []*Result, objectives []ObjectiveKey) {
	if len(objectives) <= 1 {
		for _, r := range results {
			if len(r.ObjectiveValues) > 0 {
				r.CompositeScore = r.ObjectiveValues[objectives[0]]
			}
		}
		return
	}

	mins := make(map[ObjectiveKey]float64, len(objectives))
	maxs := make(map[ObjectiveKey]float64, len(objectives))
	for _, key := range objectives {
		first := true
		for _, r := range results {
			v := r.ObjectiveValues[key]
			if first || v < mins[key] {
				mins[key] = v
			}
			if first || v > maxs[key] {
				maxs[key] = v
			}
			first = false
		}
	}

	for _, r := range results {
		var sum float64
		for _, key := range objectives {
			spread := maxs[key] - mins[key]
			normalized := 0.5
			if spread > 0 {
				normalized = (r.ObjectiveValues[key] - mins[key]) / spread
			}
			sum += normalized
		}
		r.CompositeScore = sum / float64(len(objectives))
	}
}
