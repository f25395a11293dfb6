package metrics

import (
	"math"

	"github.com/atlas-desktop/quantback/internal/engine"
)

// computeDrawdown scans the equity curve once with a running peak (spec
// §4.7), recording the maximum percent drawdown and its duration in bars
// (from the peak to the deepest subsequent trough), the mean of all
// positive drawdown readings, the stagnation length (longest run without a
// new equity high), and the Ulcer index (root-mean-square of drawdown
// percentages).
func computeDrawdown(m *Metrics, equityCurve []engine.EquityPoint) {
	peak := equityCurve[0].Equity
	peakBar := 0

	var ddSum float64
	var ddCount int
	var ddSquareSum float64

	longestStagnation := 0
	stagnationStart := 0

	for i, pt := range equityCurve {
		if pt.Equity > peak {
			peak = pt.Equity
			peakBar = i
			if i-stagnationStart > longestStagnation {
				longestStagnation = i - stagnationStart
			}
			stagnationStart = i
			continue
		}
		if peak <= 0 {
			continue
		}
		ddPct := (peak - pt.Equity) / peak * 100
		ddSquareSum += ddPct * ddPct
		if ddPct > 0 {
			ddSum += ddPct
			ddCount++
		}
		if ddPct > m.MaxDrawdownPct {
			m.MaxDrawdownPct = ddPct
			m.MaxDrawdownDurationBars = i - peakBar
		}
	}
	if n := len(equityCurve) - 1 - stagnationStart; n > longestStagnation {
		longestStagnation = n
	}
	m.StagnationBars = longestStagnation

	if ddCount > 0 {
		m.MeanDrawdownPct = ddSum / float64(ddCount)
	}
	m.UlcerIndex = math.Sqrt(ddSquareSum / float64(len(equityCurve)))
}
