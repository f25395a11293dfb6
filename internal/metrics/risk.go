package metrics

import (
	"sort"

	"github.com/atlas-desktop/quantback/internal/engine"
)

// computeRisk derives historical VaR/CVaR from bar-to-bar equity returns,
// adapted from the teacher's CalculateRiskMetrics (internal/backtester/
// metrics.go) — a figure the distilled spec doesn't name. This bar-to-bar
// series is built here only; Sharpe/Sortino use per-trade returns instead.
func computeRisk(m *Metrics, equityCurve []engine.EquityPoint) {
	if len(equityCurve) < 2 {
		return
	}
	returns := make([]float64, 0, len(equityCurve)-1)
	for i := 1; i < len(equityCurve); i++ {
		prev := equityCurve[i-1].Equity
		if prev == 0 {
			continue
		}
		returns = append(returns, (equityCurve[i].Equity-prev)/prev)
	}
	if len(returns) == 0 {
		return
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	idx95 := int(float64(len(sorted)) * 0.05)
	if idx95 >= 0 && idx95 < len(sorted) {
		m.VaR95 = -sorted[idx95] * 100
	}
	idx99 := int(float64(len(sorted)) * 0.01)
	if idx99 >= 0 && idx99 < len(sorted) {
		m.VaR99 = -sorted[idx99] * 100
	}
	if idx95 > 0 {
		var sum float64
		for i := 0; i < idx95; i++ {
			sum += sorted[i]
		}
		m.CVaR95 = -sum / float64(idx95) * 100
	}
}
