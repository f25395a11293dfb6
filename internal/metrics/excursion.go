package metrics

import "github.com/atlas-desktop/quantback/internal/strategy"

// computeExcursion derives mean/max MAE and MFE (in pips) across the trade
// list, per spec §4.7.
func computeExcursion(m *Metrics, trades []strategy.TradeResult) {
	var maeSum, mfeSum float64
	for _, tr := range trades {
		maeSum += tr.MAEPips
		mfeSum += tr.MFEPips
		if tr.MAEPips > m.MaxMAEPips {
			m.MaxMAEPips = tr.MAEPips
		}
		if tr.MFEPips > m.MaxMFEPips {
			m.MaxMFEPips = tr.MFEPips
		}
	}
	n := float64(len(trades))
	if n > 0 {
		m.MeanMAEPips = maeSum / n
		m.MeanMFEPips = mfeSum / n
	}
}
