package search

import (
	"github.com/atlas-desktop/quantback/internal/engine"
	"github.com/atlas-desktop/quantback/internal/metrics"
	"github.com/atlas-desktop/quantback/internal/position"
	"github.com/atlas-desktop/quantback/internal/strategy"
	"github.com/atlas-desktop/quantback/pkg/candle"
)

// OOSPeriod is one out-of-sample window: a candle series (and optional
// sub-bar data) disjoint from the data the search was optimized on.
type OOSPeriod struct {
	Series candle.Series
	Sub    candle.SubBarData
}

// EvaluateOOS re-runs every result's patched strategy against each OOS
// period and attaches the headline metrics, per spec §4.8 ("walk-forward
// validation"). The run uses a fresh Engine per evaluation whose Cancel is
// never invoked — an always-false local cancellation flag, since an OOS
// pass is bounded by len(results)*len(periods) and isn't itself cancellable
// mid-flight.
func EvaluateOOS(
	prototype *strategy.Strategy,
	ranges []ParameterRange,
	results []*Result,
	periods []OOSPeriod,
	instr position.Instrument,
	initialCapital float64,
	tf candle.Timeframe,
) error {
	for _, r := range results {
		patched := patchAll(prototype, ranges, r.Combo)
		oosResults := make([]OOSResult, 0, len(periods))

		for idx, period := range periods {
			eng := engine.New(nil)
			runResult, err := eng.Run(patched, period.Series, period.Sub, instr, initialCapital, nil)
			if err != nil {
				continue
			}
			m := metrics.Calculate(runResult.Trades, runResult.EquityCurve, initialCapital, tf)
			oosResults = append(oosResults, OOSResult{PeriodIndex: idx, Metrics: m})
		}
		r.OOS = oosResults
	}
	return nil
}
