package search

import (
	"sort"

	"github.com/atlas-desktop/quantback/internal/engine"
	"github.com/atlas-desktop/quantback/internal/metrics"
	"github.com/atlas-desktop/quantback/internal/position"
	"github.com/atlas-desktop/quantback/internal/strategy"
	"github.com/atlas-desktop/quantback/pkg/candle"
)

// Result is one evaluated parameter combination: the raw grid/GA values
// (Combo, in Ranges order), the headline ~10 metrics, the per-objective
// values feeding composite scoring, and — once attached by EvaluateOOS —
// the out-of-sample metrics for each configured OOS period.
type Result struct {
	ParamValues     map[string]float64
	Combo           []float64
	Metrics         *metrics.Metrics
	ObjectiveValues map[ObjectiveKey]float64
	ObjectiveValue  float64
	CompositeScore  float64
	OOS             []OOSResult
}

// OOSResult is one out-of-sample period's headline metrics for a result
// that survived into the truncated top-MAX_RESULTS list.
type OOSResult struct {
	PeriodIndex int
	Metrics     *metrics.Metrics
}

// SearchResult is a full grid/GA run's output: the sorted, truncated result
// list plus whether the run was cut short by cancellation (spec Design
// Notes #1: the search engine always returns partial results rather than
// discarding them).
type SearchResult struct {
	RunID     string
	Results   []*Result
	Cancelled bool
}

// evalParams bundles everything an evaluation needs beyond the combo
// itself, to keep evaluate's signature manageable across grid and GA.
type evalParams struct {
	Prototype      *strategy.Strategy
	Ranges         []ParameterRange
	Series         candle.Series
	Sub            candle.SubBarData
	Instrument     position.Instrument
	InitialCapital float64
	Timeframe      candle.Timeframe
	Objectives     []ObjectiveKey
}

func evaluate(p evalParams, combo []float64) (*Result, error) {
	patched := patchAll(p.Prototype, p.Ranges, combo)

	eng := engine.New(nil)
	runResult, err := eng.Run(patched, p.Series, p.Sub, p.Instrument, p.InitialCapital, nil)
	if err != nil {
		return nil, err
	}
	m := metrics.Calculate(runResult.Trades, runResult.EquityCurve, p.InitialCapital, p.Timeframe)

	paramValues := make(map[string]float64, len(p.Ranges))
	for i, pr := range p.Ranges {
		paramValues[pr.DisplayName] = combo[i]
	}

	objValues := make(map[ObjectiveKey]float64, len(p.Objectives))
	for _, key := range p.Objectives {
		objValues[key] = extractObjective(m, key)
	}

	r := &Result{
		ParamValues:     paramValues,
		Combo:           append([]float64(nil), combo...),
		Metrics:         m,
		ObjectiveValues: objValues,
	}
	if len(p.Objectives) > 0 {
		r.ObjectiveValue = objValues[p.Objectives[0]]
	}
	return r, nil
}

// finalize composite-scores, stable-sorts descending, and truncates to
// maxResults (spec §5: "sorted by composite_score ... descending ...
// truncated to MAX_RESULTS", ties broken by insertion order).
func finalize(results []*Result, objectives []ObjectiveKey, maxResults int) []*Result {
	compositeScore(results, objectives)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CompositeScore > results[j].CompositeScore
	})
	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}
