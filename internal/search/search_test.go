package search_test

import (
	"context"
	"errors"
	"testing"

	"github.com/atlas-desktop/quantback/internal/position"
	"github.com/atlas-desktop/quantback/internal/rule"
	"github.com/atlas-desktop/quantback/internal/search"
	"github.com/atlas-desktop/quantback/internal/strategy"
	"github.com/atlas-desktop/quantback/pkg/bterrors"
	"github.com/atlas-desktop/quantback/pkg/candle"
)

const oneMinuteMicros = int64(60_000_000)

func sineSeries(n int) candle.Series {
	series := make(candle.Series, n)
	ts := int64(1_700_000_000_000_000)
	price := 1.1000
	up := true
	for i := 0; i < n; i++ {
		if i%12 == 0 {
			up = !up
		}
		if up {
			price += 0.0010
		} else {
			price -= 0.0010
		}
		series[i] = candle.Candle{TimestampMicros: ts, Open: price, High: price + 0.0005, Low: price - 0.0005, Close: price, Volume: 1}
		ts += oneMinuteMicros
	}
	return series
}

func baseStrategy(threshold float64) *strategy.Strategy {
	return &strategy.Strategy{
		LongEntry: []rule.Rule{{
			Left:       rule.Operand{Kind: rule.OperandPrice, PriceField: rule.Close},
			Comparator: rule.GT,
			Right:      rule.Operand{Kind: rule.OperandConstant, ConstantValue: threshold},
		}},
		LongExit: []rule.Rule{{
			Left:       rule.Operand{Kind: rule.OperandPrice, PriceField: rule.Close},
			Comparator: rule.LT,
			Right:      rule.Operand{Kind: rule.OperandConstant, ConstantValue: threshold},
		}},
		Sizing:    strategy.PositionSizing{Mode: strategy.FixedLots, Value: 1},
		Direction: strategy.Long,
	}
}

var fxInstrument = position.Instrument{
	PipSize:  0.0001,
	PipValue: 10,
	MinLot:   0.01,
	LotStep:  0.01,
	LotSize:  100000,
}

func thresholdRange(min, max, step float64) search.ParameterRange {
	return search.ParameterRange{
		Target:      search.TargetRuleOperand,
		RuleGroup:   search.LongEntryGroup,
		RuleIndex:   0,
		Side:        search.RightOperand,
		ParamName:   "value",
		DisplayName: "entry_threshold",
		Min:         min,
		Max:         max,
		Step:        step,
	}
}

func TestParameterRangeValuesAndSnap(t *testing.T) {
	pr := thresholdRange(1.0, 1.2, 0.05)
	values := pr.Values()
	want := []float64{1.0, 1.05, 1.1, 1.15, 1.2}
	if len(values) != len(want) {
		t.Fatalf("expected %d values, got %d (%v)", len(want), len(values), values)
	}
	for i := range want {
		if diff := values[i] - want[i]; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("value %d: expected %v, got %v", i, want[i], values[i])
		}
	}

	if snapped := pr.Snap(1.07); snapped < 1.049 || snapped > 1.051 {
		t.Fatalf("expected snap(1.07) near 1.05, got %v", snapped)
	}
	if snapped := pr.Snap(5.0); snapped != 1.2 {
		t.Fatalf("expected snap to clamp to max 1.2, got %v", snapped)
	}
}

func TestGridSearchRoundTrip(t *testing.T) {
	series := sineSeries(120)
	strat := baseStrategy(1.1000)
	ranges := []search.ParameterRange{thresholdRange(1.100, 1.108, 0.004)}

	eng := search.NewEngine()
	result, err := eng.Grid(context.Background(), search.GridConfig{
		Prototype:       strat,
		Ranges:          ranges,
		Series:          series,
		Instrument:      fxInstrument,
		InitialCapital:  10_000,
		Objectives:      []search.ObjectiveKey{search.TotalProfit},
		MaxCombinations: 1000,
		MaxResults:      10,
	})
	if err != nil {
		t.Fatalf("Grid: %v", err)
	}
	if result.Cancelled {
		t.Fatalf("expected not cancelled")
	}
	if len(result.Results) == 0 {
		t.Fatalf("expected at least one result")
	}
	for i := 1; i < len(result.Results); i++ {
		if result.Results[i].CompositeScore > result.Results[i-1].CompositeScore {
			t.Fatalf("results not sorted descending by composite score at index %d", i)
		}
	}
	for _, r := range result.Results {
		if _, ok := r.ParamValues["entry_threshold"]; !ok {
			t.Fatalf("expected entry_threshold param value recorded")
		}
	}
}

func TestGridSearchRejectsTooManyCombinations(t *testing.T) {
	series := sineSeries(30)
	strat := baseStrategy(1.1000)
	ranges := []search.ParameterRange{
		thresholdRange(1.0, 2.0, 0.0001),
	}

	eng := search.NewEngine()
	_, err := eng.Grid(context.Background(), search.GridConfig{
		Prototype:       strat,
		Ranges:          ranges,
		Series:          series,
		Instrument:      fxInstrument,
		InitialCapital:  10_000,
		Objectives:      []search.ObjectiveKey{search.TotalProfit},
		MaxCombinations: 100,
	})
	if !errors.Is(err, bterrors.ErrTooManyCombinations) {
		t.Fatalf("expected ErrTooManyCombinations, got %v", err)
	}
}

func TestGridSearchCancellationReturnsPartialResults(t *testing.T) {
	series := sineSeries(200)
	strat := baseStrategy(1.1000)
	ranges := []search.ParameterRange{thresholdRange(1.0, 1.2, 0.001)}

	eng := search.NewEngine()
	eng.Cancel()
	result, err := eng.Grid(context.Background(), search.GridConfig{
		Prototype:       strat,
		Ranges:          ranges,
		Series:          series,
		Instrument:      fxInstrument,
		InitialCapital:  10_000,
		Objectives:      []search.ObjectiveKey{search.TotalProfit},
		MaxCombinations: 10_000,
	})
	if err != nil {
		t.Fatalf("Grid: %v", err)
	}
	if !result.Cancelled {
		t.Fatalf("expected Cancelled = true")
	}
}

func TestGeneticAlgorithmIsDeterministicGivenSeed(t *testing.T) {
	series := sineSeries(120)
	strat := baseStrategy(1.1000)
	ranges := []search.ParameterRange{thresholdRange(1.095, 1.115, 0.002)}

	run := func() *search.SearchResult {
		eng := search.NewEngine()
		result, err := eng.Genetic(context.Background(), search.GAConfig{
			GridConfig: search.GridConfig{
				Prototype:      strat,
				Ranges:         ranges,
				Series:         series,
				Instrument:     fxInstrument,
				InitialCapital: 10_000,
				Objectives:     []search.ObjectiveKey{search.TotalProfit},
				MaxResults:     5,
			},
			PopulationSize: 8,
			Generations:    3,
			CrossoverRate:  0.7,
			MutationRate:   0.1,
			Seed:           42,
		})
		if err != nil {
			t.Fatalf("Genetic: %v", err)
		}
		return result
	}

	a := run()
	b := run()
	if len(a.Results) != len(b.Results) {
		t.Fatalf("expected same result count across seeded runs, got %d and %d", len(a.Results), len(b.Results))
	}
	for i := range a.Results {
		if a.Results[i].CompositeScore != b.Results[i].CompositeScore {
			t.Fatalf("result %d: expected identical composite scores across seeded runs, got %v and %v", i, a.Results[i].CompositeScore, b.Results[i].CompositeScore)
		}
	}
}
