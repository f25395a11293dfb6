package rule_test

import (
	"testing"

	"github.com/atlas-desktop/quantback/internal/indicator"
	"github.com/atlas-desktop/quantback/internal/rule"
	"github.com/atlas-desktop/quantback/pkg/candle"
)

// fakeSource satisfies rule.IndicatorSource with a single canned output,
// keyed by cache key, standing in for internal/cache in these unit tests.
type fakeSource struct {
	outputs map[string]indicator.Output
}

func (f fakeSource) Get(spec indicator.Spec) (indicator.Output, bool) {
	out, ok := f.outputs[spec.CacheKey()]
	return out, ok
}

func seriesOf(closes []float64) candle.Series {
	s := make(candle.Series, len(closes))
	for i, c := range closes {
		s[i] = candle.Candle{
			TimestampMicros: int64(i) * 60_000_000,
			Open:            c,
			High:            c + 1,
			Low:             c - 1,
			Close:           c,
			Volume:          100,
		}
	}
	return s
}

func TestEvaluateSimpleGreaterThan(t *testing.T) {
	series := seriesOf([]float64{10, 20, 5})
	ev := rule.NewEvaluator(series, fakeSource{})
	rules := []rule.Rule{
		{Left: rule.Operand{Kind: rule.OperandPrice, PriceField: rule.Close}, Comparator: rule.GT,
			Right: rule.Operand{Kind: rule.OperandConstant, ConstantValue: 15}},
	}
	if !ev.Evaluate(rules, 1, 0) {
		t.Error("close=20 > 15 should be true at bar 1")
	}
	if ev.Evaluate(rules, 2, 0) {
		t.Error("close=5 > 15 should be false at bar 2")
	}
}

func TestEvaluateNaNOperandIsFalse(t *testing.T) {
	series := seriesOf([]float64{10, 20, 30})
	sma := indicator.Spec{Kind: indicator.SMA, Params: indicator.Params{Period: 3}}
	out, err := indicator.Compute(sma, indicator.OHLCV{
		TimestampsMicros: []int64{0, 1, 2},
		Open:             []float64{10, 20, 30},
		High:             []float64{11, 21, 31},
		Low:              []float64{9, 19, 29},
		Close:            []float64{10, 20, 30},
		Volume:           []float64{1, 1, 1},
	})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	src := fakeSource{outputs: map[string]indicator.Output{sma.CacheKey(): out}}
	ev := rule.NewEvaluator(series, src)
	rules := []rule.Rule{
		{Left: rule.Operand{Kind: rule.OperandIndicator, IndicatorSpec: sma}, Comparator: rule.GT,
			Right: rule.Operand{Kind: rule.OperandConstant, ConstantValue: 0}},
	}
	// Bar 0 is inside SMA(3)'s warm-up: NaN primary value means the rule must
	// evaluate false, never panic or treat NaN as satisfying ">".
	if ev.Evaluate(rules, 0, 0) {
		t.Error("NaN operand should make the comparator false")
	}
}

func TestEvaluateCrossAbove(t *testing.T) {
	// Price crosses above a constant threshold of 15 between bar 1 and bar 2.
	series := seriesOf([]float64{10, 14, 16, 12})
	ev := rule.NewEvaluator(series, fakeSource{})
	rules := []rule.Rule{
		{Left: rule.Operand{Kind: rule.OperandPrice, PriceField: rule.Close}, Comparator: rule.CrossAbove,
			Right: rule.Operand{Kind: rule.OperandConstant, ConstantValue: 15}},
	}
	if ev.Evaluate(rules, 1, 0) {
		t.Error("bar 1: no prior bar data satisfying a cross yet")
	}
	if !ev.Evaluate(rules, 2, 0) {
		t.Error("bar 2: close rose from 14 to 16 across the 15 threshold, should cross above")
	}
	if ev.Evaluate(rules, 3, 0) {
		t.Error("bar 3: close fell back to 12, not a cross above")
	}
}

func TestEvaluateOffsetLooksBackward(t *testing.T) {
	series := seriesOf([]float64{10, 20, 30})
	ev := rule.NewEvaluator(series, fakeSource{})
	rules := []rule.Rule{
		{Left: rule.Operand{Kind: rule.OperandPrice, PriceField: rule.Close, Offset: 1}, Comparator: rule.EQ,
			Right: rule.Operand{Kind: rule.OperandConstant, ConstantValue: 10}},
	}
	if !ev.Evaluate(rules, 1, 0) {
		t.Error("close at bar 1 offset by 1 should read bar 0's close (10)")
	}
	if ev.Evaluate(rules, 0, 0) {
		t.Error("bar 0 offset by 1 resolves to index -1, which is NaN and must be false")
	}
}

func TestEvaluateChainedAndOr(t *testing.T) {
	series := seriesOf([]float64{10, 20, 30})
	ev := rule.NewEvaluator(series, fakeSource{})
	andOp := rule.And
	rules := []rule.Rule{
		{Left: rule.Operand{Kind: rule.OperandPrice, PriceField: rule.Close}, Comparator: rule.GT,
			Right: rule.Operand{Kind: rule.OperandConstant, ConstantValue: 5}, ChainToNext: &andOp},
		{Left: rule.Operand{Kind: rule.OperandPrice, PriceField: rule.Close}, Comparator: rule.LT,
			Right: rule.Operand{Kind: rule.OperandConstant, ConstantValue: 15}},
	}
	if !ev.Evaluate(rules, 0, 0) {
		t.Error("bar 0: close=10 is >5 AND <15, chained rule should be true")
	}
	if ev.Evaluate(rules, 2, 0) {
		t.Error("bar 2: close=30 is not <15, chained AND should be false")
	}
}

func TestEvaluateEmptySequenceIsFalse(t *testing.T) {
	series := seriesOf([]float64{10})
	ev := rule.NewEvaluator(series, fakeSource{})
	if ev.Evaluate(nil, 0, 0) {
		t.Error("an empty rule sequence must never fire")
	}
}

func TestComputePatternsDoji(t *testing.T) {
	series := candle.Series{
		{TimestampMicros: 0, Open: 10, High: 10.5, Low: 9.5, Close: 10.02, Volume: 1},
	}
	patterns := rule.ComputePatterns(series)
	if patterns[rule.Doji][0] != 1.0 {
		t.Error("near-equal open/close with a real range should flag as a doji")
	}
}
