package rule

import (
	"math"

	"github.com/atlas-desktop/quantback/internal/indicator"
	"github.com/atlas-desktop/quantback/pkg/calendar"
	"github.com/atlas-desktop/quantback/pkg/candle"
)

// epsilon is the absolute tolerance for EQ comparisons (spec §4.2:
// "Equality uses an absolute epsilon of machine epsilon").
const epsilon = 2.220446049250313e-16

// Comparator is the closed set of predicate operators over two Operands.
type Comparator int

const (
	GT Comparator = iota
	LT
	GE
	LE
	EQ
	CrossAbove
	CrossBelow
)

// ChainOp joins one Rule's result to the next in a sequence's left fold.
type ChainOp int

const (
	And ChainOp = iota
	Or
)

// Rule is a single predicate: Left <Comparator> Right, optionally chained to
// the rule that follows it in the same sequence.
type Rule struct {
	Left        Operand
	Comparator  Comparator
	Right       Operand
	ChainToNext *ChainOp
}

// IndicatorSource resolves a previously-computed indicator output by its
// spec. Satisfied by *cache.Cache; kept as a narrow interface here so this
// package never imports internal/cache (cache, in turn, never imports rule).
type IndicatorSource interface {
	Get(spec indicator.Spec) (indicator.Output, bool)
}

// Evaluator evaluates rule sequences against one candle series. Built once
// per backtest run and reused across every bar.
type Evaluator struct {
	series   candle.Series
	daily    dailyLevels
	patterns map[PatternKind][]float64
	src      IndicatorSource
}

func NewEvaluator(series candle.Series, src IndicatorSource) *Evaluator {
	return &Evaluator{
		series:   series,
		daily:    computeDailyLevels(series),
		patterns: ComputePatterns(series),
		src:      src,
	}
}

// Evaluate left-folds a rule sequence at bar_index: the first rule's result
// seeds the accumulator, then each subsequent rule's result is combined with
// the prior rule's ChainToNext operator. An empty sequence evaluates false
// (spec §4.2: an entry/exit sequence with zero rules never fires).
func (e *Evaluator) Evaluate(rules []Rule, barIndex int, timeOffset int) bool {
	if len(rules) == 0 {
		return false
	}
	result := e.evalSingle(rules[0], barIndex, timeOffset)
	for i := 1; i < len(rules); i++ {
		next := e.evalSingle(rules[i], barIndex, timeOffset)
		op := rules[i-1].ChainToNext
		if op == nil {
			op = new(ChainOp) // default And (zero value)
		}
		switch *op {
		case Or:
			result = result || next
		default:
			result = result && next
		}
	}
	return result
}

func (e *Evaluator) evalSingle(r Rule, bar int, timeOffset int) bool {
	switch r.Comparator {
	case CrossAbove, CrossBelow:
		if bar <= 0 {
			return false
		}
		lPrev := e.valueAt(r.Left, bar-1, timeOffset)
		rPrev := e.valueAt(r.Right, bar-1, timeOffset)
		lCur := e.valueAt(r.Left, bar, timeOffset)
		rCur := e.valueAt(r.Right, bar, timeOffset)
		if isNaN(lPrev) || isNaN(rPrev) || isNaN(lCur) || isNaN(rCur) {
			return false
		}
		if r.Comparator == CrossAbove {
			return lPrev <= rPrev && lCur > rCur
		}
		return lPrev >= rPrev && lCur < rCur
	default:
		l := e.valueAt(r.Left, bar, timeOffset)
		rv := e.valueAt(r.Right, bar, timeOffset)
		if isNaN(l) || isNaN(rv) {
			return false
		}
		switch r.Comparator {
		case GT:
			return l > rv
		case LT:
			return l < rv
		case GE:
			return l >= rv
		case LE:
			return l <= rv
		case EQ:
			return math.Abs(l-rv) <= epsilon
		}
		return false
	}
}

// valueAt resolves an Operand at a bar index. Offset shifts the lookup back
// by `o` bars (i-o); a negative resulting index resolves to NaN rather than
// wrapping or clamping. BarTime operands add time_offset before subtracting
// the offset (i+time_offset-o), matching the spec's separate treatment of
// multi-timeframe bar-time alignment from plain lookback.
func (e *Evaluator) valueAt(op Operand, bar int, timeOffset int) float64 {
	if op.Kind == OperandConstant {
		return op.ConstantValue
	}

	base := bar
	if op.Kind == OperandBarTime {
		base += timeOffset
	}
	idx := base - int(op.Offset)
	if idx < 0 || idx >= len(e.series) {
		return math.NaN()
	}

	switch op.Kind {
	case OperandIndicator:
		out, ok := e.src.Get(op.IndicatorSpec)
		if !ok {
			return math.NaN()
		}
		vals := out.Select(op.IndicatorSelector)
		if idx >= len(vals) {
			return math.NaN()
		}
		return vals[idx]
	case OperandPrice:
		return e.priceAt(op.PriceField, idx)
	case OperandBarTime:
		return e.barTimeAt(op.BarTimeField, idx)
	case OperandCandlePattern:
		arr := e.patterns[op.PatternKind]
		if idx >= len(arr) {
			return math.NaN()
		}
		return arr[idx]
	default:
		return math.NaN()
	}
}

func (e *Evaluator) priceAt(f PriceField, idx int) float64 {
	c := e.series[idx]
	switch f {
	case Open:
		return c.Open
	case High:
		return c.High
	case Low:
		return c.Low
	case Close:
		return c.Close
	case DailyOpen:
		return e.daily.open[idx]
	case DailyHigh:
		return e.daily.high[idx]
	case DailyLow:
		return e.daily.low[idx]
	case DailyClose:
		return e.daily.close[idx]
	default:
		return math.NaN()
	}
}

func (e *Evaluator) barTimeAt(f BarTimeField, idx int) float64 {
	ts := e.series[idx].TimestampMicros
	switch f {
	case CurrentBar:
		return float64(idx)
	case BarTime:
		return float64(ts)
	case BarHour:
		return float64(calendar.HourOfDay(ts))
	case BarMinute:
		return float64(calendar.MinuteOfHour(ts))
	case BarDayOfWeek:
		return float64(calendar.Weekday(ts))
	case BarMonth:
		return float64(calendar.Month(ts))
	default:
		return math.NaN()
	}
}

func isNaN(v float64) bool { return v != v }
