// Package engine implements the simulation executor (C6): the bar-by-bar
// state machine that orchestrates the rule evaluator (C2), indicator cache
// (C3), position manager (C4) and sub-bar resolver (C5) into entries,
// exits, and an equity/drawdown curve.
package engine

import (
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atlas-desktop/quantback/internal/cache"
	"github.com/atlas-desktop/quantback/internal/indicator"
	"github.com/atlas-desktop/quantback/internal/position"
	"github.com/atlas-desktop/quantback/internal/rule"
	"github.com/atlas-desktop/quantback/internal/strategy"
	"github.com/atlas-desktop/quantback/internal/subbar"
	"github.com/atlas-desktop/quantback/pkg/bterrors"
	"github.com/atlas-desktop/quantback/pkg/candle"
)

// cancelCheckInterval is how often (in bars) the cooperative cancellation
// flag is polled — checking every bar would add an atomic load to the
// hottest loop in the system for no practical gain (spec §4.6).
const cancelCheckInterval = 1000

// ProgressFunc is invoked periodically with (bars processed, total bars).
type ProgressFunc func(processed, total int)

// EquityPoint is one sample of the running equity curve.
type EquityPoint struct {
	TimestampMicros int64
	Equity          float64
}

// DrawdownPoint is one sample of the running drawdown-from-peak curve.
type DrawdownPoint struct {
	TimestampMicros int64
	DrawdownPct     float64
}

// Result is everything a single simulation run produces, handed to C7.
type Result struct {
	RunID         string
	Trades        []strategy.TradeResult
	EquityCurve   []EquityPoint
	DrawdownCurve []DrawdownPoint
}

// Engine runs one strategy against one candle series plus optional sub-bar
// refinement data. Not safe for concurrent Run calls on the same instance —
// C8's parallel fan-out constructs one Engine per evaluation.
type Engine struct {
	logger    *zap.Logger
	cancelled atomic.Bool
}

func New(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Cancel requests cooperative cancellation; the running Run call observes
// it within cancelCheckInterval bars and fails outright with
// bterrors.ErrCancelled (the single-run engine has no partial-result
// contract — that belongs to C8's search engine, see SPEC_FULL.md §9).
func (e *Engine) Cancel() { e.cancelled.Store(true) }

// Run executes the full bar loop from the cache's derived start_bar to the
// end of series, returning the closed trades and equity/drawdown curves.
func (e *Engine) Run(
	strat *strategy.Strategy,
	series candle.Series,
	sub candle.SubBarData,
	instr position.Instrument,
	initialCapital float64,
	onProgress ProgressFunc,
) (*Result, error) {
	n := len(series)
	if n == 0 {
		return nil, bterrors.ErrNoDataInRange
	}

	timestamps, open, high, low, close, volume := series.Columns()
	ohlcv := indicator.OHLCV{TimestampsMicros: timestamps, Open: open, High: high, Low: low, Close: close, Volume: volume}

	specs := cache.CollectSpecs(strat.Sequences()...)
	ic, err := cache.Build(specs, ohlcv)
	if err != nil {
		return nil, err
	}
	startBar := cache.StartBar(ic, strat.Sequences()...)
	if startBar >= n {
		return nil, bterrors.NewInsufficientData(startBar+1, n)
	}

	evaluator := rule.NewEvaluator(series, ic)
	atrCache := newATRCache(ohlcv)

	var resolver *subbar.Resolver
	if sub.Kind != candle.SubBarNone {
		resolver = subbar.NewResolver(sub)
	}

	st := &runState{
		strat:          strat,
		series:         series,
		high:           high,
		low:            low,
		close:          close,
		evaluator:      evaluator,
		atr:            atrCache,
		resolver:       resolver,
		instr:          instr,
		realizedEquity: initialCapital,
		peakEquity:     initialCapital,
	}

	result := &Result{
		RunID:         uuid.New().String(),
		Trades:        make([]strategy.TradeResult, 0),
		EquityCurve:   make([]EquityPoint, 0, n-startBar),
		DrawdownCurve: make([]DrawdownPoint, 0, n-startBar),
	}

	for i := startBar; i < n; i++ {
		if (i-startBar)%cancelCheckInterval == 0 {
			if e.cancelled.Load() {
				return nil, bterrors.WrapBar(i, bterrors.ErrCancelled)
			}
			if onProgress != nil {
				onProgress(i-startBar, n-startBar)
			}
		}

		st.maybeRolloverDay(i)

		var slice subBarSlice
		if resolver != nil {
			boundary := subbar.NextBoundary(series, i)
			start, end := resolver.SliceFor(series[i].TimestampMicros, boundary)
			slice = subBarSlice{start: start, end: end}
		}

		// Spec §4.6 steps 3/4 are a single if/else on the position state
		// observed at the top of the bar: a position closed during the
		// exit phase does not also get a fresh entry evaluated the same
		// bar.
		if st.position != nil {
			st.runExitPhase(i, slice)
		} else {
			st.runEntryPhase(i)
		}
		if tr, closed := takeClosed(st); closed {
			result.Trades = append(result.Trades, tr)
		}

		equity := st.realizedEquity + st.unrealizedPnL(close[i])
		if equity > st.peakEquity {
			st.peakEquity = equity
		}
		drawdownPct := 0.0
		if st.peakEquity > 0 {
			drawdownPct = (st.peakEquity - equity) / st.peakEquity * 100
		}
		result.EquityCurve = append(result.EquityCurve, EquityPoint{TimestampMicros: timestamps[i], Equity: equity})
		result.DrawdownCurve = append(result.DrawdownCurve, DrawdownPoint{TimestampMicros: timestamps[i], DrawdownPct: drawdownPct})
	}

	if st.position != nil {
		st.closePosition(n-1, close[n-1], strategy.ReasonEndOfData)
		if tr, closed := takeClosed(st); closed {
			result.Trades = append(result.Trades, tr)
		}
	}

	if onProgress != nil {
		onProgress(n-startBar, n-startBar)
	}

	e.logger.Debug("run complete",
		zap.Int("bars", n-startBar),
		zap.Int("trades", len(result.Trades)),
	)
	return result, nil
}

// subBarSlice is the [start,end) window into the sub-bar stream for the
// current TF bar; zero value means no sub-bar refinement this run.
type subBarSlice struct {
	start, end int
}

func takeClosed(st *runState) (strategy.TradeResult, bool) {
	if st.lastClosed == nil {
		return strategy.TradeResult{}, false
	}
	tr := *st.lastClosed
	st.lastClosed = nil
	return tr, true
}
