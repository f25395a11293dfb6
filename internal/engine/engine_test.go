package engine_test

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/atlas-desktop/quantback/internal/engine"
	"github.com/atlas-desktop/quantback/internal/position"
	"github.com/atlas-desktop/quantback/internal/rule"
	"github.com/atlas-desktop/quantback/internal/strategy"
	"github.com/atlas-desktop/quantback/pkg/bterrors"
	"github.com/atlas-desktop/quantback/pkg/candle"
)

const oneMinuteMicros = int64(60_000_000)

// flatSeries builds a Series where every candle's O/H/L/C equal the given
// close (trivially satisfies the OHLC invariant), one minute apart.
func flatSeries(closes []float64) candle.Series {
	series := make(candle.Series, len(closes))
	ts := int64(1_700_000_000_000_000)
	for i, c := range closes {
		series[i] = candle.Candle{TimestampMicros: ts, Open: c, High: c, Low: c, Close: c, Volume: 1}
		ts += oneMinuteMicros
	}
	return series
}

func priceGT(threshold float64) rule.Rule {
	return rule.Rule{
		Left:       rule.Operand{Kind: rule.OperandPrice, PriceField: rule.Close},
		Comparator: rule.GT,
		Right:      rule.Operand{Kind: rule.OperandConstant, ConstantValue: threshold},
	}
}

func priceLT(threshold float64) rule.Rule {
	return rule.Rule{
		Left:       rule.Operand{Kind: rule.OperandPrice, PriceField: rule.Close},
		Comparator: rule.LT,
		Right:      rule.Operand{Kind: rule.OperandConstant, ConstantValue: threshold},
	}
}

var fxInstrument = position.Instrument{
	PipSize:  0.0001,
	PipValue: 10,
	MinLot:   0.01,
	LotStep:  0.01,
	LotSize:  100000,
}

func TestRunLongEntryAndSignalExitRoundTrip(t *testing.T) {
	closes := []float64{1.1000, 1.1010, 1.1020, 1.1080, 1.1090, 1.1100, 1.1000, 1.0990, 1.0980, 1.0970}
	series := flatSeries(closes)

	strat := &strategy.Strategy{
		LongEntry: []rule.Rule{priceGT(1.1050)},
		LongExit:  []rule.Rule{priceLT(1.1050)},
		Sizing:    strategy.PositionSizing{Mode: strategy.FixedLots, Value: 1},
		Direction: strategy.Long,
	}

	e := engine.New(zap.NewNop())
	result, err := e.Run(strat, series, candle.SubBarData{}, fxInstrument, 10_000, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(result.Trades))
	}

	tr := result.Trades[0]
	if tr.Direction != strategy.DirLong {
		t.Fatalf("expected long trade, got %v", tr.Direction)
	}
	if tr.EntryPrice != 1.1080 {
		t.Fatalf("expected entry price 1.1080, got %v", tr.EntryPrice)
	}
	if tr.ExitPrice != 1.1000 {
		t.Fatalf("expected exit price 1.1000, got %v", tr.ExitPrice)
	}
	if tr.CloseReason != strategy.ReasonSignal {
		t.Fatalf("expected signal close, got %v", tr.CloseReason)
	}
	wantPips := (1.1000 - 1.1080) / 0.0001
	if tr.PnLPips != wantPips {
		t.Fatalf("expected %v pips, got %v", wantPips, tr.PnLPips)
	}

	if len(result.EquityCurve) != len(closes) {
		t.Fatalf("expected equity curve length %d, got %d", len(closes), len(result.EquityCurve))
	}
	if len(result.DrawdownCurve) != len(closes) {
		t.Fatalf("expected drawdown curve length %d, got %d", len(closes), len(result.DrawdownCurve))
	}
}

func TestRunStopLossGapThroughVsTouch(t *testing.T) {
	series := candle.Series{
		{TimestampMicros: 0, Open: 1.1000, High: 1.1005, Low: 1.0995, Close: 1.1000},
		{TimestampMicros: oneMinuteMicros, Open: 1.1000, High: 1.1060, Low: 1.0995, Close: 1.1050},
		{TimestampMicros: 2 * oneMinuteMicros, Open: 1.1040, High: 1.1045, Low: 1.1010, Close: 1.1020},
		{TimestampMicros: 3 * oneMinuteMicros, Open: 1.1020, High: 1.1025, Low: 1.1015, Close: 1.1018},
	}

	strat := &strategy.Strategy{
		LongEntry: []rule.Rule{priceGT(1.1040)},
		LongExit:  []rule.Rule{priceLT(0)}, // never fires
		Sizing:    strategy.PositionSizing{Mode: strategy.FixedLots, Value: 1},
		StopLoss:  &strategy.StopConfig{Kind: strategy.Pips, Value: 20},
		Direction: strategy.Long,
	}

	e := engine.New(zap.NewNop())
	result, err := e.Run(strat, series, candle.SubBarData{}, fxInstrument, 10_000, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(result.Trades))
	}
	tr := result.Trades[0]
	if tr.CloseReason != strategy.ReasonStopLoss {
		t.Fatalf("expected stop-loss close, got %v", tr.CloseReason)
	}
	if tr.EntryPrice != 1.1050 {
		t.Fatalf("expected entry 1.1050, got %v", tr.EntryPrice)
	}
	wantSL := 1.1050 - 20*fxInstrument.PipSize
	if tr.ExitPrice != wantSL {
		t.Fatalf("expected SL fill at %v (touch, bar opened above SL), got %v", wantSL, tr.ExitPrice)
	}
}

func TestRunEndOfDataForcesClose(t *testing.T) {
	closes := []float64{1.1000, 1.1010, 1.1080, 1.1090}
	series := flatSeries(closes)

	strat := &strategy.Strategy{
		LongEntry: []rule.Rule{priceGT(1.1050)},
		LongExit:  []rule.Rule{priceLT(0)}, // never fires before series ends
		Sizing:    strategy.PositionSizing{Mode: strategy.FixedLots, Value: 1},
		Direction: strategy.Long,
	}

	e := engine.New(zap.NewNop())
	result, err := e.Run(strat, series, candle.SubBarData{}, fxInstrument, 10_000, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(result.Trades))
	}
	tr := result.Trades[0]
	if tr.CloseReason != strategy.ReasonEndOfData {
		t.Fatalf("expected end-of-data close, got %v", tr.CloseReason)
	}
	if tr.ExitPrice != closes[len(closes)-1] {
		t.Fatalf("expected exit at final close %v, got %v", closes[len(closes)-1], tr.ExitPrice)
	}
}

func TestRunCancellationFailsOutright(t *testing.T) {
	series := flatSeries([]float64{1.1000, 1.1010, 1.1020, 1.1030, 1.1040})
	strat := &strategy.Strategy{
		LongEntry: []rule.Rule{priceGT(9)}, // never fires
		Direction: strategy.Long,
	}

	e := engine.New(zap.NewNop())
	e.Cancel()
	result, err := e.Run(strat, series, candle.SubBarData{}, fxInstrument, 10_000, nil)
	if result != nil {
		t.Fatalf("expected nil result on cancellation, got %+v", result)
	}
	if !errors.Is(err, bterrors.ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestRunNoDataReturnsError(t *testing.T) {
	e := engine.New(zap.NewNop())
	_, err := e.Run(&strategy.Strategy{}, candle.Series{}, candle.SubBarData{}, fxInstrument, 10_000, nil)
	if !errors.Is(err, bterrors.ErrNoDataInRange) {
		t.Fatalf("expected ErrNoDataInRange, got %v", err)
	}
}
