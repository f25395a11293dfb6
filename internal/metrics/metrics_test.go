package metrics_test

import (
	"math"
	"testing"

	"github.com/atlas-desktop/quantback/internal/engine"
	"github.com/atlas-desktop/quantback/internal/metrics"
	"github.com/atlas-desktop/quantback/internal/strategy"
	"github.com/atlas-desktop/quantback/pkg/candle"
)

func curve(equities []float64) []engine.EquityPoint {
	pts := make([]engine.EquityPoint, len(equities))
	ts := int64(0)
	for i, e := range equities {
		pts[i] = engine.EquityPoint{TimestampMicros: ts, Equity: e}
		ts += 60_000_000
	}
	return pts
}

func TestCalculateEmptyTradesReturnsSkeleton(t *testing.T) {
	m := metrics.Calculate(nil, nil, 10_000, candle.H1)
	if m.FinalCapital != 10_000 {
		t.Fatalf("expected final capital 10000, got %v", m.FinalCapital)
	}
	if m.TotalTrades != 0 || m.SharpeRatio != 0 || m.MaxDrawdownPct != 0 {
		t.Fatalf("expected a zero-valued skeleton, got %+v", m)
	}
}

func TestCalculateTradeStatsAndStreaks(t *testing.T) {
	trades := []strategy.TradeResult{
		{PnLMoney: 100, MAEPips: 5, MFEPips: 12},
		{PnLMoney: -50, MAEPips: 8, MFEPips: 3},
		{PnLMoney: 200, MAEPips: 3, MFEPips: 20},
		{PnLMoney: -30, MAEPips: 10, MFEPips: 2},
		{PnLMoney: -20, MAEPips: 4, MFEPips: 1},
		{PnLMoney: 0, MAEPips: 2, MFEPips: 0},
		{PnLMoney: 150, MAEPips: 6, MFEPips: 15},
	}
	eq := curve([]float64{10_000, 10_100, 10_050, 10_250, 10_220, 10_200, 10_200, 10_350})

	m := metrics.Calculate(trades, eq, 10_000, candle.H1)

	if m.TotalTrades != 7 {
		t.Fatalf("expected 7 trades, got %d", m.TotalTrades)
	}
	if m.WinningTrades != 3 || m.LosingTrades != 3 {
		t.Fatalf("expected 3 winners/3 losers (one zero-P&L trade counted as neither), got %d/%d", m.WinningTrades, m.LosingTrades)
	}
	if m.GrossProfit != 450 {
		t.Fatalf("expected gross profit 450, got %v", m.GrossProfit)
	}
	if m.GrossLoss != 100 {
		t.Fatalf("expected gross loss 100, got %v", m.GrossLoss)
	}
	if m.NetProfit != 350 {
		t.Fatalf("expected net profit 350, got %v", m.NetProfit)
	}
	if m.ProfitFactor != 4.5 {
		t.Fatalf("expected profit factor 4.5, got %v", m.ProfitFactor)
	}

	if m.MaxConsecutiveWins != 1 {
		t.Fatalf("expected max consecutive wins 1, got %d", m.MaxConsecutiveWins)
	}
	if m.MaxConsecutiveLosses != 2 {
		t.Fatalf("expected max consecutive losses 2, got %d", m.MaxConsecutiveLosses)
	}

	wantMeanMAE := (5.0 + 8 + 3 + 10 + 4 + 2 + 6) / 7
	if m.MeanMAEPips != wantMeanMAE {
		t.Fatalf("expected mean MAE %v, got %v", wantMeanMAE, m.MeanMAEPips)
	}
	if m.MaxMAEPips != 10 {
		t.Fatalf("expected max MAE 10, got %v", m.MaxMAEPips)
	}
	if m.MaxMFEPips != 20 {
		t.Fatalf("expected max MFE 20, got %v", m.MaxMFEPips)
	}
}

func TestCalculateProfitFactorInfiniteWhenNoLosses(t *testing.T) {
	trades := []strategy.TradeResult{{PnLMoney: 100}, {PnLMoney: 50}}
	eq := curve([]float64{1000, 1100, 1150})
	m := metrics.Calculate(trades, eq, 1000, candle.H1)
	if !math.IsInf(m.ProfitFactor, 1) {
		t.Fatalf("expected +Inf profit factor, got %v", m.ProfitFactor)
	}
}

func TestCalculateDrawdownScanFindsDeepestTroughAfterPeak(t *testing.T) {
	trades := []strategy.TradeResult{{PnLMoney: 1}}
	eq := curve([]float64{100, 120, 90, 130, 80, 140})
	m := metrics.Calculate(trades, eq, 100, candle.H1)

	wantMaxDD := (130.0 - 80.0) / 130.0 * 100
	if math.Abs(m.MaxDrawdownPct-wantMaxDD) > 1e-9 {
		t.Fatalf("expected max drawdown %v, got %v", wantMaxDD, m.MaxDrawdownPct)
	}
	if m.MaxDrawdownDurationBars != 1 {
		t.Fatalf("expected max drawdown duration 1 bar (peak at index 3, trough at index 4), got %d", m.MaxDrawdownDurationBars)
	}
	if m.StagnationBars != 2 {
		t.Fatalf("expected longest stagnation run of 2 bars, got %d", m.StagnationBars)
	}
}

func TestCalculateFinalCapitalMatchesLastEquityPoint(t *testing.T) {
	trades := []strategy.TradeResult{{PnLMoney: 50}}
	eq := curve([]float64{1000, 1050})
	m := metrics.Calculate(trades, eq, 1000, candle.D1)
	if m.FinalCapital != 1050 {
		t.Fatalf("expected final capital 1050, got %v", m.FinalCapital)
	}
}
