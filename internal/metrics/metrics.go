// Package metrics implements the metrics calculator (C7): roughly forty
// scalar performance figures derived from a closed trade list and an equity
// curve, re-expressed over float64 slices from the teacher's decimal-based
// MetricsCalculator.
package metrics

import (
	"math"

	"github.com/atlas-desktop/quantback/internal/engine"
	"github.com/atlas-desktop/quantback/internal/strategy"
	"github.com/atlas-desktop/quantback/pkg/candle"
)

// Metrics is the full scalar result set handed back alongside a run's trade
// list and curves (spec §4.7).
type Metrics struct {
	TotalTrades    int
	WinningTrades  int
	LosingTrades   int
	WinRate        float64
	AvgWin         float64
	AvgLoss        float64
	LargestWin     float64
	LargestLoss    float64
	AvgHoldingBars float64
	Expectancy     float64

	GrossProfit  float64
	GrossLoss    float64
	NetProfit    float64
	ProfitFactor float64

	TotalReturnPct          float64
	AnnualizedReturnPct     float64
	MonthlyAverageReturnPct float64

	SharpeRatio  float64
	SortinoRatio float64
	CalmarRatio  float64

	MaxDrawdownPct          float64
	MaxDrawdownDurationBars int
	MeanDrawdownPct         float64
	StagnationBars          int
	UlcerIndex              float64

	MaxConsecutiveWins   int
	MaxConsecutiveLosses int
	AvgConsecutiveWins   float64
	AvgConsecutiveLosses float64

	MeanMAEPips float64
	MaxMAEPips  float64
	MeanMFEPips float64
	MaxMFEPips  float64

	VaR95  float64
	VaR99  float64
	CVaR95 float64

	FinalCapital float64
}

// Calculate derives the full metric set from (trades, equity_curve,
// initial_capital, timeframe), per spec §4.7. An empty trade list or equity
// curve returns a zero-valued skeleton with FinalCapital = initialCapital,
// rather than an error — an empty result is a legitimate outcome of a run
// whose entry rules never fired.
func Calculate(
	trades []strategy.TradeResult,
	equityCurve []engine.EquityPoint,
	initialCapital float64,
	tf candle.Timeframe,
) *Metrics {
	if len(trades) == 0 || len(equityCurve) == 0 {
		return &Metrics{FinalCapital: initialCapital}
	}

	m := &Metrics{}
	computeTradeStats(m, trades)
	computeReturnMetrics(m, equityCurve, initialCapital, tf)
	computeRiskAdjusted(m, trades, initialCapital)
	computeDrawdown(m, equityCurve)
	computeStreaks(m, trades)
	computeExcursion(m, trades)
	computeRisk(m, equityCurve)

	m.FinalCapital = equityCurve[len(equityCurve)-1].Equity

	if m.MaxDrawdownPct > 0 {
		m.CalmarRatio = m.AnnualizedReturnPct / m.MaxDrawdownPct
	}

	return m
}

func computeTradeStats(m *Metrics, trades []strategy.TradeResult) {
	var totalWins, totalLosses float64
	var totalHoldingBars int

	for _, tr := range trades {
		totalHoldingBars += tr.DurationBars
		switch {
		case tr.PnLMoney > 0:
			m.WinningTrades++
			totalWins += tr.PnLMoney
			if tr.PnLMoney > m.LargestWin {
				m.LargestWin = tr.PnLMoney
			}
		case tr.PnLMoney < 0:
			m.LosingTrades++
			totalLosses += -tr.PnLMoney
			if -tr.PnLMoney > m.LargestLoss {
				m.LargestLoss = -tr.PnLMoney
			}
		}
	}

	m.TotalTrades = len(trades)
	m.GrossProfit = totalWins
	m.GrossLoss = totalLosses
	m.NetProfit = totalWins - totalLosses

	if m.TotalTrades > 0 {
		m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades)
		m.AvgHoldingBars = float64(totalHoldingBars) / float64(m.TotalTrades)
	}
	if m.WinningTrades > 0 {
		m.AvgWin = totalWins / float64(m.WinningTrades)
	}
	if m.LosingTrades > 0 {
		m.AvgLoss = totalLosses / float64(m.LosingTrades)
	}

	switch {
	case totalLosses > 0:
		m.ProfitFactor = totalWins / totalLosses
	case totalWins > 0:
		m.ProfitFactor = math.Inf(1)
	default:
		m.ProfitFactor = 0
	}

	winPct := m.WinRate
	lossPct := 1 - winPct
	m.Expectancy = winPct*m.AvgWin - lossPct*m.AvgLoss
}
