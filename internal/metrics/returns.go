package metrics

import (
	"math"

	"github.com/atlas-desktop/quantback/internal/engine"
	"github.com/atlas-desktop/quantback/internal/strategy"
	"github.com/atlas-desktop/quantback/pkg/candle"
)

// barsPerDay maps a timeframe to its integer bars-per-day count, used for
// annualising returns (spec §4.7: "years = bars / (252 * bars_per_day[tf])").
// Tick has no fixed bars-per-day, so annualisation is skipped for it.
func barsPerDay(tf candle.Timeframe) float64 {
	minutes := tf.MinutesPerBar()
	if minutes <= 0 {
		return 0
	}
	return 1440.0 / float64(minutes)
}

// computeReturnMetrics fills in total/annualised/monthly return percentages
// from the equity curve's endpoints and bar count.
func computeReturnMetrics(m *Metrics, equityCurve []engine.EquityPoint, initialCapital float64, tf candle.Timeframe) {
	if initialCapital == 0 {
		return
	}
	finalEquity := equityCurve[len(equityCurve)-1].Equity
	totalReturnFrac := (finalEquity - initialCapital) / initialCapital
	m.TotalReturnPct = totalReturnFrac * 100

	bpd := barsPerDay(tf)
	if bpd <= 0 {
		return
	}
	years := float64(len(equityCurve)) / (252 * bpd)
	if years <= 0 {
		return
	}

	base := 1 + totalReturnFrac
	if base < 0 {
		base = 0
	}
	m.AnnualizedReturnPct = (math.Pow(base, 1/years) - 1) * 100

	months := years * 12
	if months > 0 {
		m.MonthlyAverageReturnPct = m.TotalReturnPct / months
	}
}

// computeRiskAdjusted fills in Sharpe/Sortino from per-trade returns
// expressed in units of initial_capital, per spec §4.7.
func computeRiskAdjusted(m *Metrics, trades []strategy.TradeResult, initialCapital float64) {
	if initialCapital == 0 || len(trades) < 2 {
		return
	}
	returns := make([]float64, len(trades))
	for i, tr := range trades {
		returns[i] = tr.PnLMoney / initialCapital
	}

	avg := mean(returns)
	if sd := stddev(returns); sd > 0 {
		m.SharpeRatio = avg / sd * math.Sqrt(252)
	}
	if dd := downsideDeviation(returns); dd > 0 {
		m.SortinoRatio = avg / dd * math.Sqrt(252)
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev is the sample standard deviation (n-1 denominator), matching the
// teacher's MetricsCalculator.stdDev.
func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	avg := mean(values)
	var sumSquares float64
	for _, v := range values {
		d := v - avg
		sumSquares += d * d
	}
	return math.Sqrt(sumSquares / float64(len(values)-1))
}

func downsideDeviation(values []float64) float64 {
	var negative []float64
	for _, v := range values {
		if v < 0 {
			negative = append(negative, v)
		}
	}
	if len(negative) == 0 {
		return 0
	}
	return stddev(negative)
}
