package indicator

import (
	"math"

	"github.com/atlas-desktop/quantback/pkg/bterrors"
)

func computeSMA(close []float64, period int) (Output, error) {
	if period <= 0 {
		period = 1
	}
	n := len(close)
	if n < period {
		return Output{}, bterrors.NewInsufficientData(period, n)
	}
	out := nanSlice(n)
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += close[i]
		if i >= period {
			sum -= close[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return Output{Primary: out}, nil
}

// emaSeries computes the EMA recurrence EMA[i] = (close[i]-EMA[i-1])*mult +
// EMA[i-1], seeded by the SMA of the first `period` values — the same
// recurrence the teacher's TrendFollowingStrategy and pkg/utils.EMA use,
// ported from decimal.Decimal to float64.
func emaSeries(close []float64, period int) []float64 {
	n := len(close)
	out := nanSlice(n)
	if period <= 0 || n < period {
		return out
	}
	mult := 2.0 / float64(period+1)
	seed := 0.0
	for i := 0; i < period; i++ {
		seed += close[i]
	}
	seed /= float64(period)
	out[period-1] = seed
	prev := seed
	for i := period; i < n; i++ {
		prev = (close[i]-prev)*mult + prev
		out[i] = prev
	}
	return out
}

func computeEMA(close []float64, period int) (Output, error) {
	if period <= 0 {
		period = 1
	}
	n := len(close)
	if n < period {
		return Output{}, bterrors.NewInsufficientData(period, n)
	}
	return Output{Primary: emaSeries(close, period)}, nil
}

func computeWMA(close []float64, period int) (Output, error) {
	if period <= 0 {
		period = 1
	}
	n := len(close)
	if n < period {
		return Output{}, bterrors.NewInsufficientData(period, n)
	}
	out := nanSlice(n)
	denom := float64(period*(period+1)) / 2.0
	for i := period - 1; i < n; i++ {
		sum := 0.0
		for j := 0; j < period; j++ {
			weight := float64(j + 1)
			sum += close[i-period+1+j] * weight
		}
		out[i] = sum / denom
	}
	return Output{Primary: out}, nil
}

// computeTEMA is a triple-smoothed EMA: TEMA = 3*EMA1 - 3*EMA2 + EMA3, where
// EMA2 is the EMA of EMA1 and EMA3 the EMA of EMA2.
func computeTEMA(close []float64, period int) (Output, error) {
	if period <= 0 {
		period = 1
	}
	n := len(close)
	if n < period*3 {
		return Output{}, bterrors.NewInsufficientData(period*3, n)
	}
	ema1 := emaSeries(close, period)
	ema2 := emaOfSeries(ema1, period)
	ema3 := emaOfSeries(ema2, period)
	out := nanSlice(n)
	for i := 0; i < n; i++ {
		if !math.IsNaN(ema1[i]) && !math.IsNaN(ema2[i]) && !math.IsNaN(ema3[i]) {
			out[i] = 3*ema1[i] - 3*ema2[i] + ema3[i]
		}
	}
	return Output{Primary: out}, nil
}

// emaOfSeries applies the EMA recurrence to a series that already contains a
// NaN-padded warm-up prefix, treating the first non-NaN value as the seed.
func emaOfSeries(series []float64, period int) []float64 {
	n := len(series)
	out := nanSlice(n)
	mult := 2.0 / float64(period+1)
	seeded := false
	prev := 0.0
	for i := 0; i < n; i++ {
		if math.IsNaN(series[i]) {
			continue
		}
		if !seeded {
			prev = series[i]
			seeded = true
		} else {
			prev = (series[i]-prev)*mult + prev
		}
		out[i] = prev
	}
	return out
}

// computeTRIX is the rate of change of a triple-smoothed EMA, expressed in
// percent.
func computeTRIX(close []float64, period int) (Output, error) {
	if period <= 0 {
		period = 1
	}
	n := len(close)
	if n < period*3+1 {
		return Output{}, bterrors.NewInsufficientData(period*3+1, n)
	}
	ema1 := emaSeries(close, period)
	ema2 := emaOfSeries(ema1, period)
	ema3 := emaOfSeries(ema2, period)
	out := nanSlice(n)
	for i := 1; i < n; i++ {
		if math.IsNaN(ema3[i]) || math.IsNaN(ema3[i-1]) || ema3[i-1] == 0 {
			continue
		}
		out[i] = (ema3[i] - ema3[i-1]) / ema3[i-1] * 100
	}
	return Output{Primary: out}, nil
}
