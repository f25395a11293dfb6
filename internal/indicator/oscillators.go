package indicator

import (
	"math"

	"github.com/atlas-desktop/quantback/pkg/bterrors"
)

// computeRSI seeds from the simple average of the first `period` gains and
// losses, then recurses with the Wilder smoothing constant
// (prev*(period-1)+new)/period, per spec §4.1 and grounded on the teacher's
// RSIDivergenceStrategy (internal/strategy/strategy.go). RSI = 100 on zero
// loss (documented zero-division sentinel, §4.1 Tie-breaks).
func computeRSI(close []float64, period int) (Output, error) {
	if period <= 0 {
		period = 14
	}
	n := len(close)
	if n < period+1 {
		return Output{}, bterrors.NewInsufficientData(period+1, n)
	}
	out := nanSlice(n)

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := close[i] - close[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiFromAverages(avgGain, avgLoss)

	for i := period + 1; i < n; i++ {
		change := close[i] - close[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiFromAverages(avgGain, avgLoss)
	}
	return Output{Primary: out}, nil
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// computeMACD: primary = MACD line (fastEMA-slowEMA), secondary = signal
// line (EMA of the MACD line), tertiary = histogram (line-signal).
func computeMACD(close []float64, fast, slow, signal int) (Output, error) {
	if fast <= 0 {
		fast = 12
	}
	if slow <= 0 {
		slow = 26
	}
	if signal <= 0 {
		signal = 9
	}
	n := len(close)
	if n < slow+signal {
		return Output{}, bterrors.NewInsufficientData(slow+signal, n)
	}
	fastEMA := emaSeries(close, fast)
	slowEMA := emaSeries(close, slow)
	line := nanSlice(n)
	for i := 0; i < n; i++ {
		if !math.IsNaN(fastEMA[i]) && !math.IsNaN(slowEMA[i]) {
			line[i] = fastEMA[i] - slowEMA[i]
		}
	}
	signalLine := emaOfSeries(line, signal)
	hist := nanSlice(n)
	for i := 0; i < n; i++ {
		if !math.IsNaN(line[i]) && !math.IsNaN(signalLine[i]) {
			hist[i] = line[i] - signalLine[i]
		}
	}
	return Output{Primary: line, Secondary: signalLine, Tertiary: hist}, nil
}

// computeStochastic: primary = %K, secondary = %D (SMA of %K). %K = 50 on a
// flat high/low range over the lookback (documented zero-division sentinel).
func computeStochastic(high, low, close []float64, kPeriod, dPeriod int) (Output, error) {
	if kPeriod <= 0 {
		kPeriod = 14
	}
	if dPeriod <= 0 {
		dPeriod = 3
	}
	n := len(close)
	if n < kPeriod+dPeriod-1 {
		return Output{}, bterrors.NewInsufficientData(kPeriod+dPeriod-1, n)
	}
	kLine := nanSlice(n)
	for i := kPeriod - 1; i < n; i++ {
		hh, ll := high[i-kPeriod+1], low[i-kPeriod+1]
		for j := i - kPeriod + 2; j <= i; j++ {
			if high[j] > hh {
				hh = high[j]
			}
			if low[j] < ll {
				ll = low[j]
			}
		}
		rng := hh - ll
		if rng == 0 {
			kLine[i] = 50
		} else {
			kLine[i] = (close[i] - ll) / rng * 100
		}
	}
	dLine := nanSlice(n)
	for i := kPeriod + dPeriod - 2; i < n; i++ {
		sum := 0.0
		for j := i - dPeriod + 1; j <= i; j++ {
			sum += kLine[j]
		}
		dLine[i] = sum / float64(dPeriod)
	}
	return Output{Primary: kLine, Secondary: dLine}, nil
}

// computeCCI: Commodity Channel Index. CCI = 0 on zero mean deviation
// (documented sentinel).
func computeCCI(high, low, close []float64, period int) (Output, error) {
	if period <= 0 {
		period = 20
	}
	n := len(close)
	if n < period {
		return Output{}, bterrors.NewInsufficientData(period, n)
	}
	typical := make([]float64, n)
	for i := 0; i < n; i++ {
		typical[i] = (high[i] + low[i] + close[i]) / 3
	}
	out := nanSlice(n)
	for i := period - 1; i < n; i++ {
		sum := 0.0
		for j := i - period + 1; j <= i; j++ {
			sum += typical[j]
		}
		mean := sum / float64(period)
		meanDev := 0.0
		for j := i - period + 1; j <= i; j++ {
			meanDev += math.Abs(typical[j] - mean)
		}
		meanDev /= float64(period)
		if meanDev == 0 {
			out[i] = 0
		} else {
			out[i] = (typical[i] - mean) / (0.015 * meanDev)
		}
	}
	return Output{Primary: out}, nil
}

func computeROC(close []float64, period int) (Output, error) {
	if period <= 0 {
		period = 12
	}
	n := len(close)
	if n < period+1 {
		return Output{}, bterrors.NewInsufficientData(period+1, n)
	}
	out := nanSlice(n)
	for i := period; i < n; i++ {
		if close[i-period] == 0 {
			continue
		}
		out[i] = (close[i] - close[i-period]) / close[i-period] * 100
	}
	return Output{Primary: out}, nil
}

func computeMomentum(close []float64, period int) (Output, error) {
	if period <= 0 {
		period = 10
	}
	n := len(close)
	if n < period+1 {
		return Output{}, bterrors.NewInsufficientData(period+1, n)
	}
	out := nanSlice(n)
	for i := period; i < n; i++ {
		out[i] = close[i] - close[i-period]
	}
	return Output{Primary: out}, nil
}

// computeWilliamsR: %R = -50 when the lookback range is flat.
func computeWilliamsR(high, low, close []float64, period int) (Output, error) {
	if period <= 0 {
		period = 14
	}
	n := len(close)
	if n < period {
		return Output{}, bterrors.NewInsufficientData(period, n)
	}
	out := nanSlice(n)
	for i := period - 1; i < n; i++ {
		hh, ll := high[i-period+1], low[i-period+1]
		for j := i - period + 2; j <= i; j++ {
			if high[j] > hh {
				hh = high[j]
			}
			if low[j] < ll {
				ll = low[j]
			}
		}
		rng := hh - ll
		if rng == 0 {
			out[i] = -50
		} else {
			out[i] = (hh - close[i]) / rng * -100
		}
	}
	return Output{Primary: out}, nil
}

func computeOBV(close, volume []float64) (Output, error) {
	n := len(close)
	if n < 2 {
		return Output{}, bterrors.NewInsufficientData(2, n)
	}
	out := make([]float64, n)
	out[0] = volume[0]
	for i := 1; i < n; i++ {
		switch {
		case close[i] > close[i-1]:
			out[i] = out[i-1] + volume[i]
		case close[i] < close[i-1]:
			out[i] = out[i-1] - volume[i]
		default:
			out[i] = out[i-1]
		}
	}
	return Output{Primary: out}, nil
}

func computeStdDev(close []float64, period int) (Output, error) {
	if period <= 0 {
		period = 20
	}
	n := len(close)
	if n < period {
		return Output{}, bterrors.NewInsufficientData(period, n)
	}
	out := nanSlice(n)
	for i := period - 1; i < n; i++ {
		out[i] = stdDevWindow(close, i-period+1, i)
	}
	return Output{Primary: out}, nil
}

// stdDevWindow computes the population standard deviation of close[from:to]
// inclusive, the same Newton's-method-free formula the teacher's
// MeanReversionStrategy applies via sqrtDecimal — here just math.Sqrt since
// the layer is float64.
func stdDevWindow(close []float64, from, to int) float64 {
	n := to - from + 1
	mean := 0.0
	for i := from; i <= to; i++ {
		mean += close[i]
	}
	mean /= float64(n)
	variance := 0.0
	for i := from; i <= to; i++ {
		d := close[i] - mean
		variance += d * d
	}
	variance /= float64(n)
	return math.Sqrt(variance)
}

// computeCMO: Chande Momentum Oscillator, CMO = 0 when total movement is
// zero (documented sentinel).
func computeCMO(close []float64, period int) (Output, error) {
	if period <= 0 {
		period = 9
	}
	n := len(close)
	if n < period+1 {
		return Output{}, bterrors.NewInsufficientData(period+1, n)
	}
	out := nanSlice(n)
	for i := period; i < n; i++ {
		up, down := 0.0, 0.0
		for j := i - period + 1; j <= i; j++ {
			change := close[j] - close[j-1]
			if change > 0 {
				up += change
			} else {
				down += -change
			}
		}
		total := up + down
		if total == 0 {
			out[i] = 0
		} else {
			out[i] = (up - down) / total * 100
		}
	}
	return Output{Primary: out}, nil
}
