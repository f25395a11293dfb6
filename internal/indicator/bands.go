package indicator

import "github.com/atlas-desktop/quantback/pkg/bterrors"

// computeBollinger: primary = middle (SMA), secondary = upper, tertiary =
// lower, per spec §4.1's fixed per-indicator output convention.
func computeBollinger(close []float64, period int, stdDevMult float64) (Output, error) {
	if period <= 0 {
		period = 20
	}
	if stdDevMult == 0 {
		stdDevMult = 2
	}
	n := len(close)
	if n < period {
		return Output{}, bterrors.NewInsufficientData(period, n)
	}
	middle := nanSlice(n)
	upper := nanSlice(n)
	lower := nanSlice(n)
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += close[i]
		if i >= period {
			sum -= close[i-period]
		}
		if i >= period-1 {
			mean := sum / float64(period)
			sd := stdDevWindow(close, i-period+1, i)
			middle[i] = mean
			upper[i] = mean + stdDevMult*sd
			lower[i] = mean - stdDevMult*sd
		}
	}
	return Output{Primary: middle, Secondary: upper, Tertiary: lower}, nil
}

// computeDonchian: primary = upper (highest high), secondary = lower
// (lowest low), tertiary = middle (midpoint).
func computeDonchian(high, low []float64, period int) (Output, error) {
	if period <= 0 {
		period = 20
	}
	n := len(high)
	if n < period {
		return Output{}, bterrors.NewInsufficientData(period, n)
	}
	upper := nanSlice(n)
	lower := nanSlice(n)
	middle := nanSlice(n)
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
		upper[i] = hh
		lower[i] = ll
		middle[i] = (hh + ll) / 2
	}
	return Output{Primary: upper, Secondary: lower, Tertiary: middle}, nil
}

// computeKeltner: primary = middle (EMA), secondary = upper, tertiary =
// lower, bands at middle +/- multiplier*ATR.
func computeKeltner(high, low, close []float64, period int, multiplier float64) (Output, error) {
	if period <= 0 {
		period = 20
	}
	if multiplier == 0 {
		multiplier = 2
	}
	n := len(close)
	if n < period+1 {
		return Output{}, bterrors.NewInsufficientData(period+1, n)
	}
	middle := emaSeries(close, period)
	atrOut, err := computeATR(high, low, close, period)
	if err != nil {
		return Output{}, err
	}
	atr := atrOut.Primary
	upper := nanSlice(n)
	lower := nanSlice(n)
	for i := 0; i < n; i++ {
		if middle[i] != middle[i] || atr[i] != atr[i] { // NaN check (NaN != NaN)
			continue
		}
		upper[i] = middle[i] + multiplier*atr[i]
		lower[i] = middle[i] - multiplier*atr[i]
	}
	return Output{Primary: middle, Secondary: upper, Tertiary: lower}, nil
}
