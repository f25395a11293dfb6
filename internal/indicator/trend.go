package indicator

import (
	"math"

	"github.com/atlas-desktop/quantback/pkg/bterrors"
)

func trueRange(high, low, close []float64, i int) float64 {
	if i == 0 {
		return high[i] - low[i]
	}
	hl := high[i] - low[i]
	hc := math.Abs(high[i] - close[i-1])
	lc := math.Abs(low[i] - close[i-1])
	return math.Max(hl, math.Max(hc, lc))
}

// computeATR Wilder-smooths true range: seed from the simple average of the
// first `period` true-range values, then recurse with
// (prev*(period-1)+new)/period, per spec §4.1.
func computeATR(high, low, close []float64, period int) (Output, error) {
	if period <= 0 {
		period = 14
	}
	n := len(close)
	if n < period {
		return Output{}, bterrors.NewInsufficientData(period, n)
	}
	out := nanSlice(n)
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += trueRange(high, low, close, i)
	}
	avg := sum / float64(period)
	out[period-1] = avg
	for i := period; i < n; i++ {
		tr := trueRange(high, low, close, i)
		avg = (avg*float64(period-1) + tr) / float64(period)
		out[i] = avg
	}
	return Output{Primary: out}, nil
}

// computeADX: primary = ADX, secondary = +DI, tertiary = -DI. Wilder
// smoothing throughout (directional movement and true range), per spec
// §4.1's Wilder-smoothed family.
func computeADX(high, low, close []float64, period int) (Output, error) {
	if period <= 0 {
		period = 14
	}
	n := len(close)
	if n < period*2 {
		return Output{}, bterrors.NewInsufficientData(period*2, n)
	}
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	tr := make([]float64, n)
	for i := 1; i < n; i++ {
		upMove := high[i] - high[i-1]
		downMove := low[i-1] - low[i]
		if upMove > downMove && upMove > 0 {
			plusDM[i] = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM[i] = downMove
		}
		tr[i] = trueRange(high, low, close, i)
	}

	smoothedTR := wilderSmooth(tr, period)
	smoothedPlusDM := wilderSmooth(plusDM, period)
	smoothedMinusDM := wilderSmooth(minusDM, period)

	plusDI := nanSlice(n)
	minusDI := nanSlice(n)
	dx := nanSlice(n)
	for i := period; i < n; i++ {
		if math.IsNaN(smoothedTR[i]) || smoothedTR[i] == 0 {
			continue
		}
		plusDI[i] = 100 * smoothedPlusDM[i] / smoothedTR[i]
		minusDI[i] = 100 * smoothedMinusDM[i] / smoothedTR[i]
		denom := plusDI[i] + minusDI[i]
		if denom == 0 {
			dx[i] = 0
		} else {
			dx[i] = 100 * math.Abs(plusDI[i]-minusDI[i]) / denom
		}
	}

	adx := nanSlice(n)
	start := period * 2
	if start >= n {
		return Output{Primary: adx, Secondary: plusDI, Tertiary: minusDI}, nil
	}
	sum := 0.0
	count := 0
	for i := period; i < start; i++ {
		if !math.IsNaN(dx[i]) {
			sum += dx[i]
			count++
		}
	}
	if count == 0 {
		return Output{Primary: adx, Secondary: plusDI, Tertiary: minusDI}, nil
	}
	avg := sum / float64(count)
	adx[start-1] = avg
	for i := start; i < n; i++ {
		avg = (avg*float64(period-1) + dx[i]) / float64(period)
		adx[i] = avg
	}
	return Output{Primary: adx, Secondary: plusDI, Tertiary: minusDI}, nil
}

// wilderSmooth seeds from the sum of the first `period` raw values
// (indices 1..period, since index 0 has no prior bar) then recurses as
// prev - prev/period + raw, keeping the smoothed value on the sum scale.
func wilderSmooth(raw []float64, period int) []float64 {
	n := len(raw)
	out := nanSlice(n)
	if n <= period {
		return out
	}
	sum := 0.0
	for i := 1; i <= period; i++ {
		sum += raw[i]
	}
	out[period] = sum
	prev := sum
	for i := period + 1; i < n; i++ {
		prev = prev - prev/float64(period) + raw[i]
		out[i] = prev
	}
	return out
}

// computeSAR implements the Parabolic SAR. It is explicitly path-dependent
// (spec §4.1 Tie-breaks: "on any incremental recompute the engine restarts
// from bar zero") — there is no incremental/streaming variant here by
// design; every call walks the full series from index 0.
func computeSAR(high, low []float64, accel, maxAccel float64) (Output, error) {
	if accel == 0 {
		accel = 0.02
	}
	if maxAccel == 0 {
		maxAccel = 0.2
	}
	n := len(high)
	if n < 2 {
		return Output{}, bterrors.NewInsufficientData(2, n)
	}
	out := make([]float64, n)

	isLong := high[1] >= high[0]
	var sar, ep, af float64
	if isLong {
		sar = low[0]
		ep = high[0]
	} else {
		sar = high[0]
		ep = low[0]
	}
	af = accel
	out[0] = sar

	for i := 1; i < n; i++ {
		nextSAR := sar + af*(ep-sar)

		if isLong {
			if low[i] < nextSAR {
				isLong = false
				nextSAR = ep
				ep = low[i]
				af = accel
			} else {
				if high[i] > ep {
					ep = high[i]
					af = math.Min(af+accel, maxAccel)
				}
				if i >= 1 && nextSAR > low[i-1] {
					nextSAR = low[i-1]
				}
			}
		} else {
			if high[i] > nextSAR {
				isLong = true
				nextSAR = ep
				ep = high[i]
				af = accel
			} else {
				if low[i] < ep {
					ep = low[i]
					af = math.Min(af+accel, maxAccel)
				}
				if i >= 1 && nextSAR < high[i-1] {
					nextSAR = high[i-1]
				}
			}
		}

		sar = nextSAR
		out[i] = sar
	}
	return Output{Primary: out}, nil
}
