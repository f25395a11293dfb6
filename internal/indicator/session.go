package indicator

import (
	"math"

	"github.com/atlas-desktop/quantback/pkg/bterrors"
	"github.com/atlas-desktop/quantback/pkg/calendar"
)

// computeVWAP resets its cumulative sums at each UTC calendar day boundary
// (spec §4.1 "VWAP and pivots reset per calendar day"; Design Notes open
// question #3 resolved to UTC, see SPEC_FULL.md).
func computeVWAP(timestamps []int64, high, low, close, volume []float64) (Output, error) {
	n := len(close)
	if n == 0 {
		return Output{}, bterrors.NewInsufficientData(1, 0)
	}
	out := make([]float64, n)
	var cumPV, cumVol float64
	var currentDay int64
	first := true
	for i := 0; i < n; i++ {
		day := calendar.DayKey(timestamps[i])
		if first || day != currentDay {
			cumPV, cumVol = 0, 0
			currentDay = day
			first = false
		}
		typical := (high[i] + low[i] + close[i]) / 3
		cumPV += typical * volume[i]
		cumVol += volume[i]
		if cumVol == 0 {
			out[i] = typical
		} else {
			out[i] = cumPV / cumVol
		}
	}
	return Output{Primary: out}, nil
}

// dailyOHLC walks the series once and returns, for each bar, the completed
// prior UTC day's (high, low, close) — or NaN if no prior day exists yet.
// This replaces the source's string-slicing day derivation (Design Notes
// open question #2) with pkg/calendar's integer-timestamp routine.
func dailyOHLC(timestamps []int64, high, low, close []float64) (priorHigh, priorLow, priorClose []float64) {
	n := len(timestamps)
	priorHigh = nanSlice(n)
	priorLow = nanSlice(n)
	priorClose = nanSlice(n)

	var dayHigh, dayLow, dayClose float64
	var lastCompletedHigh, lastCompletedLow, lastCompletedClose float64
	haveCompleted := false
	var currentDay int64
	first := true

	for i := 0; i < n; i++ {
		day := calendar.DayKey(timestamps[i])
		if first || day != currentDay {
			if !first {
				lastCompletedHigh, lastCompletedLow, lastCompletedClose = dayHigh, dayLow, dayClose
				haveCompleted = true
			}
			dayHigh, dayLow = high[i], low[i]
			currentDay = day
			first = false
		} else {
			if high[i] > dayHigh {
				dayHigh = high[i]
			}
			if low[i] < dayLow {
				dayLow = low[i]
			}
		}
		dayClose = close[i]

		if haveCompleted {
			priorHigh[i] = lastCompletedHigh
			priorLow[i] = lastCompletedLow
			priorClose[i] = lastCompletedClose
		}
	}
	return
}

// computePivots derives the classic floor-trader pivot levels from the
// prior completed UTC day's OHLC, held constant for every bar of the
// following day. Extra keys match spec §4.1: pp, r1..r3, s1..s3.
func computePivots(timestamps []int64, high, low, close []float64) (Output, error) {
	n := len(close)
	if n == 0 {
		return Output{}, bterrors.NewInsufficientData(1, 0)
	}
	priorHigh, priorLow, priorClose := dailyOHLC(timestamps, high, low, close)

	pp := nanSlice(n)
	r1 := nanSlice(n)
	r2 := nanSlice(n)
	r3 := nanSlice(n)
	s1 := nanSlice(n)
	s2 := nanSlice(n)
	s3 := nanSlice(n)

	for i := 0; i < n; i++ {
		if math.IsNaN(priorHigh[i]) {
			continue
		}
		h, l, c := priorHigh[i], priorLow[i], priorClose[i]
		p := (h + l + c) / 3
		pp[i] = p
		r1[i] = 2*p - l
		s1[i] = 2*p - h
		r2[i] = p + (h - l)
		s2[i] = p - (h - l)
		r3[i] = h + 2*(p-l)
		s3[i] = l - 2*(h-p)
	}

	return Output{
		Primary: pp,
		Extra: map[string][]float64{
			"pp": pp, "r1": r1, "r2": r2, "r3": r3,
			"s1": s1, "s2": s2, "s3": s3,
		},
	}, nil
}

// computeFibonacci derives rolling retracement levels from the highest high
// and lowest low over the trailing `period` bars. Extra keys: level_0,
// level_236, level_382, level_5, level_618, level_786, level_1000.
func computeFibonacci(high, low []float64, period int) (Output, error) {
	if period <= 0 {
		period = 55
	}
	n := len(high)
	if n < period {
		return Output{}, bterrors.NewInsufficientData(period, n)
	}
	ratios := []struct {
		key   string
		ratio float64
	}{
		{"level_0", 0}, {"level_236", 0.236}, {"level_382", 0.382},
		{"level_5", 0.5}, {"level_618", 0.618}, {"level_786", 0.786},
		{"level_1000", 1.0},
	}
	levels := make(map[string][]float64, len(ratios))
	for _, r := range ratios {
		levels[r.key] = nanSlice(n)
	}

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
		span := hh - ll
		for _, r := range ratios {
			levels[r.key][i] = hh - span*r.ratio
		}
	}
	return Output{Primary: levels["level_5"], Extra: levels}, nil
}

// computeIchimoku populates tenkan (9), kijun (26) and senkou spans A/B at
// their natural bar index — unshifted. The classic Ichimoku plot projects
// senkou A/B forward 26 bars and chikou backward 26 bars; that forward
// projection is explicitly out of scope (spec §1 Non-goals: "no look-ahead
// on the Chikou-style projected outputs"), so chikou is omitted entirely and
// senkou spans are reported at the index they're computed from rather than
// shifted into bars that don't exist yet.
func computeIchimoku(high, low, close []float64) (Output, error) {
	const tenkanPeriod = 9
	const kijunPeriod = 26
	const senkouBPeriod = 52
	n := len(close)
	if n < senkouBPeriod {
		return Output{}, bterrors.NewInsufficientData(senkouBPeriod, n)
	}
	tenkan := midpointSeries(high, low, tenkanPeriod)
	kijun := midpointSeries(high, low, kijunPeriod)
	senkouB := midpointSeries(high, low, senkouBPeriod)

	senkouA := nanSlice(n)
	for i := 0; i < n; i++ {
		if !math.IsNaN(tenkan[i]) && !math.IsNaN(kijun[i]) {
			senkouA[i] = (tenkan[i] + kijun[i]) / 2
		}
	}

	return Output{
		Primary: kijun,
		Extra: map[string][]float64{
			"tenkan": tenkan, "kijun": kijun,
			"senkou_a": senkouA, "senkou_b": senkouB,
		},
	}, nil
}

func midpointSeries(high, low []float64, period int) []float64 {
	n := len(high)
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
		out[i] = (hh + ll) / 2
	}
	return out
}
