package engine

import (
	"math"

	"github.com/atlas-desktop/quantback/internal/indicator"
)

// atrCache lazily computes one ATR series per distinct period requested by
// a strategy's SL/TP/TS configs — typically 0-3 distinct periods per run,
// so a plain map avoids pulling this into the C3 indicator cache (which is
// keyed off rule operands, not position-sizing config).
type atrCache struct {
	ohlcv  indicator.OHLCV
	series map[int][]float64
}

func newATRCache(ohlcv indicator.OHLCV) *atrCache {
	return &atrCache{ohlcv: ohlcv, series: make(map[int][]float64)}
}

// at returns the ATR(period) value at bar i, computing and memoizing the
// whole series the first time a period is requested. Returns 0 if the
// series is too short to produce a value at i (or its value there is NaN).
func (a *atrCache) at(period int, i int) float64 {
	if period <= 0 {
		period = 14
	}
	s, ok := a.series[period]
	if !ok {
		out, err := indicator.Compute(indicator.Spec{Kind: indicator.ATR, Params: indicator.Params{Period: period}}, a.ohlcv)
		if err != nil {
			s = nil
		} else {
			s = out.Primary
		}
		a.series[period] = s
	}
	if s == nil || i >= len(s) || math.IsNaN(s[i]) {
		return 0
	}
	return s[i]
}
