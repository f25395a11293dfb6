// Package indicator is the pure indicator-computation library (C1).
// compute(spec, ohlcv_arrays) -> IndicatorOutput is a pure function: no I/O,
// no shared state, identical inputs yield bit-identical outputs (spec
// §4.1). The formulas are ported from the teacher's decimal.Decimal
// strategy math (internal/strategy/strategy.go in the teacher repo: EMA
// recurrence, Wilder-smoothed RSI, SMA+stddev Bollinger, cumulative VWAP) to
// plain float64 arrays, because NaN must be a representable "not yet
// available" sentinel throughout the warm-up region, and decimal.Decimal has
// no NaN.
package indicator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/atlas-desktop/quantback/pkg/bterrors"
)

// Kind enumerates the ~25 analytical primitives this library supports.
type Kind int

const (
	SMA Kind = iota
	EMA
	WMA
	RSI
	MACD
	BollingerBands
	Stochastic
	ATR
	ADX
	ParabolicSAR
	VWAP
	Ichimoku
	Pivots
	Fibonacci
	CCI
	ROC
	Momentum
	WilliamsR
	OBV
	StdDev
	Donchian
	Keltner
	CMO
	TRIX
	TEMA
)

func (k Kind) String() string {
	names := [...]string{
		"sma", "ema", "wma", "rsi", "macd", "bollinger_bands", "stochastic",
		"atr", "adx", "parabolic_sar", "vwap", "ichimoku", "pivots",
		"fibonacci", "cci", "roc", "momentum", "williams_r", "obv", "stddev",
		"donchian", "keltner", "cmo", "trix", "tema",
	}
	if int(k) < 0 || int(k) >= len(names) {
		return "unknown"
	}
	return names[k]
}

// Params is a configuration record; every field is optional (zero value
// means "not set" and is excluded from the cache key fingerprint). Fields
// mirror spec §3 IndicatorSpec.params exactly.
type Params struct {
	Period               int
	FastPeriod           int
	SlowPeriod           int
	SignalPeriod         int
	StdDev               float64
	KPeriod              int
	DPeriod              int
	AccelerationFactor   float64
	MaximumFactor        float64
	Gamma                float64
	Multiplier           float64
}

// Spec identifies one indicator computation: kind + params + an optional
// output selector picking among already-computed arrays (selector is
// excluded from the cache key — see CacheKey).
type Spec struct {
	Kind           Kind
	Params         Params
	OutputSelector string // "", "primary", "secondary", "tertiary", or an Extra key
}

// CacheKey returns a deterministic string fingerprint over (Kind, non-zero
// Params), excluding OutputSelector, per spec §3/§4.3/Design Notes: two
// rules that differ only in which output they read share the computation.
func (s Spec) CacheKey() string {
	var b strings.Builder
	b.WriteString(s.Kind.String())
	writeIntField(&b, "period", s.Params.Period)
	writeIntField(&b, "fast", s.Params.FastPeriod)
	writeIntField(&b, "slow", s.Params.SlowPeriod)
	writeIntField(&b, "signal", s.Params.SignalPeriod)
	writeFloatField(&b, "stddev", s.Params.StdDev)
	writeIntField(&b, "k", s.Params.KPeriod)
	writeIntField(&b, "d", s.Params.DPeriod)
	writeFloatField(&b, "af", s.Params.AccelerationFactor)
	writeFloatField(&b, "maxaf", s.Params.MaximumFactor)
	writeFloatField(&b, "gamma", s.Params.Gamma)
	writeFloatField(&b, "mult", s.Params.Multiplier)
	return b.String()
}

func writeIntField(b *strings.Builder, name string, v int) {
	if v == 0 {
		return
	}
	b.WriteByte('|')
	b.WriteString(name)
	b.WriteByte('=')
	b.WriteString(strconv.Itoa(v))
}

func writeFloatField(b *strings.Builder, name string, v float64) {
	if v == 0 {
		return
	}
	b.WriteByte('|')
	b.WriteString(name)
	b.WriteByte('=')
	b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
}

// Output is an indicator's computed result: a primary line plus up to two
// more fixed outputs, plus an open-ended Extra map for indicators that
// produce more than three named arrays (Ichimoku, pivots, Fibonacci).
// Every array is exactly len(close) long, NaN-padded through the warm-up
// region.
type Output struct {
	Primary   []float64
	Secondary []float64
	Tertiary  []float64
	Extra     map[string][]float64
}

// Select returns the array named by selector ("", "primary", "secondary",
// "tertiary", or an Extra key), defaulting to Primary.
func (o Output) Select(selector string) []float64 {
	switch selector {
	case "", "primary":
		return o.Primary
	case "secondary":
		return o.Secondary
	case "tertiary":
		return o.Tertiary
	default:
		return o.Extra[selector]
	}
}

// OHLCV is the input arrays C1 operates on — plain parallel float64 (and
// i64 timestamp) slices, matching pkg/candle.Series.Columns().
type OHLCV struct {
	TimestampsMicros []int64
	Open             []float64
	High             []float64
	Low              []float64
	Close            []float64
	Volume           []float64
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

// Compute dispatches to the formula for spec.Kind. Pure: no I/O, no shared
// state, returns bterrors.InsufficientData if the series is too short for
// even one non-NaN output value.
func Compute(spec Spec, ohlcv OHLCV) (Output, error) {
	p := spec.Params
	switch spec.Kind {
	case SMA:
		return computeSMA(ohlcv.Close, p.Period)
	case EMA:
		return computeEMA(ohlcv.Close, p.Period)
	case WMA:
		return computeWMA(ohlcv.Close, p.Period)
	case RSI:
		return computeRSI(ohlcv.Close, p.Period)
	case MACD:
		return computeMACD(ohlcv.Close, p.FastPeriod, p.SlowPeriod, p.SignalPeriod)
	case BollingerBands:
		return computeBollinger(ohlcv.Close, p.Period, p.StdDev)
	case Stochastic:
		return computeStochastic(ohlcv.High, ohlcv.Low, ohlcv.Close, p.KPeriod, p.DPeriod)
	case ATR:
		return computeATR(ohlcv.High, ohlcv.Low, ohlcv.Close, p.Period)
	case ADX:
		return computeADX(ohlcv.High, ohlcv.Low, ohlcv.Close, p.Period)
	case ParabolicSAR:
		return computeSAR(ohlcv.High, ohlcv.Low, p.AccelerationFactor, p.MaximumFactor)
	case VWAP:
		return computeVWAP(ohlcv.TimestampsMicros, ohlcv.High, ohlcv.Low, ohlcv.Close, ohlcv.Volume)
	case Ichimoku:
		return computeIchimoku(ohlcv.High, ohlcv.Low, ohlcv.Close)
	case Pivots:
		return computePivots(ohlcv.TimestampsMicros, ohlcv.High, ohlcv.Low, ohlcv.Close)
	case Fibonacci:
		return computeFibonacci(ohlcv.High, ohlcv.Low, p.Period)
	case CCI:
		return computeCCI(ohlcv.High, ohlcv.Low, ohlcv.Close, p.Period)
	case ROC:
		return computeROC(ohlcv.Close, p.Period)
	case Momentum:
		return computeMomentum(ohlcv.Close, p.Period)
	case WilliamsR:
		return computeWilliamsR(ohlcv.High, ohlcv.Low, ohlcv.Close, p.Period)
	case OBV:
		return computeOBV(ohlcv.Close, ohlcv.Volume)
	case StdDev:
		return computeStdDev(ohlcv.Close, p.Period)
	case Donchian:
		return computeDonchian(ohlcv.High, ohlcv.Low, p.Period)
	case Keltner:
		return computeKeltner(ohlcv.High, ohlcv.Low, ohlcv.Close, p.Period, p.Multiplier)
	case CMO:
		return computeCMO(ohlcv.Close, p.Period)
	case TRIX:
		return computeTRIX(ohlcv.Close, p.Period)
	case TEMA:
		return computeTEMA(ohlcv.Close, p.Period)
	default:
		return Output{}, fmt.Errorf("indicator: %w: unknown kind %v", bterrors.ErrInvalidIndicatorParams, spec.Kind)
	}
}
