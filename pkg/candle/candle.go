// Package candle holds the hot-path time-series data model: Candle,
// TickColumns, SubBarData and Timeframe. These types are shared read-only
// across every search worker once built, so
// every type here is a plain value or a slice-backed struct, never guarded by
// a mutex.
package candle

import "fmt"

// Candle is one OHLCV bar. Timestamp is microseconds since the Unix epoch —
// an absolute, monotonic integer, compared directly, never as a string.
//
// Invariant: Low <= Open, Close <= High; timestamps strictly increasing
// within a Series.
type Candle struct {
	TimestampMicros int64
	Open            float64
	High            float64
	Low             float64
	Close           float64
	Volume          float64
}

// Series is an immutable, columnar-friendly batch of candles ordered by
// time. Callers that need raw arrays for indicator computation use the
// Columns accessor rather than re-walking the slice.
type Series []Candle

// Columns returns the five parallel f64 arrays (plus the i64 timestamp
// array) backing this series. Indicator functions operate on these arrays,
// never on Candle structs directly, matching C1's pure
// "ohlcv_arrays -> IndicatorOutput" contract.
func (s Series) Columns() (timestamps []int64, open, high, low, close, volume []float64) {
	n := len(s)
	timestamps = make([]int64, n)
	open = make([]float64, n)
	high = make([]float64, n)
	low = make([]float64, n)
	close = make([]float64, n)
	volume = make([]float64, n)
	for i, c := range s {
		timestamps[i] = c.TimestampMicros
		open[i] = c.Open
		high[i] = c.High
		low[i] = c.Low
		close[i] = c.Close
		volume[i] = c.Volume
	}
	return
}

// Validate checks the OHLC invariant and strictly increasing timestamps.
func (s Series) Validate() error {
	for i, c := range s {
		if c.Low > c.Open || c.Open > c.High || c.Low > c.Close || c.Close > c.High {
			return fmt.Errorf("candle: invalid OHLC at index %d: low=%v open=%v close=%v high=%v", i, c.Low, c.Open, c.Close, c.High)
		}
		if i > 0 && c.TimestampMicros <= s[i-1].TimestampMicros {
			return fmt.Errorf("candle: timestamps not strictly increasing at index %d", i)
		}
	}
	return nil
}

// TickColumns is a columnar (struct-of-arrays) batch of bid/ask quotes.
//
// Invariant: Bid[i] <= Ask[i] for all i; TimestampsMicros is non-decreasing.
type TickColumns struct {
	TimestampsMicros []int64
	Bid              []float64
	Ask              []float64
}

// Len returns the number of ticks; the three slices are always equal length.
func (t TickColumns) Len() int { return len(t.TimestampsMicros) }

// Validate checks the bid<=ask invariant and non-decreasing timestamps.
func (t TickColumns) Validate() error {
	if len(t.Bid) != len(t.TimestampsMicros) || len(t.Ask) != len(t.TimestampsMicros) {
		return fmt.Errorf("candle: tick columns length mismatch")
	}
	for i := range t.TimestampsMicros {
		if t.Bid[i] > t.Ask[i] {
			return fmt.Errorf("candle: bid > ask at tick index %d", i)
		}
		if i > 0 && t.TimestampsMicros[i] < t.TimestampsMicros[i-1] {
			return fmt.Errorf("candle: tick timestamps not non-decreasing at index %d", i)
		}
	}
	return nil
}

// SubBarKind tags which variant SubBarData currently holds.
type SubBarKind int

const (
	SubBarNone SubBarKind = iota
	SubBarCandles
	SubBarTicks
)

// SubBarData is the tagged variant over the sub-bar refinement stream:
// absent, a sequence of M1 candles, or a columnar tick batch.
type SubBarData struct {
	Kind    SubBarKind
	Candles Series
	Ticks   TickColumns
}

// Timeframe enumerates the supported bar granularities, each carrying its
// integer minutes-per-bar.
type Timeframe int

const (
	Tick Timeframe = iota
	M1
	M5
	M15
	M30
	H1
	H4
	D1
)

// MinutesPerBar returns the integer minutes-per-bar mapping (Tick = 0,
// D1 = 1440).
func (tf Timeframe) MinutesPerBar() int {
	switch tf {
	case Tick:
		return 0
	case M1:
		return 1
	case M5:
		return 5
	case M15:
		return 15
	case M30:
		return 30
	case H1:
		return 60
	case H4:
		return 240
	case D1:
		return 1440
	default:
		return 0
	}
}

func (tf Timeframe) String() string {
	switch tf {
	case Tick:
		return "tick"
	case M1:
		return "1m"
	case M5:
		return "5m"
	case M15:
		return "15m"
	case M30:
		return "30m"
	case H1:
		return "1h"
	case H4:
		return "4h"
	case D1:
		return "1d"
	default:
		return "unknown"
	}
}

// ParseTimeframe maps a wire string to a Timeframe.
func ParseTimeframe(s string) (Timeframe, error) {
	switch s {
	case "tick":
		return Tick, nil
	case "1m":
		return M1, nil
	case "5m":
		return M5, nil
	case "15m":
		return M15, nil
	case "30m":
		return M30, nil
	case "1h":
		return H1, nil
	case "4h":
		return H4, nil
	case "1d":
		return D1, nil
	default:
		return 0, fmt.Errorf("candle: unknown timeframe %q", s)
	}
}
