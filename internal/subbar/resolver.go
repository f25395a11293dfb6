package subbar

import (
	"math"

	"github.com/atlas-desktop/quantback/pkg/candle"
)

// Resolver sweeps one SubBarData stream in lockstep with the timeframe
// series it refines. Construct once per simulation run and call SliceFor
// once per ascending TF bar index; the internal cursor is never reset.
type Resolver struct {
	data       candle.SubBarData
	timestamps []int64
	cursor     Cursor
}

// NewResolver precomputes the sub-bar timestamp array exactly once (rather
// than per bar), which is what keeps the subsequent per-bar SliceFor calls
// to O(1) amortized cursor advances instead of an O(m) rebuild each time.
func NewResolver(data candle.SubBarData) *Resolver {
	r := &Resolver{data: data}
	switch data.Kind {
	case candle.SubBarCandles:
		ts := make([]int64, len(data.Candles))
		for i, c := range data.Candles {
			ts[i] = c.TimestampMicros
		}
		r.timestamps = ts
	case candle.SubBarTicks:
		r.timestamps = data.Ticks.TimestampsMicros
	}
	return r
}

// Kind reports which sub-bar mode this resolver was built over.
func (r *Resolver) Kind() candle.SubBarKind { return r.data.Kind }

// DataCandles returns the candle sub-bar stream; only meaningful when
// Kind() == candle.SubBarCandles.
func (r *Resolver) DataCandles() candle.Series { return r.data.Candles }

// DataTicks returns the tick sub-bar stream; only meaningful when
// Kind() == candle.SubBarTicks.
func (r *Resolver) DataTicks() candle.TickColumns { return r.data.Ticks }

// SliceFor advances the cursor past sub-bars preceding tfTimestamp, records
// start, then continues past sub-bars preceding nextTFTimestamp (pass
// math.MaxInt64 for the final TF bar, consuming everything remaining) and
// returns [start, end). Cursor.pos only ever increases across calls, so a
// full bar loop touches each sub-bar record exactly once (spec §4.5).
func (r *Resolver) SliceFor(tfTimestamp, nextTFTimestamp int64) (start, end int) {
	start = r.cursor.AdvancePast(r.timestamps, tfTimestamp)
	end = r.cursor.AdvancePast(r.timestamps, nextTFTimestamp)
	return start, end
}

// NextBoundary is a convenience for callers iterating a TF series: it
// returns the next bar's timestamp, or math.MaxInt64 past the last bar.
func NextBoundary(tf candle.Series, i int) int64 {
	if i+1 < len(tf) {
		return tf[i+1].TimestampMicros
	}
	return math.MaxInt64
}
