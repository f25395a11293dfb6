package subbar

import (
	"github.com/atlas-desktop/quantback/internal/position"
	"github.com/atlas-desktop/quantback/internal/strategy"
	"github.com/atlas-desktop/quantback/pkg/candle"
)

// ExitEvent reports that a position closed mid-slice, at which sub-bar
// index within [start, end) and at what price/reason.
type ExitEvent struct {
	Index     int
	FillPrice float64
	Reason    strategy.CloseReason
	Occurred  bool
}

// ProcessCandles iterates sub-bar candles[start:end], updating MAE/MFE and
// the trailing stop on each one, then checking SL/TP — stopping at the
// first exit (spec §4.5: "iterates the candle slice updating MAE/MFE and
// trailing stop then calling check_sl_tp_hit").
func ProcessCandles(sub candle.Series, start, end int, pos *strategy.OpenPosition, pipSize float64) ExitEvent {
	for i := start; i < end; i++ {
		c := sub[i]
		position.UpdateMAEMFE(pos, c.High, c.Low, pipSize)
		position.UpdateTrailingStop(pos, c.High, c.Low)
		if fill, reason, hit := position.CheckSLTPHit(c, pos); hit {
			return ExitEvent{Index: i, FillPrice: fill, Reason: reason, Occurred: true}
		}
	}
	return ExitEvent{}
}
