package subbar

import (
	"github.com/atlas-desktop/quantback/internal/strategy"
	"github.com/atlas-desktop/quantback/pkg/candle"
)

// ProcessTicks resolves SL/TP/trailing/MAE/MFE over tick[start:end],
// dispatching to a direction-specialized loop. Unlike ProcessCandles this
// does not go through internal/position's generic per-candle helpers: the
// spec calls for the tick path to inline MAE/MFE, SL, TP and trailing
// directly into one contiguous loop over the bid/ask float64 slices, since
// it runs orders of magnitude more iterations than the candle path.
func ProcessTicks(ticks candle.TickColumns, start, end int, pos *strategy.OpenPosition, pipSize float64) ExitEvent {
	if pos.Direction == strategy.DirLong {
		return processTicksLong(ticks.Bid, start, end, pos, pipSize)
	}
	return processTicksShort(ticks.Ask, start, end, pos, pipSize)
}

// processTicksLong reads only the bid side: a long position is closed by
// selling, which fills against the bid.
func processTicksLong(bid []float64, start, end int, pos *strategy.OpenPosition, pipSize float64) ExitEvent {
	for i := start; i < end; i++ {
		price := bid[i]

		if adverse := (pos.EntryPrice - price) / pipSize; pipSize != 0 && adverse > pos.MAEPips {
			pos.MAEPips = adverse
		}
		if favorable := (price - pos.EntryPrice) / pipSize; pipSize != 0 && favorable > pos.MFEPips {
			pos.MFEPips = favorable
		}

		if pos.HasTrailingStop {
			if price > pos.HighestSinceEntry {
				pos.HighestSinceEntry = price
			}
			candidate := pos.HighestSinceEntry - pos.TrailingDistance
			if !pos.HasStopLoss || candidate > pos.StopLoss {
				pos.StopLoss = candidate
				pos.HasStopLoss = true
			}
		}

		if pos.HasStopLoss && price <= pos.StopLoss {
			return ExitEvent{Index: i, FillPrice: pos.StopLoss, Reason: strategy.ReasonStopLoss, Occurred: true}
		}
		if pos.HasTakeProfit && price >= pos.TakeProfit {
			return ExitEvent{Index: i, FillPrice: pos.TakeProfit, Reason: strategy.ReasonTakeProfit, Occurred: true}
		}
	}
	return ExitEvent{}
}

// processTicksShort reads only the ask side: a short position is closed by
// buying, which fills against the ask.
func processTicksShort(ask []float64, start, end int, pos *strategy.OpenPosition, pipSize float64) ExitEvent {
	for i := start; i < end; i++ {
		price := ask[i]

		if adverse := (price - pos.EntryPrice) / pipSize; pipSize != 0 && adverse > pos.MAEPips {
			pos.MAEPips = adverse
		}
		if favorable := (pos.EntryPrice - price) / pipSize; pipSize != 0 && favorable > pos.MFEPips {
			pos.MFEPips = favorable
		}

		if pos.HasTrailingStop {
			if price < pos.LowestSinceEntry {
				pos.LowestSinceEntry = price
			}
			candidate := pos.LowestSinceEntry + pos.TrailingDistance
			if !pos.HasStopLoss || candidate < pos.StopLoss {
				pos.StopLoss = candidate
				pos.HasStopLoss = true
			}
		}

		if pos.HasStopLoss && price >= pos.StopLoss {
			return ExitEvent{Index: i, FillPrice: pos.StopLoss, Reason: strategy.ReasonStopLoss, Occurred: true}
		}
		if pos.HasTakeProfit && price <= pos.TakeProfit {
			return ExitEvent{Index: i, FillPrice: pos.TakeProfit, Reason: strategy.ReasonTakeProfit, Occurred: true}
		}
	}
	return ExitEvent{}
}
