package position

import (
	"math"

	"github.com/atlas-desktop/quantback/internal/strategy"
	"github.com/atlas-desktop/quantback/pkg/candle"
)

// CheckSLTPHit resolves whether a candle triggers the position's stop-loss
// or take-profit within the bar, per spec §4.4: SL is a stop-market (a
// gap-through fills at the open, worse for the trader), TP is a limit
// (always fills at the TP level). If both fire in the same candle, the
// level whose fill price sits closer to the open is assumed touched first.
func CheckSLTPHit(c candle.Candle, pos *strategy.OpenPosition) (fillPrice float64, reason strategy.CloseReason, hit bool) {
	slHit, slFill := checkSL(c, pos)
	tpHit, tpFill := checkTP(c, pos)
	switch {
	case slHit && tpHit:
		if math.Abs(slFill-c.Open) <= math.Abs(tpFill-c.Open) {
			return slFill, strategy.ReasonStopLoss, true
		}
		return tpFill, strategy.ReasonTakeProfit, true
	case slHit:
		return slFill, strategy.ReasonStopLoss, true
	case tpHit:
		return tpFill, strategy.ReasonTakeProfit, true
	default:
		return 0, 0, false
	}
}

func checkSL(c candle.Candle, pos *strategy.OpenPosition) (bool, float64) {
	if !pos.HasStopLoss {
		return false, 0
	}
	sl := pos.StopLoss
	if pos.Direction == strategy.DirLong {
		if c.Open <= sl {
			return true, c.Open
		}
		if c.Low <= sl {
			return true, sl
		}
		return false, 0
	}
	if c.Open >= sl {
		return true, c.Open
	}
	if c.High >= sl {
		return true, sl
	}
	return false, 0
}

func checkTP(c candle.Candle, pos *strategy.OpenPosition) (bool, float64) {
	if !pos.HasTakeProfit {
		return false, 0
	}
	tp := pos.TakeProfit
	if pos.Direction == strategy.DirLong {
		if c.High >= tp {
			return true, tp
		}
		return false, 0
	}
	if c.Low <= tp {
		return true, tp
	}
	return false, 0
}

// UpdateTrailingStop updates the running extreme price and advances the
// stored SL only in the direction that tightens the stop (spec §4.4).
// Callers pass the bar's (or sub-bar's) high/low; internal/subbar's tick
// path does not call this and updates the stop inline from bid (long) or
// ask (short).
func UpdateTrailingStop(pos *strategy.OpenPosition, high, low float64) {
	if !pos.HasTrailingStop {
		return
	}
	if pos.Direction == strategy.DirLong {
		if high > pos.HighestSinceEntry {
			pos.HighestSinceEntry = high
		}
		candidate := pos.HighestSinceEntry - pos.TrailingDistance
		if !pos.HasStopLoss || candidate > pos.StopLoss {
			pos.StopLoss = candidate
			pos.HasStopLoss = true
		}
		return
	}
	if low < pos.LowestSinceEntry {
		pos.LowestSinceEntry = low
	}
	candidate := pos.LowestSinceEntry + pos.TrailingDistance
	if !pos.HasStopLoss || candidate < pos.StopLoss {
		pos.StopLoss = candidate
		pos.HasStopLoss = true
	}
}

// UpdateMAEMFE tracks maximum adverse/favorable excursion in pips from
// entry. Callers pass the bar's (or sub-bar's) high/low; internal/subbar's
// tick path does not call this and tracks excursions inline from bid/ask.
func UpdateMAEMFE(pos *strategy.OpenPosition, high, low, pipSize float64) {
	if pipSize == 0 {
		return
	}
	var adverse, favorable float64
	if pos.Direction == strategy.DirLong {
		adverse = (pos.EntryPrice - low) / pipSize
		favorable = (high - pos.EntryPrice) / pipSize
	} else {
		adverse = (high - pos.EntryPrice) / pipSize
		favorable = (pos.EntryPrice - low) / pipSize
	}
	if adverse > pos.MAEPips {
		pos.MAEPips = adverse
	}
	if favorable > pos.MFEPips {
		pos.MFEPips = favorable
	}
}
