// Package position implements the position manager (C4): lot sizing,
// stop-loss/take-profit/trailing-stop level computation, within-bar exit
// resolution, trailing updates, and MAE/MFE tracking.
package position

import (
	"math"

	"github.com/atlas-desktop/quantback/internal/strategy"
)

// PipSize and PipValue are instrument parameters the caller supplies (the
// teacher's instrument defaults live in pkg/config.InstrumentDefaults).
type Instrument struct {
	PipSize  float64
	PipValue float64
	MinLot   float64
	LotStep  float64
	// LotSize is the notional units per lot (e.g. 100000 for a standard FX
	// lot), used only by percentage-based commission.
	LotSize float64
}

// Lots computes the position size for sizing, per spec §4.4. amount/equity
// sizing requires an SL distance in price terms; FixedLots ignores it.
func Lots(sizing strategy.PositionSizing, equity float64, entry, sl float64, hasSL bool, instr Instrument) float64 {
	var raw float64
	switch sizing.Mode {
	case strategy.FixedLots:
		raw = sizing.Value
	case strategy.FixedAmount:
		raw = riskBasedLots(sizing.Value, entry, sl, hasSL, instr)
	case strategy.PercentEquity, strategy.RiskBased:
		amount := equity * sizing.Value / 100
		raw = riskBasedLots(amount, entry, sl, hasSL, instr)
	}
	return clampLot(raw, instr)
}

func riskBasedLots(amount, entry, sl float64, hasSL bool, instr Instrument) float64 {
	if !hasSL || instr.PipSize == 0 || instr.PipValue == 0 {
		return 0
	}
	slDistance := math.Abs(entry - sl)
	pips := slDistance / instr.PipSize
	if pips == 0 {
		return 0
	}
	return amount / (pips * instr.PipValue)
}

func clampLot(raw float64, instr Instrument) float64 {
	if instr.LotStep <= 0 {
		if raw < instr.MinLot {
			return instr.MinLot
		}
		return raw
	}
	floored := math.Floor(raw/instr.LotStep) * instr.LotStep
	if floored < instr.MinLot {
		return instr.MinLot
	}
	return floored
}

// LevelDistance computes the SL/TP/TS distance in price units from the
// configured level kind (spec §4.4). atrAtEntry is the ATR value sampled at
// the entry bar, used only for Kind == ATR. slDistance is used only for
// TakeProfit's Kind == RiskReward.
func LevelDistance(cfg strategy.StopConfig, entry float64, atrAtEntry float64, slDistance float64, instr Instrument) float64 {
	switch cfg.Kind {
	case strategy.Pips:
		return cfg.Value * instr.PipSize
	case strategy.Percentage:
		return entry * cfg.Value / 100
	case strategy.ATR:
		return atrAtEntry * cfg.Value
	case strategy.RiskReward:
		return slDistance * cfg.Value
	default:
		return 0
	}
}

// StopLossPrice places the SL below entry for a long, above for a short.
func StopLossPrice(dir strategy.PositionDirection, entry, distance float64) float64 {
	if dir == strategy.DirLong {
		return entry - distance
	}
	return entry + distance
}

// TakeProfitPrice places the TP above entry for a long, below for a short.
func TakeProfitPrice(dir strategy.PositionDirection, entry, distance float64) float64 {
	if dir == strategy.DirLong {
		return entry + distance
	}
	return entry - distance
}
