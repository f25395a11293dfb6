package engine

import (
	"github.com/atlas-desktop/quantback/internal/position"
	"github.com/atlas-desktop/quantback/internal/rule"
	"github.com/atlas-desktop/quantback/internal/strategy"
	"github.com/atlas-desktop/quantback/internal/subbar"
	"github.com/atlas-desktop/quantback/pkg/calendar"
	"github.com/atlas-desktop/quantback/pkg/candle"
)

// runState carries everything one Run call mutates across the bar loop.
type runState struct {
	strat     *strategy.Strategy
	series    candle.Series
	high, low, close []float64
	evaluator *rule.Evaluator
	atr       *atrCache
	resolver  *subbar.Resolver
	instr     position.Instrument

	position *strategy.OpenPosition

	realizedEquity float64
	peakEquity     float64

	currentDay      int64
	haveDay         bool
	dailyTradeCount int

	lastClosed *strategy.TradeResult
}

func (st *runState) maybeRolloverDay(i int) {
	day := calendar.DayKey(st.series[i].TimestampMicros)
	if !st.haveDay || day != st.currentDay {
		st.currentDay = day
		st.haveDay = true
		st.dailyTradeCount = 0
	}
}

// runExitPhase handles step 3 of spec §4.6: resolve the sub-bar/TF exit,
// or the time-close force, or the direction-specific exit rule sequence.
func (st *runState) runExitPhase(i int, slice subBarSlice) {
	pos := st.position

	if st.resolver != nil {
		var ev subbar.ExitEvent
		switch st.resolver.Kind() {
		case candle.SubBarCandles:
			ev = subbar.ProcessCandles(st.resolver.DataCandles(), slice.start, slice.end, pos, st.instr.PipSize)
		case candle.SubBarTicks:
			ev = subbar.ProcessTicks(st.resolver.DataTicks(), slice.start, slice.end, pos, st.instr.PipSize)
		}
		if ev.Occurred {
			st.closePosition(i, ev.FillPrice, ev.Reason)
			return
		}
	} else {
		c := st.series[i]
		position.UpdateMAEMFE(pos, c.High, c.Low, st.instr.PipSize)
		if fill, reason, hit := position.CheckSLTPHit(c, pos); hit {
			st.closePosition(i, fill, reason)
			return
		}
		position.UpdateTrailingStop(pos, c.High, c.Low)
	}

	if st.strat.CloseTradesAtMinute != nil {
		minute := calendar.MinuteOfDay(st.series[i].TimestampMicros)
		if minute >= *st.strat.CloseTradesAtMinute {
			st.closePosition(i, st.close[i], strategy.ReasonTimeClose)
			return
		}
	}

	var exitRules []rule.Rule
	if pos.Direction == strategy.DirLong {
		exitRules = st.strat.LongExit
	} else {
		exitRules = st.strat.ShortExit
	}
	if st.evaluator.Evaluate(exitRules, i, 0) {
		st.closePosition(i, st.close[i], strategy.ReasonSignal)
	}
}

// runEntryPhase handles step 4 of spec §4.6: trading-hours/daily-cap gate,
// then the deterministic long-before-short entry-direction policy.
func (st *runState) runEntryPhase(i int) {
	if !st.withinTradingHours(i) {
		return
	}
	if st.strat.MaxDailyTrades > 0 && st.dailyTradeCount >= st.strat.MaxDailyTrades {
		return
	}

	dir := st.strat.Direction
	if (dir == strategy.Long || dir == strategy.Both) && st.evaluator.Evaluate(st.strat.LongEntry, i, 0) {
		st.openPosition(i, strategy.DirLong)
		return
	}
	if dir == strategy.Short || dir == strategy.Both {
		if st.evaluator.Evaluate(st.strat.ShortEntry, i, 0) {
			st.openPosition(i, strategy.DirShort)
		}
	}
}

func (st *runState) withinTradingHours(i int) bool {
	hours := st.strat.TradingHours
	if hours == nil {
		return true
	}
	minute := calendar.MinuteOfDay(st.series[i].TimestampMicros)
	if hours.StartMinute <= hours.EndMinute {
		return minute >= hours.StartMinute && minute <= hours.EndMinute
	}
	return minute >= hours.StartMinute || minute <= hours.EndMinute
}

// openPosition computes SL, lots, TP, trailing distance in that order
// (spec §4.6 step 4) then seeds the mutable OpenPosition.
func (st *runState) openPosition(i int, dir strategy.PositionDirection) {
	entry := st.close[i]

	pos := &strategy.OpenPosition{
		Direction:         dir,
		EntryPrice:        entry,
		EntryTimeMicros:   st.series[i].TimestampMicros,
		EntryBar:          i,
		HighestSinceEntry: st.high[i],
		LowestSinceEntry:  st.low[i],
	}

	var slDistance float64
	if st.strat.StopLoss != nil {
		atrVal := st.atr.at(st.strat.StopLoss.ATRPeriod, i)
		slDistance = position.LevelDistance(*st.strat.StopLoss, entry, atrVal, 0, st.instr)
		pos.StopLoss = position.StopLossPrice(dir, entry, slDistance)
		pos.HasStopLoss = true
	}

	pos.Lots = position.Lots(st.strat.Sizing, st.realizedEquity, entry, pos.StopLoss, pos.HasStopLoss, st.instr)

	if st.strat.TakeProfit != nil {
		atrVal := st.atr.at(st.strat.TakeProfit.ATRPeriod, i)
		tpDistance := position.LevelDistance(*st.strat.TakeProfit, entry, atrVal, slDistance, st.instr)
		pos.TakeProfit = position.TakeProfitPrice(dir, entry, tpDistance)
		pos.HasTakeProfit = true
	}

	if st.strat.TrailingStop != nil {
		atrVal := st.atr.at(st.strat.TrailingStop.ATRPeriod, i)
		pos.TrailingDistance = position.LevelDistance(*st.strat.TrailingStop, entry, atrVal, 0, st.instr)
		pos.HasTrailingStop = true
	}

	st.dailyTradeCount++
	st.position = pos
}

// closePosition realizes P&L, appends a TradeResult, and clears the open
// position.
func (st *runState) closePosition(i int, fillPrice float64, reason strategy.CloseReason) {
	pos := st.position
	pnlPips := pipsFor(pos.Direction, pos.EntryPrice, fillPrice, st.instr.PipSize)
	pnlMoney := pnlPips * st.instr.PipValue * pos.Lots
	commission := st.strat.Costs.Commission(pos.Lots, st.instr.LotSize, fillPrice)
	commissionF, _ := commission.Float64()
	pnlMoney -= commissionF

	st.realizedEquity += pnlMoney

	tr := strategy.TradeResult{
		Direction:       pos.Direction,
		EntryTimeMicros: pos.EntryTimeMicros,
		ExitTimeMicros:  st.series[i].TimestampMicros,
		EntryPrice:      pos.EntryPrice,
		ExitPrice:       fillPrice,
		Lots:            pos.Lots,
		PnLMoney:        pnlMoney,
		PnLPips:         pnlPips,
		Commission:      commissionF,
		CloseReason:     reason,
		DurationBars:    i - pos.EntryBar,
		DurationHuman:   formatDuration(st.series[pos.EntryBar].TimestampMicros, st.series[i].TimestampMicros),
		MAEPips:         pos.MAEPips,
		MFEPips:         pos.MFEPips,
	}
	st.lastClosed = &tr
	st.position = nil
}

func pipsFor(dir strategy.PositionDirection, entry, exit, pipSize float64) float64 {
	if pipSize == 0 {
		return 0
	}
	if dir == strategy.DirLong {
		return (exit - entry) / pipSize
	}
	return (entry - exit) / pipSize
}

func (st *runState) unrealizedPnL(currentClose float64) float64 {
	if st.position == nil {
		return 0
	}
	pos := st.position
	pips := pipsFor(pos.Direction, pos.EntryPrice, currentClose, st.instr.PipSize)
	return pips * st.instr.PipValue * pos.Lots
}
