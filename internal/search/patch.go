package search

import (
	"github.com/atlas-desktop/quantback/internal/rule"
	"github.com/atlas-desktop/quantback/internal/strategy"
)

// cloneStrategy makes a deep-enough copy of a Strategy for patching: the
// four rule sequences are copied element-wise (Rule/Operand are plain
// values, so a slice copy suffices) and the three optional risk blocks are
// copied behind fresh pointers so patching one clone never mutates the
// prototype or a sibling clone evaluated concurrently.
func cloneStrategy(strat *strategy.Strategy) *strategy.Strategy {
	clone := *strat
	clone.LongEntry = append([]rule.Rule(nil), strat.LongEntry...)
	clone.ShortEntry = append([]rule.Rule(nil), strat.ShortEntry...)
	clone.LongExit = append([]rule.Rule(nil), strat.LongExit...)
	clone.ShortExit = append([]rule.Rule(nil), strat.ShortExit...)

	if strat.StopLoss != nil {
		sl := *strat.StopLoss
		clone.StopLoss = &sl
	}
	if strat.TakeProfit != nil {
		tp := *strat.TakeProfit
		clone.TakeProfit = &tp
	}
	if strat.TrailingStop != nil {
		ts := *strat.TrailingStop
		clone.TrailingStop = &ts
	}
	if strat.TradingHours != nil {
		th := *strat.TradingHours
		clone.TradingHours = &th
	}
	if strat.CloseTradesAtMinute != nil {
		m := *strat.CloseTradesAtMinute
		clone.CloseTradesAtMinute = &m
	}
	return &clone
}

func sequenceOf(s *strategy.Strategy, g RuleGroup) *[]rule.Rule {
	switch g {
	case LongEntryGroup:
		return &s.LongEntry
	case ShortEntryGroup:
		return &s.ShortEntry
	case LongExitGroup:
		return &s.LongExit
	default:
		return &s.ShortExit
	}
}

// applyPatch patches one cloned Strategy in place per pr's target_selector,
// snapping integer-typed params to the nearest whole number (spec §4.8).
func applyPatch(clone *strategy.Strategy, pr ParameterRange, value float64) {
	if pr.isIntegerParam() {
		value = roundToInt(value)
	}

	switch pr.Target {
	case TargetRuleOperand:
		seq := sequenceOf(clone, pr.RuleGroup)
		if pr.RuleIndex < 0 || pr.RuleIndex >= len(*seq) {
			return
		}
		r := &(*seq)[pr.RuleIndex]
		operand := &r.Left
		if pr.Side == RightOperand {
			operand = &r.Right
		}
		patchOperand(operand, pr.ParamName, value)

	case TargetRiskBlock:
		cfg := ensureRiskBlock(clone, pr.RiskBlock)
		switch pr.ParamName {
		case "value":
			cfg.Value = value
		case "atr_period":
			cfg.ATRPeriod = int(value)
		}

	case TargetTimeField:
		switch pr.TimeField {
		case TradingHoursField:
			if clone.TradingHours == nil {
				clone.TradingHours = &strategy.TradingHours{}
			}
			switch pr.ParamName {
			case "start_minute":
				clone.TradingHours.StartMinute = int(value)
			case "end_minute":
				clone.TradingHours.EndMinute = int(value)
			}
		case CloseTradesAtField:
			minute := int(value)
			clone.CloseTradesAtMinute = &minute
		}
	}
}

func patchOperand(op *rule.Operand, paramName string, value float64) {
	switch paramName {
	case "value":
		op.ConstantValue = value
	case "offset":
		if value < 0 {
			value = 0
		}
		op.Offset = uint(value)
	case "period":
		op.IndicatorSpec.Params.Period = int(value)
	}
}

// ensureRiskBlock returns the clone's StopConfig for b, allocating a fresh
// zero-valued one if the prototype didn't configure that block — a search
// range targeting, say, take_profit implies the strategy should have one.
func ensureRiskBlock(s *strategy.Strategy, b RiskBlock) *strategy.StopConfig {
	switch b {
	case StopLossBlock:
		if s.StopLoss == nil {
			s.StopLoss = &strategy.StopConfig{}
		}
		return s.StopLoss
	case TakeProfitBlock:
		if s.TakeProfit == nil {
			s.TakeProfit = &strategy.StopConfig{}
		}
		return s.TakeProfit
	default:
		if s.TrailingStop == nil {
			s.TrailingStop = &strategy.StopConfig{}
		}
		return s.TrailingStop
	}
}

func roundToInt(v float64) float64 {
	if v < 0 {
		return float64(int(v - 0.5))
	}
	return float64(int(v + 0.5))
}

// patchAll clones strat and applies every (range, value) pair in combo,
// one per range in order.
func patchAll(strat *strategy.Strategy, ranges []ParameterRange, combo []float64) *strategy.Strategy {
	clone := cloneStrategy(strat)
	for i, pr := range ranges {
		applyPatch(clone, pr, combo[i])
	}
	return clone
}
