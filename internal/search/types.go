// Package search implements the parameter-search engine (C8): grid search
// and a genetic algorithm over a strategy's tunable parameters, a
// work-stealing parallel fan-out across independent fitness evaluations,
// composite multi-objective scoring, and out-of-sample evaluation.
package search

// TargetKind is which part of a cloned Strategy a ParameterRange patches.
type TargetKind int

const (
	TargetRuleOperand TargetKind = iota
	TargetRiskBlock
	TargetTimeField
)

// RuleGroup names one of the strategy's four rule sequences.
type RuleGroup int

const (
	LongEntryGroup RuleGroup = iota
	ShortEntryGroup
	LongExitGroup
	ShortExitGroup
)

// OperandSide picks which side of a Rule a TargetRuleOperand range patches.
type OperandSide int

const (
	LeftOperand OperandSide = iota
	RightOperand
)

// RiskBlock names one of the strategy's SL/TP/TS configs.
type RiskBlock int

const (
	StopLossBlock RiskBlock = iota
	TakeProfitBlock
	TrailingStopBlock
)

// TimeFieldKind names one of the strategy's time-based knobs.
type TimeFieldKind int

const (
	TradingHoursField TimeFieldKind = iota
	CloseTradesAtField
)

// ParameterRange describes one tunable axis of a grid/GA search (spec §4.8).
// ParamName selects which scalar field of the targeted block is patched:
//   - TargetRuleOperand: "value" (Operand.ConstantValue), "offset"
//     (Operand.Offset), or "period" (Operand.IndicatorSpec.Params.Period)
//   - TargetRiskBlock: "value" (StopConfig.Value) or "atr_period"
//     (StopConfig.ATRPeriod)
//   - TargetTimeField: "start_minute"/"end_minute" (TradingHours) or
//     "minute" (CloseTradesAtMinute)
//
// Integer-typed parameters ("offset", "period", "atr_period", the minute
// fields) are rounded from the float grid/GA value; the rest pass through.
type ParameterRange struct {
	Target TargetKind

	RuleGroup   RuleGroup
	RuleIndex   int
	Side        OperandSide
	RiskBlock   RiskBlock
	TimeField   TimeFieldKind
	ParamName   string
	DisplayName string

	Min, Max, Step float64
}

// Values expands the range into its grid values: min, min+step, ..., <= max.
// A non-positive step yields the single value Min.
func (pr ParameterRange) Values() []float64 {
	if pr.Step <= 0 {
		return []float64{pr.Min}
	}
	var values []float64
	for v := pr.Min; v <= pr.Max+1e-9; v += pr.Step {
		values = append(values, v)
	}
	return values
}

// Snap clamps v to [Min, Max] and rounds it to the nearest step boundary,
// used by GA mutation/crossover to keep genes on the grid.
func (pr ParameterRange) Snap(v float64) float64 {
	if v < pr.Min {
		v = pr.Min
	}
	if v > pr.Max {
		v = pr.Max
	}
	if pr.Step <= 0 {
		return v
	}
	steps := (v - pr.Min) / pr.Step
	return pr.Min + float64(int(steps+0.5))*pr.Step
}

// isIntegerParam reports whether ParamName denotes an integer-typed field,
// per the rounding rule documented on ParameterRange.
func (pr ParameterRange) isIntegerParam() bool {
	switch pr.ParamName {
	case "offset", "period", "atr_period", "start_minute", "end_minute", "minute":
		return true
	default:
		return false
	}
}

// String is used only for diagnostics/logging.
func (g RuleGroup) String() string {
	switch g {
	case LongEntryGroup:
		return "long_entry"
	case ShortEntryGroup:
		return "short_entry"
	case LongExitGroup:
		return "long_exit"
	case ShortExitGroup:
		return "short_exit"
	default:
		return "unknown"
	}
}
