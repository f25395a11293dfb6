// Package rule implements the boolean predicate-tree evaluator (C2):
// evaluate(rules, bar_index, cache, candles, time_offset) -> bool. Operands
// are a closed tagged variant with exhaustive matching (Design Notes:
// "never a heap-allocated polymorphic object per operand — operands are
// evaluated tens of millions of times").
package rule

import "github.com/atlas-desktop/quantback/internal/indicator"

// OperandKind tags which variant an Operand currently holds.
type OperandKind int

const (
	OperandIndicator OperandKind = iota
	OperandPrice
	OperandConstant
	OperandBarTime
	OperandCandlePattern
)

// PriceField enumerates Operand{Price} fields.
type PriceField int

const (
	Open PriceField = iota
	High
	Low
	Close
	DailyOpen
	DailyHigh
	DailyLow
	DailyClose
)

// BarTimeField enumerates Operand{BarTime} fields.
type BarTimeField int

const (
	CurrentBar BarTimeField = iota
	BarTime
	BarHour
	BarMinute
	BarDayOfWeek
	BarMonth
)

// Operand is the closed tagged variant over
// {Indicator(spec, selector?), Price(field), Constant(f64), BarTime(field),
// CandlePattern(kind)}, with an optional Offset (unsigned bars of lookback).
type Operand struct {
	Kind OperandKind

	IndicatorSpec     indicator.Spec
	IndicatorSelector string

	PriceField PriceField

	ConstantValue float64

	BarTimeField BarTimeField

	PatternKind PatternKind

	Offset uint
}
