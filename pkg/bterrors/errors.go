// Package bterrors defines the structured error taxonomy used across the
// engine and search packages (spec §6 "Error surface", §7 "Error Handling
// Design"). Sentinel errors are wrapped with context via fmt.Errorf("%w", ...)
// following the teacher's error-wrapping idiom; callers use errors.Is/As.
package bterrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDataInRange indicates zero bars were returned for the requested
	// symbol/timeframe/date range.
	ErrNoDataInRange = errors.New("bterrors: no data in range")

	// ErrInsufficientData indicates an indicator could not produce a single
	// non-NaN value from the available history.
	ErrInsufficientData = errors.New("bterrors: insufficient data")

	// ErrInvalidIndicatorParams indicates a structurally invalid IndicatorSpec
	// (e.g. a non-positive period).
	ErrInvalidIndicatorParams = errors.New("bterrors: invalid indicator params")

	// ErrInvalidConfig indicates a structurally invalid strategy or backtest
	// configuration (e.g. a parameter range with step <= 0).
	ErrInvalidConfig = errors.New("bterrors: invalid config")

	// ErrTooManyCombinations indicates a grid search's cartesian product
	// exceeds the configured MAX_COMBINATIONS cap.
	ErrTooManyCombinations = errors.New("bterrors: too many combinations")

	// ErrCancelled indicates the caller's cancel flag fired.
	ErrCancelled = errors.New("bterrors: cancelled")

	// ErrSymbolNotFound indicates DataStore.SymbolByID found no matching
	// symbol record.
	ErrSymbolNotFound = errors.New("bterrors: symbol not found")
)

// InsufficientData carries the needed/available bar counts alongside
// ErrInsufficientData.
type InsufficientData struct {
	Needed    int
	Available int
}

func (e *InsufficientData) Error() string {
	return fmt.Sprintf("bterrors: insufficient data: needed %d, available %d", e.Needed, e.Available)
}

func (e *InsufficientData) Unwrap() error { return ErrInsufficientData }

// NewInsufficientData builds the structured InsufficientData error.
func NewInsufficientData(needed, available int) error {
	return &InsufficientData{Needed: needed, Available: available}
}

// TooManyCombinations carries the actual/limit combination counts alongside
// ErrTooManyCombinations.
type TooManyCombinations struct {
	Count int
	Limit int
}

func (e *TooManyCombinations) Error() string {
	return fmt.Sprintf("bterrors: too many combinations: %d exceeds limit %d", e.Count, e.Limit)
}

func (e *TooManyCombinations) Unwrap() error { return ErrTooManyCombinations }

// NewTooManyCombinations builds the structured TooManyCombinations error.
func NewTooManyCombinations(count, limit int) error {
	return &TooManyCombinations{Count: count, Limit: limit}
}

// WrapBar annotates an error with the bar index at which it occurred, the
// way C6 is required to (§7 "C6 wraps its errors with the current bar index
// for diagnostics").
func WrapBar(bar int, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("bar %d: %w", bar, err)
}
