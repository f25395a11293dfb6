// Package datastore defines the DataStore interface consumed by C6/C8/C9
// (spec §4.9) and a file-backed reference implementation, FileStore,
// adapted from the teacher's internal/data.Store.
package datastore

import (
	"context"

	"github.com/atlas-desktop/quantback/pkg/candle"
)

// Symbol is the static instrument record backing SymbolByID (spec §3
// supplement, from original_source's models/symbol.rs).
type Symbol struct {
	ID       int64
	Name     string
	Exchange string
	PipSize  float64
	PipValue float64
	LotSize  float64
	MinLot   float64
	TickSize float64
	Digits   int
}

// DataStore is consumed, not owned, by the engine and search packages: it
// is the sole interface through which candle/tick data and symbol metadata
// reach C6/C8 (spec §4.9). Implementations must push the [start,end) date
// range down to storage rather than returning the full series for the
// caller to filter.
type DataStore interface {
	// SymbolByID resolves a symbol record, returning
	// bterrors.ErrSymbolNotFound if id has no match.
	SymbolByID(ctx context.Context, id int64) (Symbol, error)

	// LoadOHLCV returns the candle series for symbol/timeframe within
	// [start, end) (microsecond timestamps), empty if none overlap.
	LoadOHLCV(ctx context.Context, symbol string, tf candle.Timeframe, start, end int64) (candle.Series, error)

	// LoadTicksPartitioned returns a columnar tick batch within [start, end).
	// columns restricts which of "bid"/"ask" are populated; an empty columns
	// loads both. Implementations partition tick storage (e.g. by year) and
	// skip partitions wholly outside [start, end) rather than scanning
	// everything on disk.
	LoadTicksPartitioned(ctx context.Context, symbol string, columns []string, start, end int64) (candle.TickColumns, error)
}
