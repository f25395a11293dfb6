package datastore_test

import (
	"context"
	"testing"

	"github.com/atlas-desktop/quantback/internal/datastore"
	"github.com/atlas-desktop/quantback/pkg/bterrors"
	"github.com/atlas-desktop/quantback/pkg/calendar"
	"github.com/atlas-desktop/quantback/pkg/candle"
)

func mustStore(t *testing.T) *datastore.FileStore {
	t.Helper()
	store, err := datastore.NewFileStore(nil, t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return store
}

func TestSymbolByIDRoundTrip(t *testing.T) {
	store := mustStore(t)
	sym := datastore.Symbol{ID: 1, Name: "EURUSD", Exchange: "OANDA", PipSize: 0.0001, PipValue: 10, LotSize: 100000, MinLot: 0.01, TickSize: 0.00001, Digits: 5}
	if err := store.PutSymbol(sym); err != nil {
		t.Fatalf("PutSymbol: %v", err)
	}

	got, err := store.SymbolByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("SymbolByID: %v", err)
	}
	if got != sym {
		t.Fatalf("expected %+v, got %+v", sym, got)
	}
}

func TestSymbolByIDNotFound(t *testing.T) {
	store := mustStore(t)
	_, err := store.SymbolByID(context.Background(), 999)
	if err == nil || !errorsIs(err, bterrors.ErrSymbolNotFound) {
		t.Fatalf("expected ErrSymbolNotFound, got %v", err)
	}
}

func errorsIs(err, target error) bool {
	for err != nil {
		if err == target {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

func buildSeries(n int) candle.Series {
	series := make(candle.Series, n)
	ts := int64(1_700_000_000_000_000)
	for i := 0; i < n; i++ {
		price := 1.1000 + float64(i)*0.0001
		series[i] = candle.Candle{TimestampMicros: ts, Open: price, High: price + 0.0002, Low: price - 0.0002, Close: price, Volume: 100}
		ts += 60_000_000
	}
	return series
}

func TestLoadOHLCVRangePushdown(t *testing.T) {
	store := mustStore(t)
	series := buildSeries(10)
	if err := store.PutOHLCV("EURUSD", candle.M1, series); err != nil {
		t.Fatalf("PutOHLCV: %v", err)
	}

	got, err := store.LoadOHLCV(context.Background(), "EURUSD", candle.M1, series[2].TimestampMicros, series[5].TimestampMicros)
	if err != nil {
		t.Fatalf("LoadOHLCV: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 candles (indices 2,3,4), got %d", len(got))
	}
	if got[0].TimestampMicros != series[2].TimestampMicros {
		t.Fatalf("expected first candle to match index 2")
	}
}

func TestLoadOHLCVMissingFileReturnsEmpty(t *testing.T) {
	store := mustStore(t)
	got, err := store.LoadOHLCV(context.Background(), "NOSUCHSYMBOL", candle.M1, 0, 1)
	if err != nil {
		t.Fatalf("LoadOHLCV: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty series, got %d candles", len(got))
	}
}

func TestLoadOHLCVUsesCacheAfterFirstLoad(t *testing.T) {
	store := mustStore(t)
	series := buildSeries(5)
	if err := store.PutOHLCV("EURUSD", candle.M1, series); err != nil {
		t.Fatalf("PutOHLCV: %v", err)
	}
	store.ClearCache()

	first, err := store.LoadOHLCV(context.Background(), "EURUSD", candle.M1, series[0].TimestampMicros, series[4].TimestampMicros+1)
	if err != nil {
		t.Fatalf("LoadOHLCV: %v", err)
	}
	if len(first) != 5 {
		t.Fatalf("expected 5 candles, got %d", len(first))
	}

	second, err := store.LoadOHLCV(context.Background(), "EURUSD", candle.M1, series[1].TimestampMicros, series[3].TimestampMicros)
	if err != nil {
		t.Fatalf("LoadOHLCV: %v", err)
	}
	if len(second) != 2 {
		t.Fatalf("expected 2 candles from cached lookup, got %d", len(second))
	}
}

func TestLoadTicksPartitionedSkipsOutOfRangeYears(t *testing.T) {
	store := mustStore(t)

	y2023Jan1, _ := calendar.ParseMicros("2023-01-01 00:00:00")
	y2024Jan1, _ := calendar.ParseMicros("2024-01-01 00:00:00")
	ticks := candle.TickColumns{
		TimestampsMicros: []int64{y2023Jan1 + 1000, y2023Jan1 + 2000, y2024Jan1 + 1000},
		Bid:              []float64{1.1000, 1.1001, 1.2000},
		Ask:              []float64{1.1002, 1.1003, 1.2002},
	}
	if err := store.PutTicks("EURUSD", ticks); err != nil {
		t.Fatalf("PutTicks: %v", err)
	}

	got, err := store.LoadTicksPartitioned(context.Background(), "EURUSD", nil, y2023Jan1, y2023Jan1+1500)
	if err != nil {
		t.Fatalf("LoadTicksPartitioned: %v", err)
	}
	if len(got.TimestampsMicros) != 1 {
		t.Fatalf("expected 1 tick from the 2023 partition only, got %d", len(got.TimestampsMicros))
	}
	if got.Bid[0] != 1.1000 || got.Ask[0] != 1.1002 {
		t.Fatalf("unexpected tick values: %+v", got)
	}
}

func TestLoadTicksPartitionedColumnProjection(t *testing.T) {
	store := mustStore(t)
	y2023Jan1, _ := calendar.ParseMicros("2023-01-01 00:00:00")
	ticks := candle.TickColumns{
		TimestampsMicros: []int64{y2023Jan1 + 1000},
		Bid:              []float64{1.1000},
		Ask:              []float64{1.1002},
	}
	if err := store.PutTicks("EURUSD", ticks); err != nil {
		t.Fatalf("PutTicks: %v", err)
	}

	got, err := store.LoadTicksPartitioned(context.Background(), "EURUSD", []string{"bid"}, y2023Jan1, y2023Jan1+5000)
	if err != nil {
		t.Fatalf("LoadTicksPartitioned: %v", err)
	}
	if len(got.Bid) != 1 {
		t.Fatalf("expected bid column populated, got %d entries", len(got.Bid))
	}
	if len(got.Ask) != 0 {
		t.Fatalf("expected ask column omitted, got %d entries", len(got.Ask))
	}
}
