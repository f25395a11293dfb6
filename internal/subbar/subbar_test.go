package subbar_test

import (
	"math"
	"testing"

	"github.com/atlas-desktop/quantback/internal/strategy"
	"github.com/atlas-desktop/quantback/internal/subbar"
	"github.com/atlas-desktop/quantback/pkg/candle"
)

func TestSliceForIsNonDecreasingAndCoversAllSubBars(t *testing.T) {
	tf := candle.Series{
		{TimestampMicros: 0}, {TimestampMicros: 60}, {TimestampMicros: 120},
	}
	sub := candle.SubBarData{Kind: candle.SubBarCandles, Candles: candle.Series{
		{TimestampMicros: 0}, {TimestampMicros: 20}, {TimestampMicros: 40},
		{TimestampMicros: 60}, {TimestampMicros: 80},
		{TimestampMicros: 120}, {TimestampMicros: 140},
	}}
	r := subbar.NewResolver(sub)
	var totalCovered int
	prevEnd := 0
	for i := range tf {
		next := subbar.NextBoundary(tf, i)
		start, end := r.SliceFor(tf[i].TimestampMicros, next)
		if start < prevEnd {
			t.Fatalf("cursor went backward: start=%d prevEnd=%d", start, prevEnd)
		}
		totalCovered += end - start
		prevEnd = end
	}
	if totalCovered != len(sub.Candles) {
		t.Errorf("expected all %d sub-bars covered, got %d", len(sub.Candles), totalCovered)
	}
}

func TestProcessCandlesStopsAtFirstExit(t *testing.T) {
	pos := &strategy.OpenPosition{Direction: strategy.DirLong, StopLoss: 99, HasStopLoss: true, EntryPrice: 100}
	sub := candle.Series{
		{Open: 100, High: 101, Low: 100, Close: 100},
		{Open: 100, High: 100, Low: 98, Close: 99}, // SL touched here
		{Open: 99, High: 110, Low: 99, Close: 105}, // should never be reached
	}
	ev := subbar.ProcessCandles(sub, 0, len(sub), pos, 1)
	if !ev.Occurred || ev.Index != 1 {
		t.Fatalf("expected exit at index 1, got %+v", ev)
	}
	if ev.Reason != strategy.ReasonStopLoss {
		t.Errorf("expected StopLoss reason, got %v", ev.Reason)
	}
}

func TestProcessTicksLongReadsBidOnly(t *testing.T) {
	pos := &strategy.OpenPosition{Direction: strategy.DirLong, EntryPrice: 100, TakeProfit: 105, HasTakeProfit: true}
	ticks := candle.TickColumns{
		TimestampsMicros: []int64{0, 1, 2},
		Bid:              []float64{101, 103, 106},
		Ask:              []float64{999, 999, 999}, // must never be read on the long path
	}
	ev := subbar.ProcessTicks(ticks, 0, 3, pos, 1)
	if !ev.Occurred || ev.Index != 2 {
		t.Fatalf("expected TP hit at tick index 2, got %+v", ev)
	}
	if math.Abs(ev.FillPrice-105) > 1e-9 {
		t.Errorf("TP fill should be the TP level 105, got %v", ev.FillPrice)
	}
}
