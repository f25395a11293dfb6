package indicator_test

import (
	"math"
	"testing"

	"github.com/atlas-desktop/quantback/internal/indicator"
)

func ohlcvFromClose(close []float64) indicator.OHLCV {
	n := len(close)
	ts := make([]int64, n)
	high := make([]float64, n)
	low := make([]float64, n)
	vol := make([]float64, n)
	for i := range close {
		ts[i] = int64(i) * 60_000_000
		high[i] = close[i] + 0.5
		low[i] = close[i] - 0.5
		vol[i] = 100
	}
	return indicator.OHLCV{TimestampsMicros: ts, Open: close, High: high, Low: low, Close: close, Volume: vol}
}

func TestSMAWarmupIsNaN(t *testing.T) {
	close := []float64{10, 12, 14, 16, 18}
	out, err := indicator.Compute(indicator.Spec{Kind: indicator.SMA, Params: indicator.Params{Period: 3}}, ohlcvFromClose(close))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for i := 0; i < 2; i++ {
		if !math.IsNaN(out.Primary[i]) {
			t.Errorf("expected NaN warm-up at index %d, got %v", i, out.Primary[i])
		}
	}
	for i := 2; i < len(close); i++ {
		if math.IsNaN(out.Primary[i]) {
			t.Errorf("expected finite value at index %d", i)
		}
	}
	// SMA(3) at index 2 = (10+12+14)/3 = 12.
	if math.Abs(out.Primary[2]-12) > 1e-9 {
		t.Errorf("SMA[2] = %v, want 12", out.Primary[2])
	}
	// SMA(3) at index 3 = (12+14+16)/3 = 14.
	if math.Abs(out.Primary[3]-14) > 1e-9 {
		t.Errorf("SMA[3] = %v, want 14", out.Primary[3])
	}
}

func TestRSIZeroLossReturnsHundred(t *testing.T) {
	close := make([]float64, 20)
	for i := range close {
		close[i] = 10 + float64(i) // strictly increasing => zero loss
	}
	out, err := indicator.Compute(indicator.Spec{Kind: indicator.RSI, Params: indicator.Params{Period: 14}}, ohlcvFromClose(close))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if out.Primary[19] != 100 {
		t.Errorf("RSI = %v, want 100 on zero loss", out.Primary[19])
	}
}

func TestStochasticFlatRangeReturnsFifty(t *testing.T) {
	close := make([]float64, 20)
	for i := range close {
		close[i] = 10 // flat series => flat high/low range
	}
	out, err := indicator.Compute(indicator.Spec{Kind: indicator.Stochastic, Params: indicator.Params{KPeriod: 14, DPeriod: 3}}, ohlcvFromClose(close))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if out.Primary[19] != 50 {
		t.Errorf("%%K = %v, want 50 on flat range", out.Primary[19])
	}
}

func TestMACDOutputs(t *testing.T) {
	close := make([]float64, 60)
	for i := range close {
		close[i] = 100 + float64(i)*0.5
	}
	out, err := indicator.Compute(indicator.Spec{Kind: indicator.MACD, Params: indicator.Params{FastPeriod: 12, SlowPeriod: 26, SignalPeriod: 9}}, ohlcvFromClose(close))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if out.Secondary == nil || out.Tertiary == nil {
		t.Fatal("expected signal and histogram arrays")
	}
	last := len(close) - 1
	if math.IsNaN(out.Primary[last]) || math.IsNaN(out.Secondary[last]) {
		t.Fatal("expected finite MACD/signal at series end")
	}
}

func TestCacheKeyExcludesOutputSelector(t *testing.T) {
	a := indicator.Spec{Kind: indicator.MACD, Params: indicator.Params{FastPeriod: 12, SlowPeriod: 26, SignalPeriod: 9}, OutputSelector: "secondary"}
	b := indicator.Spec{Kind: indicator.MACD, Params: indicator.Params{FastPeriod: 12, SlowPeriod: 26, SignalPeriod: 9}, OutputSelector: "tertiary"}
	if a.CacheKey() != b.CacheKey() {
		t.Errorf("cache keys should match when only output_selector differs: %q vs %q", a.CacheKey(), b.CacheKey())
	}
	c := indicator.Spec{Kind: indicator.MACD, Params: indicator.Params{FastPeriod: 5, SlowPeriod: 26, SignalPeriod: 9}}
	if a.CacheKey() == c.CacheKey() {
		t.Error("cache keys should differ when params differ")
	}
}

func TestComputeInsufficientData(t *testing.T) {
	close := []float64{10, 11}
	_, err := indicator.Compute(indicator.Spec{Kind: indicator.SMA, Params: indicator.Params{Period: 20}}, ohlcvFromClose(close))
	if err == nil {
		t.Fatal("expected insufficient data error")
	}
}

func TestVWAPResetsPerUTCDay(t *testing.T) {
	const dayMicros = 24 * 60 * 60 * 1_000_000
	ts := []int64{0, 1_000_000, dayMicros, dayMicros + 1_000_000}
	close := []float64{10, 20, 10, 20}
	high := []float64{10, 20, 10, 20}
	low := []float64{10, 20, 10, 20}
	vol := []float64{1, 1, 1, 1}
	out, err := indicator.Compute(indicator.Spec{Kind: indicator.VWAP}, indicator.OHLCV{
		TimestampsMicros: ts, Open: close, High: high, Low: low, Close: close, Volume: vol,
	})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	// Second day's first VWAP value should reset to that bar's typical price
	// (10), not be dragged by day one's accumulated 10/20 average.
	if math.Abs(out.Primary[2]-10) > 1e-9 {
		t.Errorf("VWAP did not reset at day boundary: got %v, want 10", out.Primary[2])
	}
}
