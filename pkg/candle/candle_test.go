package candle_test

import (
	"testing"

	"github.com/atlas-desktop/quantback/pkg/candle"
)

func TestSeriesColumns(t *testing.T) {
	s := candle.Series{
		{TimestampMicros: 1, Open: 10, High: 12, Low: 9, Close: 11, Volume: 100},
		{TimestampMicros: 2, Open: 11, High: 13, Low: 10, Close: 12, Volume: 200},
	}
	ts, open, high, low, close, volume := s.Columns()
	if len(ts) != 2 || len(open) != 2 || len(high) != 2 || len(low) != 2 || len(close) != 2 || len(volume) != 2 {
		t.Fatalf("expected all columns length 2")
	}
	if close[1] != 12 {
		t.Errorf("close[1] = %v, want 12", close[1])
	}
}

func TestSeriesValidateRejectsBadOHLC(t *testing.T) {
	s := candle.Series{{TimestampMicros: 1, Open: 10, High: 9, Low: 8, Close: 10, Volume: 1}}
	if err := s.Validate(); err == nil {
		t.Fatal("expected error for high < open")
	}
}

func TestSeriesValidateRejectsNonIncreasingTimestamps(t *testing.T) {
	s := candle.Series{
		{TimestampMicros: 2, Open: 1, High: 2, Low: 1, Close: 1, Volume: 1},
		{TimestampMicros: 2, Open: 1, High: 2, Low: 1, Close: 1, Volume: 1},
	}
	if err := s.Validate(); err == nil {
		t.Fatal("expected error for non-increasing timestamps")
	}
}

func TestTickColumnsValidate(t *testing.T) {
	ok := candle.TickColumns{
		TimestampsMicros: []int64{1, 2, 3},
		Bid:              []float64{1.0, 1.1, 1.2},
		Ask:              []float64{1.1, 1.2, 1.3},
	}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := candle.TickColumns{
		TimestampsMicros: []int64{1, 2},
		Bid:              []float64{1.2, 1.1},
		Ask:              []float64{1.1, 1.2},
	}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for bid > ask")
	}
}

func TestTimeframeMinutesPerBar(t *testing.T) {
	cases := map[candle.Timeframe]int{
		candle.Tick: 0,
		candle.M1:   1,
		candle.M5:   5,
		candle.M15:  15,
		candle.M30:  30,
		candle.H1:   60,
		candle.H4:   240,
		candle.D1:   1440,
	}
	for tf, want := range cases {
		if got := tf.MinutesPerBar(); got != want {
			t.Errorf("%s.MinutesPerBar() = %d, want %d", tf, got, want)
		}
	}
}

func TestParseTimeframeRoundTrip(t *testing.T) {
	for _, s := range []string{"tick", "1m", "5m", "15m", "30m", "1h", "4h", "1d"} {
		tf, err := candle.ParseTimeframe(s)
		if err != nil {
			t.Fatalf("ParseTimeframe(%q): %v", s, err)
		}
		if tf.String() != s {
			t.Errorf("round trip mismatch: %q -> %v -> %q", s, tf, tf.String())
		}
	}
}
