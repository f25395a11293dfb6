package calendar_test

import (
	"testing"

	"github.com/atlas-desktop/quantback/pkg/calendar"
)

func TestRoundTripMicros(t *testing.T) {
	cases := []int64{0, 1, 1_000_000, 86_400_000_000, 1_700_000_000_000_000}
	for _, tsMicros := range cases {
		s := calendar.String(tsMicros)
		got, err := calendar.ParseMicros(s)
		if err != nil {
			t.Fatalf("ParseMicros(%q): %v", s, err)
		}
		if got != tsMicros {
			t.Errorf("round-trip mismatch for %d: formatted %q, parsed back %d", tsMicros, s, got)
		}
	}
}

func TestParseMicrosAcceptsRawInteger(t *testing.T) {
	got, err := calendar.ParseMicros("1700000000000000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1700000000000000 {
		t.Errorf("got %d", got)
	}
}

func TestParseMicrosAcceptsISOLike(t *testing.T) {
	got, err := calendar.ParseMicros("2024-01-15 10:30:00.500000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := calendar.CivilDate(got)
	if c.Year != 2024 || c.Month != 1 || c.Day != 15 {
		t.Errorf("civil date mismatch: %+v", c)
	}
	if calendar.HourOfDay(got) != 10 {
		t.Errorf("hour mismatch: %d", calendar.HourOfDay(got))
	}
}

func TestDayKeyGroupsSameUTCDay(t *testing.T) {
	morning, _ := calendar.ParseMicros("2024-03-10 00:00:01")
	evening, _ := calendar.ParseMicros("2024-03-10 23:59:59")
	if calendar.DayKey(morning) != calendar.DayKey(evening) {
		t.Errorf("expected same day key for %d and %d", morning, evening)
	}
	nextDay, _ := calendar.ParseMicros("2024-03-11 00:00:00")
	if calendar.DayKey(evening) == calendar.DayKey(nextDay) {
		t.Errorf("expected different day keys across the UTC boundary")
	}
}

func TestWeekdayKnownEpoch(t *testing.T) {
	// 1970-01-01 was a Thursday.
	if got := calendar.Weekday(0); got != 4 {
		t.Errorf("expected Thursday (4), got %d", got)
	}
	// 1970-01-04 was a Sunday.
	if got := calendar.Weekday(3 * calendar.MicrosPerDay); got != 0 {
		t.Errorf("expected Sunday (0), got %d", got)
	}
}
