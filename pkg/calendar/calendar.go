// Package calendar derives calendar fields (day boundaries, day-of-week,
// hour-of-day) from the engine's canonical i64 microsecond timestamps.
//
// The source this system was distilled from recovered these fields by
// slicing the string form of the datetime column. This package instead
// operates on the integer timestamp directly, per the rewrite's design
// decision (see SPEC_FULL.md Design Notes #2). All day boundaries are UTC
// (Design Notes #3) — there is no session-local timezone concept anywhere
// in this repository.
package calendar

import "fmt"

const (
	MicrosPerSecond = int64(1_000_000)
	MicrosPerMinute = 60 * MicrosPerSecond
	MicrosPerHour   = 60 * MicrosPerMinute
	MicrosPerDay    = 24 * MicrosPerHour
)

// DayKey buckets a microsecond timestamp into its UTC calendar day, expressed
// as days since the Unix epoch. Two timestamps with the same DayKey share a
// VWAP/pivot session.
func DayKey(tsMicros int64) int64 {
	days := tsMicros / MicrosPerDay
	if tsMicros%MicrosPerDay < 0 {
		days--
	}
	return days
}

// HourOfDay returns the UTC hour (0-23) for the given timestamp.
func HourOfDay(tsMicros int64) int {
	rem := tsMicros % MicrosPerDay
	if rem < 0 {
		rem += MicrosPerDay
	}
	return int(rem / MicrosPerHour)
}

// MinuteOfDay returns minutes since UTC midnight (0-1439).
func MinuteOfDay(tsMicros int64) int {
	rem := tsMicros % MicrosPerDay
	if rem < 0 {
		rem += MicrosPerDay
	}
	return int(rem / MicrosPerMinute)
}

// MinuteOfHour returns the minute component (0-59).
func MinuteOfHour(tsMicros int64) int {
	rem := tsMicros % MicrosPerHour
	if rem < 0 {
		rem += MicrosPerHour
	}
	return int(rem / MicrosPerMinute)
}

// Civil is a proleptic Gregorian calendar date.
type Civil struct {
	Year  int
	Month int // 1-12
	Day   int // 1-31
}

// civilFromDays converts days-since-epoch to a civil date using Howard
// Hinnant's civil_from_days algorithm (public domain, widely used for
// allocation-free epoch<->calendar conversion).
func civilFromDays(z int64) Civil {
	z += 719468
	era := z
	if z < 0 {
		era -= 146096
	}
	era /= 146097
	doe := z - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	y := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	d := doy - (153*mp+2)/5 + 1
	m := mp + 3
	if mp >= 10 {
		m = mp - 9
	} else {
		m = mp + 3
	}
	if m <= 2 {
		y++
	}
	return Civil{Year: int(y), Month: int(m), Day: int(d)}
}

// CivilDate returns the UTC calendar date for the given timestamp.
func CivilDate(tsMicros int64) Civil {
	return civilFromDays(DayKey(tsMicros))
}

// Weekday returns 0=Sunday .. 6=Saturday, matching spec's BarDayOfWeek field.
func Weekday(tsMicros int64) int {
	d := DayKey(tsMicros)
	// 1970-01-01 was a Thursday (weekday 4).
	wd := (d + 4) % 7
	if wd < 0 {
		wd += 7
	}
	return int(wd)
}

// Month returns 1-12.
func Month(tsMicros int64) int {
	return CivilDate(tsMicros).Month
}

// String formats a microsecond timestamp as "YYYY-MM-DD HH:MM:SS.ffffff",
// the canonical human-readable form used on trade close (§4.5: "a rare
// per-trade event — display only").
func String(tsMicros int64) string {
	c := CivilDate(tsMicros)
	rem := tsMicros % MicrosPerDay
	if rem < 0 {
		rem += MicrosPerDay
	}
	h := rem / MicrosPerHour
	rem -= h * MicrosPerHour
	m := rem / MicrosPerMinute
	rem -= m * MicrosPerMinute
	s := rem / MicrosPerSecond
	us := rem - s*MicrosPerSecond
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d.%06d", c.Year, c.Month, c.Day, h, m, s, us)
}
