package calendar

import (
	"fmt"
	"strconv"
	"strings"
)

// daysFromCivil is the inverse of civilFromDays (Hinnant's days_from_civil).
func daysFromCivil(y int64, m, d int) int64 {
	if m <= 2 {
		y--
	}
	era := y
	if y < 0 {
		era -= 399
	}
	era /= 400
	yoe := y - era*400
	var mp int64
	if m > 2 {
		mp = int64(m) - 3
	} else {
		mp = int64(m) + 9
	}
	doy := (153*mp+2)/5 + int64(d) - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

// ParseMicros accepts either a raw integer count of microseconds since the
// Unix epoch, or an ISO-like "YYYY-MM-DD HH:MM:SS[.ffffff]" string, and
// returns the canonical i64 microsecond representation. This is the single
// point where the wire format (§6 "Timestamp wire format") is normalized;
// nothing downstream ever compares timestamps as strings.
func ParseMicros(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("calendar: empty timestamp")
	}
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return v, nil
	}
	return parseISOLike(raw)
}

func parseISOLike(raw string) (int64, error) {
	datePart, timePart, hasTime := strings.Cut(raw, " ")
	if !hasTime {
		datePart, timePart, hasTime = strings.Cut(raw, "T")
	}
	dateFields := strings.Split(datePart, "-")
	if len(dateFields) != 3 {
		return 0, fmt.Errorf("calendar: invalid date %q", raw)
	}
	year, err := strconv.ParseInt(dateFields[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("calendar: invalid year in %q: %w", raw, err)
	}
	month, err := strconv.Atoi(dateFields[1])
	if err != nil {
		return 0, fmt.Errorf("calendar: invalid month in %q: %w", raw, err)
	}
	day, err := strconv.Atoi(dateFields[2])
	if err != nil {
		return 0, fmt.Errorf("calendar: invalid day in %q: %w", raw, err)
	}

	var hour, minute, second int
	var micros int64
	if hasTime {
		hhmmss, frac, hasFrac := strings.Cut(timePart, ".")
		clock := strings.Split(hhmmss, ":")
		if len(clock) < 2 {
			return 0, fmt.Errorf("calendar: invalid time in %q", raw)
		}
		hour, err = strconv.Atoi(clock[0])
		if err != nil {
			return 0, fmt.Errorf("calendar: invalid hour in %q: %w", raw, err)
		}
		minute, err = strconv.Atoi(clock[1])
		if err != nil {
			return 0, fmt.Errorf("calendar: invalid minute in %q: %w", raw, err)
		}
		if len(clock) > 2 {
			second, err = strconv.Atoi(clock[2])
			if err != nil {
				return 0, fmt.Errorf("calendar: invalid second in %q: %w", raw, err)
			}
		}
		if hasFrac {
			frac = (frac + "000000")[:6]
			micros, err = strconv.ParseInt(frac, 10, 64)
			if err != nil {
				return 0, fmt.Errorf("calendar: invalid fraction in %q: %w", raw, err)
			}
		}
	}

	days := daysFromCivil(year, month, day)
	total := days*MicrosPerDay +
		int64(hour)*MicrosPerHour +
		int64(minute)*MicrosPerMinute +
		int64(second)*MicrosPerSecond +
		micros
	return total, nil
}
