package rule

import (
	"math"

	"github.com/atlas-desktop/quantback/pkg/calendar"
	"github.com/atlas-desktop/quantback/pkg/candle"
)

// dailyLevels holds, for each bar, the prior completed UTC day's open/high/
// low/close — NaN until a prior day exists. Grounds Operand{Price,
// DailyOpen|DailyHigh|DailyLow|DailyClose} (spec §4.2, §3 Price field list).
type dailyLevels struct {
	open, high, low, close []float64
}

func computeDailyLevels(series candle.Series) dailyLevels {
	n := len(series)
	lv := dailyLevels{
		open:  nanFill(n),
		high:  nanFill(n),
		low:   nanFill(n),
		close: nanFill(n),
	}

	var dayOpen, dayHigh, dayLow, dayClose float64
	var lastOpen, lastHigh, lastLow, lastClose float64
	haveCompleted := false
	var currentDay int64
	first := true

	for i := 0; i < n; i++ {
		c := series[i]
		day := calendar.DayKey(c.TimestampMicros)
		if first || day != currentDay {
			if !first {
				lastOpen, lastHigh, lastLow, lastClose = dayOpen, dayHigh, dayLow, dayClose
				haveCompleted = true
			}
			dayOpen, dayHigh, dayLow = c.Open, c.High, c.Low
			currentDay = day
			first = false
		} else {
			if c.High > dayHigh {
				dayHigh = c.High
			}
			if c.Low < dayLow {
				dayLow = c.Low
			}
		}
		dayClose = c.Close

		if haveCompleted {
			lv.open[i] = lastOpen
			lv.high[i] = lastHigh
			lv.low[i] = lastLow
			lv.close[i] = lastClose
		}
	}
	return lv
}

func nanFill(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
