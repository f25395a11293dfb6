package rule

import "github.com/atlas-desktop/quantback/pkg/candle"

// PatternKind enumerates the seven candle patterns each computed once per
// candle series and reduced to a 0.0/1.0 series so they compose through the
// same numeric comparator grammar as every other operand (spec §4.2).
type PatternKind int

const (
	Doji PatternKind = iota
	Hammer
	ShootingStar
	BullishEngulfing
	BearishEngulfing
	PiercingLine
	DarkCloud
)

// ComputePatterns walks the series once per pattern and returns a 0.0/1.0
// series for each, indexed by bar. Patterns that need a prior bar leave
// index 0 at 0.0 (no signal, not NaN — a pattern is a boolean fact, never a
// warm-up quantity).
func ComputePatterns(series candle.Series) map[PatternKind][]float64 {
	n := len(series)
	out := make(map[PatternKind][]float64, 7)
	for _, k := range []PatternKind{Doji, Hammer, ShootingStar, BullishEngulfing, BearishEngulfing, PiercingLine, DarkCloud} {
		out[k] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		c := series[i]
		body := c.Close - c.Open
		absBody := abs(body)
		rng := c.High - c.Low
		if rng == 0 {
			continue
		}
		upperWick := c.High - maxF(c.Open, c.Close)
		lowerWick := minF(c.Open, c.Close) - c.Low

		if absBody <= 0.1*rng {
			out[Doji][i] = 1.0
		}
		if lowerWick >= 2*absBody && upperWick <= 0.1*rng && absBody > 0 {
			out[Hammer][i] = 1.0
		}
		if upperWick >= 2*absBody && lowerWick <= 0.1*rng && absBody > 0 {
			out[ShootingStar][i] = 1.0
		}

		if i == 0 {
			continue
		}
		prev := series[i-1]
		prevBody := prev.Close - prev.Open

		if prevBody < 0 && body > 0 && c.Open <= prev.Close && c.Close >= prev.Open {
			out[BullishEngulfing][i] = 1.0
		}
		if prevBody > 0 && body < 0 && c.Open >= prev.Close && c.Close <= prev.Open {
			out[BearishEngulfing][i] = 1.0
		}

		prevMid := (prev.Open + prev.Close) / 2
		if prevBody < 0 && body > 0 && c.Open < prev.Close && c.Close > prevMid && c.Close < prev.Open {
			out[PiercingLine][i] = 1.0
		}
		if prevBody > 0 && body < 0 && c.Open > prev.Close && c.Close < prevMid && c.Close > prev.Open {
			out[DarkCloud][i] = 1.0
		}
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
