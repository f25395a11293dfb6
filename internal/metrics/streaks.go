package metrics

import "github.com/atlas-desktop/quantback/internal/strategy"

// computeStreaks tracks consecutive win/loss runs across the trade list in
// order. A zero-P&L trade resets neither streak (spec §4.7), so it's simply
// skipped without touching either counter.
func computeStreaks(m *Metrics, trades []strategy.TradeResult) {
	var curWin, curLoss int
	var winRuns, lossRuns int
	var winRunSum, lossRunSum int

	flushWin := func() {
		if curWin == 0 {
			return
		}
		winRuns++
		winRunSum += curWin
		if curWin > m.MaxConsecutiveWins {
			m.MaxConsecutiveWins = curWin
		}
		curWin = 0
	}
	flushLoss := func() {
		if curLoss == 0 {
			return
		}
		lossRuns++
		lossRunSum += curLoss
		if curLoss > m.MaxConsecutiveLosses {
			m.MaxConsecutiveLosses = curLoss
		}
		curLoss = 0
	}

	for _, tr := range trades {
		switch {
		case tr.PnLMoney > 0:
			flushLoss()
			curWin++
		case tr.PnLMoney < 0:
			flushWin()
			curLoss++
		}
	}
	flushWin()
	flushLoss()

	if winRuns > 0 {
		m.AvgConsecutiveWins = float64(winRunSum) / float64(winRuns)
	}
	if lossRuns > 0 {
		m.AvgConsecutiveLosses = float64(lossRunSum) / float64(lossRuns)
	}
}
