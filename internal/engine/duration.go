package engine

import "fmt"

// formatDuration renders a trade's entry-to-exit span as a compact
// human-readable string for TradeResult.DurationHuman: days and hours
// ("3d 4h"), hours and minutes ("5h 12m"), or minutes alone ("17m").
// Seconds are truncated.
func formatDuration(entryMicros, exitMicros int64) string {
	minutes := (exitMicros - entryMicros) / 60_000_000
	if minutes < 0 {
		minutes = 0
	}
	days, hours, mins := minutes/(24*60), minutes/60%24, minutes%60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	default:
		return fmt.Sprintf("%dm", mins)
	}
}
