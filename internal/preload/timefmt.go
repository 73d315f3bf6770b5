package preload

import (
	"strconv"
	"time"
)

// FormatRelative renders t relative to now: "now", "Nm ago", "Nh ago",
// "Nd ago", then the calendar date. Zero times render as "unknown".
func FormatRelative(t, now time.Time) string {
	if t.IsZero() {
		return "unknown"
	}

	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "now"
	case diff < time.Hour:
		return strconv.Itoa(int(diff/time.Minute)) + "m ago"
	case diff < 24*time.Hour:
		return strconv.Itoa(int(diff/time.Hour)) + "h ago"
	case diff < 7*24*time.Hour:
		return strconv.Itoa(int(diff/(24*time.Hour))) + "d ago"
	default:
		return t.Local().Format("1/2/2006")
	}
}

// formatUntil renders a future t relative to now: "in Nm" or "in Nh".
func formatUntil(t, now time.Time) string {
	diff := t.Sub(now)

	switch {
	case diff < time.Minute:
		return "now"
	case diff < time.Hour:
		return "in " + strconv.Itoa(int(diff/time.Minute)) + "m"
	default:
		return "in " + strconv.Itoa(int(diff/time.Hour)) + "h"
	}
}
