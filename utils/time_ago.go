package utils

import (
	"fmt"
	"time"
)

// FormatTimeAgo renders t relative to now the way the dashboard shows it.
// Timestamps older than a day, or in the future, are printed as a date.
func FormatTimeAgo(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < 0:
		return t.Format("2006-01-02 15:04")
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff/time.Minute))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff/time.Hour))
	case diff < 48*time.Hour:
		return "Yesterday"
	default:
		return t.Format("2006-01-02 15:04")
	}
}
