package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatDate formats a timestamp for display.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "Unknown"
	}
	return t.Format("Jan 02, 2006")
}

// FormatDateHuman formats a timestamp relative to now.
// "just now", "5m ago", "3h ago", "Yesterday", "3d ago", "Jan 15", "Jan 15 '24"
func FormatDateHuman(t, now time.Time) string {
	if t.IsZero() {
		return "Unknown"
	}

	if d := now.Sub(t); d >= 0 && d < 24*time.Hour {
		switch {
		case d < time.Minute:
			return "just now"
		case d < time.Hour:
			return fmt.Sprintf("%dm ago", int(d.Minutes()))
		default:
			return fmt.Sprintf("%dh ago", int(d.Hours()))
		}
	}

	t = t.In(now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location())
	days := int(today.Sub(day).Hours() / 24)

	switch {
	case days == 1:
		return "Yesterday"
	case days > 1 && days < 7:
		return fmt.Sprintf("%dd ago", days)
	case t.Year() == now.Year():
		return t.Format("Jan 02")
	default:
		return t.Format("Jan 02 '06")
	}
}

// FormatCount abbreviates large counts: 999, 1.2k, 45k, 1.3m.
func FormatCount(n int) string {
	switch {
	case n < 1000:
		return strconv.Itoa(n)
	case n < 10_000:
		return trimZero(strconv.FormatFloat(float64(n)/1000, 'f', 1, 64)) + "k"
	case n < 1_000_000:
		return strconv.Itoa(n/1000) + "k"
	default:
		return trimZero(strconv.FormatFloat(float64(n)/1_000_000, 'f', 1, 64)) + "m"
	}
}

// FormatLanguage formats a repository language, with a dash placeholder if unknown.
func FormatLanguage(lang string) string {
	if strings.TrimSpace(lang) == "" {
		return "—"
	}
	return lang
}

// FormatBool formats a setting toggle.
func FormatBool(v bool) string {
	if v {
		return "On"
	}
	return "Off"
}

func trimZero(s string) string {
	// Keep one decimal at most, but avoid trailing .0 for whole values.
	return strings.TrimSuffix(s, ".0")
}

// TruncateString truncates a string to maxLen and adds "..." if needed.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
