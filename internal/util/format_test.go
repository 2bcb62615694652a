package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDateHuman(t *testing.T) {
	now := time.Date(2026, time.March, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"zero", time.Time{}, "Unknown"},
		{"seconds", now.Add(-30 * time.Second), "just now"},
		{"minutes", now.Add(-5 * time.Minute), "5m ago"},
		{"hours", now.Add(-3 * time.Hour), "3h ago"},
		{"yesterday", now.Add(-26 * time.Hour), "Yesterday"},
		{"days", now.AddDate(0, 0, -4), "4d ago"},
		{"this year", time.Date(2026, time.January, 15, 9, 0, 0, 0, time.UTC), "Jan 15"},
		{"last year", time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC), "Jan 15 '24"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDateHuman(tt.at, now))
		})
	}
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "999", FormatCount(999))
	assert.Equal(t, "1k", FormatCount(1000))
	assert.Equal(t, "1.2k", FormatCount(1234))
	assert.Equal(t, "45k", FormatCount(45_678))
	assert.Equal(t, "1.3m", FormatCount(1_300_000))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "a long...", TruncateString("a long description", 9))
	assert.Equal(t, "ab", TruncateString("abcdef", 2))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "Unknown", FormatDate(time.Time{}))
	assert.Equal(t, "Mar 10, 2026", FormatDate(time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)))
}
