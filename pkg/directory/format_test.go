package directory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInitials(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"two names", "John Doe", "JD"},
		{"single name", "Prince", "P"},
		{"three names capped at two", "Alice Mary Williams", "AM"},
		{"repeated spaces", "John    Doe", "JD"},
		{"empty", "", ""},
		{"spaces only", "   ", ""},
		{"lowercase input", "jane smith", "JS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Initials(tt.in))
		})
	}
}

func TestFormatDateAndTime(t *testing.T) {
	ts := time.Date(2025, 1, 20, 14, 30, 0, 0, time.UTC)

	assert.Equal(t, "Jan 20, 2025", FormatDate(ts))
	assert.Equal(t, "02:30 PM", FormatTime(ts))
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2025, 1, 20, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"just now", now.Add(-30 * time.Second), "just now"},
		{"one minute", now.Add(-time.Minute), "1 minute ago"},
		{"minutes", now.Add(-2 * time.Minute), "2 minutes ago"},
		{"one hour", now.Add(-time.Hour), "1 hour ago"},
		{"hours", now.Add(-5 * time.Hour), "5 hours ago"},
		{"one day", now.Add(-24 * time.Hour), "1 day ago"},
		{"days", now.Add(-72 * time.Hour), "3 days ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeTime(tt.at, now))
		})
	}
}
