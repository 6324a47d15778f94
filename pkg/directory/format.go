package directory

import (
	"strconv"
	"strings"
	"time"
)

// Initials derives up to two uppercase initials from a display name.
// Handles empty strings, repeated spaces and single names.
func Initials(name string) string {
	var initials []rune
	for _, part := range strings.Fields(name) {
		runes := []rune(part)
		initials = append(initials, runes[0])
		if len(initials) == 2 {
			break
		}
	}
	return strings.ToUpper(string(initials))
}

// FormatDate renders a timestamp as "Jan 2, 2006" for display
func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// FormatTime renders a timestamp as "03:04 PM" for display
func FormatTime(t time.Time) string {
	return t.Format("03:04 PM")
}

// RelativeTime renders how long ago a timestamp was, for the activity feed
func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		m := int(d.Minutes())
		if m == 1 {
			return "1 minute ago"
		}
		return strconv.Itoa(m) + " minutes ago"
	case d < 24*time.Hour:
		h := int(d.Hours())
		if h == 1 {
			return "1 hour ago"
		}
		return strconv.Itoa(h) + " hours ago"
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return strconv.Itoa(days) + " days ago"
	}
}
