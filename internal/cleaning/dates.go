package cleaning

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Years outside this range cannot be held by a nanosecond timestamp and are
// treated as unparseable.
const (
	minYear = 1677
	maxYear = 2262
)

var layouts = []string{
	"2006-01-02", time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04",
	"2006/01/02", "01/02/2006", "1/2/2006", "01-02-2006", "2006-01", "2006",
	"20060102", "2006 Jan 2", "2006 Jan", "Jan 2006", "January 2006",
}

// ParseDate parses a publication date. It tries common layouts first and then
// falls back to a lenient month-first parser. ok is false for unparseable
// input and for dates outside the supported year range.
func ParseDate(s string) (time.Time, bool) {
	v := strings.TrimSpace(s)
	if v == "" {
		return time.Time{}, false
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, v); err == nil {
			return inRange(t)
		}
	}
	if onlyDigits(v) {
		// bare numbers other than a year or yyyymmdd are not dates
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(v, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return inRange(t)
}

// FormatDate renders a parsed date the way the cleaned table stores it.
func FormatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}

func inRange(t time.Time) (time.Time, bool) {
	if y := t.Year(); y < minYear || y > maxYear {
		return time.Time{}, false
	}
	return t, true
}

func onlyDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
