package model

import (
	"strings"
	"time"
)

// DisplayLayout is the human-facing date format.
const DisplayLayout = "Jan 2, 2006"

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Mon Jan 02 2006 15:04:05 GMT-0700",
	"Mon Jan 02 2006",
}

// dateOnlyLayouts carry no time-of-day component.
var dateOnlyLayouts = map[string]bool{
	"2006-01-02":      true,
	"1/2/2006":        true,
	"Jan 2, 2006":     true,
	"January 2, 2006": true,
	"Mon Jan 02 2006": true,
}

// ParseDate parses a submission date in any of the shapes the sheet emits.
func ParseDate(s string) (time.Time, bool) {
	t, _, ok := parseDate(s)
	return t, ok
}

// ParseDateBound parses a date and also reports whether it was date-only,
// so a range end can be widened to cover the whole day.
func ParseDateBound(s string) (t time.Time, dateOnly bool, ok bool) {
	return parseDate(s)
}

func parseDate(s string) (time.Time, bool, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, false
	}
	// Date.toString appends a zone name in parentheses.
	if i := strings.Index(s, " ("); i > 0 && strings.HasSuffix(s, ")") {
		s = s[:i]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, dateOnlyLayouts[layout], true
		}
	}
	return time.Time{}, false, false
}

// FormatDate renders s as "Jan 2, 2006". Unparseable input is returned as is.
func FormatDate(s string) string {
	if s == "" {
		return ""
	}
	t, ok := ParseDate(s)
	if !ok {
		return s
	}
	return t.Format(DisplayLayout)
}
