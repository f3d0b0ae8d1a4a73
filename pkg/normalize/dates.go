package normalize

import (
	"regexp"
	"strings"
	"time"
)

// dateLayouts are tried in order. Month-only and year-only layouts anchor to
// the first day, which keeps range queries conservative.
var dateLayouts = []string{
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2006-01-02",
	"January 2006",
	"Jan 2006",
	"2006",
}

var rangeRe = regexp.MustCompile(`^(\d{1,2})\s*[-–]\s*(\d{1,2})\s+([A-Za-z]+)\s+(\d{4})$`)

// ParseDate attempts to read a scraped date string. It returns the parsed
// date (nil when no layout matches) together with the collapsed original
// text, which is always preserved for display. Parse failure is never an
// error: "TBD", "", and other junk simply yield a nil date.
func ParseDate(raw string) (*time.Time, string) {
	text := CollapseSpace(raw)
	if text == "" {
		return nil, text
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d, text
		}
	}
	return nil, text
}

// SplitDateRange rewrites a compact day range left in the start slot, e.g.
// "1–31 January 2026" with an empty end, into separate start and end strings
// ("1 January 2026", "31 January 2026"). Anything else passes through
// untouched.
func SplitDateRange(start, end string) (string, string) {
	if strings.TrimSpace(end) != "" {
		return start, end
	}
	m := rangeRe.FindStringSubmatch(CollapseSpace(start))
	if m == nil {
		return start, end
	}
	return m[1] + " " + m[3] + " " + m[4], m[2] + " " + m[3] + " " + m[4]
}
