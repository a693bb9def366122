package domain

import (
	"fmt"
	"strings"
	"time"
)

const dateOnlyLayout = "2006-01-02"

// timestampLayouts are tried in order when parsing timestamps received from
// browsers and from the upstream backend, which omits the zone offset.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses a timestamp in any of the accepted layouts. Values
// without a zone are taken as UTC. A date without a time is midnight UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	if t, err := time.Parse(dateOnlyLayout, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// ParseClosure parses an expected closure date. A date-only value means the
// end of that day, 23:59:59 UTC.
func ParseClosure(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrMissingClosure
	}
	if t, err := time.Parse(dateOnlyLayout, s); err == nil {
		return EndOfDay(t), nil
	}
	return ParseTimestamp(s)
}

// EndOfDay returns 23:59:59 UTC on t's calendar day.
func EndOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}
