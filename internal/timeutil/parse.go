// Package timeutil turns loosely formatted spreadsheet cells into calendar
// primitives and provides month-safe date arithmetic.
package timeutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrNotInteger is returned by ParseInteger for non-numeric content.
var ErrNotInteger = errors.New("not an integer")

// calendarLayouts are tried in order; the first one that parses wins.
var calendarLayouts = []string{
	"2/1/2006", // day/month/4-digit year
	"2/1/06",   // day/month/2-digit year
	"2006-1-2", // ISO year-month-day
}

// ParseInteger parses s as a base-10 integer after trimming whitespace.
func ParseInteger(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotInteger, s)
	}
	return n, nil
}

// ParseTimeOfDay accepts "H:MM", "HH:MM" or a compact integer such as "1150"
// or "900", which is split as hour*100+minute.
func ParseTimeOfDay(s string) (hour, minute int, ok bool) {
	s = strings.TrimSpace(s)
	if h, m, found := strings.Cut(s, ":"); found {
		var err error
		if hour, err = ParseInteger(h); err != nil {
			return 0, 0, false
		}
		if minute, err = ParseInteger(m); err != nil {
			return 0, 0, false
		}
	} else {
		n, err := ParseInteger(s)
		if err != nil || n < 0 {
			return 0, 0, false
		}
		hour, minute = n/100, n%100
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// ParseCalendarDate parses s as a calendar date at midnight in loc.
func ParseCalendarDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range calendarLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// HasDateSeparator reports whether s looks like a full date rather than a
// bare day number.
func HasDateSeparator(s string) bool {
	return strings.ContainsAny(s, "/-")
}
