package timeutil

import "time"

// LastDayOfMonth returns the number of days in the given month, accounting
// for leap-year February.
func LastDayOfMonth(year int, month time.Month) int {
	// Day 0 of the following month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonthsClampDay adds calendar months to date keeping the day of month,
// capped to the last valid day of the target month. Jan 31 + 1 month is
// Feb 28 (or 29), never early March. Clock and location are preserved.
func AddMonthsClampDay(date time.Time, months int) time.Time {
	total := int(date.Month()) - 1 + months
	year := date.Year() + floorDiv(total, 12)
	month := time.Month(total - floorDiv(total, 12)*12 + 1)

	day := date.Day()
	if last := LastDayOfMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, date.Hour(), date.Minute(), date.Second(), date.Nanosecond(), date.Location())
}

// WithTimeOfDay returns date's calendar day at hour:minute in date's location.
func WithTimeOfDay(date time.Time, hour, minute int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location())
}

// DateOf truncates t to midnight of its calendar day in t's location.
func DateOf(t time.Time) time.Time {
	return WithTimeOfDay(t, 0, 0)
}

// WithinTolerance reports whether now is at most windowMinutes/2 away from
// hour:minute on now's calendar date. The window is centered on the target.
func WithinTolerance(now time.Time, hour, minute, windowMinutes int) bool {
	diff := now.Sub(WithTimeOfDay(now, hour, minute))
	if diff < 0 {
		diff = -diff
	}
	return diff <= time.Duration(windowMinutes)*time.Minute/2
}

// DaysBetween returns the number of calendar days from a to b, ignoring
// clock and DST shifts. Negative when b is before a.
func DaysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// MonthsBetween returns the number of whole calendar months from a's month
// to b's month, ignoring the day of month.
func MonthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// ISOWeekday returns 1 for Monday through 7 for Sunday.
func ISOWeekday(t time.Time) int {
	if wd := t.Weekday(); wd != time.Sunday {
		return int(wd)
	}
	return 7
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
