package reminder

import (
	"time"

	"reminder_notifier/internal/timeutil"
)

// Options tune how strictly "due now" is interpreted.
type Options struct {
	// ToleranceWindowMinutes is the full span centered on the target time;
	// a row is on time within half of it on either side. Poll cadence must
	// not exceed it.
	ToleranceWindowMinutes int
	// CatchUp lets MONTH rows with a base date fire after their on-time
	// window was missed.
	CatchUp bool
	// MaxOverdueDays bounds catch-up; 0 means no bound.
	MaxOverdueDays int
}

// DefaultOptions is a ±10 minute window with unbounded catch-up.
func DefaultOptions() Options {
	return Options{
		ToleranceWindowMinutes: 20,
		CatchUp:                true,
	}
}

// Evaluator decides whether rows are due. It holds no mutable state, so the
// same (row, now) always yields the same answer.
type Evaluator struct {
	opts Options
}

func NewEvaluator(opts Options) *Evaluator {
	return &Evaluator{opts: opts}
}

// Evaluate returns the subset of rows due at now with their occurrences.
func (e *Evaluator) Evaluate(rows []Row, now time.Time) []Due {
	var due []Due
	for _, row := range rows {
		if occ, ok := e.Check(row, now); ok {
			due = append(due, Due{Row: row, Occurrence: occ})
		}
	}
	return due
}

// Check reports whether row is due at now and, if so, which occurrence.
func (e *Evaluator) Check(row Row, now time.Time) (Occurrence, bool) {
	if row.Activity == "" {
		return Occurrence{}, false
	}
	if row.Frequency < 1 {
		row.Frequency = 1
	}

	occ := Occurrence{
		Activity: row.Activity,
		Date:     timeutil.DateOf(now),
		Hour:     row.Hour,
		Minute:   row.Minute,
	}

	var ok bool
	switch row.Unit {
	case UnitDay:
		ok = e.dueDaily(row, now)
	case UnitWeek:
		ok = e.dueWeekly(row, now)
	case UnitMonth:
		if timeutil.HasDateSeparator(row.DateField) {
			return e.dueMonthlyFromBase(row, now)
		}
		ok = e.dueMonthlyOnDay(row, now)
	case UnitYear:
		ok = e.dueYearly(row, now)
	}
	if !ok {
		return Occurrence{}, false
	}
	return occ, true
}

func (e *Evaluator) onTime(row Row, now time.Time) bool {
	return timeutil.WithinTolerance(now, row.Hour, row.Minute, e.opts.ToleranceWindowMinutes)
}

func (e *Evaluator) dueDaily(row Row, now time.Time) bool {
	if !e.onTime(row, now) {
		return false
	}
	if row.Frequency == 1 {
		return true
	}
	base, ok := timeutil.ParseCalendarDate(row.DateField, now.Location())
	if !ok {
		return false
	}
	days := timeutil.DaysBetween(base, now)
	return days >= 0 && days%row.Frequency == 0
}

// dueWeekly accepts either an ISO weekday (1=Mon..7=Sun) or a full base date
// whose weekday is used. Without a base date the frequency is not enforced.
func (e *Evaluator) dueWeekly(row Row, now time.Time) bool {
	weekday, base, hasBase := weeklySchedule(row.DateField, now.Location())
	if weekday == 0 || timeutil.ISOWeekday(now) != weekday {
		return false
	}
	if !e.onTime(row, now) {
		return false
	}
	if row.Frequency > 1 && hasBase {
		days := timeutil.DaysBetween(base, now)
		if days < 0 || (days/7)%row.Frequency != 0 {
			return false
		}
	}
	return true
}

func weeklySchedule(field string, loc *time.Location) (weekday int, base time.Time, hasBase bool) {
	if n, err := timeutil.ParseInteger(field); err == nil {
		if n < 1 || n > 7 {
			return 0, time.Time{}, false
		}
		return n, time.Time{}, false
	}
	if base, ok := timeutil.ParseCalendarDate(field, loc); ok {
		return timeutil.ISOWeekday(base), base, true
	}
	return 0, time.Time{}, false
}

// dueMonthlyOnDay handles a bare day of month, clamped to the current
// month's length. Only frequency 1 is supported.
func (e *Evaluator) dueMonthlyOnDay(row Row, now time.Time) bool {
	if row.Frequency != 1 {
		return false
	}
	day, err := timeutil.ParseInteger(row.DateField)
	if err != nil || day < 1 {
		return false
	}
	if last := timeutil.LastDayOfMonth(now.Year(), now.Month()); day > last {
		day = last
	}
	return now.Day() == day && e.onTime(row, now)
}

// dueMonthlyFromBase finds the latest occurrence base+k*frequency months not
// after today and fires it on time or, if missed, via catch-up. Both paths
// report the same occurrence date so they share one dedup key.
func (e *Evaluator) dueMonthlyFromBase(row Row, now time.Time) (Occurrence, bool) {
	base, ok := timeutil.ParseCalendarDate(row.DateField, now.Location())
	if !ok {
		return Occurrence{}, false
	}

	k := timeutil.MonthsBetween(base, now) / row.Frequency
	if k < 1 {
		k = 1
	}
	candidate := timeutil.AddMonthsClampDay(base, k*row.Frequency)
	if timeutil.DaysBetween(now, candidate) > 0 {
		k--
		if k < 1 {
			return Occurrence{}, false
		}
		candidate = timeutil.AddMonthsClampDay(base, k*row.Frequency)
	}

	occ := Occurrence{
		Activity:  row.Activity,
		Date:      candidate,
		Hour:      row.Hour,
		Minute:    row.Minute,
		Anchor:    &base,
		Frequency: row.Frequency,
	}

	overdue := timeutil.DaysBetween(candidate, now)
	if overdue == 0 && e.onTime(row, now) {
		return occ, true
	}

	if !e.opts.CatchUp || occ.At().After(now) {
		return Occurrence{}, false
	}
	if e.opts.MaxOverdueDays > 0 && overdue > e.opts.MaxOverdueDays {
		return Occurrence{}, false
	}
	occ.CatchUp = true
	return occ, true
}

func (e *Evaluator) dueYearly(row Row, now time.Time) bool {
	base, ok := timeutil.ParseCalendarDate(row.DateField, now.Location())
	if !ok {
		return false
	}
	if now.Month() != base.Month() || now.Day() != base.Day() {
		return false
	}
	return now.Year() >= base.Year()+row.Frequency && e.onTime(row, now)
}
