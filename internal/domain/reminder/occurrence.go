package reminder

import (
	"fmt"
	"time"

	"reminder_notifier/internal/timeutil"
)

// DateLayout is the calendar date format used in dedup keys.
const DateLayout = "2006-01-02"

// DedupKey identifies one row's obligation on one calendar day and time.
type DedupKey string

// Occurrence is a single instant at which a row falls due.
type Occurrence struct {
	Activity string
	// Date is midnight of the occurrence day in the evaluation location.
	Date   time.Time
	Hour   int
	Minute int

	// Anchor and Frequency are set only for MONTH rows with a base date.
	Anchor    *time.Time
	Frequency int

	// CatchUp is true when the occurrence fired after its on-time window.
	CatchUp bool
}

// Key returns the dedup key. It is the same whichever poll tick or path
// (on time or catch-up) produced the occurrence.
func (o Occurrence) Key() DedupKey {
	return DedupKey(fmt.Sprintf("%s|%s|%02d:%02d", o.Activity, o.Date.Format(DateLayout), o.Hour, o.Minute))
}

// At returns the occurrence instant.
func (o Occurrence) At() time.Time {
	return timeutil.WithTimeOfDay(o.Date, o.Hour, o.Minute)
}

// Due pairs a row with the occurrence it is due for.
type Due struct {
	Row        Row
	Occurrence Occurrence
}
