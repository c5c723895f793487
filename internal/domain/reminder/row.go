package reminder

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"reminder_notifier/internal/timeutil"

	"golang.org/x/text/unicode/norm"
)

// Unit is the period a row's frequency is counted in.
type Unit string

const (
	UnitDay   Unit = "DAY"
	UnitWeek  Unit = "WEEK"
	UnitMonth Unit = "MONTH"
	UnitYear  Unit = "YEAR"
)

var unitAliases = map[string]Unit{
	"DAY": UnitDay, "DAYS": UnitDay, "DIA": UnitDay, "DIAS": UnitDay, "DIARIO": UnitDay,
	"WEEK": UnitWeek, "WEEKS": UnitWeek, "SEMANA": UnitWeek, "SEMANAS": UnitWeek, "SEMANAL": UnitWeek,
	"MONTH": UnitMonth, "MONTHS": UnitMonth, "MES": UnitMonth, "MESES": UnitMonth, "MENSUAL": UnitMonth,
	"YEAR": UnitYear, "YEARS": UnitYear, "ANO": UnitYear, "ANOS": UnitYear, "ANUAL": UnitYear,
}

// Reasons a Record cannot become a Row.
var (
	ErrMissingActivity = errors.New("missing activity")
	ErrUnknownUnit     = errors.New("missing or unknown unit")
	ErrBadTime         = errors.New("missing or unparseable time")
)

// ParseUnit maps English or Spanish spellings (any case, with or without
// accents) to a Unit.
func ParseUnit(s string) (Unit, bool) {
	u, ok := unitAliases[foldUnit(s)]
	return u, ok
}

func foldUnit(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(strings.TrimSpace(s)) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// Record is a row exactly as it arrives from a tabular source, all text.
type Record struct {
	Activity  string
	Unit      string
	Frequency string
	Date      string
	Time      string
}

// Row is a validated reminder definition. DateField keeps its raw text since
// its meaning depends on Unit: a day of month, an ISO weekday or a full date.
type Row struct {
	Activity  string
	Unit      Unit
	Frequency int
	DateField string
	Hour      int
	Minute    int
}

// ParseError explains why a Record was rejected.
type ParseError struct {
	Activity string
	Reason   error
}

func (e *ParseError) Error() string {
	if e.Activity == "" {
		return fmt.Sprintf("reminder row rejected: %v", e.Reason)
	}
	return fmt.Sprintf("reminder row %q rejected: %v", e.Activity, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Reason }

// ParseRow validates a Record. Frequency falls back to 1 when blank or
// unparseable and is clamped to at least 1.
func ParseRow(rec Record) (Row, error) {
	activity := strings.TrimSpace(rec.Activity)
	if activity == "" {
		return Row{}, &ParseError{Reason: ErrMissingActivity}
	}

	unit, ok := ParseUnit(rec.Unit)
	if !ok {
		return Row{}, &ParseError{Activity: activity, Reason: fmt.Errorf("%w: %q", ErrUnknownUnit, rec.Unit)}
	}

	hour, minute, ok := timeutil.ParseTimeOfDay(rec.Time)
	if !ok {
		return Row{}, &ParseError{Activity: activity, Reason: fmt.Errorf("%w: %q", ErrBadTime, rec.Time)}
	}

	freq, err := timeutil.ParseInteger(rec.Frequency)
	if err != nil || freq < 1 {
		freq = 1
	}

	return Row{
		Activity:  activity,
		Unit:      unit,
		Frequency: freq,
		DateField: strings.TrimSpace(rec.Date),
		Hour:      hour,
		Minute:    minute,
	}, nil
}
