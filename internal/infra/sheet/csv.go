// Package sheet reads reminder rows from spreadsheet exports and local files.
package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"reminder_notifier/internal/domain/reminder"

	"golang.org/x/text/unicode/norm"
)

var ErrMissingColumn = errors.New("required column missing from header")

type column int

const (
	colActivity column = iota
	colUnit
	colFrequency
	colDate
	colTime
	numColumns
)

var columnNames = [numColumns]string{"activity", "unit", "frequency", "date", "time"}

// headerAliases maps a folded header name to its column. Sheets are often
// kept in Spanish.
var headerAliases = map[string]column{
	"activity": colActivity, "actividad": colActivity, "tarea": colActivity,
	"unit": colUnit, "unidad": colUnit,
	"frequency": colFrequency, "frecuencia": colFrequency, "cada": colFrequency,
	"date": colDate, "fecha": colDate, "dia": colDate,
	"time": colTime, "hora": colTime,
}

// ParseCSV reads a header row followed by reminder rows. Columns are matched
// by name, so their order and any extra columns do not matter.
func ParseCSV(r io.Reader) ([]reminder.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading csv header: %w", err)
	}

	index := [numColumns]int{-1, -1, -1, -1, -1}
	for i, name := range header {
		if c, ok := headerAliases[foldHeader(name)]; ok && index[c] < 0 {
			index[c] = i
		}
	}
	for _, c := range []column{colActivity, colUnit, colTime} {
		if index[c] < 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, columnNames[c])
		}
	}

	var records []reminder.Record
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading csv row: %w", err)
		}
		get := func(c column) string {
			if i := index[c]; i >= 0 && i < len(fields) {
				return strings.TrimSpace(fields[i])
			}
			return ""
		}
		rec := reminder.Record{
			Activity:  get(colActivity),
			Unit:      get(colUnit),
			Frequency: get(colFrequency),
			Date:      get(colDate),
			Time:      get(colTime),
		}
		if rec == (reminder.Record{}) {
			continue // blank spreadsheet row
		}
		records = append(records, rec)
	}
	return records, nil
}

func foldHeader(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(strings.TrimSpace(s)) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
