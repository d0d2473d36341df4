// Package filter narrows transaction record lists by period and scope before
// aggregation. All functions are pure: they never mutate their input and
// carry no state.
package filter

import (
	"errors"
	"time"

	"github.com/parkops/backoffice/internal/domain/transaction"
)

// ErrInvalidRange indicates a custom period with a missing or inverted bound.
// Callers decide how to degrade; filtering is never silently disabled.
var ErrInvalidRange = errors.New("custom period requires valid start and end bounds")

// Period selects the reporting window
type Period string

const (
	PeriodToday  Period = "today"
	PeriodWeek   Period = "week"
	PeriodMonth  Period = "month"
	PeriodYear   Period = "year"
	PeriodCustom Period = "custom"
)

// Valid reports whether p is a recognized period token
func (p Period) Valid() bool {
	switch p {
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodYear, PeriodCustom:
		return true
	}
	return false
}

// Range is a closed time interval. Both bounds are inclusive at every
// call site; there is exactly one boundary convention in the system.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within the range, inclusive of both ends
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Resolve maps a period token to a concrete time range relative to now:
// today is the current calendar day in now's location, week is the trailing
// 7 days, month runs from the 1st of the current month, year from January 1.
// Custom requires both bounds and returns ErrInvalidRange otherwise.
func Resolve(period Period, now time.Time, customStart, customEnd time.Time) (Range, error) {
	switch period {
	case PeriodToday:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return Range{Start: start, End: now}, nil
	case PeriodWeek:
		return Range{Start: now.AddDate(0, 0, -7), End: now}, nil
	case PeriodMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return Range{Start: start, End: now}, nil
	case PeriodYear:
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return Range{Start: start, End: now}, nil
	case PeriodCustom:
		if customStart.IsZero() || customEnd.IsZero() || customEnd.Before(customStart) {
			return Range{}, ErrInvalidRange
		}
		return Range{Start: customStart, End: customEnd}, nil
	}
	return Range{}, ErrInvalidRange
}

// PriorWindow returns the window of equal length immediately preceding r,
// used for growth-rate comparisons.
func PriorWindow(r Range) Range {
	length := r.End.Sub(r.Start)
	return Range{Start: r.Start.Add(-length), End: r.Start}
}

// ByRange keeps the records whose reference time falls within r
func ByRange(records []transaction.Record, r Range) []transaction.Record {
	filtered := make([]transaction.Record, 0, len(records))
	for _, record := range records {
		if r.Contains(record.ReferenceTime()) {
			filtered = append(filtered, record)
		}
	}
	return filtered
}
