package engine

import "time"

// =============================================================================
// PERIOD - Date range for summary aggregation
// =============================================================================

// Period is an inclusive date range [Start, End]. Period summaries are
// always computed over a Period, typically a payroll month or week.
type Period struct {
	Start WorkDate
	End   WorkDate
}

// Validate rejects an inverted range.
func (p Period) Validate() error {
	if p.End.Before(p.Start) {
		return ErrInvalidPeriod
	}
	return nil
}

// Contains returns true if the date falls within [Start, End].
func (p Period) Contains(d WorkDate) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns every date in the period, in order.
func (p Period) Days() []WorkDate {
	var days []WorkDate
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// MonthPeriod returns the full calendar month containing the given
// year/month, the usual payroll period.
func MonthPeriod(year int, month time.Month) Period {
	first := NewWorkDate(year, month, 1)
	last := WorkDateOf(time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1))
	return Period{Start: first, End: last}
}

// WeekPeriod returns the Monday-to-Sunday week containing the date.
func WeekPeriod(d WorkDate) Period {
	start := d.AddDays(-(d.ISOWeekday() - 1))
	return Period{Start: start, End: start.AddDays(6)}
}
