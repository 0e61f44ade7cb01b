/*
Package engine provides the attendance time computation core.

PURPOSE:
  This package turns raw clock punches plus an effective work schedule
  into a reconciled daily attendance result, and folds daily results
  into period summaries. It computes lateness, overtime, night
  differential premiums and lateness/overtime compensation.

KEY CONCEPTS IN THIS FILE (types.go):
  - ClockTime: A minute-of-day wall clock value (e.g., 08:30)
  - WorkDate: A calendar date with no time component (ledger key)
  - Hours: A decimal hour quantity (avoids floating-point drift)
  - Employee/Schedule IDs: Type-safe identifiers

DESIGN PRINCIPLES:
  1. Purity: every computation is a function of its inputs, no clocks,
     no globals, no I/O. Identical inputs yield identical results.
  2. Precision: uses decimal.Decimal for hour quantities so payroll
     exports never accumulate float error.
  3. Type Safety: strong typing for IDs prevents mixing employee and
     schedule identifiers.
  4. Auditability: daily results carry every intermediate figure the
     computation used, so payroll can always explain an outcome.

USAGE:
  date := engine.NewWorkDate(2026, time.March, 9)
  entry := engine.NewClockTime(8, 0)
  at := date.At(entry, time.Local) // time.Time of 08:00 that day

SEE ALSO:
  - schedule.go: Schedule resolution and override inheritance
  - session.go: Punch session state machine
  - reconcile.go: Daily result assembly and period aggregation
*/
package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type ScheduleID string
type SiteID string

// =============================================================================
// CLOCK TIME - Wall clock minute-of-day (no date)
// =============================================================================

// ClockTime is a wall clock time expressed as minutes since local
// midnight, in [0, 1440). Schedules store expected entry/exit as
// ClockTime because they repeat every week regardless of date.
type ClockTime int

// NewClockTime builds a ClockTime from hour and minute.
func NewClockTime(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// ParseClockTime parses "15:04" into a ClockTime.
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return NewClockTime(t.Hour(), t.Minute()), nil
}

func (c ClockTime) Hour() int    { return int(c) / 60 }
func (c ClockTime) Minute() int  { return int(c) % 60 }
func (c ClockTime) Minutes() int { return int(c) }

func (c ClockTime) Before(o ClockTime) bool { return c < o }
func (c ClockTime) After(o ClockTime) bool  { return c > o }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// =============================================================================
// WORK DATE - Calendar date, the key every daily computation hangs off
// =============================================================================

// WorkDate is a calendar date with no time-of-day component.
type WorkDate struct {
	Year  int
	Month time.Month
	Day   int
}

func NewWorkDate(year int, month time.Month, day int) WorkDate {
	return WorkDate{Year: year, Month: month, Day: day}
}

// WorkDateOf extracts the calendar date of an instant in its location.
func WorkDateOf(t time.Time) WorkDate {
	return WorkDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseWorkDate parses "2006-01-02" into a WorkDate.
func ParseWorkDate(s string) (WorkDate, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return WorkDate{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return WorkDateOf(t), nil
}

// At anchors a ClockTime onto this date in the given location.
func (d WorkDate) At(c ClockTime, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, c.Hour(), c.Minute(), 0, 0, loc)
}

// Midnight returns the start of this date in the given location.
func (d WorkDate) Midnight(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d WorkDate) AddDays(n int) WorkDate {
	return WorkDateOf(d.Midnight(time.UTC).AddDate(0, 0, n))
}

func (d WorkDate) Weekday() time.Weekday {
	return d.Midnight(time.UTC).Weekday()
}

// ISOWeekday returns the weekday numbered 1=Monday .. 7=Sunday, the
// numbering schedules use for day overrides.
func (d WorkDate) ISOWeekday() int {
	wd := int(d.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func (d WorkDate) Before(o WorkDate) bool {
	return d.Midnight(time.UTC).Before(o.Midnight(time.UTC))
}

func (d WorkDate) After(o WorkDate) bool {
	return d.Midnight(time.UTC).After(o.Midnight(time.UTC))
}

func (d WorkDate) Equal(o WorkDate) bool { return d == o }

func (d WorkDate) BeforeOrEqual(o WorkDate) bool { return !d.After(o) }
func (d WorkDate) AfterOrEqual(o WorkDate) bool  { return !d.Before(o) }

func (d WorkDate) IsZero() bool { return d == WorkDate{} }

func (d WorkDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// =============================================================================
// HOURS - Decimal hour quantity
// =============================================================================

// Hours is an hour quantity backed by decimal.Decimal. Premium and
// worked-hour figures feed payroll, so they must not drift the way
// float64 sums do.
type Hours struct {
	Value decimal.Decimal
}

var sixty = decimal.NewFromInt(60)

// HoursFromMinutes converts whole minutes into decimal hours.
func HoursFromMinutes(minutes int) Hours {
	return Hours{Value: decimal.NewFromInt(int64(minutes)).Div(sixty)}
}

func HoursFromFloat(h float64) Hours {
	return Hours{Value: decimal.NewFromFloat(h)}
}

func ZeroHours() Hours { return Hours{Value: decimal.Zero} }

func (h Hours) Add(o Hours) Hours    { return Hours{Value: h.Value.Add(o.Value)} }
func (h Hours) Sub(o Hours) Hours    { return Hours{Value: h.Value.Sub(o.Value)} }
func (h Hours) Neg() Hours           { return Hours{Value: h.Value.Neg()} }
func (h Hours) IsZero() bool         { return h.Value.IsZero() }
func (h Hours) IsNegative() bool     { return h.Value.IsNegative() }
func (h Hours) IsPositive() bool     { return h.Value.IsPositive() }
func (h Hours) Equal(o Hours) bool   { return h.Value.Equal(o.Value) }
func (h Hours) Float64() float64     { f, _ := h.Value.Float64(); return f }
func (h Hours) String() string       { return h.Value.StringFixed(2) }

// =============================================================================
// INTERVAL HELPERS
// =============================================================================

// minutesBetween returns whole minutes from a to b, truncated.
// Callers guarantee b is not before a.
func minutesBetween(a, b time.Time) int {
	return int(b.Sub(a) / time.Minute)
}
