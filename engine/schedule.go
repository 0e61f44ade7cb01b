/*
schedule.go - Schedule model and effective-day resolution

PURPOSE:
  An employee's expectations for a date come from a layered model:
  an Assignment binds the employee to a Schedule over a date range,
  the Schedule carries one DayOverride per weekday, and fields the
  override leaves unset inherit from the schedule or from the system
  Defaults. Holidays and approved absences then override the result.
  This file resolves all of that into one ResolvedDay.

RESOLUTION ORDER (Resolve):
  1. Find the assignment covering the date. None => ErrNoScheduleAssigned.
     Overlapping assignments: most recently created wins.
  2. Day override for the weekday. Missing or not workable => non-working.
  3. Inheritance: tolerance, rounding, lunch, compensation resolved
     through override ?? schedule ?? Defaults - exactly once, here.
  4. Holiday: workable=false forces non-working; workable=true keeps
     the weekday resolution.
  5. Approved absence covering the date => excused, expectations cleared.
  6. Approved corrections substitute punch times (ApplyCorrections).

CONFIGURATION ERRORS:
  A workable override with no usable entry/exit after inheritance is a
  ConfigurationError. It is never silently defaulted; administrators
  must fix the schedule.

NIGHT SHIFTS:
  An expected exit at or before the expected entry means the shift
  crosses midnight; the resolved exit instant lands on the next day.

SEE ALSO:
  - config.go: Defaults the inheritance chain bottoms out at
  - reconcile.go: Invokes Resolve as step one of the daily pipeline
*/
package engine

import (
	"sort"
	"time"
)

// =============================================================================
// SCHEDULE - Named weekly expectation set
// =============================================================================

// Schedule is a named work schedule owning one DayOverride per weekday.
type Schedule struct {
	ID     ScheduleID
	Name   string
	Active bool
	SiteID SiteID

	// CompensationAllowed is the schedule-level flag day overrides
	// inherit when they leave compensation unset.
	CompensationAllowed bool

	// Days is keyed by ISO weekday, 1=Monday .. 7=Sunday. At most one
	// override per weekday.
	Days map[int]DayOverride
}

// DayOverride is the per-weekday expectation row of a schedule.
type DayOverride struct {
	Weekday  int // 1=Monday .. 7=Sunday
	Workable bool

	// Expected entry/exit wall times. Nil on non-working days.
	Entry *ClockTime
	Exit  *ClockTime

	// ToleranceMinutes nil => inherit the system default.
	ToleranceMinutes *int

	// RoundingMinutes <= 0 => inherit the system default.
	RoundingMinutes int

	// LunchMinutes nil => inherit the system default. An explicit zero
	// means the day has no scheduled lunch.
	LunchMinutes *int

	// CompensationAllowed nil => inherit the schedule-level flag.
	CompensationAllowed *bool
}

// =============================================================================
// ASSIGNMENT - Date-ranged binding of employee to schedule
// =============================================================================

// Assignment binds an employee to a schedule over [From, To]. A nil
// To means open-ended. Ranges for one employee should not overlap;
// when they do, Resolve picks the most recently created assignment.
type Assignment struct {
	ID         string
	EmployeeID EmployeeID
	ScheduleID ScheduleID
	From       WorkDate
	To         *WorkDate
	CreatedAt  time.Time
}

// Covers returns true if the assignment range contains the date.
func (a Assignment) Covers(d WorkDate) bool {
	if d.Before(a.From) {
		return false
	}
	if a.To != nil && d.After(*a.To) {
		return false
	}
	return true
}

// =============================================================================
// CALENDAR EXCEPTIONS - Holidays, absences, corrections
// =============================================================================

// Holiday marks a calendar date. Workable=true is a holiday that is
// still a normal workday (expectations stand).
type Holiday struct {
	Date     WorkDate
	Name     string
	Workable bool
}

// ApprovalState is the lifecycle of absences and corrections. Only
// approved records influence the engine.
type ApprovalState string

const (
	ApprovalPending  ApprovalState = "pending"
	ApprovalApproved ApprovalState = "approved"
	ApprovalRejected ApprovalState = "rejected"
)

// Absence is an employee absence over [From, To]. Only approved
// absences suppress attendance expectations.
type Absence struct {
	ID         string
	EmployeeID EmployeeID
	From       WorkDate
	To         WorkDate
	Type       string // e.g. "medical", "personal", "vacation"
	State      ApprovalState
}

// Covers returns true if the absence range contains the date.
func (a Absence) Covers(d WorkDate) bool {
	return d.AfterOrEqual(a.From) && d.BeforeOrEqual(a.To)
}

// PunchKind identifies which recorded time a correction replaces.
type PunchKind string

const (
	PunchEntry PunchKind = "entry"
	PunchExit  PunchKind = "exit"
)

// Correction is an administrative override of a punch time. Once
// approved it replaces the real punch time for that employee+date+kind.
type Correction struct {
	ID            string
	EmployeeID    EmployeeID
	Date          WorkDate
	Kind          PunchKind
	RequestedTime time.Time
	State         ApprovalState
	CreatedAt     time.Time
}

// =============================================================================
// RESOLVED DAY - Output of resolution
// =============================================================================

// DayClassification says what kind of day resolution produced.
type DayClassification string

const (
	DayWorking    DayClassification = "working"
	DayNonWorking DayClassification = "non_working"
	DayHoliday    DayClassification = "holiday"
	DayExcused    DayClassification = "excused"
)

// ResolvedDay carries the effective expectations for one employee+date.
// Expected instants are concrete times on the date (exit lands on the
// next day for shifts crossing midnight).
type ResolvedDay struct {
	Date       WorkDate
	ScheduleID ScheduleID
	Class      DayClassification

	// AbsenceType is set when Class == DayExcused.
	AbsenceType string

	// HolidayName is set when a holiday influenced resolution.
	HolidayName string

	// Expectations. Nil for non-working, holiday and excused days.
	ExpectedEntry *time.Time
	ExpectedExit  *time.Time

	ToleranceMinutes    int
	RoundingMinutes     int
	LunchMinutes        int
	CompensationAllowed bool

	Window   DayNightWindow
	Location *time.Location
}

// IsWorking reports whether lateness/overtime apply to this day.
func (r ResolvedDay) IsWorking() bool { return r.Class == DayWorking }

func (r ResolvedDay) location() *time.Location {
	if r.Location == nil {
		return time.Local
	}
	return r.Location
}

// ExpectedMinutes returns the scheduled net working minutes:
// exit - entry - scheduled lunch. Zero for non-working days.
func (r ResolvedDay) ExpectedMinutes() int {
	if r.ExpectedEntry == nil || r.ExpectedExit == nil {
		return 0
	}
	m := minutesBetween(*r.ExpectedEntry, *r.ExpectedExit) - r.LunchMinutes
	if m < 0 {
		return 0
	}
	return m
}

// =============================================================================
// RESOLVER
// =============================================================================

// ResolveInput is the consistent snapshot Resolve works from. The
// caller reads all of it from one storage view; the resolver never
// performs I/O.
type ResolveInput struct {
	EmployeeID  EmployeeID
	Date        WorkDate
	Assignments []Assignment
	Schedules   map[ScheduleID]Schedule
	Holiday     *Holiday
	Absences    []Absence
}

// Resolver resolves effective expectations. Defaults is the explicit
// bottom of the inheritance chain; there is no ambient fallback.
type Resolver struct {
	Defaults Defaults
}

// Resolve computes the ResolvedDay for the input snapshot.
func (rv *Resolver) Resolve(in ResolveInput) (ResolvedDay, error) {
	loc := rv.Defaults.location()

	assignment, ok := rv.coveringAssignment(in.Assignments, in.Date)
	if !ok {
		return ResolvedDay{}, ErrNoScheduleAssigned
	}

	schedule, ok := in.Schedules[assignment.ScheduleID]
	if !ok {
		return ResolvedDay{}, &ConfigurationError{
			ScheduleID: assignment.ScheduleID,
			Weekday:    in.Date.ISOWeekday(),
			Reason:     "assignment references unknown schedule",
		}
	}

	day := ResolvedDay{
		Date:       in.Date,
		ScheduleID: schedule.ID,
		Window:     rv.Defaults.Window,
		Location:   loc,
	}

	override, workable := rv.dayOverride(schedule, in.Date.ISOWeekday())
	if workable {
		if err := rv.applyOverride(&day, schedule, override); err != nil {
			return ResolvedDay{}, err
		}
		day.Class = DayWorking
	} else {
		day.Class = DayNonWorking
	}

	// Holiday: a non-workable holiday wins over the weekday override.
	// A workable holiday keeps the resolution (holiday-worked premium
	// pay is not modeled; no output field exists for it).
	if in.Holiday != nil {
		day.HolidayName = in.Holiday.Name
		if !in.Holiday.Workable {
			day.Class = DayHoliday
			day.ExpectedEntry = nil
			day.ExpectedExit = nil
		}
	}

	// Approved absence: expectations cleared, day excused.
	for _, absence := range in.Absences {
		if absence.State != ApprovalApproved || !absence.Covers(in.Date) {
			continue
		}
		day.Class = DayExcused
		day.AbsenceType = absence.Type
		day.ExpectedEntry = nil
		day.ExpectedExit = nil
		break
	}

	return day, nil
}

// coveringAssignment finds the assignment whose range contains the
// date. Overlap tie-break: most recently created wins.
func (rv *Resolver) coveringAssignment(assignments []Assignment, date WorkDate) (Assignment, bool) {
	var candidates []Assignment
	for _, a := range assignments {
		if a.Covers(date) {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) == 0 {
		return Assignment{}, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})
	return candidates[0], true
}

func (rv *Resolver) dayOverride(schedule Schedule, weekday int) (DayOverride, bool) {
	override, ok := schedule.Days[weekday]
	if !ok || !override.Workable {
		return DayOverride{}, false
	}
	return override, true
}

// applyOverride fills expectations from a workable override, running
// the inheritance chain for every nullable field.
func (rv *Resolver) applyOverride(day *ResolvedDay, schedule Schedule, override DayOverride) error {
	if override.Entry == nil || override.Exit == nil {
		return &ConfigurationError{
			ScheduleID: schedule.ID,
			Weekday:    override.Weekday,
			Reason:     "workable day has no expected entry/exit",
		}
	}

	loc := day.Location
	entry := day.Date.At(*override.Entry, loc)
	exit := day.Date.At(*override.Exit, loc)
	if !exit.After(entry) {
		// Shift crosses midnight; exit is on the following day.
		exit = exit.AddDate(0, 0, 1)
	}
	day.ExpectedEntry = &entry
	day.ExpectedExit = &exit

	day.ToleranceMinutes = rv.Defaults.ToleranceMinutes
	if override.ToleranceMinutes != nil {
		day.ToleranceMinutes = *override.ToleranceMinutes
	}

	day.RoundingMinutes = override.RoundingMinutes
	if day.RoundingMinutes <= 0 {
		day.RoundingMinutes = rv.Defaults.RoundingMinutes
	}

	day.LunchMinutes = rv.Defaults.LunchMinutes
	if override.LunchMinutes != nil {
		day.LunchMinutes = *override.LunchMinutes
	}

	day.CompensationAllowed = schedule.CompensationAllowed
	if override.CompensationAllowed != nil {
		day.CompensationAllowed = *override.CompensationAllowed
	}

	return nil
}

// =============================================================================
// CORRECTIONS - Approved overrides of recorded punch times
// =============================================================================

// ApplyCorrections substitutes approved correction times into the
// punch card for the given date. The original card is not mutated.
// When several approved corrections target the same punch, the most
// recently created wins.
func ApplyCorrections(card PunchCard, date WorkDate, corrections []Correction) PunchCard {
	out := card
	var entryFix, exitFix *Correction

	for i := range corrections {
		c := &corrections[i]
		if c.State != ApprovalApproved || !c.Date.Equal(date) {
			continue
		}
		switch c.Kind {
		case PunchEntry:
			if entryFix == nil || c.CreatedAt.After(entryFix.CreatedAt) {
				entryFix = c
			}
		case PunchExit:
			if exitFix == nil || c.CreatedAt.After(exitFix.CreatedAt) {
				exitFix = c
			}
		}
	}

	if entryFix != nil {
		t := entryFix.RequestedTime
		out.Entry = &t
	}
	if exitFix != nil {
		t := exitFix.RequestedTime
		out.Exit = &t
	}
	return out
}
