/*
lateness.go - Lateness, overtime and compensation calculation

PURPOSE:
  Compares the validated session against the resolved expectations and
  produces the day's time figures: minutes late, minutes extra, worked
  vs expected hours, and the compensation outcome that offsets a day's
  lateness against the same day's overtime.

ROUNDING POLICY:
  Punches snap to the day's rounding grid before comparison. The entry
  rounds UP to the next grid line and the exit rounds DOWN to the
  previous one. A granularity of 1 leaves the minute values as-is.

COMPENSATION:
  Runs only when the day allows it and the employee was both late and
  over time. Lateness is paid down first from the overtime pool:

    compensated = minutesExtra >= minutesLate
    netLate     = max(0, minutesLate - minutesExtra)
    netExtra    = max(0, minutesExtra - minutesLate)

  Without compensation, net figures equal the gross figures.

EDGE CASES:
  Missing exit   => figures zeroed, day reported incomplete upstream.
  Exit < entry   => worked clamped to zero, NegativeDuration flagged.

SEE ALSO:
  - schedule.go: ResolvedDay with tolerance/rounding/lunch
  - reconcile.go: Folds TimeFigures into the DailyResult
*/
package engine

import "time"

// =============================================================================
// TIME FIGURES - Everything the day's comparison produced
// =============================================================================

// TimeFigures is the numeric outcome of comparing a session against
// the resolved expectations for one day.
type TimeFigures struct {
	// Rounded punch instants actually used for comparison. Nil when
	// the underlying punch is missing.
	RoundedEntry *time.Time
	RoundedExit  *time.Time

	MinutesLate  int
	MinutesExtra int

	WorkedMinutes   int
	ExpectedMinutes int
	LunchMinutes    int // actual lunch if punched, else scheduled

	// Compensation outcome.
	CompensationAllowed bool
	Compensated         bool
	NetLateMinutes      int
	NetExtraMinutes     int

	// EarlyDepartureMinutes is how much earlier than expected the
	// employee left. Zero when on time or over.
	EarlyDepartureMinutes int

	// NegativeDuration is set when the exit preceded the entry and the
	// worked time was clamped to zero.
	NegativeDuration bool
}

// HourDelta returns worked minus expected, in decimal hours.
func (f TimeFigures) HourDelta() Hours {
	return HoursFromMinutes(f.WorkedMinutes).Sub(HoursFromMinutes(f.ExpectedMinutes))
}

// WorkedHours returns the worked duration in decimal hours.
func (f TimeFigures) WorkedHours() Hours { return HoursFromMinutes(f.WorkedMinutes) }

// ExpectedHours returns the scheduled duration in decimal hours.
func (f TimeFigures) ExpectedHours() Hours { return HoursFromMinutes(f.ExpectedMinutes) }

// =============================================================================
// CALCULATION
// =============================================================================

// ComputeTimeFigures produces the day's time figures. For non-working,
// holiday and excused days every figure is zero. For an incomplete
// session (no exit) lateness is still computed from the entry, but
// worked time and overtime stay zero.
func ComputeTimeFigures(day ResolvedDay, session Session) TimeFigures {
	figures := TimeFigures{
		CompensationAllowed: day.CompensationAllowed,
		LunchMinutes:        session.LunchMinutes(day.LunchMinutes),
	}

	if !day.IsWorking() || day.ExpectedEntry == nil || day.ExpectedExit == nil {
		figures.LunchMinutes = 0
		return figures
	}

	figures.ExpectedMinutes = day.ExpectedMinutes()
	loc := day.location()

	if session.Entry != nil {
		rounded := roundUpToGrid(*session.Entry, day.RoundingMinutes, loc)
		figures.RoundedEntry = &rounded

		graceLimit := day.ExpectedEntry.Add(time.Duration(day.ToleranceMinutes) * time.Minute)
		if rounded.After(graceLimit) {
			figures.MinutesLate = minutesBetween(graceLimit, rounded)
		}
	}

	if session.Entry != nil && session.Exit != nil {
		rounded := roundDownToGrid(*session.Exit, day.RoundingMinutes, loc)
		figures.RoundedExit = &rounded

		if rounded.After(*day.ExpectedExit) {
			figures.MinutesExtra = minutesBetween(*day.ExpectedExit, rounded)
		}
		if rounded.Before(*day.ExpectedExit) {
			figures.EarlyDepartureMinutes = minutesBetween(rounded, *day.ExpectedExit)
		}

		if session.Exit.Before(*session.Entry) {
			// Clock skew: never emit a negative duration.
			figures.NegativeDuration = true
			figures.WorkedMinutes = 0
			figures.MinutesExtra = 0
		} else {
			worked := minutesBetween(*session.Entry, *session.Exit) - figures.LunchMinutes
			if worked < 0 {
				worked = 0
			}
			figures.WorkedMinutes = worked
		}
	}

	applyCompensation(&figures)
	return figures
}

// applyCompensation runs the lateness-vs-overtime offset.
func applyCompensation(f *TimeFigures) {
	f.NetLateMinutes = f.MinutesLate
	f.NetExtraMinutes = f.MinutesExtra

	if !f.CompensationAllowed || f.MinutesLate == 0 || f.MinutesExtra == 0 {
		return
	}

	f.Compensated = f.MinutesExtra >= f.MinutesLate
	f.NetLateMinutes = max(0, f.MinutesLate-f.MinutesExtra)
	f.NetExtraMinutes = max(0, f.MinutesExtra-f.MinutesLate)
}

// =============================================================================
// ROUNDING - Snap punches to the day's grid
// =============================================================================

// roundUpToGrid snaps t up to the next multiple of gran minutes from
// midnight in loc. The grid lives on the site's calendar, so a punch
// stored as a UTC instant still snaps to the local grid. Seconds are
// always discarded first.
func roundUpToGrid(t time.Time, gran int, loc *time.Location) time.Time {
	t = t.In(loc).Truncate(time.Minute)
	if gran <= 1 {
		return t
	}
	midnight := WorkDateOf(t).Midnight(loc)
	minutes := minutesBetween(midnight, t)
	if rem := minutes % gran; rem != 0 {
		minutes += gran - rem
	}
	return midnight.Add(time.Duration(minutes) * time.Minute)
}

// roundDownToGrid snaps t down to the previous multiple of gran
// minutes from midnight in loc.
func roundDownToGrid(t time.Time, gran int, loc *time.Location) time.Time {
	t = t.In(loc).Truncate(time.Minute)
	if gran <= 1 {
		return t
	}
	midnight := WorkDateOf(t).Midnight(loc)
	minutes := minutesBetween(midnight, t)
	minutes -= minutes % gran
	return midnight.Add(time.Duration(minutes) * time.Minute)
}
