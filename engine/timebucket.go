/*
timebucket.go - Day/night interval splitter

PURPOSE:
  Splits a time interval into the minutes that fall inside the legal
  day window (06:00-21:00 by default) and the minutes that fall inside
  the night window (21:00-06:00). The premium calculator uses these
  buckets to classify overtime and the night differential.

ALGORITHM:
  Walk the interval boundary by boundary. The boundaries are every
  local midnight plus the day-start and night-start crossings of each
  calendar day the interval touches. Each sub-interval lies entirely
  inside one bucket, so its full length accumulates there. Intervals
  spanning several midnights work the same way: the walk just visits
  more boundaries.

CONTRACT:
  For any ordered pair (start <= end):
    dayMinutes + nightMinutes == total whole minutes of the interval
  Wall-clock positions are evaluated in the caller's location, so
  instants stored in UTC classify against the site's calendar, not
  against whatever representation the storage layer handed back.
  Pure, total, no side effects. An inverted interval returns
  ErrInvalidInterval rather than negative buckets.

SEE ALSO:
  - premium.go: Classifies overtime/ordinary minutes using Split
*/
package engine

import "time"

// =============================================================================
// TIME-BUCKET SPLITTER
// =============================================================================

// Split partitions [start, end] into day-window and night-window
// minutes under this window definition. Wall clocks are read in loc;
// a nil loc falls back to time.Local.
func (w DayNightWindow) Split(start, end time.Time, loc *time.Location) (dayMinutes, nightMinutes int, err error) {
	if end.Before(start) {
		return 0, 0, ErrInvalidInterval
	}
	if loc == nil {
		loc = time.Local
	}

	cursor, stop := start.In(loc), end.In(loc)
	for cursor.Before(stop) {
		next := w.nextBoundary(cursor)
		if next.After(stop) {
			next = stop
		}

		minutes := minutesBetween(cursor, next)
		if w.inDayWindow(cursor) {
			dayMinutes += minutes
		} else {
			nightMinutes += minutes
		}
		cursor = next
	}

	return dayMinutes, nightMinutes, nil
}

// inDayWindow reports whether the instant falls inside the day window.
// The day window is [DayStart, NightStart) within a local calendar day.
func (w DayNightWindow) inDayWindow(t time.Time) bool {
	minute := ClockTime(t.Hour()*60 + t.Minute())
	return !minute.Before(w.DayStart) && minute.Before(w.NightStart)
}

// nextBoundary returns the earliest bucket boundary strictly after t:
// the next day-start, night-start, or local midnight.
func (w DayNightWindow) nextBoundary(t time.Time) time.Time {
	date := WorkDateOf(t)
	loc := t.Location()

	candidates := []time.Time{
		date.At(w.DayStart, loc),
		date.At(w.NightStart, loc),
		date.AddDays(1).Midnight(loc),
	}

	var next time.Time
	for _, c := range candidates {
		if !c.After(t) {
			continue
		}
		if next.IsZero() || c.Before(next) {
			next = c
		}
	}
	// Midnight of the following day is always after t, so next is set.
	return next
}
