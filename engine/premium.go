/*
premium.go - Legal premium (night differential / overtime) calculation

PURPOSE:
  Labor law pays different rates for daytime overtime, night overtime
  and ordinary hours worked at night. This file splits a day's worked
  interval into those three categories.

CLASSIFICATION:
  1. The worked spans (entry->exit, minus the punched lunch) are the
     raw material.
  2. Minutes beyond the day's expected minutes are overtime. Overtime
     is the TAIL of the worked spans - the employee earns it at the
     end of the shift.
  3. Overtime minutes inside the night window (21:00-06:00) become
     night overtime; the rest become day overtime.
  4. Ordinary (non-overtime) minutes inside the night window become
     the night ordinary differential.

  totalPremiumHours = dayOvertime + nightOvertime + nightOrdinary
  is derived, never stored independently.

CACHING:
  The breakdown is cached on the punch record with a computed flag.
  The calculation is deterministic, so recomputation after an approved
  correction always overwrites the cache consistently.

SEE ALSO:
  - timebucket.go: The day/night splitter doing the window math
  - reconcile.go: Attaches the breakdown to the DailyResult
*/
package engine

import "time"

// =============================================================================
// PREMIUM BREAKDOWN
// =============================================================================

// PremiumBreakdown is the legal premium classification for one day.
type PremiumBreakdown struct {
	DayOvertimeHours   Hours
	NightOvertimeHours Hours
	NightOrdinaryHours Hours
}

// TotalPremiumHours returns the sum of all premium categories.
func (p PremiumBreakdown) TotalPremiumHours() Hours {
	return p.DayOvertimeHours.Add(p.NightOvertimeHours).Add(p.NightOrdinaryHours)
}

// IsZero reports an all-zero breakdown.
func (p PremiumBreakdown) IsZero() bool {
	return p.DayOvertimeHours.IsZero() &&
		p.NightOvertimeHours.IsZero() &&
		p.NightOrdinaryHours.IsZero()
}

// =============================================================================
// CALCULATION
// =============================================================================

// ComputePremiums classifies the session's worked time into premium
// categories. Non-working days, incomplete sessions and clock-skewed
// sessions produce a zero breakdown.
func ComputePremiums(day ResolvedDay, session Session) PremiumBreakdown {
	var out PremiumBreakdown

	if !day.IsWorking() || session.Entry == nil || session.Exit == nil {
		return zeroPremiums()
	}
	if session.Exit.Before(*session.Entry) {
		// Clock skew: worked time is clamped to zero upstream, so no
		// premiums either.
		return zeroPremiums()
	}

	spans := workedSpans(session)
	if len(spans) == 0 {
		return zeroPremiums()
	}

	lunch := session.LunchMinutes(day.LunchMinutes)
	worked := minutesBetween(*session.Entry, *session.Exit) - lunch
	if worked < 0 {
		worked = 0
	}
	overtime := max(0, worked-day.ExpectedMinutes())

	ordinary, extra := splitTail(spans, overtime)

	loc := day.location()
	var dayOT, nightOT, nightOrd int
	for _, s := range extra {
		d, n, err := day.Window.Split(s.start, s.end, loc)
		if err != nil {
			continue
		}
		dayOT += d
		nightOT += n
	}
	for _, s := range ordinary {
		_, n, err := day.Window.Split(s.start, s.end, loc)
		if err != nil {
			continue
		}
		nightOrd += n
	}

	// A scheduled-but-unpunched lunch is deducted from worked time but
	// has no position to carve out of the spans, so the ordinary bucket
	// caps at the worked ordinary minutes.
	if limit := worked - overtime; nightOrd > limit {
		nightOrd = limit
	}

	out.DayOvertimeHours = HoursFromMinutes(dayOT)
	out.NightOvertimeHours = HoursFromMinutes(nightOT)
	out.NightOrdinaryHours = HoursFromMinutes(nightOrd)
	return out
}

func zeroPremiums() PremiumBreakdown {
	return PremiumBreakdown{
		DayOvertimeHours:   ZeroHours(),
		NightOvertimeHours: ZeroHours(),
		NightOrdinaryHours: ZeroHours(),
	}
}

// =============================================================================
// SPAN HELPERS
// =============================================================================

type span struct {
	start, end time.Time
}

func (s span) minutes() int { return minutesBetween(s.start, s.end) }

// workedSpans returns the session's worked intervals: entry to exit,
// with the punched lunch carved out when it lies inside the interval.
// A scheduled-but-unpunched lunch is a pure duration deduction and has
// no position to carve out.
func workedSpans(s Session) []span {
	entry, exit := *s.Entry, *s.Exit

	if s.LunchStart != nil && s.LunchEnd != nil &&
		s.LunchStart.After(entry) && s.LunchEnd.Before(exit) &&
		s.LunchStart.Before(*s.LunchEnd) {
		return []span{
			{start: entry, end: *s.LunchStart},
			{start: *s.LunchEnd, end: exit},
		}
	}
	return []span{{start: entry, end: exit}}
}

// splitTail cuts the last tailMinutes off the spans. Returns the
// leading (ordinary) and trailing (overtime) span lists.
func splitTail(spans []span, tailMinutes int) (leading, trailing []span) {
	if tailMinutes <= 0 {
		return spans, nil
	}

	remaining := tailMinutes
	for i := len(spans) - 1; i >= 0; i-- {
		s := spans[i]
		if remaining <= 0 {
			leading = append([]span{s}, leading...)
			continue
		}
		length := s.minutes()
		if length <= remaining {
			trailing = append([]span{s}, trailing...)
			remaining -= length
			continue
		}
		cut := s.end.Add(-time.Duration(remaining) * time.Minute)
		leading = append([]span{{start: s.start, end: cut}}, leading...)
		trailing = append([]span{{start: cut, end: s.end}}, trailing...)
		remaining = 0
	}
	return leading, trailing
}
