/*
reconcile.go - Daily result assembly and period aggregation

PURPOSE:
  The two entry points collaborators call:

    ComputeDailyAttendance(input) -> DailyResult
    AggregatePeriod(results)      -> PeriodSummary

  ComputeDailyAttendance wires the whole pipeline for one employee and
  date: resolve the effective schedule, apply approved corrections,
  build the punch session, compute lateness/overtime/compensation and
  the legal premium breakdown, and classify the day with a status and
  a human-readable message.

DETERMINISM:
  Both functions are pure: no clocks, no I/O, no shared state. The
  caller supplies every input from a single consistent snapshot, so
  identical inputs always produce bit-identical results. That is what
  makes cached results and payroll audit trails trustworthy.

STATUS CODES:
  punctual | late-compensated | late-uncompensated | justified-absence
  | holiday | rest-day | incomplete

FAILURE MODES:
  - No covering assignment  => ErrNoScheduleAssigned (configuration gap)
  - Broken schedule config  => ConfigurationError
  - Missing exit            => status "incomplete", never an error
  - Punch sequence anomaly  => flagged on the result, day still computed

SEE ALSO:
  - schedule.go, session.go, lateness.go, premium.go: The pipeline stages
*/
package engine

import (
	"fmt"
	"time"
)

// =============================================================================
// STATUS
// =============================================================================

// Status classifies a day's attendance outcome.
type Status string

const (
	StatusPunctual          Status = "punctual"
	StatusLateCompensated   Status = "late-compensated"
	StatusLateUncompensated Status = "late-uncompensated"
	StatusJustifiedAbsence  Status = "justified-absence"
	StatusHoliday           Status = "holiday"
	StatusRestDay           Status = "rest-day"
	StatusIncomplete        Status = "incomplete"
)

// =============================================================================
// DAILY RESULT
// =============================================================================

// DailyResult is the reconciled attendance outcome for one employee
// and date. Ephemeral: computed on demand, optionally cached by the
// storage layer.
type DailyResult struct {
	EmployeeID EmployeeID
	Date       WorkDate
	Weekday    int // 1=Monday .. 7=Sunday

	Status  Status
	Message string

	ExpectedEntry *time.Time
	ExpectedExit  *time.Time
	ActualEntry   *time.Time
	ActualExit    *time.Time

	MinutesLate  int
	MinutesExtra int

	WorkedHours   Hours
	ExpectedHours Hours
	HourDelta     Hours

	CompensationAllowed bool
	Compensated         bool
	NetLateMinutes      int
	NetExtraMinutes     int

	EarlyDepartureMinutes int
	LunchMinutes          int // actual lunch taken (or scheduled fallback)
	ScheduleLunchMinutes  int

	Premiums PremiumBreakdown

	// Anomalies lists punch-sequence and clock-skew problems found
	// while computing the day. Non-empty anomalies mean some figures
	// were zeroed rather than guessed.
	Anomalies []string
}

// =============================================================================
// DAILY INPUT - The consistent snapshot the caller assembled
// =============================================================================

// DailyInput carries everything ComputeDailyAttendance needs. The
// persistence layer reads all of it from one snapshot; the engine
// performs no I/O of its own.
type DailyInput struct {
	EmployeeID EmployeeID
	Date       WorkDate

	Card        PunchCard
	Assignments []Assignment
	Schedules   map[ScheduleID]Schedule
	Holiday     *Holiday
	Absences    []Absence
	Corrections []Correction

	Defaults Defaults
}

// =============================================================================
// COMPUTE DAILY ATTENDANCE
// =============================================================================

// ComputeDailyAttendance runs the full daily pipeline. It returns
// ErrNoScheduleAssigned or a ConfigurationError when the schedule data
// cannot support the computation; punch-data problems never error.
func ComputeDailyAttendance(in DailyInput) (DailyResult, error) {
	resolver := &Resolver{Defaults: in.Defaults}
	day, err := resolver.Resolve(ResolveInput{
		EmployeeID:  in.EmployeeID,
		Date:        in.Date,
		Assignments: in.Assignments,
		Schedules:   in.Schedules,
		Holiday:     in.Holiday,
		Absences:    in.Absences,
	})
	if err != nil {
		return DailyResult{}, err
	}

	card := ApplyCorrections(in.Card, in.Date, in.Corrections)
	session := BuildSession(card)

	figures := ComputeTimeFigures(day, session)
	premiums := ComputePremiums(day, session)

	result := DailyResult{
		EmployeeID: in.EmployeeID,
		Date:       in.Date,
		Weekday:    in.Date.ISOWeekday(),

		ExpectedEntry: day.ExpectedEntry,
		ExpectedExit:  day.ExpectedExit,
		ActualEntry:   figures.RoundedEntry,
		ActualExit:    figures.RoundedExit,

		MinutesLate:  figures.MinutesLate,
		MinutesExtra: figures.MinutesExtra,

		WorkedHours:   figures.WorkedHours(),
		ExpectedHours: figures.ExpectedHours(),
		HourDelta:     figures.HourDelta(),

		CompensationAllowed: figures.CompensationAllowed,
		Compensated:         figures.Compensated,
		NetLateMinutes:      figures.NetLateMinutes,
		NetExtraMinutes:     figures.NetExtraMinutes,

		EarlyDepartureMinutes: figures.EarlyDepartureMinutes,
		LunchMinutes:          figures.LunchMinutes,
		ScheduleLunchMinutes:  day.LunchMinutes,

		Premiums: premiums,
	}

	for _, a := range session.Anomalies {
		result.Anomalies = append(result.Anomalies, a.Error())
	}
	if figures.NegativeDuration {
		result.Anomalies = append(result.Anomalies, "exit precedes entry: worked time clamped to zero")
	}

	result.Status, result.Message = classify(day, session, figures)
	return result, nil
}

// classify picks the status code and builds the human-readable message.
func classify(day ResolvedDay, session Session, f TimeFigures) (Status, string) {
	switch day.Class {
	case DayExcused:
		return StatusJustifiedAbsence,
			fmt.Sprintf("justified absence (%s), no expectations for %s", day.AbsenceType, day.Date)
	case DayHoliday:
		return StatusHoliday,
			fmt.Sprintf("holiday %q, non-working day", day.HolidayName)
	case DayNonWorking:
		return StatusRestDay, "scheduled rest day"
	}

	if session.Entry == nil || session.Exit == nil {
		return StatusIncomplete, "incomplete session: missing punch, day excluded from lateness/overtime totals"
	}

	switch {
	case f.MinutesLate == 0:
		return StatusPunctual,
			fmt.Sprintf("punctual: worked %s of %s expected hours", f.WorkedHours(), f.ExpectedHours())
	case f.Compensated:
		return StatusLateCompensated,
			fmt.Sprintf("%d min late compensated by %d min extra (net extra %d min)",
				f.MinutesLate, f.MinutesExtra, f.NetExtraMinutes)
	default:
		return StatusLateUncompensated,
			fmt.Sprintf("%d min late, %d min uncompensated", f.MinutesLate, f.NetLateMinutes)
	}
}

// =============================================================================
// PERIOD SUMMARY
// =============================================================================

// PeriodSummary is the fold of many daily results over a period.
type PeriodSummary struct {
	Days int

	JustifiedAbsences         int
	LateUncompensatedCount    int
	LateUncompensatedMinutes  int
	LateCompensatedCount      int
	EarlyDepartures           int
	ExtendedBreaks            int
	IncompleteDays            int

	// SurplusHours is the total net extra time across the period.
	SurplusHours Hours
}

// AggregatePeriod folds daily results into a period summary. Incomplete
// days never contribute to lateness or surplus totals; they are counted
// separately.
func AggregatePeriod(results []DailyResult) PeriodSummary {
	summary := PeriodSummary{SurplusHours: ZeroHours()}

	for _, r := range results {
		summary.Days++

		switch r.Status {
		case StatusJustifiedAbsence:
			summary.JustifiedAbsences++
			continue
		case StatusIncomplete:
			summary.IncompleteDays++
			continue
		case StatusHoliday, StatusRestDay:
			continue
		case StatusLateCompensated:
			summary.LateCompensatedCount++
		case StatusLateUncompensated:
			summary.LateUncompensatedCount++
			summary.LateUncompensatedMinutes += r.NetLateMinutes
		}

		if r.EarlyDepartureMinutes > 0 {
			summary.EarlyDepartures++
		}
		if r.ScheduleLunchMinutes > 0 && r.LunchMinutes > r.ScheduleLunchMinutes {
			summary.ExtendedBreaks++
		}
		summary.SurplusHours = summary.SurplusHours.Add(HoursFromMinutes(r.NetExtraMinutes))
	}

	return summary
}
