package engine_test

import (
	"testing"
	"time"

	"github.com/warp/attendance-engine/engine"
)

// Note: shared helpers (resolveDay, standardInput, ct, at, tp) live in schedule_test.go

func premiumsFor(t *testing.T, in engine.ResolveInput, card engine.PunchCard) engine.PremiumBreakdown {
	t.Helper()
	day := resolveDay(t, in)
	return engine.ComputePremiums(day, engine.BuildSession(card))
}

func nightShiftInput() engine.ResolveInput {
	in := standardInput()
	schedule := in.Schedules["std"]
	for wd, d := range schedule.Days {
		d.Entry = ct(22, 0)
		d.Exit = ct(6, 0)
		d.LunchMinutes = intPtr(0)
		schedule.Days[wd] = d
	}
	in.Schedules["std"] = schedule
	return in
}

func TestPremiums_RegularDayShift_NoPremiums(t *testing.T) {
	// GIVEN: 08:00-17:00 worked exactly as scheduled, all inside the day window
	// WHEN: Computing premiums
	// THEN: Zero breakdown

	p := premiumsFor(t, standardInput(),
		engine.PunchCard{Entry: tp(monday(), 8, 0), Exit: tp(monday(), 17, 0)})

	if !p.IsZero() {
		t.Fatalf("expected zero breakdown, got %+v", p)
	}
}

func TestPremiums_DaytimeOvertime(t *testing.T) {
	// GIVEN: 08:00-19:00 against 480 expected minutes (60 min lunch)
	// WHEN: Computing premiums
	// THEN: 2 hours of day overtime, nothing at night

	p := premiumsFor(t, standardInput(),
		engine.PunchCard{Entry: tp(monday(), 8, 0), Exit: tp(monday(), 19, 0)})

	if p.DayOvertimeHours.String() != "2.00" {
		t.Errorf("expected 2.00 day overtime hours, got %s", p.DayOvertimeHours)
	}
	if !p.NightOvertimeHours.IsZero() || !p.NightOrdinaryHours.IsZero() {
		t.Errorf("expected no night premiums, got %+v", p)
	}
}

func TestPremiums_OvertimeRunsIntoNightWindow(t *testing.T) {
	// GIVEN: 08:00-23:00 with the 60 min scheduled lunch deducted:
	//        840 worked vs 480 expected, 360 overtime at the tail
	// WHEN: Computing premiums
	// THEN: The tail 17:00-23:00 splits into 4h day + 2h night overtime

	p := premiumsFor(t, standardInput(),
		engine.PunchCard{Entry: tp(monday(), 8, 0), Exit: tp(monday(), 23, 0)})

	if p.DayOvertimeHours.String() != "4.00" {
		t.Errorf("expected 4.00 day overtime hours, got %s", p.DayOvertimeHours)
	}
	if p.NightOvertimeHours.String() != "2.00" {
		t.Errorf("expected 2.00 night overtime hours, got %s", p.NightOvertimeHours)
	}
	if !p.NightOrdinaryHours.IsZero() {
		t.Errorf("expected no night ordinary hours, got %s", p.NightOrdinaryHours)
	}
}

func TestPremiums_NightShiftWithinExpected_AllNightOrdinary(t *testing.T) {
	// GIVEN: Night shift 22:00-06:00 worked exactly as scheduled
	// WHEN: Computing premiums
	// THEN: 8 night ordinary hours, no overtime

	card := engine.PunchCard{
		Entry: tp(monday(), 22, 0),
		Exit:  tp(monday().AddDays(1), 6, 0),
	}
	p := premiumsFor(t, nightShiftInput(), card)

	if p.NightOrdinaryHours.String() != "8.00" {
		t.Errorf("expected 8.00 night ordinary hours, got %s", p.NightOrdinaryHours)
	}
	if !p.DayOvertimeHours.IsZero() || !p.NightOvertimeHours.IsZero() {
		t.Errorf("expected no overtime, got %+v", p)
	}
}

func TestPremiums_NightShiftOvertime_StaysNight(t *testing.T) {
	// GIVEN: Night shift 22:00-06:00, worked 21:00-06:00 (entered an hour
	//        early, so an hour of overtime cut off the tail)
	// WHEN: Computing premiums
	// THEN: The overtime hour 05:00-06:00 is night overtime; the leading
	//       21:00-05:00 is night ordinary

	card := engine.PunchCard{
		Entry: tp(monday(), 21, 0),
		Exit:  tp(monday().AddDays(1), 6, 0),
	}
	p := premiumsFor(t, nightShiftInput(), card)

	if p.NightOvertimeHours.String() != "1.00" {
		t.Errorf("expected 1.00 night overtime hours, got %s", p.NightOvertimeHours)
	}
	if p.NightOrdinaryHours.String() != "8.00" {
		t.Errorf("expected 8.00 night ordinary hours, got %s", p.NightOrdinaryHours)
	}
}

func TestPremiums_PunchedLunchExcludedFromSpans(t *testing.T) {
	// GIVEN: Overtime evening with a punched lunch carved out:
	//        08:00-12:00, 13:00-19:00 worked, 480 expected
	// WHEN: Computing premiums
	// THEN: 600 worked, 120 overtime cut from the 17:00-19:00 tail, all day

	card := engine.PunchCard{
		Entry:      tp(monday(), 8, 0),
		LunchStart: tp(monday(), 12, 0),
		LunchEnd:   tp(monday(), 13, 0),
		Exit:       tp(monday(), 19, 0),
	}
	p := premiumsFor(t, standardInput(), card)

	if p.DayOvertimeHours.String() != "2.00" {
		t.Errorf("expected 2.00 day overtime hours, got %s", p.DayOvertimeHours)
	}
	if !p.NightOvertimeHours.IsZero() {
		t.Errorf("expected no night overtime, got %s", p.NightOvertimeHours)
	}
}

func TestPremiums_UnpunchedLunchNeverInflatesNightOrdinary(t *testing.T) {
	// GIVEN: Night shift 22:00-06:00 with a 60 minute scheduled lunch
	//        that was never punched (420 worked of 480 present)
	// WHEN: Computing premiums
	// THEN: Night ordinary hours cap at the 7 worked hours; the lunch
	//       deduction is not re-counted as night time

	in := nightShiftInput()
	schedule := in.Schedules["std"]
	for wd, d := range schedule.Days {
		d.LunchMinutes = intPtr(60)
		schedule.Days[wd] = d
	}
	in.Schedules["std"] = schedule

	card := engine.PunchCard{
		Entry: tp(monday(), 22, 0),
		Exit:  tp(monday().AddDays(1), 6, 0),
	}
	p := premiumsFor(t, in, card)

	if p.NightOrdinaryHours.String() != "7.00" {
		t.Errorf("expected 7.00 night ordinary hours, got %s", p.NightOrdinaryHours)
	}
	if !p.DayOvertimeHours.IsZero() || !p.NightOvertimeHours.IsZero() {
		t.Errorf("expected no overtime, got %+v", p)
	}
}

func TestPremiums_SiteCalendarGovernsClassification(t *testing.T) {
	// GIVEN: A Bogota site whose punches come back from storage as UTC
	//        instants: 14:00-20:00 local worked against 14:00-18:00
	//        expected, no lunch
	// WHEN: Computing premiums
	// THEN: The 2 overtime hours stay day overtime; the UTC wall clock
	//       (19:00-01:00) must not classify them as night work

	bogota, err := time.LoadLocation("America/Bogota")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	defaults := engine.NewDefaults()
	defaults.Location = bogota

	schedule := standardSchedule()
	for wd, d := range schedule.Days {
		d.Entry = ct(14, 0)
		d.Exit = ct(18, 0)
		d.LunchMinutes = intPtr(0)
		schedule.Days[wd] = d
	}

	rv := &engine.Resolver{Defaults: defaults}
	day, err := rv.Resolve(engine.ResolveInput{
		EmployeeID:  "emp-1",
		Date:        monday(),
		Assignments: []engine.Assignment{assignmentFor(schedule)},
		Schedules:   map[engine.ScheduleID]engine.Schedule{schedule.ID: schedule},
	})
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}

	entry := monday().At(engine.NewClockTime(14, 0), bogota).UTC()
	exit := monday().At(engine.NewClockTime(20, 0), bogota).UTC()
	p := engine.ComputePremiums(day, engine.BuildSession(engine.PunchCard{Entry: &entry, Exit: &exit}))

	if p.DayOvertimeHours.String() != "2.00" {
		t.Errorf("expected 2.00 day overtime hours, got %s", p.DayOvertimeHours)
	}
	if !p.NightOvertimeHours.IsZero() || !p.NightOrdinaryHours.IsZero() {
		t.Errorf("expected no night premiums, got %+v", p)
	}

	// The same instants represented in Bogota give the same breakdown.
	localEntry, localExit := entry.In(bogota), exit.In(bogota)
	local := engine.ComputePremiums(day, engine.BuildSession(engine.PunchCard{Entry: &localEntry, Exit: &localExit}))

	if !local.DayOvertimeHours.Equal(p.DayOvertimeHours) ||
		!local.NightOvertimeHours.Equal(p.NightOvertimeHours) ||
		!local.NightOrdinaryHours.Equal(p.NightOrdinaryHours) {
		t.Fatalf("breakdown depends on instant representation:\n%+v\nvs\n%+v", local, p)
	}
}

func TestPremiums_TotalIsSumOfCategories(t *testing.T) {
	// GIVEN: A breakdown with all three categories populated
	// WHEN: Summing
	// THEN: totalPremiumHours == day + night overtime + night ordinary

	p := premiumsFor(t, standardInput(),
		engine.PunchCard{Entry: tp(monday(), 8, 0), Exit: tp(monday(), 23, 0)})

	want := p.DayOvertimeHours.Add(p.NightOvertimeHours).Add(p.NightOrdinaryHours)
	if !p.TotalPremiumHours().Equal(want) {
		t.Fatalf("expected total %s, got %s", want, p.TotalPremiumHours())
	}
}

func TestPremiums_IncompleteSession_ZeroBreakdown(t *testing.T) {
	// GIVEN: A session with no exit
	// WHEN: Computing premiums
	// THEN: Zero breakdown

	p := premiumsFor(t, standardInput(), engine.PunchCard{Entry: tp(monday(), 8, 0)})

	if !p.IsZero() {
		t.Fatalf("expected zero breakdown for incomplete session, got %+v", p)
	}
}

func TestPremiums_ClockSkew_ZeroBreakdown(t *testing.T) {
	// GIVEN: Exit before entry
	// WHEN: Computing premiums
	// THEN: Zero breakdown, never negative buckets

	p := premiumsFor(t, standardInput(),
		engine.PunchCard{Entry: tp(monday(), 17, 0), Exit: tp(monday(), 8, 0)})

	if !p.IsZero() {
		t.Fatalf("expected zero breakdown under clock skew, got %+v", p)
	}
}

func TestPremiums_NonWorkingDay_ZeroBreakdown(t *testing.T) {
	// GIVEN: A non-workable holiday with punches anyway
	// WHEN: Computing premiums
	// THEN: Zero breakdown

	in := standardInput()
	in.Holiday = &engine.Holiday{Date: monday(), Name: "Carnival", Workable: false}

	p := premiumsFor(t, in,
		engine.PunchCard{Entry: tp(monday(), 8, 0), Exit: tp(monday(), 17, 0)})

	if !p.IsZero() {
		t.Fatalf("expected zero breakdown on a holiday, got %+v", p)
	}
}
