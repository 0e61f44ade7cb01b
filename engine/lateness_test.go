package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/engine"
)

// Note: shared helpers (resolveDay, standardInput, at, tp) live in schedule_test.go

func figuresFor(t *testing.T, card engine.PunchCard) engine.TimeFigures {
	t.Helper()
	day := resolveDay(t, standardInput())
	return engine.ComputeTimeFigures(day, engine.BuildSession(card))
}

func TestTimeFigures_WithinTolerance_NotLate(t *testing.T) {
	// GIVEN: Expected 08:00 with 5 minute tolerance; entry 08:03, exit 17:00
	// WHEN: Computing figures
	// THEN: Zero lateness, full expected hours worked

	f := figuresFor(t, engine.PunchCard{Entry: tp(monday(), 8, 3), Exit: tp(monday(), 17, 0)})

	assert.Equal(t, 0, f.MinutesLate)
	assert.Equal(t, 0, f.MinutesExtra)
	assert.Equal(t, 477, f.WorkedMinutes) // 8:03-17:00 minus 60 lunch
	assert.Equal(t, 480, f.ExpectedMinutes)
}

func TestTimeFigures_LatenessCountsFromGraceLimit(t *testing.T) {
	// GIVEN: Entry 08:20 against expected 08:00 with 5 minute tolerance
	// WHEN: Computing figures
	// THEN: 15 minutes late, measured past the grace limit

	f := figuresFor(t, engine.PunchCard{Entry: tp(monday(), 8, 20), Exit: tp(monday(), 17, 0)})

	assert.Equal(t, 15, f.MinutesLate)
}

func TestTimeFigures_CompensationOffsetsLateness(t *testing.T) {
	// GIVEN: Entry 08:20 (15 late), exit 18:00 (60 extra), compensation allowed
	// WHEN: Computing figures
	// THEN: compensated=true, netLate=0, netExtra=45

	f := figuresFor(t, engine.PunchCard{Entry: tp(monday(), 8, 20), Exit: tp(monday(), 18, 0)})

	require.Equal(t, 15, f.MinutesLate)
	require.Equal(t, 60, f.MinutesExtra)
	assert.True(t, f.Compensated)
	assert.Equal(t, 0, f.NetLateMinutes)
	assert.Equal(t, 45, f.NetExtraMinutes)
}

func TestTimeFigures_CompensationDisallowed_GrossEqualsNet(t *testing.T) {
	// GIVEN: Same punches, but the day disallows compensation
	// WHEN: Computing figures
	// THEN: netLate=15, netExtra=60, not compensated

	in := standardInput()
	schedule := in.Schedules["std"]
	schedule.CompensationAllowed = false
	in.Schedules["std"] = schedule

	day := resolveDay(t, in)
	card := engine.PunchCard{Entry: tp(monday(), 8, 20), Exit: tp(monday(), 18, 0)}
	f := engine.ComputeTimeFigures(day, engine.BuildSession(card))

	assert.False(t, f.Compensated)
	assert.Equal(t, 15, f.NetLateMinutes)
	assert.Equal(t, 60, f.NetExtraMinutes)
}

func TestTimeFigures_InsufficientOvertime_PartialOffset(t *testing.T) {
	// GIVEN: 20 minutes late but only 10 minutes extra, compensation allowed
	// WHEN: Computing figures
	// THEN: Not compensated, netLate=10, netExtra=0; never negative

	f := figuresFor(t, engine.PunchCard{Entry: tp(monday(), 8, 25), Exit: tp(monday(), 17, 10)})

	require.Equal(t, 20, f.MinutesLate)
	require.Equal(t, 10, f.MinutesExtra)
	assert.False(t, f.Compensated)
	assert.Equal(t, 10, f.NetLateMinutes)
	assert.Equal(t, 0, f.NetExtraMinutes)
	assert.GreaterOrEqual(t, f.NetLateMinutes, 0)
	assert.GreaterOrEqual(t, f.NetExtraMinutes, 0)
}

func TestTimeFigures_RoundingGrid_EntryUpExitDown(t *testing.T) {
	// GIVEN: A 15 minute rounding grid; entry 08:07, exit 16:58
	// WHEN: Computing figures
	// THEN: Entry snaps up to 08:15 (10 late past grace), exit snaps
	//       down to 16:45 (15 early)

	in := standardInput()
	schedule := in.Schedules["std"]
	override := schedule.Days[1]
	override.RoundingMinutes = 15
	schedule.Days[1] = override
	in.Schedules["std"] = schedule

	day := resolveDay(t, in)
	card := engine.PunchCard{Entry: tp(monday(), 8, 7), Exit: tp(monday(), 16, 58)}
	f := engine.ComputeTimeFigures(day, engine.BuildSession(card))

	require.NotNil(t, f.RoundedEntry)
	require.NotNil(t, f.RoundedExit)
	assert.Equal(t, at(monday(), 8, 15), *f.RoundedEntry)
	assert.Equal(t, at(monday(), 16, 45), *f.RoundedExit)
	assert.Equal(t, 10, f.MinutesLate)
	assert.Equal(t, 15, f.EarlyDepartureMinutes)
}

func TestTimeFigures_RoundingGridAnchorsToSiteCalendar(t *testing.T) {
	// GIVEN: A Kathmandu site (UTC+05:45) with a 30 minute grid and an
	//        entry at 08:07 local stored as a UTC instant
	// WHEN: Computing figures
	// THEN: The entry snaps up on the local grid to 08:30 (25 late past
	//       grace), not on the UTC grid to 08:15

	kathmandu, err := time.LoadLocation("Asia/Kathmandu")
	require.NoError(t, err)

	in := standardInput()
	schedule := in.Schedules["std"]
	override := schedule.Days[1]
	override.RoundingMinutes = 30
	schedule.Days[1] = override
	in.Schedules["std"] = schedule

	defaults := engine.NewDefaults()
	defaults.Location = kathmandu
	rv := &engine.Resolver{Defaults: defaults}
	day, err := rv.Resolve(in)
	require.NoError(t, err)

	entry := monday().At(engine.NewClockTime(8, 7), kathmandu).UTC()
	exit := monday().At(engine.NewClockTime(17, 0), kathmandu).UTC()
	f := engine.ComputeTimeFigures(day, engine.BuildSession(engine.PunchCard{Entry: &entry, Exit: &exit}))

	want := monday().At(engine.NewClockTime(8, 30), kathmandu)
	require.NotNil(t, f.RoundedEntry)
	assert.True(t, f.RoundedEntry.Equal(want), "rounded entry %v, want %v", f.RoundedEntry, want)
	assert.Equal(t, 25, f.MinutesLate)
}

func TestTimeFigures_EarlyDeparture(t *testing.T) {
	// GIVEN: Exit 16:30 against expected 17:00
	// WHEN: Computing figures
	// THEN: 30 early-departure minutes, negative hour delta

	f := figuresFor(t, engine.PunchCard{Entry: tp(monday(), 8, 0), Exit: tp(monday(), 16, 30)})

	assert.Equal(t, 30, f.EarlyDepartureMinutes)
	assert.True(t, f.HourDelta().IsNegative())
}

func TestTimeFigures_PunchedLunchReplacesScheduled(t *testing.T) {
	// GIVEN: A 90 minute punched lunch against a 60 minute scheduled one
	// WHEN: Computing figures
	// THEN: The actual lunch is deducted from worked time

	f := figuresFor(t, engine.PunchCard{
		Entry:      tp(monday(), 8, 0),
		LunchStart: tp(monday(), 12, 0),
		LunchEnd:   tp(monday(), 13, 30),
		Exit:       tp(monday(), 17, 0),
	})

	assert.Equal(t, 90, f.LunchMinutes)
	assert.Equal(t, 450, f.WorkedMinutes)
	assert.Equal(t, "7.50", f.WorkedHours().String())
}

func TestTimeFigures_MissingExit_NoWorkedTime(t *testing.T) {
	// GIVEN: Only an entry punch
	// WHEN: Computing figures
	// THEN: Lateness still computed from the entry; worked/extra stay zero

	f := figuresFor(t, engine.PunchCard{Entry: tp(monday(), 8, 20)})

	assert.Equal(t, 15, f.MinutesLate)
	assert.Equal(t, 0, f.MinutesExtra)
	assert.Equal(t, 0, f.WorkedMinutes)
	assert.Nil(t, f.RoundedExit)
}

func TestTimeFigures_ExitBeforeEntry_ClampedToZero(t *testing.T) {
	// GIVEN: Clock skew: exit precedes entry
	// WHEN: Computing figures
	// THEN: Worked and extra clamped to zero, NegativeDuration flagged

	f := figuresFor(t, engine.PunchCard{Entry: tp(monday(), 17, 0), Exit: tp(monday(), 8, 0)})

	assert.True(t, f.NegativeDuration)
	assert.Equal(t, 0, f.WorkedMinutes)
	assert.Equal(t, 0, f.MinutesExtra)
	assert.False(t, f.WorkedHours().IsNegative())
}

func TestTimeFigures_NonWorkingDay_AllZero(t *testing.T) {
	// GIVEN: A non-workable holiday with punches present anyway
	// WHEN: Computing figures
	// THEN: Every figure is zero

	in := standardInput()
	in.Holiday = &engine.Holiday{Date: monday(), Name: "Carnival", Workable: false}

	day := resolveDay(t, in)
	card := engine.PunchCard{Entry: tp(monday(), 8, 0), Exit: tp(monday(), 17, 0)}
	f := engine.ComputeTimeFigures(day, engine.BuildSession(card))

	assert.Equal(t, 0, f.MinutesLate)
	assert.Equal(t, 0, f.MinutesExtra)
	assert.Equal(t, 0, f.WorkedMinutes)
	assert.Equal(t, 0, f.ExpectedMinutes)
	assert.True(t, f.HourDelta().IsZero())
}
