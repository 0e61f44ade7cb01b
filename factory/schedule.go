/*
Package factory provides JSON to Go schedule conversion.

PURPOSE:
  Converts JSON schedule definitions into engine.Schedule objects. This
  enables schedule configuration without code changes - HR can define
  weekly schedules in JSON, and the factory creates the proper Go
  structs the resolver consumes.

WHY JSON?
  - Non-developers can modify schedules
  - Easy integration with admin UI
  - Version control for schedule definitions
  - Database storage of schedule configs

JSON SCHEMA (the definition column of a schedule row):
  {
    "days": [
      {
        "weekday": 1,
        "workable": true,
        "entry": "08:00",
        "exit": "17:00",
        "lunch_minutes": 60,
        "tolerance_minutes": 10,
        "rounding_minutes": 15,
        "compensation_allowed": false
      }
    ]
  }

KEY FEATURES:
  - Validates weekday range and uniqueness
  - Parses "15:04" wall times into ClockTime
  - Leaves unset fields nil/zero so the resolver inherits them
  - Round-trips back to JSON for the admin API

USAGE:
  f := factory.NewScheduleFactory()
  schedule, err := f.FromRecord(record)

SEE ALSO:
  - engine/schedule.go: Schedule and DayOverride definitions
  - store/store.go: ScheduleRecord carrying the definition column
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/warp/attendance-engine/engine"
	"github.com/warp/attendance-engine/store"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// DefinitionJSON is the JSON representation of a schedule's weekly
// definition. Identity fields (id, name, site) live on the schedule
// row itself, not in the definition.
type DefinitionJSON struct {
	Days []DayJSON `json:"days"`
}

// DayJSON represents one weekday row of a schedule definition.
type DayJSON struct {
	Weekday  int    `json:"weekday"` // 1=Monday .. 7=Sunday
	Workable bool   `json:"workable"`
	Entry    string `json:"entry,omitempty"` // "15:04", required when workable
	Exit     string `json:"exit,omitempty"`

	// Omitted => inherit: tolerance and lunch from system defaults,
	// compensation from the schedule-level flag. rounding_minutes <= 0
	// inherits too. An explicit "lunch_minutes": 0 means no lunch.
	ToleranceMinutes    *int  `json:"tolerance_minutes,omitempty"`
	RoundingMinutes     int   `json:"rounding_minutes,omitempty"`
	LunchMinutes        *int  `json:"lunch_minutes,omitempty"`
	CompensationAllowed *bool `json:"compensation_allowed,omitempty"`
}

// =============================================================================
// SCHEDULE FACTORY
// =============================================================================

// ScheduleFactory converts JSON schedule definitions to engine structs.
type ScheduleFactory struct{}

// NewScheduleFactory creates a new schedule factory.
func NewScheduleFactory() *ScheduleFactory {
	return &ScheduleFactory{}
}

// FromRecord converts a stored schedule row into an engine.Schedule.
func (f *ScheduleFactory) FromRecord(rec store.ScheduleRecord) (engine.Schedule, error) {
	var def DefinitionJSON
	if rec.DefinitionJSON != "" {
		if err := json.Unmarshal([]byte(rec.DefinitionJSON), &def); err != nil {
			return engine.Schedule{}, fmt.Errorf("failed to parse schedule definition for %q: %w", rec.ID, err)
		}
	}

	schedule := engine.Schedule{
		ID:                  rec.ID,
		Name:                rec.Name,
		Active:              rec.Active,
		SiteID:              engine.SiteID(rec.SiteID),
		CompensationAllowed: rec.CompensationAllowed,
		Days:                make(map[int]engine.DayOverride, len(def.Days)),
	}

	for _, dj := range def.Days {
		override, err := parseDay(dj)
		if err != nil {
			return engine.Schedule{}, fmt.Errorf("schedule %q: %w", rec.ID, err)
		}
		if _, dup := schedule.Days[override.Weekday]; dup {
			return engine.Schedule{}, fmt.Errorf("schedule %q: duplicate weekday %d", rec.ID, override.Weekday)
		}
		schedule.Days[override.Weekday] = override
	}

	return schedule, nil
}

// ToDefinitionJSON serializes a schedule's weekly definition for
// storage. Inverse of the Days portion of FromRecord.
func (f *ScheduleFactory) ToDefinitionJSON(schedule engine.Schedule) (string, error) {
	def := DefinitionJSON{Days: make([]DayJSON, 0, len(schedule.Days))}

	for weekday := 1; weekday <= 7; weekday++ {
		override, ok := schedule.Days[weekday]
		if !ok {
			continue
		}
		dj := DayJSON{
			Weekday:             override.Weekday,
			Workable:            override.Workable,
			ToleranceMinutes:    override.ToleranceMinutes,
			RoundingMinutes:     override.RoundingMinutes,
			LunchMinutes:        override.LunchMinutes,
			CompensationAllowed: override.CompensationAllowed,
		}
		if override.Entry != nil {
			dj.Entry = override.Entry.String()
		}
		if override.Exit != nil {
			dj.Exit = override.Exit.String()
		}
		def.Days = append(def.Days, dj)
	}

	raw, err := json.Marshal(def)
	if err != nil {
		return "", fmt.Errorf("failed to serialize schedule definition: %w", err)
	}
	return string(raw), nil
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseDay(dj DayJSON) (engine.DayOverride, error) {
	if dj.Weekday < 1 || dj.Weekday > 7 {
		return engine.DayOverride{}, fmt.Errorf("weekday %d out of range 1-7", dj.Weekday)
	}
	if dj.LunchMinutes != nil && *dj.LunchMinutes < 0 {
		return engine.DayOverride{}, fmt.Errorf("weekday %d: negative lunch_minutes", dj.Weekday)
	}

	override := engine.DayOverride{
		Weekday:             dj.Weekday,
		Workable:            dj.Workable,
		ToleranceMinutes:    dj.ToleranceMinutes,
		RoundingMinutes:     dj.RoundingMinutes,
		LunchMinutes:        dj.LunchMinutes,
		CompensationAllowed: dj.CompensationAllowed,
	}

	if !dj.Workable {
		return override, nil
	}

	if dj.Entry == "" || dj.Exit == "" {
		return engine.DayOverride{}, fmt.Errorf("weekday %d: workable day requires entry and exit", dj.Weekday)
	}
	entry, err := engine.ParseClockTime(dj.Entry)
	if err != nil {
		return engine.DayOverride{}, fmt.Errorf("weekday %d: %w", dj.Weekday, err)
	}
	exit, err := engine.ParseClockTime(dj.Exit)
	if err != nil {
		return engine.DayOverride{}, fmt.Errorf("weekday %d: %w", dj.Weekday, err)
	}
	override.Entry = &entry
	override.Exit = &exit

	return override, nil
}

// =============================================================================
// PRESET DEFINITIONS
// =============================================================================

// StandardOfficeJSON is a Monday-Friday 08:00-17:00 definition with a
// one hour lunch, useful for seeding and tests.
func StandardOfficeJSON() string {
	return `{
		"days": [
			{"weekday": 1, "workable": true, "entry": "08:00", "exit": "17:00", "lunch_minutes": 60},
			{"weekday": 2, "workable": true, "entry": "08:00", "exit": "17:00", "lunch_minutes": 60},
			{"weekday": 3, "workable": true, "entry": "08:00", "exit": "17:00", "lunch_minutes": 60},
			{"weekday": 4, "workable": true, "entry": "08:00", "exit": "17:00", "lunch_minutes": 60},
			{"weekday": 5, "workable": true, "entry": "08:00", "exit": "17:00", "lunch_minutes": 60}
		]
	}`
}

// NightShiftJSON is a Monday-Friday 22:00-06:00 definition. The
// explicit zero lunch keeps the system default from being inherited;
// the exit lands on the following day.
func NightShiftJSON() string {
	return `{
		"days": [
			{"weekday": 1, "workable": true, "entry": "22:00", "exit": "06:00", "lunch_minutes": 0},
			{"weekday": 2, "workable": true, "entry": "22:00", "exit": "06:00", "lunch_minutes": 0},
			{"weekday": 3, "workable": true, "entry": "22:00", "exit": "06:00", "lunch_minutes": 0},
			{"weekday": 4, "workable": true, "entry": "22:00", "exit": "06:00", "lunch_minutes": 0},
			{"weekday": 5, "workable": true, "entry": "22:00", "exit": "06:00", "lunch_minutes": 0}
		]
	}`
}
