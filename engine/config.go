/*
config.go - System defaults passed into the resolver

PURPOSE:
  Holds the fallback values the override chain bottoms out at when
  neither a day override nor its schedule specifies a field. These are
  explicit values handed to the Resolver, never ambient globals, so
  two resolvers with different defaults can coexist (e.g., per site).

OVERRIDE CHAIN:
  day override ?? schedule-level value ?? Defaults
  Resolved exactly once per field, in schedule.go. No other file
  null-coalesces schedule fields.

SEE ALSO:
  - schedule.go: The only consumer of Defaults
  - config/config.go: Loads these values from file/env at startup
*/
package engine

import "time"

// =============================================================================
// DEFAULTS - Explicit system-wide fallbacks
// =============================================================================

// Defaults are the system fallbacks for schedule fields. A zero
// Defaults is not usable; construct with NewDefaults or fill every
// field from configuration.
type Defaults struct {
	// ToleranceMinutes is the grace period before lateness counts,
	// used when a day override leaves tolerance unset.
	ToleranceMinutes int

	// RoundingMinutes is the grid punches snap to before comparison,
	// used when a day override leaves rounding unset or zero.
	RoundingMinutes int

	// LunchMinutes is the assumed lunch duration when a day override
	// leaves it unset and the session recorded no lunch punches.
	LunchMinutes int

	// Window is the legal day/night boundary pair.
	Window DayNightWindow

	// Location is the local calendar all clock times anchor to.
	Location *time.Location
}

// DayNightWindow is the pair of wall-clock boundaries separating the
// legal day window from the night window. The defaults (06:00/21:00)
// follow the labor regulation the premium calculator implements.
type DayNightWindow struct {
	DayStart   ClockTime // inclusive start of the day window
	NightStart ClockTime // inclusive start of the night window
}

// NewDefaults returns the standard system defaults: 5 minute
// tolerance, 1 minute rounding (no snapping), 60 minute lunch,
// 06:00-21:00 day window, local time.
func NewDefaults() Defaults {
	return Defaults{
		ToleranceMinutes: 5,
		RoundingMinutes:  1,
		LunchMinutes:     60,
		Window: DayNightWindow{
			DayStart:   NewClockTime(6, 0),
			NightStart: NewClockTime(21, 0),
		},
		Location: time.Local,
	}
}

func (d Defaults) location() *time.Location {
	if d.Location == nil {
		return time.Local
	}
	return d.Location
}
