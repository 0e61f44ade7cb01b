/*
errors.go - Centralized error types for the attendance engine

PURPOSE:
  All engine error types in one place for consistency and
  discoverability. Callers (API, recompute worker) should use the
  errors.Is helpers to classify failures.

ERROR CATEGORIES:
  1. Resolution errors - no schedule covers the date, bad configuration
  2. Data anomalies - punch sequences that violate the session machine
  3. Validation errors - malformed inputs (ranges, clock times)

ANOMALIES ARE NOT FAILURES:
  A missing exit punch or an out-of-order lunch punch never aborts the
  day's computation. The day is computed with non-authoritative fields
  zeroed and the anomaly surfaced on the DailyResult. Only a missing
  assignment or a broken schedule configuration is a hard error.

USAGE:
  if errors.Is(err, engine.ErrNoScheduleAssigned) {
      // configuration gap: exclude the day, tell the administrator
  }

SEE ALSO:
  - schedule.go: Returns ErrNoScheduleAssigned, ConfigurationError
  - session.go: Records InvalidSequenceError as anomalies
*/
package engine

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNoScheduleAssigned is returned when no assignment covers the
	// requested date. A configuration gap, not a crash: the caller
	// excludes the day and reports it.
	ErrNoScheduleAssigned = errors.New("no schedule assigned for date")

	// ErrInvalidPunchSequence is the base error for punch events that
	// violate the session state machine (lunch-end without lunch-start,
	// punches after exit, out-of-order timestamps).
	ErrInvalidPunchSequence = errors.New("invalid punch sequence")

	// ErrConfiguration is returned when a workable day override has no
	// usable entry/exit after inheritance. Requires administrative
	// correction; never silently defaulted.
	ErrConfiguration = errors.New("schedule configuration error")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrInvalidInterval is returned for a time interval whose end
	// precedes its start.
	ErrInvalidInterval = errors.New("invalid interval: end before start")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ConfigurationError describes a schedule definition the resolver
// cannot use for a workable day.
type ConfigurationError struct {
	ScheduleID ScheduleID
	Weekday    int // 1=Monday .. 7=Sunday
	Reason     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("schedule %s weekday %d: %s", e.ScheduleID, e.Weekday, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// InvalidSequenceError describes a punch event the session machine
// rejected. It is recorded as an anomaly on the session, not returned
// as a fatal error from the daily computation.
type InvalidSequenceError struct {
	Event string    // "entry", "lunch-start", "lunch-end", "exit"
	At    time.Time // timestamp of the offending punch
	State string    // session state when the event arrived
	Cause string
}

func (e *InvalidSequenceError) Error() string {
	return fmt.Sprintf("punch %s at %s rejected in state %s: %s",
		e.Event, e.At.Format("15:04"), e.State, e.Cause)
}

func (e *InvalidSequenceError) Unwrap() error { return ErrInvalidPunchSequence }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsConfigurationGap returns true if the error means an administrator
// must fix schedule data before the day can be computed.
func IsConfigurationGap(err error) bool {
	return errors.Is(err, ErrNoScheduleAssigned) ||
		errors.Is(err, ErrConfiguration)
}

// IsDataAnomaly returns true if the error stems from the punch data
// itself rather than the schedule configuration.
func IsDataAnomaly(err error) bool {
	return errors.Is(err, ErrInvalidPunchSequence)
}
