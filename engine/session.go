/*
session.go - Punch session state machine

PURPOSE:
  Assembles a day's raw punch data (entry, exit, embedded lunch
  start/end) into one coherent work session. The session is a guarded
  state machine, so inconsistent states - a lunch-end without a
  lunch-start, a lunch punch after the exit - are rejected as data
  anomalies instead of silently accepted.

STATES:
  no-entry -> awaiting-lunch -> lunch-in-progress -> lunch-completed -> has-exit

TRANSITIONS:
  entry:       no-entry -> awaiting-lunch
  lunch-start: awaiting-lunch -> lunch-in-progress
  lunch-end:   lunch-in-progress -> lunch-completed (start must precede end)
  exit:        any pre-exit state -> has-exit

ANOMALIES, NOT FAILURES:
  A rejected punch is recorded on the session and the day still
  computes; the lateness calculator zeroes whatever the anomaly makes
  non-authoritative. A missing exit leaves the session incomplete,
  which is a valid terminal condition (status "incomplete").

SEE ALSO:
  - errors.go: InvalidSequenceError recorded per rejected punch
  - lateness.go: Consumes the session output
*/
package engine

import (
	"context"
	"time"

	"github.com/looplab/fsm"
)

// =============================================================================
// PUNCH CARD - Raw input, one record per employee+date
// =============================================================================

// PunchCard is the raw punch data recorded for one employee and date:
// an entry/exit pair with optional embedded lunch timestamps. Any
// field may be nil when the punch never happened.
type PunchCard struct {
	Entry      *time.Time
	Exit       *time.Time
	LunchStart *time.Time
	LunchEnd   *time.Time
}

// =============================================================================
// SESSION - Validated output
// =============================================================================

// Session is the validated work session for a day. Fields rejected by
// the state machine are nil and the rejection is listed in Anomalies.
type Session struct {
	Entry      *time.Time
	Exit       *time.Time
	LunchStart *time.Time
	LunchEnd   *time.Time

	Anomalies []InvalidSequenceError
}

// Incomplete reports a session with an entry but no exit.
func (s Session) Incomplete() bool { return s.Entry != nil && s.Exit == nil }

// HasAnomalies reports whether any punch was rejected.
func (s Session) HasAnomalies() bool { return len(s.Anomalies) > 0 }

// LunchMinutes returns the actual lunch duration when both lunch
// punches exist, else the scheduled fallback.
func (s Session) LunchMinutes(scheduled int) int {
	if s.LunchStart != nil && s.LunchEnd != nil {
		return minutesBetween(*s.LunchStart, *s.LunchEnd)
	}
	return scheduled
}

// =============================================================================
// SESSION BUILDER - Guarded state machine over punch events
// =============================================================================

const (
	stateNoEntry         = "no-entry"
	stateAwaitingLunch   = "awaiting-lunch"
	stateLunchInProgress = "lunch-in-progress"
	stateLunchCompleted  = "lunch-completed"
	stateHasExit         = "has-exit"

	eventEntry      = "entry"
	eventLunchStart = "lunch-start"
	eventLunchEnd   = "lunch-end"
	eventExit       = "exit"
)

// SessionBuilder accumulates punch events into a Session. Events must
// be offered in recorded order; invalid transitions become anomalies.
type SessionBuilder struct {
	machine *fsm.FSM
	session Session
}

// NewSessionBuilder returns a builder in the no-entry state.
func NewSessionBuilder() *SessionBuilder {
	return &SessionBuilder{
		machine: fsm.NewFSM(
			stateNoEntry,
			fsm.Events{
				{Name: eventEntry, Src: []string{stateNoEntry}, Dst: stateAwaitingLunch},
				{Name: eventLunchStart, Src: []string{stateAwaitingLunch}, Dst: stateLunchInProgress},
				{Name: eventLunchEnd, Src: []string{stateLunchInProgress}, Dst: stateLunchCompleted},
				{Name: eventExit, Src: []string{
					stateAwaitingLunch, stateLunchInProgress, stateLunchCompleted,
				}, Dst: stateHasExit},
			},
			fsm.Callbacks{},
		),
	}
}

// State returns the current machine state.
func (b *SessionBuilder) State() string { return b.machine.Current() }

// Entry offers the entry punch.
func (b *SessionBuilder) Entry(t time.Time) error {
	if err := b.fire(eventEntry, t); err != nil {
		return err
	}
	b.session.Entry = &t
	return nil
}

// LunchStart offers the lunch-start punch. Rejected when a lunch is
// already recorded or no entry exists yet.
func (b *SessionBuilder) LunchStart(t time.Time) error {
	if b.session.Entry != nil && t.Before(*b.session.Entry) {
		return b.reject(eventLunchStart, t, "lunch-start precedes entry")
	}
	if err := b.fire(eventLunchStart, t); err != nil {
		return err
	}
	b.session.LunchStart = &t
	return nil
}

// LunchEnd offers the lunch-end punch. Rejected unless a lunch-start
// exists and precedes it.
func (b *SessionBuilder) LunchEnd(t time.Time) error {
	if b.session.LunchStart != nil && !b.session.LunchStart.Before(t) {
		return b.reject(eventLunchEnd, t, "lunch-end does not follow lunch-start")
	}
	if err := b.fire(eventLunchEnd, t); err != nil {
		return err
	}
	b.session.LunchEnd = &t
	return nil
}

// Exit offers the exit punch. Allowed from any pre-exit state with an
// entry recorded. An exit earlier than the entry is accepted but
// flagged; the calculator clamps the worked duration to zero.
func (b *SessionBuilder) Exit(t time.Time) error {
	if err := b.fire(eventExit, t); err != nil {
		return err
	}
	b.session.Exit = &t
	if b.session.Entry != nil && t.Before(*b.session.Entry) {
		b.session.Anomalies = append(b.session.Anomalies, InvalidSequenceError{
			Event: eventExit,
			At:    t,
			State: stateHasExit,
			Cause: "exit precedes entry (clock skew)",
		})
	}
	return nil
}

// Build returns the assembled session.
func (b *SessionBuilder) Build() Session { return b.session }

// fire runs one machine event, converting an invalid transition into
// a recorded anomaly.
func (b *SessionBuilder) fire(event string, at time.Time) error {
	state := b.machine.Current()
	if err := b.machine.Event(context.Background(), event); err != nil {
		return b.rejectInState(event, at, state, "transition not allowed")
	}
	return nil
}

func (b *SessionBuilder) reject(event string, at time.Time, cause string) error {
	return b.rejectInState(event, at, b.machine.Current(), cause)
}

func (b *SessionBuilder) rejectInState(event string, at time.Time, state, cause string) error {
	anomaly := InvalidSequenceError{Event: event, At: at, State: state, Cause: cause}
	b.session.Anomalies = append(b.session.Anomalies, anomaly)
	return &anomaly
}

// =============================================================================
// CONVENIENCE - Build a session straight from a punch card
// =============================================================================

// BuildSession replays a punch card through the state machine in
// chronological event order. Rejected punches stay out of the session
// and are reported as anomalies; the caller decides how the day's
// computation treats them.
func BuildSession(card PunchCard) Session {
	b := NewSessionBuilder()

	if card.Entry != nil {
		_ = b.Entry(*card.Entry)
	}
	if card.LunchStart != nil {
		_ = b.LunchStart(*card.LunchStart)
	}
	if card.LunchEnd != nil {
		_ = b.LunchEnd(*card.LunchEnd)
	}
	if card.Exit != nil {
		_ = b.Exit(*card.Exit)
	}

	return b.Build()
}
