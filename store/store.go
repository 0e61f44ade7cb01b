/*
Package store defines the persistence interfaces and records the
attendance engine's collaborators read and write.

PURPOSE:
  The engine itself is pure; everything it consumes (punches, schedules,
  assignments, holidays, absences, corrections) and the premium cache it
  produces live behind these interfaces. Implementations: store/sqlite
  for production, store/memory for tests.

RECORDS VS ENGINE TYPES:
  Records are the stored shape: uuid IDs, timestamps, a JSON schedule
  definition. Each record knows how to convert itself into the engine
  type the pipeline consumes, so the conversion lives here once.

PREMIUM CACHE:
  The punch record carries the day's premium breakdown plus a computed
  flag. Approving a correction clears the flag; the recompute worker
  finds cleared rows, re-runs the pure pipeline and writes the fresh
  breakdown back. The pipeline is deterministic, so recomputation is
  always safe.

SEE ALSO:
  - store/sqlite: SQLite implementation (WAL, auto-migrate)
  - store/memory: In-memory implementation for tests
  - factory: Parses ScheduleRecord.DefinitionJSON into engine.Schedule
*/
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/warp/attendance-engine/engine"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// NewID returns a fresh record identifier.
func NewID() string {
	return uuid.NewString()
}

// =============================================================================
// RECORDS
// =============================================================================

// PunchRecord is the stored punch row for one employee and date, with
// the cached premium breakdown.
type PunchRecord struct {
	ID         string
	EmployeeID engine.EmployeeID
	Date       engine.WorkDate

	Entry      *time.Time
	Exit       *time.Time
	LunchStart *time.Time
	LunchEnd   *time.Time

	// Premium cache. Computed=false means the cache is stale (fresh
	// punches, or a correction was approved) and the recompute worker
	// should refresh it.
	DayOvertimeHours   engine.Hours
	NightOvertimeHours engine.Hours
	NightOrdinaryHours engine.Hours
	Computed           bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Card converts the record into the engine's raw punch input.
func (r PunchRecord) Card() engine.PunchCard {
	return engine.PunchCard{
		Entry:      r.Entry,
		Exit:       r.Exit,
		LunchStart: r.LunchStart,
		LunchEnd:   r.LunchEnd,
	}
}

// SetPremiums writes a breakdown into the cache and marks it computed.
func (r *PunchRecord) SetPremiums(p engine.PremiumBreakdown) {
	r.DayOvertimeHours = p.DayOvertimeHours
	r.NightOvertimeHours = p.NightOvertimeHours
	r.NightOrdinaryHours = p.NightOrdinaryHours
	r.Computed = true
}

// Premiums reads the cached breakdown back.
func (r PunchRecord) Premiums() engine.PremiumBreakdown {
	return engine.PremiumBreakdown{
		DayOvertimeHours:   r.DayOvertimeHours,
		NightOvertimeHours: r.NightOvertimeHours,
		NightOrdinaryHours: r.NightOrdinaryHours,
	}
}

// ScheduleRecord is a stored schedule. The weekly definition is JSON;
// the factory package parses it into an engine.Schedule.
type ScheduleRecord struct {
	ID                  engine.ScheduleID
	Name                string
	Active              bool
	SiteID              engine.SiteID
	CompensationAllowed bool
	DefinitionJSON      string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AssignmentRecord binds an employee to a schedule over a date range.
type AssignmentRecord struct {
	ID         string
	EmployeeID engine.EmployeeID
	ScheduleID engine.ScheduleID
	From       engine.WorkDate
	To         *engine.WorkDate
	CreatedAt  time.Time
}

// ToEngine converts the record into the resolver's input type.
func (r AssignmentRecord) ToEngine() engine.Assignment {
	return engine.Assignment{
		ID:         r.ID,
		EmployeeID: r.EmployeeID,
		ScheduleID: r.ScheduleID,
		From:       r.From,
		To:         r.To,
		CreatedAt:  r.CreatedAt,
	}
}

// HolidayRecord is a stored calendar holiday.
type HolidayRecord struct {
	ID       string
	Date     engine.WorkDate
	Name     string
	Workable bool

	CreatedAt time.Time
}

// ToEngine converts the record into the resolver's input type.
func (r HolidayRecord) ToEngine() engine.Holiday {
	return engine.Holiday{Date: r.Date, Name: r.Name, Workable: r.Workable}
}

// AbsenceRecord is a stored absence request.
type AbsenceRecord struct {
	ID         string
	EmployeeID engine.EmployeeID
	From       engine.WorkDate
	To         engine.WorkDate
	Type       string
	State      engine.ApprovalState

	CreatedAt time.Time
}

// ToEngine converts the record into the resolver's input type.
func (r AbsenceRecord) ToEngine() engine.Absence {
	return engine.Absence{
		ID:         r.ID,
		EmployeeID: r.EmployeeID,
		From:       r.From,
		To:         r.To,
		Type:       r.Type,
		State:      r.State,
	}
}

// CorrectionRecord is a stored punch correction request with its
// review trail.
type CorrectionRecord struct {
	ID            string
	EmployeeID    engine.EmployeeID
	Date          engine.WorkDate
	Kind          engine.PunchKind
	RequestedTime time.Time
	Reason        string
	State         engine.ApprovalState

	ReviewedBy string
	ReviewedAt *time.Time
	CreatedAt  time.Time
}

// ToEngine converts the record into the engine's correction type.
func (r CorrectionRecord) ToEngine() engine.Correction {
	return engine.Correction{
		ID:            r.ID,
		EmployeeID:    r.EmployeeID,
		Date:          r.Date,
		Kind:          r.Kind,
		RequestedTime: r.RequestedTime,
		State:         r.State,
		CreatedAt:     r.CreatedAt,
	}
}

// =============================================================================
// INTERFACES
// =============================================================================

// PunchStore persists punch records and their premium cache.
type PunchStore interface {
	// SavePunch inserts or updates the punch for the record's
	// employee+date. Any punch write marks the cache stale.
	SavePunch(ctx context.Context, r PunchRecord) error

	// GetPunch returns the punch for employee+date, or ErrNotFound.
	GetPunch(ctx context.Context, employeeID engine.EmployeeID, date engine.WorkDate) (*PunchRecord, error)

	// ListPunches returns punches for the employee within [from, to].
	ListPunches(ctx context.Context, employeeID engine.EmployeeID, from, to engine.WorkDate) ([]PunchRecord, error)

	// ListStale returns up to limit punches whose premium cache needs
	// recomputation.
	ListStale(ctx context.Context, limit int) ([]PunchRecord, error)

	// SavePremiums writes the premium cache for a punch and marks it
	// computed.
	SavePremiums(ctx context.Context, punchID string, p engine.PremiumBreakdown) error
}

// ScheduleStore persists schedules and assignments.
type ScheduleStore interface {
	SaveSchedule(ctx context.Context, r ScheduleRecord) error
	GetSchedule(ctx context.Context, id engine.ScheduleID) (*ScheduleRecord, error)
	ListSchedules(ctx context.Context) ([]ScheduleRecord, error)
	DeleteSchedule(ctx context.Context, id engine.ScheduleID) error

	SaveAssignment(ctx context.Context, r AssignmentRecord) error
	ListAssignments(ctx context.Context, employeeID engine.EmployeeID) ([]AssignmentRecord, error)
	DeleteAssignment(ctx context.Context, id string) error
}

// CalendarStore persists holidays and absences.
type CalendarStore interface {
	SaveHoliday(ctx context.Context, r HolidayRecord) error
	GetHoliday(ctx context.Context, date engine.WorkDate) (*HolidayRecord, error)
	ListHolidays(ctx context.Context, from, to engine.WorkDate) ([]HolidayRecord, error)
	DeleteHoliday(ctx context.Context, id string) error

	SaveAbsence(ctx context.Context, r AbsenceRecord) error
	ListAbsences(ctx context.Context, employeeID engine.EmployeeID, from, to engine.WorkDate) ([]AbsenceRecord, error)
}

// CorrectionStore persists punch corrections and their approval
// lifecycle.
type CorrectionStore interface {
	SaveCorrection(ctx context.Context, r CorrectionRecord) error
	GetCorrection(ctx context.Context, id string) (*CorrectionRecord, error)
	ListCorrections(ctx context.Context, employeeID engine.EmployeeID, date engine.WorkDate) ([]CorrectionRecord, error)
	ListPendingCorrections(ctx context.Context) ([]CorrectionRecord, error)

	// ApproveCorrection marks the correction approved and clears the
	// computed flag on the matching punch, atomically where the backend
	// supports it.
	ApproveCorrection(ctx context.Context, id, reviewedBy string) error

	// RejectCorrection marks the correction rejected. Punch caches are
	// untouched.
	RejectCorrection(ctx context.Context, id, reviewedBy string) error
}

// Store is the full persistence surface the server wires together.
type Store interface {
	PunchStore
	ScheduleStore
	CalendarStore
	CorrectionStore

	Close() error
}
