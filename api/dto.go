/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

FORMATS:
  - Dates:      "2006-01-02"
  - Instants:   RFC3339
  - Wall times: "15:04" (inside schedule definitions)
  - Hours:      decimal strings with two places ("8.00")

VALIDATION:
  Request types carry go-playground/validator struct tags; handlers run
  the shared validator before touching storage.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/schedule.go: DefinitionJSON embedded in schedule payloads
*/
package api

import (
	"time"

	"github.com/warp/attendance-engine/engine"
	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/store"
)

// =============================================================================
// PUNCHES
// =============================================================================

// PunchRequest records one punch event for an employee.
type PunchRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Kind       string `json:"kind" validate:"required,oneof=entry exit lunch_start lunch_end"`

	// At defaults to the server's current time when omitted.
	At string `json:"at,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`

	// Date is the attendance date the punch belongs to. Defaults to the
	// calendar date of At; night shift exits after midnight must set it
	// explicitly to the shift's date.
	Date string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// PunchDTO represents a stored punch row in API responses.
type PunchDTO struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employee_id"`
	Date       string  `json:"date"`
	Entry      *string `json:"entry,omitempty"`
	Exit       *string `json:"exit,omitempty"`
	LunchStart *string `json:"lunch_start,omitempty"`
	LunchEnd   *string `json:"lunch_end,omitempty"`

	DayOvertimeHours   string `json:"day_overtime_hours"`
	NightOvertimeHours string `json:"night_overtime_hours"`
	NightOrdinaryHours string `json:"night_ordinary_hours"`
	Computed           bool   `json:"computed"`
}

// =============================================================================
// ATTENDANCE RESULTS
// =============================================================================

// DailyResultDTO is the reconciled attendance outcome for one date.
type DailyResultDTO struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Weekday    int    `json:"weekday"`
	Status     string `json:"status"`
	Message    string `json:"message"`

	ExpectedEntry *string `json:"expected_entry,omitempty"`
	ExpectedExit  *string `json:"expected_exit,omitempty"`
	ActualEntry   *string `json:"actual_entry,omitempty"`
	ActualExit    *string `json:"actual_exit,omitempty"`

	MinutesLate  int `json:"minutes_late"`
	MinutesExtra int `json:"minutes_extra"`

	WorkedHours   string `json:"worked_hours"`
	ExpectedHours string `json:"expected_hours"`
	HourDelta     string `json:"hour_delta"`

	CompensationAllowed bool `json:"compensation_allowed"`
	Compensated         bool `json:"compensated"`
	NetLateMinutes      int  `json:"net_late_minutes"`
	NetExtraMinutes     int  `json:"net_extra_minutes"`

	EarlyDepartureMinutes int `json:"early_departure_minutes"`
	LunchMinutes          int `json:"lunch_minutes"`

	Premiums PremiumDTO `json:"premiums"`

	Anomalies []string `json:"anomalies,omitempty"`
}

// PremiumDTO is the legal premium breakdown for one day.
type PremiumDTO struct {
	DayOvertimeHours   string `json:"day_overtime_hours"`
	NightOvertimeHours string `json:"night_overtime_hours"`
	NightOrdinaryHours string `json:"night_ordinary_hours"`
	TotalPremiumHours  string `json:"total_premium_hours"`
}

// PeriodSummaryDTO is the fold of daily results over a date range.
type PeriodSummaryDTO struct {
	EmployeeID string `json:"employee_id"`
	From       string `json:"from"`
	To         string `json:"to"`

	Days                     int `json:"days"`
	JustifiedAbsences        int `json:"justified_absences"`
	LateUncompensatedCount   int `json:"late_uncompensated_count"`
	LateUncompensatedMinutes int `json:"late_uncompensated_minutes"`
	LateCompensatedCount     int `json:"late_compensated_count"`
	EarlyDepartures          int `json:"early_departures"`
	ExtendedBreaks           int `json:"extended_breaks"`
	IncompleteDays           int `json:"incomplete_days"`

	SurplusHours string `json:"surplus_hours"`

	Results []DailyResultDTO `json:"results"`
}

// =============================================================================
// SCHEDULES AND ASSIGNMENTS
// =============================================================================

// ScheduleDTO represents a schedule in API responses.
type ScheduleDTO struct {
	ID                  string                 `json:"id"`
	Name                string                 `json:"name"`
	Active              bool                   `json:"active"`
	SiteID              string                 `json:"site_id,omitempty"`
	CompensationAllowed bool                   `json:"compensation_allowed"`
	Definition          factory.DefinitionJSON `json:"definition"`
	CreatedAt           string                 `json:"created_at,omitempty"`
}

// CreateScheduleRequest creates or replaces a schedule.
type CreateScheduleRequest struct {
	ID                  string                 `json:"id" validate:"required"`
	Name                string                 `json:"name" validate:"required"`
	Active              bool                   `json:"active"`
	SiteID              string                 `json:"site_id"`
	CompensationAllowed bool                   `json:"compensation_allowed"`
	Definition          factory.DefinitionJSON `json:"definition"`
}

// AssignmentDTO represents a schedule assignment.
type AssignmentDTO struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employee_id"`
	ScheduleID string  `json:"schedule_id"`
	From       string  `json:"from"`
	To         *string `json:"to,omitempty"`
	CreatedAt  string  `json:"created_at,omitempty"`
}

// CreateAssignmentRequest binds an employee to a schedule.
type CreateAssignmentRequest struct {
	EmployeeID string  `json:"employee_id" validate:"required"`
	ScheduleID string  `json:"schedule_id" validate:"required"`
	From       string  `json:"from" validate:"required,datetime=2006-01-02"`
	To         *string `json:"to,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// =============================================================================
// CALENDAR
// =============================================================================

// HolidayDTO represents a calendar holiday.
type HolidayDTO struct {
	ID       string `json:"id"`
	Date     string `json:"date"`
	Name     string `json:"name"`
	Workable bool   `json:"workable"`
}

// CreateHolidayRequest declares a holiday.
type CreateHolidayRequest struct {
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Name     string `json:"name" validate:"required"`
	Workable bool   `json:"workable"`
}

// AbsenceDTO represents an absence record.
type AbsenceDTO struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	From       string `json:"from"`
	To         string `json:"to"`
	Type       string `json:"type"`
	State      string `json:"state"`
}

// CreateAbsenceRequest registers an absence. State defaults to pending;
// administrators may create pre-approved absences directly.
type CreateAbsenceRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	From       string `json:"from" validate:"required,datetime=2006-01-02"`
	To         string `json:"to" validate:"required,datetime=2006-01-02"`
	Type       string `json:"type" validate:"required"`
	State      string `json:"state,omitempty" validate:"omitempty,oneof=pending approved rejected"`
}

// =============================================================================
// CORRECTIONS
// =============================================================================

// CorrectionDTO represents a punch correction request.
type CorrectionDTO struct {
	ID            string  `json:"id"`
	EmployeeID    string  `json:"employee_id"`
	Date          string  `json:"date"`
	Kind          string  `json:"kind"`
	RequestedTime string  `json:"requested_time"`
	Reason        string  `json:"reason,omitempty"`
	State         string  `json:"state"`
	ReviewedBy    string  `json:"reviewed_by,omitempty"`
	ReviewedAt    *string `json:"reviewed_at,omitempty"`
	CreatedAt     string  `json:"created_at,omitempty"`
}

// CreateCorrectionRequest submits a punch correction for review.
type CreateCorrectionRequest struct {
	EmployeeID    string `json:"employee_id" validate:"required"`
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	Kind          string `json:"kind" validate:"required,oneof=entry exit"`
	RequestedTime string `json:"requested_time" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Reason        string `json:"reason"`
}

// ReviewRequest approves or rejects a correction.
type ReviewRequest struct {
	ReviewedBy string `json:"reviewed_by" validate:"required"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func rfc3339Ptr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func punchDTO(r store.PunchRecord) PunchDTO {
	return PunchDTO{
		ID:         r.ID,
		EmployeeID: string(r.EmployeeID),
		Date:       r.Date.String(),
		Entry:      rfc3339Ptr(r.Entry),
		Exit:       rfc3339Ptr(r.Exit),
		LunchStart: rfc3339Ptr(r.LunchStart),
		LunchEnd:   rfc3339Ptr(r.LunchEnd),

		DayOvertimeHours:   r.DayOvertimeHours.String(),
		NightOvertimeHours: r.NightOvertimeHours.String(),
		NightOrdinaryHours: r.NightOrdinaryHours.String(),
		Computed:           r.Computed,
	}
}

func dailyResultDTO(r engine.DailyResult) DailyResultDTO {
	return DailyResultDTO{
		EmployeeID: string(r.EmployeeID),
		Date:       r.Date.String(),
		Weekday:    r.Weekday,
		Status:     string(r.Status),
		Message:    r.Message,

		ExpectedEntry: rfc3339Ptr(r.ExpectedEntry),
		ExpectedExit:  rfc3339Ptr(r.ExpectedExit),
		ActualEntry:   rfc3339Ptr(r.ActualEntry),
		ActualExit:    rfc3339Ptr(r.ActualExit),

		MinutesLate:  r.MinutesLate,
		MinutesExtra: r.MinutesExtra,

		WorkedHours:   r.WorkedHours.String(),
		ExpectedHours: r.ExpectedHours.String(),
		HourDelta:     r.HourDelta.String(),

		CompensationAllowed: r.CompensationAllowed,
		Compensated:         r.Compensated,
		NetLateMinutes:      r.NetLateMinutes,
		NetExtraMinutes:     r.NetExtraMinutes,

		EarlyDepartureMinutes: r.EarlyDepartureMinutes,
		LunchMinutes:          r.LunchMinutes,

		Premiums: PremiumDTO{
			DayOvertimeHours:   r.Premiums.DayOvertimeHours.String(),
			NightOvertimeHours: r.Premiums.NightOvertimeHours.String(),
			NightOrdinaryHours: r.Premiums.NightOrdinaryHours.String(),
			TotalPremiumHours:  r.Premiums.TotalPremiumHours().String(),
		},

		Anomalies: r.Anomalies,
	}
}

func scheduleDTO(r store.ScheduleRecord, def factory.DefinitionJSON) ScheduleDTO {
	return ScheduleDTO{
		ID:                  string(r.ID),
		Name:                r.Name,
		Active:              r.Active,
		SiteID:              string(r.SiteID),
		CompensationAllowed: r.CompensationAllowed,
		Definition:          def,
		CreatedAt:           r.CreatedAt.Format(time.RFC3339),
	}
}

func assignmentDTO(r store.AssignmentRecord) AssignmentDTO {
	dto := AssignmentDTO{
		ID:         r.ID,
		EmployeeID: string(r.EmployeeID),
		ScheduleID: string(r.ScheduleID),
		From:       r.From.String(),
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
	}
	if r.To != nil {
		s := r.To.String()
		dto.To = &s
	}
	return dto
}

func holidayDTO(r store.HolidayRecord) HolidayDTO {
	return HolidayDTO{
		ID:       r.ID,
		Date:     r.Date.String(),
		Name:     r.Name,
		Workable: r.Workable,
	}
}

func absenceDTO(r store.AbsenceRecord) AbsenceDTO {
	return AbsenceDTO{
		ID:         r.ID,
		EmployeeID: string(r.EmployeeID),
		From:       r.From.String(),
		To:         r.To.String(),
		Type:       r.Type,
		State:      string(r.State),
	}
}

func correctionDTO(r store.CorrectionRecord) CorrectionDTO {
	return CorrectionDTO{
		ID:            r.ID,
		EmployeeID:    string(r.EmployeeID),
		Date:          r.Date.String(),
		Kind:          string(r.Kind),
		RequestedTime: r.RequestedTime.Format(time.RFC3339),
		Reason:        r.Reason,
		State:         string(r.State),
		ReviewedBy:    r.ReviewedBy,
		ReviewedAt:    rfc3339Ptr(r.ReviewedAt),
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
	}
}
