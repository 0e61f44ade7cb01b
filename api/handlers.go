/*
handlers.go - HTTP API handlers for the attendance engine

PURPOSE:
  Exposes the attendance engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the pure
  computation pipeline.

ENDPOINTS:
  Punches:
    POST   /api/punches                          Record a punch event
    GET    /api/employees/{id}/punches           Punch rows for a range

  Attendance:
    GET    /api/employees/{id}/attendance/{date} Daily reconciled result
    GET    /api/employees/{id}/attendance        Period summary (?from&to)

  Schedules:
    GET    /api/schedules                        List schedules
    POST   /api/schedules                        Create/replace schedule
    GET    /api/schedules/{id}                   Get schedule
    DELETE /api/schedules/{id}                   Delete schedule

  Admin:
    POST   /api/admin/assignments                Assign schedule
    GET    /api/admin/assignments/{employeeID}   List assignments
    DELETE /api/admin/assignments/{id}           Remove assignment
    POST   /api/admin/seed                       Load demo data

  Calendar:
    GET    /api/holidays                         List holidays (?from&to)
    POST   /api/holidays                         Declare holiday
    DELETE /api/holidays/{id}                    Remove holiday
    POST   /api/absences                         Register absence

  Corrections:
    POST   /api/corrections                      Submit correction
    GET    /api/corrections/pending              Pending review queue
    POST   /api/corrections/{id}/approve         Approve (recompute)
    POST   /api/corrections/{id}/reject          Reject

ARCHITECTURE:
  Handler holds all dependencies: the store, the schedule factory, the
  engine defaults and a short-lived daily-result cache. The engine is
  pure, so every GET assembles a consistent snapshot from the store and
  runs the pipeline; writes invalidate the affected cache entries.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Record not found
  - 422: Configuration gaps (no assignment, broken schedule)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - recompute.go: Background premium cache refresh
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/warp/attendance-engine/engine"
	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/store"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    store.Store
	Factory  *factory.ScheduleFactory
	Defaults engine.Defaults
	Logger   *zap.Logger

	validate *validator.Validate

	// results caches reconciled daily results keyed "employee|date".
	// Punch and correction writes invalidate the touched entry;
	// schedule/calendar writes flush everything, since they can affect
	// any number of days.
	results *gocache.Cache
}

// NewHandler creates a new handler with the given store.
func NewHandler(s store.Store, defaults engine.Defaults, logger *zap.Logger) *Handler {
	return &Handler{
		Store:    s,
		Factory:  factory.NewScheduleFactory(),
		Defaults: defaults,
		Logger:   logger,
		validate: validator.New(),
		results:  gocache.New(5*time.Minute, 10*time.Minute),
	}
}

func resultKey(employeeID engine.EmployeeID, date engine.WorkDate) string {
	return string(employeeID) + "|" + date.String()
}

func (h *Handler) invalidateDay(employeeID engine.EmployeeID, date engine.WorkDate) {
	h.results.Delete(resultKey(employeeID, date))
}

// =============================================================================
// SNAPSHOT ASSEMBLY
// =============================================================================

// buildDailyInput reads everything the pipeline needs for one
// employee+date from the store. Shared with the recompute worker.
func buildDailyInput(
	ctx context.Context,
	s store.Store,
	f *factory.ScheduleFactory,
	defaults engine.Defaults,
	employeeID engine.EmployeeID,
	date engine.WorkDate,
) (engine.DailyInput, error) {
	in := engine.DailyInput{
		EmployeeID: employeeID,
		Date:       date,
		Defaults:   defaults,
		Schedules:  make(map[engine.ScheduleID]engine.Schedule),
	}

	punch, err := s.GetPunch(ctx, employeeID, date)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return engine.DailyInput{}, err
	}
	if punch != nil {
		in.Card = punch.Card()
	}

	assignments, err := s.ListAssignments(ctx, employeeID)
	if err != nil {
		return engine.DailyInput{}, err
	}
	for _, a := range assignments {
		in.Assignments = append(in.Assignments, a.ToEngine())
		if _, seen := in.Schedules[a.ScheduleID]; seen {
			continue
		}
		rec, err := s.GetSchedule(ctx, a.ScheduleID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue // resolver reports the dangling reference
			}
			return engine.DailyInput{}, err
		}
		schedule, err := f.FromRecord(*rec)
		if err != nil {
			return engine.DailyInput{}, err
		}
		in.Schedules[a.ScheduleID] = schedule
	}

	holiday, err := s.GetHoliday(ctx, date)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return engine.DailyInput{}, err
	}
	if holiday != nil {
		hd := holiday.ToEngine()
		in.Holiday = &hd
	}

	absences, err := s.ListAbsences(ctx, employeeID, date, date)
	if err != nil {
		return engine.DailyInput{}, err
	}
	for _, a := range absences {
		in.Absences = append(in.Absences, a.ToEngine())
	}

	corrections, err := s.ListCorrections(ctx, employeeID, date)
	if err != nil {
		return engine.DailyInput{}, err
	}
	for _, c := range corrections {
		in.Corrections = append(in.Corrections, c.ToEngine())
	}

	return in, nil
}

// computeDay returns the reconciled result for employee+date, serving
// from the cache when possible.
func (h *Handler) computeDay(ctx context.Context, employeeID engine.EmployeeID, date engine.WorkDate) (engine.DailyResult, error) {
	key := resultKey(employeeID, date)
	if cached, ok := h.results.Get(key); ok {
		return cached.(engine.DailyResult), nil
	}

	in, err := buildDailyInput(ctx, h.Store, h.Factory, h.Defaults, employeeID, date)
	if err != nil {
		return engine.DailyResult{}, err
	}
	result, err := engine.ComputeDailyAttendance(in)
	if err != nil {
		return engine.DailyResult{}, err
	}

	h.results.SetDefault(key, result)
	return result, nil
}

// =============================================================================
// PUNCH HANDLERS
// =============================================================================

// RecordPunch records one punch event, creating or updating the
// employee's punch row for the date.
func (h *Handler) RecordPunch(w http.ResponseWriter, r *http.Request) {
	var req PunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	at := time.Now().In(h.Defaults.Location)
	if req.At != "" {
		parsed, err := time.Parse(time.RFC3339, req.At)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid at timestamp", err)
			return
		}
		at = parsed.In(h.Defaults.Location)
	}

	date := engine.WorkDateOf(at)
	if req.Date != "" {
		parsed, err := engine.ParseWorkDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date", err)
			return
		}
		date = parsed
	}

	employeeID := engine.EmployeeID(req.EmployeeID)
	ctx := r.Context()

	record := store.PunchRecord{EmployeeID: employeeID, Date: date}
	if existing, err := h.Store.GetPunch(ctx, employeeID, date); err == nil {
		record = *existing
	} else if !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "Failed to load punch", err)
		return
	}

	switch req.Kind {
	case "entry":
		record.Entry = &at
	case "exit":
		record.Exit = &at
	case "lunch_start":
		record.LunchStart = &at
	case "lunch_end":
		record.LunchEnd = &at
	}

	if err := h.Store.SavePunch(ctx, record); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save punch", err)
		return
	}
	h.invalidateDay(employeeID, date)

	saved, err := h.Store.GetPunch(ctx, employeeID, date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload punch", err)
		return
	}

	h.Logger.Info("punch recorded",
		zap.String("employee", req.EmployeeID),
		zap.String("date", date.String()),
		zap.String("kind", req.Kind))

	writeJSON(w, http.StatusCreated, punchDTO(*saved))
}

// ListPunches returns the employee's punch rows within ?from&to.
func (h *Handler) ListPunches(w http.ResponseWriter, r *http.Request) {
	employeeID := engine.EmployeeID(chi.URLParam(r, "id"))
	from, to, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from/to range", err)
		return
	}

	punches, err := h.Store.ListPunches(r.Context(), employeeID, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list punches", err)
		return
	}

	dtos := make([]PunchDTO, len(punches))
	for i, p := range punches {
		dtos[i] = punchDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// GetDailyAttendance returns the reconciled result for one date.
func (h *Handler) GetDailyAttendance(w http.ResponseWriter, r *http.Request) {
	employeeID := engine.EmployeeID(chi.URLParam(r, "id"))
	date, err := engine.ParseWorkDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	result, err := h.computeDay(r.Context(), employeeID, date)
	if err != nil {
		writeComputeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dailyResultDTO(result))
}

// GetPeriodAttendance folds the range ?from&to into a period summary.
// Days with configuration gaps are skipped, not fatal: a missing
// assignment on one date must not hide the rest of the period.
func (h *Handler) GetPeriodAttendance(w http.ResponseWriter, r *http.Request) {
	employeeID := engine.EmployeeID(chi.URLParam(r, "id"))
	from, to, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from/to range", err)
		return
	}
	period := engine.Period{Start: from, End: to}
	if err := period.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from/to range", err)
		return
	}

	var results []engine.DailyResult
	var dtos []DailyResultDTO
	for _, date := range period.Days() {
		result, err := h.computeDay(r.Context(), employeeID, date)
		if err != nil {
			if engine.IsConfigurationGap(err) {
				h.Logger.Warn("skipping day with configuration gap",
					zap.String("employee", string(employeeID)),
					zap.String("date", date.String()),
					zap.Error(err))
				continue
			}
			writeError(w, http.StatusInternalServerError, "Failed to compute attendance", err)
			return
		}
		results = append(results, result)
		dtos = append(dtos, dailyResultDTO(result))
	}

	summary := engine.AggregatePeriod(results)
	writeJSON(w, http.StatusOK, PeriodSummaryDTO{
		EmployeeID: string(employeeID),
		From:       from.String(),
		To:         to.String(),

		Days:                     summary.Days,
		JustifiedAbsences:        summary.JustifiedAbsences,
		LateUncompensatedCount:   summary.LateUncompensatedCount,
		LateUncompensatedMinutes: summary.LateUncompensatedMinutes,
		LateCompensatedCount:     summary.LateCompensatedCount,
		EarlyDepartures:          summary.EarlyDepartures,
		ExtendedBreaks:           summary.ExtendedBreaks,
		IncompleteDays:           summary.IncompleteDays,

		SurplusHours: summary.SurplusHours.String(),

		Results: dtos,
	})
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// ListSchedules returns all schedules.
func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListSchedules(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list schedules", err)
		return
	}

	dtos := make([]ScheduleDTO, 0, len(records))
	for _, rec := range records {
		var def factory.DefinitionJSON
		if rec.DefinitionJSON != "" {
			if err := json.Unmarshal([]byte(rec.DefinitionJSON), &def); err != nil {
				h.Logger.Warn("stored schedule definition unreadable",
					zap.String("schedule", string(rec.ID)), zap.Error(err))
				continue
			}
		}
		dtos = append(dtos, scheduleDTO(rec, def))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetSchedule returns one schedule.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	id := engine.ScheduleID(chi.URLParam(r, "id"))

	rec, err := h.Store.GetSchedule(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Schedule not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get schedule", err)
		return
	}

	var def factory.DefinitionJSON
	if rec.DefinitionJSON != "" {
		if err := json.Unmarshal([]byte(rec.DefinitionJSON), &def); err != nil {
			writeError(w, http.StatusInternalServerError, "Stored definition unreadable", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, scheduleDTO(*rec, def))
}

// CreateSchedule creates or replaces a schedule. The definition is
// validated by round-tripping it through the factory before storage.
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req CreateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	raw, err := json.Marshal(req.Definition)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid definition", err)
		return
	}
	record := store.ScheduleRecord{
		ID:                  engine.ScheduleID(req.ID),
		Name:                req.Name,
		Active:              req.Active,
		SiteID:              engine.SiteID(req.SiteID),
		CompensationAllowed: req.CompensationAllowed,
		DefinitionJSON:      string(raw),
	}
	if _, err := h.Factory.FromRecord(record); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid schedule definition", err)
		return
	}

	if err := h.Store.SaveSchedule(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save schedule", err)
		return
	}
	h.results.Flush()

	h.Logger.Info("schedule saved", zap.String("schedule", req.ID))
	writeJSON(w, http.StatusCreated, scheduleDTO(record, req.Definition))
}

// DeleteSchedule removes a schedule.
func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id := engine.ScheduleID(chi.URLParam(r, "id"))
	if err := h.Store.DeleteSchedule(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Schedule not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete schedule", err)
		return
	}
	h.results.Flush()
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ASSIGNMENT HANDLERS
// =============================================================================

// CreateAssignment binds an employee to a schedule over a date range.
func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req CreateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	from, err := engine.ParseWorkDate(req.From)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date", err)
		return
	}
	record := store.AssignmentRecord{
		ID:         store.NewID(),
		EmployeeID: engine.EmployeeID(req.EmployeeID),
		ScheduleID: engine.ScheduleID(req.ScheduleID),
		From:       from,
	}
	if req.To != nil {
		to, err := engine.ParseWorkDate(*req.To)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date", err)
			return
		}
		if to.Before(from) {
			writeError(w, http.StatusBadRequest, "Invalid assignment range", engine.ErrInvalidPeriod)
			return
		}
		record.To = &to
	}

	if _, err := h.Store.GetSchedule(r.Context(), record.ScheduleID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "Unknown schedule", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to check schedule", err)
		return
	}

	if err := h.Store.SaveAssignment(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save assignment", err)
		return
	}
	h.results.Flush()

	h.Logger.Info("assignment created",
		zap.String("employee", req.EmployeeID),
		zap.String("schedule", req.ScheduleID))
	writeJSON(w, http.StatusCreated, assignmentDTO(record))
}

// ListAssignments returns an employee's assignments.
func (h *Handler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	employeeID := engine.EmployeeID(chi.URLParam(r, "employeeID"))
	records, err := h.Store.ListAssignments(r.Context(), employeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list assignments", err)
		return
	}
	dtos := make([]AssignmentDTO, len(records))
	for i, rec := range records {
		dtos[i] = assignmentDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// DeleteAssignment removes an assignment.
func (h *Handler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteAssignment(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Assignment not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete assignment", err)
		return
	}
	h.results.Flush()
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// CALENDAR HANDLERS
// =============================================================================

// ListHolidays returns holidays within ?from&to.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from/to range", err)
		return
	}
	records, err := h.Store.ListHolidays(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list holidays", err)
		return
	}
	dtos := make([]HolidayDTO, len(records))
	for i, rec := range records {
		dtos[i] = holidayDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateHoliday declares a calendar holiday.
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	date, err := engine.ParseWorkDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	record := store.HolidayRecord{
		ID:       store.NewID(),
		Date:     date,
		Name:     req.Name,
		Workable: req.Workable,
	}
	if err := h.Store.SaveHoliday(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save holiday", err)
		return
	}
	h.results.Flush()

	writeJSON(w, http.StatusCreated, holidayDTO(record))
}

// DeleteHoliday removes a holiday.
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteHoliday(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Holiday not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete holiday", err)
		return
	}
	h.results.Flush()
	w.WriteHeader(http.StatusNoContent)
}

// CreateAbsence registers an absence record.
func (h *Handler) CreateAbsence(w http.ResponseWriter, r *http.Request) {
	var req CreateAbsenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	from, err := engine.ParseWorkDate(req.From)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date", err)
		return
	}
	to, err := engine.ParseWorkDate(req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date", err)
		return
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "Invalid absence range", engine.ErrInvalidPeriod)
		return
	}

	state := engine.ApprovalPending
	if req.State != "" {
		state = engine.ApprovalState(req.State)
	}
	record := store.AbsenceRecord{
		ID:         store.NewID(),
		EmployeeID: engine.EmployeeID(req.EmployeeID),
		From:       from,
		To:         to,
		Type:       req.Type,
		State:      state,
	}
	if err := h.Store.SaveAbsence(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save absence", err)
		return
	}
	h.results.Flush()

	writeJSON(w, http.StatusCreated, absenceDTO(record))
}

// =============================================================================
// CORRECTION HANDLERS
// =============================================================================

// CreateCorrection submits a punch correction for review.
func (h *Handler) CreateCorrection(w http.ResponseWriter, r *http.Request) {
	var req CreateCorrectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	date, err := engine.ParseWorkDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	requested, err := time.Parse(time.RFC3339, req.RequestedTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid requested_time", err)
		return
	}

	record := store.CorrectionRecord{
		ID:            store.NewID(),
		EmployeeID:    engine.EmployeeID(req.EmployeeID),
		Date:          date,
		Kind:          engine.PunchKind(req.Kind),
		RequestedTime: requested.In(h.Defaults.Location),
		Reason:        req.Reason,
		State:         engine.ApprovalPending,
	}
	if err := h.Store.SaveCorrection(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save correction", err)
		return
	}

	writeJSON(w, http.StatusCreated, correctionDTO(record))
}

// ListPendingCorrections returns the review queue.
func (h *Handler) ListPendingCorrections(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListPendingCorrections(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list corrections", err)
		return
	}
	dtos := make([]CorrectionDTO, len(records))
	for i, rec := range records {
		dtos[i] = correctionDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ApproveCorrection approves a correction. The store stales the
// matching punch's premium cache; the handler drops the cached daily
// result so the next read reflects the substituted time.
func (h *Handler) ApproveCorrection(w http.ResponseWriter, r *http.Request) {
	h.reviewCorrection(w, r, true)
}

// RejectCorrection rejects a correction. Computed results are untouched.
func (h *Handler) RejectCorrection(w http.ResponseWriter, r *http.Request) {
	h.reviewCorrection(w, r, false)
}

func (h *Handler) reviewCorrection(w http.ResponseWriter, r *http.Request, approve bool) {
	id := chi.URLParam(r, "id")

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	ctx := r.Context()
	var err error
	if approve {
		err = h.Store.ApproveCorrection(ctx, id, req.ReviewedBy)
	} else {
		err = h.Store.RejectCorrection(ctx, id, req.ReviewedBy)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Correction not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to review correction", err)
		return
	}

	record, err := h.Store.GetCorrection(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload correction", err)
		return
	}
	if approve {
		h.invalidateDay(record.EmployeeID, record.Date)
	}

	h.Logger.Info("correction reviewed",
		zap.String("correction", id),
		zap.Bool("approved", approve),
		zap.String("reviewed_by", req.ReviewedBy))
	writeJSON(w, http.StatusOK, correctionDTO(*record))
}

// =============================================================================
// HELPERS
// =============================================================================

func parseRange(r *http.Request) (from, to engine.WorkDate, err error) {
	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")
	if fromStr == "" || toStr == "" {
		return engine.WorkDate{}, engine.WorkDate{}, fmt.Errorf("from and to query parameters are required")
	}
	if from, err = engine.ParseWorkDate(fromStr); err != nil {
		return engine.WorkDate{}, engine.WorkDate{}, err
	}
	if to, err = engine.ParseWorkDate(toStr); err != nil {
		return engine.WorkDate{}, engine.WorkDate{}, err
	}
	return from, to, nil
}

func writeComputeError(w http.ResponseWriter, err error) {
	if engine.IsConfigurationGap(err) {
		writeError(w, http.StatusUnprocessableEntity, "Schedule configuration gap", err)
		return
	}
	writeError(w, http.StatusInternalServerError, "Failed to compute attendance", err)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
