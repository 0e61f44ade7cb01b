package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/warp/attendance-engine/api"
	"github.com/warp/attendance-engine/engine"
	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/store"
	"github.com/warp/attendance-engine/store/memory"
)

// The demo week: 2025-03-03 is a Monday.
func monday() engine.WorkDate { return engine.NewWorkDate(2025, time.March, 3) }

func testDefaults() engine.Defaults {
	d := engine.NewDefaults()
	d.Location = time.UTC
	return d
}

func newServer(t *testing.T) (*httptest.Server, store.Store) {
	t.Helper()
	s := memory.New()
	h := api.NewHandler(s, testDefaults(), zap.NewNop())
	srv := httptest.NewServer(api.NewRouter(h, []string{"*"}))
	t.Cleanup(srv.Close)
	return srv, s
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

// seedStandardSetup saves the standard office schedule and assigns it
// to emp-1 from the start of the year.
func seedStandardSetup(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()

	err := s.SaveSchedule(ctx, store.ScheduleRecord{
		ID:                  "standard-office",
		Name:                "Standard office",
		Active:              true,
		CompensationAllowed: true,
		DefinitionJSON:      factory.StandardOfficeJSON(),
	})
	if err != nil {
		t.Fatalf("seed schedule: %v", err)
	}
	err = s.SaveAssignment(ctx, store.AssignmentRecord{
		ID:         store.NewID(),
		EmployeeID: "emp-1",
		ScheduleID: "standard-office",
		From:       engine.NewWorkDate(2025, time.January, 1),
	})
	if err != nil {
		t.Fatalf("seed assignment: %v", err)
	}
}

func rfc(d engine.WorkDate, hour, minute int) string {
	return d.At(engine.NewClockTime(hour, minute), time.UTC).Format(time.RFC3339)
}

func intPtr(v int) *int { return &v }

func TestAPI_RecordPunch_CreatesRow(t *testing.T) {
	// GIVEN: A running server
	// WHEN: Posting an entry punch
	// THEN: 201 with the stored row, cache stale

	srv, _ := newServer(t)

	resp := postJSON(t, srv.URL+"/api/punches", api.PunchRequest{
		EmployeeID: "emp-1",
		Kind:       "entry",
		At:         rfc(monday(), 8, 0),
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var dto api.PunchDTO
	decode(t, resp, &dto)
	if dto.Date != "2025-03-03" {
		t.Errorf("expected date from timestamp, got %s", dto.Date)
	}
	if dto.Entry == nil || dto.Exit != nil {
		t.Errorf("expected entry only, got %+v", dto)
	}
	if dto.Computed {
		t.Error("fresh punch must start with a stale premium cache")
	}
}

func TestAPI_RecordPunch_ValidationFailure(t *testing.T) {
	srv, _ := newServer(t)

	resp := postJSON(t, srv.URL+"/api/punches", api.PunchRequest{
		EmployeeID: "emp-1",
		Kind:       "teleport",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown kind, got %d", resp.StatusCode)
	}
}

func TestAPI_RecordPunch_ExplicitDateForNightShift(t *testing.T) {
	// GIVEN: An exit punch after midnight
	// WHEN: Posting with the shift's date set explicitly
	// THEN: The punch lands on the shift date, not the calendar date

	srv, _ := newServer(t)

	resp := postJSON(t, srv.URL+"/api/punches", api.PunchRequest{
		EmployeeID: "emp-2",
		Kind:       "exit",
		At:         rfc(monday().AddDays(1), 6, 0),
		Date:       monday().String(),
	})
	var dto api.PunchDTO
	decode(t, resp, &dto)
	if dto.Date != monday().String() {
		t.Errorf("expected punch on %s, got %s", monday(), dto.Date)
	}
}

func TestAPI_GetDailyAttendance_Punctual(t *testing.T) {
	// GIVEN: A full punctual day
	// WHEN: Fetching the daily result
	// THEN: Status punctual with 8.00 worked hours

	srv, s := newServer(t)
	seedStandardSetup(t, s)

	for _, punch := range []api.PunchRequest{
		{EmployeeID: "emp-1", Kind: "entry", At: rfc(monday(), 7, 58)},
		{EmployeeID: "emp-1", Kind: "exit", At: rfc(monday(), 17, 0)},
	} {
		resp := postJSON(t, srv.URL+"/api/punches", punch)
		resp.Body.Close()
	}

	resp, err := http.Get(srv.URL + "/api/employees/emp-1/attendance/2025-03-03")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var dto api.DailyResultDTO
	decode(t, resp, &dto)
	if dto.Status != "punctual" {
		t.Errorf("expected punctual, got %s (%s)", dto.Status, dto.Message)
	}
	if dto.WorkedHours != "8.00" {
		t.Errorf("expected 8.00 worked hours, got %s", dto.WorkedHours)
	}
	if dto.MinutesLate != 0 {
		t.Errorf("expected no lateness, got %d", dto.MinutesLate)
	}
}

func TestAPI_GetDailyAttendance_NoAssignment(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/api/employees/ghost/attendance/2025-03-03")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for configuration gap, got %d", resp.StatusCode)
	}
}

func TestAPI_CachedResultInvalidatedByPunch(t *testing.T) {
	// GIVEN: A daily result computed (and cached) while the exit is missing
	// WHEN: The exit punch arrives and the result is fetched again
	// THEN: The fresh result reflects the exit

	srv, s := newServer(t)
	seedStandardSetup(t, s)

	resp := postJSON(t, srv.URL+"/api/punches", api.PunchRequest{
		EmployeeID: "emp-1", Kind: "entry", At: rfc(monday(), 8, 0),
	})
	resp.Body.Close()

	url := srv.URL + "/api/employees/emp-1/attendance/2025-03-03"
	first, _ := http.Get(url)
	var before api.DailyResultDTO
	decode(t, first, &before)
	if before.Status != "incomplete" {
		t.Fatalf("expected incomplete before exit, got %s", before.Status)
	}

	resp = postJSON(t, srv.URL+"/api/punches", api.PunchRequest{
		EmployeeID: "emp-1", Kind: "exit", At: rfc(monday(), 17, 0),
	})
	resp.Body.Close()

	second, _ := http.Get(url)
	var after api.DailyResultDTO
	decode(t, second, &after)
	if after.Status != "punctual" {
		t.Errorf("expected punctual after exit punch, got %s", after.Status)
	}
}

func TestAPI_CreateSchedule_RejectsBadDefinition(t *testing.T) {
	srv, _ := newServer(t)

	resp := postJSON(t, srv.URL+"/api/schedules", api.CreateScheduleRequest{
		ID:     "broken",
		Name:   "Broken",
		Active: true,
		Definition: factory.DefinitionJSON{
			Days: []factory.DayJSON{{Weekday: 9, Workable: false}},
		},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for weekday out of range, got %d", resp.StatusCode)
	}
}

func TestAPI_CreateScheduleAndAssignment(t *testing.T) {
	// GIVEN: A schedule created through the API
	// WHEN: Assigning it and fetching attendance
	// THEN: The new schedule drives the result

	srv, _ := newServer(t)

	resp := postJSON(t, srv.URL+"/api/schedules", api.CreateScheduleRequest{
		ID:                  "api-office",
		Name:                "API office",
		Active:              true,
		CompensationAllowed: true,
		Definition: factory.DefinitionJSON{
			Days: []factory.DayJSON{
				{Weekday: 1, Workable: true, Entry: "09:00", Exit: "18:00", LunchMinutes: intPtr(60)},
			},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/admin/assignments", api.CreateAssignmentRequest{
		EmployeeID: "emp-9",
		ScheduleID: "api-office",
		From:       "2025-01-01",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 for assignment, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	for _, punch := range []api.PunchRequest{
		{EmployeeID: "emp-9", Kind: "entry", At: rfc(monday(), 9, 0)},
		{EmployeeID: "emp-9", Kind: "exit", At: rfc(monday(), 18, 0)},
	} {
		r := postJSON(t, srv.URL+"/api/punches", punch)
		r.Body.Close()
	}

	get, _ := http.Get(srv.URL + "/api/employees/emp-9/attendance/2025-03-03")
	var dto api.DailyResultDTO
	decode(t, get, &dto)
	if dto.Status != "punctual" {
		t.Errorf("expected punctual under the new schedule, got %s (%s)", dto.Status, dto.Message)
	}
}

func TestAPI_CreateAssignment_UnknownSchedule(t *testing.T) {
	srv, _ := newServer(t)

	resp := postJSON(t, srv.URL+"/api/admin/assignments", api.CreateAssignmentRequest{
		EmployeeID: "emp-1",
		ScheduleID: "ghost",
		From:       "2025-01-01",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown schedule, got %d", resp.StatusCode)
	}
}

func TestAPI_HolidayChangesResult(t *testing.T) {
	// GIVEN: A computed working day
	// WHEN: Declaring a non-workable holiday on that date
	// THEN: The next read reports a holiday

	srv, s := newServer(t)
	seedStandardSetup(t, s)

	url := srv.URL + "/api/employees/emp-1/attendance/2025-03-03"
	first, _ := http.Get(url)
	var before api.DailyResultDTO
	decode(t, first, &before)
	if before.Status == "holiday" {
		t.Fatal("day must not start as a holiday")
	}

	resp := postJSON(t, srv.URL+"/api/holidays", api.CreateHolidayRequest{
		Date: "2025-03-03",
		Name: "Carnival",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	second, _ := http.Get(url)
	var after api.DailyResultDTO
	decode(t, second, &after)
	if after.Status != "holiday" {
		t.Errorf("expected holiday after declaration, got %s", after.Status)
	}
}

func TestAPI_AbsenceExcusesDay(t *testing.T) {
	srv, s := newServer(t)
	seedStandardSetup(t, s)

	resp := postJSON(t, srv.URL+"/api/absences", api.CreateAbsenceRequest{
		EmployeeID: "emp-1",
		From:       "2025-03-03",
		To:         "2025-03-04",
		Type:       "medical",
		State:      "approved",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	get, _ := http.Get(srv.URL + "/api/employees/emp-1/attendance/2025-03-03")
	var dto api.DailyResultDTO
	decode(t, get, &dto)
	if dto.Status != "justified-absence" {
		t.Errorf("expected justified-absence, got %s", dto.Status)
	}
}

func TestAPI_CorrectionReviewFlow(t *testing.T) {
	// GIVEN: A late entry and a pending correction to the real time
	// WHEN: Approving the correction
	// THEN: The daily result switches from late to punctual

	srv, s := newServer(t)
	seedStandardSetup(t, s)

	for _, punch := range []api.PunchRequest{
		{EmployeeID: "emp-1", Kind: "entry", At: rfc(monday(), 9, 30)},
		{EmployeeID: "emp-1", Kind: "exit", At: rfc(monday(), 17, 0)},
	} {
		r := postJSON(t, srv.URL+"/api/punches", punch)
		r.Body.Close()
	}

	url := srv.URL + "/api/employees/emp-1/attendance/2025-03-03"
	first, _ := http.Get(url)
	var before api.DailyResultDTO
	decode(t, first, &before)
	if before.Status != "late-uncompensated" {
		t.Fatalf("expected late-uncompensated before review, got %s", before.Status)
	}

	resp := postJSON(t, srv.URL+"/api/corrections", api.CreateCorrectionRequest{
		EmployeeID:    "emp-1",
		Date:          "2025-03-03",
		Kind:          "entry",
		RequestedTime: rfc(monday(), 8, 0),
		Reason:        "badge reader offline",
	})
	var created api.CorrectionDTO
	decode(t, resp, &created)
	if created.State != "pending" {
		t.Fatalf("expected pending correction, got %s", created.State)
	}

	pendingResp, _ := http.Get(srv.URL + "/api/corrections/pending")
	var pending []api.CorrectionDTO
	decode(t, pendingResp, &pending)
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending correction, got %d", len(pending))
	}

	approve := postJSON(t, fmt.Sprintf("%s/api/corrections/%s/approve", srv.URL, created.ID),
		api.ReviewRequest{ReviewedBy: "supervisor-1"})
	var reviewed api.CorrectionDTO
	decode(t, approve, &reviewed)
	if reviewed.State != "approved" || reviewed.ReviewedBy != "supervisor-1" {
		t.Fatalf("expected approved review trail, got %+v", reviewed)
	}

	second, _ := http.Get(url)
	var after api.DailyResultDTO
	decode(t, second, &after)
	if after.Status != "punctual" {
		t.Errorf("expected punctual after approval, got %s (%s)", after.Status, after.Message)
	}
}

func TestAPI_PeriodSummary(t *testing.T) {
	// GIVEN: A week with a punctual day, a late day and a rest weekend
	// WHEN: Fetching the period summary
	// THEN: The fold counts each category once

	srv, s := newServer(t)
	seedStandardSetup(t, s)

	tuesday := monday().AddDays(1)
	for _, punch := range []api.PunchRequest{
		{EmployeeID: "emp-1", Kind: "entry", At: rfc(monday(), 8, 0)},
		{EmployeeID: "emp-1", Kind: "exit", At: rfc(monday(), 17, 0)},
		{EmployeeID: "emp-1", Kind: "entry", At: rfc(tuesday, 8, 20), Date: tuesday.String()},
		{EmployeeID: "emp-1", Kind: "exit", At: rfc(tuesday, 17, 0), Date: tuesday.String()},
	} {
		r := postJSON(t, srv.URL+"/api/punches", punch)
		r.Body.Close()
	}

	resp, err := http.Get(srv.URL + "/api/employees/emp-1/attendance?from=2025-03-03&to=2025-03-09")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var summary api.PeriodSummaryDTO
	decode(t, resp, &summary)

	if summary.Days != 7 {
		t.Errorf("expected 7 days, got %d", summary.Days)
	}
	if summary.LateUncompensatedCount != 1 {
		t.Errorf("expected 1 late-uncompensated day, got %d", summary.LateUncompensatedCount)
	}
	if summary.LateUncompensatedMinutes != 15 {
		t.Errorf("expected 15 net late minutes, got %d", summary.LateUncompensatedMinutes)
	}
	// Wed/Thu/Fri have no punches: incomplete working days.
	if summary.IncompleteDays != 3 {
		t.Errorf("expected 3 incomplete days, got %d", summary.IncompleteDays)
	}
	if len(summary.Results) != 7 {
		t.Errorf("expected 7 daily results, got %d", len(summary.Results))
	}
}

func TestAPI_PeriodSummary_RangeRequired(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/api/employees/emp-1/attendance")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without from/to, got %d", resp.StatusCode)
	}
}

func TestAPI_SeedEndpoint(t *testing.T) {
	srv, s := newServer(t)

	resp := postJSON(t, srv.URL+"/api/admin/seed", map[string]string{})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	schedules, err := s.ListSchedules(context.Background())
	if err != nil {
		t.Fatalf("list schedules: %v", err)
	}
	if len(schedules) != 2 {
		t.Errorf("expected 2 seeded schedules, got %d", len(schedules))
	}
}
