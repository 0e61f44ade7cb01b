/*
seed.go - Demo data loader

PURPOSE:
  Populates the store with a small, self-consistent demo data set so
  the API can be explored without manual setup: two schedules, two
  assigned employees, a holiday and a week of punches covering the
  interesting outcomes (punctual, compensated lateness, night shift).

USAGE:
  POST /api/admin/seed

  The loader is idempotent: schedules and punches upsert by natural
  key, so re-seeding refreshes the same rows.

SEE ALSO:
  - factory/schedule.go: Preset definitions used here
  - handlers.go: Route registration
*/
package api

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/warp/attendance-engine/engine"
	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/store"
)

// LoadSeedData loads the demo data set.
func (h *Handler) LoadSeedData(w http.ResponseWriter, r *http.Request) {
	if err := h.seed(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to seed demo data", err)
		return
	}
	h.results.Flush()

	h.Logger.Info("demo data seeded")
	writeJSON(w, http.StatusOK, map[string]string{"status": "seeded"})
}

func (h *Handler) seed(ctx context.Context) error {
	schedules := []store.ScheduleRecord{
		{
			ID:                  "standard-office",
			Name:                "Standard office",
			Active:              true,
			SiteID:              "hq",
			CompensationAllowed: true,
			DefinitionJSON:      factory.StandardOfficeJSON(),
		},
		{
			ID:                  "night-shift",
			Name:                "Night shift",
			Active:              true,
			SiteID:              "plant",
			CompensationAllowed: false,
			DefinitionJSON:      factory.NightShiftJSON(),
		},
	}
	for _, s := range schedules {
		if err := h.Store.SaveSchedule(ctx, s); err != nil {
			return err
		}
	}

	// Demo week: the week containing today.
	monday := engine.WeekPeriod(engine.WorkDateOf(time.Now().In(h.Defaults.Location))).Start

	assignments := []store.AssignmentRecord{
		{ID: store.NewID(), EmployeeID: "demo-ana", ScheduleID: "standard-office", From: monday.AddDays(-28)},
		{ID: store.NewID(), EmployeeID: "demo-luis", ScheduleID: "night-shift", From: monday.AddDays(-28)},
	}
	for _, a := range assignments {
		if err := h.Store.SaveAssignment(ctx, a); err != nil {
			return err
		}
	}

	// Friday of the demo week is a non-workable holiday.
	if err := h.Store.SaveHoliday(ctx, store.HolidayRecord{
		ID:       store.NewID(),
		Date:     monday.AddDays(4),
		Name:     "Demo holiday",
		Workable: false,
	}); err != nil {
		return err
	}

	// Office employee: punctual Monday, late-but-compensated Tuesday,
	// missing exit Wednesday.
	office := []store.PunchRecord{
		{
			EmployeeID: "demo-ana", Date: monday,
			Entry: h.at(monday, 7, 58), Exit: h.at(monday, 17, 0),
		},
		{
			EmployeeID: "demo-ana", Date: monday.AddDays(1),
			Entry: h.at(monday.AddDays(1), 8, 20), Exit: h.at(monday.AddDays(1), 18, 0),
		},
		{
			EmployeeID: "demo-ana", Date: monday.AddDays(2),
			Entry: h.at(monday.AddDays(2), 8, 1),
		},
	}

	// Night shift employee: one exact shift, exit past midnight.
	night := store.PunchRecord{
		EmployeeID: "demo-luis", Date: monday,
		Entry: h.at(monday, 22, 0), Exit: h.at(monday.AddDays(1), 6, 0),
	}

	for _, p := range append(office, night) {
		if err := h.Store.SavePunch(ctx, p); err != nil {
			return err
		}
	}

	h.Logger.Info("seed rows written",
		zap.Int("schedules", len(schedules)),
		zap.Int("assignments", len(assignments)),
		zap.Int("punches", len(office)+1))
	return nil
}

func (h *Handler) at(d engine.WorkDate, hour, minute int) *time.Time {
	t := d.At(engine.NewClockTime(hour, minute), h.Defaults.Location)
	return &t
}
