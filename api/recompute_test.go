package api_test

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/warp/attendance-engine/api"
	"github.com/warp/attendance-engine/engine"
	"github.com/warp/attendance-engine/store"
	"github.com/warp/attendance-engine/store/memory"
)

func punchAt(d engine.WorkDate, hour, minute int) *time.Time {
	t := d.At(engine.NewClockTime(hour, minute), time.UTC)
	return &t
}

func newWorker(s store.Store) *api.RecomputeWorker {
	return api.NewRecomputeWorker(s, testDefaults(), zap.NewNop())
}

func TestRecompute_SweepRefreshesStaleRow(t *testing.T) {
	// GIVEN: A stale punch with five hours beyond schedule, two at night
	// WHEN: Running one sweep
	// THEN: The premium cache is computed with the split breakdown

	ctx := context.Background()
	s := memory.New()
	seedStandardSetup(t, s)

	err := s.SavePunch(ctx, store.PunchRecord{
		EmployeeID: "emp-1",
		Date:       monday(),
		Entry:      punchAt(monday(), 8, 0),
		Exit:       punchAt(monday(), 23, 0),
	})
	if err != nil {
		t.Fatalf("save punch: %v", err)
	}

	newWorker(s).Sweep(ctx)

	got, err := s.GetPunch(ctx, "emp-1", monday())
	if err != nil {
		t.Fatalf("get punch: %v", err)
	}
	if !got.Computed {
		t.Fatal("expected the cache computed after the sweep")
	}
	if got.DayOvertimeHours.String() != "4.00" {
		t.Errorf("expected 4.00 day overtime, got %s", got.DayOvertimeHours)
	}
	if got.NightOvertimeHours.String() != "2.00" {
		t.Errorf("expected 2.00 night overtime, got %s", got.NightOvertimeHours)
	}
}

func TestRecompute_ConfigurationGapLeavesRowStale(t *testing.T) {
	// GIVEN: A stale punch for an employee with no assignment
	// WHEN: Running one sweep
	// THEN: The row stays stale for the next pass

	ctx := context.Background()
	s := memory.New()

	_ = s.SavePunch(ctx, store.PunchRecord{
		EmployeeID: "unassigned",
		Date:       monday(),
		Entry:      punchAt(monday(), 8, 0),
		Exit:       punchAt(monday(), 17, 0),
	})

	newWorker(s).Sweep(ctx)

	got, _ := s.GetPunch(ctx, "unassigned", monday())
	if got.Computed {
		t.Error("configuration gap must leave the cache stale")
	}
}

func TestRecompute_BatchSizeBoundsSweep(t *testing.T) {
	// GIVEN: Three stale punches and a batch size of 2
	// WHEN: Running one sweep
	// THEN: Exactly one row remains stale

	ctx := context.Background()
	s := memory.New()
	seedStandardSetup(t, s)
	for _, emp := range []engine.EmployeeID{"emp-2", "emp-3"} {
		_ = s.SaveAssignment(ctx, store.AssignmentRecord{
			ID:         store.NewID(),
			EmployeeID: emp,
			ScheduleID: "standard-office",
			From:       engine.NewWorkDate(2025, time.January, 1),
		})
	}

	for _, emp := range []engine.EmployeeID{"emp-1", "emp-2", "emp-3"} {
		_ = s.SavePunch(ctx, store.PunchRecord{
			EmployeeID: emp,
			Date:       monday(),
			Entry:      punchAt(monday(), 8, 0),
			Exit:       punchAt(monday(), 17, 0),
		})
	}

	worker := newWorker(s)
	worker.BatchSize = 2
	worker.Sweep(ctx)

	stale, err := s.ListStale(ctx, 10)
	if err != nil {
		t.Fatalf("list stale: %v", err)
	}
	if len(stale) != 1 {
		t.Errorf("expected 1 row left stale, got %d", len(stale))
	}

	worker.Sweep(ctx)
	stale, _ = s.ListStale(ctx, 10)
	if len(stale) != 0 {
		t.Errorf("expected no stale rows after second sweep, got %d", len(stale))
	}
}

func TestRecompute_StartStop(t *testing.T) {
	s := memory.New()
	worker := newWorker(s)
	worker.Interval = 10 * time.Millisecond

	worker.Start()
	time.Sleep(30 * time.Millisecond)
	worker.Stop()
}
