// Package memory provides an in-memory store.Store for tests and dev.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/attendance-engine/engine"
	"github.com/warp/attendance-engine/store"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

// Memory implements store.Store with maps behind an RWMutex.
type Memory struct {
	mu sync.RWMutex

	punches     map[punchKey]store.PunchRecord
	schedules   map[engine.ScheduleID]store.ScheduleRecord
	assignments map[string]store.AssignmentRecord
	holidays    map[string]store.HolidayRecord
	absences    map[string]store.AbsenceRecord
	corrections map[string]store.CorrectionRecord
}

type punchKey struct {
	EmployeeID engine.EmployeeID
	Date       engine.WorkDate
}

func New() *Memory {
	return &Memory{
		punches:     make(map[punchKey]store.PunchRecord),
		schedules:   make(map[engine.ScheduleID]store.ScheduleRecord),
		assignments: make(map[string]store.AssignmentRecord),
		holidays:    make(map[string]store.HolidayRecord),
		absences:    make(map[string]store.AbsenceRecord),
		corrections: make(map[string]store.CorrectionRecord),
	}
}

func (m *Memory) Close() error { return nil }

// =============================================================================
// PUNCH STORE
// =============================================================================

// SavePunch upserts by employee+date. Any punch write stales the
// premium cache.
func (m *Memory) SavePunch(_ context.Context, r store.PunchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := punchKey{EmployeeID: r.EmployeeID, Date: r.Date}
	if existing, ok := m.punches[k]; ok {
		r.ID = existing.ID
		r.CreatedAt = existing.CreatedAt
	} else if r.ID == "" {
		r.ID = store.NewID()
	}
	r.Computed = false
	r.UpdatedAt = time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = r.UpdatedAt
	}

	m.punches[k] = r
	return nil
}

func (m *Memory) GetPunch(_ context.Context, employeeID engine.EmployeeID, date engine.WorkDate) (*store.PunchRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.punches[punchKey{EmployeeID: employeeID, Date: date}]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := r
	return &out, nil
}

func (m *Memory) ListPunches(_ context.Context, employeeID engine.EmployeeID, from, to engine.WorkDate) ([]store.PunchRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []store.PunchRecord
	for k, r := range m.punches {
		if k.EmployeeID != employeeID {
			continue
		}
		if k.Date.AfterOrEqual(from) && k.Date.BeforeOrEqual(to) {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

func (m *Memory) ListStale(_ context.Context, limit int) ([]store.PunchRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []store.PunchRecord
	for _, r := range m.punches {
		if !r.Computed {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.Before(result[j].UpdatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *Memory) SavePremiums(_ context.Context, punchID string, p engine.PremiumBreakdown) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, r := range m.punches {
		if r.ID == punchID {
			r.SetPremiums(p)
			r.UpdatedAt = time.Now().UTC()
			m.punches[k] = r
			return nil
		}
	}
	return store.ErrNotFound
}

// =============================================================================
// SCHEDULE STORE
// =============================================================================

func (m *Memory) SaveSchedule(_ context.Context, r store.ScheduleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := m.schedules[r.ID]; ok {
		r.CreatedAt = existing.CreatedAt
	} else if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	m.schedules[r.ID] = r
	return nil
}

func (m *Memory) GetSchedule(_ context.Context, id engine.ScheduleID) (*store.ScheduleRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.schedules[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := r
	return &out, nil
}

func (m *Memory) ListSchedules(_ context.Context) ([]store.ScheduleRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]store.ScheduleRecord, 0, len(m.schedules))
	for _, r := range m.schedules {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *Memory) DeleteSchedule(_ context.Context, id engine.ScheduleID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.schedules, id)
	return nil
}

func (m *Memory) SaveAssignment(_ context.Context, r store.AssignmentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.ID == "" {
		r.ID = store.NewID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	m.assignments[r.ID] = r
	return nil
}

func (m *Memory) ListAssignments(_ context.Context, employeeID engine.EmployeeID) ([]store.AssignmentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []store.AssignmentRecord
	for _, r := range m.assignments {
		if r.EmployeeID == employeeID {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *Memory) DeleteAssignment(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.assignments, id)
	return nil
}

// =============================================================================
// CALENDAR STORE
// =============================================================================

func (m *Memory) SaveHoliday(_ context.Context, r store.HolidayRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.ID == "" {
		r.ID = store.NewID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	m.holidays[r.ID] = r
	return nil
}

func (m *Memory) GetHoliday(_ context.Context, date engine.WorkDate) (*store.HolidayRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.holidays {
		if r.Date.Equal(date) {
			out := r
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *Memory) ListHolidays(_ context.Context, from, to engine.WorkDate) ([]store.HolidayRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []store.HolidayRecord
	for _, r := range m.holidays {
		if r.Date.AfterOrEqual(from) && r.Date.BeforeOrEqual(to) {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

func (m *Memory) DeleteHoliday(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.holidays, id)
	return nil
}

func (m *Memory) SaveAbsence(_ context.Context, r store.AbsenceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.ID == "" {
		r.ID = store.NewID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	m.absences[r.ID] = r
	return nil
}

func (m *Memory) ListAbsences(_ context.Context, employeeID engine.EmployeeID, from, to engine.WorkDate) ([]store.AbsenceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []store.AbsenceRecord
	for _, r := range m.absences {
		if r.EmployeeID != employeeID {
			continue
		}
		// Overlap test: absence [From, To] intersects [from, to].
		if r.To.AfterOrEqual(from) && r.From.BeforeOrEqual(to) {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].From.Before(result[j].From)
	})
	return result, nil
}

// =============================================================================
// CORRECTION STORE
// =============================================================================

func (m *Memory) SaveCorrection(_ context.Context, r store.CorrectionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.ID == "" {
		r.ID = store.NewID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.State == "" {
		r.State = engine.ApprovalPending
	}
	m.corrections[r.ID] = r
	return nil
}

func (m *Memory) GetCorrection(_ context.Context, id string) (*store.CorrectionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.corrections[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := r
	return &out, nil
}

func (m *Memory) ListCorrections(_ context.Context, employeeID engine.EmployeeID, date engine.WorkDate) ([]store.CorrectionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []store.CorrectionRecord
	for _, r := range m.corrections {
		if r.EmployeeID == employeeID && r.Date.Equal(date) {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *Memory) ListPendingCorrections(_ context.Context) ([]store.CorrectionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []store.CorrectionRecord
	for _, r := range m.corrections {
		if r.State == engine.ApprovalPending {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// ApproveCorrection flips the state and stales the matching punch cache
// in one critical section.
func (m *Memory) ApproveCorrection(_ context.Context, id, reviewedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.corrections[id]
	if !ok {
		return store.ErrNotFound
	}

	now := time.Now().UTC()
	r.State = engine.ApprovalApproved
	r.ReviewedBy = reviewedBy
	r.ReviewedAt = &now
	m.corrections[id] = r

	k := punchKey{EmployeeID: r.EmployeeID, Date: r.Date}
	if punch, ok := m.punches[k]; ok {
		punch.Computed = false
		punch.UpdatedAt = now
		m.punches[k] = punch
	}
	return nil
}

func (m *Memory) RejectCorrection(_ context.Context, id, reviewedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.corrections[id]
	if !ok {
		return store.ErrNotFound
	}

	now := time.Now().UTC()
	r.State = engine.ApprovalRejected
	r.ReviewedBy = reviewedBy
	r.ReviewedAt = &now
	m.corrections[id] = r
	return nil
}
