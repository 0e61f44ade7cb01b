/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements store.Store (punches, schedules, assignments, holidays,
  absences, corrections) using SQLite. In production the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  punches:     One row per employee+date with the premium cache columns
  schedules:   Schedule headers with the weekly definition as JSON
  assignments: Employee-to-schedule links with date ranges
  holidays:    Calendar holidays (workable flag)
  absences:    Absence requests with approval state
  corrections: Punch corrections with approval trail

PREMIUM CACHE:
  punches.computed marks the cached premium breakdown fresh. Approving
  a correction clears the flag in the same database transaction, so the
  recompute worker always sees the stale row.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better
  concurrency: multiple readers don't block, single writer at a time.

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - store/store.go: Interface definitions
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/engine"
	"github.com/warp/attendance-engine/store"
)

// Store implements store.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Punches: one row per employee+date, with the premium cache
	CREATE TABLE IF NOT EXISTS punches (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		entry TEXT,
		exit TEXT,
		lunch_start TEXT,
		lunch_end TEXT,
		day_overtime_hours TEXT NOT NULL DEFAULT '0',
		night_overtime_hours TEXT NOT NULL DEFAULT '0',
		night_ordinary_hours TEXT NOT NULL DEFAULT '0',
		computed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(employee_id, date)
	);

	CREATE INDEX IF NOT EXISTS idx_punches_employee_date
		ON punches(employee_id, date);
	-- Recompute worker hot path
	CREATE INDEX IF NOT EXISTS idx_punches_stale
		ON punches(computed, updated_at) WHERE computed = FALSE;

	-- Schedules: header plus the weekly definition as JSON
	CREATE TABLE IF NOT EXISTS schedules (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		site_id TEXT NOT NULL DEFAULT '',
		compensation_allowed BOOLEAN NOT NULL DEFAULT FALSE,
		definition_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Assignments: employee-to-schedule over a date range
	CREATE TABLE IF NOT EXISTS assignments (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		schedule_id TEXT NOT NULL,
		date_from TEXT NOT NULL,
		date_to TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_assignments_employee
		ON assignments(employee_id, date_from);

	-- Holidays
	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		workable BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL,
		UNIQUE(date, name)
	);

	CREATE INDEX IF NOT EXISTS idx_holidays_date ON holidays(date);

	-- Absences
	CREATE TABLE IF NOT EXISTS absences (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		date_from TEXT NOT NULL,
		date_to TEXT NOT NULL,
		type TEXT NOT NULL,
		state TEXT NOT NULL DEFAULT 'pending',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_absences_employee
		ON absences(employee_id, date_from, date_to);

	-- Corrections
	CREATE TABLE IF NOT EXISTS corrections (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		kind TEXT NOT NULL,
		requested_time TEXT NOT NULL,
		reason TEXT,
		state TEXT NOT NULL DEFAULT 'pending',
		reviewed_by TEXT,
		reviewed_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_corrections_employee_date
		ON corrections(employee_id, date);
	CREATE INDEX IF NOT EXISTS idx_corrections_state
		ON corrections(state);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PUNCH STORE
// =============================================================================

// SavePunch upserts the punch for the record's employee+date. Punch
// writes always stale the premium cache.
func (s *Store) SavePunch(ctx context.Context, r store.PunchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = store.NewID()
	}
	now := time.Now().UTC().Format(time.RFC3339)

	query := `
		INSERT INTO punches
		(id, employee_id, date, entry, exit, lunch_start, lunch_end,
		 day_overtime_hours, night_overtime_hours, night_ordinary_hours,
		 computed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, '0', '0', '0', FALSE, ?, ?)
		ON CONFLICT(employee_id, date) DO UPDATE SET
			entry = excluded.entry,
			exit = excluded.exit,
			lunch_start = excluded.lunch_start,
			lunch_end = excluded.lunch_end,
			computed = FALSE,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		r.ID, string(r.EmployeeID), r.Date.String(),
		nullTime(r.Entry), nullTime(r.Exit),
		nullTime(r.LunchStart), nullTime(r.LunchEnd),
		now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save punch: %w", err)
	}
	return nil
}

// GetPunch returns the punch for employee+date.
func (s *Store) GetPunch(ctx context.Context, employeeID engine.EmployeeID, date engine.WorkDate) (*store.PunchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := punchSelect + " WHERE employee_id = ? AND date = ?"
	records, err := s.queryPunches(ctx, query, string(employeeID), date.String())
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, store.ErrNotFound
	}
	return &records[0], nil
}

// ListPunches returns the employee's punches within [from, to].
func (s *Store) ListPunches(ctx context.Context, employeeID engine.EmployeeID, from, to engine.WorkDate) ([]store.PunchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := punchSelect + `
		WHERE employee_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`
	return s.queryPunches(ctx, query, string(employeeID), from.String(), to.String())
}

// ListStale returns punches whose premium cache needs recomputation.
func (s *Store) ListStale(ctx context.Context, limit int) ([]store.PunchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := punchSelect + `
		WHERE computed = FALSE
		ORDER BY updated_at ASC
		LIMIT ?`
	return s.queryPunches(ctx, query, limit)
}

// SavePremiums writes the cache columns and marks the punch computed.
func (s *Store) SavePremiums(ctx context.Context, punchID string, p engine.PremiumBreakdown) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE punches SET
			day_overtime_hours = ?,
			night_overtime_hours = ?,
			night_ordinary_hours = ?,
			computed = TRUE,
			updated_at = ?
		WHERE id = ?
	`

	res, err := s.db.ExecContext(ctx, query,
		p.DayOvertimeHours.Value.String(),
		p.NightOvertimeHours.Value.String(),
		p.NightOrdinaryHours.Value.String(),
		time.Now().UTC().Format(time.RFC3339),
		punchID,
	)
	if err != nil {
		return fmt.Errorf("failed to save premiums: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

const punchSelect = `
	SELECT id, employee_id, date, entry, exit, lunch_start, lunch_end,
	       day_overtime_hours, night_overtime_hours, night_ordinary_hours,
	       computed, created_at, updated_at
	FROM punches`

func (s *Store) queryPunches(ctx context.Context, query string, args ...any) ([]store.PunchRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query punches: %w", err)
	}
	defer rows.Close()

	var records []store.PunchRecord
	for rows.Next() {
		r, err := scanPunch(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func scanPunch(rows *sql.Rows) (store.PunchRecord, error) {
	var (
		r                        store.PunchRecord
		employeeID, date         string
		entry, exit              sql.NullString
		lunchStart, lunchEnd     sql.NullString
		dayOT, nightOT, nightOrd string
		createdAt, updatedAt     string
	)

	err := rows.Scan(
		&r.ID, &employeeID, &date, &entry, &exit, &lunchStart, &lunchEnd,
		&dayOT, &nightOT, &nightOrd, &r.Computed, &createdAt, &updatedAt,
	)
	if err != nil {
		return r, fmt.Errorf("failed to scan punch: %w", err)
	}

	r.EmployeeID = engine.EmployeeID(employeeID)
	r.Date, _ = engine.ParseWorkDate(date)
	r.Entry = parseTimePtr(entry)
	r.Exit = parseTimePtr(exit)
	r.LunchStart = parseTimePtr(lunchStart)
	r.LunchEnd = parseTimePtr(lunchEnd)
	r.DayOvertimeHours = parseHours(dayOT)
	r.NightOvertimeHours = parseHours(nightOT)
	r.NightOrdinaryHours = parseHours(nightOrd)
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return r, nil
}

// =============================================================================
// SCHEDULE STORE
// =============================================================================

// SaveSchedule upserts a schedule record.
func (s *Store) SaveSchedule(ctx context.Context, r store.ScheduleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	query := `
		INSERT INTO schedules
		(id, name, active, site_id, compensation_allowed, definition_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			active = excluded.active,
			site_id = excluded.site_id,
			compensation_allowed = excluded.compensation_allowed,
			definition_json = excluded.definition_json,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		string(r.ID), r.Name, r.Active, string(r.SiteID),
		r.CompensationAllowed, r.DefinitionJSON, now, now,
	)
	return err
}

// GetSchedule retrieves a schedule by ID.
func (s *Store) GetSchedule(ctx context.Context, id engine.ScheduleID) (*store.ScheduleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		r                    store.ScheduleRecord
		scheduleID, siteID   string
		createdAt, updatedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, active, site_id, compensation_allowed, definition_json, created_at, updated_at
		 FROM schedules WHERE id = ?`, string(id),
	).Scan(&scheduleID, &r.Name, &r.Active, &siteID, &r.CompensationAllowed,
		&r.DefinitionJSON, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	r.ID = engine.ScheduleID(scheduleID)
	r.SiteID = engine.SiteID(siteID)
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &r, nil
}

// ListSchedules returns all schedules.
func (s *Store) ListSchedules(ctx context.Context) ([]store.ScheduleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, active, site_id, compensation_allowed, definition_json, created_at, updated_at
		 FROM schedules ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []store.ScheduleRecord
	for rows.Next() {
		var (
			r                    store.ScheduleRecord
			scheduleID, siteID   string
			createdAt, updatedAt string
		)
		if err := rows.Scan(&scheduleID, &r.Name, &r.Active, &siteID,
			&r.CompensationAllowed, &r.DefinitionJSON, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		r.ID = engine.ScheduleID(scheduleID)
		r.SiteID = engine.SiteID(siteID)
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

// DeleteSchedule removes a schedule.
func (s *Store) DeleteSchedule(ctx context.Context, id engine.ScheduleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM schedules WHERE id = ?", string(id))
	return err
}

// SaveAssignment upserts an assignment record.
func (s *Store) SaveAssignment(ctx context.Context, r store.AssignmentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = store.NewID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	var dateTo *string
	if r.To != nil {
		t := r.To.String()
		dateTo = &t
	}

	query := `
		INSERT INTO assignments (id, employee_id, schedule_id, date_from, date_to, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			schedule_id = excluded.schedule_id,
			date_from = excluded.date_from,
			date_to = excluded.date_to
	`

	_, err := s.db.ExecContext(ctx, query,
		r.ID, string(r.EmployeeID), string(r.ScheduleID),
		r.From.String(), dateTo, r.CreatedAt.Format(time.RFC3339),
	)
	return err
}

// ListAssignments returns all assignments for an employee.
func (s *Store) ListAssignments(ctx context.Context, employeeID engine.EmployeeID) ([]store.AssignmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, employee_id, schedule_id, date_from, date_to, created_at
		 FROM assignments WHERE employee_id = ? ORDER BY date_from ASC`,
		string(employeeID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []store.AssignmentRecord
	for rows.Next() {
		var (
			r                    store.AssignmentRecord
			empID, schedID, from string
			dateTo               sql.NullString
			createdAt            string
		)
		if err := rows.Scan(&r.ID, &empID, &schedID, &from, &dateTo, &createdAt); err != nil {
			return nil, err
		}
		r.EmployeeID = engine.EmployeeID(empID)
		r.ScheduleID = engine.ScheduleID(schedID)
		r.From, _ = engine.ParseWorkDate(from)
		if dateTo.Valid {
			d, _ := engine.ParseWorkDate(dateTo.String)
			r.To = &d
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

// DeleteAssignment removes an assignment.
func (s *Store) DeleteAssignment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM assignments WHERE id = ?", id)
	return err
}

// =============================================================================
// CALENDAR STORE
// =============================================================================

// SaveHoliday upserts a holiday.
func (s *Store) SaveHoliday(ctx context.Context, r store.HolidayRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = store.NewID()
	}

	query := `
		INSERT INTO holidays (id, date, name, workable, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date, name) DO UPDATE SET
			workable = excluded.workable
	`

	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.Date.String(), r.Name, r.Workable,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetHoliday returns the holiday on a date, or store.ErrNotFound.
func (s *Store) GetHoliday(ctx context.Context, date engine.WorkDate) (*store.HolidayRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		r                store.HolidayRecord
		dateStr, created string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, date, name, workable, created_at FROM holidays WHERE date = ? LIMIT 1",
		date.String(),
	).Scan(&r.ID, &dateStr, &r.Name, &r.Workable, &created)

	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	r.Date, _ = engine.ParseWorkDate(dateStr)
	r.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &r, nil
}

// ListHolidays returns holidays within [from, to].
func (s *Store) ListHolidays(ctx context.Context, from, to engine.WorkDate) ([]store.HolidayRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, name, workable, created_at FROM holidays
		 WHERE date >= ? AND date <= ? ORDER BY date ASC`,
		from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []store.HolidayRecord
	for rows.Next() {
		var (
			r                store.HolidayRecord
			dateStr, created string
		)
		if err := rows.Scan(&r.ID, &dateStr, &r.Name, &r.Workable, &created); err != nil {
			return nil, err
		}
		r.Date, _ = engine.ParseWorkDate(dateStr)
		r.CreatedAt, _ = time.Parse(time.RFC3339, created)
		records = append(records, r)
	}
	return records, rows.Err()
}

// DeleteHoliday removes a holiday.
func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM holidays WHERE id = ?", id)
	return err
}

// SaveAbsence upserts an absence.
func (s *Store) SaveAbsence(ctx context.Context, r store.AbsenceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = store.NewID()
	}
	if r.State == "" {
		r.State = engine.ApprovalPending
	}

	query := `
		INSERT INTO absences (id, employee_id, date_from, date_to, type, state, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date_from = excluded.date_from,
			date_to = excluded.date_to,
			type = excluded.type,
			state = excluded.state
	`

	_, err := s.db.ExecContext(ctx, query,
		r.ID, string(r.EmployeeID), r.From.String(), r.To.String(),
		r.Type, string(r.State), time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// ListAbsences returns the employee's absences overlapping [from, to].
func (s *Store) ListAbsences(ctx context.Context, employeeID engine.EmployeeID, from, to engine.WorkDate) ([]store.AbsenceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, employee_id, date_from, date_to, type, state, created_at
		 FROM absences
		 WHERE employee_id = ? AND date_to >= ? AND date_from <= ?
		 ORDER BY date_from ASC`,
		string(employeeID), from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []store.AbsenceRecord
	for rows.Next() {
		var (
			r                     store.AbsenceRecord
			empID, fromStr, toStr string
			state, created        string
		)
		if err := rows.Scan(&r.ID, &empID, &fromStr, &toStr, &r.Type, &state, &created); err != nil {
			return nil, err
		}
		r.EmployeeID = engine.EmployeeID(empID)
		r.From, _ = engine.ParseWorkDate(fromStr)
		r.To, _ = engine.ParseWorkDate(toStr)
		r.State = engine.ApprovalState(state)
		r.CreatedAt, _ = time.Parse(time.RFC3339, created)
		records = append(records, r)
	}
	return records, rows.Err()
}

// =============================================================================
// CORRECTION STORE
// =============================================================================

// SaveCorrection upserts a correction request.
func (s *Store) SaveCorrection(ctx context.Context, r store.CorrectionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = store.NewID()
	}
	if r.State == "" {
		r.State = engine.ApprovalPending
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO corrections
		(id, employee_id, date, kind, requested_time, reason, state, reviewed_by, reviewed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			requested_time = excluded.requested_time,
			reason = excluded.reason,
			state = excluded.state,
			reviewed_by = excluded.reviewed_by,
			reviewed_at = excluded.reviewed_at
	`

	_, err := s.db.ExecContext(ctx, query,
		r.ID, string(r.EmployeeID), r.Date.String(), string(r.Kind),
		r.RequestedTime.Format(time.RFC3339), r.Reason, string(r.State),
		r.ReviewedBy, nullTime(r.ReviewedAt),
		r.CreatedAt.Format(time.RFC3339),
	)
	return err
}

// GetCorrection retrieves a correction by ID.
func (s *Store) GetCorrection(ctx context.Context, id string) (*store.CorrectionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.queryCorrections(ctx, correctionSelect+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, store.ErrNotFound
	}
	return &records[0], nil
}

// ListCorrections returns all corrections for employee+date.
func (s *Store) ListCorrections(ctx context.Context, employeeID engine.EmployeeID, date engine.WorkDate) ([]store.CorrectionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := correctionSelect + `
		WHERE employee_id = ? AND date = ?
		ORDER BY created_at ASC`
	return s.queryCorrections(ctx, query, string(employeeID), date.String())
}

// ListPendingCorrections returns all corrections awaiting review.
func (s *Store) ListPendingCorrections(ctx context.Context) ([]store.CorrectionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := correctionSelect + `
		WHERE state = 'pending'
		ORDER BY created_at ASC`
	return s.queryCorrections(ctx, query)
}

// ApproveCorrection marks the correction approved and clears the
// matching punch's computed flag in one database transaction.
func (s *Store) ApproveCorrection(ctx context.Context, id, reviewedBy string) error {
	return s.review(ctx, id, reviewedBy, engine.ApprovalApproved)
}

// RejectCorrection marks the correction rejected.
func (s *Store) RejectCorrection(ctx context.Context, id, reviewedBy string) error {
	return s.review(ctx, id, reviewedBy, engine.ApprovalRejected)
}

func (s *Store) review(ctx context.Context, id, reviewedBy string, state engine.ApprovalState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var employeeID, date string
	err = tx.QueryRowContext(ctx,
		"SELECT employee_id, date FROM corrections WHERE id = ?", id,
	).Scan(&employeeID, &date)
	if err == sql.ErrNoRows {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.ExecContext(ctx,
		"UPDATE corrections SET state = ?, reviewed_by = ?, reviewed_at = ? WHERE id = ?",
		string(state), reviewedBy, now, id)
	if err != nil {
		return err
	}

	// An approved correction changes the day's inputs, so the cached
	// premiums are stale.
	if state == engine.ApprovalApproved {
		_, err = tx.ExecContext(ctx,
			"UPDATE punches SET computed = FALSE, updated_at = ? WHERE employee_id = ? AND date = ?",
			now, employeeID, date)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

const correctionSelect = `
	SELECT id, employee_id, date, kind, requested_time, reason, state,
	       reviewed_by, reviewed_at, created_at
	FROM corrections`

func (s *Store) queryCorrections(ctx context.Context, query string, args ...any) ([]store.CorrectionRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query corrections: %w", err)
	}
	defer rows.Close()

	var records []store.CorrectionRecord
	for rows.Next() {
		var (
			r                  store.CorrectionRecord
			empID, date, kind  string
			requested, state   string
			reason, reviewedBy sql.NullString
			reviewedAt         sql.NullString
			created            string
		)
		if err := rows.Scan(&r.ID, &empID, &date, &kind, &requested, &reason,
			&state, &reviewedBy, &reviewedAt, &created); err != nil {
			return nil, fmt.Errorf("failed to scan correction: %w", err)
		}

		r.EmployeeID = engine.EmployeeID(empID)
		r.Date, _ = engine.ParseWorkDate(date)
		r.Kind = engine.PunchKind(kind)
		r.RequestedTime, _ = time.Parse(time.RFC3339, requested)
		r.Reason = reason.String
		r.State = engine.ApprovalState(state)
		r.ReviewedBy = reviewedBy.String
		r.ReviewedAt = parseTimePtr(reviewedAt)
		r.CreatedAt, _ = time.Parse(time.RFC3339, created)
		records = append(records, r)
	}
	return records, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid || strings.TrimSpace(s.String) == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

func parseHours(s string) engine.Hours {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return engine.ZeroHours()
	}
	return engine.Hours{Value: v}
}
