/*
Package sqlite provides the SQLite-backed implementation of the leave
storage and directory interfaces.

PURPOSE:
  Implements leave.Store, leave.CourseDirectory and leave.StudentDirectory
  on database/sql. In production the same patterns apply to SQL Server or
  PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  students:       student directory (enrollment date bounds term history)
  courses:        per-term course catalog with the raw schedule string
  course_records: student-to-course enrollment per term
  leave_records:  primary applications and their per-course children

ATOMICITY:
  SubmitLeave writes the primary record and all children inside one
  database transaction. A failed child insert rolls back the primary, so
  a retried submission never sees half a write.

CHECK CONSTRAINTS:
  The schema enforces the period range and the workflow-progress enum at
  the database level; a violating row aborts the whole submission.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety in-process. SQLite is opened with
  WAL (Write-Ahead Logging) so readers don't block on the single writer.

USAGE:
  store, err := sqlite.New("./data/leave.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - leave/types.go: interface definitions
  - store/memory:   in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/studentaffairs/leave-engine/engine"
	"github.com/studentaffairs/leave-engine/leave"
)

const dateLayout = "2006-01-02"

// Store implements the persistence and directory interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a store backed by the given database path. Use ":memory:"
// for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS students (
		student_id      TEXT PRIMARY KEY,
		name            TEXT NOT NULL,
		phone_number    TEXT,
		email           TEXT,
		enrollment_date TEXT NOT NULL,
		created_at      TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS courses (
		course_id     TEXT NOT NULL,
		academic_year INTEGER NOT NULL,
		semester      INTEGER NOT NULL CHECK (semester IN (1, 2)),
		name          TEXT,
		schedule      TEXT,
		PRIMARY KEY (course_id, academic_year, semester)
	);

	CREATE TABLE IF NOT EXISTS course_records (
		student_id    TEXT NOT NULL REFERENCES students(student_id),
		course_id     TEXT NOT NULL,
		academic_year INTEGER NOT NULL,
		semester      INTEGER NOT NULL,
		PRIMARY KEY (student_id, course_id, academic_year, semester)
	);

	CREATE INDEX IF NOT EXISTS idx_course_records_term
		ON course_records(student_id, academic_year, semester);

	CREATE TABLE IF NOT EXISTS leave_records (
		leave_id      INTEGER PRIMARY KEY AUTOINCREMENT,
		student_id    TEXT NOT NULL REFERENCES students(student_id),
		course_id     TEXT,
		start_date    TEXT NOT NULL,
		end_date      TEXT NOT NULL,
		start_period  INTEGER NOT NULL CHECK (start_period BETWEEN 1 AND 12),
		end_period    INTEGER CHECK (end_period IS NULL OR end_period BETWEEN 1 AND 12),
		academic_year INTEGER NOT NULL,
		semester      INTEGER NOT NULL,
		leave_type    TEXT NOT NULL,
		reason        TEXT,
		phone_number  TEXT,
		progress      TEXT NOT NULL CHECK (progress IN
			('student_submitted', 'advisor_submitted', 'officer_submitted', 'closed')),
		applied_at    TEXT NOT NULL,
		hours         INTEGER,
		certificate   BLOB
	);

	-- Hot path: term-scoped listing of primary records.
	CREATE INDEX IF NOT EXISTS idx_leave_records_student_term
		ON leave_records(student_id, academic_year, semester);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// STUDENT DIRECTORY (leave.StudentDirectory interface)
// =============================================================================

// SaveStudent inserts or updates a student.
func (s *Store) SaveStudent(ctx context.Context, st leave.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO students (student_id, name, phone_number, email, enrollment_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(student_id) DO UPDATE SET
			name = excluded.name,
			phone_number = excluded.phone_number,
			email = excluded.email,
			enrollment_date = excluded.enrollment_date
	`

	_, err := s.db.ExecContext(ctx, query,
		st.ID, st.Name, st.PhoneNumber, st.EmailAddress,
		st.EnrolledAt.Format(dateLayout),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save student: %w", err)
	}
	return nil
}

// GetStudent returns a student by ID, or nil when absent.
func (s *Store) GetStudent(ctx context.Context, id string) (*leave.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		st         leave.Student
		enrolledAt string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT student_id, name, COALESCE(phone_number, ''), COALESCE(email, ''), enrollment_date FROM students WHERE student_id = ?",
		id,
	).Scan(&st.ID, &st.Name, &st.PhoneNumber, &st.EmailAddress, &enrolledAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	st.EnrolledAt, err = time.Parse(dateLayout, enrolledAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse enrollment date: %w", err)
	}
	return &st, nil
}

// =============================================================================
// COURSE DIRECTORY (leave.CourseDirectory interface)
// =============================================================================

// SaveCourse inserts or updates a course in a term's catalog.
func (s *Store) SaveCourse(ctx context.Context, term engine.Term, c engine.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO courses (course_id, academic_year, semester, name, schedule)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(course_id, academic_year, semester) DO UPDATE SET
			name = excluded.name,
			schedule = excluded.schedule
	`

	_, err := s.db.ExecContext(ctx, query, c.ID, term.Year, term.Semester, c.Name, c.Schedule)
	if err != nil {
		return fmt.Errorf("failed to save course: %w", err)
	}
	return nil
}

// Enroll records that a student takes a course in a term.
func (s *Store) Enroll(ctx context.Context, studentID, courseID string, term engine.Term) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT OR IGNORE INTO course_records (student_id, course_id, academic_year, semester)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query, studentID, courseID, term.Year, term.Semester)
	if err != nil {
		return fmt.Errorf("failed to enroll student: %w", err)
	}
	return nil
}

// CoursesForStudent returns the student's enrolled courses for a term.
// Courses without a schedule string are filtered out at the query level:
// they can never produce a conflict.
func (s *Store) CoursesForStudent(ctx context.Context, studentID string, term engine.Term) ([]engine.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT c.course_id, COALESCE(c.name, ''), c.schedule
		FROM course_records cr
		JOIN courses c
		  ON c.course_id = cr.course_id
		 AND c.academic_year = cr.academic_year
		 AND c.semester = cr.semester
		WHERE cr.student_id = ?
		  AND cr.academic_year = ?
		  AND cr.semester = ?
		  AND c.schedule IS NOT NULL AND c.schedule != ''
		ORDER BY c.course_id
	`

	rows, err := s.db.QueryContext(ctx, query, studentID, term.Year, term.Semester)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	var courses []engine.Course
	for rows.Next() {
		var c engine.Course
		if err := rows.Scan(&c.ID, &c.Name, &c.Schedule); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// =============================================================================
// LEAVE STORE (leave.Store interface)
// =============================================================================

// SubmitLeave writes the primary record and its children atomically and
// returns the primary's generated ID.
func (s *Store) SubmitLeave(ctx context.Context, primary *leave.LeaveRecord, children []leave.LeaveRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := insertRecord(ctx, tx, *primary)
	if err != nil {
		return 0, err
	}

	childIDs := make([]int64, len(children))
	for i := range children {
		childIDs[i], err = insertRecord(ctx, tx, children[i])
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit submission: %w", err)
	}

	// IDs become visible to the caller only once the rows are durable.
	primary.ID = id
	for i := range children {
		children[i].ID = childIDs[i]
	}
	return id, nil
}

func insertRecord(ctx context.Context, tx *sql.Tx, r leave.LeaveRecord) (int64, error) {
	query := `
		INSERT INTO leave_records
		(student_id, course_id, start_date, end_date, start_period, end_period,
		 academic_year, semester, leave_type, reason, phone_number, progress,
		 applied_at, hours, certificate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := tx.ExecContext(ctx, query,
		r.StudentID,
		nullString(r.CourseID),
		r.StartDate.Format(dateLayout),
		r.EndDate.Format(dateLayout),
		r.StartPeriod,
		nullInt(r.EndPeriod),
		r.AcademicYear,
		r.Semester,
		r.LeaveType,
		r.Reason,
		r.PhoneNumber,
		string(r.Progress),
		r.AppliedAt.UTC().Format(time.RFC3339),
		r.Hours,
		r.Certificate,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert leave record: %w", err)
	}
	return res.LastInsertId()
}

// LeaveRecordsForTerm returns the student's primary records for a term,
// oldest first. Children are excluded from listings.
func (s *Store) LeaveRecordsForTerm(ctx context.Context, studentID string, term engine.Term) ([]leave.LeaveRecord, error) {
	return s.queryRecords(ctx, studentID, term, true)
}

// ChildRecords returns the per-course child rows for a term, for
// inspection and admin views.
func (s *Store) ChildRecords(ctx context.Context, studentID string, term engine.Term) ([]leave.LeaveRecord, error) {
	return s.queryRecords(ctx, studentID, term, false)
}

func (s *Store) queryRecords(ctx context.Context, studentID string, term engine.Term, primaryOnly bool) ([]leave.LeaveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filter := "AND (course_id IS NULL OR course_id = '')"
	if !primaryOnly {
		filter = "AND course_id IS NOT NULL AND course_id != ''"
	}

	query := fmt.Sprintf(`
		SELECT leave_id, student_id, COALESCE(course_id, ''), start_date, end_date,
		       start_period, end_period, academic_year, semester, leave_type,
		       COALESCE(reason, ''), COALESCE(phone_number, ''), progress,
		       applied_at, COALESCE(hours, 0), certificate
		FROM leave_records
		WHERE student_id = ?
		  AND academic_year = ?
		  AND semester = ?
		  %s
		ORDER BY start_date ASC, leave_id ASC
	`, filter)

	rows, err := s.db.QueryContext(ctx, query, studentID, term.Year, term.Semester)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave records: %w", err)
	}
	defer rows.Close()

	var records []leave.LeaveRecord
	for rows.Next() {
		r, err := scanLeaveRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func scanLeaveRecord(rows *sql.Rows) (leave.LeaveRecord, error) {
	var (
		r         leave.LeaveRecord
		startDate string
		endDate   string
		endPeriod sql.NullInt64
		progress  string
		appliedAt string
	)

	err := rows.Scan(
		&r.ID, &r.StudentID, &r.CourseID, &startDate, &endDate,
		&r.StartPeriod, &endPeriod, &r.AcademicYear, &r.Semester, &r.LeaveType,
		&r.Reason, &r.PhoneNumber, &progress, &appliedAt, &r.Hours, &r.Certificate,
	)
	if err != nil {
		return r, fmt.Errorf("failed to scan leave record: %w", err)
	}

	if r.StartDate, err = time.Parse(dateLayout, startDate); err != nil {
		return r, fmt.Errorf("failed to parse start date: %w", err)
	}
	if r.EndDate, err = time.Parse(dateLayout, endDate); err != nil {
		return r, fmt.Errorf("failed to parse end date: %w", err)
	}
	if endPeriod.Valid {
		r.EndPeriod = int(endPeriod.Int64)
	}
	r.Progress = leave.Progress(progress)
	r.AppliedAt, _ = time.Parse(time.RFC3339, appliedAt)
	return r, nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt(n int) sql.NullInt64 {
	if n == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(n), Valid: true}
}
