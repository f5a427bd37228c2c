/*
service.go - Leave-request operations over the conflict engine

PURPOSE:
  The three consumer operations (hours estimate, preview, submission) and
  the per-term history listing. All three consumers call the one
  engine.Aggregate implementation, so an edge case can never be handled
  differently between the estimate a student sees and the records that get
  persisted.

FLOW (Submit):
  1. Validate the window (reversed range / bad periods rejected here)
  2. Confirm the student exists
  3. Derive the academic term from the start date (never client-supplied)
  4. Fetch the term's enrolled courses (fetch failure is raised, not
     swallowed as "no courses")
  5. Aggregate conflicts, total the hours, materialize child records
  6. Persist primary + children in one transaction

SEE ALSO:
  - engine/aggregate.go: the shared conflict computation
  - materialize.go: bucket-to-record conversion
*/
package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/studentaffairs/leave-engine/engine"
)

// Service wires the engine to its collaborators.
type Service struct {
	courses  CourseDirectory
	students StudentDirectory
	store    Store
	log      *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewService creates a Service. A nil logger falls back to slog.Default.
func NewService(courses CourseDirectory, students StudentDirectory, store Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		courses:  courses,
		students: students,
		store:    store,
		log:      log,
		now:      time.Now,
	}
}

// =============================================================================
// VIEW TYPES
// =============================================================================

// CoursePreview is one affected course on one date.
type CoursePreview struct {
	CourseID   string
	CourseName string
	Periods    []int
}

// DayPreview groups the affected courses of a single calendar date.
type DayPreview struct {
	Date    time.Time
	Weekday string // weekday marker as used by the schedule format
	Courses []CoursePreview
}

// PreviewResult is the grouped-by-date view of a would-be submission.
type PreviewResult struct {
	Term engine.Term
	Days []DayPreview
}

// SubmitResult reports a successful submission.
type SubmitResult struct {
	LeaveID         int64
	Term            engine.Term
	Hours           int
	AffectedCourses int
}

// TermRecords is one term's primary leave records, possibly empty.
type TermRecords struct {
	Term    engine.Term
	Records []LeaveRecord
}

// =============================================================================
// OPERATIONS
// =============================================================================

// ComputeHours returns the total affected class periods for the window.
func (s *Service) ComputeHours(ctx context.Context, studentID string, w engine.Window) (int, error) {
	if !w.Valid() {
		return 0, ErrInvalidWindow
	}
	if err := s.requireStudent(ctx, studentID); err != nil {
		return 0, err
	}
	buckets, _, err := s.aggregate(ctx, studentID, w)
	if err != nil {
		return 0, err
	}
	return engine.TotalHours(buckets), nil
}

// Preview returns the affected courses of a would-be submission, grouped
// by date, without persisting anything.
func (s *Service) Preview(ctx context.Context, studentID string, w engine.Window) (*PreviewResult, error) {
	if !w.Valid() {
		return nil, ErrInvalidWindow
	}
	if err := s.requireStudent(ctx, studentID); err != nil {
		return nil, err
	}

	buckets, term, err := s.aggregate(ctx, studentID, w)
	if err != nil {
		return nil, err
	}

	result := &PreviewResult{Term: term}
	for _, b := range buckets {
		day := engine.DateOnly(b.Date)
		if n := len(result.Days); n == 0 || !result.Days[n-1].Date.Equal(day) {
			result.Days = append(result.Days, DayPreview{
				Date:    day,
				Weekday: engine.WeekdayLabel(day.Weekday()),
			})
		}
		last := &result.Days[len(result.Days)-1]
		last.Courses = append(last.Courses, CoursePreview{
			CourseID:   b.CourseID,
			CourseName: b.CourseName,
			Periods:    b.Periods,
		})
	}
	return result, nil
}

// Submit materializes and persists a leave application. The primary
// record and every per-course child are written as one unit; on error
// nothing was stored and the whole submission may be retried.
func (s *Service) Submit(ctx context.Context, req *LeaveRecord) (*SubmitResult, error) {
	w := req.Window()
	if !w.Valid() {
		return nil, ErrInvalidWindow
	}
	if err := s.requireStudent(ctx, req.StudentID); err != nil {
		return nil, err
	}

	buckets, term, err := s.aggregate(ctx, req.StudentID, w)
	if err != nil {
		return nil, err
	}

	req.AcademicYear = term.Year
	req.Semester = term.Semester
	req.Hours = engine.TotalHours(buckets)
	req.Progress = ProgressStudentSubmitted
	if req.AppliedAt.IsZero() {
		req.AppliedAt = s.now()
	}

	children := Materialize(req, buckets)

	id, err := s.store.SubmitLeave(ctx, req, children)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}

	s.log.Info("leave submitted",
		"student_id", req.StudentID,
		"leave_id", id,
		"academic_year", term.Year,
		"semester", term.Semester,
		"hours", req.Hours,
		"affected_courses", len(children))

	return &SubmitResult{
		LeaveID:         id,
		Term:            term,
		Hours:           req.Hours,
		AffectedCourses: len(children),
	}, nil
}

// RecordsForTerm lists the student's primary leave records for one term.
// Hours are recomputed from the current schedule data rather than trusted
// from the stored value.
func (s *Service) RecordsForTerm(ctx context.Context, studentID string, term engine.Term) ([]LeaveRecord, error) {
	if err := s.requireStudent(ctx, studentID); err != nil {
		return nil, err
	}
	return s.recordsForTerm(ctx, studentID, term)
}

// RecordsByTerm enumerates every term from the student's enrollment date
// through today and lists each term's primary records, empty terms
// included.
func (s *Service) RecordsByTerm(ctx context.Context, studentID string) ([]TermRecords, error) {
	student, err := s.students.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}

	var out []TermRecords
	for _, term := range engine.TermsBetween(student.EnrolledAt, s.now()) {
		records, err := s.recordsForTerm(ctx, studentID, term)
		if err != nil {
			return nil, err
		}
		out = append(out, TermRecords{Term: term, Records: records})
	}
	return out, nil
}

// =============================================================================
// INTERNALS
// =============================================================================

// aggregate is the single path to conflict computation: resolve the term
// from the window's start date, fetch that term's courses, run the engine.
func (s *Service) aggregate(ctx context.Context, studentID string, w engine.Window) ([]engine.CourseDayBucket, engine.Term, error) {
	term := engine.ResolveTerm(w.Start)

	courses, err := s.courses.CoursesForStudent(ctx, studentID, term)
	if err != nil {
		return nil, term, &CourseFetchError{
			StudentID: studentID,
			Year:      term.Year,
			Semester:  term.Semester,
			Err:       err,
		}
	}

	s.log.Debug("aggregating conflicts",
		"student_id", studentID,
		"academic_year", term.Year,
		"semester", term.Semester,
		"courses", len(courses))

	return engine.Aggregate(w, courses), term, nil
}

func (s *Service) recordsForTerm(ctx context.Context, studentID string, term engine.Term) ([]LeaveRecord, error) {
	records, err := s.store.LeaveRecordsForTerm(ctx, studentID, term)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return records, nil
	}

	courses, err := s.courses.CoursesForStudent(ctx, studentID, term)
	if err != nil {
		return nil, &CourseFetchError{
			StudentID: studentID,
			Year:      term.Year,
			Semester:  term.Semester,
			Err:       err,
		}
	}

	for i := range records {
		records[i].Hours = engine.TotalHours(engine.Aggregate(records[i].Window(), courses))
	}
	return records, nil
}

func (s *Service) requireStudent(ctx context.Context, id string) error {
	student, err := s.students.GetStudent(ctx, id)
	if err != nil {
		return err
	}
	if student == nil {
		return ErrStudentNotFound
	}
	return nil
}
