/*
Package leave implements leave-request submission on top of the engine.

PURPOSE:
  Orchestrates the pure conflict engine against the external collaborators:
  the enrollment/course directory (which courses does this student take in
  the term), the student directory (does the student exist, when did they
  enroll), and the transactional store that persists one primary leave
  record plus its per-course child records as a single unit.

OPERATIONS:
  ComputeHours:   total affected periods for a request
  Preview:        grouped-by-date view of affected courses
  Submit:         materialize and persist primary + children atomically
  RecordsByTerm:  per-term leave history from the enrollment date

RECORD SHAPE:
  A submission produces one primary record (CourseID empty) and one child
  record per affected (course, date) carrying min/max affected period and
  a copy of the parent's metadata. Listings show primary records only.

SEE ALSO:
  - engine:       the pure computation this package drives
  - store/sqlite: the production Store implementation
  - store/memory: in-memory Store for tests and dev
*/
package leave

import (
	"context"
	"time"

	"github.com/studentaffairs/leave-engine/engine"
)

// =============================================================================
// WORKFLOW PROGRESS
// =============================================================================

// Progress is the workflow state of a leave record. Submissions always
// start at ProgressStudentSubmitted; later transitions belong to the
// advisor/officer workflow, not to this package.
type Progress string

const (
	ProgressStudentSubmitted Progress = "student_submitted"
	ProgressAdvisorSubmitted Progress = "advisor_submitted"
	ProgressOfficerSubmitted Progress = "officer_submitted"
	ProgressClosed           Progress = "closed"
)

// Valid reports whether p is one of the workflow states.
func (p Progress) Valid() bool {
	switch p {
	case ProgressStudentSubmitted, ProgressAdvisorSubmitted, ProgressOfficerSubmitted, ProgressClosed:
		return true
	}
	return false
}

// =============================================================================
// RECORDS
// =============================================================================

// LeaveRecord is one row of the leave ledger: either a primary record
// (CourseID empty, spans the whole requested window) or a child record
// (CourseID set, single date, min/max affected period for that course).
type LeaveRecord struct {
	ID        int64
	StudentID string
	CourseID  string // empty on primary records

	StartDate   time.Time
	EndDate     time.Time
	StartPeriod int
	EndPeriod   int // 0 = to the last period of the day

	AcademicYear int
	Semester     int

	LeaveType   string
	Reason      string
	PhoneNumber string
	Progress    Progress
	AppliedAt   time.Time

	// Hours is the computed total at submission time; primary records only.
	Hours int

	// Certificate is an optional binary attachment; primary records only.
	Certificate []byte
}

// IsPrimary reports whether the record is the parent application rather
// than a per-course child.
func (r LeaveRecord) IsPrimary() bool { return r.CourseID == "" }

// Term returns the record's academic term.
func (r LeaveRecord) Term() engine.Term {
	return engine.Term{Year: r.AcademicYear, Semester: r.Semester}
}

// Window returns the engine window this record covers.
func (r LeaveRecord) Window() engine.Window {
	return engine.Window{
		Start:       r.StartDate,
		End:         r.EndDate,
		StartPeriod: r.StartPeriod,
		EndPeriod:   r.EndPeriod,
	}
}

// Student is the directory's view of a student, trimmed to what leave
// processing needs.
type Student struct {
	ID           string
	Name         string
	EnrolledAt   time.Time
	PhoneNumber  string
	EmailAddress string
}

// =============================================================================
// COLLABORATOR CONTRACTS
// =============================================================================

// CourseDirectory lists a student's enrolled courses for a term, with
// their raw schedule strings. Implementations return only what the term's
// enrollment says; filtering out unscheduled courses is the engine's job.
type CourseDirectory interface {
	CoursesForStudent(ctx context.Context, studentID string, term engine.Term) ([]engine.Course, error)
}

// StudentDirectory checks existence and enrollment data before the engine
// runs. A missing student is (nil, nil), not an error.
type StudentDirectory interface {
	GetStudent(ctx context.Context, id string) (*Student, error)
}

// Store persists leave records. SubmitLeave writes the primary record and
// all children as one atomic unit and returns the primary's generated ID;
// on any failure nothing is persisted and the caller may retry the whole
// submission.
type Store interface {
	SubmitLeave(ctx context.Context, primary *LeaveRecord, children []LeaveRecord) (int64, error)
	LeaveRecordsForTerm(ctx context.Context, studentID string, term engine.Term) ([]LeaveRecord, error)
}
