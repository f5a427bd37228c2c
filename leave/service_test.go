package leave_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studentaffairs/leave-engine/engine"
	"github.com/studentaffairs/leave-engine/leave"
	"github.com/studentaffairs/leave-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// term 113-2: March 2025 dates resolve here.
var term113s2 = engine.Term{Year: 113, Semester: 2}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T) (*leave.Service, *memory.Memory) {
	t.Helper()
	mem := memory.New()
	mem.AddStudent(leave.Student{
		ID:         "S1130001",
		Name:       "Lin Wei",
		EnrolledAt: date(2024, time.September, 2),
	})
	mem.Enroll("S1130001", term113s2, engine.Course{
		ID: "CS101", Name: "Data Structures", Schedule: "(一)1234(三)12",
	})
	return leave.NewService(mem, mem, mem, nil), mem
}

// monday 2025-03-03 through wednesday 2025-03-05
func monToWed(startPeriod, endPeriod int) engine.Window {
	return engine.Window{
		Start:       date(2025, time.March, 3),
		End:         date(2025, time.March, 5),
		StartPeriod: startPeriod,
		EndPeriod:   endPeriod,
	}
}

// failingCourses wraps a directory with an injected fetch error.
type failingCourses struct{ err error }

func (f failingCourses) CoursesForStudent(context.Context, string, engine.Term) ([]engine.Course, error) {
	return nil, f.err
}

// =============================================================================
// COMPUTE HOURS / PREVIEW / SUBMIT AGREEMENT
// =============================================================================

func TestService_ComputeHours(t *testing.T) {
	svc, _ := newTestService(t)

	hours, err := svc.ComputeHours(context.Background(), "S1130001", monToWed(3, 1))
	require.NoError(t, err)
	assert.Equal(t, 3, hours)
}

func TestService_ComputeHours_UnknownStudentRejected(t *testing.T) {
	// An unknown student is an error, never a zero-hour estimate.
	svc, _ := newTestService(t)

	_, err := svc.ComputeHours(context.Background(), "NOBODY", monToWed(1, 0))
	assert.ErrorIs(t, err, leave.ErrStudentNotFound)
	assert.True(t, leave.IsClientError(err))
}

func TestService_Preview_GroupedByDate(t *testing.T) {
	svc, _ := newTestService(t)

	preview, err := svc.Preview(context.Background(), "S1130001", monToWed(3, 1))
	require.NoError(t, err)

	assert.Equal(t, term113s2, preview.Term)
	require.Len(t, preview.Days, 2)

	monday := preview.Days[0]
	assert.Equal(t, date(2025, time.March, 3), monday.Date)
	assert.Equal(t, "一", monday.Weekday)
	require.Len(t, monday.Courses, 1)
	assert.Equal(t, "CS101", monday.Courses[0].CourseID)
	assert.Equal(t, "Data Structures", monday.Courses[0].CourseName)
	assert.Equal(t, []int{3, 4}, monday.Courses[0].Periods)

	wednesday := preview.Days[1]
	assert.Equal(t, "三", wednesday.Weekday)
	assert.Equal(t, []int{1}, wednesday.Courses[0].Periods)
}

func TestService_Submit_EndToEnd(t *testing.T) {
	// GIVEN: one course (一)1234(三)12, leave Mon-Wed periods 3..1
	// WHEN: submitting
	// THEN: 3 hours, two child records, term derived from the start date
	svc, mem := newTestService(t)

	req := &leave.LeaveRecord{
		StudentID:   "S1130001",
		StartDate:   date(2025, time.March, 3),
		EndDate:     date(2025, time.March, 5),
		StartPeriod: 3,
		EndPeriod:   1,
		LeaveType:   "sick",
		Reason:      "flu",
	}

	result, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, term113s2, result.Term)
	assert.Equal(t, 3, result.Hours)
	assert.Equal(t, 2, result.AffectedCourses)
	assert.NotZero(t, result.LeaveID)

	all := mem.AllRecords()
	require.Len(t, all, 3) // primary + two children

	primary := all[0]
	assert.True(t, primary.IsPrimary())
	assert.Equal(t, leave.ProgressStudentSubmitted, primary.Progress)
	assert.Equal(t, 3, primary.Hours)
	assert.Equal(t, 113, primary.AcademicYear)
	assert.Equal(t, 2, primary.Semester)
	assert.False(t, primary.AppliedAt.IsZero())

	mondayChild := all[1]
	assert.Equal(t, "CS101", mondayChild.CourseID)
	assert.Equal(t, date(2025, time.March, 3), mondayChild.StartDate)
	assert.Equal(t, mondayChild.StartDate, mondayChild.EndDate)
	assert.Equal(t, 3, mondayChild.StartPeriod)
	assert.Equal(t, 4, mondayChild.EndPeriod)
	assert.Equal(t, "sick", mondayChild.LeaveType)

	wednesdayChild := all[2]
	assert.Equal(t, 1, wednesdayChild.StartPeriod)
	assert.Equal(t, 1, wednesdayChild.EndPeriod)
}

func TestService_Submit_WeekendProducesPrimaryOnly(t *testing.T) {
	svc, mem := newTestService(t)

	req := &leave.LeaveRecord{
		StudentID:   "S1130001",
		StartDate:   date(2025, time.March, 8), // Saturday
		EndDate:     date(2025, time.March, 9), // Sunday
		StartPeriod: 1,
		LeaveType:   "personal",
	}

	result, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Hours)
	assert.Equal(t, 0, result.AffectedCourses)
	assert.Len(t, mem.AllRecords(), 1)
}

func TestService_OperationsAgree(t *testing.T) {
	// The estimate, the preview, and the submission must report the same
	// hour total for the same request.
	svc, _ := newTestService(t)
	ctx := context.Background()
	w := monToWed(3, 1)

	hours, err := svc.ComputeHours(ctx, "S1130001", w)
	require.NoError(t, err)

	preview, err := svc.Preview(ctx, "S1130001", w)
	require.NoError(t, err)
	previewHours := 0
	for _, day := range preview.Days {
		for _, c := range day.Courses {
			previewHours += len(c.Periods)
		}
	}

	result, err := svc.Submit(ctx, &leave.LeaveRecord{
		StudentID:   "S1130001",
		StartDate:   w.Start,
		EndDate:     w.End,
		StartPeriod: w.StartPeriod,
		EndPeriod:   w.EndPeriod,
		LeaveType:   "sick",
	})
	require.NoError(t, err)

	assert.Equal(t, hours, previewHours)
	assert.Equal(t, hours, result.Hours)
}

// =============================================================================
// VALIDATION AND FAILURE PATHS
// =============================================================================

func TestService_Submit_ReversedWindowRejected(t *testing.T) {
	svc, mem := newTestService(t)

	_, err := svc.Submit(context.Background(), &leave.LeaveRecord{
		StudentID:   "S1130001",
		StartDate:   date(2025, time.March, 5),
		EndDate:     date(2025, time.March, 3),
		StartPeriod: 1,
		LeaveType:   "sick",
	})

	assert.ErrorIs(t, err, leave.ErrInvalidWindow)
	assert.True(t, leave.IsClientError(err))
	assert.Empty(t, mem.AllRecords())
}

func TestService_Submit_UnknownStudentRejected(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Submit(context.Background(), &leave.LeaveRecord{
		StudentID:   "NOBODY",
		StartDate:   date(2025, time.March, 3),
		EndDate:     date(2025, time.March, 3),
		StartPeriod: 1,
		LeaveType:   "sick",
	})

	assert.ErrorIs(t, err, leave.ErrStudentNotFound)
}

func TestService_Submit_CourseFetchFailureIsRaised(t *testing.T) {
	// A directory fault must never be treated as "zero courses".
	mem := memory.New()
	mem.AddStudent(leave.Student{ID: "S1130001", EnrolledAt: date(2024, time.September, 2)})
	svc := leave.NewService(failingCourses{err: errors.New("directory down")}, mem, mem, nil)

	_, err := svc.Submit(context.Background(), &leave.LeaveRecord{
		StudentID:   "S1130001",
		StartDate:   date(2025, time.March, 3),
		EndDate:     date(2025, time.March, 3),
		StartPeriod: 1,
		LeaveType:   "sick",
	})

	assert.ErrorIs(t, err, leave.ErrCourseFetch)
	assert.False(t, leave.IsClientError(err))
	assert.Empty(t, mem.AllRecords())
}

func TestService_Submit_StoreFailureLeavesNothingBehind(t *testing.T) {
	svc, mem := newTestService(t)
	mem.FailSubmit = errors.New("disk full")

	_, err := svc.Submit(context.Background(), &leave.LeaveRecord{
		StudentID:   "S1130001",
		StartDate:   date(2025, time.March, 3),
		EndDate:     date(2025, time.March, 5),
		StartPeriod: 1,
		LeaveType:   "sick",
	})

	assert.ErrorIs(t, err, leave.ErrSubmitFailed)
	assert.Empty(t, mem.AllRecords())

	// Retrying after the fault clears succeeds.
	mem.FailSubmit = nil
	_, err = svc.Submit(context.Background(), &leave.LeaveRecord{
		StudentID:   "S1130001",
		StartDate:   date(2025, time.March, 3),
		EndDate:     date(2025, time.March, 5),
		StartPeriod: 1,
		LeaveType:   "sick",
	})
	require.NoError(t, err)
}

// =============================================================================
// HISTORY LISTING
// =============================================================================

func TestService_RecordsForTerm_RecomputesHours(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, &leave.LeaveRecord{
		StudentID:   "S1130001",
		StartDate:   date(2025, time.March, 3),
		EndDate:     date(2025, time.March, 5),
		StartPeriod: 3,
		EndPeriod:   1,
		LeaveType:   "sick",
	})
	require.NoError(t, err)

	records, err := svc.RecordsForTerm(ctx, "S1130001", term113s2)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].IsPrimary())
	assert.Equal(t, 3, records[0].Hours)
}

func TestService_RecordsByTerm_EnumeratesFromEnrollment(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, &leave.LeaveRecord{
		StudentID:   "S1130001",
		StartDate:   date(2025, time.March, 3),
		EndDate:     date(2025, time.March, 3),
		StartPeriod: 1,
		LeaveType:   "sick",
	})
	require.NoError(t, err)

	byTerm, err := svc.RecordsByTerm(ctx, "S1130001")
	require.NoError(t, err)

	// Enrolled September 2024 (term 113-1); every term up to today is
	// reported, empty ones included.
	require.NotEmpty(t, byTerm)
	assert.Equal(t, engine.Term{Year: 113, Semester: 1}, byTerm[0].Term)
	assert.Empty(t, byTerm[0].Records)

	require.True(t, len(byTerm) >= 2)
	assert.Equal(t, term113s2, byTerm[1].Term)
	assert.Len(t, byTerm[1].Records, 1)
}

func TestService_RecordsByTerm_UnknownStudent(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.RecordsByTerm(context.Background(), "NOBODY")
	assert.ErrorIs(t, err, leave.ErrStudentNotFound)
}
