/*
errors.go - Error types for leave processing

PURPOSE:
  Sentinel errors for the conditions callers branch on, plus one
  structured error for collaborator fetch failures. HTTP handlers map
  these with errors.Is; see api/handlers.go.
*/
package leave

import (
	"errors"
	"fmt"
)

var (
	// ErrStudentNotFound is returned when the student directory has no
	// record for the requesting student.
	ErrStudentNotFound = errors.New("student not found")

	// ErrInvalidWindow is returned when the requested window is rejected
	// before the engine runs: reversed date range or out-of-range periods.
	ErrInvalidWindow = errors.New("invalid leave window")

	// ErrCourseFetch is returned when the enrollment/course directory
	// fails. The engine never degrades this to "zero courses": the caller
	// decides whether to retry or abort.
	ErrCourseFetch = errors.New("course directory fetch failed")

	// ErrSubmitFailed is returned when the transactional write did not
	// take effect. Nothing was persisted; resubmitting is safe.
	ErrSubmitFailed = errors.New("leave submission failed")
)

// CourseFetchError carries the term that was being resolved when the
// directory failed.
type CourseFetchError struct {
	StudentID string
	Year      int
	Semester  int
	Err       error
}

func (e *CourseFetchError) Error() string {
	return fmt.Sprintf("course fetch for %s term %d-%d: %v", e.StudentID, e.Year, e.Semester, e.Err)
}

func (e *CourseFetchError) Unwrap() error { return ErrCourseFetch }

// IsClientError reports whether the error is the requester's fault rather
// than a system failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrStudentNotFound) || errors.Is(err, ErrInvalidWindow)
}
