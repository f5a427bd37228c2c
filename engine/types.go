/*
Package engine provides the leave-conflict computation core.

PURPOSE:
  This package contains the pure algorithms behind leave-request processing:
  decoding a course's recurring weekly schedule, expanding a leave window
  into calendar days, resolving per-day period bounds, and intersecting the
  two into per-course per-day conflict buckets. The same aggregation feeds
  the hours estimate, the pre-submission preview, and the persisted
  per-course records, so the three can never disagree.

KEY CONCEPTS IN THIS FILE (types.go):
  - Term:            (academic year, semester) under the ROC calendar
  - Course:          an enrolled course with its raw schedule string
  - Window:          the inclusive date + period span of a leave request
  - CourseDayBucket: the affected periods of one course on one date

DESIGN PRINCIPLES:
  1. Purity: everything in this package is a function of its inputs;
     no I/O, no clocks, no shared mutable state.
  2. One implementation: every caller that needs conflicts goes through
     Aggregate; there are no per-caller copies of the date/period logic.
  3. Set semantics: periods within a bucket are distinct and ascending,
     and merging the same bucket twice is idempotent.

SEE ALSO:
  - calendar.go: date -> Term resolution
  - schedule.go: schedule-string decoding
  - window.go:   date expansion and per-day period bounds
  - aggregate.go: conflict buckets and hour totals
*/
package engine

import "time"

// Teaching periods are numbered slots within a day. A leave request that
// omits its end period runs to the last period of the day.
const (
	FirstPeriod = 1
	LastPeriod  = 12
)

// Term is an academic term under the ROC calendar: year 113 semester 1,
// and so on. Derived from a calendar date, never supplied by clients.
type Term struct {
	Year     int
	Semester int
}

// Course is one enrolled course as the engine sees it: an identifier, a
// display name, and the raw recurring-schedule string (e.g. "(一)12(三)34").
// Courses with an empty or undecodable schedule contribute no conflicts.
type Course struct {
	ID       string
	Name     string
	Schedule string
}

// Window is the span a leave request covers: an inclusive calendar-date
// range plus the period bounds that apply on its boundary days.
// EndPeriod zero means "to the end of the day" (LastPeriod).
type Window struct {
	Start       time.Time
	End         time.Time
	StartPeriod int
	EndPeriod   int
}

// CourseDayBucket is the set of periods of one course, on one calendar
// date, that fall inside the leave window. Periods are distinct and
// ascending. There is at most one bucket per (course, date).
type CourseDayBucket struct {
	CourseID   string
	CourseName string
	Date       time.Time
	Periods    []int
}

// DateOnly truncates a timestamp to its calendar day in UTC. All date
// comparisons in this package go through it so that submissions carrying
// a time-of-day component compare equal on the same day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
