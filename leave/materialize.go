package leave

import "github.com/studentaffairs/leave-engine/engine"

// =============================================================================
// RECORD MATERIALIZATION - buckets to persistable rows
// =============================================================================

// Materialize converts aggregated conflict buckets into the child records
// persisted alongside the primary application, and normalizes the primary
// itself.
//
// Each bucket becomes one child record for its (course, date): the child's
// period bound is the bucket's min and max affected period (the span may
// cover periods the course does not actually meet; the bucket, not the
// span, is authoritative for hour counting). Children copy the parent's
// student/term/type/reason/contact/progress fields so each row displays
// independently; they are siblings of the primary, not amendments, so no
// parent linkage is set. The primary always has its course linkage
// cleared, and zero children is a valid outcome.
func Materialize(primary *LeaveRecord, buckets []engine.CourseDayBucket) []LeaveRecord {
	primary.CourseID = ""

	children := make([]LeaveRecord, 0, len(buckets))
	for _, b := range buckets {
		if len(b.Periods) == 0 {
			continue
		}
		children = append(children, LeaveRecord{
			StudentID:    primary.StudentID,
			CourseID:     b.CourseID,
			StartDate:    b.Date,
			EndDate:      b.Date,
			StartPeriod:  b.Periods[0],
			EndPeriod:    b.Periods[len(b.Periods)-1],
			AcademicYear: primary.AcademicYear,
			Semester:     primary.Semester,
			LeaveType:    primary.LeaveType,
			Reason:       primary.Reason,
			PhoneNumber:  primary.PhoneNumber,
			Progress:     primary.Progress,
			AppliedAt:    primary.AppliedAt,
		})
	}
	return children
}
