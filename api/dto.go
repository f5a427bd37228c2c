/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Request types carry go-playground/validator struct tags; the handlers
  run the validator before touching the service.

SEE ALSO:
  - handlers.go: Uses these types
  - leave/service.go: Domain view types these map from
*/
package api

import (
	"time"

	"github.com/studentaffairs/leave-engine/leave"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// SubmitLeaveRequest is the request body for a leave submission. The same
// fields are accepted as JSON or as multipart form values (the latter
// adds an optional certificate file).
type SubmitLeaveRequest struct {
	StudentID   string `json:"student_id" validate:"required"`
	StartDate   string `json:"start_date" validate:"required"`
	EndDate     string `json:"end_date" validate:"required"`
	StartPeriod int    `json:"start_period" validate:"required,min=1,max=12"`
	EndPeriod   int    `json:"end_period" validate:"omitempty,min=1,max=12"`
	LeaveType   string `json:"leave_type" validate:"required"`
	Reason      string `json:"reason,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// SubmitLeaveResponse reports a successful submission.
type SubmitLeaveResponse struct {
	LeaveID         int64  `json:"leave_id"`
	AcademicYear    int    `json:"academic_year"`
	Semester        int    `json:"semester"`
	Hours           int    `json:"hours"`
	AffectedCourses int    `json:"affected_courses"`
	Progress        string `json:"progress"`
}

// HoursDTO is the response for a standalone hours estimate.
type HoursDTO struct {
	Hours int `json:"hours"`
}

// CoursePreviewDTO is one affected course on one date.
type CoursePreviewDTO struct {
	CourseID   string `json:"course_id"`
	CourseName string `json:"course_name"`
	Periods    []int  `json:"periods"`
}

// DayPreviewDTO groups the affected courses of one calendar date.
type DayPreviewDTO struct {
	Date    string             `json:"date"`
	Weekday string             `json:"weekday"`
	Courses []CoursePreviewDTO `json:"courses"`
}

// PreviewDTO is the grouped-by-date view of a would-be submission.
type PreviewDTO struct {
	AcademicYear int             `json:"academic_year"`
	Semester     int             `json:"semester"`
	Hours        int             `json:"hours"`
	Days         []DayPreviewDTO `json:"days"`
}

// LeaveRecordDTO represents a primary leave record in listings.
type LeaveRecordDTO struct {
	LeaveID     int64  `json:"leave_id"`
	StudentID   string `json:"student_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	StartPeriod int    `json:"start_period"`
	EndPeriod   int    `json:"end_period,omitempty"`
	LeaveType   string `json:"leave_type"`
	Reason      string `json:"reason,omitempty"`
	Progress    string `json:"progress"`
	AppliedAt   string `json:"applied_at"`
	Hours       int    `json:"hours"`
}

// TermRecordsDTO is one term's records in the history listing.
type TermRecordsDTO struct {
	AcademicYear int              `json:"academic_year"`
	Semester     int              `json:"semester"`
	Records      []LeaveRecordDTO `json:"records"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toLeaveRecordDTO(r leave.LeaveRecord) LeaveRecordDTO {
	return LeaveRecordDTO{
		LeaveID:     r.ID,
		StudentID:   r.StudentID,
		StartDate:   r.StartDate.Format("2006-01-02"),
		EndDate:     r.EndDate.Format("2006-01-02"),
		StartPeriod: r.StartPeriod,
		EndPeriod:   r.EndPeriod,
		LeaveType:   r.LeaveType,
		Reason:      r.Reason,
		Progress:    string(r.Progress),
		AppliedAt:   r.AppliedAt.Format(time.RFC3339),
		Hours:       r.Hours,
	}
}

func toLeaveRecordDTOs(records []leave.LeaveRecord) []LeaveRecordDTO {
	dtos := make([]LeaveRecordDTO, len(records))
	for i, r := range records {
		dtos[i] = toLeaveRecordDTO(r)
	}
	return dtos
}
